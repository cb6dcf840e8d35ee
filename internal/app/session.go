package app

import (
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
)

// Session is an in-memory host for one quiz engine and its subscribers.
type Session struct {
	id          string
	setID       string
	mu          sync.Mutex
	engine      *engine.Engine
	version     int64
	updatedAt   time.Time
	closed      bool
	subscribers map[chan domain.Snapshot]struct{}
}

func newSession(id, setID string, eng *engine.Engine, now func() time.Time) *Session {
	return &Session{
		id:          id,
		setID:       setID,
		engine:      eng,
		updatedAt:   now(),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetID returns the question set the session plays.
func (s *Session) SetID() string {
	return s.setID
}

func (s *Session) recordLocked() domain.SessionRecord {
	return domain.SessionRecord{
		ID:        s.id,
		SetID:     s.setID,
		Version:   s.version,
		State:     s.engine.State(),
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) snapshotLocked(applied bool) domain.Snapshot {
	return domain.Snapshot{
		SessionID: s.id,
		SetID:     s.setID,
		Applied:   applied,
		State:     s.engine.State(),
		View:      s.engine.View(),
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// buffer is empty, so this cannot block and precedes any broadcast
	ch <- s.snapshotLocked(false)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(snap domain.Snapshot) {
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: replace its oldest pending snapshot with the newest
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// closeLocked ends every subscription; later subscribers receive a closed channel.
func (s *Session) closeLocked() {
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}
