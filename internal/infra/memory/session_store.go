package memory

import (
	"context"
	"sync"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository. Sessions and their
// records live only as long as the process, so releasing a session ends it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	records  map[string]domain.SessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		records:  make(map[string]domain.SessionRecord),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Add(_ context.Context, session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.ID()]; ok {
		return existing
	}
	s.sessions[session.ID()] = session
	return session
}

func (s *SessionStore) Hosted(context.Context) []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

func (s *SessionStore) Release(_ context.Context, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID()] != session {
		return
	}
	delete(s.sessions, session.ID())
	delete(s.records, session.ID())
}

func (s *SessionStore) Save(_ context.Context, record domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, found := s.records[record.ID]
	if err := record.Supersedes(stored, found); err != nil {
		return err
	}
	s.records[record.ID] = record
	return nil
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return record, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.records, sessionID)
	return nil
}

// Len reports the number of hosted sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
