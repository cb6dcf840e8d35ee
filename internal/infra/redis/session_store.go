package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// SessionStore is a Redis-backed implementation of app.SessionRepository.
//   - Hosted sessions stay in a local map to reuse the in-process broadcast logic.
//   - Every state change is written to quiz:session:{id} with a TTL, so a restarted (or another)
//     process can resume the session until the key expires.
//   - Writes are versioned and guarded by WATCH, so two processes hosting the same session
//     cannot overwrite each other.
//   - Subscribers only see updates from the process hosting the session.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
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

// Release forgets the local session only; the Redis record stays resumable until its TTL.
func (s *SessionStore) Release(_ context.Context, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID()] == session {
		delete(s.sessions, session.ID())
	}
}

func (s *SessionStore) Save(ctx context.Context, record domain.SessionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	k := key(record.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, found, err := decodeRecord(tx.Get(ctx, k))
		if err != nil {
			return err
		}
		if err := record.Supersedes(stored, found); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		return err
	}, k)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrSessionConflict
	}
	return err
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	record, found, err := decodeRecord(s.client.Get(ctx, key(sessionID)))
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !found {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	record.ID = sessionID
	return record, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return s.client.Del(ctx, key(sessionID)).Err()
}

func decodeRecord(cmd *redis.StringCmd) (domain.SessionRecord, bool, error) {
	payload, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionRecord{}, false, nil
	}
	if err != nil {
		return domain.SessionRecord{}, false, err
	}
	var record domain.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.SessionRecord{}, false, fmt.Errorf("decode session: %w", err)
	}
	return record, true, nil
}

func key(sessionID string) string {
	return "quiz:session:" + sessionID
}
