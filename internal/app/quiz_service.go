package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
	"quiz-engine/internal/questions"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	// Get returns a session hosted by this process.
	Get(ctx context.Context, sessionID string) (*Session, bool)
	// Add hosts a session. If one with the same ID is already hosted, that one is returned.
	Add(ctx context.Context, session *Session) *Session
	// Hosted lists the sessions this process currently hosts.
	Hosted(ctx context.Context) []*Session
	// Release stops hosting the session. Stores that outlive the process keep its record.
	Release(ctx context.Context, session *Session)
	// Save persists the record if it supersedes the stored one (see domain.SessionRecord).
	Save(ctx context.Context, record domain.SessionRecord) error
	// Load reads the persisted record of a session.
	Load(ctx context.Context, sessionID string) (domain.SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// QuestionSetRepository loads question content (from cache/backing store).
type QuestionSetRepository interface {
	GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error)
}

// QuizService hosts quiz sessions. Each session wraps one engine; operations on a session are
// serialised by the session mutex.
type QuizService struct {
	sessions   SessionRepository
	sets       QuestionSetRepository
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	engineOpts []engine.Option
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) {
		s.logger = logger
	}
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) {
		s.now = now
	}
}

// WithIDGenerator replaces the random session ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) {
		s.newID = newID
	}
}

// WithStrictChoices rejects answers that are not among the question's choices.
func WithStrictChoices() Option {
	return func(s *QuizService) {
		s.engineOpts = append(s.engineOpts, engine.WithStrictChoices())
	}
}

// saveAttempts bounds how often an operation is replayed after losing a write to another host.
const saveAttempts = 3

func NewQuizService(store SessionRepository, sets QuestionSetRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: store,
		sets:     sets,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(id, setID string, eng *engine.Engine) *Session {
	return newSession(id, setID, eng, time.Now)
}

// Start creates a session over the given question set.
func (s *QuizService) Start(ctx context.Context, setID string) (domain.Snapshot, error) {
	src, err := s.sets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := questions.Validate(src); err != nil {
		return domain.Snapshot{}, fmt.Errorf("question set %s: %w", setID, err)
	}

	eng := engine.New(domain.NewQuestionSet(src), s.engineOpts...)
	session := s.sessions.Add(ctx, newSession(s.newID(), setID, eng, s.now))

	session.mu.Lock()
	defer session.mu.Unlock()
	session.version = 1
	if err := s.sessions.Save(ctx, session.recordLocked()); err != nil {
		session.closeLocked()
		s.sessions.Release(ctx, session)
		return domain.Snapshot{}, fmt.Errorf("save session %s: %w", session.id, err)
	}
	s.logger.Info("session started", "session_id", session.id, "set_id", setID, "main_questions", len(eng.QuestionSet().Main))
	return session.snapshotLocked(true), nil
}

// Get returns the current snapshot without changing the session.
func (s *QuizService) Get(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if err := s.syncLocked(ctx, session); err != nil {
		return domain.Snapshot{}, err
	}
	return session.snapshotLocked(false), nil
}

// Select answers the active main question.
func (s *QuizService) Select(ctx context.Context, sessionID, choice string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(e *engine.Engine) bool { return e.SelectAnswer(choice) })
}

// Advance moves past the feedback of the active main question.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, (*engine.Engine).Advance)
}

// AnswerBonus answers the pending bonus question.
func (s *QuizService) AnswerBonus(ctx context.Context, sessionID, choice string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(e *engine.Engine) bool { return e.AnswerBonus(choice) })
}

// Restart resets the session to its initial state.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(e *engine.Engine) bool {
		e.Restart()
		return true
	})
}

// End drops the session and closes every subscription to it.
func (s *QuizService) End(ctx context.Context, sessionID string) error {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	session.closeLocked()
	session.mu.Unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	s.logger.Info("session ended", "session_id", sessionID)
	return nil
}

// Subscribe returns a channel that receives a snapshot after every applied operation, starting
// with the current one. The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	session.mu.Lock()
	err = s.syncLocked(ctx, session)
	session.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// EvictIdle stops hosting sessions with no applied operation for at least idle and ends their
// subscriptions. It returns how many sessions were evicted.
func (s *QuizService) EvictIdle(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	evicted := 0
	for _, session := range s.sessions.Hosted(ctx) {
		session.mu.Lock()
		if !session.closed && !session.updatedAt.After(cutoff) {
			s.dropLocked(ctx, session)
			evicted++
			s.logger.Info("session evicted", "session_id", session.id, "idle_since", session.updatedAt)
		}
		session.mu.Unlock()
	}
	return evicted
}

// RunEvictor calls EvictIdle every interval until ctx is done.
func (s *QuizService) RunEvictor(ctx context.Context, idle, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.EvictIdle(ctx, idle); n > 0 {
				s.logger.Debug("idle sessions evicted", "count", n)
			}
		}
	}
}

func (s *QuizService) apply(ctx context.Context, sessionID string, op func(*engine.Engine) bool) (domain.Snapshot, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	for attempt := 1; ; attempt++ {
		if err := s.syncLocked(ctx, session); err != nil {
			return domain.Snapshot{}, err
		}
		prev := session.engine.State()
		if !op(session.engine) {
			return session.snapshotLocked(false), nil
		}

		record := session.recordLocked()
		record.Version++
		record.UpdatedAt = s.now()
		err := s.sessions.Save(ctx, record)
		if err == nil {
			session.version = record.Version
			session.updatedAt = record.UpdatedAt
			snap := session.snapshotLocked(true)
			session.broadcastLocked(snap)
			return snap, nil
		}

		// the write did not land; undo it before deciding what to do
		session.engine = engine.Resume(session.engine.QuestionSet(), prev, s.engineOpts...)
		switch {
		case errors.Is(err, domain.ErrSessionConflict) && attempt < saveAttempts:
			s.logger.Debug("session changed elsewhere, replaying", "session_id", sessionID, "attempt", attempt)
			continue
		case errors.Is(err, domain.ErrSessionNotFound):
			s.dropLocked(ctx, session)
			return domain.Snapshot{}, err
		}
		s.logger.Warn("persist session failed", "session_id", sessionID, "err", err)
		return domain.Snapshot{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}
}

// syncLocked brings a hosted session in line with its persisted record. Another process may have
// advanced it, or the record may have expired or been ended elsewhere.
func (s *QuizService) syncLocked(ctx context.Context, session *Session) error {
	if session.closed {
		return domain.ErrSessionNotFound
	}
	record, err := s.sessions.Load(ctx, session.id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.dropLocked(ctx, session)
		s.logger.Info("session expired", "session_id", session.id)
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", session.id, err)
	}
	if record.Version == session.version {
		return nil
	}
	session.engine = engine.Resume(session.engine.QuestionSet(), record.State, s.engineOpts...)
	session.version = record.Version
	session.updatedAt = record.UpdatedAt
	session.broadcastLocked(session.snapshotLocked(false))
	s.logger.Debug("session refreshed", "session_id", session.id, "version", record.Version)
	return nil
}

func (s *QuizService) dropLocked(ctx context.Context, session *Session) {
	session.closeLocked()
	s.sessions.Release(ctx, session)
}

// session resolves a hosted session, restoring it from its persisted record when this process
// does not host it yet.
func (s *QuizService) session(ctx context.Context, sessionID string) (*Session, error) {
	if session, ok := s.sessions.Get(ctx, sessionID); ok {
		return session, nil
	}

	record, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	src, err := s.sets.GetQuestionSet(ctx, record.SetID)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionSetNotFound) {
			// the set vanished under the session; it can no longer be played
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("restore session %s: %w", sessionID, err)
	}

	eng := engine.Resume(domain.NewQuestionSet(src), record.State, s.engineOpts...)
	restored := newSession(sessionID, record.SetID, eng, s.now)
	restored.version = record.Version
	restored.updatedAt = record.UpdatedAt
	s.logger.Info("session restored", "session_id", sessionID, "set_id", record.SetID, "phase", record.State.Phase)
	return s.sessions.Add(ctx, restored), nil
}
