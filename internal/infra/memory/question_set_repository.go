package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// QuestionSetLoader fetches question sets from a backing store (files, Postgres, etc).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error)
}

// QuestionSetRepository caches question sets with TTL to avoid repeated loads.
type QuestionSetRepository struct {
	loader QuestionSetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	src       domain.QuestionSource
	expiresAt time.Time
}

func NewQuestionSetRepository(loader QuestionSetLoader, ttl time.Duration) *QuestionSetRepository {
	return &QuestionSetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *QuestionSetRepository) GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error) {
	if src, ok := r.cached(setID); ok {
		return src, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		if src, ok := r.cached(setID); ok {
			return src, nil
		}

		src, err := r.loader.LoadQuestionSet(ctx, setID)
		if err != nil {
			return domain.QuestionSource{}, err
		}

		r.mu.Lock()
		r.cache[setID] = cachedSet{
			src:       src,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return src, nil
	})
	if err != nil {
		return domain.QuestionSource{}, err
	}
	return result.(domain.QuestionSource), nil
}

func (r *QuestionSetRepository) cached(setID string) (domain.QuestionSource, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[setID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuestionSource{}, false
	}
	return entry.src, true
}

func (r *QuestionSetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
