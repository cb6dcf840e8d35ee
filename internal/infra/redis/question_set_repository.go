package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// QuestionSetRepository caches serialised question sets in Redis and falls back to a loader on a
// cache miss. Sets are stored as: SET quiz:set:{setID} {json} EX ttl
type QuestionSetRepository struct {
	client *redis.Client
	loader memory.QuestionSetLoader
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionSetRepository(client *redis.Client, loader memory.QuestionSetLoader, ttl time.Duration) *QuestionSetRepository {
	return &QuestionSetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: slog.Default(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionSetRepository) GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error) {
	if src, ok := r.cached(ctx, setID); ok {
		return src, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if src, ok := r.cached(ctx, setID); ok {
			return src, nil
		}

		src, err := r.loader.LoadQuestionSet(ctx, setID)
		if err != nil {
			return domain.QuestionSource{}, err
		}

		payload, err := json.Marshal(src)
		if err != nil {
			return domain.QuestionSource{}, fmt.Errorf("encode question set %s: %w", setID, err)
		}
		if err := r.client.Set(ctx, setKey(setID), payload, r.ttlWithJitter()).Err(); err != nil {
			// the loaded set is still usable; the next read retries the fill
			r.logger.Warn("cache question set failed", "set_id", setID, "err", err)
		}
		return src, nil
	})
	if err != nil {
		return domain.QuestionSource{}, err
	}
	return result.(domain.QuestionSource), nil
}

// Invalidate removes a cached set, e.g. after it was re-imported.
func (r *QuestionSetRepository) Invalidate(ctx context.Context, setID string) error {
	return r.client.Del(ctx, setKey(setID)).Err()
}

func (r *QuestionSetRepository) cached(ctx context.Context, setID string) (domain.QuestionSource, bool) {
	payload, err := r.client.Get(ctx, setKey(setID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached question set failed", "set_id", setID, "err", err)
		}
		return domain.QuestionSource{}, false
	}
	var src domain.QuestionSource
	if err := json.Unmarshal(payload, &src); err != nil {
		r.logger.Warn("decode cached question set failed", "set_id", setID, "err", err)
		return domain.QuestionSource{}, false
	}
	src.ID = setID
	return src, true
}

func setKey(setID string) string {
	return "quiz:set:" + setID
}

func (r *QuestionSetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
