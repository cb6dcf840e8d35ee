package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questions"
)

func TestQuestionSetRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionSetLoader: NewStaticLoader(sampleSource())}
	repo := NewQuestionSetRepository(loader, time.Minute)

	if _, err := repo.GetQuestionSet(context.Background(), "set-1"); err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuestionSet(context.Background(), "set-1"); err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuestionSetRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuestionSetLoader: NewStaticLoader(sampleSource())}
	repo := NewQuestionSetRepository(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestionSet(context.Background(), "set-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestionSet(context.Background(), "set-1")

	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestQuestionSetRepositoryCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{QuestionSetLoader: NewStaticLoader(sampleSource()), gate: release}
	repo := NewQuestionSetRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuestionSet(context.Background(), "set-1"); err != nil {
				t.Errorf("get set: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loader.count() != 1 {
		t.Fatalf("expected a single load, got %d", loader.count())
	}
}

func TestQuestionSetRepositoryNotFound(t *testing.T) {
	repo := NewQuestionSetRepository(NewStaticLoader(), time.Minute)
	if _, err := repo.GetQuestionSet(context.Background(), "missing"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`{"questions":[{"prompt":"1 + 1?","choices":["1","2"],"correctAnswer":"2"}]}`)
	if err := os.WriteFile(filepath.Join(dir, "math.json"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("questions:\n  - prompt: p\n    choices: [a]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewDirLoader(dir)

	src, err := loader.LoadQuestionSet(context.Background(), "math")
	if err != nil {
		t.Fatalf("load math: %v", err)
	}
	if src.ID != "math" || len(src.Questions) != 1 {
		t.Fatalf("unexpected source %+v", src)
	}

	if _, err := loader.LoadQuestionSet(context.Background(), "broken"); !errors.Is(err, domain.ErrInvalidQuestionSet) {
		t.Fatalf("expected invalid set, got %v", err)
	}
	if _, err := loader.LoadQuestionSet(context.Background(), "../math"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected path escape to be rejected, got %v", err)
	}
	if src, err := loader.LoadQuestionSet(context.Background(), questions.DefaultSetID); err != nil || len(src.Questions) == 0 {
		t.Fatalf("expected embedded default, got %v", err)
	}

	ids, err := loader.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 3 || ids[0] != "broken" || ids[1] != "default" || ids[2] != "math" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestChainLoaderFallsThrough(t *testing.T) {
	chain := ChainLoader{NewStaticLoader(), NewStaticLoader(sampleSource())}
	src, err := chain.LoadQuestionSet(context.Background(), "set-1")
	if err != nil || src.ID != "set-1" {
		t.Fatalf("expected second loader to answer, got %+v %v", src, err)
	}
	if _, err := chain.LoadQuestionSet(context.Background(), "nope"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuestionSetLoader
	gate  chan struct{}
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.gate != nil {
		<-l.gate
	}
	return l.QuestionSetLoader.LoadQuestionSet(ctx, setID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleSource() domain.QuestionSource {
	return domain.QuestionSource{
		ID: "set-1",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4"}, CorrectAnswer: "4"},
			{Prompt: "Bonus: 3 * 3?", Choices: []string{"6", "9"}, CorrectAnswer: "9", BonusQuestion: true},
		},
	}
}
