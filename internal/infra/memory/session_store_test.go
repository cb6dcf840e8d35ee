package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	eng := engine.New(domain.NewQuestionSet(sampleSource()))

	first := store.Add(ctx, app.NewSession("s-1", "set-1", eng))
	if got, ok := store.Get(ctx, "s-1"); !ok || got != first {
		t.Fatalf("expected session present")
	}
	if again := store.Add(ctx, app.NewSession("s-1", "set-1", eng)); again != first {
		t.Fatalf("expected existing session to win")
	}
	if hosted := store.Hosted(ctx); len(hosted) != 1 || hosted[0] != first {
		t.Fatalf("expected one hosted session, got %d", len(hosted))
	}

	if err := store.Save(ctx, domain.SessionRecord{ID: "s-1", SetID: "set-1", Version: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if record, err := store.Load(ctx, "s-1"); err != nil || record.Version != 1 {
		t.Fatalf("expected stored record, got %+v %v", record, err)
	}

	if err := store.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get(ctx, "s-1"); ok {
		t.Fatalf("expected session removed")
	}
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected record removed, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestSessionStoreRejectsStaleWrites(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	_ = store.Save(ctx, domain.SessionRecord{ID: "s-1", Version: 1})
	if err := store.Save(ctx, domain.SessionRecord{ID: "s-1", Version: 2}); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if err := store.Save(ctx, domain.SessionRecord{ID: "s-1", Version: 2}); !errors.Is(err, domain.ErrSessionConflict) {
		t.Fatalf("expected conflict for repeated version, got %v", err)
	}
	if err := store.Save(ctx, domain.SessionRecord{ID: "s-2", Version: 5}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected missing record to stay missing, got %v", err)
	}
}

func TestSessionStoreReleaseDropsOnlyThatSession(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	eng := engine.New(domain.NewQuestionSet(sampleSource()))

	hosted := store.Add(ctx, app.NewSession("s-1", "set-1", eng))
	_ = store.Save(ctx, domain.SessionRecord{ID: "s-1", Version: 1})

	store.Release(ctx, app.NewSession("s-1", "set-1", eng))
	if got, ok := store.Get(ctx, "s-1"); !ok || got != hosted {
		t.Fatalf("expected release of another instance to be ignored")
	}

	store.Release(ctx, hosted)
	if _, ok := store.Get(ctx, "s-1"); ok {
		t.Fatalf("expected session released")
	}
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected released memory session to end, got %v", err)
	}
}
