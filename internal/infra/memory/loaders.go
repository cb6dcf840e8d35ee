package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questions"
)

// StaticLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticLoader struct {
	sets map[string]domain.QuestionSource
}

func NewStaticLoader(sets ...domain.QuestionSource) *StaticLoader {
	l := &StaticLoader{sets: make(map[string]domain.QuestionSource, len(sets))}
	for _, src := range sets {
		l.sets[src.ID] = src
	}
	return l
}

func (l *StaticLoader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSource, error) {
	if src, ok := l.sets[setID]; ok {
		return src, nil
	}
	return domain.QuestionSource{}, domain.ErrQuestionSetNotFound
}

var questionFileExts = []string{".json", ".yaml", ".yml"}

// DirLoader reads <setID>.json, <setID>.yaml or <setID>.yml from a directory. The embedded
// default set is served when no file overrides it.
type DirLoader struct {
	dir string
}

func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

func (l *DirLoader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSource, error) {
	if setID == "" || filepath.Base(setID) != setID {
		return domain.QuestionSource{}, domain.ErrQuestionSetNotFound
	}
	if l.dir != "" {
		for _, ext := range questionFileExts {
			path := filepath.Join(l.dir, setID+ext)
			src, err := questions.Load(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return domain.QuestionSource{}, fmt.Errorf("load %s: %w", path, err)
			}
			return src, nil
		}
	}
	if setID == questions.DefaultSetID {
		return questions.Default(), nil
	}
	return domain.QuestionSource{}, domain.ErrQuestionSetNotFound
}

// List returns the IDs of all question sets the loader can serve.
func (l *DirLoader) List() ([]string, error) {
	seen := map[string]struct{}{questions.DefaultSetID: {}}
	if l.dir != "" {
		entries, err := os.ReadDir(l.dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := questions.FormatFromPath(entry.Name()); err != nil {
				continue
			}
			seen[questions.SetIDFromPath(entry.Name())] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ChainLoader tries each loader in order until one knows the set.
type ChainLoader []QuestionSetLoader

func (c ChainLoader) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error) {
	for _, loader := range c {
		src, err := loader.LoadQuestionSet(ctx, setID)
		if errors.Is(err, domain.ErrQuestionSetNotFound) {
			continue
		}
		return src, err
	}
	return domain.QuestionSource{}, domain.ErrQuestionSetNotFound
}
