package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questions"
)

// QuestionSetLoader loads question set JSONB from Postgres.
type QuestionSetLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionSetLoader(pool *pgxpool.Pool) *QuestionSetLoader {
	return &QuestionSetLoader{pool: pool}
}

func (l *QuestionSetLoader) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSource, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_sets WHERE id=$1`, setID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSource{}, domain.ErrQuestionSetNotFound
	}
	if err != nil {
		return domain.QuestionSource{}, fmt.Errorf("load question set: %w", err)
	}
	src, err := questions.Parse(setID, raw, questions.FormatJSON)
	if err != nil {
		return domain.QuestionSource{}, err
	}
	if err := questions.Validate(src); err != nil {
		return domain.QuestionSource{}, fmt.Errorf("question set %s: %w", setID, err)
	}
	return src, nil
}

// Ping checks the pool can reach the database.
func (l *QuestionSetLoader) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

func encodeSource(src domain.QuestionSource) (json.RawMessage, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode question set %s: %w", src.ID, err)
	}
	return data, nil
}
