package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-engine/internal/domain"
	pgmigrations "quiz-engine/internal/infra/postgres/migrations"
	"quiz-engine/internal/questions"
)

type questionSetRow struct {
	bun.BaseModel `bun:"table:question_sets"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb,notnull"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newQuestionSetRow(src domain.QuestionSource) (*questionSetRow, error) {
	if src.ID == "" {
		return nil, fmt.Errorf("question set id is required")
	}
	if err := questions.Validate(src); err != nil {
		return nil, fmt.Errorf("question set %s: %w", src.ID, err)
	}
	data, err := encodeSource(src)
	if err != nil {
		return nil, err
	}
	return &questionSetRow{ID: src.ID, Data: data}, nil
}

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies pending schema migrations and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrator init: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// Importer writes question sets into the question_sets table.
type Importer struct {
	db *bun.DB
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db}
}

// Import validates src and upserts it under src.ID.
func (i *Importer) Import(ctx context.Context, src domain.QuestionSource) error {
	row, err := newQuestionSetRow(src)
	if err != nil {
		return err
	}
	_, err = i.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("import question set %s: %w", src.ID, err)
	}
	return nil
}

// List returns stored question set IDs in order.
func (i *Importer) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := i.db.NewSelect().
		Model((*questionSetRow)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	return ids, nil
}

// Delete removes a stored question set.
func (i *Importer) Delete(ctx context.Context, setID string) error {
	res, err := i.db.NewDelete().
		Model((*questionSetRow)(nil)).
		Where("id = ?", setID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question set %s: %w", setID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuestionSetNotFound
	}
	return nil
}
