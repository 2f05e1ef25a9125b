package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/infra/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

type questionSetRow struct {
	bun.BaseModel `bun:"table:question_sets"`

	ID    string             `bun:"id,pk"`
	Title string             `bun:"title,notnull"`
	Data  domain.QuestionSet `bun:"data,type:jsonb,notnull"`
}

// Open returns a bun handle over the pgdriver connector.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies all pending schema migrations and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// Seed upserts question sets, replacing the title and questions of existing rows.
func Seed(ctx context.Context, db *bun.DB, sets []domain.QuestionSet) error {
	if len(sets) == 0 {
		return nil
	}
	rows := make([]questionSetRow, 0, len(sets))
	for _, set := range sets {
		rows = append(rows, questionSetRow{ID: set.ID, Title: set.Title, Data: set})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("seed question sets: %w", err)
	}
	return nil
}
