package usage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createUsageTable = `CREATE TABLE IF NOT EXISTS usage_events (
	run_id       TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	problem_slug TEXT NOT NULL,
	language     TEXT NOT NULL,
	code         TEXT NOT NULL,
	user_agent   TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

const insertUsage = `INSERT INTO usage_events (run_id, status, problem_slug, language, code, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (run_id) DO NOTHING`

// Execer is the subset of pgxpool.Pool used by PostgresReporter.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresReporter stores usage records in the usage_events table.
type PostgresReporter struct {
	db Execer
}

func NewPostgresReporter(db Execer) *PostgresReporter {
	return &PostgresReporter{db: db}
}

// OpenPostgres connects to dsn and makes sure the usage table exists.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, *PostgresReporter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	r := NewPostgresReporter(pool)
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, r, nil
}

// EnsureSchema creates the usage table if it is missing.
func (p *PostgresReporter) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createUsageTable); err != nil {
		return fmt.Errorf("create usage table: %w", err)
	}
	return nil
}

func (p *PostgresReporter) Report(ctx context.Context, rec Record) error {
	_, err := p.db.Exec(ctx, insertUsage,
		rec.RunID, rec.Status, rec.ProblemSlug, rec.Language, rec.Code, rec.UserAgent, rec.At)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}
