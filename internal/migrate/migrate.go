// Package migrate applies and inspects the embedded goose migrations.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/git21git/travelplanner/migrations"
)

// Runner wraps a goose provider over the embedded migrations.
type Runner struct {
	db       *sql.DB
	provider *goose.Provider
	log      *slog.Logger
}

// Open connects to dsn through pgx's database/sql driver and prepares a Runner.
// Close releases the connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Runner, error) {
	if dsn == "" {
		return nil, errors.New("migrate.Open: empty database dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate.Open: ping: %w", err)
	}
	r, err := New(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// New builds a Runner on an existing connection. Close on such a runner
// closes db too.
func New(db *sql.DB, log *slog.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("migrate.New: nil db")
	}
	if log == nil {
		log = slog.Default()
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("migrate.New: %w", err)
	}
	return &Runner{db: db, provider: provider, log: log}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate.Runner.Up: %w", err)
	}
	for _, res := range results {
		r.log.InfoContext(ctx, "migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	if len(results) == 0 {
		r.log.InfoContext(ctx, "no pending migrations")
	}
	return nil
}

// Status logs every known migration and whether it is applied.
func (r *Runner) Status(ctx context.Context) error {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrate.Runner.Status: %w", err)
	}
	for _, st := range statuses {
		r.log.InfoContext(ctx, "migration",
			"version", st.Source.Version,
			"file", st.Source.Path,
			"state", string(st.State),
			"applied_at", st.AppliedAt,
		)
	}
	return nil
}

// Down rolls back to target, or just the latest migration when target is 0
// or negative.
func (r *Runner) Down(ctx context.Context, target int64) error {
	if target > 0 {
		if _, err := r.provider.DownTo(ctx, target); err != nil {
			return fmt.Errorf("migrate.Runner.Down: to %d: %w", target, err)
		}
		r.log.InfoContext(ctx, "rolled back", "target", target)
		return nil
	}
	res, err := r.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate.Runner.Down: %w", err)
	}
	r.log.InfoContext(ctx, "rolled back", "version", res.Source.Version)
	return nil
}

// Version returns the highest applied migration version.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	v, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate.Runner.Version: %w", err)
	}
	return v, nil
}

// Close releases the database connection.
func (r *Runner) Close() error {
	return r.db.Close()
}
