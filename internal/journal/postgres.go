package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/udisondev/tankrun/internal/director"
	"github.com/udisondev/tankrun/internal/journal/migrations"
)

// PostgresStore journals reports into PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	run  Run
}

// RunMigrations applies the journal schema on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return migrate(ctx, sqlDB, "postgres", migrations.PostgresDir)
}

// OpenPostgres connects, migrates and registers the run.
func OpenPostgres(ctx context.Context, dsn string, run Run) (*PostgresStore, error) {
	if err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO runs (run_id, started_at, scenario, seed) VALUES ($1, $2, $3, $4)`,
		run.ID, run.StartedAt, run.Scenario, int64(run.Seed),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("registering run %s: %w", run.ID, err)
	}

	return &PostgresStore{pool: pool, run: run}, nil
}

// Publish implements director.Sink.
func (s *PostgresStore) Publish(ctx context.Context, r director.Report) error {
	raw, err := encode(r)
	if err != nil {
		return err
	}
	sum := Summarize(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tick %d: %w", r.Tick, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO reports (run_id, tick, clock_ms, players, antagonists, group_count, pending, spawned, max_stress, raw_json)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.run.ID, int64(sum.Tick), sum.ClockMS, sum.Players, sum.Antagonists, sum.Groups,
		sum.Pending, sum.Spawned, sum.MaxStress, raw,
	)
	if err != nil {
		return fmt.Errorf("inserting report %d: %w", r.Tick, err)
	}

	if len(r.Groups) > 0 {
		batch := &pgx.Batch{}
		for _, g := range r.Groups {
			batch.Queue(
				`INSERT INTO group_samples (run_id, tick, group_id, logic, stress, members, requesting)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				s.run.ID, int64(r.Tick), int64(g.ID), g.Logic.String(), g.Stress, g.Members, g.Requesting,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range r.Groups {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("inserting group sample: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tick %d: %w", r.Tick, err)
	}
	return nil
}

// Summaries returns the stored rows of a run in tick order.
func (s *PostgresStore) Summaries(ctx context.Context, runID string) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tick, clock_ms, players, antagonists, group_count, pending, spawned, max_stress
		 FROM reports WHERE run_id = $1 ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum  Summary
			tick int64
		)
		var players, antagonists, groups, pending, spawned int32
		if err := rows.Scan(&tick, &sum.ClockMS, &players, &antagonists, &groups,
			&pending, &spawned, &sum.MaxStress); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sum.Tick = uint64(tick)
		sum.Players = int(players)
		sum.Antagonists = int(antagonists)
		sum.Groups = int(groups)
		sum.Pending = int(pending)
		sum.Spawned = int(spawned)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return out, nil
}

// Run returns the run this store records.
func (s *PostgresStore) Run() Run { return s.run }

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
