package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/udisondev/tankrun/internal/director"
	"github.com/udisondev/tankrun/internal/journal/migrations"
	"github.com/udisondev/tankrun/internal/model"
)

// SQLiteStore journals reports into a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	run Run
}

// OpenSQLite opens (or creates) the database at path, applies migrations and
// registers the run.
func OpenSQLite(ctx context.Context, path string, run Run) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	if err := migrate(ctx, db, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = db.Close()
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, scenario, seed) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Scenario, int64(run.Seed),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registering run %s: %w", run.ID, err)
	}

	return &SQLiteStore{db: db, run: run}, nil
}

// Publish implements director.Sink.
func (s *SQLiteStore) Publish(ctx context.Context, r director.Report) error {
	raw, err := encode(r)
	if err != nil {
		return err
	}
	sum := Summarize(r)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tick %d: %w", r.Tick, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (run_id, tick, clock_ms, players, antagonists, group_count, pending, spawned, max_stress, raw_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.run.ID, int64(sum.Tick), sum.ClockMS, sum.Players, sum.Antagonists, sum.Groups,
		sum.Pending, sum.Spawned, sum.MaxStress, string(raw),
	)
	if err != nil {
		return fmt.Errorf("inserting report %d: %w", r.Tick, err)
	}

	for _, g := range r.Groups {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_samples (run_id, tick, group_id, logic, stress, members, requesting)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.run.ID, int64(r.Tick), int64(g.ID), g.Logic.String(), g.Stress, g.Members, g.Requesting,
		)
		if err != nil {
			return fmt.Errorf("inserting group %d sample: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tick %d: %w", r.Tick, err)
	}
	return nil
}

// Summaries returns the stored rows of a run in tick order.
func (s *SQLiteStore) Summaries(ctx context.Context, runID string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, clock_ms, players, antagonists, group_count, pending, spawned, max_stress
		 FROM reports WHERE run_id = ? ORDER BY tick`, runID)
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
		if err := rows.Scan(&tick, &sum.ClockMS, &sum.Players, &sum.Antagonists, &sum.Groups,
			&sum.Pending, &sum.Spawned, &sum.MaxStress); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sum.Tick = uint64(tick)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return out, nil
}

// GroupStress returns the stress series of one group.
func (s *SQLiteStore) GroupStress(ctx context.Context, runID string, groupID model.ActorID) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stress FROM group_samples WHERE run_id = ? AND group_id = ? ORDER BY tick`,
		runID, int64(groupID))
	if err != nil {
		return nil, fmt.Errorf("querying group %d: %w", groupID, err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning stress: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Run returns the run this store records.
func (s *SQLiteStore) Run() Run { return s.run }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
