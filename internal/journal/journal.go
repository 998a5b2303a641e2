// Package journal records tick reports: compressed JSONL files for cheap
// archival, PostgreSQL for shared analysis and SQLite for local runs.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/tankrun/internal/director"
	"github.com/udisondev/tankrun/internal/journal/migrations"
)

// Run identifies one director run in the SQL journals.
type Run struct {
	ID        string
	StartedAt time.Time
	Scenario  string
	Seed      uint64
}

// NewRun returns a run with a fresh identifier.
func NewRun(scenario string, seed uint64) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Scenario:  scenario,
		Seed:      seed,
	}
}

// Summary is the per-tick row kept by the SQL journals.
type Summary struct {
	Tick        uint64
	ClockMS     int64
	Players     int
	Antagonists int
	Groups      int
	Pending     int
	Spawned     int
	MaxStress   float64
}

// Summarize extracts the SQL row of a report.
func Summarize(r director.Report) Summary {
	s := Summary{
		Tick:        r.Tick,
		ClockMS:     r.ClockMS,
		Players:     r.EligiblePlayers,
		Antagonists: r.Antagonists,
		Groups:      len(r.Groups),
		Pending:     r.Pending,
		Spawned:     len(r.Spawned),
	}
	for _, g := range r.Groups {
		s.MaxStress = max(s.MaxStress, g.Stress)
	}
	return s
}

func encode(r director.Report) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding report %d: %w", r.Tick, err)
	}
	return b, nil
}

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func decode(b []byte) (director.Report, error) {
	var r director.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("decoding report: %w", err)
	}
	return r, nil
}
