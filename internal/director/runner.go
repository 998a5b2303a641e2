package director

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/tankrun/internal/spawn"
)

// ErrEndOfRun is returned by a Host that has no more frames.
var ErrEndOfRun = errors.New("end of run")

// Host enumerates the actors of the running level.
type Host interface {
	Frame(ctx context.Context) (Frame, error)
}

// Sink receives every tick report. Sink failures are logged, never fatal.
type Sink interface {
	Publish(ctx context.Context, r Report) error
}

// Runner owns the previous snapshot and drives the engine at a fixed rate.
type Runner struct {
	engine     *Engine
	host       Host
	dispatcher *spawn.Dispatcher
	policy     spawn.Policy
	sinks      []Sink
	runID      string

	stopCh   chan struct{}
	stopOnce sync.Once
	ticks    atomic.Uint64

	mu   sync.RWMutex
	last *Snapshot
}

// NewRunner creates a runner. The dispatcher may be nil, in which case
// requests are only reported.
func NewRunner(engine *Engine, host Host, dispatcher *spawn.Dispatcher, runID string, sinks ...Sink) *Runner {
	return &Runner{
		engine:     engine,
		host:       host,
		dispatcher: dispatcher,
		policy:     engine.Params().Policy(),
		sinks:      sinks,
		runID:      runID,
		stopCh:     make(chan struct{}),
	}
}

// Start runs one tick per tick interval until the context is canceled, the
// host runs out of frames or Stop is called (blocks).
func (r *Runner) Start(ctx context.Context) error {
	interval := r.engine.Params().TickInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("director started", "run", r.runID, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("director stopping", "ticks", r.Ticks())
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("director stopped", "ticks", r.Ticks())
			return nil

		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil {
				if errors.Is(err, ErrEndOfRun) {
					slog.Info("director finished", "ticks", r.Ticks())
					return nil
				}
				return err
			}
		}
	}
}

// Replay runs ticks back to back, without waiting for the tick interval,
// until the host runs out of frames.
func (r *Runner) Replay(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.Tick(ctx); err != nil {
			if errors.Is(err, ErrEndOfRun) {
				slog.Info("replay finished", "run", r.runID, "ticks", r.Ticks())
				return nil
			}
			return err
		}
	}
}

// Stop stops a running Start loop.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Tick performs one full pass: fetch a frame, step the engine, apply the
// bounds policy, refill the queue, dispatch requests and publish the report.
// Engine errors halt the run.
func (r *Runner) Tick(ctx context.Context) (Report, error) {
	frame, err := r.host.Frame(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetching frame: %w", err)
	}

	r.mu.RLock()
	prev := r.last
	r.mu.RUnlock()

	next, err := r.engine.Step(prev, frame)
	if err != nil {
		return Report{}, fmt.Errorf("director step: %w", err)
	}

	if changed := r.policy.Apply(next.Groups); changed > 0 {
		slog.Debug("spawn bounds adjusted", "tick", next.Tick, "groups", changed)
	}

	var (
		spawned []spawn.Request
		pending int
	)
	if r.dispatcher != nil {
		q := r.dispatcher.Queue()
		q.Refill(frame.Clock)
		spawned, err = r.dispatcher.Dispatch(ctx, next.Groups, next.Players, len(next.Antagonists), frame.Clock)
		if err != nil {
			return Report{}, err
		}
		pending = q.Pending()
	}

	r.mu.Lock()
	r.last = next
	r.mu.Unlock()
	r.ticks.Add(1)

	report := NewReport(next, pending, spawned)
	report.RunID = r.runID

	for _, s := range r.sinks {
		if err := s.Publish(ctx, report); err != nil {
			slog.Warn("publishing report", "tick", report.Tick, "error", err)
		}
	}

	slog.Debug("tick completed",
		"tick", next.Tick,
		"players", len(next.Players),
		"antagonists", len(next.Antagonists),
		"groups", len(next.Groups))

	return report, nil
}

// Ticks returns the number of completed ticks.
func (r *Runner) Ticks() uint64 { return r.ticks.Load() }

// Last returns the most recent snapshot, nil before the first tick.
func (r *Runner) Last() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}
