package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/tankrun/internal/cadence"
	"github.com/udisondev/tankrun/internal/group"
	"github.com/udisondev/tankrun/internal/model"
)

// Request asks the host to place one antagonist near a group.
type Request struct {
	Group    model.ActorID  `json:"group"`
	Anchor   model.Location `json:"anchor"`
	Progress float64        `json:"progress"`
	Logic    model.Logic    `json:"logic"`
	Stress   float64        `json:"stress"`
}

// Executor places antagonists in the level. The director never creates
// antagonists itself; it only hands requests over.
type Executor interface {
	Spawn(ctx context.Context, req Request) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req Request) error

// Spawn calls f.
func (f ExecutorFunc) Spawn(ctx context.Context, req Request) error { return f(ctx, req) }

// Dispatcher hands requesting groups to the executor while the queue allows.
type Dispatcher struct {
	queue    *Queue
	executor Executor
	rand     cadence.Source
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(queue *Queue, executor Executor, rand cadence.Source) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		executor: executor,
		rand:     rand,
	}
}

// Queue returns the pending-spawn queue.
func (d *Dispatcher) Queue() *Queue { return d.queue }

// Dispatch walks the groups in route order and sends one request for every
// group that is asking, as long as the queue has entries and live stays
// under the limit. A dispatched group restarts its cadence at now. Executor
// failures are logged and the entry goes back to the queue; only context
// cancellation is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, groups []*group.Group, players []*model.Player, live int, now time.Duration) ([]Request, error) {
	var sent []Request

	for _, g := range groups {
		c := g.Cadence()
		if !c.Requesting() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("dispatching spawns: %w", err)
		}
		if !d.queue.Take(live) {
			slog.Debug("spawn deferred",
				"group", g.ID(),
				"pending", d.queue.Pending(),
				"live", live)
			continue
		}

		anchor := players[g.Anchor()]
		req := Request{
			Group:    g.ID(),
			Anchor:   anchor.Location(),
			Progress: anchor.Progress(),
			Logic:    g.Logic(),
			Stress:   g.Stress(),
		}

		if err := d.executor.Spawn(ctx, req); err != nil {
			d.queue.Return()
			slog.Warn("spawn failed",
				"group", g.ID(),
				"error", err)
			continue
		}

		c.MarkSpawned(now, d.rand)
		live++
		sent = append(sent, req)

		slog.Info("antagonist requested",
			"group", g.ID(),
			"logic", g.Logic(),
			"stress", g.Stress(),
			"nextInterval", c.Interval())
	}
	return sent, nil
}
