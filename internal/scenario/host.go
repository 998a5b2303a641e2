package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/udisondev/tankrun/internal/director"
	"github.com/udisondev/tankrun/internal/model"
	"github.com/udisondev/tankrun/internal/spawn"
)

// FirstSpawnedID is the id given to the first antagonist a host spawns.
const FirstSpawnedID model.ActorID = 10000

// Host replays a scenario on a simulated clock. Every Frame call advances
// the clock by one scenario tick. Antagonists it spawns stay in every later
// frame, aggroed on the group that asked for them.
type Host struct {
	sc *Scenario

	mu      sync.Mutex
	clock   time.Duration
	nextID  model.ActorID
	spawned []model.Actor
}

// NewHost creates a host positioned at clock zero.
func NewHost(sc *Scenario) *Host {
	return &Host{
		sc:     sc,
		nextID: FirstSpawnedID,
	}
}

// Frame implements director.Host.
func (h *Host) Frame(ctx context.Context) (director.Frame, error) {
	if err := ctx.Err(); err != nil {
		return director.Frame{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clock > h.sc.Duration() {
		return director.Frame{}, director.ErrEndOfRun
	}

	var actors []model.Actor
	if f := h.frameAt(h.clock); f != nil {
		actors = make([]model.Actor, 0, len(f.Actors)+len(h.spawned))
		for _, a := range f.Actors {
			actors = append(actors, a.Model())
		}
	}
	actors = append(actors, h.spawned...)

	frame := director.Frame{
		Clock:       h.clock,
		RouteLength: h.sc.RouteLength,
		Actors:      actors,
	}
	h.clock += h.sc.Tick()
	return frame, nil
}

// frameAt returns the latest frame at or before clock.
func (h *Host) frameAt(clock time.Duration) *Frame {
	var found *Frame
	for i := range h.sc.Frames {
		if time.Duration(h.sc.Frames[i].AtMS)*time.Millisecond > clock {
			break
		}
		found = &h.sc.Frames[i]
	}
	return found
}

// Spawn implements spawn.Executor.
func (h *Host) Spawn(ctx context.Context, req spawn.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.spawned = append(h.spawned, model.Actor{
		Kind:     model.KindAntagonist,
		ID:       h.nextID,
		Location: req.Anchor,
		Progress: req.Progress,
		Target:   req.Group,
	})
	h.nextID++
	return nil
}

// Spawned returns the antagonists spawned so far.
func (h *Host) Spawned() []model.Actor {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Actor, len(h.spawned))
	copy(out, h.spawned)
	return out
}

// Clock returns the clock of the next frame.
func (h *Host) Clock() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clock
}
