package model

import (
	"fmt"
	"time"

	"github.com/udisondev/tankrun/internal/window"
)

// Motion classification bounds, in progress/world units over the motion window.
const (
	// progress change within ±NoMovementBound counts as standing still
	NoMovementBound = 110.0

	RushSliceBound   = 300.0
	DefendSliceBound = 150.0
	BackSliceBound   = -300.0
)

// Behavior window classification ratios.
const (
	majorityRatio  = 0.6
	tailStartRatio = 0.6
	tailRatio      = 0.75
)

// MotionSample is one (position, progress) entry of the motion window.
type MotionSample struct {
	Location Location
	Progress float64
}

// Player tracks one eligible (alive, not away) player across ticks and
// carries its movement and behavior state machines.
type Player struct {
	id        ActorID
	createdAt time.Duration

	location        Location
	progress        float64
	incapacitated   bool
	inFinalSafeZone bool

	// markedSafe may be set by the player itself or by its group,
	// but only the group clears it.
	markedSafe bool

	slice  Slice
	status Status

	motion   *window.Window[MotionSample]
	behavior *window.Window[Slice]

	stress float64
	logic  Logic
}

// NewPlayer creates a record from a player observation. The motion window is
// seeded with the current sample and the behavior window is pre-filled with
// rush tags, so a fresh player starts out as Rush unless it is already down.
func NewPlayer(a Actor, env Env) (*Player, error) {
	if a.Kind != KindPlayer {
		return nil, fmt.Errorf("new player %d from %s actor: %w", a.ID, a.Kind, ErrWrongKind)
	}

	motion, err := window.New[MotionSample](env.Tuning.MotionSamples)
	if err != nil {
		return nil, fmt.Errorf("new player %d motion window: %w", a.ID, err)
	}
	behavior, err := window.New[Slice](env.Tuning.BehaviorSamples)
	if err != nil {
		return nil, fmt.Errorf("new player %d behavior window: %w", a.ID, err)
	}

	p := &Player{
		id:              a.ID,
		createdAt:       env.Now,
		location:        a.Location,
		progress:        a.Progress,
		incapacitated:   a.Down(),
		inFinalSafeZone: a.InFinalSafeZone,
		slice:           SliceRush,
		status:          StatusRush,
		motion:          motion,
		behavior:        behavior,
		logic:           LogicRush,
	}
	p.motion.Push(MotionSample{Location: a.Location, Progress: a.Progress})
	p.behavior.Fill(SliceRush)
	p.EvaluateStatus()

	return p, nil
}

// ID returns the player identity.
func (p *Player) ID() ActorID { return p.id }

// Location returns the current position.
func (p *Player) Location() Location { return p.location }

// Progress returns the current route progress.
func (p *Player) Progress() float64 { return p.progress }

// Incapacitated reports whether the player is down or ledge-hanging.
func (p *Player) Incapacitated() bool { return p.incapacitated }

// MarkedSafe reports whether the player carries the safe flag.
func (p *Player) MarkedSafe() bool { return p.markedSafe }

// Slice returns the current movement slice.
func (p *Player) Slice() Slice { return p.slice }

// Status returns the current behavior status.
func (p *Player) Status() Status { return p.status }

// Stress returns the stress value assigned by the stress model.
func (p *Player) Stress() float64 { return p.stress }

// SetStress is called by the stress model only.
func (p *Player) SetStress(v float64) { p.stress = v }

// Logic returns the logic inherited from the owning group.
func (p *Player) Logic() Logic { return p.logic }

// SetLogic is called by the group state machine only.
func (p *Player) SetLogic(l Logic) { p.logic = l }

// MotionWindow returns a copy of the motion window, oldest first.
func (p *Player) MotionWindow() []MotionSample { return p.motion.Snapshot() }

// BehaviorWindow returns a copy of the behavior window, oldest first.
func (p *Player) BehaviorWindow() []Slice { return p.behavior.Snapshot() }

// SetMarkedSafe sets or clears the safe flag. Groups use it to force
// members into or out of Safe; the player itself never clears the flag.
func (p *Player) SetMarkedSafe(v bool) {
	p.markedSafe = v
}

// Update refreshes the record from a new observation and steps the state
// machines. It returns false and leaves the record untouched when the
// identity does not match or the record was created less than one tick ago.
func (p *Player) Update(a Actor, env Env) bool {
	if a.ID != p.id || a.Kind != KindPlayer {
		return false
	}
	if env.Now-p.createdAt < env.Tuning.MinAge {
		return false
	}

	p.location = a.Location
	p.progress = a.Progress
	p.incapacitated = a.Down()
	p.inFinalSafeZone = a.InFinalSafeZone

	p.checkSelfSafe(env)

	p.motion.Push(MotionSample{Location: p.location, Progress: p.progress})
	p.slice = NextSlice(p.slice, p.motion.Snapshot(), p.motion.Cap())
	p.behavior.Push(p.slice)
	p.EvaluateStatus()

	return true
}

func (p *Player) checkSelfSafe(env Env) {
	if p.inFinalSafeZone && !p.incapacitated &&
		env.NearRouteEnd(p.progress) && env.EligiblePlayers > 1 {
		p.markedSafe = true
	}
}

// EvaluateStatus recomputes the status: Incapacitated wins, then the safe
// flag, then the behavior window.
func (p *Player) EvaluateStatus() Status {
	p.status = p.status.Normalize()

	switch {
	case p.incapacitated:
		p.status = StatusIncapacitated
	case p.markedSafe:
		p.status = StatusSafe
	default:
		p.status = ClassifyBehavior(p.behavior.Snapshot())
	}
	return p.status
}

// Displacement returns the signed progress displacement over a full motion
// window: the Euclidean distance between its endpoints, signed by the
// direction of progress, or zero when progress moved less than
// NoMovementBound either way or the window is not yet full.
func Displacement(samples []MotionSample, capacity int) float64 {
	if len(samples) == 0 || len(samples) < capacity {
		return 0
	}

	first, last := samples[0], samples[len(samples)-1]
	gained := last.Progress - first.Progress

	switch {
	case gained > NoMovementBound:
		return last.Location.Distance(first.Location)
	case gained < -NoMovementBound:
		return -last.Location.Distance(first.Location)
	default:
		return 0
	}
}

// NextSlice derives the movement slice from the motion window. Displacements
// between the defend and rush/back bounds keep the previous slice, and so
// does a window that is not yet full.
func NextSlice(prev Slice, samples []MotionSample, capacity int) Slice {
	prev = prev.Normalize()
	if len(samples) < capacity {
		return prev
	}

	d := Displacement(samples, capacity)
	switch {
	case d > RushSliceBound:
		return SliceRush
	case d >= -DefendSliceBound && d <= DefendSliceBound:
		return SliceDefend
	case d < BackSliceBound:
		return SliceBack
	default:
		return prev
	}
}

// ClassifyBehavior derives a status from the behavior window. Priority is
// Rush, then Back; Defend is only ever the fallback.
func ClassifyBehavior(tags []Slice) Status {
	n := float64(len(tags))
	if n == 0 {
		return StatusRush
	}

	var rush, back, rushTail, backTail, tail int
	for i, tag := range tags {
		inTail := float64(i) >= tailStartRatio*n
		if inTail {
			tail++
		}
		switch tag {
		case SliceRush:
			rush++
			if inTail {
				rushTail++
			}
		case SliceBack:
			back++
			if inTail {
				backTail++
			}
		}
	}

	tailNeed := tailRatio * float64(tail)
	switch {
	case float64(rush) >= majorityRatio*n || (tail > 0 && float64(rushTail) >= tailNeed):
		return StatusRush
	case float64(back) >= majorityRatio*n || (tail > 0 && float64(backTail) >= tailNeed):
		return StatusBack
	default:
		return StatusDefend
	}
}
