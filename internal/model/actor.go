package model

import (
	"errors"
	"time"
)

// ErrWrongKind is returned when a record is built from an actor of another kind.
var ErrWrongKind = errors.New("actor kind mismatch")

// ActorID is the stable per-session identity of an actor. It is not tied to
// any account, so an idle player taking over a bot keeps the bot's identity.
type ActorID uint32

// NoTarget marks an antagonist without an aggro target.
const NoTarget ActorID = 0

// ActorKind distinguishes players from antagonists.
type ActorKind int32

const (
	KindUnknown ActorKind = iota
	KindPlayer
	KindAntagonist
)

// String returns human-readable kind name
func (k ActorKind) String() string {
	switch k {
	case KindPlayer:
		return "PLAYER"
	case KindAntagonist:
		return "ANTAGONIST"
	default:
		return "UNKNOWN"
	}
}

// Actor is one raw observation of a connected actor, as enumerated by the host
// for the current tick.
type Actor struct {
	Kind     ActorKind `json:"kind"`
	ID       ActorID   `json:"id"`
	Location Location  `json:"location"`
	Progress float64   `json:"progress"`

	// Player flags.
	Dead            bool `json:"dead,omitempty"`
	Away            bool `json:"away,omitempty"`
	Incapacitated   bool `json:"incapacitated,omitempty"`
	LedgeHanging    bool `json:"ledge_hanging,omitempty"`
	InFinalSafeZone bool `json:"in_final_safe_zone,omitempty"`

	// Antagonist aggro target, NoTarget when it has none.
	Target ActorID `json:"target,omitempty"`
}

// Down reports whether a player observation counts as incapacitated.
func (a Actor) Down() bool {
	return a.Incapacitated || a.LedgeHanging
}

// Tuning holds the fixed parameters of the per-player state machine.
type Tuning struct {
	// MotionSamples is the motion window length in ticks (2s worth).
	MotionSamples int
	// BehaviorSamples is the behavior window length in ticks (10s worth).
	BehaviorSamples int
	// MinAge is the minimum record age before Update is accepted (one tick).
	MinAge time.Duration
	// SafeDistance is the progress distance from the route end under which
	// a player in the final safe area may be marked safe.
	SafeDistance float64
}

// DefaultTuning returns the tuning for a 100ms tick.
func DefaultTuning() Tuning {
	return Tuning{
		MotionSamples:   20,
		BehaviorSamples: 100,
		MinAge:          100 * time.Millisecond,
		SafeDistance:    1000,
	}
}

// Env is the per-tick context handed to record constructors and updates.
type Env struct {
	Now         time.Duration
	RouteLength float64
	// EligiblePlayers counts living, non-away players this tick.
	EligiblePlayers int
	Tuning          Tuning
}

// NearRouteEnd reports whether progress is within the safe distance of the route end.
func (e Env) NearRouteEnd(progress float64) bool {
	d := e.RouteLength - progress
	if d < 0 {
		d = -d
	}
	return d < e.Tuning.SafeDistance
}
