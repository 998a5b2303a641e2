// Package group clusters players into movement groups, carries group
// identity from one tick to the next and runs the group-level state machine.
//
// Players live in a per-tick store (a slice sorted by descending progress);
// groups refer to them by index into that store.
package group

import (
	"slices"
	"time"

	"github.com/udisondev/tankrun/internal/cadence"
	"github.com/udisondev/tankrun/internal/model"
)

// DefaultSpreadRadius is the chaining threshold of the clustering, in maxD units.
const DefaultSpreadRadius = 660.0

// Params holds what a group rebuild needs besides the player store.
type Params struct {
	Env          model.Env
	SpreadRadius float64
	// Bounds seeds the cadence of brand-new groups.
	Bounds cadence.Bounds
	Rand   cadence.Source
}

// Group is one movement group of a tick.
type Group struct {
	id        model.ActorID
	members   []int
	memberIDs []model.ActorID

	memberCount int
	activeCount int

	logic     model.Logic
	stress    float64
	enterSafe bool

	cadence cadence.Cadence
}

func newGroup(p Params) *Group {
	return &Group{
		logic:   model.LogicRush,
		cadence: cadence.New(p.Bounds, p.Env.Now, p.Rand),
	}
}

// Clone returns a deep copy sharing no mutable state with g.
func (g *Group) Clone() *Group {
	c := *g
	c.members = slices.Clone(g.members)
	c.memberIDs = slices.Clone(g.memberIDs)
	return &c
}

// ID returns the continuity identity: the anchor member's id.
func (g *Group) ID() model.ActorID { return g.id }

// Members returns the member indices in progress order.
func (g *Group) Members() []int { return slices.Clone(g.members) }

// MemberIDs returns the member identities in progress order.
func (g *Group) MemberIDs() []model.ActorID { return slices.Clone(g.memberIDs) }

// Anchor returns the store index of the highest-progress member.
func (g *Group) Anchor() int { return g.members[0] }

// Contains reports whether the player identity belongs to the group.
func (g *Group) Contains(id model.ActorID) bool {
	return slices.Contains(g.memberIDs, id)
}

// MemberCount returns the number of members.
func (g *Group) MemberCount() int { return g.memberCount }

// ActiveCount returns the number of members that are not incapacitated.
func (g *Group) ActiveCount() int { return g.activeCount }

// Logic returns the group logic.
func (g *Group) Logic() model.Logic { return g.logic }

// EnterSafe reports the pending Safe-logic decision.
func (g *Group) EnterSafe() bool { return g.enterSafe }

// Stress returns the representative stress.
func (g *Group) Stress() float64 { return g.stress }

// SetStress is called by the stress model only.
func (g *Group) SetStress(v float64) { g.stress = v }

// Cadence exposes the spawn bookkeeping for external policy.
func (g *Group) Cadence() *cadence.Cadence { return &g.cadence }

// Ready reports whether the spawn interval has elapsed.
func (g *Group) Ready(now time.Duration) bool { return g.cadence.Due(now) }

// rebind attaches the group to a new member set and re-derives its state.
func (g *Group) rebind(players []*model.Player, members []int, p Params) {
	g.members = slices.Clone(members)
	g.memberIDs = make([]model.ActorID, len(members))
	g.activeCount = 0
	for i, idx := range members {
		g.memberIDs[i] = players[idx].ID()
		if players[idx].Status() != model.StatusIncapacitated {
			g.activeCount++
		}
	}
	g.memberCount = len(members)
	g.id = g.memberIDs[0]

	g.enterSafe = g.safeGate(players, p.Env)
	g.deriveLogic(players)
}
