// Package stress converts the spatial and progress relationships between
// antagonists and players into per-player and per-group stress values.
package stress

import (
	"math"

	"github.com/udisondev/tankrun/internal/group"
	"github.com/udisondev/tankrun/internal/model"
)

const (
	// MaxContribution is the stress one antagonist adds at point-blank range.
	MaxContribution = 100.0

	rushRange   = 2100.0
	defendFlat  = 1050.0
	defendRange = 3150.0
	backRange   = 3150.0

	gammaBase  = 0.9
	gammaFloor = 0.5

	// Alpha is how much closer than the target a bystander must be to the
	// antagonist to take its pressure directly.
	Alpha = 50.0
)

// Curve maps a distance to a stress contribution according to the logic of
// the subject's group. Negative distances count as point-blank.
func Curve(logic model.Logic, d float64) float64 {
	if d < 0 {
		switch logic {
		case model.LogicRush, model.LogicDefend, model.LogicBack:
			return MaxContribution
		}
		return 0
	}

	switch logic {
	case model.LogicRush:
		if d <= rushRange {
			return MaxContribution * (rushRange - d) / rushRange
		}
	case model.LogicDefend:
		if d <= defendFlat {
			return MaxContribution
		}
		if d <= defendRange {
			return MaxContribution * (defendRange - d) / (defendRange - defendFlat)
		}
	case model.LogicBack:
		if d <= backRange {
			return MaxContribution * (backRange - d) / backRange
		}
	}
	return 0
}

// Gamma returns the decay for a contribution routed through a target that is
// separation ranks away from the subject.
func Gamma(separation int) float64 {
	if separation < 0 {
		separation = -separation
	}
	return math.Max(math.Pow(gammaBase, float64(separation)), gammaFloor)
}

type seat struct {
	group int
	rank  int
}

// Model scores one tick. It indexes the player store once so that each
// pairwise contribution is a constant-time lookup.
type Model struct {
	players     []*model.Player
	antagonists []*model.Antagonist
	groups      []*group.Group

	byID  map[model.ActorID]int
	seats []seat
}

// New prepares a scoring pass over a tick's stores.
func New(players []*model.Player, antagonists []*model.Antagonist, groups []*group.Group) *Model {
	m := &Model{
		players:     players,
		antagonists: antagonists,
		groups:      groups,
		byID:        make(map[model.ActorID]int, len(players)),
		seats:       make([]seat, len(players)),
	}
	for i, p := range players {
		m.byID[p.ID()] = i
	}
	for gi, g := range groups {
		for rank, idx := range g.Members() {
			m.seats[idx] = seat{group: gi, rank: rank}
		}
	}
	return m
}

// Evaluate assigns stress to every player, then to every group.
func (m *Model) Evaluate() {
	for i := range m.players {
		m.players[i].SetStress(m.Player(i))
	}
	for _, g := range m.groups {
		g.SetStress(GroupStress(g, m.players))
	}
}

// Player computes the stress of the player at store index i.
func (m *Model) Player(i int) float64 {
	subject := m.players[i]
	if !subject.Status().Active() {
		return 0
	}
	logic := subject.Logic()

	var total float64
	for _, n := range m.antagonists {
		id, ok := n.Target()
		if !ok {
			continue
		}
		ti, ok := m.byID[id]
		if !ok {
			continue
		}

		if ti == i {
			total += Curve(logic, model.MaxD(subject, n))
			continue
		}

		target := m.players[ti]
		toSubject := model.MaxD(subject, n)
		toTarget := model.MaxD(target, n)

		d := toTarget + model.MaxD(subject, target)
		if toSubject <= toTarget-Alpha {
			d = toSubject
		}
		total += Curve(logic, d) * m.gamma(i, ti)
	}
	return total
}

// gamma derives the decay between subject i and target t from their ranks.
func (m *Model) gamma(i, t int) float64 {
	s, ts := m.seats[i], m.seats[t]
	if s.group == ts.group {
		return Gamma(s.rank - ts.rank)
	}

	gs, gt := m.groups[s.group], m.groups[ts.group]
	ps := m.players[gs.Anchor()].Progress()
	pt := m.players[gt.Anchor()].Progress()

	switch {
	case ps > pt:
		return Gamma(gs.MemberCount() - s.rank + ts.rank)
	case pt > ps:
		return Gamma(gt.MemberCount() - ts.rank + s.rank)
	default:
		return Gamma((gs.MemberCount() + gt.MemberCount()) / 2)
	}
}

// GroupStress picks the representative stress of a group: the leading
// active member when rushing, the mean over members still standing when
// defending, the trailing active member when backing off.
func GroupStress(g *group.Group, players []*model.Player) float64 {
	members := g.Members()

	switch g.Logic() {
	case model.LogicRush:
		for _, idx := range members {
			if players[idx].Status().Active() {
				return players[idx].Stress()
			}
		}

	case model.LogicDefend:
		var sum float64
		var n int
		for _, idx := range members {
			if players[idx].Status() != model.StatusIncapacitated {
				sum += players[idx].Stress()
				n++
			}
		}
		if n > 0 {
			return sum / float64(n)
		}

	case model.LogicBack:
		for i := len(members) - 1; i >= 0; i-- {
			if players[members[i]].Status().Active() {
				return players[members[i]].Stress()
			}
		}
	}
	return 0
}
