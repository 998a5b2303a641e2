package group

import (
	"github.com/udisondev/tankrun/internal/model"
)

const logicMajority = 0.5

// safeGate decides whether the group should be in Safe logic. It enters when
// a Safe member sits near the route end, and leaves when everyone is down or
// when a non-Safe, non-Incapacitated member exists without such a Safe
// member. Otherwise the previous decision holds.
func (g *Group) safeGate(players []*model.Player, env model.Env) bool {
	if g.activeCount == 0 {
		return false
	}

	other := false
	for _, idx := range g.members {
		p := players[idx]
		switch p.Status() {
		case model.StatusIncapacitated:
		case model.StatusSafe:
			if env.NearRouteEnd(p.Progress()) {
				return true
			}
		default:
			other = true
		}
	}
	if other {
		return false
	}
	return g.enterSafe
}

// deriveLogic sets the group logic and pushes it back onto the members.
// Safe logic forces every member into Safe status; leaving it forces Safe
// members out and re-runs their own state machine before the tally.
func (g *Group) deriveLogic(players []*model.Player) {
	g.logic = g.logic.Normalize()

	switch {
	case g.enterSafe:
		g.logic = model.LogicSafe
		for _, idx := range g.members {
			p := players[idx]
			if p.Status() != model.StatusSafe {
				p.SetMarkedSafe(true)
				p.EvaluateStatus()
			}
		}

	case g.activeCount == 0:
		g.logic = model.LogicIncapacitated

	default:
		var rush, back int
		for _, idx := range g.members {
			p := players[idx]
			if p.Status() == model.StatusSafe {
				p.SetMarkedSafe(false)
				p.EvaluateStatus()
			}
			switch p.Status() {
			case model.StatusRush:
				rush++
			case model.StatusBack:
				back++
			}
		}

		n := float64(g.memberCount)
		switch {
		case float64(rush)/n >= logicMajority:
			g.logic = model.LogicRush
		case float64(back)/n >= logicMajority:
			g.logic = model.LogicBack
		default:
			g.logic = model.LogicDefend
		}
	}

	for _, idx := range g.members {
		players[idx].SetLogic(g.logic)
	}
}
