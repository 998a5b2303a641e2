package director

import (
	"github.com/udisondev/tankrun/internal/cadence"
	"github.com/udisondev/tankrun/internal/model"
	"github.com/udisondev/tankrun/internal/spawn"
)

// Report is the externally visible summary of one tick.
type Report struct {
	RunID string `json:"run_id,omitempty"`
	Tick  uint64 `json:"tick"`
	// ClockMS is the host clock in milliseconds.
	ClockMS int64 `json:"clock_ms"`

	TotalPlayers    int `json:"total_players"`
	EligiblePlayers int `json:"eligible_players"`
	Antagonists     int `json:"antagonists"`
	Pending         int `json:"pending"`

	Groups  []GroupReport   `json:"groups"`
	Players []PlayerReport  `json:"players"`
	Spawned []spawn.Request `json:"spawned,omitempty"`
}

// GroupReport describes one group.
type GroupReport struct {
	ID             model.ActorID   `json:"id"`
	Logic          model.Logic     `json:"logic"`
	Stress         float64         `json:"stress"`
	Ready          bool            `json:"ready"`
	Requesting     bool            `json:"requesting"`
	Anchor         model.Location  `json:"anchor"`
	AnchorProgress float64         `json:"anchor_progress"`
	Members        int             `json:"members"`
	Active         int             `json:"active"`
	MemberIDs      []model.ActorID `json:"member_ids"`
	Bounds         cadence.Bounds  `json:"bounds"`
	IntervalMS     int64           `json:"interval_ms"`
}

// PlayerReport describes one tracked player.
type PlayerReport struct {
	ID       model.ActorID `json:"id"`
	Progress float64       `json:"progress"`
	Slice    model.Slice   `json:"slice"`
	Status   model.Status  `json:"status"`
	Logic    model.Logic   `json:"logic"`
	Stress   float64       `json:"stress"`
}

// NewReport summarizes a snapshot.
func NewReport(s *Snapshot, pending int, spawned []spawn.Request) Report {
	r := Report{
		Tick:            s.Tick,
		ClockMS:         s.Clock.Milliseconds(),
		TotalPlayers:    s.TotalPlayers,
		EligiblePlayers: len(s.Players),
		Antagonists:     len(s.Antagonists),
		Pending:         pending,
		Groups:          make([]GroupReport, 0, len(s.Groups)),
		Players:         make([]PlayerReport, 0, len(s.Players)),
		Spawned:         spawned,
	}

	for _, g := range s.Groups {
		anchor := s.Players[g.Anchor()]
		c := g.Cadence()
		r.Groups = append(r.Groups, GroupReport{
			ID:             g.ID(),
			Logic:          g.Logic(),
			Stress:         g.Stress(),
			Ready:          g.Ready(s.Clock),
			Requesting:     c.Requesting(),
			Anchor:         anchor.Location(),
			AnchorProgress: anchor.Progress(),
			Members:        g.MemberCount(),
			Active:         g.ActiveCount(),
			MemberIDs:      g.MemberIDs(),
			Bounds:         c.Bounds(),
			IntervalMS:     c.Interval().Milliseconds(),
		})
	}

	for _, p := range s.Players {
		r.Players = append(r.Players, PlayerReport{
			ID:       p.ID(),
			Progress: p.Progress(),
			Slice:    p.Slice(),
			Status:   p.Status(),
			Logic:    p.Logic(),
			Stress:   p.Stress(),
		})
	}
	return r
}
