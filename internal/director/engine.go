package director

import (
	"fmt"
	"time"

	"github.com/udisondev/tankrun/internal/cadence"
	"github.com/udisondev/tankrun/internal/group"
	"github.com/udisondev/tankrun/internal/model"
	"github.com/udisondev/tankrun/internal/stress"
	"github.com/udisondev/tankrun/internal/tracker"
)

// Frame is one enumeration of the host: every connected actor plus the clock
// and the route length of the level.
type Frame struct {
	Clock       time.Duration
	RouteLength float64
	Actors      []model.Actor
}

// Snapshot is the state a tick leaves behind for the next one.
type Snapshot struct {
	Tick  uint64
	Clock time.Duration

	// TotalPlayers counts every player the host reported, dead and away
	// included.
	TotalPlayers int

	Players     []*model.Player
	Antagonists []*model.Antagonist
	Groups      []*group.Group
}

// Engine runs the tick pipeline. It holds no per-tick state: everything a
// tick needs from the past comes in through the previous snapshot.
type Engine struct {
	params Params
	rand   cadence.Source
}

// NewEngine creates an engine. rand drives the cadence interval draws of
// brand-new groups.
func NewEngine(params Params, rand cadence.Source) *Engine {
	return &Engine{params: params, rand: rand}
}

// Params returns the engine tuning.
func (e *Engine) Params() Params { return e.params }

// Step computes the next snapshot: reconcile players, order them by progress,
// reconcile antagonists, cluster and rebuild groups, score stress, then raise
// the spawn-request flags. prev may be nil on the first tick.
func (e *Engine) Step(prev *Snapshot, f Frame) (*Snapshot, error) {
	if prev == nil {
		prev = &Snapshot{}
	}

	observedPlayers, observedAntagonists, total := Split(f.Actors)

	env := model.Env{
		Now:             f.Clock,
		RouteLength:     f.RouteLength,
		EligiblePlayers: len(observedPlayers),
		Tuning:          e.params.Tuning,
	}

	players, err := tracker.Players(observedPlayers, prev.Players, env)
	if err != nil {
		return nil, fmt.Errorf("tick %d players: %w", prev.Tick+1, err)
	}
	group.SortPlayers(players)

	antagonists, err := tracker.Antagonists(observedAntagonists, prev.Antagonists, env)
	if err != nil {
		return nil, fmt.Errorf("tick %d antagonists: %w", prev.Tick+1, err)
	}

	groups := group.Rebuild(prev.Groups, players, group.Cluster(players, e.params.SpreadRadius), group.Params{
		Env:          env,
		SpreadRadius: e.params.SpreadRadius,
		Bounds:       cadence.StandardBounds(e.params.GoalFrequency),
		Rand:         e.rand,
	})

	stress.New(players, antagonists, groups).Evaluate()

	for _, g := range groups {
		g.Cadence().SetRequesting(g.Ready(f.Clock) && g.Logic().CanRequestSpawn())
	}

	return &Snapshot{
		Tick:         prev.Tick + 1,
		Clock:        f.Clock,
		TotalPlayers: total,
		Players:      players,
		Antagonists:  antagonists,
		Groups:       groups,
	}, nil
}

// Split separates a host enumeration into eligible players (alive and not
// away), antagonists and the total number of players.
func Split(actors []model.Actor) (players, antagonists []model.Actor, total int) {
	for _, a := range actors {
		switch a.Kind {
		case model.KindPlayer:
			total++
			if a.Dead || a.Away {
				continue
			}
			players = append(players, a)
		case model.KindAntagonist:
			antagonists = append(antagonists, a)
		}
	}
	return players, antagonists, total
}
