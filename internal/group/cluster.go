package group

import (
	"cmp"
	"slices"

	"github.com/udisondev/tankrun/internal/model"
)

// SortPlayers orders the store by descending route progress. Ties keep
// their relative order.
func SortPlayers(players []*model.Player) {
	slices.SortStableFunc(players, func(a, b *model.Player) int {
		return cmp.Compare(b.Progress(), a.Progress())
	})
}

// Cluster partitions a progress-sorted player store by single-linkage
// chaining: a player joins a forming group when its maxD to any current
// member is within radius. Each group is seeded with the highest-progress
// unassigned player, so groups come out in route order and members are
// returned in progress order.
func Cluster(players []*model.Player, radius float64) [][]int {
	n := len(players)
	if n == 0 {
		return nil
	}

	assigned := make([]bool, n)
	var clusters [][]int

	for seed := range n {
		if assigned[seed] {
			continue
		}
		assigned[seed] = true
		members := []int{seed}

		for grew := true; grew; {
			grew = false
			for j := range n {
				if assigned[j] {
					continue
				}
				if reaches(players, members, j, radius) {
					assigned[j] = true
					members = append(members, j)
					grew = true
				}
			}
		}

		slices.Sort(members)
		clusters = append(clusters, members)
	}
	return clusters
}

func reaches(players []*model.Player, members []int, j int, radius float64) bool {
	for _, m := range members {
		if model.MaxD(players[m], players[j]) <= radius {
			return true
		}
	}
	return false
}

// Rebuild turns this tick's clusters into groups. Each cluster inherits from
// the previous group owning its anchor; when the anchor has no history (a
// freshly revived player, say) the next member is tried, and so on. Only a
// cluster with no history at all starts a brand-new group. Previous groups
// are cloned, never modified.
func Rebuild(prev []*Group, players []*model.Player, clusters [][]int, p Params) []*Group {
	owner := make(map[model.ActorID]*Group)
	for _, g := range prev {
		for _, id := range g.memberIDs {
			owner[id] = g
		}
	}

	groups := make([]*Group, 0, len(clusters))
	for _, members := range clusters {
		if len(members) == 0 {
			continue
		}

		var g *Group
		for _, idx := range members {
			if src, ok := owner[players[idx].ID()]; ok {
				g = src.Clone()
				break
			}
		}
		if g == nil {
			g = newGroup(p)
		}

		g.rebind(players, members, p)
		groups = append(groups, g)
	}
	return groups
}
