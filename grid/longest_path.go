package grid

import (
	"sort"

	"deliveroo/model"
)

// candidatePairsK bounds how many Manhattan-ranked candidate pairs LongestPath
// actually A*-evaluates.
const candidatePairsK = 10

// LongestPath computes the maximal shortest-path cost between any two
// strategic points (parcel generators union delivery zones), used as a
// cache-sizing probe (e.g. for occupancy-entry TTLs). Pairs are pre-ranked
// by Manhattan distance and only the top candidatePairsK are A*-evaluated,
// trading exactness for bounded cost on large maps.
func (g *Grid) LongestPath() int {
	strategic := append(append([]model.Point{}, g.generators...), g.deliveryZones...)
	if len(strategic) < 2 {
		return 0
	}

	type pair struct {
		i, j, manhattan int
	}
	pairs := make([]pair, 0, len(strategic)*(len(strategic)-1)/2)
	for i := 0; i < len(strategic); i++ {
		for j := i + 1; j < len(strategic); j++ {
			d := strategic[i].Manhattan(strategic[j])
			pairs = append(pairs, pair{i, j, d})
		}
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].manhattan > pairs[b].manhattan })

	k := candidatePairsK
	if k > len(pairs) {
		k = len(pairs)
	}

	longest := 0
	for _, pr := range pairs[:k] {
		a, b := strategic[pr.i], strategic[pr.j]
		path, err := g.FindPath(a, b, nil, nil)
		if err != nil {
			continue
		}
		if path.Cost > longest {
			longest = path.Cost
		}
	}
	return longest
}
