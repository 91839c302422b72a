package utility

import (
	"sort"

	"deliveroo/grid"
	"deliveroo/model"
)

// AgentPosition pairs an agent id with its current grid position, ordered
// deterministically (by ID) to satisfy the partitioning tie-break rule.
type AgentPosition struct {
	AgentID string
	Position model.Point
}

// ComputePartitioning assigns every parcel-generator tile to one of the
// participating agents in two phases: a Voronoi assignment by A* distance,
// then a capacity-rebalancing pass. Deterministic given the same agent
// positions, grid and tie-break rule.
func ComputePartitioning(g *grid.Grid, agents []AgentPosition, occupied grid.OccupiedSet) map[string]string {
	ordered := append([]AgentPosition(nil), agents...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].AgentID < ordered[j].AgentID })

	generators := g.Generators()
	if len(ordered) == 0 || len(generators) == 0 {
		return map[string]string{}
	}

	assignment := map[string]string{} // "x,y" -> agent id
	distance := map[string]int{} // "x,y" -> current assigned distance

	// Phase 1: Voronoi assignment by nearest A* distance.
	for _, gen := range generators {
		bestAgent := ""
		bestDist := -1
		for _, a := range ordered {
			d, ok := pathCost(g, a.Position, gen, occupied)
			if !ok {
				continue
			}
			if bestDist == -1 || d < bestDist {
				bestDist = d
				bestAgent = a.AgentID
			}
			// ties: ordered is already sorted by AgentID, first wins since
			// strictly-less is required to replace.
		}
		if bestAgent == "" {
			// Unreachable from every agent: fall back to the lexicographically
			// first agent so every generator still maps to exactly one id.
			bestAgent = ordered[0].AgentID
			bestDist = 0
		}
		assignment[gen.String()] = bestAgent
		distance[gen.String()] = bestDist
	}

	// Phase 2: capacity rebalancing.
	n := len(ordered)
	base := len(generators) / n
	remainder := len(generators) % n
	capacity := make(map[string]int, n)
	for i, a := range ordered {
		capacity[a.AgentID] = base
		if i < remainder {
			capacity[a.AgentID]++
		}
	}

	for {
		counts := map[string]int{}
		for _, owner := range assignment {
			counts[owner]++
		}

		over := ""
		for _, a := range ordered {
			if counts[a.AgentID] > capacity[a.AgentID] {
				over = a.AgentID
				break
			}
		}
		if over == "" {
			break
		}

		under := ""
		for _, a := range ordered {
			if counts[a.AgentID] < capacity[a.AgentID] {
				under = a.AgentID
				break
			}
		}
		if under == "" {
			break
		}

		bestGen := ""
		bestDelta := 0
		bestSet := false
		for _, gen := range generators {
			key := gen.String()
			if assignment[key] != over {
				continue
			}
			newDist, ok := pathCost(g, agentPosByID(ordered, under), gen, occupied)
			if !ok {
				continue
			}
			delta := newDist - distance[key]
			if !bestSet || delta < bestDelta {
				bestDelta = delta
				bestGen = key
				bestSet = true
			}
		}
		if !bestSet {
			break
		}
		assignment[bestGen] = under
		distance[bestGen] = distance[bestGen] + bestDelta
	}

	return assignment
}

func agentPosByID(agents []AgentPosition, id string) model.Point {
	for _, a := range agents {
		if a.AgentID == id {
			return a.Position
		}
	}
	return model.Point{}
}

func pathCost(g *grid.Grid, from, to model.Point, occupied grid.OccupiedSet) (int, bool) {
	path, err := g.FindPath(from, to, occupied, nil)
	if err != nil {
		return 0, false
	}
	return path.Cost, true
}
