package main

import (
	"context"

	"deliveroo/belief"
	"deliveroo/comm"
	"deliveroo/utility"
)

// sessionPartitioner adapts a comm.Session and BeliefSet into the
// plan.Partitioner consumer-contract the pickup/deliver plans hold,
// recomputing and broadcasting the map partitioning only when this agent
// initiated the handshake.
type sessionPartitioner struct {
	belief *belief.BeliefSet
	session *comm.Session
}

func (p *sessionPartitioner) Owns() bool {
	return p.session.Initiated()
}

// RecomputeAndBroadcast recomputes the Voronoi-then-rebalance partitioning
// over the self+teammate positions and broadcasts it over the session.
func (p *sessionPartitioner) RecomputeAndBroadcast() {
	g := p.belief.Grid()
	self, haveSelf := p.belief.Self()
	if g == nil || !haveSelf {
		return
	}
	agents := []utility.AgentPosition{{AgentID: self.ID, Position: self.Position()}}
	if mate, ok := p.belief.Teammate(); ok {
		agents = append(agents, utility.AgentPosition{AgentID: mate.ID, Position: mate.Position()})
	}

	partitioning := utility.ComputePartitioning(g, agents, p.belief.OccupiedPositions())
	p.belief.SetPartitioning(partitioning)

	// Best-effort: a failed broadcast leaves the teammate on its own stale
	// partitioning until the next recompute, not a fatal condition.
	_ = p.session.BroadcastPartitioning(context.Background(), partitioning)
}
