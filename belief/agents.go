package belief

import (
	"time"

	"deliveroo/model"
)

// UpdateFromAgents merges a sensed list of other agents, refreshing
// occupiedPositions for their current tile, then forgets occupancy entries
// older than longestPath x movementDuration.
func (b *BeliefSet) UpdateFromAgents(agents []model.Agent) {
	now := b.clock()
	for _, a := range agents {
		b.otherAgents[a.ID] = a
		b.occupiedPositions[a.Position().String()] = now
	}
	b.forgetStaleOccupancy(now)
}

func (b *BeliefSet) forgetStaleOccupancy(now time.Time) {
	if !b.haveConfig || b.config.MovementDuration <= 0 {
		return
	}
	ttl := time.Duration(b.longestPath) * time.Duration(b.config.MovementDuration) * time.Millisecond
	if ttl <= 0 {
		return
	}
	for pos, seenAt := range b.occupiedPositions {
		if now.Sub(seenAt) > ttl {
			delete(b.occupiedPositions, pos)
		}
	}
}

// OtherAgents returns the last-known set of sensed non-teammate agents.
func (b *BeliefSet) OtherAgents() []model.Agent {
	out := make([]model.Agent, 0, len(b.otherAgents))
	for _, a := range b.otherAgents {
		out = append(out, a)
	}
	return out
}

// OccupiedPositions returns the currently-live occupancy set as a
// grid.OccupiedSet-compatible map.
func (b *BeliefSet) OccupiedPositions() map[string]struct{} {
	out := make(map[string]struct{}, len(b.occupiedPositions))
	for k := range b.occupiedPositions {
		out[k] = struct{}{}
	}
	return out
}
