// Package option implements the option generator: it turns a BeliefSet
// snapshot into zero-or-one candidate Predicate, applying the seven-step
// priority order (standing-on-parcel and standing-on-delivery short
// circuits first, then the best scored parcel/delivery/exploration option),
// ready to push onto the intention queue.
package option

import (
	"math"

	"deliveroo/belief"
	"deliveroo/model"
	"deliveroo/utility"
)

// Current is the minimal view of the head intention the generator needs to
// decide whether a candidate is a duplicate of "the thing already running".
type Current struct {
	Has bool
	Predicate model.Predicate
}

// snapshot builds the immutable utility.Snapshot the scoring functions need
// from the current belief set state.
func snapshot(b *belief.BeliefSet) utility.Snapshot {
	self, _ := b.Self()
	cfg, _ := b.Config()
	return utility.Snapshot{
		Grid: b.Grid(),
		SelfPosition: self.Position(),
		CarriedReward: b.CarriedReward(),
		CarriedCount: b.CarriedCount(),
		OtherAgents: b.OtherAgents(),
		Occupied: b.OccupiedPositions(),
		MovementDurationMs: cfg.MovementDuration,
		DecayIntervalMs: cfg.ParcelDecadingInterval.Duration,
	}
}

// Generate runs the seven-step priority algorithm and returns the
// predicate to push, or ok=false if nothing should be pushed this pass.
func Generate(b *belief.BeliefSet, current Current, preemptionThreshold float64) (model.Predicate, bool) {
	self, haveSelf := b.Self()
	if !haveSelf {
		// Step 1.
		return model.Predicate{}, false
	}
	here := self.Position()

	// Step 2: standing on a parcel not already the current target.
	if p, ok := b.ParcelAt(here); ok && p.CarriedBy == "" {
		target := model.Predicate{Type: model.Pickup, Destination: here, ParcelID: p.ID}
		if !(current.Has && current.Predicate.Equal(target)) {
			target.Utility = posInf
			return target, true
		}
	}

	// Step 3: carrying and standing on a delivery tile that isn't the
	// current intention's destination.
	if b.CarriedCount() > 0 && isDeliveryTile(b, here) {
		target := model.Predicate{Type: model.Deliver, Destination: here}
		if !(current.Has && current.Predicate.Type == model.Deliver && current.Predicate.Destination == here) {
			target.Utility = posInf
			return target, true
		}
	}

	snap := snapshot(b)
	agentID := self.ID

	// Step 4: best eligible parcel by utility.
	var bestParcel model.Predicate
	haveBestParcel := false
	for _, p := range b.Parcels() {
		if p.CarriedBy != "" || p.Reward <= 0 {
			continue
		}
		if !b.AssignedTo(p.Position(), agentID) {
			continue
		}
		u := utility.ParcelUtility(snap, here, p, snap.OtherAgents)
		if u <= 0 {
			continue
		}
		if !haveBestParcel || u > bestParcel.Utility {
			bestParcel = model.Predicate{Type: model.Pickup, Destination: p.Position(), ParcelID: p.ID, Utility: u}
			haveBestParcel = true
		}
	}

	// Step 5: delivery utility, if carrying.
	var bestDelivery model.Predicate
	haveBestDelivery := false
	if b.CarriedCount() > 0 {
		if _, ok := utility.ClosestDelivery(snap, here); ok {
			u := utility.DeliveryUtility(snap, here)
			if u > 0 {
				dest := nearestDeliveryZone(b, here)
				bestDelivery = model.Predicate{Type: model.Deliver, Destination: dest, Utility: u}
				haveBestDelivery = true
			}
		}
	}

	best, haveBest := pickBest(bestParcel, haveBestParcel, bestDelivery, haveBestDelivery)

	// Step 6: no positive option and no current intention => Exploration.
	if !haveBest {
		if current.Has {
			return model.Predicate{}, false
		}
		dest, ok := explorationDestination(b, agentID)
		if !ok {
			return model.Predicate{}, false
		}
		return model.Predicate{Type: model.Exploration, Destination: dest}, true
	}

	// Step 7: push iff no current intention, or utility clears the
	// preemption margin over the current one.
	if !current.Has {
		return best, true
	}
	if current.Predicate.Equal(best) {
		return model.Predicate{}, false
	}
	if best.Utility > current.Predicate.Utility+preemptionThreshold {
		return best, true
	}
	return model.Predicate{}, false
}

func pickBest(a model.Predicate, haveA bool, b model.Predicate, haveB bool) (model.Predicate, bool) {
	switch {
	case haveA && haveB:
		if a.Utility >= b.Utility {
			return a, true
		}
		return b, true
	case haveA:
		return a, true
	case haveB:
		return b, true
	default:
		return model.Predicate{}, false
	}
}

func isDeliveryTile(b *belief.BeliefSet, p model.Point) bool {
	for _, z := range b.DeliveryZones() {
		if z == p {
			return true
		}
	}
	return false
}

func nearestDeliveryZone(b *belief.BeliefSet, from model.Point) model.Point {
	g := b.Grid()
	if g == nil {
		return from
	}
	occupied := b.OccupiedPositions()
	best := from
	bestCost := -1
	for _, z := range b.DeliveryZones() {
		path, err := g.FindPath(from, z, occupied, nil)
		if err != nil {
			continue
		}
		if bestCost == -1 || path.Cost < bestCost {
			bestCost = path.Cost
			best = z
		}
	}
	return best
}

// explorationDestination picks one of the agent's assigned generators (or
// any generator in single-agent mode) step 6.
func explorationDestination(b *belief.BeliefSet, agentID string) (model.Point, bool) {
	gens := b.ParcelGenerators()
	if len(gens) == 0 {
		return model.Point{}, false
	}
	for _, g := range gens {
		if b.AssignedTo(g, agentID) {
			return g, true
		}
	}
	return gens[0], true
}

var posInf = math.Inf(1)
