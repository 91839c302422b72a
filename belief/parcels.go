package belief

import (
	"deliveroo/model"
)

// UpdateFromParcels reconciles a freshly sensed parcel list against the
// belief set's memory:
//
// - every received parcel is stored fresh (outdated=false)
// - a previously known parcel missing from the list is removed if its
// former position is currently visible (something else is reported
// there, or the position falls within the sensed set and is empty);
// otherwise it is marked outdated and its reward frozen
//
// sensedPositions is the set of grid positions covered by this sensor
// reading (e.g. within PARCELS_OBSERVATION_DISTANCE); a missing parcel
// whose old position falls inside it is known to be gone rather than merely
// unobserved.
func (b *BeliefSet) UpdateFromParcels(list []model.Parcel, sensedPositions map[model.Point]struct{}) {
	now := b.clock()
	seen := make(map[string]struct{}, len(list))

	for _, p := range list {
		seen[p.ID] = struct{}{}
		b.parcels[p.ID] = &ExtendedParcel{
			Parcel: p,
			Outdated: false,
			LastSeenTimestamp: now,
			LastSeenReward: p.Reward,
		}
		b.activeParcelPositions[p.Position().String()] = p.ID
	}

	for id, ep := range b.parcels {
		if _, stillSensed := seen[id]; stillSensed {
			continue
		}
		if isVisible(sensedPositions, ep.Position()) {
			// Position is visible and reports no parcel there: picked up or expired.
			delete(b.parcels, id)
			if b.activeParcelPositions[ep.Position().String()] == id {
				delete(b.activeParcelPositions, ep.Position().String())
			}
			continue
		}
		ep.Outdated = true
	}
}

func isVisible(sensed map[model.Point]struct{}, p model.Point) bool {
	if sensed == nil {
		return false
	}
	_, ok := sensed[p]
	return ok
}

// decayedReward applies the lazy decay policy:
//
//	reward(now) = max(0, lastSeenReward - floor((now-lastSeenTimestamp)/decayInterval))
func (b *BeliefSet) decayedReward(ep *ExtendedParcel) int {
	if !ep.Outdated {
		return ep.Reward
	}
	cfg, ok := b.config, b.haveConfig
	if !ok || cfg.ParcelDecadingInterval.IsInfinite || cfg.ParcelDecadingInterval.Duration <= 0 {
		return ep.LastSeenReward
	}
	elapsedMs := b.clock().Sub(ep.LastSeenTimestamp).Milliseconds()
	decays := elapsedMs / cfg.ParcelDecadingInterval.Duration
	reward := ep.LastSeenReward - int(decays)
	if reward < 0 {
		return 0
	}
	return reward
}

// Parcels applies lazy decay to every outdated parcel, evicts any whose
// decayed reward has reached 0, and returns the surviving set.
func (b *BeliefSet) Parcels() []model.Parcel {
	out := make([]model.Parcel, 0, len(b.parcels))
	for id, ep := range b.parcels {
		reward := b.decayedReward(ep)
		if reward <= 0 {
			delete(b.parcels, id)
			if b.activeParcelPositions[ep.Position().String()] == id {
				delete(b.activeParcelPositions, ep.Position().String())
			}
			continue
		}
		p := ep.Parcel
		p.Reward = reward
		out = append(out, p)
	}
	return out
}

// ParcelAt reports the parcel (if any, after decay/eviction) at p.
func (b *BeliefSet) ParcelAt(p model.Point) (model.Parcel, bool) {
	id, ok := b.activeParcelPositions[p.String()]
	if !ok {
		return model.Parcel{}, false
	}
	ep, ok := b.parcels[id]
	if !ok {
		return model.Parcel{}, false
	}
	reward := b.decayedReward(ep)
	if reward <= 0 {
		delete(b.parcels, id)
		delete(b.activeParcelPositions, p.String())
		return model.Parcel{}, false
	}
	out := ep.Parcel
	out.Reward = reward
	return out, true
}
