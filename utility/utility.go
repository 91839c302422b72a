package utility

import (
	"math"

	"deliveroo/grid"
	"deliveroo/model"
)

// ClosestDelivery returns the minimal A* cost from q to any delivery zone,
// or ok=false if none is reachable.
func ClosestDelivery(s Snapshot, q model.Point) (cost int, ok bool) {
	best := -1
	for _, d := range s.Grid.DeliveryZones() {
		path, err := s.Grid.FindPath(q, d, s.Occupied, nil)
		if err != nil {
			continue
		}
		if best == -1 || path.Cost < best {
			best = path.Cost
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func ceilDiv(numerator, denominator int64) int {
	if denominator <= 0 {
		return 0
	}
	if numerator <= 0 {
		return 0
	}
	q := numerator / denominator
	if numerator%denominator != 0 {
		q++
	}
	return int(q)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ParcelUtility scores a candidate parcel p as seen from q, using a
// reward-over-time formula. Returns NegInf if pickup or delivery is
// unreachable.
func ParcelUtility(s Snapshot, q model.Point, p model.Parcel, otherAgents []model.Agent) float64 {
	pickPath, err := s.Grid.FindPath(q, p.Position(), s.Occupied, nil)
	if err != nil {
		return NegInf
	}
	deliveryCost, ok := ClosestDelivery(s, p.Position())
	if !ok {
		return NegInf
	}

	tPick := int64(pickPath.Cost) * s.MovementDurationMs
	tDelivery := int64(deliveryCost) * s.MovementDurationMs

	decaysUntilPickup := ceilDiv(tPick, s.DecayIntervalMs)
	decaysUntilDelivery := ceilDiv(tDelivery, s.DecayIntervalMs)

	n := s.CarriedCount
	carriedFinal := float64(clampNonNegative(s.CarriedReward - decaysUntilPickup*n - decaysUntilDelivery*(n+1)))

	threat := ParcelThreat(s, p, otherAgents)
	targetFinal := float64(p.Reward-decaysUntilPickup-decaysUntilDelivery*(n+1)) - threat
	if targetFinal < 0 {
		targetFinal = 0
	}

	denom := tPick + tDelivery
	if denom == 0 {
		return 0
	}
	return (carriedFinal + targetFinal) / float64(denom)
}

// DeliveryUtility scores delivering the carried inventory from q.
func DeliveryUtility(s Snapshot, q model.Point) float64 {
	cost, ok := ClosestDelivery(s, q)
	if !ok {
		return NegInf
	}
	t := int64(cost) * s.MovementDurationMs
	if t == 0 {
		return 0
	}
	decays := ceilDiv(t, s.DecayIntervalMs)
	finalReward := clampNonNegative(s.CarriedReward - decays*s.CarriedCount)
	return float64(finalReward) / float64(t)
}

// ParcelThreat sums the adversarial risk that a competing agent reaches p
// before this agent does. D(a,p) is the A* cost of the path from a's
// position to p, respecting walls and current occupancy, not straight-line
// distance: an agent separated from p by a wall poses no real threat even
// if it's Manhattan-close.
func ParcelThreat(s Snapshot, p model.Parcel, otherAgents []model.Agent) float64 {
	total := 0.0
	pp := p.Position()
	for _, a := range otherAgents {
		path, err := s.Grid.FindPath(a.Position(), pp, s.Occupied, nil)
		if err != nil {
			continue
		}
		d := path.Cost
		if d < 1 {
			d = 1
		}
		proximity := float64(p.Reward) / float64(d*d)
		threat := proximity * 0.3

		if model.IsMoving(a) {
			dx, dy := model.MovementDirection(a)
			wx := float64(p.X - a.Position().X)
			wy := float64(p.Y - a.Position().Y)
			k := float64(dx)*wx + float64(dy)*wy
			if k > 0 {
				norm := math.Sqrt(wx*wx + wy*wy)
				if norm > 0 {
					threat += proximity * 0.7 * (k / norm)
				}
			}
		}
		total += threat
	}
	return total
}
