// Package utility implements the pure scoring functions the decision core
// consults: parcel-pickup utility, delivery utility, parcel threat,
// closest-delivery lookup and the two-phase Voronoi/capacity partitioning
// algorithm.
//
// The scoring functions take an immutable Snapshot value, and
// ComputePartitioning a grid plus agent positions, rather than a live
// BeliefSet, so determinism and the unreachable => -Inf behavior can be unit
// tested without constructing a driver loop.
package utility

import (
	"math"

	"deliveroo/grid"
	"deliveroo/model"
)

// Snapshot is an immutable value-copy of the BeliefSet fields a single
// option-generation or utility-evaluation pass needs.
type Snapshot struct {
	Grid *grid.Grid

	SelfPosition model.Point
	CarriedReward int
	CarriedCount int

	OtherAgents []model.Agent

	Occupied grid.OccupiedSet

	MovementDurationMs int64
	DecayIntervalMs int64
}

// NegInf is returned by ParcelUtility/DeliveryUtility when the underlying
// destination is unreachable.
var NegInf = math.Inf(-1)
