// Package belief implements BeliefSet: the fused, continuously-updated world
// model the driver consumes. It owns self/teammate/parcel/other-agent
// state, applies lazy decay, and tracks dynamic tile occupancy.
//
// BeliefSet is owned exclusively by the driver's event loop;
// every mutating method documents that constraint instead of taking a lock.
// A handful of read accessors are backed by atomic fields (sync/atomic and
// the atomicfloat package) so an introspection goroutine can read
// self-score/current-partition-size without blocking the driver.
package belief

import (
	"sync/atomic"
	"time"

	"deliveroo/atomicfloat"
	"deliveroo/grid"
	"deliveroo/model"
)

// ExtendedParcel is a sensed parcel plus the bookkeeping needed for lazy
// decay and reconciliation.
type ExtendedParcel struct {
	model.Parcel
	Outdated bool
	LastSeenTimestamp time.Time
	LastSeenReward int
}

// Clock abstracts time.Now so decay math is testable without sleeping.
type Clock func() time.Time

// BeliefSet is the fused world model. Zero value is not usable; use New.
type BeliefSet struct {
	clock Clock

	self model.Agent
	haveSelf bool
	teammate model.Agent
	haveTeammate bool

	grid *grid.Grid
	deliveryZones []model.Point
	parcelGenerators []model.Point
	longestPath int

	parcels map[string]*ExtendedParcel
	activeParcelPositions map[string]string // "x,y" -> parcel id

	otherAgents map[string]model.Agent
	occupiedPositions map[string]time.Time

	carried map[string]model.Parcel

	config model.GameConfig
	haveConfig bool

	partitioning map[string]string // "x,y" -> agent id

	selfScore *atomicfloat.Float64
	partitionSize int64 // atomic; generator count of the cached partitioning
}

// New constructs an empty BeliefSet. clock defaults to time.Now if nil.
func New(clock Clock) *BeliefSet {
	if clock == nil {
		clock = time.Now
	}
	return &BeliefSet{
		clock: clock,
		parcels: map[string]*ExtendedParcel{},
		activeParcelPositions: map[string]string{},
		otherAgents: map[string]model.Agent{},
		occupiedPositions: map[string]time.Time{},
		carried: map[string]model.Parcel{},
		partitioning: map[string]string{},
		selfScore: atomicfloat.New(0),
	}
}

// UpdateFromYou replaces the self agent record.
func (b *BeliefSet) UpdateFromYou(agent model.Agent) {
	b.self = agent
	b.haveSelf = true
	b.selfScore.Set(float64(agent.Score))
}

// Self returns the last-known self agent and whether one has been observed.
func (b *BeliefSet) Self() (model.Agent, bool) {
	return b.self, b.haveSelf
}

// SelfScore is safe to call concurrently with the driver loop.
func (b *BeliefSet) SelfScore() float64 {
	return b.selfScore.Read()
}

// UpdateFromTeammate sets the cooperating peer's last-known agent record,
// carried by a MyInfo message.
func (b *BeliefSet) UpdateFromTeammate(agent model.Agent) {
	b.teammate = agent
	b.haveTeammate = true
}

// Teammate returns the last-known teammate agent and whether one has been observed.
func (b *BeliefSet) Teammate() (model.Agent, bool) {
	return b.teammate, b.haveTeammate
}

// UpdateFromMap caches the grid and recomputes deliveryZones,
// parcelGenerators and longestPath. Idempotent: re-issuing with the same
// grid yields identical results.
func (b *BeliefSet) UpdateFromMap(g *grid.Grid) {
	b.grid = g
	b.deliveryZones = g.DeliveryZones()
	b.parcelGenerators = g.Generators()
	b.longestPath = g.LongestPath()
}

// Grid returns the cached grid, or nil if none has been observed.
func (b *BeliefSet) Grid() *grid.Grid { return b.grid }

// DeliveryZones returns the cached delivery tiles.
func (b *BeliefSet) DeliveryZones() []model.Point {
	return append([]model.Point(nil), b.deliveryZones...)
}

// ParcelGenerators returns the cached parcel-generator tiles.
func (b *BeliefSet) ParcelGenerators() []model.Point {
	return append([]model.Point(nil), b.parcelGenerators...)
}

// LongestPath returns the cached longest-path probe.
func (b *BeliefSet) LongestPath() int { return b.longestPath }

// UpdateFromConfig caches the one-shot game config.
func (b *BeliefSet) UpdateFromConfig(cfg model.GameConfig) {
	b.config = cfg
	b.haveConfig = true
}

// Config returns the cached game config and whether one has been observed.
func (b *BeliefSet) Config() (model.GameConfig, bool) {
	return b.config, b.haveConfig
}

// AddCarryingParcel records that the self agent now carries p, a plan hook
// invoked with each parcel the actuator's pickup call reports affected.
// The actuator's result is authoritative for Reward, even
// if a sensed copy of the same parcel is already cached.
func (b *BeliefSet) AddCarryingParcel(p model.Parcel) {
	b.carried[p.ID] = p
}

// ClearCarryingParcels empties the carried inventory, a plan hook invoked
// after a successful drop.
func (b *BeliefSet) ClearCarryingParcels() {
	b.carried = map[string]model.Parcel{}
}

// Carried returns the carried inventory.
func (b *BeliefSet) Carried() []model.Parcel {
	out := make([]model.Parcel, 0, len(b.carried))
	for _, p := range b.carried {
		out = append(out, p)
	}
	return out
}

// CarriedReward sums the reward of every carried parcel.
func (b *BeliefSet) CarriedReward() int {
	sum := 0
	for _, p := range b.carried {
		sum += p.Reward
	}
	return sum
}

// CarriedCount is the n term in utility formulas.
func (b *BeliefSet) CarriedCount() int {
	return len(b.carried)
}

// SetPartitioning replaces the cached partitioning.
func (b *BeliefSet) SetPartitioning(p map[string]string) {
	b.partitioning = p
	atomic.StoreInt64(&b.partitionSize, int64(len(p)))
}

// PartitionSize is safe to call concurrently with the driver loop; it
// reports the generator count of the most recently cached partitioning.
func (b *BeliefSet) PartitionSize() int {
	return int(atomic.LoadInt64(&b.partitionSize))
}

// Partitioning returns a copy of the cached partitioning.
func (b *BeliefSet) Partitioning() map[string]string {
	out := make(map[string]string, len(b.partitioning))
	for k, v := range b.partitioning {
		out[k] = v
	}
	return out
}

// AssignedTo reports whether the generator at p is assigned to agentID by
// the current partitioning. An empty partitioning means single-agent mode:
// every generator is implicitly the caller's.
func (b *BeliefSet) AssignedTo(p model.Point, agentID string) bool {
	if len(b.partitioning) == 0 {
		return true
	}
	owner, ok := b.partitioning[p.String()]
	return ok && owner == agentID
}
