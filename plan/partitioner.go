package plan

// Partitioner is consulted by PickUpPlan/DeliverPlan after a successful
// pickup or drop, in cooperative mode, when this agent is the one that owns
// the partitioning computation. A nil Partitioner is valid and simply skips the step —
// single-agent mode needs no partitioning at all.
type Partitioner interface {
	// Owns reports whether this agent is responsible for recomputing and
	// broadcasting the partitioning.
	Owns() bool

	// RecomputeAndBroadcast recomputes the partitioning from current belief
	// state and broadcasts it to the teammate.
	RecomputeAndBroadcast()
}
