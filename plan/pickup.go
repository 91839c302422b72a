package plan

import (
	"context"
	"fmt"

	"deliveroo/belief"
	"deliveroo/intention"
	"deliveroo/model"
)

// PickUpPlan is applicable to Pickup predicates: it walks to
// the parcel's destination via a GoTo sub-intention, then calls the
// actuator's pickup, recording every affected parcel into the belief set's
// carried inventory.
type PickUpPlan struct {
	Belief *belief.BeliefSet
	Actuator Actuator
	Partitioner Partitioner // nil in single-agent mode

	owner *intention.Intention
	stopped bool
}

// NewPickUpPlan constructs a PickUpPlan. partitioner may be nil.
func NewPickUpPlan(b *belief.BeliefSet, a Actuator, partitioner Partitioner) *PickUpPlan {
	return &PickUpPlan{Belief: b, Actuator: a, Partitioner: partitioner}
}

func (p *PickUpPlan) IsApplicableTo(t model.PredicateType) bool { return t == model.Pickup }

func (p *PickUpPlan) Stop() { p.stopped = true }

// SetOwner implements intention.SubIntentionHost.
func (p *PickUpPlan) SetOwner(owner *intention.Intention) { p.owner = owner }

func (p *PickUpPlan) Execute(ctx context.Context, predicate model.Predicate) error {
	p.stopped = false

	sub := intention.New(model.Predicate{
		Type: model.GoTo,
		Destination: predicate.Destination,
		ParcelID: predicate.ParcelID,
	}, []intention.Plan{NewGoToPlan(p.Belief, p.Actuator)})

	if p.owner != nil {
		p.owner.AddSubIntention(sub)
	}

	if err := sub.Achieve(ctx); err != nil {
		return err
	}
	if p.stopped {
		return intention.ErrStopped
	}

	affected, err := p.Actuator.PickUp(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", intention.ErrMoveFailed, err)
	}

	for _, parcel := range affected {
		p.Belief.AddCarryingParcel(parcel)
	}

	if len(affected) > 0 && p.Partitioner != nil && p.Partitioner.Owns() {
		p.Partitioner.RecomputeAndBroadcast()
	}

	return nil
}
