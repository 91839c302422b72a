package plan

import (
	"context"
	"fmt"

	"deliveroo/belief"
	"deliveroo/intention"
	"deliveroo/model"
)

// DeliverPlan is applicable to Deliver predicates: walks to
// the destination via a GoTo sub-intention, then calls the actuator's drop,
// clearing the belief set's carried inventory on success.
type DeliverPlan struct {
	Belief *belief.BeliefSet
	Actuator Actuator
	Partitioner Partitioner // nil in single-agent mode

	owner *intention.Intention
	stopped bool
}

// NewDeliverPlan constructs a DeliverPlan. partitioner may be nil.
func NewDeliverPlan(b *belief.BeliefSet, a Actuator, partitioner Partitioner) *DeliverPlan {
	return &DeliverPlan{Belief: b, Actuator: a, Partitioner: partitioner}
}

func (p *DeliverPlan) IsApplicableTo(t model.PredicateType) bool { return t == model.Deliver }

func (p *DeliverPlan) Stop() { p.stopped = true }

// SetOwner implements intention.SubIntentionHost.
func (p *DeliverPlan) SetOwner(owner *intention.Intention) { p.owner = owner }

func (p *DeliverPlan) Execute(ctx context.Context, predicate model.Predicate) error {
	p.stopped = false

	sub := intention.New(model.Predicate{
		Type: model.GoTo,
		Destination: predicate.Destination,
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

	affected, err := p.Actuator.Drop(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", intention.ErrMoveFailed, err)
	}

	if len(affected) > 0 {
		p.Belief.ClearCarryingParcels()
		if p.Partitioner != nil && p.Partitioner.Owns() {
			p.Partitioner.RecomputeAndBroadcast()
		}
	}

	return nil
}
