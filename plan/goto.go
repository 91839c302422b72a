package plan

import (
	"context"
	"fmt"

	"deliveroo/belief"
	"deliveroo/intention"
	"deliveroo/model"
)

// GoToPlan is applicable to GoTo and Exploration predicates:
// compute a path from self to the predicate's destination, then walk it one
// move at a time, checking cancellation before every actuator call.
type GoToPlan struct {
	Belief *belief.BeliefSet
	Actuator Actuator

	stopped bool
}

// NewGoToPlan constructs a GoToPlan bound to the driver's belief set and
// actuator.
func NewGoToPlan(b *belief.BeliefSet, a Actuator) *GoToPlan {
	return &GoToPlan{Belief: b, Actuator: a}
}

func (p *GoToPlan) IsApplicableTo(t model.PredicateType) bool {
	return t == model.GoTo || t == model.Exploration
}

func (p *GoToPlan) Stop() { p.stopped = true }

func (p *GoToPlan) Execute(ctx context.Context, predicate model.Predicate) error {
	// A Stop issued before Execute is honoured; the flag is cleared on return
	// so the same plan instance can serve the next intention.
	defer func() { p.stopped = false }()

	g := p.Belief.Grid()
	if g == nil {
		return fmt.Errorf("%w: no map observed yet", intention.ErrStateMismatch)
	}
	self, ok := p.Belief.Self()
	if !ok {
		return fmt.Errorf("%w: self position unknown", intention.ErrStateMismatch)
	}

	path, err := g.FindPath(self.Position(), predicate.Destination, p.Belief.OccupiedPositions(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", intention.ErrPathNotFound, err)
	}

	for _, mv := range path.Moves {
		if p.stopped {
			return intention.ErrStopped
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := p.Actuator.Move(ctx, mv); err != nil {
			return fmt.Errorf("%w: %v", intention.ErrMoveFailed, err)
		}
	}

	return nil
}
