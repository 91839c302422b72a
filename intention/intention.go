// Package intention implements the intention queue and revision loop: a
// single-element-effective FIFO of goal predicates, each achieved by walking
// a plan library and awaiting the first applicable plan's execution, with
// cooperative cancellation propagated to sub-intentions.
//
// There is no mutex anywhere in this package: every Intention and Queue is
// owned exclusively by the driver goroutine, exactly like
// belief.BeliefSet. The only exception is the cooperative-stop flag, which a
// parent plan may set on a sub-intention from the same goroutine that is
// about to yield control back to it — still single-threaded, just not
// strictly call-stack-nested.
package intention

import (
	"context"
	"errors"
	"fmt"

	"deliveroo/model"
)

// Plan is the contract every plan in the library implements.
// IsApplicableTo is consulted statically by Achieve while walking the
// library; Execute performs the plan's work, suspending at actuator calls
// and re-checking Stop at every such suspension point.
type Plan interface {
	IsApplicableTo(t model.PredicateType) bool
	Execute(ctx context.Context, predicate model.Predicate) error
	Stop()
}

// SubIntentionHost is implemented by plans that spawn and own sub-intentions
// (PickUpPlan, DeliverPlan). Achieve calls SetOwner right before Execute so
// the plan can register sub-intentions on the owning Intention, letting
// Stop recurse into them without the plan needing any other back-channel.
type SubIntentionHost interface {
	SetOwner(owner *Intention)
}

// Intention is a single committed goal plus its lifecycle state.
type Intention struct {
	Predicate model.Predicate

	library []Plan

	started bool
	executing bool
	finished bool
	stopped bool

	currentPlan Plan
	subIntentions []*Intention
}

// New constructs an intention for predicate, to be achieved by walking
// library in order.
func New(predicate model.Predicate, library []Plan) *Intention {
	return &Intention{Predicate: predicate, library: library}
}

// Started, Executing, Finished, Stopped report lifecycle state, mostly
// useful for introspection/logging.
func (in *Intention) Started() bool { return in.started }
func (in *Intention) Executing() bool { return in.executing }
func (in *Intention) Finished() bool { return in.finished }
func (in *Intention) Stopped() bool { return in.stopped }

// Stop sets the cooperative cancellation flag, propagating it to the
// currently running plan and to every sub-intention.
func (in *Intention) Stop() {
	in.stopped = true
	if in.currentPlan != nil {
		in.currentPlan.Stop()
	}
	for _, sub := range in.subIntentions {
		sub.Stop()
	}
}

// AddSubIntention registers a sub-intention owned by the plan currently
// executing this intention, so Stop recurses into it. Plans call this
// before awaiting the sub-intention's own Achieve.
func (in *Intention) AddSubIntention(sub *Intention) {
	in.subIntentions = append(in.subIntentions, sub)
}

// Achieve walks the plan library for the first plan applicable to this
// intention's predicate type, executes it, and on failure tries the next
// applicable plan — except when the failure is ErrStopped, which aborts
// immediately.
func (in *Intention) Achieve(ctx context.Context) error {
	in.started = true
	if in.stopped {
		in.finished = true
		return ErrStopped
	}

	for _, p := range in.library {
		if !p.IsApplicableTo(in.Predicate.Type) {
			continue
		}

		in.currentPlan = p
		if host, ok := p.(SubIntentionHost); ok {
			host.SetOwner(in)
		}
		in.executing = true
		err := p.Execute(ctx, in.Predicate)
		in.executing = false
		in.currentPlan = nil

		if err == nil {
			in.finished = true
			return nil
		}
		if errors.Is(err, ErrStopped) {
			in.finished = true
			return err
		}
		// Any other error: try the next applicable plan.
	}

	in.finished = true
	return fmt.Errorf("%w: predicate type %s", ErrNoApplicablePlan, in.Predicate.Type)
}
