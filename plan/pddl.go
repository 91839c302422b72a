package plan

import (
	"context"
	"fmt"

	"deliveroo/belief"
	"deliveroo/grid"
	"deliveroo/intention"
	"deliveroo/model"
)

// PDDLSolver is the external collaborator a PDDLGoToPlan shells out to. This
// repository ships no real implementation — the PDDL solver itself is out of
// scope — only the seam and a no-op stub that NewPDDLGoToPlan substitutes
// for a nil solver.
type PDDLSolver interface {
	Solve(ctx context.Context, domain, problem string) (*grid.Path, error)
}

// NoopPDDLSolver always reports that no plan was found, so a PDDLGoToPlan
// configured with it behaves as "PDDL disabled" and nothing downstream needs
// to special-case that state.
type NoopPDDLSolver struct{}

func (NoopPDDLSolver) Solve(ctx context.Context, domain, problem string) (*grid.Path, error) {
	return nil, fmt.Errorf("%w: no PDDL solver configured", intention.ErrStateMismatch)
}

// PDDLGoToPlan is applicable to the same predicate types as GoToPlan, and is
// tried ahead of it when AgentConfig.UsePDDL is true. Its two documented
// failure modes
// (StateMismatch, PathNotFound) both make Intention.Achieve fall through to
// the next applicable plan — the A*-backed GoToPlan — with no special-casing
// in the revision loop.
type PDDLGoToPlan struct {
	Belief *belief.BeliefSet
	Actuator Actuator
	Solver PDDLSolver

	stopped bool
}

// NewPDDLGoToPlan constructs a PDDLGoToPlan. A nil solver is replaced with
// NoopPDDLSolver.
func NewPDDLGoToPlan(b *belief.BeliefSet, actuator Actuator, solver PDDLSolver) *PDDLGoToPlan {
	if solver == nil {
		solver = NoopPDDLSolver{}
	}
	return &PDDLGoToPlan{Belief: b, Actuator: actuator, Solver: solver}
}

func (p *PDDLGoToPlan) IsApplicableTo(t model.PredicateType) bool {
	return t == model.GoTo || t == model.Exploration
}

func (p *PDDLGoToPlan) Stop() { p.stopped = true }

func (p *PDDLGoToPlan) Execute(ctx context.Context, predicate model.Predicate) error {
	p.stopped = false

	self, ok := p.Belief.Self()
	if !ok {
		return fmt.Errorf("%w: self position unknown", intention.ErrStateMismatch)
	}

	domain := "deliveroo-goto"
	problem := fmt.Sprintf("(at %s) (goal %s)", self.Position(), predicate.Destination)

	path, err := p.Solver.Solve(ctx, domain, problem)
	if err != nil {
		return fmt.Errorf("%w: %v", intention.ErrStateMismatch, err)
	}
	if path == nil || len(path.Moves) == 0 {
		return nil
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
