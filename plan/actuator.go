package plan

import (
	"context"

	"deliveroo/model"
)

// Actuator is the output side of the agent's external interface contract:
// move/pickup/drop, the only operations a plan ever calls.
type Actuator interface {
	// Move issues a single step in direction dir, returning the new
	// position, or an error wrapping ErrMoveFailed if the actuator refused
	// the move (e.g. the tile became occupied mid-step).
	Move(ctx context.Context, dir model.Move) (model.Point, error)

	// PickUp picks up every parcel at the agent's current position,
	// returning the parcels affected (possibly empty).
	PickUp(ctx context.Context) ([]model.Parcel, error)

	// Drop releases the agent's carried parcels at its current position,
	// returning the parcels affected (possibly empty).
	Drop(ctx context.Context) ([]model.Parcel, error)
}
