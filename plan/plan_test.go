package plan

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/belief"
	"deliveroo/grid"
	"deliveroo/intention"
	"deliveroo/model"
)

type fakeActuator struct {
	moves []model.Move
	failOnMove int // -1 disables
	pickUp []model.Parcel
	drop []model.Parcel
}

func (a *fakeActuator) Move(ctx context.Context, dir model.Move) (model.Point, error) {
	if a.failOnMove == len(a.moves) {
		return model.Point{}, errors.New("tile occupied")
	}
	a.moves = append(a.moves, dir)
	return model.Point{}, nil
}

func (a *fakeActuator) PickUp(ctx context.Context) ([]model.Parcel, error) { return a.pickUp, nil }
func (a *fakeActuator) Drop(ctx context.Context) ([]model.Parcel, error) { return a.drop, nil }

func rowGrid() *grid.Grid {
	tiles := []grid.Tile{
		{X: 0, Y: 0, Type: model.Walkable},
		{X: 1, Y: 0, Type: model.Walkable},
		{X: 2, Y: 0, Type: model.ParcelGenerator},
		{X: 3, Y: 0, Type: model.Walkable},
		{X: 4, Y: 0, Type: model.Delivery},
	}
	return grid.New(5, 1, tiles)
}

func TestGoToPlan(t *testing.T) {
	Convey("Given self at the origin of a walkable row", t, func() {
		b := belief.New(nil)
		b.UpdateFromMap(rowGrid())
		b.UpdateFromYou(model.Agent{ID: "me", X: 0, Y: 0})
		act := &fakeActuator{failOnMove: -1}
		p := NewGoToPlan(b, act)

		Convey("it is applicable to GoTo and Exploration only", func() {
			So(p.IsApplicableTo(model.GoTo), ShouldBeTrue)
			So(p.IsApplicableTo(model.Exploration), ShouldBeTrue)
			So(p.IsApplicableTo(model.Pickup), ShouldBeFalse)
		})

		Convey("it issues one move per path step", func() {
			err := p.Execute(context.Background(), model.Predicate{Type: model.GoTo, Destination: model.Point{X: 2, Y: 0}})
			So(err, ShouldBeNil)
			So(len(act.moves), ShouldEqual, 2)
		})

		Convey("an already-reached destination yields an empty path and succeeds", func() {
			err := p.Execute(context.Background(), model.Predicate{Type: model.GoTo, Destination: model.Point{X: 0, Y: 0}})
			So(err, ShouldBeNil)
			So(len(act.moves), ShouldEqual, 0)
		})

		Convey("an actuator move failure surfaces as ErrMoveFailed", func() {
			act.failOnMove = 0
			err := p.Execute(context.Background(), model.Predicate{Type: model.GoTo, Destination: model.Point{X: 2, Y: 0}})
			So(errors.Is(err, intention.ErrMoveFailed), ShouldBeTrue)
		})

		Convey("stopping before execution surfaces ErrStopped", func() {
			p.Stop()
			err := p.Execute(context.Background(), model.Predicate{Type: model.GoTo, Destination: model.Point{X: 2, Y: 0}})
			So(errors.Is(err, intention.ErrStopped), ShouldBeTrue)
		})
	})
}

type fakePartitioner struct {
	owns bool
	recomputed int
}

func (f *fakePartitioner) Owns() bool { return f.owns }
func (f *fakePartitioner) RecomputeAndBroadcast() {
	f.recomputed++
}

func TestPickUpPlan(t *testing.T) {
	Convey("Given self standing on a parcel", t, func() {
		b := belief.New(nil)
		b.UpdateFromMap(rowGrid())
		b.UpdateFromYou(model.Agent{ID: "me", X: 2, Y: 0})
		act := &fakeActuator{failOnMove: -1, pickUp: []model.Parcel{{ID: "p1", Reward: 5}}}
		part := &fakePartitioner{owns: true}
		p := NewPickUpPlan(b, act, part)

		Convey("executing it records the parcel as carried and recomputes partitioning", func() {
			err := p.Execute(context.Background(), model.Predicate{Type: model.Pickup, Destination: model.Point{X: 2, Y: 0}, ParcelID: "p1"})
			So(err, ShouldBeNil)
			So(b.CarriedCount(), ShouldEqual, 1)
			So(b.CarriedReward(), ShouldEqual, 5)
			So(part.recomputed, ShouldEqual, 1)
		})

		Convey("a non-owning partitioner is not asked to recompute", func() {
			part.owns = false
			err := p.Execute(context.Background(), model.Predicate{Type: model.Pickup, Destination: model.Point{X: 2, Y: 0}, ParcelID: "p1"})
			So(err, ShouldBeNil)
			So(part.recomputed, ShouldEqual, 0)
		})
	})
}

func TestDeliverPlan(t *testing.T) {
	Convey("Given self carrying a parcel and standing on the delivery tile", t, func() {
		b := belief.New(nil)
		b.UpdateFromMap(rowGrid())
		b.UpdateFromYou(model.Agent{ID: "me", X: 4, Y: 0})
		b.AddCarryingParcel(model.Parcel{ID: "p1", Reward: 5})
		act := &fakeActuator{failOnMove: -1, drop: []model.Parcel{{ID: "p1", Reward: 5}}}
		part := &fakePartitioner{owns: true}
		p := NewDeliverPlan(b, act, part)

		Convey("executing it clears the carried inventory", func() {
			err := p.Execute(context.Background(), model.Predicate{Type: model.Deliver, Destination: model.Point{X: 4, Y: 0}})
			So(err, ShouldBeNil)
			So(b.CarriedCount(), ShouldEqual, 0)
			So(part.recomputed, ShouldEqual, 1)
		})
	})
}

func TestPDDLGoToPlanFallsBackOnNoSolver(t *testing.T) {
	Convey("Given a PDDLGoToPlan with no solver configured", t, func() {
		b := belief.New(nil)
		b.UpdateFromMap(rowGrid())
		b.UpdateFromYou(model.Agent{ID: "me", X: 0, Y: 0})
		act := &fakeActuator{failOnMove: -1}
		p := NewPDDLGoToPlan(b, act, nil)

		Convey("it fails with StateMismatch so the revision loop falls through to GoToPlan", func() {
			err := p.Execute(context.Background(), model.Predicate{Type: model.GoTo, Destination: model.Point{X: 2, Y: 0}})
			So(errors.Is(err, intention.ErrStateMismatch), ShouldBeTrue)
		})
	})
}
