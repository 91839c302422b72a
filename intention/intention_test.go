package intention

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/model"
)

type fakePlan struct {
	applicable model.PredicateType
	err error
	stopped bool
	calls int
}

func (p *fakePlan) IsApplicableTo(t model.PredicateType) bool { return t == p.applicable }

func (p *fakePlan) Execute(ctx context.Context, predicate model.Predicate) error {
	p.calls++
	if p.stopped {
		return ErrStopped
	}
	return p.err
}

func (p *fakePlan) Stop() { p.stopped = true }

func TestIntentionAchieve(t *testing.T) {
	Convey("Given an intention whose plan succeeds", t, func() {
		plan := &fakePlan{applicable: model.GoTo}
		in := New(model.Predicate{Type: model.GoTo}, []Plan{plan})

		err := in.Achieve(context.Background())
		So(err, ShouldBeNil)
		So(in.Finished(), ShouldBeTrue)
		So(plan.calls, ShouldEqual, 1)
	})

	Convey("Given a library with no applicable plan", t, func() {
		plan := &fakePlan{applicable: model.Deliver}
		in := New(model.Predicate{Type: model.GoTo}, []Plan{plan})

		err := in.Achieve(context.Background())
		So(errors.Is(err, ErrNoApplicablePlan), ShouldBeTrue)
	})

	Convey("Given a first plan that fails and a second that applies", t, func() {
		failing := &fakePlan{applicable: model.GoTo, err: errors.New("boom")}
		succeeding := &fakePlan{applicable: model.GoTo}
		in := New(model.Predicate{Type: model.GoTo}, []Plan{failing, succeeding})

		err := in.Achieve(context.Background())
		So(err, ShouldBeNil)
		So(failing.calls, ShouldEqual, 1)
		So(succeeding.calls, ShouldEqual, 1)
	})

	Convey("Given an intention that is stopped before it starts", t, func() {
		plan := &fakePlan{applicable: model.GoTo}
		in := New(model.Predicate{Type: model.GoTo}, []Plan{plan})
		in.Stop()

		err := in.Achieve(context.Background())
		So(errors.Is(err, ErrStopped), ShouldBeTrue)
		So(plan.calls, ShouldEqual, 0)
	})

	Convey("Stopping an intention recursively stops its sub-intentions", t, func() {
		parentPlan := &fakePlan{applicable: model.Pickup}
		in := New(model.Predicate{Type: model.Pickup}, []Plan{parentPlan})
		subPlan := &fakePlan{applicable: model.GoTo}
		sub := New(model.Predicate{Type: model.GoTo}, []Plan{subPlan})
		in.AddSubIntention(sub)

		in.Stop()
		So(sub.Stopped(), ShouldBeTrue)
	})
}

func TestQueue(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		emptied := false
		q := NewQueue(nil, nil, func() { emptied = true })

		Convey("Ticking it is a no-op", func() {
			err := q.Tick(context.Background())
			So(err, ShouldBeNil)
		})

		Convey("Pushing a predicate makes it the head", func() {
			q.Push(model.Predicate{Type: model.GoTo, Destination: model.Point{X: 1, Y: 1}})
			head, ok := q.Head()
			So(ok, ShouldBeTrue)
			So(head.Predicate.Type, ShouldEqual, model.GoTo)
		})

		Convey("Pushing a duplicate predicate is a no-op", func() {
			pred := model.Predicate{Type: model.GoTo, Destination: model.Point{X: 1, Y: 1}, Utility: 1}
			q.Push(pred)
			first, _ := q.Head()

			dup := pred
			dup.Utility = 999
			q.Push(dup)
			So(q.Len(), ShouldEqual, 1)
			second, _ := q.Head()
			So(second, ShouldEqual, first)
		})

		Convey("Pushing a different predicate appends and stops the previous one", func() {
			q.Push(model.Predicate{Type: model.Exploration, Destination: model.Point{X: 1, Y: 1}})
			prevHead, _ := q.Head()

			q.Push(model.Predicate{Type: model.GoTo, Destination: model.Point{X: 2, Y: 2}})
			So(q.Len(), ShouldEqual, 2)
			So(prevHead.Stopped(), ShouldBeTrue)
		})

		Convey("Ticking drops an invalid head without running it", func() {
			plan := &fakePlan{applicable: model.Deliver}
			q2 := NewQueue([]Plan{plan}, func(model.Predicate) bool { return false }, func() { emptied = true })
			q2.Push(model.Predicate{Type: model.Deliver})

			err := q2.Tick(context.Background())
			So(err, ShouldBeNil)
			So(q2.Len(), ShouldEqual, 0)
			So(emptied, ShouldBeTrue)
			So(plan.calls, ShouldEqual, 0)
		})

		Convey("Draining the queue invokes the onEmpty callback", func() {
			plan := &fakePlan{applicable: model.GoTo}
			q3 := NewQueue([]Plan{plan}, func(model.Predicate) bool { return true }, func() { emptied = true })
			q3.Push(model.Predicate{Type: model.GoTo})

			_ = q3.Tick(context.Background())
			So(emptied, ShouldBeTrue)
			So(q3.Len(), ShouldEqual, 0)
		})
	})
}
