package intention

import (
	"context"

	"deliveroo/model"
)

// Validator reports whether a predicate is still achievable given the
// current belief state.
type Validator func(model.Predicate) bool

// Queue is the single-element-effective FIFO of intentions being pursued.
type Queue struct {
	items []*Intention
	library []Plan
	validate Validator
	onEmpty func()
}

// NewQueue constructs an empty queue. validate is consulted before running
// the head on each Tick; onEmpty fires once the queue drains to zero items.
func NewQueue(library []Plan, validate Validator, onEmpty func()) *Queue {
	return &Queue{library: library, validate: validate, onEmpty: onEmpty}
}

// Head returns the current (first) intention, if any.
func (q *Queue) Head() (*Intention, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len reports the number of queued intentions.
func (q *Queue) Len() int { return len(q.items) }

// Push appends predicate as a new intention, unless it duplicates the tail.
// A non-duplicate push stops whatever was previously last so it yields at
// the next Tick.
func (q *Queue) Push(predicate model.Predicate) {
	if n := len(q.items); n > 0 && q.items[n-1].Predicate.Equal(predicate) {
		return
	}

	next := New(predicate, q.library)
	if n := len(q.items); n > 0 {
		q.items[n-1].Stop()
	}
	q.items = append(q.items, next)
}

// Tick advances the queue by one step: drops the head while it is invalid,
// then achieves it to completion and pops it. Returns the
// error from Achieve, or nil if the queue was already empty.
func (q *Queue) Tick(ctx context.Context) error {
	for {
		if len(q.items) == 0 {
			return nil
		}
		head := q.items[0]
		if q.validate != nil && !q.validate(head.Predicate) {
			q.pop()
			continue
		}

		err := head.Achieve(ctx)
		q.pop()
		return err
	}
}

func (q *Queue) pop() {
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 && q.onEmpty != nil {
		q.onEmpty()
	}
}
