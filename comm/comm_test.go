package comm

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/belief"
	"deliveroo/model"
)

// fakeLink wires two Sessions directly to each other in-process, so the
// handshake can be exercised without a real transport.
type fakeLink struct {
	peer *Session
}

func (l *fakeLink) Say(ctx context.Context, toID string, msg Envelope) error {
	return l.peer.HandleMessage(ctx, "", msg, nil)
}

func (l *fakeLink) Shout(ctx context.Context, msg Envelope) error {
	return l.peer.HandleMessage(ctx, "", msg, nil)
}

func (l *fakeLink) Ask(ctx context.Context, toID string, msg Envelope) (Envelope, error) {
	var reply Envelope
	err := l.peer.HandleMessage(ctx, "", msg, func(r Envelope) error {
		reply = r
		return nil
	})
	if err != nil {
		return Envelope{}, err
	}
	return reply, nil
}

func fixedClock() Clock {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestHandshake(t *testing.T) {
	Convey("Given two agents 'a' (lower id) and 'b' (higher id)", t, func() {
		linkA := &fakeLink{}
		linkB := &fakeLink{}
		sessionA := NewSession("TEAM", "a", linkA, fixedClock())
		sessionB := NewSession("TEAM", "b", linkB, fixedClock())
		linkA.peer = sessionB
		linkB.peer = sessionA

		Convey("when a hears b's Hello, a initiates and both complete with the same session id", func() {
			hello := encode(TypeHello, Hello{TeamID: "TEAM", AgentID: "b", Timestamp: 1})
			err := sessionA.HandleMessage(context.Background(), "b", hello, nil)
			So(err, ShouldBeNil)

			So(sessionA.Complete(), ShouldBeTrue)
			So(sessionA.Initiated(), ShouldBeTrue)
			So(sessionB.Complete(), ShouldBeTrue)
			So(sessionB.Initiated(), ShouldBeFalse)

			idA, _ := sessionA.SessionID()
			idB, _ := sessionB.SessionID()
			So(idA, ShouldEqual, idB)
		})

		Convey("a Hello from a mismatched team is ignored", func() {
			hello := encode(TypeHello, Hello{TeamID: "OTHER", AgentID: "a", Timestamp: 1})
			err := sessionB.HandleMessage(context.Background(), "a", hello, nil)
			So(err, ShouldBeNil)
			So(sessionB.Complete(), ShouldBeFalse)
		})

		Convey("the higher-id agent never initiates on hearing the lower id's hello reach itself", func() {
			hello := encode(TypeHello, Hello{TeamID: "TEAM", AgentID: "a", Timestamp: 1})
			err := sessionB.HandleMessage(context.Background(), "a", hello, nil)
			So(err, ShouldBeNil)
			So(sessionB.Complete(), ShouldBeFalse)
		})
	})
}

func TestApplySteadyState(t *testing.T) {
	Convey("Given a completed session and a belief set", t, func() {
		link := &fakeLink{}
		s := NewSession("TEAM", "a", link, fixedClock())
		s.complete = true
		s.sessionID = "sess-1"
		b := belief.New(nil)

		Convey("a ParcelsSensed message for the current session merges into the belief set", func() {
			env := encode(TypeParcelsSensed, ParcelsSensed{
				SessionID: "sess-1",
				Parcels:   []model.Parcel{{ID: "p1", X: 1, Y: 1, Reward: 5}},
			})
			err := s.ApplySteadyState(b, env)
			So(err, ShouldBeNil)
			p, ok := b.ParcelAt(model.Point{X: 1, Y: 1})
			So(ok, ShouldBeTrue)
			So(p.ID, ShouldEqual, "p1")
		})

		Convey("a message tagged with a stale session id is rejected", func() {
			env := encode(TypeParcelsSensed, ParcelsSensed{
				SessionID: "sess-0",
				Parcels:   []model.Parcel{{ID: "p1", X: 1, Y: 1, Reward: 5}},
			})
			err := s.ApplySteadyState(b, env)
			So(err, ShouldEqual, ErrStaleSession)
		})

		Convey("a MapPartitioning message replaces the cached partitioning", func() {
			env := encode(TypeMapPartitioning, MapPartitioning{
				SessionID:    "sess-1",
				Partitioning: map[string]string{"2,0": "a"},
			})
			err := s.ApplySteadyState(b, env)
			So(err, ShouldBeNil)
			So(b.Partitioning(), ShouldResemble, map[string]string{"2,0": "a"})
		})
	})
}
