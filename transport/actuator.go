package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"deliveroo/model"
)

// actionFrame is the wire shape for an outbound move/pickup/putdown command:
// a correlation id so the matching ack can be routed back to the caller
// blocked on Actuator.Move/PickUp/Drop.
type actionFrame struct {
	ID string `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ackFrame struct {
	ID string `json:"id"`
	Ok bool `json:"ok"`
	Error string `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const eventAck = "ack"

const (
	eventMove = "move"
	eventPickup = "pickup"
	eventPutdown = "putdown"
)

// Actuator implements plan.Actuator against the same socket the Sensor
// reads from: each call blocks the driver goroutine until the simulator
// acks the corresponding command, matching the real deliveroo client's
// emit-with-callback contract.
type Actuator struct {
	sock *sock

	nextID uint64
	mu sync.Mutex
	pending map[string]chan ackFrame
	pendingMsg map[string]chan wireMsg
	selfID string
}

func newActuator(s *sock) *Actuator {
	return &Actuator{
		sock: s,
		pending: make(map[string]chan ackFrame),
		pendingMsg: make(map[string]chan wireMsg),
	}
}

// deliverAck routes an inbound ack frame to its waiting caller, if any. It
// is called from the sensor's read-pump goroutine.
func (a *Actuator) deliverAck(f frame) {
	if f.Event != eventAck {
		return
	}
	var ack ackFrame
	if err := json.Unmarshal(f.Data, &ack); err != nil {
		return
	}
	a.mu.Lock()
	ch, ok := a.pending[ack.ID]
	if ok {
		delete(a.pending, ack.ID)
	}
	a.mu.Unlock()
	if ok {
		ch <- ack
	}
}

func (a *Actuator) call(ctx context.Context, event string, data any) (ackFrame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return ackFrame{}, fmt.Errorf("transport: marshal %s payload: %w", event, err)
	}
	id := fmt.Sprintf("%d", atomic.AddUint64(&a.nextID, 1))
	waiter := make(chan ackFrame, 1)

	a.mu.Lock()
	a.pending[id] = waiter
	a.mu.Unlock()

	f, err := encodeFrame(event, actionFrame{ID: id, Data: raw})
	if err != nil {
		a.forget(id)
		return ackFrame{}, err
	}
	if err := a.sock.writeFrame(ctx, f); err != nil {
		a.forget(id)
		return ackFrame{}, fmt.Errorf("transport: send %s: %w", event, err)
	}

	select {
	case ack := <-waiter:
		if !ack.Ok {
			return ackFrame{}, fmt.Errorf("transport: %s rejected: %s", event, ack.Error)
		}
		return ack, nil
	case <-ctx.Done():
		a.forget(id)
		return ackFrame{}, ctx.Err()
	}
}

func (a *Actuator) forget(id string) {
	a.mu.Lock()
	delete(a.pending, id)
	a.mu.Unlock()
}

// Move sends a single primitive step and blocks until acked, returning the
// self agent's resulting position.
func (a *Actuator) Move(ctx context.Context, dir model.Move) (model.Point, error) {
	ack, err := a.call(ctx, eventMove, struct {
		Direction string `json:"direction"`
	}{Direction: dir.String()})
	if err != nil {
		return model.Point{}, err
	}
	var pos model.Point
	if err := json.Unmarshal(ack.Payload, &pos); err != nil {
		return model.Point{}, fmt.Errorf("transport: decode move ack: %w", err)
	}
	return pos, nil
}

// PickUp requests a pickup and returns the parcels the simulator reports as
// now carried.
func (a *Actuator) PickUp(ctx context.Context) ([]model.Parcel, error) {
	ack, err := a.call(ctx, eventPickup, struct{}{})
	if err != nil {
		return nil, err
	}
	return decodeParcels(ack.Payload)
}

// Drop requests a putdown and returns the parcels the simulator reports as
// released.
func (a *Actuator) Drop(ctx context.Context) ([]model.Parcel, error) {
	ack, err := a.call(ctx, eventPutdown, struct{}{})
	if err != nil {
		return nil, err
	}
	return decodeParcels(ack.Payload)
}

func decodeParcels(raw json.RawMessage) ([]model.Parcel, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var parcels []model.Parcel
	if err := json.Unmarshal(raw, &parcels); err != nil {
		return nil, fmt.Errorf("transport: decode parcels: %w", err)
	}
	return parcels, nil
}
