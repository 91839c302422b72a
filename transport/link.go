package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"deliveroo/comm"
)

// wireMsg is the onMsg/emitSay/emitShout/emitAsk wire shape. ask_reply is this package's own correlation kind, not sent
// directly by the simulator — it is how this agent's reply to an inbound
// ask reaches the peer's waiting Ask call.
type wireMsg struct {
	Kind string `json:"kind"`
	From string `json:"from"`
	To string `json:"to,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	Envelope comm.Envelope `json:"envelope"`
}

const (
	msgKindSay = "say"
	msgKindShout = "shout"
	msgKindAsk = "ask"
	msgKindAskReply = "ask_reply"
)

// SetSelfID records the agent id stamped on outbound messages, once known
// from the sensor's onYou event. Safe to call before any Say/Shout/Ask.
func (a *Actuator) SetSelfID(id string) {
	a.mu.Lock()
	a.selfID = id
	a.mu.Unlock()
}

func (a *Actuator) selfIDSnapshot() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selfID
}

// Say sends env to a single peer and does not wait for acknowledgement.
func (a *Actuator) Say(ctx context.Context, toID string, msg comm.Envelope) error {
	return a.sendMsg(ctx, wireMsg{Kind: msgKindSay, From: a.selfIDSnapshot(), To: toID, Envelope: msg})
}

// Shout broadcasts env to every peer and does not wait for acknowledgement.
func (a *Actuator) Shout(ctx context.Context, msg comm.Envelope) error {
	return a.sendMsg(ctx, wireMsg{Kind: msgKindShout, From: a.selfIDSnapshot(), Envelope: msg})
}

// Ask sends env to a single peer and blocks for its reply.
func (a *Actuator) Ask(ctx context.Context, toID string, msg comm.Envelope) (comm.Envelope, error) {
	id := fmt.Sprintf("msg-%d", atomic.AddUint64(&a.nextID, 1))
	waiter := make(chan wireMsg, 1)

	a.mu.Lock()
	a.pendingMsg[id] = waiter
	a.mu.Unlock()

	if err := a.sendMsg(ctx, wireMsg{Kind: msgKindAsk, From: a.selfIDSnapshot(), To: toID, CorrelationID: id, Envelope: msg}); err != nil {
		a.forgetMsg(id)
		return comm.Envelope{}, err
	}

	select {
	case reply := <-waiter:
		return reply.Envelope, nil
	case <-ctx.Done():
		a.forgetMsg(id)
		return comm.Envelope{}, ctx.Err()
	}
}

func (a *Actuator) sendMsg(ctx context.Context, wm wireMsg) error {
	f, err := encodeFrame(eventMsg, wm)
	if err != nil {
		return err
	}
	if err := a.sock.writeFrame(ctx, f); err != nil {
		return fmt.Errorf("transport: send %s: %w", wm.Kind, err)
	}
	return nil
}

func (a *Actuator) forgetMsg(id string) {
	a.mu.Lock()
	delete(a.pendingMsg, id)
	a.mu.Unlock()
}

// deliverReply routes an inbound ask_reply to its waiting Ask call.
func (a *Actuator) deliverReply(wm wireMsg) {
	a.mu.Lock()
	ch, ok := a.pendingMsg[wm.CorrelationID]
	if ok {
		delete(a.pendingMsg, wm.CorrelationID)
	}
	a.mu.Unlock()
	if ok {
		ch <- wm
	}
}

// dispatchMsg decodes an inbound "msg" frame. ask_reply frames are routed
// to the matching Ask waiter; say/shout/ask frames are published onto
// Sensor.Msg as an InboundMessage, with Reply set only for asks.
func (s *Sensor) dispatchMsg(ctx context.Context, actuator *Actuator, data json.RawMessage) error {
	var wm wireMsg
	if err := json.Unmarshal(data, &wm); err != nil {
		return err
	}
	if wm.Kind == msgKindAskReply {
		actuator.deliverReply(wm)
		return nil
	}

	msg := InboundMessage{FromID: wm.From, Envelope: wm.Envelope}
	if wm.Kind == msgKindAsk {
		correlationID := wm.CorrelationID
		msg.Reply = func(replyCtx context.Context, env comm.Envelope) error {
			return actuator.sendMsg(replyCtx, wireMsg{
				Kind:          msgKindAskReply,
				From:          actuator.selfIDSnapshot(),
				CorrelationID: correlationID,
				Envelope:      env,
			})
		}
	}
	return send(ctx, s.Msg, msg)
}
