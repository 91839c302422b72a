package comm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time.Now so the Hello timestamp is testable.
type Clock func() time.Time

// Session runs the three-way handshake and, once complete,
// tags every outbound steady-state message with the agreed session id and
// drops any inbound message carrying a stale one.
//
// A Session is owned exclusively by the driver goroutine, like BeliefSet and
// the intention queue: Ask blocks the driver for one
// round-trip, which is an explicit suspension point, not a concurrency
// hazard.
type Session struct {
	teamKey string
	selfID string
	link Link
	clock Clock

	complete bool
	initiated bool
	sessionID string

	pendingNonce string
	pendingSessionID string
}

// NewSession constructs a Session for the given team key, self agent id and
// peer link. clock defaults to time.Now if nil.
func NewSession(teamKey, selfID string, link Link, clock Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{teamKey: teamKey, selfID: selfID, link: link, clock: clock}
}

// SetSelfID records the agent id once known (onYou may arrive after the
// Session is constructed). Until this has been called with a non-empty id,
// BroadcastHello is a no-op and HandleMessage ignores Hello messages.
func (s *Session) SetSelfID(id string) { s.selfID = id }

// Ready reports whether SetSelfID has been called; the tie-break rule in
// handleHello requires a real self id to compare against a peer's.
func (s *Session) Ready() bool { return s.selfID != "" }

// Complete reports whether the handshake has finished.
func (s *Session) Complete() bool { return s.complete }

// Initiated reports whether this agent was the handshake initiator — only
// the initiator periodically recomputes and broadcasts the partitioning.
func (s *Session) Initiated() bool { return s.initiated }

// SessionID returns the agreed session id, if the handshake has completed.
func (s *Session) SessionID() (string, bool) {
	return s.sessionID, s.complete
}

// BroadcastHello shouts Hello{teamId, agentId, timestamp}, step 1 of the
// handshake protocol. A no-op once the handshake is complete.
func (s *Session) BroadcastHello(ctx context.Context) error {
	if s.complete || !s.Ready() {
		return nil
	}
	return s.link.Shout(ctx, encode(TypeHello, Hello{
		TeamID:    s.teamKey,
		AgentID:   s.selfID,
		Timestamp: s.clock().UnixMilli(),
	}))
}

// HandleMessage dispatches one inbound envelope through the handshake state
// machine. reply is the ask continuation supplied by the transport for
// request-shaped inbound messages (non-nil only when the peer used Ask).
func (s *Session) HandleMessage(ctx context.Context, fromID string, env Envelope, reply func(Envelope) error) error {
	if !s.Ready() && env.Type == TypeHello {
		// Self id not yet known (onYou hasn't arrived); defer the tie-break.
		return nil
	}
	switch env.Type {
	case TypeHello:
		return s.handleHello(ctx, fromID, env)
	case TypeHandshakeInit:
		return s.handleHandshakeInit(env, reply)
	case TypeHandshakeConfirm:
		return s.handleHandshakeConfirm(env)
	default:
		return fmt.Errorf("comm: handshake received unexpected message type %s", env.Type)
	}
}

// handleHello implements step 2: on receipt from a peer with a matching team
// key, the lexicographically lower id initiates.
func (s *Session) handleHello(ctx context.Context, fromID string, env Envelope) error {
	if s.complete {
		return nil
	}
	hello, err := decode[Hello](env)
	if err != nil {
		return err
	}
	if hello.TeamID != s.teamKey {
		return nil
	}
	if s.selfID >= fromID {
		// Higher id waits for the peer to initiate.
		return nil
	}

	nonce := uuid.NewString()
	s.pendingNonce = nonce

	ackEnv, err := s.link.Ask(ctx, fromID, encode(TypeHandshakeInit, HandshakeInit{
		TeamKey: s.teamKey,
		Nonce: nonce,
		From: s.selfID,
	}))
	if err != nil {
		return fmt.Errorf("comm: handshake init ask: %w", err)
	}

	ack, err := decode[HandshakeAck](ackEnv)
	if err != nil {
		return err
	}
	if ack.TeamKey != s.teamKey || ack.EchoNonce != nonce {
		return fmt.Errorf("comm: handshake ack mismatch from %s", fromID)
	}

	s.sessionID = ack.SessionID
	s.complete = true
	s.initiated = true

	return s.link.Say(ctx, fromID, encode(TypeHandshakeConfirm, HandshakeConfirm{
		SessionID: ack.SessionID,
		From: s.selfID,
	}))
}

// handleHandshakeInit implements step 3: reply with a fresh session id.
func (s *Session) handleHandshakeInit(env Envelope, reply func(Envelope) error) error {
	init, err := decode[HandshakeInit](env)
	if err != nil {
		return err
	}
	if init.TeamKey != s.teamKey {
		return fmt.Errorf("comm: handshake init with mismatched team key")
	}
	if reply == nil {
		return fmt.Errorf("comm: handshake init received without a reply continuation")
	}

	s.pendingSessionID = uuid.NewString()
	return reply(encode(TypeHandshakeAck, HandshakeAck{
		TeamKey:   s.teamKey,
		SessionID: s.pendingSessionID,
		From:      s.selfID,
		EchoNonce: init.Nonce,
	}))
}

// handleHandshakeConfirm implements step 5: the responder marks the
// handshake complete on receiving the confirm.
func (s *Session) handleHandshakeConfirm(env Envelope) error {
	confirm, err := decode[HandshakeConfirm](env)
	if err != nil {
		return err
	}
	if s.pendingSessionID == "" || confirm.SessionID != s.pendingSessionID {
		return fmt.Errorf("comm: handshake confirm with unknown session id")
	}
	s.sessionID = s.pendingSessionID
	s.complete = true
	s.initiated = false
	return nil
}
