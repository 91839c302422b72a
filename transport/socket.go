// Package transport implements the concrete Sensor/Actuator pair: a
// JSON-over-websocket connection to the simulator, plus the peer-to-peer
// link Communication (comm package) rides on. It is grounded on this
// repository's existing websocket-client plumbing: ping/pong liveness,
// serialized read/write via a semaphore-backed wrapper, and
// errgroup-supervised pumps.
//
// None of the core packages (belief, option, intention, plan, comm) import
// this package; the driver wires a transport.Client into them the same way
// it would wire any other Sensor/Actuator implementation.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 2 * time.Second
	readDeadline = 2 * time.Second
	writeDeadline = 2 * time.Second
	pingResolution = 5 * time.Second
	pongWait = pingResolution * 4
	maxMessageSize = 1 << 20
)

// ErrSockCongestion indicates too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("transport: sock op failed due to congestion")

// ErrPongDeadlineExceeded indicates the peer stopped answering pings.
var ErrPongDeadlineExceeded = errors.New("transport: disconnect, pong deadline exceeded")

// frame is the wire envelope exchanged with the simulator: a tagged event
// name plus its type-specific JSON payload.
type frame struct {
	Event string `json:"event"`
	Data json.RawMessage `json:"data"`
}

// sock serializes reads and writes to a websocket connection, whose
// requirement is that there may be only one concurrent reader and one
// concurrent writer at a time (grounded on this repository's websock type).
type sock struct {
	readSem chan struct{}
	writeSem chan struct{}
	conn *websocket.Conn
}

func newSock(conn *websocket.Conn) *sock {
	conn.SetReadLimit(maxMessageSize)
	return &sock{
		readSem: make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn: conn,
	}
}

func (s *sock) Close() {
	s.writeSem <- struct{}{}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.conn.Close()
}

func (s *sock) readFrame(ctx context.Context) (frame, error) {
	var f frame
	select {
	case <-ctx.Done():
		return f, ctx.Err()
	case s.readSem <- struct{}{}:
		defer func() { <-s.readSem }()
		err := s.conn.ReadJSON(&f)
		return f, err
	case <-time.After(readDeadline):
		return f, ErrSockCongestion
	}
}

func (s *sock) writeFrame(ctx context.Context, f frame) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		if err := s.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			return fmt.Errorf("transport: set write deadline: %w", err)
		}
		return s.conn.WriteJSON(f)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}

func encodeFrame(event string, v any) (frame, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return frame{}, fmt.Errorf("transport: marshal %s: %w", event, err)
	}
	return frame{Event: event, Data: raw}, nil
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
