// Package comm implements the two-agent coordination protocol: a three-way
// handshake that bootstraps a session, followed by session-scoped
// steady-state messages (sensed parcels/agents, teammate info, partitioning
// updates) merged directly into the receiver's BeliefSet.
//
// The wire carrier is abstracted behind the Link interface so this package
// never imports transport: a Link is whatever the transport package's peer
// connection implements.
package comm

import (
	"encoding/json"
	"fmt"

	"deliveroo/model"
)

// MessageType enumerates the envelope types of wire format.
type MessageType string

const (
	TypeHello MessageType = "hello"
	TypeHandshakeInit MessageType = "handshake_init"
	TypeHandshakeAck MessageType = "handshake_ack"
	TypeHandshakeConfirm MessageType = "handshake_confirm"
	TypeParcelsSensed MessageType = "parcels_sensed"
	TypeAgentsSensed MessageType = "agents_sensed"
	TypeMyInfo MessageType = "my_info"
	TypeMapPartitioning MessageType = "map_partitioning"
)

// Envelope is the wire format: {type, content}, content being type-specific
// JSON.
type Envelope struct {
	Type MessageType `json:"type"`
	Content json.RawMessage `json:"content"`
}

func encode(t MessageType, v any) Envelope {
	raw, err := json.Marshal(v)
	if err != nil {
		// Every payload type here is a plain struct of strings/maps/slices;
		// a marshal failure means a programming error, not a runtime one.
		panic(fmt.Sprintf("comm: marshal %s: %v", t, err))
	}
	return Envelope{Type: t, Content: raw}
}

func decode[T any](env Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Content, &v); err != nil {
		return v, fmt.Errorf("comm: decode %s: %w", env.Type, err)
	}
	return v, nil
}

// Hello is broadcast periodically until the handshake completes.
type Hello struct {
	TeamID string `json:"teamId"`
	AgentID string `json:"agentId"`
	Timestamp int64 `json:"timestamp"`
}

// HandshakeInit is sent by the lower-id peer via the ask primitive.
type HandshakeInit struct {
	TeamKey string `json:"teamKey"`
	Nonce string `json:"nonce"`
	From string `json:"from"`
}

// HandshakeAck is the ask reply, carrying a fresh session id.
type HandshakeAck struct {
	TeamKey string `json:"teamKey"`
	SessionID string `json:"sessionId"`
	From string `json:"from"`
	EchoNonce string `json:"echoNonce"`
}

// HandshakeConfirm completes the handshake from the initiator's side.
type HandshakeConfirm struct {
	SessionID string `json:"sessionId"`
	From string `json:"from"`
}

// ParcelsSensed carries the sender's currently-sensed parcels.
type ParcelsSensed struct {
	SessionID string `json:"sessionId"`
	Parcels []model.Parcel `json:"parcels"`
}

// AgentsSensed carries the sender's currently-sensed agents.
type AgentsSensed struct {
	SessionID string `json:"sessionId"`
	Agents []model.Agent `json:"agents"`
}

// MyInfo carries the sender's own agent record.
type MyInfo struct {
	SessionID string `json:"sessionId"`
	Info model.Agent `json:"info"`
}

// MapPartitioning carries the serialized "x,y" -> agentId partitioning.
type MapPartitioning struct {
	SessionID string `json:"sessionId"`
	Partitioning map[string]string `json:"partitioning"`
}
