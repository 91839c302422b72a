package comm

import "context"

// Link is the peer-to-peer carrier Communication rides on: whatever the transport package's connection to the teammate
// implements. Say and Shout are fire-and-forget; Ask is a request that
// blocks for the peer's reply, used only by the handshake initiator.
type Link interface {
	Say(ctx context.Context, toID string, msg Envelope) error
	Shout(ctx context.Context, msg Envelope) error
	Ask(ctx context.Context, toID string, msg Envelope) (Envelope, error)
}
