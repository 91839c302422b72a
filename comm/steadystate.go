package comm

import (
	"context"
	"fmt"

	"deliveroo/belief"
	"deliveroo/model"
)

// ErrStaleSession is returned by ApplySteadyState when an inbound message's
// session id doesn't match the current one.
var ErrStaleSession = fmt.Errorf("comm: stale session")

// ApplySteadyState merges one inbound steady-state envelope into b via the
// same update paths local sensor events use, after checking the envelope's
// session id against s. A MapPartitioning message is applied as
// b.SetPartitioning.
func (s *Session) ApplySteadyState(b *belief.BeliefSet, env Envelope) error {
	if !s.complete {
		return fmt.Errorf("comm: steady-state message received before handshake completion")
	}

	switch env.Type {
	case TypeParcelsSensed:
		msg, err := decode[ParcelsSensed](env)
		if err != nil {
			return err
		}
		if msg.SessionID != s.sessionID {
			return ErrStaleSession
		}
		sensed := make(map[model.Point]struct{}, len(msg.Parcels))
		for _, p := range msg.Parcels {
			sensed[p.Position()] = struct{}{}
		}
		b.UpdateFromParcels(msg.Parcels, sensed)
		return nil

	case TypeAgentsSensed:
		msg, err := decode[AgentsSensed](env)
		if err != nil {
			return err
		}
		if msg.SessionID != s.sessionID {
			return ErrStaleSession
		}
		b.UpdateFromAgents(msg.Agents)
		return nil

	case TypeMyInfo:
		msg, err := decode[MyInfo](env)
		if err != nil {
			return err
		}
		if msg.SessionID != s.sessionID {
			return ErrStaleSession
		}
		b.UpdateFromTeammate(msg.Info)
		return nil

	case TypeMapPartitioning:
		msg, err := decode[MapPartitioning](env)
		if err != nil {
			return err
		}
		if msg.SessionID != s.sessionID {
			return ErrStaleSession
		}
		b.SetPartitioning(msg.Partitioning)
		return nil

	default:
		return fmt.Errorf("comm: unexpected steady-state message type %s", env.Type)
	}
}

// BroadcastParcelsSensed, BroadcastAgentsSensed, BroadcastMyInfo and
// BroadcastPartitioning shout the corresponding steady-state message tagged
// with the current session id. Each is a no-op (returns nil) before the
// handshake completes, since there is no teammate session to address yet.

func (s *Session) BroadcastParcelsSensed(ctx context.Context, parcels []model.Parcel) error {
	if !s.complete {
		return nil
	}
	return s.link.Shout(ctx, encode(TypeParcelsSensed, ParcelsSensed{SessionID: s.sessionID, Parcels: parcels}))
}

func (s *Session) BroadcastAgentsSensed(ctx context.Context, agents []model.Agent) error {
	if !s.complete {
		return nil
	}
	return s.link.Shout(ctx, encode(TypeAgentsSensed, AgentsSensed{SessionID: s.sessionID, Agents: agents}))
}

func (s *Session) BroadcastMyInfo(ctx context.Context, info model.Agent) error {
	if !s.complete {
		return nil
	}
	return s.link.Shout(ctx, encode(TypeMyInfo, MyInfo{SessionID: s.sessionID, Info: info}))
}

func (s *Session) BroadcastPartitioning(ctx context.Context, partitioning map[string]string) error {
	if !s.complete {
		return nil
	}
	return s.link.Shout(ctx, encode(TypeMapPartitioning, MapPartitioning{SessionID: s.sessionID, Partitioning: partitioning}))
}
