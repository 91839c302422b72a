package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"deliveroo/comm"
	"deliveroo/grid"
	"deliveroo/model"
)

// InboundMessage is a decoded peer message.
// Reply is non-nil only when the peer used Ask and expects a response.
type InboundMessage struct {
	FromID string
	Envelope comm.Envelope
	Reply func(ctx context.Context, env comm.Envelope) error
}

// Event names used on the simulator-facing socket.
const (
	eventConfig = "config"
	eventYou = "you"
	eventMap = "map"
	eventParcelsSensing = "parcels_sensing"
	eventAgentsSensing = "agents_sensing"
	eventMsg = "msg"
)

// wireTile is the onMap payload shape: a flat tile list plus dimensions.
type wireTile struct {
	X, Y int
	Type int
}

type wireMap struct {
	Width int `json:"width"`
	Height int `json:"height"`
	Tiles []wireTile `json:"tiles"`
}

type wireConfig struct {
	MapFile string `json:"MAP_FILE"`
	ParcelsGenerationInterval string `json:"PARCELS_GENERATION_INTERVAL"`
	ParcelsMax int `json:"PARCELS_MAX"`
	MovementSteps int `json:"MOVEMENT_STEPS"`
	MovementDuration int64 `json:"MOVEMENT_DURATION"`
	AgentsObservationDistance int `json:"AGENTS_OBSERVATION_DISTANCE"`
	ParcelsObservationDistance int `json:"PARCELS_OBSERVATION_DISTANCE"`
	AgentTimeout string `json:"AGENT_TIMEOUT"`
	ParcelRewardAvg float64 `json:"PARCEL_REWARD_AVG"`
	ParcelRewardVariance float64 `json:"PARCEL_REWARD_VARIANCE"`
	ParcelDecadingInterval string `json:"PARCEL_DECADING_INTERVAL"`
	RandomlyMovingAgents bool `json:"RANDOMLY_MOVING_AGENTS"`
	AgentSpeed float64 `json:"AGENT_SPEED"`
	Clock int64 `json:"CLOCK"`
}

// IntervalParser decodes the compact interval fields of a config frame;
// Dial passes config.ParseInterval.
type IntervalParser func(raw string) (model.Interval, error)

// Sensor streams decoded simulator events on typed channels. The driver's
// select loop owns consumption, never the Sensor itself.
type Sensor struct {
	Config chan model.GameConfig
	You chan model.Agent
	Map chan *grid.Grid
	Parcels chan []model.Parcel
	Agents chan []model.Agent
	Msg chan InboundMessage
	Errs chan error

	sock *sock
	parseInterval IntervalParser
	log *zap.Logger
	actuator *Actuator
}

func newSensor(s *sock, parseInterval IntervalParser, log *zap.Logger) *Sensor {
	return &Sensor{
		Config: make(chan model.GameConfig, 1),
		You: make(chan model.Agent, 1),
		Map: make(chan *grid.Grid, 1),
		Parcels: make(chan []model.Parcel, 8),
		Agents: make(chan []model.Agent, 8),
		Msg: make(chan InboundMessage, 8),
		Errs: make(chan error, 1),
		sock: s,
		parseInterval: parseInterval,
		log: log,
	}
}

// dispatch decodes a single inbound frame and publishes it onto the
// matching typed channel. Called from Client's read-pump goroutine; any
// decode error is logged and the frame dropped rather than killing the
// pump, since a single malformed frame shouldn't take the connection down.
func (s *Sensor) dispatch(ctx context.Context, f frame) error {
	switch f.Event {
	case eventConfig:
		var wc wireConfig
		if err := json.Unmarshal(f.Data, &wc); err != nil {
			return err
		}
		cfg, err := s.decodeConfig(wc)
		if err != nil {
			return err
		}
		return send(ctx, s.Config, cfg)
	case eventYou:
		var a model.Agent
		if err := json.Unmarshal(f.Data, &a); err != nil {
			return err
		}
		return send(ctx, s.You, a)
	case eventMap:
		var wm wireMap
		if err := json.Unmarshal(f.Data, &wm); err != nil {
			return err
		}
		tiles := make([]grid.Tile, len(wm.Tiles))
		for i, t := range wm.Tiles {
			tiles[i] = grid.Tile{X: t.X, Y: t.Y, Type: model.TileType(t.Type)}
		}
		return send(ctx, s.Map, grid.New(wm.Width, wm.Height, tiles))
	case eventParcelsSensing:
		var parcels []model.Parcel
		if err := json.Unmarshal(f.Data, &parcels); err != nil {
			return err
		}
		return send(ctx, s.Parcels, parcels)
	case eventAgentsSensing:
		var agents []model.Agent
		if err := json.Unmarshal(f.Data, &agents); err != nil {
			return err
		}
		return send(ctx, s.Agents, agents)
	case eventMsg:
		return s.dispatchMsg(ctx, s.actuator, f.Data)
	default:
		return fmt.Errorf("transport: unrecognised event %q", f.Event)
	}
}

func (s *Sensor) decodeConfig(wc wireConfig) (model.GameConfig, error) {
	gen, err := s.parseInterval(wc.ParcelsGenerationInterval)
	if err != nil {
		return model.GameConfig{}, fmt.Errorf("PARCELS_GENERATION_INTERVAL: %w", err)
	}
	timeout, err := s.parseInterval(wc.AgentTimeout)
	if err != nil {
		return model.GameConfig{}, fmt.Errorf("AGENT_TIMEOUT: %w", err)
	}
	decay, err := s.parseInterval(wc.ParcelDecadingInterval)
	if err != nil {
		return model.GameConfig{}, fmt.Errorf("PARCEL_DECADING_INTERVAL: %w", err)
	}
	return model.GameConfig{
		MapFile: wc.MapFile,
		ParcelsGenerationInterval: gen,
		ParcelsMax: wc.ParcelsMax,
		MovementSteps: wc.MovementSteps,
		MovementDuration: wc.MovementDuration,
		AgentsObservationDistance: wc.AgentsObservationDistance,
		ParcelsObservationDistance: wc.ParcelsObservationDistance,
		AgentTimeout: timeout,
		ParcelRewardAvg: wc.ParcelRewardAvg,
		ParcelRewardVariance: wc.ParcelRewardVariance,
		ParcelDecadingInterval: decay,
		RandomlyMovingAgents: wc.RandomlyMovingAgents,
		AgentSpeed: wc.AgentSpeed,
		Clock: wc.Clock,
	}, nil
}

func send[T any](ctx context.Context, ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
