package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deliveroo/belief"
	"deliveroo/comm"
	"deliveroo/config"
	"deliveroo/intention"
	"deliveroo/logging"
	"deliveroo/model"
	"deliveroo/option"
	"deliveroo/plan"
	"deliveroo/status"
	"deliveroo/transport"
)

// runAgent loads configuration, connects to the simulator, and drives the
// decision core until ctx is cancelled or the connection fails
// unrecoverably.
func runAgent(ctx context.Context, path string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := transport.Dial(ctx, cfg.APIHost, cfg.ClientToken, logger)
	if err != nil {
		return err
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return client.Run(gctx) })

	d := newDriver(cfg, client, logger)
	grp.Go(func() error { return d.run(gctx) })

	if cfg.StatusAddr != "" {
		srv := &http.Server{
			Addr: cfg.StatusAddr,
			Handler: status.NewHandler(d.belief, cfg.Mode),
		}
		grp.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		grp.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return grp.Wait()
}

// driver owns every piece of mutable decision-core state: BeliefSet, the
// intention queue, and (in CoOp mode) the handshake session. It is the one
// goroutine that ever touches them, consuming the transport's event channels and the
// tick timer from one select loop.
type driver struct {
	cfg config.AgentConfig
	client *transport.Client
	log *zap.Logger

	belief *belief.BeliefSet
	queue *intention.Queue
	session *comm.Session
}

func newDriver(cfg config.AgentConfig, client *transport.Client, log *zap.Logger) *driver {
	b := belief.New(time.Now)

	actuator := client.Actuator
	var partitioner plan.Partitioner
	var session *comm.Session
	if cfg.Mode == config.CoOp {
		// selfID is unknown until onYou arrives; Session.SetSelfID is
		// called from the driver loop once it does.
		session = comm.NewSession(cfg.TeamKey, "", actuator, nil)
		partitioner = &sessionPartitioner{belief: b, session: session}
	}

	library := buildPlanLibrary(cfg, b, actuator, partitioner)
	queue := intention.NewQueue(library, validatorFor(b), nil)

	return &driver{cfg: cfg, client: client, log: log, belief: b, queue: queue, session: session}
}

// buildPlanLibrary assembles the plan library in priority order: when PDDL
// is enabled, PDDLGoToPlan is tried ahead of GoToPlan for GoTo/Exploration
// predicates, falling back to GoToPlan on ErrStateMismatch/ErrPathNotFound.
func buildPlanLibrary(cfg config.AgentConfig, b *belief.BeliefSet, actuator plan.Actuator, partitioner plan.Partitioner) []intention.Plan {
	library := make([]intention.Plan, 0, 4)
	if cfg.UsePDDL {
		library = append(library, plan.NewPDDLGoToPlan(b, actuator, nil))
	}
	library = append(library,
		plan.NewGoToPlan(b, actuator),
		plan.NewPickUpPlan(b, actuator, partitioner),
		plan.NewDeliverPlan(b, actuator, partitioner),
	)
	return library
}

// validatorFor builds the Queue's per-Tick head-validity check: a Deliver while not carrying, or a Pickup whose target parcel is
// already carried by someone else, both invalidate the head.
func validatorFor(b *belief.BeliefSet) intention.Validator {
	return func(p model.Predicate) bool {
		switch p.Type {
		case model.Deliver:
			return b.CarriedCount() > 0
		case model.Pickup:
			parcel, ok := b.ParcelAt(p.Destination)
			if !ok {
				return true // already picked up by us or decayed away; Achieve will no-op via the actuator
			}
			if self, haveSelf := b.Self(); haveSelf {
				return parcel.CarriedBy == "" || parcel.CarriedBy == self.ID
			}
			return parcel.CarriedBy == ""
		default:
			return true
		}
	}
}

func (d *driver) run(ctx context.Context) error {
	loopInterval, err := config.ParseInterval(d.cfg.LoopInterval)
	if err != nil {
		return err
	}
	tickEvery := time.Duration(loopInterval.Duration) * time.Millisecond
	if loopInterval.IsInfinite || tickEvery <= 0 {
		tickEvery = time.Second
	}
	// channerics.NewTicker ties the tick channel's lifetime to ctx, matching
	// this repository's existing goroutine-lifetime convention of threading a
	// done channel through every channel-producing helper instead of a
	// separately-stopped time.Ticker.
	tickCh := channerics.NewTicker(ctx.Done(), tickEvery)

	var helloCh <-chan time.Time
	if d.session != nil {
		helloCh = channerics.NewTicker(ctx.Done(), 500*time.Millisecond)
	}

	sensor := d.client.Sensor
	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-sensor.Config:
			d.belief.UpdateFromConfig(cfg)

		case you := <-sensor.You:
			d.belief.UpdateFromYou(you)
			d.client.Actuator.SetSelfID(you.ID)
			if d.session != nil {
				d.session.SetSelfID(you.ID)
			}

		case g := <-sensor.Map:
			d.belief.UpdateFromMap(g)

		case parcels := <-sensor.Parcels:
			sensed := make(map[model.Point]struct{}, len(parcels))
			for _, p := range parcels {
				sensed[p.Position()] = struct{}{}
			}
			d.belief.UpdateFromParcels(parcels, sensed)
			if d.session != nil {
				_ = d.session.BroadcastParcelsSensed(ctx, parcels)
			}

		case agents := <-sensor.Agents:
			d.belief.UpdateFromAgents(agents)
			if d.session != nil {
				_ = d.session.BroadcastAgentsSensed(ctx, agents)
			}

		case inbound := <-sensor.Msg:
			d.handleInbound(ctx, inbound)

		case <-helloCh:
			_ = d.session.BroadcastHello(ctx)

		case <-tickCh:
			d.tick(ctx)
		}
	}
}

func (d *driver) handleInbound(ctx context.Context, inbound transport.InboundMessage) {
	if d.session == nil {
		return
	}
	var reply func(comm.Envelope) error
	if inbound.Reply != nil {
		reply = func(env comm.Envelope) error { return inbound.Reply(ctx, env) }
	}

	if !d.session.Complete() {
		if err := d.session.HandleMessage(ctx, inbound.FromID, inbound.Envelope, reply); err != nil {
			d.log.Warn("handshake message rejected", zap.Error(err))
		}
		return
	}
	if err := d.session.ApplySteadyState(d.belief, inbound.Envelope); err != nil {
		d.log.Warn("steady-state message rejected", zap.Error(err))
	}
}

// tick runs one pass of the option generator and feeds the queue: generate a candidate against the current head, push it if
// one was produced, then advance the queue by one step.
func (d *driver) tick(ctx context.Context) {
	current := option.Current{}
	if head, ok := d.queue.Head(); ok {
		current = option.Current{Has: true, Predicate: head.Predicate}
	}

	if predicate, ok := option.Generate(d.belief, current, d.cfg.PreemptionThreshold); ok {
		d.queue.Push(predicate)
	}

	if err := d.queue.Tick(ctx); err != nil {
		d.log.Warn("intention tick ended in error", zap.Error(err))
	}
}
