package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deliveroo/config"
)

// Client owns a single websocket connection to the simulator and exposes
// the Sensor/Actuator pair the driver wires into belief/option/intention.
// Grounded on this repository's fastview client: an errgroup supervises the
// read pump and the ping ticker together, so either's failure tears down
// the other via the shared context.
type Client struct {
	sock *sock
	Sensor *Sensor
	Actuator *Actuator
	log *zap.Logger
}

// Dial opens a websocket connection to host, authenticated with token,
// and returns a ready Client.
func Dial(ctx context.Context, host, token string, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid API_HOST %q: %w", host, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", u.String(), err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	s := newSock(conn)
	sensor := newSensor(s, config.ParseInterval, log)
	actuator := newActuator(s)
	sensor.actuator = actuator

	c := &Client{
		sock: s,
		Sensor: sensor,
		Actuator: actuator,
		log: log,
	}
	return c, nil
}

// Run drives the connection until ctx is cancelled or an unrecoverable
// socket error occurs: a read pump routes inbound frames to either the
// Actuator's ack waiters or the Sensor's typed channels, and a ping ticker
// keeps the connection alive across idle periods.
func (c *Client) Run(ctx context.Context) error {
	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return c.readPump(gctx)
	})
	grp.Go(func() error {
		return c.pingLoop(gctx)
	})

	err := grp.Wait()
	c.sock.Close()
	return err
}

func (c *Client) readPump(ctx context.Context) error {
	for {
		f, err := c.sock.readFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isUnexpectedClose(err) {
				return fmt.Errorf("%w: %v", ErrPongDeadlineExceeded, err)
			}
			return fmt.Errorf("transport: read frame: %w", err)
		}
		if f.Event == eventAck {
			c.Actuator.deliverAck(f)
			continue
		}
		if err := c.Sensor.dispatch(ctx, f); err != nil {
			c.log.Warn("transport: dropping malformed frame", zap.String("event", f.Event), zap.Error(err))
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingResolution)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.sock.writeFrame(ctx, frame{Event: "ping"}); err != nil {
				return fmt.Errorf("transport: ping: %w", err)
			}
		}
	}
}
