// Package feed consumes the live order-events feed. Every message is a full
// order snapshot; the most recent message for an order id is authoritative.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/metrics"
)

// State is the connection state visible to the indicator.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
)

// Conn is one live subscription. The messages channel closes when the
// connection drops.
type Conn interface {
	Messages() <-chan []byte
	Close() error
}

// Transport dials the feed. Implementations: STOMP over WebSocket, Pub/Sub.
type Transport interface {
	Connect(ctx context.Context) (Conn, error)
}

// Options wires a feed client. ReconnectDelay is the fixed pause before every
// reconnection attempt; the client retries forever with no backoff growth and
// no attempt cap.
type Options struct {
	Transport      Transport
	ReconnectDelay time.Duration
	Logger         *logger.Logger
	Metrics        *metrics.FeedMetrics

	// OnOrder receives each decoded snapshot. OnState receives every
	// connection state change, including the initial DISCONNECTED.
	OnOrder func(api.Order)
	OnState func(State)

	// wait pauses between attempts; tests override it.
	wait func(ctx context.Context, d time.Duration) error
}

// Client runs the subscribe/consume/reconnect loop.
type Client struct {
	opts Options
}

// New validates the options and builds a client.
func New(opts Options) (*Client, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("feed transport required")
	}
	if opts.ReconnectDelay <= 0 {
		return nil, fmt.Errorf("reconnect delay must be positive")
	}
	if opts.OnOrder == nil {
		return nil, fmt.Errorf("order handler required")
	}
	if opts.wait == nil {
		opts.wait = sleepCtx
	}
	return &Client{opts: opts}, nil
}

// Run connects and consumes until ctx is cancelled. A dial failure or a
// dropped connection moves the client to DISCONNECTED and schedules the next
// attempt after the fixed delay.
func (c *Client) Run(ctx context.Context) error {
	c.setState(ctx, StateDisconnected)

	for {
		c.setState(ctx, StateConnecting)
		conn, err := c.opts.Transport.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if c.opts.Logger != nil {
				c.opts.Logger.Warn(ctx, "feed connection failed: "+err.Error())
			}
			c.setState(ctx, StateDisconnected)
			c.opts.Metrics.IncReconnects()
			if err := c.opts.wait(ctx, c.opts.ReconnectDelay); err != nil {
				return nil
			}
			continue
		}

		c.setState(ctx, StateConnected)
		c.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.setState(ctx, StateDisconnected)
		c.opts.Metrics.IncReconnects()
		if err := c.opts.wait(ctx, c.opts.ReconnectDelay); err != nil {
			return nil
		}
	}
}

func (c *Client) consume(ctx context.Context, conn Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-conn.Messages():
			if !ok {
				return
			}
			c.opts.Metrics.IncMessages()

			var order api.Order
			if err := json.Unmarshal(raw, &order); err != nil {
				// Malformed snapshots are skipped, never fatal.
				if c.opts.Logger != nil {
					c.opts.Logger.Warn(ctx, "discarding undecodable feed message: "+err.Error())
				}
				continue
			}
			c.opts.OnOrder(order)
		}
	}
}

func (c *Client) setState(ctx context.Context, state State) {
	c.opts.Metrics.SetConnected(state == StateConnected)
	if c.opts.Logger != nil {
		c.opts.Logger.Debug(ctx, "feed state "+string(state))
	}
	if c.opts.OnState != nil {
		c.opts.OnState(state)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
