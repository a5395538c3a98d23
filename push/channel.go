// Package push maintains the process-wide push channel: one websocket shared
// by every screen, delivering progress events for any job id, surviving
// navigation between consumers.
package push

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stratalab/gensync/config"
	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/internal/telemetry"
	"github.com/stratalab/gensync/logger"
	"github.com/stratalab/gensync/wire"
)

// SubscriberChannelBufferSize is the buffer size for subscriber channels.
const SubscriberChannelBufferSize = 100

// Options configures a Channel. The zero Dialer falls back to the gorilla
// default; tests point URL at a fake server.
type Options struct {
	// URL is the ws(s):// endpoint.
	URL string
	// Token is attached as a bearer credential at connect time, not per event.
	Token string
	// ReconnectGrace is how long after a connect (or a drop) the channel
	// waits before its single liveness check. This is a minimum liveness
	// guarantee, not a backoff scheme.
	ReconnectGrace time.Duration
	// Dialer overrides the websocket dialer.
	Dialer *websocket.Dialer
}

// Channel is the persistent push-channel client. It has an explicit
// lifecycle - Connect when entering the authenticated area, Disconnect when
// leaving - and is handed to consumers as a capability, never reached through
// hidden global state. A Channel serves exactly one session: Disconnect is
// final, and re-entering the authenticated area means constructing a fresh
// Channel (FromConfig) rather than reviving the old one.
//
// Delivery is at-least-once with no ordering guarantee across reconnects;
// duplicates and stale replays are expected and resolved downstream by the
// job store's reconciliation rules.
type Channel struct {
	url    string
	token  string
	grace  time.Duration
	dialer *websocket.Dialer
	log    *zap.SugaredLogger

	mu      sync.Mutex
	conn    *websocket.Conn
	dialing bool
	subs    map[string]chan wire.ProgressEvent
	closed  bool
}

// New creates a disconnected channel.
func New(opts Options) *Channel {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	grace := opts.ReconnectGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Channel{
		url:    opts.URL,
		token:  opts.Token,
		grace:  grace,
		dialer: dialer,
		log:    logger.With("component", "push"),
		subs:   make(map[string]chan wire.ProgressEvent),
	}
}

// FromConfig creates a channel from resolved configuration.
func FromConfig(cfg *config.Config) *Channel {
	return New(Options{
		URL:            cfg.WebSocketURL(),
		Token:          cfg.Auth.Token,
		ReconnectGrace: cfg.Push.ReconnectGrace(),
	})
}

// Connect dials the push endpoint, attaching the auth credential in the
// handshake. It is a no-op when already connected or when another Connect is
// already dialing, so a caller retry overlapping the liveness check never
// produces a second socket. A single liveness check is scheduled one grace
// period after each connect attempt; if the channel is down by then it
// reconnects once.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.WithStack(errors.ErrChannelClosed)
	}
	if c.conn != nil || c.dialing {
		c.mu.Unlock()
		return nil
	}
	c.dialing = true
	c.mu.Unlock()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		c.mu.Lock()
		c.dialing = false
		c.mu.Unlock()
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return errors.WithStack(errors.ErrUnauthorized)
		}
		// Even a failed connect gets its liveness check, so a transient
		// refusal heals without caller involvement.
		time.AfterFunc(c.grace, c.livenessCheck)
		return errors.Wrap(errors.ErrTransport, err.Error())
	}

	c.mu.Lock()
	c.dialing = false
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return errors.WithStack(errors.ErrChannelClosed)
	}
	c.conn = conn
	c.mu.Unlock()

	c.log.Infow("Push channel connected", "url", c.url)
	go c.readLoop(conn)
	time.AfterFunc(c.grace, c.livenessCheck)
	return nil
}

// Connected reports whether the channel currently holds a live connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Disconnect tears the channel down explicitly and closes all subscriber
// channels. Call it when no consumer needs the channel anymore, e.g. on
// leaving the authenticated area.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	for key, ch := range c.subs {
		delete(c.subs, key)
		close(ch)
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.log.Infow("Push channel disconnected")
}

// Subscribe registers for every event the channel delivers, regardless of
// job id. The returned func unsubscribes and closes the channel. After
// Disconnect the returned channel is already closed.
func (c *Channel) Subscribe() (<-chan wire.ProgressEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan wire.ProgressEvent, SubscriberChannelBufferSize)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	key := uuid.NewString()
	c.subs[key] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[key]; ok {
			delete(c.subs, key)
			close(sub)
		}
	}
}

// readLoop pumps one connection until it drops, fanning events out to
// subscribers. Fan-out sends are non-blocking; a full subscriber drops the
// event and catches up from a later one.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var ev wire.ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			closed := c.closed
			c.mu.Unlock()
			conn.Close()

			if !closed {
				c.log.Warnw("Push channel dropped", "error", err.Error())
				time.AfterFunc(c.grace, c.livenessCheck)
			}
			return
		}

		c.mu.Lock()
		for _, ch := range c.subs {
			select {
			case ch <- ev:
			default:
				// Subscriber too slow - drop
			}
		}
		c.mu.Unlock()
	}
}

// livenessCheck reconnects once if the channel is down and was not
// explicitly disconnected.
func (c *Channel) livenessCheck() {
	c.mu.Lock()
	down := c.conn == nil && !c.closed
	c.mu.Unlock()
	if !down {
		return
	}

	telemetry.PushReconnects.Inc()
	c.log.Infow("Push channel down after grace period, reconnecting")
	if err := c.Connect(context.Background()); err != nil {
		c.log.Warnw("Push channel reconnect failed", "error", err.Error())
	}
}
