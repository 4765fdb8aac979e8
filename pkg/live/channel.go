// Package live maintains the WebSocket channel to a topology server.
//
// A Channel carries server-pushed events (simulation progress, node
// state changes) wrapped in a small JSON envelope. Handlers subscribe
// per event name and run in subscription order on the reader
// goroutine; a handler panic is isolated so one bad subscriber cannot
// tear down the channel.
package live

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	qerrors "github.com/qforge/qtopo/pkg/errors"
)

// ConnState is the lifecycle state of a Channel.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateOpen
)

// String returns the state name for logs.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "disconnected"
	}
}

// Envelope is the wire format for every message on the channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives the data payload of a subscribed event.
type Handler func(data json.RawMessage)

// EventSimulation is the event name of simulation progress messages.
// The channel keeps an internal log of these regardless of subscribers.
const EventSimulation = "simulation_event"

// maxEventLog caps the internal simulation event log. Older entries are
// dropped first.
const maxEventLog = 1000

const writeWait = 10 * time.Second

type subscription struct {
	id      int
	event   string
	handler Handler
}

// Channel is a client-side WebSocket connection with event dispatch.
// All methods are safe for concurrent use.
type Channel struct {
	logger *log.Logger
	dialer *websocket.Dialer

	mu      sync.Mutex
	state   ConnState
	conn    *websocket.Conn
	url     string
	nextID  int
	subs    []subscription
	events  []Envelope
	writeMu sync.Mutex // gorilla allows one concurrent writer

	// attempt is closed when the in-flight dial settles; attemptErr
	// then holds its outcome. Coalesced Connect calls wait on it.
	attempt    chan struct{}
	attemptErr error
}

// NewChannel creates a disconnected Channel. A nil logger uses the
// default logger.
func NewChannel(logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		logger: logger,
		dialer: websocket.DefaultDialer,
	}
}

// State returns the current connection state.
func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the server. The URL scheme must be ws or wss. Calling
// Connect while already connected to the same URL is a no-op; calling
// it while an attempt is in flight joins that attempt and returns its
// outcome.
func (c *Channel) Connect(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInvalidAddress, err, "invalid channel url")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return qerrors.New(qerrors.ErrCodeInvalidAddress,
			"unsupported scheme %q (want ws or wss)", u.Scheme)
	}

	c.mu.Lock()
	switch c.state {
	case StateConnecting:
		wait := c.attempt
		c.mu.Unlock()
		c.logger.Debug("connect already in flight, joining")
		select {
		case <-wait:
		case <-ctx.Done():
			return qerrors.Wrap(qerrors.ErrCodeTransport, ctx.Err(), "connect cancelled")
		}
		c.mu.Lock()
		err := c.attemptErr
		c.mu.Unlock()
		return err
	case StateOpen:
		if c.url == rawURL {
			c.mu.Unlock()
			return nil
		}
		// Connected elsewhere: drop that connection first.
		c.closeLocked()
	}
	c.state = StateConnecting
	c.url = rawURL
	c.attempt = make(chan struct{})
	c.mu.Unlock()

	conn, resp, err := c.dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		werr := qerrors.Wrap(qerrors.ErrCodeTransport, err, "channel dial failed")
		c.mu.Lock()
		c.state = StateDisconnected
		c.attemptErr = werr
		close(c.attempt)
		c.mu.Unlock()
		return werr
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.attemptErr = nil
	close(c.attempt)
	c.mu.Unlock()

	c.logger.Info("channel open", "url", rawURL)
	go c.readLoop(conn)
	return nil
}

// Reconnect re-dials the last URL. It fails when Connect was never
// called.
func (c *Channel) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	rawURL := c.url
	c.mu.Unlock()
	if rawURL == "" {
		return qerrors.New(qerrors.ErrCodeNotConnected, "no previous connection to restore")
	}
	_ = c.Disconnect()
	return c.Connect(ctx, rawURL)
}

// Disconnect closes the connection. Disconnecting an already closed
// channel is a no-op.
func (c *Channel) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Channel) closeLocked() error {
	if c.conn == nil {
		c.state = StateDisconnected
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = StateDisconnected
	c.logger.Debug("channel closed")
	return err
}

// Send writes an event to the server. When the channel is not open the
// message is dropped with a log line instead of failing the caller;
// interactive editing must keep working while the server is away.
func (c *Channel) Send(event string, data any) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if state != StateOpen || conn == nil {
		c.logger.Debug("channel not open, dropping send", "event", event, "state", state)
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInternal, err, "marshal event payload")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeTransport, err, "set write deadline")
	}
	if err := conn.WriteJSON(Envelope{Event: event, Data: payload}); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeTransport, err, "write event")
	}
	return nil
}

// Subscribe registers a handler for an event name and returns a
// subscription id for Unsubscribe. Handlers for the same event run in
// subscription order.
func (c *Channel) Subscribe(event string, fn Handler) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.subs = append(c.subs, subscription{id: c.nextID, event: event, handler: fn})
	return c.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (c *Channel) Unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Events returns a copy of the accumulated simulation event log.
func (c *Channel) Events() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.events))
	copy(out, c.events)
	return out
}

// ClearEvents discards the accumulated simulation event log.
func (c *Channel) ClearEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			// Only transition if this connection is still current; a
			// Reconnect may already have swapped it out.
			if c.conn == conn {
				c.conn = nil
				c.state = StateDisconnected
			}
			c.mu.Unlock()
			c.logger.Debug("channel reader stopped", "error", err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" || env.Data == nil {
			c.logger.Warn("dropping malformed channel message", "bytes", len(raw))
			continue
		}
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env Envelope) {
	c.mu.Lock()
	if env.Event == EventSimulation {
		c.events = append(c.events, env)
		if len(c.events) > maxEventLog {
			c.events = c.events[len(c.events)-maxEventLog:]
		}
	}
	handlers := make([]Handler, 0, len(c.subs))
	for _, s := range c.subs {
		if s.event == env.Event {
			handlers = append(handlers, s.handler)
		}
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		c.invoke(env, fn)
	}
}

// invoke runs a single handler, containing panics.
func (c *Channel) invoke(env Envelope, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event handler panicked", "event", env.Event, "panic", r)
		}
	}()
	fn(env.Data)
}
