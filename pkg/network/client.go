// pkg/network/client.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/engine"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/logging"
)

// ErrNotConnected is returned by send methods before Connect or after Close.
var ErrNotConnected = errors.New("not connected")

// Client event types
const (
	ClientConnected    event.Type = "client_connected"
	ClientDisconnected event.Type = "client_disconnected"
)

// Client connects to a game server, sends input and receives snapshots.
type Client struct {
	env     *config.EnvironmentConfig
	bus     *event.Bus
	log     *logging.Logger
	breaker *Breaker
	dialer  *websocket.Dialer

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu      sync.Mutex
	welcome Welcome
	latency time.Duration

	states       chan engine.Snapshot
	connected    atomic.Bool
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
}

// NewClient creates an unconnected client. bus and log may be nil.
func NewClient(env *config.EnvironmentConfig, bus *event.Bus, log *logging.Logger) *Client {
	if bus == nil {
		bus = event.NewEventBus()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		env:          env,
		bus:          bus,
		log:          log,
		breaker:      NewBreaker("client-dial", env, log),
		dialer:       &websocket.Dialer{HandshakeTimeout: env.ReadTimeout},
		states:       make(chan engine.Snapshot, 10),
		done:         make(chan struct{}),
		pingInterval: 5 * time.Second,
	}
}

// Connect dials url, waits for the welcome and sends initGame with name.
func (c *Client) Connect(ctx context.Context, url, name string) error {
	if c.connected.Load() {
		return errors.New("already connected")
	}

	var conn *websocket.Conn
	err := c.breaker.ExecuteWithRetry(ctx, func() error {
		var err error
		conn, _, err = c.dialer.DialContext(ctx, url, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.env.ReadTimeout))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read welcome: %w", err)
	}
	msg, err := decodeFrame(kind, data)
	if err == nil && msg.Type != MsgWelcome {
		err = fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var welcome Welcome
	if err == nil {
		err = msg.into(&welcome)
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("invalid welcome: %w", err)
	}

	c.mu.Lock()
	c.welcome = welcome
	c.mu.Unlock()
	c.conn = conn
	c.connected.Store(true)

	ctx = logging.WithActorID(context.Background(), welcome.ID)
	if err := c.send(MsgInitGame, name); err != nil {
		c.finish(ctx)
		return fmt.Errorf("failed to send initGame: %w", err)
	}

	c.log.Info(ctx, "connected", "url", url, "encoding", welcome.Encoding)
	c.bus.Publish(&event.BaseEvent{EventType: ClientConnected, Source: c})

	go c.readLoop(ctx)
	go c.pingLoop()
	return nil
}

// ID returns the actor id assigned by the server.
func (c *Client) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcome.ID
}

// WorldDimensions returns the world size announced by the server.
func (c *Client) WorldDimensions() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcome.Width, c.welcome.Height
}

// Latency returns the last measured round-trip time.
func (c *Client) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// States delivers snapshots. Snapshots are dropped while the channel is full.
func (c *Client) States() <-chan engine.Snapshot { return c.states }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// KeyDown reports a pressed key.
func (c *Client) KeyDown(key string) error { return c.send(MsgKeyDown, key) }

// KeyUp reports a released key.
func (c *Client) KeyUp(key string) error { return c.send(MsgKeyUp, key) }

// SendIntent replaces the held input in one message.
func (c *Client) SendIntent(in engine.Intent) error { return c.send(MsgIntent, in) }

// Ping sends the current time; the pong updates Latency.
func (c *Client) Ping() error { return c.send(MsgPing, time.Now().UnixNano()) }

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) send(msgType MessageType, payload any) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}
	data, err := json.Marshal(outbound{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.env.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.finish(ctx)

	c.conn.SetReadDeadline(time.Time{})
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.connected.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn(ctx, "connection lost", "error", err)
			}
			return
		}

		msg, err := decodeFrame(kind, data)
		if err != nil {
			c.log.Warn(ctx, "undecodable frame", "error", err)
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, msg decoded) {
	switch msg.Type {
	case MsgState:
		var snap engine.Snapshot
		if err := msg.into(&snap); err != nil {
			c.log.Warn(ctx, "bad snapshot", "error", err)
			return
		}
		select {
		case c.states <- snap:
		default:
		}

	case MsgPong:
		var stamp int64
		if err := msg.into(&stamp); err != nil {
			return
		}
		c.mu.Lock()
		c.latency = time.Since(time.Unix(0, stamp))
		c.mu.Unlock()
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Ping(); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// finish runs once when the read loop exits.
func (c *Client) finish(ctx context.Context) {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		c.conn.Close()
		close(c.done)
		c.log.Info(ctx, "disconnected")
		c.bus.Publish(&event.BaseEvent{EventType: ClientDisconnected, Source: c})
	})
}
