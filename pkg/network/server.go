// pkg/network/server.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/engine"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/logging"
	"github.com/opd-ai/go-asteroids/pkg/resource"
	"github.com/opd-ai/go-asteroids/pkg/validation"
)

// Frames queued per connection before broadcasts start dropping.
const sendBuffer = 8

// Server is the websocket transport for one engine. It owns the tick loop:
// each tick advances the engine and every SnapshotEvery ticks the snapshot
// goes to all connections.
type Server struct {
	engine    *engine.Engine
	cfg       *config.GameConfig
	env       *config.EnvironmentConfig
	log       *logging.Logger
	codec     Codec
	validator *validation.MessageValidator
	resources *resource.Manager
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
	roundSub  *event.Subscription

	clientsLock sync.RWMutex
	clients     map[string]*connection
	// Slots held by connections between the capacity check and admit.
	reserved int

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	stopLoop   context.CancelFunc
	loopDone   chan struct{}
	running    atomic.Bool
	dropped    atomic.Uint64
}

// connection is one upgraded websocket and its outbound queue.
type connection struct {
	id      string
	conn    *websocket.Conn
	send    chan Frame
	breaker *Breaker
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(log *logging.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithResources tracks connection writers with rm.
func WithResources(rm *resource.Manager) ServerOption {
	return func(s *Server) { s.resources = rm }
}

// NewServer creates a transport for eng. The wire encoding comes from the
// engine's network config.
func NewServer(eng *engine.Engine, env *config.EnvironmentConfig, opts ...ServerOption) (*Server, error) {
	cfg := eng.Config()
	codec, err := NewCodec(cfg.NetworkConfig.Encoding)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:    eng,
		cfg:       cfg,
		env:       env,
		codec:     codec,
		validator: validation.NewMessageValidator(),
		clients:   make(map[string]*connection),
		mux:       http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.resources == nil {
		s.resources = resource.NewManager(env, s.log)
	}

	s.mux.HandleFunc("/ws", s.ServeWS)
	s.roundSub = eng.EventBus().Subscribe(event.RoundReset, func(ev event.Event) {
		if round, ok := ev.(*event.RoundEvent); ok {
			s.log.Info(context.Background(), "round over", "tick", round.Tick, "final_score", round.FinalScore)
		}
	})
	return s, nil
}

// Handle registers an extra HTTP handler, such as health checks, on the
// server's mux. Call it before Start.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Start listens on address and starts the tick loop.
func (s *Server) Start(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New("server already running")
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return logging.WrapError(err, "failed to listen on %s", address)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.env.ReadTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(context.Background(), "http server stopped", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	s.loopDone = make(chan struct{})
	go s.run(ctx, s.loopDone)

	s.running.Store(true)
	s.log.Info(ctx, "game server started",
		"address", ln.Addr().String(),
		"tick_rate", s.cfg.World.TickRate,
		"encoding", s.codec.Encoding(),
	)
	return nil
}

// Stop halts the tick loop, closes every connection and shuts the HTTP
// server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.stopLoop()
	<-s.loopDone

	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	s.roundSub.Cancel()
	s.validator.Close()
	s.listener = nil

	s.log.Info(ctx, "game server stopped")
	return err
}

// Running reports whether the tick loop is active.
func (s *Server) Running() bool { return s.running.Load() }

// ListenerAddress returns the bound address, or "" when not listening.
func (s *Server) ListenerAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ClientCount returns the number of open connections.
func (s *Server) ClientCount() int {
	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	return len(s.clients)
}

// DroppedFrames returns how many broadcast frames were skipped because a
// connection's queue was full.
func (s *Server) DroppedFrames() uint64 { return s.dropped.Load() }

func (s *Server) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.World.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-ctx.Done():
			return
		}
	}
}

// Step advances the engine one tick and broadcasts when a snapshot is due.
func (s *Server) Step() {
	s.engine.AdvanceOneTick()
	if s.engine.Tick()%uint64(s.cfg.NetworkConfig.SnapshotEvery) == 0 {
		s.broadcastSnapshot()
	}
}

func (s *Server) broadcastSnapshot() {
	frame, err := s.codec.Encode(MsgState, s.engine.Snapshot())
	if err != nil {
		s.log.Error(context.Background(), "failed to encode snapshot", err)
		return
	}

	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.dropped.Add(1)
		}
	}
}

// ServeWS upgrades a request and serves the connection until it closes.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !s.reserveSlot() {
		s.log.Warn(r.Context(), "rejecting connection, server full", "remote", r.RemoteAddr)
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}
	admitted := false
	defer func() {
		if !admitted {
			s.releaseSlot()
		}
	}()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := uuid.NewV4().String()
	ctx := logging.WithActorID(logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()), id)
	c := &connection{
		id:      id,
		conn:    conn,
		send:    make(chan Frame, sendBuffer),
		breaker: NewBreaker("conn-"+id, s.env, s.log),
	}

	welcome, err := s.codec.Encode(MsgWelcome, Welcome{
		ID:       id,
		Width:    s.cfg.World.Width,
		Height:   s.cfg.World.Height,
		TickRate: s.cfg.World.TickRate,
		Encoding: s.codec.Encoding(),
	})
	if err != nil {
		s.log.Error(ctx, "failed to encode welcome", err)
		conn.Close()
		return
	}
	c.send <- welcome

	if err := s.resources.Go(ctx, "writer", func(ctx context.Context) { s.writePump(ctx, c) }); err != nil {
		s.log.Warn(ctx, "refusing connection", "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "busy"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	s.engine.RegisterActor(id)
	s.admit(c)
	admitted = true
	s.log.Info(ctx, "client connected", "remote", r.RemoteAddr, "clients", s.ClientCount())

	s.readPump(ctx, c)
	s.removeClient(ctx, c)
}

func (s *Server) readPump(ctx context.Context, c *connection) {
	c.conn.SetReadLimit(validation.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(s.env.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.env.ReadTimeout))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn(ctx, "connection read failed", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(s.env.ReadTimeout))

		if kind != websocket.TextMessage {
			s.log.Warn(ctx, "ignoring non-text frame", "kind", kind)
			continue
		}
		if err := s.validator.ValidateMessage(data, c.id); err != nil {
			s.log.Warn(ctx, "rejected message", "error", err)
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Warn(ctx, "malformed envelope", "error", err)
			continue
		}
		s.handleMessage(ctx, c, env)
	}
}

// handleMessage applies one inbound envelope. Bad payloads are logged and
// dropped; they never close the connection.
func (s *Server) handleMessage(ctx context.Context, c *connection, env Envelope) {
	switch env.Type {
	case MsgInitGame:
		var name string
		// A missing or non-string name leaves the craft unlabelled.
		_ = json.Unmarshal(env.Payload, &name)
		clean, err := validation.SanitizePlayerName(name)
		if err != nil {
			s.log.Warn(ctx, "invalid player name", "error", err)
			clean = ""
		}
		s.engine.InitCraft(c.id, clean)
		s.log.Info(ctx, "craft initialised", "name", clean)

	case MsgKeyDown, MsgKeyUp:
		var key string
		if err := json.Unmarshal(env.Payload, &key); err != nil {
			s.log.Warn(ctx, "malformed key payload", "type", env.Type, "error", err)
			return
		}
		if err := validation.ValidateKey(key); err != nil {
			s.log.Warn(ctx, "invalid key", "error", err)
			return
		}
		apply := KeyDown
		if env.Type == MsgKeyUp {
			apply = KeyUp
		}
		s.engine.UpdateIntent(c.id, func(in engine.Intent) engine.Intent { return apply(in, key) })

	case MsgIntent:
		var in engine.Intent
		if err := json.Unmarshal(env.Payload, &in); err != nil {
			s.log.Warn(ctx, "malformed intent", "error", err)
			return
		}
		if err := validation.ValidateTurn(in.Turn); err != nil {
			s.log.Warn(ctx, "invalid intent", "error", err)
			return
		}
		s.engine.SetIntent(c.id, in)

	case MsgPing:
		var stamp int64
		if err := json.Unmarshal(env.Payload, &stamp); err != nil {
			s.log.Warn(ctx, "malformed ping", "error", err)
			return
		}
		frame, err := s.codec.Encode(MsgPong, stamp)
		if err != nil {
			s.log.Error(ctx, "failed to encode pong", err)
			return
		}
		select {
		case c.send <- frame:
		default:
		}

	default:
		s.log.Warn(ctx, "unknown message type", "type", env.Type)
	}
}

// writePump is the only goroutine writing data frames to c. It gives up
// once the connection's breaker opens.
func (s *Server) writePump(ctx context.Context, c *connection) {
	ticker := time.NewTicker(s.env.ReadTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			err := c.breaker.Execute(ctx, func() error {
				c.conn.SetWriteDeadline(time.Now().Add(s.env.WriteTimeout))
				return c.conn.WriteMessage(frame.Kind, frame.Data)
			})
			if err != nil && c.breaker.State() == gobreaker.StateOpen {
				s.log.Warn(ctx, "dropping connection after repeated write failures", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.env.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// reserveSlot claims room for one more connection, counting connections
// still being set up, and reports false when the server is full.
func (s *Server) reserveSlot() bool {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	if len(s.clients)+s.reserved >= s.cfg.NetworkConfig.MaxClients {
		return false
	}
	s.reserved++
	return true
}

func (s *Server) releaseSlot() {
	s.clientsLock.Lock()
	s.reserved--
	s.clientsLock.Unlock()
}

// admit turns a reserved slot into a registered connection.
func (s *Server) admit(c *connection) {
	s.clientsLock.Lock()
	s.reserved--
	s.clients[c.id] = c
	s.clientsLock.Unlock()
}

func (s *Server) removeClient(ctx context.Context, c *connection) {
	s.clientsLock.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	remaining := len(s.clients)
	s.clientsLock.Unlock()

	s.engine.UnregisterActor(c.id)
	s.validator.Forget(c.id)
	s.log.Info(ctx, "client disconnected", "clients", remaining)
}

func (s *Server) closeAll() {
	s.clientsLock.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for _, c := range s.clients {
		conns = append(conns, c.conn)
	}
	s.clientsLock.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}
