// pkg/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/logging"
)

// ErrUnknownActor is returned by lookups for an id that is not registered.
// Intent and lifecycle calls never return it; they ignore unknown ids.
var ErrUnknownActor = errors.New("unknown actor")

// Scores awarded per projectile hit.
const (
	rockHitScore    = 1
	fighterHitScore = 10
)

// Intent is the held input of one actor. Turn is -1, 0 or +1.
type Intent struct {
	Turn   int  `json:"turn" msgpack:"turn"`
	Thrust bool `json:"thrust" msgpack:"thrust"`
	Fire   bool `json:"fire" msgpack:"fire"`
}

// clamp forces Turn into {-1, 0, 1}.
func (in Intent) clamp() Intent {
	switch {
	case in.Turn > 0:
		in.Turn = 1
	case in.Turn < 0:
		in.Turn = -1
	}
	return in
}

// actor is one connected participant: its intent record and, once
// initialised, its craft.
type actor struct {
	id     string
	intent Intent
	craft  *entity.Craft
}

// Engine owns the world and advances it one fixed step at a time. All
// methods are safe for concurrent use; event handlers run while the engine
// lock is held and must not call back into the engine.
type Engine struct {
	cfg *config.GameConfig
	rng *rand.Rand
	bus *event.Bus
	log *logging.Logger

	mu          sync.Mutex
	actors      []*actor
	index       map[string]*actor
	rocks       []*entity.Rock
	fighters    []*entity.Craft
	projectiles []*entity.Projectile
	score       int
	tick        uint64
	rockTimer   float64
	rounds      int
	lastTick    time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source. Tests pass a seeded source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithEventBus publishes gameplay events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an empty world from a validated configuration.
func New(cfg *config.GameConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:   cfg,
		index: make(map[string]*actor),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.bus == nil {
		e.bus = event.NewEventBus()
	}
	if e.log == nil {
		e.log = logging.Discard()
	}
	e.rockTimer = cfg.RockSpawnIntervalTicks()
	return e, nil
}

// EventBus returns the bus events are published on.
func (e *Engine) EventBus() *event.Bus { return e.bus }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.GameConfig { return e.cfg }

// RegisterActor adds an actor with an empty intent. Registering an id twice
// keeps the existing record.
func (e *Engine) RegisterActor(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.index[id]; ok {
		return
	}
	a := &actor{id: id}
	e.actors = append(e.actors, a)
	e.index[id] = a

	e.log.Info(logging.WithActorID(context.Background(), id), "actor joined", "actors", len(e.actors))
	e.bus.Publish(event.NewActorEvent(event.ActorJoined, e, id, ""))
}

// UnregisterActor removes an actor together with its craft and intent.
func (e *Engine) UnregisterActor(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.index[id]
	if !ok {
		return
	}
	delete(e.index, id)
	for i, other := range e.actors {
		if other == a {
			e.actors = append(e.actors[:i], e.actors[i+1:]...)
			break
		}
	}

	name := ""
	if a.craft != nil {
		name = a.craft.Name
	}
	e.log.Info(logging.WithActorID(context.Background(), id), "actor left", "actors", len(e.actors))
	e.bus.Publish(event.NewActorEvent(event.ActorLeft, e, id, name))
}

// SetIntent replaces the actor's held input. Unknown ids are ignored.
func (e *Engine) SetIntent(id string, in Intent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.index[id]; ok {
		a.intent = in.clamp()
	}
}

// UpdateIntent applies fn to the actor's current intent. It lets input
// adapters express key presses as edits of the held state. Unknown ids are
// ignored.
func (e *Engine) UpdateIntent(id string, fn func(Intent) Intent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.index[id]; ok {
		a.intent = fn(a.intent).clamp()
	}
}

// InitCraft gives the actor a craft at a random point, or renames the
// existing one. Names are cut to the configured length. Unknown ids are
// ignored.
func (e *Engine) InitCraft(id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.index[id]
	if !ok {
		return
	}
	if a.craft == nil {
		a.craft = e.newPlayerCraft()
	}
	a.craft.Name = truncateName(name, e.cfg.NetworkConfig.MaxNameLength)
}

func truncateName(name string, max int) string {
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	return string(runes[:max])
}

// AdvanceOneTick runs the full tick pipeline once.
func (e *Engine) AdvanceOneTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkRoundReset()
	e.spawnRocks()
	e.spawnFighters()
	e.applyPlayerIntents()
	e.runFighters()
	e.integrate()
	e.resolveCollisions()

	e.tick++
	e.lastTick = time.Now()
}

// WorldDimensions returns the world width and height.
func (e *Engine) WorldDimensions() (float64, float64) {
	return e.cfg.World.Width, e.cfg.World.Height
}

// Score returns the shared score of the current round.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// LastTick returns when the most recent tick finished.
func (e *Engine) LastTick() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastTick
}

// ActorInfo describes one registered actor.
type ActorInfo struct {
	ID       string
	Name     string
	HasCraft bool
	Live     bool
	Color    string
	Intent   Intent
}

// Actor looks up a registered actor.
func (e *Engine) Actor(id string) (ActorInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.index[id]
	if !ok {
		return ActorInfo{}, fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	info := ActorInfo{ID: a.id, Intent: a.intent}
	if a.craft != nil {
		info.HasCraft = true
		info.Name = a.craft.Name
		info.Live = a.craft.Live
		info.Color = a.craft.Color
	}
	return info, nil
}

// Stats counts the world's populations.
type Stats struct {
	Tick        uint64
	Score       int
	Rounds      int
	Actors      int
	LiveCraft   int
	Rocks       int
	Fighters    int
	Projectiles int
}

// Stats returns current population counts.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Tick:        e.tick,
		Score:       e.score,
		Rounds:      e.rounds,
		Actors:      len(e.actors),
		LiveCraft:   e.liveCraftCount(),
		Rocks:       len(e.rocks),
		Fighters:    len(e.fighters),
		Projectiles: len(e.projectiles),
	}
}

func (e *Engine) liveCraftCount() int {
	n := 0
	for _, a := range e.actors {
		if a.craft != nil && a.craft.Live {
			n++
		}
	}
	return n
}

// addScore changes the score and reports it.
func (e *Engine) addScore(delta int) {
	e.score += delta
	e.bus.Publish(event.NewScoreEvent(e, e.score, delta))
}

// checkRoundReset starts a new round when no player craft is alive.
func (e *Engine) checkRoundReset() {
	if e.liveCraftCount() > 0 {
		return
	}

	finalScore := e.score
	e.score = 0
	e.rocks = nil
	e.projectiles = nil
	e.fighters = nil
	for _, a := range e.actors {
		if a.craft != nil {
			a.craft.Respawn(e.randomWorldPoint())
		}
	}
	e.rockTimer = e.cfg.RockSpawnIntervalTicks()

	// Worlds with no craft reset every tick; only count real rounds.
	if finalScore > 0 || e.hasCraft() {
		e.rounds++
		e.log.Debug(context.Background(), "round reset", "tick", e.tick, "final_score", finalScore)
		e.bus.Publish(event.NewRoundEvent(e, e.tick, finalScore))
	}
}

func (e *Engine) hasCraft() bool {
	for _, a := range e.actors {
		if a.craft != nil {
			return true
		}
	}
	return false
}

// integrate moves every entity by its velocity. Craft apply drag and
// projectiles count down their grace inside Move.
func (e *Engine) integrate() {
	for _, p := range e.projectiles {
		p.Move()
	}
	for _, a := range e.actors {
		if a.craft != nil {
			a.craft.Move()
		}
	}
	for _, f := range e.fighters {
		f.Move()
	}
	for _, r := range e.rocks {
		r.Move()
	}
}
