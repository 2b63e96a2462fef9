// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Gameplay event types
const (
	ActorJoined      Type = "actor_joined"
	ActorLeft        Type = "actor_left"
	ProjectileFired  Type = "projectile_fired"
	RockSplit        Type = "rock_split"
	RockDestroyed    Type = "rock_destroyed"
	CraftDestroyed   Type = "craft_destroyed"
	FighterSpawned   Type = "fighter_spawned"
	FighterDestroyed Type = "fighter_destroyed"
	RoundReset       Type = "round_reset"
	ScoreChanged     Type = "score_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies one registered handler. Cancel removes it and is
// safe to call more than once.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatches synchronously on the
// publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	var once sync.Once
	return &Subscription{
		ID: id,
		Cancel: func() {
			once.Do(func() { b.remove(eventType, id) })
		},
	}
}

func (b *Bus) remove(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// Copy so a Publish iterating the old slice is unaffected.
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			b.handlers[eventType] = append(next, subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// ActorEvent reports a transport actor joining or leaving.
type ActorEvent struct {
	BaseEvent
	ActorID string
	Name    string
}

// NewActorEvent creates a new actor event
func NewActorEvent(eventType Type, source interface{}, actorID, name string) *ActorEvent {
	return &ActorEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		ActorID:   actorID,
		Name:      name,
	}
}

// EntityEvent reports something happening to one entity. CauseID is the
// other entity involved, such as the projectile that hit it or the child
// produced by a split. ActorID is set when the entity belongs to a player.
type EntityEvent struct {
	BaseEvent
	EntityID uint64
	CauseID  uint64
	ActorID  string
}

// NewEntityEvent creates a new entity event
func NewEntityEvent(eventType Type, source interface{}, entityID, causeID uint64, actorID string) *EntityEvent {
	return &EntityEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		EntityID:  entityID,
		CauseID:   causeID,
		ActorID:   actorID,
	}
}

// ScoreEvent reports a change of the shared score.
type ScoreEvent struct {
	BaseEvent
	Score int
	Delta int
}

// NewScoreEvent creates a new score event
func NewScoreEvent(source interface{}, score, delta int) *ScoreEvent {
	return &ScoreEvent{
		BaseEvent: BaseEvent{EventType: ScoreChanged, Source: source},
		Score:     score,
		Delta:     delta,
	}
}

// RoundEvent reports a round reset.
type RoundEvent struct {
	BaseEvent
	Tick       uint64
	FinalScore int
}

// NewRoundEvent creates a new round reset event
func NewRoundEvent(source interface{}, tick uint64, finalScore int) *RoundEvent {
	return &RoundEvent{
		BaseEvent:  BaseEvent{EventType: RoundReset, Source: source},
		Tick:       tick,
		FinalScore: finalScore,
	}
}
