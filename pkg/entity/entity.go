// pkg/entity/entity.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

var nextID atomic.Uint64

// GenerateID returns a process-unique entity ID.
func GenerateID() ID {
	return ID(nextID.Add(1))
}

// Kind names the closed set of entity variants the engine dispatches over.
type Kind string

const (
	KindProjectile Kind = "projectile"
	KindRock       Kind = "rock"
	KindCraft      Kind = "craft"
	KindFighter    Kind = "fighter"
)

// Positioned is anything with an outline in world space.
type Positioned interface {
	Outline() *physics.Shape
}

// Movable advances by its own velocity once per tick.
type Movable interface {
	Positioned
	Move()
}

// Rotatable can turn about its pivot.
type Rotatable interface {
	Movable
	RotateBy(angle float64)
	RotateTowards(target physics.Point, step, tolerance float64)
}

// Thrustable can accelerate along its facing.
type Thrustable interface {
	Rotatable
	ApplyThrust()
}

var (
	_ Movable    = (*Projectile)(nil)
	_ Rotatable  = (*Rock)(nil)
	_ Thrustable = (*Craft)(nil)
)

// View is the renderable, detached description of one entity.
type View struct {
	Kind        Kind            `json:"kind" msgpack:"kind"`
	Points      []physics.Point `json:"points" msgpack:"points"`
	FillColor   string          `json:"fillColor" msgpack:"fillColor"`
	StrokeColor string          `json:"strokeColor,omitempty" msgpack:"strokeColor,omitempty"`
	Name        string          `json:"name,omitempty" msgpack:"name,omitempty"`
	NamePoint   *physics.Point  `json:"namePoint,omitempty" msgpack:"namePoint,omitempty"`
}
