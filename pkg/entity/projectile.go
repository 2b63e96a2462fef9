// pkg/entity/projectile.go
package entity

import (
	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// Projectile is a single moving point. While Grace is positive it cannot
// register a hit, which keeps a shot from striking its own muzzle.
type Projectile struct {
	ID ID
	physics.Kinematic
	Color string
	Grace int

	previous physics.Point
}

// NewProjectile creates a projectile at the given point.
func NewProjectile(at physics.Point, speed, heading float64, color string, grace int) *Projectile {
	shape, err := physics.NewShape([]physics.Point{at})
	if err != nil {
		panic(err)
	}
	return &Projectile{
		ID:        GenerateID(),
		Kinematic: physics.NewKinematic(shape, speed, heading),
		Color:     color,
		Grace:     grace,
		previous:  at,
	}
}

// Outline implements Positioned.
func (p *Projectile) Outline() *physics.Shape { return p.Shape }

// Position returns the current location.
func (p *Projectile) Position() physics.Point { return p.Vertex(0) }

// Move advances the projectile and counts down its grace period.
func (p *Projectile) Move() {
	p.previous = p.Position()
	p.Kinematic.Move()
	if p.Grace > 0 {
		p.Grace--
	}
}

// CanHit reports whether the grace period has elapsed.
func (p *Projectile) CanHit() bool { return p.Grace == 0 }

// TravelSegment is the path covered during the last Move.
func (p *Projectile) TravelSegment() physics.Segment {
	return physics.NewSegment(p.previous, p.Position())
}

// InBounds reports whether the projectile is inside [0,width]x[0,height].
func (p *Projectile) InBounds(width, height float64) bool {
	pos := p.Position()
	return pos.X >= 0 && pos.X <= width && pos.Y >= 0 && pos.Y <= height
}

// View returns the renderable form.
func (p *Projectile) View() View {
	return View{
		Kind:      KindProjectile,
		Points:    []physics.Point{p.Position()},
		FillColor: p.Color,
	}
}
