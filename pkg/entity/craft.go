// pkg/entity/craft.go
package entity

import (
	"math"

	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// LabelOffset is the distance between a craft's lowest vertex and its label.
const LabelOffset = 12

// CraftSpec holds the per-variant parameters of a craft.
type CraftSpec struct {
	Size        float64
	Thrust      float64
	Drag        float64
	BulletSpeed float64
	Color       string
}

// Craft is a powered triangle. Player craft and fighters share this type
// and differ only in who drives them.
type Craft struct {
	ID ID
	physics.Powered
	Live        bool
	Color       string
	Name        string
	Cooldown    int
	BulletSpeed float64
	Fighter     bool
}

// NewCraft builds a craft whose base sits at base with its nose size units
// along +Y. The base is the rotation pivot.
func NewCraft(base physics.Point, spec CraftSpec) *Craft {
	outline := []physics.Point{
		{X: base.X, Y: base.Y + spec.Size},
		{X: base.X - spec.Size/3, Y: base.Y},
		{X: base.X + spec.Size/3, Y: base.Y},
	}
	return &Craft{
		ID:          GenerateID(),
		Powered:     physics.NewPowered(physics.MustShape(outline, base), math.Pi/2, spec.Thrust, spec.Drag),
		Live:        true,
		Color:       spec.Color,
		BulletSpeed: spec.BulletSpeed,
	}
}

// NewFighter builds an autonomous craft.
func NewFighter(base physics.Point, spec CraftSpec) *Craft {
	c := NewCraft(base, spec)
	c.Fighter = true
	return c
}

// Outline implements Positioned.
func (c *Craft) Outline() *physics.Shape { return c.Shape }

// Kind reports which variant c is.
func (c *Craft) Kind() Kind {
	if c.Fighter {
		return KindFighter
	}
	return KindCraft
}

// Nose returns the tip of the triangle, where projectiles leave.
func (c *Craft) Nose() physics.Point { return c.Vertex(0) }

// Move advances a live craft.
func (c *Craft) Move() {
	if c.Live {
		c.Powered.Move()
	}
}

// RotateBy turns a live craft.
func (c *Craft) RotateBy(angle float64) {
	if c.Live {
		c.Powered.RotateBy(angle)
	}
}

// RotateTowards turns a live craft one step toward target.
func (c *Craft) RotateTowards(target physics.Point, step, tolerance float64) {
	if c.Live {
		c.Powered.RotateTowards(target, step, tolerance)
	}
}

// ApplyThrust accelerates a live craft along its facing.
func (c *Craft) ApplyThrust() {
	if c.Live {
		c.Powered.ApplyThrust()
	}
}

// CoolDown counts the fire cooldown down by one tick.
func (c *Craft) CoolDown() {
	if c.Cooldown > 0 {
		c.Cooldown--
	}
}

// Fire returns a projectile leaving the nose along the facing.
func (c *Craft) Fire(grace int) *Projectile {
	return NewProjectile(c.Nose(), c.BulletSpeed, c.Facing, c.Color, grace)
}

// Kill marks the craft dead. It stays in place until respawned.
func (c *Craft) Kill() { c.Live = false }

// Respawn moves the nose to at, clears velocity and revives the craft.
func (c *Craft) Respawn(at physics.Point) {
	nose := c.Nose()
	c.Translate(at.X-nose.X, at.Y-nose.Y)
	c.Velocity = physics.Vector2D{}
	c.Live = true
}

// Wrap moves the craft by one world extent when its nose has left
// [0,width]x[0,height].
func (c *Craft) Wrap(width, height float64) {
	nose := c.Nose()
	var dx, dy float64
	switch {
	case nose.X > width:
		dx = -width
	case nose.X < 0:
		dx = width
	}
	switch {
	case nose.Y > height:
		dy = -height
	case nose.Y < 0:
		dy = height
	}
	if dx != 0 || dy != 0 {
		c.Translate(dx, dy)
	}
}

// View returns the renderable form. Dead craft are not rendered.
func (c *Craft) View() (View, bool) {
	if !c.Live {
		return View{}, false
	}
	v := View{
		Kind:        c.Kind(),
		Points:      c.Vertices(),
		FillColor:   c.Color,
		StrokeColor: "white",
	}
	if c.Name != "" {
		anchor := labelAnchor(v.Points)
		v.Name = c.Name
		v.NamePoint = &anchor
	}
	return v, true
}

func labelAnchor(points []physics.Point) physics.Point {
	var sumX float64
	maxY := math.Inf(-1)
	for _, p := range points {
		sumX += p.X
		maxY = math.Max(maxY, p.Y)
	}
	return physics.Point{X: sumX / float64(len(points)), Y: maxY + LabelOffset}
}
