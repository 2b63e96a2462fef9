// pkg/entity/rock.go
package entity

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// Outline of the default rock in scale units, relative to its first vertex.
var rockTemplate = [...]physics.Point{
	{X: 0, Y: 0}, {X: 1, Y: -1}, {X: 3, Y: -1}, {X: 4, Y: 0}, {X: 3, Y: 1},
	{X: 4, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 2}, {X: 1, Y: 3}, {X: 0, Y: 2},
}

const (
	// Split children keep their speed² inside these multiples of birth speed².
	minSplitEnergy = 0.25
	maxSplitEnergy = 2.25
)

// Rock is a jagged rotating polygon that splits when shot.
type Rock struct {
	ID ID
	physics.Rotating
	Size       float64
	BirthSpeed float64
}

// NewRock builds the default ten-vertex rock anchored at origin. Every vertex
// but the first is jittered by up to half a scale unit on each axis; the
// pivot sits at the template center.
func NewRock(rng *rand.Rand, origin physics.Point, scale, speed, heading float64) *Rock {
	outline := make([]physics.Point, len(rockTemplate))
	for i, t := range rockTemplate {
		p := physics.Point{X: origin.X + t.X*scale, Y: origin.Y + t.Y*scale}
		if i > 0 {
			p.X += (rng.Float64() - 0.5) * scale
			p.Y += (rng.Float64() - 0.5) * scale
		}
		outline[i] = p
	}
	center := physics.Point{X: origin.X + 2*scale, Y: origin.Y + 2*scale}
	return &Rock{
		ID:         GenerateID(),
		Rotating:   physics.NewRotating(physics.MustShape(outline, center), speed, heading, heading),
		Size:       scale,
		BirthSpeed: speed,
	}
}

// Outline implements Positioned.
func (r *Rock) Outline() *physics.Shape { return r.Shape }

// ScaleTo resizes the outline and the recorded size together.
func (r *Rock) ScaleTo(factor float64) {
	r.Shape.ScaleTo(factor)
	r.Size *= factor
}

// Clone returns an independent copy under a fresh ID.
func (r *Rock) Clone() *Rock {
	c := *r
	c.ID = GenerateID()
	c.Shape = r.Shape.Clone()
	return &c
}

// Split breaks r in two. r keeps a random share f of the area and the
// returned rock gets the rest; the pair diverge by a random angle and each
// is re-spun. Speeds are then boosted by dv and 2-dv where the result stays
// inside the birth energy band.
func (r *Rock) Split(rng *rand.Rand) *Rock {
	share := rng.Float64()*0.5 + 0.25
	separation := rng.Float64() * math.Pi / 2

	other := r.Clone()
	other.ScaleTo(math.Sqrt(1 - share))
	r.ScaleTo(math.Sqrt(share))

	r.TurnHeading(separation)
	other.TurnHeading(-separation)
	r.RotateBy(rng.Float64() * 0.5 * math.Pi)
	other.RotateBy(rng.Float64() * 0.5 * math.Pi)

	dv := rng.Float64() + 0.5
	r.boost(dv)
	other.boost(2 - dv)
	return other
}

func (r *Rock) boost(factor float64) {
	energy := r.Velocity.LengthSquared() * factor * factor
	birth := r.BirthSpeed * r.BirthSpeed
	if energy >= minSplitEnergy*birth && energy <= maxSplitEnergy*birth {
		r.Velocity = r.Velocity.Scale(factor)
	}
}

// View returns the renderable form.
func (r *Rock) View() View {
	return View{
		Kind:        KindRock,
		Points:      r.Vertices(),
		FillColor:   "black",
		StrokeColor: "white",
	}
}
