// pkg/physics/point.go
package physics

import (
	"errors"
	"math"
)

// ErrInvalidPoint is returned when a coordinate is NaN or infinite.
var ErrInvalidPoint = errors.New("point has a non-finite coordinate")

// Point is a mutable 2D coordinate. Points carry no identity; shapes address
// them by slot index.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// MoveBy translates the point in place.
func (p *Point) MoveBy(dx, dy float64) {
	p.X += dx
	p.Y += dy
}

// Add returns the point displaced by v.
func (p Point) Add(v Vector2D) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// DistanceSquared avoids the square root for comparisons.
func (p Point) DistanceSquared(other Point) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return dx*dx + dy*dy
}

// AngleTo returns the direction from p to other in [0, 2*pi).
func (p Point) AngleTo(other Point) float64 {
	return NormalizeAngle(math.Atan2(other.Y-p.Y, other.X-p.X))
}

// RotateAbout rotates the point in place about pivot by angle radians.
// Positive angles turn from +X toward +Y.
func (p *Point) RotateAbout(pivot Point, angle float64) {
	sin, cos := math.Sincos(angle)
	rx := p.X - pivot.X
	ry := p.Y - pivot.Y
	p.X = pivot.X + rx*cos - ry*sin
	p.Y = pivot.Y + rx*sin + ry*cos
}

// Compare orders points by x, then y. It returns -1, 0 or +1.
func (p Point) Compare(other Point) int {
	switch {
	case p.X < other.X:
		return -1
	case p.X > other.X:
		return 1
	case p.Y < other.Y:
		return -1
	case p.Y > other.Y:
		return 1
	}
	return 0
}
