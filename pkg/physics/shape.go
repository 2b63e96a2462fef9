// pkg/physics/shape.go
package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyShape is returned when a shape is built without vertices.
	ErrEmptyShape = errors.New("shape needs at least one vertex")
	// ErrPivotOutOfRange is returned when an aliased pivot names a missing vertex.
	ErrPivotOutOfRange = errors.New("pivot vertex index out of range")
)

// Shape is a closed polygon stored as an arena of point slots. Slots
// [0, n) are the outline in order; the first vertex connects to the last.
// The pivot is a slot index: either one of the outline slots (aliased) or
// a single detached slot n that follows the outline.
//
// Segments and bounds are rebuilt after every mutation, so readers never
// observe stale derived data.
type Shape struct {
	slots    []Point
	n        int
	pivot    int
	segments []Segment
	bounds   BoundingBox
}

// NewShape builds a shape whose pivot aliases the first vertex.
func NewShape(outline []Point) (*Shape, error) {
	return NewShapeAliasedPivot(outline, 0)
}

// NewShapeAliasedPivot builds a shape whose pivot is outline[vertex].
func NewShapeAliasedPivot(outline []Point, vertex int) (*Shape, error) {
	if err := validateOutline(outline); err != nil {
		return nil, err
	}
	if vertex < 0 || vertex >= len(outline) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPivotOutOfRange, vertex, len(outline))
	}
	s := &Shape{
		slots: append([]Point(nil), outline...),
		n:     len(outline),
		pivot: vertex,
	}
	s.refresh()
	return s, nil
}

// NewShapeWithPivot builds a shape with a detached pivot point. The pivot
// is moved and scaled with the shape but never rotated.
func NewShapeWithPivot(outline []Point, pivot Point) (*Shape, error) {
	if err := validateOutline(outline); err != nil {
		return nil, err
	}
	if !pivot.Valid() {
		return nil, fmt.Errorf("pivot: %w", ErrInvalidPoint)
	}
	slots := make([]Point, len(outline)+1)
	copy(slots, outline)
	slots[len(outline)] = pivot
	s := &Shape{
		slots: slots,
		n:     len(outline),
		pivot: len(outline),
	}
	s.refresh()
	return s, nil
}

// MustShape is NewShapeWithPivot for literal geometry; it panics on bad input.
func MustShape(outline []Point, pivot Point) *Shape {
	s, err := NewShapeWithPivot(outline, pivot)
	if err != nil {
		panic(err)
	}
	return s
}

func validateOutline(outline []Point) error {
	if len(outline) == 0 {
		return ErrEmptyShape
	}
	for i, p := range outline {
		if !p.Valid() {
			return fmt.Errorf("vertex %d: %w", i, ErrInvalidPoint)
		}
	}
	return nil
}

// refresh rebuilds the segment list and bounding box from the slots.
func (s *Shape) refresh() {
	s.segments = s.segments[:0]
	for i := 0; i < s.n; i++ {
		s.segments = append(s.segments, NewSegment(s.slots[i], s.slots[(i+1)%s.n]))
	}
	s.bounds = BoundsOf(s.slots[:s.n])
}

// Len returns the number of outline vertices.
func (s *Shape) Len() int { return s.n }

// Vertex returns outline vertex i.
func (s *Shape) Vertex(i int) Point { return s.slots[i] }

// Vertices returns a copy of the outline.
func (s *Shape) Vertices() []Point {
	return append([]Point(nil), s.slots[:s.n]...)
}

// Pivot returns the current rotation pivot.
func (s *Shape) Pivot() Point { return s.slots[s.pivot] }

// PivotIsVertex reports whether the pivot shares a slot with an outline vertex.
func (s *Shape) PivotIsVertex() bool { return s.pivot < s.n }

// Segments returns the outline segments. The slice is owned by the shape.
func (s *Shape) Segments() []Segment { return s.segments }

// Bounds returns the current bounding box.
func (s *Shape) Bounds() BoundingBox { return s.bounds }

// Translate moves every slot exactly once. An aliased pivot moves with its
// vertex; a detached pivot moves as its own slot.
func (s *Shape) Translate(dx, dy float64) {
	for i := range s.slots {
		s.slots[i].MoveBy(dx, dy)
	}
	s.refresh()
}

// Rotate turns the outline about the pivot by angle radians.
func (s *Shape) Rotate(angle float64) {
	pivot := s.slots[s.pivot]
	for i := 0; i < s.n; i++ {
		if i == s.pivot {
			continue
		}
		s.slots[i].RotateAbout(pivot, angle)
	}
	s.refresh()
}

// ScaleTo scales the shape about its first vertex. A detached pivot is
// scaled as well so it keeps its relative position.
func (s *Shape) ScaleTo(factor float64) {
	origin := s.slots[0]
	for i := 1; i < s.n; i++ {
		s.slots[i] = scaleFrom(origin, s.slots[i], factor)
	}
	if s.pivot >= s.n {
		s.slots[s.pivot] = scaleFrom(origin, s.slots[s.pivot], factor)
	}
	s.refresh()
}

func scaleFrom(origin, p Point, factor float64) Point {
	return Point{
		X: origin.X + factor*(p.X-origin.X),
		Y: origin.Y + factor*(p.Y-origin.Y),
	}
}

// Clone returns a deep copy with the same pivot arrangement.
func (s *Shape) Clone() *Shape {
	c := &Shape{
		slots: append([]Point(nil), s.slots...),
		n:     s.n,
		pivot: s.pivot,
	}
	c.refresh()
	return c
}

// IntersectedBy reports whether any of the given segments passes the
// bounding-box fast reject and then crosses one of the shape's segments.
func (s *Shape) IntersectedBy(segments ...Segment) bool {
	for _, other := range segments {
		if !s.bounds.MayIntersect(other) {
			continue
		}
		for _, own := range s.segments {
			if other.Intersects(own) {
				return true
			}
		}
	}
	return false
}

// IntersectedByShape tests every segment of other against s.
func (s *Shape) IntersectedByShape(other *Shape) bool {
	return s.IntersectedBy(other.segments...)
}
