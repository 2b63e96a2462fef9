// pkg/physics/segment.go
package physics

// Segment is an unordered pair of points. P1 is always the larger point
// under Point.Compare so traversal order does not depend on construction order.
type Segment struct {
	P1 Point
	P2 Point
}

// NewSegment builds a canonical segment from two endpoints.
func NewSegment(a, b Point) Segment {
	if a.Compare(b) > 0 {
		return Segment{P1: a, P2: b}
	}
	return Segment{P1: b, P2: a}
}

// orientation classifies the turn p -> q -> r: 0 collinear, 1 clockwise, 2 counter-clockwise.
func orientation(p, q, r Point) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	switch {
	case val == 0:
		return 0
	case val > 0:
		return 1
	}
	return 2
}

// onSegment reports whether q lies within the bounding rectangle of p and r.
// Only meaningful when p, q, r are collinear.
func onSegment(p, q, r Point) bool {
	return q.X <= max(p.X, r.X) && q.X >= min(p.X, r.X) &&
		q.Y <= max(p.Y, r.Y) && q.Y >= min(p.Y, r.Y)
}

// Intersects reports whether the two segments cross or touch, including
// shared endpoints and collinear overlap.
func (s Segment) Intersects(other Segment) bool {
	o1 := orientation(s.P1, s.P2, other.P1)
	o2 := orientation(s.P1, s.P2, other.P2)
	o3 := orientation(other.P1, other.P2, s.P1)
	o4 := orientation(other.P1, other.P2, s.P2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	return (o1 == 0 && onSegment(s.P1, other.P1, s.P2)) ||
		(o2 == 0 && onSegment(s.P1, other.P2, s.P2)) ||
		(o3 == 0 && onSegment(other.P1, s.P1, other.P2)) ||
		(o4 == 0 && onSegment(other.P1, s.P2, other.P2))
}
