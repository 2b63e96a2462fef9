// pkg/physics/bounds.go
package physics

// Cohen-Sutherland region codes.
const (
	outInside = 0
	outLeft   = 1
	outRight  = 2
	outBottom = 4
	outTop    = 8
)

// maxClipPasses bounds the clipping loop. Each endpoint needs at most two
// edge projections, so anything beyond this is floating-point churn.
const maxClipPasses = 8

// clipSlack widens the box before clipping so rounding in the edge
// projection cannot turn a grazing hit into a reject.
const clipSlack = 1e-7

// BoundingBox is an axis-aligned rectangle.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{MinX: points[0].X, MaxX: points[0].X, MinY: points[0].Y, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MaxX = max(b.MaxX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b
}

// Move shifts the box.
func (b *BoundingBox) Move(dx, dy float64) {
	b.MinX += dx
	b.MaxX += dx
	b.MinY += dy
	b.MaxY += dy
}

// Contains reports whether p lies inside or on the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

func (b BoundingBox) outCode(x, y float64) int {
	code := outInside
	if x < b.MinX {
		code |= outLeft
	} else if x > b.MaxX {
		code |= outRight
	}
	if y < b.MinY {
		code |= outBottom
	} else if y > b.MaxY {
		code |= outTop
	}
	return code
}

// MayIntersect is the fast-reject test. It returns false only when the
// segment provably misses the box; true means the exact test must run.
func (b BoundingBox) MayIntersect(s Segment) bool {
	b = BoundingBox{MinX: b.MinX - clipSlack, MinY: b.MinY - clipSlack, MaxX: b.MaxX + clipSlack, MaxY: b.MaxY + clipSlack}
	x0, y0 := s.P1.X, s.P1.Y
	x1, y1 := s.P2.X, s.P2.Y
	code0 := b.outCode(x0, y0)
	code1 := b.outCode(x1, y1)

	for pass := 0; pass < maxClipPasses; pass++ {
		if code0|code1 == 0 {
			return true
		}
		if code0&code1 != 0 {
			return false
		}

		out := code0
		if code1 > code0 {
			out = code1
		}

		// The bit under test guarantees a non-zero denominator: the other
		// endpoint is not on the same outside half-plane.
		var x, y float64
		switch {
		case out&outTop != 0:
			x = x0 + (x1-x0)*(b.MaxY-y0)/(y1-y0)
			y = b.MaxY
		case out&outBottom != 0:
			x = x0 + (x1-x0)*(b.MinY-y0)/(y1-y0)
			y = b.MinY
		case out&outRight != 0:
			y = y0 + (y1-y0)*(b.MaxX-x0)/(x1-x0)
			x = b.MaxX
		case out&outLeft != 0:
			y = y0 + (y1-y0)*(b.MinX-x0)/(x1-x0)
			x = b.MinX
		}

		if out == code0 {
			x0, y0 = x, y
			code0 = b.outCode(x0, y0)
		} else {
			x1, y1 = x, y
			code1 = b.outCode(x1, y1)
		}
	}

	// Never reject on an undecided clip.
	return true
}
