// pkg/render/terminal.go
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// Glyphs used for each entity kind.
var glyphs = map[entity.Kind]rune{
	entity.KindProjectile: '.',
	entity.KindRock:       '#',
	entity.KindCraft:      '^',
	entity.KindFighter:    'X',
}

// TerminalRenderer draws the whole world as ASCII outlines scaled onto a
// fixed character grid.
type TerminalRenderer struct {
	width  int
	height int
	scaleX float64
	scaleY float64
	buffer [][]rune
	score  int
	out    io.Writer
	ansi   bool
}

// NewTerminalRenderer creates a width x height cell renderer for a world
// of worldW x worldH units, writing frames to out.
func NewTerminalRenderer(out io.Writer, width, height int, worldW, worldH float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	r := &TerminalRenderer{
		width:  width,
		height: height,
		scaleX: worldW / float64(width),
		scaleY: worldH / float64(height),
		buffer: buffer,
		out:    out,
		ansi:   true,
	}
	r.Clear()
	return r
}

// SetANSI toggles the clear-screen escape written before each frame.
func (r *TerminalRenderer) SetANSI(on bool) { r.ansi = on }

func (r *TerminalRenderer) worldToScreen(p physics.Point) (int, int) {
	return int(math.Floor(p.X / r.scaleX)), int(math.Floor(p.Y / r.scaleY))
}

func (r *TerminalRenderer) plot(x, y int, ch rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = ch
	}
}

// line plots the cells between two grid positions.
func (r *TerminalRenderer) line(x0, y0, x1, y1 int, ch rune) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		r.plot(x0, y0, ch)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Clear implements entity.Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
	r.score = 0
}

// RenderView implements entity.Renderer. Outlines are closed; a single
// point is drawn as one cell.
func (r *TerminalRenderer) RenderView(view entity.View) {
	ch, ok := glyphs[view.Kind]
	if !ok {
		ch = '?'
	}
	pts := view.Points
	switch len(pts) {
	case 0:
		return
	case 1:
		x, y := r.worldToScreen(pts[0])
		r.plot(x, y, ch)
	default:
		for i := range pts {
			x0, y0 := r.worldToScreen(pts[i])
			x1, y1 := r.worldToScreen(pts[(i+1)%len(pts)])
			r.line(x0, y0, x1, y1, ch)
		}
	}

	if view.Name != "" && view.NamePoint != nil {
		x, y := r.worldToScreen(*view.NamePoint)
		x -= len([]rune(view.Name)) / 2
		for i, c := range view.Name {
			r.plot(x+i, y+1, c)
		}
	}
}

// RenderScore implements entity.Renderer.
func (r *TerminalRenderer) RenderScore(score int) {
	r.score = score
}

// Present implements entity.Renderer.
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	if r.ansi {
		w.WriteString("\033[H\033[2J")
	}
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	fmt.Fprintf(w, "Score: %d\n", r.score)
	w.Flush()
}

// Cell returns the rune at grid position x, y, or 0 outside the grid.
func (r *TerminalRenderer) Cell(x, y int) rune {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return r.buffer[y][x]
}

var _ entity.Renderer = (*TerminalRenderer)(nil)
