// pkg/engine/collision.go
package engine

import (
	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// resolveCollisions runs the collision sub-passes in their fixed order.
// Each pass marks removals and compacts its collections afterwards, so no
// slice changes length while it is being walked.
func (e *Engine) resolveCollisions() {
	e.wrapRocks()
	e.collideRocksWithCraft()
	e.collideProjectiles()
	e.wrapCraft()
}

// wrapRocks relocates rocks whose first vertex has drifted past the wrap
// margin to the opposite margin.
func (e *Engine) wrapRocks() {
	w, h := e.cfg.World.Width, e.cfg.World.Height
	m := e.cfg.Rocks.WrapMargin
	span := 1 + 2*m

	for _, r := range e.rocks {
		ref := r.Vertex(0)
		var dx, dy float64
		switch {
		case ref.X > w*(1+m):
			dx = -w * span
		case ref.X < -w*m:
			dx = w * span
		}
		switch {
		case ref.Y > h*(1+m):
			dy = -h * span
		case ref.Y < -h*m:
			dy = h * span
		}
		if dx != 0 || dy != 0 {
			r.Translate(dx, dy)
		}
	}
}

// collideRocksWithCraft kills every live fighter and player craft a rock
// overlaps. A rock that hit anything is removed once, after all its
// victims are marked.
func (e *Engine) collideRocksWithCraft() {
	rockGone := make([]bool, len(e.rocks))
	fighterGone := make([]bool, len(e.fighters))

	for i, r := range e.rocks {
		for j, f := range e.fighters {
			if fighterGone[j] || !f.Live || !f.IntersectedByShape(r.Shape) {
				continue
			}
			f.Kill()
			fighterGone[j] = true
			rockGone[i] = true
			e.bus.Publish(event.NewEntityEvent(event.FighterDestroyed, e, uint64(f.ID), uint64(r.ID), ""))
		}
		for _, a := range e.actors {
			c := a.craft
			if c == nil || !c.Live || !c.IntersectedByShape(r.Shape) {
				continue
			}
			c.Kill()
			rockGone[i] = true
			e.bus.Publish(event.NewEntityEvent(event.CraftDestroyed, e, uint64(c.ID), uint64(r.ID), a.id))
		}
		if rockGone[i] {
			e.bus.Publish(event.NewEntityEvent(event.RockDestroyed, e, uint64(r.ID), 0, ""))
		}
	}

	e.rocks = compact(e.rocks, rockGone)
	e.fighters = compact(e.fighters, fighterGone)
}

// collideProjectiles removes projectiles that left the world and resolves
// hits for those past their grace period. Targets are tried in order rocks,
// fighters, player craft; the first hit consumes the projectile.
func (e *Engine) collideProjectiles() {
	w, h := e.cfg.World.Width, e.cfg.World.Height
	projectileGone := make([]bool, len(e.projectiles))
	rockGone := make([]bool, len(e.rocks))
	fighterGone := make([]bool, len(e.fighters))
	var born []*entity.Rock

	for i, p := range e.projectiles {
		if !p.InBounds(w, h) {
			projectileGone[i] = true
			continue
		}
		if !p.CanHit() {
			continue
		}
		travel := p.TravelSegment()

		if j := e.firstRockHit(travel, rockGone); j >= 0 {
			projectileGone[i] = true
			r := e.rocks[j]
			if r.Size < e.cfg.MinRockSize() || len(e.rocks)-countTrue(rockGone)+len(born) >= e.cfg.Rocks.MaxRocks {
				rockGone[j] = true
				e.bus.Publish(event.NewEntityEvent(event.RockDestroyed, e, uint64(r.ID), uint64(p.ID), ""))
			} else {
				child := r.Split(e.rng)
				born = append(born, child)
				e.bus.Publish(event.NewEntityEvent(event.RockSplit, e, uint64(r.ID), uint64(child.ID), ""))
			}
			e.addScore(rockHitScore)
			continue
		}

		hitFighter := false
		for j, f := range e.fighters {
			if fighterGone[j] || !f.Live || !f.IntersectedBy(travel) {
				continue
			}
			f.Kill()
			fighterGone[j] = true
			projectileGone[i] = true
			hitFighter = true
			e.bus.Publish(event.NewEntityEvent(event.FighterDestroyed, e, uint64(f.ID), uint64(p.ID), ""))
			e.addScore(fighterHitScore)
			break
		}
		if hitFighter {
			continue
		}

		for _, a := range e.actors {
			c := a.craft
			if c == nil || !c.Live || !c.IntersectedBy(travel) {
				continue
			}
			c.Kill()
			projectileGone[i] = true
			e.bus.Publish(event.NewEntityEvent(event.CraftDestroyed, e, uint64(c.ID), uint64(p.ID), a.id))
			break
		}
	}

	e.projectiles = compact(e.projectiles, projectileGone)
	e.rocks = append(compact(e.rocks, rockGone), born...)
	e.fighters = compact(e.fighters, fighterGone)
}

// firstRockHit returns the index of the first remaining rock the segment
// crosses, or -1.
func (e *Engine) firstRockHit(travel physics.Segment, gone []bool) int {
	for j, r := range e.rocks {
		if !gone[j] && r.IntersectedBy(travel) {
			return j
		}
	}
	return -1
}

// wrapCraft moves live player craft and fighters whose nose left the world
// by exactly one world extent.
func (e *Engine) wrapCraft() {
	w, h := e.cfg.World.Width, e.cfg.World.Height
	for _, a := range e.actors {
		if a.craft != nil && a.craft.Live {
			a.craft.Wrap(w, h)
		}
	}
	for _, f := range e.fighters {
		if f.Live {
			f.Wrap(w, h)
		}
	}
}

// compact returns items without the entries marked gone, reusing the
// backing array.
func compact[T any](items []T, gone []bool) []T {
	kept := items[:0]
	for i, item := range items {
		if !gone[i] {
			kept = append(kept, item)
		}
	}
	clear(items[len(kept):])
	return kept
}

func countTrue(marks []bool) int {
	n := 0
	for _, m := range marks {
		if m {
			n++
		}
	}
	return n
}
