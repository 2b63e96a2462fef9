// pkg/engine/behavior.go
package engine

import (
	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/event"
)

// Fighters stop turning once their target is within this angle.
const fighterAimTolerance = 0.1

// applyPlayerIntents turns, fires and thrusts every live player craft from
// its actor's held intent.
func (e *Engine) applyPlayerIntents() {
	rate := e.cfg.RotationPerTick()
	for _, a := range e.actors {
		c := a.craft
		if c == nil || !c.Live {
			continue
		}
		// Positive turn is counter-clockwise on a y-down screen, which
		// lowers the facing angle.
		if a.intent.Turn != 0 {
			c.RotateBy(-float64(a.intent.Turn) * rate)
		}
		c.CoolDown()
		if a.intent.Fire && c.Cooldown == 0 {
			e.fire(c, a.id)
			c.Cooldown = e.cfg.FireIntervalTicks()
		}
		if a.intent.Thrust {
			c.ApplyThrust()
		}
	}
}

// runFighters steers each live fighter at its nearest live player, thrusts,
// and fires at random. Without any player craft the fighters do nothing.
func (e *Engine) runFighters() {
	if len(e.fighters) == 0 {
		return
	}
	rate := e.cfg.RotationPerTick()
	fireChance := 1 / float64(e.cfg.Fighters.FireChance)

	for _, f := range e.fighters {
		if !f.Live {
			continue
		}
		target := e.targetFor(f)
		if target == nil {
			// No player craft at all: fighters idle.
			return
		}
		f.RotateTowards(target.Pivot(), rate, fighterAimTolerance)
		f.ApplyThrust()
		if e.rng.Float64() < fireChance {
			e.fire(f, "")
		}
	}
}

// targetFor returns the live player craft whose nose is nearest the
// fighter's nose. With none alive it falls back to the first player's craft,
// and with no players it returns nil.
func (e *Engine) targetFor(f *entity.Craft) *entity.Craft {
	var (
		best     *entity.Craft
		bestDist float64
		first    *entity.Craft
	)
	nose := f.Nose()
	for _, a := range e.actors {
		c := a.craft
		if c == nil {
			continue
		}
		if first == nil {
			first = c
		}
		if !c.Live {
			continue
		}
		d := nose.DistanceSquared(c.Nose())
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == nil {
		return first
	}
	return best
}

func (e *Engine) fire(c *entity.Craft, actorID string) {
	p := c.Fire(e.cfg.Craft.HitGraceTicks)
	e.projectiles = append(e.projectiles, p)
	e.bus.Publish(event.NewEntityEvent(event.ProjectileFired, e, uint64(p.ID), uint64(c.ID), actorID))
}
