// pkg/engine/spawn.go
package engine

import (
	"context"
	"math"

	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/physics"
)

// Inbound headings of spawned rocks deviate from the world centre by up to
// this angle either way.
const rockHeadingJitter = math.Pi / 4

// randomWorldPoint samples a point uniformly inside the world.
func (e *Engine) randomWorldPoint() physics.Point {
	return physics.Point{
		X: e.cfg.World.Width * e.rng.Float64(),
		Y: e.cfg.World.Height * e.rng.Float64(),
	}
}

// spawnSite picks a random wall and a random point along it, pushed out
// beyond the world by the spawn margin.
func (e *Engine) spawnSite() physics.Point {
	w, h := e.cfg.World.Width, e.cfg.World.Height
	far := 1 + e.cfg.Rocks.SpawnMargin
	near := -e.cfg.Rocks.SpawnMargin

	switch e.rng.IntN(4) {
	case 0:
		return physics.Point{X: w * e.rng.Float64(), Y: h * far}
	case 1:
		return physics.Point{X: w * e.rng.Float64(), Y: h * near}
	case 2:
		return physics.Point{X: w * far, Y: h * e.rng.Float64()}
	default:
		return physics.Point{X: w * near, Y: h * e.rng.Float64()}
	}
}

// inboundHeading aims from p toward the world centre with some jitter.
func (e *Engine) inboundHeading(p physics.Point) float64 {
	center := physics.Point{X: e.cfg.World.Width / 2, Y: e.cfg.World.Height / 2}
	jitter := (e.rng.Float64()*2 - 1) * rockHeadingJitter
	return physics.NormalizeAngle(p.AngleTo(center) + jitter)
}

func (e *Engine) randomColor() string {
	colors := e.cfg.Craft.Colors
	return colors[e.rng.IntN(len(colors))]
}

func (e *Engine) newPlayerCraft() *entity.Craft {
	c := entity.NewCraft(e.randomWorldPoint(), entity.CraftSpec{
		Size:        e.cfg.Craft.Size,
		Thrust:      e.cfg.CraftThrustPerTick(),
		Drag:        e.cfg.Craft.Drag,
		BulletSpeed: e.cfg.PlayerBulletSpeed(),
		Color:       e.randomColor(),
	})
	c.Cooldown = e.cfg.FireIntervalTicks()
	return c
}

// spawnRocks counts the spawn timer down and adds a rock when it expires
// and the population is below the cap. At the cap the spawn waits.
func (e *Engine) spawnRocks() {
	e.rockTimer--
	if e.rockTimer > 0 || len(e.rocks) >= e.cfg.Rocks.MaxRocks {
		return
	}
	e.rockTimer = e.cfg.RockSpawnIntervalTicks() * 2 * e.rng.Float64()

	site := e.spawnSite()
	scale := (e.rng.Float64()*1.5 + 0.5) * e.cfg.Rocks.Size
	rock := entity.NewRock(e.rng, site, scale, e.cfg.RockSpeedPerTick(), e.inboundHeading(site))
	rock.RotateBy(e.rng.Float64() * 2 * math.Pi)
	e.rocks = append(e.rocks, rock)
}

// spawnFighters adds a fighter with probability 1/SpawnRarity when the
// feature is on, the score has reached the threshold and the cap allows.
func (e *Engine) spawnFighters() {
	fc := e.cfg.Fighters
	if !fc.Enabled || e.score < fc.ScoreThreshold || len(e.fighters) >= fc.MaxFighters {
		return
	}
	if e.rng.Float64() >= 1/float64(fc.SpawnRarity) {
		return
	}

	f := entity.NewFighter(e.spawnSite(), entity.CraftSpec{
		Size:        e.cfg.Craft.Size * fc.SizeMultiplier,
		Thrust:      e.cfg.FighterThrustPerTick(),
		Drag:        e.cfg.Craft.Drag,
		BulletSpeed: e.cfg.FighterBulletSpeed(),
		Color:       fc.Color,
	})
	e.fighters = append(e.fighters, f)
	e.log.Debug(context.Background(), "fighter spawned", "fighters", len(e.fighters), "score", e.score)
	e.bus.Publish(event.NewEntityEvent(event.FighterSpawned, e, uint64(f.ID), 0, ""))
}
