// pkg/engine/snapshot.go
package engine

import (
	"github.com/opd-ai/go-asteroids/pkg/entity"
)

// Snapshot is a detached copy of everything visible after a tick. It shares
// no memory with the engine and may be published freely.
type Snapshot struct {
	Tick  uint64        `json:"tick" msgpack:"tick"`
	Score int           `json:"score" msgpack:"score"`
	Views []entity.View `json:"views" msgpack:"views"`
}

// Snapshot returns the views of all projectiles, live player craft, live
// fighters and rocks, in that order.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.createSnapshot()
}

func (e *Engine) createSnapshot() Snapshot {
	views := make([]entity.View, 0, len(e.projectiles)+len(e.actors)+len(e.fighters)+len(e.rocks))
	views = append(views, e.projectileViews()...)
	views = append(views, e.craftViews()...)
	views = append(views, e.fighterViews()...)
	views = append(views, e.rockViews()...)
	return Snapshot{Tick: e.tick, Score: e.score, Views: views}
}

func (e *Engine) projectileViews() []entity.View {
	views := make([]entity.View, 0, len(e.projectiles))
	for _, p := range e.projectiles {
		views = append(views, p.View())
	}
	return views
}

func (e *Engine) craftViews() []entity.View {
	var views []entity.View
	for _, a := range e.actors {
		if a.craft == nil {
			continue
		}
		if v, ok := a.craft.View(); ok {
			views = append(views, v)
		}
	}
	return views
}

func (e *Engine) fighterViews() []entity.View {
	var views []entity.View
	for _, f := range e.fighters {
		if v, ok := f.View(); ok {
			views = append(views, v)
		}
	}
	return views
}

func (e *Engine) rockViews() []entity.View {
	views := make([]entity.View, 0, len(e.rocks))
	for _, r := range e.rocks {
		views = append(views, r.View())
	}
	return views
}
