// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/logging"
)

// NullRenderer discards frames and logs them at debug level. It backs
// headless runs where a renderer is required but nothing is displayed.
type NullRenderer struct {
	logger *logging.Logger
	views  int
	frames int
	score  int
}

// NewNullRenderer creates a NullRenderer. A nil logger discards output.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.views = 0
}

// RenderView implements entity.Renderer.
func (d *NullRenderer) RenderView(view entity.View) {
	d.views++
	d.logger.Debug(context.Background(), "view",
		"kind", string(view.Kind),
		"points", len(view.Points),
		"name", view.Name,
	)
}

// RenderScore implements entity.Renderer.
func (d *NullRenderer) RenderScore(score int) {
	d.score = score
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "frame presented",
		"frame", d.frames,
		"views", d.views,
		"score", d.score,
	)
}

// Frames returns how many frames were presented.
func (d *NullRenderer) Frames() int { return d.frames }

// LastViews returns the number of views drawn since the last Clear.
func (d *NullRenderer) LastViews() int { return d.views }

var _ entity.Renderer = (*NullRenderer)(nil)
