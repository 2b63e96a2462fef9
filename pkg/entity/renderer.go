// pkg/entity/renderer.go
package entity

// Renderer draws a frame of entity views
type Renderer interface {
	Clear()
	RenderView(view View)
	RenderScore(score int)
	Present()
}

// RenderFrame draws views and score as one complete frame on r.
func RenderFrame(r Renderer, views []View, score int) {
	r.Clear()
	for _, v := range views {
		r.RenderView(v)
	}
	r.RenderScore(score)
	r.Present()
}
