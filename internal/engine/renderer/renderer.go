// Package renderer draws a scene into the default framebuffer.
package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/engine/scene"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Drawable is what the renderer draws each frame.
type Drawable interface {
	Draw(cam scene.Camera) error
}

// Renderer clears the frame and draws its scene.
type Renderer struct {
	dev    gpu.Device
	scene  Drawable
	width  int
	height int

	// ClearColor is the background color.
	ClearColor [4]float32
}

// New creates a renderer for a viewport of the given size.
func New(dev gpu.Device, s Drawable, width, height int) *Renderer {
	return &Renderer{
		dev:        dev,
		scene:      s,
		width:      width,
		height:     height,
		ClearColor: [4]float32{0.1, 0.1, 0.15, 1.0},
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Draw clears the frame and draws the scene under cam.
func (r *Renderer) Draw(cam scene.Camera) error {
	r.dev.Viewport(int32(r.width), int32(r.height))
	c := r.ClearColor
	r.dev.Clear(c[0], c[1], c[2], c[3])
	return r.scene.Draw(cam)
}
