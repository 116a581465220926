package asset

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Layout lifecycle errors.
var (
	ErrLayoutExists = errors.New("asset: vertex layout already created")
	ErrNoLayout     = errors.New("asset: vertex layout not created")
	ErrLayoutInUse  = errors.New("asset: vertex layout still used by live models")
)

// Context owns the shared vertex layout and counts the models that depend
// on it. The application creates one, creates the layout before the first
// draw, and destroys the layout after the last model is gone.
type Context struct {
	dev    gpu.Device
	layout gpu.VertexArray
	live   int
	log    *zap.Logger
}

// NewContext returns a context with no layout.
func NewContext(dev gpu.Device) *Context {
	return &Context{dev: dev, log: logger.Named("asset")}
}

// Device returns the device models are created on.
func (c *Context) Device() gpu.Device { return c.dev }

// CreateLayout creates the shared vertex layout.
func (c *Context) CreateLayout() error {
	if c.layout != 0 {
		return ErrLayoutExists
	}
	va, err := c.dev.CreateVertexArray(VertexLayout)
	if err != nil {
		return fmt.Errorf("create vertex layout: %w", err)
	}
	c.layout = va
	c.log.Debug("vertex layout created", zap.Uint32("id", uint32(va)), zap.Int32("stride", VertexLayout.Stride))
	return nil
}

// BindLayout makes the shared layout current. Model buffers bound after
// this call are read through it.
func (c *Context) BindLayout() error {
	if c.layout == 0 {
		return ErrNoLayout
	}
	c.dev.BindVertexArray(c.layout)
	return nil
}

// DestroyLayout deletes the shared layout. It fails while any model
// created through this context is still alive.
func (c *Context) DestroyLayout() error {
	if c.layout == 0 {
		return ErrNoLayout
	}
	if c.live > 0 {
		return fmt.Errorf("%w: %d", ErrLayoutInUse, c.live)
	}
	c.dev.DeleteVertexArray(c.layout)
	c.log.Debug("vertex layout destroyed", zap.Uint32("id", uint32(c.layout)))
	c.layout = 0
	return nil
}

// HasLayout reports whether the layout exists.
func (c *Context) HasLayout() bool { return c.layout != 0 }

// LiveModels returns the number of models not yet destroyed.
func (c *Context) LiveModels() int { return c.live }
