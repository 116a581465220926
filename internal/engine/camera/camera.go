// Package camera provides the interactive fly camera used by the viewer.
package camera

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
)

// Controls is the input state the camera reads each update.
type Controls interface {
	IsKeyDown(key sdl.Scancode) bool
	// MouseDelta returns the look motion since the last update in pixels.
	MouseDelta() (dx, dy float32)
}

// Config holds the initial camera setup.
type Config struct {
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	FovDeg    float32
	Near      float32
	Far       float32
	MoveSpeed float32 // units per second
	LookSpeed float32 // radians per pixel
}

const maxPitch = math32.Pi/2 - 0.01

var worldUp = mgl32.Vec3{0, 1, 0}

// InteractiveCamera is a first-person camera moved with WASD/QE and
// rotated with mouse look.
type InteractiveCamera struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	MoveSpeed float32
	LookSpeed float32
	// FastFactor multiplies MoveSpeed while shift is held.
	FastFactor float32

	controls Controls
}

// New creates a camera for a viewport of the given size.
func New(cfg Config, width, height int, controls Controls) *InteractiveCamera {
	c := &InteractiveCamera{
		position:   cfg.Position,
		fov:        mgl32.DegToRad(cfg.FovDeg),
		near:       cfg.Near,
		far:        cfg.Far,
		MoveSpeed:  cfg.MoveSpeed,
		LookSpeed:  cfg.LookSpeed,
		FastFactor: 4,
		controls:   controls,
	}
	c.SetResolution(width, height)
	c.LookAt(cfg.Target)
	return c
}

// LookAt turns the camera toward target.
func (c *InteractiveCamera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.position)
	if dir.LenSqr() == 0 {
		return
	}
	dir = dir.Normalize()
	c.yaw = math32.Atan2(dir[0], dir[2])
	c.pitch = mgl32.Clamp(math32.Asin(dir[1]), -maxPitch, maxPitch)
}

// SetResolution updates the aspect ratio.
func (c *InteractiveCamera) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// Position returns the eye position.
func (c *InteractiveCamera) Position() mgl32.Vec3 { return c.position }

// Direction returns the normalized view direction.
func (c *InteractiveCamera) Direction() mgl32.Vec3 {
	cp := math32.Cos(c.pitch)
	return mgl32.Vec3{cp * math32.Sin(c.yaw), math32.Sin(c.pitch), cp * math32.Cos(c.yaw)}
}

// Update integrates input over the elapsed time.
func (c *InteractiveCamera) Update(elapsed time.Duration) {
	if c.controls == nil {
		return
	}

	dx, dy := c.controls.MouseDelta()
	c.yaw -= dx * c.LookSpeed
	c.pitch = mgl32.Clamp(c.pitch-dy*c.LookSpeed, -maxPitch, maxPitch)

	forward := c.Direction()
	right := forward.Cross(worldUp).Normalize()

	var move mgl32.Vec3
	axis := func(key sdl.Scancode, v mgl32.Vec3) {
		if c.controls.IsKeyDown(key) {
			move = move.Add(v)
		}
	}
	axis(sdl.SCANCODE_W, forward)
	axis(sdl.SCANCODE_S, forward.Mul(-1))
	axis(sdl.SCANCODE_D, right)
	axis(sdl.SCANCODE_A, right.Mul(-1))
	axis(sdl.SCANCODE_E, worldUp)
	axis(sdl.SCANCODE_Q, worldUp.Mul(-1))
	if move.LenSqr() == 0 {
		return
	}

	speed := c.MoveSpeed
	if c.controls.IsKeyDown(sdl.SCANCODE_LSHIFT) {
		speed *= c.FastFactor
	}
	step := speed * float32(elapsed.Seconds())
	c.position = c.position.Add(move.Normalize().Mul(step))
}

// View returns the world-to-view transform.
func (c *InteractiveCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.Direction()), worldUp)
}

// Projection returns the perspective transform.
func (c *InteractiveCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

// ViewProjection returns Projection * View.
func (c *InteractiveCamera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}
