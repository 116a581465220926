package camera

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

type fakeControls struct {
	down   map[sdl.Scancode]bool
	dx, dy float32
}

func (f *fakeControls) IsKeyDown(key sdl.Scancode) bool { return f.down[key] }
func (f *fakeControls) MouseDelta() (float32, float32)  { return f.dx, f.dy }

func testConfig() Config {
	return Config{
		Position:  mgl32.Vec3{0, 0, -5},
		Target:    mgl32.Vec3{0, 0, 0},
		FovDeg:    60,
		Near:      0.1,
		Far:       100,
		MoveSpeed: 2,
		LookSpeed: 0.01,
	}
}

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestLookAtDirection(t *testing.T) {
	c := New(testConfig(), 800, 600, nil)
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Direction())

	c.LookAt(mgl32.Vec3{5, 0, -5})
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, c.Direction())
}

func TestUpdateMovesByElapsed(t *testing.T) {
	ctl := &fakeControls{down: map[sdl.Scancode]bool{sdl.SCANCODE_W: true}}
	c := New(testConfig(), 800, 600, ctl)

	c.Update(500 * time.Millisecond)
	assertVecNear(t, mgl32.Vec3{0, 0, -4}, c.Position())

	ctl.down[sdl.SCANCODE_LSHIFT] = true
	c.Update(250 * time.Millisecond)
	assertVecNear(t, mgl32.Vec3{0, 0, -2}, c.Position())
}

func TestUpdateStrafeAndVertical(t *testing.T) {
	ctl := &fakeControls{down: map[sdl.Scancode]bool{sdl.SCANCODE_E: true}}
	c := New(testConfig(), 800, 600, ctl)
	c.Update(time.Second)
	assertVecNear(t, mgl32.Vec3{0, 2, -5}, c.Position())

	ctl.down = map[sdl.Scancode]bool{sdl.SCANCODE_D: true}
	c.Update(time.Second)
	// Looking along +Z, right is -X.
	assertVecNear(t, mgl32.Vec3{-2, 2, -5}, c.Position())
}

func TestUpdateZeroElapsedDoesNotMove(t *testing.T) {
	ctl := &fakeControls{down: map[sdl.Scancode]bool{sdl.SCANCODE_W: true}}
	c := New(testConfig(), 800, 600, ctl)
	c.Update(0)
	assertVecNear(t, mgl32.Vec3{0, 0, -5}, c.Position())
}

func TestMouseLookClampsPitch(t *testing.T) {
	ctl := &fakeControls{dy: -1000}
	c := New(testConfig(), 800, 600, ctl)
	c.Update(time.Millisecond)

	assert.InDelta(t, maxPitch, c.pitch, 1e-6)
	assert.Less(t, c.Direction()[1], float32(1))
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := New(testConfig(), 1280, 720, nil)
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())

	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
	assert.True(t, ndc.Z() > -1 && ndc.Z() < 1, "target lies between near and far planes")
}

func TestSetResolutionIgnoresZero(t *testing.T) {
	c := New(testConfig(), 1000, 500, nil)
	c.SetResolution(0, 0)
	assert.Equal(t, float32(2), c.aspect)
}
