package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu/gputest"
	"github.com/Faultbox/radiance-viewer/internal/engine/scene"
)

type identityCamera struct{}

func (identityCamera) ViewProjection() mgl32.Mat4 { return mgl32.Ident4() }

type recordingScene struct {
	dev   *gputest.Device
	err   error
	calls int
}

func (s *recordingScene) Draw(cam scene.Camera) error {
	s.calls++
	s.dev.DrawIndexed(3, 0)
	return s.err
}

func TestDrawClearsBeforeScene(t *testing.T) {
	dev := gputest.New()
	s := &recordingScene{dev: dev}
	r := New(dev, s, 640, 480)

	assert.NoError(t, r.Draw(identityCamera{}))
	assert.Equal(t, []string{"Viewport", "Clear", "DrawIndexed"}, dev.Ops(""))
	assert.Equal(t, int32(640*480), dev.Calls[0].Count)
}

func TestDrawPropagatesSceneError(t *testing.T) {
	dev := gputest.New()
	boom := errors.New("boom")
	r := New(dev, &recordingScene{dev: dev, err: boom}, 1, 1)

	assert.ErrorIs(t, r.Draw(identityCamera{}), boom)
}

func TestResize(t *testing.T) {
	dev := gputest.New()
	r := New(dev, &recordingScene{dev: dev}, 640, 480)
	r.Resize(800, 600)

	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	_ = r.Draw(identityCamera{})
	assert.Equal(t, int32(800*600), dev.Calls[0].Count)
}
