package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu/gputest"
)

func writeSources(t *testing.T, dir string) (string, string) {
	t.Helper()
	vs := filepath.Join(dir, "simple.vert")
	fs := filepath.Join(dir, "simple.frag")
	require.NoError(t, os.WriteFile(vs, []byte("void main() {}"), 0644))
	require.NoError(t, os.WriteFile(fs, []byte("void main() {}"), 0644))
	return vs, fs
}

func TestLoad(t *testing.T) {
	dev := gputest.New()
	vs, fs := writeSources(t, t.TempDir())

	p, err := Load(dev, vs, fs, Bindings{
		Blocks:   map[string]uint32{"PerFrame": 0},
		Samplers: map[string]uint32{"DiffuseMap": 0, "NormalMap": 1},
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID())
	assert.Equal(t, "simple.vert+simple.frag", p.Name())
	assert.Equal(t, []string{vs, fs}, p.Sources())
	assert.Equal(t, []string{"BindUniformBlock"}, dev.Ops("BindUniformBlock"))
	assert.Len(t, dev.Ops("BindSampler"), 2)
}

func TestLoadMissingSource(t *testing.T) {
	dev := gputest.New()
	_, err := Load(dev, "nope.vert", "nope.frag", Bindings{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, dev.Allocations())
}

func TestReloadSwapsOnSuccess(t *testing.T) {
	dev := gputest.New()
	vs, fs := writeSources(t, t.TempDir())
	p, err := Load(dev, vs, fs, Bindings{})
	require.NoError(t, err)
	old := p.ID()

	require.NoError(t, p.Reload())
	assert.NotEqual(t, old, p.ID())
	assert.Equal(t, 1, dev.Live("Program"), "old program deleted")
}

func TestReloadFailureKeepsPrevious(t *testing.T) {
	dev := gputest.New()
	vs, fs := writeSources(t, t.TempDir())
	p, err := Load(dev, vs, fs, Bindings{})
	require.NoError(t, err)
	old := p.ID()

	dev.CompileErr = errors.New("0:1: syntax error")
	assert.Error(t, p.Reload())
	assert.Equal(t, old, p.ID())
	assert.Empty(t, dev.Ops("DeleteProgram"))

	require.NoError(t, os.Remove(fs))
	dev.CompileErr = nil
	assert.ErrorIs(t, p.Reload(), os.ErrNotExist)
	assert.Equal(t, old, p.ID())
}

func TestDelete(t *testing.T) {
	dev := gputest.New()
	vs, fs := writeSources(t, t.TempDir())
	p, err := Load(dev, vs, fs, Bindings{})
	require.NoError(t, err)

	p.Delete()
	p.Delete()
	assert.Zero(t, p.ID())
	assert.Len(t, dev.Ops("DeleteProgram"), 1)
}
