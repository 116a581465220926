package objfile

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
	"github.com/Faultbox/radiance-viewer/internal/engine/gpu/gputest"
)

const cubeFaceObj = `# two materials
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o quad
usemtl brick
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl plain
f 1 2 5
usemtl brick
f -5/1/1 -3/3/1 -2/4/1
`

const sceneMtl = `newmtl brick
Kd 0.5 0.5 0.5
Ns 98
map_Kd brick.png
map_Bump -bm 1.0 brick_normal.png
map_Pm brick.png

newmtl plain
Kd 1 0 0
Pr 0.25
Pm 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writePNG(t *testing.T, dir, name string, top, bottom color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, top)
	img.SetRGBA(0, 1, bottom)
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.obj", cubeFaceObj)
	writeFile(t, dir, "scene.mtl", sceneMtl)
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	writePNG(t, dir, "brick.png", red, blue)

	data, err := New().Load(path)
	require.NoError(t, err)
	require.NoError(t, data.Validate())

	require.Len(t, data.Segments, 2)
	brick, plain := data.Segments[0], data.Segments[1]

	assert.Equal(t, "brick", brick.Name)
	assert.Equal(t, uint32(0), brick.StartIndex)
	assert.Equal(t, uint32(9), brick.NumIndices, "quad fan (2 tris) plus one triangle")
	assert.Equal(t, "plain", plain.Name)
	assert.Equal(t, uint32(9), plain.StartIndex)
	assert.Equal(t, uint32(3), plain.NumIndices)

	// Diffuse image decoded and flipped for bottom-left UV origin.
	require.NotNil(t, brick.Diffuse.Image)
	assert.Equal(t, blue, brick.Diffuse.Image.RGBAAt(0, 0))
	assert.Same(t, brick.Diffuse.Image, brick.Metallic.Image, "same file decodes once")

	// Missing normal map falls back to a flat normal.
	assert.Nil(t, brick.Normal.Image)
	assert.Equal(t, asset.FlatNormal, brick.Normal.Constant)
	// Ns 98 -> roughness sqrt(2/100).
	assert.Equal(t, uint8(36), brick.Roughness.Constant.R)

	assert.Nil(t, plain.Diffuse.Image)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, plain.Diffuse.Constant)
	assert.Equal(t, uint8(64), plain.Roughness.Constant.R)
	assert.Equal(t, uint8(255), plain.Metallic.Constant.R)
}

func TestLoadVertexDedupAndNormals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.obj", `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
f 1 2 3
`)
	data, err := New().Load(path)
	require.NoError(t, err)

	assert.Len(t, data.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2}, data.Indices)
	for _, v := range data.Vertices {
		assert.InDelta(t, 1, v.Normal[2], 1e-6, "normal computed from winding")
	}
	require.Len(t, data.Segments, 1)
	assert.Equal(t, asset.DefaultDiffuse, data.Segments[0].Diffuse.Constant)
	assert.False(t, data.HasTangents)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"bad float", "v 0 x 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.obj", tt.obj)
			_, err := New().Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromFileWithObjLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.obj", cubeFaceObj)
	writeFile(t, dir, "scene.mtl", sceneMtl)
	writePNG(t, dir, "brick.png", color.RGBA{A: 255}, color.RGBA{A: 255})

	dev := gputest.New()
	ctx := asset.NewContext(dev)
	m, err := asset.FromFile(ctx, New(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, m.TriangleCount())
	for _, s := range m.Segments() {
		assert.NotZero(t, s.Diffuse)
		assert.NotZero(t, s.Normal)
		assert.NotZero(t, s.RoughnessMetallic)
	}

	_, err = asset.FromFile(ctx, New(), filepath.Join(dir, "nope.obj"))
	assert.ErrorIs(t, err, asset.ErrLoadFailed)
}

func TestMapPath(t *testing.T) {
	assert.Equal(t, "", mapPath(nil))
	assert.Equal(t, "n.png", mapPath([]string{"-bm", "0.3", "n.png"}))
	assert.Equal(t, filepath.Join("tex", "a.png"), mapPath([]string{`tex\a.png`}))
}
