package asset

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/engine/texture"
)

// ErrLoadFailed wraps every recoverable model load failure: missing files,
// unparseable content and invalid geometry.
var ErrLoadFailed = errors.New("asset: load failed")

// Segment is a range of a model's index buffer drawn with one material.
// All three textures are always valid.
type Segment struct {
	Name       string
	StartIndex uint32
	NumIndices uint32

	Diffuse           gpu.Texture
	Normal            gpu.Texture
	RoughnessMetallic gpu.Texture
}

// Model is an immutable GPU-resident mesh with its materials.
type Model struct {
	ctx      *Context
	path     string
	vertices int
	tris     int
	bounds   Bounds
	segments []Segment

	vbo      gpu.Buffer
	ibo      gpu.Buffer
	textures []gpu.Texture
	alive    bool
}

// FromFile loads path with loader and uploads the result.
//
// Parse failures return an error wrapping ErrLoadFailed and allocate
// nothing on the GPU. Upload failures release whatever was already
// created and return the device error, which callers treat as fatal.
func FromFile(ctx *Context, loader Loader, path string) (*Model, error) {
	data, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	if !data.HasTangents {
		ComputeTangents(data.Vertices, data.Indices)
	}

	m := &Model{
		ctx:      ctx,
		path:     path,
		vertices: len(data.Vertices),
		tris:     len(data.Indices) / 3,
		bounds:   computeBounds(data.Vertices),
	}
	if err := m.upload(data); err != nil {
		m.free()
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}

	m.alive = true
	ctx.live++
	ctx.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", m.vertices),
		zap.Int("triangles", m.tris),
		zap.Int("segments", len(m.segments)))
	return m, nil
}

func (m *Model) upload(data *MeshData) error {
	dev := m.ctx.dev
	var err error
	if m.vbo, err = dev.CreateBuffer(gpu.VertexBuffer, vertexBytes(data.Vertices)); err != nil {
		return err
	}
	if m.ibo, err = dev.CreateBuffer(gpu.IndexBuffer, indexBytes(data.Indices)); err != nil {
		return err
	}

	// Images shared between segments upload once.
	uploaded := make(map[*image.RGBA]gpu.Texture)
	tex := func(img *image.RGBA) (gpu.Texture, error) {
		if t, ok := uploaded[img]; ok {
			return t, nil
		}
		t, err := dev.CreateTexture(img)
		if err != nil {
			return 0, err
		}
		uploaded[img] = t
		m.textures = append(m.textures, t)
		return t, nil
	}

	m.segments = make([]Segment, 0, len(data.Segments))
	for _, sd := range data.Segments {
		s := Segment{Name: sd.Name, StartIndex: sd.StartIndex, NumIndices: sd.NumIndices}
		if s.Diffuse, err = tex(sd.Diffuse.Resolve()); err != nil {
			return fmt.Errorf("segment %q diffuse: %w", sd.Name, err)
		}
		if s.Normal, err = tex(sd.Normal.Resolve()); err != nil {
			return fmt.Errorf("segment %q normal: %w", sd.Name, err)
		}
		if s.RoughnessMetallic, err = tex(roughnessMetallic(sd.Roughness, sd.Metallic)); err != nil {
			return fmt.Errorf("segment %q roughness/metallic: %w", sd.Name, err)
		}
		m.segments = append(m.segments, s)
	}
	return nil
}

// roughnessMetallic packs roughness into red and metallic into green.
func roughnessMetallic(rough, metal MaterialMap) *image.RGBA {
	if rough.Image == nil && metal.Image == nil {
		c := rough.Constant
		c.G = metal.Constant.R
		c.B = 0
		c.A = 255
		return texture.Solid(c)
	}
	return texture.PackRG(rough.Resolve(), metal.Resolve())
}

func (m *Model) free() {
	dev := m.ctx.dev
	for _, t := range m.textures {
		dev.DeleteTexture(t)
	}
	m.textures = nil
	if m.ibo != 0 {
		dev.DeleteBuffer(m.ibo)
		m.ibo = 0
	}
	if m.vbo != 0 {
		dev.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
}

// Destroy releases the model's GPU objects. Further calls do nothing.
// Models owned by a Registry are destroyed by it.
func (m *Model) Destroy() {
	if !m.alive {
		return
	}
	m.free()
	m.alive = false
	m.ctx.live--
	m.ctx.log.Debug("model destroyed", zap.String("path", m.path))
}

// BindBuffers makes this model's vertex and index buffers the draw source.
// The shared layout must already be bound.
func (m *Model) BindBuffers() {
	m.ctx.dev.BindVertexBuffer(m.vbo)
	m.ctx.dev.BindIndexBuffer(m.ibo)
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string { return m.path }

// VertexCount returns the number of unique vertices.
func (m *Model) VertexCount() int { return m.vertices }

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int { return m.tris }

// Bounds returns the model-space bounding box.
func (m *Model) Bounds() Bounds { return m.bounds }

// Segments returns the material ranges in draw order. The slice must not
// be modified.
func (m *Model) Segments() []Segment { return m.segments }

// Alive reports whether Destroy has not been called yet.
func (m *Model) Alive() bool { return m.alive }
