package asset

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/radiance-viewer/internal/engine/texture"
)

// Loader parses a model file into CPU-side mesh data.
// Implementations must not touch the GPU.
type Loader interface {
	Load(path string) (*MeshData, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*MeshData, error)

func (f LoaderFunc) Load(path string) (*MeshData, error) { return f(path) }

// MaterialMap is either a decoded image or, when Image is nil, a constant.
type MaterialMap struct {
	Image    *image.RGBA
	Constant color.RGBA
}

// ConstantMap returns a map holding only c.
func ConstantMap(c color.RGBA) MaterialMap { return MaterialMap{Constant: c} }

// Resolve returns the map's image, synthesizing a 1x1 image for constants.
func (m MaterialMap) Resolve() *image.RGBA {
	if m.Image != nil {
		return m.Image
	}
	return texture.Solid(m.Constant)
}

// Defaults used when a material leaves a map unspecified.
var (
	DefaultDiffuse   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	FlatNormal       = color.RGBA{R: 128, G: 128, B: 255, A: 255}
	DefaultRoughness = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	DefaultMetallic  = color.RGBA{A: 255}
)

// SegmentData is one material range of a mesh as produced by a Loader.
// Roughness and Metallic are read from their red channels.
type SegmentData struct {
	Name       string
	StartIndex uint32
	NumIndices uint32

	Diffuse   MaterialMap
	Normal    MaterialMap
	Roughness MaterialMap
	Metallic  MaterialMap
}

// MeshData is the CPU-side result of parsing a model file.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Segments []SegmentData

	// HasTangents is set when the source supplied tangents.
	HasTangents bool
}

// Validate checks that indices and segments stay in range.
func (m *MeshData) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("empty mesh")
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Segments) == 0 {
		return fmt.Errorf("mesh has no segments")
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("index %d out of range: %d >= %d", i, idx, len(m.Vertices))
		}
	}
	for i, s := range m.Segments {
		end := uint64(s.StartIndex) + uint64(s.NumIndices)
		if s.NumIndices == 0 || end > uint64(len(m.Indices)) {
			return fmt.Errorf("segment %d range [%d, %d) invalid for %d indices", i, s.StartIndex, end, len(m.Indices))
		}
	}
	return nil
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Size returns the box extent along each axis.
func (b Bounds) Size() mgl32.Vec3 { return b.Max.Sub(b.Min) }

func computeBounds(vs []Vertex) Bounds {
	if len(vs) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vs[0].Position, Max: vs[0].Position}
	for _, v := range vs[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
	}
	return b
}

// ComputeTangents fills Vertex.Tangent from UV derivatives, orthogonalized
// against the normal. Triangles with degenerate UVs contribute nothing.
func ComputeTangents(vs []Vertex, indices []uint32) {
	tan := make([]mgl32.Vec3, len(vs))
	bitan := make([]mgl32.Vec3, len(vs))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0, v1, v2 := vs[i0], vs[i1], vs[i2]

		e1 := mgl32.Vec3(v1.Position).Sub(v0.Position)
		e2 := mgl32.Vec3(v2.Position).Sub(v0.Position)
		du1 := v1.TexCoord[0] - v0.TexCoord[0]
		dv1 := v1.TexCoord[1] - v0.TexCoord[1]
		du2 := v2.TexCoord[0] - v0.TexCoord[0]
		dv2 := v2.TexCoord[1] - v0.TexCoord[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			continue
		}
		r := 1 / denom
		t := e1.Mul(dv2 * r).Sub(e2.Mul(dv1 * r))
		b := e2.Mul(du1 * r).Sub(e1.Mul(du2 * r))

		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	for i := range vs {
		n := mgl32.Vec3(vs[i].Normal)
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.LenSqr() < 1e-8 {
			// Any vector perpendicular to N.
			if mgl32.Abs(n[0]) < 0.9 {
				t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
			} else {
				t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
			}
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		vs[i].Tangent = [4]float32{t[0], t[1], t[2], w}
	}
}
