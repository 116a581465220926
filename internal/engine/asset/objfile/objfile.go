// Package objfile loads Wavefront OBJ meshes and their MTL materials.
//
// Supported statements: v, vt, vn, f (polygons are fan-triangulated,
// negative indices are relative), o, g, s, usemtl and mtllib. Faces are
// grouped into one segment per material in order of first use.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Loader implements asset.Loader for .obj files.
type Loader struct {
	// Workers bounds concurrent texture decoding. Zero means GOMAXPROCS.
	Workers int

	log *zap.Logger
}

var _ asset.Loader = (*Loader)(nil)

// New returns a loader with default settings.
func New() *Loader {
	return &Loader{log: logger.Named("objfile")}
}

// Load parses path, its material library and every referenced texture.
func (l *Loader) Load(path string) (*asset.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := newDecoder()
	if err := dec.parseObj(f); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	mats := make(map[string]*material)
	for _, lib := range dec.mtllibs {
		if err := parseMtlFile(filepath.Join(dir, lib), mats); err != nil {
			// A missing library only loses materials; geometry is still usable.
			l.logger().Warn("material library unreadable", zap.String("path", lib), zap.Error(err))
		}
	}
	for _, name := range dec.order {
		if name != "" && mats[name] == nil {
			l.logger().Warn("undefined material", zap.String("material", name), zap.String("model", path))
		}
	}

	images := l.decodeTextures(dir, texturePaths(dec.order, mats))
	return dec.build(mats, images), nil
}

func (l *Loader) logger() *zap.Logger {
	if l.log == nil {
		return zap.NewNop()
	}
	return l.log
}

func (l *Loader) workers() int {
	if l.Workers > 0 {
		return l.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type vertexKey struct {
	v, vt, vn int
}

type decoder struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2

	vertices []asset.Vertex
	// smooth accumulates face normals for vertices without a vn.
	smooth  map[uint32]bool
	lookup  map[vertexKey]uint32
	buckets map[string][]uint32
	order   []string
	current string
	mtllibs []string
	line    int
}

func newDecoder() *decoder {
	return &decoder{
		smooth:  make(map[uint32]bool),
		lookup:  make(map[vertexKey]uint32),
		buckets: make(map[string][]uint32),
	}
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", d.line, fmt.Sprintf(format, args...))
}

func (d *decoder) parseObj(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		d.line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := d.parseLine(fields[0], fields[1:]); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(d.order) == 0 {
		return errors.New("no faces")
	}
	return nil
}

func (d *decoder) parseLine(kind string, args []string) error {
	switch kind {
	case "v":
		p, err := d.parseFloats(args, 3)
		if err != nil {
			return err
		}
		d.positions = append(d.positions, mgl32.Vec3{p[0], p[1], p[2]})
	case "vn":
		n, err := d.parseFloats(args, 3)
		if err != nil {
			return err
		}
		d.normals = append(d.normals, mgl32.Vec3{n[0], n[1], n[2]}.Normalize())
	case "vt":
		t, err := d.parseFloats(args, 2)
		if err != nil {
			return err
		}
		d.uvs = append(d.uvs, mgl32.Vec2{t[0], t[1]})
	case "f":
		return d.parseFace(args)
	case "usemtl":
		if len(args) == 0 {
			return d.errorf("usemtl without name")
		}
		d.current = args[0]
	case "mtllib":
		d.mtllibs = append(d.mtllibs, args...)
	case "o", "g", "s", "l", "p":
		// Grouping and smoothing are not needed for segment building.
	default:
		// Unknown statements are ignored.
	}
	return nil
}

func (d *decoder) parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, d.errorf("expected %d values, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, d.errorf("%v", err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// resolve converts a 1-based or negative OBJ index into a 0-based one.
func (d *decoder) resolve(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.errorf("bad index %q", s)
	}
	switch {
	case v > 0 && v <= count:
		return v - 1, nil
	case v < 0 && -v <= count:
		return count + v, nil
	default:
		return 0, d.errorf("index %d out of range (%d defined)", v, count)
	}
}

func (d *decoder) parseFace(args []string) error {
	if len(args) < 3 {
		return d.errorf("face with %d vertices", len(args))
	}

	corners := make([]uint32, len(args))
	missingNormal := false
	for i, arg := range args {
		parts := strings.Split(arg, "/")
		var key vertexKey
		var err error
		if key.v, err = d.resolve(parts[0], len(d.positions)); err != nil {
			return err
		}
		if key.v < 0 {
			return d.errorf("face vertex without position")
		}
		key.vt, key.vn = -1, -1
		if len(parts) > 1 {
			if key.vt, err = d.resolve(parts[1], len(d.uvs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 {
			if key.vn, err = d.resolve(parts[2], len(d.normals)); err != nil {
				return err
			}
		}
		if key.vn < 0 {
			missingNormal = true
		}
		corners[i] = d.vertex(key)
	}

	if missingNormal {
		d.accumulateNormal(corners)
	}

	if _, ok := d.buckets[d.current]; !ok {
		d.order = append(d.order, d.current)
	}
	idx := d.buckets[d.current]
	for i := 1; i+1 < len(corners); i++ {
		idx = append(idx, corners[0], corners[i], corners[i+1])
	}
	d.buckets[d.current] = idx
	return nil
}

func (d *decoder) vertex(key vertexKey) uint32 {
	if i, ok := d.lookup[key]; ok {
		return i
	}
	var v asset.Vertex
	v.Position = d.positions[key.v]
	if key.vt >= 0 {
		v.TexCoord = d.uvs[key.vt]
	}
	i := uint32(len(d.vertices))
	if key.vn >= 0 {
		v.Normal = d.normals[key.vn]
	} else {
		d.smooth[i] = true
	}
	d.vertices = append(d.vertices, v)
	d.lookup[key] = i
	return i
}

// accumulateNormal adds the polygon's area-weighted normal to each corner
// that has no explicit normal.
func (d *decoder) accumulateNormal(corners []uint32) {
	var n mgl32.Vec3
	p0 := mgl32.Vec3(d.vertices[corners[0]].Position)
	for i := 1; i+1 < len(corners); i++ {
		e1 := mgl32.Vec3(d.vertices[corners[i]].Position).Sub(p0)
		e2 := mgl32.Vec3(d.vertices[corners[i+1]].Position).Sub(p0)
		n = n.Add(e1.Cross(e2))
	}
	for _, c := range corners {
		if d.smooth[c] {
			d.vertices[c].Normal = mgl32.Vec3(d.vertices[c].Normal).Add(n)
		}
	}
}

func (d *decoder) build(mats map[string]*material, images map[string]*imageResult) *asset.MeshData {
	for i := range d.smooth {
		n := mgl32.Vec3(d.vertices[i].Normal)
		if n.LenSqr() > 0 {
			d.vertices[i].Normal = n.Normalize()
		} else {
			d.vertices[i].Normal = [3]float32{0, 1, 0}
		}
	}

	data := &asset.MeshData{Vertices: d.vertices}
	for _, name := range d.order {
		idx := d.buckets[name]
		mat := mats[name]
		if mat == nil {
			mat = defaultMaterial()
		}
		seg := mat.segment(images)
		seg.Name = name
		seg.StartIndex = uint32(len(data.Indices))
		seg.NumIndices = uint32(len(idx))
		data.Indices = append(data.Indices, idx...)
		data.Segments = append(data.Segments, seg)
	}
	return data
}
