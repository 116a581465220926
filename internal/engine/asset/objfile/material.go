package objfile

import (
	"bufio"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
	"github.com/Faultbox/radiance-viewer/internal/engine/texture"
)

type material struct {
	diffuse   [3]float32
	shininess float32
	roughness float32 // -1 when unset
	metallic  float32

	diffuseMap   string
	normalMap    string
	roughnessMap string
	metallicMap  string
}

func defaultMaterial() *material {
	return &material{diffuse: [3]float32{1, 1, 1}, roughness: -1}
}

// roughnessValue prefers an explicit Pr, then derives roughness from the
// Phong exponent.
func (m *material) roughnessValue() float32 {
	if m.roughness >= 0 {
		return m.roughness
	}
	return float32(math.Sqrt(2 / (float64(m.shininess) + 2)))
}

func unorm(v float32) uint8 {
	return uint8(math.Round(float64(max(0, min(1, v))) * 255))
}

func (m *material) segment(images map[string]*imageResult) asset.SegmentData {
	pick := func(path string, fallback color.RGBA) asset.MaterialMap {
		if r := images[path]; path != "" && r != nil && r.img != nil {
			return asset.MaterialMap{Image: r.img}
		}
		return asset.ConstantMap(fallback)
	}
	gray := func(v float32) color.RGBA {
		u := unorm(v)
		return color.RGBA{R: u, G: u, B: u, A: 255}
	}
	return asset.SegmentData{
		Diffuse: pick(m.diffuseMap, color.RGBA{
			R: unorm(m.diffuse[0]), G: unorm(m.diffuse[1]), B: unorm(m.diffuse[2]), A: 255,
		}),
		Normal:    pick(m.normalMap, asset.FlatNormal),
		Roughness: pick(m.roughnessMap, gray(m.roughnessValue())),
		Metallic:  pick(m.metallicMap, gray(m.metallic)),
	}
}

func parseMtlFile(path string, mats map[string]*material) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cur *material
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				continue
			}
			cur = defaultMaterial()
			mats[fields[1]] = cur
			continue
		}
		if cur == nil {
			continue
		}
		args := fields[1:]
		switch strings.ToLower(fields[0]) {
		case "kd":
			if len(args) >= 3 {
				for i := 0; i < 3; i++ {
					cur.diffuse[i] = parseFloat(args[i], cur.diffuse[i])
				}
			}
		case "ns":
			cur.shininess = parseFloat(first(args), cur.shininess)
		case "pr":
			cur.roughness = parseFloat(first(args), cur.roughness)
		case "pm":
			cur.metallic = parseFloat(first(args), cur.metallic)
		case "map_kd":
			cur.diffuseMap = mapPath(args)
		case "map_bump", "bump", "norm":
			cur.normalMap = mapPath(args)
		case "map_pr":
			cur.roughnessMap = mapPath(args)
		case "map_pm":
			cur.metallicMap = mapPath(args)
		}
	}
	return sc.Err()
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func parseFloat(s string, fallback float32) float32 {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}

// mapPath returns the file name of a map statement, skipping options such
// as "-bm 0.5". The file name is the last field.
func mapPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return filepath.FromSlash(strings.ReplaceAll(args[len(args)-1], `\`, "/"))
}

// texturePaths returns the distinct map paths used by materials in order.
func texturePaths(order []string, mats map[string]*material) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, name := range order {
		m := mats[name]
		if m == nil {
			continue
		}
		for _, p := range []string{m.diffuseMap, m.normalMap, m.roughnessMap, m.metallicMap} {
			if p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}

type imageResult struct {
	img *image.RGBA
	err error
}

// decodeTextures reads and decodes each path relative to dir. Failed
// images are logged and left nil so their materials fall back to constants.
func (l *Loader) decodeTextures(dir string, paths []string) map[string]*imageResult {
	results := make([]imageResult, len(paths))

	var g errgroup.Group
	g.SetLimit(l.workers())
	for i, p := range paths {
		g.Go(func() error {
			results[i] = decodeTexture(filepath.Join(dir, p))
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*imageResult, len(paths))
	for i, p := range paths {
		r := &results[i]
		if r.err != nil {
			l.logger().Warn("texture unavailable, using material constant", zap.String("path", p), zap.Error(r.err))
		}
		out[p] = r
	}
	return out
}

func decodeTexture(path string) imageResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return imageResult{err: err}
	}
	img, err := texture.Decode(path, data)
	if err != nil {
		return imageResult{err: err}
	}
	// OBJ texture coordinates start at the bottom row.
	texture.FlipVertical(img)
	return imageResult{img: img}
}
