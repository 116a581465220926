package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontAtlas(t *testing.T) {
	f := NewFont()
	w, h := f.GlyphSize()
	assert.Equal(t, 7, w)
	assert.Equal(t, 13, h)

	b := f.Atlas().Bounds()
	assert.Equal(t, atlasCols*w, b.Dx())
	assert.Equal(t, atlasRows*h, b.Dy())

	// 'A' has coverage somewhere in its cell.
	u0, v0, _, _ := f.GlyphUV('A')
	x0, y0 := int(u0*float32(b.Dx())+0.5), int(v0*float32(b.Dy())+0.5)
	covered := false
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			if f.Atlas().RGBAAt(x, y).A > 0 {
				covered = true
			}
		}
	}
	assert.True(t, covered)

	su, sv := f.SolidUV()
	assert.Equal(t, uint8(255), f.Atlas().RGBAAt(int(su*float32(b.Dx())), int(sv*float32(b.Dy()))).A)
}

func TestFontGlyphUVFallback(t *testing.T) {
	f := NewFont()
	q0, q1, q2, q3 := f.GlyphUV('?')
	u0, u1, u2, u3 := f.GlyphUV('é')
	assert.Equal(t, [4]float32{q0, q1, q2, q3}, [4]float32{u0, u1, u2, u3})
}

func TestMeasureText(t *testing.T) {
	f := NewFont()
	w, h := f.MeasureText("abc\nde", 2)
	assert.Equal(t, float32(3*7*2), w)
	assert.Equal(t, float32(2*13*2), h)
}

func TestBatchText(t *testing.T) {
	b := newBatch(NewFont())
	b.text(0, 0, "a b", ColorText)
	assert.Equal(t, int32(12), b.vertexCount(), "two glyph quads, space skipped")

	// Second glyph starts two cells right.
	assert.Equal(t, float32(14), b.vertices[6*floatsPerVertex])

	b.reset()
	assert.Zero(t, b.vertexCount())
}

func TestBatchPanel(t *testing.T) {
	b := newBatch(NewFont())
	b.panel("T", []Line{{Label: "A", Value: "1", Writable: true, Selected: true, Editing: true}})

	// background + 4 border edges + selection bar = 6 rects,
	// glyphs: "T", "A", "1_" = 4.
	assert.Equal(t, int32((6+4)*6), b.vertexCount())
}
