package ui

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph = ' '
	lastGlyph  = '~'
	atlasCols  = 16
	glyphCount = lastGlyph - firstGlyph + 1
	glyphRows  = (glyphCount + atlasCols - 1) / atlasCols
	// One extra row holds an opaque cell used for solid quads.
	atlasRows   = glyphRows + 1
	missingRune = '?'
)

// Font is a fixed-width ASCII glyph atlas rasterized from the 7x13 bitmap
// face. Glyphs are white; alpha carries coverage.
type Font struct {
	atlas *image.RGBA
	cellW int
	cellH int
}

// NewFont rasterizes the atlas.
func NewFont() *Font {
	face := basicfont.Face7x13
	cellW := face.Advance
	cellH := face.Height
	ascent := face.Ascent

	atlas := image.NewRGBA(image.Rect(0, 0, atlasCols*cellW, atlasRows*cellH))
	d := font.Drawer{Dst: atlas, Src: image.White, Face: face}
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		col, row := i%atlasCols, i/atlasCols
		d.Dot = fixed.P(col*cellW, row*cellH+ascent)
		d.DrawString(string(r))
	}
	solid := image.Rect(0, glyphRows*cellH, cellW, (glyphRows+1)*cellH)
	draw.Draw(atlas, solid, image.White, image.Point{}, draw.Src)
	return &Font{atlas: atlas, cellW: cellW, cellH: cellH}
}

// SolidUV returns a texture coordinate inside the opaque cell.
func (f *Font) SolidUV() (float32, float32) {
	b := f.atlas.Bounds()
	u := (float32(f.cellW) / 2) / float32(b.Dx())
	v := (float32(glyphRows*f.cellH) + float32(f.cellH)/2) / float32(b.Dy())
	return u, v
}

// Atlas returns the glyph image for upload.
func (f *Font) Atlas() *image.RGBA { return f.atlas }

// GlyphSize returns the cell size in pixels.
func (f *Font) GlyphSize() (int, int) { return f.cellW, f.cellH }

// GlyphUV returns the atlas texture coordinates of r. Runes outside the
// atlas render as '?'.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = missingRune
	}
	i := int(r - firstGlyph)
	b := f.atlas.Bounds()
	x := float32((i % atlasCols) * f.cellW)
	y := float32((i / atlasCols) * f.cellH)
	w, h := float32(b.Dx()), float32(b.Dy())
	return x / w, y / h, (x + float32(f.cellW)) / w, (y + float32(f.cellH)) / h
}

// MeasureText returns the size of text drawn at scale.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*f.cellW) * scale, float32(lines*f.cellH) * scale
}
