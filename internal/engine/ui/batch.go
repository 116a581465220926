package ui

// floatsPerVertex is pos2 + uv2 + color4.
const floatsPerVertex = 8

// batch accumulates textured triangles in screen pixels, origin top-left.
// Solid quads sample the font's opaque cell.
type batch struct {
	font     *Font
	vertices []float32
	Scale    float32
}

func newBatch(f *Font) *batch {
	return &batch{font: f, vertices: make([]float32, 0, 4096), Scale: 1}
}

func (b *batch) reset() { b.vertices = b.vertices[:0] }

func (b *batch) vertexCount() int32 { return int32(len(b.vertices) / floatsPerVertex) }

func (b *batch) quad(x, y, w, h, u0, v0, u1, v1 float32, c Color) {
	b.vertices = append(b.vertices,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,

		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}

// rect draws a filled rectangle.
func (b *batch) rect(x, y, w, h float32, c Color) {
	u, v := b.font.SolidUV()
	b.quad(x, y, w, h, u, v, u, v, c)
}

// outline draws a rectangle border of the given thickness.
func (b *batch) outline(x, y, w, h, t float32, c Color) {
	b.rect(x, y, w, t, c)
	b.rect(x, y+h-t, w, t, c)
	b.rect(x, y+t, t, h-t*2, c)
	b.rect(x+w-t, y+t, t, h-t*2, c)
}

// text draws a string; spaces advance without emitting geometry.
func (b *batch) text(x, y float32, s string, c Color) {
	gw, gh := b.font.GlyphSize()
	cw, ch := float32(gw)*b.Scale, float32(gh)*b.Scale
	cx := x
	for _, r := range s {
		switch r {
		case '\n':
			cx = x
			y += ch
			continue
		case ' ':
			cx += cw
			continue
		}
		u0, v0, u1, v1 := b.font.GlyphUV(r)
		b.quad(cx, y, cw, ch, u0, v0, u1, v1, c)
		cx += cw
	}
}

const (
	panelMargin  = 10
	panelPadding = 6
	rowSpacing   = 2
)

// panel lays out a titled two-column table.
func (b *batch) panel(title string, lines []Line) {
	_, gh := b.font.GlyphSize()
	rowH := float32(gh)*b.Scale + rowSpacing

	labelCols := 0
	valueCols := len(title)
	for _, l := range lines {
		labelCols = max(labelCols, len(l.Label)+1)
		valueCols = max(valueCols, len(l.Label)+1+len(l.Value)+1)
	}
	valueCols = max(valueCols, labelCols+1)

	gw, _ := b.font.GlyphSize()
	cw := float32(gw) * b.Scale
	w := float32(valueCols)*cw + 2*panelPadding
	h := float32(len(lines)+1)*rowH + 2*panelPadding
	x, y := float32(panelMargin), float32(panelMargin)

	b.rect(x, y, w, h, ColorPanelBg)
	b.outline(x, y, w, h, 1, ColorPanelBorder)

	tx := x + panelPadding
	ty := y + panelPadding
	b.text(tx, ty, title, ColorHighlight)
	for _, l := range lines {
		ty += rowH
		if l.Selected {
			b.rect(x+1, ty-rowSpacing/2, w-2, rowH, ColorHighlight.WithAlpha(0.25))
		}
		labelColor := ColorTextDim
		if l.Writable {
			labelColor = ColorText
		}
		b.text(tx, ty, l.Label, labelColor)

		value, valueColor := l.Value, ColorText
		if l.Editing {
			value += "_"
			valueColor = ColorEditing
		}
		b.text(tx+float32(labelCols)*cw, ty, value, valueColor)
	}
}
