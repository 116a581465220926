package ui

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Panel theme colors.
var (
	ColorPanelBg     = Color{0.08, 0.08, 0.12, 0.85}
	ColorPanelBorder = Color{0.3, 0.3, 0.4, 1}
	ColorText        = Color{0.9, 0.9, 0.9, 1}
	ColorTextDim     = Color{0.5, 0.5, 0.6, 1}
	ColorHighlight   = Color{0.2, 0.6, 0.9, 1}
	ColorEditing     = Color{1, 0.8, 0.3, 1}
)

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}
