// Package texture decodes material images into GPU-ready RGBA data.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Decode decodes an image file's bytes. The name selects the TGA decoder,
// which has no magic number; everything else is sniffed by image.Decode.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to a zero-origin *image.RGBA, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FlipVertical flips img in place so row 0 becomes the bottom row, matching
// OpenGL's texture origin.
func FlipVertical(img *image.RGBA) {
	h := img.Bounds().Dy()
	rowLen := img.Bounds().Dx() * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bot := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}

// Solid returns a 1x1 image holding c.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

// PackRG builds an image whose red channel comes from r's red channel and
// green channel from g's red channel. Mismatched inputs are scaled to the
// larger of the two. Blue is 0 and alpha is opaque.
func PackRG(r, g *image.RGBA) *image.RGBA {
	size := r.Bounds().Size()
	if gs := g.Bounds().Size(); gs.X*gs.Y > size.X*size.Y {
		size = gs
	}
	r = resize(r, size)
	g = resize(g, size)

	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = r.Pix[i]
		out.Pix[i+1] = g.Pix[i]
		out.Pix[i+3] = 255
	}
	return out
}

func resize(img *image.RGBA, size image.Point) *image.RGBA {
	img = ToRGBA(img)
	if img.Bounds().Size() == size && img.Stride == size.X*4 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
