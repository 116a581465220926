package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tgaHeader(imageType byte, w, h int, bpp byte, desc byte) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12] = byte(w)
	hdr[13] = byte(w >> 8)
	hdr[14] = byte(h)
	hdr[15] = byte(h >> 8)
	hdr[16] = bpp
	hdr[17] = desc
	return hdr
}

func TestDecodeTGARaw(t *testing.T) {
	// 2x1 top-down, BGR: red then green.
	data := append(tgaHeader(tgaTypeTrueColor, 2, 1, 24, 0x20), 0, 0, 255, 0, 255, 0)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(1, 0))
}

func TestDecodeTGABottomUp(t *testing.T) {
	// 1x2 bottom-up: first pixel in the file is the bottom row.
	data := append(tgaHeader(tgaTypeTrueColor, 1, 2, 32, 0), 255, 0, 0, 128, 0, 0, 255, 255)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 128}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
}

func TestDecodeTGARLE(t *testing.T) {
	// Run of 3 white pixels then one raw black pixel.
	data := tgaHeader(tgaTypeTrueColorRLE, 4, 1, 24, 0x20)
	data = append(data, 0x82, 255, 255, 255, 0x00, 0, 0, 0)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	for x := 0; x < 3; x++ {
		assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(x, 0))
	}
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(3, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(tgaTypeTrueColor, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"unsupported type", tgaHeader(3, 1, 1, 8, 0)},
		{"unsupported depth", tgaHeader(tgaTypeTrueColor, 1, 1, 16, 0)},
		{"truncated", append(tgaHeader(tgaTypeTrueColor, 2, 2, 24, 0), 1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 1, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode("albedo.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(1, 1))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("albedo.png", []byte("not an image"))
	assert.Error(t, err)
}

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 3))
	img.SetRGBA(0, 0, color.RGBA{R: 1})
	img.SetRGBA(0, 2, color.RGBA{R: 3})

	FlipVertical(img)
	assert.Equal(t, uint8(3), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(1), img.RGBAAt(0, 2).R)
}

func TestSolid(t *testing.T) {
	c := color.RGBA{128, 128, 255, 255}
	img := Solid(c)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
	assert.Equal(t, c, img.RGBAAt(0, 0))
}

func TestPackRG(t *testing.T) {
	rough := Solid(color.RGBA{R: 200, A: 255})
	metal := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range metal.Pix {
		metal.Pix[i] = 50
	}

	out := PackRG(rough, metal)
	require.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	px := out.RGBAAt(1, 1)
	assert.Equal(t, uint8(200), px.R)
	assert.Equal(t, uint8(50), px.G)
	assert.Equal(t, uint8(0), px.B)
	assert.Equal(t, uint8(255), px.A)
}
