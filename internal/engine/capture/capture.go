// Package capture writes rendered frames to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
)

// Capturer saves frames as <dir>/<prefix>_<timestamp>[_n].png.
type Capturer struct {
	outputDir string
	prefix    string
	now       func() time.Time
	last      string
	seq       int
}

// New creates a capturer writing into outputDir.
func New(outputDir, prefix string) *Capturer {
	return &Capturer{outputDir: outputDir, prefix: prefix, now: time.Now}
}

// Frame reads the current framebuffer and writes it out.
func (c *Capturer) Frame(dev gpu.Device, width, height int) (string, error) {
	pixels, err := dev.ReadPixels(int32(width), int32(height))
	if err != nil {
		return "", fmt.Errorf("read pixels: %w", err)
	}
	return c.FromPixels(pixels, width, height)
}

// FromPixels writes bottom-up RGBA pixel rows as a PNG.
func (c *Capturer) FromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}

	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := c.nextFilename()

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	return filename, nil
}

// nextFilename appends a counter when several captures share a second.
func (c *Capturer) nextFilename() string {
	stamp := c.now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s", c.prefix, stamp)
	if stamp == c.last {
		c.seq++
		name = fmt.Sprintf("%s_%d", name, c.seq)
	} else {
		c.last = stamp
		c.seq = 0
	}
	return filepath.Join(c.outputDir, name+".png")
}
