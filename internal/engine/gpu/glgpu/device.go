// Package glgpu implements gpu.Device on OpenGL 4.1 core.
// IMPORTANT: New must be called after the OpenGL context is created.
package glgpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Device issues OpenGL calls for the engine core.
type Device struct {
	log *zap.Logger

	// GL 4.1 has no separate vertex format binding, so attribute pointers
	// are re-issued whenever a vertex buffer is bound under a layout.
	layouts map[gpu.VertexArray]gpu.VertexLayout
	boundVA gpu.VertexArray

	bufferSizes map[gpu.Buffer]int
	mapped      map[gpu.Buffer]bool
}

var _ gpu.Device = (*Device)(nil)

// New loads the OpenGL function pointers and sets default state.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		log:         logger.Named("gpu"),
		layouts:     make(map[gpu.VertexArray]gpu.VertexLayout),
		bufferSizes: make(map[gpu.Buffer]int),
		mapped:      make(map[gpu.Buffer]bool),
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)

	return d, nil
}

// getError is gl.GetError; tests replace it.
var getError = gl.GetError

// discardErrors empties the GL error queue so that the next checkAlloc
// only sees errors raised by the allocation itself.
func (d *Device) discardErrors() {
	for e := getError(); e != gl.NO_ERROR; e = getError() {
		d.log.Debug("discarding stale GL error", zap.String("code", fmt.Sprintf("0x%x", e)))
	}
}

// checkAlloc drains the GL error queue after an allocation. Callers clear
// the queue with discardErrors first.
func checkAlloc(what string) error {
	var oom bool
	var last uint32
	for e := getError(); e != gl.NO_ERROR; e = getError() {
		if e == gl.OUT_OF_MEMORY {
			oom = true
		}
		last = e
	}
	if oom {
		return fmt.Errorf("%s: %w", what, gpu.ErrOutOfMemory)
	}
	if last != 0 {
		return fmt.Errorf("%s: GL error 0x%x", what, last)
	}
	return nil
}

func target(kind gpu.BufferKind) uint32 {
	switch kind {
	case gpu.IndexBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	case gpu.UniformBuffer:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

// CreateBuffer uploads static data into a new buffer.
func (d *Device) CreateBuffer(kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("create %s buffer: empty data", kind)
	}

	// Index buffers are captured by the bound VAO, so upload without one.
	gl.BindVertexArray(0)
	d.boundVA = 0
	d.discardErrors()

	var id uint32
	gl.GenBuffers(1, &id)
	t := target(kind)
	gl.BindBuffer(t, id)
	gl.BufferData(t, len(data), unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.BindBuffer(t, 0)

	if err := checkAlloc("create " + kind.String() + " buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	d.bufferSizes[gpu.Buffer(id)] = len(data)
	return gpu.Buffer(id), nil
}

// CreateUniformBuffer allocates a dynamic uniform buffer of size bytes.
func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	d.discardErrors()
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	if err := checkAlloc("create uniform buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	d.bufferSizes[gpu.Buffer(id)] = size
	return gpu.Buffer(id), nil
}

// DeleteBuffer releases a buffer.
func (d *Device) DeleteBuffer(b gpu.Buffer) {
	if b == 0 {
		return
	}
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
	delete(d.bufferSizes, b)
	delete(d.mapped, b)
}

// MapBuffer maps the whole uniform buffer for writing.
func (d *Device) MapBuffer(b gpu.Buffer) ([]byte, error) {
	size, ok := d.bufferSizes[b]
	if !ok {
		return nil, fmt.Errorf("map buffer %d: unknown buffer", b)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, uint32(b))
	ptr := gl.MapBufferRange(gl.UNIFORM_BUFFER, 0, size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
		return nil, fmt.Errorf("map buffer %d: %w", b, gpu.ErrMapFailed)
	}
	d.mapped[b] = true
	return unsafe.Slice((*byte)(ptr), size), nil
}

// UnmapBuffer releases a mapping made by MapBuffer.
func (d *Device) UnmapBuffer(b gpu.Buffer) error {
	if !d.mapped[b] {
		return fmt.Errorf("unmap buffer %d: %w", b, gpu.ErrNotMapped)
	}
	delete(d.mapped, b)
	gl.BindBuffer(gl.UNIFORM_BUFFER, uint32(b))
	ok := gl.UnmapBuffer(gl.UNIFORM_BUFFER)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if !ok {
		// Contents became undefined while mapped (e.g. display mode change).
		return fmt.Errorf("unmap buffer %d: data store corrupted", b)
	}
	return nil
}

// BindUniformBuffer binds b to a uniform block binding point.
func (d *Device) BindUniformBuffer(binding uint32, b gpu.Buffer) {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, uint32(b))
}

// CreateTexture uploads an RGBA image with mipmaps.
func (d *Device) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("create texture: empty image")
	}

	d.discardErrors()
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkAlloc("create texture"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return gpu.Texture(id), nil
}

// DeleteTexture releases a texture.
func (d *Device) DeleteTexture(t gpu.Texture) {
	if t == 0 {
		return
	}
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

// BindTexture binds t to the given texture unit.
func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// CreateVertexArray creates a VAO with the layout's attributes enabled.
func (d *Device) CreateVertexArray(layout gpu.VertexLayout) (gpu.VertexArray, error) {
	d.discardErrors()
	var id uint32
	gl.GenVertexArrays(1, &id)
	gl.BindVertexArray(id)
	for _, a := range layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
	}
	gl.BindVertexArray(0)
	d.boundVA = 0

	if err := checkAlloc("create vertex array"); err != nil {
		gl.DeleteVertexArrays(1, &id)
		return 0, err
	}
	d.layouts[gpu.VertexArray(id)] = layout
	return gpu.VertexArray(id), nil
}

// DeleteVertexArray releases a VAO.
func (d *Device) DeleteVertexArray(va gpu.VertexArray) {
	if va == 0 {
		return
	}
	id := uint32(va)
	gl.DeleteVertexArrays(1, &id)
	delete(d.layouts, va)
	if d.boundVA == va {
		d.boundVA = 0
	}
}

// BindVertexArray binds va.
func (d *Device) BindVertexArray(va gpu.VertexArray) {
	gl.BindVertexArray(uint32(va))
	d.boundVA = va
}

// BindVertexBuffer points the bound layout's attributes at b.
func (d *Device) BindVertexBuffer(b gpu.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	layout, ok := d.layouts[d.boundVA]
	if !ok {
		return
	}
	for _, a := range layout.Attributes {
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, layout.Stride, a.Offset)
	}
}

// BindIndexBuffer binds b as the element array of the bound layout.
func (d *Device) BindIndexBuffer(b gpu.Buffer) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(b))
}

// DeleteProgram releases a program.
func (d *Device) DeleteProgram(p gpu.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

// UseProgram activates p.
func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

// BindUniformBlock assigns a binding point to a named uniform block.
func (d *Device) BindUniformBlock(p gpu.Program, block string, binding uint32) error {
	idx := gl.GetUniformBlockIndex(uint32(p), gl.Str(block+"\x00"))
	if idx == gl.INVALID_INDEX {
		return fmt.Errorf("uniform block %q not found in program %d", block, p)
	}
	gl.UniformBlockBinding(uint32(p), idx, binding)
	return nil
}

// BindSampler sets a sampler uniform to a texture unit.
func (d *Device) BindSampler(p gpu.Program, sampler string, unit uint32) error {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(sampler+"\x00"))
	if loc < 0 {
		return fmt.Errorf("sampler %q not found in program %d", sampler, p)
	}
	gl.ProgramUniform1i(uint32(p), loc, int32(unit))
	return nil
}

// DrawIndexed draws indexed triangles.
func (d *Device) DrawIndexed(count int32, byteOffset uintptr) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, byteOffset)
}

// Clear clears color and depth.
func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport sets the viewport.
func (d *Device) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (d *Device) ReadPixels(width, height int32) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("read pixels: invalid size %dx%d", width, height)
	}
	pixels := make([]byte, int(width)*int(height)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, nil
}
