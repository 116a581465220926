// Package gpu describes the GPU operations the engine core relies on.
// Handles are plain object names; zero always means "none".
package gpu

import (
	"errors"
	"image"
)

// Errors reported by Device implementations.
var (
	// ErrOutOfMemory means the driver could not allocate a resource.
	// Callers treat it as fatal.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrNotMapped is returned when unmapping a buffer that is not mapped.
	ErrNotMapped = errors.New("gpu: buffer not mapped")

	// ErrMapFailed is returned when the driver refuses to map a buffer.
	ErrMapFailed = errors.New("gpu: buffer map failed")
)

// Buffer is a GPU buffer object.
type Buffer uint32

// Texture is a 2D texture object.
type Texture uint32

// Program is a linked shader program.
type Program uint32

// VertexArray is a vertex input layout object.
type VertexArray uint32

// BufferKind selects the binding target of a buffer.
type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
	UniformBuffer
)

func (k BufferKind) String() string {
	switch k {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	case UniformBuffer:
		return "uniform"
	default:
		return "unknown"
	}
}

// Attribute describes one float vertex attribute.
type Attribute struct {
	Location   uint32
	Components int32
	Offset     uintptr
}

// VertexLayout describes interleaved float vertex data.
type VertexLayout struct {
	Stride     int32
	Attributes []Attribute
}

// Device is the subset of a GPU API used by the engine.
// All calls must be made from the thread that owns the context.
type Device interface {
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)
	CreateUniformBuffer(size int) (Buffer, error)
	DeleteBuffer(b Buffer)

	// MapBuffer maps a uniform buffer for writing. The returned slice is
	// only valid until UnmapBuffer.
	MapBuffer(b Buffer) ([]byte, error)
	UnmapBuffer(b Buffer) error
	BindUniformBuffer(binding uint32, b Buffer)

	CreateTexture(img *image.RGBA) (Texture, error)
	DeleteTexture(t Texture)
	BindTexture(unit uint32, t Texture)

	CreateVertexArray(layout VertexLayout) (VertexArray, error)
	DeleteVertexArray(va VertexArray)
	BindVertexArray(va VertexArray)

	// BindVertexBuffer attaches b as the source of the bound vertex array.
	BindVertexBuffer(b Buffer)
	BindIndexBuffer(b Buffer)

	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	BindUniformBlock(p Program, block string, binding uint32) error
	// BindSampler assigns a texture unit to a named sampler uniform.
	BindSampler(p Program, sampler string, unit uint32) error

	// DrawIndexed draws count 32-bit indices starting at byteOffset in the
	// bound index buffer.
	DrawIndexed(count int32, byteOffset uintptr)

	Clear(r, g, b, a float32)
	Viewport(width, height int32)
	ReadPixels(width, height int32) ([]byte, error)
}
