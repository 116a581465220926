// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
)

// Call is one recorded device call.
type Call struct {
	Op     string
	Handle uint32
	Unit   uint32
	Count  int32
	Offset uintptr
}

func (c Call) String() string {
	switch c.Op {
	case "DrawIndexed":
		return fmt.Sprintf("DrawIndexed(%d, %d)", c.Count, c.Offset)
	case "BindTexture":
		return fmt.Sprintf("BindTexture(%d, %d)", c.Unit, c.Handle)
	default:
		return fmt.Sprintf("%s(%d)", c.Op, c.Handle)
	}
}

// Device records every call in order and tracks live objects.
// It is not safe for concurrent use, like a real GL context.
type Device struct {
	Calls []Call

	// FailAfter makes the Nth allocation (1-based) and every later one
	// return gpu.ErrOutOfMemory. Zero disables injection.
	FailAfter int
	// CompileErr, when set, is returned by CompileProgram.
	CompileErr error

	next    uint32
	allocs  int
	live    map[uint32]string
	mapped  map[gpu.Buffer][]byte
	uniform map[gpu.Buffer][]byte
	// UniformWrites counts committed uniform buffer writes.
	UniformWrites int
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recorder.
func New() *Device {
	return &Device{
		live:    make(map[uint32]string),
		mapped:  make(map[gpu.Buffer][]byte),
		uniform: make(map[gpu.Buffer][]byte),
	}
}

func (d *Device) record(c Call) { d.Calls = append(d.Calls, c) }

func (d *Device) alloc(kind string) (uint32, error) {
	d.allocs++
	if d.FailAfter > 0 && d.allocs >= d.FailAfter {
		return 0, fmt.Errorf("create %s: %w", kind, gpu.ErrOutOfMemory)
	}
	d.next++
	d.live[d.next] = kind
	d.record(Call{Op: "Create" + kind, Handle: d.next})
	return d.next, nil
}

func (d *Device) free(op string, id uint32) {
	d.record(Call{Op: op, Handle: id})
	delete(d.live, id)
}

// Live returns the number of objects not yet deleted, optionally filtered
// by kind ("Buffer", "Texture", "Program", "VertexArray").
func (d *Device) Live(kind string) int {
	n := 0
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// Allocations returns how many allocations were attempted.
func (d *Device) Allocations() int { return d.allocs }

// Ops returns the recorded op names, optionally filtered by prefix.
func (d *Device) Ops(prefix string) []string {
	var ops []string
	for _, c := range d.Calls {
		if strings.HasPrefix(c.Op, prefix) {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// Draws returns the recorded DrawIndexed calls.
func (d *Device) Draws() []Call {
	var draws []Call
	for _, c := range d.Calls {
		if c.Op == "DrawIndexed" {
			draws = append(draws, c)
		}
	}
	return draws
}

// Index returns the position of the first call with op, or -1.
func (d *Device) Index(op string) int {
	for i, c := range d.Calls {
		if c.Op == op {
			return i
		}
	}
	return -1
}

// Reset clears recorded calls but keeps object state.
func (d *Device) Reset() { d.Calls = nil }

// UniformData returns the last committed contents of a uniform buffer.
func (d *Device) UniformData(b gpu.Buffer) []byte { return d.uniform[b] }

func (d *Device) CreateBuffer(kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("create buffer: empty data")
	}
	id, err := d.alloc("Buffer")
	return gpu.Buffer(id), err
}

func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	id, err := d.alloc("Buffer")
	if err != nil {
		return 0, err
	}
	d.uniform[gpu.Buffer(id)] = make([]byte, size)
	return gpu.Buffer(id), nil
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	d.free("DeleteBuffer", uint32(b))
	delete(d.uniform, b)
	delete(d.mapped, b)
}

func (d *Device) MapBuffer(b gpu.Buffer) ([]byte, error) {
	cur, ok := d.uniform[b]
	if !ok {
		return nil, fmt.Errorf("map buffer %d: %w", b, gpu.ErrMapFailed)
	}
	d.record(Call{Op: "MapBuffer", Handle: uint32(b)})
	staging := make([]byte, len(cur))
	d.mapped[b] = staging
	return staging, nil
}

func (d *Device) UnmapBuffer(b gpu.Buffer) error {
	staging, ok := d.mapped[b]
	if !ok {
		return fmt.Errorf("unmap buffer %d: %w", b, gpu.ErrNotMapped)
	}
	d.record(Call{Op: "UnmapBuffer", Handle: uint32(b)})
	delete(d.mapped, b)
	d.uniform[b] = staging
	d.UniformWrites++
	return nil
}

// Mapped reports whether b is currently mapped.
func (d *Device) Mapped(b gpu.Buffer) bool {
	_, ok := d.mapped[b]
	return ok
}

func (d *Device) BindUniformBuffer(binding uint32, b gpu.Buffer) {
	d.record(Call{Op: "BindUniformBuffer", Handle: uint32(b), Unit: binding})
}

func (d *Device) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("create texture: empty image")
	}
	id, err := d.alloc("Texture")
	return gpu.Texture(id), err
}

func (d *Device) DeleteTexture(t gpu.Texture) { d.free("DeleteTexture", uint32(t)) }

func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	d.record(Call{Op: "BindTexture", Handle: uint32(t), Unit: unit})
}

func (d *Device) CreateVertexArray(layout gpu.VertexLayout) (gpu.VertexArray, error) {
	id, err := d.alloc("VertexArray")
	return gpu.VertexArray(id), err
}

func (d *Device) DeleteVertexArray(va gpu.VertexArray) { d.free("DeleteVertexArray", uint32(va)) }

func (d *Device) BindVertexArray(va gpu.VertexArray) {
	d.record(Call{Op: "BindVertexArray", Handle: uint32(va)})
}

func (d *Device) BindVertexBuffer(b gpu.Buffer) {
	d.record(Call{Op: "BindVertexBuffer", Handle: uint32(b)})
}

func (d *Device) BindIndexBuffer(b gpu.Buffer) {
	d.record(Call{Op: "BindIndexBuffer", Handle: uint32(b)})
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	if d.CompileErr != nil {
		return 0, d.CompileErr
	}
	id, err := d.alloc("Program")
	return gpu.Program(id), err
}

func (d *Device) DeleteProgram(p gpu.Program) { d.free("DeleteProgram", uint32(p)) }

func (d *Device) UseProgram(p gpu.Program) {
	d.record(Call{Op: "UseProgram", Handle: uint32(p)})
}

func (d *Device) BindUniformBlock(p gpu.Program, block string, binding uint32) error {
	d.record(Call{Op: "BindUniformBlock", Handle: uint32(p), Unit: binding})
	return nil
}

func (d *Device) BindSampler(p gpu.Program, sampler string, unit uint32) error {
	d.record(Call{Op: "BindSampler", Handle: uint32(p), Unit: unit})
	return nil
}

func (d *Device) DrawIndexed(count int32, byteOffset uintptr) {
	d.record(Call{Op: "DrawIndexed", Count: count, Offset: byteOffset})
}

func (d *Device) Clear(r, g, b, a float32) { d.record(Call{Op: "Clear"}) }

func (d *Device) Viewport(width, height int32) {
	d.record(Call{Op: "Viewport", Count: width * height})
}

func (d *Device) ReadPixels(width, height int32) ([]byte, error) {
	d.record(Call{Op: "ReadPixels"})
	return make([]byte, int(width)*int(height)*4), nil
}
