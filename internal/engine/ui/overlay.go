package ui

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
)

const overlayVertexShader = `#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vUV;
out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vUV = aUV;
	vColor = aColor;
}
`

const overlayFragmentShader = `#version 410 core

in vec2 vUV;
in vec4 vColor;

uniform sampler2D uAtlas;

out vec4 FragColor;

void main() {
	FragColor = vColor * vec4(1.0, 1.0, 1.0, texture(uAtlas, vUV).a);
}
`

// Overlay paints panels on top of the rendered frame with OpenGL.
type Overlay struct {
	dev     gpu.Device
	batch   *batch
	program gpu.Program
	atlas   gpu.Texture
	vao     uint32
	vbo     uint32
	locProj int32
	locTex  int32
	width   int
	height  int
}

var _ Painter = (*Overlay)(nil)

// NewOverlay creates the overlay's program, font atlas and stream buffer.
// It must be called after the GL context exists.
func NewOverlay(dev gpu.Device, width, height int) (*Overlay, error) {
	o := &Overlay{dev: dev, batch: newBatch(NewFont()), width: width, height: height}

	var err error
	o.program, err = dev.CompileProgram(overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay program: %w", err)
	}
	o.atlas, err = dev.CreateTexture(o.batch.font.Atlas())
	if err != nil {
		dev.DeleteProgram(o.program)
		return nil, fmt.Errorf("overlay font atlas: %w", err)
	}
	o.locProj = gl.GetUniformLocation(uint32(o.program), gl.Str("uProjection\x00"))
	o.locTex = gl.GetUniformLocation(uint32(o.program), gl.Str("uAtlas\x00"))

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return o, nil
}

// Resize updates the screen dimensions.
func (o *Overlay) Resize(width, height int) {
	o.width = width
	o.height = height
}

// DrawPanel draws one panel immediately.
func (o *Overlay) DrawPanel(title string, lines []Line) {
	o.batch.reset()
	o.batch.panel(title, lines)
	o.flush()
}

func (o *Overlay) flush() {
	if len(o.batch.vertices) == 0 {
		return
	}

	prevBlend := gl.IsEnabled(gl.BLEND)
	prevDepth := gl.IsEnabled(gl.DEPTH_TEST)
	prevCull := gl.IsEnabled(gl.CULL_FACE)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := mgl32.Ortho2D(0, float32(o.width), float32(o.height), 0)
	o.dev.UseProgram(o.program)
	gl.UniformMatrix4fv(o.locProj, 1, false, &proj[0])
	gl.Uniform1i(o.locTex, 0)
	o.dev.BindTexture(0, o.atlas)

	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	v := o.batch.vertices
	gl.BufferData(gl.ARRAY_BUFFER, len(v)*4, unsafe.Pointer(&v[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, o.batch.vertexCount())

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	if !prevBlend {
		gl.Disable(gl.BLEND)
	}
	if prevDepth {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull {
		gl.Enable(gl.CULL_FACE)
	}
}

// Close releases the overlay's GL objects.
func (o *Overlay) Close() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
		o.vao = 0
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
		o.vbo = 0
	}
	o.dev.DeleteTexture(o.atlas)
	o.atlas = 0
	o.dev.DeleteProgram(o.program)
	o.program = 0
}
