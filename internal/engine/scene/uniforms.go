package scene

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PerFrameBinding is the uniform buffer binding point of the PerFrame block.
const PerFrameBinding = 0

// MaxLights is the number of lights the PerFrame block holds.
const MaxLights = 8

// std140 layout of the PerFrame block:
//
//	mat4  ViewProjection          offset 0
//	ivec4 LightCount (x)          offset 64
//	Light Lights[MaxLights]       offset 80, 48 bytes each:
//	  vec4 IntensityType          rgb intensity, w type
//	  vec4 PositionCosHalf        xyz position, w cos(half angle)
//	  vec4 Direction              xyz direction
const (
	offsetLightCount = 64
	offsetLights     = 80
	lightStride      = 48
	perFrameSize     = offsetLights + MaxLights*lightStride
)

type frameWriter struct {
	buf []byte
}

func (w frameWriter) float(off int, v float32) {
	binary.LittleEndian.PutUint32(w.buf[off:], math.Float32bits(v))
}

func (w frameWriter) vec4(off int, xyz mgl32.Vec3, last float32) {
	w.float(off, xyz[0])
	w.float(off+4, xyz[1])
	w.float(off+8, xyz[2])
	w.float(off+12, last)
}

func encodePerFrame(buf []byte, viewProj mgl32.Mat4, lights []Light) {
	w := frameWriter{buf: buf}
	for i, v := range viewProj {
		w.float(i*4, v)
	}

	n := min(len(lights), MaxLights)
	binary.LittleEndian.PutUint32(buf[offsetLightCount:], uint32(n))
	for i := 0; i < n; i++ {
		l := lights[i]
		base := offsetLights + i*lightStride
		w.vec4(base, l.Intensity, float32(l.Type))
		w.vec4(base+16, l.Position, l.cosHalfAngle())
		w.vec4(base+32, l.Direction, 0)
	}
}
