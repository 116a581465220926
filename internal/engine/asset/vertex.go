package asset

import (
	"unsafe"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
)

// Vertex is the interleaved vertex format shared by every model.
// Tangent.W holds the bitangent handedness (+1 or -1).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	TexCoord [2]float32
}

// VertexSize is the size of Vertex in bytes.
const VertexSize = int32(unsafe.Sizeof(Vertex{}))

// Attribute locations used by shaders.
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribTangent  uint32 = 2
	AttribTexCoord uint32 = 3
)

// VertexLayout describes Vertex to the GPU.
var VertexLayout = gpu.VertexLayout{
	Stride: VertexSize,
	Attributes: []gpu.Attribute{
		{Location: AttribPosition, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Position)},
		{Location: AttribNormal, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Normal)},
		{Location: AttribTangent, Components: 4, Offset: unsafe.Offsetof(Vertex{}.Tangent)},
		{Location: AttribTexCoord, Components: 2, Offset: unsafe.Offsetof(Vertex{}.TexCoord)},
	},
}

func vertexBytes(vs []Vertex) []byte {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*int(VertexSize))
}

func indexBytes(is []uint32) []byte {
	if len(is) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&is[0])), len(is)*4)
}
