package metadata

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved layout consumed by the pipeline's single binding.
type Vertex struct {
	Pos      mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

const (
	VertexStride         = uint32(unsafe.Sizeof(Vertex{}))
	VertexPositionOffset = uint32(unsafe.Offsetof(Vertex{}.Pos))
	VertexColorOffset    = uint32(unsafe.Offsetof(Vertex{}.Color))
	VertexTexCoordOffset = uint32(unsafe.Offsetof(Vertex{}.TexCoord))
)

/**
 * @brief Immutable geometry for one drawable: vertices, 32-bit indices and
 * the name of the texture it samples.
 */
type MeshData struct {
	Name        string
	Vertices    []Vertex
	Indices     []uint32
	TextureName string
}

// VertexBytes returns the vertices as tightly packed little-endian floats.
func (m *MeshData) VertexBytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(m.Vertices)*int(VertexStride)))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, m.Vertices)
	return buf.Bytes()
}

func (m *MeshData) IndexBytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(m.Indices)*4))
	_ = binary.Write(buf, binary.LittleEndian, m.Indices)
	return buf.Bytes()
}
