package attribute

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
)

// PackedVertexSource is the WGSL VertexInput struct for the packed-attribute layout.
// Matches PackedVertex exactly (28 bytes).
//
//go:embed assets/packed_vertex.wgsl
var PackedVertexSource string

// IndexedVertexSource is the WGSL VertexInput struct for the explicit texture index layout.
// Matches IndexedVertex exactly (28 bytes).
//
//go:embed assets/indexed_vertex.wgsl
var IndexedVertexSource string

// VertexSize is the byte size of both vertex records.
const VertexSize = 28

// Layout identifies which vertex record a program consumes.
type Layout int

const (
	// LayoutNone is used by programs that read no vertex buffer.
	LayoutNone Layout = iota
	// LayoutPacked is position, normal and a packed layer/ambient attribute.
	LayoutPacked
	// LayoutIndexed is position, normal and an explicit texture index.
	LayoutIndexed
)

// String returns the layout name used in logs and the CLI.
func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "none"
	case LayoutPacked:
		return "packed"
	case LayoutIndexed:
		return "indexed"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Stride returns the per-vertex byte stride of a layout.
func Stride(l Layout) uint64 {
	switch l {
	case LayoutPacked, LayoutIndexed:
		return VertexSize
	default:
		return 0
	}
}

// PackedVertex is the vertex record for the voxel programs.
// Layout: position @location(0) offset 0, normal @location(1) offset 12, texture_ambient @location(2) offset 24.
type PackedVertex struct {
	Position       [3]float32
	Normal         [3]float32
	TextureAmbient uint32
}

// IndexedVertex is the vertex record for the mesh program.
// Layout: position @location(0) offset 0, normal @location(1) offset 12, texture_index @location(2) offset 24.
type IndexedVertex struct {
	Position     [3]float32
	Normal       [3]float32
	TextureIndex uint32
}

// Marshaler is implemented by both vertex records.
type Marshaler interface {
	MarshalTo(buf []byte)
}

// Decode returns the unpacked attribute of the vertex.
func (v *PackedVertex) Decode() Decoded {
	return Decode(v.TextureAmbient)
}

// MarshalTo writes the vertex into the first VertexSize bytes of buf.
func (v *PackedVertex) MarshalTo(buf []byte) {
	putVec3(buf[0:], v.Position)
	putVec3(buf[12:], v.Normal)
	binary.LittleEndian.PutUint32(buf[24:], v.TextureAmbient)
}

// Marshal serializes the vertex for GPU upload.
func (v *PackedVertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.MarshalTo(buf)
	return buf
}

// MarshalTo writes the vertex into the first VertexSize bytes of buf.
func (v *IndexedVertex) MarshalTo(buf []byte) {
	putVec3(buf[0:], v.Position)
	putVec3(buf[12:], v.Normal)
	binary.LittleEndian.PutUint32(buf[24:], v.TextureIndex)
}

// Marshal serializes the vertex for GPU upload.
func (v *IndexedVertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.MarshalTo(buf)
	return buf
}

// MarshalVertices serializes a vertex slice into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices) * VertexSize bytes, little endian
func MarshalVertices[T any, P interface {
	*T
	Marshaler
}](vertices []T) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		P(&vertices[i]).MarshalTo(buf[i*VertexSize:])
	}
	return buf
}

// MarshalIndices serializes a u32 index list.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}
