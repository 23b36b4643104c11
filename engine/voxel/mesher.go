package voxel

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
)

// Neighbourhood answers solidity queries in world voxel coordinates, typically across loaded chunks.
type Neighbourhood interface {
	Solid(worldX, worldY, worldZ int) bool
}

// faceDirection describes one of the six cube faces.
type faceDirection struct {
	face    Face
	normal  [3]int
	corners [4][3]float32
}

// faceDirections lists up, down, right, left, front, back. Corners are in UV-table order so
// vertex_index % 4 lines up with the quad corners.
var faceDirections = [6]faceDirection{
	{FaceUp, [3]int{0, 1, 0}, [4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}}},
	{FaceDown, [3]int{0, -1, 0}, [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}}},
	{FaceSide, [3]int{1, 0, 0}, [4][3]float32{{0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}}},
	{FaceSide, [3]int{-1, 0, 0}, [4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{FaceSide, [3]int{0, 0, 1}, [4][3]float32{{-0.5, 0.5, 0.5}, {-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}}},
	{FaceSide, [3]int{0, 0, -1}, [4][3]float32{{0.5, 0.5, -0.5}, {0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}}},
}

// faceIndices triangulates one quad.
var faceIndices = [6]uint32{0, 1, 2, 2, 3, 0}

// AmbientUnoccluded is the ambient code of a corner with no occluding neighbours.
const AmbientUnoccluded = 3

// Mesh is the vertex and index data of one chunk.
type Mesh struct {
	Coord    Coord
	Vertices []attribute.PackedVertex
	Indices  []uint32
}

// Faces returns the number of quads in the mesh.
func (m *Mesh) Faces() int {
	return len(m.Vertices) / 4
}

// VertexBytes returns the vertex buffer contents.
func (m *Mesh) VertexBytes() []byte {
	return attribute.MarshalVertices(m.Vertices)
}

// IndexedVertices converts the packed records to the explicit texture-index records read by the
// mesh program. Ambient occlusion is dropped.
func (m *Mesh) IndexedVertices() []attribute.IndexedVertex {
	out := make([]attribute.IndexedVertex, len(m.Vertices))
	for i := range m.Vertices {
		v := &m.Vertices[i]
		out[i] = attribute.IndexedVertex{Position: v.Position, Normal: v.Normal, TextureIndex: attribute.Layer(v.TextureAmbient)}
	}
	return out
}

// VertexBytesFor returns the vertex buffer contents in the record a program layout reads,
// nil for LayoutNone.
func (m *Mesh) VertexBytesFor(layout attribute.Layout) []byte {
	switch layout {
	case attribute.LayoutPacked:
		return m.VertexBytes()
	case attribute.LayoutIndexed:
		return attribute.MarshalVertices(m.IndexedVertices())
	default:
		return nil
	}
}

// IndexBytes returns the index buffer contents.
func (m *Mesh) IndexBytes() []byte {
	return attribute.MarshalIndices(m.Indices)
}

// Mesher converts chunks into packed-attribute meshes.
type Mesher struct {
	layers *TextureLayers
}

// NewMesher creates a mesher resolving face textures through a layer table.
func NewMesher(layers *TextureLayers) *Mesher {
	if layers == nil {
		panic("voxel: mesher needs a texture layer table")
	}
	return &Mesher{layers: layers}
}

// Build meshes a chunk. A face is emitted only when the voxel it faces is not solid; voxels outside
// the chunk are looked up in the neighbourhood and count as air when it is nil or the chunk there
// is not loaded. Every vertex packs its texture layer with an ambient occlusion code from 0 (fully
// occluded) to 3 (unoccluded).
//
// Parameters:
//   - c: the chunk
//   - n: the neighbourhood for lookups across the chunk border, may be nil
//
// Returns:
//   - *Mesh: the chunk mesh, positions in world space
//   - error: ErrNoTexture if a solid voxel face has no layer
func (m *Mesher) Build(c *Chunk, n Neighbourhood) (*Mesh, error) {
	mesh := &Mesh{Coord: c.coord}
	ox, oy, oz := c.coord.Origin()

	for y := range ChunkHeight {
		for z := range ChunkWidth {
			for x := range ChunkWidth {
				v := c.voxels[y][z][x]
				if v == Air {
					continue
				}
				for _, dir := range faceDirections {
					nx, ny, nz := x+dir.normal[0], y+dir.normal[1], z+dir.normal[2]
					if m.solid(c, n, nx, ny, nz) {
						continue
					}
					layer, ok := m.layers.Layer(v, dir.face)
					if !ok {
						return nil, fmt.Errorf("%w: %s %s", ErrNoTexture, v, dir.face)
					}

					base := uint32(len(mesh.Vertices))
					normal := [3]float32{float32(dir.normal[0]), float32(dir.normal[1]), float32(dir.normal[2])}
					for _, corner := range dir.corners {
						ao := m.ambientOcclusion(c, n, [3]int{nx, ny, nz}, dir.normal, corner)
						mesh.Vertices = append(mesh.Vertices, attribute.PackedVertex{
							Position: [3]float32{
								corner[0] + float32(ox+x),
								corner[1] + float32(oy+y),
								corner[2] + float32(oz+z),
							},
							Normal:         normal,
							TextureAmbient: attribute.Pack(layer, int16(ao)),
						})
					}
					for _, i := range faceIndices {
						mesh.Indices = append(mesh.Indices, base+i)
					}
				}
			}
		}
	}
	return mesh, nil
}

// ambientOcclusion scores one face corner from the two edge neighbours and the diagonal neighbour
// in the layer the face looks into. Two solid edges fully occlude the corner.
func (m *Mesher) ambientOcclusion(c *Chunk, n Neighbourhood, front, normal [3]int, corner [3]float32) int {
	var tangents [2][3]int
	t := 0
	for axis := range 3 {
		if normal[axis] != 0 {
			continue
		}
		if corner[axis] > 0 {
			tangents[t][axis] = 1
		} else {
			tangents[t][axis] = -1
		}
		t++
	}

	side1 := m.solid(c, n, front[0]+tangents[0][0], front[1]+tangents[0][1], front[2]+tangents[0][2])
	side2 := m.solid(c, n, front[0]+tangents[1][0], front[1]+tangents[1][1], front[2]+tangents[1][2])
	if side1 && side2 {
		return 0
	}
	diag := m.solid(c, n,
		front[0]+tangents[0][0]+tangents[1][0],
		front[1]+tangents[0][1]+tangents[1][1],
		front[2]+tangents[0][2]+tangents[1][2])
	return AmbientUnoccluded - (b2i(side1) + b2i(side2) + b2i(diag))
}

// solid resolves a local position that may lie outside the chunk.
func (m *Mesher) solid(c *Chunk, n Neighbourhood, x, y, z int) bool {
	if y < 0 || y >= ChunkHeight {
		return false
	}
	if InLocalBounds(x, y, z) {
		return c.voxels[y][z][x] != Air
	}
	if n == nil {
		return false
	}
	wx, wy, wz := c.WorldPosition(x, y, z)
	return n.Solid(wx, wy, wz)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
