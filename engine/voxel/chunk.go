package voxel

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkWidth is the x and z extent of a chunk.
	ChunkWidth = 16
	// ChunkHeight is the y extent of a chunk.
	ChunkHeight = 256
)

var (
	// ErrOutOfBounds is returned for a local position outside the chunk.
	ErrOutOfBounds = errors.New("voxel: position out of chunk bounds")
	// ErrHeightRange is returned for a fill or terrain height that does not fit in a chunk.
	ErrHeightRange = errors.New("voxel: height out of range")
)

// Coord is the position of a chunk on the xz chunk grid.
type Coord struct {
	X, Z int
}

// CoordOf returns the coordinate of the chunk containing a world voxel column.
func CoordOf(worldX, worldZ int) Coord {
	return Coord{X: floorDiv(worldX, ChunkWidth), Z: floorDiv(worldZ, ChunkWidth)}
}

// Origin returns the world position of the chunk's local voxel (0, 0, 0).
func (c Coord) Origin() (int, int, int) {
	return c.X * ChunkWidth, 0, c.Z * ChunkWidth
}

// Bounds returns the world-space box enclosing every voxel of the chunk. Voxels are unit cubes
// centred on their integer positions.
func (c Coord) Bounds() common.AABB {
	x, _, z := c.Origin()
	return common.AABB{
		Min: mgl32.Vec3{float32(x) - 0.5, -0.5, float32(z) - 0.5},
		Max: mgl32.Vec3{float32(x+ChunkWidth) - 0.5, ChunkHeight - 0.5, float32(z+ChunkWidth) - 0.5},
	}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Chunk is a 16x256x16 column of voxels, stored y-major then z then x.
type Chunk struct {
	coord  Coord
	voxels [ChunkHeight][ChunkWidth][ChunkWidth]Voxel
}

// NewChunk creates a chunk at a coordinate filled by a populator. A nil populator leaves it empty.
func NewChunk(coord Coord, p Populator) *Chunk {
	c := &Chunk{coord: coord}
	if p != nil {
		p.Populate(c)
	}
	return c
}

// Coord returns the chunk coordinate.
func (c *Chunk) Coord() Coord {
	return c.coord
}

// InLocalBounds reports whether a local position lies inside a chunk.
func InLocalBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth && z >= 0 && z < ChunkWidth && y >= 0 && y < ChunkHeight
}

// Get returns the voxel at a local position, Air outside the chunk.
func (c *Chunk) Get(x, y, z int) Voxel {
	if !InLocalBounds(x, y, z) {
		return Air
	}
	return c.voxels[y][z][x]
}

// Set stores a voxel at a local position.
//
// Parameters:
//   - x, y, z: the local position
//   - v: the voxel
//
// Returns:
//   - error: ErrOutOfBounds if the position is outside the chunk
func (c *Chunk) Set(x, y, z int, v Voxel) error {
	if !InLocalBounds(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfBounds, x, y, z)
	}
	c.voxels[y][z][x] = v
	return nil
}

// Solid reports whether the local position holds a non-air voxel.
func (c *Chunk) Solid(x, y, z int) bool {
	return c.Get(x, y, z) != Air
}

// WorldPosition converts a local position to world voxel coordinates.
func (c *Chunk) WorldPosition(x, y, z int) (int, int, int) {
	ox, oy, oz := c.coord.Origin()
	return ox + x, oy + y, oz + z
}

// SolidCount returns the number of non-air voxels.
func (c *Chunk) SolidCount() int {
	n := 0
	for y := range c.voxels {
		for z := range c.voxels[y] {
			for x := range c.voxels[y][z] {
				if c.voxels[y][z][x] != Air {
					n++
				}
			}
		}
	}
	return n
}

// LocalPosition converts world voxel coordinates into the owning chunk and local coordinates.
func LocalPosition(worldX, worldY, worldZ int) (Coord, int, int, int) {
	coord := CoordOf(worldX, worldZ)
	ox, _, oz := coord.Origin()
	return coord, worldX - ox, worldY, worldZ - oz
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
