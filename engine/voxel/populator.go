package voxel

import (
	"fmt"
	"math"
)

// Populator fills a freshly created, all-air chunk.
type Populator interface {
	Populate(c *Chunk)
}

// Single is one voxel placed by a SinglesPopulator, in local chunk coordinates.
type Single struct {
	X, Y, Z int
	Voxel   Voxel
}

// SinglesPopulator places an explicit list of voxels.
type SinglesPopulator struct {
	singles []Single
}

var _ Populator = (*SinglesPopulator)(nil)

// NewSinglesPopulator validates the positions up front so Populate cannot fail.
//
// Parameters:
//   - singles: the voxels to place
//
// Returns:
//   - *SinglesPopulator: the populator
//   - error: ErrOutOfBounds if any position lies outside a chunk
func NewSinglesPopulator(singles []Single) (*SinglesPopulator, error) {
	for _, s := range singles {
		if !InLocalBounds(s.X, s.Y, s.Z) {
			return nil, fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfBounds, s.X, s.Y, s.Z)
		}
	}
	return &SinglesPopulator{singles: append([]Single(nil), singles...)}, nil
}

func (p *SinglesPopulator) Populate(c *Chunk) {
	for _, s := range p.singles {
		c.voxels[s.Y][s.Z][s.X] = s.Voxel
	}
}

// FlatFillPopulator fills every layer below a height with one voxel.
type FlatFillPopulator struct {
	height int
	voxel  Voxel
}

var _ Populator = (*FlatFillPopulator)(nil)

// NewFlatFillPopulator creates a populator filling y in [0, height).
//
// Parameters:
//   - height: the number of filled layers
//   - v: the fill voxel
//
// Returns:
//   - *FlatFillPopulator: the populator
//   - error: ErrHeightRange if height is negative or not below ChunkHeight
func NewFlatFillPopulator(height int, v Voxel) (*FlatFillPopulator, error) {
	if height < 0 || height >= ChunkHeight {
		return nil, fmt.Errorf("%w: fill height %d", ErrHeightRange, height)
	}
	return &FlatFillPopulator{height: height, voxel: v}, nil
}

func (p *FlatFillPopulator) Populate(c *Chunk) {
	for y := 0; y < p.height; y++ {
		for z := range ChunkWidth {
			for x := range ChunkWidth {
				c.voxels[y][z][x] = p.voxel
			}
		}
	}
}

// NoiseSettings configures the heightmap of a NoisePopulator.
type NoiseSettings struct {
	Seed        int64
	Scale       float64
	BaseHeight  int
	Amplitude   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
	// DirtDepth is the number of dirt layers between the grass top and the stone below.
	DirtDepth int
}

// DefaultNoiseSettings returns rolling hills between y=32 and y=64.
func DefaultNoiseSettings(seed int64) NoiseSettings {
	return NoiseSettings{
		Seed:        seed,
		Scale:       1.0 / 64.0,
		BaseHeight:  32,
		Amplitude:   32,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		DirtDepth:   3,
	}
}

// NoisePopulator builds terrain from octave value noise: a grass top, dirt below it, stone underneath.
type NoisePopulator struct {
	settings NoiseSettings
}

var _ Populator = (*NoisePopulator)(nil)

// NewNoisePopulator validates the settings.
//
// Parameters:
//   - s: the noise settings
//
// Returns:
//   - *NoisePopulator: the populator
//   - error: ErrHeightRange if the highest possible surface does not fit in a chunk, or an error for
//     non-positive octaves or scale
func NewNoisePopulator(s NoiseSettings) (*NoisePopulator, error) {
	if s.Octaves < 1 {
		return nil, fmt.Errorf("voxel: noise needs at least one octave, got %d", s.Octaves)
	}
	if s.Scale <= 0 {
		return nil, fmt.Errorf("voxel: noise scale must be positive, got %g", s.Scale)
	}
	if s.BaseHeight < 0 || s.Amplitude < 0 || float64(s.BaseHeight)+s.Amplitude >= ChunkHeight {
		return nil, fmt.Errorf("%w: base %d amplitude %g", ErrHeightRange, s.BaseHeight, s.Amplitude)
	}
	return &NoisePopulator{settings: s}, nil
}

// HeightAt returns the surface height of a world column.
func (p *NoisePopulator) HeightAt(worldX, worldZ int) int {
	s := p.settings
	n := octaveNoise2D(float64(worldX)*s.Scale, float64(worldZ)*s.Scale, s.Seed, s.Octaves, s.Persistence, s.Lacunarity)
	h := int(math.Floor(float64(s.BaseHeight) + n*s.Amplitude))
	return min(max(h, 0), ChunkHeight-1)
}

func (p *NoisePopulator) Populate(c *Chunk) {
	for z := range ChunkWidth {
		for x := range ChunkWidth {
			wx, _, wz := c.WorldPosition(x, 0, z)
			top := p.HeightAt(wx, wz)
			for y := 0; y < top; y++ {
				v := Stone
				if y >= top-p.settings.DirtDepth {
					v = Dirt
				}
				c.voxels[y][z][x] = v
			}
			c.voxels[top][z][x] = Grass
		}
	}
}
