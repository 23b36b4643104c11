package voxel

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type solidFunc func(x, y, z int) bool

func (f solidFunc) Solid(x, y, z int) bool { return f(x, y, z) }

func singles(t *testing.T, s ...Single) *SinglesPopulator {
	t.Helper()
	p, err := NewSinglesPopulator(s)
	require.NoError(t, err)
	return p
}

func TestParseNames(t *testing.T) {
	for _, v := range []Voxel{Air, Grass, Dirt, Stone} {
		got, err := ParseVoxel(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, f := range []Face{FaceUp, FaceDown, FaceSide} {
		got, err := ParseFace(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseVoxel("STONE")
	require.NoError(t, err)
	assert.Equal(t, Stone, got)

	_, err = ParseVoxel("lava")
	assert.ErrorIs(t, err, ErrUnknownVoxel)
	_, err = ParseFace("north")
	assert.ErrorIs(t, err, ErrUnknownFace)
}

func TestCoordOf(t *testing.T) {
	tests := []struct {
		x, z     int
		expected Coord
	}{
		{0, 0, Coord{0, 0}},
		{15, 15, Coord{0, 0}},
		{16, 0, Coord{1, 0}},
		{-1, 15, Coord{-1, 0}},
		{-16, -17, Coord{-1, -2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CoordOf(tt.x, tt.z), "(%d,%d)", tt.x, tt.z)
	}

	coord, lx, ly, lz := LocalPosition(-1, 5, 17)
	assert.Equal(t, Coord{-1, 1}, coord)
	assert.Equal(t, []int{15, 5, 1}, []int{lx, ly, lz})
}

func TestCoordBounds(t *testing.T) {
	b := Coord{1, -1}.Bounds()
	assert.Equal(t, mgl32.Vec3{15.5, -0.5, -16.5}, b.Min)
	assert.Equal(t, mgl32.Vec3{31.5, 255.5, -0.5}, b.Max)
}

func TestChunkAccess(t *testing.T) {
	c := NewChunk(Coord{2, 3}, nil)
	require.NoError(t, c.Set(1, 2, 3, Stone))
	assert.Equal(t, Stone, c.Get(1, 2, 3))
	assert.True(t, c.Solid(1, 2, 3))
	assert.False(t, c.Solid(1, 3, 3))
	assert.Equal(t, Air, c.Get(-1, 0, 0))
	assert.Equal(t, 1, c.SolidCount())

	assert.ErrorIs(t, c.Set(16, 0, 0, Stone), ErrOutOfBounds)
	assert.ErrorIs(t, c.Set(0, 256, 0, Stone), ErrOutOfBounds)

	x, y, z := c.WorldPosition(1, 2, 3)
	assert.Equal(t, []int{33, 2, 51}, []int{x, y, z})
	assert.Equal(t, Coord{2, 3}, c.Coord())
}

func TestSinglesPopulator(t *testing.T) {
	_, err := NewSinglesPopulator([]Single{{X: 0, Y: 0, Z: 16, Voxel: Grass}})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	c := NewChunk(Coord{}, singles(t, Single{1, 1, 1, Grass}, Single{15, 255, 15, Stone}))
	assert.Equal(t, Grass, c.Get(1, 1, 1))
	assert.Equal(t, Stone, c.Get(15, 255, 15))
	assert.Equal(t, 2, c.SolidCount())
}

func TestFlatFillPopulator(t *testing.T) {
	_, err := NewFlatFillPopulator(ChunkHeight, Dirt)
	assert.ErrorIs(t, err, ErrHeightRange)
	_, err = NewFlatFillPopulator(-1, Dirt)
	assert.ErrorIs(t, err, ErrHeightRange)

	p, err := NewFlatFillPopulator(4, Dirt)
	require.NoError(t, err)
	c := NewChunk(Coord{}, p)
	assert.Equal(t, 4*ChunkWidth*ChunkWidth, c.SolidCount())
	assert.Equal(t, Dirt, c.Get(7, 3, 7))
	assert.Equal(t, Air, c.Get(7, 4, 7))
}

func TestNoisePopulator(t *testing.T) {
	s := DefaultNoiseSettings(30)
	p, err := NewNoisePopulator(s)
	require.NoError(t, err)

	other, err := NewNoisePopulator(DefaultNoiseSettings(31))
	require.NoError(t, err)

	differs := false
	for x := -40; x < 40; x += 3 {
		for z := -40; z < 40; z += 5 {
			h := p.HeightAt(x, z)
			assert.Equal(t, h, p.HeightAt(x, z))
			assert.GreaterOrEqual(t, h, s.BaseHeight)
			assert.LessOrEqual(t, h, s.BaseHeight+int(s.Amplitude))
			if h != other.HeightAt(x, z) {
				differs = true
			}
		}
	}
	assert.True(t, differs, "seeds should change the terrain")

	c := NewChunk(Coord{-1, 2}, p)
	wx, _, wz := c.WorldPosition(4, 0, 9)
	top := p.HeightAt(wx, wz)
	assert.Equal(t, Grass, c.Get(4, top, 9))
	assert.Equal(t, Air, c.Get(4, top+1, 9))
	assert.Equal(t, Dirt, c.Get(4, top-1, 9))
	assert.Equal(t, Stone, c.Get(4, top-s.DirtDepth-1, 9))
}

func TestNoisePopulatorValidation(t *testing.T) {
	s := DefaultNoiseSettings(1)
	s.Amplitude = 300
	_, err := NewNoisePopulator(s)
	assert.ErrorIs(t, err, ErrHeightRange)

	s = DefaultNoiseSettings(1)
	s.Octaves = 0
	_, err = NewNoisePopulator(s)
	assert.Error(t, err)
}

func TestOctaveNoiseRange(t *testing.T) {
	for i := range 200 {
		v := octaveNoise2D(float64(i)*0.37, float64(i)*-0.91, 7, 4, 0.5, 2)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestTextureLayers(t *testing.T) {
	layers := DefaultTextureLayers()
	assert.Equal(t, len(DefaultLayerKeys), layers.Len())

	l, ok := layers.Layer(Grass, FaceUp)
	require.True(t, ok)
	assert.Equal(t, uint16(0), l)
	l, ok = layers.Layer(Stone, FaceDown)
	require.True(t, ok)
	assert.Equal(t, uint16(8), l)
	_, ok = layers.Layer(Air, FaceUp)
	assert.False(t, ok)

	_, err := NewTextureLayers([]LayerKey{{Grass, FaceUp}, {Grass, FaceUp}})
	assert.Error(t, err)
	_, err = NewTextureLayers(nil)
	assert.Error(t, err)
}

func TestTextureLayerImages(t *testing.T) {
	layers := DefaultTextureLayers()
	data, err := layers.StagingData(16)
	require.NoError(t, err)
	assert.Equal(t, uint32(layers.Len()), data.LayerCount())
	assert.Equal(t, uint32(16), data.Width)
	assert.Equal(t, uint32(16), data.Height)

	images := layers.Images(16)
	side, _ := layers.Layer(Grass, FaceSide)
	top := images[side].RGBAAt(8, 0)
	bottom := images[side].RGBAAt(8, 15)
	assert.Greater(t, top.G, top.R, "grass band at the top of the side texture")
	assert.Greater(t, bottom.R, bottom.G, "dirt below the band")
	assert.Equal(t, uint8(255), bottom.A)

	_, err = layers.StagingData(0)
	assert.Error(t, err)
}

func TestMesherSingleVoxel(t *testing.T) {
	layers := DefaultTextureLayers()
	c := NewChunk(Coord{}, singles(t, Single{5, 10, 5, Grass}))
	mesh, err := NewMesher(layers).Build(c, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, mesh.Faces())
	require.Len(t, mesh.Vertices, 24)
	require.Len(t, mesh.Indices, 36)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, mesh.Indices[:6])
	assert.Equal(t, []uint32{4, 5, 6, 6, 7, 4}, mesh.Indices[6:12])
	assert.Len(t, mesh.VertexBytes(), 24*attribute.VertexSize)
	assert.Len(t, mesh.IndexBytes(), 36*4)

	// up face first, corners in UV-table order
	assert.Equal(t, [3]float32{4.5, 10.5, 4.5}, mesh.Vertices[0].Position)
	assert.Equal(t, [3]float32{4.5, 10.5, 5.5}, mesh.Vertices[1].Position)
	assert.Equal(t, [3]float32{0, 1, 0}, mesh.Vertices[0].Normal)

	up, _ := layers.Layer(Grass, FaceUp)
	down, _ := layers.Layer(Grass, FaceDown)
	side, _ := layers.Layer(Grass, FaceSide)
	for i, v := range mesh.Vertices {
		d := attribute.Decode(v.TextureAmbient)
		assert.Equal(t, int32(AmbientUnoccluded), d.Ambient, "vertex %d", i)
		switch i / 4 {
		case 0:
			assert.Equal(t, uint32(up), d.Layer)
		case 1:
			assert.Equal(t, uint32(down), d.Layer)
		default:
			assert.Equal(t, uint32(side), d.Layer)
		}
	}
}

func TestMeshIndexedVertices(t *testing.T) {
	layers := DefaultTextureLayers()
	c := NewChunk(Coord{}, singles(t, Single{0, 0, 0, Grass}))
	mesh, err := NewMesher(layers).Build(c, nil)
	require.NoError(t, err)

	indexed := mesh.IndexedVertices()
	require.Len(t, indexed, len(mesh.Vertices))
	up, _ := layers.Layer(Grass, FaceUp)
	assert.Equal(t, uint32(up), indexed[0].TextureIndex)
	assert.Equal(t, mesh.Vertices[0].Position, indexed[0].Position)

	assert.Equal(t, mesh.VertexBytes(), mesh.VertexBytesFor(attribute.LayoutPacked))
	assert.Len(t, mesh.VertexBytesFor(attribute.LayoutIndexed), len(indexed)*attribute.VertexSize)
	assert.Nil(t, mesh.VertexBytesFor(attribute.LayoutNone))
}

func TestMesherCullsHiddenFaces(t *testing.T) {
	c := NewChunk(Coord{}, singles(t, Single{5, 10, 5, Stone}, Single{6, 10, 5, Stone}))
	mesh, err := NewMesher(DefaultTextureLayers()).Build(c, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, mesh.Faces())

	p, err := NewFlatFillPopulator(2, Stone)
	require.NoError(t, err)
	mesh, err = NewMesher(DefaultTextureLayers()).Build(NewChunk(Coord{}, p), nil)
	require.NoError(t, err)
	// top and bottom layers plus the open chunk walls
	assert.Equal(t, 2*16*16+4*16*2, mesh.Faces())
}

func TestMesherNeighbourhood(t *testing.T) {
	c := NewChunk(Coord{1, 0}, singles(t, Single{15, 0, 0, Stone}))
	var asked [][3]int
	n := solidFunc(func(x, y, z int) bool {
		asked = append(asked, [3]int{x, y, z})
		return x == 32
	})
	mesh, err := NewMesher(DefaultTextureLayers()).Build(c, n)
	require.NoError(t, err)
	assert.Equal(t, 5, mesh.Faces(), "the +x face borders a solid neighbour chunk")
	assert.Contains(t, asked, [3]int{32, 0, 0})
	for _, v := range mesh.Vertices {
		assert.NotEqual(t, [3]float32{1, 0, 0}, v.Normal)
	}
}

func TestMesherWorldOffset(t *testing.T) {
	c := NewChunk(Coord{1, -1}, singles(t, Single{0, 0, 0, Dirt}))
	mesh, err := NewMesher(DefaultTextureLayers()).Build(c, nil)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{15.5, 0.5, -16.5}, mesh.Vertices[0].Position)
	assert.Equal(t, Coord{1, -1}, mesh.Coord)
}

func TestMesherAmbientOcclusion(t *testing.T) {
	layers := DefaultTextureLayers()

	// one occluder diagonally above the +x edge of the top face
	c := NewChunk(Coord{}, singles(t, Single{5, 0, 5, Stone}, Single{6, 1, 5, Stone}))
	mesh, err := NewMesher(layers).Build(c, nil)
	require.NoError(t, err)
	top := upFace(t, mesh, [3]float32{4.5, 0.5, 4.5})
	assert.Equal(t, []int32{3, 3, 2, 2}, top)

	// two edge occluders meeting at the (+x, +z) corner
	c = NewChunk(Coord{}, singles(t, Single{5, 0, 5, Stone}, Single{6, 1, 5, Stone}, Single{5, 1, 6, Stone}))
	mesh, err = NewMesher(layers).Build(c, nil)
	require.NoError(t, err)
	top = upFace(t, mesh, [3]float32{4.5, 0.5, 4.5})
	assert.Equal(t, []int32{3, 2, 0, 2}, top)

	// a lone diagonal occluder
	c = NewChunk(Coord{}, singles(t, Single{5, 0, 5, Stone}, Single{4, 1, 4, Stone}))
	mesh, err = NewMesher(layers).Build(c, nil)
	require.NoError(t, err)
	top = upFace(t, mesh, [3]float32{4.5, 0.5, 4.5})
	assert.Equal(t, []int32{2, 3, 3, 3}, top)
}

// upFace returns the ambient values of the up face whose first corner is at first.
func upFace(t *testing.T, mesh *Mesh, first [3]float32) []int32 {
	t.Helper()
	for i := 0; i+3 < len(mesh.Vertices); i += 4 {
		if mesh.Vertices[i].Position == first && mesh.Vertices[i].Normal == [3]float32{0, 1, 0} {
			out := make([]int32, 4)
			for k := range 4 {
				out[k] = attribute.Ambient(mesh.Vertices[i+k].TextureAmbient)
			}
			return out
		}
	}
	require.Fail(t, "up face not found")
	return nil
}

func TestMesherMissingTexture(t *testing.T) {
	layers, err := NewTextureLayers([]LayerKey{{Grass, FaceUp}})
	require.NoError(t, err)
	_, err = NewMesher(layers).Build(NewChunk(Coord{}, singles(t, Single{0, 0, 0, Grass})), nil)
	assert.ErrorIs(t, err, ErrNoTexture)
}
