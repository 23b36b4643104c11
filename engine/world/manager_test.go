package world

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatManager(t *testing.T, options ...ManagerBuilderOption) *Manager {
	t.Helper()
	p, err := voxel.NewFlatFillPopulator(3, voxel.Dirt)
	require.NoError(t, err)
	return NewManager(p, voxel.NewMesher(voxel.DefaultTextureLayers()), options...)
}

func TestCoordAt(t *testing.T) {
	assert.Equal(t, voxel.Coord{X: -1, Z: 1}, CoordAt(mgl32.Vec3{-0.6, 0, 15.6}))
	assert.Equal(t, voxel.Coord{X: 0, Z: 0}, CoordAt(mgl32.Vec3{-0.4, 100, 15.4}))
}

func TestUpdateLoadsAndMeshes(t *testing.T) {
	// progress calls are serialised, so the slice needs no lock of its own
	var totals []int
	m := flatManager(t, WithLoadRadius(1), WithWorkers(3), WithProgress(func(done, total int) {
		assert.Equal(t, 1, done)
		totals = append(totals, total)
	}))
	defer m.Close()
	assert.Equal(t, 1, m.Radius())

	built, err := m.Update(mgl32.Vec3{8, 40, 8})
	require.NoError(t, err)
	assert.Equal(t, 9, built)
	assert.Equal(t, 25, m.ChunksLoaded())
	assert.Equal(t, 9, m.MeshesLoaded())
	assert.Equal(t, []int{9, 9, 9, 9, 9, 9, 9, 9, 9}, totals)

	totals = nil
	built, err = m.Update(mgl32.Vec3{9, 40, 9})
	require.NoError(t, err)
	assert.Zero(t, built)
	assert.Empty(t, totals, "nothing to mesh reports no progress")

	// moving one chunk over meshes a new column of three
	built, err = m.Update(mgl32.Vec3{24, 40, 8})
	require.NoError(t, err)
	assert.Equal(t, 3, built)
	assert.Equal(t, 30, m.ChunksLoaded())
	assert.Equal(t, []int{3, 3, 3}, totals)
}

func TestClose(t *testing.T) {
	m := flatManager(t, WithLoadRadius(0))
	_, err := m.Update(mgl32.Vec3{})
	require.NoError(t, err)

	m.Close()
	m.Close()
	_, err = m.Update(mgl32.Vec3{40, 0, 40})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, m.MeshesLoaded(), "built meshes stay readable")
	assert.True(t, m.Solid(0, 0, 0))
}

func TestMeshesCullAcrossChunkBorders(t *testing.T) {
	m := flatManager(t, WithLoadRadius(1))
	_, err := m.Update(mgl32.Vec3{})
	require.NoError(t, err)

	meshes := m.Meshes()
	require.Len(t, meshes, 9)
	assert.Equal(t, voxel.Coord{X: -1, Z: -1}, meshes[0].Coord)
	for _, mesh := range meshes {
		// top and bottom only, every wall borders a loaded solid neighbour
		assert.Equal(t, 2*voxel.ChunkWidth*voxel.ChunkWidth, mesh.Faces(), "chunk %s", mesh.Coord)
	}
}

func TestResolveUploads(t *testing.T) {
	m := flatManager(t, WithLoadRadius(1))
	_, err := m.Update(mgl32.Vec3{})
	require.NoError(t, err)

	state, ok := m.MeshState(voxel.Coord{})
	require.True(t, ok)
	assert.Equal(t, MeshPending, state)
	_, ok = m.MeshState(voxel.Coord{X: 5})
	assert.False(t, ok)

	failing := errors.New("device lost")
	n, err := m.ResolveUploads(func(mesh *voxel.Mesh) error {
		if mesh.Coord == (voxel.Coord{}) {
			return failing
		}
		return nil
	})
	assert.ErrorIs(t, err, failing)
	assert.Equal(t, 8, n)
	state, _ = m.MeshState(voxel.Coord{})
	assert.Equal(t, MeshPending, state)
	state, _ = m.MeshState(voxel.Coord{X: 1})
	assert.Equal(t, MeshUploaded, state)

	n, err = m.ResolveUploads(func(*voxel.Mesh) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.ResolveUploads(func(*voxel.Mesh) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSolid(t *testing.T) {
	m := flatManager(t, WithLoadRadius(0))
	_, err := m.Update(mgl32.Vec3{})
	require.NoError(t, err)

	assert.True(t, m.Solid(5, 2, -3))
	assert.False(t, m.Solid(5, 3, -3))
	assert.False(t, m.Solid(1000, 0, 0), "unloaded chunks are air")
	assert.False(t, m.Solid(0, -1, 0))

	c, ok := m.Chunk(voxel.Coord{X: -1, Z: 1})
	require.True(t, ok)
	assert.Equal(t, voxel.Dirt, c.Get(0, 0, 0))
}

func TestUpdateReportsMesherErrors(t *testing.T) {
	p, err := voxel.NewFlatFillPopulator(1, voxel.Stone)
	require.NoError(t, err)
	layers, err := voxel.NewTextureLayers([]voxel.LayerKey{{Voxel: voxel.Grass, Face: voxel.FaceUp}})
	require.NoError(t, err)

	m := NewManager(p, voxel.NewMesher(layers), WithLoadRadius(0))
	_, err = m.Update(mgl32.Vec3{})
	assert.ErrorIs(t, err, voxel.ErrNoTexture)
	assert.Zero(t, m.MeshesLoaded())
}

func TestBounds(t *testing.T) {
	m := flatManager(t)
	assert.Equal(t, voxel.Coord{X: 2, Z: -3}.Bounds(), m.Bounds(voxel.Coord{X: 2, Z: -3}))
	assert.Equal(t, DefaultLoadRadius, m.Radius())
}

func TestMeshStateString(t *testing.T) {
	assert.Equal(t, "pending", MeshPending.String())
	assert.Equal(t, "uploaded", MeshUploaded.String())
}
