// Package world manages the chunks around the viewer: it populates them, meshes them on a worker
// pool and tracks which meshes still have to be uploaded to the GPU.
package world

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrClosed is returned by Update once the manager has been closed.
var ErrClosed = errors.New("world: manager closed")

// DefaultLoadRadius is the chunk radius meshed around the viewer.
const DefaultLoadRadius = 4

// maxTasks bounds the tasks queued on the pool by one Update phase.
const maxTasks = 64

// MeshState is the upload state of a built chunk mesh.
type MeshState int

const (
	// MeshPending is built on the CPU and not yet handed to the uploader.
	MeshPending MeshState = iota
	// MeshUploaded has been handed to the uploader successfully.
	MeshUploaded
)

func (s MeshState) String() string {
	switch s {
	case MeshPending:
		return "pending"
	case MeshUploaded:
		return "uploaded"
	default:
		return fmt.Sprintf("mesh_state(%d)", int(s))
	}
}

// Uploader receives a pending mesh, typically to create its GPU buffers.
type Uploader func(mesh *voxel.Mesh) error

type meshEntry struct {
	state MeshState
	mesh  *voxel.Mesh
}

// Manager owns the loaded chunks and their meshes.
type Manager struct {
	mu     sync.RWMutex
	chunks map[voxel.Coord]*voxel.Chunk
	meshes map[voxel.Coord]*meshEntry

	populator voxel.Populator
	mesher    *voxel.Mesher
	radius    int

	workers int
	pool    worker.DynamicWorkerPool
	closed  atomic.Bool

	progressMu sync.Mutex
	progress   func(done, total int)
}

var _ voxel.Neighbourhood = (*Manager)(nil)

// NewManager creates a chunk manager.
//
// Parameters:
//   - populator: fills every newly loaded chunk
//   - mesher: builds chunk meshes
//   - options: optional builder options
//
// Returns:
//   - *Manager: the manager
func NewManager(populator voxel.Populator, mesher *voxel.Mesher, options ...ManagerBuilderOption) *Manager {
	if populator == nil || mesher == nil {
		panic("world: manager needs a populator and a mesher")
	}
	m := &Manager{
		chunks:    make(map[voxel.Coord]*voxel.Chunk),
		meshes:    make(map[voxel.Coord]*meshEntry),
		populator: populator,
		mesher:    mesher,
		radius:    DefaultLoadRadius,
		workers:   max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(m)
	}
	m.pool = worker.NewDynamicWorkerPool(m.workers, 256, 1*time.Second)
	return m
}

// Radius returns the mesh radius in chunks.
func (m *Manager) Radius() int {
	return m.radius
}

// CoordAt returns the chunk containing a world-space position. Voxels are centred on integers.
func CoordAt(position mgl32.Vec3) voxel.Coord {
	return voxel.CoordOf(int(math32.Floor(position[0]+0.5)), int(math32.Floor(position[2]+0.5)))
}

// Update loads the chunks around a position and meshes the ones within the radius that have no mesh.
// Chunks one ring past the radius are loaded but not meshed so border faces are culled against
// real neighbours.
//
// Parameters:
//   - position: the viewer position in world space
//
// Returns:
//   - int: the number of meshes built
//   - error: the first mesher error, or ErrClosed after Close
func (m *Manager) Update(position mgl32.Vec3) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	centre := CoordAt(position)

	var missing []voxel.Coord
	m.mu.RLock()
	for _, c := range chunksAround(centre, m.radius+1) {
		if _, ok := m.chunks[c]; !ok {
			missing = append(missing, c)
		}
	}
	m.mu.RUnlock()

	loaded := make([]*voxel.Chunk, len(missing))
	_ = m.parallel(len(missing), func(i int) error {
		loaded[i] = voxel.NewChunk(missing[i], m.populator)
		return nil
	})

	m.mu.Lock()
	for _, c := range loaded {
		m.chunks[c.Coord()] = c
	}
	var toMesh []*voxel.Chunk
	for _, c := range chunksAround(centre, m.radius) {
		if _, ok := m.meshes[c]; !ok {
			toMesh = append(toMesh, m.chunks[c])
		}
	}
	m.mu.Unlock()

	if len(toMesh) > 0 {
		common.Logger().Debug("meshing chunks", "centre", centre.String(), "loaded", len(loaded), "meshing", len(toMesh))
	}

	built := make([]*voxel.Mesh, len(toMesh))
	err := m.parallel(len(toMesh), func(i int) error {
		mesh, err := m.mesher.Build(toMesh[i], m)
		if err != nil {
			return fmt.Errorf("world: mesh chunk %s: %w", toMesh[i].Coord(), err)
		}
		built[i] = mesh
		m.report(len(toMesh))
		return nil
	})

	m.mu.Lock()
	count := 0
	for _, mesh := range built {
		if mesh == nil {
			continue
		}
		m.meshes[mesh.Coord] = &meshEntry{state: MeshPending, mesh: mesh}
		count++
	}
	m.mu.Unlock()
	return count, err
}

// Close stops the worker pool. Loaded chunks and meshes stay readable; Update fails with ErrClosed.
// Closing twice is a no-op.
func (m *Manager) Close() {
	if m.closed.CompareAndSwap(false, true) {
		m.pool.Stop()
	}
}

// parallel runs fn for 0..n-1 on the worker pool and waits for all of them. Indices are striped
// over at most maxTasks tasks so the pool queue never fills. Every call writes only its own slot,
// so the callers' result slices need no locking.
func (m *Manager) parallel(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	errs := make([]error, n)
	tasks := min(n, maxTasks)
	var wg sync.WaitGroup
	for t := range tasks {
		wg.Add(1)
		first := t
		m.pool.SubmitTask(worker.Task{
			ID: first,
			Do: func() (any, error) {
				defer wg.Done()
				for i := first; i < n; i += tasks {
					errs[i] = fn(i)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) report(total int) {
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	if m.progress != nil {
		m.progress(1, total)
	}
}

// ResolveUploads hands every pending mesh to the uploader and marks it uploaded.
// A mesh whose upload fails stays pending and the first error is returned after the rest are tried.
//
// Parameters:
//   - upload: the uploader
//
// Returns:
//   - int: the number of meshes uploaded
//   - error: the first upload error
func (m *Manager) ResolveUploads(upload Uploader) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	n := 0
	for _, coord := range sortedCoords(m.meshes) {
		e := m.meshes[coord]
		if e.state != MeshPending {
			continue
		}
		if err := upload(e.mesh); err != nil {
			if first == nil {
				first = fmt.Errorf("world: upload chunk %s: %w", coord, err)
			}
			continue
		}
		e.state = MeshUploaded
		n++
	}
	return n, first
}

// Solid reports whether a world voxel is solid. Voxels in chunks that are not loaded count as air.
func (m *Manager) Solid(worldX, worldY, worldZ int) bool {
	coord, x, y, z := voxel.LocalPosition(worldX, worldY, worldZ)
	m.mu.RLock()
	c, ok := m.chunks[coord]
	m.mu.RUnlock()
	return ok && c.Solid(x, y, z)
}

// Chunk returns a loaded chunk.
func (m *Manager) Chunk(coord voxel.Coord) (*voxel.Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[coord]
	return c, ok
}

// MeshState returns the state of a chunk's mesh, false when it has not been built.
func (m *Manager) MeshState(coord voxel.Coord) (MeshState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.meshes[coord]
	if !ok {
		return MeshPending, false
	}
	return e.state, true
}

// Meshes returns every built mesh ordered by coordinate.
func (m *Manager) Meshes() []*voxel.Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*voxel.Mesh, 0, len(m.meshes))
	for _, c := range sortedCoords(m.meshes) {
		out = append(out, m.meshes[c].mesh)
	}
	return out
}

// ChunksLoaded returns the number of loaded chunks.
func (m *Manager) ChunksLoaded() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// MeshesLoaded returns the number of built meshes, pending or uploaded.
func (m *Manager) MeshesLoaded() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meshes)
}

// Bounds returns the world-space box of a chunk for frustum culling.
func (m *Manager) Bounds(coord voxel.Coord) common.AABB {
	return coord.Bounds()
}

// chunksAround lists the square of chunks within radius of a centre, row by row.
func chunksAround(centre voxel.Coord, radius int) []voxel.Coord {
	out := make([]voxel.Coord, 0, (2*radius+1)*(2*radius+1))
	for x := -radius; x <= radius; x++ {
		for z := -radius; z <= radius; z++ {
			out = append(out, voxel.Coord{X: centre.X + x, Z: centre.Z + z})
		}
	}
	return out
}

func sortedCoords(meshes map[voxel.Coord]*meshEntry) []voxel.Coord {
	coords := make([]voxel.Coord, 0, len(meshes))
	for c := range meshes {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b voxel.Coord) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Z - b.Z
	})
	return coords
}
