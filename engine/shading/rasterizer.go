package shading

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrIndexRange is returned by DrawIndexed when an index points past the vertex slice.
var ErrIndexRange = errors.New("shading: index out of range")

// maxBandTasks bounds the tasks queued on the pool by one draw; bands are striped over them.
const maxBandTasks = 64

// minClipW rejects triangles touching the camera plane; there is no near-plane clipping.
const minClipW = 1e-5

// DrawState is the pipeline and binding state of one draw.
type DrawState struct {
	Variant  program.Variant
	ViewProj mgl32.Mat4
	Texture  TextureArray
	Sampler  Sampler
}

// Stats counts the work done by one draw.
type Stats struct {
	// Triangles is the number of primitives assembled.
	Triangles int
	// Rejected is the number of primitives dropped for crossing the camera plane or having no area.
	Rejected int
	// Fragments is the number of fragments that passed the depth test.
	Fragments int
}

// Rasterizer renders programs into an RGBA image with a depth buffer.
// Rows are split into bands that are shaded concurrently on a worker pool. Each band owns its
// rows of the colour and depth buffers, so bands share no mutable state.
type Rasterizer struct {
	width, height int
	colour        *image.RGBA
	depth         []float32
	clear         color.RGBA
	bandRows      int

	workers int
	pool    worker.DynamicWorkerPool
	closed  atomic.Bool
}

// NewRasterizer creates a Rasterizer with cleared colour and depth buffers.
//
// Parameters:
//   - width, height: the render target size in pixels
//   - options: optional builder options
//
// Returns:
//   - *Rasterizer: the rasteriser
func NewRasterizer(width, height int, options ...RasterizerBuilderOption) *Rasterizer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("shading: invalid render target size %dx%d", width, height))
	}
	r := &Rasterizer{
		width:    width,
		height:   height,
		colour:   image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:    make([]float32, width*height),
		clear:    color.RGBA{A: 255},
		bandRows: 16,
		workers:  max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(r)
	}
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	r.Clear()
	return r
}

// Close stops the worker pool. Later draws shade their bands on the calling goroutine.
func (r *Rasterizer) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.pool.Stop()
	}
}

// Image returns the colour buffer.
func (r *Rasterizer) Image() *image.RGBA {
	return r.colour
}

// Depth returns the stored depth at a pixel, 1 where nothing was drawn.
func (r *Rasterizer) Depth(x, y int) float32 {
	return r.depth[y*r.width+x]
}

// Clear resets the colour buffer to the clear colour and the depth buffer to 1.
func (r *Rasterizer) Clear() {
	for i := 0; i < len(r.colour.Pix); i += 4 {
		r.colour.Pix[i+0] = r.clear.R
		r.colour.Pix[i+1] = r.clear.G
		r.colour.Pix[i+2] = r.clear.B
		r.colour.Pix[i+3] = r.clear.A
	}
	for i := range r.depth {
		r.depth[i] = 1
	}
}

// Draw runs a non-indexed draw of count vertices; vertex_index runs from 0 to count-1.
// vertices may be shorter than count (or nil) for programs that read no vertex buffer.
//
// Parameters:
//   - state: the draw state
//   - count: the vertex count, consumed in triangles of three
//   - vertices: the vertex records
//
// Returns:
//   - Stats: the draw statistics
func (r *Rasterizer) Draw(state DrawState, count int, vertices []VertexInput) Stats {
	outs := make([]VertexOutput, count)
	for i := range count {
		var in VertexInput
		if i < len(vertices) {
			in = vertices[i]
		}
		in.VertexIndex = uint32(i)
		outs[i] = RunVertex(state.Variant, state.ViewProj, in)
	}
	tris := make([][3]int, 0, count/3)
	for i := 0; i+2 < count; i += 3 {
		tris = append(tris, [3]int{i, i + 1, i + 2})
	}
	return r.rasterize(state, outs, tris)
}

// DrawIndexed runs an indexed draw; vertex_index is the index value, so quad UVs follow the
// vertex buffer order as they do on the GPU.
//
// Parameters:
//   - state: the draw state
//   - vertices: the vertex records
//   - indices: the triangle list indices
//
// Returns:
//   - Stats: the draw statistics
//   - error: ErrIndexRange if an index is out of range
func (r *Rasterizer) DrawIndexed(state DrawState, vertices []VertexInput, indices []uint32) (Stats, error) {
	outs := make([]VertexOutput, len(vertices))
	for i, in := range vertices {
		in.VertexIndex = uint32(i)
		outs[i] = RunVertex(state.Variant, state.ViewProj, in)
	}
	tris := make([][3]int, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var tri [3]int
		for k := range 3 {
			idx := indices[i+k]
			if int(idx) >= len(vertices) {
				return Stats{}, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexRange, idx, i+k, len(vertices))
			}
			tri[k] = int(idx)
		}
		tris = append(tris, tri)
	}
	return r.rasterize(state, outs, tris), nil
}

// screenTriangle is a primitive after the perspective divide and viewport transform.
type screenTriangle struct {
	verts  [3]VertexOutput
	screen [3]mgl32.Vec2
	depth  [3]float32
	minY   int
	maxY   int
	minX   int
	maxX   int
}

func (r *Rasterizer) rasterize(state DrawState, outs []VertexOutput, tris [][3]int) Stats {
	stats := Stats{Triangles: len(tris)}
	prims := make([]screenTriangle, 0, len(tris))
	for _, t := range tris {
		st, ok := r.setup([3]VertexOutput{outs[t[0]], outs[t[1]], outs[t[2]]})
		if !ok {
			stats.Rejected++
			continue
		}
		prims = append(prims, st)
	}
	if len(prims) == 0 {
		return stats
	}

	policy := state.Variant.Policy()
	bands := (r.height + r.bandRows - 1) / r.bandRows
	fragments := make([]int, bands)

	shade := func(band int) {
		y0 := band * r.bandRows
		y1 := min(y0+r.bandRows, r.height)
		fragments[band] = r.shadeRows(y0, y1, prims, policy, state)
	}

	if r.closed.Load() {
		for band := range bands {
			shade(band)
		}
	} else {
		tasks := min(bands, maxBandTasks)
		var wg sync.WaitGroup
		for t := range tasks {
			wg.Add(1)
			first := t
			r.pool.SubmitTask(worker.Task{
				ID: first,
				Do: func() (any, error) {
					defer wg.Done()
					for band := first; band < bands; band += tasks {
						shade(band)
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	for _, n := range fragments {
		stats.Fragments += n
	}
	return stats
}

// setup performs the perspective divide and viewport transform of one primitive.
func (r *Rasterizer) setup(v [3]VertexOutput) (screenTriangle, bool) {
	st := screenTriangle{verts: v}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for i, out := range v {
		w := out.ClipPosition[3]
		if w < minClipW {
			return st, false
		}
		ndc := out.ClipPosition.Vec3().Mul(1 / w)
		x := (ndc[0]*0.5 + 0.5) * float32(r.width)
		y := (0.5 - ndc[1]*0.5) * float32(r.height)
		st.screen[i] = mgl32.Vec2{x, y}
		st.depth[i] = ndc[2]
		minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
	}
	if edge(st.screen[0], st.screen[1], st.screen[2]) == 0 {
		return st, false
	}
	st.minX = max(int(math32.Floor(minX)), 0)
	st.maxX = min(int(math32.Ceil(maxX)), r.width-1)
	st.minY = max(int(math32.Floor(minY)), 0)
	st.maxY = min(int(math32.Ceil(maxY)), r.height-1)
	return st, st.minX <= st.maxX && st.minY <= st.maxY
}

// shadeRows rasterises every primitive over rows [y0, y1) and returns the fragments written.
func (r *Rasterizer) shadeRows(y0, y1 int, prims []screenTriangle, policy program.Policy, state DrawState) int {
	written := 0
	for i := range prims {
		p := &prims[i]
		if p.maxY < y0 || p.minY >= y1 {
			continue
		}
		for y := max(p.minY, y0); y <= min(p.maxY, y1-1); y++ {
			for x := p.minX; x <= p.maxX; x++ {
				centre := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
				b, inside := barycentric(p.screen[0], p.screen[1], p.screen[2], centre)
				if !inside {
					continue
				}
				z := b[0]*p.depth[0] + b[1]*p.depth[1] + b[2]*p.depth[2]
				if z < 0 || z > 1 || z >= r.depth[y*r.width+x] {
					continue
				}
				frag := Interpolate(p.verts, b)
				c := RunFragment(policy, frag, state.Texture, state.Sampler)
				r.depth[y*r.width+x] = z
				r.colour.SetRGBA(x, y, toRGBA(c))
				written++
			}
		}
	}
	return written
}

// toRGBA converts a fragment colour to 8-bit unorm, clamping as a render target does.
func toRGBA(c mgl32.Vec4) color.RGBA {
	conv := func(f float32) uint8 {
		return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: conv(c[0]), G: conv(c[1]), B: conv(c[2]), A: conv(c[3])}
}
