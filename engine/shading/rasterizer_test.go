package shading

import (
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad returns a screen-facing quad at depth z covering [-s, s] in NDC, in UV-table corner order.
func quad(s, z float32, packed uint32) []VertexInput {
	corners := []mgl32.Vec3{{-s, s, z}, {-s, -s, z}, {s, -s, z}, {s, s, z}}
	out := make([]VertexInput, len(corners))
	for i, c := range corners {
		out[i] = VertexInput{Position: c, Normal: mgl32.Vec3{0, 0, 1}, Attribute: packed}
	}
	return out
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

func TestRasterizerTriangle(t *testing.T) {
	r := NewRasterizer(64, 64, WithWorkers(2), WithBandRows(8))
	stats := r.Draw(DrawState{Variant: program.VariantTriangle}, 3, nil)

	assert.Equal(t, 1, stats.Triangles)
	assert.Zero(t, stats.Rejected)
	assert.Greater(t, stats.Fragments, 200)

	assert.Equal(t, color.RGBA{A: 255}, r.Image().RGBAAt(1, 1))
	top := r.Image().RGBAAt(32, 18)
	assert.Greater(t, top.R, top.G)
	assert.Greater(t, top.R, top.B)
	left := r.Image().RGBAAt(18, 47)
	assert.Greater(t, left.G, left.R)
	assert.Greater(t, left.G, left.B)
}

func TestRasterizerBandsQuad(t *testing.T) {
	r := NewRasterizer(64, 64)
	state := DrawState{Variant: program.VariantVoxelBands, ViewProj: mgl32.Ident4(), Texture: solidArray([4]byte{255, 255, 255, 255})}

	stats, err := r.DrawIndexed(state, quad(0.5, 0.5, attribute.Pack(0, 0)), quadIndices)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Triangles)
	// pixels on the shared diagonal may be written by both triangles
	assert.GreaterOrEqual(t, stats.Fragments, 32*32)
	assert.LessOrEqual(t, stats.Fragments, 32*32+32)

	assert.Equal(t, color.RGBA{R: 51, G: 51, B: 77, A: 255}, r.Image().RGBAAt(32, 32))
	assert.InDelta(t, 0.5, r.Depth(32, 32), 1e-6)
	assert.Equal(t, float32(1), r.Depth(2, 2))

	r.Clear()
	_, err = r.DrawIndexed(state, quad(0.5, 0.5, attribute.Pack(0, 3)), quadIndices)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, r.Image().RGBAAt(32, 32))
}

func TestRasterizerTintClampsNegative(t *testing.T) {
	r := NewRasterizer(32, 32, WithClearColour(color.RGBA{R: 9, A: 255}))
	tex := solidArray([4]byte{255, 255, 255, 255}, [4]byte{255, 255, 255, 255}, [4]byte{255, 255, 255, 255})
	state := DrawState{Variant: program.VariantVoxel, ViewProj: mgl32.Ident4(), Texture: tex}

	_, err := r.DrawIndexed(state, quad(0.5, 0.5, 0x0002FFFF), quadIndices)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 255}, r.Image().RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{R: 9, A: 255}, r.Image().RGBAAt(0, 0))
}

func TestRasterizerDepthTest(t *testing.T) {
	tex := solidArray([4]byte{255, 0, 0, 255}, [4]byte{0, 0, 255, 255})
	near := quad(0.5, 0.2, 0)
	far := quad(0.75, 0.8, 1)

	for _, order := range [][][]VertexInput{{near, far}, {far, near}} {
		r := NewRasterizer(64, 64)
		state := DrawState{Variant: program.VariantMesh, ViewProj: mgl32.Ident4(), Texture: tex}
		for _, q := range order {
			_, err := r.DrawIndexed(state, q, quadIndices)
			require.NoError(t, err)
		}
		assert.Equal(t, color.RGBA{R: 255, A: 255}, r.Image().RGBAAt(32, 32))
		assert.Equal(t, color.RGBA{B: 255, A: 255}, r.Image().RGBAAt(10, 32))
	}
}

func TestRasterizerBandsAgree(t *testing.T) {
	tex := gradientArray()
	state := DrawState{
		Variant:  program.VariantVoxel,
		ViewProj: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 10).Mul4(mgl32.Translate3D(0, 0, -2)),
		Texture:  tex,
		Sampler:  Sampler{Filter: FilterLinear},
	}
	verts := quad(0.8, 0, attribute.Pack(0, 2))

	serial := NewRasterizer(48, 48, WithWorkers(1), WithBandRows(48))
	_, err := serial.DrawIndexed(state, verts, quadIndices)
	require.NoError(t, err)

	parallel := NewRasterizer(48, 48, WithWorkers(4), WithBandRows(3))
	_, err = parallel.DrawIndexed(state, verts, quadIndices)
	require.NoError(t, err)

	assert.Equal(t, serial.Image().Pix, parallel.Image().Pix)
}

func TestRasterizerRejectsBehindCamera(t *testing.T) {
	r := NewRasterizer(16, 16)
	verts := quad(0.5, 0.5, 0)
	state := DrawState{Variant: program.VariantMesh, ViewProj: mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	}, Texture: solidArray([4]byte{1, 2, 3, 4})}

	stats, err := r.DrawIndexed(state, verts, quadIndices)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rejected)
	assert.Zero(t, stats.Fragments)
}

func TestRasterizerIndexRange(t *testing.T) {
	r := NewRasterizer(8, 8)
	_, err := r.DrawIndexed(DrawState{Variant: program.VariantMesh, ViewProj: mgl32.Ident4()}, quad(0.5, 0.5, 0), []uint32{0, 1, 4})
	assert.ErrorIs(t, err, ErrIndexRange)
}

func TestNewRasterizerPanicsOnEmptyTarget(t *testing.T) {
	assert.Panics(t, func() { NewRasterizer(0, 10) })
}

func TestRasterizerDrawsAfterClose(t *testing.T) {
	pooled := NewRasterizer(32, 32, WithWorkers(2), WithBandRows(4))
	want := pooled.Draw(DrawState{Variant: program.VariantTriangle}, 3, nil)
	pooled.Close()

	closed := NewRasterizer(32, 32, WithWorkers(2), WithBandRows(4))
	closed.Close()
	closed.Close()
	got := closed.Draw(DrawState{Variant: program.VariantTriangle}, 3, nil)

	assert.Equal(t, want, got)
	assert.Equal(t, pooled.Image().Pix, closed.Image().Pix)
}
