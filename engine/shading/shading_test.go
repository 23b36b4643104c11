package shading

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidArray(layers ...[4]byte) *ImageArray {
	data := &common.TextureArrayStagingData{Width: 1, Height: 1}
	for _, l := range layers {
		data.Layers = append(data.Layers, []byte{l[0], l[1], l[2], l[3]})
	}
	return NewImageArray(data)
}

// gradientArray is a 2x1 layer, black on the left and white on the right.
func gradientArray() *ImageArray {
	return NewImageArray(&common.TextureArrayStagingData{
		Width:  2,
		Height: 1,
		Layers: [][]byte{{0, 0, 0, 255, 255, 255, 255, 255}},
	})
}

func assertVec4(t *testing.T, expected, actual mgl32.Vec4) {
	t.Helper()
	for i := range 4 {
		assert.InDelta(t, expected[i], actual[i], 1e-5, "component %d of %v", i, actual)
	}
}

func TestQuadUVRepeats(t *testing.T) {
	for i := uint32(0); i < 12; i++ {
		assert.Equal(t, UVTable[i%4], QuadUV(i), "vertex %d", i)
	}
	assert.Equal(t, mgl32.Vec2{0, 0}, QuadUV(0))
	assert.Equal(t, mgl32.Vec2{0, 1}, QuadUV(1))
	assert.Equal(t, mgl32.Vec2{1, 1}, QuadUV(2))
	assert.Equal(t, mgl32.Vec2{1, 0}, QuadUV(3))
}

func TestRunVertexPackedScenario(t *testing.T) {
	in := VertexInput{VertexIndex: 6, Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, Attribute: 0x0002FFFF}

	out := RunVertex(program.VariantVoxel, mgl32.Ident4(), in)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, out.ClipPosition)
	assert.Equal(t, mgl32.Vec2{1, 1}, out.UV)
	assert.Equal(t, uint32(2), out.TextureIndex)
	assert.InDelta(t, -0.333333, out.Ambient, 1e-5)

	bands := RunVertex(program.VariantVoxelBands, mgl32.Ident4(), in)
	assert.Equal(t, uint32(2), bands.TextureIndex)
	assert.Equal(t, uint32(0xFFFFFFFF), bands.AmbientCode)
}

func TestRunVertexAppliesViewProjection(t *testing.T) {
	viewProj := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	out := RunVertex(program.VariantMesh, viewProj, VertexInput{Position: mgl32.Vec3{1, 1, 1}, Attribute: 5})
	assert.Equal(t, mgl32.Vec4{3, 2, 2, 1}, out.ClipPosition)
}

func TestRunVertexIndexedPassesThrough(t *testing.T) {
	out := RunVertex(program.VariantMesh, mgl32.Ident4(), VertexInput{Attribute: 0x0002FFFF})
	assert.Equal(t, uint32(0x0002FFFF), out.TextureIndex)
	assert.Zero(t, out.Ambient)
	assert.Zero(t, out.AmbientCode)
}

func TestRunVertexTriangle(t *testing.T) {
	top := RunVertex(program.VariantTriangle, mgl32.Mat4{}, VertexInput{VertexIndex: 0})
	assert.Equal(t, mgl32.Vec4{0, 0.5, 0, 1}, top.ClipPosition)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, top.Colour)

	right := RunVertex(program.VariantTriangle, mgl32.Mat4{}, VertexInput{VertexIndex: 2})
	assert.Equal(t, mgl32.Vec4{0.5, -0.5, 0, 1}, right.ClipPosition)
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, right.Colour)

	past := RunVertex(program.VariantTriangle, mgl32.Mat4{}, VertexInput{VertexIndex: 9})
	assert.Equal(t, right, past)
}

func TestBandColour(t *testing.T) {
	tests := []struct {
		code     uint32
		expected mgl32.Vec4
		hit      bool
	}{
		{0, mgl32.Vec4{0.2, 0.2, 0.3, 1.0}, true},
		{1, mgl32.Vec4{0.4, 0.6, 0.5, 1.0}, true},
		{2, mgl32.Vec4{0.6, 0.7, 0.6, 1.0}, true},
		{3, mgl32.Vec4{}, false},
		{65535, mgl32.Vec4{}, false},
		{0xFFFFFFFF, mgl32.Vec4{}, false},
	}
	for _, tt := range tests {
		c, ok := BandColour(tt.code)
		assert.Equal(t, tt.hit, ok, "code %d", tt.code)
		assert.Equal(t, tt.expected, c, "code %d", tt.code)
	}
}

func TestRunFragmentBandsFallBackToSampling(t *testing.T) {
	tex := solidArray([4]byte{255, 0, 255, 255})
	texel := mgl32.Vec4{1, 0, 1, 1}

	for _, code := range []uint32{0, 1, 2} {
		band, _ := BandColour(code)
		assert.Equal(t, band, RunFragment(program.PolicyBands, VertexOutput{AmbientCode: code}, tex, Sampler{}))
	}
	for _, code := range []uint32{3, 4, 1000, attribute.Decode(0x0002FFFF).AmbientCode()} {
		assert.Equal(t, texel, RunFragment(program.PolicyBands, VertexOutput{AmbientCode: code}, tex, Sampler{}), "code %d", code)
	}
}

func TestRunFragmentTintScenario(t *testing.T) {
	tex := solidArray([4]byte{0, 0, 0, 255}, [4]byte{0, 0, 0, 255}, [4]byte{153, 51, 255, 255})
	in := RunVertex(program.VariantVoxel, mgl32.Ident4(), VertexInput{Attribute: 0x0002FFFF})

	c := RunFragment(program.PolicyTint, in, tex, Sampler{})
	assertVec4(t, mgl32.Vec4{-0.2, -0.2 / 3, -1.0 / 3, 1}, c)
}

func TestRunFragmentSampleAndColour(t *testing.T) {
	tex := solidArray([4]byte{255, 0, 0, 255}, [4]byte{0, 255, 0, 255})
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, RunFragment(program.PolicySample, VertexOutput{TextureIndex: 1}, tex, Sampler{}))

	// past the last layer clamps
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, RunFragment(program.PolicySample, VertexOutput{TextureIndex: 0x0002FFFF}, tex, Sampler{}))

	colour := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	assert.Equal(t, colour, RunFragment(program.PolicyVertexColour, VertexOutput{Colour: colour}, nil, Sampler{}))
}

func TestSampleFilters(t *testing.T) {
	tex := gradientArray()
	grey := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	black := mgl32.Vec4{0, 0, 0, 1}
	white := mgl32.Vec4{1, 1, 1, 1}

	tests := []struct {
		name     string
		sampler  Sampler
		uv       mgl32.Vec2
		expected mgl32.Vec4
	}{
		{"nearest left", Sampler{FilterNearest, AddressRepeat}, mgl32.Vec2{0.25, 0.5}, black},
		{"nearest right", Sampler{FilterNearest, AddressRepeat}, mgl32.Vec2{0.75, 0.5}, white},
		{"nearest repeat wraps", Sampler{FilterNearest, AddressRepeat}, mgl32.Vec2{1.25, 0.5}, black},
		{"nearest clamp holds edge", Sampler{FilterNearest, AddressClampToEdge}, mgl32.Vec2{1.25, 0.5}, white},
		{"linear centre", Sampler{FilterLinear, AddressClampToEdge}, mgl32.Vec2{0.5, 0.5}, grey},
		{"linear texel centre", Sampler{FilterLinear, AddressClampToEdge}, mgl32.Vec2{0.25, 0.5}, black},
		{"linear repeat blends across edge", Sampler{FilterLinear, AddressRepeat}, mgl32.Vec2{0, 0.5}, grey},
		{"linear clamp stays at edge", Sampler{FilterLinear, AddressClampToEdge}, mgl32.Vec2{0, 0.5}, black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec4(t, tt.expected, Sample(tex, tt.sampler, tt.uv, 0))
		})
	}
}

func TestSampleWithoutTexture(t *testing.T) {
	assert.Equal(t, mgl32.Vec4{}, Sample(nil, Sampler{}, mgl32.Vec2{}, 0))
}

func TestSamplerStagingData(t *testing.T) {
	sd := Sampler{Filter: FilterLinear, Address: AddressClampToEdge}.StagingData()
	assert.Equal(t, sd.AddressModeU, sd.AddressModeV)
	assert.NotEqual(t, Sampler{}.StagingData().MagFilter, sd.MagFilter)
}

func TestInterpolateFlatFromProvokingVertex(t *testing.T) {
	v := [3]VertexOutput{
		{ClipPosition: mgl32.Vec4{0, 0, 0, 1}, TextureIndex: 4, AmbientCode: 1, Ambient: 0},
		{ClipPosition: mgl32.Vec4{1, 0, 0, 1}, TextureIndex: 9, AmbientCode: 2, Ambient: 1},
		{ClipPosition: mgl32.Vec4{0, 1, 0, 1}, TextureIndex: 9, AmbientCode: 2, Ambient: 1},
	}
	out := Interpolate(v, [3]float32{0.1, 0.45, 0.45})
	assert.Equal(t, uint32(4), out.TextureIndex)
	assert.Equal(t, uint32(1), out.AmbientCode)
	assert.InDelta(t, 0.9, out.Ambient, 1e-6)
}

func TestInterpolatePerspectiveCorrect(t *testing.T) {
	// the far vertex (w=3) pulls less weight than its screen-space share
	v := [3]VertexOutput{
		{ClipPosition: mgl32.Vec4{0, 0, 0, 1}, UV: mgl32.Vec2{0, 0}},
		{ClipPosition: mgl32.Vec4{0, 0, 0, 3}, UV: mgl32.Vec2{1, 0}},
		{ClipPosition: mgl32.Vec4{0, 0, 0, 1}, UV: mgl32.Vec2{0, 0}},
	}
	out := Interpolate(v, [3]float32{0.25, 0.5, 0.25})
	// weights 0.25, 0.5/3, 0.25 normalised
	assert.InDelta(t, (0.5/3)/(0.5+0.5/3), out.UV[0], 1e-6)
}

func TestOutputInterpolationMatchesPrograms(t *testing.T) {
	programs, err := program.LoadAll()
	require.NoError(t, err)
	for v, p := range programs {
		for _, sv := range p.Interface() {
			got, ok := OutputInterpolation(sv.Name)
			require.True(t, ok, "%s: %s", v, sv.Name)
			assert.Equal(t, sv.Interpolation, got, "%s: %s", v, sv.Name)
		}
	}
}
