package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "camera", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		}},
		1: {Label: "layers", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		1: {Label: "layers", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		3: {Label: "extra"},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 4)

	assert.Equal(t, "camera", merged[0].Label)
	require.Len(t, merged[1].Entries, 2)
	assert.Equal(t, uint32(0), merged[1].Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[1].Entries[0].Visibility)
	assert.Equal(t, uint32(1), merged[1].Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[1].Entries[1].Visibility)
	assert.Empty(t, merged[2].Entries, "holes get an empty layout")
	assert.Equal(t, "extra", merged[3].Label)

	assert.Empty(t, mergeBindGroupLayouts(nil, nil))
}

func TestMergeProgramLayouts(t *testing.T) {
	tests := []struct {
		variant program.Variant
		groups  int
	}{
		{program.VariantMesh, 2},
		{program.VariantVoxel, 2},
		{program.VariantVoxelBands, 2},
		{program.VariantTriangle, 0},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			prog, err := program.Load(tt.variant)
			require.NoError(t, err)
			merged := mergeBindGroupLayouts(
				prog.VertexShader().BindGroupLayoutDescriptors(),
				prog.FragmentShader().BindGroupLayoutDescriptors(),
			)
			assert.Len(t, merged, tt.groups)
			for g, desc := range merged {
				assert.NotEmpty(t, desc.Entries, "group %d", g)
			}
		})
	}
}

func TestParseMSAA(t *testing.T) {
	for _, n := range []uint32{1, 4} {
		got, err := ParseMSAA(n)
		require.NoError(t, err)
		assert.Equal(t, MSAASampleCount(n), got)
	}
	_, err := ParseMSAA(8)
	assert.Error(t, err)
}

func TestPresentMode(t *testing.T) {
	assert.Equal(t, PresentModeVSync, PresentModeFor(true))
	assert.Equal(t, PresentModeUncapped, PresentModeFor(false))
	assert.Equal(t, wgpu.PresentModeFifo, wgpuPresentMode(PresentModeVSync))
	assert.Equal(t, wgpu.PresentModeImmediate, wgpuPresentMode(PresentModeUncapped))
}

func TestBindGroupLayouts(t *testing.T) {
	progs, err := program.LoadAll()
	require.NoError(t, err)

	voxelLayouts := BindGroupLayouts(pipeline.FromProgram(progs[program.VariantVoxel]))
	require.Len(t, voxelLayouts, 2)
	assert.Len(t, voxelLayouts[1].Entries, 2)

	assert.Empty(t, BindGroupLayouts(pipeline.FromProgram(progs[program.VariantTriangle])))
	assert.Nil(t, BindGroupLayouts(pipeline.NewPipeline("bare")), "no shaders")
}
