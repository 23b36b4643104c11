package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgram = `//@oxy:include camera
//@oxy:include packed_vertex
//@oxy:group 0 0 storage_uniform camera camera

//@oxy:provider 1 0 texture_array layer_texture
@group(1) @binding(0) var t_layers: texture_2d_array<f32>;
//@oxy:provider 1 1 texture_array layer_sampler
@group(1) @binding(1) var s_layers: sampler;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(1) @interpolate(flat) texture_index: u32,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(vert: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_proj * vec4<f32>(vert.position, 1.0);
    out.uv = vec2<f32>(0.0, 0.0);
    out.texture_index = vert.texture_ambient >> 16u;
    return out;
}

@fragment
fn fs_main(frag: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_layers, s_layers, frag.uv, frag.texture_index);
}
`

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testProgram)
	require.NoError(t, err)

	assert.Contains(t, out, "struct CameraUniform")
	assert.Contains(t, out, "struct VertexInput")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationArgCamera, decls[0].Identity())
	assert.Equal(t, AnnotationArgTextureArray, decls[1].Identity())
	assert.Equal(t, AnnotationArgLayerTexture, decls[1].Role())
	assert.Equal(t, AnnotationArgLayerSampler, decls[2].Role())
	assert.Equal(t, 1, *decls[2].Group)
	assert.Equal(t, 1, *decls[2].Binding)
}

func TestPreProcessorResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process(testProgram)
	require.NoError(t, err)
	_, err = pp.Process("struct A { x: f32, };")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown include", "//@oxy:include lights"},
		{"include arity", "//@oxy:include camera extra"},
		{"duplicate vertex record", "//@oxy:include packed_vertex\n//@oxy:include indexed_vertex"},
		{"unknown address space", "//@oxy:group 0 0 storage_write camera camera"},
		{"negative binding", "//@oxy:group 0 -1 storage_uniform camera camera"},
		{"unknown provider", "//@oxy:provider 1 0 shadow_map"},
		{"unknown role", "//@oxy:provider 1 0 texture_array normal_map"},
		{"unknown annotation", "//@oxy:compute 64"},
		{"empty annotation", "//@oxy:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestShaderReflection(t *testing.T) {
	vs, err := NewShaderFromSource("test_vs", ShaderTypeVertex, testProgram)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())
	assert.Equal(t, "test_vs", vs.Module().Label)

	layouts := vs.VertexLayout(0)
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(28), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatUint32, layouts[0].Attributes[2].Format)

	outs := vs.StageOutputs()
	require.Len(t, outs, 2)
	assert.Equal(t, "uv", outs[0].Name)
	assert.False(t, outs[0].Flat())
	assert.Equal(t, "texture_index", outs[1].Name)
	assert.Equal(t, 1, outs[1].Location)
	assert.True(t, outs[1].Flat())

	binding, ok := vs.BindGroupFromVarName(1, "s_layers")
	require.True(t, ok)
	assert.Equal(t, 1, binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, vs.BindGroupLayoutDescriptor(0).Entries[0].Visibility)

	camera := vs.BindGroupLayoutDescriptor(0).Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, camera.Buffer.Type)
	assert.Equal(t, uint64(64), camera.Buffer.MinBindingSize)
	layers := vs.BindGroupLayoutDescriptor(1).Entries
	require.Len(t, layers, 2)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, layers[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, layers[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, layers[1].Sampler.Type)
	assert.Empty(t, vs.StageInputs())
	require.NotNil(t, vs.IR())

	fs, err := NewShaderFromSource("test_fs", ShaderTypeFragment, testProgram)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Empty(t, fs.StageOutputs())
	assert.Empty(t, fs.VertexLayouts())

	ins := fs.StageInputs()
	require.Len(t, ins, 2)
	assert.Equal(t, "uv", ins[0].Name)
	assert.Equal(t, "vec2<f32>", ins[0].Type)
	assert.Equal(t, "texture_index", ins[1].Name)
	assert.Equal(t, "u32", ins[1].Type)
	assert.True(t, ins[1].Flat())
}

func TestShaderRejectsInvalidSource(t *testing.T) {
	src := strings.Replace(testProgram, "return out;", "return undefined_value;", 1)
	_, err := NewShaderFromSource("test_vs", ShaderTypeVertex, src)
	assert.Error(t, err)
}

func TestShaderMissingEntryPoint(t *testing.T) {
	src := strings.Replace(testProgram, "@fragment", "", 1)
	_, err := NewShaderFromSource("test_fs", ShaderTypeFragment, src)
	assert.Error(t, err)
}

func TestShaderTypeString(t *testing.T) {
	assert.Equal(t, "vertex", ShaderTypeVertex.String())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
}
