package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/ir"
)

// ShaderType identifies which render stage a shader object describes.
// Programs keep both stages in one WGSL source, so the same source is parsed once per stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	stageOutputs               []StageVariable
	stageInputs                []StageVariable
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor
	lowered                    *ir.Module

	pp PreProcessor
}

// Shader defines the interface for a pre-processed and lowered WGSL shader stage. It exposes
// the stage's key, source, entry point, bind group layout descriptors, vertex buffer layouts,
// inter-stage outputs and the pre-processor declarations needed for resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - bindingKey: the group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames retrieves all variable names keyed by group and binding index.
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout retrieves the vertex buffer layout for a specific key.
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts. Empty for fragment shaders and for
	// vertex shaders that take no vertex buffer.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// StageOutputs returns the user-defined outputs of the vertex stage in location order,
	// including the interpolation qualifier of each. Nil for fragment shaders.
	StageOutputs() []StageVariable

	// StageInputs returns the location-bound inputs of the fragment stage in location order.
	// Nil for vertex shaders.
	StageInputs() []StageVariable

	// IR returns the naga module lowered from the pre-processed source.
	IR() *ir.Module

	// EntryPoint returns the entry point name for this stage (e.g. "vs_main").
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor built from the pre-processed source.
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage this shader describes.
	ShaderType() ShaderType

	// Declarations returns the bind group and provider annotations parsed from the source.
	// The Scene uses them to match bind groups to resource providers.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShaderFromSource creates a new Shader from in-memory WGSL source, usually an embedded asset.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage to parse the source as
//   - source: the raw WGSL source, annotations included
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if pre-processing fails or the source has no entry point for the stage
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) StageOutputs() []StageVariable {
	return s.stageOutputs
}

func (s *shader) StageInputs() []StageVariable {
	return s.stageInputs
}

func (s *shader) IR() *ir.Module {
	return s.lowered
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[bindingKey]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource pre-processes the WGSL source, builds the shader module descriptor and lowers the
// source with naga. The entry point, vertex buffer layouts, inter-stage variables and bind group
// layouts are all read from the lowered module.
func (s *shader) parseSource(raw string) error {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("shader: failed to pre-process %s: %w", s.key, err)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	if s.lowered, err = lower(s.key, s.source); err != nil {
		return err
	}
	r, err := reflectStage(s.lowered, s.shaderType)
	if err != nil {
		return fmt.Errorf("shader: %s: %w", s.key, err)
	}
	s.entryPoint = r.entryPoint
	s.vertexLayouts = r.vertex
	s.stageOutputs = r.stageOutputs
	s.stageInputs = r.stageInputs
	s.bindGroupLayoutDescriptors = r.groups
	s.bindingVarNames = r.varNames
	return nil
}
