package program

import (
	"embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

//go:embed assets/*.wgsl
var assets embed.FS

// ErrInterpolatedIndex is returned when a vertex output that selects a texture layer or an
// ambient band is not declared flat. Interpolating it would pick in-between layers or bands.
var ErrInterpolatedIndex = errors.New("program: index output must use flat interpolation")

// ErrInterfaceMismatch is returned when a fragment input has no vertex output at its location or
// the two disagree on name or interpolation.
var ErrInterfaceMismatch = errors.New("program: fragment input does not match the vertex outputs")

// flatOutputs lists, per variant, the vertex outputs that must not be interpolated.
var flatOutputs = map[Variant][]string{
	VariantMesh:       {"texture_index"},
	VariantVoxel:      {"texture_index"},
	VariantVoxelBands: {"texture_index", "ambient_code"},
}

// program is the implementation of the Program interface.
type program struct {
	variant  Variant
	vertex   shader.Shader
	fragment shader.Shader
	spirv    []byte
	iface    []StageVariable
	issues   []string
}

// Program is a loaded shader program: one WGSL source holding a vertex and a fragment entry point.
type Program interface {
	// Variant returns which program this is.
	Variant() Variant

	// Source returns the pre-processed WGSL source shared by both stages.
	Source() string

	// VertexShader returns the vertex stage, including its vertex buffer layouts.
	VertexShader() shader.Shader

	// FragmentShader returns the fragment stage.
	FragmentShader() shader.Shader

	// SPIRV returns the SPIR-V binary naga produced for the program.
	SPIRV() []byte

	// Interface returns the user-defined vertex outputs as naga lowered them, in location order.
	Interface() []StageVariable

	// Issues returns the messages of any naga IR validation findings. They are reported but do not
	// fail the load; the GPU driver's own compiler is the final authority.
	Issues() []string
}

var _ Program = &program{}

// RawSource returns the annotated WGSL source of a variant before pre-processing.
//
// Parameters:
//   - v: the program variant
//
// Returns:
//   - string: the WGSL source
//   - error: ErrUnknownVariant if there is no asset for v
func RawSource(v Variant) (string, error) {
	if _, ok := variantNames[v]; !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	data, err := assets.ReadFile("assets/" + v.String() + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("program: read %s: %w", v, err)
	}
	return string(data), nil
}

// Load pre-processes, compiles and reflects one program.
//
// Parameters:
//   - v: the program variant
//
// Returns:
//   - Program: the loaded program
//   - error: error if the source fails to pre-process, parse or lower, or if an index output is not flat
func Load(v Variant) (Program, error) {
	raw, err := RawSource(v)
	if err != nil {
		return nil, err
	}
	return LoadSource(v, raw)
}

// LoadSource is Load for caller-supplied WGSL, used when watching shader files on disk.
// The source must keep the entry point names and outputs of the variant it replaces.
//
// Parameters:
//   - v: the variant the source implements
//   - raw: the annotated WGSL source
//
// Returns:
//   - Program: the loaded program
//   - error: error if compilation or interface checks fail
func LoadSource(v Variant, raw string) (Program, error) {
	vs, err := shader.NewShaderFromSource(v.String()+"_vs", shader.ShaderTypeVertex, raw)
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShaderFromSource(v.String()+"_fs", shader.ShaderTypeFragment, raw)
	if err != nil {
		return nil, err
	}

	module := vs.IR()
	p := &program{variant: v, vertex: vs, fragment: fs}

	findings, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("program: validate %s: %w", v, err)
	}
	for _, f := range findings {
		p.issues = append(p.issues, f.Error())
	}
	if len(p.issues) > 0 {
		common.Logger().Debug("naga validation findings", "program", v.String(), "count", len(p.issues), "first", p.issues[0])
	}

	p.spirv, err = naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, fmt.Errorf("program: spir-v %s: %w", v, err)
	}

	p.iface, err = vertexInterface(module, vs.EntryPoint())
	if err != nil {
		return nil, fmt.Errorf("program: %s: %w", v, err)
	}
	if err := checkInterface(v, p.iface, fs.StageInputs()); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadAll loads every program in Variants order.
//
// Returns:
//   - map[Variant]Program: the loaded programs
//   - error: the first load error
func LoadAll() (map[Variant]Program, error) {
	out := make(map[Variant]Program, len(Variants))
	for _, v := range Variants {
		p, err := Load(v)
		if err != nil {
			return nil, err
		}
		out[v] = p
	}
	return out, nil
}

func (p *program) Variant() Variant {
	return p.variant
}

func (p *program) Source() string {
	return p.vertex.Source()
}

func (p *program) VertexShader() shader.Shader {
	return p.vertex
}

func (p *program) FragmentShader() shader.Shader {
	return p.fragment
}

func (p *program) SPIRV() []byte {
	return p.spirv
}

func (p *program) Interface() []StageVariable {
	return p.iface
}

func (p *program) Issues() []string {
	return p.issues
}

// checkInterface enforces flat interpolation on the index outputs and checks that every fragment
// input is fed by the vertex output at the same location.
func checkInterface(v Variant, iface []StageVariable, inputs []shader.StageVariable) error {
	byName := make(map[string]StageVariable, len(iface))
	byLocation := make(map[uint32]StageVariable, len(iface))
	for _, sv := range iface {
		byName[sv.Name] = sv
		byLocation[sv.Location] = sv
	}
	for _, name := range flatOutputs[v] {
		sv, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %s has no %s output", ErrInterpolatedIndex, v, name)
		}
		if sv.Interpolation != InterpolationFlat {
			return fmt.Errorf("%w: %s.%s is %s", ErrInterpolatedIndex, v, name, sv.Interpolation)
		}
	}

	for _, in := range inputs {
		out, ok := byLocation[uint32(in.Location)]
		if !ok {
			return fmt.Errorf("%w: %s reads %s@%d, which no vertex output writes", ErrInterfaceMismatch, v, in.Name, in.Location)
		}
		if out.Name != in.Name || out.Interpolation.String() != interpolationOr(in.Interpolation) {
			return fmt.Errorf("%w: %s location %d is %s (%s) out, %s (%s) in", ErrInterfaceMismatch, v, in.Location, out.Name, out.Interpolation, in.Name, in.Interpolation)
		}
	}
	return nil
}

// interpolationOr maps the empty reflection qualifier to the Interpolation name for none.
func interpolationOr(name string) string {
	if name == "" {
		return InterpolationNone.String()
	}
	return name
}

// entryPoint returns the named entry point of a lowered module.
func entryPoint(m *ir.Module, name string) (*ir.EntryPoint, bool) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name {
			return &m.EntryPoints[i], true
		}
	}
	return nil, false
}
