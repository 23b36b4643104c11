package shader

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// StageVariable is one location-bound value passed between stages: a vertex output or a fragment input.
type StageVariable struct {
	// Name is the struct member or argument name.
	Name string
	// Location is the @location index.
	Location int
	// Type is the WGSL type string, e.g. "u32" or "vec2<f32>".
	Type string
	// Interpolation is "flat", "linear" or "perspective". Float values without a qualifier report
	// the WGSL default, perspective.
	Interpolation string
}

// Flat reports whether the variable is declared @interpolate(flat).
func (v StageVariable) Flat() bool {
	return v.Interpolation == "flat"
}

// reflection is everything the pipeline needs from one stage of a lowered module.
type reflection struct {
	entryPoint   string
	vertex       map[int][]wgpu.VertexBufferLayout
	groups       map[int]wgpu.BindGroupLayoutDescriptor
	varNames     map[int]map[int]string
	stageOutputs []StageVariable
	stageInputs  []StageVariable
}

// lower parses and lowers pre-processed WGSL into naga IR.
func lower(key, source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: parse %s: %w", key, err)
	}
	m, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader: lower %s: %w", key, err)
	}
	return m, nil
}

// reflectStage reads the entry point of the given stage and the module's resource bindings.
// Every binding is made visible to both stages since a program's entry points share one source.
//
// Parameters:
//   - m: the lowered module
//   - stage: the stage to reflect
//
// Returns:
//   - reflection: the stage metadata
//   - error: error if the module has no entry point for the stage or uses an unsupported type
func reflectStage(m *ir.Module, stage ShaderType) (reflection, error) {
	r := reflection{
		vertex:   make(map[int][]wgpu.VertexBufferLayout),
		groups:   make(map[int]wgpu.BindGroupLayoutDescriptor),
		varNames: make(map[int]map[int]string),
	}

	want := ir.StageVertex
	if stage == ShaderTypeFragment {
		want = ir.StageFragment
	}
	var ep *ir.EntryPoint
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == want {
			ep = &m.EntryPoints[i]
			break
		}
	}
	if ep == nil {
		return r, fmt.Errorf("no @%s entry point", stage)
	}
	r.entryPoint = ep.Name

	switch stage {
	case ShaderTypeVertex:
		layout, ok, err := vertexBufferLayout(m, ep.Function.Arguments)
		if err != nil {
			return r, err
		}
		if ok {
			r.vertex[0] = []wgpu.VertexBufferLayout{layout}
		}
		if res := ep.Function.Result; res != nil {
			r.stageOutputs = locationVariables(m, []ir.FunctionArgument{{Type: res.Type, Binding: res.Binding}})
		}
	case ShaderTypeFragment:
		r.stageInputs = locationVariables(m, ep.Function.Arguments)
	}

	if err := bindGroups(m, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, &r); err != nil {
		return r, err
	}
	return r, nil
}

// locationBinding unwraps a location binding, whether naga stored it by value or by pointer.
func locationBinding(b *ir.Binding) (ir.LocationBinding, bool) {
	if b == nil {
		return ir.LocationBinding{}, false
	}
	switch lb := (*b).(type) {
	case ir.LocationBinding:
		return lb, true
	case *ir.LocationBinding:
		if lb != nil {
			return *lb, true
		}
	}
	return ir.LocationBinding{}, false
}

// locatedMember is one @location value found directly on an argument or inside an argument struct.
type locatedMember struct {
	name    string
	ty      ir.TypeHandle
	binding ir.LocationBinding
}

// locatedMembers flattens arguments into their location-bound values in declaration order.
func locatedMembers(m *ir.Module, args []ir.FunctionArgument) []locatedMember {
	var out []locatedMember
	for _, arg := range args {
		if lb, ok := locationBinding(arg.Binding); ok {
			out = append(out, locatedMember{name: arg.Name, ty: arg.Type, binding: lb})
			continue
		}
		if int(arg.Type) >= len(m.Types) {
			continue
		}
		st, ok := m.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, member := range st.Members {
			if lb, ok := locationBinding(member.Binding); ok {
				out = append(out, locatedMember{name: member.Name, ty: member.Type, binding: lb})
			}
		}
	}
	return out
}

// locationVariables lists the location-bound values of args in location order.
func locationVariables(m *ir.Module, args []ir.FunctionArgument) []StageVariable {
	members := locatedMembers(m, args)
	if len(members) == 0 {
		return nil
	}
	out := make([]StageVariable, 0, len(members))
	for _, lm := range members {
		out = append(out, StageVariable{
			Name:          lm.name,
			Location:      int(lm.binding.Location),
			Type:          typeName(m, lm.ty),
			Interpolation: interpolationName(lm.binding.Interpolation),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// vertexBufferLayout packs the location-bound vertex inputs into one tightly packed buffer in
// declaration order. Builtins such as vertex_index take no buffer space.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
//   - bool: false when the entry point reads no vertex buffer
//   - error: error if an input type has no vertex format
func vertexBufferLayout(m *ir.Module, args []ir.FunctionArgument) (wgpu.VertexBufferLayout, bool, error) {
	members := locatedMembers(m, args)
	if len(members) == 0 {
		return wgpu.VertexBufferLayout{}, false, nil
	}

	var offset uint64
	attrs := make([]wgpu.VertexAttribute, 0, len(members))
	for _, lm := range members {
		info, ok := vertexFormat(m, lm.ty)
		if !ok {
			return wgpu.VertexBufferLayout{}, false, fmt.Errorf("vertex input %s has no vertex format for %s", lm.name, typeName(m, lm.ty))
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: lm.binding.Location,
		})
		offset += info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true, nil
}

// vertexFormat maps a scalar or vector type to its vertex format.
func vertexFormat(m *ir.Module, h ir.TypeHandle) (vertexFormatInfo, bool) {
	if int(h) >= len(m.Types) {
		return vertexFormatInfo{}, false
	}
	var scalar ir.ScalarType
	components := 1
	switch t := m.Types[h].Inner.(type) {
	case ir.ScalarType:
		scalar = t
	case ir.VectorType:
		scalar, components = t.Scalar, int(t.Size)
	default:
		return vertexFormatInfo{}, false
	}
	info, ok := vertexFormats[vertexFormatKey{kind: scalar.Kind, width: scalar.Width, components: components}]
	return info, ok
}

// bindGroups classifies every global with a @group/@binding into a layout entry.
func bindGroups(m *ir.Module, visibility wgpu.ShaderStage, r *reflection) error {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, g := range m.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		group, binding := int(g.Binding.Group), int(g.Binding.Binding)
		entry, err := classifyGlobal(m, g, visibility)
		if err != nil {
			return fmt.Errorf("@group(%d) @binding(%d) %s: %w", group, binding, g.Name, err)
		}
		entries[group] = append(entries[group], entry)
		if r.varNames[group] == nil {
			r.varNames[group] = make(map[int]string)
		}
		r.varNames[group][binding] = g.Name
	}
	for group, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		r.groups[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return nil
}

// classifyGlobal builds the layout entry for one bound global.
func classifyGlobal(m *ir.Module, g ir.GlobalVariable, visibility wgpu.ShaderStage) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{Binding: g.Binding.Binding, Visibility: visibility}

	switch g.Space {
	case ir.SpaceUniform:
		entry.Buffer = wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: uint64(ir.TypeSize(m, g.Type)),
		}
		return entry, nil
	case ir.SpaceStorage:
		kind := wgpu.BufferBindingTypeStorage
		if g.Access == ir.StorageRead {
			kind = wgpu.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = wgpu.BufferBindingLayout{Type: kind, MinBindingSize: uint64(ir.TypeSize(m, g.Type))}
		return entry, nil
	case ir.SpaceHandle:
	default:
		return entry, fmt.Errorf("unsupported address space %d", g.Space)
	}

	if int(g.Type) >= len(m.Types) {
		return entry, fmt.Errorf("invalid type handle %d", g.Type)
	}
	switch t := m.Types[g.Type].Inner.(type) {
	case ir.SamplerType:
		entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		if t.Comparison {
			entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		}
	case ir.ImageType:
		dim, ok := viewDimension(t)
		if !ok {
			return entry, fmt.Errorf("unsupported texture dimension %d", t.Dim)
		}
		switch t.Class {
		case ir.ImageClassSampled:
			sample, ok := sampleTypes[t.SampledKind]
			if !ok {
				return entry, fmt.Errorf("unsupported texture sample kind %d", t.SampledKind)
			}
			entry.Texture = wgpu.TextureBindingLayout{SampleType: sample, ViewDimension: dim, Multisampled: t.Multisampled}
		case ir.ImageClassDepth:
			entry.Texture = wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeDepth, ViewDimension: dim, Multisampled: t.Multisampled}
		default:
			return entry, fmt.Errorf("unsupported texture class %d", t.Class)
		}
	default:
		return entry, fmt.Errorf("unsupported handle type %s", typeName(m, g.Type))
	}
	return entry, nil
}

func viewDimension(t ir.ImageType) (wgpu.TextureViewDimension, bool) {
	switch {
	case t.Dim == ir.Dim1D && !t.Arrayed:
		return wgpu.TextureViewDimension1D, true
	case t.Dim == ir.Dim2D && t.Arrayed:
		return wgpu.TextureViewDimension2DArray, true
	case t.Dim == ir.Dim2D:
		return wgpu.TextureViewDimension2D, true
	case t.Dim == ir.Dim3D && !t.Arrayed:
		return wgpu.TextureViewDimension3D, true
	case t.Dim == ir.DimCube && t.Arrayed:
		return wgpu.TextureViewDimensionCubeArray, true
	case t.Dim == ir.DimCube:
		return wgpu.TextureViewDimensionCube, true
	default:
		return wgpu.TextureViewDimension2D, false
	}
}

// typeName renders a type the way WGSL spells it, falling back to the declared name.
func typeName(m *ir.Module, h ir.TypeHandle) string {
	if int(h) >= len(m.Types) {
		return "?"
	}
	t := m.Types[h]
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return scalarName(inner)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", inner.Size, scalarName(inner.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", inner.Columns, inner.Rows, scalarName(inner.Scalar))
	}
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("%T", t.Inner)
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarFloat:
		if s.Width == 2 {
			return "f16"
		}
		return "f32"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarBool:
		return "bool"
	default:
		return fmt.Sprintf("scalar(%d)", s.Kind)
	}
}

func interpolationName(in *ir.Interpolation) string {
	if in == nil {
		return ""
	}
	switch in.Kind {
	case ir.InterpolationFlat:
		return "flat"
	case ir.InterpolationLinear:
		return "linear"
	case ir.InterpolationPerspective:
		return "perspective"
	default:
		return ""
	}
}
