package program

import (
	"fmt"
	"sort"

	"github.com/gogpu/naga/ir"
)

// Interpolation is how the rasteriser carries a vertex output to the fragment stage.
type Interpolation int

const (
	// InterpolationNone marks an output with no interpolation qualifier at all.
	InterpolationNone Interpolation = iota
	// InterpolationFlat passes the provoking vertex's value unchanged.
	InterpolationFlat
	// InterpolationLinear blends in screen space.
	InterpolationLinear
	// InterpolationPerspective blends with perspective correction.
	InterpolationPerspective
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationFlat:
		return "flat"
	case InterpolationLinear:
		return "linear"
	case InterpolationPerspective:
		return "perspective"
	default:
		return "none"
	}
}

// StageVariable is one user-defined vertex output.
type StageVariable struct {
	Name          string
	Location      uint32
	Interpolation Interpolation
	// Scalar is the WGSL scalar kind of the member ("f32", "u32", "i32", "bool").
	Scalar string
	// Components is 1 for scalars and the vector width otherwise.
	Components int
}

// vertexInterface reads the location-bound members of the vertex entry point's result struct.
func vertexInterface(m *ir.Module, entry string) ([]StageVariable, error) {
	ep, ok := entryPoint(m, entry)
	if !ok || ep.Stage != ir.StageVertex {
		return nil, fmt.Errorf("no vertex entry point %q", entry)
	}
	if ep.Function.Result == nil {
		return nil, fmt.Errorf("vertex entry point %q returns nothing", entry)
	}
	res := ep.Function.Result
	if int(res.Type) >= len(m.Types) {
		return nil, fmt.Errorf("vertex entry point %q has an invalid result type", entry)
	}

	st, ok := m.Types[res.Type].Inner.(ir.StructType)
	if !ok {
		// a bare @builtin(position) result has no user outputs
		return nil, nil
	}

	var out []StageVariable
	for _, member := range st.Members {
		loc, ok := locationOf(member.Binding)
		if !ok {
			continue
		}
		sv := StageVariable{
			Name:          member.Name,
			Location:      loc.Location,
			Interpolation: interpolationOf(loc.Interpolation),
		}
		if int(member.Type) < len(m.Types) {
			sv.Scalar, sv.Components = scalarOf(m.Types[member.Type].Inner)
		}
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

func locationOf(b *ir.Binding) (ir.LocationBinding, bool) {
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

func interpolationOf(in *ir.Interpolation) Interpolation {
	if in == nil {
		return InterpolationNone
	}
	switch in.Kind {
	case ir.InterpolationFlat:
		return InterpolationFlat
	case ir.InterpolationLinear:
		return InterpolationLinear
	case ir.InterpolationPerspective:
		return InterpolationPerspective
	default:
		return InterpolationNone
	}
}

func scalarOf(inner ir.TypeInner) (string, int) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarName(t.Kind), 1
	case ir.VectorType:
		return scalarName(t.Scalar.Kind), int(t.Size)
	default:
		return "", 0
	}
}

func scalarName(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarFloat:
		return "f32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarBool:
		return "bool"
	default:
		return ""
	}
}
