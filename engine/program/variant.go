// Package program holds the four WGSL shader programs of the voxel renderer and loads them into
// pipeline-ready vertex/fragment shader pairs. Every program is compiled with naga on load, which
// both validates the source and exposes the inter-stage interface for inspection.
package program

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
)

// ErrUnknownVariant is returned when a variant name or value does not match a program.
var ErrUnknownVariant = errors.New("program: unknown variant")

// Variant selects one of the shader programs.
type Variant int

const (
	// VariantMesh samples a texture layer given explicitly per vertex.
	VariantMesh Variant = iota
	// VariantVoxel decodes a packed attribute and tints the sample by a continuous ambient factor.
	VariantVoxel
	// VariantVoxelBands decodes a packed attribute and maps ambient codes 0..2 to flat band colours.
	VariantVoxelBands
	// VariantTriangle draws a fixed coloured triangle with no external state.
	VariantTriangle
)

// Variants lists every program in declaration order.
var Variants = []Variant{VariantMesh, VariantVoxel, VariantVoxelBands, VariantTriangle}

var variantNames = map[Variant]string{
	VariantMesh:       "mesh",
	VariantVoxel:      "voxel",
	VariantVoxelBands: "voxel_bands",
	VariantTriangle:   "triangle",
}

// String returns the program name, which is also its asset file stem.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant maps a program name to its Variant. Matching ignores case and accepts '-' for '_'.
//
// Parameters:
//   - name: the program name, e.g. "voxel_bands"
//
// Returns:
//   - Variant: the matched variant
//   - error: ErrUnknownVariant if nothing matches
func ParseVariant(name string) (Variant, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for v, n := range variantNames {
		if n == norm {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Layout returns the vertex record the program reads.
func (v Variant) Layout() attribute.Layout {
	switch v {
	case VariantMesh:
		return attribute.LayoutIndexed
	case VariantVoxel, VariantVoxelBands:
		return attribute.LayoutPacked
	default:
		return attribute.LayoutNone
	}
}

// Policy identifies how a fragment resolves its colour.
type Policy int

const (
	// PolicySample returns the texture sample unchanged.
	PolicySample Policy = iota
	// PolicyTint multiplies the sample's RGB by the continuous ambient factor.
	PolicyTint
	// PolicyBands returns a flat band colour for codes 0..2 and the sample otherwise.
	PolicyBands
	// PolicyVertexColour returns the interpolated vertex colour.
	PolicyVertexColour
)

// String returns the policy name used in logs and CLI output.
func (p Policy) String() string {
	switch p {
	case PolicySample:
		return "sample"
	case PolicyTint:
		return "tint"
	case PolicyBands:
		return "bands"
	case PolicyVertexColour:
		return "vertex_colour"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Policy returns the fragment policy of the program.
func (v Variant) Policy() Policy {
	switch v {
	case VariantVoxel:
		return PolicyTint
	case VariantVoxelBands:
		return PolicyBands
	case VariantTriangle:
		return PolicyVertexColour
	default:
		return PolicySample
	}
}

// Textured reports whether the program binds the camera and the layer texture array.
func (v Variant) Textured() bool {
	return v != VariantTriangle
}
