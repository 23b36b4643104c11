// Package shading runs the vertex and fragment stages of the voxel programs on the CPU.
// It mirrors the WGSL in engine/program/assets line for line so the decode, UV and band
// rules can be tested without a GPU, and backs the software rasteriser used by voxelshade.
package shading

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/go-gl/mathgl/mgl32"
)

// UVTable holds the quad corner UVs in the order the mesher emits face vertices.
var UVTable = [4]mgl32.Vec2{
	{0, 0},
	{0, 1},
	{1, 1},
	{1, 0},
}

var trianglePositions = [3]mgl32.Vec2{
	{0, 0.5},
	{-0.5, -0.5},
	{0.5, -0.5},
}

var triangleColours = [3]mgl32.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// QuadUV returns the UV for a vertex index. Vertices must arrive in groups of 4 per face.
func QuadUV(vertexIndex uint32) mgl32.Vec2 {
	return UVTable[vertexIndex%4]
}

// VertexInput is one vertex invocation's input: the vertex_index builtin plus a vertex record.
// Attribute carries texture_ambient for packed programs and texture_index for the mesh program.
type VertexInput struct {
	VertexIndex uint32
	Position    mgl32.Vec3
	Normal      mgl32.Vec3
	Attribute   uint32
}

// VertexOutput is the vertex stage result and, once interpolated, the fragment input.
// Fields a program does not write stay zero.
type VertexOutput struct {
	ClipPosition mgl32.Vec4
	UV           mgl32.Vec2
	TextureIndex uint32
	Ambient      float32
	AmbientCode  uint32
	Colour       mgl32.Vec4
}

// PackedInputs converts packed vertex records into vertex inputs. VertexIndex is assigned at draw time.
func PackedInputs(vertices []attribute.PackedVertex) []VertexInput {
	out := make([]VertexInput, len(vertices))
	for i, v := range vertices {
		out[i] = VertexInput{Position: v.Position, Normal: v.Normal, Attribute: v.TextureAmbient}
	}
	return out
}

// IndexedInputs converts explicit-index vertex records into vertex inputs.
func IndexedInputs(vertices []attribute.IndexedVertex) []VertexInput {
	out := make([]VertexInput, len(vertices))
	for i, v := range vertices {
		out[i] = VertexInput{Position: v.Position, Normal: v.Normal, Attribute: v.TextureIndex}
	}
	return out
}

// RunVertex executes the vs_main of a program variant for one vertex.
// The normal is accepted and ignored, as in every program.
//
// Parameters:
//   - v: the program variant
//   - viewProj: the camera view-projection matrix (unused by the triangle program)
//   - in: the vertex input
//
// Returns:
//   - VertexOutput: the stage outputs the variant writes
func RunVertex(v program.Variant, viewProj mgl32.Mat4, in VertexInput) VertexOutput {
	var out VertexOutput
	if v == program.VariantTriangle {
		// out of range constant-array reads clamp to the last element
		i := min(in.VertexIndex, 2)
		p := trianglePositions[i]
		out.ClipPosition = mgl32.Vec4{p[0], p[1], 0, 1}
		out.Colour = triangleColours[i].Vec4(1)
		return out
	}

	out.ClipPosition = viewProj.Mul4x1(in.Position.Vec4(1))
	out.UV = QuadUV(in.VertexIndex)
	switch v.Layout() {
	case attribute.LayoutIndexed:
		out.TextureIndex = in.Attribute
	case attribute.LayoutPacked:
		d := attribute.Decode(in.Attribute)
		out.TextureIndex = d.Layer
		if v == program.VariantVoxelBands {
			out.AmbientCode = d.AmbientCode()
		} else {
			out.Ambient = d.AmbientFloat()
		}
	}
	return out
}
