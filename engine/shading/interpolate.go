package shading

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/go-gl/mathgl/mgl32"
)

// outputInterpolation is how the rasteriser treats each WGSL VertexOutput member.
var outputInterpolation = map[string]program.Interpolation{
	"uv":            program.InterpolationPerspective,
	"texture_index": program.InterpolationFlat,
	"ambient":       program.InterpolationPerspective,
	"ambient_code":  program.InterpolationFlat,
	"colour":        program.InterpolationPerspective,
}

// OutputInterpolation reports how Interpolate treats a VertexOutput member, by WGSL member name.
func OutputInterpolation(name string) (program.Interpolation, bool) {
	i, ok := outputInterpolation[name]
	return i, ok
}

// Interpolate produces the fragment input at a point of a triangle.
// Flat members are copied from the provoking vertex, the first of the triangle, as WebGPU does.
// Blended members use perspective-correct barycentric weights.
//
// Parameters:
//   - v: the three vertex outputs in primitive order
//   - b: screen-space barycentric weights of the point, summing to 1
//
// Returns:
//   - VertexOutput: the interpolated fragment input
func Interpolate(v [3]VertexOutput, b [3]float32) VertexOutput {
	var pw [3]float32
	var sum float32
	for i := range v {
		w := v[i].ClipPosition[3]
		if w == 0 {
			w = 1
		}
		pw[i] = b[i] / w
		sum += pw[i]
	}
	if sum != 0 {
		for i := range pw {
			pw[i] /= sum
		}
	}

	out := VertexOutput{
		TextureIndex: v[0].TextureIndex,
		AmbientCode:  v[0].AmbientCode,
	}
	for i := range v {
		out.ClipPosition = out.ClipPosition.Add(v[i].ClipPosition.Mul(b[i]))
		out.UV = out.UV.Add(v[i].UV.Mul(pw[i]))
		out.Ambient += v[i].Ambient * pw[i]
		out.Colour = out.Colour.Add(v[i].Colour.Mul(pw[i]))
	}
	return out
}

// barycentric returns the weights of p relative to the screen triangle a, b, c and whether p lies inside it.
func barycentric(a, b, c, p mgl32.Vec2) ([3]float32, bool) {
	area := edge(a, b, c)
	if area == 0 {
		return [3]float32{}, false
	}
	w := [3]float32{
		edge(b, c, p) / area,
		edge(c, a, p) / area,
		edge(a, b, p) / area,
	}
	return w, w[0] >= 0 && w[1] >= 0 && w[2] >= 0
}

func edge(a, b, p mgl32.Vec2) float32 {
	return (p[0]-a[0])*(b[1]-a[1]) - (p[1]-a[1])*(b[0]-a[0])
}
