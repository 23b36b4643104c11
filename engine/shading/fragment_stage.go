package shading

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/go-gl/mathgl/mgl32"
)

// bandTable holds the flat colours of the voxel_bands program, indexed by ambient code.
var bandTable = [...]mgl32.Vec4{
	{0.2, 0.2, 0.3, 1.0},
	{0.4, 0.6, 0.5, 1.0},
	{0.6, 0.7, 0.6, 1.0},
}

// BandColour looks up the flat colour for an ambient code.
//
// Parameters:
//   - code: the ambient code, the bitcast of the sign-extended raw ambient
//
// Returns:
//   - mgl32.Vec4: the band colour, zero on a miss
//   - bool: false when the code has no band and the fragment must sample the texture
func BandColour(code uint32) (mgl32.Vec4, bool) {
	if code >= uint32(len(bandTable)) {
		return mgl32.Vec4{}, false
	}
	return bandTable[code], true
}

// RunFragment executes the fs_main of a program for one interpolated fragment.
// The result is not clamped; a negative ambient tint yields negative channels, which the
// render target clamps on write.
//
// Parameters:
//   - p: the fragment policy of the program
//   - in: the interpolated vertex output
//   - tex: the bound texture array, unused by PolicyVertexColour and by band hits
//   - s: the bound sampler
//
// Returns:
//   - mgl32.Vec4: the fragment colour
func RunFragment(p program.Policy, in VertexOutput, tex TextureArray, s Sampler) mgl32.Vec4 {
	switch p {
	case program.PolicyVertexColour:
		return in.Colour
	case program.PolicyTint:
		t := Sample(tex, s, in.UV, in.TextureIndex)
		return mgl32.Vec4{t[0] * in.Ambient, t[1] * in.Ambient, t[2] * in.Ambient, t[3]}
	case program.PolicyBands:
		if c, ok := BandColour(in.AmbientCode); ok {
			return c
		}
		return Sample(tex, s, in.UV, in.TextureIndex)
	default:
		return Sample(tex, s, in.UV, in.TextureIndex)
	}
}
