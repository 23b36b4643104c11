// Package attribute implements the packed per-vertex attribute shared by the voxel programs and the
// vertex records uploaded to the GPU. A packed attribute is a single u32 whose high 16 bits carry an
// unsigned texture layer and whose low 16 bits carry a two's-complement signed ambient value.
package attribute

import (
	"errors"
	"fmt"
	"math"
)

// AmbientScale is the divisor applied to the raw ambient value by the continuous-tint program.
// An ambient of 3 maps to full brightness.
const AmbientScale float32 = 3.0

var (
	// ErrLayerRange is returned when a texture layer does not fit in 16 unsigned bits.
	ErrLayerRange = errors.New("attribute: layer out of range")
	// ErrAmbientRange is returned when an ambient value does not fit in 16 signed bits.
	ErrAmbientRange = errors.New("attribute: ambient out of range")
)

// Decoded is the unpacked form of a packed attribute.
type Decoded struct {
	// Layer is the texture array layer, always in [0, 65535].
	Layer uint32
	// Ambient is the sign-extended raw ambient value, always in [-32768, 32767].
	Ambient int32
}

// AmbientFloat returns the continuous tint factor, Ambient / AmbientScale.
func (d Decoded) AmbientFloat() float32 {
	return float32(d.Ambient) / AmbientScale
}

// AmbientCode returns the raw ambient bits reinterpreted as an unsigned band code.
// Negative ambients become large codes, which the band policy treats as a miss.
func (d Decoded) AmbientCode() uint32 {
	return uint32(d.Ambient)
}

// Pack encodes a layer and an ambient value into one attribute.
//
// Parameters:
//   - layer: the texture array layer
//   - ambient: the signed ambient value
//
// Returns:
//   - uint32: (layer << 16) | (ambient & 0xFFFF)
func Pack(layer uint16, ambient int16) uint32 {
	return uint32(layer)<<16 | uint32(uint16(ambient))
}

// PackChecked is Pack for callers holding wider integers. Values that do not fit are rejected
// instead of being silently truncated into a neighbouring layer.
//
// Parameters:
//   - layer: the texture array layer, must be in [0, 65535]
//   - ambient: the ambient value, must be in [-32768, 32767]
//
// Returns:
//   - uint32: the packed attribute
//   - error: ErrLayerRange or ErrAmbientRange wrapped with the offending value
func PackChecked(layer, ambient int) (uint32, error) {
	if layer < 0 || layer > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d", ErrLayerRange, layer)
	}
	if ambient < math.MinInt16 || ambient > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %d", ErrAmbientRange, ambient)
	}
	return Pack(uint16(layer), int16(ambient)), nil
}

// Decode splits a packed attribute. The ambient half is sign extended by shifting it to the top of a
// signed 32-bit value and arithmetically shifting it back, which is the same operation the shaders perform.
// Decode never fails; a layer beyond the bound texture array is the caller's problem.
func Decode(packed uint32) Decoded {
	return Decoded{
		Layer:   Layer(packed),
		Ambient: Ambient(packed),
	}
}

// Layer returns the high 16 bits of a packed attribute.
func Layer(packed uint32) uint32 {
	return packed >> 16
}

// Ambient returns the sign-extended low 16 bits of a packed attribute.
func Ambient(packed uint32) int32 {
	return int32(packed<<16) >> 16
}
