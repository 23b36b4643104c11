// package common contains plain data types and helpers shared across the voxel engine. They are not interface-wrapped structs, just plain structs
// and functions that express commonly used data-types.
package common

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureArrayStagingData holds RGBA pixel data for every layer of a 2D texture array pending GPU upload.
// All layers share the same dimensions; layer i is uploaded to array slice i.
type TextureArrayStagingData struct {
	// Layers holds one tightly packed RGBA pixel slice per array layer, 4 bytes per pixel.
	Layers [][]byte
	// Width is the width of every layer in pixels.
	Width uint32
	// Height is the height of every layer in pixels.
	Height uint32
}

// LayerCount returns the number of array layers staged.
func (t *TextureArrayStagingData) LayerCount() uint32 {
	return uint32(len(t.Layers))
}

// NewTextureArrayStagingData copies a list of equally sized RGBA images into staging data.
//
// Parameters:
//   - layers: the layer images, in array-slice order
//
// Returns:
//   - *TextureArrayStagingData: the staged pixel data
//   - error: error if the list is empty or the layer sizes differ
func NewTextureArrayStagingData(layers []*image.RGBA) (*TextureArrayStagingData, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("texture array needs at least one layer")
	}
	bounds := layers[0].Bounds()
	out := &TextureArrayStagingData{
		Layers: make([][]byte, len(layers)),
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
	for i, img := range layers {
		b := img.Bounds()
		if b.Dx() != bounds.Dx() || b.Dy() != bounds.Dy() {
			return nil, fmt.Errorf("texture array layer %d is %dx%d, expected %dx%d", i, b.Dx(), b.Dy(), bounds.Dx(), bounds.Dy())
		}
		pix := make([]byte, 0, b.Dx()*b.Dy()*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
			pix = append(pix, row...)
		}
		out.Layers[i] = pix
	}
	return out, nil
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields fall back to the renderer defaults (repeat addressing, nearest filtering).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Coalesce returns the first of values that is not the zero value of T. Staging data uses it to
// fall back to wgpu defaults for fields the caller left unset.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
