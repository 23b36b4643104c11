package shading

import (
	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Filter selects how texels are combined when sampling.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// AddressMode selects how UVs outside [0, 1] are folded back into the texture.
type AddressMode int

const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
)

// Sampler is the CPU counterpart of the GPU sampler bound next to the layer texture.
type Sampler struct {
	Filter  Filter
	Address AddressMode
}

// StagingData returns the GPU sampler configuration matching the sampler.
func (s Sampler) StagingData() common.SamplerStagingData {
	address := wgpu.AddressModeRepeat
	if s.Address == AddressClampToEdge {
		address = wgpu.AddressModeClampToEdge
	}
	filter := wgpu.FilterModeNearest
	if s.Filter == FilterLinear {
		filter = wgpu.FilterModeLinear
	}
	return common.SamplerStagingData{
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// TextureArray is a read-only stack of equally sized RGBA layers.
type TextureArray interface {
	// Layers returns the number of array layers.
	Layers() uint32
	// Size returns the width and height shared by every layer.
	Size() (int, int)
	// Texel returns the normalised RGBA value at integer coordinates inside the layer.
	Texel(layer uint32, x, y int) mgl32.Vec4
}

// ImageArray is a TextureArray over staged texture array pixels.
type ImageArray struct {
	data *common.TextureArrayStagingData
}

var _ TextureArray = (*ImageArray)(nil)

// NewImageArray wraps staged pixel data. The same data is uploaded to the GPU texture array.
func NewImageArray(data *common.TextureArrayStagingData) *ImageArray {
	return &ImageArray{data: data}
}

func (a *ImageArray) Layers() uint32 {
	return a.data.LayerCount()
}

func (a *ImageArray) Size() (int, int) {
	return int(a.data.Width), int(a.data.Height)
}

func (a *ImageArray) Texel(layer uint32, x, y int) mgl32.Vec4 {
	off := (y*int(a.data.Width) + x) * 4
	pix := a.data.Layers[layer][off : off+4 : off+4]
	return mgl32.Vec4{
		float32(pix[0]) / 255,
		float32(pix[1]) / 255,
		float32(pix[2]) / 255,
		float32(pix[3]) / 255,
	}
}

// Sample reads a texture array the way textureSample does at mip level 0.
// A layer at or past the layer count is clamped to the last layer, which is what WebGPU
// does for the array index. Keeping layers in range is the vertex producer's contract.
//
// Parameters:
//   - tex: the texture array, nil samples as transparent black
//   - s: the sampler
//   - uv: the texture coordinates
//   - layer: the array layer
//
// Returns:
//   - mgl32.Vec4: the filtered RGBA value
func Sample(tex TextureArray, s Sampler, uv mgl32.Vec2, layer uint32) mgl32.Vec4 {
	if tex == nil || tex.Layers() == 0 {
		return mgl32.Vec4{}
	}
	layer = min(layer, tex.Layers()-1)
	w, h := tex.Size()

	if s.Filter == FilterNearest {
		x := texelIndex(math32.Floor(fold(uv[0], s.Address)*float32(w)), w, s.Address)
		y := texelIndex(math32.Floor(fold(uv[1], s.Address)*float32(h)), h, s.Address)
		return tex.Texel(layer, x, y)
	}

	tx := fold(uv[0], s.Address)*float32(w) - 0.5
	ty := fold(uv[1], s.Address)*float32(h) - 0.5
	fx0, fy0 := math32.Floor(tx), math32.Floor(ty)
	fx, fy := tx-fx0, ty-fy0
	x0, x1 := texelIndex(fx0, w, s.Address), texelIndex(fx0+1, w, s.Address)
	y0, y1 := texelIndex(fy0, h, s.Address), texelIndex(fy0+1, h, s.Address)

	top := lerp4(tex.Texel(layer, x0, y0), tex.Texel(layer, x1, y0), fx)
	bottom := lerp4(tex.Texel(layer, x0, y1), tex.Texel(layer, x1, y1), fx)
	return lerp4(top, bottom, fy)
}

// fold maps a coordinate into [0, 1] according to the address mode.
func fold(c float32, mode AddressMode) float32 {
	if mode == AddressClampToEdge {
		return mgl32.Clamp(c, 0, 1)
	}
	return c - math32.Floor(c)
}

// texelIndex wraps or clamps an integer texel coordinate into [0, size).
func texelIndex(c float32, size int, mode AddressMode) int {
	i := int(c)
	if mode == AddressRepeat {
		i %= size
		if i < 0 {
			i += size
		}
		return i
	}
	return min(max(i, 0), size-1)
}

func lerp4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
