package voxel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
)

// ErrNoTexture is returned when a voxel face has no texture layer.
var ErrNoTexture = errors.New("voxel: no texture layer")

// patternSize is the resolution of the generated pattern before it is scaled to the layer size.
const patternSize = 8

// LayerKey identifies one texture array layer.
type LayerKey struct {
	Voxel Voxel
	Face  Face
}

func (k LayerKey) String() string {
	return k.Voxel.String() + "_" + k.Face.String()
}

// TextureLayers maps voxel faces to texture array layers. Layer i is the i-th key.
type TextureLayers struct {
	keys  []LayerKey
	index map[LayerKey]uint16
}

// DefaultLayerKeys lists a layer for every face of every solid voxel.
var DefaultLayerKeys = []LayerKey{
	{Grass, FaceUp}, {Grass, FaceSide}, {Grass, FaceDown},
	{Dirt, FaceUp}, {Dirt, FaceSide}, {Dirt, FaceDown},
	{Stone, FaceUp}, {Stone, FaceSide}, {Stone, FaceDown},
}

// NewTextureLayers builds a layer table from keys in array-slice order.
//
// Parameters:
//   - keys: the layer keys
//
// Returns:
//   - *TextureLayers: the table
//   - error: error if keys is empty, repeats a key or exceeds the 16-bit layer range
func NewTextureLayers(keys []LayerKey) (*TextureLayers, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("voxel: texture layer table is empty")
	}
	if len(keys) > 1<<16 {
		return nil, fmt.Errorf("voxel: %d texture layers exceed the 16-bit layer index", len(keys))
	}
	t := &TextureLayers{keys: append([]LayerKey(nil), keys...), index: make(map[LayerKey]uint16, len(keys))}
	for i, k := range keys {
		if _, dup := t.index[k]; dup {
			return nil, fmt.Errorf("voxel: texture layer %s listed twice", k)
		}
		t.index[k] = uint16(i)
	}
	return t, nil
}

// DefaultTextureLayers returns the table for DefaultLayerKeys.
func DefaultTextureLayers() *TextureLayers {
	t, err := NewTextureLayers(DefaultLayerKeys)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Layer returns the array layer of a voxel face.
func (t *TextureLayers) Layer(v Voxel, f Face) (uint16, bool) {
	l, ok := t.index[LayerKey{v, f}]
	return l, ok
}

// Len returns the number of layers.
func (t *TextureLayers) Len() int {
	return len(t.keys)
}

// Keys returns the layer keys in array-slice order.
func (t *TextureLayers) Keys() []LayerKey {
	return t.keys
}

// Images renders one procedural RGBA image per layer. Each layer is a small speckled pattern
// in the voxel's colour, scaled up with nearest-neighbour filtering so texels stay crisp.
//
// Parameters:
//   - size: the width and height of every layer in pixels
//
// Returns:
//   - []*image.RGBA: the layer images in array-slice order
func (t *TextureLayers) Images(size int) []*image.RGBA {
	out := make([]*image.RGBA, len(t.keys))
	for i, k := range t.keys {
		pattern := image.NewRGBA(image.Rect(0, 0, patternSize, patternSize))
		draw.Draw(pattern, pattern.Bounds(), image.NewUniform(baseColour(k)), image.Point{}, draw.Src)
		if k.Voxel == Grass && k.Face == FaceSide {
			band := image.Rect(0, 0, patternSize, patternSize/4)
			draw.Draw(pattern, band, image.NewUniform(colornames.Forestgreen), image.Point{}, draw.Src)
		}
		speckle(pattern, int64(i))

		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), pattern, pattern.Bounds(), draw.Src, nil)
		out[i] = dst
	}
	return out
}

// DefaultTextureSize is the edge length in texels of every generated texture layer.
const DefaultTextureSize = 16

// StagingData renders the layers and stages them for a texture array upload.
func (t *TextureLayers) StagingData(size int) (*common.TextureArrayStagingData, error) {
	if size <= 0 {
		return nil, fmt.Errorf("voxel: invalid layer size %d", size)
	}
	return common.NewTextureArrayStagingData(t.Images(size))
}

func baseColour(k LayerKey) color.RGBA {
	switch k.Voxel {
	case Grass:
		if k.Face == FaceUp {
			return colornames.Forestgreen
		}
		return colornames.Sienna
	case Dirt:
		return colornames.Sienna
	case Stone:
		return colornames.Slategray
	default:
		return colornames.Magenta
	}
}

// speckle darkens or lightens each pattern pixel by a hashed amount.
func speckle(img *image.RGBA, seed int64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := int(hash2(int64(x), int64(y), seed)%33) - 16
			c := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{R: shift(c.R, d), G: shift(c.G, d), B: shift(c.B, d), A: c.A})
		}
	}
}

func shift(c uint8, d int) uint8 {
	return uint8(min(max(int(c)+d, 0), 255))
}
