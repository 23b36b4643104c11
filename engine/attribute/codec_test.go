package attribute

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	// every ambient value against a spread of layers, including both ends
	layers := []uint16{0, 1, 2, 255, 256, 4095, 32767, 32768, 65534, 65535}
	for l := 0; l <= math.MaxUint16; l += 997 {
		layers = append(layers, uint16(l))
	}
	for _, l := range layers {
		for a := math.MinInt16; a <= math.MaxInt16; a++ {
			d := Decode(Pack(l, int16(a)))
			if d.Layer != uint32(l) || d.Ambient != int32(a) {
				t.Fatalf("round trip (%d, %d) gave (%d, %d)", l, a, d.Layer, d.Ambient)
			}
		}
	}
}

func TestLayerLaw(t *testing.T) {
	for _, p := range []uint32{0, 1, 0xFFFF, 0x10000, 0x0002FFFF, 0x7FFF8000, 0xFFFFFFFF, 0xDEADBEEF} {
		assert.Equal(t, p>>16, Decode(p).Layer, "packed %#x", p)
	}
}

func TestAmbientFloatBoundaries(t *testing.T) {
	tests := []struct {
		raw  int16
		want float32
	}{
		{math.MinInt16, -32768.0 / 3.0},
		{-1, -1.0 / 3.0},
		{0, 0},
		{1, 1.0 / 3.0},
		{3, 1},
		{math.MaxInt16, 32767.0 / 3.0},
	}
	for _, tt := range tests {
		got := Decode(Pack(7, tt.raw)).AmbientFloat()
		assert.InDelta(t, tt.want, got, 1e-3, "raw %d", tt.raw)
	}
}

func TestDecodeScenario(t *testing.T) {
	d := Decode(0x0002FFFF)
	assert.Equal(t, uint32(2), d.Layer)
	assert.Equal(t, int32(-1), d.Ambient)
	assert.InDelta(t, -0.3333, d.AmbientFloat(), 1e-4)
	assert.Equal(t, uint32(0xFFFFFFFF), d.AmbientCode())
}

func TestPackLayout(t *testing.T) {
	assert.Equal(t, uint32(0x0002FFFF), Pack(2, -1))
	assert.Equal(t, uint32(0x00050003), Pack(5, 3))
	assert.Equal(t, uint32(0xFFFF8000), Pack(0xFFFF, math.MinInt16))
}

func TestPackChecked(t *testing.T) {
	p, err := PackChecked(9, -2)
	require.NoError(t, err)
	assert.Equal(t, Pack(9, -2), p)

	_, err = PackChecked(65536, 0)
	assert.ErrorIs(t, err, ErrLayerRange)
	_, err = PackChecked(-1, 0)
	assert.ErrorIs(t, err, ErrLayerRange)
	_, err = PackChecked(0, 32768)
	assert.ErrorIs(t, err, ErrAmbientRange)
	_, err = PackChecked(0, -32769)
	assert.ErrorIs(t, err, ErrAmbientRange)
}

func TestVertexMarshal(t *testing.T) {
	v := PackedVertex{
		Position:       [3]float32{1, 2, 3},
		Normal:         [3]float32{0, 1, 0},
		TextureAmbient: Pack(4, 2),
	}
	buf := v.Marshal()
	require.Len(t, buf, VertexSize)
	assert.Equal(t, math.Float32bits(2), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, math.Float32bits(1), binary.LittleEndian.Uint32(buf[16:]))
	assert.Equal(t, Pack(4, 2), binary.LittleEndian.Uint32(buf[24:]))

	iv := IndexedVertex{TextureIndex: 11}
	assert.Equal(t, uint32(11), binary.LittleEndian.Uint32(iv.Marshal()[24:]))
}

func TestMarshalVertices(t *testing.T) {
	verts := []PackedVertex{{TextureAmbient: 1}, {TextureAmbient: 2}}
	buf := MarshalVertices(verts)
	require.Len(t, buf, 2*VertexSize)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[VertexSize+24:]))

	idx := MarshalIndices([]uint32{0, 1, 2})
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, idx)
}

func TestLayoutStride(t *testing.T) {
	assert.Equal(t, uint64(28), Stride(LayoutPacked))
	assert.Equal(t, uint64(28), Stride(LayoutIndexed))
	assert.Equal(t, uint64(0), Stride(LayoutNone))
	assert.Equal(t, "packed", LayoutPacked.String())
	assert.Contains(t, PackedVertexSource, "texture_ambient: u32")
	assert.Contains(t, IndexedVertexSource, "texture_index: u32")
}
