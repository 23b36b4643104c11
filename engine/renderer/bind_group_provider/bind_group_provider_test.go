package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedBytes []byte

func (f fixedBytes) Marshal() []byte { return f }

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("chunk_0_0")

	assert.Equal(t, "chunk_0_0", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Zero(t, p.ArrayLayers())
	assert.Zero(t, p.IndexCount())
	assert.Zero(t, p.VertexCount())
}

func TestCountsAndRelease(t *testing.T) {
	p := NewBindGroupProvider("layers")
	p.SetTextureView(0, nil, 9)
	p.SetVertexBuffer(nil, 24)
	p.SetIndexBuffer(nil, 36)

	assert.Equal(t, uint32(9), p.ArrayLayers())
	assert.Equal(t, 24, p.VertexCount())
	assert.Equal(t, 36, p.IndexCount())

	// nil resources are skipped, counts are reset
	p.Release()
	assert.Zero(t, p.ArrayLayers())
	assert.Zero(t, p.VertexCount())
	assert.Zero(t, p.IndexCount())
	assert.Equal(t, "layers", p.Label())
}

func TestUniformWrite(t *testing.T) {
	p := NewBindGroupProvider("camera")
	w := UniformWrite(p, 0, fixedBytes{1, 2, 3, 4})

	assert.Same(t, p, w.Provider)
	assert.Equal(t, 0, w.Binding)
	assert.Zero(t, w.Offset)
	assert.Equal(t, []byte{1, 2, 3, 4}, w.Data)
}
