package common

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce[int]())
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.5), float32(100)
	proj := Perspective(mgl32.DegToRad(60), 1.5, near, far)

	nearClip := proj.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	farClip := proj.Mul4x1(mgl32.Vec4{0, 0, -far, 1})

	assert.InDelta(t, 0.0, nearClip.Z()/nearClip.W(), 1e-5)
	assert.InDelta(t, 1.0, farClip.Z()/farClip.W(), 1e-5)
}

func TestFrustumIntersectsAABB(t *testing.T) {
	proj := Perspective(mgl32.DegToRad(60), 1, 0.1, 50)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul4(view))

	tests := []struct {
		name    string
		box     AABB
		visible bool
	}{
		{"ahead", AABB{Min: mgl32.Vec3{-1, -1, -11}, Max: mgl32.Vec3{1, 1, -9}}, true},
		{"behind", AABB{Min: mgl32.Vec3{-1, -1, 5}, Max: mgl32.Vec3{1, 1, 7}}, false},
		{"beyond far", AABB{Min: mgl32.Vec3{-1, -1, -90}, Max: mgl32.Vec3{1, 1, -80}}, false},
		{"far left", AABB{Min: mgl32.Vec3{-60, -1, -11}, Max: mgl32.Vec3{-50, 1, -9}}, false},
		{"straddling near plane", AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, f.IntersectsAABB(tt.box))
		})
	}
}

func TestNewTextureArrayStagingData(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	a.Set(1, 1, color.RGBA{R: 255, A: 255})

	staged, err := NewTextureArrayStagingData([]*image.RGBA{a, b})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.LayerCount())
	assert.Equal(t, uint32(2), staged.Width)
	assert.Len(t, staged.Layers[0], 16)
	assert.Equal(t, byte(255), staged.Layers[0][12])

	_, err = NewTextureArrayStagingData([]*image.RGBA{a, image.NewRGBA(image.Rect(0, 0, 4, 4))})
	assert.Error(t, err)

	_, err = NewTextureArrayStagingData(nil)
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, ParseLogLevel("warn")))
	Logger().Info("hidden")
	Logger().Warn("shown", "chunk", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "chunk=3")

	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("nonsense"))
}
