package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerOrbitPosition(t *testing.T) {
	cc := NewCameraController(WithRadius(10), WithElevation(0), WithAzimuth(0), WithTarget(1, 2, 3))
	assert.True(t, cc.Position().ApproxEqualThreshold(mgl32.Vec3{1, 2, 13}, 1e-5))

	cc.SetElevation(math32.Pi / 2)
	// clamped just short of straight up
	assert.Less(t, cc.Elevation(), math32.Pi/2)
	assert.InDelta(t, 10, cc.Position().Sub(cc.Target()).Len(), 1e-4)
}

func TestControllerZoomClamps(t *testing.T) {
	cc := NewCameraController(WithRadius(10), WithRadiusBounds(5, 20), WithZoomSpeed(1))
	cc.Zoom(100)
	assert.Equal(t, float32(5), cc.Radius())
	cc.Zoom(-100)
	assert.Equal(t, float32(20), cc.Radius())
}

func TestControllerPanMovesTarget(t *testing.T) {
	cc := NewCameraController(WithAzimuth(0), WithPanSpeed(2))
	cc.PanForward(1)
	// azimuth 0 looks down -Z
	assert.True(t, cc.Target().ApproxEqualThreshold(mgl32.Vec3{0, 0, -2}, 1e-5))
	cc.PanRight(1)
	assert.True(t, cc.Target().ApproxEqualThreshold(mgl32.Vec3{2, 0, -2}, 1e-5))
	cc.PanUp(0.5)
	assert.InDelta(t, 1, cc.Target().Y(), 1e-6)
}

func TestCameraProjectsTargetToCentre(t *testing.T) {
	cc := NewCameraController(WithTarget(8, 64, 8), WithRadius(50))
	c := NewCamera(WithController(cc), WithAspect(16.0/9.0))

	clip := c.ViewProjectionMatrix().Mul4x1(cc.Target().Vec4(1))
	require.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
	depth := clip.Z() / clip.W()
	assert.Greater(t, depth, float32(0))
	assert.Less(t, depth, float32(1))
}

func TestCameraSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera()
	c.SetAspect(2)
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestCameraUniformMarshal(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	u := c.Uniform()
	buf := u.Marshal()
	require.Len(t, buf, GPUCameraUniformSize)
	vp := c.ViewProjectionMatrix()
	for i := range 16 {
		assert.Equal(t, math.Float32bits(vp[i]), binary.LittleEndian.Uint32(buf[i*4:]))
	}
	assert.Contains(t, GPUCameraUniformSource, "view_proj: mat4x4<f32>")
}

func TestCameraFrustumContainsTarget(t *testing.T) {
	cc := NewCameraController(WithTarget(0, 0, 0), WithRadius(30))
	c := NewCamera(WithController(cc))
	f := c.Frustum()
	assert.True(t, f.IntersectsAABB(common.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}))
}
