package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a perspective projection matrix for the WebGPU clip space, where depth spans [0, 1].
// mgl32.Perspective targets the OpenGL [-1, 1] depth range, so its depth row is remapped here.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix, column-major
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	// z' = 0.5*z + 0.5*w
	clip := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return clip.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}
