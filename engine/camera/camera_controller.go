package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController supplies the eye position and look-at target for a Camera.
// The controller orbits a target point on a sphere and can pan that target
// across the ground plane, which suits inspecting a field of chunks.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the eye position in world space.
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// SetTarget moves the orbit centre and recomputes the eye position.
	SetTarget(target mgl32.Vec3)

	// Zoom changes the orbit radius by delta * ZoomSpeed, clamped to the radius bounds.
	// Positive deltas move the eye closer.
	Zoom(delta float32)
}

type orbitCameraController interface {
	// OrbitLeft, OrbitRight, OrbitUp and OrbitDown step the orbit by OrbitSpeed radians.
	OrbitLeft()
	OrbitRight()
	OrbitUp()
	OrbitDown()

	// Orbit rotates by mouse deltas scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx: horizontal mouse delta in pixels
	//   - dy: vertical mouse delta in pixels
	Orbit(dx, dy float32)

	Radius() float32
	SetRadius(radius float32)
	Azimuth() float32
	Elevation() float32
	SetElevation(elevation float32)

	OrbitSpeed() float32
	MouseSensitivity() float32
	ZoomSpeed() float32
}

type planarCameraController interface {
	// PanRight moves the target along the camera's horizontal right axis.
	PanRight(delta float32)

	// PanForward moves the target along the camera's view direction projected onto the ground plane.
	PanForward(delta float32)

	// PanUp moves the target vertically.
	PanUp(delta float32)

	PanSpeed() float32
}
