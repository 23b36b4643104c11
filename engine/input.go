package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
)

// fastPanFactor multiplies the pan step while shift is held.
const fastPanFactor = 4

// Controls maps window input onto an orbit camera controller.
// W/S and A/D pan the target across the ground, Q/E raise and lower it, shift pans faster.
// Dragging with the left or middle button orbits, dragging with the right button pans, and the
// scroll wheel zooms. Key state is applied once per tick by Apply.
type Controls struct {
	mu   sync.Mutex
	ctrl camera.CameraController
	keys map[uint32]bool

	dragging bool
	panning  bool
	lastX    int32
	lastY    int32
}

// BindControls registers input callbacks on w that drive ctrl.
//
// Parameters:
//   - w: the window delivering input
//   - ctrl: the camera controller to drive
//
// Returns:
//   - *Controls: the bound controls; call Apply every tick
func BindControls(w window.Window, ctrl camera.CameraController) *Controls {
	c := &Controls{ctrl: ctrl, keys: make(map[uint32]bool)}

	w.SetKeyDownCallback(func(keyCode uint32) {
		c.mu.Lock()
		c.keys[keyCode] = true
		c.mu.Unlock()
	})
	w.SetKeyUpCallback(func(keyCode uint32) {
		c.mu.Lock()
		delete(c.keys, keyCode)
		c.mu.Unlock()
	})
	w.SetMouseButtonCallback(c.mouseButton)
	w.SetMouseMoveCallback(c.mouseMove)
	w.SetScrollCallback(func(delta float32) {
		c.ctrl.Zoom(delta)
	})
	return c
}

func (c *Controls) mouseButton(button window.MouseButton, pressed bool, x, y int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch button {
	case window.MouseButtonLeft, window.MouseButtonMiddle:
		c.dragging = pressed
	case window.MouseButtonRight:
		c.panning = pressed
	}
	c.lastX, c.lastY = x, y
}

func (c *Controls) mouseMove(x, y int32) {
	c.mu.Lock()
	dx, dy := float32(x-c.lastX), float32(y-c.lastY)
	c.lastX, c.lastY = x, y
	dragging, panning := c.dragging, c.panning
	c.mu.Unlock()

	switch {
	case dragging:
		c.ctrl.Orbit(dx, dy)
	case panning:
		c.ctrl.PanRight(-dx * c.ctrl.MouseSensitivity() * c.ctrl.Radius())
		c.ctrl.PanForward(dy * c.ctrl.MouseSensitivity() * c.ctrl.Radius())
	}
}

// Apply pans the controller by the keys currently held.
func (c *Controls) Apply() {
	c.mu.Lock()
	held := func(k uint32) bool { return c.keys[k] }
	var right, forward, up float32
	if held(common.KeyW) {
		forward++
	}
	if held(common.KeyS) {
		forward--
	}
	if held(common.KeyD) {
		right++
	}
	if held(common.KeyA) {
		right--
	}
	if held(common.KeyQ) {
		up++
	}
	if held(common.KeyE) {
		up--
	}
	if held(common.KeyLeftShift) || held(common.KeyRightShift) {
		right, forward, up = right*fastPanFactor, forward*fastPanFactor, up*fastPanFactor
	}
	c.mu.Unlock()

	if right != 0 {
		c.ctrl.PanRight(right)
	}
	if forward != 0 {
		c.ctrl.PanForward(forward)
	}
	if up != 0 {
		c.ctrl.PanUp(up)
	}
}
