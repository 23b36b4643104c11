package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// errNotOpen is returned by platform calls made before the GLFW window exists.
var errNotOpen = errors.New("window: not open")

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window without a client API, since wgpu owns the surface,
// and routes its input into the engineWindow callbacks.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("glfw create window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{parent: w, window: win, running: true}
	gw.install()
	w.internalWindow = gw

	// high-DPI framebuffers differ from the requested size; the surface needs pixels
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// install registers every GLFW callback the engine listens to.
func (gw *glfwWindow) install() {
	gw.window.SetKeyCallback(gw.key)
	gw.window.SetMouseButtonCallback(gw.mouseButton)
	gw.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if cb := gw.parent.onMouseMove; cb != nil {
			cb(int32(x), int32(y))
		}
	})
	gw.window.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if cb := gw.parent.onScroll; cb != nil {
			cb(float32(dy))
		}
	})
	gw.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gw.parent.width, gw.parent.height = width, height
		if cb := gw.parent.onResize; cb != nil {
			cb(width, height)
		}
	})
}

// key closes the window on Escape and forwards every other key as down or up.
func (gw *glfwWindow) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	code := uint32(key)
	if code == common.KeyEsc && action == glfw.Press {
		gw.running = false
		gw.window.SetShouldClose(true)
		return
	}

	w := gw.parent
	if action == glfw.Release {
		if w.onKeyUp != nil {
			w.onKeyUp(code)
		}
		return
	}
	if w.onKeyDown != nil {
		w.onKeyDown(code)
	}
}

func (gw *glfwWindow) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	mb, ok := mouseButtonOf(button)
	cb := gw.parent.onMouseButton
	if !ok || cb == nil || action == glfw.Repeat {
		return
	}
	x, y := gw.window.GetCursorPos()
	cb(mb, action == glfw.Press, int32(x), int32(y))
}

// mouseButtonOf maps the GLFW buttons the viewer uses; other buttons are ignored.
func mouseButtonOf(button glfw.MouseButton) (MouseButton, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return MouseButtonLeft, true
	case glfw.MouseButtonRight:
		return MouseButtonRight, true
	case glfw.MouseButtonMiddle:
		return MouseButtonMiddle, true
	default:
		return 0, false
	}
}

// platform returns the GLFW state behind w, or nil before the window is opened.
func platform(w *engineWindow) *glfwWindow {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.(*glfwWindow)
}

func platformSetTitle(w *engineWindow, title string) {
	if gw := platform(w); gw != nil {
		gw.window.SetTitle(title)
	}
}

// platformGetSurfaceDescriptor builds the wgpu surface descriptor for the native window through
// the wgpuglfw bridge.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := platform(w)
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformIsRunningCheck reports whether the window is open and nobody asked it to close.
//
// Parameters:
//   - w: the engineWindow to check
//
// Returns:
//   - bool: true while the window is still running
func platformIsRunningCheck(w *engineWindow) bool {
	gw := platform(w)
	return gw != nil && gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the window and terminates GLFW.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: errNotOpen if the window was never opened
func platformCloseWindow(w *engineWindow) error {
	gw := platform(w)
	if gw == nil {
		return errNotOpen
	}
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessMessages polls pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
