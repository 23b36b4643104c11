package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately, lowest latency with possible tearing.
	PresentModeUncapped
)

// PresentModeFor maps a vsync setting to a PresentMode.
func PresentModeFor(vsync bool) PresentMode {
	if vsync {
		return PresentModeVSync
	}
	return PresentModeUncapped
}

// wgpuPresentMode maps a PresentMode to the surface present mode.
func wgpuPresentMode(mode PresentMode) wgpu.PresentMode {
	if mode == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// MSAASampleCount is the sample count of the main render pass. WebGPU guarantees 1 and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisampling.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisampling. This is the default.
	MSAA4x MSAASampleCount = 4
)

// ParseMSAA converts a configured sample count.
//
// Parameters:
//   - samples: 1 or 4
//
// Returns:
//   - MSAASampleCount: the sample count
//   - error: an error for any other value
func ParseMSAA(samples uint32) (MSAASampleCount, error) {
	switch MSAASampleCount(samples) {
	case MSAAOff, MSAA4x:
		return MSAASampleCount(samples), nil
	default:
		return MSAAOff, fmt.Errorf("renderer: unsupported msaa sample count %d", samples)
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
