package scene

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier. It defaults to the program name.
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCamera sets the scene's camera. Without it the scene orbits the centre of chunk (0, 0).
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithTextureSize sets the edge length in pixels of each texture array layer. Non-positive values keep
// voxel.DefaultTextureSize.
//
// Parameters:
//   - size: the layer width and height
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTextureSize(size int) SceneBuilderOption {
	return func(s *scene) {
		if size > 0 {
			s.textureSize = size
		}
	}
}

// WithCullingDisabled disables frustum culling of chunks, drawing every uploaded mesh each frame.
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithPipelineOptions passes extra options to the program's pipeline, such as a cull mode.
func WithPipelineOptions(opts ...pipeline.PipelineBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.pipelineOpts = append(s.pipelineOpts, opts...)
	}
}
