package renderer

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPipelineNotFound is returned by draw calls naming a pipeline that was never registered.
var ErrPipelineNotFound = errors.New("renderer: pipeline not found")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColour          wgpu.Color
}

// Renderer is the GPU side of the voxel engine. It caches one render pipeline per shader program,
// uploads chunk meshes, the camera uniform and the texture array, and records draws into a single
// render pass per frame.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key, nil if not found.
	//
	// Parameters:
	//   - key: the pipeline key, the program name for program pipelines
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline, or nil
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU render pipeline of each Pipeline and caches it by PipelineKey.
	// Keys already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and the MSAA and depth targets for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads a mesh's vertex and index bytes into new GPU buffers held by provider.
	// indexData may be empty for meshes drawn without an index buffer.
	//
	// Parameters:
	//   - provider: the provider to store the buffers on
	//   - vertexData: the marshalled vertex records
	//   - vertexCount: the number of vertex records
	//   - indexData: the marshalled uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error

	// InitBindGroup creates a bind group from a layout descriptor. Uniform and storage buffers missing
	// from the provider are allocated at their minimum binding size. Texture views and samplers must be
	// initialised first.
	//
	// Parameters:
	//   - provider: the provider to store the bind group on
	//   - descriptor: the layout descriptor, usually reflected from a shader
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureArrayView uploads every layer of the staging data into one 2D array texture and
	// stores a 2DArray view of it on provider.
	//
	// Parameters:
	//   - provider: the provider to store the view on
	//   - binding: the binding index of the texture
	//   - stagingData: the layer pixels
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureArrayView(provider bind_group_provider.BindGroupProvider, binding int, stagingData *common.TextureArrayStagingData) error

	// InitSampler creates a sampler and stores it on provider at binding.
	//
	// Parameters:
	//   - provider: the provider to store the sampler on
	//   - binding: the binding index of the sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every buffer write. Writes to bindings without a buffer are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawCall records an indexed draw of a mesh within the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the key of the registered pipeline
	//   - meshProvider: the provider holding vertex and index buffers
	//   - bindGroups: providers whose bind groups are set at groups 0..n-1
	//
	// Returns:
	//   - error: ErrPipelineNotFound if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// Draw records a non-indexed draw of vertexCount vertices without a vertex buffer, as used by the
	// triangle program whose vertices come from a table indexed by vertex_index.
	//
	// Parameters:
	//   - pipelineKey: the key of the registered pipeline
	//   - vertexCount: the number of vertices to draw
	//   - bindGroups: providers whose bind groups are set at groups 0..n-1
	//
	// Returns:
	//   - error: ErrPipelineNotFound if the pipeline is not registered
	Draw(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the command buffer. Call Present afterwards.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the window's surface.
// It panics if no adapter or device can be acquired, as nothing can be drawn without one.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColour:   wgpu.Color{R: 0.53, G: 0.81, B: 0.92, A: 1.0},
	}

	// options first so the adapter request sees forceFallbackAdapter
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColour)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	common.Logger().Info("renderer ready", "msaa", uint32(msaa), "width", window.Width(), "height", window.Height())
	return r
}

// BindGroupLayouts returns the dense per-group layouts a pipeline is created with. Bind groups made
// from these descriptors are compatible with the pipeline.
//
// Parameters:
//   - p: the pipeline
//
// Returns:
//   - []wgpu.BindGroupLayoutDescriptor: one descriptor per group index
func BindGroupLayouts(p pipeline.Pipeline) []wgpu.BindGroupLayoutDescriptor {
	vs := p.Shader(shader.ShaderTypeVertex)
	fs := p.Shader(shader.ShaderTypeFragment)
	if vs == nil || fs == nil {
		return nil
	}
	return mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("renderer: register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, vertexCount, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) InitTextureArrayView(provider bind_group_provider.BindGroupProvider, binding int, stagingData *common.TextureArrayStagingData) error {
	return r.backend.InitTextureArrayView(provider, binding, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, binding, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) lookup(pipelineKey string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	return p, nil
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) Draw(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.backend.Draw(p, vertexCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
