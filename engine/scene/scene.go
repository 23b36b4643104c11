// Package scene ties one shader program to the chunk world: it registers the program's pipeline,
// uploads the camera uniform, the layer texture array and every chunk mesh, and records one draw
// per visible chunk each frame.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"github.com/Carmen-Shannon/oxy-voxel/engine/world"
)

// Group indices of the textured programs.
const (
	cameraGroup = 0
	layerGroup  = 1
)

// triangleVertexCount is the vertex count of the triangle program's built-in table.
const triangleVertexCount = 3

// ErrNotInitialised is returned by frame methods called before Init.
var ErrNotInitialised = errors.New("scene: not initialised")

// Stats is a snapshot of the scene's chunk and draw counts.
type Stats struct {
	ChunksLoaded   int
	MeshesBuilt    int
	MeshesUploaded int
	// Visible is the number of chunks drawn by the last DrawCalls.
	Visible int
}

type scene struct {
	mu *sync.Mutex

	name        string
	active      bool
	initialised bool

	renderer renderer.Renderer
	camera   camera.Camera
	world    *world.Manager
	program  program.Program
	pipe     pipeline.Pipeline

	pipelineOpts []pipeline.PipelineBuilderOption

	layers        *voxel.TextureLayers
	textureSize   int
	layerProvider bind_group_provider.BindGroupProvider
	cameraBinding int

	meshProviders   map[voxel.Coord]bind_group_provider.BindGroupProvider
	cullingDisabled bool
	visible         int
}

// Scene draws the chunk world with one shader program.
// Update runs on the tick goroutine; Prepare and DrawCalls run on the render goroutine.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// World returns the chunk manager, nil for the triangle program.
	World() *world.Manager

	// Program returns the program the scene draws with.
	Program() program.Program

	// Init registers the program's pipeline and creates the camera and texture array bind groups.
	// Calling it again does nothing.
	//
	// Returns:
	//   - error: error if a GPU resource could not be created
	Init() error

	// Update recomputes the camera matrices and loads and meshes the chunks around the camera target.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last tick in seconds
	//
	// Returns:
	//   - error: the first mesher error
	Update(deltaTime float32) error

	// Prepare uploads the camera uniform and every pending chunk mesh. Must be called before BeginFrame.
	//
	// Returns:
	//   - error: ErrNotInitialised, or the first upload error
	Prepare() error

	// DrawCalls records one draw per visible chunk, or the single triangle draw.
	// Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: ErrNotInitialised, or the first draw error
	DrawCalls() error

	// CullingDisabled returns whether frustum culling of chunks is disabled.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables frustum culling of chunks.
	SetCullingDisabled(disabled bool)

	// Stats returns the current chunk and draw counts.
	Stats() Stats

	// Release frees every GPU resource the scene created.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a Scene. The world and layers may be nil only for the triangle program.
// It panics when a required collaborator is missing.
//
// Parameters:
//   - r: the renderer to draw with
//   - prog: the loaded program
//   - w: the chunk manager
//   - layers: the texture layer table the world was meshed with
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene, not yet initialised
func NewScene(r renderer.Renderer, prog program.Program, w *world.Manager, layers *voxel.TextureLayers, options ...SceneBuilderOption) Scene {
	if r == nil || prog == nil {
		panic("scene: needs a renderer and a program")
	}
	if prog.Variant().Textured() && (w == nil || layers == nil) {
		panic(fmt.Sprintf("scene: program %s needs a world and texture layers", prog.Variant()))
	}
	s := &scene{
		mu:            &sync.Mutex{},
		name:          prog.Variant().String(),
		active:        true,
		renderer:      r,
		world:         w,
		program:       prog,
		layers:        layers,
		textureSize:   voxel.DefaultTextureSize,
		meshProviders: make(map[voxel.Coord]bind_group_provider.BindGroupProvider),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera(camera.WithController(camera.NewCameraController(
			camera.WithTarget(voxel.ChunkWidth/2, 0, voxel.ChunkWidth/2),
		)))
	}
	s.layerProvider = bind_group_provider.NewBindGroupProvider(s.name + "_layers")
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) World() *world.Manager {
	return s.world
}

func (s *scene) Program() program.Program {
	return s.program
}

func (s *scene) CullingDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialised {
		return nil
	}

	p := pipeline.FromProgram(s.program, s.pipelineOpts...)
	if err := s.renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	// another scene may have registered the same program first
	if cached := s.renderer.Pipeline(p.PipelineKey()); cached != nil {
		p = cached
	}
	s.pipe = p

	if !s.program.Variant().Textured() {
		s.initialised = true
		common.Logger().Info("scene ready", "scene", s.name, "program", s.program.Variant())
		return nil
	}

	layouts := renderer.BindGroupLayouts(p)
	if len(layouts) <= layerGroup {
		return fmt.Errorf("scene %s: program %s binds %d groups, want %d", s.name, s.program.Variant(), len(layouts), layerGroup+1)
	}
	vs := p.Shader(shader.ShaderTypeVertex)
	fs := p.Shader(shader.ShaderTypeFragment)

	s.cameraBinding = 0
	if b, ok := vs.BindGroupFromVarName(cameraGroup, "camera"); ok {
		s.cameraBinding = b
	}
	if err := s.renderer.InitBindGroup(s.camera.BindGroupProvider(), layouts[cameraGroup]); err != nil {
		return fmt.Errorf("scene %s: camera bind group: %w", s.name, err)
	}

	textureBinding, ok := fs.BindGroupFromVarName(layerGroup, "t_layers")
	if !ok {
		return fmt.Errorf("scene %s: program %s has no t_layers binding", s.name, s.program.Variant())
	}
	samplerBinding, ok := fs.BindGroupFromVarName(layerGroup, "s_layers")
	if !ok {
		return fmt.Errorf("scene %s: program %s has no s_layers binding", s.name, s.program.Variant())
	}
	staging, err := s.layers.StagingData(s.textureSize)
	if err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	if err := s.renderer.InitTextureArrayView(s.layerProvider, textureBinding, staging); err != nil {
		return fmt.Errorf("scene %s: texture array: %w", s.name, err)
	}
	if err := s.renderer.InitSampler(s.layerProvider, samplerBinding, common.SamplerStagingData{}); err != nil {
		return fmt.Errorf("scene %s: sampler: %w", s.name, err)
	}
	if err := s.renderer.InitBindGroup(s.layerProvider, layouts[layerGroup]); err != nil {
		return fmt.Errorf("scene %s: layer bind group: %w", s.name, err)
	}

	s.initialised = true
	common.Logger().Info("scene ready",
		"scene", s.name,
		"program", s.program.Variant(),
		"layers", staging.LayerCount(),
		"texture_size", s.textureSize,
	)
	return nil
}

func (s *scene) Update(deltaTime float32) error {
	s.camera.Update()
	if s.world == nil {
		return nil
	}
	ctrl := s.camera.Controller()
	if ctrl == nil {
		return nil
	}
	built, err := s.world.Update(ctrl.Target())
	if built > 0 {
		common.Logger().Debug("chunks meshed", "scene", s.Name(), "built", built, "loaded", s.world.ChunksLoaded())
	}
	return err
}

func (s *scene) Prepare() error {
	s.mu.Lock()
	initialised := s.initialised
	s.mu.Unlock()
	if !initialised {
		return ErrNotInitialised
	}
	if !s.program.Variant().Textured() {
		return nil
	}

	uniform := s.camera.Uniform()
	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		bind_group_provider.UniformWrite(s.camera.BindGroupProvider(), s.cameraBinding, &uniform),
	})

	n, err := s.world.ResolveUploads(s.upload)
	if n > 0 {
		common.Logger().Debug("chunk meshes uploaded", "scene", s.Name(), "uploaded", n)
	}
	return err
}

// upload creates the GPU buffers of one chunk mesh, replacing any earlier mesh of the chunk.
// Meshes without faces are recorded as uploaded with nothing to draw.
func (s *scene) upload(mesh *voxel.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.meshProviders[mesh.Coord]; ok {
		old.Release()
		delete(s.meshProviders, mesh.Coord)
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	provider := bind_group_provider.NewBindGroupProvider("chunk_" + mesh.Coord.String())
	layout := s.program.Variant().Layout()
	if err := s.renderer.InitMeshBuffers(provider, mesh.VertexBytesFor(layout), len(mesh.Vertices), mesh.IndexBytes(), len(mesh.Indices)); err != nil {
		provider.Release()
		return err
	}
	s.meshProviders[mesh.Coord] = provider
	return nil
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialised {
		return ErrNotInitialised
	}

	key := s.pipe.PipelineKey()
	if !s.program.Variant().Textured() {
		s.visible = 0
		return s.renderer.Draw(key, triangleVertexCount, nil)
	}

	coords := make([]voxel.Coord, 0, len(s.meshProviders))
	for c := range s.meshProviders {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	if !s.cullingDisabled {
		coords = VisibleChunks(s.camera.Frustum(), coords, s.world.Bounds)
	}

	groups := []bind_group_provider.BindGroupProvider{s.camera.BindGroupProvider(), s.layerProvider}
	s.visible = 0
	for _, c := range coords {
		if err := s.renderer.DrawCall(key, s.meshProviders[c], groups); err != nil {
			return fmt.Errorf("scene %s: draw chunk %s: %w", s.name, c, err)
		}
		s.visible++
	}
	return nil
}

func (s *scene) Stats() Stats {
	s.mu.Lock()
	st := Stats{MeshesUploaded: len(s.meshProviders), Visible: s.visible}
	s.mu.Unlock()
	if s.world != nil {
		st.ChunksLoaded = s.world.ChunksLoaded()
		st.MeshesBuilt = s.world.MeshesLoaded()
	}
	return st
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c, p := range s.meshProviders {
		p.Release()
		delete(s.meshProviders, c)
	}
	s.layerProvider.Release()
	s.camera.BindGroupProvider().Release()
	s.initialised = false
}

// VisibleChunks filters chunk coordinates down to those whose bounds intersect the frustum,
// keeping their order.
//
// Parameters:
//   - frustum: the camera frustum
//   - coords: the candidate chunks
//   - bounds: returns the world-space box of a chunk
//
// Returns:
//   - []voxel.Coord: the visible chunks
func VisibleChunks(frustum common.Frustum, coords []voxel.Coord, bounds func(voxel.Coord) common.AABB) []voxel.Coord {
	out := make([]voxel.Coord, 0, len(coords))
	for _, c := range coords {
		if frustum.IntersectsAABB(bounds(c)) {
			out = append(out, c)
		}
	}
	return out
}

func compareCoords(a, b voxel.Coord) int {
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Z - b.Z
}
