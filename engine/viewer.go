package engine

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
	"github.com/Carmen-Shannon/oxy-voxel/engine/world"
)

// NewFromConfig builds a ready-to-run viewer: the window, the renderer, one scene drawing the noise
// world with the configured program, and camera controls bound to the window.
// It must be called on the main goroutine, which Run then blocks.
//
// Parameters:
//   - cfg: a validated configuration
//
// Returns:
//   - Engine: the engine with its scene registered at key 0
//   - error: error if the configuration is invalid or the scene cannot be initialised
func NewFromConfig(cfg config.Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	common.SetLogger(common.NewLogger(os.Stderr, level))

	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}
	prog, err := program.Load(variant)
	if err != nil {
		return nil, err
	}
	msaa, err := renderer.ParseMSAA(cfg.Render.MSAA)
	if err != nil {
		return nil, err
	}

	w := window.NewWindow(
		window.WithTitle(fmt.Sprintf("%s | %s", cfg.Window.Title, variant)),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		w,
		renderer.WithMSAA(msaa),
		renderer.WithPresentMode(renderer.PresentModeFor(cfg.Render.VSync)),
	)

	layers := voxel.DefaultTextureLayers()
	var mgr *world.Manager
	if variant.Textured() {
		pop, err := voxel.NewNoisePopulator(cfg.NoiseSettings())
		if err != nil {
			return nil, err
		}
		mgr = world.NewManager(pop, voxel.NewMesher(layers), world.WithLoadRadius(cfg.World.LoadRadius))
	}

	radius := float32(voxel.ChunkWidth * (cfg.World.LoadRadius + 1))
	cam := camera.NewCamera(
		camera.WithAspect(float32(w.Width())/float32(max(w.Height(), 1))),
		camera.WithController(camera.NewCameraController(
			camera.WithTarget(voxel.ChunkWidth/2, float32(cfg.World.BaseHeight), voxel.ChunkWidth/2),
			camera.WithRadius(radius),
			camera.WithElevation(0.6),
		)),
	)

	sc := scene.NewScene(r, prog, mgr, layers,
		scene.WithCamera(cam),
		scene.WithTextureSize(cfg.Render.TextureSize),
	)
	if err := sc.Init(); err != nil {
		return nil, err
	}

	e := NewEngine(
		WithWindow(w),
		WithScene(0, sc),
		WithTickRate(cfg.Engine.TickRate),
		WithProfiling(cfg.Engine.Profiling),
		WithRenderFrameLimit(cfg.Render.FrameLimit),
	)
	controls := BindControls(w, cam.Controller())
	e.SetTickCallback(func(float32) {
		controls.Apply()
	})

	common.Logger().Info("viewer ready",
		"program", variant,
		"load_radius", cfg.World.LoadRadius,
		"seed", cfg.World.Seed,
	)
	return e, nil
}
