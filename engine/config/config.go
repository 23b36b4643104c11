// Package config loads the YAML configuration of the voxel viewer and the shading tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate and wraps every field error.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig `yaml:"window"`
	Render   RenderConfig `yaml:"render"`
	World    WorldConfig  `yaml:"world"`
	Engine   EngineConfig `yaml:"engine"`
	LogLevel string       `yaml:"log_level"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RenderConfig selects the shader program and the presentation settings.
type RenderConfig struct {
	// Variant is a program name accepted by program.ParseVariant.
	Variant string `yaml:"variant"`
	// MSAA is the sample count, 1 or 4.
	MSAA uint32 `yaml:"msaa"`
	VSync bool  `yaml:"vsync"`
	// FrameLimit caps the render loop in frames per second; 0 is uncapped.
	FrameLimit float64 `yaml:"frame_limit"`
	// TextureSize is the edge length in texels of every generated texture layer.
	TextureSize int `yaml:"texture_size"`
}

// WorldConfig drives the noise populator and the chunk manager.
type WorldConfig struct {
	Seed       int64   `yaml:"seed"`
	LoadRadius int     `yaml:"load_radius"`
	BaseHeight int     `yaml:"base_height"`
	Amplitude  float64 `yaml:"amplitude"`
}

type EngineConfig struct {
	TickRate  float64 `yaml:"tick_rate"`
	Profiling bool    `yaml:"profiling"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	noise := voxel.DefaultNoiseSettings(0)
	return Config{
		Window: WindowConfig{Title: "oxy-voxel", Width: 1280, Height: 720},
		Render: RenderConfig{
			Variant:     program.VariantVoxel.String(),
			MSAA:        4,
			VSync:       true,
			TextureSize: voxel.DefaultTextureSize,
		},
		World: WorldConfig{
			Seed:       noise.Seed,
			LoadRadius: 4,
			BaseHeight: noise.BaseHeight,
			Amplitude:  noise.Amplitude,
		},
		Engine:   EngineConfig{TickRate: 60},
		LogLevel: "info",
	}
}

// Load reads and parses a configuration file.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - Config: the parsed configuration, defaults filled for absent keys
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: a parse or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document decodes to io.EOF and leaves the defaults in place
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and joins all failures under ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := c.Variant(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.MSAA != 1 && c.Render.MSAA != 4 {
		errs = append(errs, fmt.Errorf("render.msaa %d is not 1 or 4", c.Render.MSAA))
	}
	if c.Render.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("render.frame_limit %g is negative", c.Render.FrameLimit))
	}
	if c.Render.TextureSize <= 0 {
		errs = append(errs, fmt.Errorf("render.texture_size %d", c.Render.TextureSize))
	}
	if c.World.LoadRadius < 0 {
		errs = append(errs, fmt.Errorf("world.load_radius %d is negative", c.World.LoadRadius))
	}
	if _, err := voxel.NewNoisePopulator(c.NoiseSettings()); err != nil {
		errs = append(errs, err)
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_rate %g", c.Engine.TickRate))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Variant parses Render.Variant.
func (c Config) Variant() (program.Variant, error) {
	return program.ParseVariant(c.Render.Variant)
}

// NoiseSettings returns the populator settings for the world section; the remaining noise
// parameters keep their defaults.
func (c Config) NoiseSettings() voxel.NoiseSettings {
	s := voxel.DefaultNoiseSettings(c.World.Seed)
	s.BaseHeight = c.World.BaseHeight
	s.Amplitude = c.World.Amplitude
	return s
}

// Level parses LogLevel into a slog level.
//
// Returns:
//   - slog.Level: the level
//   - error: an error if the name is not debug, info, warn or error
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
