// Command voxelview opens a window and draws a noise world with one of the voxel shader programs.
//
// Controls: W/A/S/D pan across the ground, Q/E raise and lower the view, shift pans faster,
// left or middle drag orbits, right drag pans, the scroll wheel zooms, Escape quits.
package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-voxel/engine"
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "voxelview",
		Short:        "Draw a voxel world on the GPU",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			e, err := engine.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			e.Run()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringP("config", "c", "", "YAML configuration file; defaults are used when empty")
	f.String("variant", "", "program to draw, overriding render.variant")
	f.Int64("seed", 0, "terrain seed, overriding world.seed")
	f.Int("radius", 0, "chunk load radius, overriding world.load_radius")
	f.Bool("profile", false, "log frame statistics, overriding engine.profiling")
	return cmd
}

// loadConfig reads the configuration file named by --config and applies the override flags the
// user set explicitly.
//
// Parameters:
//   - cmd: the parsed command
//
// Returns:
//   - config.Config: the validated configuration
//   - error: a read, parse or validation error
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	if flags.Changed("variant") {
		cfg.Render.Variant, _ = flags.GetString("variant")
	}
	if flags.Changed("seed") {
		cfg.World.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("radius") {
		cfg.World.LoadRadius, _ = flags.GetInt("radius")
	}
	if flags.Changed("profile") {
		cfg.Engine.Profiling, _ = flags.GetBool("profile")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
