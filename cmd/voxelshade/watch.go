package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-validate WGSL programs in a directory whenever they are written",
		Long: "Watches a directory for writes to <variant>.wgsl files (mesh.wgsl, voxel.wgsl, ...) and\n" +
			"recompiles each one against the interface of the program it replaces. Stops on interrupt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchPrograms(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

// watchPrograms validates every program file in dir once, then again on each write, until ctx ends.
func watchPrograms(ctx context.Context, dir string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.wgsl"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		reportProgramFile(w, path)
	}
	common.Logger().Info("watching programs", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !strings.HasSuffix(event.Name, ".wgsl") {
				continue
			}
			reportProgramFile(w, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			common.Logger().Warn("watcher error", "err", err)
		}
	}
}

// variantForFile maps a program file name such as voxel_bands.wgsl to its variant.
func variantForFile(path string) (program.Variant, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return program.ParseVariant(stem)
}

// loadProgramFile compiles a program file from disk as the variant its name selects.
func loadProgramFile(path string) (program.Program, error) {
	v, err := variantForFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return program.LoadSource(v, string(raw))
}

// reportProgramFile writes one status line for a program file.
func reportProgramFile(w io.Writer, path string) {
	p, err := loadProgramFile(path)
	if err != nil {
		fmt.Fprintf(w, "FAIL %s: %v\n", filepath.Base(path), err)
		return
	}
	fmt.Fprintf(w, "ok   %s: %d outputs, %d issues\n", filepath.Base(path), len(p.Interface()), len(p.Issues()))
}
