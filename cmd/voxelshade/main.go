// Command voxelshade inspects the voxel shader programs without a GPU: it validates them with naga,
// decodes and packs vertex attributes, rasterises a world on the CPU and watches WGSL files for edits.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCommand assembles the command tree.
func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "voxelshade",
		Short:        "Validate, decode and preview the voxel shader programs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			common.SetLogger(common.NewLogger(cmd.ErrOrStderr(), common.ParseLogLevel(logLevel)))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		newValidateCommand(),
		newDecodeCommand(),
		newPackCommand(),
		newRenderCommand(),
		newWatchCommand(),
	)
	return root
}
