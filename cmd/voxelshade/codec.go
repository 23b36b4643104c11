package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <packed>",
		Short: "Decode a packed texture/ambient attribute",
		Long:  "Decodes a packed attribute given in decimal or with a 0x, 0o or 0b prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packed, err := parsePacked(args[0])
			if err != nil {
				return err
			}
			writeDecoded(cmd.OutOrStdout(), packed)
			return nil
		},
	}
}

// newPackCommand parses its own arguments so a negative ambient such as -1 is read as a value
// rather than a shorthand flag.
func newPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "pack <layer> <ambient>",
		Short:              "Pack a texture layer and a signed ambient value",
		Example:            "  voxelshade pack 2 -1",
		DisableFlagParsing: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if helpRequested(args) {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpRequested(args) {
				return cmd.Help()
			}
			layer, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("layer: %w", err)
			}
			ambient, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("ambient: %w", err)
			}
			packed, err := attribute.PackChecked(layer, ambient)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%08x\n", packed)
			return nil
		},
	}
}

// helpRequested reports whether args ask for help on a command that does not parse flags.
func helpRequested(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}

// parsePacked parses a 32-bit packed attribute in any Go integer literal base.
func parsePacked(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("packed value %q: %w", s, err)
	}
	return uint32(v), nil
}

// writeDecoded prints the fields of a packed attribute, one per line.
func writeDecoded(w io.Writer, packed uint32) {
	d := attribute.Decode(packed)
	fmt.Fprintf(w, "packed   0x%08x\n", packed)
	fmt.Fprintf(w, "layer    %d\n", d.Layer)
	fmt.Fprintf(w, "ambient  %d\n", d.Ambient)
	fmt.Fprintf(w, "float    %.6f\n", d.AmbientFloat())
	fmt.Fprintf(w, "code     %d\n", d.AmbientCode())
}
