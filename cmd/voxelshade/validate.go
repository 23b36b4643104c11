package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [variant...]",
		Short: "Compile programs with naga and print their vertex output interface",
		Long: "Compiles each named program (all of them when none are named), checks its vertex outputs\n" +
			"and prints one row per output location.",
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := variantsFromArgs(args)
			if err != nil {
				return err
			}
			return validatePrograms(cmd.OutOrStdout(), variants)
		},
	}
}

// variantsFromArgs parses program names, defaulting to every program.
func variantsFromArgs(args []string) ([]program.Variant, error) {
	if len(args) == 0 {
		return program.Variants, nil
	}
	out := make([]program.Variant, 0, len(args))
	for _, a := range args {
		v, err := program.ParseVariant(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// validatePrograms loads every variant and writes its interface table to w.
// All variants are attempted; the first failure is returned after the table is written.
func validatePrograms(w io.Writer, variants []program.Variant) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRAM\tLOCATION\tNAME\tTYPE\tINTERPOLATION")

	var firstErr error
	for _, v := range variants {
		p, err := program.Load(v)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tfailed: %v\n", v, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, sv := range p.Interface() {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", v, sv.Location, sv.Name, typeName(sv), sv.Interpolation)
		}
		for _, issue := range p.Issues() {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tissue: %s\n", v, issue)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return firstErr
}

// typeName renders a stage variable type the way WGSL spells it.
func typeName(sv program.StageVariable) string {
	if sv.Components <= 1 {
		return sv.Scalar
	}
	return fmt.Sprintf("vec%d<%s>", sv.Components, sv.Scalar)
}
