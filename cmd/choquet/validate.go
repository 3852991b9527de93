package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

func newValidateCmd() *cobra.Command {
	var cyclePath, writePath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a cycle document without evaluating it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), cyclePath, writePath)
		},
	}

	cmd.Flags().StringVar(&cyclePath, "cycle", "", "Path to cycle document (required)")
	cmd.Flags().StringVar(&writePath, "write", "", "Re-encode the validated cycle to this path (.yaml/.yml or .json)")
	_ = cmd.MarkFlagRequired("cycle")

	return cmd
}

func runValidate(out io.Writer, cyclePath, writePath string) error {
	cycle, err := framework.LoadCycle(cyclePath)
	if err != nil {
		return err
	}
	if err := cycle.Validate(); err != nil {
		return fmt.Errorf("invalid cycle: %w", err)
	}
	if _, err := engine.Normalize(&cycle.Framework, cycle.Scores); err != nil {
		return fmt.Errorf("invalid cycle: %w", err)
	}

	fmt.Fprintf(out, "Cycle %s is valid: %d DMUs, %d inputs, %d outputs, %d interactions\n",
		cycle.ID, len(cycle.Scores), len(cycle.Framework.Inputs()), len(cycle.Framework.Outputs()), len(cycle.Interactions))

	if writePath != "" {
		if err := framework.SaveCycle(writePath, cycle); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", writePath)
	}
	return nil
}
