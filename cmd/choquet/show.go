package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/surface"
)

func newShowCmd() *cobra.Command {
	var (
		runID     string
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "show <cycle-id>",
		Short: "Render stored results of a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, cmd.OutOrStdout(), args[0], runID, outputFmt)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (default: latest)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or markdown")

	return cmd
}

func runShow(cmd *cobra.Command, out io.Writer, cycleID, runID, outputFmt string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	renderer, err := surface.ForFormat(outputFmt)
	if err != nil {
		return err
	}

	svc := results.NewService(results.NewLocalStorage(resultsDir(cfg)), nil, nil, newLogger(cmd))
	ctx := context.Background()
	res, err := svc.Get(ctx, cycleID, firstNonEmpty(runID, results.LatestRun))
	if err != nil {
		return fmt.Errorf("loading results: %w", err)
	}
	return renderer.Render(out, res)
}
