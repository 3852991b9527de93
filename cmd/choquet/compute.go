package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
	"github.com/lucasprac/dea-choquet/pkg/surface"
)

type computeOpts struct {
	cyclePath              string
	outputFmt              string
	save                   bool
	estimateInteractions   bool
	effectivenessIndicator string
	objective              float64
}

func newComputeCmd() *cobra.Command {
	var opts computeOpts

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Evaluate a cycle document",
		Long: `Validates and evaluates a cycle document (YAML or JSON), then renders
the results. With --save the input and results are stored under the local
results directory so "choquet show" and "choquet serve" can read them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.cyclePath, "cycle", "", "Path to cycle document (required)")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json or markdown")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store input and results in the local results directory")
	cmd.Flags().BoolVar(&opts.estimateInteractions, "estimate-interactions", false, "Derive interaction weights from the data")
	cmd.Flags().StringVar(&opts.effectivenessIndicator, "effectiveness-indicator", "", "Indicator whose normalized value is the effectiveness axis (input or output)")
	cmd.Flags().Float64Var(&opts.objective, "objective", 0, "Organizational efficiency target in (0,1] for prospect-adjusted cross-efficiency")
	_ = cmd.MarkFlagRequired("cycle")

	return cmd
}

func runCompute(cmd *cobra.Command, out io.Writer, opts computeOpts) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	cycle, err := framework.LoadCycle(opts.cyclePath)
	if err != nil {
		return err
	}

	if opts.estimateInteractions {
		cfg.Engine.EstimateInteractions = true
	}
	cfg.Engine.EffectivenessIndicator = firstNonEmpty(opts.effectivenessIndicator, cfg.Engine.EffectivenessIndicator)
	if cmd.Flags().Changed("objective") {
		cfg.Engine.Objective = opts.objective
	}

	logger := newLogger(cmd)
	eng := engine.NewEngine(append(cfg.Engine.Options(), engine.WithLogger(logger))...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var res *engine.CycleResults
	if opts.save {
		dir := resultsDir(cfg)
		svc := results.NewService(results.NewLocalStorage(dir), nil, eng, logger)
		res, err = svc.Run(ctx, cycle)
		if err == nil {
			fmt.Fprintf(os.Stderr, "Results saved: %s (run %s)\n", dir, res.RunID)
		}
	} else {
		res, err = eng.ComputeCycle(ctx, cycle)
	}
	if err != nil {
		return fmt.Errorf("computing cycle %s: %w", cycle.ID, err)
	}

	if err := renderer.Render(out, res); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
