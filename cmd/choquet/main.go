// Package main provides the choquet CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "choquet",
		Short: "Choquet-integral DEA performance evaluation",
		Long: `Choquet evaluates a review cycle's population of employees with
Data Envelopment Analysis over Choquet-aggregated indicators, and reports
efficiency, Shapley importance, and nine-box segmentation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: search for .choquet/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(
		newComputeCmd(),
		newValidateCmd(),
		newShowCmd(),
		newServeCmd(),
	)

	return rootCmd
}
