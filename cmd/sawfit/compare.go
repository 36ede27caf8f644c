package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sawfit/internal/engine"
)

func init() {
	compareCmd := &cobra.Command{
		Use:   "compare [description]",
		Short: "Solve the problem under a few what-if scenarios",
		Long: `Solve the same pieces with the current settings, a thinner blade and
a longer time limit, and print the results side by side.

Examples:
  sawfit compare "B:600x400 S:4 300x200 300x200r 150x100"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompare,
	}
	f := compareCmd.Flags()
	f.StringVarP(&solveOpts.problemFile, "problem", "p", "", "Saved problem file (.sawfit)")
	f.DurationVar(&solveOpts.timeout, "timeout", 0, "Time limit for each of the fit and pack phases, so a solve may take up to twice this; 0 uses the config default")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	problem, err := loadProblem(args, cfg)
	if err != nil {
		return err
	}
	cfg.ApplyToSettings(&problem.Settings)
	if solveOpts.timeout > 0 {
		problem.Settings.Timeout = solveOpts.timeout
	}

	opts := engine.OptionsFromSettings(problem.Settings)
	results, err := engine.CompareScenarios(cmd.Context(), problem.Board, problem.Pieces,
		engine.BuildDefaultScenarios(problem.Board, opts))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SCENARIO\tPLACED\tUNFIT\tEFFICIENCY\tLEFTOVER mm²\tOPTIMAL\tTIME\n")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%.0f\t%v\t%s\n", r.Scenario.Name, r.Placed, r.Unfits,
			r.Efficiency, r.LeftoverArea, r.Solution.Optimal, r.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}
