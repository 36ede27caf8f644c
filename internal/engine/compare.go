package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/piwi3910/sawfit/internal/model"
)

// ComparisonScenario defines a named variation of a solve to compare.
type ComparisonScenario struct {
	Name     string
	SawWidth float64
	Options  Options
}

// ComparisonResult holds the solution and computed statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Solution     model.Solution
	Placed       int
	Unfits       int
	Efficiency   float64
	LeftoverArea float64
	Elapsed      time.Duration
}

// CompareScenarios solves the same pieces once per scenario, in scenario
// order. This shows what a thinner blade or a longer search would buy.
func CompareScenarios(ctx context.Context, board model.Board, pieces []model.Piece, scenarios []ComparisonScenario) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		b := board
		b.SawWidth = scenario.SawWidth

		start := time.Now()
		sol, err := Solve(ctx, b, pieces, scenario.Options)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Solution:     sol,
			Placed:       len(sol.Cutouts),
			Unfits:       len(sol.Unfits),
			Efficiency:   sol.Efficiency(),
			LeftoverArea: sol.LeftoverArea(),
			Elapsed:      time.Since(start),
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current board and options, varying key parameters to show what-if
// alternatives.
func BuildDefaultScenarios(board model.Board, opts Options) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			SawWidth: board.SawWidth,
			Options:  opts,
		},
	}

	// Scenario: Tighter kerf (simulate thinner blade), kept on a whole tenth
	if board.SawWidth > 1.0 {
		half := math.Round(board.SawWidth*5) / 10
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", half),
			SawWidth: half,
			Options:  opts,
		})
	}

	// Scenario: Longer search
	if opts.Timeout > 0 {
		longer := opts
		longer.Timeout = opts.Timeout * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Timeout %s", longer.Timeout),
			SawWidth: board.SawWidth,
			Options:  longer,
		})
	}

	return scenarios
}
