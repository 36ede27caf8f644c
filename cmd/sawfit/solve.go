package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/engine"
	"github.com/piwi3910/sawfit/internal/export"
	"github.com/piwi3910/sawfit/internal/gcode"
	"github.com/piwi3910/sawfit/internal/importer"
	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/project"
	"github.com/piwi3910/sawfit/internal/render"
)

var errNoProblem = errors.New("give a description, --problem or --import")

type solveFlags struct {
	problemFile string
	importFile  string
	board       string
	saw         float64
	timeout     time.Duration
	backend     string
	jsonOut     bool

	png    string
	pdf    string
	labels string
	dxf    string
	xlsx   string
	gcode  string
	save   string
}

var solveOpts solveFlags

func init() {
	solveCmd := &cobra.Command{
		Use:   "solve [description]",
		Short: "Solve one board and write the requested outputs",
		Long: `Solve one board. The problem comes from a description, a saved
problem file or a CSV/Excel/DXF piece list.

Examples:
  sawfit solve "B:1000x2000 S:2.5 23.5x33 34.5x3r"
  sawfit solve --problem kitchen.sawfit --pdf kitchen.pdf
  sawfit solve --import parts.csv --board 1220x2440 --saw 3 --xlsx cuts.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSolve,
	}

	f := solveCmd.Flags()
	f.StringVarP(&solveOpts.problemFile, "problem", "p", "", "Saved problem file (.sawfit)")
	f.StringVarP(&solveOpts.importFile, "import", "i", "", "Import pieces from a CSV, Excel or DXF file")
	f.StringVar(&solveOpts.board, "board", "", "Board size HEIGHTxWIDTH in mm, used with --import")
	f.Float64Var(&solveOpts.saw, "saw", -1, "Saw width in mm, used with --import (default from config)")
	f.DurationVar(&solveOpts.timeout, "timeout", 0, "Time limit for each of the fit and pack phases, so a solve may take up to twice this; 0 uses the config default")
	f.StringVar(&solveOpts.backend, "backend", "", "MILP backend (default from config)")
	f.BoolVar(&solveOpts.jsonOut, "json", false, "Print the solution as JSON")

	f.StringVar(&solveOpts.png, "png", "", "Write an illustration PNG")
	f.StringVar(&solveOpts.pdf, "pdf", "", "Write a PDF report")
	f.StringVar(&solveOpts.labels, "labels", "", "Write QR cut labels as PDF")
	f.StringVar(&solveOpts.dxf, "dxf", "", "Write a DXF cut drawing")
	f.StringVar(&solveOpts.xlsx, "xlsx", "", "Write an Excel cut list")
	f.StringVar(&solveOpts.gcode, "gcode", "", "Write GCode perimeter toolpaths")
	f.StringVar(&solveOpts.save, "save", "", "Save the problem and its solution as a .sawfit file")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
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
	if solveOpts.backend != "" {
		problem.Settings.Backend = solveOpts.backend
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sol, err := engine.Solve(ctx, problem.Board, problem.Pieces, engine.OptionsFromSettings(problem.Settings))
	if err != nil {
		return err
	}
	problem.Solution = &sol

	if solveOpts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(sol); err != nil {
			return err
		}
	} else {
		printSolution(cmd.OutOrStdout(), sol)
	}

	return writeOutputs(cfg, problem)
}

// loadProblem picks the problem source from the arguments and flags.
func loadProblem(args []string, cfg model.AppConfig) (model.Problem, error) {
	switch {
	case len(args) == 1:
		return importer.ParseProblem(args[0])
	case solveOpts.problemFile != "":
		return project.LoadProblem(solveOpts.problemFile)
	case solveOpts.importFile != "":
		return importProblem(solveOpts.importFile, solveOpts.board, solveOpts.saw, cfg)
	}
	return model.Problem{}, errNoProblem
}

func importProblem(path, board string, saw float64, cfg model.AppConfig) (model.Problem, error) {
	if board == "" {
		return model.Problem{}, fmt.Errorf("--import needs --board HEIGHTxWIDTH")
	}
	if saw < 0 {
		saw = cfg.DefaultSawWidth
	}
	problem, err := importer.ParseProblem(fmt.Sprintf("B:%s S:%g", board, saw))
	if err != nil {
		return model.Problem{}, err
	}

	result := importer.ImportFile(path)
	for _, w := range result.Warnings {
		klog.Warningf("%s: %s", path, w)
	}
	if len(result.Errors) > 0 {
		return model.Problem{}, fmt.Errorf("import %s: %s", path, strings.Join(result.Errors, "; "))
	}
	problem.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	problem.Pieces = result.Pieces
	return problem, nil
}

func printSolution(w io.Writer, sol model.Solution) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tPIECE\tX\tY\tHEIGHT\tWIDTH\tROTATED\n")
	for i, c := range sol.Cutouts {
		name := c.Label
		if name == "" {
			name = c.PieceID
		}
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%g\t%g\t%v\n", i+1, name, c.Position.X, c.Position.Y,
			c.Dimensions.Height, c.Dimensions.Width, c.Rotated)
	}
	tw.Flush()

	for _, u := range sol.Unfits {
		fmt.Fprintf(w, "unfit: %s %gx%g\n", u.PieceID, u.Dimensions.Height, u.Dimensions.Width)
	}
	for _, l := range sol.Leftover {
		fmt.Fprintf(w, "leftover: %gx%g at (%g, %g)\n", l.Dimensions.Height, l.Dimensions.Width, l.Position.X, l.Position.Y)
	}
	fmt.Fprintf(w, "efficiency: %.1f%%", sol.Efficiency())
	if !sol.Optimal {
		fmt.Fprint(w, " (time limit reached, not proven optimal)")
	}
	fmt.Fprintln(w)
}

func writeOutputs(cfg model.AppConfig, problem model.Problem) error {
	sol := *problem.Solution
	outputs := []struct {
		path  string
		write func(string) error
	}{
		{solveOpts.png, func(p string) error { return writePNG(p, sol, render.OptionsFromConfig(cfg)) }},
		{solveOpts.pdf, func(p string) error { return export.ExportPDF(p, sol, problem.Settings) }},
		{solveOpts.labels, func(p string) error { return export.ExportLabels(p, sol) }},
		{solveOpts.dxf, func(p string) error { return export.ExportDXF(p, sol) }},
		{solveOpts.xlsx, func(p string) error { return export.ExportCutList(p, sol) }},
		{solveOpts.gcode, func(p string) error { return writeGCode(p, sol, problem.Settings) }},
		{solveOpts.save, func(p string) error { return saveProblem(p, problem, cfg) }},
	}

	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := out.write(out.path); err != nil {
			return err
		}
		klog.V(1).Infof("wrote %s", out.path)
	}
	return nil
}

func writePNG(path string, sol model.Solution, opts render.Options) error {
	data, err := render.PNG(sol, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeGCode(path string, sol model.Solution, settings model.CutSettings) error {
	custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	if err != nil {
		return err
	}
	code, err := gcode.NewWithProfiles(settings, custom).Generate(sol)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write gcode: %w", err)
	}
	for _, n := range gcode.CheckToolpath(code, sol, settings.ToolDiameter) {
		klog.Warningf("gcode line %d passes %.2fmm from piece %s", n.Line, n.Clearance, n.PieceID)
	}
	return nil
}

func saveProblem(path string, problem model.Problem, cfg model.AppConfig) error {
	saved, err := project.SaveProblem(path, problem)
	if err != nil {
		return err
	}
	cfg.AddRecentProblem(saved, 10)
	return project.SaveAppConfig(configPath, cfg)
}
