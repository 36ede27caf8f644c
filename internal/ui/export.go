package ui

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/export"
	"github.com/piwi3910/sawfit/internal/gcode"
	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/render"
)

// exportSolution asks for a destination and hands it to write. It refuses
// when nothing has been solved yet.
func (a *App) exportSolution(title, fileName string, write func(path string, sol model.Solution) error) {
	sol := a.problem.Solution
	if sol == nil {
		dialog.ShowInformation("Nothing to export", "Solve the problem first.", a.window)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if err := write(path, *sol); err != nil {
			klog.Errorf("%s: %v", title, err)
			dialog.ShowError(err, a.window)
			return
		}
		a.setStatus(fmt.Sprintf("%s written to %s", title, path))
	}, a.window)
	d.SetFileName(a.problem.Name + fileName)
	d.Show()
}

func (a *App) exportPNG() {
	a.exportSolution("Illustration", ".png", func(path string, sol model.Solution) error {
		data, err := render.PNG(sol, render.OptionsFromConfig(a.config))
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	})
}

func (a *App) exportPDF() {
	a.exportSolution("Report", ".pdf", func(path string, sol model.Solution) error {
		return export.ExportPDF(path, sol, a.problem.Settings)
	})
}

func (a *App) exportLabels() {
	a.exportSolution("Labels", "-labels.pdf", export.ExportLabels)
}

func (a *App) exportDXF() {
	a.exportSolution("Drawing", ".dxf", export.ExportDXF)
}

func (a *App) exportCutList() {
	a.exportSolution("Cut list", ".xlsx", export.ExportCutList)
}

func (a *App) exportGCode() {
	a.exportSolution("GCode", ".nc", func(path string, sol model.Solution) error {
		g := a.generator()
		code, err := g.Generate(sol)
		if err != nil {
			return err
		}
		if nicks := gcode.CheckToolpath(code, sol, g.Settings.ToolDiameter); len(nicks) > 0 {
			dialog.ShowInformation("Toolpath warning",
				fmt.Sprintf("%d cutting moves pass through a neighbouring piece.\nCheck the Toolpath tab before running the job.", len(nicks)),
				a.window)
		}
		return os.WriteFile(path, []byte(code), 0o644)
	})
}
