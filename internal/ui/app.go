// Package ui is the sawfit desktop viewer: enter a board and its pieces,
// solve, inspect the layout and export it.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/engine"
	"github.com/piwi3910/sawfit/internal/gcode"
	"github.com/piwi3910/sawfit/internal/importer"
	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/project"
	"github.com/piwi3910/sawfit/internal/ui/widgets"
)

const recentLimit = 10

// App holds all application state and UI references.
type App struct {
	app      fyne.App
	window   fyne.Window
	config   model.AppConfig
	profiles []model.GCodeProfile // custom GCode profiles
	problem  model.Problem
	path     string // where the problem was last opened from or saved to
	history  *History

	tabs              *container.AppTabs
	descEntry         *widget.Entry
	heightEntry       *widget.Entry
	widthEntry        *widget.Entry
	sawEntry          *widget.Entry
	piecesContainer   *fyne.Container
	resultContainer   *fyne.Container
	toolpathPanel     *fyne.Container
	settingsContainer *fyne.Container
	profileSelect     *widget.Select
	statusLabel       *widget.Label
	solveBtn          *widget.Button
	cancelBtn         *widget.Button

	cancelSolve context.CancelFunc
}

func NewApp(app fyne.App, window fyne.Window) *App {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		klog.Warningf("using default config: %v", err)
		cfg = model.DefaultAppConfig()
	}
	profiles, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	if err != nil {
		klog.Warningf("ignoring custom profiles: %v", err)
	}

	a := &App{
		app:      app,
		window:   window,
		config:   cfg,
		profiles: profiles,
		history:  NewHistory(),
	}
	a.problem = a.newProblem()
	app.Settings().SetTheme(newTheme(cfg.Theme))
	return a
}

// newProblem starts an empty problem on a full sheet with the configured
// defaults.
func (a *App) newProblem() model.Problem {
	p := model.NewProblem()
	p.Board = model.Board{Height: 1220, Width: 2440, SawWidth: a.config.DefaultSawWidth}
	a.config.ApplyToSettings(&p.Settings)
	return p
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	recent := fyne.NewMenuItem("Open Recent", nil)
	recent.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Problem", a.resetProblem),
		fyne.NewMenuItem("Open Problem...", a.openProblem),
		recent,
		fyne.NewMenuItem("Save Problem...", a.saveProblemAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Pieces (CSV, Excel, DXF)...", a.importPieces),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Illustration (PNG)...", a.exportPNG),
		fyne.NewMenuItem("Export Report (PDF)...", a.exportPDF),
		fyne.NewMenuItem("Export Labels (PDF)...", a.exportLabels),
		fyne.NewMenuItem("Export Drawing (DXF)...", a.exportDXF),
		fyne.NewMenuItem("Export Cut List (Excel)...", a.exportCutList),
		fyne.NewMenuItem("Export GCode...", a.exportGCode),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Pieces", func() {
			a.modify("Clear Pieces", func() { a.problem.Pieces = []model.Piece{} })
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Solve", a.solve),
		fyne.NewMenuItem("Compare Scenarios...", a.showCompareDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("GCode Profiles...", a.showProfileManager),
		fyne.NewMenuItem("Preferences...", a.showSettingsDialog),
		fyne.NewMenuItem("Backup / Restore...", a.showImportExportDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About sawfit",
				"sawfit places rectangular pieces on a board,\n"+
					"keeping a saw kerf between them.\n\n"+
					"It first fits as much area as possible, then packs\n"+
					"a complete layout towards one edge of the board.",
				a.window)
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range a.config.RecentProblems {
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() { a.loadProblem(path) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("Ready.")
	a.resultContainer = container.NewStack(widgets.RenderSolution(nil))
	a.toolpathPanel = container.NewStack(widget.NewLabel("Solve first to preview toolpaths."))

	a.tabs = container.NewAppTabs(
		container.NewTabItem("Pieces", a.buildPiecesPanel()),
		container.NewTabItem("Settings", a.buildSettingsPanel()),
		container.NewTabItem("Layout", a.resultContainer),
		container.NewTabItem("Toolpath", a.toolpathPanel),
	)
	a.tabs.SetTabLocation(container.TabLocationTop)

	a.refreshPieces()
	return container.NewBorder(nil, a.statusLabel, nil, nil, a.tabs)
}

// ─── Pieces Panel ──────────────────────────────────────────

func (a *App) buildPiecesPanel() fyne.CanvasObject {
	a.descEntry = widget.NewEntry()
	a.descEntry.SetPlaceHolder("B:1000x2000 S:2.5 23.5x33 34.5x3r 2x300x200r")
	a.descEntry.OnSubmitted = func(string) { a.applyDescription() }
	loadBtn := widget.NewButtonWithIcon("Load", theme.MailForwardIcon(), a.applyDescription)

	a.heightEntry = widget.NewEntry()
	a.widthEntry = widget.NewEntry()
	a.sawEntry = widget.NewEntry()

	a.solveBtn = widget.NewButtonWithIcon("Solve", theme.MediaPlayIcon(), a.solve)
	a.solveBtn.Importance = widget.HighImportance
	a.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), func() {
		if a.cancelSolve != nil {
			a.cancelSolve()
		}
	})
	a.cancelBtn.Disable()

	toolbar := container.NewHBox(
		iconButton(theme.ContentAddIcon(), "Add piece", a.showAddPieceDialog),
		iconButton(theme.ContentUndoIcon(), "Undo", a.undo),
		iconButton(theme.ContentRedoIcon(), "Redo", a.redo),
		iconButton(theme.FolderOpenIcon(), "Import pieces", a.importPieces),
		layout.NewSpacer(),
		a.cancelBtn,
		a.solveBtn,
	)

	board := widget.NewCard("Board", "", container.NewGridWithColumns(6,
		widget.NewLabel("Height (mm)"), a.heightEntry,
		widget.NewLabel("Width (mm)"), a.widthEntry,
		widget.NewLabel("Saw width (mm)"), a.sawEntry,
	))

	a.piecesContainer = container.NewVBox()

	top := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Description"), loadBtn, a.descEntry),
		board,
		toolbar,
	)
	return container.NewBorder(top, nil, nil, nil, container.NewVScroll(a.piecesContainer))
}

// refreshPieces redraws the piece list, the board entries and the
// description from the current problem.
func (a *App) refreshPieces() {
	b := a.problem.Board
	a.heightEntry.SetText(strconv.FormatFloat(b.Height, 'f', -1, 64))
	a.widthEntry.SetText(strconv.FormatFloat(b.Width, 'f', -1, 64))
	a.sawEntry.SetText(strconv.FormatFloat(b.SawWidth, 'f', -1, 64))
	a.descEntry.SetText(importer.FormatProblem(b, a.problem.Pieces))

	a.piecesContainer.RemoveAll()
	if len(a.problem.Pieces) == 0 {
		a.piecesContainer.Add(widget.NewLabel("No pieces yet. Type a description, import a file or click +."))
		return
	}

	bold := fyne.TextStyle{Bold: true}
	a.piecesContainer.Add(container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Label", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Height (mm)", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Width (mm)", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Qty", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Rotate", fyne.TextAlignLeading, bold),
		widget.NewLabel(""),
		widget.NewLabel(""),
	))
	a.piecesContainer.Add(widget.NewSeparator())

	for i, p := range a.problem.Pieces {
		idx := i
		qty := p.Quantity
		if qty == 0 {
			qty = 1
		}
		rotate := "no"
		if p.CanRotate {
			rotate = "yes"
		}
		a.piecesContainer.Add(container.NewGridWithColumns(7,
			widget.NewLabel(p.Label),
			widget.NewLabel(fmt.Sprintf("%g", p.Height)),
			widget.NewLabel(fmt.Sprintf("%g", p.Width)),
			widget.NewLabel(strconv.Itoa(qty)),
			widget.NewLabel(rotate),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() { a.showPieceDialog(idx) }),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.modify("Delete Piece", func() {
					a.problem.Pieces = append(a.problem.Pieces[:idx], a.problem.Pieces[idx+1:]...)
				})
			}),
		))
	}
}

// modify records an undo snapshot, applies change and redraws.
func (a *App) modify(label string, change func()) {
	a.history.Push(MakeSnapshot(a.problem.Board, a.problem.Pieces, label))
	change()
	a.refreshPieces()
}

func (a *App) undo() {
	snap, ok := a.history.Undo(MakeSnapshot(a.problem.Board, a.problem.Pieces, "undo"))
	if !ok {
		return
	}
	a.problem.Board, a.problem.Pieces = snap.Board, snap.Pieces
	a.refreshPieces()
	a.setStatus("Undid " + snap.Label)
}

func (a *App) redo() {
	snap, ok := a.history.Redo(MakeSnapshot(a.problem.Board, a.problem.Pieces, "redo"))
	if !ok {
		return
	}
	a.problem.Board, a.problem.Pieces = snap.Board, snap.Pieces
	a.refreshPieces()
}

func (a *App) applyDescription() {
	parsed, err := importer.ParseProblem(a.descEntry.Text)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.modify("Load Description", func() {
		a.problem.Board = parsed.Board
		a.problem.Pieces = parsed.Pieces
	})
}

// readBoard validates the board entries into the problem.
func (a *App) readBoard() error {
	parse := func(e *widget.Entry, name string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(e.Text), 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", name, e.Text)
		}
		return v, nil
	}
	h, err := parse(a.heightEntry, "board height")
	if err != nil {
		return err
	}
	w, err := parse(a.widthEntry, "board width")
	if err != nil {
		return err
	}
	s, err := parse(a.sawEntry, "saw width")
	if err != nil {
		return err
	}
	board, err := model.NewBoard(h, w, s)
	if err != nil {
		return err
	}
	if board != a.problem.Board {
		a.history.Push(MakeSnapshot(a.problem.Board, a.problem.Pieces, "Resize Board"))
		a.problem.Board = board
	}
	return nil
}

func (a *App) showAddPieceDialog() {
	a.showPieceDialog(-1)
}

// showPieceDialog adds a piece when idx is negative, otherwise edits it.
func (a *App) showPieceDialog(idx int) {
	p := model.NewPiece(0, 0, false)
	p.Label = fmt.Sprintf("Piece %d", len(a.problem.Pieces)+1)
	title, confirm := "Add Piece", "Add"
	if idx >= 0 {
		p = a.problem.Pieces[idx]
		title, confirm = "Edit Piece", "Save"
	}

	labelEntry := widget.NewEntry()
	labelEntry.SetText(p.Label)
	heightEntry := widget.NewEntry()
	widthEntry := widget.NewEntry()
	if p.Height > 0 {
		heightEntry.SetText(fmt.Sprintf("%g", p.Height))
		widthEntry.SetText(fmt.Sprintf("%g", p.Width))
	}
	qtyEntry := widget.NewEntry()
	qtyEntry.SetText(strconv.Itoa(max(p.Quantity, 1)))
	rotateCheck := widget.NewCheck("May be rotated 90°", nil)
	rotateCheck.Checked = p.CanRotate

	form := dialog.NewForm(title, confirm, "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Label", labelEntry),
			widget.NewFormItem("Height (mm)", heightEntry),
			widget.NewFormItem("Width (mm)", widthEntry),
			widget.NewFormItem("Quantity", qtyEntry),
			widget.NewFormItem("", rotateCheck),
		},
		func(ok bool) {
			if !ok {
				return
			}
			h, _ := strconv.ParseFloat(heightEntry.Text, 64)
			w, _ := strconv.ParseFloat(widthEntry.Text, 64)
			q, _ := strconv.Atoi(qtyEntry.Text)

			p.Label = labelEntry.Text
			p.Height, p.Width, p.Quantity, p.CanRotate = h, w, q, rotateCheck.Checked
			if q <= 0 {
				dialog.ShowError(fmt.Errorf("quantity must be at least 1"), a.window)
				return
			}
			if err := p.Validate(); err != nil {
				dialog.ShowError(err, a.window)
				return
			}

			a.modify(title, func() {
				if idx >= 0 {
					a.problem.Pieces[idx] = p
				} else {
					a.problem.Pieces = append(a.problem.Pieces, p)
				}
			})
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 320))
	form.Show()
}

// ─── Solving ───────────────────────────────────────────────

func (a *App) solve() {
	if a.cancelSolve != nil {
		return
	}
	if err := a.readBoard(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if len(a.problem.Pieces) == 0 {
		dialog.ShowInformation("Nothing to solve", "Add at least one piece first.", a.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelSolve = cancel
	a.solveBtn.Disable()
	a.cancelBtn.Enable()
	a.setStatus(fmt.Sprintf("Solving %d pieces (time limit %s per phase)...", len(a.problem.Pieces), a.problem.Settings.Timeout))

	board, pieces := a.problem.Board, append([]model.Piece(nil), a.problem.Pieces...)
	opts := engine.OptionsFromSettings(a.problem.Settings)
	go func() {
		sol, err := engine.Solve(ctx, board, pieces, opts)
		fyne.Do(func() { a.solveDone(sol, err, ctx.Err() != nil) })
	}()
}

// solveDone shows the layout. A cancelled solve still shows the best
// layout found before the cancel, if any.
func (a *App) solveDone(sol model.Solution, err error, cancelled bool) {
	a.cancelSolve()
	a.cancelSolve = nil
	a.solveBtn.Enable()
	a.cancelBtn.Disable()

	if err != nil {
		if cancelled {
			a.setStatus("Solve cancelled.")
			return
		}
		klog.Warningf("solve failed: %v", err)
		a.setStatus("Solve failed.")
		dialog.ShowError(err, a.window)
		return
	}

	a.problem.Solution = &sol
	a.refreshResults()
	a.tabs.SelectIndex(2)
	a.setStatus(widgets.SummaryLines(sol)[0])
}

func (a *App) refreshResults() {
	a.resultContainer.Objects = []fyne.CanvasObject{widgets.RenderSolution(a.problem.Solution)}
	a.resultContainer.Refresh()

	var preview fyne.CanvasObject
	if sol := a.problem.Solution; sol != nil {
		code, err := a.generator().Generate(*sol)
		if err != nil {
			preview = widget.NewLabel(fmt.Sprintf("No toolpath: %v", err))
		} else {
			preview = widgets.RenderToolpathPreview(code, *sol, a.problem.Settings.ToolDiameter)
		}
	} else {
		preview = widget.NewLabel("Solve first to preview toolpaths.")
	}
	a.toolpathPanel.Objects = []fyne.CanvasObject{preview}
	a.toolpathPanel.Refresh()
}

func (a *App) generator() *gcode.Generator {
	return gcode.NewWithProfiles(a.problem.Settings, a.profiles)
}

func (a *App) showCompareDialog() {
	if err := a.readBoard(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if len(a.problem.Pieces) == 0 {
		dialog.ShowInformation("Nothing to compare", "Add at least one piece first.", a.window)
		return
	}

	progress := dialog.NewCustomWithoutButtons("Comparing scenarios", widget.NewProgressBarInfinite(), a.window)
	progress.Show()

	board, pieces := a.problem.Board, append([]model.Piece(nil), a.problem.Pieces...)
	scenarios := engine.BuildDefaultScenarios(board, engine.OptionsFromSettings(a.problem.Settings))
	go func() {
		results, err := engine.CompareScenarios(context.Background(), board, pieces, scenarios)
		fyne.Do(func() {
			progress.Hide()
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.showCompareResults(results)
		})
	}()
}

func (a *App) showCompareResults(results []engine.ComparisonResult) {
	bold := fyne.TextStyle{Bold: true}
	grid := container.NewGridWithColumns(5,
		widget.NewLabelWithStyle("Scenario", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Placed", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Unfit", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Efficiency", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Optimal", fyne.TextAlignLeading, bold),
	)
	for _, r := range results {
		grid.Add(widget.NewLabel(r.Scenario.Name))
		grid.Add(widget.NewLabel(strconv.Itoa(r.Placed)))
		grid.Add(widget.NewLabel(strconv.Itoa(r.Unfits)))
		grid.Add(widget.NewLabel(fmt.Sprintf("%.1f%%", r.Efficiency)))
		grid.Add(widget.NewLabel(fmt.Sprintf("%v", r.Solution.Optimal)))
	}
	d := dialog.NewCustom("Scenario Comparison", "Close", grid, a.window)
	d.Resize(fyne.NewSize(600, 250))
	d.Show()
}

func (a *App) setStatus(text string) {
	a.statusLabel.SetText(text)
}

// ─── Files ─────────────────────────────────────────────────

func (a *App) resetProblem() {
	a.problem = a.newProblem()
	a.path = ""
	a.history.Clear()
	a.refreshPieces()
	a.refreshSettings()
	a.refreshResults()
}

func (a *App) openProblem() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.loadProblem(reader.URI().Path())
	}, a.window)
	d.Show()
}

func (a *App) loadProblem(path string) {
	p, err := project.LoadProblem(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.problem = p
	a.path = path
	a.history.Clear()
	a.refreshPieces()
	a.refreshSettings()
	a.refreshResults()
	a.rememberRecent(path)
	a.window.SetTitle("sawfit - " + p.Name)
}

func (a *App) saveProblemAs() {
	if err := a.readBoard(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		saved, err := project.SaveProblem(writer.URI().Path(), a.problem)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.path = saved
		a.rememberRecent(saved)
		a.setStatus("Saved " + saved)
	}, a.window)
	d.SetFileName(a.problem.Name + project.Extension)
	d.Show()
}

func (a *App) rememberRecent(path string) {
	a.config.AddRecentProblem(path, recentLimit)
	if err := a.saveConfig(); err != nil {
		klog.Warningf("save recent problems: %v", err)
	}
	a.SetupMenus()
}

func (a *App) importPieces() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.handleImportResult(importer.ImportFile(reader.URI().Path()))
	}, a.window)
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		dialog.ShowError(fmt.Errorf("errors encountered during import:\n\n%s", strings.Join(result.Errors, "\n")), a.window)
	}
	for _, w := range result.Warnings {
		klog.Warningf("import: %s", w)
	}
	if len(result.Pieces) == 0 {
		return
	}

	a.modify("Import Pieces", func() {
		a.problem.Pieces = append(a.problem.Pieces, result.Pieces...)
	})
	msg := fmt.Sprintf("Imported %d pieces.", len(result.Pieces))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\n%d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}
