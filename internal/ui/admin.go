package ui

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/project"
)

// showSettingsDialog displays the application preferences editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
			}
		}
		return e
	}

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.Itoa(*val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(cfg.DefaultTimeout.String())
	timeoutEntry.SetPlaceHolder("10s, 1m30s or 0 for no limit")
	timeoutEntry.Validator = func(text string) error {
		_, err := time.ParseDuration(text)
		return err
	}

	listenEntry := widget.NewEntry()
	listenEntry.SetText(cfg.ListenAddr)

	backendSelect := widget.NewSelect(milp.Backends(), func(selected string) {
		cfg.DefaultBackend = selected
	})
	backendSelect.SetSelected(cfg.DefaultBackend)

	profileSelect := widget.NewSelect(a.profileNames(), func(selected string) {
		cfg.DefaultGCodeProfile = selected
	})
	profileSelect.SetSelected(cfg.DefaultGCodeProfile)

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Saw Width (mm)", floatEntry(&cfg.DefaultSawWidth)),
		widget.NewFormItem("Time Limit per Phase", timeoutEntry),
		widget.NewFormItem("Solver Backend", backendSelect),
		widget.NewFormItem("Default GCode Profile", profileSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Illustration Width (px)", intEntry(&cfg.RenderWidth)),
		widget.NewFormItem("Illustration Height (px)", intEntry(&cfg.RenderHeight)),
		widget.NewFormItem("Web Listen Address", listenEntry),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			timeout, err := time.ParseDuration(timeoutEntry.Text)
			if err != nil || timeout < 0 {
				dialog.ShowError(fmt.Errorf("invalid time limit %q", timeoutEntry.Text), a.window)
				return
			}
			if cfg.DefaultSawWidth < 0 {
				dialog.ShowError(fmt.Errorf("saw width cannot be negative"), a.window)
				return
			}
			cfg.DefaultTimeout = timeout
			cfg.ListenAddr = listenEntry.Text

			a.config = cfg
			a.app.Settings().SetTheme(newTheme(cfg.Theme))
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save preferences: %w", err), a.window)
			} else {
				a.setStatus("Preferences saved. They apply to new problems.")
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 520))
	d.Show()
}

// showImportExportDialog backs up or restores the preferences together
// with the custom GCode profiles.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			path := writer.URI().Path()
			if err := project.ExportAllData(path, a.config, a.profiles); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("Preferences and %d custom profiles exported to:\n%s", len(a.profiles), path), a.window)
			}
		}, a.window)
		d.SetFileName("sawfit-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing replaces your preferences and custom GCode profiles.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					defer reader.Close()
					backup, err := project.ImportAllData(reader.URI().Path())
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					a.config = backup.Config
					a.profiles = backup.Profiles
					if err := a.saveConfig(); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported preferences: %w", err), a.window)
						return
					}
					a.persistCustomProfiles(a.window)
					a.app.Settings().SetTheme(newTheme(a.config.Theme))
					a.SetupMenus()
					dialog.ShowInformation("Import Complete",
						fmt.Sprintf("Data imported from backup created at %s.", backup.CreatedAt), a.window)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export preferences and custom GCode profiles to a backup file,\nor import them from a previously exported backup."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Backup / Restore", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}
