package ui

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/model"
)

// buildSettingsPanel returns the per-problem solver and CNC settings tab.
func (a *App) buildSettingsPanel() fyne.CanvasObject {
	a.settingsContainer = container.NewVBox()
	a.refreshSettings()
	return container.NewVScroll(a.settingsContainer)
}

// refreshSettings rebuilds the settings tab from the current problem.
func (a *App) refreshSettings() {
	s := &a.problem.Settings

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
	timeoutEntry.SetText(s.Timeout.String())
	timeoutEntry.OnChanged = func(text string) {
		if d, err := time.ParseDuration(text); err == nil && d >= 0 {
			s.Timeout = d
		}
	}
	timeoutEntry.Validator = func(text string) error {
		d, err := time.ParseDuration(text)
		if err == nil && d < 0 {
			return fmt.Errorf("time limit cannot be negative")
		}
		return err
	}

	backendSelect := widget.NewSelect(milp.Backends(), func(selected string) {
		s.Backend = selected
	})
	backendSelect.SetSelected(s.Backend)

	solverSection := widget.NewCard("Solver",
		"Each phase stops at the time limit and keeps its best layout so far",
		container.NewGridWithColumns(2,
			widget.NewLabel("Time Limit per Phase"), timeoutEntry,
			widget.NewLabel("Backend"), backendSelect,
		))

	cncSection := widget.NewCard("CNC", "Used for the GCode export and the toolpath preview",
		container.NewGridWithColumns(2,
			widget.NewLabel("Tool Diameter (mm)"), floatEntry(&s.ToolDiameter),
			widget.NewLabel("Feed Rate (mm/min)"), floatEntry(&s.FeedRate),
			widget.NewLabel("Plunge Rate (mm/min)"), floatEntry(&s.PlungeRate),
			widget.NewLabel("Spindle Speed (RPM)"), intEntry(&s.SpindleSpeed),
			widget.NewLabel("Safe Z (mm)"), floatEntry(&s.SafeZ),
			widget.NewLabel("Cut Depth (mm)"), floatEntry(&s.CutDepth),
			widget.NewLabel("Pass Depth (mm)"), floatEntry(&s.PassDepth),
		))

	a.profileSelect = widget.NewSelect(a.profileNames(), func(selected string) {
		s.GCodeProfile = selected
	})
	a.profileSelect.SetSelected(s.GCodeProfile)

	manageProfileBtn := widget.NewButtonWithIcon("Manage Profiles", theme.SettingsIcon(), a.showProfileManager)

	profileSection := widget.NewCard("GCode Profile", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Active Profile"), container.NewBorder(nil, nil, nil, manageProfileBtn, a.profileSelect),
		))

	previewBtn := widget.NewButtonWithIcon("Update Toolpath Preview", theme.ViewRefreshIcon(), a.refreshResults)

	a.settingsContainer.Objects = []fyne.CanvasObject{solverSection, cncSection, profileSection, previewBtn}
	a.settingsContainer.Refresh()
}

// profileNames lists the built-in profiles followed by the custom ones.
func (a *App) profileNames() []string {
	var names []string
	for _, p := range model.GCodeProfiles {
		names = append(names, p.Name)
	}
	for _, p := range a.profiles {
		if !slices.Contains(names, p.Name) {
			names = append(names, p.Name)
		}
	}
	return names
}

// refreshProfileSelector picks up profiles added or removed in the
// profile manager.
func (a *App) refreshProfileSelector() {
	if a.profileSelect == nil {
		return
	}
	a.profileSelect.Options = a.profileNames()
	if !slices.Contains(a.profileSelect.Options, a.problem.Settings.GCodeProfile) {
		a.problem.Settings.GCodeProfile = model.DefaultSettings().GCodeProfile
	}
	a.profileSelect.SetSelected(a.problem.Settings.GCodeProfile)
	a.profileSelect.Refresh()
}
