package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/project"
)

// allProfiles returns the built-in profiles followed by the custom ones.
func (a *App) allProfiles() []model.GCodeProfile {
	return append(slices.Clone(model.GCodeProfiles), a.profiles...)
}

// putProfile stores p as a custom profile, replacing the one called
// oldName if there is one.
func (a *App) putProfile(p model.GCodeProfile, oldName string) error {
	if strings.TrimSpace(p.Name) == "" {
		return project.ErrProfileNoName
	}
	if model.IsBuiltInProfile(p.Name) {
		return fmt.Errorf("%q: %w", p.Name, project.ErrProfileBuiltIn)
	}
	for _, existing := range a.profiles {
		if existing.Name == p.Name && existing.Name != oldName {
			return fmt.Errorf("profile %q already exists", p.Name)
		}
	}
	a.profiles = slices.DeleteFunc(a.profiles, func(e model.GCodeProfile) bool { return e.Name == oldName })
	a.profiles = append(a.profiles, p)
	return nil
}

func (a *App) removeProfile(name string) {
	a.profiles = slices.DeleteFunc(a.profiles, func(e model.GCodeProfile) bool { return e.Name == name })
}

// showProfileManager opens the profile management window where users can
// view, create, edit, duplicate, delete, import and export GCode profiles.
func (a *App) showProfileManager() {
	w := fyne.CurrentApp().NewWindow("GCode Profile Manager")
	w.Resize(fyne.NewSize(700, 500))

	selectedIdx := -1
	profiles := a.allProfiles()
	detailContainer := container.NewVBox(widget.NewLabel("Select a profile to view details."))

	var listWidget *widget.List
	reload := func() {
		profiles = a.allProfiles()
		selectedIdx = -1
		listWidget.UnselectAll()
		listWidget.Refresh()
		detailContainer.Objects = []fyne.CanvasObject{widget.NewLabel("Select a profile to view details.")}
		detailContainer.Refresh()
		a.refreshProfileSelector()
	}

	listWidget = widget.NewList(
		func() int {
			return len(profiles)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Profile Name"),
				layout.NewSpacer(),
				widget.NewLabel("(built-in)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			p := profiles[id]
			box.Objects[1].(*widget.Label).SetText(p.Name)
			tag := "(custom)"
			if model.IsBuiltInProfile(p.Name) {
				tag = "(built-in)"
			}
			box.Objects[3].(*widget.Label).SetText(tag)
		},
	)

	listWidget.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		a.showProfileDetail(detailContainer, profiles[id], w, reload)
	}

	selected := func(action string) (model.GCodeProfile, bool) {
		if selectedIdx < 0 || selectedIdx >= len(profiles) {
			dialog.ShowInformation("No Selection", "Select a profile to "+action+".", w)
			return model.GCodeProfile{}, false
		}
		return profiles[selectedIdx], true
	}

	newBtn := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		a.showNewProfileDialog(w, reload)
	})

	duplicateBtn := widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
		if p, ok := selected("duplicate"); ok {
			a.duplicateProfile(p, w, reload)
		}
	})

	importBtn := widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
		a.importProfileDialog(w, reload)
	})

	exportBtn := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		if p, ok := selected("export"); ok {
			a.exportProfileDialog(p, w)
		}
	})

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		p, ok := selected("delete")
		if !ok {
			return
		}
		if model.IsBuiltInProfile(p.Name) {
			dialog.ShowInformation("Cannot Delete", "Built-in profiles cannot be deleted.", w)
			return
		}
		dialog.ShowConfirm("Delete Profile",
			fmt.Sprintf("Delete custom profile %q?", p.Name),
			func(ok bool) {
				if !ok {
					return
				}
				a.removeProfile(p.Name)
				a.persistCustomProfiles(w)
				reload()
			},
			w,
		)
	})

	toolbar := container.NewHBox(newBtn, duplicateBtn, importBtn, exportBtn, deleteBtn)

	listPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profiles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		toolbar,
		nil, nil,
		listWidget,
	)

	detailPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profile Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(detailContainer),
	)

	split := container.NewHSplit(listPanel, detailPanel)
	split.SetOffset(0.35)

	w.SetContent(split)
	w.Show()
}

// showProfileDetail fills the detail pane with a read-only view of p.
func (a *App) showProfileDetail(c *fyne.Container, p model.GCodeProfile, w fyne.Window, onChanged func()) {
	bold := fyne.TextStyle{Bold: true}

	info := container.NewVBox(
		widget.NewLabelWithStyle(p.Name, fyne.TextAlignLeading, bold),
		widget.NewLabel(p.Description),
		widget.NewSeparator(),
		container.NewGridWithColumns(2,
			widget.NewLabelWithStyle("Decimal Places:", fyne.TextAlignLeading, bold),
			widget.NewLabel(strconv.Itoa(p.DecimalPlaces)),
			widget.NewLabel("Rapid Move:"), widget.NewLabel(p.RapidMove),
			widget.NewLabel("Feed Move:"), widget.NewLabel(p.FeedMove),
			widget.NewLabel("Spindle Start:"), widget.NewLabel(p.SpindleStart),
			widget.NewLabel("Spindle Stop:"), widget.NewLabel(p.SpindleStop),
			widget.NewLabel("Comment Prefix:"), widget.NewLabel(fmt.Sprintf("%q", p.CommentPrefix)),
			widget.NewLabel("Comment Suffix:"), widget.NewLabel(fmt.Sprintf("%q", p.CommentSuffix)),
		),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Start Code", fyne.TextAlignLeading, bold),
		widget.NewLabel(strings.Join(p.StartCode, "\n")),
		widget.NewLabelWithStyle("End Code", fyne.TextAlignLeading, bold),
		widget.NewLabel(strings.Join(p.EndCode, "\n")),
	)

	var header fyne.CanvasObject
	if model.IsBuiltInProfile(p.Name) {
		header = widget.NewLabel("Built-in profiles are read-only. Duplicate to customize.")
	} else {
		header = widget.NewButtonWithIcon("Edit Profile", theme.DocumentCreateIcon(), func() {
			a.showEditProfileDialog(p, w, onChanged)
		})
	}

	c.Objects = []fyne.CanvasObject{header, info}
	c.Refresh()
}

// showNewProfileDialog creates a custom profile starting from Generic.
func (a *App) showNewProfileDialog(w fyne.Window, onCreated func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("My Custom Profile")

	form := dialog.NewForm("New Custom Profile", "Create", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Profile Name", nameEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			profile := cloneProfile(model.GetProfile("Generic"))
			profile.Name = strings.TrimSpace(nameEntry.Text)
			profile.Description = "Custom profile"
			if err := a.putProfile(profile, ""); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			onCreated()
		},
		w,
	)
	form.Resize(fyne.NewSize(400, 150))
	form.Show()
}

// duplicateProfile creates a copy of an existing profile with a new name.
func (a *App) duplicateProfile(source model.GCodeProfile, w fyne.Window, onCreated func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(source.Name + " (Copy)")

	form := dialog.NewForm("Duplicate Profile", "Create", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("New Profile Name", nameEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			dup := cloneProfile(source)
			dup.Name = strings.TrimSpace(nameEntry.Text)
			dup.Description = "Copy of " + source.Name
			if err := a.putProfile(dup, ""); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			onCreated()
		},
		w,
	)
	form.Resize(fyne.NewSize(400, 150))
	form.Show()
}

// showEditProfileDialog edits a custom profile in its own window, with a
// sample of the program it would produce.
func (a *App) showEditProfileDialog(p model.GCodeProfile, w fyne.Window, onSaved func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)

	descEntry := widget.NewEntry()
	descEntry.SetText(p.Description)

	decimalEntry := widget.NewEntry()
	decimalEntry.SetText(strconv.Itoa(p.DecimalPlaces))

	rapidEntry := widget.NewEntry()
	rapidEntry.SetText(p.RapidMove)

	feedEntry := widget.NewEntry()
	feedEntry.SetText(p.FeedMove)

	spindleStartEntry := widget.NewEntry()
	spindleStartEntry.SetText(p.SpindleStart)

	spindleStopEntry := widget.NewEntry()
	spindleStopEntry.SetText(p.SpindleStop)

	commentPrefixEntry := widget.NewEntry()
	commentPrefixEntry.SetText(p.CommentPrefix)

	commentSuffixEntry := widget.NewEntry()
	commentSuffixEntry.SetText(p.CommentSuffix)

	startCodeEntry := widget.NewMultiLineEntry()
	startCodeEntry.SetText(strings.Join(p.StartCode, "\n"))
	startCodeEntry.SetMinRowsVisible(4)

	endCodeEntry := widget.NewMultiLineEntry()
	endCodeEntry.SetText(strings.Join(p.EndCode, "\n"))
	endCodeEntry.SetMinRowsVisible(4)

	previewLabel := widget.NewMultiLineEntry()
	previewLabel.Disable()
	previewLabel.SetMinRowsVisible(8)

	updatePreview := func() {
		var preview strings.Builder
		preview.WriteString(commentPrefixEntry.Text + " Sample GCode Preview" + commentSuffixEntry.Text + "\n")
		preview.WriteString(commentPrefixEntry.Text + " Profile: " + nameEntry.Text + commentSuffixEntry.Text + "\n\n")
		for _, line := range splitLines(startCodeEntry.Text) {
			preview.WriteString(line + "\n")
		}
		preview.WriteString(spindleStartEntry.Text + "\n")
		preview.WriteString(rapidEntry.Text + " X0.000 Y0.000\n")
		preview.WriteString(feedEntry.Text + " X100.000 Y50.000 F1500.000\n\n")
		preview.WriteString(spindleStopEntry.Text + "\n")
		for _, line := range splitLines(endCodeEntry.Text) {
			preview.WriteString(line + "\n")
		}
		previewLabel.SetText(preview.String())
	}
	updatePreview()

	generalTab := container.NewTabItem("General", container.NewGridWithColumns(2,
		widget.NewLabel("Name"), nameEntry,
		widget.NewLabel("Description"), descEntry,
		widget.NewLabel("Decimal Places"), decimalEntry,
		widget.NewLabel("Comment Prefix"), commentPrefixEntry,
		widget.NewLabel("Comment Suffix"), commentSuffixEntry,
	))

	motionTab := container.NewTabItem("Motion / Spindle", container.NewGridWithColumns(2,
		widget.NewLabel("Rapid Move Command"), rapidEntry,
		widget.NewLabel("Feed Move Command"), feedEntry,
		widget.NewLabel("Spindle Start (use %d for RPM)"), spindleStartEntry,
		widget.NewLabel("Spindle Stop"), spindleStopEntry,
	))

	codeTab := container.NewTabItem("Start/End Code", container.NewVBox(
		widget.NewLabelWithStyle("Start Code (one command per line)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		startCodeEntry,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("End Code (one command per line, [SafeZ] is the retract height)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		endCodeEntry,
	))

	previewTab := container.NewTabItem("Preview", container.NewVBox(
		widget.NewButtonWithIcon("Refresh Preview", theme.ViewRefreshIcon(), updatePreview),
		previewLabel,
	))

	tabs := container.NewAppTabs(generalTab, motionTab, codeTab, previewTab)

	editWindow := fyne.CurrentApp().NewWindow("Edit Profile: " + p.Name)

	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		decimals, err := strconv.Atoi(decimalEntry.Text)
		if err != nil || decimals < 0 || decimals > 10 {
			dialog.ShowError(fmt.Errorf("decimal places must be a number between 0 and 10"), editWindow)
			return
		}

		updated := model.GCodeProfile{
			Name:          strings.TrimSpace(nameEntry.Text),
			Description:   descEntry.Text,
			StartCode:     splitLines(startCodeEntry.Text),
			SpindleStart:  spindleStartEntry.Text,
			SpindleStop:   spindleStopEntry.Text,
			RapidMove:     rapidEntry.Text,
			FeedMove:      feedEntry.Text,
			EndCode:       splitLines(endCodeEntry.Text),
			CommentPrefix: commentPrefixEntry.Text,
			CommentSuffix: commentSuffixEntry.Text,
			DecimalPlaces: decimals,
		}
		if err := a.putProfile(updated, p.Name); err != nil {
			dialog.ShowError(err, editWindow)
			return
		}
		a.persistCustomProfiles(w)
		onSaved()
		editWindow.Close()
	})
	saveBtn.Importance = widget.HighImportance

	editWindow.SetContent(container.NewBorder(
		nil,
		container.NewHBox(layout.NewSpacer(), saveBtn),
		nil, nil,
		tabs,
	))
	editWindow.Resize(fyne.NewSize(600, 500))
	editWindow.Show()
}

// importProfileDialog imports a profile from JSON.
func (a *App) importProfileDialog(w fyne.Window, onImported func()) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		profile, err := project.ImportProfile(reader.URI().Path())
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to import profile: %w", err), w)
			return
		}
		if err := a.putProfile(profile, profile.Name); err != nil {
			dialog.ShowError(err, w)
			return
		}
		a.persistCustomProfiles(w)
		onImported()
		dialog.ShowInformation("Import Complete",
			fmt.Sprintf("Profile %q imported successfully.", profile.Name), w)
	}, w)
}

// exportProfileDialog exports a profile to JSON.
func (a *App) exportProfileDialog(p model.GCodeProfile, w fyne.Window) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		if err := project.ExportProfile(writer.URI().Path(), p); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export profile: %w", err), w)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("Profile %q exported successfully.", p.Name), w)
	}, w)
	d.SetFileName(strings.ReplaceAll(strings.ToLower(p.Name), " ", "_") + "_profile.json")
	d.Show()
}

// persistCustomProfiles saves the custom profiles to disk.
func (a *App) persistCustomProfiles(w fyne.Window) {
	if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), a.profiles); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save profiles: %w", err), w)
	}
}

func cloneProfile(p model.GCodeProfile) model.GCodeProfile {
	p.StartCode = slices.Clone(p.StartCode)
	p.EndCode = slices.Clone(p.EndCode)
	return p
}

// splitLines splits a multiline string into non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
