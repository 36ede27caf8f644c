package ui

import (
	"errors"
	"reflect"
	"testing"

	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/project"
)

func TestPutProfile(t *testing.T) {
	a := &App{}

	if err := a.putProfile(model.GCodeProfile{Name: "Shop"}, ""); err != nil {
		t.Fatalf("putProfile: %v", err)
	}
	if err := a.putProfile(model.GCodeProfile{Name: "Shop"}, ""); err == nil {
		t.Error("expected an error for a duplicate name")
	}
	if err := a.putProfile(model.GCodeProfile{Name: "Grbl"}, ""); !errors.Is(err, project.ErrProfileBuiltIn) {
		t.Errorf("expected ErrProfileBuiltIn, got %v", err)
	}
	if err := a.putProfile(model.GCodeProfile{Name: "  "}, ""); !errors.Is(err, project.ErrProfileNoName) {
		t.Errorf("expected ErrProfileNoName, got %v", err)
	}

	// rename in place
	if err := a.putProfile(model.GCodeProfile{Name: "Garage", DecimalPlaces: 2}, "Shop"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(a.profiles) != 1 || a.profiles[0].Name != "Garage" {
		t.Errorf("expected only Garage, got %+v", a.profiles)
	}

	a.removeProfile("Garage")
	if len(a.profiles) != 0 {
		t.Errorf("expected no custom profiles, got %d", len(a.profiles))
	}
}

func TestProfileNames(t *testing.T) {
	a := &App{profiles: []model.GCodeProfile{{Name: "Shop"}}}

	got := a.profileNames()
	want := []string{"Grbl", "Mach3", "Generic", "Shop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(a.allProfiles()) != len(model.GCodeProfiles)+1 {
		t.Error("allProfiles should list built-in and custom profiles")
	}
}

func TestCloneProfileDoesNotShareCode(t *testing.T) {
	src := model.GetProfile("Grbl")
	dup := cloneProfile(src)
	dup.StartCode[0] = "changed"

	if model.GetProfile("Grbl").StartCode[0] == "changed" {
		t.Error("clone shares its start code with the built-in profile")
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines(" G90\n\n  G21 \n")
	if !reflect.DeepEqual(got, []string{"G90", "G21"}) {
		t.Errorf("unexpected lines %q", got)
	}
}
