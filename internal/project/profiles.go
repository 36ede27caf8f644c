package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/sawfit/internal/model"
)

var (
	ErrProfileNoName  = errors.New("profile has no name")
	ErrProfileBuiltIn = errors.New("profile name is reserved by a built-in profile")
)

func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves user defined profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	for _, p := range profiles {
		if err := checkCustom(p); err != nil {
			return err
		}
	}
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads user defined profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GCodeProfile{}, nil
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var profiles []model.GCodeProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	if profiles == nil {
		profiles = []model.GCodeProfile{}
	}
	return profiles, nil
}

// ExportProfile writes a single profile to a JSON file for sharing.
func ExportProfile(path string, profile model.GCodeProfile) error {
	return writeJSON(path, profile)
}

// ImportProfile reads a single profile written by ExportProfile.
func ImportProfile(path string) (model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GCodeProfile{}, fmt.Errorf("read profile: %w", err)
	}

	var profile model.GCodeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.GCodeProfile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := checkCustom(profile); err != nil {
		return model.GCodeProfile{}, err
	}
	return profile, nil
}

func checkCustom(p model.GCodeProfile) error {
	if p.Name == "" {
		return ErrProfileNoName
	}
	if model.IsBuiltInProfile(p.Name) {
		return fmt.Errorf("%q: %w", p.Name, ErrProfileBuiltIn)
	}
	return nil
}
