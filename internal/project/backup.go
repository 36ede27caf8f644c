package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/sawfit/internal/model"
)

const backupVersion = "1"

// BackupData bundles everything under the config directory so it can be
// moved to another machine in one file.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Profiles  []model.GCodeProfile `json:"profiles"`
}

func ExportAllData(path string, config model.AppConfig, profiles []model.GCodeProfile) error {
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Profiles:  profiles,
	}
	if err := writeJSON(path, backup); err != nil {
		return fmt.Errorf("export backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller applies the result.
func ImportAllData(path string) (BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackupData{}, fmt.Errorf("read backup: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("parse backup: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProblems == nil {
		backup.Config.RecentProblems = []string{}
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.GCodeProfile{}
	}
	for _, p := range backup.Profiles {
		if err := checkCustom(p); err != nil {
			return BackupData{}, fmt.Errorf("backup profile: %w", err)
		}
	}
	return backup, nil
}
