package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/sawfit/internal/model"
)

// Extension is the file extension of saved problems.
const Extension = ".sawfit"

// SaveProblem writes p to path as JSON, adding the .sawfit extension when
// path has none.
func SaveProblem(path string, p model.Problem) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension
	}
	if err := writeJSON(path, p); err != nil {
		return "", err
	}
	return path, nil
}

// LoadProblem reads a problem saved by SaveProblem and validates its board
// and pieces.
func LoadProblem(path string) (model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Problem{}, fmt.Errorf("read problem: %w", err)
	}

	p := model.NewProblem()
	p.Name = ""
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Problem{}, fmt.Errorf("parse problem %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if p.Pieces == nil {
		p.Pieces = []model.Piece{}
	}

	if _, err := model.NewBoard(p.Board.Height, p.Board.Width, p.Board.SawWidth); err != nil {
		return model.Problem{}, fmt.Errorf("problem %s: %w", path, err)
	}
	for i, piece := range p.Pieces {
		if err := piece.Validate(); err != nil {
			return model.Problem{}, fmt.Errorf("problem %s piece %d: %w", path, i+1, err)
		}
	}
	return p, nil
}
