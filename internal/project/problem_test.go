package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sawfit/internal/model"
)

func testProblem() model.Problem {
	p := model.NewProblem()
	p.Name = "Shelf"
	p.Board = model.Board{Height: 1000, Width: 2000, SawWidth: 2.5}
	p.Pieces = []model.Piece{
		{ID: "side", Label: "Side", Height: 23.5, Width: 33, Quantity: 2},
		{ID: "top", Height: 34.5, Width: 3, CanRotate: true, Quantity: 1},
	}
	return p
}

func TestSaveAndLoadProblem(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveProblem(filepath.Join(dir, "shelf"), testProblem())
	require.NoError(t, err)
	assert.Equal(t, Extension, filepath.Ext(path))

	loaded, err := LoadProblem(path)
	require.NoError(t, err)

	assert.Equal(t, "Shelf", loaded.Name)
	assert.Equal(t, testProblem().Board, loaded.Board)
	assert.Equal(t, testProblem().Pieces, loaded.Pieces)
	assert.Equal(t, model.DefaultSettings(), loaded.Settings)
	assert.Nil(t, loaded.Solution)
}

func TestSaveProblemKeepsExplicitExtension(t *testing.T) {
	path, err := SaveProblem(filepath.Join(t.TempDir(), "shelf.json"), testProblem())
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))
}

func TestSaveProblemWithSolution(t *testing.T) {
	p := testProblem()
	p.Solution = &model.Solution{
		Board:   p.Board,
		Cutouts: []model.Cutout{{PieceID: "side-1", Dimensions: model.Dimensions{Height: 23.5, Width: 33}}},
		Optimal: true,
	}

	path, err := SaveProblem(filepath.Join(t.TempDir(), "solved"), p)
	require.NoError(t, err)

	loaded, err := LoadProblem(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Solution)
	assert.Len(t, loaded.Solution.Cutouts, 1)
	assert.True(t, loaded.Solution.Optimal)
}

func TestLoadProblemNameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garage.sawfit")
	data := `{"board": {"height": 100, "width": 100, "saw_width": 0}, "pieces": [{"height": 10, "width": 10, "quantity": 1}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := LoadProblem(path)
	require.NoError(t, err)
	assert.Equal(t, "garage", p.Name)
	assert.Len(t, p.Pieces, 1)
}

func TestLoadProblemRejectsInvalidDimensions(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"board":  `{"board": {"height": 0, "width": 100}}`,
		"tenths": `{"board": {"height": 100, "width": 100.05}}`,
		"piece":  `{"board": {"height": 100, "width": 100}, "pieces": [{"height": -1, "width": 10, "quantity": 1}]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+Extension)
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

			_, err := LoadProblem(path)
			assert.True(t, errors.Is(err, model.ErrInvalidDimension) || errors.Is(err, model.ErrNotTenths), "got %v", err)
		})
	}
}

func TestLoadProblemErrors(t *testing.T) {
	_, err := LoadProblem(filepath.Join(t.TempDir(), "missing.sawfit"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.sawfit")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))
	_, err = LoadProblem(path)
	assert.Error(t, err)
}
