package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/sawfit/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestSolution()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	assertNonEmptyFile(t, path, 500)
}

func TestExportLabels_NoPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.pdf")

	sol := buildTestSolution()
	sol.Cutouts = nil

	err := ExportLabels(path, sol)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestSolution())

	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	if labels[0].PieceLabel != "Side Panel" || labels[0].Height != 400 || labels[0].Width != 600 {
		t.Errorf("unexpected first label: %+v", labels[0])
	}
	if labels[1].X != 603 || labels[1].Y != 0 {
		t.Errorf("expected Top at (603, 0), got (%v, %v)", labels[1].X, labels[1].Y)
	}
	// unlabeled pieces fall back to their ID
	if labels[2].PieceLabel != "p3" || !labels[2].Rotated {
		t.Errorf("unexpected third label: %+v", labels[2])
	}
}

func TestLabelInfo_JSONRoundTrip(t *testing.T) {
	info := CollectLabelInfos(buildTestSolution())[2]

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded LabelInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != info {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, info)
	}
}

func TestExportLabels_ManyPieces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 pieces span two label pages
	sol := model.Solution{Board: model.Board{Height: 2000, Width: 2000}}
	for i := 0; i < 35; i++ {
		sol.Cutouts = append(sol.Cutouts, model.Cutout{
			PieceID:    fmt.Sprintf("p%d", i),
			Label:      fmt.Sprintf("A very long piece label that will not fit %d", i),
			Position:   model.Point{X: float64(i%7) * 250, Y: float64(i/7) * 250},
			Dimensions: model.Dimensions{Height: 200, Width: 200},
		})
	}

	if err := ExportLabels(path, sol); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	assertNonEmptyFile(t, path, 1000)
}
