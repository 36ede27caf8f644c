package ui

import (
	"testing"

	"github.com/piwi3910/sawfit/internal/model"
)

var testBoard = model.Board{Height: 1000, Width: 2000, SawWidth: 2.5}

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("new history should have nothing to undo or redo")
	}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory()

	h.Push(MakeSnapshot(testBoard, nil, "empty"))
	one := []model.Piece{{ID: "p1", Height: 100, Width: 50}}
	h.Push(MakeSnapshot(testBoard, one, "one piece"))

	two := append(append([]model.Piece{}, one...), model.Piece{ID: "p2", Height: 20, Width: 20, CanRotate: true})
	current := MakeSnapshot(testBoard, two, "two pieces")

	restored, ok := h.Undo(current)
	if !ok {
		t.Fatal("first undo should succeed")
	}
	if len(restored.Pieces) != 1 {
		t.Errorf("expected 1 piece, got %d", len(restored.Pieces))
	}

	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo should succeed")
	}
	if len(redone.Pieces) != 2 {
		t.Errorf("expected 2 pieces after redo, got %d", len(redone.Pieces))
	}
}

func TestUndoEmpty(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Undo(MakeSnapshot(testBoard, nil, "")); ok {
		t.Error("undo on empty history should fail")
	}
	if _, ok := h.Redo(MakeSnapshot(testBoard, nil, "")); ok {
		t.Error("redo on empty history should fail")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(testBoard, nil, "a"))
	h.Undo(MakeSnapshot(testBoard, nil, "b"))
	if !h.CanRedo() {
		t.Fatal("expected redo after undo")
	}

	h.Push(MakeSnapshot(testBoard, nil, "c"))
	if h.CanRedo() {
		t.Error("push should clear the redo stack")
	}
}

func TestMaxDepth(t *testing.T) {
	h := NewHistory()
	h.maxDepth = 3
	for _, label := range []string{"1", "2", "3", "4", "5"} {
		h.Push(MakeSnapshot(testBoard, nil, label))
	}

	if len(h.undoStack) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(h.undoStack))
	}
	if h.undoStack[0].Label != "3" {
		t.Errorf("expected oldest kept snapshot to be 3, got %s", h.undoStack[0].Label)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	pieces := []model.Piece{{ID: "p1", Height: 10, Width: 10}}
	snap := MakeSnapshot(testBoard, pieces, "before")

	pieces[0].Height = 99
	if snap.Pieces[0].Height != 10 {
		t.Error("snapshot should not see later edits")
	}
}

func TestSnapshotRestoresBoard(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(testBoard, nil, "board"))

	bigger := testBoard
	bigger.Width = 3000
	restored, _ := h.Undo(MakeSnapshot(bigger, nil, "resize"))
	if restored.Board != testBoard {
		t.Errorf("expected %+v, got %+v", testBoard, restored.Board)
	}
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(testBoard, nil, "a"))
	h.Undo(MakeSnapshot(testBoard, nil, "b"))
	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("clear should empty both stacks")
	}
}
