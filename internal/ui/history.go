package ui

import "github.com/piwi3910/sawfit/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the board and piece list at a point in time.
type Snapshot struct {
	Board  model.Board
	Pieces []model.Piece
	Label  string // what the next change did, e.g. "Add Piece"
}

// History keeps undo/redo stacks of problem snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push saves a snapshot taken before a modification and clears the redo
// stack.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo returns the snapshot to restore and moves current onto the redo
// stack. The boolean is false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// MakeSnapshot copies the piece slice so later edits do not leak into the
// snapshot.
func MakeSnapshot(board model.Board, pieces []model.Piece, label string) Snapshot {
	var cp []model.Piece
	if pieces != nil {
		cp = make([]model.Piece, len(pieces))
		copy(cp, pieces)
	}
	return Snapshot{Board: board, Pieces: cp, Label: label}
}
