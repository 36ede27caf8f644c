package gcode

import (
	"testing"
)

func TestParse_BasicMoves(t *testing.T) {
	code := `G90
G0 Z5
G0 X10 Y20
G1 Z-3 F300
G1 X50 F1000
G0 Z5`

	moves := Parse(code)

	want := []MoveType{MoveRetract, MoveRapid, MovePlunge, MoveFeed, MoveRetract}
	if len(moves) != len(want) {
		t.Fatalf("expected %d moves, got %d", len(want), len(moves))
	}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected %s, got %s", i, w, moves[i].Type)
		}
	}

	feed := moves[3]
	if feed.FromX != 10 || feed.ToX != 50 || feed.ToY != 20 || feed.ToZ != -3 {
		t.Errorf("unexpected feed move: %+v", feed)
	}
	if feed.FeedRate != 1000 {
		t.Errorf("expected feed 1000, got %v", feed.FeedRate)
	}
	if feed.Line != 5 {
		t.Errorf("expected line 5, got %d", feed.Line)
	}
	if !feed.Cutting() {
		t.Error("feed below the surface should be cutting")
	}
}

func TestParse_FeedRateCarriesOver(t *testing.T) {
	moves := Parse("G1 X1 Z-1 F500\nG1 X2")

	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].FeedRate != 500 {
		t.Errorf("expected modal feed 500, got %v", moves[1].FeedRate)
	}
}

func TestParse_SkipsCommentsAndOtherCodes(t *testing.T) {
	code := `; header comment
(Mach3 comment)
M3 S18000
G21
G1 X10 Y10 ; trailing comment
G00 X5 (inline) Y6
G01 X7`

	moves := Parse(code)

	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d: %+v", len(moves), moves)
	}
	if moves[1].ToX != 5 || moves[1].ToY != 6 {
		t.Errorf("inline comment should be stripped, got %+v", moves[1])
	}
	if moves[2].Type != MoveFeed {
		t.Errorf("G01 should parse as a feed, got %s", moves[2].Type)
	}
}

func TestParse_NegativeAndDecimalCoordinates(t *testing.T) {
	moves := Parse("G0 X-3.500 Y-0.25")

	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if moves[0].ToX != -3.5 || moves[0].ToY != -0.25 {
		t.Errorf("unexpected coordinates: %+v", moves[0])
	}
}

func TestParse_GeneratedProgram(t *testing.T) {
	code := mustGenerate(t, New(newTestSettings()), newTestSolution())

	var cutting int
	minX, maxX := 1e9, -1e9
	for _, m := range Parse(code) {
		if !m.Cutting() {
			continue
		}
		cutting++
		minX = min(minX, m.ToX)
		maxX = max(maxX, m.ToX)
	}
	if cutting != 4 {
		t.Errorf("expected 4 perimeter moves, got %d", cutting)
	}
	if minX != 7 || maxX != 113 {
		t.Errorf("expected cuts between x=7 and x=113, got %v..%v", minX, maxX)
	}
}

func TestMoveTypeString(t *testing.T) {
	if MovePlunge.String() != "plunge" || MoveType(42).String() != "unknown" {
		t.Error("unexpected MoveType names")
	}
}
