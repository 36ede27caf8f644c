package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sawfit/internal/model"
)

func TestGuillotinePacker_KerfBetweenPiecesOnly(t *testing.T) {
	// 500 + 30 + 470 fills the width exactly; a piece may touch the edge.
	gp := newGuillotinePacker(1000, 1000, 30)

	x, y, ok := gp.insert(500, 1000)
	require.True(t, ok)
	assert.Equal(t, [2]int64{0, 0}, [2]int64{x, y})

	x, _, ok = gp.insert(470, 1000)
	require.True(t, ok)
	assert.Equal(t, int64(530), x)

	_, _, ok = gp.insert(1, 1)
	assert.False(t, ok, "board should be full")
}

func TestGuillotinePacker_BestFit(t *testing.T) {
	gp := newGuillotinePacker(100, 100, 0)
	i, waste := gp.bestFit(40, 60)
	assert.Equal(t, 0, i)
	assert.Equal(t, int64(100*100-40*60), waste)

	i, _ = gp.bestFit(101, 10)
	assert.Equal(t, -1, i)
}

func TestPruneContained_KeepsOneOfEqualRects(t *testing.T) {
	r := rect{0, 0, 10, 10}
	got := pruneContained([]rect{r, {2, 2, 3, 3}, r, {5, 5, 20, 20}})

	assert.Equal(t, []rect{r, {5, 5, 20, 20}}, got)
}

func TestGreedyLayout_SkipsWhatDoesNotFit(t *testing.T) {
	board := mustBoard(t, 100, 100, 0)
	pieces := []model.Piece{piece("small", 50, 50, false), piece("big", 60, 60, false)}

	at, placed := greedyLayout(board, pieces)

	assert.Equal(t, []bool{false, true}, placed)
	assert.Equal(t, placement{h: 600, w: 600}, at[1])
}

func TestGreedyLayout_RotatesWhenOnlyTurnedFits(t *testing.T) {
	board := mustBoard(t, 100, 300, 0)

	at, placed := greedyLayout(board, []model.Piece{piece("turn", 300, 100, true)})

	require.Equal(t, []bool{true}, placed)
	assert.True(t, at[0].rotated)
	assert.Equal(t, int64(1000), at[0].h)
	assert.Equal(t, int64(3000), at[0].w)
}

func TestGreedyLayout_HonoursKerf(t *testing.T) {
	board := mustBoard(t, 1000, 2000, 3)
	var pieces []model.Piece
	sizes := [][2]float64{{500, 400}, {450, 360}, {400, 320}, {300, 240}, {300, 240}, {200, 160}, {120, 96}, {80, 64}, {80, 64}, {40, 32}}
	for i, size := range sizes {
		pieces = append(pieces, piece(string(rune('a'+i)), size[0], size[1], i%3 == 0))
	}

	at, placed := greedyLayout(board, pieces)

	sol := model.Solution{Board: board}
	for i, p := range pieces {
		if placed[i] {
			sol.Cutouts = append(sol.Cutouts, at[i].cutout(p))
		}
	}
	assert.Len(t, sol.Cutouts, len(pieces))
	assertValidLayout(t, sol)
}

func TestHintSeparation_PairWithUnplacedPiece(t *testing.T) {
	board := mustBoard(t, 100, 100, 0)
	pieces := []model.Piece{piece("a", 60, 60, false), piece("b", 50, 50, false)}
	s := newSession("fit", board, pieces, true)

	// b was not placed; its zero placement overlaps nothing useful.
	s.hintSeparation([]placement{{h: 600, w: 600}, {}})

	var set int
	for _, v := range s.pairs[0].indicators {
		if val, ok := s.model.Hint(v); ok && val == 1 {
			set++
		}
	}
	assert.GreaterOrEqual(t, set, 1)
}
