package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/sawfit/internal/model"
)

// guillotinePacker places pieces on one board with the maximal rectangles
// method. A placed piece reserves its size plus one kerf to the right and
// below. The free area starts one kerf larger than the board so a piece can
// still touch the far edges. Units are tenths of a millimetre.
type guillotinePacker struct {
	freeRects []rect
	kerf      int64
}

type rect struct {
	x, y, w, h int64
}

func newGuillotinePacker(height, width, kerf int64) *guillotinePacker {
	return &guillotinePacker{
		freeRects: []rect{{0, 0, width + kerf, height + kerf}},
		kerf:      kerf,
	}
}

// bestFit returns the free rectangle a w×h piece wastes the least area in,
// with that waste. The index is -1 when the piece fits nowhere.
func (gp *guillotinePacker) bestFit(w, h int64) (int, int64) {
	wk, hk := w+gp.kerf, h+gp.kerf
	best, bestWaste := -1, int64(math.MaxInt64)
	for i, r := range gp.freeRects {
		if wk <= r.w && hk <= r.h {
			if waste := r.w*r.h - wk*hk; waste < bestWaste {
				best, bestWaste = i, waste
			}
		}
	}
	return best, bestWaste
}

// insert places a w×h piece using Best Area Fit and returns its corner.
func (gp *guillotinePacker) insert(w, h int64) (int64, int64, bool) {
	i, _ := gp.bestFit(w, h)
	if i < 0 {
		return 0, 0, false
	}
	x, y := gp.freeRects[i].x, gp.freeRects[i].y
	gp.splitAroundPlacement(rect{x: x, y: y, w: w + gp.kerf, h: h + gp.kerf})
	return x, y, true
}

// splitAroundPlacement replaces every free rectangle the placed one overlaps
// by its up to four maximal leftovers.
func (gp *guillotinePacker) splitAroundPlacement(placed rect) {
	var next []rect
	for _, r := range gp.freeRects {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}
		if placed.x > r.x {
			next = append(next, rect{r.x, r.y, placed.x - r.x, r.h})
		}
		if placed.x+placed.w < r.x+r.w {
			next = append(next, rect{placed.x + placed.w, r.y, r.x + r.w - placed.x - placed.w, r.h})
		}
		if placed.y > r.y {
			next = append(next, rect{r.x, r.y, r.w, placed.y - r.y})
		}
		if placed.y+placed.h < r.y+r.h {
			next = append(next, rect{r.x, placed.y + placed.h, r.w, r.y + r.h - placed.y - placed.h})
		}
	}
	gp.freeRects = pruneContained(next)
}

// rectsOverlap reports whether a and b share area, not just an edge.
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

// pruneContained drops every rectangle that lies inside another one. Of two
// equal rectangles the first is kept.
func pruneContained(rects []rect) []rect {
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i != j && containsRect(b, a) && (a != b || j < i) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x && outer.y <= inner.y &&
		outer.x+outer.w >= inner.x+inner.w && outer.y+outer.h >= inner.y+inner.h
}

// greedyOrders are the piece orderings greedyLayout tries.
var greedyOrders = []func(a, b model.Piece) bool{
	func(a, b model.Piece) bool { return a.HeightTmm()*a.WidthTmm() > b.HeightTmm()*b.WidthTmm() },
	func(a, b model.Piece) bool {
		return max(a.HeightTmm(), a.WidthTmm()) > max(b.HeightTmm(), b.WidthTmm())
	},
	func(a, b model.Piece) bool { return a.HeightTmm() > b.HeightTmm() },
	func(a, b model.Piece) bool { return a.WidthTmm() > b.WidthTmm() },
}

// greedyLayout packs the pieces onto one board with every ordering in
// greedyOrders and keeps the layout that places the most area. placed[i]
// tells whether pieces[i] made it; at[i] is only meaningful when it did.
// A rotatable piece goes in whichever orientation wastes less.
func greedyLayout(board model.Board, pieces []model.Piece) (at []placement, placed []bool) {
	var bestArea int64 = -1
	for _, less := range greedyOrders {
		order := make([]int, len(pieces))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return less(pieces[order[i]], pieces[order[j]]) })

		gp := newGuillotinePacker(board.HeightTmm(), board.WidthTmm(), board.SawWidthTmm())
		try := make([]placement, len(pieces))
		ok := make([]bool, len(pieces))
		var area int64
		for _, i := range order {
			p := placement{h: pieces[i].HeightTmm(), w: pieces[i].WidthTmm()}
			if pieces[i].CanRotate && p.h != p.w {
				straight, straightWaste := gp.bestFit(p.w, p.h)
				turned, turnedWaste := gp.bestFit(p.h, p.w)
				if turned >= 0 && (straight < 0 || turnedWaste < straightWaste) {
					p.rotated = true
					p.h, p.w = p.w, p.h
				}
			}
			x, y, fits := gp.insert(p.w, p.h)
			if !fits {
				continue
			}
			p.x, p.y = x, y
			try[i], ok[i] = p, true
			area += p.h * p.w
		}
		if area > bestArea {
			bestArea, at, placed = area, try, ok
		}
	}
	return at, placed
}
