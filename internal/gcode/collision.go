package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/sawfit/internal/model"
)

// clearanceTolerance absorbs rounding from the program's decimal places.
const clearanceTolerance = 1e-3

// Nick is a cutting move whose tool edge enters a placed piece.
type Nick struct {
	PieceID   string
	Line      int     // program line of the offending move
	Clearance float64 // distance from the tool centre to the piece, less than the tool radius
}

func (n Nick) String() string {
	return fmt.Sprintf("line %d cuts into %s (clearance %.2fmm)", n.Line, n.PieceID, n.Clearance)
}

// CheckToolpath replays a program against the solved board and reports
// every cutting move that comes closer to a placed piece than the tool
// radius. Perimeter passes of a piece run exactly one radius away from it,
// so only neighbours closer than a tool diameter are reported.
func CheckToolpath(code string, sol model.Solution, toolDiameter float64) []Nick {
	toolR := toolDiameter / 2
	var nicks []Nick
	for _, m := range Parse(code) {
		if !m.Cutting() {
			continue
		}
		for _, c := range sol.Cutouts {
			d := segmentToRect(m.FromX, m.FromY, m.ToX, m.ToY, c)
			if d < toolR-clearanceTolerance {
				nicks = append(nicks, Nick{PieceID: c.PieceID, Line: m.Line, Clearance: d})
			}
		}
	}
	return nicks
}

// segmentToRect returns the distance between an axis aligned segment and a
// cutout. Generated perimeters only move along one axis at a time, so the
// segment is treated as its bounding box.
func segmentToRect(x0, y0, x1, y1 float64, c model.Cutout) float64 {
	minX, maxX := math.Min(x0, x1), math.Max(x0, x1)
	minY, maxY := math.Min(y0, y1), math.Max(y0, y1)

	dx := math.Max(0, math.Max(c.Position.X-maxX, minX-c.Right()))
	dy := math.Max(0, math.Max(c.Position.Y-maxY, minY-c.Bottom()))
	return math.Hypot(dx, dy)
}
