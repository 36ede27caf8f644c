package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// MoveType classifies a toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	default:
		return "unknown"
	}
}

// Move is a single G0/G1 movement in absolute coordinates.
type Move struct {
	Type     MoveType
	Line     int // 1-based line in the program
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Cutting reports whether the move removes material: a feed in the XY plane
// below the surface.
func (m Move) Cutting() bool {
	return m.Type == MoveFeed && m.ToZ < 0
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads a GCode program into moves, tracking the absolute position.
// Only G0 and G1 are interpreted; everything else, including comments in
// either ; or () syntax, is skipped.
func Parse(code string) []Move {
	var moves []Move
	curX, curY, curZ, curFeed := 0.0, 0.0, 0.0, 0.0

	for n, line := range strings.Split(code, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		word, _, _ := strings.Cut(upper, " ")
		var rapid bool
		switch word {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		default:
			continue
		}

		toX, toY, toZ, feed := curX, curY, curZ, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				toX = val
			case "Y":
				toY = val
			case "Z":
				toZ = val
			case "F":
				feed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(rapid, curZ, toZ, curX != toX || curY != toY),
			Line:     n + 1,
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      toX,
			ToY:      toY,
			ToZ:      toZ,
			FeedRate: feed,
		})
		curX, curY, curZ, curFeed = toX, toY, toZ, feed
	}

	return moves
}

func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		}
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType from the command and the motion.
func classifyMove(rapid bool, fromZ, toZ float64, hasXY bool) MoveType {
	zDelta := toZ - fromZ
	switch {
	case rapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}
