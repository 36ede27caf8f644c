package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/sawfit/internal/model"
)

var ErrMalformed = errors.New("malformed problem description")

var (
	boardToken = regexp.MustCompile(`^B:([0-9]+(?:\.[0-9]+)?)x([0-9]+(?:\.[0-9]+)?)$`)
	sawToken   = regexp.MustCompile(`^S:([0-9]+(?:\.[0-9]+)?)$`)
	pieceToken = regexp.MustCompile(`^(?:([0-9]+)x)?([0-9]+(?:\.[0-9]+)?)x([0-9]+(?:\.[0-9]+)?)(r?)$`)
)

// ParseProblem parses a description such as
//
//	B:1200x800 S:2.5 450x300 500x600r 2x450x600
//
// The board comes first as height x width, then the saw width, then the
// pieces. A piece may start with a copy count and end with r when it may be
// rotated. Any malformed token fails the whole parse.
func ParseProblem(desc string) (model.Problem, error) {
	fields := strings.Fields(desc)
	if len(fields) < 2 {
		return model.Problem{}, fmt.Errorf("expected B:<height>x<width> S:<saw width> [pieces...]: %w", ErrMalformed)
	}

	m := boardToken.FindStringSubmatch(fields[0])
	if m == nil {
		return model.Problem{}, fmt.Errorf("board token %q should look like B:<height>x<width>: %w", fields[0], ErrMalformed)
	}
	height, _ := strconv.ParseFloat(m[1], 64)
	width, _ := strconv.ParseFloat(m[2], 64)

	m = sawToken.FindStringSubmatch(fields[1])
	if m == nil {
		return model.Problem{}, fmt.Errorf("saw token %q should look like S:<saw width>: %w", fields[1], ErrMalformed)
	}
	saw, _ := strconv.ParseFloat(m[1], 64)

	board, err := model.NewBoard(height, width, saw)
	if err != nil {
		return model.Problem{}, err
	}

	problem := model.NewProblem()
	problem.Board = board
	for _, tok := range fields[2:] {
		p, err := ParsePiece(tok)
		if err != nil {
			return model.Problem{}, err
		}
		problem.Pieces = append(problem.Pieces, p)
	}
	if n := model.CountPieces(problem.Pieces); n > model.MaxPieces {
		return model.Problem{}, fmt.Errorf("%d pieces, at most %d: %w", n, model.MaxPieces, ErrMalformed)
	}
	return problem, nil
}

// ParsePiece parses a single piece token like 23.5x33, 34.5x3r or 2x450x600.
func ParsePiece(tok string) (model.Piece, error) {
	m := pieceToken.FindStringSubmatch(tok)
	if m == nil {
		return model.Piece{}, fmt.Errorf("piece token %q should look like [<n>x]<height>x<width>[r]: %w", tok, ErrMalformed)
	}
	height, _ := strconv.ParseFloat(m[2], 64)
	width, _ := strconv.ParseFloat(m[3], 64)

	p := model.NewPiece(height, width, m[4] == "r")
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > model.MaxPieces {
			return model.Piece{}, fmt.Errorf("piece token %q: copy count must be between 1 and %d: %w", tok, model.MaxPieces, ErrMalformed)
		}
		p.Quantity = n
	}
	if err := p.Validate(); err != nil {
		return model.Piece{}, fmt.Errorf("piece token %q: %w", tok, err)
	}
	return p, nil
}

// FormatProblem renders a board and pieces in the description format
// accepted by ParseProblem.
func FormatProblem(board model.Board, pieces []model.Piece) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B:%sx%s S:%s", formatMM(board.Height), formatMM(board.Width), formatMM(board.SawWidth))
	for _, p := range pieces {
		sb.WriteByte(' ')
		sb.WriteString(FormatPiece(p))
	}
	return sb.String()
}

// FormatPiece renders one piece as a description token.
func FormatPiece(p model.Piece) string {
	var sb strings.Builder
	if p.Quantity > 1 {
		fmt.Fprintf(&sb, "%dx", p.Quantity)
	}
	sb.WriteString(formatMM(p.Height))
	sb.WriteByte('x')
	sb.WriteString(formatMM(p.Width))
	if p.CanRotate {
		sb.WriteByte('r')
	}
	return sb.String()
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
