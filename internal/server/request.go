package server

import (
	"encoding/base64"
	"fmt"

	"github.com/piwi3910/sawfit/internal/model"
)

type boardRequest struct {
	Height float64 `json:"height" binding:"required,gt=0"`
	Width  float64 `json:"width" binding:"required,gt=0"`
}

type pieceRequest struct {
	Label     string  `json:"label"`
	Height    float64 `json:"height" binding:"required,gt=0"`
	Width     float64 `json:"width" binding:"required,gt=0"`
	CanRotate bool    `json:"canRotate"`
	Copies    int     `json:"copies" binding:"gte=0"`
}

// problemRequest is the body of POST /problems.
type problemRequest struct {
	Board    boardRequest   `json:"board" binding:"required"`
	SawWidth float64        `json:"sawWidth" binding:"gte=0"`
	Pieces   []pieceRequest `json:"pieces" binding:"required,min=1,dive"`
	// TimeoutSeconds bounds each of the two solve phases separately, so a
	// request may take up to twice this long. Capped at maxTimeout per phase.
	TimeoutSeconds float64 `json:"timeoutSeconds" binding:"gte=0"`
}

func (r problemRequest) toModel() (model.Board, []model.Piece, error) {
	board, err := model.NewBoard(r.Board.Height, r.Board.Width, r.SawWidth)
	if err != nil {
		return model.Board{}, nil, fmt.Errorf("board: %w", err)
	}

	pieces := make([]model.Piece, 0, len(r.Pieces))
	for i, pr := range r.Pieces {
		p := model.NewPiece(pr.Height, pr.Width, pr.CanRotate)
		p.Label = pr.Label
		if pr.Copies > 0 {
			p.Quantity = pr.Copies
		}
		if err := p.Validate(); err != nil {
			return model.Board{}, nil, fmt.Errorf("piece %d: %w", i+1, err)
		}
		pieces = append(pieces, p)
	}
	return board, pieces, nil
}

// solutionResponse is what POST /problems answers with.
type solutionResponse struct {
	Board        model.Board    `json:"board"`
	Cutouts      []model.Cutout `json:"cutouts"`
	Leftover     []model.Cutout `json:"leftover"`
	Unfits       []model.Cutout `json:"unfits"`
	Optimal      bool           `json:"optimal"`
	Efficiency   float64        `json:"efficiency"`
	Illustration string         `json:"illustration"` // base64 PNG
}

func newSolutionResponse(sol model.Solution, png []byte) solutionResponse {
	return solutionResponse{
		Board:        sol.Board,
		Cutouts:      orEmpty(sol.Cutouts),
		Leftover:     orEmpty(sol.Leftover),
		Unfits:       orEmpty(sol.Unfits),
		Optimal:      sol.Optimal,
		Efficiency:   sol.Efficiency(),
		Illustration: base64.StdEncoding.EncodeToString(png),
	}
}

func orEmpty(c []model.Cutout) []model.Cutout {
	if c == nil {
		return []model.Cutout{}
	}
	return c
}
