package model

// Cutout is a rectangle on the board after a solve: a placed piece, an
// unplaced piece or the leftover region. Positions are top-left corners in mm.
type Cutout struct {
	PieceID    string     `json:"piece_id,omitempty"`
	Label      string     `json:"label,omitempty"`
	Position   Point      `json:"position"`
	Dimensions Dimensions `json:"dimensions"`
	Rotated    bool       `json:"rotated,omitempty"` // placed turned by 90°
}

// StraightenedDimensions returns (max(h,w), min(h,w)).
func (c Cutout) StraightenedDimensions() Dimensions {
	return c.Dimensions.Straightened()
}

// Area returns the cutout area in mm².
func (c Cutout) Area() float64 {
	return c.Dimensions.Area()
}

// Right returns the x coordinate of the right edge.
func (c Cutout) Right() float64 {
	return c.Position.X + c.Dimensions.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (c Cutout) Bottom() float64 {
	return c.Position.Y + c.Dimensions.Height
}

// Solution is the result of solving one board.
type Solution struct {
	Cutouts  []Cutout `json:"cutouts"`
	Leftover []Cutout `json:"leftover"` // zero or one region, only after packing
	Unfits   []Cutout `json:"unfits"`   // pieces that could not be placed
	Board    Board    `json:"board"`
	Optimal  bool     `json:"optimal"` // false when a time limit stopped the search
}

// AllPlaced reports whether every requested piece was placed.
func (s Solution) AllPlaced() bool {
	return len(s.Unfits) == 0
}

// PlacedArea returns the total area of placed pieces.
func (s Solution) PlacedArea() float64 {
	var total float64
	for _, c := range s.Cutouts {
		total += c.Area()
	}
	return total
}

// UnfitArea returns the total area of pieces that could not be placed.
func (s Solution) UnfitArea() float64 {
	var total float64
	for _, c := range s.Unfits {
		total += c.Area()
	}
	return total
}

// LeftoverArea returns the area of the leftover region, if any.
func (s Solution) LeftoverArea() float64 {
	var total float64
	for _, c := range s.Leftover {
		total += c.Area()
	}
	return total
}

// Efficiency returns the share of the board covered by placed pieces, in percent.
func (s Solution) Efficiency() float64 {
	ta := s.Board.Area()
	if ta == 0 {
		return 0
	}
	return (s.PlacedArea() / ta) * 100.0
}

// WasteArea returns the board area that is neither placed nor leftover:
// kerf lines and gaps between pieces.
func (s Solution) WasteArea() float64 {
	waste := s.Board.Area() - s.PlacedArea() - s.LeftoverArea()
	if waste < 0 {
		return 0
	}
	return waste
}
