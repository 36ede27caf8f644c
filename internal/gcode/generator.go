// Package gcode turns a solved board into router toolpaths: one perimeter
// cut around every placed piece, in as many depth passes as the settings
// ask for.
package gcode

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/model"
)

var ErrInvalidSettings = errors.New("invalid gcode settings")

// Generator produces GCode from a solved board.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// NewWithProfiles is New with user defined profiles taking precedence over
// the built-in ones.
func NewWithProfiles(settings model.CutSettings, custom []model.GCodeProfile) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.ResolveProfile(settings.GCodeProfile, custom),
	}
}

// Validate checks the settings the toolpaths depend on.
func (g *Generator) Validate() error {
	s := g.Settings
	switch {
	case s.ToolDiameter <= 0:
		return fmt.Errorf("tool diameter %.2f: %w", s.ToolDiameter, ErrInvalidSettings)
	case s.CutDepth <= 0:
		return fmt.Errorf("cut depth %.2f: %w", s.CutDepth, ErrInvalidSettings)
	case s.FeedRate <= 0 || s.PlungeRate <= 0:
		return fmt.Errorf("feed %.0f / plunge %.0f: %w", s.FeedRate, s.PlungeRate, ErrInvalidSettings)
	}
	return nil
}

// passes returns the number of depth passes, at least one.
func (g *Generator) passes() int {
	if g.Settings.PassDepth <= 0 || g.Settings.PassDepth >= g.Settings.CutDepth {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
}

// Generate produces the GCode program for a solved board.
func (g *Generator) Generate(sol model.Solution) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	g.writeHeader(&b, sol)

	for i, c := range sol.Cutouts {
		g.writePiece(&b, c, i+1)
	}

	g.writeFooter(&b)
	return b.String(), nil
}

// WriteFile generates the program and writes it to path.
func (g *Generator) WriteFile(path string, sol model.Solution) error {
	code, err := g.Generate(sol)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write gcode: %w", err)
	}
	return nil
}

func (g *Generator) writeHeader(b *strings.Builder, sol model.Solution) {
	p := g.profile

	b.WriteString(g.comment("sawfit GCode"))
	b.WriteString(g.comment(fmt.Sprintf("Board: %.1f x %.1f mm, saw %.1f mm", sol.Board.Height, sol.Board.Width, sol.Board.SawWidth)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Efficiency: %.1f%%", len(sol.Cutouts), sol.Efficiency())))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %d passes", g.Settings.CutDepth, g.passes())))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))

	if g.Settings.ToolDiameter > sol.Board.SawWidth && len(sol.Cutouts) > 1 {
		klog.Warningf("tool diameter %.1fmm is wider than the %.1fmm kerf, neighbouring pieces will be nicked",
			g.Settings.ToolDiameter, sol.Board.SawWidth)
		b.WriteString(g.comment("WARNING: tool is wider than the kerf"))
	}
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	// Initial safe Z retract
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

// writePiece cuts outside the piece perimeter, offset by the tool radius,
// clockwise, one loop per depth pass.
func (g *Generator) writePiece(b *strings.Builder, c model.Cutout, n int) {
	toolR := g.Settings.ToolDiameter / 2.0

	x0 := c.Position.X - toolR
	y0 := c.Position.Y - toolR
	x1 := c.Right() + toolR
	y1 := c.Bottom() + toolR

	name := c.Label
	if name == "" {
		name = c.PieceID
	}
	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s (%g x %g)%s ---",
		n, name, c.Dimensions.Height, c.Dimensions.Width, rotatedStr(c.Rotated))))

	passes := g.passes()
	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
		if passes == 1 {
			depth = g.Settings.CutDepth
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		g.writePerimeter(b, x0, y0, x1, y1)
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}

	b.WriteString("\n")
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64) {
	p := g.profile
	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove, g.format(x1), g.format(y0), g.format(g.Settings.FeedRate)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x1), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y0)))
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
