package diagramfile

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// SVGOptions controls native SVG rendering.
type SVGOptions struct {
	Width      int    // canvas width in pixels (0 = fit content)
	Height     int    // canvas height in pixels (0 = fit content)
	Padding    int    // padding around content when fitting
	FontSize   int    // font size for block labels
	PortRadius int    // radius of port circles
	WireWidth  int    // wire stroke width
	ShowGrid   bool   // draw the background cell grid
	Title      string // diagram title
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Padding:    50,
		FontSize:   14,
		PortRadius: 6,
		WireWidth:  3,
	}
}

// Port fill colors by role, matching the editor's scheme.
const (
	svgColorUnassigned = "darkblue"
	svgColorOutput     = "green"
	svgColorInput      = "orange"
	svgBlockFill       = "rgb(220,220,220)"
	svgBlockStroke     = "rgb(60,60,60)"
	svgBlockRadius     = 16
)

// GenerateSVG renders the graph's current geometry as an SVG document.
// Wires are drawn from their routed waypoints with rounded corners.
func GenerateSVG(g *diagram.Graph, opts SVGOptions) string {
	width, height := opts.Width, opts.Height
	if width == 0 || height == 0 {
		maxX, maxY := 0.0, 0.0
		for _, b := range g.Blocks() {
			if b.Pos.X+b.W > maxX {
				maxX = b.Pos.X + b.W
			}
			if b.Pos.Y+b.H > maxY {
				maxY = b.Pos.Y + b.H
			}
		}
		width = int(maxX) + opts.Padding
		height = int(maxY) + opts.Padding
		if width < 2*opts.Padding {
			width = 2 * opts.Padding
		}
		if height < 2*opts.Padding {
			height = 2 * opts.Padding
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height))
	sb.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")

	if opts.ShowGrid {
		writeGrid(&sb, width, height)
	}

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(
			`<text x="%d" y="%d" font-size="%d" font-weight="bold">%s</text>`+"\n",
			10, opts.FontSize+6, opts.FontSize+4, html.EscapeString(opts.Title)))
	}

	radius := g.Options().Router.CornerRadius
	for _, geo := range g.WireGeometries() {
		sb.WriteString(fmt.Sprintf(
			`<path d="%s" fill="none" stroke="black" stroke-width="%d"/>`+"\n",
			wirePathData(geo.Points, radius), opts.WireWidth))
	}

	for _, b := range g.Blocks() {
		sb.WriteString(fmt.Sprintf(
			`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%d" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
			b.Pos.X, b.Pos.Y, b.W, b.H, svgBlockRadius, svgBlockFill, svgBlockStroke))
		if b.Label != "" {
			sb.WriteString(fmt.Sprintf(
				`<text x="%.1f" y="%.1f" font-size="%d" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
				b.Pos.X+b.W/2, b.Pos.Y+b.H/2, opts.FontSize, html.EscapeString(b.Label)))
		}
		for _, pid := range b.Ports {
			p, _ := g.Port(pid)
			anchor, _ := g.Anchor(pid)
			sb.WriteString(fmt.Sprintf(
				`<circle cx="%.1f" cy="%.1f" r="%d" fill="%s"/>`+"\n",
				anchor.X, anchor.Y, opts.PortRadius, portColor(p.Role)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// wirePathData converts routed waypoints into an SVG path string, applying
// the rounding radius to each interior corner.
func wirePathData(points []diagram.Point, radius float64) string {
	var sb strings.Builder
	for i, cmd := range diagram.RenderPath(points, radius) {
		if i > 0 {
			sb.WriteString(" ")
		}
		switch cmd.Op {
		case diagram.OpMove:
			sb.WriteString(fmt.Sprintf("M %.1f %.1f", cmd.To.X, cmd.To.Y))
		case diagram.OpLine:
			sb.WriteString(fmt.Sprintf("L %.1f %.1f", cmd.To.X, cmd.To.Y))
		case diagram.OpQuad:
			sb.WriteString(fmt.Sprintf("Q %.1f %.1f %.1f %.1f",
				cmd.Ctrl.X, cmd.Ctrl.Y, cmd.To.X, cmd.To.Y))
		}
	}
	return sb.String()
}

func portColor(r diagram.Role) string {
	switch r {
	case diagram.RoleOutput:
		return svgColorOutput
	case diagram.RoleInput:
		return svgColorInput
	}
	return svgColorUnassigned
}

func writeGrid(sb *strings.Builder, width, height int) {
	cell := int(CellSize)
	for x := cell; x < width; x += cell {
		sb.WriteString(fmt.Sprintf(
			`<line x1="%d" y1="0" x2="%d" y2="%d" stroke="rgb(220,220,220)"/>`+"\n",
			x, x, height))
		sb.WriteString(fmt.Sprintf(
			`<text x="%d" y="12" font-size="10" fill="gray">%s</text>`+"\n",
			x+2, ColumnLabel(x/cell)))
	}
	for y := cell; y < height; y += cell {
		sb.WriteString(fmt.Sprintf(
			`<line x1="0" y1="%d" x2="%d" y2="%d" stroke="rgb(220,220,220)"/>`+"\n",
			y, width, y))
		sb.WriteString(fmt.Sprintf(
			`<text x="2" y="%d" font-size="10" fill="gray">%d</text>`+"\n",
			y+12, y/cell))
	}
}
