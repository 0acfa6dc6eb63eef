// Raster rendering of diagrams. Mirrors the SVG renderer using a gg
// canvas, so the rounded wire corners come out identical.

package diagramfile

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width    int
	Height   int
	Padding  int
	FontSize float64
	ShowGrid bool
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Padding:  50,
		FontSize: 14,
	}
}

var (
	pngBlockFill   = color.RGBA{220, 220, 220, 255}
	pngBlockStroke = color.RGBA{60, 60, 60, 255}
	pngText        = color.RGBA{30, 30, 30, 255}
	pngGrid        = color.RGBA{220, 220, 220, 255}
	pngUnassigned  = color.RGBA{0, 0, 139, 255} // darkblue
	pngOutput      = color.RGBA{0, 128, 0, 255} // green
	pngInput       = color.RGBA{255, 165, 0, 255} // orange
)

// WritePNG renders the graph's current geometry as a PNG image.
func WritePNG(w io.Writer, g *diagram.Graph, opts PNGOptions) error {
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

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	face, err := labelFace(opts.FontSize)
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}
	dc.SetFontFace(face)

	if opts.ShowGrid {
		drawGrid(dc, width, height)
	}

	radius := g.Options().Router.CornerRadius
	dc.SetColor(color.Black)
	dc.SetLineWidth(3)
	for _, geo := range g.WireGeometries() {
		drawWire(dc, geo.Points, radius)
		dc.Stroke()
	}

	for _, b := range g.Blocks() {
		dc.DrawRoundedRectangle(b.Pos.X, b.Pos.Y, b.W, b.H, 16)
		dc.SetColor(pngBlockFill)
		dc.FillPreserve()
		dc.SetColor(pngBlockStroke)
		dc.SetLineWidth(2)
		dc.Stroke()

		if b.Label != "" {
			dc.SetColor(pngText)
			dc.DrawStringAnchored(b.Label, b.Pos.X+b.W/2, b.Pos.Y+b.H/2, 0.5, 0.5)
		}

		for _, pid := range b.Ports {
			p, _ := g.Port(pid)
			anchor, _ := g.Anchor(pid)
			dc.DrawCircle(anchor.X, anchor.Y, 6)
			switch p.Role {
			case diagram.RoleOutput:
				dc.SetColor(pngOutput)
			case diagram.RoleInput:
				dc.SetColor(pngInput)
			default:
				dc.SetColor(pngUnassigned)
			}
			dc.Fill()
		}
	}

	return dc.EncodePNG(w)
}

// drawWire traces a routed polyline with rounded corners onto the canvas.
func drawWire(dc *gg.Context, points []diagram.Point, radius float64) {
	for _, cmd := range diagram.RenderPath(points, radius) {
		switch cmd.Op {
		case diagram.OpMove:
			dc.MoveTo(cmd.To.X, cmd.To.Y)
		case diagram.OpLine:
			dc.LineTo(cmd.To.X, cmd.To.Y)
		case diagram.OpQuad:
			dc.QuadraticTo(cmd.Ctrl.X, cmd.Ctrl.Y, cmd.To.X, cmd.To.Y)
		}
	}
}

func drawGrid(dc *gg.Context, width, height int) {
	dc.SetColor(pngGrid)
	dc.SetLineWidth(1)
	for x := CellSize; x < float64(width); x += CellSize {
		dc.DrawLine(x, 0, x, float64(height))
	}
	for y := CellSize; y < float64(height); y += CellSize {
		dc.DrawLine(0, y, float64(width), y)
	}
	dc.Stroke()
}

func labelFace(size float64) (font.Face, error) {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size: size,
		DPI:  72,
	})
}
