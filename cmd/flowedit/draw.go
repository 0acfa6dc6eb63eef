package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// Styles
var (
	styleDefault  = tcell.StyleDefault
	styleMenu     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel  = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleBlock    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBlockSel = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleWire     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	stylePreview  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgOK    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorNavy)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)

	// Port colors by role, matching the renderers
	stylePortFree   = tcell.StyleDefault.Foreground(tcell.ColorNavy).Bold(true)
	stylePortOutput = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePortInput  = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	if len(ed.graph.Blocks()) > 0 || ed.mode == ModeCanvas {
		ed.drawCanvas(w, h)
	}

	switch ed.mode {
	case ModeMenu:
		ed.drawMenuOverlay(w, h)
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeHelp:
		ed.drawHelpOverlay(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas(w, h int) {
	canvasH := h - 2 // Leave room for status bar

	// Wires first so blocks render on top
	for _, geo := range ed.graph.WireGeometries() {
		ed.drawPolyline(geo.Points, styleWire, canvasH)
	}
	if ed.preview != nil {
		ed.drawPolyline(ed.preview, stylePreview, canvasH)
	}

	for _, b := range ed.graph.Blocks() {
		ed.drawBlock(b, canvasH)
	}

	// Ports last, over block borders
	for _, b := range ed.graph.Blocks() {
		for _, pid := range b.Ports {
			p, _ := ed.graph.Port(pid)
			anchor, _ := ed.graph.Anchor(pid)
			cx, cy := ed.worldToCell(anchor)
			if cx < 0 || cx >= w || cy < 0 || cy >= canvasH {
				continue
			}
			ed.screen.SetContent(cx, cy, '●', nil, portStyle(p.Role))
		}
	}
}

func (ed *Editor) drawBlock(b *diagram.Block, canvasH int) {
	x0, y0 := ed.worldToCell(b.Pos)
	x1, y1 := ed.worldToCell(b.Pos.Add(diagram.Point{X: b.W, Y: b.H}))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	style := styleBlock
	if ed.selected[b.ID] {
		style = styleBlockSel
	}

	for y := y0; y <= y1; y++ {
		if y < 0 || y >= canvasH {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 {
				continue
			}
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '┌'
			case y == y0 && x == x1:
				r = '┐'
			case y == y1 && x == x0:
				r = '└'
			case y == y1 && x == x1:
				r = '┘'
			case y == y0 || y == y1:
				r = '─'
			case x == x0 || x == x1:
				r = '│'
			}
			ed.screen.SetContent(x, y, r, nil, style)
		}
	}

	// Label centred inside the box
	if b.Label != "" {
		label := b.Label
		maxLen := x1 - x0 - 1
		if maxLen > 0 && len(label) > maxLen {
			label = label[:maxLen]
		}
		lx := x0 + (x1-x0-len(label))/2 + 1
		ly := (y0 + y1) / 2
		if ly >= 0 && ly < canvasH {
			ed.drawString(lx, ly, label, style)
		}
	}
}

// drawPolyline renders routed waypoints as terminal line segments. Corner
// rounding does not survive character cells, so corners draw sharp here.
func (ed *Editor) drawPolyline(points []diagram.Point, style tcell.Style, canvasH int) {
	w, _ := ed.screen.Size()
	for i := 0; i+1 < len(points); i++ {
		x0, y0 := ed.worldToCell(points[i])
		x1, y1 := ed.worldToCell(points[i+1])
		if x0 == x1 {
			if y1 < y0 {
				y0, y1 = y1, y0
			}
			for y := y0; y <= y1; y++ {
				if y >= 0 && y < canvasH && x0 >= 0 && x0 < w {
					ed.screen.SetContent(x0, y, '│', nil, style)
				}
			}
		} else {
			if x1 < x0 {
				x0, x1 = x1, x0
			}
			for x := x0; x <= x1; x++ {
				if x >= 0 && x < w && y0 >= 0 && y0 < canvasH {
					ed.screen.SetContent(x, y0, '─', nil, style)
				}
			}
		}
	}
}

func portStyle(r diagram.Role) tcell.Style {
	switch r {
	case diagram.RoleOutput:
		return stylePortOutput
	case diagram.RoleInput:
		return stylePortInput
	}
	return stylePortFree
}

func (ed *Editor) drawMenuOverlay(w, h int) {
	menuWidth := 40
	menuHeight := len(ed.menuItems) + 4

	startX := (w - menuWidth) / 2
	startY := (h - menuHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	ed.drawTitledBox(startX, startY, menuWidth, menuHeight, "flowedit")

	for i, item := range ed.menuItems {
		style := styleMenu
		if i == ed.menuSelected {
			style = styleMenuSel
		}
		paddedItem := fmt.Sprintf(" %-*s", menuWidth-3, item)
		ed.drawString(startX+1, startY+2+i, paddedItem, style)
	}
}

func (ed *Editor) drawInputBox(w, h int) {
	boxWidth := 50
	if boxWidth > w-2 {
		boxWidth = w - 2
	}
	startX := (w - boxWidth) / 2
	startY := h/2 - 2

	ed.drawTitledBox(startX, startY, boxWidth, 5, "")
	ed.drawString(startX+2, startY+1, ed.inputPrompt, styleDefault)

	field := ed.inputBuffer + "_"
	if len(field) > boxWidth-4 {
		field = field[len(field)-(boxWidth-4):]
	}
	ed.drawString(startX+2, startY+2, fmt.Sprintf("%-*s", boxWidth-4, field), styleInput)
	ed.drawString(startX+2, startY+3, "Enter to confirm, Esc to cancel", styleHelp)
}

var helpLines = []string{
	"Mouse",
	"  Left click port     Start / complete a wire",
	"  Click wired port    Delete its wire",
	"  Drag block          Move block (wires re-route)",
	"  Right click         Add block / cancel wire",
	"",
	"Keys",
	"  b          Add block at centre",
	"  x / Del    Delete selected blocks",
	"  Ctrl+A     Select all",
	"  Ctrl+C     Copy selection to clipboard",
	"  Ctrl+V     Paste from clipboard",
	"  Ctrl+S     Save",
	"  Arrows     Pan canvas",
	"  Esc        Cancel wire / clear selection / menu",
	"  m          Menu",
	"  q          Quit",
}

func (ed *Editor) drawHelpOverlay(w, h int) {
	boxWidth := 56
	boxHeight := h - 4
	if boxHeight > len(helpLines)+4 {
		boxHeight = len(helpLines) + 4
	}
	startX := (w - boxWidth) / 2
	startY := (h - boxHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	ed.drawTitledBox(startX, startY, boxWidth, boxHeight, "Help")

	visible := boxHeight - 4
	offset := ed.helpScrollOffset
	if offset > len(helpLines)-visible {
		offset = len(helpLines) - visible
	}
	if offset < 0 {
		offset = 0
	}
	ed.helpScrollOffset = offset

	for i := 0; i < visible && offset+i < len(helpLines); i++ {
		ed.drawString(startX+2, startY+2+i, helpLines[offset+i], styleDefault)
	}
}

// drawTitledBox draws a bordered box with optional title
func (ed *Editor) drawTitledBox(x, y, w, h int, title string) {
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		ed.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		titleX := x + (w-len(title)-2)/2
		ed.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		ed.drawString(titleX+1, y, title, styleMenu)
		ed.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		ed.screen.SetContent(x, y+row, '│', nil, styleBorder)
		for col := 1; col < w-1; col++ {
			ed.screen.SetContent(x+col, y+row, ' ', nil, styleDefault)
		}
		ed.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		ed.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (ed *Editor) drawStatusBar(w, h int) {
	name := ed.filename
	if name == "" {
		name = "(untitled)"
	}
	mod := ""
	if ed.modified {
		mod = " [+]"
	}

	left := fmt.Sprintf(" %s%s  %d blocks, %d wires",
		name, mod, len(ed.graph.Blocks()), len(ed.graph.Wires()))
	if ed.session.State() == diagram.StateDrawing {
		left += "  drawing wire"
	}

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, h-2, ' ', nil, styleStatus)
	}
	ed.drawString(0, h-2, left, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgOK
		}
		msg := " " + ed.message + " "
		if len(msg) < w {
			ed.drawString(w-len(msg), h-2, msg, style)
		}
	}

	ed.drawString(0, h-1, " ?:help  m:menu  b:block  Esc:cancel  q:quit", styleHelp)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}
