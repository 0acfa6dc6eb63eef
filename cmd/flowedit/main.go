// Command flowedit is a TUI editor for block diagrams.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/ha1tch/flow-toolkit/pkg/diagram"
	"github.com/ha1tch/flow-toolkit/pkg/diagramfile"
)

// World units per terminal cell. Cells are roughly twice as tall as they
// are wide, so the vertical scale doubles to keep diagram proportions.
const (
	scaleX = 10.0
	scaleY = 20.0
)

// Editor holds all editor state
type Editor struct {
	screen   tcell.Screen
	graph    *diagram.Graph
	session  *diagram.Session
	layout   *diagramfile.Layout
	filename string
	modified bool
	mode     Mode

	message     string
	messageType MessageType

	// Canvas state (world units)
	canvasOffsetX float64
	canvasOffsetY float64

	// Wire preview while a connection is being drawn
	preview []diagram.Point

	// Selection
	selected map[diagram.BlockID]bool

	// Block dragging (mouse)
	dragging   bool
	dragBlock  diagram.BlockID
	dragOffset diagram.Point

	// Left-button tracking
	leftMouseDown bool
	leftDownPt    diagram.Point

	// Double-click detection
	lastClickTime int64
	lastClickPt   diagram.Point

	// Menu state
	menuItems    []string
	menuSelected int

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)

	// Pending block position (for right-click add block)
	pendingInsert diagram.Point

	// Help scroll state
	helpScrollOffset int
}

// Mode represents editor mode
type Mode int

const (
	ModeMenu Mode = iota
	ModeCanvas
	ModeInput
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

func main() {
	g := diagram.New(diagram.DefaultGraphOptions())
	ed := &Editor{
		graph:    g,
		session:  diagram.NewSession(g),
		layout:   diagramfile.DefaultLayout(),
		selected: make(map[diagram.BlockID]bool),
	}

	// Check command line
	if len(os.Args) > 1 {
		ed.filename = os.Args[1]
		if err := ed.loadFile(ed.filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ed.filename, err)
			os.Exit(1)
		}
	}

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed.screen = screen
	ed.updateMenuItems()

	// If file was loaded from command line, go straight to canvas
	if ed.filename != "" && len(ed.graph.Blocks()) > 0 {
		ed.mode = ModeCanvas
	} else {
		ed.mode = ModeMenu
	}

	ed.run()

	screen.Fini()
}

func (ed *Editor) updateMenuItems() {
	ed.menuItems = []string{
		"New Diagram",
		"Open File",
		"Save",
		"Save As",
		"Edit Canvas",
		"Export SVG",
		"Export PNG",
		"Quit",
	}
}

func (ed *Editor) run() {
	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		}
	}
}

// cellToWorld maps a terminal cell to the world point at its centre.
func (ed *Editor) cellToWorld(cx, cy int) diagram.Point {
	return diagram.Point{
		X: ed.canvasOffsetX + (float64(cx)+0.5)*scaleX,
		Y: ed.canvasOffsetY + (float64(cy)+0.5)*scaleY,
	}
}

// worldToCell maps a world point to terminal cell coordinates.
func (ed *Editor) worldToCell(p diagram.Point) (int, int) {
	return int((p.X - ed.canvasOffsetX) / scaleX), int((p.Y - ed.canvasOffsetY) / scaleY)
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ed.mode {
	case ModeMenu:
		return ed.handleMenuKey(ev)
	case ModeCanvas:
		return ed.handleCanvasKey(ev)
	case ModeInput:
		ed.handleInputKey(ev)
	case ModeHelp:
		ed.handleHelpKey(ev)
	}
	return false
}

func (ed *Editor) handleMenuKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.menuSelected > 0 {
			ed.menuSelected--
		}
	case tcell.KeyDown:
		if ed.menuSelected < len(ed.menuItems)-1 {
			ed.menuSelected++
		}
	case tcell.KeyEnter:
		return ed.activateMenuItem()
	case tcell.KeyEscape:
		if len(ed.graph.Blocks()) > 0 {
			ed.mode = ModeCanvas
		}
	}
	return false
}

func (ed *Editor) activateMenuItem() bool {
	switch ed.menuItems[ed.menuSelected] {
	case "New Diagram":
		ed.graph = diagram.New(diagram.DefaultGraphOptions())
		ed.session = diagram.NewSession(ed.graph)
		ed.layout = diagramfile.DefaultLayout()
		ed.selected = make(map[diagram.BlockID]bool)
		ed.filename = ""
		ed.modified = false
		ed.mode = ModeCanvas
		ed.setMessage("New diagram", MsgInfo)
	case "Open File":
		ed.promptInput("Open file: ", func(name string) {
			if name == "" {
				return
			}
			if err := ed.loadFile(name); err != nil {
				ed.setMessage(fmt.Sprintf("Error: %v", err), MsgError)
				return
			}
			ed.filename = name
			ed.modified = false
			ed.mode = ModeCanvas
			ed.setMessage(fmt.Sprintf("Loaded %s", name), MsgSuccess)
		})
	case "Save":
		ed.save()
	case "Save As":
		ed.promptInput("Save as: ", func(name string) {
			if name == "" {
				return
			}
			ed.filename = name
			ed.save()
		})
	case "Edit Canvas":
		ed.mode = ModeCanvas
	case "Export SVG":
		ed.promptInput("SVG file: ", func(name string) {
			if name == "" {
				return
			}
			svg := diagramfile.GenerateSVG(ed.graph, diagramfile.DefaultSVGOptions())
			if err := os.WriteFile(name, []byte(svg), 0644); err != nil {
				ed.setMessage(fmt.Sprintf("Error: %v", err), MsgError)
				return
			}
			ed.setMessage(fmt.Sprintf("Exported %s", name), MsgSuccess)
		})
	case "Export PNG":
		ed.promptInput("PNG file: ", func(name string) {
			if name == "" {
				return
			}
			f, err := os.Create(name)
			if err != nil {
				ed.setMessage(fmt.Sprintf("Error: %v", err), MsgError)
				return
			}
			err = diagramfile.WritePNG(f, ed.graph, diagramfile.DefaultPNGOptions())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				ed.setMessage(fmt.Sprintf("Error: %v", err), MsgError)
				return
			}
			ed.setMessage(fmt.Sprintf("Exported %s", name), MsgSuccess)
		})
	case "Quit":
		return true
	}
	return false
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if ed.session.State() == diagram.StateDrawing {
			ed.session.Cancel()
			ed.preview = nil
			ed.setMessage("Connection cancelled", MsgInfo)
		} else if len(ed.selected) > 0 {
			ed.selected = make(map[diagram.BlockID]bool)
		} else {
			ed.mode = ModeMenu
		}
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyCtrlS:
		ed.save()
	case tcell.KeyCtrlC:
		ed.copySelection()
	case tcell.KeyCtrlV:
		ed.pasteClipboard()
	case tcell.KeyCtrlA:
		for _, b := range ed.graph.Blocks() {
			ed.selected[b.ID] = true
		}
	case tcell.KeyUp:
		ed.canvasOffsetY -= scaleY
	case tcell.KeyDown:
		ed.canvasOffsetY += scaleY
	case tcell.KeyLeft:
		ed.canvasOffsetX -= scaleX
	case tcell.KeyRight:
		ed.canvasOffsetX += scaleX
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'm':
			ed.mode = ModeMenu
		case '?':
			ed.helpScrollOffset = 0
			ed.mode = ModeHelp
		case 'b':
			w, h := ed.screen.Size()
			ed.pendingInsert = ed.cellToWorld(w/2, h/2)
			ed.promptInsertBlock()
		case 'x':
			ed.deleteSelected()
		}
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
		ed.inputBuffer = ""
	case tcell.KeyEnter:
		action := ed.inputAction
		text := strings.TrimSpace(ed.inputBuffer)
		ed.inputBuffer = ""
		ed.mode = ModeCanvas
		if action != nil {
			action(text)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			ed.inputBuffer = ed.inputBuffer[:len(ed.inputBuffer)-1]
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) handleHelpKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.helpScrollOffset > 0 {
			ed.helpScrollOffset--
		}
	case tcell.KeyDown:
		ed.helpScrollOffset++
	default:
		ed.mode = ModeCanvas
	}
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	if ed.mode != ModeCanvas {
		return
	}

	cx, cy := ev.Position()
	pt := ed.cellToWorld(cx, cy)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.Button1 != 0:
		if !ed.leftMouseDown {
			ed.leftMouseDown = true
			ed.leftDownPt = pt
			ed.pointerDown(pt)
		} else if pt != ed.leftDownPt {
			ed.pointerDrag(pt)
		}
	case buttons&tcell.Button2 != 0:
		// Right click: cancel an active connection, otherwise add a block
		if ed.session.State() == diagram.StateDrawing {
			ed.session.Cancel()
			ed.preview = nil
			ed.setMessage("Connection cancelled", MsgInfo)
		} else {
			ed.pendingInsert = pt
			ed.promptInsertBlock()
		}
	default:
		if ed.leftMouseDown {
			ed.leftMouseDown = false
			ed.pointerUp(pt)
		} else if ed.session.State() == diagram.StateDrawing {
			ed.preview = ed.session.PointerMove(pt)
		}
	}
}

func (ed *Editor) pointerDown(pt diagram.Point) {
	now := time.Now().UnixMilli()
	isDouble := now-ed.lastClickTime < 400 && pt.Sub(ed.lastClickPt).Manhattan() < 2*scaleX
	ed.lastClickTime = now
	ed.lastClickPt = pt

	if isDouble {
		ed.session.DoubleClick(pt)
		return
	}

	// A press on a port goes to the connection session
	if _, onPort := ed.graph.PortAt(pt); onPort {
		evt, err := ed.session.PointerDown(pt)
		if err != nil {
			ed.setMessage(fmt.Sprintf("Cannot connect: %v", err), MsgError)
			return
		}
		ed.reportEvent(evt)
		return
	}

	// A press on a block selects it and may start a drag
	if bid, ok := ed.graph.BlockAt(pt); ok {
		if !ed.selected[bid] {
			ed.selected = map[diagram.BlockID]bool{bid: true}
		}
		b, _ := ed.graph.Block(bid)
		ed.dragging = true
		ed.dragBlock = bid
		ed.dragOffset = pt.Sub(b.Pos)
		return
	}

	ed.selected = make(map[diagram.BlockID]bool)
}

func (ed *Editor) pointerDrag(pt diagram.Point) {
	if ed.dragging {
		b, ok := ed.graph.Block(ed.dragBlock)
		if !ok {
			ed.dragging = false
			return
		}
		target := pt.Sub(ed.dragOffset)
		delta := target.Sub(b.Pos)
		if delta == (diagram.Point{}) {
			return
		}

		moves := make(map[diagram.BlockID]diagram.Point)
		for bid := range ed.selected {
			sb, ok := ed.graph.Block(bid)
			if !ok {
				continue
			}
			moves[bid] = sb.Pos.Add(delta)
		}
		if _, err := ed.graph.MoveBlocks(moves); err == nil {
			ed.modified = true
		}
		return
	}

	if ed.session.State() == diagram.StateDrawing {
		ed.preview = ed.session.PointerMove(pt)
	}
}

func (ed *Editor) pointerUp(pt diagram.Point) {
	if ed.dragging {
		ed.dragging = false
		return
	}

	evt, err := ed.session.PointerUp(pt)
	if err != nil {
		ed.setMessage(fmt.Sprintf("Cannot connect: %v", err), MsgError)
		return
	}
	ed.reportEvent(evt)
}

func (ed *Editor) reportEvent(evt diagram.Event) {
	switch evt.Kind {
	case diagram.EventStarted:
		ed.setMessage("Drawing connection (Esc to cancel)", MsgInfo)
	case diagram.EventConnected:
		ed.preview = nil
		ed.modified = true
		ed.setMessage("Connected", MsgSuccess)
	case diagram.EventDeleted:
		ed.preview = nil
		ed.modified = true
		ed.setMessage("Wire deleted", MsgSuccess)
	case diagram.EventCancelled:
		ed.preview = nil
	}
}

func (ed *Editor) promptInsertBlock() {
	ed.promptInput("Block label: ", func(label string) {
		b, err := ed.graph.InsertBlock(label, ed.pendingInsert,
			diagram.DefaultBlockWidth, diagram.DefaultBlockHeight)
		if err != nil {
			ed.setMessage(fmt.Sprintf("Error: %v", err), MsgError)
			return
		}
		ed.selected = map[diagram.BlockID]bool{b.ID: true}
		ed.modified = true
		ed.setMessage("Block added", MsgSuccess)
	})
}

func (ed *Editor) deleteSelected() {
	if len(ed.selected) == 0 {
		ed.setMessage("Nothing selected", MsgInfo)
		return
	}
	n := 0
	for bid := range ed.selected {
		if _, err := ed.graph.DeleteBlock(bid); err == nil {
			n++
		}
	}
	ed.selected = make(map[diagram.BlockID]bool)
	// A deletion may have taken the port a wire is being drawn from
	if ed.session.State() == diagram.StateDrawing {
		if _, ok := ed.graph.Port(ed.session.Source()); !ok {
			ed.session.Cancel()
			ed.preview = nil
		}
	}
	ed.modified = true
	ed.setMessage(fmt.Sprintf("Deleted %d block(s)", n), MsgSuccess)
}

// copySelection puts the selected blocks and their internal wires on the
// system clipboard as snapshot JSON.
func (ed *Editor) copySelection() {
	if len(ed.selected) == 0 {
		ed.setMessage("Nothing selected", MsgInfo)
		return
	}
	ids := make([]diagram.BlockID, 0, len(ed.selected))
	for bid := range ed.selected {
		ids = append(ids, bid)
	}
	snap, err := ed.graph.CopySubset(ids)
	if err != nil {
		ed.setMessage(fmt.Sprintf("Copy failed: %v", err), MsgError)
		return
	}
	data, err := diagramfile.EncodeSnapshot(snap, false)
	if err != nil {
		ed.setMessage(fmt.Sprintf("Copy failed: %v", err), MsgError)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		ed.setMessage(fmt.Sprintf("Clipboard error: %v", err), MsgError)
		return
	}
	ed.setMessage(fmt.Sprintf("Copied %d block(s)", len(ids)), MsgSuccess)
}

func (ed *Editor) pasteClipboard() {
	text, err := clipboard.ReadAll()
	if err != nil {
		ed.setMessage(fmt.Sprintf("Clipboard error: %v", err), MsgError)
		return
	}
	snap, err := diagramfile.DecodeSnapshot([]byte(text))
	if err != nil {
		ed.setMessage("Clipboard does not hold a diagram", MsgError)
		return
	}
	pasted, err := ed.graph.Paste(snap, diagram.Point{X: 50, Y: 50})
	if err != nil {
		ed.setMessage(fmt.Sprintf("Paste failed: %v", err), MsgError)
		return
	}
	ed.selected = make(map[diagram.BlockID]bool)
	for _, bid := range pasted {
		ed.selected[bid] = true
	}
	ed.modified = true
	ed.setMessage(fmt.Sprintf("Pasted %d block(s)", len(pasted)), MsgSuccess)
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.promptInput("Save as: ", func(name string) {
			if name == "" {
				return
			}
			ed.filename = name
			ed.save()
		})
		return
	}
	ed.layout.Editor.CanvasOffsetX = int(ed.canvasOffsetX)
	ed.layout.Editor.CanvasOffsetY = int(ed.canvasOffsetY)
	ed.growScene()
	if err := diagramfile.WriteFlowFile(ed.filename, ed.graph.ExportState(), ed.layout); err != nil {
		ed.setMessage(fmt.Sprintf("Error saving: %v", err), MsgError)
		return
	}
	ed.modified = false
	ed.setMessage(fmt.Sprintf("Saved %s", ed.filename), MsgSuccess)
}

// growScene widens the stored scene so every block still fits.
func (ed *Editor) growScene() {
	maxX, maxY := 0.0, 0.0
	for _, b := range ed.graph.Blocks() {
		if b.Pos.X+b.W > maxX {
			maxX = b.Pos.X + b.W
		}
		if b.Pos.Y+b.H > maxY {
			maxY = b.Pos.Y + b.H
		}
	}
	ed.layout.Editor.Cols, ed.layout.Editor.Rows =
		diagramfile.ExpandScene(ed.layout.Editor.Cols, ed.layout.Editor.Rows, maxX, maxY)
}

func (ed *Editor) loadFile(path string) error {
	snap, layout, err := diagramfile.ReadFlowFile(path)
	if err != nil {
		return err
	}
	g := diagram.New(diagram.DefaultGraphOptions())
	if err := g.ImportState(snap); err != nil {
		return err
	}
	ed.graph = g
	ed.session = diagram.NewSession(g)
	ed.layout = layout
	ed.selected = make(map[diagram.BlockID]bool)
	ed.canvasOffsetX = float64(layout.Editor.CanvasOffsetX)
	ed.canvasOffsetY = float64(layout.Editor.CanvasOffsetY)
	ed.preview = nil
	return nil
}

func (ed *Editor) promptInput(prompt string, action func(string)) {
	ed.inputPrompt = prompt
	ed.inputBuffer = ""
	ed.inputAction = action
	ed.mode = ModeInput
}

func (ed *Editor) setMessage(msg string, t MessageType) {
	ed.message = msg
	ed.messageType = t
}
