// Package tests contains end-to-end scenarios that drive a diagram the way
// the editor does: interactive wiring through a session, block moves,
// clipboard copy, and a save/load round trip through the file format.
package tests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
	"github.com/ha1tch/flow-toolkit/pkg/diagramfile"
)

// portOn returns the port on the given side of a block.
func portOn(t *testing.T, g *diagram.Graph, b *diagram.Block, side diagram.Side) diagram.PortID {
	t.Helper()
	for _, pid := range b.Ports {
		p, ok := g.Port(pid)
		if ok && p.Side == side {
			return pid
		}
	}
	t.Fatalf("Block %s has no %s port", b.ID, side)
	return ""
}

// TestEditingScenario walks a full editing session: three blocks wired into
// a chain, a move that re-routes, a wire deleted by clicking its port, and
// a block deletion that cascades.
func TestEditingScenario(t *testing.T) {
	g := diagram.New(diagram.DefaultGraphOptions())
	s := diagram.NewSession(g)

	start, err := g.InsertBlock("Start", diagram.Point{X: 100, Y: 50}, 150, 40)
	if err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	read, err := g.InsertBlock("Read", diagram.Point{X: 100, Y: 250}, 150, 40)
	if err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	done, err := g.InsertBlock("Done", diagram.Point{X: 400, Y: 250}, 150, 40)
	if err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}

	// Wire Start -> Read through the session, clicking each port
	evt, err := s.ClickPort(portOn(t, g, start, diagram.SideBottom))
	if err != nil {
		t.Fatalf("First click: %v", err)
	}
	if evt.Kind != diagram.EventStarted {
		t.Fatalf("Expected EventStarted, got %v", evt.Kind)
	}
	evt, err = s.ClickPort(portOn(t, g, read, diagram.SideTop))
	if err != nil {
		t.Fatalf("Second click: %v", err)
	}
	if evt.Kind != diagram.EventConnected {
		t.Fatalf("Expected EventConnected, got %v", evt.Kind)
	}

	// Wire Read -> Done
	if _, err := s.ClickPort(portOn(t, g, read, diagram.SideRight)); err != nil {
		t.Fatalf("Third click: %v", err)
	}
	evt, err = s.ClickPort(portOn(t, g, done, diagram.SideLeft))
	if err != nil {
		t.Fatalf("Fourth click: %v", err)
	}
	wireRD := evt.Wire

	if len(g.Wires()) != 2 {
		t.Fatalf("Expected 2 wires, got %d", len(g.Wires()))
	}

	// Moving Done re-routes its wire and nothing else
	rerouted, err := g.MoveBlock(done.ID, diagram.Point{X: 500, Y: 400})
	if err != nil {
		t.Fatalf("MoveBlock: %v", err)
	}
	if len(rerouted) != 1 || rerouted[0] != wireRD {
		t.Errorf("Expected only %s rerouted, got %v", wireRD, rerouted)
	}
	w, _ := g.Wire(wireRD)
	end := w.Path[len(w.Path)-1]
	if end.X != 500 || end.Y != 420 {
		t.Errorf("Wire should end at the moved left port (500, 420), got %v", end)
	}

	// Clicking a connected port deletes its wire
	evt, err = s.ClickPort(portOn(t, g, done, diagram.SideLeft))
	if err != nil {
		t.Fatalf("Delete click: %v", err)
	}
	if evt.Kind != diagram.EventDeleted {
		t.Fatalf("Expected EventDeleted, got %v", evt.Kind)
	}
	p, _ := g.Port(portOn(t, g, read, diagram.SideRight))
	if p.Role != diagram.RoleUnassigned {
		t.Errorf("Source port should return to unassigned, got %v", p.Role)
	}

	// Deleting Start removes its wire too
	if _, err := g.DeleteBlock(start.ID); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	if len(g.Wires()) != 0 {
		t.Errorf("Expected no wires left, got %d", len(g.Wires()))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Graph invalid after edits: %v", err)
	}
}

// TestCopyPasteScenario copies a wired pair of blocks and pastes it back
// offset, doubling the diagram.
func TestCopyPasteScenario(t *testing.T) {
	g := diagram.New(diagram.DefaultGraphOptions())

	a, _ := g.InsertBlock("A", diagram.Point{X: 50, Y: 50}, 150, 40)
	b, _ := g.InsertBlock("B", diagram.Point{X: 50, Y: 250}, 150, 40)
	if _, err := g.Connect(portOn(t, g, a, diagram.SideBottom), portOn(t, g, b, diagram.SideTop)); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	snap, err := g.CopySubset([]diagram.BlockID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("CopySubset: %v", err)
	}

	// The clipboard payload survives a JSON round trip
	data, err := diagramfile.EncodeSnapshot(snap, false)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	snap, err = diagramfile.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	pasted, err := g.Paste(snap, diagram.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if len(pasted) != 2 {
		t.Fatalf("Expected 2 pasted blocks, got %d", len(pasted))
	}
	if len(g.Blocks()) != 4 || len(g.Wires()) != 2 {
		t.Errorf("Expected 4 blocks and 2 wires, got %d and %d", len(g.Blocks()), len(g.Wires()))
	}
	for _, bid := range pasted {
		nb, ok := g.Block(bid)
		if !ok {
			t.Fatalf("Pasted block %s missing", bid)
		}
		if nb.Pos.X != 100 {
			t.Errorf("Pasted block at X=%g, expected 100", nb.Pos.X)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Graph invalid after paste: %v", err)
	}
}

// TestSaveLoadScenario saves a diagram to the archive format and loads it
// back, checking identity and routing survive.
func TestSaveLoadScenario(t *testing.T) {
	g := diagram.New(diagram.DefaultGraphOptions())
	a, _ := g.InsertBlock("Input", diagram.Point{X: 100, Y: 100}, 150, 40)
	b, _ := g.InsertBlock("Process", diagram.Point{X: 400, Y: 300}, 150, 40)
	if _, err := g.Connect(portOn(t, g, a, diagram.SideRight), portOn(t, g, b, diagram.SideLeft)); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var buf bytes.Buffer
	if err := diagramfile.WriteFlow(&buf, g.ExportState(), nil); err != nil {
		t.Fatalf("WriteFlow: %v", err)
	}
	snap, _, err := diagramfile.ReadFlowBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadFlowBytes: %v", err)
	}

	loaded := diagram.New(diagram.DefaultGraphOptions())
	if err := loaded.ImportState(snap); err != nil {
		t.Fatalf("ImportState: %v", err)
	}

	nb, ok := loaded.Block(b.ID)
	if !ok {
		t.Fatal("Block identity lost in round trip")
	}
	if nb.Pos != b.Pos || nb.Label != "Process" {
		t.Errorf("Block changed in round trip: %+v", nb)
	}

	origGeo := g.WireGeometries()
	loadedGeo := loaded.WireGeometries()
	if len(loadedGeo) != 1 {
		t.Fatalf("Expected 1 wire after load, got %d", len(loadedGeo))
	}
	if len(loadedGeo[0].Points) != len(origGeo[0].Points) {
		t.Fatalf("Routing changed in round trip")
	}
	for i := range origGeo[0].Points {
		if loadedGeo[0].Points[i] != origGeo[0].Points[i] {
			t.Errorf("Waypoint %d changed: %v != %v",
				i, loadedGeo[0].Points[i], origGeo[0].Points[i])
		}
	}
}

// TestRenderScenario renders an edited diagram to SVG and checks the
// routed wire shows up with rounded corners.
func TestRenderScenario(t *testing.T) {
	g := diagram.New(diagram.DefaultGraphOptions())
	a, _ := g.InsertBlock("From", diagram.Point{X: 0, Y: 0}, 150, 40)
	b, _ := g.InsertBlock("To", diagram.Point{X: 400, Y: 300}, 150, 40)
	if _, err := g.Connect(portOn(t, g, a, diagram.SideRight), portOn(t, g, b, diagram.SideLeft)); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	svg := diagramfile.GenerateSVG(g, diagramfile.DefaultSVGOptions())
	if !strings.Contains(svg, "Q ") {
		t.Error("Rendered wire should contain rounded corners")
	}
	if !strings.Contains(svg, `fill="green"`) || !strings.Contains(svg, `fill="orange"`) {
		t.Error("Connected ports should render with role colors")
	}
}
