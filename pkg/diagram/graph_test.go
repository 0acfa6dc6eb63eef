package diagram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// portOn returns the id of the block's port on the given side.
func portOn(t *testing.T, g *Graph, b *Block, side Side) PortID {
	t.Helper()
	for _, pid := range b.Ports {
		p, ok := g.Port(pid)
		require.True(t, ok)
		if p.Side == side {
			return pid
		}
	}
	t.Fatalf("block %s has no %s port", b.ID, side)
	return ""
}

func twoBlocks(t *testing.T) (*Graph, *Block, *Block) {
	t.Helper()
	g := New(DefaultGraphOptions())
	a, err := g.InsertBlock("A", Point{0, 0}, 40, 40)
	require.NoError(t, err)
	b, err := g.InsertBlock("B", Point{200, 100}, 40, 40)
	require.NoError(t, err)
	return g, a, b
}

func TestInsertBlockRegistersUnassignedPorts(t *testing.T) {
	g := New(DefaultGraphOptions())
	b, err := g.InsertBlock("Read Input", Point{100, 50}, 150, 40)
	require.NoError(t, err)

	require.Len(t, b.Ports, 4)
	for _, pid := range b.Ports {
		p, ok := g.Port(pid)
		require.True(t, ok)
		assert.Equal(t, RoleUnassigned, p.Role)
		assert.Equal(t, b.ID, p.Block)
	}

	top, err := g.Anchor(portOn(t, g, b, SideTop))
	require.NoError(t, err)
	assert.Equal(t, Point{175, 50}, top)

	bottom, err := g.Anchor(portOn(t, g, b, SideBottom))
	require.NoError(t, err)
	assert.Equal(t, Point{175, 90}, bottom)

	left, err := g.Anchor(portOn(t, g, b, SideLeft))
	require.NoError(t, err)
	assert.Equal(t, Point{100, 70}, left)

	right, err := g.Anchor(portOn(t, g, b, SideRight))
	require.NoError(t, err)
	assert.Equal(t, Point{250, 70}, right)
}

func TestInsertBlockCustomPorts(t *testing.T) {
	g := New(DefaultGraphOptions())
	b, err := g.InsertBlock("Router", Point{0, 0}, 90, 30, SideTop, SideTop, SideBottom)
	require.NoError(t, err)
	require.Len(t, b.Ports, 3)

	// Two top ports spread evenly along the edge.
	first, err := g.Anchor(b.Ports[0])
	require.NoError(t, err)
	second, err := g.Anchor(b.Ports[1])
	require.NoError(t, err)
	assert.Equal(t, Point{30, 0}, first)
	assert.Equal(t, Point{60, 0}, second)
}

func TestInsertBlockRejectsBadInput(t *testing.T) {
	g := New(DefaultGraphOptions())
	_, err := g.InsertBlock("bad", Point{}, 0, 40)
	assert.Error(t, err)
	_, err = g.InsertBlock("bad", Point{}, 40, 40, Side("middle"))
	assert.Error(t, err)
}

func TestInsertBlockShiftsPastOverlap(t *testing.T) {
	g := New(DefaultGraphOptions())
	_, err := g.InsertBlock("A", Point{0, 0}, 150, 40)
	require.NoError(t, err)
	b, err := g.InsertBlock("B", Point{10, 10}, 150, 40)
	require.NoError(t, err)
	assert.Equal(t, Point{170, 10}, b.Pos)
}

func TestInsertBlockClampsToBounds(t *testing.T) {
	opts := DefaultGraphOptions()
	opts.Bounds = &Rect{0, 0, 500, 500}
	g := New(opts)

	b, err := g.InsertBlock("A", Point{-100, 600}, 150, 40)
	require.NoError(t, err)
	assert.Equal(t, Point{0, 460}, b.Pos)
}

func TestConnectFixesRolesAndRoutes(t *testing.T) {
	g, a, b := twoBlocks(t)
	src := portOn(t, g, a, SideBottom)
	dst := portOn(t, g, b, SideTop)

	w, err := g.Connect(src, dst)
	require.NoError(t, err)

	srcPort, _ := g.Port(src)
	dstPort, _ := g.Port(dst)
	assert.Equal(t, RoleOutput, srcPort.Role)
	assert.Equal(t, RoleInput, dstPort.Role)

	// Horizontal-first route from (20,40) to (220,100) with one bend pair.
	require.Equal(t, []Point{{20, 40}, {140, 40}, {140, 100}, {220, 100}}, w.Path)
	assert.Equal(t, 1, w.Version)

	assert.Equal(t, []WireID{w.ID}, g.PortWires(src))
	assert.Equal(t, []WireID{w.ID}, g.PortWires(dst))
	assert.NoError(t, g.Validate())
}

func TestConnectRejectsSameBlock(t *testing.T) {
	g := New(DefaultGraphOptions())
	a, err := g.InsertBlock("A", Point{0, 0}, 40, 40)
	require.NoError(t, err)

	_, err = g.Connect(portOn(t, g, a, SideTop), portOn(t, g, a, SideBottom))
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
	_, err = g.Connect(a.Ports[0], a.Ports[0])
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
	assert.Empty(t, g.Wires())
}

func TestConnectRejectsUnknownPorts(t *testing.T) {
	g, a, _ := twoBlocks(t)
	_, err := g.Connect(PortID("missing"), a.Ports[0])
	assert.ErrorIs(t, err, ErrUnknownID)
	_, err = g.Connect(a.Ports[0], PortID("missing"))
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestConnectEnforcesSingleOutput(t *testing.T) {
	g := New(DefaultGraphOptions())
	a, _ := g.InsertBlock("A", Point{0, 0}, 40, 40)
	b, _ := g.InsertBlock("B", Point{200, 0}, 40, 40)
	c, _ := g.InsertBlock("C", Point{200, 200}, 40, 40)

	src := portOn(t, g, a, SideRight)
	_, err := g.Connect(src, portOn(t, g, b, SideLeft))
	require.NoError(t, err)

	// Second wire from the same output port: fan-out disabled.
	_, err = g.Connect(src, portOn(t, g, c, SideLeft))
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Len(t, g.Wires(), 1)
	assert.NoError(t, g.Validate())
}

func TestConnectAllowsFanOutWhenEnabled(t *testing.T) {
	opts := DefaultGraphOptions()
	opts.AllowFanOut = true
	g := New(opts)
	a, _ := g.InsertBlock("A", Point{0, 0}, 40, 40)
	b, _ := g.InsertBlock("B", Point{200, 0}, 40, 40)
	c, _ := g.InsertBlock("C", Point{200, 200}, 40, 40)

	src := portOn(t, g, a, SideRight)
	_, err := g.Connect(src, portOn(t, g, b, SideLeft))
	require.NoError(t, err)
	_, err = g.Connect(src, portOn(t, g, c, SideLeft))
	require.NoError(t, err)

	assert.Len(t, g.PortWires(src), 2)
	assert.NoError(t, g.Validate())
}

func TestConnectEnforcesSingleFanIn(t *testing.T) {
	g := New(DefaultGraphOptions())
	a, _ := g.InsertBlock("A", Point{0, 0}, 40, 40)
	b, _ := g.InsertBlock("B", Point{200, 0}, 40, 40)
	c, _ := g.InsertBlock("C", Point{0, 200}, 40, 40)

	dst := portOn(t, g, b, SideLeft)
	_, err := g.Connect(portOn(t, g, a, SideRight), dst)
	require.NoError(t, err)

	_, err = g.Connect(portOn(t, g, c, SideRight), dst)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Len(t, g.Wires(), 1)
}

func TestConnectRejectsRoleConflicts(t *testing.T) {
	g := New(DefaultGraphOptions())
	a, _ := g.InsertBlock("A", Point{0, 0}, 40, 40)
	b, _ := g.InsertBlock("B", Point{200, 0}, 40, 40)
	c, _ := g.InsertBlock("C", Point{0, 200}, 40, 40)

	out := portOn(t, g, a, SideRight)
	in := portOn(t, g, b, SideLeft)
	_, err := g.Connect(out, in)
	require.NoError(t, err)

	// An input port can never be a source.
	_, err = g.Connect(in, portOn(t, g, c, SideTop))
	assert.ErrorIs(t, err, ErrRoleConflict)

	// An output port can never be a target.
	_, err = g.Connect(portOn(t, g, c, SideRight), out)
	assert.ErrorIs(t, err, ErrRoleConflict)
}

func TestMoveBlockReroutesIncidentWires(t *testing.T) {
	g, a, b := twoBlocks(t)
	src := portOn(t, g, a, SideBottom)
	dst := portOn(t, g, b, SideTop)
	w, err := g.Connect(src, dst)
	require.NoError(t, err)

	moved, err := g.MoveBlock(b.ID, Point{300, 200})
	require.NoError(t, err)
	require.Equal(t, []WireID{w.ID}, moved)

	// Anchors recomputed live from the new position, no caching drift.
	anchor, err := g.Anchor(dst)
	require.NoError(t, err)
	assert.Equal(t, Point{320, 200}, anchor)

	// The stored path matches a fresh route over the final anchors.
	start, _ := g.Anchor(src)
	fresh := g.Options().Router.Route(start, DirDown, anchor, DirUp)
	assert.Equal(t, fresh, w.Path)
	assert.Equal(t, 2, w.Version)
}

func TestMoveBlocksBatchReroutesOnce(t *testing.T) {
	g, a, b := twoBlocks(t)
	w, err := g.Connect(portOn(t, g, a, SideBottom), portOn(t, g, b, SideTop))
	require.NoError(t, err)

	// Both endpoints move in the same batch; the wire reroutes once.
	moved, err := g.MoveBlocks(map[BlockID]Point{
		a.ID: {50, 50},
		b.ID: {400, 300},
	})
	require.NoError(t, err)
	require.Equal(t, []WireID{w.ID}, moved)
	assert.Equal(t, 2, w.Version)

	// Both position updates are visible in the recomputed path: the final
	// geometry matches a fresh route from the final anchors.
	start, _ := g.Anchor(w.From)
	end, _ := g.Anchor(w.To)
	assert.Equal(t, g.Options().Router.Route(start, DirDown, end, DirUp), w.Path)
}

func TestMoveBlockUnknownID(t *testing.T) {
	g, a, _ := twoBlocks(t)
	_, err := g.MoveBlock(BlockID("missing"), Point{1, 1})
	assert.ErrorIs(t, err, ErrUnknownID)

	// A failed batch applies nothing.
	_, err = g.MoveBlocks(map[BlockID]Point{a.ID: {99, 99}, "missing": {0, 0}})
	assert.ErrorIs(t, err, ErrUnknownID)
	assert.Equal(t, Point{0, 0}, a.Pos)
}

func TestDeleteWireResetsRoles(t *testing.T) {
	g, a, b := twoBlocks(t)
	src := portOn(t, g, a, SideBottom)
	dst := portOn(t, g, b, SideTop)
	w, err := g.Connect(src, dst)
	require.NoError(t, err)

	require.NoError(t, g.DeleteWire(w.ID))

	srcPort, _ := g.Port(src)
	dstPort, _ := g.Port(dst)
	assert.Equal(t, RoleUnassigned, srcPort.Role)
	assert.Equal(t, RoleUnassigned, dstPort.Role)
	assert.Empty(t, g.PortWires(src))
	assert.Empty(t, g.PortWires(dst))
	assert.ErrorIs(t, g.DeleteWire(w.ID), ErrUnknownID)
	assert.NoError(t, g.Validate())
}

func TestDeleteBlockCascades(t *testing.T) {
	g := New(DefaultGraphOptions())
	a, _ := g.InsertBlock("A", Point{0, 0}, 40, 40)
	b, _ := g.InsertBlock("B", Point{200, 0}, 40, 40)
	c, _ := g.InsertBlock("C", Point{0, 200}, 40, 40)

	w1, err := g.Connect(portOn(t, g, a, SideRight), portOn(t, g, b, SideLeft))
	require.NoError(t, err)
	w2, err := g.Connect(portOn(t, g, c, SideTop), portOn(t, g, a, SideBottom))
	require.NoError(t, err)

	removed, err := g.DeleteBlock(a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []WireID{w1.ID, w2.ID}, removed)

	_, ok := g.Block(a.ID)
	assert.False(t, ok)
	assert.Empty(t, g.Wires())

	// No dangling references to the deleted block or its ports.
	for _, pid := range a.Ports {
		_, ok := g.Port(pid)
		assert.False(t, ok)
		assert.Empty(t, g.PortWires(pid))
	}

	// The surviving endpoints reset to Unassigned.
	for _, blk := range []*Block{b, c} {
		for _, pid := range blk.Ports {
			p, _ := g.Port(pid)
			assert.Equal(t, RoleUnassigned, p.Role)
		}
	}
	assert.NoError(t, g.Validate())
}

func TestDeleteBlockUnknownID(t *testing.T) {
	g := New(DefaultGraphOptions())
	_, err := g.DeleteBlock(BlockID("missing"))
	assert.True(t, errors.Is(err, ErrUnknownID))
}

func TestHitTests(t *testing.T) {
	g, a, _ := twoBlocks(t)

	// Dead center of block A.
	bid, ok := g.BlockAt(Point{20, 20})
	require.True(t, ok)
	assert.Equal(t, a.ID, bid)

	_, ok = g.BlockAt(Point{1000, 1000})
	assert.False(t, ok)

	// Near the bottom port anchor (20,40).
	pid, ok := g.PortAt(Point{24, 43})
	require.True(t, ok)
	assert.Equal(t, portOn(t, g, a, SideBottom), pid)

	_, ok = g.PortAt(Point{20, 60})
	assert.False(t, ok)
}

func TestWireGeometriesAndPortStates(t *testing.T) {
	g, a, b := twoBlocks(t)
	w, err := g.Connect(portOn(t, g, a, SideBottom), portOn(t, g, b, SideTop))
	require.NoError(t, err)

	geos := g.WireGeometries()
	require.Len(t, geos, 1)
	assert.Equal(t, w.ID, geos[0].Wire)
	assert.Equal(t, w.Path, geos[0].Points)

	// Returned points are copies.
	geos[0].Points[0] = Point{-1, -1}
	assert.NotEqual(t, geos[0].Points[0], w.Path[0])

	states := g.PortStates()
	require.Len(t, states, 8)
	byPort := make(map[PortID]Role)
	for _, s := range states {
		byPort[s.Port] = s.Role
	}
	assert.Equal(t, RoleOutput, byPort[w.From])
	assert.Equal(t, RoleInput, byPort[w.To])
}
