// Package diagram implements the block/wire graph engine behind the
// flowchart editor: block and port models, the wire auto-router, the
// interactive connection state machine, and the mutation operations that
// keep wire geometry consistent as blocks move, are copied, or deleted.
//
// The engine is single-threaded: all mutations are synchronous and complete
// before the call returns, so a host never observes stale geometry. Hosts
// embedding it in concurrent environments must serialize calls themselves.
package diagram

import (
	"fmt"

	"github.com/google/uuid"
)

// PortHitRadius is the pick distance for port hit-testing, derived from the
// editor's 12-unit port ellipse plus a little slack.
const PortHitRadius = 10.0

// GraphOptions configures graph behaviour.
type GraphOptions struct {
	// AllowFanOut permits more than one wire from a single output port.
	// Input ports always accept at most one wire.
	AllowFanOut bool

	// Bounds, when non-nil, clamps block positions so blocks stay inside
	// the scene rectangle.
	Bounds *Rect

	// Router holds the auto-routing parameters.
	Router RouterOptions
}

// DefaultGraphOptions returns the standard single-output configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{Router: DefaultRouterOptions()}
}

// Graph owns all blocks and wires of one diagram. Blocks, ports and wires
// live in flat maps keyed by generated ids; entities reference each other
// by id only, never by pointer, so there are no ownership cycles.
type Graph struct {
	opts GraphOptions

	blocks map[BlockID]*Block
	ports  map[PortID]*Port
	wires  map[WireID]*Wire

	// portWires is the reverse index from port to incident wires. It is
	// maintained on every wire add/remove; a port is in the map only
	// while it has at least one wire.
	portWires map[PortID][]WireID

	blockOrder []BlockID
	wireOrder  []WireID
}

// New creates an empty graph.
func New(opts GraphOptions) *Graph {
	return &Graph{
		opts:      opts,
		blocks:    make(map[BlockID]*Block),
		ports:     make(map[PortID]*Port),
		wires:     make(map[WireID]*Wire),
		portWires: make(map[PortID][]WireID),
	}
}

// Options returns the graph's configuration.
func (g *Graph) Options() GraphOptions {
	return g.opts
}

// Block returns the block with the given id.
func (g *Graph) Block(id BlockID) (*Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Port returns the port with the given id.
func (g *Graph) Port(id PortID) (*Port, bool) {
	p, ok := g.ports[id]
	return p, ok
}

// Wire returns the wire with the given id.
func (g *Graph) Wire(id WireID) (*Wire, bool) {
	w, ok := g.wires[id]
	return w, ok
}

// Blocks returns all blocks in insertion order.
func (g *Graph) Blocks() []*Block {
	out := make([]*Block, 0, len(g.blockOrder))
	for _, id := range g.blockOrder {
		out = append(out, g.blocks[id])
	}
	return out
}

// Wires returns all wires in creation order.
func (g *Graph) Wires() []*Wire {
	out := make([]*Wire, 0, len(g.wireOrder))
	for _, id := range g.wireOrder {
		out = append(out, g.wires[id])
	}
	return out
}

// PortWires returns the ids of wires incident to the port, oldest first.
func (g *Graph) PortWires(id PortID) []WireID {
	ws := g.portWires[id]
	out := make([]WireID, len(ws))
	copy(out, ws)
	return out
}

// InsertBlock creates a block with one port per given side (the standard
// four sides when none are given) and registers it in the graph. All ports
// start Unassigned. The new block is shifted right past any overlapping
// block and clamped into the scene bounds when bounds are configured.
func (g *Graph) InsertBlock(label string, pos Point, w, h float64, sides ...Side) (*Block, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("insert block: size %gx%g not positive", w, h)
	}
	if len(sides) == 0 {
		sides = DefaultSides
	}
	for _, s := range sides {
		if !s.Valid() {
			return nil, fmt.Errorf("insert block: invalid side %q", s)
		}
	}

	pos = g.placeBlock(pos, w, h)
	b := &Block{
		ID:    BlockID(uuid.NewString()),
		Label: label,
		Pos:   pos,
		W:     w,
		H:     h,
	}
	sideCount := make(map[Side]int)
	for _, s := range sides {
		p := &Port{
			ID:    PortID(uuid.NewString()),
			Block: b.ID,
			Side:  s,
			Index: sideCount[s],
		}
		sideCount[s]++
		g.ports[p.ID] = p
		b.Ports = append(b.Ports, p.ID)
	}
	g.blocks[b.ID] = b
	g.blockOrder = append(g.blockOrder, b.ID)
	return b, nil
}

// placeBlock shifts a candidate position right past overlapping blocks and
// clamps it into the scene bounds.
func (g *Graph) placeBlock(pos Point, w, h float64) Point {
	for range g.blockOrder {
		overlap := false
		cand := Rect{pos.X, pos.Y, w, h}
		for _, id := range g.blockOrder {
			if g.blocks[id].Bounds().Intersects(cand) {
				overlap = true
				break
			}
		}
		if !overlap {
			break
		}
		pos.X += w + 10
	}
	if g.opts.Bounds != nil {
		pos = g.opts.Bounds.ClampInside(pos, w, h)
	}
	return pos
}

// Anchor returns the current world-space coordinate of a port, derived
// live from the owning block's position and size.
func (g *Graph) Anchor(id PortID) (Point, error) {
	p, ok := g.ports[id]
	if !ok {
		return Point{}, fmt.Errorf("anchor: port %s: %w", id, ErrUnknownID)
	}
	b := g.blocks[p.Block]
	count := 0
	for _, pid := range b.Ports {
		if g.ports[pid].Side == p.Side {
			count++
		}
	}
	return b.Pos.Add(b.anchorOffset(p.Side, p.Index, count)), nil
}

// AvailableAsSource reports whether a new wire may start at the port:
// the port is Unassigned, or it is an Output with fan-out headroom.
func (g *Graph) AvailableAsSource(id PortID) bool {
	p, ok := g.ports[id]
	if !ok {
		return false
	}
	switch p.Role {
	case RoleUnassigned:
		return true
	case RoleOutput:
		return g.opts.AllowFanOut || len(g.portWires[id]) == 0
	}
	return false
}

// AvailableAsTarget reports whether a new wire may end at the port:
// the port is Unassigned, or an Input with no wire (fan-in is always
// limited to one).
func (g *Graph) AvailableAsTarget(id PortID) bool {
	p, ok := g.ports[id]
	if !ok {
		return false
	}
	switch p.Role {
	case RoleUnassigned:
		return true
	case RoleInput:
		return len(g.portWires[id]) == 0
	}
	return false
}

// Connect creates a wire from an output port to an input port, fixing
// both roles, routing the path, and registering the wire. The clicked-first
// endpoint of the interactive sequence is always `from`.
func (g *Graph) Connect(from, to PortID) (*Wire, error) {
	return g.connectWithID(WireID(uuid.NewString()), from, to)
}

func (g *Graph) connectWithID(id WireID, from, to PortID) (*Wire, error) {
	src, ok := g.ports[from]
	if !ok {
		return nil, fmt.Errorf("connect: source port %s: %w", from, ErrUnknownID)
	}
	dst, ok := g.ports[to]
	if !ok {
		return nil, fmt.Errorf("connect: target port %s: %w", to, ErrUnknownID)
	}
	if from == to || src.Block == dst.Block {
		return nil, fmt.Errorf("connect: both endpoints on block %s: %w", src.Block, ErrInvalidEndpoint)
	}
	if _, exists := g.wires[id]; exists {
		return nil, fmt.Errorf("connect: wire id %s already in use", id)
	}

	if src.Role == RoleInput {
		return nil, fmt.Errorf("connect: source port is an input: %w", ErrRoleConflict)
	}
	if src.Role == RoleOutput && !g.AvailableAsSource(from) {
		return nil, fmt.Errorf("connect: source: %w", ErrAlreadyConnected)
	}
	if dst.Role == RoleOutput {
		return nil, fmt.Errorf("connect: target port is an output: %w", ErrRoleConflict)
	}
	if dst.Role == RoleInput && !g.AvailableAsTarget(to) {
		return nil, fmt.Errorf("connect: target: %w", ErrAlreadyConnected)
	}

	src.Role = RoleOutput
	dst.Role = RoleInput
	w := &Wire{ID: id, From: from, To: to}
	g.wires[id] = w
	g.wireOrder = append(g.wireOrder, id)
	g.portWires[from] = append(g.portWires[from], id)
	g.portWires[to] = append(g.portWires[to], id)
	g.reroute(w)
	return w, nil
}

// reroute recomputes a wire's path from its current endpoint anchors.
func (g *Graph) reroute(w *Wire) {
	src := g.ports[w.From]
	dst := g.ports[w.To]
	start, _ := g.Anchor(w.From)
	end, _ := g.Anchor(w.To)
	w.Path = g.opts.Router.Route(start, src.Side.Direction(), end, dst.Side.Direction())
	w.Version++
}

// MoveBlock updates a block's position and synchronously reroutes every
// wire incident to the block, each exactly once. It returns the ids of the
// rerouted wires.
func (g *Graph) MoveBlock(id BlockID, pos Point) ([]WireID, error) {
	return g.MoveBlocks(map[BlockID]Point{id: pos})
}

// MoveBlocks applies a batch of position updates and then reroutes every
// affected wire exactly once, even when both its endpoints moved. All
// positions are applied before any rerouting so no wire is computed from
// stale intermediate geometry.
func (g *Graph) MoveBlocks(moves map[BlockID]Point) ([]WireID, error) {
	for id := range moves {
		if _, ok := g.blocks[id]; !ok {
			return nil, fmt.Errorf("move block %s: %w", id, ErrUnknownID)
		}
	}
	affected := make(map[WireID]bool)
	var order []WireID
	for id, pos := range moves {
		b := g.blocks[id]
		if g.opts.Bounds != nil {
			pos = g.opts.Bounds.ClampInside(pos, b.W, b.H)
		}
		b.Pos = pos
		for _, pid := range b.Ports {
			for _, wid := range g.portWires[pid] {
				if !affected[wid] {
					affected[wid] = true
					order = append(order, wid)
				}
			}
		}
	}
	for _, wid := range order {
		g.reroute(g.wires[wid])
	}
	return order, nil
}

// DeleteWire removes a wire and resets each endpoint port to Unassigned
// once no wire references it.
func (g *Graph) DeleteWire(id WireID) error {
	w, ok := g.wires[id]
	if !ok {
		return fmt.Errorf("delete wire %s: %w", id, ErrUnknownID)
	}
	delete(g.wires, id)
	g.wireOrder = removeID(g.wireOrder, id)
	g.unindexWire(w.From, id)
	g.unindexWire(w.To, id)
	return nil
}

func (g *Graph) unindexWire(pid PortID, wid WireID) {
	rest := removeID(g.portWires[pid], wid)
	if len(rest) == 0 {
		delete(g.portWires, pid)
		if p, ok := g.ports[pid]; ok {
			p.Role = RoleUnassigned
		}
		return
	}
	g.portWires[pid] = rest
}

// DeleteBlock removes a block, cascading to every wire incident to any of
// its ports. It returns the removed wire ids so hosts can drop whatever
// they keep per wire (scene items, selection entries).
func (g *Graph) DeleteBlock(id BlockID) ([]WireID, error) {
	b, ok := g.blocks[id]
	if !ok {
		return nil, fmt.Errorf("delete block %s: %w", id, ErrUnknownID)
	}
	var removed []WireID
	for _, pid := range b.Ports {
		for _, wid := range g.PortWires(pid) {
			if err := g.DeleteWire(wid); err == nil {
				removed = append(removed, wid)
			}
		}
	}
	for _, pid := range b.Ports {
		delete(g.ports, pid)
	}
	delete(g.blocks, id)
	g.blockOrder = removeID(g.blockOrder, id)
	return removed, nil
}

// PortAt returns the topmost port whose anchor lies within the hit radius
// of the given point. Later-inserted blocks are treated as drawn on top.
func (g *Graph) PortAt(p Point) (PortID, bool) {
	for i := len(g.blockOrder) - 1; i >= 0; i-- {
		b := g.blocks[g.blockOrder[i]]
		for _, pid := range b.Ports {
			anchor, _ := g.Anchor(pid)
			if anchor.Dist(p) <= PortHitRadius {
				return pid, true
			}
		}
	}
	return "", false
}

// BlockAt returns the topmost block containing the given point.
func (g *Graph) BlockAt(p Point) (BlockID, bool) {
	for i := len(g.blockOrder) - 1; i >= 0; i-- {
		id := g.blockOrder[i]
		if g.blocks[id].Bounds().Contains(p) {
			return id, true
		}
	}
	return "", false
}

// WireGeometry pairs a wire id with its current routed waypoints.
type WireGeometry struct {
	Wire    WireID
	Points  []Point
	Version int
}

// WireGeometries returns renderable geometry for every wire, in creation
// order. Points are copies; mutating them does not affect the graph.
func (g *Graph) WireGeometries() []WireGeometry {
	out := make([]WireGeometry, 0, len(g.wireOrder))
	for _, id := range g.wireOrder {
		w := g.wires[id]
		pts := make([]Point, len(w.Path))
		copy(pts, w.Path)
		out = append(out, WireGeometry{Wire: id, Points: pts, Version: w.Version})
	}
	return out
}

// PortState pairs a port id with its current role, for host recoloring.
type PortState struct {
	Port PortID
	Role Role
}

// PortStates returns the role of every port, grouped by block in insertion
// order and by port order within each block.
func (g *Graph) PortStates() []PortState {
	var out []PortState
	for _, bid := range g.blockOrder {
		for _, pid := range g.blocks[bid].Ports {
			out = append(out, PortState{Port: pid, Role: g.ports[pid].Role})
		}
	}
	return out
}

// Validate checks structural consistency: every port belongs to a live
// block, every wire joins an output to an input on distinct blocks, the
// reverse index exactly matches the wire set, and wireless ports are
// Unassigned.
func (g *Graph) Validate() error {
	for pid, p := range g.ports {
		b, ok := g.blocks[p.Block]
		if !ok {
			return fmt.Errorf("port %s references missing block %s", pid, p.Block)
		}
		if !containsID(b.Ports, pid) {
			return fmt.Errorf("block %s does not list port %s", p.Block, pid)
		}
		if len(g.portWires[pid]) == 0 && p.Role != RoleUnassigned {
			return fmt.Errorf("port %s has role %s but no wire", pid, p.Role)
		}
	}
	counted := 0
	for pid, wids := range g.portWires {
		if _, ok := g.ports[pid]; !ok {
			return fmt.Errorf("reverse index references missing port %s", pid)
		}
		for _, wid := range wids {
			if _, ok := g.wires[wid]; !ok {
				return fmt.Errorf("reverse index references missing wire %s", wid)
			}
			counted++
		}
	}
	if counted != len(g.wires)*2 {
		return fmt.Errorf("reverse index has %d entries, want %d", counted, len(g.wires)*2)
	}
	for wid, w := range g.wires {
		src, ok := g.ports[w.From]
		if !ok {
			return fmt.Errorf("wire %s references missing port %s", wid, w.From)
		}
		dst, ok := g.ports[w.To]
		if !ok {
			return fmt.Errorf("wire %s references missing port %s", wid, w.To)
		}
		if src.Block == dst.Block {
			return fmt.Errorf("wire %s connects block %s to itself", wid, src.Block)
		}
		if src.Role != RoleOutput || dst.Role != RoleInput {
			return fmt.Errorf("wire %s roles are %s->%s, want output->input", wid, src.Role, dst.Role)
		}
	}
	return nil
}

func removeID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func containsID[T comparable](ids []T, id T) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
