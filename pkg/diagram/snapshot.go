package diagram

import "fmt"

// Snapshot is the serializable form of a graph, and also the clipboard
// payload for copy/paste. Wire records store endpoint port ids only;
// routed geometry is derived state and is recomputed on import and paste.
type Snapshot struct {
	Blocks []BlockRecord `json:"blocks"`
	Wires  []WireRecord  `json:"wires"`
}

// BlockRecord is the persisted form of a block and its ports.
type BlockRecord struct {
	ID    BlockID      `json:"id"`
	Label string       `json:"label"`
	Pos   Point        `json:"pos"`
	W     float64      `json:"w"`
	H     float64      `json:"h"`
	Ports []PortRecord `json:"ports"`
}

// PortRecord is the persisted form of a port. Roles are not stored; they
// are re-derived from wire direction on import.
type PortRecord struct {
	ID   PortID `json:"id"`
	Side Side   `json:"side"`
}

// WireRecord is the persisted form of a wire.
type WireRecord struct {
	ID   WireID `json:"id"`
	From PortID `json:"from"`
	To   PortID `json:"to"`
}

// ExportState captures the whole graph as a snapshot.
func (g *Graph) ExportState() *Snapshot {
	ids := make([]BlockID, len(g.blockOrder))
	copy(ids, g.blockOrder)
	snap, _ := g.CopySubset(ids)
	return snap
}

// CopySubset captures the given blocks plus only those wires whose both
// endpoints lie within the subset. Wires crossing the boundary are dropped
// entirely, never partially duplicated.
func (g *Graph) CopySubset(blockIDs []BlockID) (*Snapshot, error) {
	selected := make(map[BlockID]bool, len(blockIDs))
	for _, id := range blockIDs {
		if _, ok := g.blocks[id]; !ok {
			return nil, fmt.Errorf("copy: block %s: %w", id, ErrUnknownID)
		}
		selected[id] = true
	}

	snap := &Snapshot{}
	for _, bid := range g.blockOrder {
		if !selected[bid] {
			continue
		}
		b := g.blocks[bid]
		rec := BlockRecord{ID: b.ID, Label: b.Label, Pos: b.Pos, W: b.W, H: b.H}
		for _, pid := range b.Ports {
			rec.Ports = append(rec.Ports, PortRecord{ID: pid, Side: g.ports[pid].Side})
		}
		snap.Blocks = append(snap.Blocks, rec)
	}
	for _, wid := range g.wireOrder {
		w := g.wires[wid]
		if selected[g.ports[w.From].Block] && selected[g.ports[w.To].Block] {
			snap.Wires = append(snap.Wires, WireRecord{ID: wid, From: w.From, To: w.To})
		}
	}
	return snap, nil
}

// Paste reinserts a snapshot's blocks at position+offset under freshly
// generated identities, re-keys the internal wires to the new ids, and
// routes every pasted wire from the new positions. The original session's
// cached geometry is never reused. Returns the new block ids in snapshot
// order; on failure nothing is pasted.
func (g *Graph) Paste(snap *Snapshot, offset Point) ([]BlockID, error) {
	if err := snap.check(); err != nil {
		return nil, err
	}

	portMap := make(map[PortID]PortID)
	var newBlocks []BlockID
	rollback := func() {
		for _, bid := range newBlocks {
			g.DeleteBlock(bid)
		}
	}

	for _, rec := range snap.Blocks {
		sides := make([]Side, len(rec.Ports))
		for i, pr := range rec.Ports {
			sides[i] = pr.Side
		}
		b, err := g.InsertBlock(rec.Label, rec.Pos.Add(offset), rec.W, rec.H, sides...)
		if err != nil {
			rollback()
			return nil, err
		}
		newBlocks = append(newBlocks, b.ID)
		for i, pr := range rec.Ports {
			portMap[pr.ID] = b.Ports[i]
		}
	}
	for _, wr := range snap.Wires {
		if _, err := g.Connect(portMap[wr.From], portMap[wr.To]); err != nil {
			rollback()
			return nil, err
		}
	}
	return newBlocks, nil
}

// ImportState replaces the graph's entire contents with the snapshot,
// preserving the recorded ids. Port roles come from wire direction and all
// paths are re-routed, so a reloaded diagram lays out deterministically
// regardless of what the saving session had on screen. On failure the
// graph is left unchanged.
func (g *Graph) ImportState(snap *Snapshot) error {
	if err := snap.check(); err != nil {
		return err
	}

	fresh := New(g.opts)
	for _, rec := range snap.Blocks {
		if rec.W <= 0 || rec.H <= 0 {
			return fmt.Errorf("import: block %s size %gx%g not positive", rec.ID, rec.W, rec.H)
		}
		if _, dup := fresh.blocks[rec.ID]; dup {
			return fmt.Errorf("import: duplicate block id %s", rec.ID)
		}
		b := &Block{ID: rec.ID, Label: rec.Label, Pos: rec.Pos, W: rec.W, H: rec.H}
		sideCount := make(map[Side]int)
		for _, pr := range rec.Ports {
			if _, dup := fresh.ports[pr.ID]; dup {
				return fmt.Errorf("import: duplicate port id %s", pr.ID)
			}
			fresh.ports[pr.ID] = &Port{
				ID:    pr.ID,
				Block: b.ID,
				Side:  pr.Side,
				Index: sideCount[pr.Side],
			}
			sideCount[pr.Side]++
			b.Ports = append(b.Ports, pr.ID)
		}
		fresh.blocks[b.ID] = b
		fresh.blockOrder = append(fresh.blockOrder, b.ID)
	}
	for _, wr := range snap.Wires {
		if _, err := fresh.connectWithID(wr.ID, wr.From, wr.To); err != nil {
			return fmt.Errorf("import wire %s: %w", wr.ID, err)
		}
	}

	g.blocks = fresh.blocks
	g.ports = fresh.ports
	g.wires = fresh.wires
	g.portWires = fresh.portWires
	g.blockOrder = fresh.blockOrder
	g.wireOrder = fresh.wireOrder
	return nil
}

// check verifies internal references of a snapshot before any mutation.
func (s *Snapshot) check() error {
	ports := make(map[PortID]Side)
	for _, rec := range s.Blocks {
		if len(rec.Ports) == 0 {
			return fmt.Errorf("snapshot: block %s has no ports", rec.ID)
		}
		for _, pr := range rec.Ports {
			if !pr.Side.Valid() {
				return fmt.Errorf("snapshot: port %s has invalid side %q", pr.ID, pr.Side)
			}
			ports[pr.ID] = pr.Side
		}
	}
	for _, wr := range s.Wires {
		if _, ok := ports[wr.From]; !ok {
			return fmt.Errorf("snapshot: wire %s source %s: %w", wr.ID, wr.From, ErrUnknownID)
		}
		if _, ok := ports[wr.To]; !ok {
			return fmt.Errorf("snapshot: wire %s target %s: %w", wr.ID, wr.To, ErrUnknownID)
		}
	}
	return nil
}
