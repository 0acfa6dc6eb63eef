package diagram

// BlockID identifies a block within a graph.
type BlockID string

// Default block dimensions, matching the editor's standard block shape.
const (
	DefaultBlockWidth  = 150.0
	DefaultBlockHeight = 40.0
)

// Block is a rectangular node in the diagram. It owns its ports (by id,
// in creation order) but never owns wires.
type Block struct {
	ID    BlockID
	Label string
	Pos   Point // top-left corner
	W, H  float64
	Ports []PortID
}

// Bounds returns the block's rectangle in world space.
func (b *Block) Bounds() Rect {
	return Rect{b.Pos.X, b.Pos.Y, b.W, b.H}
}

// anchorOffset returns the relative anchor of the index-th of count ports
// on the given side. Ports are spread evenly along the edge; a single port
// sits at the edge midpoint.
func (b *Block) anchorOffset(side Side, index, count int) Point {
	frac := float64(index+1) / float64(count+1)
	switch side {
	case SideTop:
		return Point{b.W * frac, 0}
	case SideBottom:
		return Point{b.W * frac, b.H}
	case SideLeft:
		return Point{0, b.H * frac}
	}
	return Point{b.W, b.H * frac}
}
