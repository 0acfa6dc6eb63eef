package diagram

// PortID identifies a port within a graph.
type PortID string

// Side names the block edge a port sits on.
type Side string

const (
	SideTop    Side = "top"
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
)

// DefaultSides is the standard four-port arrangement.
var DefaultSides = []Side{SideTop, SideLeft, SideRight, SideBottom}

// Direction returns the outward normal of the side, used as the wire
// approach direction by the router.
func (s Side) Direction() Direction {
	switch s {
	case SideTop:
		return DirUp
	case SideBottom:
		return DirDown
	case SideLeft:
		return DirLeft
	}
	return DirRight
}

// Valid reports whether s is one of the four block edges.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideLeft, SideRight, SideBottom:
		return true
	}
	return false
}

// Role is the connection role of a port. A port starts Unassigned, becomes
// Output or Input when the first wire touches it (determined by which end
// of the interaction it played), and resets to Unassigned when its last
// wire is removed.
type Role int

const (
	RoleUnassigned Role = iota
	RoleOutput
	RoleInput
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleOutput:
		return "output"
	case RoleInput:
		return "input"
	}
	return "unassigned"
}

// Port is a fixed connection point on a block's boundary. Ports never own
// wires; incident wires are tracked by the graph's reverse index.
type Port struct {
	ID    PortID
	Block BlockID
	Side  Side
	Index int // ordinal among ports sharing the same side
	Role  Role
}
