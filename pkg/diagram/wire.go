package diagram

// WireID identifies a wire within a graph.
type WireID string

// Wire is a directed connection from an output port to an input port.
// Path holds the routed logical waypoints; corner rounding is applied at
// render time and never alters Path. Version increments on every reroute
// so hosts can cheaply detect stale cached geometry.
type Wire struct {
	ID      WireID
	From    PortID // output end
	To      PortID // input end
	Path    []Point
	Version int
}
