// Interactive wire-creation state machine.
// One live instance per pointer focus; it is not reentrant.

package diagram

import "fmt"

// SessionState is the phase of the interactive connection sequence.
type SessionState int

const (
	StateIdle SessionState = iota
	StateDrawing
	StateCompleted // transient: reported in the event, never observed via State
	StateCancelled // transient, as above
)

// String returns the lowercase state name.
func (s SessionState) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "idle"
}

// EventKind classifies what an interaction did.
type EventKind int

const (
	EventNone      EventKind = iota // stray click, nothing happened
	EventStarted                    // wire creation started at Source
	EventConnected                  // wire created (see Wire)
	EventDeleted                    // existing wire deleted (see Wire)
	EventCancelled                  // in-progress creation abandoned
)

// Event reports the outcome of one interaction.
type Event struct {
	Kind   EventKind
	Source PortID // set for EventStarted
	Wire   WireID // set for EventConnected and EventDeleted
}

// Session interprets pointer and key events against the graph's current
// port state. It drives the two-click connection sequence: first click
// fixes the source (which becomes the Output end), pointer motion yields a
// live preview path, and the second click on a valid target completes the
// wire. Clicking an already-connected port instead deletes its wire; that
// short-circuit takes priority over starting a new wire.
type Session struct {
	graph  *Graph
	state  SessionState
	source PortID
	cursor Point
}

// NewSession creates an idle session over the graph.
func NewSession(g *Graph) *Session {
	return &Session{graph: g}
}

// State returns the current state, always Idle or Drawing between calls.
func (s *Session) State() SessionState {
	return s.state
}

// Source returns the source port while Drawing.
func (s *Session) Source() PortID {
	return s.source
}

// PointerDown translates a press position into a port interaction. Presses
// on empty canvas are a no-op in every state.
func (s *Session) PointerDown(p Point) (Event, error) {
	pid, ok := s.graph.PortAt(p)
	if !ok {
		return Event{Kind: EventNone}, nil
	}
	return s.ClickPort(pid)
}

// PointerUp completes an in-progress wire when released over a valid
// target port. Releases elsewhere keep the session Drawing so the user can
// keep aiming; only Cancel abandons the wire.
func (s *Session) PointerUp(p Point) (Event, error) {
	if s.state != StateDrawing {
		return Event{Kind: EventNone}, nil
	}
	pid, ok := s.graph.PortAt(p)
	if !ok {
		return Event{Kind: EventNone}, nil
	}
	if src, _ := s.graph.Port(s.source); src != nil {
		if port, _ := s.graph.Port(pid); port != nil && port.Block == src.Block {
			// Releasing over the source block is part of the initial
			// click, not a target choice.
			return Event{Kind: EventNone}, nil
		}
	}
	return s.ClickPort(pid)
}

// DoubleClick is accepted for interface completeness; auto-routed wires
// take no manual bend points, so it does nothing.
func (s *Session) DoubleClick(p Point) Event {
	return Event{Kind: EventNone}
}

// ClickPort performs one click of the connection sequence on a known port.
//
// In Idle: a connected port has its wire deleted immediately; an available
// port starts a new wire. In Drawing: a valid target completes the wire
// (the session passes through Completed back to Idle before returning);
// an invalid target is rejected and the session stays Drawing.
func (s *Session) ClickPort(id PortID) (Event, error) {
	port, ok := s.graph.Port(id)
	if !ok {
		return Event{}, fmt.Errorf("click: port %s: %w", id, ErrUnknownID)
	}

	switch s.state {
	case StateIdle:
		if incident := s.graph.PortWires(id); len(incident) > 0 {
			wid := incident[0]
			if err := s.graph.DeleteWire(wid); err != nil {
				return Event{}, err
			}
			return Event{Kind: EventDeleted, Wire: wid}, nil
		}
		if !s.graph.AvailableAsSource(id) {
			return Event{}, fmt.Errorf("click: source: %w", ErrAlreadyConnected)
		}
		anchor, err := s.graph.Anchor(id)
		if err != nil {
			return Event{}, err
		}
		s.state = StateDrawing
		s.source = id
		s.cursor = anchor
		return Event{Kind: EventStarted, Source: id}, nil

	case StateDrawing:
		src, ok := s.graph.Port(s.source)
		if !ok {
			// Source block was deleted out from under the session.
			// Recover to Idle and treat this as a fresh click.
			s.state = StateCancelled
			s.reset()
			return s.ClickPort(id)
		}
		if id == s.source || port.Block == src.Block {
			return Event{}, fmt.Errorf("click: target on source block: %w", ErrInvalidEndpoint)
		}
		w, err := s.graph.Connect(s.source, id)
		if err != nil {
			return Event{}, err
		}
		s.state = StateCompleted
		s.reset()
		return Event{Kind: EventConnected, Wire: w.ID}, nil
	}
	return Event{Kind: EventNone}, nil
}

// PointerMove updates the cursor while Drawing and returns the live
// preview waypoints from the source anchor to the cursor. The preview is
// ad hoc and never persisted. Returns nil when not Drawing.
func (s *Session) PointerMove(p Point) []Point {
	if s.state != StateDrawing {
		return nil
	}
	s.cursor = p
	src, ok := s.graph.Port(s.source)
	if !ok {
		// Source block was deleted out from under the session.
		s.state = StateCancelled
		s.reset()
		return nil
	}
	anchor, _ := s.graph.Anchor(s.source)
	if anchor == p {
		return []Point{anchor, p}
	}
	return s.graph.opts.Router.Route(anchor, src.Side.Direction(), p, oppositeOf(src.Side.Direction()))
}

// Cancel abandons any in-progress wire. It is immediate and total: no
// partial wire or role assignment survives. Hosts call this on Escape or
// right-click.
func (s *Session) Cancel() Event {
	if s.state != StateDrawing {
		return Event{Kind: EventNone}
	}
	s.state = StateCancelled
	s.reset()
	return Event{Kind: EventCancelled}
}

func (s *Session) reset() {
	s.state = StateIdle
	s.source = ""
	s.cursor = Point{}
}

func oppositeOf(d Direction) Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	}
	return DirLeft
}
