package diagram

import "errors"

// Error kinds reported by graph and session operations. All are recoverable:
// a failed operation leaves the graph unchanged. Callers match with errors.Is.
var (
	// ErrRoleConflict is returned when a port would be forced into a role
	// incompatible with its current connection.
	ErrRoleConflict = errors.New("port role conflict")

	// ErrInvalidEndpoint is returned when a wire would connect a port to
	// another port on the same block, or to itself.
	ErrInvalidEndpoint = errors.New("invalid wire endpoint")

	// ErrAlreadyConnected is returned when a wire would start from an
	// output port that already carries a wire and fan-out is disabled,
	// or end at an input port that already carries a wire.
	ErrAlreadyConnected = errors.New("port already connected")

	// ErrUnknownID is returned when an operation references a block, port
	// or wire id that is not present in the graph.
	ErrUnknownID = errors.New("unknown id")
)
