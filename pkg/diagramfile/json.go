// Package diagramfile reads, writes and renders diagram snapshots.
// The logical model (blocks, ports, wires) travels as JSON; editor view
// metadata travels as a small TOML layout file; both are bundled into the
// .flow zip archive. Routed wire geometry is never persisted — a loaded
// diagram re-routes itself.
package diagramfile

import (
	"encoding/json"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// EncodeSnapshot serializes a snapshot to JSON.
func EncodeSnapshot(snap *diagram.Snapshot, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(snap, "", "  ")
	}
	return json.Marshal(snap)
}

// DecodeSnapshot parses a snapshot from JSON.
func DecodeSnapshot(data []byte) (*diagram.Snapshot, error) {
	var snap diagram.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
