// Package snapshot implements the export/import codec between the in-memory
// topology graph and the transfer format the server persists.
//
// Export walks zones → networks → hosts → connections → adapters and
// produces a tree-shaped record with deterministic ordering, so two exports
// of an unchanged graph are byte-identical (the autosave loop relies on
// this). Import is the inverse, with full-replace semantics and a two-phase
// structure: hosts and networks first, adapters second, because adapters
// reference hosts that must already exist. Phase 2 runs as an explicit
// continuation of phase 1, never on a timer.
//
// Per-item failures during import (an unknown host kind, an unresolvable
// connection endpoint, a dangling adapter peer) are logged and skipped;
// only a malformed top-level payload aborts the import.
package snapshot

import "github.com/qforge/qtopo/pkg/topology"

// Snapshot is the serializable aggregate of the whole topology. PK is the
// persistence key assigned by the server on first save; WorldID arrives
// with the server's acknowledgment.
type Snapshot struct {
	PK      string `json:"pk,omitempty"`
	WorldID string `json:"world_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Zones   []Zone `json:"zones" validate:"dive"`
}

// Zone groups networks and the adapters bridging across them.
type Zone struct {
	Name     string    `json:"name" validate:"required"`
	Networks []Network `json:"networks" validate:"dive"`
	Adapters []Adapter `json:"adapters,omitempty" validate:"dive"`
}

// Network holds its hosts and the connections among them.
type Network struct {
	Name        string       `json:"name" validate:"required"`
	Hosts       []Host       `json:"hosts" validate:"dive"`
	Connections []Connection `json:"connections,omitempty" validate:"dive"`
}

// Host is a serialized node: variant, name, and layout geometry.
type Host struct {
	Name string  `json:"name" validate:"required"`
	Type string  `json:"type" validate:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Connection is a serialized edge with its link metadata.
type Connection struct {
	From string            `json:"from_node" validate:"required"`
	To   string            `json:"to_node" validate:"required"`
	Meta topology.Metadata `json:"properties"`
}

// Adapter is a serialized classical/quantum bridge. Peer hosts are
// referenced by name; their owning networks are resolved at export time so
// the server can wire the bridge without a second lookup pass.
type Adapter struct {
	Name             string  `json:"name" validate:"required"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	ClassicalHost    string  `json:"classical_host" validate:"required"`
	QuantumHost      string  `json:"quantum_host" validate:"required"`
	ClassicalNetwork string  `json:"classical_network" validate:"required"`
	QuantumNetwork   string  `json:"quantum_network" validate:"required"`
}

// Summary describes a saved snapshot in the server's listing.
type Summary struct {
	PK      string `json:"pk"`
	Name    string `json:"name"`
	WorldID string `json:"world_id,omitempty"`
}

// Empty reports whether the snapshot carries no zones.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Zones) == 0
}
