// Package topology implements the in-memory model of a hybrid
// classical/quantum network: nodes, typed connections between them, and the
// grouping of nodes into networks and zones.
//
// The package is organized around a single [Graph] value that owns three
// cooperating registries:
//
//   - the node registry: every live node, keyed by its globally unique name
//   - the connection table: at most one edge per unordered node pair, with
//     per-edge link metadata
//   - the network index: zones, the networks inside them, and the adapters
//     that bridge classical and quantum networks
//
// All mutations go through Graph methods so that cross-registry invariants
// hold: removing a node drops every edge touching it, deleting a network
// removes its hosts, and adapter pairings always reference live nodes.
//
// # Change notification
//
// Every successful mutation marks the graph dirty. Consumers that need to
// react to mutations (renderers, the autosave loop) receive a coalesced
// signal from [Graph.Changes]; delivery never blocks the mutating caller.
//
// # Concurrency
//
// Graph is safe for concurrent use. A single mutex serializes mutations,
// which matches the model of one logical writer (the UI or CLI thread) with
// background readers (autosave, live event handlers).
package topology
