package topology

import (
	"sync"
)

// Graph is the shared, exclusively-owned context object holding the whole
// topology: the node registry, the connection table, and the network/zone
// index. Construct one per session with [New] and thread it through the
// application; there is no package-level singleton.
type Graph struct {
	mu sync.RWMutex

	// Node registry
	nodes      map[string]*Node
	kindCounts map[Kind]int // live nodes per kind, drives auto-naming

	// Connection table
	conns  map[string]*Connection   // canonical pair key -> connection
	byNode map[string][]*Connection // node name -> touching connections

	// Network/zone index
	zones     map[string]*Zone    // zone id -> zone
	zoneOrder []string            // creation order, keeps exports deterministic
	networks  map[string]*Network // network id -> network
	hostNet   map[string]string   // node name -> owning network id (reverse index)
	adapters  map[string]*Adapter // adapter node name -> pairing state

	changed chan struct{} // coalesced dirty signal, see Changes
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		kindCounts: make(map[Kind]int),
		conns:      make(map[string]*Connection),
		byNode:     make(map[string][]*Connection),
		zones:      make(map[string]*Zone),
		networks:   make(map[string]*Network),
		hostNet:    make(map[string]string),
		adapters:   make(map[string]*Adapter),
		changed:    make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a signal after any successful
// mutation. Signals are coalesced: if nobody is reading, at most one is
// buffered and later mutations fold into it. Mutating operations never
// block on delivery.
func (g *Graph) Changes() <-chan struct{} {
	return g.changed
}

// markDirty publishes a coalesced change signal. Callers hold g.mu.
func (g *Graph) markDirty() {
	select {
	case g.changed <- struct{}{}:
	default:
	}
}

// Clear removes every zone, network, node, connection, and adapter.
// Used by import (full-replace semantics) and by the delete-all action.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*Node)
	g.kindCounts = make(map[Kind]int)
	g.conns = make(map[string]*Connection)
	g.byNode = make(map[string][]*Connection)
	g.zones = make(map[string]*Zone)
	g.zoneOrder = nil
	g.networks = make(map[string]*Network)
	g.hostNet = make(map[string]string)
	g.adapters = make(map[string]*Adapter)
	g.markDirty()
}

// Empty reports whether the graph contains no zones and no nodes.
func (g *Graph) Empty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.zones) == 0 && len(g.nodes) == 0
}
