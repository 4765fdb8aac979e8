package topology

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies a node variant.
type Kind string

// The known node variants.
const (
	KindClassicalHost    Kind = "ClassicalHost"
	KindClassicalRouter  Kind = "ClassicalRouter"
	KindQuantumHost      Kind = "QuantumHost"
	KindQuantumAdapter   Kind = "QuantumAdapter"
	KindQuantumRepeater  Kind = "QuantumRepeater"
	KindInternetExchange Kind = "InternetExchange"
	KindClassicToQuantum Kind = "ClassicToQuantumConverter"
	KindQuantumToClassic Kind = "QuantumToClassicConverter"
	KindZone             Kind = "Zone"
)

// Family groups node kinds by the side of the classical/quantum divide they
// live on. Adapters pair exactly one node of each family.
type Family int

const (
	// FamilyNone is for kinds that are neither classical nor quantum
	// endpoints (zones, adapters themselves).
	FamilyNone Family = iota
	// FamilyClassical covers classical hosts, routers, exchanges, and the
	// classical side of converters.
	FamilyClassical
	// FamilyQuantum covers quantum hosts, repeaters, and the quantum side
	// of converters.
	FamilyQuantum
)

var kindFamily = map[Kind]Family{
	KindClassicalHost:    FamilyClassical,
	KindClassicalRouter:  FamilyClassical,
	KindInternetExchange: FamilyClassical,
	KindClassicToQuantum: FamilyClassical,
	KindQuantumHost:      FamilyQuantum,
	KindQuantumRepeater:  FamilyQuantum,
	KindQuantumToClassic: FamilyQuantum,
	KindQuantumAdapter:   FamilyNone,
	KindZone:             FamilyNone,
}

// Known reports whether k is one of the defined node variants.
func (k Kind) Known() bool {
	_, ok := kindFamily[k]
	return ok
}

// Family returns the classical/quantum family of the kind.
func (k Kind) Family() Family {
	return kindFamily[k]
}

// ParseKind converts a string (as found in snapshots) to a Kind.
// Returns ErrUnknownKind for unrecognized values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Node is a vertex in the topology. Name is the stable identity used by
// connections, adapters, and the export format; geometry is carried only
// for layout persistence and has no graph semantics.
type Node struct {
	Name string
	Kind Kind
	X, Y float64
}

// AddNode creates a node and registers it. If name is empty, a name of the
// form "<Kind>-<n>" is synthesized from the count of live nodes of that
// kind; if the synthesized name collides with a survivor of an earlier
// delete/recreate cycle, the counter probes upward until a free name is
// found, so names stay unique without caller involvement.
//
// Returns ErrUnknownKind for unrecognized kinds and ErrDuplicateName when an
// explicit name is already taken. On any error nothing is added.
func (g *Graph) AddNode(kind Kind, name string, x, y float64) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !kind.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind == KindZone {
		// Zone is a grouping construct, not a placeable node.
		return nil, fmt.Errorf("%w: zones are created with CreateZone", ErrUnknownKind)
	}

	if name == "" {
		name = g.nextName(kind)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidNodeName
	}
	if _, exists := g.nodes[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	n := &Node{Name: name, Kind: kind, X: x, Y: y}
	g.nodes[name] = n
	g.kindCounts[kind]++
	if kind == KindQuantumAdapter {
		g.adapters[name] = &Adapter{Node: n}
	}
	g.markDirty()
	return n, nil
}

// nextName synthesizes "<Kind>-<liveCount+1>", probing upward past names
// still held by nodes that outlived an earlier delete. Callers hold g.mu.
func (g *Graph) nextName(kind Kind) string {
	for i := g.kindCounts[kind] + 1; ; i++ {
		name := fmt.Sprintf("%s-%d", kind, i)
		if _, taken := g.nodes[name]; !taken {
			return name
		}
	}
}

// Node returns the node with the given name, or false if absent.
func (g *Graph) Node(name string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all live nodes sorted by name for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// RemoveNode destroys a node and cascades: every connection touching it is
// removed, it is detached from its network, and any adapter pairing that
// referenced it is cleared. Removing an unknown name is a no-op.
func (g *Graph) RemoveNode(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeNodeLocked(name)
	g.markDirty()
}

func (g *Graph) removeNodeLocked(name string) {
	n, ok := g.nodes[name]
	if !ok {
		return
	}

	// Drop edges touching the node.
	for _, c := range g.byNode[name] {
		delete(g.conns, c.key())
		other := c.otherEnd(name)
		g.byNode[other] = slices.DeleteFunc(g.byNode[other], func(x *Connection) bool {
			return x.key() == c.key()
		})
	}
	delete(g.byNode, name)

	// Detach from the owning network.
	if netID, ok := g.hostNet[name]; ok {
		if net := g.networks[netID]; net != nil {
			net.hosts = slices.DeleteFunc(net.hosts, func(h string) bool { return h == name })
		}
		delete(g.hostNet, name)
	}

	// Clear adapter state: the node's own pairing record, and any slot on
	// another adapter that pointed at it.
	delete(g.adapters, name)
	for _, a := range g.adapters {
		if a.classicalPeer == name {
			a.classicalPeer = ""
		}
		if a.quantumPeer == name {
			a.quantumPeer = ""
		}
	}

	delete(g.nodes, name)
	if g.kindCounts[n.Kind] > 0 {
		g.kindCounts[n.Kind]--
	}
}
