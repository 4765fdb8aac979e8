package topology

import (
	"fmt"
	"slices"
)

// Adapter is the pairing state of a QuantumAdapter node: at most one
// classical-family peer and one quantum-family peer. The zero peers mean
// "unassigned"; export skips adapters with an unassigned slot.
type Adapter struct {
	Node *Node

	classicalPeer string
	quantumPeer   string
}

// ClassicalPeer returns the classical-family peer name, or "" if unassigned.
func (a *Adapter) ClassicalPeer() string { return a.classicalPeer }

// QuantumPeer returns the quantum-family peer name, or "" if unassigned.
func (a *Adapter) QuantumPeer() string { return a.quantumPeer }

// Adapter returns the pairing state for a QuantumAdapter node.
func (g *Graph) Adapter(name string) (*Adapter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	a, ok := g.adapters[name]
	if !ok {
		if _, exists := g.nodes[name]; !exists {
			return nil, fmt.Errorf("%w: %q", ErrEndpointNotFound, name)
		}
		return nil, fmt.Errorf("%w: %q", ErrNotAdapter, name)
	}
	return a, nil
}

// RegisterAdapter records an adapter node as belonging to a zone. The node
// must already exist and be a QuantumAdapter.
func (g *Graph) RegisterAdapter(zoneID, adapterName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	z, ok := g.zones[zoneID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrZoneNotFound, zoneID)
	}
	if _, ok := g.adapters[adapterName]; !ok {
		if _, exists := g.nodes[adapterName]; !exists {
			return fmt.Errorf("%w: %q", ErrEndpointNotFound, adapterName)
		}
		return fmt.Errorf("%w: %q", ErrNotAdapter, adapterName)
	}
	if !slices.Contains(z.adapters, adapterName) {
		z.adapters = append(z.adapters, adapterName)
	}
	g.markDirty()
	return nil
}

// AdaptersIn returns the adapters registered in a zone, in creation order.
func (g *Graph) AdaptersIn(zoneID string) []*Adapter {
	g.mu.RLock()
	defer g.mu.RUnlock()

	z, ok := g.zones[zoneID]
	if !ok {
		return nil
	}
	out := make([]*Adapter, 0, len(z.adapters))
	for _, name := range z.adapters {
		if a, ok := g.adapters[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// SetAdapterPeer assigns a peer to an adapter. The slot (classical or
// quantum) is chosen by the peer's family. Assigning a second, different
// peer to an occupied slot returns ErrPeerAssigned; re-assigning the same
// peer is a no-op. Nodes outside both families return ErrPeerFamily.
func (g *Graph) SetAdapterPeer(adapterName, peerName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.adapters[adapterName]
	if !ok {
		if _, exists := g.nodes[adapterName]; !exists {
			return fmt.Errorf("%w: %q", ErrEndpointNotFound, adapterName)
		}
		return fmt.Errorf("%w: %q", ErrNotAdapter, adapterName)
	}
	peer, ok := g.nodes[peerName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrEndpointNotFound, peerName)
	}

	switch peer.Kind.Family() {
	case FamilyClassical:
		if a.classicalPeer != "" && a.classicalPeer != peerName {
			return fmt.Errorf("%w: classical slot of %q holds %q", ErrPeerAssigned, adapterName, a.classicalPeer)
		}
		a.classicalPeer = peerName
	case FamilyQuantum:
		if a.quantumPeer != "" && a.quantumPeer != peerName {
			return fmt.Errorf("%w: quantum slot of %q holds %q", ErrPeerAssigned, adapterName, a.quantumPeer)
		}
		a.quantumPeer = peerName
	default:
		return fmt.Errorf("%w: %q is %s", ErrPeerFamily, peerName, peer.Kind)
	}
	g.markDirty()
	return nil
}
