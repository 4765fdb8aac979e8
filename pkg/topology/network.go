package topology

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Zone is the top-level grouping: it owns networks and the adapters that
// bridge classical and quantum networks inside it.
type Zone struct {
	ID   string
	Name string

	networks []string // network ids, creation order
	adapters []string // adapter node names, creation order
}

// Network is a named grouping of host nodes. Every host belongs to exactly
// one network at a time.
type Network struct {
	ID     string
	Name   string
	ZoneID string

	hosts []string // node names, insertion order
}

// CreateZone creates a zone and returns its id. An empty name synthesizes
// "Zone-<n>" in the same style as node auto-naming.
func (g *Graph) CreateZone(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name == "" {
		name = g.nextZoneName()
	}
	z := &Zone{ID: uuid.NewString(), Name: name}
	g.zones[z.ID] = z
	g.zoneOrder = append(g.zoneOrder, z.ID)
	g.markDirty()
	return z.ID
}

func (g *Graph) nextZoneName() string {
	for i := len(g.zones) + 1; ; i++ {
		name := fmt.Sprintf("Zone-%d", i)
		if !g.zoneNameTaken(name) {
			return name
		}
	}
}

func (g *Graph) zoneNameTaken(name string) bool {
	for _, z := range g.zones {
		if z.Name == name {
			return true
		}
	}
	return false
}

// CreateNetwork creates a network inside a zone and returns its id.
func (g *Graph) CreateNetwork(zoneID, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	z, ok := g.zones[zoneID]
	if !ok {
		return "", fmt.Errorf("%w: zone %q", ErrZoneNotFound, zoneID)
	}
	n := &Network{ID: uuid.NewString(), Name: name, ZoneID: zoneID}
	g.networks[n.ID] = n
	z.networks = append(z.networks, n.ID)
	g.markDirty()
	return n.ID, nil
}

// AddHost places a node in a network. A node already owned by another
// network is moved, preserving the one-network-per-host invariant.
func (g *Graph) AddHost(networkID, nodeName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	net, ok := g.networks[networkID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNetworkNotFound, networkID)
	}
	if _, ok := g.nodes[nodeName]; !ok {
		return fmt.Errorf("%w: %q", ErrEndpointNotFound, nodeName)
	}

	if prevID, ok := g.hostNet[nodeName]; ok {
		if prevID == networkID {
			return nil
		}
		if prev := g.networks[prevID]; prev != nil {
			prev.hosts = slices.DeleteFunc(prev.hosts, func(h string) bool { return h == nodeName })
		}
	}

	net.hosts = append(net.hosts, nodeName)
	g.hostNet[nodeName] = networkID
	g.markDirty()
	return nil
}

// NetworkFor resolves the network owning a node. The reverse index makes
// this O(1); it is invalidated on every add and remove.
func (g *Graph) NetworkFor(nodeName string) (*Network, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.hostNet[nodeName]
	if !ok {
		return nil, false
	}
	net, ok := g.networks[id]
	return net, ok
}

// Network returns the network with the given id.
func (g *Graph) Network(id string) (*Network, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.networks[id]
	return n, ok
}

// Zones returns all zones in creation order.
func (g *Graph) Zones() []*Zone {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Zone, 0, len(g.zoneOrder))
	for _, id := range g.zoneOrder {
		if z, ok := g.zones[id]; ok {
			out = append(out, z)
		}
	}
	return out
}

// NetworksIn returns the networks of a zone in creation order.
func (g *Graph) NetworksIn(zoneID string) []*Network {
	g.mu.RLock()
	defer g.mu.RUnlock()

	z, ok := g.zones[zoneID]
	if !ok {
		return nil
	}
	out := make([]*Network, 0, len(z.networks))
	for _, id := range z.networks {
		if n, ok := g.networks[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// HostsIn returns the nodes of a network in insertion order.
func (g *Graph) HostsIn(networkID string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	net, ok := g.networks[networkID]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(net.hosts))
	for _, name := range net.hosts {
		if n, ok := g.nodes[name]; ok {
			out = append(out, n)
		}
	}
	return out
}

// DeleteNetwork removes a network and cascades: every host it owned is
// destroyed through the node registry, which in turn removes the
// connections touching them. No orphan edges remain.
func (g *Graph) DeleteNetwork(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	net, ok := g.networks[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNetworkNotFound, id)
	}

	for _, host := range slices.Clone(net.hosts) {
		g.removeNodeLocked(host)
	}
	if z := g.zones[net.ZoneID]; z != nil {
		z.networks = slices.DeleteFunc(z.networks, func(n string) bool { return n == id })
	}
	delete(g.networks, id)
	g.markDirty()
	return nil
}

// DeleteZone removes a zone, its networks (cascading their hosts), and the
// adapter nodes registered in it.
func (g *Graph) DeleteZone(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	z, ok := g.zones[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrZoneNotFound, id)
	}

	for _, netID := range slices.Clone(z.networks) {
		net, ok := g.networks[netID]
		if !ok {
			continue
		}
		for _, host := range slices.Clone(net.hosts) {
			g.removeNodeLocked(host)
		}
		delete(g.networks, netID)
	}
	for _, name := range slices.Clone(z.adapters) {
		g.removeNodeLocked(name)
	}

	delete(g.zones, id)
	g.zoneOrder = slices.DeleteFunc(g.zoneOrder, func(x string) bool { return x == id })
	g.markDirty()
	return nil
}

// DeleteAll clears the entire topology. Equivalent to Clear.
func (g *Graph) DeleteAll() {
	g.Clear()
}
