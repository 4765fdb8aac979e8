package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/qforge/qtopo/pkg/topology"
)

// Export serializes the graph to a Snapshot. Ordering is deterministic:
// zones and networks in creation order, hosts in insertion order,
// connections sorted by endpoint pair.
//
// An adapter with an unassigned peer, or whose peer's network cannot be
// resolved, is omitted with a logged warning rather than failing the whole
// export.
func Export(g *topology.Graph, logger *log.Logger) *Snapshot {
	if logger == nil {
		logger = log.Default()
	}

	snap := &Snapshot{Zones: make([]Zone, 0, len(g.Zones()))}
	for _, z := range g.Zones() {
		zone := Zone{Name: z.Name}

		for _, net := range g.NetworksIn(z.ID) {
			zone.Networks = append(zone.Networks, exportNetwork(g, net))
		}
		for _, a := range g.AdaptersIn(z.ID) {
			ad, err := exportAdapter(g, a)
			if err != nil {
				logger.Warn("skipping adapter in export", "adapter", a.Node.Name, "reason", err)
				continue
			}
			zone.Adapters = append(zone.Adapters, ad)
		}

		snap.Zones = append(snap.Zones, zone)
	}
	return snap
}

func exportNetwork(g *topology.Graph, net *topology.Network) Network {
	out := Network{Name: net.Name}

	hosts := g.HostsIn(net.ID)
	out.Hosts = make([]Host, 0, len(hosts))
	for _, n := range hosts {
		out.Hosts = append(out.Hosts, Host{
			Name: n.Name,
			Type: string(n.Kind),
			X:    n.X,
			Y:    n.Y,
		})
	}

	// A connection is recorded in the network owning its From endpoint.
	// Edges to adapter nodes are reconstructed from the adapter records
	// during import phase 2, so they aren't serialized here.
	for _, c := range g.Connections() {
		owner, ok := g.NetworkFor(c.From)
		if !ok || owner.ID != net.ID {
			continue
		}
		if touchesAdapter(g, c) {
			continue
		}
		out.Connections = append(out.Connections, Connection{
			From: c.From,
			To:   c.To,
			Meta: c.Meta,
		})
	}
	return out
}

func touchesAdapter(g *topology.Graph, c *topology.Connection) bool {
	for _, name := range []string{c.From, c.To} {
		if n, ok := g.Node(name); ok && n.Kind == topology.KindQuantumAdapter {
			return true
		}
	}
	return false
}

func exportAdapter(g *topology.Graph, a *topology.Adapter) (Adapter, error) {
	classical := a.ClassicalPeer()
	quantum := a.QuantumPeer()
	if classical == "" || quantum == "" {
		return Adapter{}, fmt.Errorf("missing peer (classical=%q, quantum=%q)", classical, quantum)
	}

	cnet, ok := g.NetworkFor(classical)
	if !ok {
		return Adapter{}, fmt.Errorf("classical peer %q has no network", classical)
	}
	qnet, ok := g.NetworkFor(quantum)
	if !ok {
		return Adapter{}, fmt.Errorf("quantum peer %q has no network", quantum)
	}

	return Adapter{
		Name:             a.Node.Name,
		X:                a.Node.X,
		Y:                a.Node.Y,
		ClassicalHost:    classical,
		QuantumHost:      quantum,
		ClassicalNetwork: cnet.Name,
		QuantumNetwork:   qnet.Name,
	}, nil
}

// Marshal renders the snapshot as indented JSON. The output is
// deterministic for a given snapshot, which makes it suitable for the
// autosave loop's byte-for-byte comparison.
func Marshal(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
