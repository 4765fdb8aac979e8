package snapshot

import (
	"github.com/charmbracelet/log"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/topology"
)

// Import replaces the graph's contents with the snapshot. The previous
// topology is cleared before anything is added (full-replace, not merge),
// so a failing import can leave an empty graph — that caveat is inherited
// from the transfer contract, not a bug to paper over here.
//
// Phase 1 recreates zones, networks, hosts, and the connections among
// them, building a name→node table as it goes. Phase 2 then recreates
// adapters against that table; it is invoked directly after phase 1
// returns, which guarantees every host an adapter references already
// exists. Individual bad records are logged and skipped.
func Import(g *topology.Graph, s *Snapshot, logger *log.Logger) error {
	if g == nil {
		return qerrors.New(qerrors.ErrCodeImport, "no graph to import into")
	}
	if logger == nil {
		logger = log.Default()
	}

	g.Clear()

	table := importHosts(g, s, logger)
	importAdapters(g, s, table, logger)
	return nil
}

// Load decodes, validates, and imports a raw snapshot payload.
func Load(g *topology.Graph, data []byte, logger *log.Logger) (*Snapshot, error) {
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Import(g, s, logger); err != nil {
		return nil, err
	}
	return s, nil
}

// importHosts is phase 1: zones, networks, hosts, and intra-network
// connections. It returns the name→node lookup table for phase 2.
func importHosts(g *topology.Graph, s *Snapshot, logger *log.Logger) map[string]*topology.Node {
	table := make(map[string]*topology.Node)

	for _, zone := range s.Zones {
		zoneID := g.CreateZone(zone.Name)

		for _, network := range zone.Networks {
			netID, err := g.CreateNetwork(zoneID, network.Name)
			if err != nil {
				logger.Warn("skipping network", "zone", zone.Name, "network", network.Name, "err", err)
				continue
			}

			for _, host := range network.Hosts {
				kind, err := topology.ParseKind(host.Type)
				if err != nil {
					logger.Warn("skipping host", "host", host.Name, "err", err)
					continue
				}
				n, err := g.AddNode(kind, host.Name, host.X, host.Y)
				if err != nil {
					logger.Warn("skipping host", "host", host.Name, "err", err)
					continue
				}
				if err := g.AddHost(netID, n.Name); err != nil {
					logger.Warn("host created but not placed", "host", host.Name, "err", err)
					continue
				}
				table[n.Name] = n
			}

			for _, conn := range network.Connections {
				if table[conn.From] == nil || table[conn.To] == nil {
					logger.Warn("skipping connection with unresolved endpoint",
						"from", conn.From, "to", conn.To)
					continue
				}
				if _, err := g.Connect(conn.From, conn.To); err != nil {
					logger.Warn("skipping connection", "from", conn.From, "to", conn.To, "err", err)
					continue
				}
				if err := g.RestoreMetadata(conn.From, conn.To, conn.Meta); err != nil {
					logger.Warn("connection created without metadata",
						"from", conn.From, "to", conn.To, "err", err)
				}
			}
		}
	}
	return table
}

// importAdapters is phase 2: recreate each adapter, assign its peers from
// the phase-1 table, and connect it to both peers. Runs strictly after
// phase 1 has committed.
func importAdapters(g *topology.Graph, s *Snapshot, table map[string]*topology.Node, logger *log.Logger) {
	zones := g.Zones()

	for i, zone := range s.Zones {
		if i >= len(zones) {
			break
		}
		zoneID := zones[i].ID

		for _, ad := range zone.Adapters {
			node, err := g.AddNode(topology.KindQuantumAdapter, ad.Name, ad.X, ad.Y)
			if err != nil {
				logger.Warn("skipping adapter", "adapter", ad.Name, "err", err)
				continue
			}
			if err := g.RegisterAdapter(zoneID, node.Name); err != nil {
				logger.Warn("adapter created but not registered", "adapter", ad.Name, "err", err)
				continue
			}

			for _, peer := range []string{ad.ClassicalHost, ad.QuantumHost} {
				if table[peer] == nil {
					logger.Warn("adapter peer unresolved", "adapter", ad.Name, "peer", peer)
					continue
				}
				if err := g.SetAdapterPeer(node.Name, peer); err != nil {
					logger.Warn("adapter peer not assigned", "adapter", ad.Name, "peer", peer, "err", err)
					continue
				}
				if _, err := g.Connect(node.Name, peer); err != nil {
					logger.Warn("adapter not connected to peer", "adapter", ad.Name, "peer", peer, "err", err)
				}
			}
		}
	}
}
