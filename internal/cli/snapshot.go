package cli

import (
	"fmt"
	"os"

	"github.com/qforge/qtopo/pkg/snapshot"
)

// readSnapshot loads and validates a topology snapshot from a JSON file.
func readSnapshot(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// snapshotStats counts hosts and connections across all zones.
func snapshotStats(snap *snapshot.Snapshot) (hosts, links int) {
	for _, zone := range snap.Zones {
		for _, net := range zone.Networks {
			hosts += len(net.Hosts)
			links += len(net.Connections)
		}
		hosts += len(zone.Adapters)
	}
	return hosts, links
}
