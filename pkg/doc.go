// Package pkg provides the core libraries for the qtopo topology builder.
//
// # Overview
//
// Qtopo models hybrid classical/quantum network topologies and keeps them
// in sync with a topology server. The pkg directory is organized into
// these areas:
//
//  1. [topology] - The in-memory graph: zones, networks, hosts, connections, adapters
//  2. [snapshot] - The export/import codec between the graph and the server's format
//  3. [client] - HTTP client for the topology server API
//  4. [live] - Websocket channel for streaming simulation events
//  5. [autosave] - Background persistence of graph changes
//  6. [render] - DOT/SVG/PNG diagram generation
//  7. [cache], [httputil], [session], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through qtopo:
//
//	topology.Graph (zones, networks, hosts, links)
//	         ↓ snapshot.Export
//	    snapshot.Snapshot (canonical JSON form)
//	         ↓ client.SaveTopology / autosave.Loop
//	    topology server (persistence, simulation)
//	         ↓ live.Channel
//	    simulation events (websocket)
//
// # Quick Start
//
//	g := topology.New()
//	zone := g.CreateZone("zone 1")
//	netID, _ := g.CreateNetwork(zone, "quantum net")
//	g.AddHost(netID, "qh1")
//
//	snap := snapshot.Export(g, logger)
//	cl := client.New("http://localhost:8000", "alice", logger)
//	cl.SaveTopology(ctx, snap)
//
// [topology]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/topology
// [snapshot]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/snapshot
// [client]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/client
// [live]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/live
// [autosave]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/autosave
// [render]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/render
// [cache]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/httputil
// [session]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/session
// [errors]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/errors
// [observability]: https://pkg.go.dev/github.com/qforge/qtopo/pkg/observability
package pkg
