package snapshot

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/qforge/qtopo/pkg/topology"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// buildHybridGraph constructs a zone with a classical and a quantum
// network, an adapter bridging them, and metadata-bearing connections.
func buildHybridGraph(t *testing.T) *topology.Graph {
	t.Helper()
	g := topology.New()

	zone := g.CreateZone("Zone-1")
	classicalNet, err := g.CreateNetwork(zone, "classical-lan")
	if err != nil {
		t.Fatal(err)
	}
	quantumNet, err := g.CreateNetwork(zone, "quantum-lan")
	if err != nil {
		t.Fatal(err)
	}

	add := func(kind topology.Kind, name string, netID string) {
		t.Helper()
		if _, err := g.AddNode(kind, name, 1, 2); err != nil {
			t.Fatal(err)
		}
		if err := g.AddHost(netID, name); err != nil {
			t.Fatal(err)
		}
	}
	add(topology.KindClassicalHost, "ch1", classicalNet)
	add(topology.KindClassicalRouter, "cr1", classicalNet)
	add(topology.KindQuantumHost, "qh1", quantumNet)
	add(topology.KindQuantumRepeater, "qr1", quantumNet)

	if _, err := g.Connect("ch1", "cr1"); err != nil {
		t.Fatal(err)
	}
	bw := 100
	if err := g.SetMetadata("ch1", "cr1", nil, topology.MetadataPatch{Bandwidth: &bw}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("qh1", "qr1"); err != nil {
		t.Fatal(err)
	}
	qc := 8
	if err := g.SetMetadata("qh1", "qr1", nil, topology.MetadataPatch{QubitCapacity: &qc}); err != nil {
		t.Fatal(err)
	}

	if _, err := g.AddNode(topology.KindQuantumAdapter, "bridge", 5, 5); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterAdapter(zone, "bridge"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetAdapterPeer("bridge", "ch1"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetAdapterPeer("bridge", "qh1"); err != nil {
		t.Fatal(err)
	}
	// The canvas connects the adapter to both peers.
	if _, err := g.Connect("bridge", "ch1"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("bridge", "qh1"); err != nil {
		t.Fatal(err)
	}

	return g
}

func TestRoundTrip(t *testing.T) {
	g := buildHybridGraph(t)
	logger := quietLogger()

	first := Export(g, logger)
	data, err := Marshal(first)
	if err != nil {
		t.Fatal(err)
	}

	g2 := topology.New()
	if _, err := Load(g2, data, logger); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Same node names.
	names := func(g *topology.Graph) []string {
		var out []string
		for _, n := range g.Nodes() {
			out = append(out, n.Name)
		}
		return out
	}
	got, want := names(g2), names(g)
	if len(got) != len(want) {
		t.Fatalf("node names = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("node names = %v, want %v", got, want)
		}
	}

	// Same edge set and per-edge metadata.
	if len(g2.Connections()) != len(g.Connections()) {
		t.Fatalf("edges = %d, want %d", len(g2.Connections()), len(g.Connections()))
	}
	c, ok := g2.Connection("ch1", "cr1")
	if !ok || c.Meta.Bandwidth != 100 {
		t.Errorf("metadata lost in round trip: %+v", c)
	}

	// Second export is byte-identical to the first.
	second := Export(g2, logger)
	data2, err := Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("round-trip export differs:\nfirst:  %s\nsecond: %s", data, data2)
	}
}

func TestExportSkipsIncompleteAdapter(t *testing.T) {
	g := topology.New()
	zone := g.CreateZone("z")
	netID, _ := g.CreateNetwork(zone, "n")
	if _, err := g.AddNode(topology.KindClassicalHost, "ch1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.AddHost(netID, "ch1"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(topology.KindQuantumAdapter, "lonely", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterAdapter(zone, "lonely"); err != nil {
		t.Fatal(err)
	}
	// Only the classical slot assigned: adapter must be omitted, export
	// must still succeed.
	if err := g.SetAdapterPeer("lonely", "ch1"); err != nil {
		t.Fatal(err)
	}

	snap := Export(g, quietLogger())
	if len(snap.Zones) != 1 {
		t.Fatalf("zones = %d", len(snap.Zones))
	}
	if len(snap.Zones[0].Adapters) != 0 {
		t.Errorf("incomplete adapter was exported: %+v", snap.Zones[0].Adapters)
	}
}

func TestExportSkipsAdapterWithUnresolvableNetwork(t *testing.T) {
	g := topology.New()
	zone := g.CreateZone("z")
	netID, _ := g.CreateNetwork(zone, "n")

	for _, n := range []struct {
		kind topology.Kind
		name string
	}{
		{topology.KindClassicalHost, "ch1"},
		{topology.KindQuantumHost, "qh1"},
	} {
		if _, err := g.AddNode(n.kind, n.name, 0, 0); err != nil {
			t.Fatal(err)
		}
	}
	// Only ch1 is placed in a network; qh1 floats free.
	if err := g.AddHost(netID, "ch1"); err != nil {
		t.Fatal(err)
	}

	if _, err := g.AddNode(topology.KindQuantumAdapter, "bridge", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterAdapter(zone, "bridge"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetAdapterPeer("bridge", "ch1"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetAdapterPeer("bridge", "qh1"); err != nil {
		t.Fatal(err)
	}

	snap := Export(g, quietLogger())
	if len(snap.Zones[0].Adapters) != 0 {
		t.Errorf("adapter with unresolvable network was exported")
	}
}

func TestImportReplacesExistingTopology(t *testing.T) {
	g := buildHybridGraph(t)
	if _, err := g.AddNode(topology.KindClassicalHost, "leftover", 0, 0); err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(&Snapshot{Zones: []Zone{{
		Name: "fresh",
		Networks: []Network{{
			Name:  "only",
			Hosts: []Host{{Name: "solo", Type: "QuantumHost"}},
		}},
	}}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Load(g, data, quietLogger()); err != nil {
		t.Fatal(err)
	}

	if _, ok := g.Node("leftover"); ok {
		t.Error("import must clear prior topology")
	}
	if _, ok := g.Node("solo"); !ok {
		t.Error("imported host missing")
	}
}

func TestImportSkipsBadItems(t *testing.T) {
	payload := []byte(`{
		"zones": [{
			"name": "z",
			"networks": [{
				"name": "n",
				"hosts": [
					{"name": "good", "type": "ClassicalHost"},
					{"name": "bad", "type": "FluxCapacitor"}
				],
				"connections": [
					{"from_node": "good", "to_node": "bad"},
					{"from_node": "good", "to_node": "missing"}
				]
			}]
		}]
	}`)

	g := topology.New()
	if _, err := Load(g, payload, quietLogger()); err != nil {
		t.Fatalf("Load should tolerate per-item failures: %v", err)
	}

	if _, ok := g.Node("good"); !ok {
		t.Error("valid host was not imported")
	}
	if _, ok := g.Node("bad"); ok {
		t.Error("unknown-kind host was imported")
	}
	if len(g.Connections()) != 0 {
		t.Errorf("connections with unresolved endpoints were imported: %d", len(g.Connections()))
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("malformed payload must fail")
	}
	// Structurally invalid: a host without a name.
	payload := []byte(`{"zones":[{"name":"z","networks":[{"name":"n","hosts":[{"type":"ClassicalHost"}]}]}]}`)
	if _, err := Decode(payload); err == nil {
		t.Fatal("invalid structure must fail validation")
	}
}

func TestImportAdapterPhaseAfterHosts(t *testing.T) {
	payload := []byte(`{
		"zones": [{
			"name": "z",
			"networks": [
				{"name": "cnet", "hosts": [{"name": "ch1", "type": "ClassicalHost"}]},
				{"name": "qnet", "hosts": [{"name": "qh1", "type": "QuantumHost"}]}
			],
			"adapters": [{
				"name": "bridge",
				"classical_host": "ch1",
				"quantum_host": "qh1",
				"classical_network": "cnet",
				"quantum_network": "qnet"
			}]
		}]
	}`)

	g := topology.New()
	if _, err := Load(g, payload, quietLogger()); err != nil {
		t.Fatal(err)
	}

	a, err := g.Adapter("bridge")
	if err != nil {
		t.Fatal(err)
	}
	if a.ClassicalPeer() != "ch1" || a.QuantumPeer() != "qh1" {
		t.Errorf("adapter peers = %q/%q", a.ClassicalPeer(), a.QuantumPeer())
	}
	// Phase 2 also wires the adapter to both peers.
	if _, ok := g.Connection("bridge", "ch1"); !ok {
		t.Error("adapter not connected to classical peer")
	}
	if _, ok := g.Connection("bridge", "qh1"); !ok {
		t.Error("adapter not connected to quantum peer")
	}
}
