package render

import (
	"strings"
	"testing"

	"github.com/qforge/qtopo/pkg/topology"
)

func TestToDOTClusters(t *testing.T) {
	g := topology.New()
	zone := g.CreateZone("Lab")
	netID, err := g.CreateNetwork(zone, "quantum-lan")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(topology.KindQuantumHost, "qh1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.AddHost(netID, "qh1"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(topology.KindClassicalRouter, "cr1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("qh1", "cr1"); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"graph topology {",
		`label="Lab";`,
		`label="quantum-lan";`,
		`"qh1" -- "cr1";`,
		"shape=ellipse", // quantum family
		"shape=box",     // classical family, rendered outside any cluster
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedEdgeLabels(t *testing.T) {
	g := topology.New()
	if _, err := g.AddNode(topology.KindClassicalHost, "a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(topology.KindClassicalHost, "b", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("a", "b"); err != nil {
		t.Fatal(err)
	}
	bw, lat := 100, 5
	if err := g.SetMetadata("a", "b", nil, topology.MetadataPatch{Bandwidth: &bw, Latency: &lat}); err != nil {
		t.Fatal(err)
	}

	plain := ToDOT(g, Options{})
	if strings.Contains(plain, "100 Mbps") {
		t.Error("plain output should not carry edge labels")
	}

	detailed := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(detailed, "100 Mbps") || !strings.Contains(detailed, "5 ms") {
		t.Errorf("detailed output missing metadata label:\n%s", detailed)
	}
}

func TestToDOTAdapterShape(t *testing.T) {
	g := topology.New()
	zone := g.CreateZone("z")
	if _, err := g.AddNode(topology.KindQuantumAdapter, "bridge", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterAdapter(zone, "bridge"); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, "shape=diamond") {
		t.Errorf("adapter should render as diamond:\n%s", dot)
	}
}
