// Package render turns a topology into Graphviz diagrams.
//
// Zones and networks become nested cluster subgraphs; node shapes
// distinguish the classical and quantum families; edges carry a short
// metadata label. The DOT output can be rendered to SVG or PNG with
// the embedded Graphviz engine, no external binaries required.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/qforge/qtopo/pkg/topology"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes connection metadata (bandwidth, latency, qubit
	// capacity) as edge labels. When false, edges are unlabeled.
	Detailed bool
}

// ToDOT converts a topology to Graphviz DOT format. Hosts grouped in
// networks render inside their zone's cluster; free-floating nodes
// render at the top level.
func ToDOT(g *topology.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  layout=fdp;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=12];\n")
	buf.WriteString("\n")

	placed := map[string]bool{}
	for zi, zone := range g.Zones() {
		fmt.Fprintf(&buf, "  subgraph \"cluster_zone_%d\" {\n", zi)
		fmt.Fprintf(&buf, "    label=%q;\n", zone.Name)
		buf.WriteString("    style=dashed;\n")

		for ni, net := range g.NetworksIn(zone.ID) {
			fmt.Fprintf(&buf, "    subgraph \"cluster_net_%d_%d\" {\n", zi, ni)
			fmt.Fprintf(&buf, "      label=%q;\n", net.Name)
			buf.WriteString("      style=solid;\n")
			for _, n := range g.HostsIn(net.ID) {
				fmt.Fprintf(&buf, "      %q [%s];\n", n.Name, strings.Join(nodeAttrs(n), ", "))
				placed[n.Name] = true
			}
			buf.WriteString("    }\n")
		}

		for _, a := range g.AdaptersIn(zone.ID) {
			fmt.Fprintf(&buf, "    %q [%s];\n", a.Node.Name, strings.Join(nodeAttrs(a.Node), ", "))
			placed[a.Node.Name] = true
		}
		buf.WriteString("  }\n")
	}

	for _, n := range g.Nodes() {
		if !placed[n.Name] {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(nodeAttrs(n), ", "))
		}
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		if opts.Detailed {
			if label := edgeLabel(c.Meta); label != "" {
				fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=10];\n", c.From, c.To, label)
				continue
			}
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", c.From, c.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *topology.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Name)}
	switch n.Kind.Family() {
	case topology.FamilyQuantum:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightblue")
	case topology.FamilyClassical:
		attrs = append(attrs, "shape=box", "fillcolor=white")
	default:
		// Adapters bridge both families.
		attrs = append(attrs, "shape=diamond", "fillcolor=lightyellow")
	}
	return attrs
}

func edgeLabel(m topology.Metadata) string {
	var parts []string
	if m.Bandwidth > 0 {
		parts = append(parts, fmt.Sprintf("%d Mbps", m.Bandwidth))
	}
	if m.Latency > 0 {
		parts = append(parts, fmt.Sprintf("%d ms", m.Latency))
	}
	if m.QubitCapacity > 0 {
		parts = append(parts, fmt.Sprintf("%d qb", m.QubitCapacity))
	}
	if m.Preset != "" {
		parts = append(parts, m.Preset)
	}
	return strings.Join(parts, "\n")
}
