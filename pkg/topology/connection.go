package topology

import (
	"fmt"
	"slices"
	"strings"
)

// Metadata carries the per-link simulation parameters. Zero values mean
// "unset"; the server applies its own defaults for unset fields.
type Metadata struct {
	LossPerKM          float64 `json:"loss_per_km,omitempty"`
	NoiseModel         string  `json:"noise_model,omitempty"`
	NoiseStrength      float64 `json:"noise_strength,omitempty"`
	ErrorRateThreshold float64 `json:"error_rate_threshold,omitempty"`
	QubitCapacity      int     `json:"qubit_capacity,omitempty"`
	Bandwidth          int     `json:"bandwidth,omitempty"`
	Latency            int     `json:"latency,omitempty"`
	PacketLossRate     float64 `json:"packet_loss_rate,omitempty"`
	PacketErrorRate    float64 `json:"packet_error_rate,omitempty"`
	MTU                int     `json:"mtu,omitempty"`

	// Preset names the connection preset the metadata was derived from,
	// if any. Patch fields applied after a preset override its values.
	Preset string `json:"preset,omitempty"`
}

// MetadataPatch is a partial update to Metadata. Nil fields keep the
// connection's previous value, so successive patches merge rather than
// overwrite.
type MetadataPatch struct {
	LossPerKM          *float64 `json:"loss_per_km,omitempty"`
	NoiseModel         *string  `json:"noise_model,omitempty"`
	NoiseStrength      *float64 `json:"noise_strength,omitempty"`
	ErrorRateThreshold *float64 `json:"error_rate_threshold,omitempty"`
	QubitCapacity      *int     `json:"qubit_capacity,omitempty"`
	Bandwidth          *int     `json:"bandwidth,omitempty"`
	Latency            *int     `json:"latency,omitempty"`
	PacketLossRate     *float64 `json:"packet_loss_rate,omitempty"`
	PacketErrorRate    *float64 `json:"packet_error_rate,omitempty"`
	MTU                *int     `json:"mtu,omitempty"`
}

// apply copies the set fields of the patch onto m.
func (p MetadataPatch) apply(m *Metadata) {
	if p.LossPerKM != nil {
		m.LossPerKM = *p.LossPerKM
	}
	if p.NoiseModel != nil {
		m.NoiseModel = *p.NoiseModel
	}
	if p.NoiseStrength != nil {
		m.NoiseStrength = *p.NoiseStrength
	}
	if p.ErrorRateThreshold != nil {
		m.ErrorRateThreshold = *p.ErrorRateThreshold
	}
	if p.QubitCapacity != nil {
		m.QubitCapacity = *p.QubitCapacity
	}
	if p.Bandwidth != nil {
		m.Bandwidth = *p.Bandwidth
	}
	if p.Latency != nil {
		m.Latency = *p.Latency
	}
	if p.PacketLossRate != nil {
		m.PacketLossRate = *p.PacketLossRate
	}
	if p.PacketErrorRate != nil {
		m.PacketErrorRate = *p.PacketErrorRate
	}
	if p.MTU != nil {
		m.MTU = *p.MTU
	}
}

// Connection is an undirected edge between two named nodes. From/To reflect
// the order the connection was created in; identity is the unordered pair.
type Connection struct {
	From string
	To   string
	Meta Metadata
}

// key returns the canonical unordered-pair key for the connection.
func (c *Connection) key() string {
	return pairKey(c.From, c.To)
}

// otherEnd returns the endpoint that is not name.
func (c *Connection) otherEnd(name string) string {
	if c.From == name {
		return c.To
	}
	return c.From
}

// pairKey canonicalizes an unordered node pair. The separator cannot occur
// in node names that survive export, so keys are collision-free.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Connect creates an edge between two existing nodes. Returns
// ErrEndpointNotFound if either name is absent, ErrSelfConnection when the
// endpoints are equal, and ErrConnectionExists when the unordered pair is
// already connected.
func (g *Graph) Connect(from, to string) (*Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if from == to {
		return nil, fmt.Errorf("%w: %q", ErrSelfConnection, from)
	}
	for _, name := range []string{from, to} {
		if _, ok := g.nodes[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrEndpointNotFound, name)
		}
	}
	key := pairKey(from, to)
	if _, ok := g.conns[key]; ok {
		return nil, fmt.Errorf("%w: %s <-> %s", ErrConnectionExists, from, to)
	}

	c := &Connection{From: from, To: to}
	g.conns[key] = c
	g.byNode[from] = append(g.byNode[from], c)
	g.byNode[to] = append(g.byNode[to], c)
	g.markDirty()
	return c, nil
}

// Disconnect removes the edge between from and to. Returns
// ErrConnectionNotFound when the pair is not connected; the error message
// distinguishes a node with no connections at all from a missing peer.
func (g *Graph) Disconnect(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := pairKey(from, to)
	c, ok := g.conns[key]
	if !ok {
		if len(g.byNode[from]) == 0 {
			return fmt.Errorf("%w: no connection started from %q", ErrConnectionNotFound, from)
		}
		return fmt.Errorf("%w: %q has no connection to %q", ErrConnectionNotFound, from, to)
	}

	delete(g.conns, key)
	for _, name := range []string{c.From, c.To} {
		g.byNode[name] = slices.DeleteFunc(g.byNode[name], func(x *Connection) bool {
			return x.key() == key
		})
	}
	g.markDirty()
	return nil
}

// Connection returns the edge between from and to, or false if absent.
func (g *Graph) Connection(from, to string) (*Connection, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[pairKey(from, to)]
	return c, ok
}

// Connections returns every edge, sorted by endpoint names.
func (g *Graph) Connections() []*Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Connection, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Connection) int {
		return strings.Compare(a.key(), b.key())
	})
	return out
}

// ConnectionsFor returns every edge touching the named node, in creation
// order. Used when cascading deletes.
func (g *Graph) ConnectionsFor(name string) []*Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.byNode[name])
}

// SetMetadata applies a partial metadata update to an existing connection.
// If preset is non-empty, the preset's values are applied first and the
// patch's set fields win over them; the preset name is recorded on the
// connection. Fields not covered by either retain their previous values.
func (g *Graph) SetMetadata(from, to string, preset *Preset, patch MetadataPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.conns[pairKey(from, to)]
	if !ok {
		return fmt.Errorf("%w: %q has no connection to %q", ErrConnectionNotFound, from, to)
	}

	if preset != nil {
		preset.Config.apply(&c.Meta)
		c.Meta.Preset = preset.Name
	}
	patch.apply(&c.Meta)
	g.markDirty()
	return nil
}

// RestoreMetadata replaces a connection's metadata wholesale. Used by
// snapshot import, where the exported record is authoritative.
func (g *Graph) RestoreMetadata(from, to string, m Metadata) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.conns[pairKey(from, to)]
	if !ok {
		return fmt.Errorf("%w: %q has no connection to %q", ErrConnectionNotFound, from, to)
	}
	c.Meta = m
	g.markDirty()
	return nil
}
