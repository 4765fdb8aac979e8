package topology

import "errors"

var (
	// ErrInvalidNodeName is returned by [Graph.AddNode] when the supplied
	// name is empty after auto-generation, or contains characters that
	// cannot survive the export format.
	ErrInvalidNodeName = errors.New("node name must not be empty")

	// ErrDuplicateName is returned by [Graph.AddNode] when a node with the
	// same name already exists. Node names are unique across the graph.
	ErrDuplicateName = errors.New("duplicate node name")

	// ErrUnknownKind is returned by [Graph.AddNode] when the node kind is
	// not one of the known variants. Nothing is added to the graph.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrEndpointNotFound is returned by connection operations when either
	// endpoint name does not resolve to a live node.
	ErrEndpointNotFound = errors.New("endpoint node not found")

	// ErrConnectionExists is returned by [Graph.Connect] when the unordered
	// pair is already connected. Part of the connection-error family.
	ErrConnectionExists = errors.New("connection already exists")

	// ErrConnectionNotFound is returned by [Graph.Disconnect] and
	// [Graph.SetMetadata] when no connection exists for the pair. Part of
	// the connection-error family.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrSelfConnection is returned by [Graph.Connect] when both endpoints
	// name the same node.
	ErrSelfConnection = errors.New("cannot connect a node to itself")

	// ErrNetworkNotFound is returned by network and zone operations when
	// the given id does not resolve.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrZoneNotFound is returned by zone operations when the given id
	// does not resolve.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrNotAdapter is returned by adapter operations when the named node
	// is not a quantum adapter.
	ErrNotAdapter = errors.New("node is not a quantum adapter")

	// ErrPeerAssigned is returned when an adapter already has a peer of the
	// requested family. Adapters pair exactly one classical-family node
	// with one quantum-family node.
	ErrPeerAssigned = errors.New("adapter peer already assigned for family")

	// ErrPeerFamily is returned when the node offered as an adapter peer
	// does not belong to the required family.
	ErrPeerFamily = errors.New("node family does not match adapter slot")
)
