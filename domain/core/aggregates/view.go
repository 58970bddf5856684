package aggregates

import (
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// View is an immutable copy of the graph topology captured at a point in
// time. Traversal algorithms run against a View so they never race with a
// structural mutation; adjacency slices preserve edge insertion order for
// deterministic expansion.
type View struct {
	nodeOrder  []valueobjects.NodeID
	categories map[valueobjects.NodeID]entities.Category
	outgoing   map[valueobjects.NodeID][]valueobjects.NodeID
	incoming   map[valueobjects.NodeID][]valueobjects.NodeID
}

// HasNode checks node existence in the view
func (v *View) HasNode(id valueobjects.NodeID) bool {
	_, ok := v.categories[id]
	return ok
}

// Category returns the node's category
func (v *View) Category(id valueobjects.NodeID) (entities.Category, bool) {
	c, ok := v.categories[id]
	return c, ok
}

// NodeOrder returns node ids in graph insertion order
func (v *View) NodeOrder() []valueobjects.NodeID {
	return v.nodeOrder
}

// Outgoing returns target ids of edges leaving the node, in edge insertion
// order; parallel edges yield repeated entries
func (v *View) Outgoing(id valueobjects.NodeID) []valueobjects.NodeID {
	return v.outgoing[id]
}

// Incoming returns source ids of edges entering the node, in edge insertion
// order
func (v *View) Incoming(id valueobjects.NodeID) []valueobjects.NodeID {
	return v.incoming[id]
}

// Undirected returns the union adjacency: outgoing targets first, then
// incoming sources, preserving discovery-order determinism
func (v *View) Undirected(id valueobjects.NodeID) []valueobjects.NodeID {
	out := v.outgoing[id]
	in := v.incoming[id]
	union := make([]valueobjects.NodeID, 0, len(out)+len(in))
	union = append(union, out...)
	union = append(union, in...)
	return union
}
