package aggregates

import (
	"sync"
	"time"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	"lineage-backend/domain/events"
	pkgerrors "lineage-backend/pkg/errors"

	"github.com/google/uuid"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Direction selects which adjacency to follow
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ParseDirection validates a raw direction string
func ParseDirection(raw string) (Direction, error) {
	switch Direction(raw) {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return Direction(raw), nil
	}
	return "", pkgerrors.NewValidation("unknown direction: " + raw)
}

// Graph is the aggregate root for the lineage graph: an owned collection of
// nodes and edges plus derived adjacency indices maintained incrementally so
// traversal stays O(degree).
//
// The model is a general directed multigraph. Parallel edges, self-loops and
// cycles are all legitimate lineage (views can be circular), so no cycle or
// duplicate-endpoint check is performed here.
//
// Structural mutation is single-writer; reads may run concurrently with each
// other but never with a mutation. The aggregate enforces that itself with a
// reader-writer lock since this core has no repository layer to hide behind.
type Graph struct {
	mu sync.RWMutex

	id        GraphID
	nodes     map[valueobjects.NodeID]*entities.Node
	nodeOrder []valueobjects.NodeID
	edges     map[valueobjects.EdgeID]*entities.Edge
	edgeOrder []valueobjects.EdgeID

	// Insertion-ordered adjacency indices. Order is load-bearing: traversal
	// tie-breaks on discovery order, and the simulation accumulates forces in
	// a fixed order for reproducible layouts.
	outgoing map[valueobjects.NodeID][]valueobjects.EdgeID
	incoming map[valueobjects.NodeID][]valueobjects.EdgeID

	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NewGraph creates an empty graph aggregate
func NewGraph() *Graph {
	now := time.Now()
	return &Graph{
		id:        NewGraphID(),
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[valueobjects.EdgeID]*entities.Edge),
		outgoing:  make(map[valueobjects.NodeID][]valueobjects.EdgeID),
		incoming:  make(map[valueobjects.NodeID][]valueobjects.EdgeID),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}
}

// NewGraphFrom creates a graph from a bulk node/edge list. The whole batch is
// validated against the same rules as incremental inserts; on error the
// returned graph is nil and nothing is retained.
func NewGraphFrom(nodes []*entities.Node, edges []*entities.Edge) (*Graph, error) {
	g := NewGraph()
	for _, node := range nodes {
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// Version returns the mutation counter
func (g *Graph) Version() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// AddNode inserts a node. Fails with DuplicateID when the id is taken.
func (g *Graph) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidation("node cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	nodeID := node.ID()
	if _, exists := g.nodes[nodeID]; exists {
		return pkgerrors.NewDuplicateID("node", nodeID.String())
	}

	g.nodes[nodeID] = node
	g.nodeOrder = append(g.nodeOrder, nodeID)
	g.outgoing[nodeID] = nil
	g.incoming[nodeID] = nil
	g.touch()

	g.events = append(g.events, events.NewNodeAdded(nodeID))
	return nil
}

// AddEdge inserts an edge. Fails with DuplicateID when the edge id is taken
// and DanglingEdge when either endpoint is missing; a rejected insert leaves
// the store untouched.
func (g *Graph) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return pkgerrors.NewValidation("edge cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	edgeID := edge.ID()
	if _, exists := g.edges[edgeID]; exists {
		return pkgerrors.NewDuplicateID("edge", edgeID.String())
	}
	if _, ok := g.nodes[edge.Source()]; !ok {
		return pkgerrors.NewDanglingEdge(edgeID.String(), edge.Source().String())
	}
	if _, ok := g.nodes[edge.Target()]; !ok {
		return pkgerrors.NewDanglingEdge(edgeID.String(), edge.Target().String())
	}

	g.edges[edgeID] = edge
	g.edgeOrder = append(g.edgeOrder, edgeID)
	g.outgoing[edge.Source()] = append(g.outgoing[edge.Source()], edgeID)
	g.incoming[edge.Target()] = append(g.incoming[edge.Target()], edgeID)
	g.touch()

	g.events = append(g.events, events.NewEdgeAdded(edgeID, edge.Source(), edge.Target()))
	return nil
}

// RemoveNode removes a node and cascades removal of every edge touching it.
// Fails with UnknownTarget when the node is absent.
func (g *Graph) RemoveNode(nodeID valueobjects.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[nodeID]; !exists {
		return pkgerrors.NewUnknownTarget("node", nodeID.String())
	}

	// Collect touched edges from both indices; a self-loop appears in both.
	cascaded := make([]valueobjects.EdgeID, 0, len(g.outgoing[nodeID])+len(g.incoming[nodeID]))
	seen := make(map[valueobjects.EdgeID]struct{})
	for _, edgeID := range g.outgoing[nodeID] {
		if _, dup := seen[edgeID]; !dup {
			seen[edgeID] = struct{}{}
			cascaded = append(cascaded, edgeID)
		}
	}
	for _, edgeID := range g.incoming[nodeID] {
		if _, dup := seen[edgeID]; !dup {
			seen[edgeID] = struct{}{}
			cascaded = append(cascaded, edgeID)
		}
	}

	for _, edgeID := range cascaded {
		g.removeEdgeLocked(edgeID)
	}

	delete(g.nodes, nodeID)
	delete(g.outgoing, nodeID)
	delete(g.incoming, nodeID)
	g.nodeOrder = removeNodeID(g.nodeOrder, nodeID)
	g.touch()

	g.events = append(g.events, events.NewNodeRemoved(nodeID, cascaded))
	return nil
}

// RemoveEdge removes a single edge. Fails with UnknownTarget when absent.
func (g *Graph) RemoveEdge(edgeID valueobjects.EdgeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[edgeID]; !exists {
		return pkgerrors.NewUnknownTarget("edge", edgeID.String())
	}

	g.removeEdgeLocked(edgeID)
	g.touch()

	g.events = append(g.events, events.NewEdgeRemoved(edgeID))
	return nil
}

// Neighbors returns the set of directly connected node ids filtered by
// direction, deduplicated, in adjacency insertion order.
func (g *Graph) Neighbors(nodeID valueobjects.NodeID, direction Direction) ([]valueobjects.NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, exists := g.nodes[nodeID]; !exists {
		return nil, pkgerrors.NewUnknownTarget("node", nodeID.String())
	}

	var result []valueobjects.NodeID
	seen := make(map[valueobjects.NodeID]struct{})
	appendNeighbor := func(id valueobjects.NodeID) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}

	if direction == DirectionOutgoing || direction == DirectionBoth {
		for _, edgeID := range g.outgoing[nodeID] {
			appendNeighbor(g.edges[edgeID].Target())
		}
	}
	if direction == DirectionIncoming || direction == DirectionBoth {
		for _, edgeID := range g.incoming[nodeID] {
			appendNeighbor(g.edges[edgeID].Source())
		}
	}

	return result, nil
}

// GetNode retrieves a node by id
func (g *Graph) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.NewUnknownTarget("node", nodeID.String())
	}
	return node, nil
}

// GetEdge retrieves an edge by id
func (g *Graph) GetEdge(edgeID valueobjects.EdgeID) (*entities.Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edge, exists := g.edges[edgeID]
	if !exists {
		return nil, pkgerrors.NewUnknownTarget("edge", edgeID.String())
	}
	return edge, nil
}

// HasNode checks node existence without an error
func (g *Graph) HasNode(nodeID valueobjects.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.nodes[nodeID]
	return exists
}

// HasEdge checks edge existence without an error
func (g *Graph) HasEdge(edgeID valueobjects.EdgeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.edges[edgeID]
	return exists
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []*entities.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]*entities.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edges = append(edges, g.edges[id])
	}
	return edges
}

// Export returns all nodes and edges in insertion order under a single read
// lock, so the two slices are mutually consistent. Snapshot capture depends
// on that.
func (g *Graph) Export() ([]*entities.Node, []*entities.Edge) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	edges := make([]*entities.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edges = append(edges, g.edges[id])
	}
	return nodes, edges
}

// View captures an immutable read-only view of the topology for traversal.
// Built under the read lock, so a traversal over it never observes a
// concurrent mutation mid-run.
func (g *Graph) View() *View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v := &View{
		nodeOrder:  make([]valueobjects.NodeID, len(g.nodeOrder)),
		categories: make(map[valueobjects.NodeID]entities.Category, len(g.nodes)),
		outgoing:   make(map[valueobjects.NodeID][]valueobjects.NodeID, len(g.nodes)),
		incoming:   make(map[valueobjects.NodeID][]valueobjects.NodeID, len(g.nodes)),
	}
	copy(v.nodeOrder, g.nodeOrder)

	for id, node := range g.nodes {
		v.categories[id] = node.Category()
	}
	for _, id := range g.nodeOrder {
		for _, edgeID := range g.outgoing[id] {
			v.outgoing[id] = append(v.outgoing[id], g.edges[edgeID].Target())
		}
		for _, edgeID := range g.incoming[id] {
			v.incoming[id] = append(v.incoming[id], g.edges[edgeID].Source())
		}
	}
	return v
}

// NodeLayout is a value copy of a node's committed layout state, exposed for
// the rendering collaborator. No shared-object aliasing with the simulation.
type NodeLayout struct {
	ID     valueobjects.NodeID
	X      float64
	Y      float64
	Radius float64
	Pinned bool
}

// Layouts returns the last fully-committed position per node, in insertion
// order
func (g *Graph) Layouts() []NodeLayout {
	g.mu.RLock()
	defer g.mu.RUnlock()

	layouts := make([]NodeLayout, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		node := g.nodes[id]
		layouts = append(layouts, NodeLayout{
			ID:     id,
			X:      node.Position().X(),
			Y:      node.Position().Y(),
			Radius: node.Radius(),
			Pinned: node.Pinned(),
		})
	}
	return layouts
}

// WithWriteLock runs fn while holding the write lock. The simulation uses it
// to commit a tick's positions atomically.
func (g *Graph) WithWriteLock(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// WithReadLock runs fn while holding the read lock
func (g *Graph) WithReadLock(fn func()) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn()
}

// UpdatedAt returns when the graph last changed structurally
func (g *Graph) UpdatedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.updatedAt
}

// CreatedAt returns when the graph was created
func (g *Graph) CreatedAt() time.Time {
	return g.createdAt
}

// Validate ensures graph invariants hold
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.Source()]; !ok {
			return pkgerrors.NewValidation("edge references non-existent source node")
		}
		if _, ok := g.nodes[edge.Target()]; !ok {
			return pkgerrors.NewValidation("edge references non-existent target node")
		}
	}
	if len(g.nodeOrder) != len(g.nodes) {
		return pkgerrors.NewValidation("node index count mismatch")
	}
	if len(g.edgeOrder) != len(g.edges) {
		return pkgerrors.NewValidation("edge index count mismatch")
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()

	all := make([]events.DomainEvent, len(g.events))
	copy(all, g.events)
	return all
}

// MarkEventsAsCommitted clears all uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = nil
}

// DrainEvents atomically returns and clears uncommitted events
func (g *Graph) DrainEvents() []events.DomainEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	drained := g.events
	g.events = nil
	return drained
}

// Private helpers; callers hold the write lock.

func (g *Graph) touch() {
	g.updatedAt = time.Now()
	g.version++
}

func (g *Graph) removeEdgeLocked(edgeID valueobjects.EdgeID) {
	edge := g.edges[edgeID]
	delete(g.edges, edgeID)
	g.edgeOrder = removeEdgeID(g.edgeOrder, edgeID)
	g.outgoing[edge.Source()] = removeEdgeID(g.outgoing[edge.Source()], edgeID)
	g.incoming[edge.Target()] = removeEdgeID(g.incoming[edge.Target()], edgeID)
}

func removeEdgeID(ids []valueobjects.EdgeID, id valueobjects.EdgeID) []valueobjects.EdgeID {
	for i, candidate := range ids {
		if candidate.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func removeNodeID(ids []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	for i, candidate := range ids {
		if candidate.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
