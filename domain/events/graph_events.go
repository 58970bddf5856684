package events

import (
	"time"

	"lineage-backend/domain/core/valueobjects"
)

// Event types
const (
	TypeNodeAdded   = "graph.node_added"
	TypeNodeRemoved = "graph.node_removed"
	TypeEdgeAdded   = "graph.edge_added"
	TypeEdgeRemoved = "graph.edge_removed"
)

// DomainEvent is implemented by all structural graph events.
// The application layer drains these to reheat the layout simulation and
// record temporal snapshots after a mutation.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events
type BaseEvent struct {
	Type      string
	Timestamp time.Time
}

// EventType returns the event type string
func (e BaseEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event happened
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NodeAdded is emitted when a node is inserted into the graph
type NodeAdded struct {
	BaseEvent
	NodeID valueobjects.NodeID
}

// NodeRemoved is emitted when a node is removed; CascadedEdges lists the
// edges removed with it
type NodeRemoved struct {
	BaseEvent
	NodeID        valueobjects.NodeID
	CascadedEdges []valueobjects.EdgeID
}

// EdgeAdded is emitted when an edge is inserted into the graph
type EdgeAdded struct {
	BaseEvent
	EdgeID valueobjects.EdgeID
	Source valueobjects.NodeID
	Target valueobjects.NodeID
}

// EdgeRemoved is emitted when an edge is removed directly
type EdgeRemoved struct {
	BaseEvent
	EdgeID valueobjects.EdgeID
}

// NewNodeAdded constructs a NodeAdded event
func NewNodeAdded(nodeID valueobjects.NodeID) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{Type: TypeNodeAdded, Timestamp: time.Now()},
		NodeID:    nodeID,
	}
}

// NewNodeRemoved constructs a NodeRemoved event
func NewNodeRemoved(nodeID valueobjects.NodeID, cascaded []valueobjects.EdgeID) NodeRemoved {
	return NodeRemoved{
		BaseEvent:     BaseEvent{Type: TypeNodeRemoved, Timestamp: time.Now()},
		NodeID:        nodeID,
		CascadedEdges: cascaded,
	}
}

// NewEdgeAdded constructs an EdgeAdded event
func NewEdgeAdded(edgeID valueobjects.EdgeID, source, target valueobjects.NodeID) EdgeAdded {
	return EdgeAdded{
		BaseEvent: BaseEvent{Type: TypeEdgeAdded, Timestamp: time.Now()},
		EdgeID:    edgeID,
		Source:    source,
		Target:    target,
	}
}

// NewEdgeRemoved constructs an EdgeRemoved event
func NewEdgeRemoved(edgeID valueobjects.EdgeID) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{Type: TypeEdgeRemoved, Timestamp: time.Now()},
		EdgeID:    edgeID,
	}
}
