package entities

import (
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// Kind classifies how a target asset derives from its source
type Kind string

const (
	KindDirect     Kind = "direct"
	KindDerived    Kind = "derived"
	KindAggregated Kind = "aggregated"
	KindReference  Kind = "reference"
)

// ParseKind validates a raw relationship kind string
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindDirect, KindDerived, KindAggregated, KindReference:
		return Kind(raw), nil
	}
	return "", pkgerrors.NewValidation("unknown edge kind: " + raw)
}

// Edge is a directed derivation relationship between two nodes.
// Direction matters for impact analysis; weight influences both the layout
// spring strength and traversal cost.
type Edge struct {
	id        valueobjects.EdgeID
	source    valueobjects.NodeID
	target    valueobjects.NodeID
	kind      Kind
	weight    float64
	createdAt time.Time
}

// NewEdge creates an edge with validation. A zero weight defaults to 1.
func NewEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID, kind Kind, weight float64) (*Edge, error) {
	if id.IsZero() {
		id = valueobjects.NewEdgeID()
	}
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidation("edge requires both source and target node ids")
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if weight < 0 {
		return nil, pkgerrors.NewValidation("edge weight cannot be negative")
	}
	if weight == 0 {
		weight = 1
	}

	return &Edge{
		id:        id,
		source:    source,
		target:    target,
		kind:      kind,
		weight:    weight,
		createdAt: time.Now(),
	}, nil
}

// ID returns the edge identifier
func (e *Edge) ID() valueobjects.EdgeID {
	return e.id
}

// Source returns the upstream node id
func (e *Edge) Source() valueobjects.NodeID {
	return e.source
}

// Target returns the downstream node id
func (e *Edge) Target() valueobjects.NodeID {
	return e.target
}

// Kind returns the relationship kind
func (e *Edge) Kind() Kind {
	return e.kind
}

// Weight returns the edge weight
func (e *Edge) Weight() float64 {
	return e.weight
}

// Touches reports whether the edge has the given node as either endpoint
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.source.Equals(nodeID) || e.target.Equals(nodeID)
}

// CreatedAt returns when the edge was created
func (e *Edge) CreatedAt() time.Time {
	return e.createdAt
}
