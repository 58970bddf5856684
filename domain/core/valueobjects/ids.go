package valueobjects

import (
	"strings"

	pkgerrors "lineage-backend/pkg/errors"

	"github.com/google/uuid"
)

// NodeID identifies an asset node. Catalog-supplied ids are opaque strings;
// the catalog owns its id scheme, so anything non-blank is accepted.
type NodeID struct {
	value string
}

// NewNodeID mints a random NodeID for locally created nodes
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// ParseNodeID creates a NodeID from a catalog-supplied string
func ParseNodeID(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, pkgerrors.NewValidation("node id cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation
func (id NodeID) String() string {
	return id.value
}

// IsZero checks if the ID is uninitialized
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// Equals checks id equality
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// EdgeID identifies a relationship between two nodes
type EdgeID struct {
	value string
}

// NewEdgeID mints a random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// ParseEdgeID creates an EdgeID from a catalog-supplied string
func ParseEdgeID(id string) (EdgeID, error) {
	if strings.TrimSpace(id) == "" {
		return EdgeID{}, pkgerrors.NewValidation("edge id cannot be empty")
	}
	return EdgeID{value: id}, nil
}

// String returns the string representation
func (id EdgeID) String() string {
	return id.value
}

// IsZero checks if the ID is uninitialized
func (id EdgeID) IsZero() bool {
	return id.value == ""
}

// Equals checks id equality
func (id EdgeID) Equals(other EdgeID) bool {
	return id.value == other.value
}
