package entities

import (
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// Category classifies an asset node. The set is closed: payloads carrying
// anything else are rejected at construction.
type Category string

const (
	CategoryTable          Category = "table"
	CategoryView           Category = "view"
	CategoryTransformation Category = "transformation"
	CategoryReport         Category = "report"
	CategoryAPI            Category = "api"
	CategoryFile           Category = "file"
	CategoryExternal       Category = "external"
)

// ParseCategory validates a raw category string
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryTable, CategoryView, CategoryTransformation,
		CategoryReport, CategoryAPI, CategoryFile, CategoryExternal:
		return Category(raw), nil
	}
	return "", pkgerrors.NewValidation("unknown node category: " + raw)
}

// DefaultNodeRadius is used for collision resolution when no radius is declared
const DefaultNodeRadius = 8.0

// Node is an asset in the lineage graph.
// Position, velocity and the pinned flag are owned by the layout simulation;
// everything else comes from the catalog feed.
type Node struct {
	id       valueobjects.NodeID
	name     string
	category Category
	metadata map[string]string
	radius   float64

	position   valueobjects.Position
	velocity   valueobjects.Velocity
	positioned bool
	pinned     bool

	createdAt time.Time
	updatedAt time.Time
}

// NewNode creates a node with validation
func NewNode(id valueobjects.NodeID, name string, category Category, metadata map[string]string) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidation("node id is required")
	}
	if name == "" {
		return nil, pkgerrors.NewValidation("node name is required")
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	now := time.Now()
	return &Node{
		id:        id,
		name:      name,
		category:  category,
		metadata:  md,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the node's identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Name returns the display name
func (n *Node) Name() string {
	return n.name
}

// Category returns the asset category
func (n *Node) Category() Category {
	return n.category
}

// Metadata returns a copy of the opaque catalog metadata
func (n *Node) Metadata() map[string]string {
	md := make(map[string]string, len(n.metadata))
	for k, v := range n.metadata {
		md[k] = v
	}
	return md
}

// MetadataValue looks up a single metadata key
func (n *Node) MetadataValue(key string) (string, bool) {
	v, ok := n.metadata[key]
	return v, ok
}

// Rename updates the display name
func (n *Node) Rename(name string) error {
	if name == "" {
		return pkgerrors.NewValidation("node name is required")
	}
	n.name = name
	n.updatedAt = time.Now()
	return nil
}

// SetMetadata replaces the metadata mapping
func (n *Node) SetMetadata(metadata map[string]string) {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	n.metadata = md
	n.updatedAt = time.Now()
}

// SetRadius declares a visual radius; zero means "use the default"
func (n *Node) SetRadius(radius float64) error {
	if radius < 0 {
		return pkgerrors.NewValidation("node radius cannot be negative")
	}
	n.radius = radius
	return nil
}

// Radius returns the declared radius, falling back to the default
func (n *Node) Radius() float64 {
	if n.radius <= 0 {
		return DefaultNodeRadius
	}
	return n.radius
}

// Position returns the last committed layout position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Velocity returns the current simulation velocity
func (n *Node) Velocity() valueobjects.Velocity {
	return n.velocity
}

// HasPosition reports whether the simulation has placed this node yet
func (n *Node) HasPosition() bool {
	return n.positioned
}

// SetPosition commits a layout position
func (n *Node) SetPosition(p valueobjects.Position) {
	n.position = p
	n.positioned = true
}

// SetVelocity commits a simulation velocity
func (n *Node) SetVelocity(v valueobjects.Velocity) {
	n.velocity = v
}

// Pin fixes the node in place; pinned nodes still exert forces on others
func (n *Node) Pin() {
	n.pinned = true
	n.velocity = valueobjects.Velocity{}
}

// Unpin releases the node back to the simulation
func (n *Node) Unpin() {
	n.pinned = false
}

// Pinned reports whether the node is held fixed
func (n *Node) Pinned() bool {
	return n.pinned
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node attributes last changed
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}
