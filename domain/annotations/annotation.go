package annotations

import (
	"strings"
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"

	"github.com/google/uuid"
)

// Category classifies an annotation
type Category string

const (
	CategoryNote        Category = "note"
	CategoryWarning     Category = "warning"
	CategoryIssue       Category = "issue"
	CategoryImprovement Category = "improvement"
)

// ParseCategory validates a raw category string
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryNote, CategoryWarning, CategoryIssue, CategoryImprovement:
		return Category(raw), nil
	}
	return "", pkgerrors.NewValidation("unknown annotation category: " + raw)
}

// Target identifies the graph element an annotation is attached to: exactly
// one of node or edge.
type Target struct {
	nodeID valueobjects.NodeID
	edgeID valueobjects.EdgeID
}

// NodeTarget attaches to a node
func NodeTarget(id valueobjects.NodeID) Target {
	return Target{nodeID: id}
}

// EdgeTarget attaches to an edge
func EdgeTarget(id valueobjects.EdgeID) Target {
	return Target{edgeID: id}
}

// IsNode reports whether the target is a node
func (t Target) IsNode() bool {
	return !t.nodeID.IsZero()
}

// NodeID returns the node target; zero when the target is an edge
func (t Target) NodeID() valueobjects.NodeID {
	return t.nodeID
}

// EdgeID returns the edge target; zero when the target is a node
func (t Target) EdgeID() valueobjects.EdgeID {
	return t.edgeID
}

// String renders the target for error messages and logs
func (t Target) String() string {
	if t.IsNode() {
		return "node:" + t.nodeID.String()
	}
	return "edge:" + t.edgeID.String()
}

func (t Target) validate() error {
	if t.nodeID.IsZero() == t.edgeID.IsZero() {
		return pkgerrors.NewValidation("annotation target must be exactly one of node or edge")
	}
	return nil
}

// Equals compares two targets
func (t Target) Equals(other Target) bool {
	return t.nodeID.Equals(other.nodeID) && t.edgeID.Equals(other.edgeID)
}

// Annotation is a freeform piece of commentary attached to a node or edge.
// Deletion is soft: deleted annotations stay addressable for audit reads but
// drop out of standard listings.
type Annotation struct {
	id        string
	target    Target
	author    string
	category  Category
	content   string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewAnnotation creates an annotation with a generated id
func NewAnnotation(target Target, author string, category Category, content string) (*Annotation, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(author) == "" {
		return nil, pkgerrors.NewValidation("annotation author cannot be empty")
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, pkgerrors.NewValidation("annotation content cannot be empty")
	}

	now := time.Now()
	return &Annotation{
		id:        uuid.New().String(),
		target:    target,
		author:    author,
		category:  category,
		content:   content,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the annotation identifier
func (a *Annotation) ID() string {
	return a.id
}

// Target returns what the annotation is attached to
func (a *Annotation) Target() Target {
	return a.target
}

// Author returns who wrote the annotation
func (a *Annotation) Author() string {
	return a.author
}

// Category returns the annotation category
func (a *Annotation) Category() Category {
	return a.category
}

// Content returns the annotation text
func (a *Annotation) Content() string {
	return a.content
}

// CreatedAt returns the creation timestamp
func (a *Annotation) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns the last edit timestamp
func (a *Annotation) UpdatedAt() time.Time {
	return a.updatedAt
}

// Deleted reports whether the annotation has been soft-deleted
func (a *Annotation) Deleted() bool {
	return a.deletedAt != nil
}

// DeletedAt returns the deletion timestamp, or nil for live annotations
func (a *Annotation) DeletedAt() *time.Time {
	return a.deletedAt
}

func (a *Annotation) edit(category Category, content string) error {
	if _, err := ParseCategory(string(category)); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return pkgerrors.NewValidation("annotation content cannot be empty")
	}
	a.category = category
	a.content = content
	a.updatedAt = time.Now()
	return nil
}

func (a *Annotation) markDeleted() {
	now := time.Now()
	a.deletedAt = &now
}
