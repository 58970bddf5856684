package temporal

import (
	"time"

	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"

	"github.com/google/uuid"
)

// NodeRecord is the captured attribute state of one node. Positions are
// deliberately excluded: layout is ephemeral, lineage history is not.
type NodeRecord struct {
	Name     string
	Category entities.Category
	Metadata map[string]string
}

// EdgeRecord is the captured attribute state of one edge
type EdgeRecord struct {
	Source string
	Target string
	Kind   entities.Kind
	Weight float64
}

// Snapshot is an immutable timestamped capture of graph structure. Once
// created it is never mutated; the timeline owns the ordered sequence.
type Snapshot struct {
	id      string
	takenAt time.Time
	nodes   map[string]NodeRecord
	edges   map[string]EdgeRecord
}

// Capture snapshots the graph's current structure at the given timestamp
func Capture(g *aggregates.Graph, takenAt time.Time) *Snapshot {
	s := &Snapshot{
		id:      uuid.New().String(),
		takenAt: takenAt,
		nodes:   make(map[string]NodeRecord),
		edges:   make(map[string]EdgeRecord),
	}

	nodes, edges := g.Export()
	for _, node := range nodes {
		s.nodes[node.ID().String()] = NodeRecord{
			Name:     node.Name(),
			Category: node.Category(),
			Metadata: node.Metadata(),
		}
	}
	for _, edge := range edges {
		s.edges[edge.ID().String()] = EdgeRecord{
			Source: edge.Source().String(),
			Target: edge.Target().String(),
			Kind:   edge.Kind(),
			Weight: edge.Weight(),
		}
	}
	return s
}

// ID returns the snapshot identifier
func (s *Snapshot) ID() string {
	return s.id
}

// TakenAt returns the capture timestamp
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// NodeCount returns the number of captured nodes
func (s *Snapshot) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of captured edges
func (s *Snapshot) EdgeCount() int {
	return len(s.edges)
}

// Node looks up a captured node record
func (s *Snapshot) Node(id string) (NodeRecord, bool) {
	r, ok := s.nodes[id]
	return r, ok
}

// Edge looks up a captured edge record
func (s *Snapshot) Edge(id string) (EdgeRecord, bool) {
	r, ok := s.edges[id]
	return r, ok
}

func (r NodeRecord) equal(other NodeRecord) bool {
	if r.Name != other.Name || r.Category != other.Category {
		return false
	}
	if len(r.Metadata) != len(other.Metadata) {
		return false
	}
	for k, v := range r.Metadata {
		if ov, ok := other.Metadata[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (r EdgeRecord) equal(other EdgeRecord) bool {
	return r.Source == other.Source &&
		r.Target == other.Target &&
		r.Kind == other.Kind &&
		r.Weight == other.Weight
}
