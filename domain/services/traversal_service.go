package services

import (
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// AffectedNode is a node reached by a traversal, annotated with its hop
// distance from the root
type AffectedNode struct {
	ID       valueobjects.NodeID
	Category entities.Category
	Hops     int
}

// ImpactResult answers "what breaks if this asset changes"
type ImpactResult struct {
	Root      valueobjects.NodeID
	Direction aggregates.Direction
	MaxDepth  int
	Affected  []AffectedNode
	Risk      RiskLevel
}

// TraversalService runs read-only graph algorithms over an immutable graph
// view, so traversals never observe a mutation mid-run.
type TraversalService struct {
	risk RiskPolicy
}

// NewTraversalService creates a traversal service. A nil policy falls back to
// DefaultRiskPolicy.
func NewTraversalService(policy RiskPolicy) *TraversalService {
	if policy == nil {
		policy = DefaultRiskPolicy
	}
	return &TraversalService{risk: policy}
}

// ShortestPath finds the shortest path between two nodes with an unweighted
// BFS over the union of incoming and outgoing adjacency. Lineage exploration
// cares about connectivity regardless of declared direction, so expansion is
// deliberately undirected here while Impact stays directional.
//
// Returns the ordered node sequence, [source] when source equals target, and
// an empty sequence (no error) when the pair is disconnected. Among
// equal-length paths the one discovered first in adjacency insertion order
// wins.
func (s *TraversalService) ShortestPath(g *aggregates.Graph, source, target valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	view := g.View()

	if !view.HasNode(source) {
		return nil, pkgerrors.NewUnknownTarget("node", source.String())
	}
	if !view.HasNode(target) {
		return nil, pkgerrors.NewUnknownTarget("node", target.String())
	}

	if source.Equals(target) {
		return []valueobjects.NodeID{source}, nil
	}

	visited := map[valueobjects.NodeID]bool{source: true}
	parent := make(map[valueobjects.NodeID]valueobjects.NodeID)
	queue := []valueobjects.NodeID{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range view.Undirected(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			queue = append(queue, next)

			if next.Equals(target) {
				return reconstructPath(source, target, parent), nil
			}
		}
	}

	// Disconnected pair: empty result, not an error
	return []valueobjects.NodeID{}, nil
}

// Impact collects every node reachable from the root within maxDepth hops,
// following outgoing edges (downstream), incoming edges (upstream) or both.
// The result carries a risk level computed by the configured policy.
func (s *TraversalService) Impact(g *aggregates.Graph, root valueobjects.NodeID, direction aggregates.Direction, maxDepth int) (*ImpactResult, error) {
	if _, err := aggregates.ParseDirection(string(direction)); err != nil {
		return nil, err
	}
	if maxDepth < 0 {
		return nil, pkgerrors.NewValidation("max depth cannot be negative")
	}

	view := g.View()
	if !view.HasNode(root) {
		return nil, pkgerrors.NewUnknownTarget("node", root.String())
	}

	affected := collectWithinDepth(view, root, direction, maxDepth)
	return &ImpactResult{
		Root:      root,
		Direction: direction,
		MaxDepth:  maxDepth,
		Affected:  affected,
		Risk:      s.risk(affected),
	}, nil
}

// NeighborsWithin collects every node within radiusHops of the root,
// regardless of edge direction. Used for hover-highlight behavior.
func (s *TraversalService) NeighborsWithin(g *aggregates.Graph, root valueobjects.NodeID, radiusHops int) ([]AffectedNode, error) {
	if radiusHops < 0 {
		return nil, pkgerrors.NewValidation("radius cannot be negative")
	}

	view := g.View()
	if !view.HasNode(root) {
		return nil, pkgerrors.NewUnknownTarget("node", root.String())
	}

	return collectWithinDepth(view, root, aggregates.DirectionBoth, radiusHops), nil
}

// collectWithinDepth runs a depth-limited BFS. The root itself is excluded
// from the result; tolerates cycles by tracking visited nodes.
func collectWithinDepth(view *aggregates.View, root valueobjects.NodeID, direction aggregates.Direction, maxDepth int) []AffectedNode {
	expand := func(id valueobjects.NodeID) []valueobjects.NodeID {
		switch direction {
		case aggregates.DirectionOutgoing:
			return view.Outgoing(id)
		case aggregates.DirectionIncoming:
			return view.Incoming(id)
		default:
			return view.Undirected(id)
		}
	}

	depth := map[valueobjects.NodeID]int{root: 0}
	queue := []valueobjects.NodeID{root}
	affected := []AffectedNode{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		currentDepth := depth[current]

		if currentDepth >= maxDepth {
			continue
		}

		for _, next := range expand(current) {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = currentDepth + 1
			queue = append(queue, next)

			category, _ := view.Category(next)
			affected = append(affected, AffectedNode{
				ID:       next,
				Category: category,
				Hops:     currentDepth + 1,
			})
		}
	}

	return affected
}

func reconstructPath(source, target valueobjects.NodeID, parent map[valueobjects.NodeID]valueobjects.NodeID) []valueobjects.NodeID {
	path := []valueobjects.NodeID{}
	for n := target; !n.IsZero(); n = parent[n] {
		path = append([]valueobjects.NodeID{n}, path...)
		if n.Equals(source) {
			break
		}
	}
	return path
}
