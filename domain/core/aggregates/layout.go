package aggregates

import (
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// All node kinematics (position, velocity, pinned flag) are read and written
// through the methods in this file so every access happens under the graph
// lock. The simulation engine works on value copies and commits a full tick
// in one write-locked batch; the renderer reads committed values only.

// NodeState is a value copy of one node's kinematics plus what the force
// model needs to know about it
type NodeState struct {
	ID         valueobjects.NodeID
	X, Y       float64
	VX, VY     float64
	Radius     float64
	Pinned     bool
	Positioned bool
}

// EdgeRef is a value copy of an edge's endpoints and weight
type EdgeRef struct {
	Source valueobjects.NodeID
	Target valueobjects.NodeID
	Weight float64
}

// LayoutUpdate carries one node's computed kinematics back into the store
type LayoutUpdate struct {
	ID     valueobjects.NodeID
	X, Y   float64
	VX, VY float64
}

// SimulationState captures node kinematics and edge topology in a single
// locked read, in insertion order
func (g *Graph) SimulationState() ([]NodeState, []EdgeRef) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]NodeState, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		node := g.nodes[id]
		nodes = append(nodes, NodeState{
			ID:         id,
			X:          node.Position().X(),
			Y:          node.Position().Y(),
			VX:         node.Velocity().DX(),
			VY:         node.Velocity().DY(),
			Radius:     node.Radius(),
			Pinned:     node.Pinned(),
			Positioned: node.HasPosition(),
		})
	}

	edges := make([]EdgeRef, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edge := g.edges[id]
		edges = append(edges, EdgeRef{
			Source: edge.Source(),
			Target: edge.Target(),
			Weight: edge.Weight(),
		})
	}
	return nodes, edges
}

// CommitLayout applies a tick's computed kinematics in one write-locked
// batch. Nodes removed since the tick started are skipped silently; pinned
// nodes only take the velocity reset, their position stays user-controlled.
func (g *Graph) CommitLayout(updates []LayoutUpdate) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, u := range updates {
		node, ok := g.nodes[u.ID]
		if !ok {
			continue
		}
		velocity, err := valueobjects.NewVelocity(u.VX, u.VY)
		if err != nil {
			continue
		}
		node.SetVelocity(velocity)
		if node.Pinned() {
			continue
		}
		position, err := valueobjects.NewPosition(u.X, u.Y)
		if err != nil {
			continue
		}
		node.SetPosition(position)
	}
}

// PinNode fixes a node in place (drag-start, or explicit fix)
func (g *Graph) PinNode(nodeID valueobjects.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return pkgerrors.NewUnknownTarget("node", nodeID.String())
	}
	node.Pin()
	return nil
}

// UnpinNode releases a node back to the simulation (drag-end)
func (g *Graph) UnpinNode(nodeID valueobjects.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return pkgerrors.NewUnknownTarget("node", nodeID.String())
	}
	node.Unpin()
	return nil
}

// OverridePosition places a node at user-dictated coordinates (drag-move)
func (g *Graph) OverridePosition(nodeID valueobjects.NodeID, x, y float64) error {
	position, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return pkgerrors.NewUnknownTarget("node", nodeID.String())
	}
	node.SetPosition(position)
	node.SetVelocity(valueobjects.Velocity{})
	return nil
}
