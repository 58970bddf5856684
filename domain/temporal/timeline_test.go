package temporal

import (
	"testing"
	"time"

	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func nodeID(t *testing.T, raw string) valueobjects.NodeID {
	t.Helper()
	id, err := valueobjects.ParseNodeID(raw)
	require.NoError(t, err)
	return id
}

func addNode(t *testing.T, g *aggregates.Graph, id, name string) {
	t.Helper()
	node, err := entities.NewNode(nodeID(t, id), name, entities.CategoryTable, nil)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(node))
}

func addEdge(t *testing.T, g *aggregates.Graph, id, source, target string) {
	t.Helper()
	eid, err := valueobjects.ParseEdgeID(id)
	require.NoError(t, err)
	edge, err := entities.NewEdge(eid, nodeID(t, source), nodeID(t, target), entities.KindDirect, 1)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(edge))
}

func TestCaptureRecordsStructure(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")
	addNode(t, g, "b", "orders_daily")
	addEdge(t, g, "e1", "a", "b")

	s := Capture(g, at(0))

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, at(0), s.TakenAt())
	assert.Equal(t, 2, s.NodeCount())
	assert.Equal(t, 1, s.EdgeCount())

	record, ok := s.Node("a")
	require.True(t, ok)
	assert.Equal(t, "orders", record.Name)
	assert.Equal(t, entities.CategoryTable, record.Category)

	edge, ok := s.Edge("e1")
	require.True(t, ok)
	assert.Equal(t, "a", edge.Source)
	assert.Equal(t, "b", edge.Target)
}

func TestTimelineRecordRejectsOutOfOrder(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(10))))

	err := tl.Record(Capture(g, at(10)))
	assert.True(t, pkgerrors.IsValidation(err))

	err = tl.Record(Capture(g, at(5)))
	assert.True(t, pkgerrors.IsValidation(err))

	assert.True(t, pkgerrors.IsValidation(tl.Record(nil)))
	assert.Equal(t, 1, tl.Len())
}

func TestTimelineAccessors(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	assert.Nil(t, tl.Latest())
	assert.Equal(t, 0, tl.Len())

	first := Capture(g, at(0))
	addNode(t, g, "b", "orders_daily")
	second := Capture(g, at(10))

	require.NoError(t, tl.Record(first))
	require.NoError(t, tl.Record(second))

	assert.Equal(t, 2, tl.Len())
	assert.Same(t, second, tl.Latest())

	got, err := tl.At(at(0))
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = tl.At(at(5))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTimelineDiffSameTimestampIsEmpty(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))

	d, err := tl.Diff(at(0), at(0))
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestTimelineDiffUnknownTimestamp(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))

	_, err := tl.Diff(at(0), at(99))
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = tl.Diff(at(99), at(0))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTimelineDiffRejectsReversedInterval(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))
	require.NoError(t, tl.Record(Capture(g, at(10))))

	_, err := tl.Diff(at(10), at(0))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTimelineDiffAdjacentSnapshots(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")
	addNode(t, g, "b", "orders_daily")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))

	addNode(t, g, "c", "orders_weekly")
	require.NoError(t, g.RemoveNode(nodeID(t, "b")))
	require.NoError(t, tl.Record(Capture(g, at(10))))

	d, err := tl.Diff(at(0), at(10))
	require.NoError(t, err)

	require.Len(t, d.Nodes, 2)
	assert.Equal(t, "b", d.Nodes[0].ID)
	assert.Equal(t, ChangeRemoved, d.Nodes[0].Type)
	assert.Equal(t, "c", d.Nodes[1].ID)
	assert.Equal(t, ChangeAdded, d.Nodes[1].Type)
}

func TestTimelineDiffComposition(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")
	addNode(t, g, "b", "orders_daily")
	addEdge(t, g, "e1", "a", "b")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))

	// Step 1: add c, remove b (cascading e1), rename a
	addNode(t, g, "c", "orders_weekly")
	require.NoError(t, g.RemoveNode(nodeID(t, "b")))
	renameNode(t, g, "a", "orders_v2")
	require.NoError(t, tl.Record(Capture(g, at(10))))

	// Step 2: remove c again, rename a again
	require.NoError(t, g.RemoveNode(nodeID(t, "c")))
	renameNode(t, g, "a", "orders_v3")
	require.NoError(t, tl.Record(Capture(g, at(20))))

	direct, err := tl.Diff(at(0), at(20))
	require.NoError(t, err)

	step1, err := tl.Diff(at(0), at(10))
	require.NoError(t, err)
	step2, err := tl.Diff(at(10), at(20))
	require.NoError(t, err)
	composed := composeDiffs([]Diff{step1, step2})

	assert.Equal(t, composed, direct)

	// c was added then removed inside the window: no net change
	for _, c := range direct.Nodes {
		assert.NotEqual(t, "c", c.ID)
	}

	// a's two renames collapse to one modification spanning the window
	require.Len(t, direct.Nodes, 2)
	assert.Equal(t, "a", direct.Nodes[0].ID)
	assert.Equal(t, ChangeModified, direct.Nodes[0].Type)
	assert.Equal(t, "orders", direct.Nodes[0].Before.Name)
	assert.Equal(t, "orders_v3", direct.Nodes[0].After.Name)

	assert.Equal(t, "b", direct.Nodes[1].ID)
	assert.Equal(t, ChangeRemoved, direct.Nodes[1].Type)

	require.Len(t, direct.Edges, 1)
	assert.Equal(t, "e1", direct.Edges[0].ID)
	assert.Equal(t, ChangeRemoved, direct.Edges[0].Type)
}

func TestTimelineDiffRoundTripCancelsOut(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	require.NoError(t, tl.Record(Capture(g, at(0))))

	renameNode(t, g, "a", "orders_tmp")
	require.NoError(t, tl.Record(Capture(g, at(10))))

	renameNode(t, g, "a", "orders")
	require.NoError(t, tl.Record(Capture(g, at(20))))

	d, err := tl.Diff(at(0), at(20))
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestPlaybackWindowAndRestart(t *testing.T) {
	g := aggregates.NewGraph()
	addNode(t, g, "a", "orders")

	tl := NewTimeline()
	for i := 0; i < 5; i++ {
		require.NoError(t, tl.Record(Capture(g, at(i*10))))
	}

	p := tl.Playback(at(10), at(30))
	assert.Equal(t, 3, p.Len())

	var seen []time.Time
	for {
		s, ok := p.Next()
		if !ok {
			break
		}
		seen = append(seen, s.TakenAt())
	}
	require.Len(t, seen, 3)
	assert.Equal(t, at(10), seen[0])
	assert.Equal(t, at(30), seen[2])

	// Exhausted iterator stays exhausted until restarted
	_, ok := p.Next()
	assert.False(t, ok)

	p.Restart()
	s, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, at(10), s.TakenAt())

	// Zero bounds leave the interval open
	full := tl.Playback(time.Time{}, time.Time{})
	assert.Equal(t, 5, full.Len())
}

func renameNode(t *testing.T, g *aggregates.Graph, id, name string) {
	t.Helper()
	node, err := g.GetNode(nodeID(t, id))
	require.NoError(t, err)
	g.WithWriteLock(func() {
		require.NoError(t, node.Rename(name))
	})
}
