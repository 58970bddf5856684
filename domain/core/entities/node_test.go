package entities

import (
	"testing"

	"lineage-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNodeID(t *testing.T, raw string) valueobjects.NodeID {
	t.Helper()
	id, err := valueobjects.ParseNodeID(raw)
	require.NoError(t, err)
	return id
}

func TestNewNode(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		nodeName string
		category Category
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid table node",
			id:       "dw.orders",
			nodeName: "Orders",
			category: CategoryTable,
		},
		{
			name:     "valid report node",
			id:       "bi.revenue",
			nodeName: "Revenue Report",
			category: CategoryReport,
		},
		{
			name:     "unknown category",
			id:       "dw.orders",
			nodeName: "Orders",
			category: Category("spreadsheet"),
			wantErr:  true,
			errMsg:   "unknown node category",
		},
		{
			name:     "empty name",
			id:       "dw.orders",
			nodeName: "",
			category: CategoryTable,
			wantErr:  true,
			errMsg:   "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id valueobjects.NodeID
			if tt.id != "" {
				id = testNodeID(t, tt.id)
			}

			node, err := NewNode(id, tt.nodeName, tt.category, map[string]string{"owner": "data-eng"})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				assert.Nil(t, node)
			} else {
				require.NoError(t, err)
				require.NotNil(t, node)
				assert.Equal(t, tt.id, node.ID().String())
				assert.Equal(t, tt.category, node.Category())
				assert.False(t, node.HasPosition())
				assert.False(t, node.Pinned())

				owner, ok := node.MetadataValue("owner")
				assert.True(t, ok)
				assert.Equal(t, "data-eng", owner)
			}
		})
	}
}

func TestNodeMetadataIsCopied(t *testing.T) {
	md := map[string]string{"owner": "data-eng"}
	node, err := NewNode(testNodeID(t, "dw.orders"), "Orders", CategoryTable, md)
	require.NoError(t, err)

	md["owner"] = "someone-else"
	owner, _ := node.MetadataValue("owner")
	assert.Equal(t, "data-eng", owner)

	out := node.Metadata()
	out["owner"] = "mutated"
	owner, _ = node.MetadataValue("owner")
	assert.Equal(t, "data-eng", owner)
}

func TestNodeRadius(t *testing.T) {
	node, err := NewNode(testNodeID(t, "dw.orders"), "Orders", CategoryTable, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultNodeRadius, node.Radius())

	require.NoError(t, node.SetRadius(14))
	assert.Equal(t, 14.0, node.Radius())

	assert.Error(t, node.SetRadius(-1))
}

func TestNodePinning(t *testing.T) {
	node, err := NewNode(testNodeID(t, "dw.orders"), "Orders", CategoryTable, nil)
	require.NoError(t, err)

	v, err := valueobjects.NewVelocity(2, 3)
	require.NoError(t, err)
	node.SetVelocity(v)

	node.Pin()
	assert.True(t, node.Pinned())
	assert.Zero(t, node.Velocity().Magnitude())

	node.Unpin()
	assert.False(t, node.Pinned())
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"direct", "derived", "aggregated", "reference"} {
		_, err := ParseKind(raw)
		assert.NoError(t, err, raw)
	}

	_, err := ParseKind("causes")
	assert.Error(t, err)
}

func TestNewEdge(t *testing.T) {
	src := testNodeID(t, "dw.orders")
	dst := testNodeID(t, "bi.revenue")

	t.Run("zero weight defaults to one", func(t *testing.T) {
		edge, err := NewEdge(valueobjects.EdgeID{}, src, dst, KindDerived, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, edge.Weight())
		assert.False(t, edge.ID().IsZero()) // minted when unset
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		_, err := NewEdge(valueobjects.EdgeID{}, src, dst, KindDerived, -2)
		assert.Error(t, err)
	})

	t.Run("missing endpoint rejected", func(t *testing.T) {
		_, err := NewEdge(valueobjects.EdgeID{}, src, valueobjects.NodeID{}, KindDirect, 1)
		assert.Error(t, err)
	})

	t.Run("touches", func(t *testing.T) {
		edge, err := NewEdge(valueobjects.EdgeID{}, src, dst, KindDirect, 1)
		require.NoError(t, err)
		assert.True(t, edge.Touches(src))
		assert.True(t, edge.Touches(dst))
		assert.False(t, edge.Touches(testNodeID(t, "dw.customers")))
	})
}
