package valueobjects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeID(t *testing.T) {
	id := NewNodeID()

	assert.NotEmpty(t, id.String())
	assert.False(t, id.IsZero())

	// Minted ids are UUIDs
	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
}

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"catalog style id", "warehouse.orders_daily", false},
		{"uuid id", uuid.New().String(), false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseNodeID(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, id.IsZero())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, id.String())
			}
		})
	}
}

func TestNodeIDEquals(t *testing.T) {
	a, err := ParseNodeID("dw.orders")
	require.NoError(t, err)
	b, err := ParseNodeID("dw.orders")
	require.NoError(t, err)
	c, err := ParseNodeID("dw.customers")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestParseEdgeID(t *testing.T) {
	id, err := ParseEdgeID("orders->report")
	require.NoError(t, err)
	assert.Equal(t, "orders->report", id.String())

	_, err = ParseEdgeID("")
	assert.Error(t, err)
}

func TestNewEdgeID(t *testing.T) {
	a := NewEdgeID()
	b := NewEdgeID()

	assert.False(t, a.IsZero())
	assert.False(t, a.Equals(b))
}
