package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"lineage-backend/application/ports"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBreakerConfig() BreakerConfig {
	cfg := DefaultBreakerConfig("test-feed")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.6
	cfg.FetchTimeout = 0
	return cfg
}

func TestNewFeedAdapterRequiresFetch(t *testing.T) {
	_, err := NewFeedAdapter(nil, testBreakerConfig(), zap.NewNop())
	assert.Error(t, err)
}

func TestFeedAdapterPassesBatchesThrough(t *testing.T) {
	want := ports.CatalogBatch{
		Nodes: []ports.NodePayload{{ID: "orders", Name: "orders", Category: "table"}},
	}
	adapter, err := NewFeedAdapter(func(ctx context.Context) (ports.CatalogBatch, error) {
		return want, nil
	}, testBreakerConfig(), zap.NewNop())
	require.NoError(t, err)

	got, err := adapter.FetchAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, gobreaker.StateClosed, adapter.State())
}

func TestFeedAdapterWrapsFetchErrors(t *testing.T) {
	adapter, err := NewFeedAdapter(func(ctx context.Context) (ports.CatalogBatch, error) {
		return ports.CatalogBatch{}, errors.New("connection refused")
	}, testBreakerConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = adapter.FetchAssets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog fetch failed")
}

func TestFeedAdapterTripsAfterRepeatedFailures(t *testing.T) {
	adapter, err := NewFeedAdapter(func(ctx context.Context) (ports.CatalogBatch, error) {
		return ports.CatalogBatch{}, errors.New("boom")
	}, testBreakerConfig(), zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _ = adapter.FetchAssets(context.Background())
	}
	assert.Equal(t, gobreaker.StateOpen, adapter.State())

	// Open breaker short-circuits without invoking the fetch
	_, err = adapter.FetchAssets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog feed unavailable")
}

func TestFeedAdapterHonorsFetchTimeout(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.FetchTimeout = 20 * time.Millisecond

	adapter, err := NewFeedAdapter(func(ctx context.Context) (ports.CatalogBatch, error) {
		select {
		case <-ctx.Done():
			return ports.CatalogBatch{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return ports.CatalogBatch{}, nil
		}
	}, cfg, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	_, err = adapter.FetchAssets(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
