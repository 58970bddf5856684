package catalog

import (
	"context"
	"time"

	"lineage-backend/application/ports"
	pkgerrors "lineage-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// FetchFunc pulls one batch from the underlying catalog transport
type FetchFunc func(ctx context.Context) (ports.CatalogBatch, error)

// BreakerConfig holds circuit breaker tuning for the catalog feed
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// ReadyToTrip parameters
	FailureThreshold float64
	MinRequests      uint32
	// Per-fetch deadline; zero disables
	FetchTimeout time.Duration
}

// DefaultBreakerConfig returns a default configuration for the feed breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
		FetchTimeout:     5 * time.Second,
	}
}

// FeedAdapter implements ports.CatalogFeed over any fetch function, guarded
// by a circuit breaker so a failing catalog cannot stall refresh callers.
type FeedAdapter struct {
	fetch   FetchFunc
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// NewFeedAdapter wraps the fetch function with circuit breaking
func NewFeedAdapter(fetch FetchFunc, config BreakerConfig, logger *zap.Logger) (*FeedAdapter, error) {
	if fetch == nil {
		return nil, pkgerrors.NewValidation("fetch function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("catalog feed breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &FeedAdapter{
		fetch:   fetch,
		breaker: breaker,
		timeout: config.FetchTimeout,
		logger:  logger,
	}, nil
}

// FetchAssets pulls a batch through the breaker
func (a *FeedAdapter) FetchAssets(ctx context.Context) (ports.CatalogBatch, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result, err := a.breaker.Execute(func() (any, error) {
		return a.fetch(ctx)
	})
	if err != nil {
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			a.logger.Warn("catalog fetch rejected by breaker", zap.Error(err))
			return ports.CatalogBatch{}, pkgerrors.Wrap(err, "catalog feed unavailable")
		default:
			return ports.CatalogBatch{}, pkgerrors.Wrap(err, "catalog fetch failed")
		}
	}
	return result.(ports.CatalogBatch), nil
}

// State exposes the current breaker state for health reporting
func (a *FeedAdapter) State() gobreaker.State {
	return a.breaker.State()
}
