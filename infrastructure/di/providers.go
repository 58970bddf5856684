package di

import (
	"lineage-backend/application/ports"
	appservices "lineage-backend/application/services"
	"lineage-backend/domain/annotations"
	"lineage-backend/domain/core/aggregates"
	domainservices "lineage-backend/domain/services"
	"lineage-backend/domain/simulation"
	"lineage-backend/domain/temporal"
	"lineage-backend/infrastructure/catalog"
	"lineage-backend/infrastructure/config"
	"lineage-backend/pkg/observability"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger builds the process logger from the configured level and
// environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideGraph creates the empty graph aggregate
func ProvideGraph() *aggregates.Graph {
	return aggregates.NewGraph()
}

// ProvideMetrics registers the metric set on the default registry when
// metrics are enabled; otherwise a nil (no-op) instance is injected
func ProvideMetrics(cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
}

// ProvideEngine creates the layout engine from the configured force settings
func ProvideEngine(cfg *config.Config, graph *aggregates.Graph, logger *zap.Logger, metrics *observability.Metrics) (*simulation.Engine, error) {
	return simulation.NewEngine(graph, cfg.EngineConfig(), logger, metrics)
}

// ProvideTraversalService creates the traversal service with the default
// risk policy
func ProvideTraversalService() *domainservices.TraversalService {
	return domainservices.NewTraversalService(nil)
}

// ProvideTimeline creates the snapshot timeline
func ProvideTimeline() *temporal.Timeline {
	return temporal.NewTimeline()
}

// ProvideAnnotationStore creates the annotation store bound to the graph
// for orphan detection
func ProvideAnnotationStore(graph *aggregates.Graph) *annotations.Store {
	return annotations.NewStore(graph)
}

// ProvideCatalogFeed builds the HTTP catalog feed behind a circuit breaker.
// Without a configured URL no feed is wired and refresh operations fail
// with a clean validation error.
func ProvideCatalogFeed(cfg *config.Config, logger *zap.Logger) (ports.CatalogFeed, error) {
	if cfg.CatalogFeedURL == "" {
		return nil, nil
	}

	breakerCfg := catalog.DefaultBreakerConfig("catalog-feed")
	if cfg.CatalogFeedTimeout > 0 {
		breakerCfg.FetchTimeout = cfg.CatalogFeedTimeout
	}
	return catalog.NewFeedAdapter(catalog.NewHTTPFetch(cfg.CatalogFeedURL, nil), breakerCfg, logger)
}

// ProvideLineageService wires the application façade. The dynamic config
// manager doubles as the ingest limit provider.
func ProvideLineageService(
	graph *aggregates.Graph,
	engine *simulation.Engine,
	traversal *domainservices.TraversalService,
	timeline *temporal.Timeline,
	notes *annotations.Store,
	feed ports.CatalogFeed,
	limits *config.DynamicConfigManager,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*appservices.LineageService, error) {
	return appservices.NewLineageService(graph, engine, traversal, timeline, notes, feed, limits, logger, metrics)
}

// ProvideDynamicConfigManager wires hot-reload of simulation tuning
func ProvideDynamicConfigManager(cfg *config.Config, engine *simulation.Engine, logger *zap.Logger) (*config.DynamicConfigManager, error) {
	return config.NewDynamicConfigManager(cfg, engine, logger)
}
