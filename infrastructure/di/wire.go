//go:build wireinject
// +build wireinject

package di

import (
	appservices "lineage-backend/application/services"
	"lineage-backend/domain/annotations"
	"lineage-backend/domain/core/aggregates"
	domainservices "lineage-backend/domain/services"
	"lineage-backend/domain/simulation"
	"lineage-backend/domain/temporal"
	"lineage-backend/infrastructure/config"
	"lineage-backend/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Graph         *aggregates.Graph
	Engine        *simulation.Engine
	Traversal     *domainservices.TraversalService
	Timeline      *temporal.Timeline
	Annotations   *annotations.Store
	Metrics       *observability.Metrics
	Service       *appservices.LineageService
	DynamicConfig *config.DynamicConfigManager
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideGraph,
	ProvideMetrics,
	ProvideEngine,
	ProvideTraversalService,
	ProvideTimeline,
	ProvideAnnotationStore,
	ProvideCatalogFeed,
	ProvideLineageService,
	ProvideDynamicConfigManager,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
