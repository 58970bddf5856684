package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lineage-backend/application/ports"
	"lineage-backend/infrastructure/config"
	"lineage-backend/infrastructure/di"

	"go.uber.org/zap"
)

func main() {
	seedPath := flag.String("seed", "", "path to a JSON catalog batch ingested at startup")
	refresh := flag.Bool("refresh", false, "pull a batch from the configured catalog feed at startup")
	converge := flag.Bool("converge", false, "run the layout to convergence, print positions and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container.DynamicConfig.Start()
	defer container.DynamicConfig.Stop()

	if *seedPath != "" {
		if err := ingestSeedFile(ctx, container, *seedPath); err != nil {
			logger.Fatal("seed ingest failed", zap.Error(err))
		}
	}
	if *refresh {
		report, err := container.Service.RefreshFromCatalog(ctx)
		if err != nil {
			logger.Fatal("catalog refresh failed", zap.Error(err))
		}
		logger.Info("catalog refreshed",
			zap.Int("nodes", report.NodesAccepted),
			zap.Int("edges", report.EdgesAccepted),
			zap.Int("rejected", len(report.Rejections)))
	}

	if *converge {
		ticks := container.Engine.RunToConvergence(ctx)
		logger.Info("layout converged", zap.Int("ticks", ticks))
		printLayouts(container)
		return
	}

	if err := container.Engine.Start(ctx); err != nil {
		logger.Fatal("failed to start simulation", zap.Error(err))
	}
	logger.Info("lineage engine running",
		zap.Int("nodes", container.Graph.NodeCount()),
		zap.Int("edges", container.Graph.EdgeCount()))

	<-ctx.Done()
	logger.Info("shutting down")
	container.Engine.Stop()
}

// ingestSeedFile loads a JSON catalog batch from disk and ingests it
func ingestSeedFile(ctx context.Context, container *di.Container, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var batch ports.CatalogBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	report, err := container.Service.IngestAssets(ctx, batch)
	if err != nil {
		return err
	}
	for _, rejection := range report.Rejections {
		container.Logger.Warn("seed payload rejected",
			zap.String("kind", rejection.Kind),
			zap.String("id", rejection.ID),
			zap.String("reason", rejection.Reason))
	}
	container.Logger.Info("seed ingested",
		zap.Int("nodes", report.NodesAccepted),
		zap.Int("edges", report.EdgesAccepted))
	return nil
}

// printLayouts writes the committed node positions to stdout as JSON
func printLayouts(container *di.Container) {
	type position struct {
		ID     string  `json:"id"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius float64 `json:"radius"`
		Pinned bool    `json:"pinned"`
	}

	layouts := container.Service.Layouts()
	out := make([]position, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, position{
			ID: l.ID.String(), X: l.X, Y: l.Y, Radius: l.Radius, Pinned: l.Pinned,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		container.Logger.Error("failed to encode layouts", zap.Error(err))
	}
}
