package config

import (
	"fmt"
	"sync"

	"lineage-backend/application/ports"
	"lineage-backend/domain/simulation"

	"go.uber.org/zap"
)

// EngineTuner is the part of the simulation engine dynamic config drives
type EngineTuner interface {
	Config() simulation.Config
	SetConfig(simulation.Config) error
}

// DynamicConfigManager bridges the file watcher and the running process:
// on every reload it folds the simulation overrides into the engine and
// fans the new config out to registered callbacks.
type DynamicConfigManager struct {
	staticConfig *Config
	watcher      *ConfigWatcher
	engine       EngineTuner

	mu        sync.RWMutex
	callbacks []func(*DynamicConfig)

	logger *zap.Logger
}

// NewDynamicConfigManager creates a manager. The watcher is only created
// when the static config names a dynamic config path; without one the
// manager is inert and GetLimits returns zero limits (unlimited).
func NewDynamicConfigManager(staticConfig *Config, engine EngineTuner, logger *zap.Logger) (*DynamicConfigManager, error) {
	manager := &DynamicConfigManager{
		staticConfig: staticConfig,
		engine:       engine,
		logger:       logger,
	}

	if staticConfig.DynamicConfigPath != "" {
		watcher, err := NewConfigWatcher(staticConfig.DynamicConfigPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create config watcher: %w", err)
		}
		watcher.OnChange(manager.handleConfigChange)
		manager.watcher = watcher
	}

	return manager, nil
}

// Start begins watching for configuration changes. Any simulation overrides
// present in the initial file are applied immediately.
func (m *DynamicConfigManager) Start() {
	if m.watcher == nil {
		return
	}
	m.applySimulationOverrides(m.watcher.GetCurrent())
	m.watcher.Start()
	m.logger.Info("dynamic configuration manager started")
}

// Stop stops the configuration manager
func (m *DynamicConfigManager) Stop() {
	if m.watcher == nil {
		return
	}
	m.watcher.Stop()
	m.logger.Info("dynamic configuration manager stopped")
}

// OnChange registers a callback for configuration changes
func (m *DynamicConfigManager) OnChange(callback func(*DynamicConfig)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// GetLimits returns the current ingest limits; all-zero means unlimited
func (m *DynamicConfigManager) GetLimits() Limits {
	if m.watcher == nil {
		return Limits{}
	}
	return m.watcher.GetLimits()
}

// IngestLimits adapts the current limits to the application port, making the
// manager the LimitProvider the lineage service consults on every operation
func (m *DynamicConfigManager) IngestLimits() ports.IngestLimits {
	l := m.GetLimits()
	return ports.IngestLimits{
		MaxNodes:           l.MaxNodes,
		MaxEdges:           l.MaxEdges,
		MaxTraversalDepth:  l.MaxTraversalDepth,
		MaxBatchSize:       l.MaxBatchSize,
		MaxAnnotationBytes: l.MaxAnnotationBytes,
	}
}

func (m *DynamicConfigManager) handleConfigChange(newConfig *DynamicConfig) {
	m.applySimulationOverrides(newConfig)

	m.mu.RLock()
	callbacks := make([]func(*DynamicConfig), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.RUnlock()

	for _, callback := range callbacks {
		callback(newConfig)
	}
}

func (m *DynamicConfigManager) applySimulationOverrides(dynamic *DynamicConfig) {
	if m.engine == nil {
		return
	}

	cfg := m.engine.Config()
	applySimulationSettings(&cfg, dynamic.Simulation)
	if err := m.engine.SetConfig(cfg); err != nil {
		m.logger.Error("rejected simulation override", zap.Error(err))
		return
	}
	m.logger.Info("simulation configuration applied",
		zap.Float64("link_distance", cfg.LinkDistance),
		zap.Float64("repulsion_strength", cfg.RepulsionStrength))
}
