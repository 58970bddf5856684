package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher watches the dynamic configuration file for changes
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *DynamicConfig
	mu       sync.RWMutex
	onChange []func(*DynamicConfig)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// DynamicConfig represents runtime-changeable configuration
type DynamicConfig struct {
	Limits     Limits             `json:"limits"`
	Simulation SimulationSettings `json:"simulation"`
	Metadata   ConfigMetadata     `json:"metadata"`
}

// Limits holds graph size limits enforced at ingest time
type Limits struct {
	MaxNodes           int `json:"maxNodes"`
	MaxEdges           int `json:"maxEdges"`
	MaxTraversalDepth  int `json:"maxTraversalDepth"`
	MaxBatchSize       int `json:"maxBatchSize"`
	MaxAnnotationBytes int `json:"maxAnnotationBytes"`
}

// ConfigMetadata holds metadata about the configuration
type ConfigMetadata struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// NewConfigWatcher creates a watcher over the given JSON file
func NewConfigWatcher(configPath string, logger *zap.Logger) (*ConfigWatcher, error) {
	current, err := loadDynamicConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("failed to watch config directory", zap.Error(err))
	}

	return &ConfigWatcher{
		path:    configPath,
		watcher: watcher,
		current: current,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *ConfigWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("configuration watcher stopped")
}

// OnChange registers a callback invoked after every successful reload
func (w *ConfigWatcher) OnChange(handler func(*DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the current configuration
func (w *ConfigWatcher) GetCurrent() *DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// GetLimits returns current limits
func (w *ConfigWatcher) GetLimits() Limits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Limits
}

// watchLoop debounces file events so editors that write in bursts trigger a
// single reload
func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					w.handleConfigChange()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *ConfigWatcher) handleConfigChange() {
	w.logger.Info("configuration file changed, reloading", zap.String("path", w.path))

	newConfig, err := loadDynamicConfig(w.path)
	if err != nil {
		w.logger.Error("failed to reload configuration", zap.Error(err))
		return
	}
	if err := validateDynamicConfig(newConfig); err != nil {
		w.logger.Error("invalid configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = newConfig
	handlers := make([]func(*DynamicConfig), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	w.logConfigChanges(old, newConfig)

	for _, handler := range handlers {
		go handler(newConfig)
	}

	w.logger.Info("configuration reloaded",
		zap.String("version", newConfig.Metadata.Version))
}

func validateDynamicConfig(config *DynamicConfig) error {
	if config.Limits.MaxNodes < 0 {
		return fmt.Errorf("maxNodes cannot be negative")
	}
	if config.Limits.MaxEdges < 0 {
		return fmt.Errorf("maxEdges cannot be negative")
	}
	if config.Limits.MaxTraversalDepth < 0 {
		return fmt.Errorf("maxTraversalDepth cannot be negative")
	}
	if config.Limits.MaxBatchSize < 0 {
		return fmt.Errorf("maxBatchSize cannot be negative")
	}
	if config.Simulation.Theta < 0 {
		return fmt.Errorf("theta cannot be negative")
	}
	if config.Simulation.VelocityDecay < 0 || config.Simulation.VelocityDecay > 1 {
		return fmt.Errorf("velocityDecay must be within [0, 1]")
	}
	return nil
}

func (w *ConfigWatcher) logConfigChanges(old, next *DynamicConfig) {
	var changes []string

	if old.Limits.MaxNodes != next.Limits.MaxNodes {
		changes = append(changes, fmt.Sprintf("MaxNodes: %d -> %d",
			old.Limits.MaxNodes, next.Limits.MaxNodes))
	}
	if old.Simulation.LinkDistance != next.Simulation.LinkDistance {
		changes = append(changes, fmt.Sprintf("LinkDistance: %v -> %v",
			old.Simulation.LinkDistance, next.Simulation.LinkDistance))
	}
	if old.Simulation.RepulsionStrength != next.Simulation.RepulsionStrength {
		changes = append(changes, fmt.Sprintf("RepulsionStrength: %v -> %v",
			old.Simulation.RepulsionStrength, next.Simulation.RepulsionStrength))
	}

	if len(changes) > 0 {
		w.logger.Info("configuration changes detected", zap.Strings("changes", changes))
	}
}

// loadDynamicConfig loads configuration from a JSON file
func loadDynamicConfig(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config DynamicConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if config.Metadata.Version == "" {
		config.Metadata.Version = "1.0.0"
	}
	config.Metadata.UpdatedAt = time.Now()
	return &config, nil
}
