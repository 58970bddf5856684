package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"lineage-backend/domain/simulation"

	"gopkg.in/yaml.v3"
)

// SimulationSettings is the tunable subset of the layout engine exposed to
// operators. Zero values fall back to the engine defaults.
type SimulationSettings struct {
	LinkDistance      float64 `yaml:"linkDistance"`
	LinkStiffness     float64 `yaml:"linkStiffness"`
	RepulsionStrength float64 `yaml:"repulsionStrength"`
	CenterStrength    float64 `yaml:"centerStrength"`
	CollisionPadding  float64 `yaml:"collisionPadding"`
	Theta             float64 `yaml:"theta"`
	VelocityDecay     float64 `yaml:"velocityDecay"`
	TickIntervalMs    int     `yaml:"tickIntervalMs"`
	MaxTicks          int     `yaml:"maxTicks"`
	Seed              int64   `yaml:"seed"`
}

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"logLevel"`

	// Catalog feed
	CatalogFeedURL     string        `yaml:"catalogFeedUrl"`
	CatalogFeedTimeout time.Duration `yaml:"catalogFeedTimeout"`

	// Feature flags
	EnableMetrics    bool   `yaml:"enableMetrics"`
	EnableTracing    bool   `yaml:"enableTracing"`
	MetricsNamespace string `yaml:"metricsNamespace"`

	// Dynamic configuration file (JSON, hot-reloaded when set)
	DynamicConfigPath string `yaml:"dynamicConfigPath"`

	// Layout engine tuning
	Simulation SimulationSettings `yaml:"simulation"`
}

// LoadConfig loads configuration from environment variables, then overlays
// the YAML file named by CONFIG_FILE when one is set. File values win over
// environment values so a mounted config is authoritative.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CatalogFeedURL:     getEnv("CATALOG_FEED_URL", ""),
		CatalogFeedTimeout: time.Duration(getEnvInt("CATALOG_FEED_TIMEOUT_MS", 5000)) * time.Millisecond,
		EnableMetrics:      getEnvBool("ENABLE_METRICS", true),
		EnableTracing:      getEnvBool("ENABLE_TRACING", false),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "lineage"),
		DynamicConfigPath:  getEnv("DYNAMIC_CONFIG_PATH", ""),
		Simulation: SimulationSettings{
			LinkDistance:      getEnvFloat("SIM_LINK_DISTANCE", 0),
			LinkStiffness:     getEnvFloat("SIM_LINK_STIFFNESS", 0),
			RepulsionStrength: getEnvFloat("SIM_REPULSION_STRENGTH", 0),
			CenterStrength:    getEnvFloat("SIM_CENTER_STRENGTH", 0),
			CollisionPadding:  getEnvFloat("SIM_COLLISION_PADDING", 0),
			Theta:             getEnvFloat("SIM_THETA", 0),
			VelocityDecay:     getEnvFloat("SIM_VELOCITY_DECAY", 0),
			TickIntervalMs:    getEnvInt("SIM_TICK_INTERVAL_MS", 0),
			MaxTicks:          getEnvInt("SIM_MAX_TICKS", 0),
			Seed:              int64(getEnvInt("SIM_SEED", 0)),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// overlayFile merges a YAML file over the current values
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	if c.CatalogFeedTimeout < 0 {
		return fmt.Errorf("catalog feed timeout cannot be negative")
	}
	if c.IsProduction() && c.CatalogFeedURL == "" {
		return fmt.Errorf("CATALOG_FEED_URL is required in production")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EngineConfig materializes the layout engine configuration: defaults first,
// then every setting the operator actually supplied.
func (c *Config) EngineConfig() simulation.Config {
	cfg := simulation.DefaultConfig()
	applySimulationSettings(&cfg, c.Simulation)
	return cfg
}

func applySimulationSettings(cfg *simulation.Config, s SimulationSettings) {
	if s.LinkDistance > 0 {
		cfg.LinkDistance = s.LinkDistance
	}
	if s.LinkStiffness > 0 {
		cfg.LinkStiffness = s.LinkStiffness
	}
	if s.RepulsionStrength > 0 {
		cfg.RepulsionStrength = s.RepulsionStrength
	}
	if s.CenterStrength > 0 {
		cfg.CenterStrength = s.CenterStrength
	}
	if s.CollisionPadding > 0 {
		cfg.CollisionPadding = s.CollisionPadding
	}
	if s.Theta > 0 {
		cfg.Theta = s.Theta
	}
	if s.VelocityDecay > 0 {
		cfg.VelocityDecay = s.VelocityDecay
	}
	if s.TickIntervalMs > 0 {
		cfg.TickInterval = time.Duration(s.TickIntervalMs) * time.Millisecond
	}
	if s.MaxTicks > 0 {
		cfg.MaxTicks = s.MaxTicks
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
