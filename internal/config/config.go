package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HenryLodge/viro-sub000/internal/graph"
	"github.com/HenryLodge/viro-sub000/internal/outbreak"
	"github.com/HenryLodge/viro-sub000/internal/routing"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Log      LogConfig        `yaml:"log"`
	Analyze  AnalyzeConfig    `yaml:"analyze"`
	Graph    *graph.Config    `yaml:"graph" validate:"required"`
	Outbreak *outbreak.Config `yaml:"outbreak" validate:"required"`
	Routing  routing.Weights  `yaml:"routing"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" validate:"gt=0"`
	// MaxPatients and MaxHospitals bound the per-request input size
	MaxPatients  int `yaml:"max_patients" validate:"gt=0"`
	MaxHospitals int `yaml:"max_hospitals" validate:"gt=0"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// AnalyzeConfig holds defaults for batch analysis runs
type AnalyzeConfig struct {
	Lookback time.Duration `yaml:"lookback" validate:"gt=0"`
	Limit    int           `yaml:"limit" validate:"gte=0"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 8 << 20,
			MaxPatients:  500,
			MaxHospitals: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Analyze: AnalyzeConfig{
			Lookback: 72 * time.Hour,
			Limit:    500,
		},
		Graph:    graph.DefaultConfig(),
		Outbreak: outbreak.DefaultConfig(),
		Routing:  routing.DefaultWeights(),
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// VIRO_* environment variables, in that order of precedence
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("VIRO_ADDR", c.Server.Addr)
	c.Server.MaxPatients = getEnvInt("VIRO_MAX_PATIENTS", c.Server.MaxPatients)
	c.Server.MaxHospitals = getEnvInt("VIRO_MAX_HOSPITALS", c.Server.MaxHospitals)

	c.Log.Level = strings.ToLower(getEnv("VIRO_LOG_LEVEL", c.Log.Level))
	c.Log.Development = getEnvBool("VIRO_LOG_DEV", c.Log.Development)

	c.Analyze.Lookback = getEnvDuration("VIRO_LOOKBACK", c.Analyze.Lookback)
	c.Analyze.Limit = getEnvInt("VIRO_LIMIT", c.Analyze.Limit)

	if c.Graph != nil {
		c.Graph.Workers = getEnvInt("VIRO_WORKERS", c.Graph.Workers)
		c.Graph.MinEdgeWeight = getEnvFloat("VIRO_MIN_EDGE_WEIGHT", c.Graph.MinEdgeWeight)
	}
	if c.Outbreak != nil {
		c.Outbreak.AlertThreshold = getEnvFloat("VIRO_ALERT_THRESHOLD", c.Outbreak.AlertThreshold)
	}
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Outbreak.ModerateSize > c.Outbreak.RapidSize {
		return fmt.Errorf("invalid configuration: outbreak.moderate_size (%d) exceeds outbreak.rapid_size (%d)",
			c.Outbreak.ModerateSize, c.Outbreak.RapidSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
