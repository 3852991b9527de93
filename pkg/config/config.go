// Package config handles loading and managing Choquet DEA configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// Config is the top-level configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// EngineConfig controls computation behavior.
type EngineConfig struct {
	ParallelThreshold      int     `yaml:"parallel_threshold"`
	MaxWorkers             int     `yaml:"max_workers"`
	ShapleyTolerance       float64 `yaml:"shapley_tolerance"`
	EstimateInteractions   bool    `yaml:"estimate_interactions"`
	EffectivenessIndicator string  `yaml:"effectiveness_indicator"`
	Objective              float64 `yaml:"objective"` // organizational efficiency target, 0 disables
}

// StorageConfig selects where computed results are kept.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // local, s3, gcs
	Dir      string `yaml:"dir"`     // local backend root; defaults to ResultsDir
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // S3-compatible endpoint override
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port"`
	APIKey    string  `yaml:"api_key"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `yaml:"burst"`
	CacheSize int     `yaml:"cache_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			ParallelThreshold: engine.DefaultParallelThreshold,
			ShapleyTolerance:  engine.DefaultShapleyTolerance,
		},
		Storage: StorageConfig{
			Backend: "local",
		},
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 20,
			Burst:     40,
			CacheSize: 64,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Options converts the engine section into engine options.
func (c EngineConfig) Options() []engine.Option {
	opts := []engine.Option{
		engine.WithParallelism(c.ParallelThreshold, c.MaxWorkers),
		engine.WithShapleyTolerance(c.ShapleyTolerance),
	}
	if c.EstimateInteractions {
		opts = append(opts, engine.WithEstimatedInteractions())
	}
	if c.EffectivenessIndicator != "" {
		opts = append(opts, engine.WithEffectivenessIndicator(c.EffectivenessIndicator))
	}
	if c.Objective != 0 {
		opts = append(opts, engine.WithObjective(c.Objective))
	}
	return opts
}

// FindConfigFile looks for .choquet/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".choquet", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the cache directory for a given project path.
// Uses ~/.cache/choquet/<project-slug>/ to keep results out of the project.
func CacheDir(projectPath string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "choquet", projectSlug(projectPath))
}

// ResultsDir returns the local results storage directory for a project.
func ResultsDir(projectPath string) string {
	return filepath.Join(CacheDir(projectPath), "results")
}

// projectSlug creates a filesystem-safe identifier from a project path
// using its last two components (e.g. "hr_reviews" from "/srv/hr/reviews").
func projectSlug(projectPath string) string {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}
