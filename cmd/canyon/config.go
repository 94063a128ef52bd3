package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/parker-boom/polycanyon"
)

// config is the optional YAML config file for the CLI.
type config struct {
	DataDir  string `yaml:"data_dir"`
	CacheDir string `yaml:"cache_dir"`
	DB       string `yaml:"db"`

	// Zone overrides the built-in safe zone. All four bounds must be set.
	Zone *zoneConfig `yaml:"zone"`

	VisitRadiusM float64 `yaml:"visit_radius_m"`
	MaxAccuracyM float64 `yaml:"max_accuracy_m"`
}

type zoneConfig struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// loadConfig reads the file named by --config. A missing --config flag means
// defaults; a named file that does not exist is an error.
func loadConfig() (*config, error) {
	cfg := &config{}
	if flagConfig == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", flagConfig, err)
	}
	if cfg.Zone != nil {
		if cfg.Zone.MinLat >= cfg.Zone.MaxLat || cfg.Zone.MinLng >= cfg.Zone.MaxLng {
			return nil, fmt.Errorf("config %s: zone bounds are inverted or empty", flagConfig)
		}
	}
	return cfg, nil
}

func (c *config) safeZone() *polycanyon.SafeZone {
	if c.Zone == nil {
		return nil
	}
	return &polycanyon.SafeZone{
		MinLat: c.Zone.MinLat,
		MaxLat: c.Zone.MaxLat,
		MinLng: c.Zone.MinLng,
		MaxLng: c.Zone.MaxLng,
	}
}
