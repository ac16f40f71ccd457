package container

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tempestsim/tempest/internal/core/store"
)

// Config describes one container: store capacity, bundle location, and tick
// pacing. Capacity is fixed for the container's lifetime.
type Config struct {
	Name            string        `yaml:"name"`
	MaxEntities     int           `yaml:"max_entities"`
	MaxComponents   int           `yaml:"max_components"`
	BundleDir       string        `yaml:"bundle_dir"`
	CommandsPerTick int           `yaml:"commands_per_tick"`
	TickInterval    time.Duration `yaml:"tick_interval"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "default",
		MaxEntities:     100000,
		MaxComponents:   100,
		BundleDir:       "bundles",
		CommandsPerTick: 256,
		TickInterval:    50 * time.Millisecond,
	}
}

// LoadConfig reads a container config from a YAML file. Missing fields keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("container: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("container: parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty container name", store.ErrInvalidConfig)
	}
	if err := c.storeConfig().Validate(); err != nil {
		return err
	}
	if c.CommandsPerTick <= 0 {
		return fmt.Errorf("%w: commands_per_tick must be positive", store.ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", store.ErrInvalidConfig)
	}
	return nil
}

func (c Config) storeConfig() store.Config {
	return store.Config{MaxEntities: c.MaxEntities, MaxComponents: c.MaxComponents}
}
