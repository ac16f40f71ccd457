package container

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/store"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"empty name":         func(c *Config) { c.Name = "" },
		"zero entities":      func(c *Config) { c.MaxEntities = 0 },
		"zero components":    func(c *Config) { c.MaxComponents = 0 },
		"zero command batch": func(c *Config) { c.CommandsPerTick = 0 },
		"zero interval":      func(c *Config) { c.TickInterval = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), store.ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.yml")
	content := `
name: arena
max_entities: 5000
max_components: 64
bundle_dir: /var/lib/tempest/bundles
commands_per_tick: 128
tick_interval: 100ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "arena", cfg.Name)
	assert.Equal(t, 5000, cfg.MaxEntities)
	assert.Equal(t, 64, cfg.MaxComponents)
	assert.Equal(t, "/var/lib/tempest/bundles", cfg.BundleDir)
	assert.Equal(t, 128, cfg.CommandsPerTick)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: sparse\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sparse", cfg.Name)
	assert.Equal(t, DefaultConfig().MaxEntities, cfg.MaxEntities)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "ghost.yml"))
	assert.Error(t, err)
}
