package module

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BundleSuffix identifies bundle manifests in the scan directory. Files
// without the suffix are ignored during scanning.
const BundleSuffix = ".module.yml"

// Manifest is the fixed entry point of a bundle: it names the factories the
// bundle contributes instead of exposing them through runtime introspection.
type Manifest struct {
	// Bundle is a human-readable bundle name used in logs only.
	Bundle string `yaml:"bundle"`
	// Factories lists registered factory names, one module each.
	Factories []string `yaml:"factories"`
	// Params is passed through to every factory via the context.
	Params map[string]string `yaml:"params,omitempty"`
}

// IsBundle reports whether path looks like a bundle manifest.
func IsBundle(path string) bool {
	return strings.HasSuffix(path, BundleSuffix)
}

// LoadManifest reads and validates a bundle manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if len(m.Factories) == 0 {
		return nil, fmt.Errorf("bundle %s: no factories declared", path)
	}
	return &m, nil
}
