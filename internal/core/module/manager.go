package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

// Manager discovers bundles in a scan directory, instantiates one module per
// declared factory, and caches instances by module name. Scanning is
// best-effort: a bundle that fails to load is skipped and logged, never
// fatal to the scan.
//
// Duplicate module names follow last-wins: the bundle processed later
// overwrites the earlier cache entry. Bundles are processed in lexical file
// name order, so the outcome is deterministic for a given directory.
type Manager struct {
	mu      sync.Mutex
	dir     string
	ctx     *Context
	log     log.Log
	modules map[string]Module
	order   []string
	scanned bool
}

func NewManager(dir string, ctx *Context, logger log.Log) *Manager {
	return &Manager{
		dir:     dir,
		ctx:     ctx,
		log:     logger,
		modules: map[string]Module{},
	}
}

// ReloadInstalled drops all cached modules and rescans the bundle directory.
func (m *Manager) ReloadInstalled() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return m.scanLocked()
}

// ResolveModule returns the cached module registered under name. The first
// resolution after a reset triggers a rescan.
func (m *Manager) ResolveModule(name string) (Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScannedLocked(); err != nil {
		return nil, err
	}
	mod, ok := m.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return mod, nil
}

// ResolveAllModules returns every cached module in registration order.
func (m *Manager) ResolveAllModules() ([]Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScannedLocked(); err != nil {
		return nil, err
	}
	out := make([]Module, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.modules[name])
	}
	return out, nil
}

// AvailableModules returns the sorted names of all cached modules.
func (m *Manager) AvailableModules() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScannedLocked(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// InstallBundle validates the source manifest, copies it into the scan
// directory (overwriting a same-named file), then resets and rescans. The
// source is rejected before any filesystem change when it does not exist or
// is not bundle-formatted.
func (m *Manager) InstallBundle(sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("module: install source %s: %w", sourcePath, err)
	}
	if !info.Mode().IsRegular() || !IsBundle(sourcePath) {
		return fmt.Errorf("%w: %s", ErrBundleFormat, sourcePath)
	}
	if _, err := LoadManifest(sourcePath); err != nil {
		return fmt.Errorf("%w: %v", ErrBundleFormat, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("module: create bundle dir: %w", err)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("module: read install source: %w", err)
	}
	dst := filepath.Join(m.dir, filepath.Base(sourcePath))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("module: write bundle: %w", err)
	}
	m.log.Info("bundle installed", log.String("path", dst))

	m.resetLocked()
	return m.scanLocked()
}

// InstallFactory registers a module directly from the given factory,
// bypassing disk. An existing entry under the same name is overwritten.
func (m *Manager) InstallFactory(factory Factory) (Module, error) {
	mod, err := factory.New(m.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleLoad, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerLocked(mod)
	m.scanned = true
	return mod, nil
}

// Uninstall drops a cached module by name. The bundle file, if any, stays on
// disk and will re-register the module at the next reload.
func (m *Manager) Uninstall(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[name]; !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	delete(m.modules, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset clears the module cache. The next resolution rescans lazily.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()
}

func (m *Manager) resetLocked() {
	m.modules = map[string]Module{}
	m.order = nil
	m.scanned = false
	m.ctx.ClearExports()
}

func (m *Manager) ensureScannedLocked() error {
	if m.scanned {
		return nil
	}
	return m.scanLocked()
}

func (m *Manager) scanLocked() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("module: create bundle dir: %w", err)
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("module: scan bundle dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsBundle(entry.Name()) {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := m.loadBundleLocked(path); err != nil {
			m.log.Warn("bundle skipped",
				log.String("path", path),
				log.Err(errors.Join(ErrBundleLoad, err)),
			)
		}
	}
	m.scanned = true
	return nil
}

// loadBundleLocked constructs every module a bundle declares before
// registering any of them, so a half-loaded bundle never lands in the cache.
func (m *Manager) loadBundleLocked(path string) error {
	manifest, err := LoadManifest(path)
	if err != nil {
		return err
	}

	m.ctx.Params = manifest.Params
	defer func() { m.ctx.Params = nil }()

	mods := make([]Module, 0, len(manifest.Factories))
	for _, factoryName := range manifest.Factories {
		factory, ok := LookupFactory(factoryName)
		if !ok {
			return fmt.Errorf("%w: %s", ErrFactoryNotRegistered, factoryName)
		}
		mod, err := factory.New(m.ctx)
		if err != nil {
			return fmt.Errorf("factory %s: %w", factoryName, err)
		}
		mods = append(mods, mod)
	}
	for _, mod := range mods {
		m.registerLocked(mod)
	}
	m.log.Debug("bundle loaded",
		log.String("path", path),
		log.Int("modules", len(mods)),
	)
	return nil
}

func (m *Manager) registerLocked(mod Module) {
	name := mod.Name()
	if _, exists := m.modules[name]; exists {
		m.log.Warn("duplicate module name, last registration wins",
			log.String("module", name))
	} else {
		m.order = append(m.order, name)
	}
	m.modules[name] = mod
}
