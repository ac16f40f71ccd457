package module

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a factory available to bundle manifests under the given
// name. Module packages call it from init, the way database drivers register
// themselves. Registering the same name again replaces the previous factory.
func Register(name string, factory Factory) {
	if name == "" {
		panic("module: Register with empty name")
	}
	if factory == nil {
		panic("module: Register with nil factory")
	}
	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
}

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// RegisteredFactories returns the sorted names of all registered factories.
func RegisteredFactories() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
