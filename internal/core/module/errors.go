package module

import "errors"

var (
	// ErrBundleFormat is returned when an install source is not a bundle
	// manifest.
	ErrBundleFormat = errors.New("module: source is not a module bundle")
	// ErrBundleLoad wraps per-bundle failures during scanning.
	ErrBundleLoad = errors.New("module: bundle load failed")
	// ErrFactoryNotRegistered is returned when a manifest names a factory
	// that no bundle has registered.
	ErrFactoryNotRegistered = errors.New("module: factory not registered")
	// ErrModuleNotFound is returned when resolving an unknown module name.
	ErrModuleNotFound = errors.New("module: module not found")
	// ErrExportsNotFound is returned when a typed export lookup finds no
	// provider. Consumers must treat it as fatal.
	ErrExportsNotFound = errors.New("module: exports not found")
)
