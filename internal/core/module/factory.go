package module

// Factory constructs a module against a container's context. Factories are
// invoked exactly once per module name between resets.
type Factory interface {
	New(ctx *Context) (Module, error)
}

// FactoryFunc adapts a plain constructor to the Factory interface.
type FactoryFunc func(ctx *Context) (Module, error)

func (f FactoryFunc) New(ctx *Context) (Module, error) { return f(ctx) }
