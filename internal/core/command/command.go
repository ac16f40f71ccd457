package command

// Command is a named operation a module registers against the container.
// Commands are submitted by external callers, queued, and executed on the
// tick thread.
type Command interface {
	// Name identifies the command for enqueue-by-name resolution.
	Name() string
	// Schema describes the expected payload parameters (name -> type name).
	// Consumed by discovery surfaces; the queue itself never validates it.
	Schema() map[string]string
	// Execute runs the command against its module's state.
	Execute(payload Payload) error
}

// Payload is the opaque key/value bag accompanying a command invocation.
// A nil Payload is valid and reads as empty.
type Payload map[string]any

// Int64 reads a numeric parameter. JSON-decoded payloads carry float64, so
// both integer and float encodings are accepted.
func (p Payload) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}

// Float32 reads a scalar parameter in store value precision.
func (p Payload) Float32(key string) (float32, bool) {
	switch v := p[key].(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int64:
		return float32(v), true
	case int:
		return float32(v), true
	default:
		return 0, false
	}
}

// String reads a string parameter.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

var _ Command = (*Func)(nil)

// Func adapts a plain function into a Command. Modules build most of their
// commands this way.
type Func struct {
	name   string
	schema map[string]string
	fn     func(Payload) error
}

func NewFunc(name string, schema map[string]string, fn func(Payload) error) *Func {
	return &Func{name: name, schema: schema, fn: fn}
}

func (c *Func) Name() string { return c.name }

func (c *Func) Schema() map[string]string { return c.schema }

func (c *Func) Execute(payload Payload) error { return c.fn(payload) }
