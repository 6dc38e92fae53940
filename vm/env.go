package vm

// Globals is the process-wide global environment: a single name-to-value
// mapping shared by every invocation that loads or stores a global. It is
// created once, explicitly, and handed to each Engine; it outlives any one
// call.
//
// Globals provides no locking. Concurrent invocations sharing one
// environment must be serialized by the host.
type Globals struct {
	names map[string]Value
}

// NewGlobals creates an empty global environment.
func NewGlobals() *Globals {
	return &Globals{names: make(map[string]Value)}
}

// Get returns the value bound to name, with ok false when the name was
// never stored.
func (g *Globals) Get(name string) (Value, bool) {
	v, ok := g.names[name]
	return v, ok
}

// Set binds name to v, replacing any previous binding.
func (g *Globals) Set(name string, v Value) {
	g.names[name] = v
}

// Len returns the number of bound names.
func (g *Globals) Len() int {
	return len(g.names)
}
