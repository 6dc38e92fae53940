package vm

import "fmt"

// ---------------------------------------------------------------------------
// Procedure: the callable sum type
// ---------------------------------------------------------------------------

// Procedure is the callable unit referenced by call emission: either a
// *UserFunction with a finalized instruction sequence, or a *Native
// wrapping a host function with a fixed declared arity. The interface is
// sealed; no other kinds exist.
type Procedure interface {
	procedure()
}

// ---------------------------------------------------------------------------
// UserFunction
// ---------------------------------------------------------------------------

// UserFunction owns an immutable instruction sequence once construction
// completes. Construction is two-phase because a body may reference its own
// entry point before the whole sequence is known: NewFunction returns an
// empty shell that call emission may already point at, and Init installs
// the finalized sequence exactly once.
//
// A sealed UserFunction may be invoked concurrently by independent engines;
// each invocation owns its own stack, pc, locals, and frame stack.
type UserFunction struct {
	code   []Word
	sealed bool
}

// NewFunction creates an unsealed function shell.
func NewFunction() *UserFunction {
	return &UserFunction{}
}

func (f *UserFunction) procedure() {}

// Init installs the finalized instruction sequence. The sequence is copied,
// and the function is immutable afterwards. Panics with a
// *FunctionStateError when called twice.
func (f *UserFunction) Init(code []Word) {
	if f.sealed {
		panic(&FunctionStateError{Op: "instruction sequence already installed"})
	}
	f.code = make([]Word, len(code))
	copy(f.code, code)
	f.sealed = true
}

// Sealed reports whether the instruction sequence has been installed.
func (f *UserFunction) Sealed() bool {
	return f.sealed
}

// Code returns the finalized instruction sequence. Callers must not modify
// the returned slice.
func (f *UserFunction) Code() []Word {
	return f.code
}

// Call runs f on a fresh engine against env. All positional arguments are
// pushed onto the operand stack before the call; whatever remains on the
// stack when the run loop halts is returned, in stack order. The engine is
// discarded when the invocation returns.
func (f *UserFunction) Call(env *Globals, args ...Value) ([]Value, error) {
	return NewEngine(env).Invoke(f, args...)
}

// ---------------------------------------------------------------------------
// Native
// ---------------------------------------------------------------------------

// NativeFunc is an externally supplied function invokable by the machine.
// It receives exactly the native's declared arity and returns one result.
type NativeFunc func(args ...Value) Value

// ArityClass selects the specialized call opcode for a native. The classes
// differ only in how operands are popped; semantics are identical.
type ArityClass int

const (
	ArityNullary  ArityClass = iota // no arguments
	ArityBinary                     // exactly two arguments
	ArityVariadic                   // any other fixed count, read at run time
)

// Native wraps a host function tagged with a fixed declared arity.
type Native struct {
	name  string
	arity int
	fn    NativeFunc
}

// NewNative creates a native procedure. The arity is fixed here, once, and
// classified purely so call emission can select a specialized opcode.
func NewNative(name string, arity int, fn NativeFunc) *Native {
	if arity < 0 {
		panic(fmt.Sprintf("native %q: negative arity %d", name, arity))
	}
	if fn == nil {
		panic(fmt.Sprintf("native %q: nil function", name))
	}
	return &Native{name: name, arity: arity, fn: fn}
}

func (n *Native) procedure() {}

// Name returns the native's diagnostic name.
func (n *Native) Name() string {
	return n.name
}

// Arity returns the declared argument count.
func (n *Native) Arity() int {
	return n.arity
}

// Class returns the arity class used to select the call opcode.
func (n *Native) Class() ArityClass {
	switch n.arity {
	case 0:
		return ArityNullary
	case 2:
		return ArityBinary
	default:
		return ArityVariadic
	}
}

// Invoke calls the wrapped function directly.
func (n *Native) Invoke(args ...Value) Value {
	return n.fn(args...)
}
