package vm

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Engine: the interpreter
// ---------------------------------------------------------------------------

// frame is one saved activation on the dump: the caller's code reference,
// program counter, and local-variable map, restored in strict LIFO order.
type frame struct {
	code   []Word
	pc     int
	locals map[string]Value
}

// Engine executes one instruction sequence to completion. An engine is
// created fresh for each top-level invocation and discarded when the
// invocation returns; the only state shared between engines is the global
// environment.
type Engine struct {
	id      string
	stack   []Value
	pc      int
	code    []Word
	locals  map[string]Value
	frames  []frame
	globals *Globals
	tracer  Tracer
}

// NewEngine creates an engine bound to env with default capacities.
func NewEngine(env *Globals) *Engine {
	return NewEngineWithConfig(env, DefaultConfig())
}

// NewEngineWithConfig creates an engine bound to env using cfg's initial
// capacities. When tracing is enabled in cfg, a logging tracer is
// installed.
func NewEngineWithConfig(env *Globals, cfg Config) *Engine {
	cfg.applyDefaults()
	e := &Engine{
		id:      uuid.NewString(),
		stack:   make([]Value, 0, cfg.Engine.StackCapacity),
		locals:  make(map[string]Value),
		frames:  make([]frame, 0, cfg.Engine.FrameCapacity),
		globals: env,
	}
	if cfg.Trace.Enabled {
		e.tracer = NewLogTracer()
	}
	return e
}

// ID returns the engine's unique identity, surfaced in trace events.
func (e *Engine) ID() string {
	return e.id
}

// SetTracer installs t as the engine's trace hook. A nil tracer disables
// tracing.
func (e *Engine) SetTracer(t Tracer) {
	e.tracer = t
}

// Tracer returns the installed trace hook, or nil.
func (e *Engine) Tracer() Tracer {
	return e.tracer
}

// ---------------------------------------------------------------------------
// Stack operations
// ---------------------------------------------------------------------------

func (e *Engine) push(v Value) {
	e.stack = append(e.stack, v)
}

func (e *Engine) pop() Value {
	if len(e.stack) == 0 {
		panic("operand stack underflow")
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v
}

// popN removes the top n values, returned in push order.
func (e *Engine) popN(n int) []Value {
	if len(e.stack) < n {
		panic("operand stack underflow")
	}
	at := len(e.stack) - n
	out := make([]Value, n)
	copy(out, e.stack[at:])
	e.stack = e.stack[:at]
	return out
}

// ---------------------------------------------------------------------------
// Frame management
// ---------------------------------------------------------------------------

// callq saves the caller's activation on the dump and transfers control to
// fn's sequence with fresh locals.
func (e *Engine) callq(fn *UserFunction) {
	e.frames = append(e.frames, frame{code: e.code, pc: e.pc, locals: e.locals})
	e.locals = make(map[string]Value)
	e.code = fn.code
	e.pc = 0
}

// leave restores the most recently saved activation.
func (e *Engine) leave() {
	if len(e.frames) == 0 {
		panic("frame stack underflow")
	}
	fr := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	e.code, e.pc, e.locals = fr.code, fr.pc, fr.locals
}

// ---------------------------------------------------------------------------
// Operand decoding
// ---------------------------------------------------------------------------

// operand reads the cell at pc and advances past it.
func (e *Engine) operand() Word {
	if e.pc >= len(e.code) {
		panic("truncated instruction stream")
	}
	w := e.code[e.pc]
	e.pc++
	return w
}

func (e *Engine) nameOperand(op Opcode) string {
	w := e.operand()
	name, ok := w.(string)
	if !ok {
		panic(fmt.Sprintf("%s: operand %v is not a name", op, w))
	}
	return name
}

func (e *Engine) targetOperand(op Opcode) int {
	w := e.operand()
	target, ok := w.(int)
	if !ok {
		panic(fmt.Sprintf("%s: jump target %v was never resolved", op, w))
	}
	return target
}

func (e *Engine) nativeOperand(op Opcode) *Native {
	w := e.operand()
	n, ok := w.(*Native)
	if !ok {
		panic(fmt.Sprintf("%s: operand %v is not a native procedure", op, w))
	}
	return n
}

// ---------------------------------------------------------------------------
// Main interpreter loop
// ---------------------------------------------------------------------------

// Invoke pushes args onto the operand stack, activates fn, and runs the
// fetch-decode-execute loop until the outermost code is exhausted. The
// remaining operand-stack contents, in stack order, are fn's return values.
func (e *Engine) Invoke(fn *UserFunction, args ...Value) ([]Value, error) {
	if !fn.sealed {
		return nil, &FunctionStateError{Op: "invoked before the instruction sequence was installed"}
	}
	for _, arg := range args {
		e.push(arg)
	}
	e.callq(fn)
	if err := e.run(); err != nil {
		return nil, err
	}
	if len(e.frames) != 0 {
		panic(fmt.Sprintf("frame stack imbalance: %d frame(s) never left", len(e.frames)))
	}
	out := make([]Value, len(e.stack))
	copy(out, e.stack)
	return out, nil
}

// run executes one opcode per step until the current code is exhausted.
// Handlers carrying an operand read it from the following cell.
func (e *Engine) run() error {
	for e.pc < len(e.code) {
		at := e.pc
		op, ok := e.code[at].(Opcode)
		if !ok {
			panic(fmt.Sprintf("cell %d is not an opcode: %v", at, e.code[at]))
		}
		e.pc++
		if e.tracer != nil {
			e.tracer.OpcodeExecuted(e.id, at, op)
		}

		switch op {
		// --- Frame management ---
		case OpEnter:
			// Locals were reset by callq; the preamble itself has no effect.

		case OpLeave:
			e.leave()

		// --- Stack and variables ---
		case OpPushq:
			e.push(e.operand())

		case OpPushLocal:
			name := e.nameOperand(op)
			v, ok := e.locals[name]
			if !ok {
				return &UndefinedNameError{Name: name}
			}
			e.push(v)

		case OpPushGlobal:
			name := e.nameOperand(op)
			v, ok := e.globals.Get(name)
			if !ok {
				return &UndefinedNameError{Name: name}
			}
			e.push(v)

		case OpStoreLocal:
			e.locals[e.nameOperand(op)] = e.pop()

		case OpStoreGlobal:
			e.globals.Set(e.nameOperand(op), e.pop())

		// --- Control flow ---
		case OpJump:
			e.pc = e.targetOperand(op)

		case OpJumpIfNot:
			target := e.targetOperand(op)
			if !Truthy(e.pop()) {
				e.pc = target
			}

		// --- Calls ---
		case OpCallq:
			w := e.operand()
			fn, ok := w.(*UserFunction)
			if !ok {
				panic(fmt.Sprintf("%s: operand %v is not a user function", op, w))
			}
			e.callq(fn)

		case OpCallNative0:
			n := e.nativeOperand(op)
			e.push(n.fn())

		case OpCallNative2:
			n := e.nativeOperand(op)
			b := e.pop()
			a := e.pop()
			e.push(n.fn(a, b))

		case OpCallNativeN:
			n := e.nativeOperand(op)
			e.push(n.fn(e.popN(n.arity)...))

		default:
			panic(fmt.Sprintf("unknown opcode %s at cell %d", op, at))
		}
	}
	return nil
}
