package plant

import (
	"fmt"

	"github.com/chazu/planter/vm"
)

// Planter accumulates one function's instruction stream and seals it into
// an immutable vm.UserFunction. Every emission method returns the planter
// so programs read as a single chain.
//
// A planter exists only during construction: Build consumes it and is the
// only way to obtain a runnable function. Misuse mid-chain (a misordered
// token, a double-bound label, an unknown procedure kind) panics with the
// typed errors in this package at the offending call; Build reports
// end-state violations as errors.
type Planter struct {
	fn      *vm.UserFunction
	code    []vm.Word
	locals  map[string]struct{}
	nesting []controlFrame
	planted []*Label // planted while unresolved; Build requires all bound
	tracer  vm.Tracer
}

// NewPlanter creates a planter whose first cell is the entry placeholder
// patched by Build.
func NewPlanter() *Planter {
	return &Planter{
		fn:     vm.NewFunction(),
		code:   []vm.Word{nil},
		locals: make(map[string]struct{}),
	}
}

// SetTracer installs a hook notified as labels resolve.
func (p *Planter) SetTracer(t vm.Tracer) *Planter {
	p.tracer = t
	return p
}

// Function returns the unsealed function shell, letting a body emit a
// self-referential call before Build seals it.
func (p *Planter) Function() *vm.UserFunction {
	return p.fn
}

// ---------------------------------------------------------------------------
// Emission primitives
// ---------------------------------------------------------------------------

func (p *Planter) emit(words ...vm.Word) {
	p.code = append(p.code, words...)
}

// plant appends one operand cell holding label's offset, backpatched into
// that exact cell once the label resolves.
func (p *Planter) plant(label *Label) {
	if offset, ok := label.Offset(); ok {
		p.emit(offset)
		return
	}
	at := len(p.code)
	p.emit(nil)
	label.addPending(func(offset int) { p.code[at] = offset })
	p.planted = append(p.planted, label)
}

// bind resolves label at the current end of the stream.
func (p *Planter) bind(label *Label) {
	offset := len(p.code)
	patched := label.resolve(offset)
	if p.tracer != nil {
		p.tracer.LabelResolved(offset, patched)
	}
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

// DeclareLocal marks name as call-frame-local for this function.
// Declaration order does not matter.
func (p *Planter) DeclareLocal(name string) *Planter {
	p.locals[name] = struct{}{}
	return p
}

// DeclareLocals marks each name as call-frame-local.
func (p *Planter) DeclareLocals(names ...string) *Planter {
	for _, name := range names {
		p.locals[name] = struct{}{}
	}
	return p
}

// Store emits a pop into name: the local flavor when name was declared
// local, otherwise the global flavor.
func (p *Planter) Store(name string) *Planter {
	op := vm.OpStoreGlobal
	if _, ok := p.locals[name]; ok {
		op = vm.OpStoreLocal
	}
	p.emit(op, name)
	return p
}

// Load emits a push of the value bound to name, local or global by the
// same rule as Store. A global name never stored fails at run time.
func (p *Planter) Load(name string) *Planter {
	op := vm.OpPushGlobal
	if _, ok := p.locals[name]; ok {
		op = vm.OpPushLocal
	}
	p.emit(op, name)
	return p
}

// LoadImmediate emits a push of the literal value.
func (p *Planter) LoadImmediate(value vm.Value) *Planter {
	p.emit(vm.OpPushq, value)
	return p
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// Call emits the call flavor matching the procedure's kind: user functions
// get a call opcode carrying the function reference; natives get the
// opcode for their arity class. Panics with *UnknownProcedureKindError for
// anything else.
func (p *Planter) Call(proc vm.Procedure) *Planter {
	switch x := proc.(type) {
	case *vm.UserFunction:
		p.emit(vm.OpCallq, x)
	case *vm.Native:
		switch x.Class() {
		case vm.ArityNullary:
			p.emit(vm.OpCallNative0, x)
		case vm.ArityBinary:
			p.emit(vm.OpCallNative2, x)
		default:
			p.emit(vm.OpCallNativeN, x)
		}
	default:
		panic(&UnknownProcedureKindError{Procedure: proc})
	}
	return p
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// NewLabel returns a fresh unresolved label.
func (p *Planter) NewLabel() *Label {
	return NewLabel()
}

// BindLabel resolves label to the current end of the stream. Panics with
// *LabelAlreadySetError if the label was already bound.
func (p *Planter) BindLabel(label *Label) *Planter {
	p.bind(label)
	return p
}

// BindLabelAt resolves label to an explicit offset instead of the current
// end of the stream.
func (p *Planter) BindLabelAt(label *Label, at int) *Planter {
	patched := label.resolve(at)
	if p.tracer != nil {
		p.tracer.LabelResolved(at, patched)
	}
	return p
}

// ---------------------------------------------------------------------------
// Structured control flow
// ---------------------------------------------------------------------------

// If opens a conditional construct. Emission continues with the condition
// code, then Then.
func (p *Planter) If() *Planter {
	p.nesting = append(p.nesting, newIfFrame())
	return p
}

// Then closes the current condition and opens its branch body.
func (p *Planter) Then() *Planter { return p.route(TokenThen) }

// ElseIf ends the current branch and opens the next condition.
func (p *Planter) ElseIf() *Planter { return p.route(TokenElseIf) }

// Else ends the current branch and opens the unconditional final branch.
func (p *Planter) Else() *Planter { return p.route(TokenElse) }

// EndIf completes the innermost open IF.
func (p *Planter) EndIf() *Planter { return p.route(TokenEndIf) }

// While opens a loop. The loop-start label binds here, before the
// condition code.
func (p *Planter) While() *Planter {
	p.nesting = append(p.nesting, newWhileFrame(p))
	return p
}

// Do closes the loop condition and opens the body.
func (p *Planter) Do() *Planter { return p.route(TokenDo) }

// EndWhile completes the innermost open WHILE.
func (p *Planter) EndWhile() *Planter { return p.route(TokenEndWhile) }

// route delivers tok to the innermost open construct. Panics with
// *UnexpectedTokenError when nothing is open.
func (p *Planter) route(tok Token) *Planter {
	if len(p.nesting) == 0 {
		panic(&UnexpectedTokenError{Got: tok})
	}
	top := p.nesting[len(p.nesting)-1]
	if top.accept(p, tok) {
		p.nesting = p.nesting[:len(p.nesting)-1]
	}
	return p
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

// Build seals the stream: the entry placeholder becomes the frame
// preamble, a frame-leave is appended, and the finished sequence is
// installed into the function shell. Open constructs or planted but
// never-bound labels fail the build; nothing partial escapes.
func (p *Planter) Build() (*vm.UserFunction, error) {
	if n := len(p.nesting); n > 0 {
		return nil, fmt.Errorf("build: %d unclosed control construct(s)", n)
	}
	for _, label := range p.planted {
		if !label.Resolved() {
			return nil, fmt.Errorf("build: a planted jump target was never bound")
		}
	}
	p.code[0] = vm.OpEnter
	p.emit(vm.OpLeave)
	p.fn.Init(p.code)
	return p.fn, nil
}
