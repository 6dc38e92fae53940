package plant

import (
	"testing"

	"github.com/chazu/planter/vm"
)

// ---------------------------------------------------------------------------
// IF construct tests
// ---------------------------------------------------------------------------

func TestIfSingleArm(t *testing.T) {
	// The condition is the invocation argument already on the stack.
	fn := mustBuild(t, NewPlanter().
		If().Then().
		LoadImmediate("a").
		EndIf())

	wantValues(t, call(t, fn, vm.NewGlobals(), true), "a")
	wantValues(t, call(t, fn, vm.NewGlobals(), false))
}

func TestIfElse(t *testing.T) {
	fn := mustBuild(t, NewPlanter().
		If().Then().
		LoadImmediate("a").
		Else().
		LoadImmediate("b").
		EndIf())

	wantValues(t, call(t, fn, vm.NewGlobals(), true), "a")
	wantValues(t, call(t, fn, vm.NewGlobals(), false), "b")
}

func TestElseIfChain(t *testing.T) {
	fn := mustBuild(t, NewPlanter().
		DeclareLocals("x", "y").
		Store("y").
		Store("x").
		If().Load("x").Then().
		LoadImmediate("a").
		ElseIf().Load("y").Then().
		LoadImmediate("b").
		Else().
		LoadImmediate("c").
		EndIf())

	tests := []struct {
		x, y bool
		want vm.Value
	}{
		{true, true, "a"},
		{true, false, "a"},
		{false, true, "b"},
		{false, false, "c"},
	}
	for _, tt := range tests {
		out := call(t, fn, vm.NewGlobals(), tt.x, tt.y)
		wantValues(t, out, tt.want)
	}
}

func TestElseIfWithoutElseFallsThrough(t *testing.T) {
	fn := mustBuild(t, NewPlanter().
		DeclareLocals("x", "y").
		Store("y").
		Store("x").
		If().Load("x").Then().
		LoadImmediate("a").
		ElseIf().Load("y").Then().
		LoadImmediate("b").
		EndIf())

	wantValues(t, call(t, fn, vm.NewGlobals(), false, false))
	wantValues(t, call(t, fn, vm.NewGlobals(), false, true), "b")
}

// ---------------------------------------------------------------------------
// WHILE construct tests
// ---------------------------------------------------------------------------

// countdownLoop builds: while n is positive, push a tick and decrement n.
func countdownLoop(t *testing.T) *vm.UserFunction {
	t.Helper()
	return mustBuild(t, NewPlanter().
		DeclareLocal("n").
		Store("n").
		While().
		Load("n").
		Call(positive).
		Do().
		LoadImmediate("tick").
		Load("n").
		LoadImmediate(1).
		Call(minus).
		Store("n").
		EndWhile())
}

func TestWhileExecutesBodyNTimes(t *testing.T) {
	fn := countdownLoop(t)
	for _, n := range []int{0, 1, 5} {
		out := call(t, fn, vm.NewGlobals(), n)
		if len(out) != n {
			t.Errorf("n=%d: body ran %d times, want %d (%v)", n, len(out), n, out)
		}
		for _, v := range out {
			if v != "tick" {
				t.Errorf("n=%d: accumulated %v, want tick", n, v)
			}
		}
	}
}

func TestNestedIfInsideWhile(t *testing.T) {
	isOdd := vm.NewNative("odd?", 1, func(args ...vm.Value) vm.Value {
		return args[0].(int)%2 != 0
	})

	// Push only the odd values of n while counting down.
	fn := mustBuild(t, NewPlanter().
		DeclareLocal("n").
		Store("n").
		While().
		Load("n").
		Call(positive).
		Do().
		Load("n").
		Call(isOdd).
		If().Then().
		Load("n").
		EndIf().
		Load("n").
		LoadImmediate(1).
		Call(minus).
		Store("n").
		EndWhile())

	wantValues(t, call(t, fn, vm.NewGlobals(), 5), 5, 3, 1)
	wantValues(t, call(t, fn, vm.NewGlobals(), 4), 3, 1)
}

// ---------------------------------------------------------------------------
// Structural error tests
// ---------------------------------------------------------------------------

func TestTokenWithNoOpenConstruct(t *testing.T) {
	tokens := []struct {
		name string
		fire func(p *Planter)
	}{
		{"ELSE", func(p *Planter) { p.Else() }},
		{"THEN", func(p *Planter) { p.Then() }},
		{"ENDIF", func(p *Planter) { p.EndIf() }},
		{"DO", func(p *Planter) { p.Do() }},
		{"ENDWHILE", func(p *Planter) { p.EndWhile() }},
	}
	for _, tt := range tokens {
		var tokErr *UnexpectedTokenError
		mustPanicAs(t, &tokErr, func() { tt.fire(NewPlanter()) })
	}
}

func TestMisorderedTokens(t *testing.T) {
	cases := []struct {
		name string
		fire func()
	}{
		{"ENDIF before THEN", func() { NewPlanter().If().EndIf() }},
		{"ELSE before THEN", func() { NewPlanter().If().Else() }},
		{"ELSE after ELSE", func() { NewPlanter().If().Then().Else().Else() }},
		{"ELSEIF after ELSE", func() { NewPlanter().If().Then().Else().ElseIf() }},
		{"THEN after THEN", func() { NewPlanter().If().Then().Then() }},
		{"DO inside IF", func() { NewPlanter().If().Then().Do() }},
		{"ENDWHILE before DO", func() { NewPlanter().While().EndWhile() }},
		{"THEN inside WHILE", func() { NewPlanter().While().Then() }},
		{"ENDIF inside WHILE body", func() { NewPlanter().While().Do().EndIf() }},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			var synErr *StructuralSyntaxError
			mustPanicAs(t, &synErr, tt.fire)
		})
	}
}

func TestStructuralErrorNamesExpectedTokens(t *testing.T) {
	defer func() {
		r := recover()
		synErr, ok := r.(*StructuralSyntaxError)
		if !ok {
			t.Fatalf("panic value = %v, want *StructuralSyntaxError", r)
		}
		if len(synErr.Want) == 0 {
			t.Error("error should name the expected token set")
		}
		if synErr.Got != TokenEndIf {
			t.Errorf("Got = %s, want ENDIF", synErr.Got)
		}
	}()
	NewPlanter().If().EndIf()
}

// ---------------------------------------------------------------------------
// Jump accounting
// ---------------------------------------------------------------------------

// countJumps tallies conditional and unconditional jumps in a listing.
func countJumps(fn *vm.UserFunction) (conditional, unconditional int) {
	for _, row := range fn.Listing() {
		switch row.Opcode {
		case "JUMP_IF_NOT":
			conditional++
		case "JUMP":
			unconditional++
		}
	}
	return
}

func TestJumpCountMatchesBranchBoundaries(t *testing.T) {
	cases := []struct {
		name              string
		build             func() *Planter
		wantConditional   int // one per THEN or DO
		wantUnconditional int // one per non-final branch, one per loop
	}{
		{
			"single arm",
			func() *Planter {
				return NewPlanter().If().Then().LoadImmediate(1).EndIf()
			},
			1, 0,
		},
		{
			"if/else",
			func() *Planter {
				return NewPlanter().If().Then().LoadImmediate(1).Else().LoadImmediate(2).EndIf()
			},
			1, 1,
		},
		{
			"elseif chain with else",
			func() *Planter {
				return NewPlanter().
					DeclareLocals("x", "y").Store("y").Store("x").
					If().Load("x").Then().LoadImmediate(1).
					ElseIf().Load("y").Then().LoadImmediate(2).
					Else().LoadImmediate(3).EndIf()
			},
			2, 2,
		},
		{
			"while",
			func() *Planter {
				return NewPlanter().While().LoadImmediate(false).Do().EndWhile()
			},
			1, 1,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			fn := mustBuild(t, tt.build())
			conditional, unconditional := countJumps(fn)
			if conditional != tt.wantConditional {
				t.Errorf("conditional jumps = %d, want %d", conditional, tt.wantConditional)
			}
			if unconditional != tt.wantUnconditional {
				t.Errorf("unconditional jumps = %d, want %d", unconditional, tt.wantUnconditional)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Label trace events
// ---------------------------------------------------------------------------

type labelRecorder struct {
	resolutions int
}

func (r *labelRecorder) OpcodeExecuted(string, int, vm.Opcode) {}
func (r *labelRecorder) LabelResolved(offset, patched int)     { r.resolutions++ }

func TestPlanterReportsLabelResolutions(t *testing.T) {
	rec := &labelRecorder{}
	p := NewPlanter().SetTracer(rec).
		If().Then().LoadImmediate(1).Else().LoadImmediate(2).EndIf()
	mustBuild(t, p)

	// next-case at ELSE, end-of-if at ENDIF.
	if rec.resolutions != 2 {
		t.Errorf("label resolutions = %d, want 2", rec.resolutions)
	}
}
