package plant

import "github.com/chazu/planter/vm"

// Token is a structural control-flow token routed to the innermost open
// construct.
type Token string

const (
	TokenThen     Token = "THEN"
	TokenElseIf   Token = "ELSEIF"
	TokenElse     Token = "ELSE"
	TokenEndIf    Token = "ENDIF"
	TokenDo       Token = "DO"
	TokenEndWhile Token = "ENDWHILE"
)

// controlFrame is one open structural construct on the nesting stack.
// accept processes a token routed to it and reports whether the construct
// completed; tokens arriving in the wrong state panic with
// *StructuralSyntaxError.
type controlFrame interface {
	accept(p *Planter, tok Token) (done bool)
}

// ---------------------------------------------------------------------------
// IF ... THEN ... [ELSEIF ... THEN ...]* [ELSE ...] ENDIF
// ---------------------------------------------------------------------------

type ifState int

const (
	ifAwaitingThen  ifState = iota // condition code next, then THEN
	ifInBranch                     // branch body; ELSE, ELSEIF or ENDIF follows
	ifInFinalBranch                // after ELSE; only ENDIF follows
)

// ifFrame emits one conditional jump per THEN (to the case's "next-case"
// label) and one unconditional jump per non-final branch (to the shared
// "end-of-if" label). Exactly one branch executes; with no ELSE and a
// false condition the construct has an empty effect.
type ifFrame struct {
	state    ifState
	nextCase *Label // lands where the previous condition proved false
	endIf    *Label // shared end of the whole construct
}

func newIfFrame() *ifFrame {
	return &ifFrame{state: ifAwaitingThen}
}

func (f *ifFrame) accept(p *Planter, tok Token) bool {
	switch f.state {
	case ifAwaitingThen:
		if tok != TokenThen {
			panic(&StructuralSyntaxError{Construct: "IF", Got: tok, Want: []Token{TokenThen}})
		}
		if f.endIf == nil {
			f.endIf = NewLabel()
		}
		f.nextCase = NewLabel()
		p.emit(vm.OpJumpIfNot)
		p.plant(f.nextCase)
		f.state = ifInBranch
		return false

	case ifInBranch:
		switch tok {
		case TokenElse:
			p.emit(vm.OpJump)
			p.plant(f.endIf)
			p.bind(f.nextCase)
			f.state = ifInFinalBranch
			return false
		case TokenElseIf:
			p.emit(vm.OpJump)
			p.plant(f.endIf)
			p.bind(f.nextCase)
			f.state = ifAwaitingThen
			return false
		case TokenEndIf:
			// No trailing ELSE: the last failed condition falls
			// through to the end.
			if !f.nextCase.Resolved() {
				p.bind(f.nextCase)
			}
			p.bind(f.endIf)
			return true
		default:
			panic(&StructuralSyntaxError{Construct: "IF", Got: tok,
				Want: []Token{TokenElse, TokenElseIf, TokenEndIf}})
		}

	case ifInFinalBranch:
		if tok != TokenEndIf {
			panic(&StructuralSyntaxError{Construct: "IF", Got: tok, Want: []Token{TokenEndIf}})
		}
		p.bind(f.endIf)
		return true
	}

	panic("if: invalid state")
}

// ---------------------------------------------------------------------------
// WHILE ... DO ... ENDWHILE
// ---------------------------------------------------------------------------

type whileState int

const (
	whileAwaitingDo whileState = iota // condition code next, then DO
	whileInBody                       // loop body; ENDWHILE follows
)

type whileFrame struct {
	state     whileState
	loopStart *Label
	loopEnd   *Label
}

// newWhileFrame binds the loop-start label at construct entry, before the
// condition code.
func newWhileFrame(p *Planter) *whileFrame {
	f := &whileFrame{loopStart: NewLabel()}
	p.bind(f.loopStart)
	return f
}

func (f *whileFrame) accept(p *Planter, tok Token) bool {
	switch f.state {
	case whileAwaitingDo:
		if tok != TokenDo {
			panic(&StructuralSyntaxError{Construct: "WHILE", Got: tok, Want: []Token{TokenDo}})
		}
		f.loopEnd = NewLabel()
		p.emit(vm.OpJumpIfNot)
		p.plant(f.loopEnd)
		f.state = whileInBody
		return false

	case whileInBody:
		if tok != TokenEndWhile {
			panic(&StructuralSyntaxError{Construct: "WHILE", Got: tok, Want: []Token{TokenEndWhile}})
		}
		p.emit(vm.OpJump)
		p.plant(f.loopStart)
		p.bind(f.loopEnd)
		return true
	}

	panic("while: invalid state")
}
