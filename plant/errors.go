package plant

import (
	"fmt"
	"strings"
)

// LabelAlreadySetError reports a second resolution of the same label.
type LabelAlreadySetError struct {
	Offset int // the offset the label already holds
}

func (e *LabelAlreadySetError) Error() string {
	return fmt.Sprintf("label already set to offset %d", e.Offset)
}

// StructuralSyntaxError reports a control-flow token arriving while the
// innermost open construct is in a state that does not expect it.
type StructuralSyntaxError struct {
	Construct string // "IF" or "WHILE"
	Got       Token
	Want      []Token
}

func (e *StructuralSyntaxError) Error() string {
	want := make([]string, len(e.Want))
	for i, tok := range e.Want {
		want[i] = string(tok)
	}
	return fmt.Sprintf("%s: expecting %s but got %s", e.Construct, strings.Join(want, " or "), e.Got)
}

// UnexpectedTokenError reports a control-flow token with no open construct
// to route it to.
type UnexpectedTokenError struct {
	Got Token
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected %s: no open construct", e.Got)
}

// UnknownProcedureKindError reports a call emission for a value that is
// neither a user function nor a native procedure.
type UnknownProcedureKindError struct {
	Procedure any
}

func (e *UnknownProcedureKindError) Error() string {
	return fmt.Sprintf("unknown procedure kind %T", e.Procedure)
}
