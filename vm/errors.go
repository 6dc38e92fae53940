package vm

import "fmt"

// UndefinedNameError reports a load of a name that was never stored.
type UndefinedNameError struct {
	Name string
}

func (e *UndefinedNameError) Error() string {
	return fmt.Sprintf("undefined name %q", e.Name)
}

// FunctionStateError reports misuse of a UserFunction's two-phase
// construction: sealing the instruction sequence twice, or invoking a
// function whose sequence was never installed.
type FunctionStateError struct {
	Op string // the operation that was attempted
}

func (e *FunctionStateError) Error() string {
	return fmt.Sprintf("function state: %s", e.Op)
}
