package plant

import "fmt"

// Label is a jump target that may be referenced before its offset is
// known. Planting an unresolved label records a patch action closing over
// the planted cell; resolving the label runs every pending action exactly
// once, synchronously, and discards them. A label resolves at most once.
type Label struct {
	offset   int
	resolved bool
	pending  []func(offset int)
}

// NewLabel returns an unresolved label.
func NewLabel() *Label {
	return &Label{}
}

// Offset returns the resolved offset, with ok false while unresolved.
func (l *Label) Offset() (offset int, ok bool) {
	return l.offset, l.resolved
}

// Resolved reports whether the label has been bound.
func (l *Label) Resolved() bool {
	return l.resolved
}

// addPending registers a patch action to run at resolution. Only called
// while the label is unresolved.
func (l *Label) addPending(fn func(offset int)) {
	l.pending = append(l.pending, fn)
}

// resolve binds the label to offset and runs the pending patch actions.
// Returns the number of actions run. Panics with *LabelAlreadySetError on
// a second resolution; offsets must be non-negative.
func (l *Label) resolve(offset int) int {
	if l.resolved {
		panic(&LabelAlreadySetError{Offset: l.offset})
	}
	if offset < 0 {
		panic(fmt.Sprintf("label offset must be non-negative, got %d", offset))
	}
	l.offset = offset
	l.resolved = true
	patched := len(l.pending)
	for _, fn := range l.pending {
		fn(offset)
	}
	l.pending = nil
	return patched
}
