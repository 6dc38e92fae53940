package vm

import (
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Trace hook
// ---------------------------------------------------------------------------

// Tracer receives structured execution events: one per opcode executed and
// one per label resolved. Tracing is disabled by default and is never
// load-bearing for correctness. Implementations must be cheap.
type Tracer interface {
	// OpcodeExecuted fires after fetch, before the handler runs. pc is
	// the cell index of the opcode.
	OpcodeExecuted(engineID string, pc int, op Opcode)

	// LabelResolved fires when a label is bound. patched is the number
	// of pending patch actions that ran.
	LabelResolved(offset int, patched int)
}

// ---------------------------------------------------------------------------
// Logging tracer
// ---------------------------------------------------------------------------

// LogTracer forwards trace events as structured debug messages. Import a
// commonlog backend (for example github.com/tliron/commonlog/simple) and
// raise the verbosity of the "planter.vm" logger to see the output.
type LogTracer struct {
	log commonlog.Logger
}

// NewLogTracer creates a tracer logging under "planter.vm".
func NewLogTracer() *LogTracer {
	return &LogTracer{log: commonlog.GetLogger("planter.vm")}
}

// OpcodeExecuted implements Tracer.
func (t *LogTracer) OpcodeExecuted(engineID string, pc int, op Opcode) {
	if msg := t.log.NewMessage(commonlog.Debug, 1); msg != nil {
		msg.Set("_message", "opcode executed").
			Set("engine", engineID).
			Set("pc", pc).
			Set("opcode", op.Name()).
			Send()
	}
}

// LabelResolved implements Tracer.
func (t *LogTracer) LabelResolved(offset int, patched int) {
	if msg := t.log.NewMessage(commonlog.Debug, 1); msg != nil {
		msg.Set("_message", "label resolved").
			Set("offset", offset).
			Set("patched", patched).
			Send()
	}
}
