package vm

import "fmt"

// Word is a single cell of an instruction stream: either an Opcode or an
// inline operand (an immediate value, a variable name, a resolved jump
// offset, or a procedure reference). Jumps and the program counter address
// the stream by cell index.
type Word = any

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a single instruction handler. An opcode occupies one
// cell and may be followed by operand cells.
type Opcode byte

// Frame Management
const (
	OpEnter Opcode = 0x00 // callee preamble; locals were reset by the call
	OpLeave Opcode = 0x01 // pop the frame stack, restoring the caller
)

// Stack and Variables
const (
	OpPushq       Opcode = 0x10 // push inline immediate
	OpPushLocal   Opcode = 0x11 // push named local
	OpPushGlobal  Opcode = 0x12 // push named global
	OpStoreLocal  Opcode = 0x13 // pop into named local
	OpStoreGlobal Opcode = 0x14 // pop into named global
)

// Control Flow
const (
	OpJump      Opcode = 0x20 // pc := operand (absolute cell index)
	OpJumpIfNot Opcode = 0x21 // pop; pc := operand when the value is falsy
)

// Calls
const (
	OpCallq       Opcode = 0x30 // activate the UserFunction operand
	OpCallNative0 Opcode = 0x31 // invoke nullary native, push its result
	OpCallNative2 Opcode = 0x32 // pop two, invoke binary native, push result
	OpCallNativeN Opcode = 0x33 // pop the native's declared arity, invoke, push result
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name         string // human-readable name
	OperandCells int    // number of operand cells following the opcode
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpEnter: {"ENTER", 0},
	OpLeave: {"LEAVE", 0},

	OpPushq:       {"PUSHQ", 1},
	OpPushLocal:   {"PUSH_LOCAL", 1},
	OpPushGlobal:  {"PUSH_GLOBAL", 1},
	OpStoreLocal:  {"STORE_LOCAL", 1},
	OpStoreGlobal: {"STORE_GLOBAL", 1},

	OpJump:      {"JUMP", 1},
	OpJumpIfNot: {"JUMP_IF_NOT", 1},

	OpCallq:       {"CALLQ", 1},
	OpCallNative0: {"CALL_NATIVE0", 1},
	OpCallNative2: {"CALL_NATIVE2", 1},
	OpCallNativeN: {"CALL_NATIVEN", 1},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op)), OperandCells: 0}
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// OperandCells returns the number of operand cells following an opcode.
func (op Opcode) OperandCells() int {
	return op.Info().OperandCells
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}
