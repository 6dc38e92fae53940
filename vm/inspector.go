package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Listing: decoded debug view of an instruction sequence
// ---------------------------------------------------------------------------

// ListedInstruction is one decoded row of a diagnostic listing: the cell
// index, the opcode name, and the rendered operand if the opcode carries
// one. This is a debug view, not a stable serialization of executable
// code.
type ListedInstruction struct {
	Index   int    `cbor:"index"`
	Opcode  string `cbor:"opcode"`
	Operand string `cbor:"operand,omitempty"`
}

// Listing decodes f's instruction sequence into listing rows.
func (f *UserFunction) Listing() []ListedInstruction {
	rows := make([]ListedInstruction, 0, len(f.code))
	for i := 0; i < len(f.code); {
		op, ok := f.code[i].(Opcode)
		if !ok {
			// A non-opcode in opcode position: render the raw cell.
			rows = append(rows, ListedInstruction{Index: i, Opcode: "RAW", Operand: f.formatOperand(f.code[i])})
			i++
			continue
		}
		row := ListedInstruction{Index: i, Opcode: op.Name()}
		i++
		if op.OperandCells() == 1 && i < len(f.code) {
			row.Operand = f.formatOperand(f.code[i])
			i++
		}
		rows = append(rows, row)
	}
	return rows
}

func (f *UserFunction) formatOperand(w Word) string {
	switch x := w.(type) {
	case nil:
		return "<unresolved>"
	case *Native:
		return fmt.Sprintf("native %s/%d", x.name, x.arity)
	case *UserFunction:
		if x == f {
			return "function (self)"
		}
		return "function"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Show returns a line-per-instruction debug view of the finalized
// sequence: index, decoded opcode name, operand.
func (f *UserFunction) Show() string {
	var sb strings.Builder
	for n, row := range f.Listing() {
		if n > 0 {
			sb.WriteByte('\n')
		}
		if row.Operand == "" {
			fmt.Fprintf(&sb, "%04d  %s", row.Index, row.Opcode)
		} else {
			fmt.Fprintf(&sb, "%04d  %s %s", row.Index, row.Opcode, row.Operand)
		}
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Listing codec
// ---------------------------------------------------------------------------

// MarshalListing serializes listing rows to canonical CBOR bytes for
// consumption by external tooling.
func MarshalListing(rows []ListedInstruction) ([]byte, error) {
	return cborEncMode.Marshal(rows)
}

// UnmarshalListing deserializes listing rows from CBOR bytes.
func UnmarshalListing(data []byte) ([]ListedInstruction, error) {
	var rows []ListedInstruction
	if err := cbor.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("vm: unmarshal listing: %w", err)
	}
	return rows, nil
}
