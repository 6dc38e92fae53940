package vm

// Value is any host value carried on the operand stack, stored in a
// variable, or passed to a native function.
type Value = any

// Truthy reports whether v selects the taken path of a conditional jump.
// nil, false, numeric zero, and the empty string are falsy; every other
// value is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int8:
		return x != 0
	case int16:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case uint:
		return x != 0
	case uint8:
		return x != 0
	case uint16:
		return x != 0
	case uint32:
		return x != 0
	case uint64:
		return x != 0
	case float32:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}
