// Package vm implements the planter abstract machine.
//
// This package contains:
//   - word-coded instruction streams and opcode metadata
//   - the Procedure sum (user functions and arity-classed natives)
//   - the Engine interpreter loop with an explicit frame stack
//   - the shared global environment
//   - diagnostic listings and the optional trace hook
package vm
