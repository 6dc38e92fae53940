// Package plant provides the code-emission surface of the planter abstract
// machine: a chained builder that assembles vm instruction streams, with
// forward-reference labels and structured IF/WHILE emission that
// backpatches its own jumps.
//
// A function is planted as a chain and sealed by Build:
//
//	fn, err := plant.NewPlanter().
//		DeclareLocal("x").
//		Store("x").
//		Load("x").
//		Build()
//
// Misordered structural tokens panic with the typed errors in this package
// at the offending call; Build reports anything left dangling. Construction
// is all-or-nothing.
package plant
