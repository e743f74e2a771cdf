// Package engine provides the core integration machinery for multi-body
// planetary evolution runs.
//
// The package defines the fundamental types for advancing a set of bodies
// through time under an arbitrary collection of physics modules:
//
//   - [Body]: the physical state of one star or planet
//   - [Matrix]: the per-body registry of variables and the equations that
//     drive them, with a cache of the latest derivative/value results
//   - [Evolve]: the context for one integration run (clock, step control,
//     module hooks); scoped to a single run, never shared
//   - [HaltChecker]: ordered evaluation of module halt predicates
//
// Timestep selection walks every registered variable and applies a rule
// determined by the variable's [VarKind]; see SelectTimestep.
//
// # Thread Safety
//
// A run owns its bodies, matrix, and scratch buffers exclusively. Nothing
// in this package is safe for concurrent use; iteration order over bodies,
// variables, and equations is fixed, so a run is reproducible bit-for-bit
// given the same inputs.
package engine
