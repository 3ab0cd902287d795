// Package dispatch holds the runtime contracts that code generated by moderr
// compiles against.
//
// A module's error type is converted into a ModuleError: the module's index in
// the assembled system, a fixed-size encoding of the error value and the
// variant name. Module indices come from a Registry populated by the assembly
// code before any conversion happens.
package dispatch
