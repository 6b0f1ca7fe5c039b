package koto

import "io"

// Options configures a SimpleVM, named after the teacher's
// interp.Options (breadchris-yaegi's Interpreter config struct).
// NewSimpleVM forwards DebugPanicOnError to parser.SetDebugPanicOnError,
// stores MaxIteratorDepth for SimpleVM.MaxIteratorDepth to report, and
// defaults Stdout/Stderr.
type Options struct {
	// DebugPanicOnError causes a parser.Error to panic immediately
	// instead of being returned, for debugging the parser itself
	// (spec.md §4.3 "an optional compile-time switch causes errors to
	// panic immediately for debugging"). NewSimpleVM forwards this to
	// parser.SetDebugPanicOnError.
	DebugPanicOnError bool

	// MaxIteratorDepth bounds adaptor nesting (Chain, Flatten) to
	// guard against runaway recursion when a script composes adaptors
	// in a loop; 0 means unbounded. The iterator package's
	// NewChain/NewFlatten constructors enforce the bound they are
	// passed; SimpleVM itself builds no adaptors and does not apply it.
	MaxIteratorDepth int

	// Stdout carries host-visible output (such as run's result) and
	// Stderr carries diagnostics and the debug expression's output;
	// they default to os.Stdout/os.Stderr when nil.
	Stdout, Stderr io.Writer
}
