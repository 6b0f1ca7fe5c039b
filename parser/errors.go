package parser

import "fmt"

// ErrorKind distinguishes an implementation bug (Internal) from a
// problem with the user's source text (Syntax), per spec.md §7.
type ErrorKind uint8

const (
	Internal ErrorKind = iota
	Syntax
)

func (k ErrorKind) String() string {
	if k == Internal {
		return "internal error"
	}
	return "syntax error"
}

// Error is the single failure type parse returns; it is never
// recovered from mid-parse (spec.md §4.3 "Failure semantics": the
// first error aborts parse). It wraps like a standard Go error so
// callers can errors.As into it.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d..%d: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
}

func syntaxErrorf(span Position, format string, args ...any) *Error {
	err := &Error{Kind: Syntax, Message: fmt.Sprintf(format, args...), Span: span}
	if debugPanicOnError {
		panic(err)
	}
	return err
}

func internalErrorf(span Position, format string, args ...any) *Error {
	err := &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), Span: span}
	if debugPanicOnError {
		panic(err)
	}
	return err
}

// debugPanicOnError is the compile-time switch mentioned in spec.md
// §4.3 ("An optional compile-time switch causes errors to panic
// immediately for debugging"). It is a package variable rather than a
// build tag so tests can flip it without a separate build.
var debugPanicOnError = false

// SetDebugPanicOnError enables or disables the immediate-panic
// debugging switch for all subsequent Parse calls in the process; the
// switch is one package-level variable shared by every goroutine.
// Intended for interactive debugging sessions only.
func SetDebugPanicOnError(v bool) { debugPanicOnError = v }
