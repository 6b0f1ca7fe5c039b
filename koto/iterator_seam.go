package koto

// OutputKind tags the active field of an Output.
type OutputKind uint8

const (
	OutputValue OutputKind = iota
	OutputValuePair
	OutputError
)

// Output is the iterator protocol's element type (spec.md §3.4): a
// scalar Value, a key/value pair (map iteration, enumerate), or an
// error that a step failed to produce a value. An Error does not by
// itself terminate the source iterator; callers decide whether to
// propagate it (spec.md §4.4 "Forward iteration").
type Output struct {
	Kind  OutputKind
	Value Value
	Key   Value
	Err   error
}

// Val constructs a scalar Output.
func Val(v Value) Output { return Output{Kind: OutputValue, Value: v} }

// Pair constructs a key/value Output.
func Pair(k, v Value) Output { return Output{Kind: OutputValuePair, Key: k, Value: v} }

// Err constructs an error Output.
func Err(err error) Output { return Output{Kind: OutputError, Err: err} }

// SizeHint is the best-effort bound an Iterator reports about its
// remaining length (spec.md §4.4 "Size hint"). Upper is nil when
// unbounded.
type SizeHint struct {
	Lower int
	Upper *int
}

// Unbounded is the SizeHint of a source with no known upper bound.
func Unbounded(lower int) SizeHint { return SizeHint{Lower: lower} }

// Bounded is the SizeHint of a source whose exact remaining length is
// known.
func Bounded(n int) SizeHint { upper := n; return SizeHint{Lower: n, Upper: &upper} }

// Iterator is the capability set every built-in adaptor, generator,
// and host-defined iterable implements (spec.md §3.5, §9 "small
// capability set ... realised as a trait object/interface"). NextBack
// is provided by every built-in type but returns ok=false for sources
// that are inherently forward-only (e.g. Cycle, Generate); callers
// must check ok rather than assuming support.
type Iterator interface {
	Next() (Output, bool)
	NextBack() (Output, bool)
	SizeHint() SizeHint
	MakeCopy() Iterator
}

// Bidirectional is implemented by iterators whose NextBack is
// meaningful; adaptors like Reversed type-assert against it to fail
// construction early rather than silently degrading (spec.md §4.4
// adaptor catalogue, "Reversed").
type Bidirectional interface {
	Iterator
	SupportsNextBack() bool
}

// External is the escape hatch for host-defined iterables (spec.md §9
// "escape hatch for host-defined iterators is required"): any Go type
// satisfying Iterator can be handed to FromExternal and flow through
// the rest of the subsystem identically to a built-in adaptor,
// without koto.MakeIterator needing to know about it as a distinct
// value kind.
type External = Iterator

// FromExternal wraps a host-defined External iterator as a Value.
func FromExternal(e External) Value { return FromIterator(e) }
