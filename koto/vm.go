package koto

import "context"

// CallArgsKind tags the shape CallArgs presents to a callable.
type CallArgsKind uint8

const (
	// Single passes one Value as the callable's sole argument.
	Single CallArgsKind = iota
	// AsTuple packs the slice into a single Tuple argument — used
	// when a ValuePair is passed to an itermodule predicate or
	// callback (all, any, find, position, consume).
	AsTuple
	// Separate passes each element of the slice as its own positional
	// argument.
	Separate
)

// CallArgs describes how RunFunction should present arguments to a
// Callable, mirroring the VM seam's CallArgs sum type (spec.md §6).
type CallArgs struct {
	Kind CallArgsKind
	Args []Value
}

// SingleArg builds a CallArgs presenting exactly one argument.
func SingleArg(v Value) CallArgs { return CallArgs{Kind: Single, Args: []Value{v}} }

// TupleArgs builds a CallArgs presenting args packed as one tuple.
func TupleArgs(args ...Value) CallArgs { return CallArgs{Kind: AsTuple, Args: args} }

// SeparateArgs builds a CallArgs presenting each arg positionally.
func SeparateArgs(args ...Value) CallArgs { return CallArgs{Kind: Separate, Args: args} }

// Callable is a host or script function value that RunFunction can
// invoke. The iterator subsystem treats it opaquely; Clone lets
// adaptors satisfy the make_copy invariant for captured callables
// (spec.md §3.5 "cloning captured callables").
type Callable interface {
	Call(ctx context.Context, vm VM, args CallArgs) (Value, error)
	Clone() Callable
}

// VM is the seam the iterator module and its adaptors use to reenter
// script execution without knowing anything about bytecode or
// register windows (spec.md §6 "VM seam consumed by the iterator
// module").
type VM interface {
	// MakeIterator turns any iterable Value into an Iterator handle.
	MakeIterator(v Value) (Iterator, error)

	// RunFunction invokes fn with args, returning its result or the
	// error it raised.
	RunFunction(fn Callable, args CallArgs) (Value, error)

	// RunBinaryOp dispatches op between a and b through the script's
	// operator overloads (used by sum/product/min/max/min_max,
	// spec.md §4.4, §9 Open Question on comparison operators).
	RunBinaryOp(op BinaryOp, a, b Value) (Value, error)

	// SpawnSharedVM returns a lightweight VM clone sharing globals but
	// with an independent evaluation stack, so an adaptor can reenter
	// without disturbing the caller's register window (spec.md §5
	// "Shared VM spawning", glossary "Shared VM").
	SpawnSharedVM() VM
}

// BinaryOp enumerates the operators RunBinaryOp can dispatch.
type BinaryOp uint8

const (
	OpLess BinaryOp = iota
	OpLessOrEqual
	OpAdd
	OpMultiply
)
