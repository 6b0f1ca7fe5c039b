// Package itermodule dispatches the eager, module-level iterator
// operations (spec.md §4.4 "Eager module operations", §4.5 "Iterator
// Module Dispatch"), grounded on
// original_source/core/runtime/src/core_lib/iterator.rs's add_fn
// table. Each operation validates its argument shape up front via
// instanceAndArgs, then drives a koto.Iterator obtained from the VM
// seam to completion.
package itermodule

import (
	"fmt"

	"github.com/koto-lang/koto-go/koto"
)

// Args is the positional argument list passed to a dispatched
// operation, mirroring the original's ctx.instance_and_args split
// between "instance" (method-call position) and trailing args.
type Args struct {
	Instance koto.Value
	Rest     []koto.Value
}

// instanceAndArgs splits call into (iterable, remaining args),
// accepting the iterable either as the receiver or as the first
// positional argument — spec.md §4.5's "the iterable MAY come either
// as an instance ... or as the first positional argument".
func instanceAndArgs(call Args, expected string) (koto.Value, []koto.Value, error) {
	if call.Instance.IsIterable() {
		return call.Instance, call.Rest, nil
	}
	if len(call.Rest) > 0 && call.Rest[0].IsIterable() {
		return call.Rest[0], call.Rest[1:], nil
	}
	return koto.Null, nil, fmt.Errorf("iterator: expected %s", expected)
}

func valueOf(o koto.Output) koto.Value {
	if o.Kind == koto.OutputValuePair {
		return koto.Tuple([]koto.Value{o.Key, o.Value})
	}
	return o.Value
}

func callPredicate(vm koto.VM, pred koto.Callable, out koto.Output) (koto.Value, error) {
	if out.Kind == koto.OutputValuePair {
		return vm.RunFunction(pred, koto.TupleArgs(out.Key, out.Value))
	}
	return vm.RunFunction(pred, koto.SingleArg(out.Value))
}

// All reports whether pred(x) is truthy for every item, short-
// circuiting on the first false.
func All(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable and predicate function")
	if err != nil {
		return koto.Null, err
	}
	if len(rest) != 1 || !rest[0].IsCallable() {
		return koto.Null, fmt.Errorf("iterator.all: expected an iterable and predicate function")
	}
	pred := rest[0].Callable
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			return koto.Bool(true), nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		result, err := callPredicate(vm, pred, out)
		if err != nil {
			return koto.Null, err
		}
		if result.Kind != koto.KindBool {
			return koto.Null, fmt.Errorf("iterator.all: expected a Bool to be returned from the predicate, found %s", result.Kind)
		}
		if !result.Bool {
			return koto.Bool(false), nil
		}
	}
}

// Any mirrors All, returning true on the first truthy result.
func Any(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable and predicate function")
	if err != nil {
		return koto.Null, err
	}
	if len(rest) != 1 || !rest[0].IsCallable() {
		return koto.Null, fmt.Errorf("iterator.any: expected an iterable and predicate function")
	}
	pred := rest[0].Callable
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			return koto.Bool(false), nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		result, err := callPredicate(vm, pred, out)
		if err != nil {
			return koto.Null, err
		}
		if result.Kind != koto.KindBool {
			return koto.Null, fmt.Errorf("iterator.any: expected a Bool to be returned from the predicate, found %s", result.Kind)
		}
		if result.Bool {
			return koto.Bool(true), nil
		}
	}
}

// Count returns the number of items produced, propagating any error.
func Count(vm koto.VM, call Args) (koto.Value, error) {
	iterable, _, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return koto.Null, err
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	n := 0
	for {
		out, ok := it.Next()
		if !ok {
			break
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		n++
	}
	return koto.Number(float64(n)), nil
}

// Consume drains the iterable, running f per item if provided.
func Consume(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return koto.Null, err
	}
	var fn koto.Callable
	if len(rest) == 1 && rest[0].IsCallable() {
		fn = rest[0].Callable
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			break
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		if fn != nil {
			if _, err := callPredicate(vm, fn, out); err != nil {
				return koto.Null, err
			}
		}
	}
	return koto.Null, nil
}

// Find returns the first value for which pred is truthy, or Null.
func Find(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable and predicate function")
	if err != nil {
		return koto.Null, err
	}
	if len(rest) != 1 || !rest[0].IsCallable() {
		return koto.Null, fmt.Errorf("iterator.find: expected an iterable and predicate function")
	}
	pred := rest[0].Callable
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			return koto.Null, nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		result, err := callPredicate(vm, pred, out)
		if err != nil {
			return koto.Null, err
		}
		if result.Kind != koto.KindBool {
			return koto.Null, fmt.Errorf("iterator.find: expected a Bool to be returned from the predicate, found %s", result.Kind)
		}
		if result.Bool {
			return valueOf(out), nil
		}
	}
}

// Fold reduces the iterable starting from init, collapsing
// ValuePair outputs to a 2-tuple before invocation.
func Fold(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable, initial value, and folding function")
	if err != nil {
		return koto.Null, err
	}
	if len(rest) != 2 || !rest[1].IsCallable() {
		return koto.Null, fmt.Errorf("iterator.fold: expected an iterable, initial value, and folding function")
	}
	acc, fn := rest[0], rest[1].Callable
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			return acc, nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		acc, err = vm.RunFunction(fn, koto.SeparateArgs(acc, valueOf(out)))
		if err != nil {
			return koto.Null, err
		}
	}
}

// Last returns the iterable's final item, or Null if empty.
func Last(vm koto.VM, call Args) (koto.Value, error) {
	iterable, _, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return koto.Null, err
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	result := koto.Null
	for {
		out, ok := it.Next()
		if !ok {
			return result, nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		result = valueOf(out)
	}
}

func keyOf(vm koto.VM, key koto.Callable, v koto.Value) (koto.Value, error) {
	if key == nil {
		return v, nil
	}
	return vm.RunFunction(key, koto.SingleArg(v))
}

// Min returns the smallest item by the script's < operator, with
// ties keeping the earlier element, or Null on an empty iterable.
func Min(vm koto.VM, call Args) (koto.Value, error) {
	return minMaxReduce(vm, call, "min", true, false)
}

// Max returns the largest item by the script's < operator, with ties
// keeping the later element, or Null on an empty iterable.
func Max(vm koto.VM, call Args) (koto.Value, error) {
	return minMaxReduce(vm, call, "max", false, false)
}

// MinMax returns a (min, max) 2-tuple, or Null on an empty iterable.
func MinMax(vm koto.VM, call Args) (koto.Value, error) {
	return minMaxReduce(vm, call, "min_max", true, true)
}

func minMaxReduce(vm koto.VM, call Args, name string, wantMin, wantBoth bool) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable, with an optional key function")
	if err != nil {
		return koto.Null, err
	}
	var key koto.Callable
	if len(rest) == 1 && rest[0].IsCallable() {
		key = rest[0].Callable
	} else if len(rest) > 0 {
		return koto.Null, fmt.Errorf("iterator.%s: expected an iterable, with an optional key function", name)
	}

	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}

	var minVal, maxVal, minKey, maxKey koto.Value
	haveAny := false
	for {
		out, ok := it.Next()
		if !ok {
			break
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		v := valueOf(out)
		k, err := keyOf(vm, key, v)
		if err != nil {
			return koto.Null, err
		}
		if !haveAny {
			minVal, maxVal, minKey, maxKey = v, v, k, k
			haveAny = true
			continue
		}
		lessMin, err := vm.RunBinaryOp(koto.OpLess, k, minKey)
		if err != nil {
			return koto.Null, fmt.Errorf("iterator.%s: %w", name, err)
		}
		if lessMin.Bool {
			minVal, minKey = v, k
		}
		kBelowMax, err := vm.RunBinaryOp(koto.OpLess, k, maxKey)
		if err != nil {
			return koto.Null, fmt.Errorf("iterator.%s: %w", name, err)
		}
		if !kBelowMax.Bool {
			// k >= maxKey: a later element that ties or beats the
			// current max replaces it, so ties favour the later one.
			maxVal, maxKey = v, k
		}
	}
	if !haveAny {
		return koto.Null, nil
	}
	if wantBoth {
		return koto.Tuple([]koto.Value{minVal, maxVal}), nil
	}
	if wantMin {
		return minVal, nil
	}
	return maxVal, nil
}

// Position returns the zero-based index of the first matching
// value, or Null.
func Position(vm koto.VM, call Args) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable and predicate function")
	if err != nil {
		return koto.Null, err
	}
	if len(rest) != 1 || !rest[0].IsCallable() {
		return koto.Null, fmt.Errorf("iterator.position: expected an iterable and predicate function")
	}
	pred := rest[0].Callable
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	idx := 0
	for {
		out, ok := it.Next()
		if !ok {
			return koto.Null, nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		result, err := callPredicate(vm, pred, out)
		if err != nil {
			return koto.Null, err
		}
		if result.Kind != koto.KindBool {
			return koto.Null, fmt.Errorf("iterator.position: expected a Bool to be returned from the predicate, found %s", result.Kind)
		}
		if result.Bool {
			return koto.Number(float64(idx)), nil
		}
		idx++
	}
}

// Product reduces the iterable with the binary * operator dispatched
// through the VM, starting from init (default 1).
func Product(vm koto.VM, call Args) (koto.Value, error) {
	return reduceBinaryOp(vm, call, "product", koto.OpMultiply, koto.Number(1))
}

// Sum reduces the iterable with the binary + operator dispatched
// through the VM, starting from init (default 0).
func Sum(vm koto.VM, call Args) (koto.Value, error) {
	return reduceBinaryOp(vm, call, "sum", koto.OpAdd, koto.Number(0))
}

func reduceBinaryOp(vm koto.VM, call Args, name string, op koto.BinaryOp, defaultInit koto.Value) (koto.Value, error) {
	iterable, rest, err := instanceAndArgs(call, "an iterable, with an optional initial value")
	if err != nil {
		return koto.Null, err
	}
	acc := defaultInit
	if len(rest) == 1 {
		acc = rest[0]
	} else if len(rest) > 1 {
		return koto.Null, fmt.Errorf("iterator.%s: expected an iterable, with an optional initial value", name)
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	for {
		out, ok := it.Next()
		if !ok {
			return acc, nil
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		acc, err = vm.RunBinaryOp(op, acc, valueOf(out))
		if err != nil {
			return koto.Null, fmt.Errorf("iterator.%s: %w", name, err)
		}
	}
}

// ToList materialises the iterable into a List.
func ToList(vm koto.VM, call Args) (koto.Value, error) {
	items, err := collect(vm, call)
	if err != nil {
		return koto.Null, err
	}
	return koto.List(items), nil
}

// ToTuple materialises the iterable into a Tuple.
func ToTuple(vm koto.VM, call Args) (koto.Value, error) {
	items, err := collect(vm, call)
	if err != nil {
		return koto.Null, err
	}
	return koto.Tuple(items), nil
}

func collect(vm koto.VM, call Args) ([]koto.Value, error) {
	iterable, _, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return nil, err
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return nil, err
	}
	var out []koto.Value
	for {
		o, ok := it.Next()
		if !ok {
			return out, nil
		}
		if o.Kind == koto.OutputError {
			return nil, o.Err
		}
		out = append(out, valueOf(o))
	}
}

// ToMap materialises the iterable into an OrderedMap. Accepts
// ValuePair, 2-tuples, or bare values (stored as key -> Null);
// every key must be hashable.
func ToMap(vm koto.VM, call Args) (koto.Value, error) {
	iterable, _, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return koto.Null, err
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	m := koto.NewOrderedMap()
	for {
		out, ok := it.Next()
		if !ok {
			break
		}
		if out.Kind == koto.OutputError {
			return koto.Null, out.Err
		}
		var key, value koto.Value
		switch {
		case out.Kind == koto.OutputValuePair:
			key, value = out.Key, out.Value
		case out.Value.Kind == koto.KindTuple && len(out.Value.List) == 2:
			key, value = out.Value.List[0], out.Value.List[1]
		default:
			key, value = out.Value, koto.Null
		}
		if !m.Set(key, value) {
			return koto.Null, fmt.Errorf("iterator.to_map: key of kind %s is not hashable", key.Kind)
		}
	}
	return koto.Value{Kind: koto.KindMap, Map: m}, nil
}

// ToString joins the iterable's displayed values into a single
// string with no separator, the iterator side of the to_string
// adaptor named in spec.md §6 ("DisplayContext provided by the VM").
func ToString(vm koto.VM, call Args) (koto.Value, error) {
	items, err := collect(vm, call)
	if err != nil {
		return koto.Null, err
	}
	out := ""
	for _, v := range items {
		out += v.String()
	}
	return koto.Str(out), nil
}

// Next exposes one step of forward iteration to script code.
func Next(vm koto.VM, call Args) (koto.Value, error) {
	return stepOnce(vm, call, false)
}

// NextBack exposes one step of backward iteration to script code.
func NextBack(vm koto.VM, call Args) (koto.Value, error) {
	return stepOnce(vm, call, true)
}

func stepOnce(vm koto.VM, call Args, back bool) (koto.Value, error) {
	iterable, _, err := instanceAndArgs(call, "an iterable")
	if err != nil {
		return koto.Null, err
	}
	it, err := vm.MakeIterator(iterable)
	if err != nil {
		return koto.Null, err
	}
	var out koto.Output
	var ok bool
	if back {
		out, ok = it.NextBack()
	} else {
		out, ok = it.Next()
	}
	if !ok {
		return koto.Null, nil
	}
	if out.Kind == koto.OutputError {
		return koto.Null, out.Err
	}
	return valueOf(out), nil
}
