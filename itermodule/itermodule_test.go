package itermodule

import (
	"testing"

	"github.com/koto-lang/koto-go/koto"
)

func listOf(vs ...float64) koto.Value {
	items := make([]koto.Value, len(vs))
	for i, v := range vs {
		items[i] = koto.Number(v)
	}
	return koto.List(items)
}

func predicate(fn func(float64) bool) koto.Value {
	return koto.Value{Kind: koto.KindCallable, Callable: koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		return koto.Bool(fn(args.Args[0].Number)), nil
	}}}
}

func TestAll(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := All(vm, Args{Instance: listOf(2, 4, 6), Rest: []koto.Value{predicate(func(n float64) bool { return int(n)%2 == 0 })}})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Bool {
		t.Errorf("expected true, got %v", result)
	}
}

func TestAllShortCircuits(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := All(vm, Args{Instance: listOf(2, 3, 6), Rest: []koto.Value{predicate(func(n float64) bool { return int(n)%2 == 0 })}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Bool {
		t.Errorf("expected false, got %v", result)
	}
}

func TestAny(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := Any(vm, Args{Instance: listOf(1, 3, 4), Rest: []koto.Value{predicate(func(n float64) bool { return int(n)%2 == 0 })}})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Bool {
		t.Errorf("expected true, got %v", result)
	}
}

func TestFindNoMatchReturnsNull(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := Find(vm, Args{Instance: listOf(1, 3, 5), Rest: []koto.Value{predicate(func(n float64) bool { return int(n)%2 == 0 })}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != koto.KindNull {
		t.Errorf("expected Null, got %v", result)
	}
}

func TestFold(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	add := koto.Value{Kind: koto.KindCallable, Callable: koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		return koto.Number(args.Args[0].Number + args.Args[1].Number), nil
	}}}
	result, err := Fold(vm, Args{Instance: listOf(1, 2, 3), Rest: []koto.Value{koto.Number(10), add}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Number != 16 {
		t.Errorf("expected 16, got %v", result.Number)
	}
}

func TestFoldMatchesSum(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	add := koto.Value{Kind: koto.KindCallable, Callable: koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		return koto.Number(args.Args[0].Number + args.Args[1].Number), nil
	}}}
	folded, err := Fold(vm, Args{Instance: listOf(1, 2, 3, 4), Rest: []koto.Value{koto.Number(0), add}})
	if err != nil {
		t.Fatal(err)
	}
	summed, err := Sum(vm, Args{Instance: listOf(1, 2, 3, 4)})
	if err != nil {
		t.Fatal(err)
	}
	if folded.Number != summed.Number {
		t.Errorf("expected fold and sum to agree, got %v and %v", folded.Number, summed.Number)
	}
}

func TestMinTieBreakFavoursEarlier(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	items := koto.Tuple([]koto.Value{koto.Str("aaa"), koto.Str("bb"), koto.Str("cc")})
	key := koto.Value{Kind: koto.KindCallable, Callable: koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		return koto.Number(float64(len(args.Args[0].Str))), nil
	}}}
	result, err := Min(vm, Args{Instance: items, Rest: []koto.Value{key}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Str != "bb" {
		t.Errorf("expected the earlier of the two length-2 strings (bb), got %q", result.Str)
	}
}

func TestMaxTieBreakFavoursLater(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	items := koto.Tuple([]koto.Value{koto.Str("bb"), koto.Str("a"), koto.Str("cc")})
	key := koto.Value{Kind: koto.KindCallable, Callable: koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		return koto.Number(float64(len(args.Args[0].Str))), nil
	}}}
	result, err := Max(vm, Args{Instance: items, Rest: []koto.Value{key}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Str != "cc" {
		t.Errorf("expected the later of the two length-2 strings (cc), got %q", result.Str)
	}
}

func TestMinMaxOnEmptyIsNull(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := MinMax(vm, Args{Instance: listOf()})
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != koto.KindNull {
		t.Errorf("expected Null on an empty iterable, got %v", result)
	}
}

func TestMinMax(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := MinMax(vm, Args{Instance: listOf(5, 1, 9, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != koto.KindTuple || len(result.List) != 2 {
		t.Fatalf("expected a 2-tuple, got %v", result)
	}
	if result.List[0].Number != 1 || result.List[1].Number != 9 {
		t.Errorf("expected (1, 9), got (%v, %v)", result.List[0].Number, result.List[1].Number)
	}
}

func TestSumAndProductDefaults(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	sum, err := Sum(vm, Args{Instance: listOf(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Number != 6 {
		t.Errorf("expected sum 6, got %v", sum.Number)
	}
	product, err := Product(vm, Args{Instance: listOf(1, 2, 3, 4)})
	if err != nil {
		t.Fatal(err)
	}
	if product.Number != 24 {
		t.Errorf("expected product 24, got %v", product.Number)
	}
}

func TestToMapFromTuples(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	entries := koto.List([]koto.Value{
		koto.Tuple([]koto.Value{koto.Str("a"), koto.Number(1)}),
		koto.Tuple([]koto.Value{koto.Str("b"), koto.Number(2)}),
	})
	result, err := ToMap(vm, Args{Instance: entries})
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != koto.KindMap || result.Map.Len() != 2 {
		t.Fatalf("expected a 2-entry map, got %v", result)
	}
	v, ok := result.Map.Get(koto.Str("b"))
	if !ok || v.Number != 2 {
		t.Errorf("expected b -> 2, got %v", v)
	}
}

func TestToTupleSkipPastEndIsEmpty(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	result, err := ToTuple(vm, Args{Instance: listOf()})
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != koto.KindTuple || len(result.List) != 0 {
		t.Errorf("expected an empty tuple, got %v", result)
	}
}

func TestNextAndNextBack(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	v, err := Next(vm, Args{Instance: listOf(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 1 {
		t.Errorf("expected 1, got %v", v.Number)
	}
	v, err = NextBack(vm, Args{Instance: listOf(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 3 {
		t.Errorf("expected 3, got %v", v.Number)
	}
}
