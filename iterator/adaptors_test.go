package iterator

import (
	"testing"

	"github.com/koto-lang/koto-go/koto"
)

func numbers(vs ...float64) koto.Iterator {
	items := make([]koto.Value, len(vs))
	for i, v := range vs {
		items[i] = koto.Number(v)
	}
	it, err := koto.MakeIterator(koto.List(items))
	if err != nil {
		panic(err)
	}
	return it
}

func drain(it koto.Iterator) []koto.Value {
	var out []koto.Value
	for {
		o, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, valueOf(o))
	}
	return out
}

func assertNumbers(t *testing.T, got []koto.Value, want ...float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Kind != koto.KindNumber || got[i].Number != w {
			t.Errorf("index %d: expected %v, got %v", i, w, got[i])
		}
	}
}

func TestChain(t *testing.T) {
	c, err := NewChain(numbers(1, 2), numbers(3, 4), 0)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	assertNumbers(t, drain(c), 1, 2, 3, 4)
}

func TestChainCopyMidFirst(t *testing.T) {
	c, err := NewChain(numbers(1, 2, 3), numbers(4, 5), 0)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if o, ok := c.Next(); !ok || o.Value.Number != 1 {
		t.Fatalf("expected first value 1, got %v", o)
	}
	cp := c.MakeCopy()
	assertNumbers(t, drain(c), 2, 3, 4, 5)
	assertNumbers(t, drain(cp), 2, 3, 4, 5)
}

func TestCycleWithTake(t *testing.T) {
	cycled := NewCycle(numbers(1, 2, 3))
	taken := NewTake(cycled, 7)
	assertNumbers(t, drain(taken), 1, 2, 3, 1, 2, 3, 1)
}

func TestEnumerate(t *testing.T) {
	e := NewEnumerate(numbers(10, 20, 30))
	i := 0
	for {
		o, ok := e.Next()
		if !ok {
			break
		}
		if o.Kind != koto.OutputValuePair {
			t.Fatalf("expected a ValuePair, got %v", o)
		}
		if int(o.Key.Number) != i {
			t.Errorf("expected index %d, got %v", i, o.Key)
		}
		i++
	}
	if i != 3 {
		t.Errorf("expected 3 items, got %d", i)
	}
}

func TestFlattenOneLevel(t *testing.T) {
	inner, _ := koto.MakeIterator(koto.List([]koto.Value{koto.Number(2), koto.Number(3)}))
	outer, _ := koto.MakeIterator(koto.List([]koto.Value{
		koto.Number(1),
		koto.FromIterator(inner),
		koto.Number(4),
	}))
	vm := koto.NewSimpleVM(koto.Options{})
	f, err := NewFlatten(outer, vm, 0)
	if err != nil {
		t.Fatalf("NewFlatten: %v", err)
	}
	assertNumbers(t, drain(f), 1, 2, 3, 4)
}

func TestChainExceedsMaxDepth(t *testing.T) {
	inner, err := NewChain(numbers(1), numbers(2), 0)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if _, err := NewChain(inner, numbers(3), 1); err == nil {
		t.Fatal("expected chaining a depth-1 Chain to exceed a max depth of 1")
	}
}

func TestFlattenExceedsMaxDepth(t *testing.T) {
	outer, _ := koto.MakeIterator(koto.List([]koto.Value{koto.Number(1)}))
	vm := koto.NewSimpleVM(koto.Options{})
	inner, err := NewFlatten(outer, vm, 0)
	if err != nil {
		t.Fatalf("NewFlatten: %v", err)
	}
	if _, err := NewFlatten(inner, vm, 1); err == nil {
		t.Fatal("expected flattening a depth-1 Flatten to exceed a max depth of 1")
	}
}

func TestIntersperse(t *testing.T) {
	ip := NewIntersperse(numbers(1, 2, 3), koto.Number(0))
	assertNumbers(t, drain(ip), 1, 0, 2, 0, 3)
}

func TestIntersperseEmptySource(t *testing.T) {
	ip := NewIntersperse(numbers(), koto.Number(0))
	got := drain(ip)
	if len(got) != 0 {
		t.Errorf("expected no output for an empty source, got %v", got)
	}
}

func TestKeep(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	even := koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) {
		n := int(args.Args[0].Number)
		return koto.Bool(n%2 == 0), nil
	}}
	k := NewKeep(numbers(1, 2, 3, 4, 5, 6), even, vm)
	assertNumbers(t, drain(k), 2, 4, 6)
}

func TestTakeZero(t *testing.T) {
	tk := NewTake(numbers(1, 2, 3), 0)
	if got := drain(tk); len(got) != 0 {
		t.Errorf("expected Take(0) to yield nothing, got %v", got)
	}
}

func TestChunksFinalShort(t *testing.T) {
	ch, err := NewChunks(numbers(1, 2, 3, 4, 5), 2)
	if err != nil {
		t.Fatal(err)
	}
	var sizes []int
	for {
		o, ok := ch.Next()
		if !ok {
			break
		}
		sizes = append(sizes, len(o.Value.List))
	}
	if len(sizes) != 3 || sizes[2] != 1 {
		t.Errorf("expected chunk sizes [2,2,1], got %v", sizes)
	}
}

func TestChunksZeroIsError(t *testing.T) {
	if _, err := NewChunks(numbers(1), 0); err == nil {
		t.Error("expected an error constructing Chunks with size 0")
	}
}

func TestWindowsOverlap(t *testing.T) {
	w, err := NewWindows(numbers(1, 2, 3, 4), 2)
	if err != nil {
		t.Fatal(err)
	}
	var windows [][]float64
	for {
		o, ok := w.Next()
		if !ok {
			break
		}
		var ws []float64
		for _, v := range o.Value.List {
			ws = append(ws, v.Number)
		}
		windows = append(windows, ws)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if windows[0][1] != windows[1][0] {
		t.Errorf("expected consecutive windows to share an item, got %v and %v", windows[0], windows[1])
	}
}

func TestReversedRejectsForwardOnly(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	gen := NewGenerate(koto.GoFunc{Fn: func(koto.CallArgs) (koto.Value, error) { return koto.Number(1), nil }}, vm)
	if _, err := NewReversed(gen); err == nil {
		t.Error("expected Reversed to reject a forward-only source")
	}
}

func TestReversedOverList(t *testing.T) {
	r, err := NewReversed(numbers(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	assertNumbers(t, drain(r), 3, 2, 1)
}

func TestZipStopsAtShorter(t *testing.T) {
	z := NewZip(numbers(1, 2, 3), numbers(10, 20))
	var pairs int
	for {
		_, ok := z.Next()
		if !ok {
			break
		}
		pairs++
	}
	if pairs != 2 {
		t.Errorf("expected 2 pairs, got %d", pairs)
	}
}

func TestPeekableDoesNotConsume(t *testing.T) {
	p := NewPeekable(numbers(1, 2, 3))
	peeked, ok := p.Peek()
	if !ok || peeked.Value.Number != 1 {
		t.Fatalf("expected to peek 1, got %v", peeked)
	}
	assertNumbers(t, drain(p), 1, 2, 3)
}

func TestRepeatN(t *testing.T) {
	r := NewRepeatN(koto.Str("x"), 3)
	var out []string
	for {
		o, ok := r.Next()
		if !ok {
			break
		}
		out = append(out, o.Value.Str)
	}
	if len(out) != 3 || out[0] != "x" || out[2] != "x" {
		t.Errorf("expected 3 copies of x, got %v", out)
	}
}

func TestGenerateN(t *testing.T) {
	vm := koto.NewSimpleVM(koto.Options{})
	n := 0.0
	fn := koto.GoFunc{Fn: func(koto.CallArgs) (koto.Value, error) {
		n++
		return koto.Number(n), nil
	}}
	g := NewGenerateN(3, fn, vm)
	assertNumbers(t, drain(g), 1, 2, 3)
}

func TestEachCollapsesValuePair(t *testing.T) {
	m := koto.NewOrderedMap()
	m.Set(koto.Str("a"), koto.Number(1))
	mapIter, err := koto.MakeIterator(koto.Value{Kind: koto.KindMap, Map: m})
	if err != nil {
		t.Fatal(err)
	}
	vm := koto.NewSimpleVM(koto.Options{})
	identity := koto.GoFunc{Fn: func(args koto.CallArgs) (koto.Value, error) { return args.Args[0], nil }}
	each := NewEach(mapIter, identity, vm)
	out, ok := each.Next()
	if !ok {
		t.Fatal("expected a value")
	}
	if out.Kind != koto.OutputValue || out.Value.Kind != koto.KindTuple {
		t.Fatalf("expected each to collapse the pair into a tuple, got %v", out)
	}
	if len(out.Value.List) != 2 {
		t.Errorf("expected a 2-tuple, got %v", out.Value.List)
	}
}
