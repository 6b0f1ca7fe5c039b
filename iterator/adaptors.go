// Package iterator implements the lazy adaptor and generator catalogue
// built on top of koto.Iterator (SPEC_FULL.md §E/§F, grounded on
// original_source/src/runtime/src/core/iterator/adaptors.rs). Every
// adaptor holds its own state and is pull-driven: a Next() call may
// re-enter the VM to run a script callback, and make_copy deep-copies
// sub-iterators and clones any captured callables so forking an
// adaptor never disturbs the original (spec.md §3.5, §9).
package iterator

import (
	"fmt"

	"github.com/koto-lang/koto-go/koto"
)

func collectPair(o koto.Output) koto.Output {
	if o.Kind == koto.OutputValuePair {
		return koto.Val(koto.Tuple([]koto.Value{o.Key, o.Value}))
	}
	return o
}

// depther is implemented by adaptors that can themselves wrap other
// adaptors (Chain, Flatten), letting NewChain/NewFlatten bound the
// resulting nesting depth against koto.Options.MaxIteratorDepth
// without every adaptor needing to know about depth limits.
type depther interface {
	iteratorDepth() int
}

// depthOf reports it's nesting depth, or 0 if it isn't itself a
// composite adaptor.
func depthOf(it koto.Iterator) int {
	if d, ok := it.(depther); ok {
		return d.iteratorDepth()
	}
	return 0
}

// Chain links the output of two iterators end to end.
type Chain struct {
	a, b  koto.Iterator // a is nil once exhausted
	depth int
}

// NewChain builds an iterator that yields all of a, then all of b. If
// maxDepth is greater than zero and chaining a and b would nest
// composite adaptors (Chain, Flatten) deeper than maxDepth, it
// returns an error instead (spec.md §9, koto.Options.MaxIteratorDepth).
func NewChain(a, b koto.Iterator, maxDepth int) (*Chain, error) {
	depth := 1 + max(depthOf(a), depthOf(b))
	if maxDepth > 0 && depth > maxDepth {
		return nil, fmt.Errorf("iterator.chain: adaptor nesting depth %d exceeds the configured maximum of %d", depth, maxDepth)
	}
	return &Chain{a: a, b: b, depth: depth}, nil
}

func (c *Chain) iteratorDepth() int { return c.depth }

func (c *Chain) Next() (koto.Output, bool) {
	if c.a != nil {
		if out, ok := c.a.Next(); ok {
			return out, true
		}
		c.a = nil
	}
	return c.b.Next()
}

func (c *Chain) NextBack() (koto.Output, bool) {
	if out, ok := c.b.NextBack(); ok {
		return out, true
	}
	if c.a != nil {
		return c.a.NextBack()
	}
	return koto.Output{}, false
}

func (c *Chain) SizeHint() koto.SizeHint {
	hb := c.b.SizeHint()
	if c.a == nil {
		return hb
	}
	ha := c.a.SizeHint()
	lower := saturatingAdd(ha.Lower, hb.Lower)
	var upper *int
	if ha.Upper != nil && hb.Upper != nil {
		u := *ha.Upper + *hb.Upper
		upper = &u
	}
	return koto.SizeHint{Lower: lower, Upper: upper}
}

func (c *Chain) MakeCopy() koto.Iterator {
	cp := &Chain{b: c.b.MakeCopy(), depth: c.depth}
	if c.a != nil {
		cp.a = c.a.MakeCopy()
	}
	return cp
}

func (c *Chain) SupportsNextBack() bool { return true }

func saturatingAdd(a, b int) int {
	sum := a + b
	if sum < a {
		return int(^uint(0) >> 1)
	}
	return sum
}

// Each maps a function over an iterator's values. A ValuePair is
// collapsed into a 2-tuple before invocation so no key/value pair
// survives each (spec.md §4.4 "Each").
type Each struct {
	it koto.Iterator
	fn koto.Callable
	vm koto.VM
}

// NewEach builds an Each adaptor, running fn via vm's RunFunction.
func NewEach(it koto.Iterator, fn koto.Callable, vm koto.VM) *Each {
	return &Each{it: it, fn: fn, vm: vm}
}

func (e *Each) Next() (koto.Output, bool) {
	out, ok := e.it.Next()
	if !ok {
		return koto.Output{}, false
	}
	return e.runCallback(out), true
}

func (e *Each) NextBack() (koto.Output, bool) {
	out, ok := e.it.NextBack()
	if !ok {
		return koto.Output{}, false
	}
	return e.runCallback(out), true
}

func (e *Each) runCallback(out koto.Output) koto.Output {
	collapsed := collectPair(out)
	if collapsed.Kind != koto.OutputValue {
		return collapsed
	}
	result, err := e.vm.RunFunction(e.fn, koto.SingleArg(collapsed.Value))
	if err != nil {
		return koto.Err(fmt.Errorf("iterator.each: %w", err))
	}
	return koto.Val(result)
}

func (e *Each) SizeHint() koto.SizeHint { return e.it.SizeHint() }

func (e *Each) MakeCopy() koto.Iterator {
	return &Each{it: e.it.MakeCopy(), fn: e.fn.Clone(), vm: e.vm.SpawnSharedVM()}
}

func (e *Each) SupportsNextBack() bool {
	b, ok := e.it.(koto.Bidirectional)
	return ok && b.SupportsNextBack()
}

// Cycle replays its source indefinitely, buffering yielded values on
// the first pass so replay still works once the source is exhausted
// and not re-startable (spec.md §4.4 "Cycle").
type Cycle struct {
	source   koto.Iterator // nil once the first pass has completed
	buffer   []koto.Output
	replayAt int
}

// NewCycle builds an infinite replay of it.
func NewCycle(it koto.Iterator) *Cycle { return &Cycle{source: it} }

func (c *Cycle) Next() (koto.Output, bool) {
	if c.source != nil {
		if out, ok := c.source.Next(); ok {
			c.buffer = append(c.buffer, out)
			return out, true
		}
		c.source = nil
	}
	if len(c.buffer) == 0 {
		return koto.Output{}, false
	}
	out := c.buffer[c.replayAt]
	c.replayAt = (c.replayAt + 1) % len(c.buffer)
	return out, true
}

func (c *Cycle) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (c *Cycle) SizeHint() koto.SizeHint {
	if len(c.buffer) == 0 && c.source != nil {
		return koto.Unbounded(0)
	}
	return koto.Unbounded(len(c.buffer))
}

func (c *Cycle) MakeCopy() koto.Iterator {
	cp := &Cycle{buffer: append([]koto.Output(nil), c.buffer...), replayAt: c.replayAt}
	if c.source != nil {
		cp.source = c.source.MakeCopy()
	}
	return cp
}

func (c *Cycle) SupportsNextBack() bool { return false }

// Enumerate emits ValuePair(index, value) with a monotonically
// increasing index starting at 0.
type Enumerate struct {
	it    koto.Iterator
	front int
}

// NewEnumerate builds an Enumerate adaptor over it.
func NewEnumerate(it koto.Iterator) *Enumerate { return &Enumerate{it: it} }

func (e *Enumerate) Next() (koto.Output, bool) {
	out, ok := e.it.Next()
	if !ok {
		return koto.Output{}, false
	}
	idx := e.front
	e.front++
	return koto.Pair(koto.Number(float64(idx)), valueOf(out)), true
}

func (e *Enumerate) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (e *Enumerate) SizeHint() koto.SizeHint { return e.it.SizeHint() }

func (e *Enumerate) MakeCopy() koto.Iterator {
	return &Enumerate{it: e.it.MakeCopy(), front: e.front}
}

func (e *Enumerate) SupportsNextBack() bool { return false }

func valueOf(o koto.Output) koto.Value {
	if o.Kind == koto.OutputValuePair {
		return koto.Tuple([]koto.Value{o.Key, o.Value})
	}
	return o.Value
}

// Flatten substitutes an iterable element's own elements in place of
// the element itself, one level deep (spec.md §4.4 "Flatten").
type Flatten struct {
	it    koto.Iterator
	vm    koto.VM
	cur   koto.Iterator // currently-flattening sub-iterator, or nil
	depth int
}

// NewFlatten builds a Flatten adaptor over it using vm to build
// sub-iterators for nested iterables. If maxDepth is greater than
// zero and it is itself a composite adaptor (Chain, Flatten) nested
// maxDepth levels deep or more, it returns an error instead (spec.md
// §9, koto.Options.MaxIteratorDepth).
func NewFlatten(it koto.Iterator, vm koto.VM, maxDepth int) (*Flatten, error) {
	depth := 1 + depthOf(it)
	if maxDepth > 0 && depth > maxDepth {
		return nil, fmt.Errorf("iterator.flatten: adaptor nesting depth %d exceeds the configured maximum of %d", depth, maxDepth)
	}
	return &Flatten{it: it, vm: vm, depth: depth}, nil
}

func (f *Flatten) iteratorDepth() int { return f.depth }

func (f *Flatten) Next() (koto.Output, bool) {
	for {
		if f.cur != nil {
			if out, ok := f.cur.Next(); ok {
				return out, true
			}
			f.cur = nil
		}
		out, ok := f.it.Next()
		if !ok {
			return koto.Output{}, false
		}
		if out.Kind != koto.OutputValue || !out.Value.IsIterable() {
			return out, true
		}
		sub, err := f.vm.MakeIterator(out.Value)
		if err != nil {
			return koto.Err(err), true
		}
		f.cur = sub
	}
}

func (f *Flatten) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (f *Flatten) SizeHint() koto.SizeHint { return koto.Unbounded(0) }

func (f *Flatten) MakeCopy() koto.Iterator {
	cp := &Flatten{it: f.it.MakeCopy(), vm: f.vm.SpawnSharedVM(), depth: f.depth}
	if f.cur != nil {
		cp.cur = f.cur.MakeCopy()
	}
	return cp
}

func (f *Flatten) SupportsNextBack() bool { return false }

// Intersperse emits the source's items with a fixed separator (or a
// callback's result) between successive items, with no trailing
// separator and nothing emitted for an empty source (spec.md §4.4,
// §9 Open Question).
type Intersperse struct {
	it        koto.Iterator
	sep       koto.Value
	sepFn     koto.Callable
	vm        koto.VM
	pending   *koto.Output
	emittedOne bool
}

// NewIntersperse builds an adaptor inserting the fixed value sep.
func NewIntersperse(it koto.Iterator, sep koto.Value) *Intersperse {
	return &Intersperse{it: it, sep: sep}
}

// NewIntersperseWith builds an adaptor inserting fn()'s result,
// called once per insertion, between successive items.
func NewIntersperseWith(it koto.Iterator, fn koto.Callable, vm koto.VM) *Intersperse {
	return &Intersperse{it: it, sepFn: fn, vm: vm}
}

func (ip *Intersperse) Next() (koto.Output, bool) {
	if ip.pending != nil {
		out := *ip.pending
		ip.pending = nil
		return out, true
	}
	out, ok := ip.it.Next()
	if !ok {
		return koto.Output{}, false
	}
	if ip.emittedOne {
		sep, err := ip.separator()
		if err != nil {
			ip.pending = &out
			return koto.Err(err), true
		}
		pending := out
		ip.pending = &pending
		return koto.Val(sep), true
	}
	ip.emittedOne = true
	return out, true
}

func (ip *Intersperse) separator() (koto.Value, error) {
	if ip.sepFn == nil {
		return ip.sep, nil
	}
	return ip.vm.RunFunction(ip.sepFn, koto.CallArgs{})
}

func (ip *Intersperse) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (ip *Intersperse) SizeHint() koto.SizeHint { return koto.Unbounded(0) }

func (ip *Intersperse) MakeCopy() koto.Iterator {
	cp := &Intersperse{it: ip.it.MakeCopy(), sep: ip.sep, emittedOne: ip.emittedOne}
	if ip.sepFn != nil {
		cp.sepFn = ip.sepFn.Clone()
		cp.vm = ip.vm.SpawnSharedVM()
	}
	if ip.pending != nil {
		pending := *ip.pending
		cp.pending = &pending
	}
	return cp
}

func (ip *Intersperse) SupportsNextBack() bool { return false }

// Keep filters a source by a predicate, which must return a boolean
// or the iterator yields an error (spec.md §4.4 "Keep").
type Keep struct {
	it   koto.Iterator
	pred koto.Callable
	vm   koto.VM
}

// NewKeep builds a Keep adaptor using pred to test each value.
func NewKeep(it koto.Iterator, pred koto.Callable, vm koto.VM) *Keep {
	return &Keep{it: it, pred: pred, vm: vm}
}

func (k *Keep) Next() (koto.Output, bool) {
	for {
		out, ok := k.it.Next()
		if !ok {
			return koto.Output{}, false
		}
		keepOut, pass, done := k.test(out)
		if done {
			return keepOut, true
		}
		if pass {
			return out, true
		}
	}
}

func (k *Keep) NextBack() (koto.Output, bool) {
	for {
		out, ok := k.it.NextBack()
		if !ok {
			return koto.Output{}, false
		}
		keepOut, pass, done := k.test(out)
		if done {
			return keepOut, true
		}
		if pass {
			return out, true
		}
	}
}

// test evaluates the predicate against out. done signals an error
// Output that must be surfaced immediately instead of continuing the
// filter loop.
func (k *Keep) test(out koto.Output) (koto.Output, bool, bool) {
	value := valueOf(out)
	result, err := k.vm.RunFunction(k.pred, koto.SingleArg(value))
	if err != nil {
		return koto.Err(fmt.Errorf("iterator.keep: %w", err)), false, true
	}
	if result.Kind != koto.KindBool {
		return koto.Err(fmt.Errorf("iterator.keep: predicate must return a Bool, found %s", result.Kind)), false, true
	}
	return koto.Output{}, result.Bool, false
}

func (k *Keep) SizeHint() koto.SizeHint { return koto.Unbounded(0) }

func (k *Keep) MakeCopy() koto.Iterator {
	return &Keep{it: k.it.MakeCopy(), pred: k.pred.Clone(), vm: k.vm.SpawnSharedVM()}
}

func (k *Keep) SupportsNextBack() bool {
	b, ok := k.it.(koto.Bidirectional)
	return ok && b.SupportsNextBack()
}

// Take emits at most n items from its source; n == 0 yields none.
type Take struct {
	it        koto.Iterator
	remaining int
}

// NewTake builds a Take adaptor limited to n items.
func NewTake(it koto.Iterator, n int) *Take { return &Take{it: it, remaining: n} }

func (t *Take) Next() (koto.Output, bool) {
	if t.remaining <= 0 {
		return koto.Output{}, false
	}
	out, ok := t.it.Next()
	if !ok {
		t.remaining = 0
		return koto.Output{}, false
	}
	t.remaining--
	return out, true
}

func (t *Take) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (t *Take) SizeHint() koto.SizeHint {
	inner := t.it.SizeHint()
	upper := t.remaining
	if inner.Upper != nil && *inner.Upper < upper {
		upper = *inner.Upper
	}
	lower := inner.Lower
	if lower > t.remaining {
		lower = t.remaining
	}
	return koto.SizeHint{Lower: lower, Upper: &upper}
}

func (t *Take) MakeCopy() koto.Iterator {
	return &Take{it: t.it.MakeCopy(), remaining: t.remaining}
}

func (t *Take) SupportsNextBack() bool { return false }

// Chunks groups a source into non-overlapping tuples of size n; the
// final chunk may be shorter. Constructing with n == 0 is an error.
type Chunks struct {
	it   koto.Iterator
	size int
	done bool
}

// NewChunks builds a Chunks adaptor, or an error if size is 0.
func NewChunks(it koto.Iterator, size int) (*Chunks, error) {
	if size == 0 {
		return nil, fmt.Errorf("iterator.chunks: chunk size must be greater than zero")
	}
	return &Chunks{it: it, size: size}, nil
}

func (c *Chunks) Next() (koto.Output, bool) {
	if c.done {
		return koto.Output{}, false
	}
	chunk := make([]koto.Value, 0, c.size)
	for len(chunk) < c.size {
		out, ok := c.it.Next()
		if !ok {
			c.done = true
			break
		}
		chunk = append(chunk, valueOf(out))
	}
	if len(chunk) == 0 {
		return koto.Output{}, false
	}
	return koto.Val(koto.Tuple(chunk)), true
}

func (c *Chunks) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (c *Chunks) SizeHint() koto.SizeHint {
	inner := c.it.SizeHint()
	lower := (inner.Lower + c.size - 1) / c.size
	if inner.Upper == nil {
		return koto.Unbounded(lower)
	}
	upper := (*inner.Upper + c.size - 1) / c.size
	return koto.SizeHint{Lower: lower, Upper: &upper}
}

func (c *Chunks) MakeCopy() koto.Iterator {
	return &Chunks{it: c.it.MakeCopy(), size: c.size, done: c.done}
}

func (c *Chunks) SupportsNextBack() bool { return false }

// Windows yields overlapping sliding windows of size n over the
// source; consecutive windows share n-1 items. Constructing with
// n == 0 is an error.
type Windows struct {
	it     koto.Iterator
	size   int
	buffer []koto.Value
	done   bool
}

// NewWindows builds a Windows adaptor, or an error if size is 0.
func NewWindows(it koto.Iterator, size int) (*Windows, error) {
	if size == 0 {
		return nil, fmt.Errorf("iterator.windows: window size must be greater than zero")
	}
	return &Windows{it: it, size: size}, nil
}

func (w *Windows) Next() (koto.Output, bool) {
	if w.done {
		return koto.Output{}, false
	}
	for len(w.buffer) < w.size {
		out, ok := w.it.Next()
		if !ok {
			w.done = true
			return koto.Output{}, false
		}
		w.buffer = append(w.buffer, valueOf(out))
	}
	window := append([]koto.Value(nil), w.buffer...)
	w.buffer = w.buffer[1:]
	return koto.Val(koto.Tuple(window)), true
}

func (w *Windows) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (w *Windows) SizeHint() koto.SizeHint {
	inner := w.it.SizeHint()
	compute := func(n int) int {
		n = n - w.size + 1
		if n < 0 {
			return 0
		}
		return n
	}
	lower := compute(inner.Lower)
	if inner.Upper == nil {
		return koto.Unbounded(lower)
	}
	upper := compute(*inner.Upper)
	return koto.SizeHint{Lower: lower, Upper: &upper}
}

func (w *Windows) MakeCopy() koto.Iterator {
	return &Windows{it: w.it.MakeCopy(), size: w.size, buffer: append([]koto.Value(nil), w.buffer...), done: w.done}
}

func (w *Windows) SupportsNextBack() bool { return false }

// Reversed walks its source back to front; construction fails if the
// source does not support backward iteration (spec.md §4.4
// "Reversed").
type Reversed struct {
	it koto.Iterator
}

// NewReversed builds a Reversed adaptor, or an error if it does not
// support backward iteration.
func NewReversed(it koto.Iterator) (*Reversed, error) {
	b, ok := it.(koto.Bidirectional)
	if !ok || !b.SupportsNextBack() {
		return nil, fmt.Errorf("iterator.reversed: the source iterator does not support reverse iteration")
	}
	return &Reversed{it: it}, nil
}

func (r *Reversed) Next() (koto.Output, bool)     { return r.it.NextBack() }
func (r *Reversed) NextBack() (koto.Output, bool) { return r.it.Next() }
func (r *Reversed) SizeHint() koto.SizeHint       { return r.it.SizeHint() }
func (r *Reversed) MakeCopy() koto.Iterator       { return &Reversed{it: r.it.MakeCopy()} }
func (r *Reversed) SupportsNextBack() bool        { return true }

// Zip emits ValuePair(x, y) until either source ends.
type Zip struct {
	a, b koto.Iterator
}

// NewZip builds a Zip adaptor pairing a and b.
func NewZip(a, b koto.Iterator) *Zip { return &Zip{a: a, b: b} }

func (z *Zip) Next() (koto.Output, bool) {
	oa, ok := z.a.Next()
	if !ok {
		return koto.Output{}, false
	}
	ob, ok := z.b.Next()
	if !ok {
		return koto.Output{}, false
	}
	return koto.Pair(valueOf(oa), valueOf(ob)), true
}

func (z *Zip) NextBack() (koto.Output, bool) { return koto.Output{}, false }

func (z *Zip) SizeHint() koto.SizeHint {
	ha, hb := z.a.SizeHint(), z.b.SizeHint()
	lower := ha.Lower
	if hb.Lower < lower {
		lower = hb.Lower
	}
	if ha.Upper == nil {
		return koto.SizeHint{Lower: lower, Upper: hb.Upper}
	}
	if hb.Upper == nil {
		return koto.SizeHint{Lower: lower, Upper: ha.Upper}
	}
	upper := *ha.Upper
	if *hb.Upper < upper {
		upper = *hb.Upper
	}
	return koto.SizeHint{Lower: lower, Upper: &upper}
}

func (z *Zip) MakeCopy() koto.Iterator {
	return &Zip{a: z.a.MakeCopy(), b: z.b.MakeCopy()}
}

func (z *Zip) SupportsNextBack() bool { return false }

// Peekable adds a Peek operation returning the next item without
// consuming it.
type Peekable struct {
	it      koto.Iterator
	peeked  *koto.Output
	peekedB *koto.Output
}

// NewPeekable builds a Peekable wrapping it.
func NewPeekable(it koto.Iterator) *Peekable { return &Peekable{it: it} }

// Peek returns the next item without consuming it.
func (p *Peekable) Peek() (koto.Output, bool) {
	if p.peeked == nil {
		out, ok := p.it.Next()
		if !ok {
			return koto.Output{}, false
		}
		p.peeked = &out
	}
	return *p.peeked, true
}

// PeekBack returns the item at the back without consuming it, for
// sources that support backward iteration.
func (p *Peekable) PeekBack() (koto.Output, bool) {
	if p.peekedB == nil {
		out, ok := p.it.NextBack()
		if !ok {
			return koto.Output{}, false
		}
		p.peekedB = &out
	}
	return *p.peekedB, true
}

func (p *Peekable) Next() (koto.Output, bool) {
	if p.peeked != nil {
		out := *p.peeked
		p.peeked = nil
		return out, true
	}
	return p.it.Next()
}

func (p *Peekable) NextBack() (koto.Output, bool) {
	if p.peekedB != nil {
		out := *p.peekedB
		p.peekedB = nil
		return out, true
	}
	return p.it.NextBack()
}

func (p *Peekable) SizeHint() koto.SizeHint { return p.it.SizeHint() }

func (p *Peekable) MakeCopy() koto.Iterator {
	cp := &Peekable{it: p.it.MakeCopy()}
	if p.peeked != nil {
		v := *p.peeked
		cp.peeked = &v
	}
	if p.peekedB != nil {
		v := *p.peekedB
		cp.peekedB = &v
	}
	return cp
}

func (p *Peekable) SupportsNextBack() bool {
	b, ok := p.it.(koto.Bidirectional)
	return ok && b.SupportsNextBack()
}
