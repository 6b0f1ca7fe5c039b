package iterator

import "github.com/koto-lang/koto-go/koto"

// Repeat yields the same value forever.
type Repeat struct {
	value koto.Value
}

// NewRepeat builds an infinite Repeat of v.
func NewRepeat(v koto.Value) *Repeat { return &Repeat{value: v} }

func (r *Repeat) Next() (koto.Output, bool)     { return koto.Val(r.value), true }
func (r *Repeat) NextBack() (koto.Output, bool) { return koto.Val(r.value), true }
func (r *Repeat) SizeHint() koto.SizeHint       { return koto.Unbounded(0) }
func (r *Repeat) MakeCopy() koto.Iterator       { return &Repeat{value: r.value} }
func (r *Repeat) SupportsNextBack() bool        { return true }

// RepeatN yields n copies of value.
type RepeatN struct {
	value     koto.Value
	remaining int
}

// NewRepeatN builds a RepeatN generator of n copies of v.
func NewRepeatN(v koto.Value, n int) *RepeatN { return &RepeatN{value: v, remaining: n} }

func (r *RepeatN) Next() (koto.Output, bool) {
	if r.remaining <= 0 {
		return koto.Output{}, false
	}
	r.remaining--
	return koto.Val(r.value), true
}

func (r *RepeatN) NextBack() (koto.Output, bool) { return r.Next() }
func (r *RepeatN) SizeHint() koto.SizeHint       { return koto.Bounded(r.remaining) }
func (r *RepeatN) MakeCopy() koto.Iterator       { return &RepeatN{value: r.value, remaining: r.remaining} }
func (r *RepeatN) SupportsNextBack() bool        { return true }

// Generate produces an infinite sequence by invoking fn on every
// next() call (spec.md §4.4 "Generate").
type Generate struct {
	fn koto.Callable
	vm koto.VM
}

// NewGenerate builds an infinite generator invoking fn via vm.
func NewGenerate(fn koto.Callable, vm koto.VM) *Generate { return &Generate{fn: fn, vm: vm} }

func (g *Generate) Next() (koto.Output, bool) {
	result, err := g.vm.RunFunction(g.fn, koto.CallArgs{})
	if err != nil {
		return koto.Err(err), true
	}
	return koto.Val(result), true
}

func (g *Generate) NextBack() (koto.Output, bool) { return koto.Output{}, false }
func (g *Generate) SizeHint() koto.SizeHint       { return koto.Unbounded(0) }
func (g *Generate) MakeCopy() koto.Iterator {
	return &Generate{fn: g.fn.Clone(), vm: g.vm.SpawnSharedVM()}
}
func (g *Generate) SupportsNextBack() bool { return false }

// GenerateN invokes fn exactly n times.
type GenerateN struct {
	fn        koto.Callable
	vm        koto.VM
	remaining int
}

// NewGenerateN builds a generator invoking fn exactly n times.
func NewGenerateN(n int, fn koto.Callable, vm koto.VM) *GenerateN {
	return &GenerateN{fn: fn, vm: vm, remaining: n}
}

func (g *GenerateN) Next() (koto.Output, bool) {
	if g.remaining <= 0 {
		return koto.Output{}, false
	}
	g.remaining--
	result, err := g.vm.RunFunction(g.fn, koto.CallArgs{})
	if err != nil {
		return koto.Err(err), true
	}
	return koto.Val(result), true
}

func (g *GenerateN) NextBack() (koto.Output, bool) { return koto.Output{}, false }
func (g *GenerateN) SizeHint() koto.SizeHint       { return koto.Bounded(g.remaining) }
func (g *GenerateN) MakeCopy() koto.Iterator {
	return &GenerateN{fn: g.fn.Clone(), vm: g.vm.SpawnSharedVM(), remaining: g.remaining}
}
func (g *GenerateN) SupportsNextBack() bool { return false }
