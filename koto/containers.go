package koto

import "fmt"

// MakeIterator turns any iterable Value into the base Iterator
// capability the rest of the subsystem builds on (spec.md §6
// "VM seam consumed by the iterator module": "make_iterator(value) ->
// IteratorHandle | Error"). Lists/tuples/ranges/strings get a fresh
// forward+backward iterator; an already-Iterator Value passes through
// unchanged so adaptors can be composed without re-wrapping.
func MakeIterator(v Value) (Iterator, error) {
	switch v.Kind {
	case KindIterator:
		return v.Iterator, nil
	case KindList, KindTuple:
		return newSliceIterator(v.List), nil
	case KindMap:
		return newMapIterator(v.Map), nil
	case KindRange:
		return newRangeIterator(v.Range), nil
	case KindString:
		return newStringLineOrRuneIterator(v.Str), nil
	default:
		return nil, fmt.Errorf("koto: value of kind %s is not iterable", v.Kind)
	}
}

// sliceIterator walks a []Value forward and backward from opposite
// ends, the base case every List/Tuple iteration reduces to.
type sliceIterator struct {
	items      []Value
	front, back int // front is next index to yield; back is one past last
}

func newSliceIterator(items []Value) *sliceIterator {
	return &sliceIterator{items: items, front: 0, back: len(items)}
}

func (s *sliceIterator) Next() (Output, bool) {
	if s.front >= s.back {
		return Output{}, false
	}
	v := s.items[s.front]
	s.front++
	return Val(v), true
}

func (s *sliceIterator) NextBack() (Output, bool) {
	if s.front >= s.back {
		return Output{}, false
	}
	s.back--
	return Val(s.items[s.back]), true
}

func (s *sliceIterator) SizeHint() SizeHint { return Bounded(s.back - s.front) }

func (s *sliceIterator) MakeCopy() Iterator {
	cp := *s
	return &cp
}

func (s *sliceIterator) SupportsNextBack() bool { return true }

// mapIterator walks an OrderedMap's entries in insertion order,
// yielding ValuePair(key, value).
type mapIterator struct {
	m          *OrderedMap
	front, back int
}

func newMapIterator(m *OrderedMap) *mapIterator {
	if m == nil {
		m = NewOrderedMap()
	}
	return &mapIterator{m: m, front: 0, back: m.Len()}
}

func (it *mapIterator) Next() (Output, bool) {
	if it.front >= it.back {
		return Output{}, false
	}
	entries := it.m.Entries()
	e := entries[it.front]
	it.front++
	return Pair(e.Key, e.Value), true
}

func (it *mapIterator) NextBack() (Output, bool) {
	if it.front >= it.back {
		return Output{}, false
	}
	it.back--
	entries := it.m.Entries()
	e := entries[it.back]
	return Pair(e.Key, e.Value), true
}

func (it *mapIterator) SizeHint() SizeHint { return Bounded(it.back - it.front) }

func (it *mapIterator) MakeCopy() Iterator {
	cp := *it
	return &cp
}

func (it *mapIterator) SupportsNextBack() bool { return true }

// rangeIterator walks an integer range ascending or descending
// depending on Start vs End, per the original's range.rs conversion
// rules (SPEC_FULL.md "Supplemented features" #7): Start <= End
// yields ascending, Start > End yields descending, independent of the
// Inclusive flag (which only affects whether End itself is emitted).
type rangeIterator struct {
	front, back int64 // [front, back) in the ascending orientation
	descending  bool
}

func newRangeIterator(r RangeValue) *rangeIterator {
	start, end := r.Start, r.End
	descending := start > end
	var lo, hi int64
	if descending {
		// Start is always emitted; End is emitted only when Inclusive,
		// so the exclusion (when present) falls on End's side, which
		// is the lo bound once the orientation is flipped.
		lo, hi = end, start+1
		if !r.Inclusive {
			lo++
		}
	} else {
		lo, hi = start, end
		if r.Inclusive {
			hi++
		}
	}
	return &rangeIterator{front: lo, back: hi, descending: descending}
}

func (r *rangeIterator) Next() (Output, bool) {
	if r.front >= r.back {
		return Output{}, false
	}
	if r.descending {
		value := r.back - 1
		r.back--
		return Val(Number(float64(value))), true
	}
	value := r.front
	r.front++
	return Val(Number(float64(value))), true
}

func (r *rangeIterator) NextBack() (Output, bool) {
	if r.front >= r.back {
		return Output{}, false
	}
	if r.descending {
		value := r.front
		r.front++
		return Val(Number(float64(value))), true
	}
	r.back--
	return Val(Number(float64(r.back))), true
}

func (r *rangeIterator) SizeHint() SizeHint { return Bounded(int(r.back - r.front)) }

func (r *rangeIterator) MakeCopy() Iterator {
	cp := *r
	return &cp
}

func (r *rangeIterator) SupportsNextBack() bool { return true }

// stringLineOrRuneIterator splits a string into its lines ("CRLF
// splitting" scenario): CRLF and bare LF both terminate a line, a
// final terminator does not start an extra empty line, and a blank
// line before it survives as an empty string, so
// 'abc\r\ndef\r\nxyz\r\n\r\n'.lines() -> ('abc','def','xyz','').
type stringLineOrRuneIterator struct {
	lines      []string
	front, back int
}

func newStringLineOrRuneIterator(s string) *stringLineOrRuneIterator {
	lines := splitLines(s)
	return &stringLineOrRuneIterator{lines: lines, front: 0, back: len(lines)}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			end := i
			if end > start && s[end-1] == '\r' {
				end--
			}
			lines = append(lines, s[start:end])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func (it *stringLineOrRuneIterator) Next() (Output, bool) {
	if it.front >= it.back {
		return Output{}, false
	}
	v := it.lines[it.front]
	it.front++
	return Val(Str(v)), true
}

func (it *stringLineOrRuneIterator) NextBack() (Output, bool) {
	if it.front >= it.back {
		return Output{}, false
	}
	it.back--
	return Val(Str(it.lines[it.back])), true
}

func (it *stringLineOrRuneIterator) SizeHint() SizeHint { return Bounded(it.back - it.front) }

func (it *stringLineOrRuneIterator) MakeCopy() Iterator {
	cp := *it
	return &cp
}

func (it *stringLineOrRuneIterator) SupportsNextBack() bool { return true }
