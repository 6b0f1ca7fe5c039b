package koto

import "testing"

func drainNumbers(it Iterator) []float64 {
	var got []float64
	for {
		o, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, o.Value.Number)
	}
	return got
}

func drainStrings(it Iterator) []string {
	var got []string
	for {
		o, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, o.Value.Str)
	}
	return got
}

func assertFloats(t *testing.T, got []float64, want ...float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("index %d: expected %v, got %v", i, w, got[i])
		}
	}
}

func assertStrings(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("index %d: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestMakeIteratorOverRangeAscending(t *testing.T) {
	it, err := MakeIterator(MakeRange(RangeValue{Start: 1, End: 4}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertFloats(t, drainNumbers(it), 1, 2, 3)
}

func TestMakeIteratorOverRangeAscendingInclusive(t *testing.T) {
	it, err := MakeIterator(MakeRange(RangeValue{Start: 1, End: 4, Inclusive: true}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertFloats(t, drainNumbers(it), 1, 2, 3, 4)
}

func TestMakeIteratorOverRangeDescending(t *testing.T) {
	// Start > End yields descending, independent of Inclusive
	// (SPEC_FULL.md "Supplemented features" #7).
	it, err := MakeIterator(MakeRange(RangeValue{Start: 4, End: 1}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertFloats(t, drainNumbers(it), 4, 3, 2)
}

func TestMakeIteratorOverRangeDescendingInclusive(t *testing.T) {
	it, err := MakeIterator(MakeRange(RangeValue{Start: 4, End: 1, Inclusive: true}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertFloats(t, drainNumbers(it), 4, 3, 2, 1)
}

func TestRangeIteratorNextBackMirrorsNext(t *testing.T) {
	it, err := MakeIterator(MakeRange(RangeValue{Start: 0, End: 5}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	first, ok := it.Next()
	if !ok || first.Value.Number != 0 {
		t.Fatalf("expected first value 0, got %v", first)
	}
	last, ok := it.NextBack()
	if !ok || last.Value.Number != 4 {
		t.Fatalf("expected last value 4, got %v", last)
	}
	assertFloats(t, drainNumbers(it), 1, 2, 3)
}

func TestRangeIteratorCopyIsIndependent(t *testing.T) {
	it, err := MakeIterator(MakeRange(RangeValue{Start: 0, End: 3}))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	if _, ok := it.Next(); !ok {
		t.Fatal("expected a first value")
	}
	cp := it.MakeCopy()
	assertFloats(t, drainNumbers(it), 1, 2)
	assertFloats(t, drainNumbers(cp), 1, 2)
}

func TestMakeIteratorOverStringSplitsLines(t *testing.T) {
	it, err := MakeIterator(Str("abc\ndef\nxyz"))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertStrings(t, drainStrings(it), "abc", "def", "xyz")
}

func TestMakeIteratorOverStringSplitsCRLFLines(t *testing.T) {
	// spec.md §8.3 scenario 4: CRLF and bare LF both terminate a
	// line, and a trailing blank line survives as an empty string.
	it, err := MakeIterator(Str("abc\r\ndef\r\nxyz\r\n\r\n"))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertStrings(t, drainStrings(it), "abc", "def", "xyz", "")
}

func TestMakeIteratorOverEmptyStringYieldsNothing(t *testing.T) {
	it, err := MakeIterator(Str(""))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected an empty string to yield no lines")
	}
}

func TestMakeIteratorOverStringNoTrailingNewlineHasNoEmptyLine(t *testing.T) {
	it, err := MakeIterator(Str("abc\ndef"))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	assertStrings(t, drainStrings(it), "abc", "def")
}

func TestStringLineIteratorNextBackMirrorsNext(t *testing.T) {
	it, err := MakeIterator(Str("a\nb\nc"))
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	last, ok := it.NextBack()
	if !ok || last.Value.Str != "c" {
		t.Fatalf("expected last line %q, got %v", "c", last)
	}
	assertStrings(t, drainStrings(it), "a", "b")
}

func TestMakeIteratorOverUnsupportedKindErrors(t *testing.T) {
	if _, err := MakeIterator(Bool(true)); err == nil {
		t.Fatal("expected a Bool value to be rejected as non-iterable")
	}
}
