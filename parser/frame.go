package parser

import "github.com/koto-lang/koto-go/constant"

// Frame is the parser-side record of one lexical scope, grounded in
// the original's `struct Frame` (original_source/src/parser/src/parser.rs
// lines 51-127) and generalized from Rust's HashSet/HashMap to Go's
// map[K]struct{}/map[K]int idiom, matching the set-of-locals style the
// teacher uses for its own `scope`/`symbol` bookkeeping (interp.go).
type Frame struct {
	TopLevel bool

	// ContainsYield is set when a `yield` is parsed anywhere in this
	// frame's body; it marks the enclosing Function as a generator.
	ContainsYield bool

	idsAssignedInScope map[constant.Index]struct{}
	accessedNonLocals  map[constant.Index]struct{}

	// expressionIDAccesses is transient: cleared after every complete
	// top-level expression by FinishExpressions.
	expressionIDAccesses map[constant.Index]int
}

// NewFrame returns an empty Frame ready to track one lexical scope.
func NewFrame(topLevel bool) *Frame {
	return &Frame{
		TopLevel:              topLevel,
		idsAssignedInScope:    make(map[constant.Index]struct{}),
		accessedNonLocals:     make(map[constant.Index]struct{}),
		expressionIDAccesses:  make(map[constant.Index]int),
	}
}

// LocalCount returns |ids_assigned_in_scope \ accessed_non_locals|,
// the invariant from spec.md §3.3.
func (f *Frame) LocalCount() int {
	count := 0
	for id := range f.idsAssignedInScope {
		if _, captured := f.accessedNonLocals[id]; !captured {
			count++
		}
	}
	return count
}

// AssignedInScope reports whether id has been assigned as a local in
// this frame.
func (f *Frame) AssignedInScope(id constant.Index) bool {
	_, ok := f.idsAssignedInScope[id]
	return ok
}

// MarkAssigned records id as assigned in this frame's scope.
func (f *Frame) MarkAssigned(id constant.Index) {
	f.idsAssignedInScope[id] = struct{}{}
}

// AccessedNonLocals returns the frame's captures as a stable, sorted
// slice of constant indices.
func (f *Frame) AccessedNonLocals() []constant.Index {
	out := make([]constant.Index, 0, len(f.accessedNonLocals))
	for id := range f.accessedNonLocals {
		out = append(out, id)
	}
	sortIndices(out)
	return out
}

// AddNestedAccessedNonLocals re-increments this frame's transient
// counter for every capture of a just-closed nested frame, so that a
// capture propagates outward through enclosing functions unless an
// intervening frame assigns the identifier locally first
// (spec.md §4.3 "Driver").
func (f *Frame) AddNestedAccessedNonLocals(nested *Frame) {
	for id := range nested.accessedNonLocals {
		f.IncrementExpressionAccess(id)
	}
}

// IncrementExpressionAccess records a read of id within the
// expression currently being parsed.
func (f *Frame) IncrementExpressionAccess(id constant.Index) {
	f.expressionIDAccesses[id]++
}

// DecrementExpressionAccess undoes one read of id, used when an
// identifier that was just parsed as a bare expression turns out to
// be the target of a plain `=` assignment (the read never happened).
func (f *Frame) DecrementExpressionAccess(id constant.Index) {
	if n, ok := f.expressionIDAccesses[id]; ok && n > 0 {
		f.expressionIDAccesses[id] = n - 1
	}
}

// FinishExpressions walks the transient access map: any identifier
// whose count is still positive and which was not assigned locally in
// this frame is declared a non-local access, then the map is cleared.
// This is the single-pass locality algorithm of spec.md §4.3.
func (f *Frame) FinishExpressions() {
	for id, count := range f.expressionIDAccesses {
		if count > 0 {
			if _, assigned := f.idsAssignedInScope[id]; !assigned {
				f.accessedNonLocals[id] = struct{}{}
			}
		}
	}
	f.expressionIDAccesses = make(map[constant.Index]int)
}

func sortIndices(s []constant.Index) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
