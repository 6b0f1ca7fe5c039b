package parser

import (
	"testing"

	"github.com/koto-lang/koto-go/constant"
)

func TestFrameLocalCountExcludesCaptures(t *testing.T) {
	f := NewFrame(false)
	x := constant.Index(0)
	y := constant.Index(1)
	f.MarkAssigned(x)
	f.MarkAssigned(y)
	f.IncrementExpressionAccess(y)
	f.FinishExpressions()
	// y was read before FinishExpressions saw it was also assigned
	// locally, so it should NOT end up in accessedNonLocals.
	if len(f.AccessedNonLocals()) != 0 {
		t.Errorf("expected no captures, got %v", f.AccessedNonLocals())
	}
	if f.LocalCount() != 2 {
		t.Errorf("expected both x and y to count as locals, got %d", f.LocalCount())
	}
}

func TestFrameCapturesUnassignedAccess(t *testing.T) {
	f := NewFrame(false)
	outer := constant.Index(5)
	f.IncrementExpressionAccess(outer)
	f.FinishExpressions()
	captures := f.AccessedNonLocals()
	if len(captures) != 1 || captures[0] != outer {
		t.Errorf("expected a single capture of %d, got %v", outer, captures)
	}
	if f.LocalCount() != 0 {
		t.Errorf("expected local count 0 for a frame with only a capture, got %d", f.LocalCount())
	}
}

func TestFrameDecrementUndoesAssignmentMisread(t *testing.T) {
	f := NewFrame(false)
	x := constant.Index(0)
	f.IncrementExpressionAccess(x) // x parsed first as a bare read
	f.DecrementExpressionAccess(x) // ...then recognised as an assign target
	f.MarkAssigned(x)
	f.FinishExpressions()
	if len(f.AccessedNonLocals()) != 0 {
		t.Errorf("expected the undone read not to count as a capture, got %v", f.AccessedNonLocals())
	}
}

func TestFrameNestedCapturePropagates(t *testing.T) {
	outerFrame := NewFrame(true)
	innerFrame := NewFrame(false)

	shared := constant.Index(9)
	innerFrame.IncrementExpressionAccess(shared)
	innerFrame.FinishExpressions()

	outerFrame.AddNestedAccessedNonLocals(innerFrame)
	outerFrame.FinishExpressions()

	captures := outerFrame.AccessedNonLocals()
	if len(captures) != 1 || captures[0] != shared {
		t.Errorf("expected the inner frame's capture to propagate outward, got %v", captures)
	}
}

func TestFrameInterveningAssignmentStopsPropagation(t *testing.T) {
	outerFrame := NewFrame(true)
	innerFrame := NewFrame(false)

	shared := constant.Index(3)
	innerFrame.IncrementExpressionAccess(shared)
	innerFrame.FinishExpressions()

	outerFrame.MarkAssigned(shared)
	outerFrame.AddNestedAccessedNonLocals(innerFrame)
	outerFrame.FinishExpressions()

	if len(outerFrame.AccessedNonLocals()) != 0 {
		t.Errorf("expected a local assignment in the enclosing frame to absorb the capture, got %v", outerFrame.AccessedNonLocals())
	}
}

func TestAccessedNonLocalsIsSorted(t *testing.T) {
	f := NewFrame(false)
	ids := []constant.Index{7, 2, 9, 0}
	for _, id := range ids {
		f.IncrementExpressionAccess(id)
	}
	f.FinishExpressions()
	got := f.AccessedNonLocals()
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Fatalf("expected AccessedNonLocals to be sorted, got %v", got)
		}
	}
}
