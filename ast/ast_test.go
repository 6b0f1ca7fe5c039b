package ast

import "testing"

func TestPushReturnsMonotonicIndices(t *testing.T) {
	a := WithCapacity(4)
	i0 := a.Push(Node{Kind: Number0}, Span{Start: 0, End: 1})
	i1 := a.Push(Node{Kind: Number1}, Span{Start: 1, End: 2})
	if i1 <= i0 {
		t.Errorf("expected indices to increase with each Push, got %d then %d", i0, i1)
	}
	if a.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", a.Len())
	}
}

func TestResetTruncatesTail(t *testing.T) {
	a := WithCapacity(4)
	a.Push(Node{Kind: Number0}, Span{})
	point := a.ResetPoint()
	a.Push(Node{Kind: Number1}, Span{})
	a.Push(Node{Kind: BoolTrue}, Span{})
	if a.Len() != 3 {
		t.Fatalf("expected 3 nodes before reset, got %d", a.Len())
	}
	a.Reset(point)
	if a.Len() != 1 {
		t.Errorf("expected reset to truncate back to 1 node, got %d", a.Len())
	}
}

func TestIdempotentResetReparse(t *testing.T) {
	// Simulates a speculative construct: parse it once, reset, parse the
	// same shape again, and confirm the arena ends up identical both
	// times (spec.md §8.1 "Idempotent reset").
	build := func(a *Arena) Index {
		lhs := a.Push(Node{Kind: Number0}, Span{Start: 0, End: 1})
		rhs := a.Push(Node{Kind: Number1}, Span{Start: 2, End: 3})
		return a.Push(Node{Kind: BinaryOp, BinOp: OpAdd, BinLHS: lhs, BinRHS: rhs}, Span{Start: 0, End: 3})
	}

	a := WithCapacity(8)
	point := a.ResetPoint()
	first := build(a)
	firstLen := a.Len()
	firstNode := *a.Node(first)

	a.Reset(point)
	second := build(a)
	secondLen := a.Len()
	secondNode := *a.Node(second)

	if first != second {
		t.Errorf("expected the same index to be reused after reset, got %d then %d", first, second)
	}
	if firstLen != secondLen {
		t.Errorf("expected the same node count after reset, got %d then %d", firstLen, secondLen)
	}
	if firstNode.Kind != secondNode.Kind || firstNode.BinLHS != secondNode.BinLHS || firstNode.BinRHS != secondNode.BinRHS {
		t.Errorf("expected byte-equivalent nodes after reset, got %+v and %+v", firstNode, secondNode)
	}
}

func TestEntryPointRoundTrip(t *testing.T) {
	a := WithCapacity(1)
	idx := a.Push(Node{Kind: MainBlock}, Span{})
	a.SetEntryPoint(idx)
	if a.EntryPoint() != idx {
		t.Errorf("expected EntryPoint to return what was set, got %d want %d", a.EntryPoint(), idx)
	}
	if a.Node(a.EntryPoint()).Kind != MainBlock {
		t.Errorf("expected the entry point to address a MainBlock node")
	}
}

func TestChildIndicesStayWithinBounds(t *testing.T) {
	a := WithCapacity(4)
	leaf := a.Push(Node{Kind: Number0}, Span{})
	block := a.Push(Node{Kind: Block, Children: []Index{leaf}}, Span{})
	node := a.Node(block)
	for _, child := range node.Children {
		if int(child) >= a.Len() {
			t.Errorf("expected every child index to be < arena length %d, got %d", a.Len(), child)
		}
	}
}
