// Package ast defines Koto's AST node set and the append-only arena
// that stores it. Children are referenced by Index rather than by
// pointer, which sidesteps cycles entirely and makes speculative
// parsing's backtracking a matter of truncating a slice.
package ast

import "github.com/koto-lang/koto-go/constant"

// Index addresses a single node in an Arena. Indices are monotonic:
// node i's children, if any, may reference any index (conventionally
// lower, since nodes are built bottom-up), and i itself is stable
// until a Reset logically invalidates it.
type Index int

// Span locates a node in the original source, in byte offsets.
type Span struct {
	Start int
	End   int
}

// Kind tags the variant stored in a Node.
type Kind uint8

const (
	BoolTrue Kind = iota
	BoolFalse
	Number0
	Number1
	Number
	Str
	Id
	Empty
	Wildcard
	List
	Map
	RangeNode
	RangeFrom
	RangeTo
	RangeFull
	Num2
	Num4
	Negate
	TypeOf
	CopyExpression
	Expressions
	Block
	MainBlock
	Function
	Call
	Lookup
	BinaryOp
	If
	MatchNode
	For
	Loop
	While
	Until
	Assign
	MultiAssign
	Return
	ReturnExpression
	Break
	Continue
	Yield
	Debug
	Import
	Try
	Export
)

// BinOp enumerates the binary operators produced by the expression
// grammar's precedence climb.
type BinOp uint8

const (
	OpOr BinOp = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
)

// AssignOp enumerates the assignment operators; Set is the plain `=`
// that can produce a MultiAssign and drives locality analysis, the
// rest are compound forms that always read-then-write their target.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSubtract
	AssignMultiply
	AssignDivide
	AssignModulo
)

// MapEntry is one `key: value` pair of a Map node. Value is absent
// (HasValue=false) for inline shorthand `{x}`, meaning "value of the
// identically-named local".
type MapEntry struct {
	Key   constant.Index
	Value Index
	HasValue bool
}

// LookupStep is one element of a Lookup chain.
type LookupStep struct {
	Kind LookupStepKind
	// Root holds the root expression's Index when Kind == StepRoot.
	Root Index
	// Id holds the constant pool index of a `.id` step.
	Id constant.Index
	// Index holds the bracketed index/range expression's Index for a
	// `[...]` step.
	IndexExpr Index
	// Args holds the argument Indexes for a `(...)` call step, or for
	// trailing space-separated primary-expression call arguments.
	Args []Index
}

// LookupStepKind distinguishes the shapes a LookupStep can take.
type LookupStepKind uint8

const (
	StepRoot LookupStepKind = iota
	StepID
	StepIndex
	StepCall
)

// MatchArm is one arm of a Match expression.
type MatchArm struct {
	// Patterns holds the comma-separated patterns for this arm; when
	// len(Alternatives) > 0 each inner slice is an `or`-joined
	// alternative pattern list.
	Patterns     []Index
	Alternatives [][]Index
	Guard        Index // Empty-node Index when no `if` guard is present
	HasGuard     bool
	Body         Index
}

// ElseIf is one `else if` clause of an If expression.
type ElseIf struct {
	Condition Index
	Body      Index
}

// ImportItem is one dotted path inside an Import node's item list.
type ImportItem struct {
	// Segments holds constant-pool indices for each dotted component,
	// e.g. `a.b` -> [a, b].
	Segments []constant.Index
}

// Node is Koto's tagged-variant AST node. Only the fields relevant to
// Kind are meaningful; the rest are zero. This mirrors the teacher's
// single wide `node` struct (interp.go) generalized from a *node/child
// []*node tree to arena indices.
type Node struct {
	Kind Kind
	Span Span

	// Leaf payloads.
	ConstIndex constant.Index // Number, Str, Id
	BinOp      BinOp
	BinLHS     Index // BinaryOp
	BinRHS     Index // BinaryOp
	AssignOp   AssignOp

	// Structural payloads; which are populated depends on Kind.
	Children []Index     // List items, Expressions/Block statements, Num2/Num4 args, Call args
	Inner    Index        // Negate, TypeOf, CopyExpression, ReturnExpression, Yield, Debug.Expression
	HasInner bool

	MapEntries []MapEntry

	RangeStart     Index
	RangeEnd       Index
	RangeHasStart  bool
	RangeHasEnd    bool
	RangeInclusive bool

	// MainBlock / Function
	Body             Index
	LocalCount       int
	Args             []constant.Index
	AccessedNonLocal []constant.Index
	IsGenerator      bool

	// Call
	Function Index
	CallArgs []Index

	// Lookup
	Steps []LookupStep

	// If
	Condition Index
	Then      Index
	ElseIfs   []ElseIf
	Else      Index
	HasElse   bool

	// Match
	MatchExpr Index
	Arms      []MatchArm

	// For
	ForArgs      []constant.Index
	ForRanges    []Index
	ForCondition Index
	HasForCond   bool

	// Assign / MultiAssign
	Target   Index
	Targets  []Index
	Expr     Index
	Exprs    []Index
	Exported bool

	// Debug
	ExpressionString string

	// Import
	From  []constant.Index
	Items []ImportItem

	// Try
	TryBlock     Index
	CatchArg     constant.Index
	HasCatchArg  bool
	CatchBlock   Index
	FinallyBlock Index
	HasFinally   bool
}

// Arena is the append-only, index-addressed AST store. No Node is
// ever mutated after Push; a Reset logically truncates the tail so
// speculative parses can be undone cheaply.
type Arena struct {
	nodes []Node
	entry Index
}

// WithCapacity preallocates room for cap nodes, avoiding reallocation
// during the common case of a single top-to-bottom parse.
func WithCapacity(cap int) *Arena {
	return &Arena{nodes: make([]Node, 0, cap)}
}

// Push appends node with the given span, returning its stable Index.
func (a *Arena) Push(node Node, span Span) Index {
	node.Span = span
	idx := Index(len(a.nodes))
	a.nodes = append(a.nodes, node)
	return idx
}

// Node returns a pointer to the node at idx. The pointer is valid
// until the next Reset that invalidates idx.
func (a *Arena) Node(idx Index) *Node {
	return &a.nodes[idx]
}

// Len reports the number of nodes currently in the arena.
func (a *Arena) Len() int { return len(a.nodes) }

// ResetPoint is an opaque cursor capturing the arena's length at the
// moment it was taken.
type ResetPoint int

// ResetPoint captures the current arena length for later Reset.
func (a *Arena) ResetPoint() ResetPoint { return ResetPoint(len(a.nodes)) }

// Reset truncates the arena back to point, logically invalidating any
// Index >= point. Must only be called with a point taken from this
// same Arena, and only to undo a purely-additive speculative parse.
func (a *Arena) Reset(point ResetPoint) {
	a.nodes = a.nodes[:point]
}

// SetEntryPoint records idx (expected to address a MainBlock) as the
// AST's root.
func (a *Arena) SetEntryPoint(idx Index) { a.entry = idx }

// EntryPoint returns the AST's root node index.
func (a *Arena) EntryPoint() Index { return a.entry }
