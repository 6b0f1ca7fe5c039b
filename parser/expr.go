package parser

import (
	"strconv"

	"github.com/koto-lang/koto-go/ast"
)

// parsePrimaryExpressions parses a comma-separated list of
// assignment-target-or-expression terms, then checks whether it is
// followed by `=` or a compound assignment operator; if so it becomes
// an Assign/MultiAssign, otherwise an Expressions node (or the bare
// single expression). Grounded on parser.rs parse_primary_expressions
// / parse_assign_expression (lines 302-384, 528-577).
func (p *Parser) parsePrimaryExpressions() (ast.Index, *Error) {
	start := p.here()

	first, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	if first < 0 {
		return -1, nil
	}

	exprs := []ast.Index{first}
	for {
		tok, ok := p.peekToken()
		if !ok || tok.Kind != TokenComma {
			break
		}
		p.consumeToken()
		p.skipWhitespaceAndNewlines()
		next, err := p.parseExpressionStart()
		if err != nil {
			return 0, err
		}
		if next < 0 {
			break
		}
		exprs = append(exprs, next)
	}

	if op, isAssign := p.peekAssignOp(); isAssign {
		return p.parseAssignExpression(exprs, op, start)
	}

	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return p.push(ast.Node{Kind: ast.Expressions, Children: exprs}, start), nil
}

func (p *Parser) peekAssignOp() (ast.AssignOp, bool) {
	tok, ok := p.peekToken()
	if !ok {
		return 0, false
	}
	switch tok.Kind {
	case TokenEquals:
		return ast.AssignSet, true
	case TokenPlusEquals:
		return ast.AssignAdd, true
	case TokenMinusEquals:
		return ast.AssignSubtract, true
	case TokenStarEquals:
		return ast.AssignMultiply, true
	case TokenSlashEquals:
		return ast.AssignDivide, true
	case TokenPercentEquals:
		return ast.AssignModulo, true
	}
	return 0, false
}

// parseAssignExpression implements spec.md §4.3's scope tracking
// algorithm for `=` targets: the target identifier's read that parseExpressionStart
// already counted is undone (decrement), and the identifier is
// recorded as assigned in the current frame. Compound operators never
// touch the counter: the target was, and remains, a genuine read.
func (p *Parser) parseAssignExpression(lhs []ast.Index, op ast.AssignOp, start Position) (ast.Index, *Error) {
	p.consumeToken() // the operator token

	fr, ferr := p.frame()
	if ferr != nil {
		return 0, ferr
	}

	for _, target := range lhs {
		node := p.arena.Node(target)
		switch node.Kind {
		case ast.Id:
			if op == ast.AssignSet {
				fr.DecrementExpressionAccess(node.ConstIndex)
				fr.MarkAssigned(node.ConstIndex)
			}
		case ast.Lookup:
			// Lookup targets never introduce a new local binding.
		default:
			return 0, syntaxErrorf(start, "expected an identifier or lookup as an assignment target")
		}
	}

	p.skipWhitespaceAndNewlines()
	rhs, err := p.parsePrimaryExpressions()
	if err != nil {
		return 0, err
	}
	if rhs < 0 {
		return 0, syntaxErrorf(p.here(), "expected an expression on the right-hand side of an assignment")
	}

	if len(lhs) == 1 {
		return p.push(ast.Node{
			Kind:     ast.Assign,
			Target:   lhs[0],
			AssignOp: op,
			Expr:     rhs,
		}, start), nil
	}

	var rhsExprs []ast.Index
	if rhsNode := p.arena.Node(rhs); rhsNode.Kind == ast.Expressions {
		rhsExprs = rhsNode.Children
	} else {
		rhsExprs = []ast.Index{rhs}
	}
	return p.push(ast.Node{
		Kind:    ast.MultiAssign,
		Targets: lhs,
		Exprs:   rhsExprs,
	}, start), nil
}

// --- operator-precedence climbing --------------------------------------

type precedence struct{ left, right int }

func binOpPrecedence(k TokenKind) (ast.BinOp, precedence, bool) {
	switch k {
	case TokenOr:
		return ast.OpOr, precedence{1, 2}, true
	case TokenAnd:
		return ast.OpAnd, precedence{3, 4}, true
	case TokenEqualsEquals:
		return ast.OpEqual, precedence{8, 7}, true
	case TokenNotEquals:
		return ast.OpNotEqual, precedence{8, 7}, true
	case TokenLess:
		return ast.OpLess, precedence{10, 9}, true
	case TokenLessOrEqual:
		return ast.OpLessOrEqual, precedence{10, 9}, true
	case TokenGreater:
		return ast.OpGreater, precedence{10, 9}, true
	case TokenGreaterOrEqual:
		return ast.OpGreaterOrEqual, precedence{10, 9}, true
	case TokenPlus:
		return ast.OpAdd, precedence{11, 12}, true
	case TokenMinus:
		return ast.OpSubtract, precedence{11, 12}, true
	case TokenStar:
		return ast.OpMultiply, precedence{13, 14}, true
	case TokenSlash:
		return ast.OpDivide, precedence{13, 14}, true
	case TokenPercent:
		return ast.OpModulo, precedence{13, 14}, true
	}
	return 0, precedence{}, false
}

// parseExpressionStart parses one non-assignment expression, i.e. the
// start of the infix precedence climb (spec.md §4.3 grammar layering).
func (p *Parser) parseExpressionStart() (ast.Index, *Error) {
	lhs, err := p.parseNegatableExpression()
	if err != nil {
		return 0, err
	}
	if lhs < 0 {
		return -1, nil
	}
	return p.parseExpressionContinued(lhs, 0)
}

// parseExpressionContinued implements precedence climbing: an infix
// operator at or above minPrecedence is consumed and its RHS is
// parsed recursively at the operator's right-binding power, matching
// spec.md §4.3's "Operator precedence" table (right-associative pairs
// bind tighter on the right so chained comparisons nest naturally).
func (p *Parser) parseExpressionContinued(lhs ast.Index, minPrecedence int) (ast.Index, *Error) {
	start := p.arena.Node(lhs).Span.Start

	for {
		tok, ok := p.peekContinuationToken()
		if !ok {
			return lhs, nil
		}
		op, prec, isOp := binOpPrecedence(tok.Kind)
		if !isOp || prec.left < minPrecedence {
			return lhs, nil
		}
		p.skipWhitespaceAndNewlines()
		p.consumeToken()
		p.skipWhitespaceAndNewlines()

		rhs, err := p.parseNegatableExpression()
		if err != nil {
			return 0, err
		}
		if rhs < 0 {
			if _, ok := p.peekToken(); !ok {
				return 0, syntaxErrorf(p.here(), "expected a right-hand side expression after operator, got end of input")
			}
			return 0, syntaxErrorf(p.here(), "expected a right-hand side expression after operator")
		}
		rhs, err = p.parseExpressionContinued(rhs, prec.right)
		if err != nil {
			return 0, err
		}

		lhs = p.push(ast.Node{Kind: ast.BinaryOp, BinOp: op, BinLHS: lhs, BinRHS: rhs}, Position{Start: start})
	}
}

// peekContinuationToken implements spec.md's "A continuation
// expression on a new line is only accepted when the peek-through
// past whitespace/comments reveals an infix operator." If the next
// non-trivia token is on a fresh (indented or not) line, it is only
// returned when it is itself an operator token.
func (p *Parser) peekContinuationToken() (Token, bool) {
	tok, ok := p.peekToken()
	if !ok {
		return p.peekUntilNextToken()
	}
	switch tok.Kind {
	case TokenNewLine, TokenNewLineIndented, TokenNewLineSkipped:
		if next, ok := p.peekUntilNextToken(); ok {
			if _, _, isOp := binOpPrecedence(next.Kind); isOp {
				return next, true
			}
		}
	}
	return tok, true
}

// parseNegatableExpression parses a possibly-negated/possibly-`not`
// term, then attaches any postfix range.
func (p *Parser) parseNegatableExpression() (ast.Index, *Error) {
	start := p.here()

	if tok, ok := p.peekToken(); ok && tok.Kind == TokenMinus && !p.nextIsWhitespace() {
		p.consumeToken()
		inner, err := p.parseTerm(true)
		if err != nil {
			return 0, err
		}
		if inner < 0 {
			return 0, syntaxErrorf(start, "expected an expression after unary '-'")
		}
		neg := p.push(ast.Node{Kind: ast.Negate, Inner: inner, HasInner: true}, start)
		return p.parseRange(neg)
	}

	if tok, ok := p.peekToken(); ok && tok.Kind == TokenNot {
		p.consumeToken()
		p.skipWhitespaceAndNewlines()
		inner, err := p.parseExpressionStart()
		if err != nil {
			return 0, err
		}
		if inner < 0 {
			return 0, syntaxErrorf(start, "expected an expression after 'not'")
		}
		return p.push(ast.Node{Kind: ast.Negate, Inner: inner, HasInner: true}, start), nil
	}

	term, err := p.parseTerm(true)
	if err != nil {
		return 0, err
	}
	if term < 0 {
		return p.parseRange(-1)
	}
	return p.parseRange(term)
}

// nextIsWhitespace reports whether the raw token immediately
// following the upcoming (not yet consumed) `-` is whitespace — used
// to distinguish unary minus (`-x`, no space) from the binary
// subtraction operator (spec.md §4.3: "Unary - (only when not
// followed by whitespace)").
func (p *Parser) nextIsWhitespace() bool {
	for n := 0; ; n++ {
		tok, ok := p.lex.PeekN(n)
		if !ok {
			return false
		}
		if isTrivia(tok.Kind) {
			continue
		}
		// tok is the '-' token itself; inspect what immediately follows it.
		after, ok := p.lex.PeekN(n + 1)
		return ok && after.Kind == TokenWhitespace
	}
}

// parseRange attaches a postfix `..`/`..=` range operator to lhs
// (which may be the -1 sentinel for a range with no start, e.g. `..y`).
func (p *Parser) parseRange(lhs ast.Index) (ast.Index, *Error) {
	start := p.here()
	if lhs >= 0 {
		start = Position{Start: p.arena.Node(lhs).Span.Start}
	}

	tok, ok := p.peekToken()
	if !ok || (tok.Kind != TokenRange && tok.Kind != TokenRangeInclusive) {
		if lhs < 0 {
			return -1, nil
		}
		return lhs, nil
	}
	inclusive := tok.Kind == TokenRangeInclusive
	p.consumeToken()

	rhs, err := p.parseTerm(true)
	if err != nil {
		return 0, err
	}

	n := ast.Node{Kind: ast.RangeNode, RangeInclusive: inclusive}
	if lhs >= 0 {
		n.RangeStart = lhs
		n.RangeHasStart = true
	}
	if rhs >= 0 {
		n.RangeEnd = rhs
		n.RangeHasEnd = true
	}
	switch {
	case n.RangeHasStart && n.RangeHasEnd:
		n.Kind = ast.RangeNode
	case n.RangeHasStart && !n.RangeHasEnd:
		n.Kind = ast.RangeFrom
	case !n.RangeHasStart && n.RangeHasEnd:
		n.Kind = ast.RangeTo
	default:
		n.Kind = ast.RangeFull
	}
	return p.push(n, start), nil
}

// parseNumber interns tok's text and returns the Number/Number0/
// Number1 node collapsing the two common small-integer literals the
// way the AST's sum type dedicates variants to, per spec.md §3.2.
func (p *Parser) parseNumber(tok Token, start Position) ast.Index {
	if tok.Text == "0" {
		return p.push(ast.Node{Kind: ast.Number0}, start)
	}
	if tok.Text == "1" {
		return p.push(ast.Node{Kind: ast.Number1}, start)
	}
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		f = 0
	}
	idx := p.constants.AddF64(f)
	return p.push(ast.Node{Kind: ast.Number, ConstIndex: idx}, start)
}
