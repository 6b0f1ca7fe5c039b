package parser

import (
	"github.com/koto-lang/koto-go/ast"
	"github.com/koto-lang/koto-go/constant"
)

// parseIndentedBlock parses a sequence of statements indented more
// deeply than the current line, stopping once a line returns to (or
// below) the enclosing indent (spec.md §4.3 "Indentation rules": "A
// block is either indented beyond the enclosing construct's indent,
// or a single inline expression...").
func (p *Parser) parseIndentedBlock() (ast.Index, *Error) {
	start := p.here()
	baseIndent := p.lex.CurrentIndent()

	tok, ok := p.lex.Peek()
	if !ok || (tok.Kind != TokenNewLine && tok.Kind != TokenNewLineIndented) {
		return -1, nil
	}
	p.lex.Next()
	if p.lex.CurrentIndent() <= baseIndent {
		return -1, nil
	}
	blockIndent := p.lex.CurrentIndent()

	var stmts []ast.Index
	for {
		p.skipBlankLines(blockIndent)
		if _, ok := p.peekToken(); !ok {
			break
		}
		if p.lex.CurrentIndent() > blockIndent {
			return 0, syntaxErrorf(p.here(), "unexpected additional indentation")
		}
		if p.lex.CurrentIndent() < blockIndent {
			break
		}
		stmt, err := p.parseLine()
		if err != nil {
			return 0, err
		}
		if stmt < 0 {
			break
		}
		stmts = append(stmts, stmt)

		tok, ok := p.lex.Peek()
		if !ok {
			break
		}
		if tok.Kind != TokenNewLine && tok.Kind != TokenNewLineIndented && tok.Kind != TokenNewLineSkipped {
			break
		}
	}

	return blockOf(p, stmts, start), nil
}

func (p *Parser) skipBlankLines(blockIndent int) {
	for {
		tok, ok := p.lex.Peek()
		if !ok {
			return
		}
		switch tok.Kind {
		case TokenNewLine, TokenNewLineIndented, TokenNewLineSkipped,
			TokenWhitespace, TokenCommentSingle, TokenCommentMulti:
			p.lex.Next()
		default:
			return
		}
	}
}

// parseInlineOrIndentedBody parses the block that follows a keyword
// such as `then`, `else`, a loop header, etc: either a single inline
// expression on the same line, or an indented block on following
// lines.
func (p *Parser) parseInlineOrIndentedBody() (ast.Index, *Error) {
	if tok, ok := p.lex.Peek(); ok && tok.Kind == TokenWhitespace {
		if next, ok := p.peekToken(); ok && startsTerm(next.Kind) {
			p.skipTriviaOnLine()
			return p.parseLine()
		}
	}
	return p.parseIndentedBlock()
}

// --- function literals --------------------------------------------------

// parseFunction parses `|args| body`, entering a new Frame for the
// duration of the argument list and body, and folding the closed-over
// Frame's captures/locals into the Function node on exit
// (spec.md §4.3 "Function", §3.3 "Driver").
func (p *Parser) parseFunction() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // leading '|'

	p.pushFrame(false)
	fr, _ := p.frame()

	argList, err := p.parseFunctionArgs()
	if err != nil {
		p.popFrame()
		return 0, err
	}
	for _, a := range argList {
		fr.MarkAssigned(a)
	}

	body, err := p.parseInlineOrIndentedBody()
	if err != nil {
		p.popFrame()
		return 0, err
	}
	if body < 0 {
		body = p.push(ast.Node{Kind: ast.Empty}, p.here())
	}

	closed := p.popFrame()
	return p.push(ast.Node{
		Kind:             ast.Function,
		Args:             argList,
		LocalCount:       closed.LocalCount(),
		AccessedNonLocal: closed.AccessedNonLocals(),
		Body:             body,
		IsGenerator:      closed.ContainsYield,
	}, start), nil
}

func (p *Parser) parseFunctionArgs() ([]constIndexAlias, *Error) {
	var out []constIndexAlias
	for {
		tok, ok := p.peekToken()
		if !ok {
			return nil, syntaxErrorf(p.here(), "unterminated function argument list")
		}
		if tok.Kind == TokenPipe {
			p.consumeToken()
			return out, nil
		}
		if tok.Kind == TokenId {
			p.consumeToken()
			out = append(out, p.constants.AddString(tok.Text))
		} else if tok.Kind == TokenUnderscore {
			p.consumeToken()
			out = append(out, p.constants.AddString("_"))
		} else {
			return nil, syntaxErrorf(p.here(), "expected an argument name or '|'")
		}
		if next, ok := p.peekToken(); ok && next.Kind == TokenComma {
			p.consumeToken()
			continue
		}
	}
}

// --- if / match ---------------------------------------------------------

func (p *Parser) parseIfExpression() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // 'if'
	p.skipTriviaOnLine()
	cond, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	if cond < 0 {
		return 0, syntaxErrorf(p.here(), "expected a condition after 'if'")
	}
	p.skipTriviaOnLine()
	if _, err := p.expect(TokenThen, "'then'"); err != nil {
		// block form: body is indented, no 'then'
		thenBody, berr := p.parseIndentedBlock()
		if berr != nil {
			return 0, berr
		}
		return p.finishIf(start, cond, thenBody)
	}
	p.skipTriviaOnLine()
	thenBody, err := p.parseInlineOrIndentedBody()
	if err != nil {
		return 0, err
	}
	return p.finishIf(start, cond, thenBody)
}

func (p *Parser) finishIf(start Position, cond, thenBody ast.Index) (ast.Index, *Error) {
	var elseIfs []ast.ElseIf
	var elseBody ast.Index
	hasElse := false

	for {
		p.skipBlankLines(0)
		tok, ok := p.peekToken()
		if !ok {
			break
		}
		if tok.Kind == TokenElseIf {
			p.consumeToken()
			p.skipTriviaOnLine()
			c, err := p.parseExpressionStart()
			if err != nil {
				return 0, err
			}
			p.skipTriviaOnLine()
			p.consumeOptional(TokenThen)
			body, err := p.parseInlineOrIndentedBody()
			if err != nil {
				return 0, err
			}
			elseIfs = append(elseIfs, ast.ElseIf{Condition: c, Body: body})
			continue
		}
		if tok.Kind == TokenElse {
			p.consumeToken()
			body, err := p.parseInlineOrIndentedBody()
			if err != nil {
				return 0, err
			}
			elseBody = body
			hasElse = true
		}
		break
	}

	return p.push(ast.Node{
		Kind:      ast.If,
		Condition: cond,
		Then:      thenBody,
		ElseIfs:   elseIfs,
		Else:      elseBody,
		HasElse:   hasElse,
	}, start), nil
}

func (p *Parser) consumeOptional(k TokenKind) bool {
	if tok, ok := p.peekToken(); ok && tok.Kind == k {
		p.consumeToken()
		return true
	}
	return false
}

func (p *Parser) parseMatchExpression() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // 'match'
	p.skipTriviaOnLine()
	expr, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	if expr < 0 {
		return 0, syntaxErrorf(p.here(), "expected an expression after 'match'")
	}

	baseIndent := p.lex.CurrentIndent()
	tok, ok := p.lex.Peek()
	if !ok || (tok.Kind != TokenNewLine && tok.Kind != TokenNewLineIndented) {
		return 0, syntaxErrorf(p.here(), "expected indented match arms")
	}
	p.lex.Next()
	if p.lex.CurrentIndent() <= baseIndent {
		return 0, syntaxErrorf(p.here(), "expected indented match arms")
	}
	armIndent := p.lex.CurrentIndent()

	var arms []ast.MatchArm
	for {
		p.skipBlankLines(armIndent)
		if _, ok := p.peekToken(); !ok || p.lex.CurrentIndent() < armIndent {
			break
		}
		arm, err := p.parseMatchArm()
		if err != nil {
			return 0, err
		}
		arms = append(arms, arm)
	}

	return p.push(ast.Node{Kind: ast.MatchNode, MatchExpr: expr, Arms: arms}, start), nil
}

func (p *Parser) parseMatchArm() (ast.MatchArm, *Error) {
	var arm ast.MatchArm

	pats, err := p.parseMatchPatternList()
	if err != nil {
		return arm, err
	}
	arm.Patterns = pats

	for {
		tok, ok := p.peekToken()
		if !ok || tok.Kind != TokenOr {
			break
		}
		p.consumeToken()
		alt, err := p.parseMatchPatternList()
		if err != nil {
			return arm, err
		}
		arm.Alternatives = append(arm.Alternatives, alt)
	}

	if tok, ok := p.peekToken(); ok && tok.Kind == TokenIf {
		p.consumeToken()
		p.skipTriviaOnLine()
		guard, err := p.parseExpressionStart()
		if err != nil {
			return arm, err
		}
		arm.Guard = guard
		arm.HasGuard = true
	}

	p.skipTriviaOnLine()
	p.consumeOptional(TokenThen)
	body, err := p.parseInlineOrIndentedBody()
	if err != nil {
		return arm, err
	}
	arm.Body = body
	return arm, nil
}

func (p *Parser) parseMatchPatternList() ([]ast.Index, *Error) {
	var pats []ast.Index
	for {
		pat, err := p.parseMatchPattern()
		if err != nil {
			return nil, err
		}
		pats = append(pats, pat)
		if tok, ok := p.peekToken(); ok && tok.Kind == TokenComma {
			p.consumeToken()
			continue
		}
		break
	}
	return pats, nil
}

// parseMatchPattern parses one pattern: a literal, identifier (bound
// in the arm's scope), wildcard, list, or the empty tuple.
func (p *Parser) parseMatchPattern() (ast.Index, *Error) {
	start := p.here()
	tok, ok := p.peekToken()
	if !ok {
		return 0, syntaxErrorf(start, "expected a match pattern")
	}
	switch tok.Kind {
	case TokenUnderscore:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Wildcard}, start), nil
	case TokenId:
		p.consumeToken()
		idx := p.constants.AddString(tok.Text)
		if fr, err := p.frame(); err == nil {
			fr.MarkAssigned(idx)
		}
		return p.push(ast.Node{Kind: ast.Id, ConstIndex: idx}, start), nil
	case TokenLBracket:
		return p.parseList(false)
	case TokenLParen:
		p.consumeToken()
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return 0, err
		}
		return p.push(ast.Node{Kind: ast.Empty}, start), nil
	default:
		return p.parseTerm(false)
	}
}

// --- loops ---------------------------------------------------------------

func (p *Parser) parseForLoop(inlineBody ast.Index) (ast.Index, *Error) {
	start := p.here()
	if inlineBody >= 0 {
		start = Position{Start: p.arena.Node(inlineBody).Span.Start}
	}
	p.consumeToken() // 'for'
	p.skipTriviaOnLine()

	var args []constIndexAlias
	for {
		idTok, err := p.expect(TokenId, "a loop variable")
		if err != nil {
			return 0, err
		}
		idx := p.constants.AddString(idTok.Text)
		args = append(args, idx)
		if fr, ferr := p.frame(); ferr == nil {
			fr.MarkAssigned(idx)
		}
		if tok, ok := p.peekToken(); ok && tok.Kind == TokenComma {
			p.consumeToken()
			p.skipTriviaOnLine()
			continue
		}
		break
	}

	if _, err := p.expect(TokenIn, "'in'"); err != nil {
		return 0, err
	}
	p.skipTriviaOnLine()

	var ranges []ast.Index
	for {
		r, err := p.parseExpressionStart()
		if err != nil {
			return 0, err
		}
		if r < 0 {
			return 0, syntaxErrorf(p.here(), "expected an iterable expression after 'in'")
		}
		ranges = append(ranges, r)
		if tok, ok := p.peekToken(); ok && tok.Kind == TokenComma {
			p.consumeToken()
			p.skipTriviaOnLine()
			continue
		}
		break
	}

	var cond ast.Index = -1
	if tok, ok := p.peekToken(); ok && tok.Kind == TokenIf {
		p.consumeToken()
		p.skipTriviaOnLine()
		c, err := p.parseExpressionStart()
		if err != nil {
			return 0, err
		}
		cond = c
	}

	body := inlineBody
	if body < 0 {
		b, err := p.parseInlineOrIndentedBody()
		if err != nil {
			return 0, err
		}
		body = b
	}

	n := ast.Node{Kind: ast.For, ForArgs: args, ForRanges: ranges, Body: body}
	if cond >= 0 {
		n.ForCondition = cond
		n.HasForCond = true
	}
	return p.push(n, start), nil
}

func (p *Parser) parseWhileLoop(inlineBody ast.Index) (ast.Index, *Error) {
	start := p.here()
	if inlineBody >= 0 {
		start = Position{Start: p.arena.Node(inlineBody).Span.Start}
	}
	p.consumeToken() // 'while'
	p.skipTriviaOnLine()
	cond, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	body := inlineBody
	if body < 0 {
		b, err := p.parseInlineOrIndentedBody()
		if err != nil {
			return 0, err
		}
		body = b
	}
	return p.push(ast.Node{Kind: ast.While, Condition: cond, Body: body}, start), nil
}

func (p *Parser) parseUntilLoop(inlineBody ast.Index) (ast.Index, *Error) {
	start := p.here()
	if inlineBody >= 0 {
		start = Position{Start: p.arena.Node(inlineBody).Span.Start}
	}
	p.consumeToken() // 'until'
	p.skipTriviaOnLine()
	cond, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	body := inlineBody
	if body < 0 {
		b, err := p.parseInlineOrIndentedBody()
		if err != nil {
			return 0, err
		}
		body = b
	}
	return p.push(ast.Node{Kind: ast.Until, Condition: cond, Body: body}, start), nil
}

func (p *Parser) parseLoopBlock() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // 'loop'
	body, err := p.parseIndentedBlock()
	if err != nil {
		return 0, err
	}
	return p.push(ast.Node{Kind: ast.Loop, Body: body}, start), nil
}

// --- try / import / export ------------------------------------------------

func (p *Parser) parseTryExpression() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // 'try'
	tryBlock, err := p.parseIndentedBlock()
	if err != nil {
		return 0, err
	}

	p.skipBlankLines(0)
	if _, err := p.expect(TokenCatch, "'catch'"); err != nil {
		return 0, err
	}
	p.skipTriviaOnLine()
	catchTok, err := p.expect(TokenId, "a catch identifier")
	if err != nil {
		return 0, err
	}
	catchArg := p.constants.AddString(catchTok.Text)
	if fr, ferr := p.frame(); ferr == nil {
		fr.MarkAssigned(catchArg)
	}
	catchBlock, err := p.parseIndentedBlock()
	if err != nil {
		return 0, err
	}

	n := ast.Node{
		Kind:       ast.Try,
		TryBlock:   tryBlock,
		CatchArg:   catchArg,
		HasCatchArg: true,
		CatchBlock: catchBlock,
	}

	p.skipBlankLines(0)
	if tok, ok := p.peekToken(); ok && tok.Kind == TokenFinally {
		p.consumeToken()
		finallyBlock, err := p.parseIndentedBlock()
		if err != nil {
			return 0, err
		}
		n.FinallyBlock = finallyBlock
		n.HasFinally = true
	}

	return p.push(n, start), nil
}

// parseImportExpression parses both `import a.b c` and
// `from a.b import c d` (spec.md §4.3 "Import"). The last segment of
// each item becomes a local in the enclosing frame.
func (p *Parser) parseImportExpression() (ast.Index, *Error) {
	start := p.here()
	var from []constIndexAlias

	if tok, _ := p.peekToken(); tok.Kind == TokenFrom {
		p.consumeToken()
		p.skipTriviaOnLine()
		segs, err := p.parseDottedPath()
		if err != nil {
			return 0, err
		}
		from = segs
		p.skipTriviaOnLine()
		if _, err := p.expect(TokenImport, "'import'"); err != nil {
			return 0, err
		}
	} else {
		if _, err := p.expect(TokenImport, "'import'"); err != nil {
			return 0, err
		}
	}
	p.skipTriviaOnLine()

	items, err := p.consumeImportItems()
	if err != nil {
		return 0, err
	}

	return p.push(ast.Node{Kind: ast.Import, From: from, Items: items}, start), nil
}

func (p *Parser) parseExportExpression() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // 'export'
	p.skipTriviaOnLine()
	expr, err := p.parsePrimaryExpressions()
	if err != nil {
		return 0, err
	}
	if expr < 0 {
		return 0, syntaxErrorf(p.here(), "expected an expression after 'export'")
	}
	if n := p.arena.Node(expr); n.Kind == ast.Assign {
		exported := *n
		exported.Exported = true
		return p.push(exported, start), nil
	}
	return p.push(ast.Node{Kind: ast.Export, Inner: expr, HasInner: true}, start), nil
}

func (p *Parser) parseDottedPath() ([]constIndexAlias, *Error) {
	var segs []constIndexAlias
	for {
		tok, err := p.expect(TokenId, "an identifier")
		if err != nil {
			return nil, err
		}
		segs = append(segs, p.constants.AddString(tok.Text))
		if next, ok := p.peekToken(); ok && next.Kind == TokenDot {
			p.consumeToken()
			continue
		}
		break
	}
	return segs, nil
}

func (p *Parser) consumeImportItems() ([]ast.ImportItem, *Error) {
	var items []ast.ImportItem
	for {
		segs, err := p.parseDottedPath()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.ImportItem{Segments: segs})
		if fr, ferr := p.frame(); ferr == nil {
			fr.MarkAssigned(segs[len(segs)-1])
		}
		tok, ok := p.lex.Peek()
		if !ok || tok.Kind != TokenWhitespace {
			break
		}
		next, ok := p.peekToken()
		if !ok || next.Kind != TokenId {
			break
		}
		p.skipTriviaOnLine()
	}
	return items, nil
}

type constIndexAlias = constant.Index
