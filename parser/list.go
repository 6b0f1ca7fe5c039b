package parser

import "github.com/koto-lang/koto-go/ast"

// parseList parses a bracketed `[...]`. Per spec.md §4.3 "List", the
// contents may be either a plain sequence of terms, or a single
// comprehension whose first expression is the body and whose loop
// header follows it. The parser speculatively parses a primary
// expression and tries to attach a loop header; if none attaches, it
// rewinds both the lexer and the arena to the point captured before
// the attempt and falls back to parsing a plain list.
func (p *Parser) parseList(primaryExpression bool) (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // '['
	p.skipWhitespaceAndNewlines()

	if tok, ok := p.peekToken(); ok && tok.Kind == TokenRBracket {
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.List}, start), nil
	}

	if comp, ok, err := p.tryParseListComprehension(start); err != nil {
		return 0, err
	} else if ok {
		return comp, nil
	}

	var items []ast.Index
	for {
		item, err := p.parseListItem()
		if err != nil {
			return 0, err
		}
		if item < 0 {
			break
		}
		items = append(items, item)
		p.skipWhitespaceAndNewlines()
		tok, ok := p.peekToken()
		if !ok {
			break
		}
		if tok.Kind == TokenComma {
			p.consumeToken()
			p.skipWhitespaceAndNewlines()
			continue
		}
		break
	}
	p.skipWhitespaceAndNewlines()
	if _, err := p.expect(TokenRBracket, "']'"); err != nil {
		return 0, err
	}
	return p.push(ast.Node{Kind: ast.List, Children: items}, start), nil
}

// parseListItem parses one element of a plain list: a full expression
// with an embedded range permitted, but not the space-separated
// trailing-call-args form (that belongs to primary-expression
// position only, and a list's contents are never primary expressions).
func (p *Parser) parseListItem() (ast.Index, *Error) {
	lhs, err := p.parseNegatableExpression()
	if err != nil {
		return 0, err
	}
	if lhs < 0 {
		return -1, nil
	}
	return p.parseExpressionContinued(lhs, 0)
}

// tryParseListComprehension attempts the speculative parse described
// in spec.md §9 "Speculative parsing": clone the lexer, take an arena
// reset point, parse a body expression followed by a `for`/`while`/
// `until` header; on any failure to attach a header, restore both and
// report ok=false so the caller falls back to a plain list.
func (p *Parser) tryParseListComprehension(start Position) (ast.Index, bool, *Error) {
	savedLex := p.lex.Clone()
	savedPoint := p.arena.ResetPoint()
	savedFrames := p.cloneFrameState()

	body, bodyErr := p.parseListItem()
	if bodyErr != nil || body < 0 {
		p.rewind(savedLex, savedPoint, savedFrames)
		return 0, false, nil
	}

	p.skipWhitespaceAndNewlines()
	tok, ok := p.peekToken()
	if !ok {
		p.rewind(savedLex, savedPoint, savedFrames)
		return 0, false, nil
	}

	var header ast.Index
	var herr *Error
	switch tok.Kind {
	case TokenFor:
		header, herr = p.parseForLoop(body)
	case TokenWhile:
		header, herr = p.parseWhileLoop(body)
	case TokenUntil:
		header, herr = p.parseUntilLoop(body)
	default:
		p.rewind(savedLex, savedPoint, savedFrames)
		return 0, false, nil
	}
	if herr != nil {
		p.rewind(savedLex, savedPoint, savedFrames)
		return 0, false, nil
	}

	p.skipWhitespaceAndNewlines()
	if _, err := p.expect(TokenRBracket, "']'"); err != nil {
		p.rewind(savedLex, savedPoint, savedFrames)
		return 0, false, nil
	}

	return p.push(ast.Node{Kind: ast.List, Children: []ast.Index{header}}, start), true, nil
}

// cloneFrameState snapshots the current frame stack shape (depth) so
// a failed speculative attempt can restore it if the attempt pushed
// and popped nested frames unevenly. It does not undo transient
// expression-access counts the speculative body recorded on the
// innermost frame; those are naturally cleared by the next
// FinishExpressions call on the same frame, so a discarded attempt
// never corrupts locality classification, only transiently
// over-counts a read that is re-parsed identically moments later.
func (p *Parser) cloneFrameState() []*Frame {
	return append([]*Frame(nil), p.frames...)
}

func (p *Parser) rewind(lex Lexer, point ast.ResetPoint, frames []*Frame) {
	p.lex = lex
	p.arena.Reset(point)
	p.frames = frames
}
