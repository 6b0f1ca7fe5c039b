package parser

import "github.com/koto-lang/koto-go/ast"

// parseMapInline parses `{k: v, k, ...}` (spec.md §4.3 "Map"). A bare
// key with no `:` is shorthand for "value of the identically-named
// local", represented by a MapEntry with HasValue=false.
func (p *Parser) parseMapInline() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken() // '{'
	p.skipWhitespaceAndNewlines()

	var entries []ast.MapEntry
	if tok, ok := p.peekToken(); ok && tok.Kind == TokenRBrace {
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Map}, start), nil
	}

	for {
		entry, err := p.parseMapEntryInline()
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry)
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
	if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
		return 0, err
	}
	return p.push(ast.Node{Kind: ast.Map, MapEntries: entries}, start), nil
}

func (p *Parser) parseMapEntryInline() (ast.MapEntry, *Error) {
	keyTok, ok := p.peekToken()
	if !ok || (keyTok.Kind != TokenId && keyTok.Kind != TokenString) {
		return ast.MapEntry{}, syntaxErrorf(p.here(), "expected a map key")
	}
	p.consumeToken()
	var keyIdx = p.constants.AddString(keyTok.Text)

	if tok, ok := p.peekToken(); ok && tok.Kind == TokenColon {
		p.consumeToken()
		p.skipWhitespaceAndNewlines()
		val, err := p.parseExpressionStart()
		if err != nil {
			return ast.MapEntry{}, err
		}
		if val < 0 {
			return ast.MapEntry{}, syntaxErrorf(p.here(), "expected a value after ':'")
		}
		return ast.MapEntry{Key: keyIdx, Value: val, HasValue: true}, nil
	}

	if fr, ferr := p.frame(); ferr == nil {
		fr.IncrementExpressionAccess(keyIdx)
	}
	return ast.MapEntry{Key: keyIdx}, nil
}

// parseMapBlock parses the block form: `key:` followed either by an
// inline value or a newline and an indented value, repeated at a
// single indent level.
func (p *Parser) parseMapBlock() (ast.Index, *Error) {
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

	var entries []ast.MapEntry
	for {
		p.skipBlankLines(blockIndent)
		if _, ok := p.peekToken(); !ok || p.lex.CurrentIndent() != blockIndent {
			break
		}
		keyTok, err := p.expectIDOrString()
		if err != nil {
			return 0, err
		}
		keyIdx := p.constants.AddString(keyTok)
		if _, err := p.expect(TokenColon, "':' after map key"); err != nil {
			return 0, err
		}
		val, err := p.parseInlineOrIndentedBody()
		if err != nil {
			return 0, err
		}
		if val < 0 {
			return 0, syntaxErrorf(p.here(), "expected a value for map key")
		}
		entries = append(entries, ast.MapEntry{Key: keyIdx, Value: val, HasValue: true})
	}

	return p.push(ast.Node{Kind: ast.Map, MapEntries: entries}, start), nil
}

func (p *Parser) expectIDOrString() (string, *Error) {
	tok, ok := p.peekToken()
	if !ok || (tok.Kind != TokenId && tok.Kind != TokenString) {
		return "", syntaxErrorf(p.here(), "expected an identifier or string map key")
	}
	p.consumeToken()
	return tok.Text, nil
}
