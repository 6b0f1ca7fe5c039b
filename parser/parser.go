// Package parser implements Koto's indentation-aware, single-pass
// recursive-descent parser (spec.md §4.3). It drives a Lexer seam
// (lexer.go) to produce a typed AST (package ast) plus a constant
// pool (package constant), performing scope/capture analysis as it
// goes rather than in a separate pass.
package parser

import (
	"fmt"

	"github.com/koto-lang/koto-go/ast"
	"github.com/koto-lang/koto-go/constant"
)

// Parser holds the mutable state of one parse: the lexer cursor, the
// AST arena and constant pool being built, and the stack of lexical
// Frames used for locality/capture analysis (spec.md §3.3, §4.3).
type Parser struct {
	lex       Lexer
	arena     *ast.Arena
	constants *constant.Builder
	frames    []*Frame
}

// Parse drives lex to completion, producing the AST (rooted at a
// MainBlock) and the constant pool it references, or the first
// ParserError encountered. There is no error recovery: the first
// error aborts the parse (spec.md §4.3).
func Parse(lex Lexer) (arena *ast.Arena, pool *constant.Pool, err error) {
	p := &Parser{
		lex:       lex,
		arena:     ast.WithCapacity(256),
		constants: constant.NewBuilder(),
	}

	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*Error); ok {
				if debugPanicOnError {
					panic(perr)
				}
				err = perr
				return
			}
			err = internalErrorf(p.lex.Span(), "panic during parse: %v", r)
		}
	}()

	entry, perr := p.parseMainBlock()
	if perr != nil {
		return nil, nil, perr
	}
	p.arena.SetEntryPoint(entry)
	return p.arena, p.constants.Finish(), nil
}

// ParseSource is a convenience wrapper constructing the default Lexer
// implementation over source; this is the `parse(source)` embedding
// entry point named in spec.md §6.
func ParseSource(source string) (*ast.Arena, *constant.Pool, error) {
	return Parse(NewLexer(source))
}

// --- frame stack -----------------------------------------------------

func (p *Parser) pushFrame(topLevel bool) *Frame {
	f := NewFrame(topLevel)
	p.frames = append(p.frames, f)
	return f
}

// popFrame removes the innermost Frame and, unless it was the
// top-level MainBlock frame, propagates its captures into its parent
// so that a capture of a capture keeps climbing the frame stack
// (spec.md §4.3 "Driver": "re-increment the parent frame's transient
// counter for each of the child's non-locals").
func (p *Parser) popFrame() *Frame {
	n := len(p.frames)
	f := p.frames[n-1]
	p.frames = p.frames[:n-1]
	if len(p.frames) > 0 {
		p.frames[len(p.frames)-1].AddNestedAccessedNonLocals(f)
	}
	return f
}

func (p *Parser) frame() (*Frame, *Error) {
	if len(p.frames) == 0 {
		return nil, internalErrorf(p.lex.Span(), "no active frame")
	}
	return p.frames[len(p.frames)-1], nil
}

// --- token helpers -----------------------------------------------------

func isTrivia(k TokenKind) bool {
	return k == TokenWhitespace || k == TokenCommentSingle || k == TokenCommentMulti
}

// peekToken returns the next non-trivia token without consuming it,
// stopping at (and returning) newline tokens rather than skipping
// them, since indentation structure is significant.
func (p *Parser) peekToken() (Token, bool) {
	for n := 0; ; n++ {
		tok, ok := p.lex.PeekN(n)
		if !ok {
			return Token{}, false
		}
		if !isTrivia(tok.Kind) {
			return tok, true
		}
	}
}

// peekTokenN is like peekToken but returns the nth non-trivia token
// (0-based), used for short lookahead decisions (e.g. distinguishing
// `else` from `else if`, or whether a parenthesized group is the root
// of a function literal).
func (p *Parser) peekTokenN(n int) (Token, bool) {
	seen := 0
	for k := 0; ; k++ {
		tok, ok := p.lex.PeekN(k)
		if !ok {
			return Token{}, false
		}
		if !isTrivia(tok.Kind) {
			if seen == n {
				return tok, true
			}
			seen++
		}
	}
}

// consumeToken advances past and returns the next non-trivia token.
func (p *Parser) consumeToken() (Token, bool) {
	for {
		tok, ok := p.lex.Next()
		if !ok {
			return Token{}, false
		}
		if !isTrivia(tok.Kind) {
			return tok, true
		}
	}
}

// peekUntilNextToken peeks through whitespace, comments, AND
// newlines, returning the first token that starts a new logical line
// — used to decide whether a continuation line begins with an infix
// operator (spec.md §4.3 "Indentation rules").
func (p *Parser) peekUntilNextToken() (Token, bool) {
	for n := 0; ; n++ {
		tok, ok := p.lex.PeekN(n)
		if !ok {
			return Token{}, false
		}
		switch tok.Kind {
		case TokenWhitespace, TokenCommentSingle, TokenCommentMulti,
			TokenNewLine, TokenNewLineIndented, TokenNewLineSkipped:
			continue
		default:
			return tok, true
		}
	}
}

func (p *Parser) skipWhitespaceAndNewlines() {
	for {
		tok, ok := p.lex.Peek()
		if !ok {
			return
		}
		switch tok.Kind {
		case TokenWhitespace, TokenCommentSingle, TokenCommentMulti,
			TokenNewLine, TokenNewLineIndented, TokenNewLineSkipped:
			p.lex.Next()
		default:
			return
		}
	}
}

func (p *Parser) expect(kind TokenKind, what string) (Token, *Error) {
	tok, ok := p.peekToken()
	if !ok || tok.Kind != kind {
		got := "end of input"
		if ok {
			got = fmt.Sprintf("%q", tok.Text)
		}
		return Token{}, syntaxErrorf(p.lex.Span(), "expected %s, got %s", what, got)
	}
	p.consumeToken()
	return tok, nil
}

func (p *Parser) push(node ast.Node, start Position) ast.Index {
	end := p.lex.Span()
	return p.arena.Push(node, ast.Span{Start: start.Start, End: end.End})
}

func (p *Parser) here() Position { return p.lex.Span() }

// --- main block --------------------------------------------------------

// parseMainBlock parses the program entry point: a top-level Frame
// over a sequence of statements, terminated by end-of-input
// (spec.md §4.3 "Contract").
func (p *Parser) parseMainBlock() (ast.Index, *Error) {
	start := p.here()
	p.pushFrame(true)

	var body []ast.Index
	for {
		p.skipWhitespaceAndNewlines()
		if _, ok := p.peekToken(); !ok {
			break
		}
		stmt, err := p.parseLine()
		if err != nil {
			return 0, err
		}
		if stmt < 0 {
			break
		}
		body = append(body, stmt)
	}

	frame := p.popFrame()
	return p.push(ast.Node{
		Kind:       ast.MainBlock,
		Body:       blockOf(p, body, start),
		LocalCount: frame.LocalCount(),
	}, start), nil
}

// blockOf wraps a statement list in a Block node, or returns that
// statement itself if the list has exactly one (so single-statement bodies
// don't pay an extra indirection), matching the teacher's habit of
// collapsing single-child wrapper nodes where cheap to do so.
func blockOf(p *Parser, stmts []ast.Index, start Position) ast.Index {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return p.push(ast.Node{Kind: ast.Block, Children: stmts}, start)
}

// parseLine parses one top-level statement: a comma-separated list of
// primary expressions, optionally forming an Assign/MultiAssign, with
// locality bookkeeping finished at the end (spec.md §4.3).
func (p *Parser) parseLine() (ast.Index, *Error) {
	expr, err := p.parsePrimaryExpressions()
	if err != nil {
		return 0, err
	}
	if expr < 0 {
		return -1, nil
	}
	fr, ferr := p.frame()
	if ferr != nil {
		return 0, ferr
	}
	fr.FinishExpressions()
	return expr, nil
}
