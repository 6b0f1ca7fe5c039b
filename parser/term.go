package parser

import (
	"github.com/koto-lang/koto-go/ast"
	"github.com/koto-lang/koto-go/constant"
)

// parseTerm parses a single term: a literal, a keyword-led
// construct, a parenthesized group, a list/map, or an identifier
// lookup chain. primaryExpression controls whether trailing
// space-separated call arguments are accepted (spec.md §4.3: "A
// lookup is ... continuing with any mix of .id, [index_or_range],
// (args), and (for primary expressions) space-separated call
// arguments on the same source line").
func (p *Parser) parseTerm(primaryExpression bool) (ast.Index, *Error) {
	start := p.here()
	tok, ok := p.peekToken()
	if !ok {
		return -1, nil
	}

	switch tok.Kind {
	case TokenTrue:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.BoolTrue}, start), nil
	case TokenFalse:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.BoolFalse}, start), nil
	case TokenNumber:
		p.consumeToken()
		return p.parseNumber(tok, start), nil
	case TokenString:
		p.consumeToken()
		idx := p.constants.AddString(tok.Text)
		return p.push(ast.Node{Kind: ast.Str, ConstIndex: idx}, start), nil
	case TokenUnderscore:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Wildcard}, start), nil
	case TokenId:
		return p.parseIdExpression(primaryExpression)
	case TokenPipe:
		return p.parseFunction()
	case TokenLParen:
		return p.parseParenthesizedTermOrFunction()
	case TokenLBracket:
		return p.parseList(primaryExpression)
	case TokenLBrace:
		return p.parseMapInline()
	case TokenIf:
		return p.parseIfExpression()
	case TokenMatch:
		return p.parseMatchExpression()
	case TokenFor:
		return p.parseForLoop(-1)
	case TokenWhile:
		return p.parseWhileLoop(-1)
	case TokenUntil:
		return p.parseUntilLoop(-1)
	case TokenLoop:
		return p.parseLoopBlock()
	case TokenBreak:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Break}, start), nil
	case TokenContinue:
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Continue}, start), nil
	case TokenReturn:
		return p.parseReturn()
	case TokenYield:
		return p.parseYield()
	case TokenDebug:
		return p.parseDebugExpression()
	case TokenImport, TokenFrom:
		return p.parseImportExpression()
	case TokenExport:
		return p.parseExportExpression()
	case TokenTry:
		return p.parseTryExpression()
	case TokenCopy:
		p.consumeToken()
		p.skipWhitespaceAndNewlines()
		inner, err := p.parseTerm(primaryExpression)
		if err != nil {
			return 0, err
		}
		if inner < 0 {
			return 0, syntaxErrorf(start, "expected an expression after 'copy'")
		}
		return p.push(ast.Node{Kind: ast.CopyExpression, Inner: inner, HasInner: true}, start), nil
	case TokenType:
		p.consumeToken()
		p.skipWhitespaceAndNewlines()
		inner, err := p.parseTerm(primaryExpression)
		if err != nil {
			return 0, err
		}
		if inner < 0 {
			return 0, syntaxErrorf(start, "expected an expression after 'type'")
		}
		return p.push(ast.Node{Kind: ast.TypeOf, Inner: inner, HasInner: true}, start), nil
	}

	return -1, nil
}

// parseIdExpression parses an identifier reference, incrementing the
// current frame's transient access counter (spec.md §4.3) before
// extending it into a postfix Lookup chain if one follows.
func (p *Parser) parseIdExpression(primaryExpression bool) (ast.Index, *Error) {
	start := p.here()
	tok, _ := p.consumeToken()
	idIndex := p.constants.AddString(tok.Text)

	fr, ferr := p.frame()
	if ferr != nil {
		return 0, ferr
	}
	fr.IncrementExpressionAccess(idIndex)

	root := p.push(ast.Node{Kind: ast.Id, ConstIndex: idIndex}, start)
	return p.parseLookup(root, idIndex, primaryExpression)
}

// parseLookup extends root with any immediately-following `.id`,
// `[index]`, `(args)` steps, and — for primary expressions only —
// same-line space-separated call arguments, per spec.md §4.3.
func (p *Parser) parseLookup(root ast.Index, rootID constant.Index, primaryExpression bool) (ast.Index, *Error) {
	start := Position{Start: p.arena.Node(root).Span.Start}
	var steps []ast.LookupStep

	for {
		tok, ok := p.lex.Peek()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokenDot:
			p.consumeToken()
			idTok, err := p.expect(TokenId, "an identifier after '.'")
			if err != nil {
				return 0, err
			}
			steps = append(steps, ast.LookupStep{Kind: ast.StepID, Id: p.constants.AddString(idTok.Text)})
			continue
		case TokenLBracket:
			p.consumeToken()
			p.skipWhitespaceAndNewlines()
			idx, err := p.parseExpressionStart()
			if err != nil {
				return 0, err
			}
			p.skipWhitespaceAndNewlines()
			if _, err := p.expect(TokenRBracket, "']'"); err != nil {
				return 0, err
			}
			steps = append(steps, ast.LookupStep{Kind: ast.StepIndex, IndexExpr: idx})
			continue
		case TokenLParen:
			args, err := p.parseParenthesizedArgs()
			if err != nil {
				return 0, err
			}
			steps = append(steps, ast.LookupStep{Kind: ast.StepCall, Args: args})
			continue
		}
		break
	}

	if primaryExpression && len(steps) == 0 {
		if args, ok, err := p.tryParseTrailingCallArgs(); err != nil {
			return 0, err
		} else if ok {
			steps = append(steps, ast.LookupStep{Kind: ast.StepCall, Args: args})
		}
	}

	if len(steps) == 0 {
		return root, nil
	}

	full := append([]ast.LookupStep{{Kind: ast.StepRoot, Root: root}}, steps...)
	return p.push(ast.Node{Kind: ast.Lookup, Steps: full}, start), nil
}

// tryParseTrailingCallArgs parses Koto's space-separated call syntax
// (`f x, y` with no parentheses), valid only at primary-expression
// position and only when something that can start a term follows on
// the same logical line.
func (p *Parser) tryParseTrailingCallArgs() ([]ast.Index, bool, *Error) {
	tok, ok := p.lex.Peek()
	if !ok || tok.Kind != TokenWhitespace {
		return nil, false, nil
	}
	next, ok := p.peekToken()
	if !ok || !startsTerm(next.Kind) {
		return nil, false, nil
	}

	var args []ast.Index
	p.skipTriviaOnLine()
	for {
		arg, err := p.parseExpressionStart()
		if err != nil {
			return nil, false, err
		}
		if arg < 0 {
			break
		}
		args = append(args, arg)
		if tok, ok := p.peekToken(); ok && tok.Kind == TokenComma {
			p.consumeToken()
			p.skipTriviaOnLine()
			continue
		}
		break
	}
	return args, len(args) > 0, nil
}

func (p *Parser) skipTriviaOnLine() {
	for {
		tok, ok := p.lex.Peek()
		if !ok || !isTrivia(tok.Kind) {
			return
		}
		p.lex.Next()
	}
}

func startsTerm(k TokenKind) bool {
	switch k {
	case TokenId, TokenNumber, TokenString, TokenTrue, TokenFalse, TokenUnderscore,
		TokenPipe, TokenLParen, TokenLBracket, TokenLBrace, TokenMinus, TokenNot,
		TokenIf, TokenMatch, TokenCopy, TokenType, TokenRange, TokenRangeInclusive:
		return true
	}
	return false
}

func (p *Parser) parseParenthesizedArgs() ([]ast.Index, *Error) {
	p.consumeToken() // '('
	p.skipWhitespaceAndNewlines()
	var args []ast.Index
	if tok, ok := p.peekToken(); ok && tok.Kind == TokenRParen {
		p.consumeToken()
		return args, nil
	}
	for {
		arg, err := p.parseExpressionStart()
		if err != nil {
			return nil, err
		}
		if arg < 0 {
			break
		}
		args = append(args, arg)
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
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseParenthesizedTermOrFunction disambiguates `(expr)` from a
// function literal root that a caller may attach `|args| body` to —
// in this grammar a bare parenthesized group is always just a group;
// function literals are introduced by a leading `|`.
func (p *Parser) parseParenthesizedTermOrFunction() (ast.Index, *Error) {
	p.consumeToken() // '('
	p.skipWhitespaceAndNewlines()
	if tok, ok := p.peekToken(); ok && tok.Kind == TokenRParen {
		start := p.here()
		p.consumeToken()
		return p.push(ast.Node{Kind: ast.Empty}, start), nil
	}
	inner, err := p.parsePrimaryExpressions()
	if err != nil {
		return 0, err
	}
	p.skipWhitespaceAndNewlines()
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return 0, err
	}
	return inner, nil
}

func (p *Parser) parseReturn() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken()
	if tok, ok := p.lex.Peek(); ok && tok.Kind == TokenWhitespace {
		if next, ok := p.peekToken(); ok && startsTerm(next.Kind) {
			p.skipTriviaOnLine()
			expr, err := p.parseExpressionStart()
			if err != nil {
				return 0, err
			}
			if expr >= 0 {
				return p.push(ast.Node{Kind: ast.ReturnExpression, Inner: expr, HasInner: true}, start), nil
			}
		}
	}
	return p.push(ast.Node{Kind: ast.Return}, start), nil
}

func (p *Parser) parseYield() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken()
	fr, ferr := p.frame()
	if ferr != nil {
		return 0, ferr
	}
	fr.ContainsYield = true
	p.skipTriviaOnLine()
	expr, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	if expr < 0 {
		return 0, syntaxErrorf(p.here(), "expected an expression after 'yield'")
	}
	return p.push(ast.Node{Kind: ast.Yield, Inner: expr, HasInner: true}, start), nil
}

func (p *Parser) parseDebugExpression() (ast.Index, *Error) {
	start := p.here()
	p.consumeToken()
	p.skipTriviaOnLine()
	exprStart := p.lex.SourcePosition()
	expr, err := p.parseExpressionStart()
	if err != nil {
		return 0, err
	}
	if expr < 0 {
		return 0, syntaxErrorf(p.here(), "expected an expression after 'debug'")
	}
	exprEnd := p.lex.SourcePosition()
	text := ""
	if exprEnd > exprStart && exprEnd <= len(p.lex.Source()) {
		text = p.lex.Source()[exprStart:exprEnd]
	}
	return p.push(ast.Node{Kind: ast.Debug, Inner: expr, HasInner: true, ExpressionString: text}, start), nil
}
