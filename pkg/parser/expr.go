package parser

import (
	"strconv"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/lexer"
	"github.com/home-lang/home/pkg/token"
	"github.com/home-lang/home/pkg/util/source"
)


// parseExpr is the Pratt loop: parse a prefix term, then repeatedly fold
// in infix/postfix operators whose precedence is at least minPrec, using
// precedence climbing.
func (p *Parser) parseExpr(minPrec precedence) ast.Expr {
	left := p.parsePrefix()

	for {
		if assignOk, compound := p.tryAssignOp(); assignOk {
			if minPrec > precAssign {
				break
			}

			value := p.parseExpr(precAssign)
			left = &ast.AssignExpr{Target: left, CompoundOp: compound, Value: value}

			continue
		}

		left = p.tryPostfix(left)

		k := p.cur().Kind

		prec, isBin := binPrec[k]
		if !isBin || prec < minPrec {
			break
		}

		op := binOps[k]
		p.advance()

		next := prec + 1
		if k == token.DOTDOT || k == token.DOTDOTEQ {
			// Range bounds are optional in pattern position but required
			// here; left-associativity doesn't apply to ranges.
			next = precRange
		}

		right := p.parseExpr(next)
		left = &ast.BinaryExpr{Op: op, LHS: left, RHS: right}
	}

	return left
}

func (p *Parser) tryAssignOp() (bool, *ast.BinOp) {
	if _, ok := p.accept(token.EQ); ok {
		return true, nil
	}

	if op, ok := assignCompound[p.cur().Kind]; ok {
		p.advance()
		o := op

		return true, &o
	}

	return false, nil
}

// tryPostfix repeatedly applies postfix operators (call, index, field
// access, `?`, `as`) to an already-parsed operand, which binds them
// tighter than any binary operator.
func (p *Parser) tryPostfix(left ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LPAREN:
			p.advance()

			var args []ast.Expr
			for !p.at(token.RPAREN) {
				args = append(args, p.parseExpr(precAssign+1))

				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}

			p.expect(token.RPAREN)
			left = &ast.CallExpr{Callee: left, Args: args}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpr(precLowest)
			p.expect(token.RBRACKET)
			left = &ast.IndexExpr{Base: left, Index: idx}
		case token.DOT:
			p.advance()

			if p.at(token.INT_LITERAL) {
				t := p.advance()
				n, _ := strconv.Atoi(t.Lexeme)
				left = &ast.TupleIndexExpr{Base: left, Index: n}

				continue
			}

			name := p.expect(token.IDENT).Lexeme

			if p.at(token.LPAREN) {
				p.advance()

				var args []ast.Expr
				for !p.at(token.RPAREN) {
					args = append(args, p.parseExpr(precAssign+1))

					if _, ok := p.accept(token.COMMA); !ok {
						break
					}
				}

				p.expect(token.RPAREN)
				left = &ast.MethodCallExpr{Receiver: left, Method: name, Args: args}

				continue
			}

			left = &ast.FieldExpr{Base: left, Field: name}
		case token.QUESTION:
			p.advance()
			left = &ast.TryExpr{Value: left}
		case token.KW_AS:
			p.advance()
			left = &ast.CastExpr{Value: left, Target: p.parseType()}
		default:
			return left
		}
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.MINUS:
		p.advance()
		return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpNeg, Operand: p.parseExpr(precUnary)}
	case token.BANG:
		p.advance()
		return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpNot, Operand: p.parseExpr(precUnary)}
	case token.TILDE:
		p.advance()
		return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpBitNot, Operand: p.parseExpr(precUnary)}
	case token.STAR:
		p.advance()
		return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpDeref, Operand: p.parseExpr(precUnary)}
	case token.AMP:
		p.advance()

		if _, ok := p.accept(token.KW_MUT); ok {
			return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpRefMut, Operand: p.parseExpr(precUnary)}
		}

		return &ast.UnaryExpr{ID: p.newID(start), Op: ast.OpRef, Operand: p.parseExpr(precUnary)}
	case token.INT_LITERAL:
		t := p.advance()
		n, _ := strconv.ParseInt(t.Lexeme, 0, 64)

		return &ast.Literal{ID: p.newID(start), Kind: ast.LitInt, Raw: n, Suffix: t.Suffix}
	case token.FLOAT_LITERAL:
		t := p.advance()
		f, _ := strconv.ParseFloat(t.Lexeme, 64)

		return &ast.Literal{ID: p.newID(start), Kind: ast.LitFloat, Raw: f, Suffix: t.Suffix}
	case token.STRING_LITERAL:
		t := p.advance()
		return p.parseStringLiteral(t)
	case token.RAW_STRING_LITERAL:
		t := p.advance()
		return &ast.Literal{ID: p.newID(start), Kind: ast.LitString, Raw: t.Lexeme}
	case token.KW_TRUE:
		p.advance()
		return &ast.Literal{ID: p.newID(start), Kind: ast.LitBool, Raw: true}
	case token.KW_FALSE:
		p.advance()
		return &ast.Literal{ID: p.newID(start), Kind: ast.LitBool, Raw: false}
	case token.IDENT:
		return p.parseIdentOrStruct()
	case token.KW_SELF:
		p.advance()
		return &ast.Ident{ID: p.newID(start), Name: "self"}
	case token.LPAREN:
		p.advance()

		if _, ok := p.accept(token.RPAREN); ok {
			return &ast.TupleLiteralExpr{ID: p.newID(start)}
		}

		first := p.parseExpr(precLowest)

		if _, ok := p.accept(token.COMMA); ok {
			elems := []ast.Expr{first}

			for !p.at(token.RPAREN) {
				elems = append(elems, p.parseExpr(precLowest))

				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}

			p.expect(token.RPAREN)

			return &ast.TupleLiteralExpr{ID: p.newID(start), Elements: elems}
		}

		p.expect(token.RPAREN)

		return first
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return &ast.BlockExpr{ID: p.newID(start), Block: p.parseBlock()}
	case token.KW_IF:
		return p.parseIfExpr()
	case token.KW_MATCH:
		return p.parseMatchExpr()
	case token.KW_WHILE:
		return p.parseWhileExpr("")
	case token.KW_FOR:
		return p.parseForExpr("")
	case token.KW_LOOP:
		return p.parseLoopExpr("")
	case token.KW_AWAIT:
		p.advance()
		return &ast.AwaitExpr{ID: p.newID(start), Value: p.parseExpr(precUnary)}
	case token.PIPE, token.PIPEPIPE:
		return p.parseClosure(false)
	case token.KW_MOVE:
		p.advance()
		return p.parseClosure(true)
	default:
		p.errorf("H0102", "unexpected token %s in expression", p.cur().Kind)
		p.advance()

		return &ast.Literal{ID: p.newID(start), Kind: ast.LitInt, Raw: int64(0)}
	}
}

func (p *Parser) parseStringLiteral(t token.Token) ast.Expr {
	if !hasInterpolation(t.Lexeme) {
		return &ast.Literal{Kind: ast.LitString, Raw: t.Lexeme}
	}

	chunks, exprs := decomposeInterpolation(t.Lexeme)

	return &ast.InterpStringExpr{Chunks: chunks, Exprs: exprs}
}

// hasInterpolation reports whether a string literal's raw text contains a
// `${...}` interpolation marker.
func hasInterpolation(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '$' && s[i+1] == '{' {
			return true
		}
	}

	return false
}

// decomposeInterpolation splits a string literal containing `${expr}`
// markers into literal text chunks and the embedded sub-expressions,
// re-lexing and re-parsing each embedded expression independently.
func decomposeInterpolation(s string) ([]string, []ast.Expr) {
	var chunks []string

	var exprSrcs []string

	i := 0
	last := 0

	for i < len(s) {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			chunks = append(chunks, s[last:i])

			depth := 1
			j := i + 2

			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}

				if depth > 0 {
					j++
				}
			}

			exprSrcs = append(exprSrcs, s[i+2:j])
			i = j + 1
			last = i

			continue
		}

		i++
	}

	chunks = append(chunks, s[last:])

	exprs := make([]ast.Expr, len(exprSrcs))
	for i, src := range exprSrcs {
		exprs[i] = parseSubExpr(src)
	}

	return chunks, exprs
}

// parseSubExpr parses a fragment of Home source as a standalone
// expression, used to lower interpolated-string sub-expressions. Lexical
// errors in the fragment are discarded here; the interpolation construct
// is expected to hold well-formed expressions (malformed ones surface at
// type-checking time as an unresolved identifier).
func parseSubExpr(src string) ast.Expr {
	f := source.NewSourceFile("<interpolation>", []byte(src))
	sub := &Parser{file: f, spans: make(map[ast.NodeID]source.Span), diags: diag.NewCollector()}
	toks, _ := lexer.Tokenize(f)
	sub.toks = toks

	return sub.parseExpr(precLowest)
}

func (p *Parser) parseIdentOrStruct() ast.Expr {
	start := p.cur().Span
	name := p.advance().Lexeme

	segments := []string{name}

	for p.at(token.COLONCOLON) {
		p.advance()
		segments = append(segments, p.expect(token.IDENT).Lexeme)
	}

	base := ast.Expr(&ast.Ident{ID: p.newID(start), Name: name})
	if len(segments) > 1 {
		base = &ast.PathExpr{ID: p.newID(start), Segments: segments}
	}

	if p.at(token.LBRACE) && p.structLiteralAllowed() {
		return p.parseStructLiteral(segments[len(segments)-1])
	}

	return base
}

// structLiteralAllowed disambiguates `Name { ... }` as a struct literal
// rather than a following block (e.g. the condition of an `if`, which
// cannot itself be immediately followed by `{`). This mirrors the
// restriction many expression-oriented languages place on struct literals
// in condition position.
func (p *Parser) structLiteralAllowed() bool {
	return !p.suppressStruct
}

func (p *Parser) parseStructLiteral(name string) ast.Expr {
	start := p.cur().Span
	p.expect(token.LBRACE)

	var fields []ast.FieldInit

	var spread ast.Expr

	for !p.at(token.RBRACE) {
		if _, ok := p.accept(token.DOTDOT); ok {
			spread = p.parseExpr(precLowest)
			break
		}

		fname := p.expect(token.IDENT).Lexeme

		var val ast.Expr
		if _, ok := p.accept(token.COLON); ok {
			val = p.parseExpr(precLowest)
		} else {
			val = &ast.Ident{Name: fname}
		}

		fields = append(fields, ast.FieldInit{Name: fname, Value: val})

		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}

	p.expect(token.RBRACE)

	return &ast.StructLiteralExpr{ID: p.newID(start), Name: name, Fields: fields, Spread: spread}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.cur().Span
	p.expect(token.LBRACKET)

	if _, ok := p.accept(token.RBRACKET); ok {
		return &ast.ArrayLiteralExpr{ID: p.newID(start)}
	}

	first := p.parseExpr(precLowest)

	if _, ok := p.accept(token.SEMI); ok {
		count := p.parseExpr(precLowest)
		p.expect(token.RBRACKET)

		return &ast.ArrayLiteralExpr{ID: p.newID(start), Elements: []ast.Expr{first}, Repeat: first, Count: count}
	}

	elems := []ast.Expr{first}

	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}

		if p.at(token.RBRACKET) {
			break
		}

		elems = append(elems, p.parseExpr(precLowest))
	}

	p.expect(token.RBRACKET)

	return &ast.ArrayLiteralExpr{ID: p.newID(start), Elements: elems}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.expect(token.KW_IF)

	cond := p.parseExprNoStructLiteral()
	then := p.parseBlock()

	var els ast.Expr
	if _, ok := p.accept(token.KW_ELSE); ok {
		if p.at(token.KW_IF) {
			els = p.parseIfExpr()
		} else {
			els = &ast.BlockExpr{Block: p.parseBlock()}
		}
	}

	return &ast.IfExpr{ID: p.newID(start), Cond: cond, Then: then, Else: els}
}

// parseExprNoStructLiteral parses a condition expression where a bare
// `{` must be treated as the start of the following block, not a struct
// literal.
func (p *Parser) parseExprNoStructLiteral() ast.Expr {
	// The combinator parser always attempts a struct literal when it sees
	// `Name {`; suppressing that here keeps `if cond { ... }` unambiguous.
	return p.parseExprSuppressingStructLiteral(precLowest)
}

func (p *Parser) parseExprSuppressingStructLiteral(minPrec precedence) ast.Expr {
	saved := p.suppressStruct
	p.suppressStruct = true
	e := p.parseExpr(minPrec)
	p.suppressStruct = saved

	return e
}

func (p *Parser) parseWhileExpr(label string) ast.Expr {
	start := p.cur().Span
	p.expect(token.KW_WHILE)
	cond := p.parseExprNoStructLiteral()
	body := p.parseBlock()

	return &ast.WhileExpr{ID: p.newID(start), Label: label, Cond: cond, Body: body}
}

func (p *Parser) parseForExpr(label string) ast.Expr {
	start := p.cur().Span
	p.expect(token.KW_FOR)
	pat := p.parsePattern()
	p.expect(token.KW_IN)
	iterable := p.parseExprNoStructLiteral()
	body := p.parseBlock()

	return &ast.ForExpr{ID: p.newID(start), Label: label, Pattern: pat, Iterable: iterable, Body: body}
}

func (p *Parser) parseLoopExpr(label string) ast.Expr {
	start := p.cur().Span
	p.expect(token.KW_LOOP)
	body := p.parseBlock()

	return &ast.LoopExpr{ID: p.newID(start), Label: label, Body: body}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur().Span
	p.expect(token.KW_MATCH)
	scrutinee := p.parseExprNoStructLiteral()
	p.expect(token.LBRACE)

	var arms []ast.MatchArm

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		pat := p.parsePattern()

		var guard ast.Expr
		if _, ok := p.accept(token.KW_IF); ok {
			guard = p.parseExpr(precLowest)
		}

		p.expect(token.FATARROW)
		body := p.parseExpr(precLowest)

		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})

		if _, ok := p.accept(token.COMMA); !ok && !p.at(token.RBRACE) {
			break
		}
	}

	p.expect(token.RBRACE)

	return &ast.MatchExpr{ID: p.newID(start), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseClosure(move bool) ast.Expr {
	start := p.cur().Span

	var params []ast.Param

	if _, ok := p.accept(token.PIPEPIPE); ok {
		// no parameters
	} else {
		p.expect(token.PIPE)

		for !p.at(token.PIPE) {
			name := p.expect(token.IDENT).Lexeme

			var typ ast.Type
			if _, ok := p.accept(token.COLON); ok {
				typ = p.parseType()
			}

			params = append(params, ast.Param{Name: name, Type: typ})

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.PIPE)
	}

	body := p.parseExpr(precAssign + 1)

	return &ast.ClosureExpr{ID: p.newID(start), Params: params, Body: body, Move: move}
}
