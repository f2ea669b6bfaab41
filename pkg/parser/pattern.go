package parser

import (
	"strconv"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/token"
)

func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternPrimary()

	if !p.at(token.PIPE) {
		return first
	}

	alts := []ast.Pattern{first}

	for {
		if _, ok := p.accept(token.PIPE); !ok {
			break
		}

		alts = append(alts, p.parsePatternPrimary())
	}

	return &ast.OrPattern{Alternatives: alts}
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	switch p.cur().Kind {
	case token.IDENT:
		if p.cur().Lexeme == "_" {
			p.advance()
			return &ast.WildcardPattern{}
		}

		return p.parseIdentPattern()
	case token.AMP:
		p.advance()
		mut := false

		if _, ok := p.accept(token.KW_MUT); ok {
			mut = true
		}

		return &ast.RefPattern{Mut: mut, Pattern: p.parsePatternPrimary()}
	case token.LPAREN:
		p.advance()

		var elems []ast.Pattern
		for !p.at(token.RPAREN) {
			elems = append(elems, p.parsePattern())

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.RPAREN)

		return &ast.TuplePattern{Elements: elems}
	case token.INT_LITERAL, token.FLOAT_LITERAL, token.STRING_LITERAL, token.KW_TRUE, token.KW_FALSE, token.MINUS:
		return p.parseLiteralOrRangePattern()
	default:
		p.errorf("H0103", "unexpected token %s in pattern", p.cur().Kind)
		p.advance()

		return &ast.WildcardPattern{}
	}
}

func (p *Parser) parseLiteralOrRangePattern() ast.Pattern {
	lo := p.parseLiteral()

	if p.at(token.DOTDOT) || p.at(token.DOTDOTEQ) {
		inclusive := p.at(token.DOTDOTEQ)
		p.advance()
		hi := p.parseLiteral()

		return &ast.RangePattern{Low: lo, High: hi, Inclusive: inclusive}
	}

	return &ast.LiteralPattern{Lit: lo}
}

func (p *Parser) parseLiteral() ast.Literal {
	neg := false
	if _, ok := p.accept(token.MINUS); ok {
		neg = true
	}

	switch p.cur().Kind {
	case token.INT_LITERAL:
		t := p.advance()
		n, _ := strconv.ParseInt(t.Lexeme, 0, 64)

		if neg {
			n = -n
		}

		return ast.Literal{Kind: ast.LitInt, Raw: n, Suffix: t.Suffix}
	case token.FLOAT_LITERAL:
		t := p.advance()
		f, _ := strconv.ParseFloat(t.Lexeme, 64)

		if neg {
			f = -f
		}

		return ast.Literal{Kind: ast.LitFloat, Raw: f, Suffix: t.Suffix}
	case token.STRING_LITERAL:
		t := p.advance()
		return ast.Literal{Kind: ast.LitString, Raw: t.Lexeme}
	case token.KW_TRUE:
		p.advance()
		return ast.Literal{Kind: ast.LitBool, Raw: true}
	case token.KW_FALSE:
		p.advance()
		return ast.Literal{Kind: ast.LitBool, Raw: false}
	default:
		p.errorf("H0104", "expected literal in pattern, found %s", p.cur().Kind)
		p.advance()

		return ast.Literal{Kind: ast.LitInt, Raw: int64(0)}
	}
}

// parseIdentPattern handles the overlapping grammar of bind patterns,
// struct patterns and enum-variant patterns, all of which start with an
// identifier (possibly `::`-qualified).
func (p *Parser) parseIdentPattern() ast.Pattern {
	name := p.advance().Lexeme

	segments := []string{name}

	// A pattern has no other use for `.`, so it is accepted here on equal
	// footing with `::` to qualify an enum variant (`Opt.Some`, `Opt::Some`).
	for p.at(token.COLONCOLON) || p.at(token.DOT) {
		p.advance()
		segments = append(segments, p.expect(token.IDENT).Lexeme)
	}

	switch {
	case p.at(token.LPAREN):
		p.advance()

		var elems []ast.Pattern
		for !p.at(token.RPAREN) {
			elems = append(elems, p.parsePattern())

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.RPAREN)

		enumName, variant := splitVariantPath(segments)

		return &ast.VariantPattern{Enum: enumName, Variant: variant, Elements: elems}
	case p.at(token.LBRACE):
		p.advance()

		var fields []ast.FieldPattern

		rest := false

		for !p.at(token.RBRACE) {
			if _, ok := p.accept(token.DOTDOT); ok {
				rest = true
				break
			}

			fname := p.expect(token.IDENT).Lexeme

			var sub ast.Pattern
			if _, ok := p.accept(token.COLON); ok {
				sub = p.parsePattern()
			} else {
				sub = &ast.BindPattern{Name: fname}
			}

			fields = append(fields, ast.FieldPattern{Name: fname, Pattern: sub})

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.RBRACE)

		return &ast.StructPattern{Name: segments[len(segments)-1], Fields: fields, Rest: rest}
	case len(segments) > 1:
		enumName, variant := splitVariantPath(segments)
		return &ast.VariantPattern{Enum: enumName, Variant: variant}
	case p.at(token.AT):
		p.advance()
		sub := p.parsePatternPrimary()

		return &ast.BindPattern{Name: name, SubPattern: sub}
	default:
		return &ast.BindPattern{Name: name}
	}
}

func splitVariantPath(segments []string) (enumName, variant string) {
	if len(segments) == 1 {
		return "", segments[0]
	}

	return segments[len(segments)-2], segments[len(segments)-1]
}
