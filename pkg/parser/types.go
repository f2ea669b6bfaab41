package parser

import (
	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/token"
)

func (p *Parser) parseType() ast.Type {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.AMP:
		p.advance()
		mut := false

		if _, ok := p.accept(token.KW_MUT); ok {
			mut = true
		}

		return &ast.RefType{ID: p.newID(start), Mut: mut, Target: p.parseType()}
	case token.LBRACKET:
		p.advance()
		elem := p.parseType()

		if _, ok := p.accept(token.SEMI); ok {
			length := p.parseExpr(precLowest)
			p.expect(token.RBRACKET)

			return &ast.ArrayType{ID: p.newID(start), Elem: elem, Length: length}
		}

		p.expect(token.RBRACKET)

		return &ast.SliceType{ID: p.newID(start), Elem: elem}
	case token.LPAREN:
		p.advance()

		if _, ok := p.accept(token.RPAREN); ok {
			return &ast.UnitType{ID: p.newID(start)}
		}

		var elems []ast.Type

		for {
			elems = append(elems, p.parseType())

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.RPAREN)

		return &ast.TupleType{ID: p.newID(start), Elements: elems}
	case token.KW_FN:
		p.advance()
		p.expect(token.LPAREN)

		var params []ast.Type

		for !p.at(token.RPAREN) {
			params = append(params, p.parseType())

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}

		p.expect(token.RPAREN)

		var ret ast.Type
		if _, ok := p.accept(token.ARROW); ok {
			ret = p.parseType()
		}

		return &ast.FuncType{ID: p.newID(start), Params: params, Return: ret}
	case token.KW_DYN:
		p.advance()
		name := p.expect(token.IDENT).Lexeme

		return &ast.DynTraitType{ID: p.newID(start), Trait: name}
	default:
		name := p.expect(token.IDENT).Lexeme

		var args []ast.Type
		if _, ok := p.accept(token.LT); ok {
			for !p.at(token.GT) {
				args = append(args, p.parseType())

				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}

			p.expect(token.GT)
		}

		return &ast.NamedType{ID: p.newID(start), Name: name, Args: args}
	}
}
