package parser

import (
	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/token"
	"github.com/home-lang/home/pkg/util/source"
)

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Span
	p.expect(token.LBRACE)

	var stmts []ast.Stmt

	var tail ast.Expr

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if isStmtStart(p.cur().Kind) {
			stmts = append(stmts, p.parseStmt())
			continue
		}
		// Otherwise parse an expression; if it's the last thing in the
		// block (no trailing `;`) it becomes the block's tail value,
		// per the language's expression-oriented block semantics.
		e := p.parseExpr(precLowest)

		if _, ok := p.accept(token.SEMI); ok {
			stmts = append(stmts, &ast.ExprStmt{Expr: e})
			continue
		}

		if p.at(token.RBRACE) {
			tail = e
			break
		}

		stmts = append(stmts, &ast.ExprStmt{Expr: e})
	}

	p.expect(token.RBRACE)

	return &ast.Block{ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())), Stmts: stmts, Tail: tail}
}

func isStmtStart(k token.Kind) bool {
	switch k {
	case token.KW_LET, token.KW_RETURN, token.KW_BREAK, token.KW_CONTINUE, token.KW_DEFER,
		token.KW_FN, token.KW_STRUCT, token.KW_ENUM, token.KW_TRAIT, token.KW_IMPL, token.KW_CONST:
		return true
	default:
		return false
	}
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.KW_LET:
		return p.parseLetStmt()
	case token.KW_RETURN:
		p.advance()

		var v ast.Expr
		if !p.at(token.SEMI) {
			v = p.parseExpr(precLowest)
		}

		p.expect(token.SEMI)

		return &ast.ReturnStmt{ID: p.newID(start), Value: v}
	case token.KW_BREAK:
		p.advance()

		var v ast.Expr
		if !p.at(token.SEMI) {
			v = p.parseExpr(precLowest)
		}

		p.expect(token.SEMI)

		return &ast.BreakStmt{ID: p.newID(start), Value: v}
	case token.KW_CONTINUE:
		p.advance()
		p.expect(token.SEMI)

		return &ast.ContinueStmt{ID: p.newID(start)}
	case token.KW_DEFER:
		p.advance()
		e := p.parseExpr(precLowest)
		p.expect(token.SEMI)

		return &ast.DeferStmt{ID: p.newID(start), Expr: e}
	case token.KW_FN, token.KW_STRUCT, token.KW_ENUM, token.KW_TRAIT, token.KW_IMPL, token.KW_CONST:
		return &ast.ItemStmt{ID: p.newID(start), Item: p.parseItem()}
	default:
		e := p.parseExpr(precLowest)
		p.expect(token.SEMI)

		return &ast.ExprStmt{ID: p.newID(start), Expr: e}
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.cur().Span
	p.expect(token.KW_LET)

	mut := false
	if _, ok := p.accept(token.KW_MUT); ok {
		mut = true
	}

	pat := p.parsePattern()

	var typ ast.Type
	if _, ok := p.accept(token.COLON); ok {
		typ = p.parseType()
	}

	var val ast.Expr
	if _, ok := p.accept(token.EQ); ok {
		val = p.parseExpr(precLowest)
	}

	p.expect(token.SEMI)

	return &ast.LetStmt{ID: p.newID(start), Pattern: pat, Type: typ, Mut: mut, Value: val}
}
