package parser

import (
	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/token"
	"github.com/home-lang/home/pkg/util/source"
)

func (p *Parser) parseVisibility() ast.Visibility {
	if _, ok := p.accept(token.KW_PUB); ok {
		if _, ok := p.accept(token.LPAREN); ok {
			p.expect(token.KW_CRATE)
			p.expect(token.RPAREN)

			return ast.VisCrate
		}

		return ast.VisPublic
	}

	return ast.VisPrivate
}

func (p *Parser) parseItem() ast.Item {
	start := p.cur().Span
	doc := p.cur().Doc
	vis := p.parseVisibility()

	switch p.cur().Kind {
	case token.KW_FN:
		return p.parseFuncDecl(vis, doc, nil)
	case token.KW_STRUCT:
		return p.parseStructDecl(vis, doc)
	case token.KW_ENUM:
		return p.parseEnumDecl(vis, doc)
	case token.KW_TRAIT:
		return p.parseTraitDecl(vis, doc)
	case token.KW_IMPL:
		return p.parseImplDecl()
	case token.KW_CONST:
		return p.parseConstDecl(vis)
	case token.KW_TYPE:
		return p.parseTypeAliasDecl(vis)
	default:
		p.errorf("H0101", "expected item declaration, found %s", p.cur().Kind)
		p.synchronize()
		_ = start

		return nil
	}
}

func (p *Parser) parseGenerics() []ast.GenericParam {
	if _, ok := p.accept(token.LT); !ok {
		return nil
	}

	var params []ast.GenericParam

	for !p.at(token.GT) {
		name := p.expect(token.IDENT).Lexeme
		var bounds []string

		if _, ok := p.accept(token.COLON); ok {
			bounds = append(bounds, p.expect(token.IDENT).Lexeme)

			for {
				if _, ok := p.accept(token.PLUS); !ok {
					break
				}

				bounds = append(bounds, p.expect(token.IDENT).Lexeme)
			}
		}

		params = append(params, ast.GenericParam{Name: name, Bounds: bounds})

		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}

	p.expect(token.GT)

	return params
}

func (p *Parser) parseFuncDecl(vis ast.Visibility, doc string, receiverHint *ast.Param) *ast.FuncDecl {
	start := p.cur().Span

	isAsync := false
	if _, ok := p.accept(token.KW_ASYNC); ok {
		isAsync = true
	}

	p.expect(token.KW_FN)
	name := p.expect(token.IDENT).Lexeme
	generics := p.parseGenerics()

	p.expect(token.LPAREN)

	var recv *ast.Param

	var params []ast.Param

	first := true

	for !p.at(token.RPAREN) {
		if first && (p.at(token.KW_SELF) || (p.at(token.AMP) && p.peekKind(1) == token.KW_SELF) ||
			(p.at(token.AMP) && p.peekKind(1) == token.KW_MUT && p.peekKind(2) == token.KW_SELF)) {
			recv = p.parseSelfParam()
			first = false

			if _, ok := p.accept(token.COMMA); !ok {
				break
			}

			continue
		}

		first = false
		params = append(params, p.parseParam())

		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}

	p.expect(token.RPAREN)

	var ret ast.Type
	if _, ok := p.accept(token.ARROW); ok {
		ret = p.parseType()
	}

	var body *ast.Block
	if p.at(token.LBRACE) {
		body = p.parseBlock()
	} else {
		p.expect(token.SEMI)
	}

	if receiverHint != nil && recv == nil {
		recv = receiverHint
	}

	return &ast.FuncDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())), Name: name, Vis: vis,
		Generics: generics, Params: params, Receiver: recv, ReturnType: ret,
		IsAsync: isAsync, Body: body, Doc: doc,
	}
}

func (p *Parser) parseSelfParam() *ast.Param {
	mut := false

	if _, ok := p.accept(token.AMP); ok {
		if _, ok := p.accept(token.KW_MUT); ok {
			mut = true
		}

		p.expect(token.KW_SELF)

		return &ast.Param{Name: "self", Mut: mut, Type: &ast.RefType{Mut: mut, Target: &ast.NamedType{Name: "Self"}}}
	}

	p.expect(token.KW_SELF)

	return &ast.Param{Name: "self", Type: &ast.NamedType{Name: "Self"}}
}

func (p *Parser) parseParam() ast.Param {
	mut := false
	if _, ok := p.accept(token.KW_MUT); ok {
		mut = true
	}

	name := p.expect(token.IDENT).Lexeme
	p.expect(token.COLON)
	typ := p.parseType()

	return ast.Param{Name: name, Type: typ, Mut: mut}
}

func (p *Parser) parseStructDecl(vis ast.Visibility, doc string) *ast.StructDecl {
	start := p.cur().Span
	p.expect(token.KW_STRUCT)
	name := p.expect(token.IDENT).Lexeme
	generics := p.parseGenerics()

	var fields []ast.FieldDecl

	p.expect(token.LBRACE)

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fvis := p.parseVisibility()
		fname := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		ftyp := p.parseType()
		fields = append(fields, ast.FieldDecl{Name: fname, Type: ftyp, Vis: fvis})

		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}

	p.expect(token.RBRACE)

	return &ast.StructDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Name: name, Vis: vis, Generics: generics, Fields: fields, Doc: doc,
	}
}

func (p *Parser) parseEnumDecl(vis ast.Visibility, doc string) *ast.EnumDecl {
	start := p.cur().Span
	p.expect(token.KW_ENUM)
	name := p.expect(token.IDENT).Lexeme
	generics := p.parseGenerics()

	var variants []ast.VariantDecl

	p.expect(token.LBRACE)

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		vname := p.expect(token.IDENT).Lexeme

		var fields []ast.Type
		if _, ok := p.accept(token.LPAREN); ok {
			for !p.at(token.RPAREN) {
				fields = append(fields, p.parseType())

				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}

			p.expect(token.RPAREN)
		}

		variants = append(variants, ast.VariantDecl{Name: vname, Fields: fields})

		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}

	p.expect(token.RBRACE)

	return &ast.EnumDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Name: name, Vis: vis, Generics: generics, Variants: variants, Doc: doc,
	}
}

func (p *Parser) parseTraitDecl(vis ast.Visibility, doc string) *ast.TraitDecl {
	start := p.cur().Span
	p.expect(token.KW_TRAIT)
	name := p.expect(token.IDENT).Lexeme
	generics := p.parseGenerics()

	var methods []ast.FuncDecl

	p.expect(token.LBRACE)

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		mdoc := p.cur().Doc
		mvis := p.parseVisibility()
		m := p.parseFuncDecl(mvis, mdoc, &ast.Param{Name: "self", Type: &ast.NamedType{Name: "Self"}})
		methods = append(methods, *m)
	}

	p.expect(token.RBRACE)

	return &ast.TraitDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Name: name, Vis: vis, Generics: generics, Methods: methods, Doc: doc,
	}
}

func (p *Parser) parseImplDecl() *ast.ImplDecl {
	start := p.cur().Span
	p.expect(token.KW_IMPL)
	generics := p.parseGenerics()

	first := p.parseType()

	trait := ""

	typ := first

	if _, ok := p.accept(token.KW_FOR); ok {
		if named, ok := first.(*ast.NamedType); ok {
			trait = named.Name
		}

		typ = p.parseType()
	}

	var methods []ast.FuncDecl

	p.expect(token.LBRACE)

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		mdoc := p.cur().Doc
		mvis := p.parseVisibility()
		m := p.parseFuncDecl(mvis, mdoc, nil)
		methods = append(methods, *m)
	}

	p.expect(token.RBRACE)

	return &ast.ImplDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Generics: generics, Trait: trait, Type: typ, Methods: methods,
	}
}

func (p *Parser) parseConstDecl(vis ast.Visibility) *ast.ConstDecl {
	start := p.cur().Span
	p.expect(token.KW_CONST)
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.COLON)
	typ := p.parseType()
	p.expect(token.EQ)
	val := p.parseExpr(precLowest)
	p.expect(token.SEMI)

	return &ast.ConstDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Name: name, Vis: vis, Type: typ, Value: val,
	}
}

func (p *Parser) parseTypeAliasDecl(vis ast.Visibility) *ast.TypeAliasDecl {
	start := p.cur().Span
	p.expect(token.KW_TYPE)
	name := p.expect(token.IDENT).Lexeme
	generics := p.parseGenerics()
	p.expect(token.EQ)
	target := p.parseType()
	p.expect(token.SEMI)

	return &ast.TypeAliasDecl{
		ID: p.newID(source.NewSpan(start.Start(), p.cur().Span.Start())),
		Name: name, Vis: vis, Generics: generics, Target: target,
	}
}
