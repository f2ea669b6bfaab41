// Package parser implements a Pratt (operator-precedence) parser that
// turns a token.Token stream into a pkg/ast.File.
package parser

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/lexer"
	"github.com/home-lang/home/pkg/token"
	"github.com/home-lang/home/pkg/util/source"
)

// precedence levels for binary operators, lowest to highest.
type precedence int

const (
	precLowest precedence = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precRange
	precAdditive
	precMultiplicative
	precCast // `as`
	precUnary
	precPostfix // call, index, field, `?`, method call
)

var binPrec = map[token.Kind]precedence{
	token.PIPEPIPE: precOr,
	token.AMPAMP:   precAnd,
	token.EQEQ:     precEquality,
	token.NEQ:      precEquality,
	token.LT:       precComparison,
	token.LE:       precComparison,
	token.GT:       precComparison,
	token.GE:       precComparison,
	token.PIPE:     precBitOr,
	token.CARET:    precBitXor,
	token.AMP:      precBitAnd,
	token.SHL:      precShift,
	token.SHR:      precShift,
	token.DOTDOT:   precRange,
	token.DOTDOTEQ: precRange,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
}

var binOps = map[token.Kind]ast.BinOp{
	token.PLUS: ast.OpAdd, token.MINUS: ast.OpSub, token.STAR: ast.OpMul,
	token.SLASH: ast.OpDiv, token.PERCENT: ast.OpRem,
	token.AMPAMP: ast.OpAnd, token.PIPEPIPE: ast.OpOr,
	token.AMP: ast.OpBitAnd, token.PIPE: ast.OpBitOr, token.CARET: ast.OpBitXor,
	token.SHL: ast.OpShl, token.SHR: ast.OpShr,
	token.EQEQ: ast.OpEq, token.NEQ: ast.OpNe,
	token.LT: ast.OpLt, token.LE: ast.OpLe, token.GT: ast.OpGt, token.GE: ast.OpGe,
	token.DOTDOT: ast.OpRange, token.DOTDOTEQ: ast.OpRangeEq,
}

var assignCompound = map[token.Kind]ast.BinOp{
	token.PLUSEQ: ast.OpAdd, token.MINUSEQ: ast.OpSub, token.STAREQ: ast.OpMul,
	token.SLASHEQ: ast.OpDiv, token.PERCENTEQ: ast.OpRem,
	token.AMPEQ: ast.OpBitAnd, token.PIPEEQ: ast.OpBitOr, token.CARETEQ: ast.OpBitXor,
	token.SHLEQ: ast.OpShl, token.SHREQ: ast.OpShr,
}

// Parser holds the mutable state of a single-file parse.
type Parser struct {
	file   *source.File
	toks   []token.Token
	pos    int
	diags  *diag.Collector
	nextID ast.NodeID
	spans  map[ast.NodeID]source.Span
	// suppressStruct disables struct-literal parsing of `Name { ... }`
	// while parsing a condition expression (if/while/for/match), so the
	// brace is instead treated as the start of the following block.
	suppressStruct bool
}

// Parse lexes and parses a single source file, returning the resulting
// AST (possibly partial, on error) and a span table for diagnostics, along
// with the collector populated with any syntax errors encountered. Parsing
// never aborts on the first error: it recovers at statement/item
// boundaries so later errors in the same file are still reported,
// surfacing as many diagnostics as possible per pass.
func Parse(file *source.File) (*ast.File, map[ast.NodeID]source.Span, *diag.Collector) {
	toks, lexErrs := lexer.Tokenize(file)
	d := diag.NewCollector()

	for _, e := range lexErrs {
		if se, ok := e.(*source.SyntaxError); ok {
			d.Report(diag.Diagnostic{Severity: diag.SeverityError, Code: "H0001", Message: se.Message(), File: file, Span: se.Span()})
		}
	}

	p := &Parser{file: file, toks: toks, diags: d, spans: make(map[ast.NodeID]source.Span)}
	f := p.parseFile()

	return f, p.spans, d
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos]
}

func (p *Parser) peekKind(offset int) token.Kind {
	i := p.pos + offset
	if i >= len(p.toks) {
		return token.EOF
	}

	return p.toks[i].Kind
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}

	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if t, ok := p.accept(k); ok {
		return t
	}

	p.errorf("H0100", "expected %s, found %s", k, p.cur().Kind)

	return p.advance()
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) {
	t := p.cur()
	p.diags.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		File:     p.file,
		Span:     t.Span,
	})
}

func (p *Parser) newID(span source.Span) ast.NodeID {
	p.nextID++
	p.spans[p.nextID] = span
	return p.nextID
}

// synchronize skips tokens until a likely statement/item boundary, used
// for error recovery after a parse failure.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMI) {
			p.advance()
			return
		}

		switch p.cur().Kind {
		case token.KW_FN, token.KW_STRUCT, token.KW_ENUM, token.KW_TRAIT, token.KW_IMPL,
			token.KW_LET, token.KW_CONST, token.RBRACE:
			return
		}

		p.advance()
	}
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{ID: p.newID(source.NewSpan(0, 0))}

	for p.at(token.KW_IMPORT) {
		f.Imports = append(f.Imports, p.parseImport())
	}

	for !p.at(token.EOF) {
		start := p.pos
		item := p.parseItem()

		if item != nil {
			f.Items = append(f.Items, item)
		}

		if p.pos == start {
			// Guarantee forward progress even on an unrecognised token.
			p.advance()
		}
	}

	return f
}

func (p *Parser) parseImport() ast.Import {
	p.expect(token.KW_IMPORT)

	var path []string
	path = append(path, p.expect(token.IDENT).Lexeme)

	for {
		if _, ok := p.accept(token.COLONCOLON); !ok {
			break
		}

		path = append(path, p.expect(token.IDENT).Lexeme)
	}

	alias := ""
	if _, ok := p.accept(token.KW_AS); ok {
		alias = p.expect(token.IDENT).Lexeme
	}

	p.expect(token.SEMI)

	return ast.Import{Path: path, Alias: alias}
}
