// Package lexer tokenises Home source text into a stream of token.Token
// values, built atop the generic scanning combinators in
// pkg/util/source/lex.
package lexer

import (
	"fmt"

	"github.com/home-lang/home/pkg/token"
	"github.com/home-lang/home/pkg/util/source"
	"github.com/home-lang/home/pkg/util/source/lex"
)

// internal tag space used by the underlying combinator lexer; mapped onto
// token.Kind once a match has been made and its lexeme inspected.
const (
	tagSkip uint = iota
	tagLineComment
	tagBlockComment
	tagDocComment
	tagIdent
	tagInt
	tagFloat
	tagString
	tagRawString
	tagPunct
)

var digit = lex.Within(int32('0'), int32('9'))
var lower = lex.Within(int32('a'), int32('z'))
var upper = lex.Within(int32('A'), int32('Z'))
var alpha = lex.Or(lower, upper, lex.Unit(int32('_')))
var alphaNum = lex.Or(alpha, digit)

var identScanner = lex.Sequence(alpha, lex.Many(alphaNum))

var intScanner = lex.Sequence(lex.Many(digit), lex.Many(alphaNum))

var floatScanner = lex.Sequence(
	lex.Many(digit),
	lex.Unit(int32('.')),
	lex.Many(digit),
)

var whitespace = lex.Many(lex.Or(lex.Unit(int32(' ')), lex.Unit(int32('\t')), lex.Unit(int32('\r')), lex.Unit(int32('\n'))))

// punctuation tokens, ordered longest-first so the longest match wins
// (greedy left-to-right Or semantics of the combinator library).
var punctuations = []string{
	"<<=", ">>=", "..=",
	"->", "=>", "::", "..", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "?", "@",
	"|", "&", "^", "+", "-", "*", "/", "%", "!", "~", "=", "<", ">",
}

func punctuationScanner() lex.Scanner[int32] {
	scanners := make([]lex.Scanner[int32], len(punctuations))
	for i, p := range punctuations {
		scanners[i] = lex.String(p)
	}

	return lex.Or(scanners...)
}

// Lexer turns a source.File into a stream of token.Token.
type Lexer struct {
	file   *source.File
	engine *lex.Lexer[int32]
	punct  lex.Scanner[int32]
}

// New constructs a lexer over the given source file.
func New(file *source.File) *Lexer {
	runes := file.Contents()

	rules := []lex.LexRule[int32]{
		lex.Rule(whitespace, tagSkip),
		lex.Rule(lex.Sequence(lex.String("///"), lex.Until(int32('\n'))), tagDocComment),
		lex.Rule(lex.Sequence(lex.String("//"), lex.Until(int32('\n'))), tagLineComment),
		lex.Rule(floatScanner, tagFloat),
		lex.Rule(intScanner, tagInt),
		lex.Rule(identScanner, tagIdent),
		lex.Rule(rawStringScanner(), tagRawString),
		lex.Rule(stringScanner(), tagString),
		lex.Rule(punctuationScanner(), tagPunct),
	}

	return &Lexer{file, lex.NewLexer(runes, rules...), punctuationScanner()}
}

// stringScanner matches a double-quoted string literal with backslash
// escapes.
func stringScanner() lex.Scanner[int32] {
	return func(items []int32) uint {
		if len(items) == 0 || items[0] != '"' {
			return 0
		}

		i := uint(1)
		for i < uint(len(items)) {
			if items[i] == '\\' && i+1 < uint(len(items)) {
				i += 2
				continue
			}
			if items[i] == '"' {
				return i + 1
			}
			i++
		}
		// unterminated: consume to EOF so the caller can report one error
		return i
	}
}

// rawStringScanner matches r"..." literals, with no escape processing.
func rawStringScanner() lex.Scanner[int32] {
	return func(items []int32) uint {
		if len(items) < 3 || items[0] != 'r' || items[1] != '"' {
			return 0
		}

		i := uint(2)
		for i < uint(len(items)) && items[i] != '"' {
			i++
		}
		if i < uint(len(items)) {
			i++
		}

		return i
	}
}

// Tokenize consumes the entire file and returns the resulting token stream,
// along with any lexical errors encountered (e.g. unterminated strings,
// unrecognised characters). Errors do not stop tokenisation: the lexer skips
// the offending rune and continues, so downstream parsing can surface as
// many diagnostics as possible in one pass.
func Tokenize(file *source.File) ([]token.Token, []error) {
	l := New(file)

	var tokens []token.Token
	var errs []error
	var pendingDoc string

	runes := file.Contents()

	for l.engine.HasNext() {
		t := l.engine.Next()

		switch t.Kind {
		case tagSkip, tagLineComment:
			continue
		case tagDocComment:
			text := string(runes[t.Span.Start():t.Span.End()])
			if len(text) >= 3 {
				pendingDoc = trimLeadingSpace(text[3:])
			}

			continue
		}

		lexeme := string(runes[t.Span.Start():t.Span.End()])

		tok, err := classify(t.Kind, lexeme, t.Span)
		if err != nil {
			errs = append(errs, file.SyntaxError(t.Span, err.Error()))
			continue
		}

		if pendingDoc != "" {
			tok.Doc = pendingDoc
			pendingDoc = ""
		}

		tokens = append(tokens, tok)
	}

	line, col := file.LineColumn(len(runes))
	tokens = append(tokens, token.Token{
		Kind: token.EOF,
		Span: source.NewSpan(len(runes), len(runes)),
		// line/column recovered on demand by callers via file.LineColumn;
		// stashed here for completeness of the Token contract.
		Lexeme: fmt.Sprintf("%d:%d", line, col),
	})

	return tokens, errs
}

func trimLeadingSpace(s string) string {
	if len(s) > 0 && s[0] == ' ' {
		return s[1:]
	}

	return s
}

var punctKinds = map[string]token.Kind{
	"(": token.LPAREN, ")": token.RPAREN, "{": token.LBRACE, "}": token.RBRACE,
	"[": token.LBRACKET, "]": token.RBRACKET, ",": token.COMMA, ";": token.SEMI,
	":": token.COLON, "::": token.COLONCOLON, "->": token.ARROW, "=>": token.FATARROW,
	".": token.DOT, "..": token.DOTDOT, "..=": token.DOTDOTEQ, "?": token.QUESTION,
	"@": token.AT, "|": token.PIPE, "||": token.PIPEPIPE, "&": token.AMP, "&&": token.AMPAMP,
	"^": token.CARET, "+": token.PLUS, "-": token.MINUS, "*": token.STAR, "/": token.SLASH,
	"%": token.PERCENT, "!": token.BANG, "~": token.TILDE, "=": token.EQ, "==": token.EQEQ,
	"!=": token.NEQ, "<": token.LT, "<=": token.LE, ">": token.GT, ">=": token.GE,
	"<<": token.SHL, ">>": token.SHR, "+=": token.PLUSEQ, "-=": token.MINUSEQ,
	"*=": token.STAREQ, "/=": token.SLASHEQ, "%=": token.PERCENTEQ, "&=": token.AMPEQ,
	"|=": token.PIPEEQ, "^=": token.CARETEQ, "<<=": token.SHLEQ, ">>=": token.SHREQ,
}

func classify(tag uint, lexeme string, span source.Span) (token.Token, error) {
	tok := token.Token{Span: span}

	switch tag {
	case tagIdent:
		if kw, ok := token.Keywords[lexeme]; ok {
			tok.Kind = kw
		} else {
			tok.Kind = token.IDENT
		}

		tok.Lexeme = lexeme
	case tagInt:
		kind, suffix := splitSuffix(lexeme)
		tok.Kind = token.INT_LITERAL
		tok.Lexeme = kind
		tok.Suffix = suffix
	case tagFloat:
		kind, suffix := splitSuffix(lexeme)
		tok.Kind = token.FLOAT_LITERAL
		tok.Lexeme = kind
		tok.Suffix = suffix
	case tagString:
		if len(lexeme) < 2 || lexeme[len(lexeme)-1] != '"' {
			return tok, fmt.Errorf("unterminated string literal")
		}

		tok.Kind = token.STRING_LITERAL
		tok.Lexeme = lexeme[1 : len(lexeme)-1]
	case tagRawString:
		if len(lexeme) < 3 || lexeme[len(lexeme)-1] != '"' {
			return tok, fmt.Errorf("unterminated raw string literal")
		}

		tok.Kind = token.RAW_STRING_LITERAL
		tok.Lexeme = lexeme[2 : len(lexeme)-1]
	case tagPunct:
		kind, ok := punctKinds[lexeme]
		if !ok {
			return tok, fmt.Errorf("unrecognised punctuation %q", lexeme)
		}

		tok.Kind = kind
		tok.Lexeme = lexeme
	default:
		return tok, fmt.Errorf("unrecognised character %q", lexeme)
	}

	return tok, nil
}

// splitSuffix separates a trailing type suffix (e.g. "42i32") from the
// numeric digits.
func splitSuffix(lexeme string) (digits, suffix string) {
	i := 0
	for i < len(lexeme) && isDigitOrDot(lexeme[i]) {
		i++
	}

	return lexeme[:i], lexeme[i:]
}

func isDigitOrDot(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}
