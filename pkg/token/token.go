// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

import "github.com/home-lang/home/pkg/util/source"

// Kind identifies the lexical category of a token.
type Kind uint

// Token kinds. Keywords, punctuation/operators, literals, and the
// synthetic string-interpolation markers.
const (
	ILLEGAL Kind = iota
	EOF

	// Trivia retained on the following token.
	DOC_COMMENT

	IDENT

	// Literals.
	INT_LITERAL
	FLOAT_LITERAL
	STRING_LITERAL
	RAW_STRING_LITERAL
	// Interpolated string decomposition markers.
	INTERP_START
	INTERP_MID
	INTERP_END

	// Keywords.
	KW_FN
	KW_LET
	KW_MUT
	KW_STRUCT
	KW_ENUM
	KW_TRAIT
	KW_IMPL
	KW_RETURN
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_IN
	KW_LOOP
	KW_BREAK
	KW_CONTINUE
	KW_MATCH
	KW_TRUE
	KW_FALSE
	KW_AS
	KW_PUB
	KW_CRATE
	KW_PRIVATE
	KW_IMPORT
	KW_CONST
	KW_TYPE
	KW_DEFER
	KW_ASYNC
	KW_AWAIT
	KW_MOVE
	KW_DYN
	KW_SELF
	KW_COMPTIME
	KW_UNSAFE

	// Punctuation & operators.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI
	COLON
	COLONCOLON
	ARROW    // ->
	FATARROW // =>
	DOT
	DOTDOT    // ..
	DOTDOTEQ  // ..=
	QUESTION
	AT
	PIPE
	PIPEPIPE
	AMP
	AMPAMP
	CARET
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	TILDE
	EQ
	EQEQ
	NEQ
	LT
	LE
	GT
	GE
	SHL
	SHR
	PLUSEQ
	MINUSEQ
	STAREQ
	SLASHEQ
	PERCENTEQ
	AMPEQ
	PIPEEQ
	CARETEQ
	SHLEQ
	SHREQ
)

var names = map[Kind]string{
	ILLEGAL: "illegal", EOF: "eof", DOC_COMMENT: "doc-comment", IDENT: "identifier",
	INT_LITERAL: "integer", FLOAT_LITERAL: "float", STRING_LITERAL: "string",
	RAW_STRING_LITERAL: "raw-string", INTERP_START: "interp-start", INTERP_MID: "interp-mid",
	INTERP_END: "interp-end",
	KW_FN: "fn", KW_LET: "let", KW_MUT: "mut", KW_STRUCT: "struct", KW_ENUM: "enum",
	KW_TRAIT: "trait", KW_IMPL: "impl", KW_RETURN: "return", KW_IF: "if", KW_ELSE: "else",
	KW_WHILE: "while", KW_FOR: "for", KW_IN: "in", KW_LOOP: "loop", KW_BREAK: "break",
	KW_CONTINUE: "continue", KW_MATCH: "match", KW_TRUE: "true", KW_FALSE: "false",
	KW_AS: "as", KW_PUB: "pub", KW_CRATE: "crate", KW_PRIVATE: "private", KW_IMPORT: "import",
	KW_CONST: "const", KW_TYPE: "type", KW_DEFER: "defer", KW_ASYNC: "async", KW_AWAIT: "await",
	KW_MOVE: "move", KW_DYN: "dyn", KW_SELF: "self", KW_COMPTIME: "comptime", KW_UNSAFE: "unsafe",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", SEMI: ";", COLON: ":", COLONCOLON: "::", ARROW: "->", FATARROW: "=>",
	DOT: ".", DOTDOT: "..", DOTDOTEQ: "..=", QUESTION: "?", AT: "@", PIPE: "|", PIPEPIPE: "||",
	AMP: "&", AMPAMP: "&&", CARET: "^", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	PERCENT: "%", BANG: "!", TILDE: "~", EQ: "=", EQEQ: "==", NEQ: "!=", LT: "<", LE: "<=",
	GT: ">", GE: ">=", SHL: "<<", SHR: ">>", PLUSEQ: "+=", MINUSEQ: "-=", STAREQ: "*=",
	SLASHEQ: "/=", PERCENTEQ: "%=", AMPEQ: "&=", PIPEEQ: "|=", CARETEQ: "^=", SHLEQ: "<<=",
	SHREQ: ">>=",
}

// Keywords maps reserved identifiers to their keyword kind.
var Keywords = map[string]Kind{
	"fn": KW_FN, "let": KW_LET, "mut": KW_MUT, "struct": KW_STRUCT, "enum": KW_ENUM,
	"trait": KW_TRAIT, "impl": KW_IMPL, "return": KW_RETURN, "if": KW_IF, "else": KW_ELSE,
	"while": KW_WHILE, "for": KW_FOR, "in": KW_IN, "loop": KW_LOOP, "break": KW_BREAK,
	"continue": KW_CONTINUE, "match": KW_MATCH, "true": KW_TRUE, "false": KW_FALSE,
	"as": KW_AS, "pub": KW_PUB, "crate": KW_CRATE, "private": KW_PRIVATE, "import": KW_IMPORT,
	"const": KW_CONST, "type": KW_TYPE, "defer": KW_DEFER, "async": KW_ASYNC, "await": KW_AWAIT,
	"move": KW_MOVE, "dyn": KW_DYN, "self": KW_SELF, "comptime": KW_COMPTIME, "unsafe": KW_UNSAFE,
}

// String returns a human-readable name for the kind, used in diagnostics.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}

	return "?"
}

// Token associates a lexical kind with the span of source it covers and,
// for identifiers/literals, the literal text (a slice into the original
// source).
type Token struct {
	Kind Kind
	Span source.Span
	// Lexeme is the literal text covered by Span (not populated for pure
	// punctuation tokens, whose text is implied by Kind).
	Lexeme string
	// Leading doc-comment trivia attached to this token, if any ("///" doc
	// comments are retained as trivia attached to the following
	// declaration).
	Doc string
	// Suffix carries a numeric literal's type suffix (e.g. "i32", "u64"),
	// if present.
	Suffix string
}

// IsKeyword reports whether this token is one of the reserved words.
func (t Token) IsKeyword() bool {
	return t.Kind >= KW_FN && t.Kind <= KW_UNSAFE
}
