package ast

// Pattern is a destructuring pattern, used in `let`, `match` arms and
// function/closure parameters.
type Pattern interface{ patternNode() }

// WildcardPattern is `_`, matching anything without binding it.
type WildcardPattern struct{ ID NodeID }

func (*WildcardPattern) patternNode() {}

// BindPattern binds the matched value to a name.
type BindPattern struct {
	ID   NodeID
	Name string
	Mut  bool
	// SubPattern supports `name @ pattern` bindings; nil when absent.
	SubPattern Pattern
}

func (*BindPattern) patternNode() {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	ID  NodeID
	Lit Literal
}

func (*LiteralPattern) patternNode() {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	ID       NodeID
	Elements []Pattern
}

func (*TuplePattern) patternNode() {}

// StructPattern destructures a struct by field name.
type StructPattern struct {
	ID     NodeID
	Name   string
	Fields []FieldPattern
	Rest   bool // true when the pattern ends in `..`
}

func (*StructPattern) patternNode() {}

// FieldPattern is one `name: pattern` entry of a StructPattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// VariantPattern destructures an enum variant: `Option::Some(x)`.
type VariantPattern struct {
	ID       NodeID
	Enum     string // may be empty when the enum name is inferred from context
	Variant  string
	Elements []Pattern
}

func (*VariantPattern) patternNode() {}

// RefPattern matches through a reference: `&pattern` or `&mut pattern`.
type RefPattern struct {
	ID      NodeID
	Mut     bool
	Pattern Pattern
}

func (*RefPattern) patternNode() {}

// RangePattern matches an inclusive or exclusive numeric range, e.g.
// `0..=9`.
type RangePattern struct {
	ID         NodeID
	Low, High  Literal
	Inclusive  bool
}

func (*RangePattern) patternNode() {}

// OrPattern matches if any of its alternatives matches: `A | B | C`.
type OrPattern struct {
	ID           NodeID
	Alternatives []Pattern
}

func (*OrPattern) patternNode() {}
