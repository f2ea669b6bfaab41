package ast

// Expr is any expression node. The Pratt parser in pkg/parser builds these
// bottom-up according to the operator precedence table below.
type Expr interface{ exprNode() }

// BinOp identifies a binary operator.
type BinOp int

// Binary operators. The parser's precedence table ranks them, lowest
// first: `||`, `&&`, equality, comparison, `|`, `^`, `&`, shift, range,
// additive, multiplicative.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpRange    // ..
	OpRangeEq  // ..=
)

// UnaryOp identifies a prefix unary operator.
type UnaryOp int

// Unary operators.
const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
	OpRef
	OpRefMut
	OpDeref
)

// Literal is a constant literal expression.
type Literal struct {
	ID   NodeID
	Kind LiteralKind
	// Raw holds the literal's canonical Go representation: int64 for
	// integers, float64 for floats, string for strings, bool for booleans.
	Raw    any
	Suffix string // explicit type suffix, e.g. "u32"; empty if inferred
}

func (*Literal) exprNode() {}

// LiteralKind distinguishes the literal's syntactic category.
type LiteralKind int

// Literal kinds.
const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
)

// Ident references a binding by name; resolved to a concrete declaration
// during type checking.
type Ident struct {
	ID   NodeID
	Name string
}

func (*Ident) exprNode() {}

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	ID       NodeID
	Op       BinOp
	LHS, RHS Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is `op expr`.
type UnaryExpr struct {
	ID      NodeID
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// AssignExpr is `lhs = rhs` or a compound assignment such as `lhs += rhs`.
// CompoundOp is nil for a plain assignment.
type AssignExpr struct {
	ID         NodeID
	Target     Expr
	CompoundOp *BinOp
	Value      Expr
}

func (*AssignExpr) exprNode() {}

// CallExpr invokes a function or method value with the given arguments.
type CallExpr struct {
	ID       NodeID
	Callee   Expr
	Args     []Expr
	Generics []Type // explicit turbofish-style type arguments, if any
}

func (*CallExpr) exprNode() {}

// MethodCallExpr is `receiver.method(args)`, kept distinct from a plain
// CallExpr so the checker can perform method/trait resolution before
// lowering it to a direct call.
type MethodCallExpr struct {
	ID       NodeID
	Receiver Expr
	Method   string
	Args     []Expr
	Generics []Type
}

func (*MethodCallExpr) exprNode() {}

// FieldExpr is `base.field`.
type FieldExpr struct {
	ID    NodeID
	Base  Expr
	Field string
}

func (*FieldExpr) exprNode() {}

// TupleIndexExpr is `base.0`, indexing into a tuple by position.
type TupleIndexExpr struct {
	ID    NodeID
	Base  Expr
	Index int
}

func (*TupleIndexExpr) exprNode() {}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	ID          NodeID
	Base, Index Expr
}

func (*IndexExpr) exprNode() {}

// StructLiteralExpr constructs a struct value: `Name { field: value, ... }`.
type StructLiteralExpr struct {
	ID     NodeID
	Name   string
	Fields []FieldInit
	Spread Expr // `..base` functional-update syntax; nil if absent
}

func (*StructLiteralExpr) exprNode() {}

// FieldInit is one `field: value` entry of a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// ArrayLiteralExpr is `[e1, e2, ...]` or the repeat form `[value; count]`.
type ArrayLiteralExpr struct {
	ID       NodeID
	Elements []Expr
	Repeat   Expr // non-nil for `[value; count]`, in which case Elements has len 1
	Count    Expr
}

func (*ArrayLiteralExpr) exprNode() {}

// TupleLiteralExpr is `(e1, e2, ...)`.
type TupleLiteralExpr struct {
	ID       NodeID
	Elements []Expr
}

func (*TupleLiteralExpr) exprNode() {}

// IfExpr is `if cond { then } else { else }`; both branches are
// expressions, per the language's expression-oriented control flow.
type IfExpr struct {
	ID   NodeID
	Cond Expr
	Then *Block
	Else Expr // *Block or *IfExpr (else-if chain), nil if no else
}

func (*IfExpr) exprNode() {}

// MatchExpr dispatches on a scrutinee against an ordered list of arms
//.
type MatchExpr struct {
	ID        NodeID
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// MatchArm is one `pattern if guard => body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if absent
	Body    Expr
}

// WhileExpr is a condition-checked loop.
type WhileExpr struct {
	ID    NodeID
	Label string
	Cond  Expr
	Body  *Block
}

func (*WhileExpr) exprNode() {}

// ForExpr iterates a pattern over an iterable expression.
type ForExpr struct {
	ID       NodeID
	Label    string
	Pattern  Pattern
	Iterable Expr
	Body     *Block
}

func (*ForExpr) exprNode() {}

// LoopExpr is an unconditional loop, exited only via `break`.
type LoopExpr struct {
	ID    NodeID
	Label string
	Body  *Block
}

func (*LoopExpr) exprNode() {}

// BlockExpr embeds a block directly as an expression (e.g. as an operand).
type BlockExpr struct {
	ID    NodeID
	Block *Block
}

func (*BlockExpr) exprNode() {}

// CastExpr is `expr as Type`.
type CastExpr struct {
	ID     NodeID
	Value  Expr
	Target Type
}

func (*CastExpr) exprNode() {}

// TryExpr is the `?` postfix operator: propagate an Err/None early, or
// unwrap the Ok/Some value.
type TryExpr struct {
	ID    NodeID
	Value Expr
}

func (*TryExpr) exprNode() {}

// ClosureExpr is an anonymous function value, `|params| body`.
type ClosureExpr struct {
	ID      NodeID
	Params  []Param
	Body    Expr
	Move    bool
	IsAsync bool
}

func (*ClosureExpr) exprNode() {}

// AwaitExpr suspends the enclosing async function until the operand's
// future resolves.
type AwaitExpr struct {
	ID    NodeID
	Value Expr
}

func (*AwaitExpr) exprNode() {}

// PathExpr is a qualified reference, e.g. `Option::Some` or `Trait::method`.
type PathExpr struct {
	ID       NodeID
	Segments []string
}

func (*PathExpr) exprNode() {}

// InterpStringExpr is a desugared string-interpolation expression: the
// concatenation of literal chunks and embedded sub-expressions.
type InterpStringExpr struct {
	ID     NodeID
	Chunks []string
	Exprs  []Expr
}

func (*InterpStringExpr) exprNode() {}
