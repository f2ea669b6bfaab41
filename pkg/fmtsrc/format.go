// Package fmtsrc renders a parsed AST back into canonical Home source
// text, the engine behind the `home fmt` subcommand: no semantic
// transformation, just a single canonical layout. Dispatch
// follows the type-switch style already used throughout this compiler
// (pkg/check, pkg/borrow, pkg/codegen) rather than adding a print method
// to every AST node.
package fmtsrc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/home-lang/home/pkg/ast"
)

const indentUnit = "    "

// printer accumulates formatted output over one file.
type printer struct {
	b strings.Builder
}

// File renders an entire parsed file as canonical source text.
func File(f *ast.File) string {
	p := &printer{}

	for _, imp := range f.Imports {
		p.writeImport(imp)
	}

	if len(f.Imports) > 0 {
		p.b.WriteByte('\n')
	}

	for i, item := range f.Items {
		if i > 0 {
			p.b.WriteByte('\n')
		}

		p.writeItem(item, 0)
	}

	return p.b.String()
}

func (p *printer) writeImport(imp ast.Import) {
	p.b.WriteString("import ")
	p.b.WriteString(strings.Join(imp.Path, "::"))

	if imp.Alias != "" {
		p.b.WriteString(" as ")
		p.b.WriteString(imp.Alias)
	}

	p.b.WriteString(";\n")
}

func (p *printer) indent(n int) { p.b.WriteString(strings.Repeat(indentUnit, n)) }

func visKeyword(v ast.Visibility) string {
	switch v {
	case ast.VisPublic:
		return "pub "
	case ast.VisCrate:
		return "pub(crate) "
	default:
		return ""
	}
}

func (p *printer) writeItem(item ast.Item, depth int) {
	switch it := item.(type) {
	case *ast.FuncDecl:
		p.writeFuncDecl(it, depth)
	case *ast.StructDecl:
		p.writeStructDecl(it, depth)
	case *ast.EnumDecl:
		p.writeEnumDecl(it, depth)
	case *ast.TraitDecl:
		p.writeTraitDecl(it, depth)
	case *ast.ImplDecl:
		p.writeImplDecl(it, depth)
	case *ast.ConstDecl:
		p.writeConstDecl(it, depth)
	case *ast.TypeAliasDecl:
		p.writeTypeAliasDecl(it, depth)
	default:
		p.indent(depth)
		p.b.WriteString(fmt.Sprintf("/* unknown item %T */\n", item))
	}
}

func (p *printer) writeDoc(doc string, depth int) {
	if doc == "" {
		return
	}

	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		p.indent(depth)
		p.b.WriteString("/// ")
		p.b.WriteString(line)
		p.b.WriteByte('\n')
	}
}

func writeGenerics(b *strings.Builder, gs []ast.GenericParam) {
	if len(gs) == 0 {
		return
	}

	b.WriteByte('<')

	for i, g := range gs {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(g.Name)

		for j, bound := range g.Bounds {
			if j == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString(" + ")
			}

			b.WriteString(bound)
		}
	}

	b.WriteByte('>')
}

func (p *printer) writeFuncDecl(fn *ast.FuncDecl, depth int) {
	p.writeDoc(fn.Doc, depth)
	p.indent(depth)
	p.b.WriteString(visKeyword(fn.Vis))

	if fn.IsAsync {
		p.b.WriteString("async ")
	}

	p.b.WriteString("fn ")
	p.b.WriteString(fn.Name)

	var gb strings.Builder
	writeGenerics(&gb, fn.Generics)
	p.b.WriteString(gb.String())

	p.b.WriteByte('(')

	first := true

	if fn.Receiver != nil {
		p.writeParam(*fn.Receiver, true)
		first = false
	}

	for _, param := range fn.Params {
		if !first {
			p.b.WriteString(", ")
		}

		p.writeParam(param, false)
		first = false
	}

	p.b.WriteByte(')')

	if fn.ReturnType != nil {
		p.b.WriteString(" -> ")
		p.b.WriteString(TypeString(fn.ReturnType))
	}

	if fn.Body == nil {
		p.b.WriteString(";\n")
		return
	}

	p.b.WriteString(" ")
	p.writeBlock(fn.Body, depth)
	p.b.WriteByte('\n')
}

func (p *printer) writeParam(param ast.Param, isReceiver bool) {
	if isReceiver {
		if param.Mut {
			p.b.WriteString("&mut self")
		} else {
			p.b.WriteString("&self")
		}

		return
	}

	if param.Mut {
		p.b.WriteString("mut ")
	}

	p.b.WriteString(param.Name)

	if param.Type != nil {
		p.b.WriteString(": ")
		p.b.WriteString(TypeString(param.Type))
	}
}

func (p *printer) writeStructDecl(sd *ast.StructDecl, depth int) {
	p.writeDoc(sd.Doc, depth)
	p.indent(depth)
	p.b.WriteString(visKeyword(sd.Vis))
	p.b.WriteString("struct ")
	p.b.WriteString(sd.Name)

	var gb strings.Builder
	writeGenerics(&gb, sd.Generics)
	p.b.WriteString(gb.String())
	p.b.WriteString(" {\n")

	for _, f := range sd.Fields {
		p.indent(depth + 1)
		p.b.WriteString(visKeyword(f.Vis))
		p.b.WriteString(f.Name)
		p.b.WriteString(": ")
		p.b.WriteString(TypeString(f.Type))
		p.b.WriteString(",\n")
	}

	p.indent(depth)
	p.b.WriteString("}\n")
}

func (p *printer) writeEnumDecl(ed *ast.EnumDecl, depth int) {
	p.writeDoc(ed.Doc, depth)
	p.indent(depth)
	p.b.WriteString(visKeyword(ed.Vis))
	p.b.WriteString("enum ")
	p.b.WriteString(ed.Name)

	var gb strings.Builder
	writeGenerics(&gb, ed.Generics)
	p.b.WriteString(gb.String())
	p.b.WriteString(" {\n")

	for _, v := range ed.Variants {
		p.indent(depth + 1)
		p.b.WriteString(v.Name)

		if len(v.Fields) > 0 {
			p.b.WriteByte('(')

			for i, t := range v.Fields {
				if i > 0 {
					p.b.WriteString(", ")
				}

				p.b.WriteString(TypeString(t))
			}

			p.b.WriteByte(')')
		}

		p.b.WriteString(",\n")
	}

	p.indent(depth)
	p.b.WriteString("}\n")
}

func (p *printer) writeTraitDecl(td *ast.TraitDecl, depth int) {
	p.writeDoc(td.Doc, depth)
	p.indent(depth)
	p.b.WriteString(visKeyword(td.Vis))
	p.b.WriteString("trait ")
	p.b.WriteString(td.Name)

	var gb strings.Builder
	writeGenerics(&gb, td.Generics)
	p.b.WriteString(gb.String())
	p.b.WriteString(" {\n")

	for i := range td.Methods {
		p.writeFuncDecl(&td.Methods[i], depth+1)
	}

	p.indent(depth)
	p.b.WriteString("}\n")
}

func (p *printer) writeImplDecl(id *ast.ImplDecl, depth int) {
	p.indent(depth)
	p.b.WriteString("impl")

	var gb strings.Builder
	writeGenerics(&gb, id.Generics)
	p.b.WriteString(gb.String())

	if id.Trait != "" {
		p.b.WriteString(" ")
		p.b.WriteString(id.Trait)
		p.b.WriteString(" for")
	}

	p.b.WriteString(" ")
	p.b.WriteString(TypeString(id.Type))
	p.b.WriteString(" {\n")

	for i := range id.Methods {
		p.writeFuncDecl(&id.Methods[i], depth+1)
	}

	p.indent(depth)
	p.b.WriteString("}\n")
}

func (p *printer) writeConstDecl(cd *ast.ConstDecl, depth int) {
	p.indent(depth)
	p.b.WriteString(visKeyword(cd.Vis))
	p.b.WriteString("const ")
	p.b.WriteString(cd.Name)

	if cd.Type != nil {
		p.b.WriteString(": ")
		p.b.WriteString(TypeString(cd.Type))
	}

	p.b.WriteString(" = ")
	p.b.WriteString(ExprString(cd.Value))
	p.b.WriteString(";\n")
}

func (p *printer) writeTypeAliasDecl(td *ast.TypeAliasDecl, depth int) {
	p.indent(depth)
	p.b.WriteString(visKeyword(td.Vis))
	p.b.WriteString("type ")
	p.b.WriteString(td.Name)

	var gb strings.Builder
	writeGenerics(&gb, td.Generics)
	p.b.WriteString(gb.String())
	p.b.WriteString(" = ")
	p.b.WriteString(TypeString(td.Target))
	p.b.WriteString(";\n")
}

func (p *printer) writeBlock(b *ast.Block, depth int) {
	p.b.WriteString("{\n")

	for _, s := range b.Stmts {
		p.writeStmt(s, depth+1)
	}

	if b.Tail != nil {
		p.indent(depth + 1)
		p.b.WriteString(ExprString(b.Tail))
		p.b.WriteByte('\n')
	}

	p.indent(depth)
	p.b.WriteByte('}')
}

func (p *printer) writeStmt(s ast.Stmt, depth int) {
	p.indent(depth)

	switch st := s.(type) {
	case *ast.LetStmt:
		p.b.WriteString("let ")

		if st.Mut {
			p.b.WriteString("mut ")
		}

		p.b.WriteString(PatternString(st.Pattern))

		if st.Type != nil {
			p.b.WriteString(": ")
			p.b.WriteString(TypeString(st.Type))
		}

		if st.Value != nil {
			p.b.WriteString(" = ")
			p.b.WriteString(ExprString(st.Value))
		}

		p.b.WriteString(";\n")
	case *ast.ExprStmt:
		p.b.WriteString(ExprString(st.Expr))
		p.b.WriteString(";\n")
	case *ast.ReturnStmt:
		p.b.WriteString("return")

		if st.Value != nil {
			p.b.WriteByte(' ')
			p.b.WriteString(ExprString(st.Value))
		}

		p.b.WriteString(";\n")
	case *ast.BreakStmt:
		p.b.WriteString("break")

		if st.Label != "" {
			p.b.WriteString(" '")
			p.b.WriteString(st.Label)
		}

		if st.Value != nil {
			p.b.WriteByte(' ')
			p.b.WriteString(ExprString(st.Value))
		}

		p.b.WriteString(";\n")
	case *ast.ContinueStmt:
		p.b.WriteString("continue")

		if st.Label != "" {
			p.b.WriteString(" '")
			p.b.WriteString(st.Label)
		}

		p.b.WriteString(";\n")
	case *ast.DeferStmt:
		p.b.WriteString("defer ")
		p.b.WriteString(ExprString(st.Expr))
		p.b.WriteString(";\n")
	case *ast.ItemStmt:
		p.b.WriteByte('\n')
		p.writeItem(st.Item, depth)
	default:
		p.b.WriteString(fmt.Sprintf("/* unknown stmt %T */\n", s))
	}
}

// ExprString renders a single expression as canonical source text, used
// both by the statement printer and anywhere an expression needs
// stringifying in isolation (e.g. a const initialiser).
func ExprString(e ast.Expr) string {
	if e == nil {
		return ""
	}

	switch ex := e.(type) {
	case *ast.Literal:
		return literalString(ex)
	case *ast.Ident:
		return ex.Name
	case *ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", ExprString(ex.LHS), binOpString(ex.Op), ExprString(ex.RHS))
	case *ast.UnaryExpr:
		return unaryOpString(ex.Op) + ExprString(ex.Operand)
	case *ast.AssignExpr:
		op := "="
		if ex.CompoundOp != nil {
			op = binOpString(*ex.CompoundOp) + "="
		}

		return fmt.Sprintf("%s %s %s", ExprString(ex.Target), op, ExprString(ex.Value))
	case *ast.CallExpr:
		return fmt.Sprintf("%s(%s)", ExprString(ex.Callee), exprList(ex.Args))
	case *ast.MethodCallExpr:
		return fmt.Sprintf("%s.%s(%s)", ExprString(ex.Receiver), ex.Method, exprList(ex.Args))
	case *ast.FieldExpr:
		return fmt.Sprintf("%s.%s", ExprString(ex.Base), ex.Field)
	case *ast.TupleIndexExpr:
		return fmt.Sprintf("%s.%d", ExprString(ex.Base), ex.Index)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", ExprString(ex.Base), ExprString(ex.Index))
	case *ast.StructLiteralExpr:
		return structLiteralString(ex)
	case *ast.ArrayLiteralExpr:
		if ex.Repeat != nil {
			return fmt.Sprintf("[%s; %s]", ExprString(ex.Repeat), ExprString(ex.Count))
		}

		return fmt.Sprintf("[%s]", exprList(ex.Elements))
	case *ast.TupleLiteralExpr:
		return fmt.Sprintf("(%s)", exprList(ex.Elements))
	case *ast.IfExpr:
		return ifExprString(ex)
	case *ast.MatchExpr:
		return matchExprString(ex)
	case *ast.WhileExpr:
		return fmt.Sprintf("%swhile %s %s", labelPrefix(ex.Label), ExprString(ex.Cond), blockString(ex.Body))
	case *ast.ForExpr:
		return fmt.Sprintf("%sfor %s in %s %s", labelPrefix(ex.Label), PatternString(ex.Pattern), ExprString(ex.Iterable), blockString(ex.Body))
	case *ast.LoopExpr:
		return fmt.Sprintf("%sloop %s", labelPrefix(ex.Label), blockString(ex.Body))
	case *ast.BlockExpr:
		return blockString(ex.Block)
	case *ast.CastExpr:
		return fmt.Sprintf("%s as %s", ExprString(ex.Value), TypeString(ex.Target))
	case *ast.TryExpr:
		return ExprString(ex.Value) + "?"
	case *ast.ClosureExpr:
		return closureExprString(ex)
	case *ast.AwaitExpr:
		return ExprString(ex.Value) + ".await"
	case *ast.PathExpr:
		return strings.Join(ex.Segments, "::")
	case *ast.InterpStringExpr:
		return interpStringExprString(ex)
	default:
		return fmt.Sprintf("/* unknown expr %T */", e)
	}
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}

	return "'" + label + ": "
}

func blockString(b *ast.Block) string {
	p := &printer{}
	p.writeBlock(b, 0)

	return p.b.String()
}

func exprList(exprs []ast.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = ExprString(e)
	}

	return strings.Join(parts, ", ")
}

func literalString(lit *ast.Literal) string {
	var s string

	switch lit.Kind {
	case ast.LitInt:
		s = strconv.FormatInt(lit.Raw.(int64), 10)
	case ast.LitFloat:
		s = strconv.FormatFloat(lit.Raw.(float64), 'g', -1, 64)
	case ast.LitString:
		// Raw holds the source text between the quotes, escapes unprocessed.
		s = `"` + lit.Raw.(string) + `"`
	case ast.LitBool:
		s = strconv.FormatBool(lit.Raw.(bool))
	}

	if lit.Suffix != "" {
		s += lit.Suffix
	}

	return s
}

func structLiteralString(ex *ast.StructLiteralExpr) string {
	var b strings.Builder

	b.WriteString(ex.Name)
	b.WriteString(" { ")

	for i, f := range ex.Fields {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(ExprString(f.Value))
	}

	if ex.Spread != nil {
		if len(ex.Fields) > 0 {
			b.WriteString(", ")
		}

		b.WriteString("..")
		b.WriteString(ExprString(ex.Spread))
	}

	b.WriteString(" }")

	return b.String()
}

func ifExprString(ex *ast.IfExpr) string {
	s := fmt.Sprintf("if %s %s", ExprString(ex.Cond), blockString(ex.Then))

	switch els := ex.Else.(type) {
	case nil:
		return s
	case *ast.IfExpr:
		return s + " else " + ifExprString(els)
	default:
		return s + " else " + ExprString(els)
	}
}

func matchExprString(ex *ast.MatchExpr) string {
	var b strings.Builder

	b.WriteString("match ")
	b.WriteString(ExprString(ex.Scrutinee))
	b.WriteString(" {\n")

	for _, arm := range ex.Arms {
		b.WriteString(indentUnit)
		b.WriteString(PatternString(arm.Pattern))

		if arm.Guard != nil {
			b.WriteString(" if ")
			b.WriteString(ExprString(arm.Guard))
		}

		b.WriteString(" => ")
		b.WriteString(ExprString(arm.Body))
		b.WriteString(",\n")
	}

	b.WriteString("}")

	return b.String()
}

func closureExprString(ex *ast.ClosureExpr) string {
	var b strings.Builder

	if ex.Move {
		b.WriteString("move ")
	}

	if ex.IsAsync {
		b.WriteString("async ")
	}

	b.WriteByte('|')

	for i, param := range ex.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(param.Name)

		if param.Type != nil {
			b.WriteString(": ")
			b.WriteString(TypeString(param.Type))
		}
	}

	b.WriteString("| ")
	b.WriteString(ExprString(ex.Body))

	return b.String()
}

func interpStringExprString(ex *ast.InterpStringExpr) string {
	var b strings.Builder

	b.WriteByte('"')

	for i, chunk := range ex.Chunks {
		b.WriteString(chunk)

		if i < len(ex.Exprs) {
			b.WriteString("${")
			b.WriteString(ExprString(ex.Exprs[i]))
			b.WriteByte('}')
		}
	}

	b.WriteByte('"')

	return b.String()
}

func binOpString(op ast.BinOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpRem:
		return "%"
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	case ast.OpBitAnd:
		return "&"
	case ast.OpBitOr:
		return "|"
	case ast.OpBitXor:
		return "^"
	case ast.OpShl:
		return "<<"
	case ast.OpShr:
		return ">>"
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGe:
		return ">="
	case ast.OpRange:
		return ".."
	case ast.OpRangeEq:
		return "..="
	default:
		return "?"
	}
}

func unaryOpString(op ast.UnaryOp) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpNot:
		return "!"
	case ast.OpBitNot:
		return "~"
	case ast.OpRef:
		return "&"
	case ast.OpRefMut:
		return "&mut "
	case ast.OpDeref:
		return "*"
	default:
		return ""
	}
}

// PatternString renders a pattern as canonical source text.
func PatternString(pat ast.Pattern) string {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return "_"
	case *ast.BindPattern:
		s := p.Name

		if p.Mut {
			s = "mut " + s
		}

		if p.SubPattern != nil {
			s += " @ " + PatternString(p.SubPattern)
		}

		return s
	case *ast.LiteralPattern:
		return literalString(&p.Lit)
	case *ast.TuplePattern:
		parts := make([]string, len(p.Elements))
		for i, e := range p.Elements {
			parts[i] = PatternString(e)
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.StructPattern:
		return structPatternString(p)
	case *ast.VariantPattern:
		return variantPatternString(p)
	case *ast.RefPattern:
		if p.Mut {
			return "&mut " + PatternString(p.Pattern)
		}

		return "&" + PatternString(p.Pattern)
	case *ast.RangePattern:
		op := ".."
		if p.Inclusive {
			op = "..="
		}

		return literalString(&p.Low) + op + literalString(&p.High)
	case *ast.OrPattern:
		parts := make([]string, len(p.Alternatives))
		for i, a := range p.Alternatives {
			parts[i] = PatternString(a)
		}

		return strings.Join(parts, " | ")
	default:
		return fmt.Sprintf("/* unknown pattern %T */", pat)
	}
}

func structPatternString(p *ast.StructPattern) string {
	var b strings.Builder

	b.WriteString(p.Name)
	b.WriteString(" { ")

	for i, f := range p.Fields {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(PatternString(f.Pattern))
	}

	if p.Rest {
		if len(p.Fields) > 0 {
			b.WriteString(", ")
		}

		b.WriteString("..")
	}

	b.WriteString(" }")

	return b.String()
}

func variantPatternString(p *ast.VariantPattern) string {
	var b strings.Builder

	if p.Enum != "" {
		b.WriteString(p.Enum)
		b.WriteString("::")
	}

	b.WriteString(p.Variant)

	if len(p.Elements) > 0 {
		b.WriteByte('(')

		for i, e := range p.Elements {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(PatternString(e))
		}

		b.WriteByte(')')
	}

	return b.String()
}

// TypeString renders a type reference as canonical source text.
func TypeString(t ast.Type) string {
	switch ty := t.(type) {
	case nil:
		return "()"
	case *ast.NamedType:
		s := ty.Name

		if len(ty.Args) > 0 {
			parts := make([]string, len(ty.Args))
			for i, a := range ty.Args {
				parts[i] = TypeString(a)
			}

			s += "<" + strings.Join(parts, ", ") + ">"
		}

		return s
	case *ast.RefType:
		if ty.Mut {
			return "&mut " + TypeString(ty.Target)
		}

		return "&" + TypeString(ty.Target)
	case *ast.ArrayType:
		return fmt.Sprintf("[%s; %s]", TypeString(ty.Elem), ExprString(ty.Length))
	case *ast.SliceType:
		return fmt.Sprintf("[%s]", TypeString(ty.Elem))
	case *ast.TupleType:
		parts := make([]string, len(ty.Elements))
		for i, e := range ty.Elements {
			parts[i] = TypeString(e)
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.FuncType:
		parts := make([]string, len(ty.Params))
		for i, p := range ty.Params {
			parts[i] = TypeString(p)
		}

		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), TypeString(ty.Return))
	case *ast.DynTraitType:
		return "dyn " + ty.Trait
	case *ast.UnitType:
		return "()"
	default:
		return fmt.Sprintf("/* unknown type %T */", t)
	}
}
