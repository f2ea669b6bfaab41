// Package borrow implements Home's flow-sensitive borrow checker: it
// tracks, for every local binding, whether it is owned, moved, or
// borrowed (shared or mutable), and rejects programs that violate
// ownership invariants.
package borrow

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/types"
	"github.com/home-lang/home/pkg/util/source"

	"github.com/bits-and-blooms/bitset"
)

// State is the ownership state of a single binding at a program point.
type State int

// Ownership states.
const (
	Owned State = iota
	Moved
	BorrowedShared
	BorrowedMut
)

// bindingSet assigns each tracked local binding a stable bit index, so
// flow-sensitive state can be represented as bitsets for cheap
// block-join (set intersection) operations.
type bindingSet struct {
	index map[string]uint
	names []string
}

func newBindingSet() *bindingSet { return &bindingSet{index: make(map[string]uint)} }

func (b *bindingSet) id(name string) uint {
	if i, ok := b.index[name]; ok {
		return i
	}

	i := uint(len(b.names))
	b.index[name] = i
	b.names = append(b.names, name)

	return i
}

// frame tracks which bindings are currently moved or mutably-borrowed (one
// bitset each) and how many shared borrows each binding has (a count map).
// A binding in neither bitset and with no shared count is Owned.
type frame struct {
	moved       *bitset.BitSet
	sharedCount map[uint]int
	mutBorrowed *bitset.BitSet
}

func newFrame(n uint) *frame {
	return &frame{
		moved:       bitset.New(n),
		sharedCount: make(map[uint]int),
		mutBorrowed: bitset.New(n),
	}
}

func (f *frame) clone() *frame {
	nf := &frame{moved: f.moved.Clone(), sharedCount: make(map[uint]int, len(f.sharedCount)), mutBorrowed: f.mutBorrowed.Clone()}
	for k, v := range f.sharedCount {
		nf.sharedCount[k] = v
	}

	return nf
}

// join computes the conservative intersection of two frames at a
// control-flow merge point: a binding is only considered moved/borrowed
// after the join if it is moved/borrowed on *every* incoming path.
func join(a, b *frame) *frame {
	j := &frame{
		moved:       a.moved.Intersection(b.moved),
		sharedCount: make(map[uint]int),
		mutBorrowed: a.mutBorrowed.Intersection(b.mutBorrowed),
	}

	for k, av := range a.sharedCount {
		if bv, ok := b.sharedCount[k]; ok {
			j.sharedCount[k] = min(av, bv)
		}
	}

	return j
}

// borrowRecord remembers one borrow taken within the block currently on
// top of Checker.borrows, so it can be released the moment control leaves
// that block, rather than living for the rest of the function.
type borrowRecord struct {
	idx uint
	mut bool
}

// Checker runs the borrow analysis over a single function body.
type Checker struct {
	diags     *diag.Collector
	file      *source.File
	spans     map[ast.NodeID]source.Span
	exprTypes map[ast.NodeID]types.Type
	bset      *bindingSet
	frame     *frame
	// params names the function's parameters, the only bindings whose
	// region is guaranteed to outlive the function, for escape checking.
	params map[string]bool
	// borrows is a stack of per-block borrow lists: checkBlock pushes an
	// empty entry on entry and releases every borrow recorded in it when
	// control leaves that block.
	borrows [][]borrowRecord
}

// NewChecker constructs a borrow checker for one function. exprTypes is
// the type checker's resolved per-expression type table, consulted to
// decide whether a by-value use moves its operand (a struct, enum, array
// or tuple) or merely copies it (a primitive or reference).
func NewChecker(file *source.File, spans map[ast.NodeID]source.Span, diags *diag.Collector, exprTypes map[ast.NodeID]types.Type) *Checker {
	return &Checker{diags: diags, file: file, spans: spans, exprTypes: exprTypes, bset: newBindingSet()}
}

func (c *Checker) errorf(id ast.NodeID, code diag.Code, format string, args ...any) {
	span := c.spans[id]
	c.diags.Report(diag.Diagnostic{Severity: diag.SeverityError, Code: code, Message: fmt.Sprintf(format, args...), File: c.file, Span: span})
}

// CheckFunc analyses a function's parameters and body.
func (c *Checker) CheckFunc(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}

	c.params = make(map[string]bool, len(fn.Params))

	for _, p := range fn.Params {
		c.bset.id(p.Name)
		c.params[p.Name] = true
	}

	c.frame = newFrame(uint(len(fn.Params)) + 16)
	c.checkBlock(fn.Body)

	if fn.Body.Tail != nil {
		c.checkEscape(fn.Body.Tail)
	}
}

func (c *Checker) checkBlock(b *ast.Block) {
	c.borrows = append(c.borrows, nil)

	for _, s := range b.Stmts {
		c.checkStmt(s)
	}

	if b.Tail != nil {
		c.checkExpr(b.Tail)
	}

	c.releaseBlockBorrows()
}

// releaseBlockBorrows undoes every borrow recorded in the block that is
// ending, implementing the rule that a borrow dies when control leaves
// its narrowest enclosing block rather than living until the function
// returns.
func (c *Checker) releaseBlockBorrows() {
	n := len(c.borrows) - 1
	recs := c.borrows[n]
	c.borrows = c.borrows[:n]

	for _, r := range recs {
		if r.mut {
			c.frame.mutBorrowed.Clear(r.idx)
			continue
		}

		c.frame.sharedCount[r.idx]--

		if c.frame.sharedCount[r.idx] <= 0 {
			delete(c.frame.sharedCount, r.idx)
		}
	}
}

func (c *Checker) recordBorrow(idx uint, mut bool) {
	if len(c.borrows) == 0 {
		return
	}

	n := len(c.borrows) - 1
	c.borrows[n] = append(c.borrows[n], borrowRecord{idx, mut})
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.Value != nil {
			c.checkExpr(st.Value)
			c.moveArg(st.Value)
		}

		for _, name := range patternNames(st.Pattern) {
			c.bset.id(name)
		}
	case *ast.ExprStmt:
		c.checkExpr(st.Expr)
	case *ast.ReturnStmt:
		if st.Value != nil {
			c.checkExpr(st.Value)
			c.checkEscape(st.Value)
		}
	case *ast.DeferStmt:
		c.checkExpr(st.Expr)
	}
}

func patternNames(p ast.Pattern) []string {
	switch pat := p.(type) {
	case *ast.BindPattern:
		return []string{pat.Name}
	case *ast.TuplePattern:
		var names []string
		for _, e := range pat.Elements {
			names = append(names, patternNames(e)...)
		}

		return names
	default:
		return nil
	}
}

// checkExpr walks an expression, applying move/borrow effects to the
// current frame and reporting violations: use-after-move, a mutable
// borrow overlapping any other live borrow, and assignment to a currently
// borrowed binding.
func (c *Checker) checkExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Ident:
		c.useBinding(ex.ID, ex.Name)
	case *ast.UnaryExpr:
		switch ex.Op {
		case ast.OpRef:
			c.borrowShared(ex)
		case ast.OpRefMut:
			c.borrowMut(ex)
		default:
			c.checkExpr(ex.Operand)
		}
	case *ast.BinaryExpr:
		c.checkExpr(ex.LHS)
		c.checkExpr(ex.RHS)
	case *ast.AssignExpr:
		c.checkExpr(ex.Value)
		c.checkAssignTarget(ex)
		c.checkExpr(ex.Target)
	case *ast.CallExpr:
		c.checkExpr(ex.Callee)

		for _, a := range ex.Args {
			c.checkExpr(a)
			c.moveArg(a)
		}
	case *ast.MethodCallExpr:
		c.checkExpr(ex.Receiver)

		for _, a := range ex.Args {
			c.checkExpr(a)
			c.moveArg(a)
		}
	case *ast.FieldExpr:
		c.checkExpr(ex.Base)
	case *ast.IndexExpr:
		c.checkExpr(ex.Base)
		c.checkExpr(ex.Index)
	case *ast.StructLiteralExpr:
		for _, f := range ex.Fields {
			c.checkExpr(f.Value)
		}
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elements {
			c.checkExpr(el)
		}
	case *ast.IfExpr:
		c.checkExpr(ex.Cond)
		c.joinBranches(ex)
	case *ast.MatchExpr:
		c.checkExpr(ex.Scrutinee)

		for _, arm := range ex.Arms {
			c.checkExpr(arm.Body)
		}
	case *ast.WhileExpr:
		c.checkExpr(ex.Cond)
		c.checkBlock(ex.Body)
	case *ast.ForExpr:
		c.checkExpr(ex.Iterable)
		c.checkBlock(ex.Body)
	case *ast.LoopExpr:
		c.checkBlock(ex.Body)
	case *ast.BlockExpr:
		c.checkBlock(ex.Block)
	case *ast.CastExpr:
		c.checkExpr(ex.Value)
	case *ast.TryExpr:
		c.checkExpr(ex.Value)
	case *ast.AwaitExpr:
		c.checkExpr(ex.Value)
	}
}

func (c *Checker) joinBranches(ex *ast.IfExpr) {
	before := c.frame.clone()

	c.checkBlock(ex.Then)
	thenFrame := c.frame

	c.frame = before

	if ex.Else != nil {
		c.checkExpr(ex.Else)
	}

	c.frame = join(thenFrame, c.frame)
}

func (c *Checker) useBinding(id ast.NodeID, name string) {
	idx := c.bset.id(name)

	if c.frame.moved.Test(idx) {
		c.errorf(id, "H0301", "use of moved value %q", name)
	}
}

func (c *Checker) borrowShared(ex *ast.UnaryExpr) {
	ident, ok := ex.Operand.(*ast.Ident)
	if !ok {
		c.checkExpr(ex.Operand)
		return
	}

	idx := c.bset.id(ident.Name)

	if c.frame.mutBorrowed.Test(idx) {
		c.errorf(ex.ID, "H0302", "cannot borrow %q as shared because it is already mutably borrowed", ident.Name)
		return
	}

	c.frame.sharedCount[idx]++
	c.recordBorrow(idx, false)
}

func (c *Checker) borrowMut(ex *ast.UnaryExpr) {
	ident, ok := ex.Operand.(*ast.Ident)
	if !ok {
		c.checkExpr(ex.Operand)
		return
	}

	idx := c.bset.id(ident.Name)

	if c.frame.sharedCount[idx] > 0 || c.frame.mutBorrowed.Test(idx) {
		c.errorf(ex.ID, "H0303", "cannot borrow %q as mutable because it is already borrowed", ident.Name)
		return
	}

	c.frame.mutBorrowed.Set(idx)
	c.recordBorrow(idx, true)
}

// checkAssignTarget rejects `x = ...` while x is currently borrowed,
// shared or mutable: the borrow's reader(s) would otherwise observe a
// value changing out from under them.
func (c *Checker) checkAssignTarget(ex *ast.AssignExpr) {
	ident, ok := ex.Target.(*ast.Ident)
	if !ok {
		return
	}

	idx := c.bset.id(ident.Name)

	if c.frame.sharedCount[idx] > 0 || c.frame.mutBorrowed.Test(idx) {
		c.errorf(ex.ID, "H0304", "cannot assign to %q while it is borrowed", ident.Name)
	}
}

// checkEscape rejects returning a reference to a binding whose storage
// does not outlive the function call: only a parameter's region is
// guaranteed to still exist in the caller once this function returns, so
// a reference to any other local escapes a frame that no longer exists.
func (c *Checker) checkEscape(e ast.Expr) {
	un, ok := e.(*ast.UnaryExpr)
	if !ok || (un.Op != ast.OpRef && un.Op != ast.OpRefMut) {
		return
	}

	ident, ok := un.Operand.(*ast.Ident)
	if !ok {
		return
	}

	if !c.params[ident.Name] {
		c.errorf(un.ID, "H0305", "cannot return a reference to local %q: its region does not outlive the function", ident.Name)
	}
}

// moveArg applies move semantics to a by-value use of e: if e is a plain
// identifier naming a non-Copy binding, using it here (as a call argument
// or a let-binding's initializer) consumes it, the same decision
// pkg/comptime and pkg/codegen make independently from the same type
// information when lowering a by-value use.
func (c *Checker) moveArg(e ast.Expr) {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return
	}

	if c.isCopyType(c.exprTypes[ident.ID]) {
		return
	}

	c.Move(ident.ID, ident.Name)
}

// isCopyType reports whether t is Copy — copied bit-for-bit on a
// by-value use rather than moved. Primitives and references copy;
// anything else (a struct, enum, array or tuple) moves. A nil/untracked
// type defaults to Copy, so an argument of unresolved type is never
// spuriously flagged as moved.
func (c *Checker) isCopyType(t types.Type) bool {
	switch t.(type) {
	case *types.Primitive, *types.Ref, nil:
		return true
	default:
		return false
	}
}

// Move records that a binding's value has been moved out of (e.g. passed
// by value to a function taking ownership, or rebound by a let), making
// any subsequent use an error.
func (c *Checker) Move(id ast.NodeID, name string) {
	idx := c.bset.id(name)
	c.frame.moved.Set(idx)
	_ = id
}
