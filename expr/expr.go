// Package expr defines the expression tree a Scope builds from a
// disambiguated AST: the runtime's tree walker operates entirely over
// this tree, never touching AST nodes directly.
package expr

import (
	"strconv"
	"strings"

	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/util"
	"github.com/mddl-lang/mddl/value"
)

// ExprType classifies a node of the expression tree.
type ExprType uint8

const (
	Unknown ExprType = iota
	Operation
	Branch
	FunctionCall
	Variable
	ValueLiteral
	SequenceLiteral
	Error
)

// Expr is one node of the expression tree. Every concrete node type
// embeds Base, which supplies the shared bookkeeping every node needs:
// type, return type, parent link, and error flag.
type Expr interface {
	Type() ExprType
	ReturnType() value.DataType
	SetReturnType(value.DataType)
	Parent() Expr
	SetParent(Expr)
	IsError() bool
	SetError(bool)
	String() string
}

// Base implements the Expr bookkeeping methods; concrete node types
// embed it and override String().
type Base struct {
	exprType   ExprType
	returnType value.DataType
	parent     Expr
	err        bool
}

func newBase(t ExprType, rt value.DataType, err bool) Base {
	return Base{exprType: t, returnType: rt, err: err}
}

func (b *Base) Type() ExprType { return b.exprType }
func (b *Base) ReturnType() value.DataType { return b.returnType }
func (b *Base) SetReturnType(t value.DataType) { b.returnType = t }
func (b *Base) Parent() Expr { return b.parent }
func (b *Base) SetParent(p Expr) { b.parent = p }
func (b *Base) IsError() bool { return b.err }
func (b *Base) SetError(e bool) { b.err = e }

func exprString(e Expr) string {
	if e == nil {
		return "NULL"
	}
	return e.String()
}

// Root is one entry of a scope's executable body: a single statement
// expression, chained to the next by Next. A BranchExpr root forks
// execution into BranchUp/BranchDown rather than falling through to
// Next.
type Root struct {
	Next *Root
	Expr Expr
}

func (r *Root) IsBranch() bool { return r != nil && r.Expr != nil && r.Expr.Type() == Branch }

// FunctionCallExpr invokes a user-defined function, identified by the
// chord that named it at its definition site. ScopeRef is the
// function's own body scope (an *env.Scope in practice); it is kept
// opaque here so this package never imports env, which builds Expr
// trees and therefore must import expr.
type FunctionCallExpr struct {
	Base

	Chord    string
	ID       string
	Children []Expr
	ScopeRef any
}

func NewFunctionCall() *FunctionCallExpr {
	return &FunctionCallExpr{Base: newBase(FunctionCall, value.VSEQ, false)}
}

func (f *FunctionCallExpr) String() string {
	parts := make([]string, len(f.Children))
	for i, c := range f.Children {
		parts[i] = exprString(c)
	}
	return "FN " + util.SymbolString(f.Chord) + "( " + strings.Join(parts, ", ") + " )"
}

// OperationExpr applies a dispatched optable kernel to two operand
// subtrees. Note is the chord bass note the operator was struck at,
// used only to group a left-associative run of same-note operations
// for display.
type OperationExpr struct {
	Base

	ChildLhs Expr
	ChildRhs Expr
	LhsType  value.DataType
	RhsType  value.DataType
	Note     uint8
	Group    optable.OpId
	Fn       optable.Fn
	Name     string
}

func NewOperation() *OperationExpr {
	return &OperationExpr{Base: newBase(Operation, value.UNKNOWN, false), Name: "UNKNOWN"}
}

func (o *OperationExpr) String() string {
	return o.Name + "( " + o.OperandsToString() + " )"
}

// OperandsToString flattens a left-associative run of operations that
// share this node's bass note into one comma-separated operand list,
// the way a held chord spells n-ary application of its operator.
func (o *OperationExpr) OperandsToString() string {
	var lhsTail []string
	lhs := o.ChildLhs

	for {
		op, ok := lhs.(*OperationExpr)
		if !ok || op.Note != o.Note {
			break
		}
		lhsTail = append([]string{exprString(op.ChildRhs)}, lhsTail...)
		lhs = op.ChildLhs
	}

	str := exprString(lhs)
	for _, s := range lhsTail {
		str += ", " + s
	}

	if o.ChildRhs != nil {
		str += ", " + exprString(o.ChildRhs)
	}
	return str
}

// QueryBook resolves this operation's kernel from optable, widening
// lhs/rhs along the implicit-cast lattice until a match is found (or
// exhausted, at which point the operation is marked an error). When
// forceCopy is set (the operand is bound to a variable slot that must
// not be mutated in place) each type is pre-collapsed to its
// copy-safe counterpart before lookup begins.
func (o *OperationExpr) QueryBook(forceCopy bool) {
	lhsT, rhsT := o.LhsType, o.RhsType
	if forceCopy {
		lhsT = value.ToCopyType(lhsT)
		rhsT = value.ToCopyType(rhsT)
	}

	if entry, ok := optable.Lookup(o.Group, lhsT, rhsT); ok {
		o.fromBook(lhsT, rhsT, entry)
		return
	}

	for value.HasImplicitCast(rhsT) {
		rhsT = value.ImplicitCast(rhsT)
		if entry, ok := optable.Lookup(o.Group, lhsT, rhsT); ok {
			o.fromBook(lhsT, rhsT, entry)
			return
		}
	}

	for value.HasImplicitCast(lhsT) {
		lhsT = value.ImplicitCast(lhsT)
		if entry, ok := optable.Lookup(o.Group, lhsT, rhsT); ok {
			o.fromBook(lhsT, rhsT, entry)
			return
		}
	}

	o.SetError(true)
}

func (o *OperationExpr) fromBook(lhsT, rhsT value.DataType, entry optable.Entry) {
	o.LhsType = lhsT
	o.RhsType = rhsT
	o.Name = entry.Name
	o.Fn = entry.Fn
	o.SetReturnType(entry.ReturnT)
}

// BranchExpr forks execution on the truthiness of its comparison
// child (an OperationExpr built from the OP_MI/COMPARE group) into
// BranchUp when true, BranchDown when false.
type BranchExpr struct {
	Base

	ID         string
	Child      *OperationExpr
	BranchUp   *Root
	BranchDown *Root
}

// CompareGroup is the operator group a branch's condition is always
// dispatched through.
const CompareGroup = optable.OP_MI

func NewBranch() *BranchExpr {
	return &BranchExpr{Base: newBase(Branch, value.VOID, false)}
}

func (b *BranchExpr) String() string {
	inner := ""
	if b.Child != nil {
		inner = " " + b.Child.OperandsToString() + " "
	}
	return "BR " + util.SymbolString(b.ID) + "(" + inner + ")"
}

// VariableExpr resolves to whatever value currently occupies a named
// stack slot.
type VariableExpr struct {
	Base

	ID          string
	StackOffset int
}

func NewVariable() *VariableExpr {
	return &VariableExpr{Base: newBase(Variable, value.SEQ, false)}
}

func (v *VariableExpr) String() string { return util.SymbolString(v.ID) }

// ValueLiteralExpr is a literal scalar spelled by a run of staccato
// notes above the active split pitch.
type ValueLiteralExpr struct {
	Base

	Value int64
}

func NewValueLiteral() *ValueLiteralExpr {
	return &ValueLiteralExpr{Base: newBase(ValueLiteral, value.VALUE, false)}
}

func (v *ValueLiteralExpr) String() string { return strconv.FormatInt(v.Value, 10) }

// SequenceLiteralExpr is a captured run of held notes, identified by
// the staccato run below the split pitch that introduced it. Ref
// holds the captured (possibly still-recording) sequence.
type SequenceLiteralExpr struct {
	Base

	ID   string
	Ref  value.DataRef
	Note uint8
}

func NewSequenceLiteral() *SequenceLiteralExpr {
	return &SequenceLiteralExpr{
		Base: newBase(SequenceLiteral, value.SEQ_LIT, false),
		Ref:  value.NewTyped(value.SEQ_LIT),
	}
}

func (s *SequenceLiteralExpr) Release() { s.Ref.Release() }

func (s *SequenceLiteralExpr) String() string { return "[" + util.SymbolString(s.ID) + "]" }

// ErrorExpr marks a position in the tree that failed to resolve to
// any of the above: a malformed phrase, or one whose operand types
// never found a kernel.
type ErrorExpr struct {
	Base
}

func NewError() *ErrorExpr {
	return &ErrorExpr{Base: newBase(Error, value.ERROR, true)}
}

func (e *ErrorExpr) String() string { return "Error" }
