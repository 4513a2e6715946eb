package expr

import (
	"testing"

	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/value"
	"github.com/stretchr/testify/assert"
)

func TestBaseBookkeeping(t *testing.T) {
	v := NewVariable()

	assert.Nil(t, v.Parent())
	v.SetParent(v)
	assert.Same(t, v, v.Parent())

	assert.False(t, v.IsError())
	v.SetError(true)
	assert.True(t, v.IsError())

	v.SetReturnType(value.VSEQ)
	assert.Equal(t, value.VSEQ, v.ReturnType())
}

func TestValueLiteralString(t *testing.T) {
	lit := NewValueLiteral()
	lit.Value = 42
	assert.Equal(t, "42", lit.String())

	lit.Value = -3
	assert.Equal(t, "-3", lit.String())
}

func TestVariableString(t *testing.T) {
	v := NewVariable()
	v.ID = string([]byte{0})
	assert.Equal(t, "c", v.String())
}

func TestSequenceLiteralStringAndRelease(t *testing.T) {
	s := NewSequenceLiteral()
	s.ID = string([]byte{0})
	assert.Equal(t, "[c]", s.String())
	assert.NotPanics(t, func() { s.Release() })
}

func TestErrorExprIsErrorByDefault(t *testing.T) {
	e := NewError()
	assert.True(t, e.IsError())
	assert.Equal(t, value.ERROR, e.ReturnType())
	assert.Equal(t, "Error", e.String())
}

func TestRootIsBranch(t *testing.T) {
	branchRoot := &Root{Expr: NewBranch()}
	assert.True(t, branchRoot.IsBranch())

	litRoot := &Root{Expr: NewValueLiteral()}
	assert.False(t, litRoot.IsBranch())

	var nilRoot *Root
	assert.False(t, nilRoot.IsBranch())
}

func TestFunctionCallStringJoinsChildrenAndTreatsNilAsNull(t *testing.T) {
	f := NewFunctionCall()
	f.Chord = string([]byte{0})

	lit := NewValueLiteral()
	lit.Value = 5
	f.Children = []Expr{lit, nil}

	assert.Equal(t, "FN c( 5, NULL )", f.String())
}

func TestOperationExprOperandsToStringFlattensSameNoteChain(t *testing.T) {
	litA, litB, litC := NewValueLiteral(), NewValueLiteral(), NewValueLiteral()
	litA.Value, litB.Value, litC.Value = 1, 2, 3

	op1 := NewOperation()
	op1.Note = 60
	op1.ChildLhs = litA
	op1.ChildRhs = litB

	op2 := NewOperation()
	op2.Note = 60
	op2.ChildLhs = op1
	op2.ChildRhs = litC

	assert.Equal(t, "1, 2, 3", op2.OperandsToString())
}

func TestOperationExprOperandsToStringStopsAtDifferentNote(t *testing.T) {
	litA, litB := NewValueLiteral(), NewValueLiteral()
	litA.Value, litB.Value = 1, 2

	op1 := NewOperation()
	op1.Note = 60
	op1.ChildLhs = litA
	op1.ChildRhs = litB

	op2 := NewOperation()
	op2.Note = 64
	op2.ChildLhs = op1

	assert.Equal(t, "UNKNOWN( 1, 2 )", op2.OperandsToString(), "a different bass note must not flatten into the parent's operand list")
}

func TestOperationExprQueryBookFindsExactMatch(t *testing.T) {
	op := NewOperation()
	op.Group = optable.OP_DO
	op.LhsType = value.VALUE
	op.RhsType = value.NONE

	op.QueryBook(false)

	assert.False(t, op.IsError())
	assert.Equal(t, value.VSEQ, op.ReturnType())
	assert.Equal(t, value.VALUE, op.LhsType)
}

func TestOperationExprQueryBookWidensLhsUntilMatch(t *testing.T) {
	op := NewOperation()
	op.Group = optable.OP_FA
	op.LhsType = value.SEQ_LIT
	op.RhsType = value.VALUE

	op.QueryBook(false)

	assert.False(t, op.IsError())
	assert.Equal(t, value.SEQ, op.LhsType)
	assert.Equal(t, value.VALUE, op.RhsType)
	assert.Equal(t, value.SEQ, op.ReturnType())
}

func TestOperationExprQueryBookMarksErrorWhenNoKernelFound(t *testing.T) {
	op := NewOperation()
	op.Group = optable.OpId(0xFF)
	op.LhsType = value.VALUE
	op.RhsType = value.NONE

	op.QueryBook(false)

	assert.True(t, op.IsError())
}

func TestBranchExprStringWithoutChild(t *testing.T) {
	b := NewBranch()
	b.ID = string([]byte{0, 4})
	assert.Equal(t, "BR ce()", b.String())
}
