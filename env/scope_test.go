package env

import (
	"testing"

	"github.com/mddl-lang/mddl/expr"
	"github.com/mddl-lang/mddl/syntax"
	"github.com/mddl-lang/mddl/value"
	"github.com/stretchr/testify/assert"
)

func varNode(id string) *syntax.ASTNode {
	return &syntax.ASTNode{Type: syntax.Variable, ID: id}
}

func branchNode(id string) *syntax.ASTNode {
	return &syntax.ASTNode{Type: syntax.Branch, ID: id}
}

func TestAddASTBuildsSignatureThenBody(t *testing.T) {
	s := NewScope(nil, "chord", Signature)

	assert.True(t, s.AddAST(varNode("x")))
	assert.Equal(t, []string{"x"}, s.Args)

	s.CompleteStage()
	assert.Equal(t, Body, s.Stage)
	assert.Equal(t, []string{"x"}, s.Vars)

	assert.True(t, s.AddAST(varNode("x")))
	assert.NotNil(t, s.Head)
	assert.Same(t, s.Head, s.Tail)
}

func TestAddASTOnSignatureRejectsNonVariable(t *testing.T) {
	s := NewScope(nil, "chord", Signature)
	assert.False(t, s.AddAST(branchNode("ab")))
}

func TestAddASTPanicsWhenDefined(t *testing.T) {
	s := NewScope(nil, "chord", Signature)
	s.CompleteStage()
	s.CompleteStage()
	assert.Equal(t, Defined, s.Stage)
	assert.Panics(t, func() { s.AddAST(varNode("x")) })
}

func TestBuildVariableReusesExistingStackSlot(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	first := s.buildVariable(varNode("x"))
	second := s.buildVariable(varNode("x"))
	assert.Equal(t, 0, first.StackOffset)
	assert.Equal(t, 0, second.StackOffset)
	assert.Equal(t, []string{"x"}, s.Vars)

	third := s.buildVariable(varNode("y"))
	assert.Equal(t, 1, third.StackOffset)
}

func TestBuildValueLiteralDecodesPositiveDigits(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	ast := &syntax.ASTNode{Type: syntax.ValueLiteral, ID: string([]byte{0, 4, 2})}
	lit := s.buildValueLiteral(ast)
	assert.Equal(t, int64(42), lit.Value)
}

func TestBuildValueLiteralAppliesLeadingSign(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	neg4 := int8(-4)
	ast := &syntax.ASTNode{Type: syntax.ValueLiteral, ID: string([]byte{0, byte(neg4), 2})}
	lit := s.buildValueLiteral(ast)
	assert.Equal(t, int64(-42), lit.Value)
}

func TestBuildValueLiteralEmptySymbolIsZero(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	ast := &syntax.ASTNode{Type: syntax.ValueLiteral, ID: ""}
	lit := s.buildValueLiteral(ast)
	assert.Equal(t, int64(0), lit.Value)
}

func TestBuildSequenceLiteralReusesPendingCapture(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	ast := &syntax.ASTNode{Type: syntax.SequenceLiteral, ID: "abc"}

	first := s.buildSequenceLiteral(ast)
	assert.Equal(t, value.SEQ_LIT, first.Ref.Type)
	assert.Equal(t, 1, len(s.SlrxQueue))

	second := s.buildSequenceLiteral(ast)
	assert.Same(t, first.Ref.Ref, second.Ref.Ref)
	assert.Equal(t, 1, len(s.SlrxQueue), "a second reference to the same id must not queue twice")
}

func TestSlrxPendingAndPop(t *testing.T) {
	s := NewScope(nil, "chord", Body)
	assert.False(t, s.SlrxPending())

	s.buildSequenceLiteral(&syntax.ASTNode{Type: syntax.SequenceLiteral, ID: "abc"})
	assert.True(t, s.SlrxPending())

	popped := s.SlrxPop()
	assert.Equal(t, "abc", popped.ID)
	assert.False(t, s.SlrxPending())
}

func TestQueryScopeFindsChildOfAncestor(t *testing.T) {
	root := NewScope(nil, "root", Body)
	fn := NewScope(root, "fn", Signature)
	fn.ID = "fn:0"
	root.AddChildScope(fn)

	nested := NewScope(fn, "inner", Body)
	assert.Same(t, fn, nested.QueryScope("fn:0"))
	assert.Nil(t, nested.QueryScope("missing:0"))
}

func TestVarFootprintSumsAcrossChildren(t *testing.T) {
	root := NewScope(nil, "root", Body)
	root.Vars = []string{"a", "b"}

	child := NewScope(root, "fn", Body)
	child.Vars = []string{"c"}
	root.AddChildScope(child)

	assert.Equal(t, uint64(3), root.VarFootprint())
}

func TestResolveBranchLinksPairsMatchingIDs(t *testing.T) {
	s := NewScope(nil, "root", Body)

	assert.True(t, s.AddAST(branchNode("ab")))
	assert.True(t, s.AddAST(varNode("x")))
	assert.True(t, s.AddAST(branchNode("ab")))

	s.ResolveBranchLinks()

	first := s.Head.Expr.(*expr.BranchExpr)
	second := s.Head.Next.Next.Expr.(*expr.BranchExpr)

	assert.Same(t, s.Head.Next, first.BranchUp)
	assert.Nil(t, first.BranchDown)
	assert.Same(t, s.Head.Next, second.BranchUp)
	assert.Nil(t, second.BranchDown)
}

func TestResolveFunctionLinksResolvesForwardReference(t *testing.T) {
	root := NewScope(nil, "root", Body)
	call := expr.NewFunctionCall()
	call.ID = "fn:0"
	root.UnresolvedCalls = append(root.UnresolvedCalls, call)

	fn := NewScope(root, "fn", Signature)
	fn.ID = "fn:0"
	root.AddChildScope(fn)

	root.ResolveFunctionLinks()
	assert.Empty(t, root.UnresolvedCalls)
	assert.Same(t, fn, call.ScopeRef)
}
