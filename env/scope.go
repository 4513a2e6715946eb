// Package env binds disambiguated syntax trees into the expression
// trees the runtime executes, resolving variables to stack slots,
// function calls to their defining scope, and branches to the
// expression roots they jump between.
package env

import (
	"strconv"

	"github.com/mddl-lang/mddl/expr"
	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/syntax"
	"github.com/mddl-lang/mddl/util"
	"github.com/mddl-lang/mddl/value"
)

// Stage tracks how much of a scope's function signature and body has
// been bound. A scope starts at Signature (collecting argument
// variables), moves to Body once its def phrase closes, and reaches
// Defined once every statement in its body has been bound and its
// branch links resolved.
type Stage uint8

const (
	Signature Stage = iota
	Body
	Defined
)

func makeScopeID(chord string, nArgs int) string {
	return chord + ":" + strconv.Itoa(nArgs)
}

// detectRootNote derives the bass note a scope's operators resolve
// intervals against. Every scope currently shares the global root;
// per-function root notes are not yet wired into the calling
// convention.
func detectRootNote(chord string) uint8 { return 0 }

// Scope is one lexical scope: the global scope, or one function
// definition's own signature and body.
type Scope struct {
	Parent   *Scope
	Chord    string
	ID       string
	RootNote uint8
	Stage    Stage

	Args []string
	Vars []string

	Head *expr.Root
	Tail *expr.Root

	Children        []*Scope
	UnresolvedCalls []*expr.FunctionCallExpr
	SlrxQueue       []*expr.SequenceLiteralExpr

	IEFCode optable.OpId
	Error   bool
}

func NewScope(parent *Scope, chord string, stage Stage) *Scope {
	return &Scope{
		Parent:   parent,
		Chord:    chord,
		RootNote: detectRootNote(chord),
		Stage:    stage,
		IEFCode:  optable.IEF_DEFAULT,
	}
}

func (s *Scope) AddChildScope(child *Scope) { s.Children = append(s.Children, child) }

// VarFootprint reports how many stack slots this scope and every
// scope nested under it collectively occupy, for the debug HTTP
// endpoint's scope tree dump.
func (s *Scope) VarFootprint() uint64 {
	counts := make([]int, 0, 1+len(s.Children))
	counts = append(counts, len(s.Vars))
	for _, child := range s.Children {
		counts = append(counts, int(child.VarFootprint()))
	}
	return util.Sum(counts)
}

func (s *Scope) SlrxPending() bool { return len(s.SlrxQueue) > 0 }

func (s *Scope) SlrxPop() *expr.SequenceLiteralExpr {
	v := s.SlrxQueue[0]
	s.SlrxQueue = s.SlrxQueue[1:]
	return v
}

func (s *Scope) CompleteStage() {
	switch s.Stage {
	case Signature:
		s.completeSignature()
	case Body:
		s.completeBody()
	default:
		panic("env: CompleteStage called on a Defined scope")
	}
}

func (s *Scope) completeSignature() {
	s.ID = makeScopeID(s.Chord, len(s.Args))
	s.Vars = append([]string(nil), s.Args...)
	s.Stage = Body
}

func (s *Scope) completeBody() {
	s.ResolveBranchLinks()
	s.Stage = Defined
}

// AddAST binds one top-level AST phrase into this scope, as another
// argument of the signature while in Signature stage, or as the next
// statement of the body while in Body stage.
func (s *Scope) AddAST(ast *syntax.ASTNode) bool {
	switch s.Stage {
	case Signature:
		return s.addToSignature(ast)
	case Body:
		return s.addToBody(ast)
	default:
		panic("env: AddAST called on a Defined scope")
	}
}

func (s *Scope) addToSignature(ast *syntax.ASTNode) bool {
	if ast.Type != syntax.Variable {
		return false
	}
	s.Args = append(s.Args, ast.ID)
	return true
}

func (s *Scope) addToBody(ast *syntax.ASTNode) bool {
	if s.Head == nil {
		s.Head = &expr.Root{}
		s.Tail = s.Head
	} else if s.Tail.Expr != nil {
		s.Tail.Next = &expr.Root{}
		s.Tail = s.Tail.Next
	}

	switch ast.Type {
	case syntax.Branch:
		if e := s.buildBranch(ast); e != nil {
			s.Tail.Expr = e
		}
	case syntax.Operator:
		if e := s.buildOperation(ast, true, optable.OP_UNKNOWN); e != nil {
			s.Tail.Expr = e
		}
	default:
		s.Tail.Expr = s.BuildExpr(nil, ast)
	}

	if s.Tail.Expr == nil {
		// sticky: a later successful phrase does not clear the fact
		// that part of this scope's body failed to bind
		s.Error = true
	}
	return s.Tail.Expr != nil
}

// BuildExpr dispatches one AST node into its expression node,
// attaching exprParent as its Expr.Parent.
func (s *Scope) BuildExpr(exprParent expr.Expr, ast *syntax.ASTNode) expr.Expr {
	var e expr.Expr

	switch ast.Type {
	case syntax.FunctionCall:
		e = s.buildFunctionCall(ast)
	case syntax.Operator:
		// buildOperation returns a concrete *OperationExpr that may be
		// nil; assigning it to the expr.Expr interface directly would
		// wrap that nil pointer in a non-nil interface value, so the
		// nil check below has to happen before the conversion.
		if op := s.buildOperation(ast, false, optable.OP_UNKNOWN); op != nil {
			e = op
		}
	case syntax.Variable:
		e = s.buildVariable(ast)
	case syntax.ValueLiteral:
		e = s.buildValueLiteral(ast)
	case syntax.SequenceLiteral:
		e = s.buildSequenceLiteral(ast)
	default:
		return nil
	}

	if e != nil {
		e.SetParent(exprParent)
	}
	return e
}

func (s *Scope) buildFunctionCall(ast *syntax.ASTNode) expr.Expr {
	fnExpr := expr.NewFunctionCall()

	nArgs := 0
	for child := ast.Child; child != nil; child = child.Sibling {
		fnChild := s.BuildExpr(fnExpr, child)
		if fnChild == nil {
			return nil
		}
		fnExpr.Children = append(fnExpr.Children, fnChild)
		nArgs++
	}

	fnID := makeScopeID(ast.ID, nArgs)
	fnExpr.Chord = ast.ID
	fnExpr.ID = fnID

	if scope := s.QueryScope(fnID); scope != nil {
		fnExpr.ScopeRef = scope
	} else {
		s.UnresolvedCalls = append(s.UnresolvedCalls, fnExpr)
	}

	return fnExpr
}

func (s *Scope) buildBranch(ast *syntax.ASTNode) *expr.BranchExpr {
	brExpr := expr.NewBranch()
	brExpr.ID = ast.ID

	if ast.Child != nil {
		child := s.buildOperation(ast, false, expr.CompareGroup)
		if child == nil {
			return nil
		}
		// A condition that bound to anything but VALUE is a binder
		// defect; the runtime's branch step rejects it with a SysError
		// rather than aborting the bind here.
		brExpr.Child = child
	}

	// Branch links are resolved in one pass over the finished body,
	// once every statement (and therefore every branch id) exists.
	return brExpr
}

func (s *Scope) buildOperation(ast *syntax.ASTNode, leftmost bool, forceOp optable.OpId) *expr.OperationExpr {
	opExpr := expr.NewOperation()

	forceCopy := !leftmost
	note := ast.ID[0]
	opID := forceOp
	if opID == optable.OP_UNKNOWN {
		opID = optable.NoteToOpId(note, s.RootNote)
	}

	lhs := ast.Child
	if lhs == nil {
		return nil
	}
	rhs := lhs.Sibling

	opExpr.Note = note
	opExpr.Group = opID

	if leftmost && lhs.Type == syntax.Operator {
		childLhs := s.buildOperation(lhs, true, optable.OP_UNKNOWN)
		if childLhs == nil {
			return nil
		}
		childLhs.SetParent(opExpr)
		opExpr.ChildLhs = childLhs
	} else {
		opExpr.ChildLhs = s.BuildExpr(opExpr, lhs)
		if opExpr.ChildLhs == nil {
			return nil
		}
	}

	opExpr.LhsType = opExpr.ChildLhs.ReturnType()

	if rhs == nil {
		opExpr.RhsType = value.NONE
		opExpr.QueryBook(forceCopy)
		return opExpr
	}

	opExpr.ChildRhs = s.BuildExpr(opExpr, rhs)
	if opExpr.ChildRhs == nil {
		return nil
	}
	opExpr.RhsType = opExpr.ChildRhs.ReturnType()
	opExpr.QueryBook(forceCopy)

	for rhs = rhs.Sibling; rhs != nil; rhs = rhs.Sibling {
		newExpr := expr.NewOperation()
		newExpr.Note = note
		newExpr.Group = opID
		newExpr.ChildLhs = opExpr
		newExpr.ChildRhs = s.BuildExpr(newExpr, rhs)
		if newExpr.ChildRhs == nil {
			return nil
		}

		newExpr.LhsType = newExpr.ChildLhs.ReturnType()
		newExpr.RhsType = newExpr.ChildRhs.ReturnType()
		newExpr.QueryBook(forceCopy)

		opExpr.SetParent(newExpr)
		opExpr = newExpr
	}

	return opExpr
}

func (s *Scope) buildVariable(ast *syntax.ASTNode) *expr.VariableExpr {
	varExpr := expr.NewVariable()
	varExpr.ID = ast.ID

	stackOffset := -1
	for i, v := range s.Vars {
		if v == varExpr.ID {
			stackOffset = i
			break
		}
	}
	if stackOffset == -1 {
		stackOffset = len(s.Vars)
		s.Vars = append(s.Vars, varExpr.ID)
	}
	varExpr.StackOffset = stackOffset

	return varExpr
}

// buildValueLiteral decodes a value-literal symbol back into the
// integer it spells: the first byte is the identifying note (ignored
// here, already consumed by disambiguation), and each following byte
// contributes one decimal digit, with the sign taken from the first
// digit's delta sign.
func (s *Scope) buildValueLiteral(ast *syntax.ASTNode) *expr.ValueLiteralExpr {
	valExpr := expr.NewValueLiteral()

	sym := ast.ID
	var v int64

	if len(sym) > 0 {
		for i := 1; i < len(sym); i++ {
			d := int8(sym[i])
			abs := int64(d)
			if abs < 0 {
				abs = -abs
			}
			v *= 10
			v += abs % 10
		}
		if len(sym) > 1 && int8(sym[1]) < 0 {
			v = -v
		}
	}

	valExpr.Value = v
	return valExpr
}

func (s *Scope) buildSequenceLiteral(ast *syntax.ASTNode) *expr.SequenceLiteralExpr {
	seqExpr := expr.NewSequenceLiteral()
	seqExpr.ID = ast.ID
	seqExpr.Note = ast.NoteStart

	for _, other := range s.SlrxQueue {
		if other.ID == seqExpr.ID {
			seqExpr.Ref = other.Ref.Duplicate()
			return seqExpr
		}
	}

	seqExpr.Ref = value.NewRef(value.SEQ_LIT, seq.NewPending(), seq.ALL)

	s.SlrxQueue = append(s.SlrxQueue, seqExpr)
	return seqExpr
}

// QueryScope searches this scope and its ancestors' children for a
// scope matching the fully qualified function id "chord:arity".
func (s *Scope) QueryScope(query string) *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		for _, child := range scope.Children {
			if child.ID == query {
				return child
			}
		}
	}
	return nil
}

// ResolveBranchLinks pairs each BranchExpr root in this scope's body
// with the root it jumps to when its condition is true (BranchUp) and
// when it is false or absent (BranchDown): BranchUp always falls to
// the statement immediately after, while BranchDown skips past the
// next branch sharing this branch's id (whose own BranchUp is pointed
// back at the statement after this one), or falls through identically
// if none follows.
func (s *Scope) ResolveBranchLinks() {
	for node := s.Head; node != nil; node = node.Next {
		if !node.IsBranch() {
			continue
		}

		brExpr := node.Expr.(*expr.BranchExpr)
		brExpr.BranchDown = node.Next

		for nodeDown := node.Next; nodeDown != nil; nodeDown = nodeDown.Next {
			if !nodeDown.IsBranch() {
				continue
			}
			brDown := nodeDown.Expr.(*expr.BranchExpr)
			if brDown.ID == brExpr.ID {
				brDown.BranchUp = node.Next
				brExpr.BranchDown = nodeDown.Next
				break
			}
		}

		if brExpr.BranchUp == nil {
			brExpr.BranchUp = node.Next
		}
	}
}

// ResolveFunctionLinks re-attempts every call left unresolved at
// build time (a forward reference to a function defined later in the
// session) now that every scope in the tree exists.
func (s *Scope) ResolveFunctionLinks() {
	remaining := s.UnresolvedCalls[:0]
	for _, fnExpr := range s.UnresolvedCalls {
		if scope := s.QueryScope(fnExpr.ID); scope != nil {
			fnExpr.ScopeRef = scope
			continue
		}
		remaining = append(remaining, fnExpr)
	}
	s.UnresolvedCalls = remaining

	for _, child := range s.Children {
		child.ResolveFunctionLinks()
	}
}
