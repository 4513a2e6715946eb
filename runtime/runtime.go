// Package runtime tree-walks the bound expression trees a Scope
// produces, maintaining the value stack function calls and variable
// references read and write.
package runtime

import (
	"sync"

	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/expr"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
)

// Runtime owns the value stack a program's scopes are executed
// against. It implements optable.Stack so kernels that bind a
// variable (ASSIGN, SET on a non-subsequence SEQ) can resolve a
// stack-bound DataRef by its absolute stack position.
type Runtime struct {
	Stack    []value.DataRef
	StackPos int64
}

func New() *Runtime {
	return &Runtime{}
}

// At resolves the DataRef living at absolute stack position pos.
func (r *Runtime) At(pos int64) *value.DataRef {
	return &r.Stack[pos]
}

// Execute runs a linked statement list to completion, returning
// whatever its last non-branch statement produced.
func (r *Runtime) Execute(node *expr.Root) (value.DataRef, error) {
	returnV := value.NewTyped(value.UNDEFINED)

	for node != nil {
		if node.IsBranch() {
			next, err := r.processBranch(node)
			if err != nil {
				return value.DataRef{}, err
			}
			node = next
			continue
		}

		returnV.Release()
		v, next, err := r.processRoot(node)
		if err != nil {
			return value.DataRef{}, err
		}
		returnV = v
		node = next
	}

	return returnV, nil
}

// ExecuteScope runs a scope's body in a fresh stack frame, widening
// its result to VSEQ before the frame is torn down.
func (r *Runtime) ExecuteScope(scope *env.Scope) (value.DataRef, error) {
	r.PushScope(scope)

	v, err := r.Execute(scope.Head)
	r.PopScope(scope)
	if err != nil {
		return value.DataRef{}, err
	}

	result := v.CastToVSeq()
	return result, nil
}

// PushScope grows the stack to hold every variable slot of scope's
// frame. Argument slots the caller has already pushed above the
// current stack position are kept; each remaining slot is initialized
// to a fresh empty SEQ.
func (r *Runtime) PushScope(scope *env.Scope) {
	target := r.StackPos + int64(len(scope.Vars))
	for int64(len(r.Stack)) < target {
		r.PushToStack(value.NewRef(value.SEQ, seq.New(), seq.ALL))
	}
}

// PopScope releases every variable slot scope owns and shrinks the
// stack back to the frame's start.
func (r *Runtime) PopScope(scope *env.Scope) {
	start := r.StackPos
	end := r.StackPos + int64(len(scope.Vars))
	for i := start; i < end; i++ {
		r.Stack[i].Release()
	}
	r.Stack = r.Stack[:start]
}

// PushToStack appends ref to the stack, stamping it with its own
// absolute position so kernels can later resolve it via At.
func (r *Runtime) PushToStack(ref value.DataRef) {
	top := int64(len(r.Stack))
	r.Stack = append(r.Stack, ref)
	r.Stack[top].StackPos = top
}

// processBranch evaluates one branch root's condition and returns the
// root execution should jump to next.
func (r *Runtime) processBranch(root *expr.Root) (*expr.Root, error) {
	brExpr := root.Expr.(*expr.BranchExpr)
	if brExpr.Child == nil {
		return brExpr.BranchDown, nil
	}

	v, err := r.ProcessOperation(brExpr.Child)
	if err != nil {
		return nil, err
	}
	if v.Type != value.VALUE {
		return nil, diag.NewSysError("branch condition did not resolve to VALUE")
	}

	if v.Value > 0 {
		return brExpr.BranchUp, nil
	}
	return brExpr.BranchDown, nil
}

func (r *Runtime) processRoot(root *expr.Root) (value.DataRef, *expr.Root, error) {
	v, err := r.ProcessExpr(root.Expr)
	if err != nil {
		return value.DataRef{}, nil, err
	}
	return v, root.Next, nil
}

// ProcessExpr dispatches one expression node to the handler for its
// concrete type.
func (r *Runtime) ProcessExpr(e expr.Expr) (value.DataRef, error) {
	switch n := e.(type) {
	case *expr.FunctionCallExpr:
		return r.ProcessFunctionCall(n)
	case *expr.OperationExpr:
		return r.ProcessOperation(n)
	case *expr.VariableExpr:
		return r.ProcessVariable(n), nil
	case *expr.ValueLiteralExpr:
		return r.ProcessValueLiteral(n), nil
	case *expr.SequenceLiteralExpr:
		return r.ProcessSequenceLiteral(n), nil
	default:
		return value.NewTyped(value.ERROR), diag.NewSysError("unhandled expression node in tree walker")
	}
}

func (r *Runtime) ProcessFunctionCall(fnExpr *expr.FunctionCallExpr) (value.DataRef, error) {
	currStackPos := r.StackPos
	childStackPos := int64(len(r.Stack))

	scope, ok := fnExpr.ScopeRef.(*env.Scope)
	if !ok || scope == nil {
		return value.DataRef{}, diag.NewRuntimeError("function definition for " + fnExpr.String() + " not found")
	}
	if len(fnExpr.Children) != len(scope.Args) {
		return value.DataRef{}, diag.NewSysError("function call argument count does not match its definition")
	}

	for _, child := range fnExpr.Children {
		v, err := r.ProcessExpr(child)
		if err != nil {
			return value.DataRef{}, err
		}
		r.PushToStack(v.CastToSeq())
	}

	r.StackPos = childStackPos
	v, err := r.ExecuteScope(scope)
	r.StackPos = currStackPos
	if err != nil {
		return value.DataRef{}, err
	}

	return v, nil
}

// noopLocker guards operands that are either empty or have no other
// owner, so contending with the syntax parser's capture goroutine
// (which locks the same Sequence.Mu) is unnecessary.
type noopLocker struct{}

func (noopLocker) Lock() {}
func (noopLocker) Unlock() {}

func operandLock(d *value.DataRef) sync.Locker {
	if d.Empty() || d.Ref.RefCount.Load() == 1 {
		return noopLocker{}
	}
	// A sequence literal still under capture belongs to the syntax
	// parser; the Complete flag is the only synchronisation with it.
	// Taking its mutex here would hold out the capture path while a
	// COMPLETE kernel spin-waits on that very flag.
	if !d.Ref.Complete() {
		return noopLocker{}
	}
	return &d.Ref.Mu
}

func (r *Runtime) ProcessOperation(opExpr *expr.OperationExpr) (value.DataRef, error) {
	lhs, err := r.ProcessExpr(opExpr.ChildLhs)
	if err != nil {
		return value.DataRef{}, err
	}

	rhs := value.NewTyped(value.NONE)
	if opExpr.ChildRhs != nil {
		rhs, err = r.ProcessExpr(opExpr.ChildRhs)
		if err != nil {
			return value.DataRef{}, err
		}
	}

	lhs.ImplicitCast(opExpr.LhsType)
	rhs.ImplicitCast(opExpr.RhsType)

	lhsLock := operandLock(&lhs)
	rhsLock := operandLock(&rhs)
	if !lhs.Empty() && lhs.Ref == rhs.Ref {
		// both operands alias one sequence; one lock covers both
		rhsLock = noopLocker{}
	}
	lhsLock.Lock()
	defer lhsLock.Unlock()
	rhsLock.Lock()
	defer rhsLock.Unlock()

	if opExpr.Fn == nil {
		return value.DataRef{}, diag.NewSysError("operation " + opExpr.Name + " has no bound kernel")
	}

	v, err := opExpr.Fn(r, &lhs, &rhs)
	if err != nil {
		return value.DataRef{}, err
	}

	if v.Type != opExpr.ReturnType() {
		return value.DataRef{}, diag.NewSysError("kernel " + opExpr.Name + " returned the wrong type")
	}
	if !lhs.Empty() {
		return value.DataRef{}, diag.NewSysError("kernel " + opExpr.Name + " did not release its lhs operand")
	}
	if !rhs.Empty() {
		return value.DataRef{}, diag.NewSysError("kernel " + opExpr.Name + " did not release its rhs operand")
	}

	return v, nil
}

func (r *Runtime) ProcessVariable(varExpr *expr.VariableExpr) value.DataRef {
	return r.Stack[r.StackPos+int64(varExpr.StackOffset)].Duplicate()
}

func (r *Runtime) ProcessValueLiteral(valExpr *expr.ValueLiteralExpr) value.DataRef {
	return value.NewValue(valExpr.Value)
}

func (r *Runtime) ProcessSequenceLiteral(seqExpr *expr.SequenceLiteralExpr) value.DataRef {
	return seqExpr.Ref.Duplicate()
}
