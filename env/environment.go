package env

import (
	"github.com/mddl-lang/mddl/expr"
	"github.com/mddl-lang/mddl/syntax"
)

const globalChord = ":global"

// StaticEnvironment owns the global scope and, while a function
// definition phrase is open, the scope currently being signed or
// bodied. Every completed AST from the syntax parser is fed through
// AddAST, which either folds it into the open function definition or
// appends it to whichever scope is current.
type StaticEnvironment struct {
	Global *Scope
	Tail   *Scope
}

func New() *StaticEnvironment {
	global := NewScope(nil, globalChord, Body)
	return &StaticEnvironment{Global: global, Tail: global}
}

func (e *StaticEnvironment) SlrxPending() bool { return e.Tail.SlrxPending() }
func (e *StaticEnvironment) SlrxPop() *expr.SequenceLiteralExpr { return e.Tail.SlrxPop() }
func (e *StaticEnvironment) AtGlobalScope() bool { return e.Tail == e.Global }
func (e *StaticEnvironment) GetGlobalTail() *expr.Root { return e.Global.Tail }

// AddAST binds one completed phrase. A FUNCTION_DEF phrase opens,
// advances, or closes a function definition instead of adding a
// statement, so it reports false (nothing was appended to a body)
// even on success.
func (e *StaticEnvironment) AddAST(ast *syntax.AST) bool {
	if ast.Error {
		return false
	}

	node := ast.Head
	e.Tail.IEFCode = ast.IEFCode

	if node.Type == syntax.FunctionDef {
		e.processFunctionDef(node.ID)
		return false
	}

	return e.Tail.AddAST(node)
}

func (e *StaticEnvironment) ResolveLinks() {
	e.Global.ResolveBranchLinks()
	e.Global.ResolveFunctionLinks()
}

// processFunctionDef advances the function-definition state machine:
// a def chord matching the scope currently under construction closes
// that stage (signature -> body -> defined, legitimizing the scope
// into its parent's children once defined); any other def chord opens
// a brand new nested scope in Signature stage.
func (e *StaticEnvironment) processFunctionDef(chord string) {
	if e.Tail.Chord == chord {
		e.Tail.CompleteStage()

		if e.Tail.Stage == Defined {
			e.Tail.Parent.AddChildScope(e.Tail)
			e.Tail = e.Tail.Parent
		}
		return
	}

	e.Tail = NewScope(e.Tail, chord, Signature)
}
