// Package optable implements OpId, the dispatch key every chord-held
// operator resolves to, and op_book, the (group, lhs type, rhs type)
// keyed table of kernels those operators invoke at runtime.
package optable

import (
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
)

// OpId identifies either one of the seven solfège-named operator
// groups (DO..TI) or one of the interpreter-extended functions
// (IEF_*). Both share one numeric space, so a single byte read off the
// wire can dispatch to either a user operator or a runtime intrinsic.
type OpId int

const (
	OP_UNKNOWN OpId = 0x00

	OP_DO OpId = 0x10
	OP_RE OpId = 0x11
	OP_MI OpId = 0x12
	OP_FA OpId = 0x13
	OP_SO OpId = 0x14
	OP_LA OpId = 0x15
	OP_TI OpId = 0x16

	IEF_DEFAULT   OpId = 0x20
	IEF_PLAY      OpId = 0x21
	IEF_NOTE_ON   OpId = 0x22
	IEF_NOTE_OFF  OpId = 0x23
	IEF_SLEEP     OpId = 0x24
	IEF_PRINT     OpId = 0x25
	IEF_PRINTD    OpId = 0x26
	IEF_RECORDING OpId = 0x27
	IEF_RANDOM    OpId = 0x28
)

const Octave = 12

// noteToOpIdTable maps a bass-to-note interval mod 12 to the solfège
// group that interval denotes. Unison and the two seconds/thirds
// collapse pairs of intervals onto one group, the way DO/RE/MI treat
// minor and major alike.
var noteToOpIdTable = [Octave]OpId{
	OP_DO, // unison
	OP_RE, // minor 2nd
	OP_RE, // major 2nd
	OP_MI, // minor 3rd
	OP_MI, // major 3rd
	OP_FA, // perfect 4th
	OP_SO, // diminished 5th
	OP_SO, // perfect 5th
	OP_LA, // minor 6th
	OP_LA, // major 6th
	OP_TI, // minor 7th
	OP_TI, // major 7th
}

// NoteToOpId derives the operator group a held note denotes, given
// the root (bass) note of its chord.
func NoteToOpId(note, root uint8) OpId {
	interval := (note - root) % Octave
	return noteToOpIdTable[interval]
}

// Key identifies one entry of op_book.
type Key struct {
	Group OpId
	LhsT  value.DataType
	RhsT  value.DataType
}

// Stack is the subset of Runtime a kernel needs: resolving a
// stack-bound variable DataRef by its stack position. Kept as an
// interface here so optable never imports runtime (runtime imports
// optable to drive dispatch).
type Stack interface {
	At(pos int64) *value.DataRef
}

// Fn is one kernel: it consumes lhs/rhs (releasing or moving their
// Sequence ownership as appropriate) and produces the operation's
// result, or a diag.RuntimeError/SysError.
type Fn func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error)

// Entry is one op_book row: the kernel plus bookkeeping used for
// tracing and error messages.
type Entry struct {
	Name    string
	Fn      Fn
	ReturnT value.DataType
}

// Book is the whole dispatch table, keyed by (group, lhs type, rhs
// type). It is built once in init() and never mutated afterward.
type Book map[Key]Entry

var book Book

// Lookup resolves the kernel for a given invocation, returning ok =
// false when no such combination is registered (an ill-typed
// program; the environment binder is expected to have already
// rejected this case, so a Lookup miss at runtime indicates a binder
// defect).
func Lookup(group OpId, lhsT, rhsT value.DataType) (Entry, bool) {
	e, ok := book[Key{group, lhsT, rhsT}]
	return e, ok
}

func register(group OpId, name string, lhsT, rhsT, returnT value.DataType, fn Fn) {
	book[Key{group, lhsT, rhsT}] = Entry{Name: name, Fn: fn, ReturnT: returnT}
}

func init() {
	book = make(Book)
	registerDo()
	registerRe()
	registerMi()
	registerArithGroup(arithSpec{
		group:    OP_FA,
		attr:     attrPitch,
		opName:   "ADD",
		hasUnary: true,
		unary:    func(a int64) int64 { return a + 1 },
		resize:   func(size, v int64) int64 { return size + v },
		value:    func(a, b int64) int64 { return a + b },
		seqAll:   (*seq.Sequence).Add,
		seqAttr:  (*seq.Sequence).AddAttr,
		seqVal:   (*seq.Sequence).AddValue,
	})
	registerArithGroup(arithSpec{
		group:    OP_SO,
		attr:     attrVelocity,
		opName:   "SUBTRACT",
		hasUnary: true,
		unary:    func(a int64) int64 { return a - 1 },
		resize:   func(size, v int64) int64 { return size - v },
		value:    func(a, b int64) int64 { return a - b },
		seqAll:   (*seq.Sequence).Subtract,
		seqAttr:  (*seq.Sequence).SubtractAttr,
		seqVal:   (*seq.Sequence).SubtractValue,
	})
	registerArithGroup(arithSpec{
		group:   OP_LA,
		attr:    attrDuration,
		opName:  "MULTIPLY",
		resize:  func(size, v int64) int64 { return size * v },
		value:   func(a, b int64) int64 { return a * b },
		seqAll:  (*seq.Sequence).Multiply,
		seqAttr: (*seq.Sequence).MultiplyAttr,
		seqVal:  (*seq.Sequence).MultiplyValue,
	})
	registerArithGroup(arithSpec{
		group:   OP_TI,
		attr:    attrWait,
		opName:  "DIVIDE",
		resize:  func(size, v int64) int64 { return size / v },
		value:   func(a, b int64) int64 { return a / b },
		seqAll:  (*seq.Sequence).Divide,
		seqAttr: (*seq.Sequence).DivideAttr,
		seqVal:  (*seq.Sequence).DivideValue,
	})
}
