package interp

import (
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/scheduler"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/syntax"
	"github.com/stretchr/testify/assert"
)

func newTestInterpreter() *Interpreter {
	return New(scheduler.New(nil), 120, 960, time.Millisecond)
}

func TestCompletePhraseExecutesGlobalValueLiteral(t *testing.T) {
	it := newTestInterpreter()

	it.Parser.NoteOn(60, 100, 0)
	it.Parser.NoteOff(60, 0)
	assert.True(t, it.Parser.PendingAST())

	it.completePhrase()

	assert.False(t, it.Parser.PendingAST(), "completePhrase must clear the parser once bound")
	assert.NotNil(t, it.Env.Global.Head)
	assert.Same(t, it.Env.Global.Tail, it.lastExecuted)
}

func TestCompletePhraseOnFunctionDefOpensScopeWithoutExecuting(t *testing.T) {
	it := newTestInterpreter()

	it.Parser.NoteOn(60, 100, 0)
	it.Parser.NoteOn(64, 100, 0)
	it.Parser.NoteOn(67, 100, 0)
	it.Parser.NoteOff(67, 0)
	it.Parser.NoteOff(64, 0)
	it.Parser.NoteOff(60, 0)
	assert.True(t, it.Parser.PendingAST())

	it.completePhrase()

	assert.NotSame(t, it.Env.Global, it.Env.Tail, "a function-def phrase opens a nested scope")
	assert.Equal(t, env.Signature, it.Env.Tail.Stage)
	assert.Nil(t, it.lastExecuted)
}

func TestCompletePhraseSkipsExecutionUntilGlobalScopeReturns(t *testing.T) {
	it := newTestInterpreter()

	it.Parser.NoteOn(60, 100, 0)
	it.Parser.NoteOn(64, 100, 0)
	it.Parser.NoteOn(67, 100, 0)
	it.Parser.NoteOff(67, 0)
	it.Parser.NoteOff(64, 0)
	it.Parser.NoteOff(60, 0)
	it.completePhrase()
	assert.False(t, it.Env.AtGlobalScope())

	it.Parser.NoteOn(59, 100, 0)
	it.Parser.NoteOn(62, 100, 0)
	it.Parser.NoteOff(62, 0)
	it.Parser.NoteOff(59, 0)
	it.completePhrase()

	assert.Nil(t, it.lastExecuted, "statements inside an open function def must not execute")
}

func TestLiteralIDsEmptyOnFreshInterpreter(t *testing.T) {
	it := newTestInterpreter()
	assert.Empty(t, it.LiteralIDs())
}

func TestAccessorsExposeSchedulerScopeAndRecordingState(t *testing.T) {
	it := newTestInterpreter()
	assert.Same(t, it.Sched, it.Scheduler())
	assert.Same(t, it.Env.Global, it.GlobalScope())
	assert.False(t, it.Recording())
}

func TestBindMsgBindsPhraseWithoutExecuting(t *testing.T) {
	it := newTestInterpreter()

	it.BindMsg(gomidi.NoteOn(0, 60, 100), 0)
	it.BindMsg(gomidi.NoteOff(0, 60), 10)

	assert.NotNil(t, it.Env.Global.Head, "the phrase must bind into the global body")
	assert.Nil(t, it.lastExecuted, "batch binding must not execute")
}

func TestRunProgramExecutesEverythingBoundSoFar(t *testing.T) {
	it := newTestInterpreter()

	it.BindMsg(gomidi.NoteOn(0, 60, 100), 0)
	it.BindMsg(gomidi.NoteOff(0, 60), 10)

	assert.NoError(t, it.RunProgram())
	assert.Same(t, it.Env.Global.Tail, it.lastExecuted)
}

func TestFeedAndDrainRouteCapturedNotesThroughTheSltxPathDeterministically(t *testing.T) {
	it := newTestInterpreter()
	it.Parser.SetSltx(&syntax.SltxTarget{Seq: seq.NewOfSize(0), ID: 60})

	it.Feed(gomidi.NoteOn(0, 64, 100), 0)
	it.Feed(gomidi.NoteOff(0, 64), 5)
	it.Drain()

	assert.True(t, it.Parser.ActiveSltx(), "capture stays open until its own ID is struck again")
}
