package syntax

import (
	"testing"

	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/seq"
	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewParserDefaultsIEFCodeAndTransport(t *testing.T) {
	p := New()
	assert.Equal(t, optable.IEF_DEFAULT, p.iefCode)
	assert.Equal(t, 120, p.Tempo)
	assert.Equal(t, 960, p.PPQ)
}

func TestAllNotesOffIsTrueOnFreshParser(t *testing.T) {
	p := New()
	assert.True(t, p.AllNotesOff())
}

func TestNoteOnThenNoteOffCompletesAPendingAST(t *testing.T) {
	p := New()
	assert.False(t, p.PendingAST())

	p.NoteOn(60, 100, 0)
	assert.False(t, p.AllNotesOff())
	assert.False(t, p.PendingAST())

	p.NoteOff(60, 0)
	assert.True(t, p.AllNotesOff())
	assert.True(t, p.PendingAST())
	assert.Equal(t, ValueLiteral, p.AST.Head.Type)
}

func TestNoteOnIgnoresRepeatedOnForAlreadyHeldNote(t *testing.T) {
	p := New()
	p.NoteOn(60, 100, 0)
	p.NoteOn(60, 100, 0)
	assert.Same(t, p.CST.Head, p.CST.Tail)
}

func TestNoteOffIgnoresNoteThatIsNotActive(t *testing.T) {
	p := New()
	p.NoteOff(60, 0)
	assert.Nil(t, p.CST.Head)
}

func TestClearResetsParserState(t *testing.T) {
	p := New()
	p.NoteOn(60, 100, 0)
	p.NoteOff(60, 0)
	assert.True(t, p.PendingAST())

	p.Clear()
	assert.False(t, p.PendingAST())
	assert.Nil(t, p.CST.Head)
	assert.False(t, p.ActiveSltx())
	assert.Equal(t, optable.IEF_DEFAULT, p.iefCode)
}

func TestProcessMsgRoutesNoteOnAndOff(t *testing.T) {
	p := New()
	p.ProcessMsg(gomidi.NoteOn(0, 60, 100), 0)
	assert.False(t, p.AllNotesOff())

	p.ProcessMsg(gomidi.NoteOff(0, 60), 10)
	assert.True(t, p.AllNotesOff())
	assert.True(t, p.PendingAST())
}

func TestProcessMsgTreatsZeroVelocityNoteOnAsNoteOff(t *testing.T) {
	p := New()
	p.ProcessMsg(gomidi.NoteOn(0, 60, 100), 0)
	p.ProcessMsg(gomidi.NoteOn(0, 60, 0), 10)
	assert.True(t, p.AllNotesOff())
}

func TestSetSltxEntersCaptureModeAndSkipsCSTBuild(t *testing.T) {
	p := New()
	target := &SltxTarget{Seq: seq.NewOfSize(0), ID: 60}
	p.SetSltx(target)
	assert.True(t, p.ActiveSltx())

	p.NoteOn(64, 100, 0)
	assert.Nil(t, p.CST.Head, "captured notes must not also build the ordinary phrase CST")
	assert.Equal(t, int64(1), target.Seq.Size)
}

func TestSltxStrikingTheCaptureIDClosesItUnlessForced(t *testing.T) {
	p := New()
	target := &SltxTarget{Seq: seq.NewOfSize(0), ID: 60}
	p.SetSltx(target)

	p.NoteOn(64, 100, 0)
	p.NoteOff(64, 5)
	p.NoteOn(60, 100, 10)

	assert.False(t, p.ActiveSltx())
	assert.True(t, target.Seq.Complete())
}

func TestSltxForcedKeepsCaptureOpenOnMatchingID(t *testing.T) {
	p := New()
	target := &SltxTarget{Seq: seq.NewOfSize(0), ID: 60}
	p.SetSltx(target)
	p.ForceSltx()

	p.NoteOn(60, 100, 0)
	assert.True(t, p.ActiveSltx())
}
