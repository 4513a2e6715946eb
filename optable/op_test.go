package optable

import (
	"testing"
	"time"

	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
	"github.com/stretchr/testify/assert"
)

// fakeStack satisfies Stack for kernels that resolve a bound variable
// slot by stack position.
type fakeStack struct {
	slots []value.DataRef
}

func (s *fakeStack) At(pos int64) *value.DataRef { return &s.slots[pos] }

func TestNoteToOpIdMapsIntervalsToSolfegeGroups(t *testing.T) {
	assert.Equal(t, OP_DO, NoteToOpId(60, 60))
	assert.Equal(t, OP_RE, NoteToOpId(61, 60))
	assert.Equal(t, OP_RE, NoteToOpId(62, 60))
	assert.Equal(t, OP_MI, NoteToOpId(63, 60))
	assert.Equal(t, OP_FA, NoteToOpId(65, 60))
	assert.Equal(t, OP_SO, NoteToOpId(67, 60))
	assert.Equal(t, OP_LA, NoteToOpId(69, 60))
	assert.Equal(t, OP_TI, NoteToOpId(71, 60))
}

func TestNoteToOpIdWrapsAcrossOctaves(t *testing.T) {
	assert.Equal(t, OP_DO, NoteToOpId(72, 60))
}

func TestLookupMissReturnsFalse(t *testing.T) {
	_, ok := Lookup(OP_UNKNOWN, value.NONE, value.NONE)
	assert.False(t, ok)
}

func TestLookupFindsRegisteredDoNewFromValue(t *testing.T) {
	e, ok := Lookup(OP_DO, value.VALUE, value.NONE)
	assert.True(t, ok)
	assert.Equal(t, "NEW", e.Name)
	assert.Equal(t, value.VSEQ, e.ReturnT)
}

func TestDoNewFromValueKernelMaterialisesSizedSequence(t *testing.T) {
	e, ok := Lookup(OP_DO, value.VALUE, value.NONE)
	assert.True(t, ok)

	lhs := value.NewValue(4)
	out, err := e.Fn(&fakeStack{}, &lhs, nil)
	assert.NoError(t, err)
	assert.Equal(t, value.VSEQ, out.Type)
	assert.Equal(t, int64(4), out.Ref.Size)
}

func TestDoResizeOnSubseqIsRejected(t *testing.T) {
	e, ok := Lookup(OP_DO, value.SEQ, value.VALUE)
	assert.True(t, ok)

	s := seq.NewOfSize(5)
	lhs := value.NewRef(value.SEQ, s, seq.ALL)
	lhs.Attach(s, 1, 2)
	rhs := value.NewValue(3)

	_, err := e.Fn(&fakeStack{}, &lhs, &rhs)
	assert.Error(t, err)
}

func TestDoCompleteReturnsImmediatelyWhenAlreadyComplete(t *testing.T) {
	e, ok := Lookup(OP_DO, value.SEQ_LIT, value.NONE)
	assert.True(t, ok)

	s := seq.NewPending()
	s.MarkComplete()
	lhs := value.NewRef(value.SEQ_LIT, s, seq.ALL)

	out, err := e.Fn(&fakeStack{}, &lhs, nil)
	assert.NoError(t, err)
	assert.Equal(t, value.VSEQ, out.Type)
}

func TestDoCompleteSpinWaitsUntilMarkedComplete(t *testing.T) {
	e, ok := Lookup(OP_DO, value.SEQ_LIT, value.NONE)
	assert.True(t, ok)

	s := seq.NewPending()
	lhs := value.NewRef(value.SEQ_LIT, s, seq.ALL)

	done := make(chan struct{})
	go func() {
		_, _ = e.Fn(&fakeStack{}, &lhs, nil)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("COMPLETE must not return before the literal is marked complete")
	case <-time.After(15 * time.Millisecond):
	}

	s.MarkComplete()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("COMPLETE never observed the literal being marked complete")
	}
}

func TestFaAddValueKernelIncrementsSize(t *testing.T) {
	e, ok := Lookup(OP_FA, value.VSEQ, value.VALUE)
	assert.True(t, ok)

	s := seq.NewOfSize(3)
	lhs := value.NewRef(value.VSEQ, s, seq.ALL)
	rhs := value.NewValue(2)

	out, err := e.Fn(&fakeStack{}, &lhs, &rhs)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), out.Ref.Size)
}
