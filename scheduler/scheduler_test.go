package scheduler

import (
	"testing"

	"github.com/mddl-lang/mddl/note"
	"github.com/mddl-lang/mddl/seq"
	"github.com/stretchr/testify/assert"
)

func newTestScheduler(tempo, ppq int) *Scheduler {
	s := New(nil)
	s.SetTempo(tempo)
	s.SetPPQ(ppq)
	return s
}

func TestSetTempoAndPPQDeferConversionUntilBothSet(t *testing.T) {
	s := New(nil)
	s.SetTempo(120)
	assert.Zero(t, s.ticksToNs, "conversion must wait for PPQ before computing")
	s.SetPPQ(960)
	assert.NotZero(t, s.ticksToNs)
}

func TestPendingIsZeroOnFreshScheduler(t *testing.T) {
	s := newTestScheduler(120, 960)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, uint64(0), s.PendingWaitTotal())
}

func TestAddSequenceSkipsAllRestCompressed(t *testing.T) {
	s := newTestScheduler(120, 960)
	rest := seq.NewProto(note.Zero, 4)
	s.AddSequence(rest, 0, 4)
	assert.Equal(t, 0, s.Pending())
}

func TestAddSequenceQueuesOnOffPairPerNote(t *testing.T) {
	s := newTestScheduler(120, 960)
	sq := seq.NewOfSize(0)
	sq.NoteOn(60, 100, 10)
	sq.At(0).Duration = 5

	s.AddSequence(sq, 0, 1)
	assert.Equal(t, 2, s.Pending())
}

func TestAddSequenceSkipsZeroVelocityNotes(t *testing.T) {
	s := newTestScheduler(120, 960)
	sq := seq.NewOfSize(0)
	sq.NoteOn(60, 0, 10)

	s.AddSequence(sq, 0, 1)
	assert.Equal(t, 0, s.Pending())
}

func TestAddSequenceInterleavesOverlappingMaterial(t *testing.T) {
	s := newTestScheduler(120, 960)

	first := seq.NewOfSize(0)
	first.NoteOn(60, 100, 0)
	first.At(0).Duration = 1000
	s.AddSequence(first, 0, 1)
	assert.Equal(t, 2, s.Pending())

	second := seq.NewOfSize(0)
	second.NoteOn(64, 100, 0)
	second.At(0).Duration = 10
	s.AddSequence(second, 0, 1)
	assert.Equal(t, 4, s.Pending())
}

func TestPendingWaitTotalDropsZeroWaitEvents(t *testing.T) {
	s := newTestScheduler(120, 960)

	sq := seq.NewOfSize(0)
	sq.NoteOn(60, 100, 0)
	sq.At(0).Duration = 0
	s.AddSequence(sq, 0, 1)

	assert.Equal(t, uint64(0), s.PendingWaitTotal())
}
