package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSTNoteOnSingleNoteBecomesHeadAndTail(t *testing.T) {
	var c CST
	c.NoteOn(60)

	assert.NotNil(t, c.Head)
	assert.Same(t, c.Head, c.Tail)
	assert.Equal(t, uint8(60), c.Head.Note)
	assert.True(t, c.Head.Held)
}

func TestCSTNoteOnWhileTailHeldBecomesChild(t *testing.T) {
	var c CST
	c.NoteOn(60)
	c.NoteOn(64)

	assert.Same(t, c.Head, c.Tail.Parent)
	assert.Same(t, c.Tail, c.Head.Child)
	assert.True(t, c.Head.ExclStaccato, "a held note that grows a child can no longer read as staccato")
}

func TestCSTNoteOnAfterReleaseBecomesSibling(t *testing.T) {
	var c CST
	c.NoteOn(60)
	c.NoteOff(60)
	c.NoteOn(64)

	assert.Same(t, c.Tail, c.Head.Sibling)
	assert.Nil(t, c.Tail.Parent)
}

func TestCSTNoteOffSingleNoteMarksBassAndMelodyExclusions(t *testing.T) {
	var c CST
	c.NoteOn(60)
	c.NoteOff(60)

	assert.False(t, c.Head.Held)
	assert.True(t, c.Head.ExclBass, "a leaf note with no child can never be a bass")
	assert.True(t, c.Head.ExclMelody)
	assert.False(t, c.Head.ExclChord)
}

func TestCSTNoteOffChordReleasedTogetherKeepsBassEligible(t *testing.T) {
	var c CST
	c.NoteOn(60)
	c.NoteOn(64)
	c.NoteOff(64)
	c.NoteOff(60)

	assert.False(t, c.Head.ExclBass, "releasing every child at once leaves the root eligible as bass")
	assert.True(t, c.Head.ExclMelody)
	assert.True(t, c.Head.Child.ExclBass)
	assert.Same(t, c.Head, c.Tail)
}

func TestCSTNoteOffPanicsWithoutMatchingHeldAncestor(t *testing.T) {
	var c CST
	c.NoteOn(60)
	assert.Panics(t, func() { c.NoteOff(64) })
}

func TestCSTResetClearsTree(t *testing.T) {
	var c CST
	c.NoteOn(60)
	c.Reset()
	assert.Nil(t, c.Head)
	assert.Nil(t, c.Tail)
}
