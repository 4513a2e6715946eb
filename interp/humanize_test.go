package interp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizerNoteOnSamePitchResolvesBuffered(t *testing.T) {
	h := NewHumanizer(50*time.Millisecond, func(uint8, int64) {})

	h.NoteOff(60, 1000)
	same, pending := h.NoteOn(60)

	assert := assert.New(t)
	assert.True(same)
	assert.NotNil(pending)
	assert.Equal(uint8(60), pending.pitch)
}

func TestHumanizerNoteOnDifferentPitchResolvesBuffered(t *testing.T) {
	h := NewHumanizer(50*time.Millisecond, func(uint8, int64) {})

	h.NoteOff(60, 1000)
	same, pending := h.NoteOn(64)

	assert := assert.New(t)
	assert.False(same)
	assert.NotNil(pending)
	assert.Equal(uint8(60), pending.pitch)
}

func TestHumanizerNoteOnWithNothingPendingReturnsNil(t *testing.T) {
	h := NewHumanizer(50*time.Millisecond, func(uint8, int64) {})

	_, pending := h.NoteOn(60)
	assert.Nil(t, pending)
}

func TestHumanizerResolvedNoteOffDoesNotAlsoFlush(t *testing.T) {
	var mu sync.Mutex
	var delivered []uint8

	h := NewHumanizer(20*time.Millisecond, func(pitch uint8, _ int64) {
		mu.Lock()
		delivered = append(delivered, pitch)
		mu.Unlock()
	})

	h.NoteOff(60, 0)
	h.NoteOn(60)

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, delivered)
}

func TestHumanizerUnresolvedNoteOffFlushesAfterWindow(t *testing.T) {
	var mu sync.Mutex
	var delivered []uint8

	h := NewHumanizer(20*time.Millisecond, func(pitch uint8, _ int64) {
		mu.Lock()
		delivered = append(delivered, pitch)
		mu.Unlock()
	})

	h.NoteOff(60, 0)

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint8{60}, delivered)
}
