package interp

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// bufferedOff is a note-off held back for one humanization window,
// waiting to see whether the performer's next gesture is a repeated
// strike of the same pitch (a trill that should read as sequential)
// or a different one (a trill that should read as overlapping).
type bufferedOff struct {
	pitch  uint8
	tickNs int64
}

// Humanizer absorbs the small timing slop a live performance always
// has around a note release: a note-off arriving within the
// humanization window of the following note-on must not be allowed to
// split a chord into siblings that were meant to read as one held
// gesture. It buffers at most one pending note-off at a time and
// resolves it against whatever arrives next, rather than delivering it
// to the parser the instant the MIDI driver reports it.
type Humanizer struct {
	window time.Duration

	mu      sync.Mutex
	pending *bufferedOff

	flush   func(func())
	deliver func(pitch uint8, tickNs int64)
}

// NewHumanizer returns a Humanizer that, absent any resolving note-on,
// delivers a buffered note-off to deliverOff once window has elapsed
// with nothing else touching it.
func NewHumanizer(window time.Duration, deliverOff func(pitch uint8, tickNs int64)) *Humanizer {
	return &Humanizer{
		window:  window,
		deliver: deliverOff,
		flush:   debounce.New(window),
	}
}

// NoteOff buffers pitch's release. debounce.New's callback only ever
// fires the last closure handed to it within the window, so closing
// over a private snapshot here and re-checking h.pending inside the
// callback is what makes an already-resolved buffer a harmless no-op
// once the window expires.
func (h *Humanizer) NoteOff(pitch uint8, tickNs int64) {
	h.mu.Lock()
	prev := h.pending
	h.pending = &bufferedOff{pitch: pitch, tickNs: tickNs}
	h.mu.Unlock()

	// a release already buffered is delivered now rather than dropped
	if prev != nil {
		h.deliver(prev.pitch, prev.tickNs)
	}

	h.flush(func() {
		h.mu.Lock()
		p := h.pending
		h.pending = nil
		h.mu.Unlock()
		if p != nil {
			h.deliver(p.pitch, p.tickNs)
		}
	})
}

// NoteOn resolves a newly struck pitch against whatever note-off is
// currently buffered, if any. same reports whether the buffered
// release shares pitch (and therefore must be delivered, in order,
// before the new on); rest is the buffered event being resolved, or
// nil if nothing was pending.
func (h *Humanizer) NoteOn(pitch uint8) (same bool, rest *bufferedOff) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.pending
	if p == nil {
		return false, nil
	}
	h.pending = nil
	return p.pitch == pitch, p
}
