package interp

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// queuedMsg is one MIDI-in event captured with its arrival tick,
// waiting to be drained onto the interpreter's single execution
// thread. OffDirect marks a note-off that already passed through the
// humanization buffer once; dispatch hands it straight to the parser
// instead of buffering it a second time.
type queuedMsg struct {
	Msg       gomidi.Message
	TickNs    int64
	OffDirect bool
	Pitch     uint8
}

// messageQueue is the mutex-guarded handoff between the MIDI-in
// thread's callback and the interpreter's own goroutine, so note
// decoding never blocks the driver callback.
type messageQueue struct {
	mu    sync.Mutex
	items []queuedMsg
}

func (q *messageQueue) push(msg gomidi.Message, tickNs int64) {
	q.mu.Lock()
	q.items = append(q.items, queuedMsg{Msg: msg, TickNs: tickNs})
	q.mu.Unlock()
}

// pushOff enqueues a note-off the humanization window released
// unresolved. Going through the queue keeps the parser single-threaded
// even though the debounce timer fires on its own goroutine.
func (q *messageQueue) pushOff(pitch uint8, tickNs int64) {
	q.mu.Lock()
	q.items = append(q.items, queuedMsg{TickNs: tickNs, OffDirect: true, Pitch: pitch})
	q.mu.Unlock()
}

// drain removes and returns every message queued so far, or nil if
// none arrived since the last drain.
func (q *messageQueue) drain() []queuedMsg {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil
	return items
}
