// Package scheduler turns a captured Sequence into a stream of timed
// note on/off MIDI messages, merging newly scheduled material into
// whatever is already queued to play.
package scheduler

import (
	"container/list"
	"sync"
	"time"

	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/util"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// sleepInterval is how long the emitter goroutine parks between
// checks of the outgoing queue once it has nothing due yet.
const sleepInterval = 0

// Event is one outgoing MIDI event still waiting to fire: a note on
// (Vel > 0) or note off (Vel == 0), due Wait nanoseconds after the
// event ahead of it in the queue fires.
type Event struct {
	Pitch uint8
	Vel   uint8
	Wait  int64
}

// Scheduler owns the relative-delay event queue that turns scheduled
// sequences into real-time MIDI output on one port.
type Scheduler struct {
	out drivers.Out

	outgoing   *list.List
	outgoingMu sync.Mutex
	wg         sync.WaitGroup
	lastClock  time.Time
	active     bool

	Channel   uint8
	Tempo     int
	PPQ       int
	ticksToNs float64
}

func New(out drivers.Out) *Scheduler {
	return &Scheduler{out: out, outgoing: list.New()}
}

func (s *Scheduler) SetChannel(c uint8) { s.Channel = c }

func (s *Scheduler) SetTempo(bpm int) {
	s.Tempo = bpm
	s.updateConversions()
}

func (s *Scheduler) SetPPQ(ticks int) {
	s.PPQ = ticks
	s.updateConversions()
}

func (s *Scheduler) updateConversions() {
	if s.Tempo == 0 || s.PPQ == 0 {
		return
	}
	s.ticksToNs = 60.0 / float64(s.Tempo) / float64(s.PPQ) * 1e9
}

// Launch starts the emitter goroutine that drains the outgoing queue
// in real time.
func (s *Scheduler) Launch() {
	s.active = true
	s.lastClock = time.Now()
	s.wg.Add(1)
	go s.run()
}

// Join signals the emitter to stop once the queue drains and blocks
// until it does.
func (s *Scheduler) Join() {
	s.active = false
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		clock := time.Now()
		ns := clock.Sub(s.lastClock).Nanoseconds()
		s.lastClock = clock

		var remaining int

		s.outgoingMu.Lock()
		for ns > 0 && s.outgoing.Len() > 0 {
			front := s.outgoing.Front()
			e := front.Value.(*Event)

			if ns > e.Wait {
				ns -= e.Wait
				s.sendMessage(*e)
				s.outgoing.Remove(front)
			} else {
				e.Wait -= ns
				break
			}
		}
		remaining = s.outgoing.Len()
		s.outgoingMu.Unlock()

		if !s.active && remaining == 0 {
			break
		}

		time.Sleep(sleepInterval * time.Millisecond)
	}
}

// AddSequence schedules the [start, start+length) window of seq onto
// the outgoing queue, merging each note's on/off pair into whatever
// is already queued ahead of it so overlapping sequences interleave
// correctly.
func (s *Scheduler) AddSequence(sq *seq.Sequence, start, length int64) {
	s.outgoingMu.Lock()
	defer s.outgoingMu.Unlock()

	if sq.Compressed && sq.Comp.Velocity == 0 {
		return
	}

	data := sq.Expanded()
	search := s.outgoing.Front()

	for i := start; i < start+length; i++ {
		n := data[i]
		if n.Velocity == 0 {
			continue
		}

		onEvent := &Event{Pitch: n.Pitch, Vel: n.Velocity, Wait: int64(float64(n.Wait) * s.ticksToNs)}
		onElem := s.insertEvent(onEvent, search)

		offEvent := &Event{Pitch: n.Pitch, Vel: 0, Wait: int64(float64(n.Duration) * s.ticksToNs)}
		s.insertEvent(offEvent, onElem.Next())

		search = onElem.Next()
	}
}

// insertEvent walks the queue from start, consuming e.Wait against
// each event's own wait until it finds the event e now falls before,
// splicing e in ahead of it and absorbing the remainder of that
// event's wait. Callers must hold outgoingMu.
func (s *Scheduler) insertEvent(e *Event, start *list.Element) *list.Element {
	for itr := start; itr != nil; itr = itr.Next() {
		other := itr.Value.(*Event)
		if e.Wait < other.Wait {
			other.Wait -= e.Wait
			return s.outgoing.InsertBefore(e, itr)
		}
		e.Wait -= other.Wait
	}

	return s.outgoing.PushBack(e)
}

func (s *Scheduler) NoteOn(pitch, vel uint8) {
	s.out.Send(midi.NoteOn(s.Channel, pitch, vel))
}

func (s *Scheduler) NoteOff(pitch uint8) {
	s.out.Send(midi.NoteOff(s.Channel, pitch))
}

func (s *Scheduler) sendMessage(e Event) {
	if e.Vel > 0 {
		s.NoteOn(e.Pitch, e.Vel)
	} else {
		s.NoteOff(e.Pitch)
	}
}

// Pending reports how many events are still queued to fire.
func (s *Scheduler) Pending() int {
	s.outgoingMu.Lock()
	defer s.outgoingMu.Unlock()
	return s.outgoing.Len()
}

// PendingWaitTotal sums the remaining relative wait, in nanoseconds,
// across every queued event; the debug HTTP endpoint reports this as
// roughly how much scheduled audio is still in flight. Zero-wait
// events (an on/off pair spliced back-to-back) are dropped before
// summing, the way a diagnostic over the relative-delay list should
// ignore links that contribute nothing to the total.
func (s *Scheduler) PendingWaitTotal() uint64 {
	s.outgoingMu.Lock()
	waits := make([]int64, 0, s.outgoing.Len())
	for e := s.outgoing.Front(); e != nil; e = e.Next() {
		waits = append(waits, e.Value.(*Event).Wait)
	}
	s.outgoingMu.Unlock()
	return util.Sum(util.FilterZeros(waits))
}
