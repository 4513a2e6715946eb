package syntax

import (
	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/seq"
	"gitlab.com/gomidi/midi/v2"
)

const nMIDINotes = 128

// mddlSysexID tags MDDL's vendor SysEx messages (F0 4D <op> F7): byte
// 1 after F0 is this ID, byte 2 is the OpId override for the phrase
// about to close.
const mddlSysexID byte = 0x4d

// SltxTarget is the sequence literal currently being captured from
// live note on/off events, together with the pitch that identifies
// it; striking that same pitch again (unless capture was forced)
// closes the literal.
type SltxTarget struct {
	Seq *seq.Sequence
	ID  uint8
}

// Parser turns a stream of timestamped MIDI messages into completed
// phrase ASTs. It owns the CST under construction, the most recently
// completed AST, and (when capturing) the sequence literal currently
// being recorded note-by-note.
type Parser struct {
	CST CST
	AST AST

	notesActive [nMIDINotes]bool
	pending     bool
	iefCode     optable.OpId

	sltx           *SltxTarget
	sltxHeld       []int64
	sltxForced     bool
	prevNoteOnTick int64
	prevEventTick  int64

	Tempo int
	PPQ   int
}

func New() *Parser {
	return &Parser{iefCode: optable.IEF_DEFAULT, Tempo: 120, PPQ: 960}
}

func (p *Parser) PendingAST() bool { return p.pending }
func (p *Parser) ActiveSltx() bool { return p.sltx != nil }
func (p *Parser) SetSltx(t *SltxTarget) { p.sltx = t }
func (p *Parser) ForceSltx() { p.sltxForced = true }

func (p *Parser) AllNotesOff() bool {
	for _, on := range p.notesActive {
		if on {
			return false
		}
	}
	return true
}

// ProcessMsg decodes one MIDI message and advances the parser's state
// machine. tick is the message's absolute timestamp in nanoseconds;
// the sequence-literal capture path converts its deltas to ticks
// (nsToTicks) to compute wait/duration.
func (p *Parser) ProcessMsg(msg midi.Message, tick int64) {
	var channel, note, vel uint8

	switch {
	case msg.GetNoteOn(&channel, &note, &vel):
		if vel == 0 {
			p.NoteOff(note, tick)
			break
		}
		p.NoteOn(note, vel, tick)
	case msg.GetNoteOff(&channel, &note, &vel):
		p.NoteOff(note, tick)
	case msg.Is(midi.SysExMsg):
		var b []byte
		if msg.GetSysEx(&b) && len(b) >= 2 && b[0] == mddlSysexID {
			p.iefCode = optable.OpId(b[1])
		}
	}
}

func (p *Parser) NoteOn(note, vel uint8, tick int64) {
	if p.notesActive[note] {
		return
	}
	p.notesActive[note] = true

	if p.ActiveSltx() {
		p.sltxNoteOn(note, vel, tick)
		return
	}

	p.CST.NoteOn(note)
}

func (p *Parser) NoteOff(note uint8, tick int64) {
	if !p.notesActive[note] {
		return
	}
	p.notesActive[note] = false

	if p.ActiveSltx() {
		p.sltxNoteOff(note, tick)
		return
	}

	p.CST.NoteOff(note)

	if p.AllNotesOff() {
		p.AST.BuildFromCST(&p.CST)
		p.AST.SetIEFCode(p.iefCode)
		p.pending = true
	}
}

// nsToTicks converts the interpreter's wall clock (as tick deltas
// already expressed against the transport's own clock) into MDDL tick
// units at the parser's configured tempo/PPQ.
func (p *Parser) nsToTicks() float64 {
	return 1.0 / 1e9 / 60.0 * float64(p.Tempo) * float64(p.PPQ)
}

func (p *Parser) sltxNoteOn(note, vel uint8, tick int64) {
	s := p.sltx.Seq

	s.Mu.Lock()
	defer s.Mu.Unlock()

	hold := int64(float64(tick-p.prevEventTick) * p.nsToTicks())

	for _, idx := range p.sltxHeld {
		s.NoteHold(idx, hold)
	}

	if note == p.sltx.ID && !p.sltxForced {
		p.closeSltxLocked()
		return
	}

	wait := int64(0)
	if s.Size != 0 {
		wait = int64(float64(tick-p.prevNoteOnTick) * p.nsToTicks())
	}
	s.NoteOn(note, vel, wait)
	p.sltxHeld = append(p.sltxHeld, s.Size-1)

	p.prevNoteOnTick = tick
	p.prevEventTick = tick
}

func (p *Parser) sltxNoteOff(note uint8, tick int64) {
	s := p.sltx.Seq

	s.Mu.Lock()
	defer s.Mu.Unlock()

	hold := int64(float64(tick-p.prevEventTick) * p.nsToTicks())

	kept := p.sltxHeld[:0]
	for _, idx := range p.sltxHeld {
		s.NoteHold(idx, hold)
		if s.At(idx).Pitch == note {
			continue
		}
		kept = append(kept, idx)
	}
	p.sltxHeld = kept

	p.prevEventTick = tick
}

// CloseSltx finalizes the sequence literal under capture, marking it
// complete so any DO/COMPLETE kernel blocked on it may proceed.
func (p *Parser) CloseSltx() {
	s := p.sltx.Seq
	s.Mu.Lock()
	defer s.Mu.Unlock()
	p.closeSltxLocked()
}

// closeSltxLocked requires the capture target's mutex to be held.
func (p *Parser) closeSltxLocked() {
	p.sltx.Seq.MarkComplete()
	p.Clear()
}

func (p *Parser) Clear() {
	p.CST.Reset()
	p.AST.Reset()
	p.notesActive = [nMIDINotes]bool{}
	p.pending = false
	p.iefCode = optable.IEF_DEFAULT

	p.sltx = nil
	p.sltxHeld = nil
	p.sltxForced = false
	p.prevNoteOnTick = 0
	p.prevEventTick = 0
}
