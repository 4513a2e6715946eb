// Package seq implements Sequence: the compressible vector of Notes
// that is MDDL's one composite value type, along with the windowed
// arithmetic, slicing, and assignment operations every operator
// kernel is built from.
package seq

import (
	"sync"
	"sync/atomic"

	"github.com/mddl-lang/mddl/note"
)

// Sequence is either compressed (comp repeated Size times) or
// expanded (Data holds exactly Size elements). RefCount tracks how
// many live DataRefs hold this Sequence; Complete is false while a
// sequence literal is still being captured from the live MIDI stream.
type Sequence struct {
	Data       []note.Note
	Comp       note.Note
	Size       int64
	Compressed bool

	RefCount atomic.Int32
	complete atomic.Bool

	Mu sync.Mutex
}

// New returns an empty compressed Sequence (the zero value, size 0).
func New() *Sequence {
	s := &Sequence{Compressed: true}
	s.complete.Store(true)
	return s
}

// NewOfSize returns a compressed Sequence of the given size with the
// zero-Note prototype; this is how a scalar VALUE becomes a Sequence
// length (see DataRef.CastToVSeq).
func NewOfSize(size int64) *Sequence {
	s := &Sequence{Size: size, Compressed: true}
	s.complete.Store(true)
	return s
}

// NewProto returns a compressed Sequence repeating elem size times.
func NewProto(elem note.Note, size int64) *Sequence {
	s := &Sequence{Comp: elem, Size: size, Compressed: true}
	s.complete.Store(true)
	return s
}

// NewWindow deep-copies rhs's [rhsStart, rhsStart+length) window into
// a fresh Sequence, preserving compression when possible.
func NewWindow(rhs *Sequence, rhsStart, length int64) *Sequence {
	s := &Sequence{Size: length, Compressed: rhs.Compressed}
	if rhs.Compressed {
		s.Comp = rhs.Comp
	} else {
		s.Data = append([]note.Note(nil), rhs.Data[rhsStart:rhsStart+length]...)
	}
	s.complete.Store(true)
	return s
}

// NewPending returns an empty Sequence marked incomplete, the shape
// a SEQ_LIT gets while the syntax parser is still recording it.
func NewPending() *Sequence {
	s := &Sequence{Compressed: true}
	s.complete.Store(false)
	return s
}

func (s *Sequence) Complete() bool { return s.complete.Load() }
func (s *Sequence) MarkComplete() { s.complete.Store(true) }
func (s *Sequence) Empty() bool { return s.Size == 0 }

// NoteOn appends a newly struck note to a Sequence being captured in
// sequence-literal mode.
func (s *Sequence) NoteOn(pitch, vel uint8, wait int64) {
	n := note.Note{Pitch: pitch, Velocity: vel, Wait: int32(wait)}
	if s.Compressed {
		s.Expand()
	}
	s.Data = append(s.Data, n)
	s.Size++
}

// NoteHold accumulates duration onto an in-flight captured note.
func (s *Sequence) NoteHold(idx, duration int64) {
	e := s.At(idx)
	e.Duration += int32(duration)
}

// At returns a pointer to element idx, bounds-checked.
func (s *Sequence) At(idx int64) *note.Note {
	if idx < 0 || idx >= s.Size {
		panic("seq: index out of bounds")
	}
	if s.Compressed {
		return &s.Comp
	}
	return &s.Data[idx]
}

func (s *Sequence) Front() *note.Note { return s.At(0) }
func (s *Sequence) Back() *note.Note { return s.At(s.Size - 1) }

// Expand densifies a compressed Sequence into an explicit vector.
func (s *Sequence) Expand() {
	data := make([]note.Note, s.Size)
	for i := range data {
		data[i] = s.Comp
	}
	s.Data = data
	s.Compressed = false
}

// Expanded returns the dense element vector without mutating s.
func (s *Sequence) Expanded() []note.Note {
	if !s.Compressed {
		return s.Data
	}
	out := make([]note.Note, s.Size)
	for i := range out {
		out[i] = s.Comp
	}
	return out
}

// Resize sets Size to end: truncates on shrink, zero-pads on grow.
func (s *Sequence) Resize(end int64) {
	if end < s.Size {
		s.Size = end
		if s.Compressed {
			return
		}
		if end < 0 {
			end = 0
		}
		s.Data = s.Data[:end]
		return
	}

	if s.Compressed {
		if s.Comp == note.Zero {
			s.Size = end
			return
		}
		s.Expand()
	}
	s.Size = end
	grown := make([]note.Note, end)
	copy(grown, s.Data)
	s.Data = grown
}

// Expect grows to at least end; never shrinks.
func (s *Sequence) Expect(end int64) {
	if end < s.Size {
		return
	}
	s.Resize(end)
}

// Crop destructively narrows to [start, start+length).
func (s *Sequence) Crop(start, length int64) {
	s.Size = length
	if s.Compressed {
		return
	}
	end := start + length
	if end > int64(len(s.Data)) {
		end = int64(len(s.Data))
	}
	s.Data = append([]note.Note(nil), s.Data[start:end]...)
}

// Mask keeps only the named attribute in each element, zeroing others.
func (s *Sequence) Mask(attr AttrType) {
	if attr == ALL {
		return
	}
	sel := Selectors(attr)
	if s.Compressed {
		s.Expand()
	}
	for i := range s.Data {
		var masked note.Note
		sel.Set(&masked, sel.Get(s.Data[i]))
		s.Data[i] = masked
	}
}

// ---- assign ----

func (s *Sequence) Assign(start int64, rhs *Sequence, rhsStart, length int64) {
	if s.Compressed {
		if rhs.Compressed && s.Comp == rhs.Comp && s.Size == length {
			return
		}
		s.Expand()
	}
	if rhs.Compressed {
		for i := start; i < start+length; i++ {
			s.Data[i] = rhs.Comp
		}
		return
	}
	copy(s.Data[start:start+length], rhs.Data[rhsStart:rhsStart+length])
}

func (s *Sequence) AssignAttr(attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	sel, rsel := Selectors(attr), Selectors(rhsAttr)
	if s.Compressed {
		if rhs.Compressed && sel.Get(s.Comp) == rsel.Get(rhs.Comp) && s.Size == length {
			return
		}
		s.Expand()
	}
	if rhs.Compressed {
		v := rsel.Get(rhs.Comp)
		for i := start; i < start+length; i++ {
			sel.Set(&s.Data[i], v)
		}
		return
	}
	for i, j := start, rhsStart; i < start+length; i, j = i+1, j+1 {
		sel.Set(&s.Data[i], rsel.Get(rhs.Data[j]))
	}
}

func (s *Sequence) AssignValue(attr AttrType, start, length, value int64) {
	sel := Selectors(attr)
	if s.Compressed {
		if sel.Get(s.Comp) == value {
			return
		}
		if s.Size == length {
			sel.Set(&s.Comp, value)
			return
		}
		s.Expand()
	}
	for i := start; i < start+length; i++ {
		sel.Set(&s.Data[i], value)
	}
}

// ---- value ----

// Value returns the first element's pitch. Panics on an empty
// expanded sequence (runtime error at the call site).
func (s *Sequence) Value() int64 {
	if s.Compressed {
		return int64(s.Comp.Pitch)
	}
	if len(s.Data) == 0 {
		panic("seq: cannot get value from empty sequence")
	}
	return int64(s.Data[0].Pitch)
}

func (s *Sequence) ValueAttr(attr AttrType) int64 {
	if attr == ALL {
		return s.Value()
	}
	sel := Selectors(attr)
	if s.Compressed {
		return sel.Get(s.Comp)
	}
	if len(s.Data) == 0 {
		panic("seq: cannot get value from empty sequence")
	}
	return sel.Get(s.Data[0])
}

// ---- concat ----

func (s *Sequence) Concat(rhs *Sequence, rhsStart, rhsLength int64) {
	if s.Compressed {
		if rhs.Compressed && s.Comp == rhs.Comp {
			s.Size += rhsLength
			return
		}
		s.Expand()
	}
	s.Size += rhsLength
	if rhs.Compressed {
		for i := int64(0); i < rhsLength; i++ {
			s.Data = append(s.Data, rhs.Comp)
		}
		return
	}
	s.Data = append(s.Data, rhs.Data[rhsStart:rhsStart+rhsLength]...)
}

func (s *Sequence) ConcatAttr(attr, rhsAttr AttrType, rhs *Sequence, rhsStart, rhsLength int64) {
	sel, rsel := Selectors(attr), Selectors(rhsAttr)
	if s.Compressed {
		if rhs.Compressed && sel.Get(s.Comp) == rsel.Get(rhs.Comp) {
			s.Size += rhsLength
			return
		}
		s.Expand()
	}
	s.Size += rhsLength
	if rhs.Compressed {
		var m note.Note
		sel.Set(&m, rsel.Get(rhs.Comp))
		for i := int64(0); i < rhsLength; i++ {
			s.Data = append(s.Data, m)
		}
		return
	}
	for i := rhsStart; i < rhsStart+rhsLength; i++ {
		var m note.Note
		sel.Set(&m, rsel.Get(rhs.Data[i]))
		s.Data = append(s.Data, m)
	}
}

// Extend grows the sequence by length zero Notes.
func (s *Sequence) Extend(length int64) {
	s.Resize(s.Size + length)
}

// ---- add / subtract / multiply / divide : all-attribute ----

type elemOp func(dst *note.Note, src note.Note)

func addOp(dst *note.Note, src note.Note) { dst.Add(src) }
func subOp(dst *note.Note, src note.Note) { dst.Sub(src) }
func mulOp(dst *note.Note, src note.Note) { dst.Mul(src) }
func divOp(dst *note.Note, src note.Note) { dst.Div(src) }

func (s *Sequence) arith(op elemOp, identity func(note.Note) bool, start int64, rhs *Sequence, rhsStart, length int64) {
	if rhs.Compressed && identity != nil && identity(rhs.Comp) {
		return
	}
	if s.Compressed {
		if rhs.Compressed && s.Size == length {
			op(&s.Comp, rhs.Comp)
			return
		}
		s.Expand()
	}
	if rhs.Compressed {
		for i := start; i < start+length; i++ {
			op(&s.Data[i], rhs.Comp)
		}
		return
	}
	for i, j := start, rhsStart; i < start+length; i, j = i+1, j+1 {
		op(&s.Data[i], rhs.Data[j])
	}
}

func isZeroNote(n note.Note) bool { return n == note.Zero }
func isOneNote(n note.Note) bool {
	return n.Pitch == 1 && n.Velocity == 1 && n.Duration == 1 && n.Wait == 1
}

func (s *Sequence) Add(start int64, rhs *Sequence, rhsStart, length int64) {
	s.arith(addOp, isZeroNote, start, rhs, rhsStart, length)
}
func (s *Sequence) Subtract(start int64, rhs *Sequence, rhsStart, length int64) {
	s.arith(subOp, isZeroNote, start, rhs, rhsStart, length)
}
func (s *Sequence) Multiply(start int64, rhs *Sequence, rhsStart, length int64) {
	s.arith(mulOp, nil, start, rhs, rhsStart, length)
}
func (s *Sequence) Divide(start int64, rhs *Sequence, rhsStart, length int64) {
	s.arith(divOp, nil, start, rhs, rhsStart, length)
}

// ---- add / subtract / multiply / divide : attribute-projected ----

type intOp func(a, b int64) int64

func addInt(a, b int64) int64 { return a + b }
func subInt(a, b int64) int64 { return a - b }
func mulInt(a, b int64) int64 { return a * b }
func divInt(a, b int64) int64 { return a / b }

func (s *Sequence) arithAttr(op intOp, identity int64, hasIdentity bool, attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	sel, rsel := Selectors(attr), Selectors(rhsAttr)
	rv := rsel.Get(rhs.Comp)
	if rhs.Compressed && hasIdentity && rv == identity {
		return
	}
	if s.Compressed {
		if rhs.Compressed && s.Size == length {
			sel.Set(&s.Comp, op(sel.Get(s.Comp), rv))
			return
		}
		s.Expand()
	}
	if rhs.Compressed {
		for i := start; i < start+length; i++ {
			sel.Set(&s.Data[i], op(sel.Get(s.Data[i]), rv))
		}
		return
	}
	for i, j := start, rhsStart; i < start+length; i, j = i+1, j+1 {
		sel.Set(&s.Data[i], op(sel.Get(s.Data[i]), rsel.Get(rhs.Data[j])))
	}
}

func (s *Sequence) AddAttr(attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	s.arithAttr(addInt, 0, true, attr, rhsAttr, start, rhs, rhsStart, length)
}
func (s *Sequence) SubtractAttr(attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	s.arithAttr(subInt, 0, true, attr, rhsAttr, start, rhs, rhsStart, length)
}
func (s *Sequence) MultiplyAttr(attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	s.arithAttr(mulInt, 1, true, attr, rhsAttr, start, rhs, rhsStart, length)
}
func (s *Sequence) DivideAttr(attr, rhsAttr AttrType, start int64, rhs *Sequence, rhsStart, length int64) {
	s.arithAttr(divInt, 1, true, attr, rhsAttr, start, rhs, rhsStart, length)
}

// ---- add / subtract / multiply / divide : scalar value ----

func (s *Sequence) arithValue(op intOp, identity int64, attr AttrType, start, length, value int64) {
	if value == identity {
		return
	}
	sel := Selectors(attr)
	if s.Compressed {
		if s.Size == length {
			sel.Set(&s.Comp, op(sel.Get(s.Comp), value))
			return
		}
		s.Expand()
	}
	for i := start; i < start+length; i++ {
		sel.Set(&s.Data[i], op(sel.Get(s.Data[i]), value))
	}
}

func (s *Sequence) AddValue(attr AttrType, start, length, value int64) {
	s.arithValue(addInt, 0, attr, start, length, value)
}
func (s *Sequence) SubtractValue(attr AttrType, start, length, value int64) {
	s.arithValue(subInt, 0, attr, start, length, value)
}
func (s *Sequence) MultiplyValue(attr AttrType, start, length, value int64) {
	s.arithValue(mulInt, 1, attr, start, length, value)
}
func (s *Sequence) DivideValue(attr AttrType, start, length, value int64) {
	s.arithValue(divInt, 1, attr, start, length, value)
}
