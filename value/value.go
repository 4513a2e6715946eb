// Package value implements DataType and DataRef: the tagged handle
// every expression in the runtime stack passes around, together with
// its copy-on-write and implicit-widening rules.
package value

import (
	"fmt"

	"github.com/mddl-lang/mddl/seq"
)

// DataType tags what a DataRef currently holds. The zero value is
// UNKNOWN so an uninitialised DataRef fails loudly rather than
// silently behaving like NONE.
type DataType uint8

const (
	UNKNOWN DataType = iota
	NONE
	UNDEFINED
	VOID
	SEQ
	VSEQ
	SEQ_LIT
	ATTR
	VATTR
	VALUE
	INDEXER
	ERROR
)

func (t DataType) String() string {
	switch t {
	case UNKNOWN:
		return "UNKNOWN"
	case NONE:
		return "NONE"
	case UNDEFINED:
		return "UNDEFINED"
	case VOID:
		return "VOID"
	case SEQ:
		return "SEQ"
	case VSEQ:
		return "VSEQ"
	case SEQ_LIT:
		return "SEQ_LIT"
	case ATTR:
		return "ATTR"
	case VATTR:
		return "VATTR"
	case VALUE:
		return "VALUE"
	case INDEXER:
		return "INDEXER"
	default:
		return "ERROR"
	}
}

// implicitCastBook maps each widenable type to the single wider type
// it may implicitly become. Lookup chains (SEQ_LIT -> SEQ -> VSEQ) so
// a SEQ_LIT may implicitly reach VSEQ in two hops.
var implicitCastBook = map[DataType]DataType{
	SEQ_LIT: SEQ,
	SEQ:     VSEQ,
	ATTR:    VATTR,
}

// MayImplicitCast reports whether a value of type from may be used
// where a value of type to is expected, widening zero or more steps.
func MayImplicitCast(from, to DataType) bool {
	if from == to {
		return true
	}
	for {
		next, ok := implicitCastBook[from]
		if !ok {
			return false
		}
		if next == to {
			return true
		}
		from = next
	}
}

// HasImplicitCast reports whether t has any single-step implicit
// widening at all, letting a caller drive the widen-and-retry loop
// query_book uses when an exact (group, lhs, rhs) kernel is missing.
func HasImplicitCast(t DataType) bool {
	_, ok := implicitCastBook[t]
	return ok
}

// ImplicitCast returns the single-step implicit widening of t. Panics
// if t has none; callers must guard with HasImplicitCast first.
func ImplicitCast(t DataType) DataType {
	next, ok := implicitCastBook[t]
	if !ok {
		panic(fmt.Sprintf("value: %s has no implicit cast", t))
	}
	return next
}

// toCopyType maps a reference type to the copy type it collapses to
// once ownership can no longer be shared (SEQ/SEQ_LIT -> VSEQ,
// ATTR -> VATTR). Every other type is already a copy type or scalar
// and passes through unchanged.
func toCopyType(t DataType) DataType {
	switch t {
	case SEQ_LIT, SEQ:
		return VSEQ
	case ATTR:
		return VATTR
	default:
		return t
	}
}

// ToCopyType is the exported form of toCopyType, used by expr's
// OperationExpr.QueryBook to pre-collapse ref types before lookup
// when the operand is bound to a variable slot that must not be
// mutated in place.
func ToCopyType(t DataType) DataType { return toCopyType(t) }

// DataRef is the handle every expression result and stack slot is
// held in: either a reference into a shared Sequence (SEQ/ATTR, or a
// SEQ_LIT sequence literal), an owned copy (VSEQ/VATTR), or a bare
// scalar (VALUE).
type DataRef struct {
	Type     DataType
	Attr     seq.AttrType
	Ref      *seq.Sequence
	StackPos int64
	Start    int64
	Size     int64
	Value    int64
}

// NewValue returns a bare scalar DataRef holding value.
func NewValue(value int64) DataRef {
	return DataRef{Type: VALUE, Value: value, StackPos: -1}
}

// NewTyped returns an empty DataRef of the given scalar/sentinel type
// (NONE, UNDEFINED, VOID, INDEXER, ERROR: anything that carries no
// Sequence).
func NewTyped(t DataType) DataRef {
	return DataRef{Type: t, StackPos: -1}
}

// NewRef attaches to seq with ref-count bookkeeping and returns the
// DataRef wrapping it.
func NewRef(t DataType, s *seq.Sequence, attr seq.AttrType) DataRef {
	s.RefCount.Add(1)
	return DataRef{Type: t, Attr: attr, Ref: s, StackPos: -1}
}

func (d *DataRef) IsSubseq() bool { return d.Size != 0 }

func (d *DataRef) Length() int64 {
	if d.IsSubseq() {
		return d.Size
	}
	return d.Ref.Size
}

func (d *DataRef) Empty() bool { return d.Ref == nil }

func (d *DataRef) IsRefType() bool {
	return d.Type == SEQ || d.Type == ATTR
}

func (d *DataRef) IsCopyType() bool {
	return d.Type == VSEQ || d.Type == VATTR
}

// Attach points d at seq, bumping its ref count, and records the
// [refStart, refStart+refSize) window d addresses.
func (d *DataRef) Attach(s *seq.Sequence, refStart, refSize int64) {
	s.RefCount.Add(1)
	d.Ref = s
	d.Start = refStart
	d.Size = refSize
}

// Release drops d's hold on its Sequence, freeing it once no DataRef
// references it any longer.
func (d *DataRef) Release() {
	if d.Ref == nil {
		return
	}
	if d.Ref.RefCount.Add(-1) == 0 {
		// no further owners; let the garbage collector reclaim it.
	}
	d.Ref = nil
}

// Take adopts rhs's Sequence attachment, leaving rhs's fields as they
// are (the caller is expected to discard rhs immediately after).
func (d *DataRef) Take(rhs DataRef) {
	d.Attach(rhs.Ref, rhs.Start, rhs.Size)
}

// ImplicitCast widens d's type in place. Panics if the cast is not a
// legal widening; callers must check MayImplicitCast or rely on the
// environment binder having already validated it.
func (d *DataRef) ImplicitCast(t DataType) {
	if !MayImplicitCast(d.Type, t) {
		panic(fmt.Sprintf("value: illegal implicit cast %s -> %s", d.Type, t))
	}
	d.Type = t
}

// Get returns the Sequence d references.
func (d *DataRef) Get() *seq.Sequence { return d.Ref }

// Copy deep-copies d's referenced window into a brand-new Sequence,
// leaving d's own attachment untouched.
func (d DataRef) Copy() DataRef {
	if d.Ref == nil {
		panic("value: copy of empty DataRef")
	}
	start := d.Start
	length := d.Length()
	return NewRef(d.Type, seq.NewWindow(d.Ref, start, length), d.Attr)
}

// Duplicate returns a second DataRef sharing the same Sequence,
// bumping the ref count.
func (d DataRef) Duplicate() DataRef {
	if d.Ref == nil {
		panic("value: duplicate of empty DataRef")
	}
	d.Ref.RefCount.Add(1)
	return d
}

// Move transfers ownership of d's Sequence to the returned DataRef
// and clears d's own reference.
func (d *DataRef) Move() DataRef {
	if d.Ref == nil {
		panic("value: move of empty DataRef")
	}
	x := *d
	d.Ref = nil
	return x
}

// ElideCopy returns an owned copy-type DataRef for d, moving instead
// of copying when d is the Sequence's sole owner.
func (d *DataRef) ElideCopy() DataRef {
	if d.Ref == nil {
		panic("value: elide_copy of empty DataRef")
	}
	d.Type = toCopyType(d.Type)

	if d.Ref.RefCount.Load() == 1 {
		if d.IsSubseq() {
			d.Ref.Crop(d.Start, d.Size)
		}
		return d.Move()
	}

	v := d.Copy()
	d.Release()
	return v
}

// CastToVSeq widens d to VSEQ, materialising a Sequence from a bare
// VALUE/UNDEFINED/VOID/INDEXER when d carries no Sequence yet.
func (d *DataRef) CastToVSeq() DataRef {
	switch d.Type {
	case VALUE:
		return NewRef(VSEQ, seq.NewOfSize(d.Value), seq.ALL)
	case UNDEFINED, VOID, INDEXER:
		return NewRef(VSEQ, seq.New(), seq.ALL)
	case ATTR, VATTR:
		v := d.ElideCopy()
		v.Ref.Mask(v.Attr)
		v.Type = VSEQ
		return v
	case SEQ, VSEQ:
		v := d.ElideCopy()
		v.Type = VSEQ
		return v
	default:
		panic(fmt.Sprintf("value: cannot cast %s to VSEQ", d.Type))
	}
}

// CastToSeq widens d to SEQ, following the same rules as CastToVSeq
// but preferring to keep a plain SEQ/SEQ_LIT reference rather than
// collapsing it to a copy.
func (d *DataRef) CastToSeq() DataRef {
	switch d.Type {
	case VALUE:
		return NewRef(SEQ, seq.NewOfSize(d.Value), seq.ALL)
	case UNDEFINED, INDEXER:
		return NewRef(SEQ, seq.New(), seq.ALL)
	case ATTR, VATTR:
		v := d.ElideCopy()
		v.Ref.Mask(v.Attr)
		v.Type = SEQ
		return v
	case SEQ:
		return d.Move()
	case SEQ_LIT:
		v := d.Move()
		v.Type = SEQ
		return v
	case VSEQ:
		v := d.ElideCopy()
		v.Type = SEQ
		return v
	default:
		panic(fmt.Sprintf("value: cannot cast %s to SEQ", d.Type))
	}
}

// String renders a debug view of d, used by runtime tracing.
func (d DataRef) String() string {
	s := fmt.Sprintf("[Type: %s, Attr: %s", d.Type, d.Attr)
	if d.StackPos != -1 {
		s += fmt.Sprintf(", Stack: %d", d.StackPos)
	}
	s += fmt.Sprintf(", Ref: %p", d.Ref)
	if d.Ref != nil {
		s += fmt.Sprintf(", Ref Count: %d, Len: %d", d.Ref.RefCount.Load(), d.Length())
	}
	if d.IsSubseq() {
		s += fmt.Sprintf(" (%d, %d)", d.Start, d.Start+d.Size)
	}
	s += fmt.Sprintf(", Val: %d]", d.Value)
	return s
}
