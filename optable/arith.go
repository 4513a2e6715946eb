package optable

import (
	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
)

const (
	attrPitch    = seq.PITCH
	attrVelocity = seq.VELOCITY
	attrDuration = seq.DURATION
	attrWait     = seq.WAIT
)

// arithSpec describes one of the four element-wise arithmetic groups
// (FA/ADD, SO/SUBTRACT, LA/MULTIPLY, TI/DIVIDE). Each group shares an
// identical set of thirteen type combinations; rather than
// hand-duplicating them per group, registerArithGroup builds all
// thirteen once per arithSpec, substituting the group's own attribute
// tag, Sequence method set, and scalar op.
type arithSpec struct {
	group  OpId
	attr   seq.AttrType
	opName string

	resize func(size, v int64) int64
	value  func(a, b int64) int64

	// hasUnary/unary cover FA/ADD's "+1" and SO/SUBTRACT's "-1" bare
	// increment/decrement kernel (VALUE,NONE,VALUE). LA/MULTIPLY and
	// TI/DIVIDE register no such kernel: a unary multiply-by-nothing
	// has no sensible identity to fall back on, so that combination is
	// left unregistered for those groups.
	hasUnary bool
	unary    func(a int64) int64

	seqAll  func(s *seq.Sequence, start int64, rhs *seq.Sequence, rhsStart, length int64)
	seqAttr func(s *seq.Sequence, attr, rhsAttr seq.AttrType, start int64, rhs *seq.Sequence, rhsStart, length int64)
	seqVal  func(s *seq.Sequence, attr seq.AttrType, start, length, v int64)
}

func registerArithGroup(spec arithSpec) {
	const attrType, vattrType = value.ATTR, value.VATTR

	// <attr>, SEQ/VSEQ, NONE -> ATTR/VATTR: tags a sequence reference
	// with this group's attribute without touching its data.
	register(spec.group, spec.attr.String(), value.SEQ, value.NONE, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		v.Type = value.ATTR
		v.Attr = spec.attr
		return v, nil
	})
	register(spec.group, spec.attr.String(), value.VSEQ, value.NONE, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		v.Type = value.VATTR
		v.Attr = spec.attr
		return v, nil
	})

	if spec.hasUnary {
		register(spec.group, spec.opName, value.VALUE, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
			return value.NewValue(spec.unary(lhs.Value)), nil
		})
	}

	register(spec.group, spec.opName, value.SEQ, value.VSEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		spec.seqAll(v.Ref, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, value.SEQ, value.VATTR, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		spec.seqAttr(v.Ref, rhs.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, value.SEQ, value.VALUE, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqResizeErr)
		}
		v.Ref.Resize(spec.resize(v.Ref.Size, rhs.Value))
		return v, nil
	})

	register(spec.group, spec.opName, value.VSEQ, value.VSEQ, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		spec.seqAll(v.Ref, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, value.VSEQ, value.VATTR, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		spec.seqAttr(v.Ref, rhs.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, value.VSEQ, value.VALUE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Resize(spec.resize(v.Ref.Size, rhs.Value))
		return v, nil
	})

	register(spec.group, spec.opName, attrType, value.VSEQ, attrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		spec.seqAttr(v.Ref, v.Attr, v.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, attrType, value.VATTR, attrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		spec.seqAttr(v.Ref, v.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, attrType, value.VALUE, attrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		spec.seqVal(v.Ref, v.Attr, v.Start, v.Length(), rhs.Value)
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, vattrType, value.VSEQ, vattrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		spec.seqAttr(v.Ref, v.Attr, v.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, vattrType, value.VATTR, vattrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		spec.seqAttr(v.Ref, v.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(spec.group, spec.opName, vattrType, value.VALUE, vattrType, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		spec.seqVal(v.Ref, v.Attr, v.Start, v.Ref.Size, rhs.Value)
		return v, nil
	})

	register(spec.group, spec.opName, value.VALUE, value.VALUE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return value.NewValue(spec.value(lhs.Value, rhs.Value)), nil
	})
}
