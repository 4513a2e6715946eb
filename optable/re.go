package optable

import (
	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
)

// registerRe installs the RE group: VALUE/CONCAT/EXTEND/INDEX, the
// read, append, and slicing operators.
func registerRe() {
	register(OP_RE, "VALUE", value.VSEQ, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		if !lhs.Ref.Compressed && len(lhs.Ref.Data) == 0 {
			return value.DataRef{}, diag.NewRuntimeError("cannot get value from empty sequence")
		}
		v := value.NewValue(lhs.Ref.Value())
		lhs.Release()
		return v, nil
	})

	register(OP_RE, "VALUE", value.VATTR, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		if !lhs.Ref.Compressed && len(lhs.Ref.Data) == 0 {
			return value.DataRef{}, diag.NewRuntimeError("cannot get value from empty sequence")
		}
		v := value.NewValue(lhs.Ref.ValueAttr(lhs.Attr))
		lhs.Release()
		return v, nil
	})

	register(OP_RE, "VALUE", value.VALUE, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return *lhs, nil
	})

	register(OP_RE, "CONCAT", value.SEQ, value.VSEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqConcatErr)
		}
		v.Ref.Concat(rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.SEQ, value.VATTR, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqConcatErr)
		}
		v.Ref.ConcatAttr(rhs.Attr, rhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "EXTEND", value.SEQ, value.VALUE, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqResizeErr)
		}
		v.Ref.Extend(rhs.Value)
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.VSEQ, value.VSEQ, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Concat(rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.VSEQ, value.VATTR, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.ConcatAttr(rhs.Attr, rhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "EXTEND", value.VSEQ, value.VALUE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Extend(rhs.Value)
		return v, nil
	})

	register(OP_RE, "CONCAT", value.ATTR, value.VSEQ, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqConcatErr)
		}
		v.Ref.ConcatAttr(lhs.Attr, lhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.ATTR, value.VATTR, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqConcatErr)
		}
		v.Ref.ConcatAttr(lhs.Attr, rhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "EXTEND", value.ATTR, value.VALUE, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqResizeErr)
		}
		v.Ref.Extend(rhs.Value)
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.VATTR, value.VSEQ, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.ConcatAttr(lhs.Attr, lhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "CONCAT", value.VATTR, value.VATTR, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.ConcatAttr(lhs.Attr, rhs.Attr, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "EXTEND", value.VATTR, value.VALUE, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Extend(rhs.Value)
		rhs.Release()
		return v, nil
	})

	register(OP_RE, "INDEX", value.VALUE, value.SEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		idx := rhs.Start + lhs.Value
		if idx < 0 || idx >= rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.Move()
		v.Start, v.Size = idx, 1
		return v, nil
	})

	register(OP_RE, "INDEX", value.VALUE, value.VSEQ, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		idx := rhs.Start + lhs.Value
		if idx < 0 || idx >= rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		elem := *rhs.Ref.At(idx)
		rhs.Release()
		return value.NewRef(value.VSEQ, seq.NewProto(elem, 1), seq.ALL), nil
	})

	register(OP_RE, "INDEX", value.VALUE, value.ATTR, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		idx := rhs.Start + lhs.Value
		if idx < 0 || idx >= rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.Move()
		v.Start, v.Size = idx, 1
		return v, nil
	})

	register(OP_RE, "INDEX", value.VALUE, value.VATTR, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		idx := rhs.Start + lhs.Value
		if idx < 0 || idx >= rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		elem := *rhs.Ref.At(idx)
		attr := rhs.Attr
		rhs.Release()
		return value.NewRef(value.VATTR, seq.NewProto(elem, 1), attr), nil
	})

	register(OP_RE, "INDEX", value.VALUE, value.VALUE, value.INDEXER, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := value.NewTyped(value.INDEXER)
		v.Start = lhs.Value
		v.Size = rhs.Value - lhs.Value
		return v, nil
	})

	register(OP_RE, "INDEX", value.INDEXER, value.SEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		start := rhs.Start + lhs.Start
		size := lhs.Size
		if start < 0 || start >= rhs.Length() || size > rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.Move()
		v.Start, v.Size = start, size
		return v, nil
	})

	register(OP_RE, "INDEX", value.INDEXER, value.VSEQ, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		start := rhs.Start + lhs.Start
		size := lhs.Size
		if start < 0 || start >= rhs.Length() || size > rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.ElideCopy()
		v.Start, v.Size = start, size
		return v, nil
	})

	register(OP_RE, "INDEX", value.INDEXER, value.ATTR, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		start := rhs.Start + lhs.Start
		size := lhs.Size
		if start < 0 || start >= rhs.Length() || size > rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.Move()
		v.Start, v.Size = start, size
		return v, nil
	})

	register(OP_RE, "INDEX", value.INDEXER, value.VATTR, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		start := rhs.Start + lhs.Start
		size := lhs.Size
		if start < 0 || start >= rhs.Length() || size > rhs.Length() {
			return value.DataRef{}, diag.NewRuntimeError(indexBoundsErr)
		}
		v := rhs.ElideCopy()
		v.Start, v.Size = start, size
		return v, nil
	})
}
