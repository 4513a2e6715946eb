package optable

import (
	"time"

	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/seq"
	"github.com/mddl-lang/mddl/value"
)

const subseqBoundsErr = "cannot write outside bounds of subsequence"
const subseqResizeErr = "cannot resize subsequence"
const subseqConcatErr = "cannot concatenate to subsequence"
const indexBoundsErr = "index is outside sequence bounds"

// completeWaitInterval is how long COMPLETE sleeps between polls of a
// still-capturing sequence literal's complete flag.
const completeWaitInterval = 10 * time.Millisecond

// registerDo installs the DO group: NEW/COMPLETE/ASSIGN/SET/RESIZE,
// the binding and mutation operators.
func registerDo() {
	register(OP_DO, "NEW", value.VSEQ, value.NONE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return lhs.ElideCopy(), nil
	})

	register(OP_DO, "NEW", value.VALUE, value.NONE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return value.NewRef(value.VSEQ, seq.NewOfSize(lhs.Value), seq.ALL), nil
	})

	register(OP_DO, "COMPLETE", value.SEQ_LIT, value.NONE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		for !lhs.Ref.Complete() {
			time.Sleep(completeWaitInterval)
		}
		return lhs.ElideCopy(), nil
	})

	register(OP_DO, "ASSIGN", value.SEQ, value.SEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		moved := lhs.Move()
		v := rt.At(moved.StackPos)
		v.Release()
		v.Take(rhs.Move())
		return v.Duplicate(), nil
	})

	register(OP_DO, "SET", value.SEQ, value.VSEQ, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		if lhs.IsSubseq() {
			v := lhs.Move()
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
			v.Ref.Assign(v.Start, rhs.Ref, rhs.Start, rhs.Length())
			return v, nil
		}
		v := rt.At(lhs.StackPos)
		lhs.Release()
		v.Take(rhs.ElideCopy())
		return v.Duplicate(), nil
	})

	register(OP_DO, "SET", value.SEQ, value.VATTR, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		v.Ref.AssignAttr(rhs.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "RESIZE", value.SEQ, value.VALUE, value.SEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			return value.DataRef{}, diag.NewRuntimeError(subseqResizeErr)
		}
		v.Ref.Resize(rhs.Value)
		return v, nil
	})

	register(OP_DO, "SET", value.VSEQ, value.VSEQ, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		lhs.Release()
		return rhs.ElideCopy(), nil
	})

	register(OP_DO, "SET", value.VSEQ, value.VATTR, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		v.Ref.AssignAttr(rhs.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "RESIZE", value.VSEQ, value.VALUE, value.VSEQ, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Resize(rhs.Value)
		return v, nil
	})

	register(OP_DO, "SET", value.ATTR, value.VSEQ, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		v.Ref.AssignAttr(v.Attr, v.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "SET", value.ATTR, value.VATTR, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		if v.IsSubseq() {
			if v.Length() > rhs.Length() {
				return value.DataRef{}, diag.NewRuntimeError(subseqBoundsErr)
			}
		} else {
			v.Ref.Expect(rhs.Length())
		}
		v.Ref.AssignAttr(v.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "SET", value.ATTR, value.VALUE, value.ATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.Move()
		v.Ref.AssignValue(v.Attr, v.Start, v.Length(), rhs.Value)
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "SET", value.VATTR, value.VSEQ, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		v.Ref.AssignAttr(v.Attr, v.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "SET", value.VATTR, value.VATTR, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.Expect(rhs.Length())
		v.Ref.AssignAttr(v.Attr, rhs.Attr, v.Start, rhs.Ref, rhs.Start, rhs.Length())
		rhs.Release()
		return v, nil
	})

	register(OP_DO, "SET", value.VATTR, value.VALUE, value.VATTR, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := lhs.ElideCopy()
		v.Ref.AssignValue(v.Attr, v.Start, v.Length(), rhs.Value)
		rhs.Release()
		return v, nil
	})
}
