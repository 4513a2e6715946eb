package optable

import "github.com/mddl-lang/mddl/value"

// compare returns 1 when a < b, 0 otherwise. The branch operator
// treats the result as truthy/falsy directly (a strictly positive
// value takes BranchUp).
func compare(a, b int64) int64 {
	if a < b {
		return 1
	}
	return 0
}

// registerMi installs the MI group: LENGTH/COMPARE, the query and
// relational operators.
func registerMi() {
	register(OP_MI, "LENGTH", value.VSEQ, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		l := lhs.Length()
		lhs.Release()
		return value.NewValue(l), nil
	})

	register(OP_MI, "LENGTH", value.VATTR, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		l := lhs.Length()
		lhs.Release()
		return value.NewValue(l), nil
	})

	register(OP_MI, "LENGTH", value.VALUE, value.NONE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return value.NewValue(lhs.Value), nil
	})

	register(OP_MI, "COMPARE", value.VSEQ, value.VSEQ, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Length())
		lhs.Release()
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VSEQ, value.VATTR, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Length())
		lhs.Release()
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VSEQ, value.VALUE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Value)
		lhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VATTR, value.VSEQ, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Length())
		lhs.Release()
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VATTR, value.VATTR, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Length())
		lhs.Release()
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VATTR, value.VALUE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Length(), rhs.Value)
		lhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VALUE, value.VSEQ, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Value, rhs.Length())
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VALUE, value.VATTR, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		v := compare(lhs.Value, rhs.Length())
		rhs.Release()
		return value.NewValue(v), nil
	})

	register(OP_MI, "COMPARE", value.VALUE, value.VALUE, value.VALUE, func(rt Stack, lhs, rhs *value.DataRef) (value.DataRef, error) {
		return value.NewValue(compare(lhs.Value, rhs.Value)), nil
	})
}
