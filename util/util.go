// Package util holds the small generic helpers the rest of MDDL
// shares: the ones a live interpreter actually calls, rather than a
// full batch-processing utility grab bag.
package util

import "golang.org/x/exp/constraints"

// Min returns the smaller of two integers, used by config to cap the
// humanization window at its maximum.
func Min[A constraints.Integer](a, b A) A {
	if a < b {
		return a
	}
	return b
}

// Sum totals a slice of integers, used by env diagnostics to report
// a scope tree's total variable-slot footprint.
func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}

// GetKeys returns a map's keys, used wherever a diagnostic needs a
// deterministic-enough listing of scope or session identifiers
// without caring about map iteration order at the call site.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// FilterZeros drops zero elements, used by the scheduler to discard
// no-op tick deltas before they're folded into a Sum.
func FilterZeros[A constraints.Integer](nums []A) []A {
	res := make([]A, 0, len(nums))
	for _, v := range nums {
		if v != 0 {
			res = append(res, v)
		}
	}
	return res
}
