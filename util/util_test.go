package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinReturnsSmaller(t *testing.T) {
	assert.Equal(t, int64(3), Min(int64(3), int64(8)))
	assert.Equal(t, int64(3), Min(int64(8), int64(3)))
}

func TestSumTotalsElements(t *testing.T) {
	assert.Equal(t, uint64(15), Sum([]int{1, 2, 3, 4, 5}))
}

func TestSumOfEmptyIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), Sum([]int{}))
}

func TestGetKeysReturnsEveryKey(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	assert.ElementsMatch(t, []string{"a", "b"}, GetKeys(m))
}

func TestFilterZerosDropsOnlyZeros(t *testing.T) {
	assert.Equal(t, []int64{1, -2, 3}, FilterZeros([]int64{0, 1, -2, 0, 3, 0}))
}
