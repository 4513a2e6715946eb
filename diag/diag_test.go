package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeErrorMessageIsPrefixed(t *testing.T) {
	err := NewRuntimeError("index out of bounds")
	assert.Equal(t, "runtime error: index out of bounds", err.Error())
	var _ error = err
}

func TestSysErrorMessageIsPrefixed(t *testing.T) {
	err := NewSysError("dispatch table miss")
	assert.Equal(t, "mddl system error: dispatch table miss", err.Error())
	var _ error = err
}

func TestRuntimeErrorAndSysErrorAreDistinctTypes(t *testing.T) {
	var re error = NewRuntimeError("x")
	var se error = NewSysError("x")

	_, isRuntime := se.(*RuntimeError)
	_, isSys := re.(*SysError)
	assert.False(t, isRuntime)
	assert.False(t, isSys)
}
