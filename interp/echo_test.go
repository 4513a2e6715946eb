package interp

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mddl-lang/mddl/expr"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	assert.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = orig
	w.Close()

	out, err := io.ReadAll(r)
	assert.NoError(t, err)
	return string(out)
}

func TestEchoShowsLastStatementInChain(t *testing.T) {
	first := &expr.Root{Expr: expr.NewValueLiteral()}
	second := &expr.Root{Expr: expr.NewVariable()}
	first.Next = second

	var e Echo
	out := captureStdout(t, func() { e.Show(first) })

	assert.Contains(t, out, second.Expr.String())
}

func TestEchoHandlesNilRoot(t *testing.T) {
	var e Echo
	out := captureStdout(t, func() { e.Show(nil) })
	assert.Empty(t, out)
}

func TestEchoPadsOverShorterFollowingLine(t *testing.T) {
	var e Echo
	e.lastLen = 10

	root := &expr.Root{Expr: expr.NewValueLiteral()}
	out := captureStdout(t, func() { e.Show(root) })

	assert.True(t, len(out) > len(root.Expr.String()))
}
