package interp

import (
	"fmt"
	"strings"

	"github.com/mddl-lang/mddl/expr"
)

// Echo renders the most recently executed statement to a single
// overwritten terminal line: one line per completed phrase, not a
// full REPL front end.
type Echo struct {
	lastLen int
}

// Show renders the last statement reached while walking from root to
// the end of its chain.
func (e *Echo) Show(root *expr.Root) {
	if root == nil {
		return
	}
	last := root
	for last.Next != nil {
		last = last.Next
	}

	text := "NULL"
	if last.Expr != nil {
		text = last.Expr.String()
	}

	pad := 0
	if e.lastLen > len(text) {
		pad = e.lastLen - len(text)
	}
	fmt.Printf("\r%s%s", text, strings.Repeat(" ", pad))
	e.lastLen = len(text)
}
