/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"fmt"
	"os"

	"vmcore/globals"
	"vmcore/thread"
)

// showFrameStack prints th's call stack to stderr, innermost frame last,
// the way a fatal uncaught exception's diagnostic dump does. Called from
// jvm.StartMainThread's top-level recover(). It prints at most once per
// run (tracked by globals.JvmFrameStackShown) in case a panic unwind
// triggers it more than once before reaching that recover.
func showFrameStack(th *thread.ExecThread) {
	g := globals.GetGlobalRef()
	if g.JvmFrameStackShown {
		return
	}
	g.JvmFrameStackShown = true

	if th == nil || th.Stack == nil || th.Stack.Depth() == 0 {
		fmt.Fprintln(os.Stderr, "no further data available")
		return
	}

	for _, line := range th.Stack.Trace() {
		fmt.Fprintln(os.Stderr, line)
	}
}

// showGoStackTrace prints the Go-level panic stack captured in
// globals.ErrorGoStack (stashed there by jvm.StartMainThread's recover()
// via debug.Stack()), at most once per run. The cause parameter is
// accepted for symmetry with showPanicCause and ignored -- the Go stack
// itself comes from the global, not from the panic value.
func showGoStackTrace(_ interface{}) {
	g := globals.GetGlobalRef()
	if g.GoStackShown {
		return
	}
	g.GoStackShown = true
	fmt.Fprint(os.Stderr, g.ErrorGoStack)
}

// showPanicCause prints what triggered a Go panic during interpretation,
// at most once per run.
func showPanicCause(cause error) {
	g := globals.GetGlobalRef()
	if g.PanicCauseShown {
		return
	}
	g.PanicCauseShown = true

	if cause == nil {
		fmt.Fprintln(os.Stderr, "error: go panic -- cause unknown")
		return
	}
	fmt.Fprintf(os.Stderr, "error: go panic, cause: %v\n", cause)
}
