/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the newer structured-logging facade: classloader.go and
// most other recently-touched packages call trace.Trace/trace.Error/
// trace.Warning instead of the older log.Log(msg, level). Both facades
// share the same underlying logrus logger so -verbose/-strictJDK output
// interleaves correctly regardless of which facade a given call site uses.
package trace

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   false,
		DisableColors:   false,
		QuoteEmptyFields: true,
	})
}

// Trace emits a fine-grained diagnostic line, gated by globals.TraceClass/
// TraceCloadi/Verbose at the call site (trace itself does not gate on
// level -- the caller decides whether the line is worth the allocation).
func Trace(msg string) {
	logger.Debug(msg)
}

// TraceInst emits a per-instruction line at Trace granularity. Callers
// (jvm.runFrame) only bother formatting msg when globals.TraceInst is set,
// since this is by far the highest-volume trace category.
func TraceInst(msg string) {
	logger.Trace(msg)
}

// Warning emits a recoverable-condition line (e.g. a dropped class path
// entry, per spec.md §4.B).
func Warning(msg string) {
	logger.Warn(msg)
}

// Error emits a class-format or link-error diagnostic. It does not exit the
// process -- callers in classloader decide whether the condition is fatal.
func Error(msg string) {
	logger.Error(msg)
}

// SetOutput redirects trace output, used by tests that capture stderr.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	logger.SetOutput(w)
}

// SetLevel controls the minimum logrus level emitted; -verbose raises it to
// DebugLevel.
func SetLevel(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}
