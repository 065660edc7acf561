/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package log is the original leveled-logging facade carried over from the
// teacher's early history (several packages here -- jvm/instantiate.go,
// jvm/initializerBlock.go -- still call log.Log(msg, level) directly rather
// than the newer trace package below). Both facades are kept: this mirrors
// the real codebase, where a logging API migration happened gradually
// rather than atomically, and not every call site was migrated.
package log

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Level mirrors java.util.logging's granularity, which is what the
// original Jacobin log levels were named after.
type Level int

const (
	SEVERE Level = iota
	WARNING
	INFO
	CONFIG
	FINE
	FINER
	FINEST
	TRACE_INST // one line per executed bytecode instruction; extremely verbose
)

var (
	mu       sync.Mutex
	logger   = logrus.New()
	logLevel = INFO
)

// LogLevel is read directly by a couple of call sites (mirroring the
// teacher's exported `log.LogLevel` variable) to gate expensive
// diagnostic-only work, e.g. rendering access-flag names.
var LogLevel = INFO

// Init resets the logger to its default state; tests call this to get
// deterministic output ordering.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	logger = logrus.New()
	logLevel = INFO
	LogLevel = INFO
}

// SetLogLevel changes the minimum level that will be emitted.
func SetLogLevel(l Level) error {
	mu.Lock()
	defer mu.Unlock()
	logLevel = l
	LogLevel = l
	logger.SetLevel(toLogrusLevel(l))
	return nil
}

func toLogrusLevel(l Level) logrus.Level {
	switch {
	case l <= SEVERE:
		return logrus.ErrorLevel
	case l <= WARNING:
		return logrus.WarnLevel
	case l <= INFO:
		return logrus.InfoLevel
	case l <= FINE:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// Log writes msg at the given level if it meets the current threshold, and
// always returns nil -- the error return exists only so call sites can
// write `_ = log.Log(...)`, matching the teacher's signature.
func Log(msg string, level Level) error {
	mu.Lock()
	l := logLevel
	mu.Unlock()
	if level > l {
		return nil
	}
	logger.Log(toLogrusLevel(level), msg)
	return nil
}
