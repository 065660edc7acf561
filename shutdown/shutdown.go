/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package shutdown centralizes the process exit-code policy described in
// spec.md §7: a parse error or other startup failure terminates the process
// immediately with a diagnostic, rather than propagating as a Java
// exception (which only makes sense once there is a running thread to
// propagate into).
package shutdown

import (
	"os"

	"github.com/sirupsen/logrus"
)

type ExitCode int

const (
	OK           ExitCode = 0
	JVM_EXCEPTION ExitCode = 1
	APP_EXCEPTION ExitCode = 1
)

// exitFunc is swapped out in tests so that a shutdown-triggering code path
// can be exercised without actually killing the test binary.
var exitFunc = os.Exit

func Exit(code ExitCode) {
	logrus.WithField("exitCode", int(code)).Trace("vmcore shutting down")
	exitFunc(int(code))
}

// OverrideExitFunc lets tests observe a call to Exit without terminating the
// process; it returns a restore function.
func OverrideExitFunc(f func(int)) (restore func()) {
	prev := exitFunc
	exitFunc = f
	return func() { exitFunc = prev }
}
