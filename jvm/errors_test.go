/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"errors"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vmcore/frames"
	"vmcore/globals"
	"vmcore/log"
	"vmcore/thread"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	normal := os.Stderr
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = normal
	msg, _ := io.ReadAll(r)
	return string(msg)
}

func freshGlobals() {
	globals.InitGlobals("test")
	log.Init()
	_ = log.SetLogLevel(log.INFO)
}

func TestShowFrameStackWhenPreviouslyShown(t *testing.T) {
	freshGlobals()
	th := thread.New("main")
	globals.GetGlobalRef().JvmFrameStackShown = true

	out := captureStderr(t, func() { showFrameStack(th) })
	assert.Empty(t, out)
}

func TestShowFrameStackWithEmptyStack(t *testing.T) {
	freshGlobals()
	th := thread.New("main")
	globals.GetGlobalRef().JvmFrameStackShown = false

	out := captureStderr(t, func() { showFrameStack(th) })
	assert.Equal(t, "no further data available\n", out)
}

func TestShowFrameStackWithOneEntry(t *testing.T) {
	freshGlobals()
	f := frames.CreateFrame(1, 1)
	f.ClassName = "testClass"
	f.MethodName = "main"
	f.Descriptor = "()V"
	f.PC = 42

	th := thread.New("main")
	th.Stack.PushFrame(f)
	globals.GetGlobalRef().JvmFrameStackShown = false

	out := captureStderr(t, func() { showFrameStack(th) })
	assert.Contains(t, out, "testClass.main()V")
	assert.Contains(t, out, "pc=42")
}

func TestShowGoStackWhenPreviouslyCaptured(t *testing.T) {
	freshGlobals()
	globals.GetGlobalRef().GoStackShown = false
	captured := debug.Stack()
	globals.GetGlobalRef().ErrorGoStack = string(captured)
	firstEntry := strings.Split(string(captured), "\n")[0]

	out := captureStderr(t, func() { showGoStackTrace(nil) })
	assert.Contains(t, out, firstEntry)
}

func TestShowGoStackWhenPreviouslyShown(t *testing.T) {
	freshGlobals()
	globals.GetGlobalRef().GoStackShown = true
	globals.GetGlobalRef().ErrorGoStack = string(debug.Stack())

	out := captureStderr(t, func() { showGoStackTrace(nil) })
	assert.Empty(t, out)
}

func TestShowPanicCause(t *testing.T) {
	freshGlobals()
	globals.GetGlobalRef().PanicCauseShown = false
	cause := errors.New("error causing panic")

	out := captureStderr(t, func() { showPanicCause(cause) })
	assert.Contains(t, out, "error causing panic")
}

func TestShowPanicCauseAfterAlreadyShown(t *testing.T) {
	freshGlobals()
	globals.GetGlobalRef().PanicCauseShown = true
	cause := errors.New("error causing panic")

	out := captureStderr(t, func() { showPanicCause(cause) })
	assert.Empty(t, out)
}

func TestShowPanicCauseNil(t *testing.T) {
	freshGlobals()
	globals.GetGlobalRef().PanicCauseShown = false

	out := captureStderr(t, func() { showPanicCause(nil) })
	assert.Contains(t, out, "error: go panic -- cause unknown")
}
