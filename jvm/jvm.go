/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package jvm is the interpreter: method dispatch and resolution, the
// bytecode execution loop, and <clinit>/instance-creation orchestration
// that needs to run bytecode rather than just parse it (which is why this
// logic can't live in package classloader without an import cycle).
package jvm

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"

	"vmcore/classloader"
	"vmcore/gfunction"
	"vmcore/globals"
	"vmcore/object"
	"vmcore/thread"
	"vmcore/types"
)

func errNotLoaded(className string) error {
	return errors.Errorf("class not loaded: %s", className)
}

func errNoSuchMethod(className, name, desc string) error {
	return errors.Errorf("no such method: %s.%s%s", className, name, desc)
}

// Init wires classloader.ClinitRunner to this package's <clinit>
// implementation (breaking the classloader<->jvm import cycle, see
// classloader.ClinitRunner's doc comment) and loads every native method
// implementation. Call once at VM startup, after classloader.Init.
func Init() {
	classloader.ClinitRunner = runInitializationBlock
	gfunction.LoadAll()
}

// StartMainThread loads mainClass, runs its static initializers, and
// invokes its public static void main(String[]) entry point on a fresh
// thread -- the one entry point cmd/vmcore calls into. A Go panic anywhere
// in that call (an interpreter bug, as opposed to a Java-level thrown
// exception, which invokeMethod already returns as a normal error) is
// recovered here rather than crashing the process, so cmd/vmcore can still
// report a diagnostic and exit with the documented failure code.
func StartMainThread(mainClass string, args []string) (err error) {
	if _, loadErr := classloader.AppCL.Load(mainClass); loadErr != nil {
		return loadErr
	}
	if initErr := classloader.EnsureInitialized(mainClass); initErr != nil {
		return initErr
	}

	argsArray := buildArgsArray(args)
	th := newMainThread()

	defer func() {
		if r := recover(); r != nil {
			globals.GetGlobalRef().ErrorGoStack = string(debug.Stack())
			showFrameStack(th)
			showGoStackTrace(nil)
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			showPanicCause(cause)
			err = cause
		}
	}()

	_, err = invokeMethod(th, mainClass, "main", "([Ljava/lang/String;)V", []interface{}{argsArray}, false)
	return err
}

func newMainThread() *thread.ExecThread {
	th := thread.New("main")
	th.SetDaemon(false)
	return th
}

func buildArgsArray(args []string) *object.Array {
	arr := object.NewArray(types.RefPrefix, len(args))
	for i, a := range args {
		arr.Set(i, object.StringObjectFromGoString(a))
	}
	return arr
}
