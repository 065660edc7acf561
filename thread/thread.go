/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package thread models one Java thread of execution: its own call
// stack, a uuid-tagged identity (used as the monitor-ownership token
// object.Monitor compares against), and an interrupt flag, per spec.md
// §5.
package thread

import (
	"sync/atomic"

	"github.com/google/uuid"

	"vmcore/frames"
)

// ExecThread is one Java thread: a name, a stable identity string (used
// as object.Monitor's owner token so lock ownership survives goroutine
// rescheduling), its call stack, and an interrupt flag.
type ExecThread struct {
	ID        string
	Name      string
	Stack     *frames.CallStack
	interrupt int32 // atomic bool
	daemon    bool
}

var threadIDCounter int64

// New creates a new thread with a fresh uuid identity and an empty call
// stack.
func New(name string) *ExecThread {
	atomic.AddInt64(&threadIDCounter, 1)
	return &ExecThread{
		ID:    uuid.NewString(),
		Name:  name,
		Stack: frames.NewCallStack(),
	}
}

// Interrupt sets the thread's interrupt flag (java.lang.Thread.interrupt).
func (t *ExecThread) Interrupt() {
	atomic.StoreInt32(&t.interrupt, 1)
}

// Interrupted reports and clears the interrupt flag, matching
// Thread.interrupted()'s clear-on-read semantics.
func (t *ExecThread) Interrupted() bool {
	return atomic.SwapInt32(&t.interrupt, 0) != 0
}

// IsInterrupted reports the interrupt flag without clearing it, matching
// Thread.isInterrupted().
func (t *ExecThread) IsInterrupted() bool {
	return atomic.LoadInt32(&t.interrupt) != 0
}

// SetDaemon/IsDaemon track the daemon-thread flag; vmcore's top-level
// runner only waits on non-daemon threads before exiting (spec.md's
// Non-goals exclude a full thread scheduler, but daemon-vs-user status is
// part of the object model gfunction's Thread natives need).
func (t *ExecThread) SetDaemon(d bool) { t.daemon = d }
func (t *ExecThread) IsDaemon() bool   { return t.daemon }
