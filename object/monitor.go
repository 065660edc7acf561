/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import "sync"

// Monitor is a reentrant lock backing a monitorenter/monitorexit pair or a
// synchronized method (spec.md §4.E / §5): one owner thread may acquire it
// repeatedly without blocking itself, and must release it the same number
// of times before another thread can acquire it.
type Monitor struct {
	mu      sync.Mutex
	free    sync.Cond
	owner   string // thread identity, see package thread; empty when unheld
	entries int
}

func newMonitor() *Monitor {
	m := &Monitor{}
	m.free.L = &m.mu
	return m
}

// Enter acquires the monitor on behalf of ownerID, blocking if another
// thread currently holds it. Reentrant: the same ownerID may call Enter
// any number of times and must call Exit the same number of times.
func (m *Monitor) Enter(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.entries > 0 && m.owner != ownerID {
		m.free.Wait()
	}
	m.owner = ownerID
	m.entries++
}

// Exit releases one level of ownerID's hold on the monitor. Exiting a
// monitor you don't own is a caller error: callers reachable from bytecode
// (monitorexit, synchronized-method exit) must check HeldBy and raise
// IllegalMonitorStateException themselves before calling Exit, since that
// is a Java-level exceptional condition, not an interpreter bug. Exit
// itself still panics on the mismatched case, for the Go-internal callers
// that have no bytecode frame to throw into.
func (m *Monitor) Exit(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == 0 || m.owner != ownerID {
		panic("monitor exit by non-owner")
	}
	m.entries--
	if m.entries == 0 {
		m.owner = ""
		m.free.Signal()
	}
}

// HeldBy reports whether ownerID currently holds the monitor at least
// once -- used by wait()/notify() natives to validate the caller owns the
// monitor they're calling on.
func (m *Monitor) HeldBy(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries > 0 && m.owner == ownerID
}
