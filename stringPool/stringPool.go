/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package stringPool is the process-wide interned-string table. Class
// names, field names, and method names are stored once here and referenced
// everywhere else by a uint32 index, the same trick CPython and the real
// Jacobin use to avoid duplicating the same "java/lang/String" (or a
// user's deeply-nested package name) thousands of times across every
// loaded class's constant pool.
//
// "java/lang/Object" and "java/lang/String" are pre-interned at indices
// types.ObjectPoolStringIndex and types.StringPoolStringIndex respectively,
// so code that needs to compare against either can do so without a pool
// lookup.
package stringPool

import (
	"sync"

	"vmcore/types"
)

type pool struct {
	mu      sync.RWMutex
	strings []string
	index   map[string]types.StringPoolIndex
}

var p = newPool()

func newPool() *pool {
	pl := &pool{
		strings: make([]string, 0, 1024),
		index:   make(map[string]types.StringPoolIndex, 1024),
	}
	pl.insertLocked("java/lang/Object")
	pl.insertLocked("java/lang/String")
	return pl
}

// Reset empties the pool and re-interns the two fixed entries. Used by
// tests that need a clean slate.
func Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strings = p.strings[:0]
	p.index = make(map[string]types.StringPoolIndex, 1024)
	p.insertLocked("java/lang/Object")
	p.insertLocked("java/lang/String")
}

func (pl *pool) insertLocked(s string) types.StringPoolIndex {
	if idx, ok := pl.index[s]; ok {
		return idx
	}
	idx := types.StringPoolIndex(len(pl.strings))
	pl.strings = append(pl.strings, s)
	pl.index[s] = idx
	return idx
}

// GetStringIndex interns s (if not already present) and returns its index.
func GetStringIndex(s *string) types.StringPoolIndex {
	p.mu.RLock()
	if idx, ok := p.index[*s]; ok {
		p.mu.RUnlock()
		return idx
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	return pl_insert(*s)
}

func pl_insert(s string) types.StringPoolIndex {
	return p.insertLocked(s)
}

// GetStringPointer returns a pointer to the interned string at index, or
// nil if the index is out of range. The pointer is stable for the lifetime
// of the process: entries are never removed or reordered.
func GetStringPointer(index types.StringPoolIndex) *string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(index) >= len(p.strings) {
		return nil
	}
	return &p.strings[index]
}

// GetStringPoolSize returns the number of interned strings, which also
// bounds the valid index range: [0, GetStringPoolSize()).
func GetStringPoolSize() types.StringPoolIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.StringPoolIndex(len(p.strings))
}
