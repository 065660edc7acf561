/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"os"
	"path/filepath"
	"strings"
)

// ClasspathEntry is one directory or archive on the search path, in the
// order it should be searched (spec.md §4.B: "classpath entries are
// searched in the order given").
type ClasspathEntry struct {
	Path    string
	IsDir   bool
	archive *Archive // nil until first opened, then cached for the process lifetime
}

// ClasspathIndex is the resolved, ordered list of classpath entries a
// Classloader searches to turn a binary class name into raw bytes.
type ClasspathIndex struct {
	Entries []*ClasspathEntry
}

// NewClasspathIndex splits raw on the platform path-list separator (':' on
// Unix, ';' on Windows -- os.PathListSeparator), in the order
// original_source's path.rs resolves a classpath string, and classifies
// each entry as a directory or an archive by stat'ing it.
func NewClasspathIndex(raw string) (*ClasspathIndex, error) {
	idx := &ClasspathIndex{}
	if raw == "" {
		return idx, nil
	}
	for _, p := range strings.Split(raw, string(os.PathListSeparator)) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue // unreadable entries are skipped, not fatal, matching javac/java's own tolerance
		}
		idx.Entries = append(idx.Entries, &ClasspathEntry{Path: p, IsDir: info.IsDir()})
	}
	return idx, nil
}

// Locate finds className (a binary name, e.g. "java/lang/Object") on the
// classpath and returns its raw class-file bytes.
func (c *ClasspathIndex) Locate(className string) ([]byte, error) {
	rel := className + ".class"
	for _, e := range c.Entries {
		if e.IsDir {
			full := filepath.Join(e.Path, filepath.FromSlash(rel))
			if b, err := os.ReadFile(full); err == nil {
				return b, nil
			}
			continue
		}
		if e.archive == nil {
			a, err := OpenArchive(e.Path)
			if err != nil {
				continue
			}
			e.archive = a
		}
		if b, err := e.archive.ReadClass(rel); err == nil {
			return b, nil
		}
	}
	return nil, errClassNotFound(className)
}
