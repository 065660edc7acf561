/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"archive/zip"
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"vmcore/trace"
)

// Archive is a jar file opened once and kept memory-mapped for the
// process lifetime, the way saferwall's PE reader keeps a binary mapped
// rather than re-reading it per field access. A jar is a zip archive with
// an optional manifest naming a Main-Class; only the entries needed
// (class files, by name) are inflated on demand.
type Archive struct {
	path  string
	file  *os.File
	data  mmap.MMap
	zr    *zip.Reader
}

// OpenArchive mmaps path and opens it as a zip reader. The mapping and
// file handle are kept open for the archive's lifetime; Close releases
// both.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(m), info.Size())
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	trace.Trace("opened archive " + path)
	return &Archive{path: path, file: f, data: m, zr: zr}, nil
}

// ReadClass returns the decompressed bytes of relPath (e.g.
// "java/lang/Object.class") within the archive.
func (a *Archive) ReadClass(relPath string) ([]byte, error) {
	f, err := a.zr.Open(relPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// MainClass returns the Main-Class header of the archive's
// META-INF/MANIFEST.MF, or "" if the jar has none (not an executable jar).
func (a *Archive) MainClass() string {
	f, err := a.zr.Open("META-INF/MANIFEST.MF")
	if err != nil {
		return ""
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return parseManifestMainClass(string(content))
}

func parseManifestMainClass(manifest string) string {
	const key = "Main-Class:"
	for _, line := range splitLines(manifest) {
		if len(line) > len(key) && line[:len(key)] == key {
			v := line[len(key):]
			return trimManifestValue(v)
		}
	}
	return ""
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func trimManifestValue(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\t') {
		v = v[1:]
	}
	for len(v) > 0 && (v[len(v)-1] == '\r' || v[len(v)-1] == '\n' || v[len(v)-1] == ' ') {
		v = v[:len(v)-1]
	}
	return v
}

// Close releases the memory mapping and underlying file handle.
func (a *Archive) Close() error {
	if err := a.data.Unmap(); err != nil {
		return err
	}
	return a.file.Close()
}
