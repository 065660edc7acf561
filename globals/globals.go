/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals holds the handful of process-wide settings the rest of
// vmcore reads: where the standard-library classes live, which class path
// entries the user supplied, and which trace categories are enabled. It is
// intentionally a thin struct behind a package-level pointer, matching the
// teacher's globals.GetGlobalRef()/InitGlobals() pattern, rather than a
// dependency-injected config object threaded through every call -- most of
// vmcore's core packages (classloader, jvm) are themselves package-level
// singletons for the same reason (there is exactly one JVM per process).
package globals

import (
	"os"
	"sync"
)

// MaxJavaVersionRaw is the highest class-file major version vmcore accepts
// (61 = Java 17, per the JVM specification version table).
const MaxJavaVersionRaw = 61
const MaxJavaVersion = 17

// ThrowFunc lets the classloader and other non-interpreter packages raise a
// Java exception without importing the jvm package (which would create an
// import cycle: jvm already imports classloader). jvm.InitGlobals wires the
// real implementation in at startup.
type ThrowFunc func(excClassName string, msg string)

type Globals struct {
	mu sync.RWMutex

	JacobinName string // argv[0], kept under the historical name for trace parity
	JavaHome    string
	JavaVersion int

	ClasspathRaw []string // -cp/-classpath/--class-path entries, in order
	StartingJar  string   // set when invoked as `-jar x.jar`

	StrictJDK bool // when true, missing stdlib classes are a hard error

	TraceClass   bool
	TraceCloadi  bool // class-loading initialization trace
	TraceInst    bool // instruction-level trace
	Verbose      bool

	JvmFrameStackShown bool // used to avoid double-printing an uncaught-exception trace
	GoStackShown       bool // used to avoid double-printing the captured Go panic stack
	PanicCauseShown    bool // used to avoid double-printing a panic's originating cause
	ErrorGoStack       string // captured via debug.Stack() when a Go panic escapes the interpreter

	FuncThrowException ThrowFunc

	ExitNow bool // set by -help/-showversion to signal "stop after parsing args"
}

var (
	global     *Globals
	globalOnce sync.Once
)

// InitGlobals (re)initializes the single global instance. jacobinName is
// typically os.Args[0]; tests pass a fixed string for determinism.
func InitGlobals(jacobinName string) *Globals {
	global = &Globals{
		JacobinName:         jacobinName,
		JavaVersion:         MaxJavaVersion,
		FuncThrowException:  func(string, string) {}, // no-op until jvm wires the real one
		ClasspathRaw:        nil,
	}
	global.JavaHome = discoverJavaHome("")
	return global
}

// GetGlobalRef returns the process-wide Globals, initializing it with
// defaults on first use so packages that only read configuration (e.g. in
// unit tests) don't have to call InitGlobals themselves.
func GetGlobalRef() *Globals {
	globalOnce.Do(func() {
		if global == nil {
			global = InitGlobals(os.Args[0])
		}
	})
	if global == nil {
		global = InitGlobals(os.Args[0])
	}
	return global
}

// discoverJavaHome implements the directory-discovery order from
// SPEC_FULL.md §9 (originally rust_jvm's class_format/src/path.rs): an
// explicit override first, then the JAVA_HOME environment variable, then a
// short list of platform-conventional directories. A candidate is accepted
// only if it looks like a real JDK/JRE install (carries lib/rt.jar or
// jre/lib/rt.jar) or -- since modern JDKs ship java.base.jmod instead of
// rt.jar -- jmods/java.base.jmod.
func discoverJavaHome(explicit string) string {
	candidates := []string{explicit, os.Getenv("JAVA_HOME")}
	candidates = append(candidates, platformConventionalJavaHomes()...)

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if looksLikeJavaHome(c) {
			return c
		}
	}
	return ""
}

func looksLikeJavaHome(dir string) bool {
	for _, rel := range []string{
		"jmods/java.base.jmod",
		"lib/rt.jar",
		"jre/lib/rt.jar",
	} {
		if st, err := os.Stat(dir + string(os.PathSeparator) + rel); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}

func platformConventionalJavaHomes() []string {
	return []string{
		"/usr/lib/jvm/default-java",
		"/usr/lib/jvm/java-17-openjdk",
		"/opt/jdk-17",
		"/Library/Java/JavaVirtualMachines/jdk-17.jdk/Contents/Home",
	}
}

// AddClasspathEntry records one user-supplied class path entry, dropping it
// with a trace.Warning (not an error) if it doesn't exist -- spec.md §4.B:
// "Non-existent user entries are dropped with a warning."
func (g *Globals) AddClasspathEntry(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ClasspathRaw = append(g.ClasspathRaw, path)
}

func (g *Globals) Classpath() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.ClasspathRaw))
	copy(out, g.ClasspathRaw)
	return out
}
