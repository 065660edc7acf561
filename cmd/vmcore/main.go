/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Command vmcore is the CLI entry point: vmcore [options] <main-class>
// [args...], or vmcore --jar <archive> [args...]. It parses flags,
// constructs globals.Globals, wires up the classloader and interpreter,
// and hands off to jvm.StartMainThread -- no interpreter semantics live
// here, per spec.md §1's "external interfaces don't reach into the core"
// layering.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vmcore/classloader"
	"vmcore/globals"
	"vmcore/jvm"
	"vmcore/shutdown"
	"vmcore/trace"
)

var (
	flagVerbose   bool
	flagClasspath string
	flagJar       string
	flagShowVer   bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main's testable core: it returns the process exit code rather
// than calling os.Exit directly, so tests can drive it without killing the
// test binary.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(normalizeJavaStyleFlags(args))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(shutdown.APP_EXCEPTION)
	}
	return exitCode
}

// exitCode is set by runVM inside the cobra RunE callback; cobra's
// Execute() itself only reports parse/flag errors, not the interpreted
// program's own outcome.
var exitCode int

func newRootCmd() *cobra.Command {
	exitCode = int(shutdown.OK)
	cmd := &cobra.Command{
		Use:           "vmcore [options] <main-class> [args...]",
		Short:         "vmcore is a from-scratch JVM execution core",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagShowVer {
				showVersion()
				return nil
			}
			exitCode = runVM(args)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "enable instruction-level trace output")
	cmd.Flags().StringVar(&flagClasspath, "classpath", "", "classpath entries, separated by the platform path separator")
	cmd.Flags().StringVar(&flagClasspath, "class-path", "", "alias of --classpath")
	cmd.Flags().StringVar(&flagClasspath, "cp", "", "alias of --classpath")
	cmd.Flags().StringVar(&flagJar, "jar", "", "run the main class named in this jar's manifest")
	cmd.Flags().BoolVar(&flagShowVer, "showversion", false, "print version information and exit")
	return cmd
}

func showVersion() {
	fmt.Fprintln(os.Stderr, "vmcore v.0.1.0, a from-scratch JVM execution core")
	showCopyright()
}

func showCopyright() {
	fmt.Fprintln(os.Stdout, "Adapted from the Jacobin VM project. Copyright (c) 2021-2026. All rights reserved.")
}

// runVM performs the actual class-loading and interpretation, returning
// the process exit code spec.md §7 mandates (0 on success, 1 on any
// uncaught Java exception or startup failure).
func runVM(args []string) int {
	g := globals.InitGlobals(os.Args[0])
	g.Verbose = flagVerbose
	trace.SetLevel(flagVerbose)

	classpath := resolveClasspath()
	if err := classloader.Init(classpath); err != nil {
		fmt.Fprintln(os.Stderr, "error initializing classloader:", err)
		return int(shutdown.APP_EXCEPTION)
	}
	jvm.Init()

	mainClass, programArgs, err := resolveMainClass(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(shutdown.APP_EXCEPTION)
	}

	if err := jvm.StartMainThread(mainClass, programArgs); err != nil {
		fmt.Fprintln(os.Stderr, "Exception in thread \"main\"", err)
		return int(shutdown.JVM_EXCEPTION)
	}
	return int(shutdown.OK)
}

// resolveMainClass picks the main class to run: from --jar's manifest, or
// the first positional argument, per spec.md §6.
func resolveMainClass(args []string) (string, []string, error) {
	if flagJar != "" {
		ar, err := classloader.OpenArchive(flagJar)
		if err != nil {
			return "", nil, err
		}
		main := ar.MainClass()
		if main == "" {
			return "", nil, fmt.Errorf("%s has no Main-Class manifest entry", flagJar)
		}
		return strings.ReplaceAll(main, ".", "/"), args, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("no main class specified")
	}
	return strings.ReplaceAll(args[0], ".", "/"), args[1:], nil
}

// resolveClasspath builds the effective classpath: --classpath/-cp wins,
// falling back to the CLASSPATH environment variable, per the conventional
// java launcher precedence.
func resolveClasspath() string {
	if flagClasspath != "" {
		return flagClasspath
	}
	return os.Getenv("CLASSPATH")
}

// getEnvArgs collects the JVM-recognized environment variables that carry
// extra options (JDK_JAVA_OPTIONS takes precedence order over the older
// _JAVA_OPTIONS and JAVA_TOOL_OPTIONS, but vmcore -- like the teacher --
// simply concatenates whichever are set, space-separated).
// normalizeJavaStyleFlags rewrites the conventional single-dash java
// launcher spellings (-cp, -jar, -classpath) into cobra's double-dash long
// form, since pflag's single-dash shorthands are restricted to one rune.
// Everything else passes through unchanged, including the positional
// main-class argument and its own args.
func normalizeJavaStyleFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "-cp":
			out = append(out, "--cp")
		case "-jar":
			out = append(out, "--jar")
		case "-classpath":
			out = append(out, "--classpath")
		case "-class-path":
			out = append(out, "--class-path")
		case "-verbose":
			out = append(out, "--verbose")
		case "-showversion":
			out = append(out, "--showversion")
		default:
			out = append(out, a)
		}
	}
	return out
}

func getEnvArgs() string {
	var parts []string
	for _, name := range []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"} {
		if v := os.Getenv(name); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
