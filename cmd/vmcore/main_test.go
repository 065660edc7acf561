/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetJVMenvVariablesWhenAbsent(t *testing.T) {
	os.Unsetenv("JAVA_TOOL_OPTIONS")
	os.Unsetenv("_JAVA_OPTIONS")
	os.Unsetenv("JDK_JAVA_OPTIONS")

	assert.Equal(t, "", getEnvArgs())
}

func TestGetJVMenvVariablesWhenTwoArePresent(t *testing.T) {
	os.Unsetenv("JAVA_TOOL_OPTIONS")
	os.Setenv("_JAVA_OPTIONS", "Hello,")
	os.Setenv("JDK_JAVA_OPTIONS", "Jacobin!")
	defer os.Unsetenv("_JAVA_OPTIONS")
	defer os.Unsetenv("JDK_JAVA_OPTIONS")

	assert.Equal(t, "Hello, Jacobin!", getEnvArgs())
}

func TestShowCopyright(t *testing.T) {
	out := captureStdout(t, showCopyright)
	assert.Contains(t, out, "All rights reserved")
}

func TestShowVersion(t *testing.T) {
	out := captureStderrAndStdout(t, showVersion)
	assert.Contains(t, out, "vmcore v.")
}

func TestNormalizeJavaStyleFlags(t *testing.T) {
	got := normalizeJavaStyleFlags([]string{"-cp", "lib.jar", "-verbose", "Main"})
	assert.Equal(t, []string{"--cp", "lib.jar", "--verbose", "Main"}, got)
}

func TestResolveMainClassFromPositionalArg(t *testing.T) {
	flagJar = ""
	main, rest, err := resolveMainClass([]string{"com.example.Main", "a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, "com/example/Main", main)
	assert.Equal(t, []string{"a", "b"}, rest)
}

func TestResolveMainClassWithNoArgs(t *testing.T) {
	flagJar = ""
	_, _, err := resolveMainClass(nil)
	assert.Error(t, err)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	normal := os.Stdout
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = normal
	out, _ := io.ReadAll(r)
	return string(out)
}

func captureStderrAndStdout(t *testing.T, fn func()) string {
	t.Helper()
	normalErr, normalOut := os.Stderr, os.Stdout
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	os.Stderr, os.Stdout = w, w
	fn()
	_ = w.Close()
	os.Stderr, os.Stdout = normalErr, normalOut
	out, _ := io.ReadAll(r)
	return strings.TrimSpace(string(out))
}
