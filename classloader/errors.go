/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"

	"github.com/pkg/errors"
)

// ClassFormatError wraps any structural defect found while parsing or
// format-checking a class file, identifying the offending class and
// wrapping the originating error with a stack trace via pkg/errors (the
// same wrapping convention jvm/errors_test.go exercises).
type ClassFormatError struct {
	ClassName string
	cause     error
}

func (e *ClassFormatError) Error() string {
	return fmt.Sprintf("class format error in %s: %v", e.ClassName, e.cause)
}

func (e *ClassFormatError) Unwrap() error { return e.cause }

func newFormatError(className, format string, args ...interface{}) error {
	return errors.WithStack(&ClassFormatError{ClassName: className, cause: fmt.Errorf(format, args...)})
}

func errNotLoaded(className string) error {
	return errors.Errorf("class not loaded: %s", className)
}

func errNoSuchMethod(className, name, desc string) error {
	return errors.Errorf("no such method: %s.%s%s", className, name, desc)
}

func errClassNotFound(className string) error {
	return errors.Errorf("java.lang.ClassNotFoundException: %s", className)
}
