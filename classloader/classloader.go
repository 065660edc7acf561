/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classloader implements spec.md's class-file reader, class path
// index, and class loader: turning a binary class name into a fully
// format-checked, schema'd, method-area-resident Klass.
package classloader

import (
	"sync"

	"vmcore/trace"
	"vmcore/types"
)

// Classloader is one of the three loader identities spec.md §4.C
// describes (bootstrap, extension, application). Delegation always runs
// bootstrap -> extension -> application, parent-first, matching the JVM's
// mandated lookup order.
type Classloader struct {
	Name   string
	Parent *Classloader
	CP     *ClasspathIndex
}

var (
	BootstrapCL *Classloader
	ExtensionCL *Classloader
	AppCL       *Classloader

	initOnce sync.Once
)

// ClinitRunner is set by package jvm during its own init, breaking the
// import cycle that would otherwise exist between "classloader needs to
// run <clinit> bytecode" and "jvm needs to load classes to run it."
var ClinitRunner func(className string) error

// EnsureInitialized runs className's class's <clinit>, per spec.md §4.F's
// class initialization state machine, unless it has already run or is
// already in progress (recursive <clinit> triggering, e.g. a class
// referencing itself, is left to ClinitRunner to detect). A nil
// ClinitRunner degrades to a no-op so classloader package tests can
// exercise the statics store without pulling in package jvm.
func EnsureInitialized(className string) error {
	k := MethAreaFetch(className)
	if k == nil || k.Data == nil {
		return errNotLoaded(className)
	}
	if k.Data.ClInit == types.ClInitRun {
		return nil
	}
	if ClinitRunner == nil {
		return nil
	}
	return ClinitRunner(className)
}

// Init wires up the three loader identities and the bootstrap classpath,
// then registers the array-class singletons. Call once at VM startup
// (cmd/vmcore/main.go does this before interpreting any bytecode).
func Init(classpathRaw string) error {
	var err error
	initOnce.Do(func() {
		InitMethodArea()

		BootstrapCL = &Classloader{Name: "bootstrap"}
		ExtensionCL = &Classloader{Name: "extension", Parent: BootstrapCL}
		AppCL = &Classloader{Name: "application", Parent: ExtensionCL}

		idx, ierr := NewClasspathIndex(classpathRaw)
		if ierr != nil {
			err = ierr
			return
		}
		AppCL.CP = idx
		ExtensionCL.CP = idx
		BootstrapCL.CP = idx

		RegisterArraySingletons()
		trace.Trace("classloader initialized")
	})
	return err
}

// Load resolves name to bytes via cl's classpath index, parses and
// format-checks them, and registers the result in the method area. If
// name is already loaded, Load returns immediately (spec.md §4.C:
// idempotent). It recursively loads the superclass and declared
// interfaces before marking the class usable, so GetSchema can always
// walk a complete chain.
func (cl *Classloader) Load(name string) (*Klass, error) {
	if k := MethAreaFetch(name); k != nil && k.Status == StatusFormatChecked {
		return k, nil
	}

	MethAreaInsert(name, &Klass{Status: StatusInFlight, Loader: cl.Name})

	raw, err := cl.locate(name)
	if err != nil {
		MethAreaInsert(name, &Klass{Status: StatusError, Loader: cl.Name})
		return nil, err
	}

	cd, err := Parse(name, raw)
	if err != nil {
		MethAreaInsert(name, &Klass{Status: StatusError, Loader: cl.Name})
		return nil, err
	}

	if err := FormatCheck(cd); err != nil {
		MethAreaInsert(name, &Klass{Status: StatusError, Loader: cl.Name})
		return nil, err
	}

	if cd.Superclass != "" {
		if _, err := cl.Load(cd.Superclass); err != nil {
			MethAreaInsert(name, &Klass{Status: StatusError, Loader: cl.Name})
			return nil, err
		}
	}
	for _, ifaceIdx := range cd.Interfaces {
		ifaceName := GetClassNameFromCPclassref(&cd.CP, ifaceIdx)
		if ifaceName == "" {
			continue
		}
		if _, err := cl.Load(ifaceName); err != nil {
			MethAreaInsert(name, &Klass{Status: StatusError, Loader: cl.Name})
			return nil, err
		}
	}

	InitStatics(cd)

	k := &Klass{Status: StatusFormatChecked, Loader: cl.Name, Data: cd}
	MethAreaInsert(name, k)
	trace.Trace("loaded class " + name)
	return k, nil
}

// locate delegates to the parent loader first (bootstrap-first
// delegation), falling back to this loader's own classpath index only if
// every ancestor fails to find the class.
func (cl *Classloader) locate(name string) ([]byte, error) {
	if cl.Parent != nil {
		if raw, err := cl.Parent.locate(name); err == nil {
			return raw, nil
		}
	}
	if cl.CP == nil {
		return nil, errClassNotFound(name)
	}
	return cl.CP.Locate(name)
}

// GetCountOfLoadedClasses returns how many classes currently occupy the
// method area, format-checked or not -- used by diagnostics and tests.
func GetCountOfLoadedClasses() int {
	methAreaMu.RLock()
	defer methAreaMu.RUnlock()
	return len(Classes)
}
