/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync"

	"vmcore/types"
)

// Static is one entry of a class's static-field store: a slot surviving
// for the process lifetime, keyed by field name within its owning class.
type Static struct {
	Descriptor string
	Value      interface{}
	Final      bool
}

var (
	staticsMu sync.RWMutex
	// statics maps "className.fieldName" -> *Static. A flat global map
	// (rather than one per ClData) mirrors the teacher's single
	// process-wide statics table and keeps GetStatic/PutStatic lock-free
	// of the method area's own mutex.
	statics = make(map[string]*Static)
)

func staticKey(className, fieldName string) string { return className + "." + fieldName }

// InitStatics walks cd's own declared static fields (not inherited ones --
// each class keeps its own copy) and installs default values, honoring any
// ConstantValue attribute. Called once, right before a class's <clinit> is
// run (spec.md §4.F).
func InitStatics(cd *ClData) {
	staticsMu.Lock()
	defer staticsMu.Unlock()
	for _, f := range cd.Fields {
		if !f.IsStatic {
			continue
		}
		name := FetchUTF8stringFromCPEntryNumber(&cd.CP, int(f.Name))
		desc := FetchUTF8stringFromCPEntryNumber(&cd.CP, int(f.Desc))
		key := staticKey(cd.Name, name)
		if _, exists := statics[key]; exists {
			continue
		}
		val := f.ConstValue
		if val == nil {
			val = types.DefaultValueForDescriptor(desc)
		}
		statics[key] = &Static{
			Descriptor: desc,
			Value:      val,
			Final:      f.AccessFlags&accFinal != 0,
		}
	}
}

// GetStatic returns the current value of className.fieldName, triggering
// <clinit> first if the class hasn't finished initializing (the
// first-touch trigger spec.md §4.F requires for getstatic/putstatic and
// for a static method invocation).
func GetStatic(className, fieldName string) (interface{}, error) {
	if err := EnsureInitialized(className); err != nil {
		return nil, err
	}
	staticsMu.RLock()
	defer staticsMu.RUnlock()
	s, ok := statics[staticKey(className, fieldName)]
	if !ok {
		return nil, errNoSuchMethod(className, fieldName, "<static-field>")
	}
	return s.Value, nil
}

// PutStatic stores value into className.fieldName after triggering
// <clinit> if necessary.
func PutStatic(className, fieldName string, value interface{}) error {
	if err := EnsureInitialized(className); err != nil {
		return err
	}
	staticsMu.Lock()
	defer staticsMu.Unlock()
	s, ok := statics[staticKey(className, fieldName)]
	if !ok {
		return errNoSuchMethod(className, fieldName, "<static-field>")
	}
	s.Value = value
	return nil
}

// ResetStatics clears the statics table; used by tests.
func ResetStatics() {
	staticsMu.Lock()
	defer staticsMu.Unlock()
	statics = make(map[string]*Static)
}
