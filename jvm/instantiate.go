/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"vmcore/classloader"
	"vmcore/log"
	"vmcore/object"
)

// instantiateClass loads classname (if not already loaded) via the
// application classloader and allocates a new instance, default-valued
// per its schema. It does not run a constructor -- that is a separate
// invokespecial of <init>, the same two-step split spec.md §4.D
// describes.
func instantiateClass(classname string) (*object.Object, error) {
	if !classloader.IsLoaded(classname) {
		_ = log.Log("Loading class: "+classname, log.FINE)
		if _, err := classloader.AppCL.Load(classname); err != nil {
			_ = log.Log("Error loading class: "+classname+": "+err.Error(), log.SEVERE)
			return nil, err
		}
	}

	if err := classloader.EnsureInitialized(classname); err != nil {
		return nil, err
	}

	return object.NewObject(classname)
}
