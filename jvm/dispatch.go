/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"vmcore/classloader"
	"vmcore/gfunction"
)

// resolveMethod finds the method to run for an invoke* call, honoring
// spec.md §4.I's four dispatch kinds:
//   - static:   exact class, no receiver
//   - special:  exact class (constructors, private methods, super calls)
//   - virtual:  receiver's runtime class, walking up to the declared class
//   - interface: same walk as virtual, since vmcore does not maintain a
//     separate interface method table
//
// A native override registered in gfunction.MethodSignatures always wins
// over a loaded class's own bytecode, mirroring the teacher's
// java*.go-file native bridge taking priority so standard-library
// methods that touch the OS (threads, streams, hashing) never need a
// bytecode implementation at all.
func resolveMethod(className, methodName, descriptor string, virtual bool) (*classloader.Method, *classloader.CPool, string, *gfunction.GMeth, error) {
	sig := className + "." + methodName + descriptor
	if gm, ok := gfunction.MethodSignatures[sig]; ok {
		return nil, nil, className, &gm, nil
	}

	cur := className
	for cur != "" {
		k := classloader.MethAreaFetch(cur)
		if k == nil || k.Data == nil {
			return nil, nil, "", nil, errNotLoaded(cur)
		}
		if m, ok := k.Data.MethodTable[methodName+descriptor]; ok {
			if m.IsNative {
				if gm, ok := gfunction.MethodSignatures[cur+"."+methodName+descriptor]; ok {
					return nil, nil, cur, &gm, nil
				}
			}
			return m, &k.Data.CP, cur, nil, nil
		}
		if !virtual {
			break // static/special dispatch never walks past the named class
		}
		cur = k.Data.Superclass
	}
	return nil, nil, "", nil, errNoSuchMethod(className, methodName, descriptor)
}
