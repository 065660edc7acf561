/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"vmcore/classloader"
	"vmcore/log"
	"vmcore/thread"
	"vmcore/types"
)

// runInitializationBlock runs className's <clinit>, first running every
// not-yet-initialized superclass's <clinit> (superclass-first, per spec.md
// §4.F), then className's own. It is wired into
// classloader.ClinitRunner so classloader.EnsureInitialized can trigger
// bytecode execution without classloader importing jvm. Each call gets its
// own throwaway thread; <clinit> code never blocks on another thread's
// monitor in any program vmcore is expected to run, so a dedicated
// interpreter thread per initializer is simpler than threading the
// caller's thread through classloader's API.
func runInitializationBlock(className string) error {
	chain, err := superclassChainNeedingInit(className)
	if err != nil {
		return err
	}

	th := thread.New("<clinit>")
	for _, name := range chain {
		if err := runOneClinit(th, name); err != nil {
			return err
		}
	}
	return nil
}

// superclassChainNeedingInit returns className's not-yet-run superclasses
// (excluding java/lang/Object, which has no <clinit> of interest) followed
// by className itself, superclass-first.
func superclassChainNeedingInit(className string) ([]string, error) {
	var chain []string
	cur := className
	for cur != "" && cur != "java/lang/Object" {
		k := classloader.MethAreaFetch(cur)
		if k == nil || k.Data == nil {
			return nil, errNotLoaded(cur)
		}
		if k.Data.ClInit == types.ClInitNotRun {
			chain = append([]string{cur}, chain...)
		} else {
			break // an ancestor already initialized implies everything above it is too
		}
		cur = k.Data.Superclass
	}
	return chain, nil
}

func runOneClinit(th *thread.ExecThread, className string) error {
	k := classloader.MethAreaFetch(className)
	if k == nil || k.Data == nil {
		return errNotLoaded(className)
	}
	if k.Data.ClInit != types.ClInitNotRun {
		return nil
	}
	k.Data.ClInit = types.ClInitInProgress

	_, err := invokeMethod(th, className, "<clinit>", "()V", nil, false)
	if err != nil {
		if je, ok := err.(*JavaException); ok {
			if je.ExceptionClass == "java/lang/NoSuchMethodError" {
				k.Data.ClInit = types.ClInitRun // no <clinit> -- most classes don't have one
				return nil
			}
			_ = log.Log("uncaught exception in "+className+".<clinit>: "+je.Error(), log.SEVERE)
		}
		return err
	}
	k.Data.ClInit = types.ClInitRun
	return nil
}
