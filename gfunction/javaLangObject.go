/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"vmcore/object"
)

// Load_Lang_Object registers the java/lang/Object natives every object
// ultimately inherits: the constructor, registerNatives, and the identity
// operations (hashCode, getClass, wait/notify) that have no bytecode
// equivalent because they reach into the object header or the monitor.
func Load_Lang_Object() {
	MethodSignatures["java/lang/Object.<init>()V"] =
		GMeth{ParamSlots: 1, GFunction: justReturn}

	MethodSignatures["java/lang/Object.registerNatives()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/Object.hashCode()I"] =
		GMeth{ParamSlots: 1, GFunction: objectHashCode}

	MethodSignatures["java/lang/Object.getClass()Ljava/lang/Class;"] =
		GMeth{ParamSlots: 1, GFunction: objectGetClassName}

	MethodSignatures["java/lang/Object.toString()Ljava/lang/String;"] =
		GMeth{ParamSlots: 1, GFunction: objectToString}

	MethodSignatures["java/lang/Object.notify()V"] =
		GMeth{ParamSlots: 1, GFunction: objectNotify}
	MethodSignatures["java/lang/Object.notifyAll()V"] =
		GMeth{ParamSlots: 1, GFunction: objectNotify}
}

func objectHashCode(params []interface{}) interface{} {
	this, _ := params[0].(*object.Object)
	if this == nil {
		return int32(0)
	}
	return this.Mark.Hash
}

// objectGetClassName returns the class name as a String rather than a real
// java/lang/Class mirror object: vmcore does not build a Class heap object
// for every loaded class, so callers that only need the name (the common
// case for getClass().getName()) still get a usable answer.
func objectGetClassName(params []interface{}) interface{} {
	this, _ := params[0].(*object.Object)
	return object.StringObjectFromGoString(this.ClassName())
}

func objectToString(params []interface{}) interface{} {
	this, _ := params[0].(*object.Object)
	return object.StringObjectFromGoString(this.ToString())
}

// objectNotify is a no-op: vmcore's Monitor (object/monitor.go) implements
// mutual exclusion for synchronized blocks but not the wait/notify signal
// queue, so there is nothing to wake.
func objectNotify(params []interface{}) interface{} {
	return nil
}
