/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"fmt"

	"vmcore/classloader"
	"vmcore/frames"
	"vmcore/gfunction"
	"vmcore/globals"
	"vmcore/object"
	"vmcore/opcodes"
	"vmcore/thread"
	"vmcore/trace"
)

// JavaException is a thrown-but-uncaught Java exception propagating out of
// the interpreter: the exception object plus a rendering of its class for
// callers (cmd/vmcore/main.go) that don't want to unpack the object.
type JavaException struct {
	ExceptionClass string
	Message        string
	Obj            *object.Object
}

func (e *JavaException) Error() string {
	if e.Message == "" {
		return e.ExceptionClass
	}
	return fmt.Sprintf("%s: %s", e.ExceptionClass, e.Message)
}

func throwableObject(className, msg string) *object.Object {
	obj, err := object.NewObject(className)
	if err != nil {
		obj = object.MakeEmptyObject()
		name := className
		obj.Klass = &name
	}
	obj.FieldTable["detailMessage"] = &object.Field{Ftype: "Ljava/lang/String;", Fvalue: object.StringObjectFromGoString(msg)}
	return obj
}

func throwf(className, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return &JavaException{ExceptionClass: className, Message: msg, Obj: throwableObject(className, msg)}
}

// invokeMethod resolves and runs className.methodName+descriptor, either as
// a registered native (gfunction.MethodSignatures) or by pushing a new
// frame and running its bytecode to completion. args[0] is the receiver
// for every dispatch kind except static. Returns the method's return value
// (nil for void) or a *JavaException/other error.
func invokeMethod(th *thread.ExecThread, className, methodName, descriptor string, args []interface{}, virtual bool) (interface{}, error) {
	meth, cp, ownerClass, gm, err := resolveMethod(className, methodName, descriptor, virtual)
	if err != nil {
		return nil, throwf("java/lang/NoSuchMethodError", "%s.%s%s", className, methodName, descriptor)
	}

	if gm != nil {
		ret := gm.GFunction(args)
		if errBlk, ok := ret.(*gfunction.GErrBlk); ok {
			return nil, throwf(errBlk.ExceptionType, "%s", errBlk.ErrMsg)
		}
		return ret, nil
	}

	if meth.IsAbstract {
		return nil, throwf("java/lang/AbstractMethodError", "%s.%s%s", ownerClass, methodName, descriptor)
	}

	f := frames.CreateFrame(meth.CodeAttr.MaxLocals, meth.CodeAttr.MaxStack)
	f.ClassName = ownerClass
	f.MethodName = methodName
	f.Descriptor = descriptor
	f.CP = cp
	f.Code = meth.CodeAttr.Code
	f.ExceptionTable = meth.CodeAttr.Exceptions

	for i, a := range args {
		f.Locals[i] = a
	}

	th.Stack.PushFrame(f)
	trace.Trace(fmt.Sprintf("invoking %s.%s%s", ownerClass, methodName, descriptor))
	ret, err := runFrame(th)
	th.Stack.PopFrame()
	return ret, err
}

// runFrame executes bytecode from the thread's current (innermost) frame
// until it returns or throws. A thrown exception is matched against the
// frame's exception table (spec.md §4.I); if no handler matches, the
// exception propagates to the caller by returning it as an error.
func runFrame(th *thread.ExecThread) (interface{}, error) {
	f := th.Stack.CurrentFrame()

	for {
		if f.PC >= len(f.Code) {
			return nil, nil
		}
		in := opcodes.Decode(f.Code, f.PC)
		if globals.GetGlobalRef().TraceInst {
			trace.TraceInst(fmt.Sprintf("%s.%s pc=%d %s", f.ClassName, f.MethodName, f.PC, opcodes.Mnemonic(in.Op)))
		}

		ret, branched, err := execOne(th, f, in)
		if err != nil {
			handlerPC, ok := findHandler(f, in.PC, err)
			if !ok {
				return nil, err
			}
			f.OpStack = f.OpStack[:0]
			f.Push(thrownObject(err))
			f.PC = handlerPC
			continue
		}
		if ret.isReturn {
			return ret.value, nil
		}
		if !branched {
			f.PC += in.Len
		}
	}
}

type execResult struct {
	isReturn bool
	value    interface{}
}

func thrownObject(err error) *object.Object {
	if je, ok := err.(*JavaException); ok && je.Obj != nil {
		return je.Obj
	}
	return throwableObject("java/lang/Throwable", err.Error())
}

// findHandler searches f's exception table for a handler covering pc that
// catches thrown, returning the handler's PC. Catch-type resolution is
// name-based only (no assignability walk up thrown's actual superclass
// chain against CatchType) -- adequate for the direct catches vmcore's
// test programs use; a full assignability check is listed as an open
// question in DESIGN.md.
func findHandler(f *frames.Frame, pc int, thrown error) (int, bool) {
	je, _ := thrown.(*JavaException)
	for _, exc := range f.ExceptionTable {
		if pc < exc.StartPc || pc >= exc.EndPc {
			continue
		}
		if exc.CatchType == 0 {
			return exc.HandlerPc, true // catch-all (finally blocks compile to this)
		}
		if je == nil {
			continue
		}
		catchClass := classloader.GetClassNameFromCPclassref(f.CP, exc.CatchType)
		if catchClass == je.ExceptionClass {
			return exc.HandlerPc, true
		}
	}
	return 0, false
}
