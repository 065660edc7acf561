/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmcore/classloader"
	"vmcore/gfunction"
	"vmcore/globals"
	"vmcore/object"
	"vmcore/opcodes"
	"vmcore/thread"
	"vmcore/types"
)

// registerMethod installs className with a single bytecode method in the
// method area, already format-checked/schema'd, so invokeMethod can find it
// without a real class file on disk.
func registerMethod(t *testing.T, className, superclass, nameAndDesc string, m *classloader.Method) {
	t.Helper()
	k := classloader.MethAreaFetch(className)
	if k == nil {
		classloader.MethAreaInsert(className, &classloader.Klass{
			Status: classloader.StatusFormatChecked,
			Data: &classloader.ClData{
				Name:        className,
				Superclass:  superclass,
				MethodTable: map[string]*classloader.Method{},
				ClInit:      types.ClInitRun,
			},
		})
		k = classloader.MethAreaFetch(className)
	}
	k.Data.MethodTable[nameAndDesc] = m
	classloader.MethAreaInsert(className, k)
}

func freshMethodArea() {
	classloader.InitMethodArea()
}

// addTwoInts: iload_0, iload_1, iadd, ireturn.
func TestInvokeMethodRunsSimpleArithmetic(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Adder", "java/lang/Object", "add(II)I", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxLocals: 2,
			MaxStack:  2,
			Code: []byte{
				opcodes.ILOAD_0,
				opcodes.ILOAD_1,
				opcodes.IADD,
				opcodes.IRETURN,
			},
		},
	})

	th := thread.New("test")
	ret, err := invokeMethod(th, "test/Adder", "add", "(II)I", []interface{}{int32(2), int32(3)}, false)
	assert.NoError(t, err)
	assert.Equal(t, int32(5), ret)
}

// divByZero: iload_0, iconst_0, idiv, ireturn -- should throw ArithmeticException.
func TestInvokeMethodPropagatesArithmeticException(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Div", "java/lang/Object", "bad(I)I", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxLocals: 1,
			MaxStack:  2,
			Code: []byte{
				opcodes.ILOAD_0,
				opcodes.ICONST_0,
				opcodes.IDIV,
				opcodes.IRETURN,
			},
		},
	})

	th := thread.New("test")
	_, err := invokeMethod(th, "test/Div", "bad", "(I)I", []interface{}{int32(7)}, false)
	assert.Error(t, err)
	je, ok := err.(*JavaException)
	assert.True(t, ok)
	assert.Equal(t, "java/lang/ArithmeticException", je.ExceptionClass)
}

// caught: a method whose exception table catches its own ArithmeticException
// and returns -1 instead of propagating it.
func TestRunFrameDispatchesToExceptionHandler(t *testing.T) {
	freshMethodArea()
	cp := classloader.CPool{
		CpIndex: []classloader.CpEntry{
			{}, // dummy
			{Type: classloader.UTF8, Slot: 0},
			{Type: classloader.ClassRef, Slot: 0},
		},
		Utf8Refs:   []string{"java/lang/ArithmeticException"},
		ClassRefs:  []uint16{1},
	}
	code := []byte{
		opcodes.ICONST_1,
		opcodes.ICONST_0,
		opcodes.IDIV, // throws at pc=2
		opcodes.IRETURN,
		opcodes.ICONST_M1, // handler at pc=4: pop thrown obj implicitly unused, push -1
		opcodes.IRETURN,
	}
	registerMethod(t, "test/Catcher", "java/lang/Object", "run()I", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxLocals: 0,
			MaxStack:  2,
			Code:      code,
			Exceptions: []classloader.CodeException{
				{StartPc: 0, EndPc: 3, HandlerPc: 4, CatchType: 2},
			},
		},
	})
	k := classloader.MethAreaFetch("test/Catcher")
	k.Data.CP = cp
	classloader.MethAreaInsert("test/Catcher", k)

	th := thread.New("test")
	ret, err := invokeMethod(th, "test/Catcher", "run", "()I", nil, false)
	assert.NoError(t, err)
	assert.Equal(t, int32(-1), ret)
}

func TestInvokeMethodDispatchesToNativeOverride(t *testing.T) {
	freshMethodArea()
	prevSig, hadPrev := gfunction.MethodSignatures["test/Native.hello()Ljava/lang/String;"]
	gfunction.MethodSignatures["test/Native.hello()Ljava/lang/String;"] = gfunction.GMeth{
		ParamSlots: 0,
		GFunction: func(params []interface{}) interface{} {
			return object.StringObjectFromGoString("hi")
		},
	}
	defer func() {
		if hadPrev {
			gfunction.MethodSignatures["test/Native.hello()Ljava/lang/String;"] = prevSig
		} else {
			delete(gfunction.MethodSignatures, "test/Native.hello()Ljava/lang/String;")
		}
	}()

	th := thread.New("test")
	ret, err := invokeMethod(th, "test/Native", "hello", "()Ljava/lang/String;", nil, false)
	assert.NoError(t, err)
	so, ok := ret.(*object.Object)
	assert.True(t, ok)
	assert.Equal(t, "hi", object.GoStringFromStringObject(so))
}

func TestInvokeMethodUnknownMethodThrowsNoSuchMethodError(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Empty", "java/lang/Object", "exists()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{Code: []byte{opcodes.RETURN}},
	})

	th := thread.New("test")
	_, err := invokeMethod(th, "test/Empty", "missing", "()V", nil, false)
	assert.Error(t, err)
	je, ok := err.(*JavaException)
	assert.True(t, ok)
	assert.Equal(t, "java/lang/NoSuchMethodError", je.ExceptionClass)
}

func TestVirtualDispatchWalksToSuperclassMethod(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Base", "java/lang/Object", "greet()I", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxStack: 1,
			Code:     []byte{opcodes.ICONST_1, opcodes.IRETURN},
		},
	})
	registerMethod(t, "test/Sub", "test/Base", "unrelated()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{Code: []byte{opcodes.RETURN}},
	})

	th := thread.New("test")
	ret, err := invokeMethod(th, "test/Sub", "greet", "()I", nil, true)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), ret)
}

// lockableCP resolves CP index 2 to a CONSTANT_Class_info naming
// "test/Lockable", for NEW's operand.
func lockableCP() classloader.CPool {
	return classloader.CPool{
		CpIndex: []classloader.CpEntry{
			{}, // dummy
			{Type: classloader.UTF8, Slot: 0},
			{Type: classloader.ClassRef, Slot: 0},
		},
		Utf8Refs:  []string{"test/Lockable"},
		ClassRefs: []uint16{1},
	}
}

// unlock: new, monitorexit, return -- monitorexit on an object the current
// thread never entered must throw IllegalMonitorStateException rather than
// panic.
func TestMonitorExitWithoutEnterThrowsIllegalMonitorState(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Lockable", "java/lang/Object", "<init>()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{Code: []byte{opcodes.RETURN}},
	})
	registerMethod(t, "test/Unlocker", "java/lang/Object", "unlock()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxStack: 1,
			Code: []byte{
				opcodes.NEW, 0x00, 0x02,
				opcodes.MONITOREXIT,
				opcodes.RETURN,
			},
		},
	})
	k := classloader.MethAreaFetch("test/Unlocker")
	k.Data.CP = lockableCP()
	classloader.MethAreaInsert("test/Unlocker", k)

	th := thread.New("test")
	_, err := invokeMethod(th, "test/Unlocker", "unlock", "()V", nil, false)
	assert.Error(t, err)
	je, ok := err.(*JavaException)
	assert.True(t, ok)
	assert.Equal(t, "java/lang/IllegalMonitorStateException", je.ExceptionClass)
}

// lock: new, dup, monitorenter, monitorexit, return -- a balanced
// enter/exit pair on the owning thread must succeed.
func TestMonitorEnterThenExitByOwnerSucceeds(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Lockable", "java/lang/Object", "<init>()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{Code: []byte{opcodes.RETURN}},
	})
	registerMethod(t, "test/Locker", "java/lang/Object", "lock()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxStack: 2,
			Code: []byte{
				opcodes.NEW, 0x00, 0x02,
				opcodes.DUP,
				opcodes.MONITORENTER,
				opcodes.MONITOREXIT,
				opcodes.RETURN,
			},
		},
	})
	k := classloader.MethAreaFetch("test/Locker")
	k.Data.CP = lockableCP()
	classloader.MethAreaInsert("test/Locker", k)

	th := thread.New("test")
	_, err := invokeMethod(th, "test/Locker", "lock", "()V", nil, false)
	assert.NoError(t, err)
}

// main([Ljava/lang/String;)V with MaxLocals 0 reading local slot 0 is a
// malformed method: it must panic inside the interpreter rather than throw
// a JavaException, giving StartMainThread's recover() something real to
// catch.
func TestStartMainThreadRecoversInterpreterPanic(t *testing.T) {
	freshMethodArea()
	globals.InitGlobals("test")
	registerMethod(t, "test/Panicker", "java/lang/Object", "main([Ljava/lang/String;)V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxLocals: 0,
			MaxStack:  1,
			Code: []byte{
				opcodes.ILOAD_0,
				opcodes.RETURN,
			},
		},
	})

	err := StartMainThread("test/Panicker", nil)
	assert.Error(t, err)
	assert.True(t, globals.GetGlobalRef().PanicCauseShown)
	assert.NotEmpty(t, globals.GetGlobalRef().ErrorGoStack)
}

func TestStaticDispatchDoesNotWalkSuperclass(t *testing.T) {
	freshMethodArea()
	registerMethod(t, "test/Base2", "java/lang/Object", "greet()I", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{
			MaxStack: 1,
			Code:     []byte{opcodes.ICONST_1, opcodes.IRETURN},
		},
	})
	registerMethod(t, "test/Sub2", "test/Base2", "unrelated()V", &classloader.Method{
		CodeAttr: classloader.CodeAttrib{Code: []byte{opcodes.RETURN}},
	})

	th := thread.New("test")
	_, err := invokeMethod(th, "test/Sub2", "greet", "()I", nil, false)
	assert.Error(t, err)
}
