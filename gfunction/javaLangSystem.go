/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"time"

	"vmcore/excNames"
	"vmcore/object"
	"vmcore/shutdown"
)

// Load_Lang_System registers the java/lang/System natives a running
// program needs before it can do anything observable: exit, timing, and
// array copying. System.out/System.err (PrintStream fields) are not
// modeled as real objects here; println-style output goes through
// java/io/PrintStream natives instead (see javaIoInputStreamReader.go's
// sibling output-side natives).
func Load_Lang_System() {
	MethodSignatures["java/lang/System.registerNatives()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/System.currentTimeMillis()J"] =
		GMeth{ParamSlots: 0, GFunction: systemCurrentTimeMillis}

	MethodSignatures["java/lang/System.nanoTime()J"] =
		GMeth{ParamSlots: 0, GFunction: systemNanoTime}

	MethodSignatures["java/lang/System.exit(I)V"] =
		GMeth{ParamSlots: 1, GFunction: systemExit}

	MethodSignatures["java/lang/System.identityHashCode(Ljava/lang/Object;)I"] =
		GMeth{ParamSlots: 1, GFunction: systemIdentityHashCode}

	MethodSignatures["java/lang/System.arraycopy(Ljava/lang/Object;ILjava/lang/Object;II)V"] =
		GMeth{ParamSlots: 5, GFunction: systemArraycopy}
}

func systemCurrentTimeMillis(params []interface{}) interface{} {
	return time.Now().UnixMilli()
}

func systemNanoTime(params []interface{}) interface{} {
	return time.Now().UnixNano()
}

// systemExit terminates the whole process, per java/lang/System.exit's
// contract -- it does not return to the caller's frame.
func systemExit(params []interface{}) interface{} {
	code, _ := params[0].(int32)
	shutdown.Exit(shutdown.ExitCode(code))
	return nil
}

func systemIdentityHashCode(params []interface{}) interface{} {
	obj, _ := params[0].(*object.Object)
	if obj == nil {
		return int32(0)
	}
	return obj.Mark.Hash
}

// systemArraycopy copies length elements from src[srcPos:] to
// dst[dstPos:], the native every Collections/Arrays bulk-copy helper in
// the standard library ultimately bottoms out on.
func systemArraycopy(params []interface{}) interface{} {
	src, _ := params[0].(*object.Array)
	srcPos, _ := params[1].(int32)
	dst, _ := params[2].(*object.Array)
	dstPos, _ := params[3].(int32)
	length, _ := params[4].(int32)

	if src == nil || dst == nil {
		return getGErrBlk(excNames.NullPointerException, "arraycopy on null array")
	}
	if srcPos < 0 || dstPos < 0 || length < 0 ||
		int(srcPos+length) > src.Len() || int(dstPos+length) > dst.Len() {
		return getGErrBlk(excNames.ArrayIndexOutOfBoundsException, "arraycopy range out of bounds")
	}
	for i := int32(0); i < length; i++ {
		dst.Set(int(dstPos+i), src.Get(int(srcPos+i)))
	}
	return nil
}
