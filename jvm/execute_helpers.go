/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"vmcore/classloader"
	"vmcore/frames"
	"vmcore/object"
	"vmcore/opcodes"
	"vmcore/thread"
	"vmcore/types"
)

func execLdc(f *frames.Frame, in opcodes.Instruction) {
	entry := classloader.FetchCPentry(f.CP, int(in.Index))
	switch entry.RetType {
	case classloader.IsInt64:
		if entry.EntryType == classloader.LongConst {
			f.Push(entry.IntVal)
		} else {
			f.Push(int32(entry.IntVal))
		}
	case classloader.IsFloat64:
		if entry.EntryType == classloader.DoubleConst {
			f.Push(entry.FloatVal)
		} else {
			f.Push(float32(entry.FloatVal))
		}
	case classloader.IsStringAddr:
		if entry.EntryType == classloader.StringConst {
			f.Push(object.StringObjectFromGoString(*entry.StringVal))
		} else {
			f.Push(*entry.StringVal) // class/utf8 literal: push the name itself
		}
	default:
		f.Push(nil)
	}
}

func execArrayLoad(f *frames.Frame, op byte) error {
	idx := int(f.Pop().(int32))
	arr, _ := f.Pop().(*object.Array)
	if arr == nil {
		return throwf("java/lang/NullPointerException", "array load on null")
	}
	if idx < 0 || idx >= arr.Len() {
		return throwf("java/lang/ArrayIndexOutOfBoundsException", "index %d out of bounds for length %d", idx, arr.Len())
	}
	v := arr.Get(idx)
	switch op {
	case opcodes.BALOAD:
		f.Push(int32(v.(types.JavaByte)))
	case opcodes.CALOAD:
		f.Push(int32(v.(uint16)))
	case opcodes.SALOAD:
		f.Push(int32(v.(int16)))
	case opcodes.IALOAD:
		f.Push(v.(int32))
	default:
		f.Push(v)
	}
	return nil
}

func execArrayStore(f *frames.Frame, op byte) error {
	value := f.Pop()
	idx := int(f.Pop().(int32))
	arr, _ := f.Pop().(*object.Array)
	if arr == nil {
		return throwf("java/lang/NullPointerException", "array store on null")
	}
	if idx < 0 || idx >= arr.Len() {
		return throwf("java/lang/ArrayIndexOutOfBoundsException", "index %d out of bounds for length %d", idx, arr.Len())
	}
	switch op {
	case opcodes.BASTORE:
		arr.Set(idx, types.JavaByte(value.(int32)))
	case opcodes.CASTORE:
		arr.Set(idx, uint16(value.(int32)))
	case opcodes.SASTORE:
		arr.Set(idx, int16(value.(int32)))
	default:
		arr.Set(idx, value)
	}
	return nil
}

func execIntBinary(f *frames.Frame, op byte) error {
	b, a := f.Pop().(int32), f.Pop().(int32)
	var r int32
	switch op {
	case opcodes.IADD:
		r = a + b
	case opcodes.ISUB:
		r = a - b
	case opcodes.IMUL:
		r = a * b
	case opcodes.IDIV:
		if b == 0 {
			return throwf("java/lang/ArithmeticException", "/ by zero")
		}
		r = a / b
	case opcodes.IREM:
		if b == 0 {
			return throwf("java/lang/ArithmeticException", "/ by zero")
		}
		r = a % b
	case opcodes.ISHL:
		r = a << (uint32(b) & 0x1F)
	case opcodes.ISHR:
		r = a >> (uint32(b) & 0x1F)
	case opcodes.IUSHR:
		r = int32(uint32(a) >> (uint32(b) & 0x1F))
	case opcodes.IAND:
		r = a & b
	case opcodes.IOR:
		r = a | b
	case opcodes.IXOR:
		r = a ^ b
	}
	f.Push(r)
	return nil
}

func execLongBinary(f *frames.Frame, op byte) error {
	b, a := f.Pop().(int64), f.Pop().(int64)
	var r int64
	switch op {
	case opcodes.LADD:
		r = a + b
	case opcodes.LSUB:
		r = a - b
	case opcodes.LMUL:
		r = a * b
	case opcodes.LDIV:
		if b == 0 {
			return throwf("java/lang/ArithmeticException", "/ by zero")
		}
		r = a / b
	case opcodes.LREM:
		if b == 0 {
			return throwf("java/lang/ArithmeticException", "/ by zero")
		}
		r = a % b
	case opcodes.LSHL:
		r = a << (uint64(b) & 0x3F)
	case opcodes.LSHR:
		r = a >> (uint64(b) & 0x3F)
	case opcodes.LUSHR:
		r = int64(uint64(a) >> (uint64(b) & 0x3F))
	case opcodes.LAND:
		r = a & b
	case opcodes.LOR:
		r = a | b
	case opcodes.LXOR:
		r = a ^ b
	}
	f.Push(r)
	return nil
}

func execFloatBinary(f *frames.Frame, op byte) {
	b, a := f.Pop().(float32), f.Pop().(float32)
	var r float32
	switch op {
	case opcodes.FADD:
		r = a + b
	case opcodes.FSUB:
		r = a - b
	case opcodes.FMUL:
		r = a * b
	case opcodes.FDIV:
		r = a / b
	case opcodes.FREM:
		r = float32(int(a) % int(b))
		if b != 0 {
			r = a - float32(int32(a/b))*b
		}
	}
	f.Push(r)
}

func execDoubleBinary(f *frames.Frame, op byte) {
	b, a := f.Pop().(float64), f.Pop().(float64)
	var r float64
	switch op {
	case opcodes.DADD:
		r = a + b
	case opcodes.DSUB:
		r = a - b
	case opcodes.DMUL:
		r = a * b
	case opcodes.DDIV:
		r = a / b
	case opcodes.DREM:
		if b != 0 {
			r = a - float64(int64(a/b))*b
		}
	}
	f.Push(r)
}

func execGetStatic(f *frames.Frame, in opcodes.Instruction) error {
	className, fieldName, _ := classloader.GetFieldRefInfo(f.CP, int(in.Index))
	v, err := classloader.GetStatic(className, fieldName)
	if err != nil {
		return throwf("java/lang/NoSuchFieldError", "%s.%s", className, fieldName)
	}
	f.Push(v)
	return nil
}

func execPutStatic(f *frames.Frame, in opcodes.Instruction) error {
	className, fieldName, _ := classloader.GetFieldRefInfo(f.CP, int(in.Index))
	v := f.Pop()
	if err := classloader.PutStatic(className, fieldName, v); err != nil {
		return throwf("java/lang/NoSuchFieldError", "%s.%s", className, fieldName)
	}
	return nil
}

func execGetField(f *frames.Frame, in opcodes.Instruction) error {
	_, fieldName, _ := classloader.GetFieldRefInfo(f.CP, int(in.Index))
	obj, _ := f.Pop().(*object.Object)
	if obj == nil {
		return throwf("java/lang/NullPointerException", "getfield on null")
	}
	fld, ok := obj.FieldTable[fieldName]
	if !ok {
		return throwf("java/lang/NoSuchFieldError", "%s", fieldName)
	}
	f.Push(fld.Fvalue)
	return nil
}

func execPutField(f *frames.Frame, in opcodes.Instruction) error {
	_, fieldName, fieldDesc := classloader.GetFieldRefInfo(f.CP, int(in.Index))
	v := f.Pop()
	obj, _ := f.Pop().(*object.Object)
	if obj == nil {
		return throwf("java/lang/NullPointerException", "putfield on null")
	}
	obj.FieldTable[fieldName] = &object.Field{Ftype: fieldDesc, Fvalue: v}
	return nil
}

// execInvoke handles invokevirtual/invokeinterface/invokespecial/invokestatic.
// The receiver (for non-static dispatch) is popped along with its
// descriptor's declared argument count, then invokeMethod resolves the
// concrete target: virtual/interface re-dispatch on the receiver's own
// runtime class, special/static use the compile-time target class
// unchanged.
func execInvoke(th *thread.ExecThread, f *frames.Frame, in opcodes.Instruction, virtual bool) (execResult, bool, error) {
	className, methodName, descriptor := classloader.GetMethInfoFromCPmethref(f.CP, int(in.Index))
	nargs := countArgSlots(descriptor)

	isStatic := in.Op == opcodes.INVOKESTATIC
	args := make([]interface{}, nargs)
	for i := nargs - 1; i >= 0; i-- {
		args[i] = f.Pop()
	}
	var receiver *object.Object
	if !isStatic {
		receiver, _ = f.Pop().(*object.Object)
		if receiver == nil {
			return execResult{}, false, throwf("java/lang/NullPointerException", "invoke on null receiver")
		}
		args = append([]interface{}{receiver}, args...)
	}

	target := className
	if virtual && receiver != nil {
		target = receiver.ClassName()
	}

	ret, err := invokeMethod(th, target, methodName, descriptor, args, virtual)
	if err != nil {
		return execResult{}, false, err
	}
	if returnType(descriptor) != "V" {
		f.Push(ret)
	}
	return execResult{}, false, nil
}

// execInvokeDynamic is a stub: bootstrap-method-driven call-site linkage
// (spec.md §4.J) requires running the bootstrap method itself, which in
// turn requires a java.lang.invoke.MethodHandles.Lookup implementation
// this core does not carry. Recorded as an open question in DESIGN.md.
func execInvokeDynamic(th *thread.ExecThread, f *frames.Frame, in opcodes.Instruction) error {
	return throwf("java/lang/UnsupportedOperationException", "invokedynamic not supported")
}

// execMultiANewArray allocates only the outermost dimension: object.Array's
// reference-kind element slice holds *object.Object, not *object.Array, so
// an array-of-arrays can't be represented without boxing arrays as
// objects first. Inner dimensions are left nil, to be filled in by
// explicit anewarray/newarray calls -- recorded as an open question in
// DESIGN.md rather than worked around with an unsound representation.
func execMultiANewArray(f *frames.Frame, in opcodes.Instruction) error {
	dims := int(in.IntOperand2)
	sizes := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		sizes[i] = f.Pop().(int32)
	}
	f.Push(object.NewArray(types.RefPrefix, int(sizes[0])))
	return nil
}

func execCastCheck(f *frames.Frame, in opcodes.Instruction, op byte) error {
	className := classloader.GetClassNameFromCPclassref(f.CP, in.Index)
	v := f.Peek()
	obj, isObj := v.(*object.Object)

	matches := v == nil || (isObj && classAssignable(obj.ClassName(), className))

	if op == opcodes.INSTANCEOF {
		f.Pop()
		if v == nil {
			f.Push(int32(0))
		} else if matches {
			f.Push(int32(1))
		} else {
			f.Push(int32(0))
		}
		return nil
	}
	// CHECKCAST
	if v != nil && !matches {
		return throwf("java/lang/ClassCastException", "%s cannot be cast to %s", obj.ClassName(), className)
	}
	return nil
}

// classAssignable reports whether from is className or a (transitive)
// subclass of it, walking the method area's superclass chain. Interface
// assignability is not checked (vmcore does not track implemented
// interfaces past class-loading), a known simplification noted in
// DESIGN.md.
func classAssignable(from, to string) bool {
	if from == to {
		return true
	}
	cur := from
	for cur != "" {
		k := classloader.MethAreaFetch(cur)
		if k == nil || k.Data == nil {
			return false
		}
		if k.Data.Superclass == to {
			return true
		}
		cur = k.Data.Superclass
	}
	return false
}

// countArgSlots counts the operand-stack slots a descriptor's argument
// list occupies (category-2 types count twice), per JVM spec §4.3.3.
func countArgSlots(descriptor string) int {
	args := stripArgs(descriptor)
	n := 0
	i := 0
	for i < len(args) {
		switch args[i] {
		case 'J', 'D':
			n++
			i++
		case 'L':
			for args[i] != ';' {
				i++
			}
			i++
			n++
		case '[':
			for args[i] == '[' {
				i++
			}
			if args[i] == 'L' {
				for args[i] != ';' {
					i++
				}
			}
			i++
			n++
		default:
			i++
			n++
		}
	}
	return n
}

// stripArgs returns the substring between a method descriptor's
// parentheses, "(...)" -> "...".
func stripArgs(descriptor string) string {
	end := 0
	for i, c := range descriptor {
		if c == ')' {
			end = i
			break
		}
	}
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return ""
	}
	return descriptor[1:end]
}

func returnType(descriptor string) string {
	for i, c := range descriptor {
		if c == ')' {
			return descriptor[i+1:]
		}
	}
	return "V"
}
