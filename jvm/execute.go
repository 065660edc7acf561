/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"math"

	"vmcore/classloader"
	"vmcore/frames"
	"vmcore/object"
	"vmcore/opcodes"
	"vmcore/thread"
	"vmcore/types"
)

// execOne runs a single decoded instruction against f, returning whether
// the method returned (and its value), whether PC was already advanced by
// a taken branch (so runFrame's own f.PC += in.Len must be skipped), and
// an error if the instruction threw.
func execOne(th *thread.ExecThread, f *frames.Frame, in opcodes.Instruction) (execResult, bool, error) {
	op := in.Op
	switch op {
	case opcodes.NOP:
		// no-op

	case opcodes.ACONST_NULL:
		f.Push(nil)
	case opcodes.ICONST_M1, opcodes.ICONST_0, opcodes.ICONST_1, opcodes.ICONST_2, opcodes.ICONST_3, opcodes.ICONST_4, opcodes.ICONST_5:
		f.Push(in.IntOperand)
	case opcodes.LCONST_0:
		f.Push(int64(0))
	case opcodes.LCONST_1:
		f.Push(int64(1))
	case opcodes.FCONST_0:
		f.Push(float32(0))
	case opcodes.FCONST_1:
		f.Push(float32(1))
	case opcodes.FCONST_2:
		f.Push(float32(2))
	case opcodes.DCONST_0:
		f.Push(float64(0))
	case opcodes.DCONST_1:
		f.Push(float64(1))
	case opcodes.BIPUSH, opcodes.SIPUSH:
		f.Push(in.IntOperand)

	case opcodes.LDC, opcodes.LDC_W, opcodes.LDC2_W:
		execLdc(f, in)

	case opcodes.ILOAD, opcodes.FLOAD, opcodes.ALOAD:
		f.Push(f.Locals[in.IntOperand])
	case opcodes.LLOAD, opcodes.DLOAD:
		f.Push(f.Locals[in.IntOperand])
	case opcodes.ISTORE, opcodes.FSTORE, opcodes.ASTORE, opcodes.LSTORE, opcodes.DSTORE:
		f.Locals[in.IntOperand] = f.Pop()

	case opcodes.IALOAD, opcodes.LALOAD, opcodes.FALOAD, opcodes.DALOAD, opcodes.AALOAD,
		opcodes.BALOAD, opcodes.CALOAD, opcodes.SALOAD:
		return execResult{}, false, execArrayLoad(f, op)

	case opcodes.IASTORE, opcodes.LASTORE, opcodes.FASTORE, opcodes.DASTORE, opcodes.AASTORE,
		opcodes.BASTORE, opcodes.CASTORE, opcodes.SASTORE:
		return execResult{}, false, execArrayStore(f, op)

	case opcodes.POP:
		f.Pop()
	case opcodes.POP2:
		f.Pop()
		f.Pop()
	case opcodes.DUP:
		v := f.Peek()
		f.Push(v)
	case opcodes.DUP_X1:
		a, b := f.Pop(), f.Pop()
		f.Push(a)
		f.Push(b)
		f.Push(a)
	case opcodes.DUP_X2:
		a, b, c := f.Pop(), f.Pop(), f.Pop()
		f.Push(a)
		f.Push(c)
		f.Push(b)
		f.Push(a)
	case opcodes.DUP2:
		a, b := f.Pop(), f.Pop()
		f.Push(b)
		f.Push(a)
		f.Push(b)
		f.Push(a)
	case opcodes.DUP2_X1:
		a, b, c := f.Pop(), f.Pop(), f.Pop()
		f.Push(b)
		f.Push(a)
		f.Push(c)
		f.Push(b)
		f.Push(a)
	case opcodes.DUP2_X2:
		a, b, c, d := f.Pop(), f.Pop(), f.Pop(), f.Pop()
		f.Push(b)
		f.Push(a)
		f.Push(d)
		f.Push(c)
		f.Push(b)
		f.Push(a)
	case opcodes.SWAP:
		a, b := f.Pop(), f.Pop()
		f.Push(a)
		f.Push(b)

	case opcodes.IADD, opcodes.ISUB, opcodes.IMUL, opcodes.IDIV, opcodes.IREM,
		opcodes.ISHL, opcodes.ISHR, opcodes.IUSHR, opcodes.IAND, opcodes.IOR, opcodes.IXOR:
		return execResult{}, false, execIntBinary(f, op)
	case opcodes.LADD, opcodes.LSUB, opcodes.LMUL, opcodes.LDIV, opcodes.LREM,
		opcodes.LSHL, opcodes.LSHR, opcodes.LUSHR, opcodes.LAND, opcodes.LOR, opcodes.LXOR:
		return execResult{}, false, execLongBinary(f, op)
	case opcodes.FADD, opcodes.FSUB, opcodes.FMUL, opcodes.FDIV, opcodes.FREM:
		execFloatBinary(f, op)
	case opcodes.DADD, opcodes.DSUB, opcodes.DMUL, opcodes.DDIV, opcodes.DREM:
		execDoubleBinary(f, op)
	case opcodes.INEG:
		f.Push(-f.Pop().(int32))
	case opcodes.LNEG:
		f.Push(-f.Pop().(int64))
	case opcodes.FNEG:
		f.Push(-f.Pop().(float32))
	case opcodes.DNEG:
		f.Push(-f.Pop().(float64))

	case opcodes.IINC:
		f.Locals[in.IntOperand] = f.Locals[in.IntOperand].(int32) + in.IntOperand2

	case opcodes.I2L:
		f.Push(int64(f.Pop().(int32)))
	case opcodes.I2F:
		f.Push(float32(f.Pop().(int32)))
	case opcodes.I2D:
		f.Push(float64(f.Pop().(int32)))
	case opcodes.L2I:
		f.Push(int32(f.Pop().(int64)))
	case opcodes.L2F:
		f.Push(float32(f.Pop().(int64)))
	case opcodes.L2D:
		f.Push(float64(f.Pop().(int64)))
	case opcodes.F2I:
		f.Push(int32(f.Pop().(float32)))
	case opcodes.F2L:
		f.Push(int64(f.Pop().(float32)))
	case opcodes.F2D:
		f.Push(float64(f.Pop().(float32)))
	case opcodes.D2I:
		f.Push(int32(f.Pop().(float64)))
	case opcodes.D2L:
		f.Push(int64(f.Pop().(float64)))
	case opcodes.D2F:
		f.Push(float32(f.Pop().(float64)))
	case opcodes.I2B:
		f.Push(int32(int8(f.Pop().(int32))))
	case opcodes.I2C:
		f.Push(int32(uint16(f.Pop().(int32))))
	case opcodes.I2S:
		f.Push(int32(int16(f.Pop().(int32))))

	case opcodes.LCMP:
		b, a := f.Pop().(int64), f.Pop().(int64)
		f.Push(cmp3(a, b))
	case opcodes.FCMPL, opcodes.FCMPG:
		b, a := f.Pop().(float32), f.Pop().(float32)
		f.Push(fcmp(float64(a), float64(b), op == opcodes.FCMPG))
	case opcodes.DCMPL, opcodes.DCMPG:
		b, a := f.Pop().(float64), f.Pop().(float64)
		f.Push(fcmp(a, b, op == opcodes.DCMPG))

	case opcodes.IFEQ, opcodes.IFNE, opcodes.IFLT, opcodes.IFGE, opcodes.IFGT, opcodes.IFLE:
		v := f.Pop().(int32)
		if intCompares(v, 0, op, opcodes.IFEQ) {
			f.PC += int(in.BranchOffset)
			return execResult{}, true, nil
		}
	case opcodes.IF_ICMPEQ, opcodes.IF_ICMPNE, opcodes.IF_ICMPLT, opcodes.IF_ICMPGE, opcodes.IF_ICMPGT, opcodes.IF_ICMPLE:
		b, a := f.Pop().(int32), f.Pop().(int32)
		if intCompares(a, b, op, opcodes.IF_ICMPEQ) {
			f.PC += int(in.BranchOffset)
			return execResult{}, true, nil
		}
	case opcodes.IF_ACMPEQ, opcodes.IF_ACMPNE:
		b, a := f.Pop(), f.Pop()
		eq := a == b
		if (op == opcodes.IF_ACMPEQ) == eq {
			f.PC += int(in.BranchOffset)
			return execResult{}, true, nil
		}
	case opcodes.IFNULL, opcodes.IFNONNULL:
		v := f.Pop()
		isNil := v == nil
		if (op == opcodes.IFNULL) == isNil {
			f.PC += int(in.BranchOffset)
			return execResult{}, true, nil
		}
	case opcodes.GOTO:
		f.PC += int(in.BranchOffset)
		return execResult{}, true, nil
	case opcodes.GOTO_W:
		f.PC += int(in.BranchOffset)
		return execResult{}, true, nil

	case opcodes.TABLESWITCH:
		v := f.Pop().(int32)
		if v < in.Low || v > in.High {
			f.PC += int(in.Default)
		} else {
			f.PC += int(in.Offsets[v-in.Low])
		}
		return execResult{}, true, nil
	case opcodes.LOOKUPSWITCH:
		v := f.Pop().(int32)
		target := in.Default
		for i, m := range in.Matches {
			if m == v {
				target = in.Offsets[i]
				break
			}
		}
		f.PC += int(target)
		return execResult{}, true, nil

	case opcodes.IRETURN, opcodes.FRETURN, opcodes.ARETURN:
		return execResult{isReturn: true, value: f.Pop()}, false, nil
	case opcodes.LRETURN, opcodes.DRETURN:
		return execResult{isReturn: true, value: f.Pop()}, false, nil
	case opcodes.RETURN:
		return execResult{isReturn: true}, false, nil

	case opcodes.GETSTATIC:
		return execResult{}, false, execGetStatic(f, in)
	case opcodes.PUTSTATIC:
		return execResult{}, false, execPutStatic(f, in)
	case opcodes.GETFIELD:
		return execResult{}, false, execGetField(f, in)
	case opcodes.PUTFIELD:
		return execResult{}, false, execPutField(f, in)

	case opcodes.INVOKEVIRTUAL, opcodes.INVOKEINTERFACE:
		return execInvoke(th, f, in, true)
	case opcodes.INVOKESPECIAL, opcodes.INVOKESTATIC:
		return execInvoke(th, f, in, false)
	case opcodes.INVOKEDYNAMIC:
		return execResult{}, false, execInvokeDynamic(th, f, in)

	case opcodes.NEW:
		className := classloader.GetClassNameFromCPclassref(f.CP, in.Index)
		obj, err := instantiateClass(className)
		if err != nil {
			return execResult{}, false, err
		}
		f.Push(obj)
	case opcodes.NEWARRAY:
		f.Push(object.NewArray(newarrayElemType(byte(in.IntOperand)), int(f.Pop().(int32))))
	case opcodes.ANEWARRAY:
		size := int(f.Pop().(int32))
		f.Push(object.NewArray(types.RefPrefix, size))
	case opcodes.MULTIANEWARRAY:
		return execResult{}, false, execMultiANewArray(f, in)
	case opcodes.ARRAYLENGTH:
		arr := f.Pop().(*object.Array)
		f.Push(int32(arr.Len()))

	case opcodes.ATHROW:
		obj, _ := f.Pop().(*object.Object)
		return execResult{}, false, athrow(obj)

	case opcodes.CHECKCAST, opcodes.INSTANCEOF:
		return execResult{}, false, execCastCheck(f, in, op)

	case opcodes.MONITORENTER:
		obj, _ := f.Pop().(*object.Object)
		if obj != nil {
			obj.Monitor().Enter(th.ID)
		}
	case opcodes.MONITOREXIT:
		obj, _ := f.Pop().(*object.Object)
		if obj != nil {
			mon := obj.Monitor()
			if !mon.HeldBy(th.ID) {
				return execResult{}, false, throwf("java/lang/IllegalMonitorStateException", "current thread does not own the monitor")
			}
			mon.Exit(th.ID)
		}

	default:
		return execResult{}, false, throwf("java/lang/InternalError", "unimplemented opcode %s (0x%02x)", opcodes.Mnemonic(op), op)
	}
	return execResult{}, false, nil
}

func athrow(obj *object.Object) error {
	if obj == nil {
		return throwf("java/lang/NullPointerException", "athrow on null")
	}
	msg := ""
	if fld, ok := obj.FieldTable["detailMessage"]; ok && fld != nil {
		if so, ok := fld.Fvalue.(*object.Object); ok {
			msg = object.GoStringFromStringObject(so)
		}
	}
	return &JavaException{ExceptionClass: obj.ClassName(), Message: msg, Obj: obj}
}

func cmp3(a, b int64) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// fcmp implements the lcmp-alike fcmpl/fcmpg semantics: NaN comparisons
// yield -1 for the "l" (less) variant and +1 for the "g" (greater) variant,
// per JVM spec §6.5.fcmp<op>.
func fcmp(a, b float64, isG bool) int32 {
	if math.IsNaN(a) || math.IsNaN(b) {
		if isG {
			return 1
		}
		return -1
	}
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func intCompares(a, b int32, op byte, base byte) bool {
	switch op - base {
	case 0:
		return a == b
	case 1:
		return a != b
	case 2:
		return a < b
	case 3:
		return a >= b
	case 4:
		return a > b
	case 5:
		return a <= b
	}
	return false
}

func newarrayElemType(atype byte) byte {
	switch atype {
	case opcodes.T_BOOLEAN:
		return types.Boolean
	case opcodes.T_CHAR:
		return types.Char
	case opcodes.T_FLOAT:
		return types.Float
	case opcodes.T_DOUBLE:
		return types.Double
	case opcodes.T_BYTE:
		return types.Byte
	case opcodes.T_SHORT:
		return types.Short
	case opcodes.T_INT:
		return types.Int
	case opcodes.T_LONG:
		return types.Long
	default:
		return types.Int
	}
}
