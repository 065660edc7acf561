/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package opcodes

// Instruction is the reified record a decoded opcode produces: the opcode
// byte, its operands (interpretation depends on Op), and the byte length of
// the whole instruction (opcode + operands) so the interpreter can advance
// its program counter.
type Instruction struct {
	Op       byte
	PC       int
	Len      int
	IntOperand   int32  // bipush/sipush/iinc const, local-variable index, newarray atype
	IntOperand2  int32  // iinc increment, array-dimension count for multianewarray
	Index        uint16 // constant-pool index (ldc/ldc_w/ldc2_w/getstatic/...), or local index when wide
	BranchOffset int32  // signed displacement from PC for goto/if*/jsr
	Wide         bool   // true when this instruction was prefixed by `wide`

	// tableswitch / lookupswitch
	Default int32
	Low     int32
	High    int32
	Offsets []int32 // tableswitch: indexed by (value-Low); lookupswitch: parallel to Matches
	Matches []int32
}

// Decode reifies the instruction beginning at code[pc], unifying short forms
// (iload_0..3) into the general form with the implicit operand, per
// spec.md §4.H. It returns the instruction and its total byte length
// (including the opcode byte itself).
func Decode(code []byte, pc int) Instruction {
	op := code[pc]
	in := Instruction{Op: op, PC: pc, Len: 1}

	switch op {
	case ILOAD_0, ILOAD_1, ILOAD_2, ILOAD_3:
		in.Op, in.IntOperand = ILOAD, int32(op-ILOAD_0)
	case LLOAD_0, LLOAD_1, LLOAD_2, LLOAD_3:
		in.Op, in.IntOperand = LLOAD, int32(op-LLOAD_0)
	case FLOAD_0, FLOAD_1, FLOAD_2, FLOAD_3:
		in.Op, in.IntOperand = FLOAD, int32(op-FLOAD_0)
	case DLOAD_0, DLOAD_1, DLOAD_2, DLOAD_3:
		in.Op, in.IntOperand = DLOAD, int32(op-DLOAD_0)
	case ALOAD_0, ALOAD_1, ALOAD_2, ALOAD_3:
		in.Op, in.IntOperand = ALOAD, int32(op-ALOAD_0)
	case ISTORE_0, ISTORE_1, ISTORE_2, ISTORE_3:
		in.Op, in.IntOperand = ISTORE, int32(op-ISTORE_0)
	case LSTORE_0, LSTORE_1, LSTORE_2, LSTORE_3:
		in.Op, in.IntOperand = LSTORE, int32(op-LSTORE_0)
	case FSTORE_0, FSTORE_1, FSTORE_2, FSTORE_3:
		in.Op, in.IntOperand = FSTORE, int32(op-FSTORE_0)
	case DSTORE_0, DSTORE_1, DSTORE_2, DSTORE_3:
		in.Op, in.IntOperand = DSTORE, int32(op-DSTORE_0)
	case ASTORE_0, ASTORE_1, ASTORE_2, ASTORE_3:
		in.Op, in.IntOperand = ASTORE, int32(op-ASTORE_0)
	case ICONST_M1, ICONST_0, ICONST_1, ICONST_2, ICONST_3, ICONST_4, ICONST_5:
		in.IntOperand = int32(op) - ICONST_0

	case ILOAD, LLOAD, FLOAD, DLOAD, ALOAD,
		ISTORE, LSTORE, FSTORE, DSTORE, ASTORE, RET:
		in.IntOperand = int32(code[pc+1])
		in.Len = 2

	case BIPUSH:
		in.IntOperand = int32(int8(code[pc+1]))
		in.Len = 2

	case SIPUSH:
		in.IntOperand = int32(be16signed(code, pc+1))
		in.Len = 3

	case LDC:
		in.Index = uint16(code[pc+1])
		in.Len = 2
	case LDC_W, LDC2_W:
		in.Index = be16(code, pc+1)
		in.Len = 3

	case IINC:
		in.IntOperand = int32(code[pc+1])
		in.IntOperand2 = int32(int8(code[pc+2]))
		in.Len = 3

	case GOTO, JSR, IFEQ, IFNE, IFLT, IFGE, IFGT, IFLE,
		IF_ICMPEQ, IF_ICMPNE, IF_ICMPLT, IF_ICMPGE, IF_ICMPGT, IF_ICMPLE,
		IF_ACMPEQ, IF_ACMPNE, IFNULL, IFNONNULL:
		in.BranchOffset = int32(be16signed(code, pc+1))
		in.Len = 3

	case GOTO_W, JSR_W:
		in.BranchOffset = be32signed(code, pc+1)
		in.Len = 5

	case GETSTATIC, PUTSTATIC, GETFIELD, PUTFIELD,
		INVOKEVIRTUAL, INVOKESPECIAL, INVOKESTATIC,
		NEW, ANEWARRAY, CHECKCAST, INSTANCEOF:
		in.Index = be16(code, pc+1)
		in.Len = 3

	case INVOKEINTERFACE:
		in.Index = be16(code, pc+1)
		in.IntOperand = int32(code[pc+3]) // count (historical; ignored at execution time)
		in.Len = 5                        // index(2) + count(1) + reserved-zero(1)

	case INVOKEDYNAMIC:
		in.Index = be16(code, pc+1)
		in.Len = 5 // index(2) + two reserved zero bytes

	case NEWARRAY:
		in.IntOperand = int32(code[pc+1])
		in.Len = 2

	case MULTIANEWARRAY:
		in.Index = be16(code, pc+1)
		in.IntOperand2 = int32(code[pc+3])
		in.Len = 4

	case TABLESWITCH:
		in.Len = decodeTableSwitch(code, pc, &in)

	case LOOKUPSWITCH:
		in.Len = decodeLookupSwitch(code, pc, &in)

	case WIDE:
		in.Len = decodeWide(code, pc, &in)

	default:
		// all other opcodes (constants, stack ops, arithmetic, conversions,
		// array load/store, returns, monitors, nop) have no operands.
	}

	return in
}

// decodeWide handles the `wide` prefix: the following opcode is either
// {i,l,f,d,a}load/store or ret with a 16-bit (rather than 8-bit) local
// index, or iinc with a 16-bit index and a 16-bit signed increment.
func decodeWide(code []byte, pc int, in *Instruction) int {
	sub := code[pc+1]
	in.Wide = true
	switch sub {
	case IINC:
		in.Op = IINC
		in.IntOperand = int32(be16(code, pc+2))
		in.IntOperand2 = int32(be16signed(code, pc+4))
		return 6
	default:
		in.Op = sub
		in.IntOperand = int32(be16(code, pc+2))
		return 4
	}
}

func decodeTableSwitch(code []byte, pc int, in *Instruction) int {
	// padding to the next 4-byte boundary measured from the start of the
	// method's code array (pc+1 is the first padding byte, if any).
	p := pc + 1
	for p%4 != 0 {
		p++
	}
	in.Default = be32signed(code, p)
	in.Low = be32signed(code, p+4)
	in.High = be32signed(code, p+8)
	count := int(in.High-in.Low) + 1
	p += 12
	in.Offsets = make([]int32, count)
	for i := 0; i < count; i++ {
		in.Offsets[i] = be32signed(code, p)
		p += 4
	}
	return p - pc
}

func decodeLookupSwitch(code []byte, pc int, in *Instruction) int {
	p := pc + 1
	for p%4 != 0 {
		p++
	}
	in.Default = be32signed(code, p)
	npairs := int(be32signed(code, p+4))
	p += 8
	in.Matches = make([]int32, npairs)
	in.Offsets = make([]int32, npairs)
	for i := 0; i < npairs; i++ {
		in.Matches[i] = be32signed(code, p)
		in.Offsets[i] = be32signed(code, p+4)
		p += 8
	}
	return p - pc
}

func be16(code []byte, i int) uint16 {
	return uint16(code[i])<<8 | uint16(code[i+1])
}

func be16signed(code []byte, i int) int16 {
	return int16(be16(code, i))
}

func be32signed(code []byte, i int) int32 {
	return int32(uint32(code[i])<<24 | uint32(code[i+1])<<16 | uint32(code[i+2])<<8 | uint32(code[i+3]))
}
