/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"encoding/binary"
	"fmt"
	"math"

	"vmcore/stringPool"
	"vmcore/trace"
	"vmcore/types"
)

// ClassMagic is the fixed 4-byte signature every class file begins with.
const ClassMagic = 0xCAFEBABE

// reader is a position-tracking cursor over a class file's raw bytes, in
// the style of the teacher's hand-rolled big-endian readers: no
// bytes.Reader/io.Reader wrapping, just an index bumped by each read.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) u1() byte {
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) u2() uint16 {
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

// Parse reads a complete class file (spec.md §4.A) into a ClData. name is
// the expected binary class name, used only for diagnostics -- the
// authoritative name comes from the this_class constant pool entry.
func Parse(name string, raw []byte) (cd *ClData, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newFormatError(name, "truncated or malformed class file: %v", rec)
		}
	}()

	r := &reader{data: raw}

	magic := r.u4()
	if magic != ClassMagic {
		return nil, newFormatError(name, "bad magic number: 0x%08X", magic)
	}

	minor := r.u2()
	major := r.u2()

	cp, err := parseConstantPool(r)
	if err != nil {
		return nil, newFormatError(name, "constant pool: %v", err)
	}

	accessFlags := int(r.u2())
	thisClassIdx := r.u2()
	superClassIdx := r.u2()

	thisName := GetClassNameFromCPclassref(cp, thisClassIdx)
	if thisName == "" {
		return nil, newFormatError(name, "this_class entry %d does not resolve to a class name", thisClassIdx)
	}

	var superName string
	if superClassIdx != 0 {
		superName = GetClassNameFromCPclassref(cp, superClassIdx)
	}

	ifaceCount := r.u2()
	interfaces := make([]uint16, ifaceCount)
	for i := range interfaces {
		interfaces[i] = r.u2()
	}

	fieldCount := r.u2()
	fields := make([]Field, fieldCount)
	for i := range fields {
		fields[i], err = parseField(r, cp)
		if err != nil {
			return nil, newFormatError(name, "field %d: %v", i, err)
		}
	}

	methodCount := r.u2()
	methodTable := make(map[string]*Method, methodCount)
	for i := 0; i < int(methodCount); i++ {
		m, err := parseMethod(r, cp)
		if err != nil {
			return nil, newFormatError(name, "method %d: %v", i, err)
		}
		mName := FetchUTF8stringFromCPEntryNumber(cp, int(m.Name))
		mDesc := FetchUTF8stringFromCPEntryNumber(cp, int(m.Desc))
		methodTable[mName+mDesc] = m
	}

	attrCount := r.u2()
	attrs := make([]Attr, attrCount)
	var sourceFile string
	var bootstraps []BootstrapMethod
	for i := range attrs {
		attrs[i] = parseRawAttr(r)
		attrName := FetchUTF8stringFromCPEntryNumber(cp, int(attrs[i].AttrName))
		switch attrName {
		case "SourceFile":
			if len(attrs[i].AttrContent) >= 2 {
				idx := binary.BigEndian.Uint16(attrs[i].AttrContent)
				sourceFile = FetchUTF8stringFromCPEntryNumber(cp, int(idx))
			}
		case "BootstrapMethods":
			bootstraps = parseBootstrapMethods(attrs[i].AttrContent)
		}
	}

	if r.remaining() != 0 {
		trace.Warning(fmt.Sprintf("%d trailing bytes after parsing %s", r.remaining(), thisName))
	}

	nameIdx := stringPool.GetStringIndex(&thisName)
	superIdx := types.InvalidStringIndex
	if superName != "" {
		superIdx = stringPool.GetStringIndex(&superName)
	}

	return &ClData{
		Name:            thisName,
		NameIndex:       nameIdx,
		Superclass:      superName,
		SuperclassIndex: superIdx,
		SourceFile:      sourceFile,
		Interfaces:      interfaces,
		Fields:          fields,
		MethodTable:     methodTable,
		Attributes:      attrs,
		Bootstraps:      bootstraps,
		Access:          decodeClassAccessFlags(accessFlags),
		CP:              *cp,
		JavaVersion:      int(major)*1000 + int(minor),
	}, nil
}

func parseConstantPool(r *reader) (*CPool, error) {
	count := r.u2() // constant_pool_count = count of entries + 1
	cp := &CPool{CpIndex: make([]CpEntry, count)}

	for i := 1; i < int(count); i++ {
		tag := r.u1()
		switch tag {
		case UTF8:
			length := r.u2()
			s := decodeModifiedUTF8(r.bytes(int(length)))
			cp.CpIndex[i] = CpEntry{Type: UTF8, Slot: len(cp.Utf8Refs)}
			cp.Utf8Refs = append(cp.Utf8Refs, s)
		case IntConst:
			v := int32(r.u4())
			cp.CpIndex[i] = CpEntry{Type: IntConst, Slot: len(cp.IntConsts)}
			cp.IntConsts = append(cp.IntConsts, v)
		case FloatConst:
			bits := r.u4()
			cp.CpIndex[i] = CpEntry{Type: FloatConst, Slot: len(cp.Floats)}
			cp.Floats = append(cp.Floats, bitsToFloat32(bits))
		case LongConst:
			hi := uint64(r.u4())
			lo := uint64(r.u4())
			cp.CpIndex[i] = CpEntry{Type: LongConst, Slot: len(cp.LongConsts)}
			cp.LongConsts = append(cp.LongConsts, int64(hi<<32|lo))
			// longs and doubles occupy two consecutive pool indices; the
			// second is an unusable placeholder, per JVM spec §4.4.5.
			i++
			if i < int(count) {
				cp.CpIndex[i] = CpEntry{Type: 0}
			}
		case DoubleConst:
			hi := uint64(r.u4())
			lo := uint64(r.u4())
			cp.CpIndex[i] = CpEntry{Type: DoubleConst, Slot: len(cp.Doubles)}
			cp.Doubles = append(cp.Doubles, bitsToFloat64(hi<<32|lo))
			i++
			if i < int(count) {
				cp.CpIndex[i] = CpEntry{Type: 0}
			}
		case ClassRef:
			nameIdx := r.u2()
			cp.CpIndex[i] = CpEntry{Type: ClassRef, Slot: len(cp.ClassRefs)}
			cp.ClassRefs = append(cp.ClassRefs, nameIdx)
		case StringConst:
			utfIdx := r.u2()
			cp.CpIndex[i] = CpEntry{Type: StringConst, Slot: len(cp.StringRefs)}
			cp.StringRefs = append(cp.StringRefs, utfIdx)
		case FieldRef:
			ref := MemberRefEntry{ClassIndex: r.u2(), NameAndType: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: FieldRef, Slot: len(cp.FieldRefs)}
			cp.FieldRefs = append(cp.FieldRefs, ref)
		case MethodRef:
			ref := MemberRefEntry{ClassIndex: r.u2(), NameAndType: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: MethodRef, Slot: len(cp.MethodRefs)}
			cp.MethodRefs = append(cp.MethodRefs, ref)
		case InterfaceRef:
			ref := MemberRefEntry{ClassIndex: r.u2(), NameAndType: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: InterfaceRef, Slot: len(cp.InterfaceRefs)}
			cp.InterfaceRefs = append(cp.InterfaceRefs, ref)
		case NameAndType:
			nt := NameAndTypeEntry{NameIndex: r.u2(), DescIndex: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: NameAndType, Slot: len(cp.NameAndTypes)}
			cp.NameAndTypes = append(cp.NameAndTypes, nt)
		case MethodHandle:
			mh := MethodHandleEntry{RefKind: r.u1(), RefIndex: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: MethodHandle, Slot: len(cp.MethodHandles)}
			cp.MethodHandles = append(cp.MethodHandles, mh)
		case MethodType:
			descIdx := r.u2()
			cp.CpIndex[i] = CpEntry{Type: MethodType, Slot: len(cp.MethodTypes)}
			cp.MethodTypes = append(cp.MethodTypes, descIdx)
		case Dynamic:
			d := DynamicEntry{BootstrapIndex: r.u2(), NameAndType: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: Dynamic, Slot: len(cp.Dynamics)}
			cp.Dynamics = append(cp.Dynamics, d)
		case InvokeDynamic:
			d := DynamicEntry{BootstrapIndex: r.u2(), NameAndType: r.u2()}
			cp.CpIndex[i] = CpEntry{Type: InvokeDynamic, Slot: len(cp.InvokeDynamics)}
			cp.InvokeDynamics = append(cp.InvokeDynamics, d)
		case Module:
			idx := r.u2()
			cp.CpIndex[i] = CpEntry{Type: Module, Slot: len(cp.Modules)}
			cp.Modules = append(cp.Modules, idx)
		case Package:
			idx := r.u2()
			cp.CpIndex[i] = CpEntry{Type: Package, Slot: len(cp.Packages)}
			cp.Packages = append(cp.Packages, idx)
		default:
			return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
		}
	}
	return cp, nil
}

func parseField(r *reader, cp *CPool) (Field, error) {
	f := Field{
		AccessFlags: int(r.u2()),
		Name:        r.u2(),
		Desc:        r.u2(),
	}
	f.IsStatic = f.AccessFlags&accStatic != 0

	attrCount := r.u2()
	f.Attributes = make([]Attr, attrCount)
	for i := range f.Attributes {
		f.Attributes[i] = parseRawAttr(r)
		name := FetchUTF8stringFromCPEntryNumber(cp, int(f.Attributes[i].AttrName))
		if name == "ConstantValue" && len(f.Attributes[i].AttrContent) == 2 {
			idx := binary.BigEndian.Uint16(f.Attributes[i].AttrContent)
			f.ConstValue = resolveConstValue(cp, idx)
		}
	}
	return f, nil
}

func resolveConstValue(cp *CPool, idx uint16) interface{} {
	entry := FetchCPentry(cp, int(idx))
	switch entry.RetType {
	case IsInt64:
		return entry.IntVal
	case IsFloat64:
		return entry.FloatVal
	case IsStringAddr:
		return *entry.StringVal
	default:
		return nil
	}
}

func parseMethod(r *reader, cp *CPool) (*Method, error) {
	m := &Method{
		AccessFlags: int(r.u2()),
		Name:        r.u2(),
		Desc:        r.u2(),
	}
	m.IsStatic = m.AccessFlags&accStatic != 0
	m.IsNative = m.AccessFlags&accNative != 0
	m.IsAbstract = m.AccessFlags&accMemberAbstract != 0

	attrCount := r.u2()
	m.Attributes = make([]Attr, attrCount)
	for i := range m.Attributes {
		m.Attributes[i] = parseRawAttr(r)
		name := FetchUTF8stringFromCPEntryNumber(cp, int(m.Attributes[i].AttrName))
		switch name {
		case "Code":
			code, err := parseCodeAttr(m.Attributes[i].AttrContent, cp)
			if err != nil {
				return nil, err
			}
			m.CodeAttr = code
		case "Exceptions":
			m.Exceptions = parseExceptionsAttr(m.Attributes[i].AttrContent)
		case "Deprecated":
			m.Deprecated = true
		case "MethodParameters":
			m.Parameters = parseMethodParameters(m.Attributes[i].AttrContent, cp)
		}
	}
	return m, nil
}

func parseRawAttr(r *reader) Attr {
	nameIdx := r.u2()
	length := r.u4()
	content := r.bytes(int(length))
	return Attr{AttrName: nameIdx, AttrSize: int(length), AttrContent: content}
}

// parseCodeAttr parses a method's Code attribute body (already sliced out by
// parseRawAttr) per JVM spec §4.7.3.
func parseCodeAttr(content []byte, cp *CPool) (CodeAttrib, error) {
	cr := &reader{data: content}
	ca := CodeAttrib{
		MaxStack:  int(cr.u2()),
		MaxLocals: int(cr.u2()),
	}
	codeLen := cr.u4()
	ca.Code = cr.bytes(int(codeLen))

	excCount := cr.u2()
	ca.Exceptions = make([]CodeException, excCount)
	for i := range ca.Exceptions {
		ca.Exceptions[i] = CodeException{
			StartPc:   int(cr.u2()),
			EndPc:     int(cr.u2()),
			HandlerPc: int(cr.u2()),
			CatchType: cr.u2(),
		}
	}

	attrCount := cr.u2()
	ca.Attributes = make([]Attr, attrCount)
	for i := range ca.Attributes {
		ca.Attributes[i] = parseRawAttr(cr)
		name := FetchUTF8stringFromCPEntryNumber(cp, int(ca.Attributes[i].AttrName))
		if name == "LineNumberTable" {
			ca.LineNumberTable = parseLineNumberTable(ca.Attributes[i].AttrContent)
		}
	}
	return ca, nil
}

func parseLineNumberTable(content []byte) []LineNumberEntry {
	r := &reader{data: content}
	count := r.u2()
	table := make([]LineNumberEntry, count)
	for i := range table {
		table[i] = LineNumberEntry{StartPc: int(r.u2()), LineNumber: int(r.u2())}
	}
	return table
}

func parseExceptionsAttr(content []byte) []uint16 {
	r := &reader{data: content}
	count := r.u2()
	out := make([]uint16, count)
	for i := range out {
		out[i] = r.u2()
	}
	return out
}

func parseMethodParameters(content []byte, cp *CPool) []ParamAttrib {
	r := &reader{data: content}
	count := r.u1()
	out := make([]ParamAttrib, count)
	for i := range out {
		nameIdx := r.u2()
		flags := int(r.u2())
		name := ""
		if nameIdx != 0 {
			name = FetchUTF8stringFromCPEntryNumber(cp, int(nameIdx))
		}
		out[i] = ParamAttrib{Name: name, AccessFlags: flags}
	}
	return out
}

func parseBootstrapMethods(content []byte) []BootstrapMethod {
	r := &reader{data: content}
	count := r.u2()
	out := make([]BootstrapMethod, count)
	for i := range out {
		methodRef := r.u2()
		argCount := r.u2()
		args := make([]uint16, argCount)
		for j := range args {
			args[j] = r.u2()
		}
		out[i] = BootstrapMethod{MethodRef: methodRef, Args: args}
	}
	return out
}

// decodeModifiedUTF8 converts the JVM's modified-UTF-8 encoding -- a plain
// ASCII byte stream except   is encoded as the two bytes 0xC0 0x80 and
// supplementary characters are encoded as surrogate pairs -- into a Go
// string. Full generality (6-byte supplementary decoding) is handled; it's
// otherwise a pass-through since modified UTF-8 agrees with UTF-8 elsewhere.
func decodeModifiedUTF8(b []byte) string {
	out := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		b0 := b[i]
		switch {
		case b0&0x80 == 0: // 1-byte
			out = append(out, rune(b0))
			i++
		case b0&0xE0 == 0xC0 && i+1 < len(b): // 2-byte
			b1 := b[i+1]
			r := rune(b0&0x1F)<<6 | rune(b1&0x3F)
			out = append(out, r)
			i += 2
		case b0&0xF0 == 0xE0 && i+2 < len(b): // 3-byte (includes surrogate halves)
			b1, b2 := b[i+1], b[i+2]
			r := rune(b0&0x0F)<<12 | rune(b1&0x3F)<<6 | rune(b2&0x3F)
			out = append(out, r)
			i += 3
		default:
			out = append(out, rune(b0))
			i++
		}
	}
	return string(out)
}

func bitsToFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func bitsToFloat64(bits uint64) float64 {
	return math.Float64frombits(bits)
}
