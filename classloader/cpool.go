/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "unsafe"

// Constant-pool tag values, fixed by the JVM specification (table 4.4-A).
const (
	UTF8           = 1
	IntConst       = 3
	FloatConst     = 4
	LongConst      = 5
	DoubleConst    = 6
	ClassRef       = 7
	StringConst    = 8
	FieldRef       = 9
	MethodRef      = 10
	InterfaceRef   = 11 // InterfaceMethodref
	NameAndType    = 12
	MethodHandle   = 15
	MethodType     = 16
	Dynamic        = 17
	InvokeDynamic  = 18
	Module         = 19
	Package        = 20
)

// Reference-kind values for CONSTANT_MethodHandle_info.reference_kind
// (JVM spec table 5.4.3.5-A), grounded on original_source's
// jvm/internals/method_handles.rs enumeration of the same nine kinds.
const (
	RefGetField         = 1
	RefGetStatic        = 2
	RefPutField         = 3
	RefPutStatic        = 4
	RefInvokeVirtual    = 5
	RefInvokeStatic     = 6
	RefInvokeSpecial    = 7
	RefNewInvokeSpecial = 8
	RefInvokeInterface  = 9
)

// CpEntry is the tagged-union slot spec.md §9 calls for: "the parser
// produces a tagged-union entry; down-stream code should match on the tag
// rather than casting." Type selects which typed slice below Slot indexes.
type CpEntry struct {
	Type byte
	Slot int
}

// MemberRefEntry backs CONSTANT_Fieldref/Methodref/InterfaceMethodref_info:
// a class reference plus a name-and-type reference, both themselves CP
// indices (not slots into ClassRefs/NameAndTypes -- one more indirection
// through CpIndex is required to reach the concrete entry).
type MemberRefEntry struct {
	ClassIndex  uint16
	NameAndType uint16
}

// NameAndTypeEntry backs CONSTANT_NameAndType_info.
type NameAndTypeEntry struct {
	NameIndex uint16
	DescIndex uint16
}

// MethodHandleEntry backs CONSTANT_MethodHandle_info.
type MethodHandleEntry struct {
	RefKind  byte
	RefIndex uint16
}

// DynamicEntry backs both CONSTANT_Dynamic_info and
// CONSTANT_InvokeDynamic_info, which share the same shape.
type DynamicEntry struct {
	BootstrapIndex uint16
	NameAndType    uint16
}

// CPool is the per-class constant pool: a 1-indexed CpIndex array of
// tagged entries, backed by typed slices so that, e.g., every int constant
// in the class lives contiguously in IntConsts rather than boxed in an
// interface{}.
type CPool struct {
	CpIndex []CpEntry // index 0 is the reserved dummy entry

	Utf8Refs       []string
	IntConsts      []int32
	Floats         []float32
	LongConsts     []int64
	Doubles        []float64
	ClassRefs      []uint16 // CP index of the name UTF8 entry
	StringRefs     []uint16 // CP index of the UTF8 entry
	FieldRefs      []MemberRefEntry
	MethodRefs     []MemberRefEntry
	InterfaceRefs  []MemberRefEntry
	NameAndTypes   []NameAndTypeEntry
	MethodHandles  []MethodHandleEntry
	MethodTypes    []uint16 // CP index of the descriptor UTF8 entry
	Dynamics       []DynamicEntry
	InvokeDynamics []DynamicEntry
	Modules        []uint16
	Packages       []uint16
}

// CpType is a poor-man's discriminated union used to return a constant pool
// entry's resolved value without the caller needing to know in advance
// which typed slice holds it. Carried from the teacher's CPutils.go, which
// predates Go generics in this codebase's history.
type CpType struct {
	EntryType int
	RetType   int
	IntVal    int64
	FloatVal  float64
	AddrVal   uintptr
	StringVal *string
}

const (
	IsError      = 0
	IsStructAddr = 1
	IsFloat64    = 2
	IsInt64      = 3
	IsStringAddr = 4
)

// FetchCPentry resolves the entry at index, returning its tag and value in
// whichever of the three value fields applies. Returns RetType==IsError on
// any out-of-range or ill-typed index -- never panics, since malformed
// class files are expected input, not a programming error.
func FetchCPentry(cp *CPool, index int) CpType {
	if cp == nil || index < 1 || index >= len(cp.CpIndex) {
		return CpType{RetType: IsError}
	}
	entry := cp.CpIndex[index]

	switch entry.Type {
	case IntConst:
		return CpType{EntryType: entry.Type, RetType: IsInt64, IntVal: int64(cp.IntConsts[entry.Slot])}
	case LongConst:
		return CpType{EntryType: entry.Type, RetType: IsInt64, IntVal: cp.LongConsts[entry.Slot]}
	case MethodType:
		return CpType{EntryType: entry.Type, RetType: IsInt64, IntVal: int64(cp.MethodTypes[entry.Slot])}
	case FloatConst:
		return CpType{EntryType: entry.Type, RetType: IsFloat64, FloatVal: float64(cp.Floats[entry.Slot])}
	case DoubleConst:
		return CpType{EntryType: entry.Type, RetType: IsFloat64, FloatVal: cp.Doubles[entry.Slot]}
	case ClassRef:
		nameIdx := cp.ClassRefs[entry.Slot]
		name := FetchUTF8stringFromCPEntryNumber(cp, int(nameIdx))
		return CpType{EntryType: entry.Type, RetType: IsStringAddr, StringVal: &name}
	case StringConst:
		utf8Idx := cp.StringRefs[entry.Slot]
		if int(utf8Idx) >= len(cp.CpIndex) || cp.CpIndex[utf8Idx].Type != UTF8 {
			return CpType{RetType: IsError}
		}
		s := cp.Utf8Refs[cp.CpIndex[utf8Idx].Slot]
		return CpType{EntryType: entry.Type, RetType: IsStringAddr, StringVal: &s}
	case UTF8:
		return CpType{EntryType: entry.Type, RetType: IsStringAddr, StringVal: &cp.Utf8Refs[entry.Slot]}
	case Dynamic:
		v := unsafe.Pointer(&cp.Dynamics[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case InterfaceRef:
		v := unsafe.Pointer(&cp.InterfaceRefs[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case InvokeDynamic:
		v := unsafe.Pointer(&cp.InvokeDynamics[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case MethodHandle:
		v := unsafe.Pointer(&cp.MethodHandles[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case MethodRef:
		v := unsafe.Pointer(&cp.MethodRefs[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case FieldRef:
		v := unsafe.Pointer(&cp.FieldRefs[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case NameAndType:
		v := unsafe.Pointer(&cp.NameAndTypes[entry.Slot])
		return CpType{EntryType: entry.Type, RetType: IsStructAddr, AddrVal: uintptr(v)}
	case Module, Package:
		return CpType{RetType: IsError} // not normally resolved at runtime
	default:
		return CpType{RetType: IsError}
	}
}

// FetchUTF8stringFromCPEntryNumber resolves a CP index known to point at a
// CONSTANT_Utf8_info entry, returning "" if the index is invalid or
// mistyped.
func FetchUTF8stringFromCPEntryNumber(cp *CPool, index int) string {
	if cp == nil || index < 1 || index >= len(cp.CpIndex) {
		return ""
	}
	e := cp.CpIndex[index]
	if e.Type != UTF8 {
		return ""
	}
	return cp.Utf8Refs[e.Slot]
}

// GetClassNameFromCPclassref resolves a CP index known to point at a
// CONSTANT_Class_info entry, returning the class's fully qualified name.
func GetClassNameFromCPclassref(cp *CPool, cpIndex uint16) string {
	entry := FetchCPentry(cp, int(cpIndex))
	if entry.RetType != IsStringAddr {
		return ""
	}
	return *entry.StringVal
}

// GetMethInfoFromCPmethref resolves a CONSTANT_Methodref_info (or, since
// the shape is identical, an InterfaceMethodref) to its class name, method
// name, and method descriptor.
func GetMethInfoFromCPmethref(cp *CPool, cpIndex int) (className, methName, methSig string) {
	if cp == nil || cpIndex < 1 || cpIndex >= len(cp.CpIndex) {
		return "", "", ""
	}
	entry := cp.CpIndex[cpIndex]
	if entry.Type != MethodRef && entry.Type != InterfaceRef {
		return "", "", ""
	}

	var ref MemberRefEntry
	if entry.Type == MethodRef {
		ref = cp.MethodRefs[entry.Slot]
	} else {
		ref = cp.InterfaceRefs[entry.Slot]
	}

	className = GetClassNameFromCPclassref(cp, ref.ClassIndex)

	ntEntry := cp.CpIndex[ref.NameAndType]
	if ntEntry.Type != NameAndType {
		return className, "", ""
	}
	nt := cp.NameAndTypes[ntEntry.Slot]
	methName = FetchUTF8stringFromCPEntryNumber(cp, int(nt.NameIndex))
	methSig = FetchUTF8stringFromCPEntryNumber(cp, int(nt.DescIndex))
	return className, methName, methSig
}

// GetFieldRefInfo resolves a CONSTANT_Fieldref_info to its owning class
// name, field name, and field descriptor.
func GetFieldRefInfo(cp *CPool, cpIndex int) (className, fieldName, fieldDesc string) {
	if cp == nil || cpIndex < 1 || cpIndex >= len(cp.CpIndex) {
		return "", "", ""
	}
	entry := cp.CpIndex[cpIndex]
	if entry.Type != FieldRef {
		return "", "", ""
	}
	ref := cp.FieldRefs[entry.Slot]
	className = GetClassNameFromCPclassref(cp, ref.ClassIndex)

	ntEntry := cp.CpIndex[ref.NameAndType]
	if ntEntry.Type != NameAndType {
		return className, "", ""
	}
	nt := cp.NameAndTypes[ntEntry.Slot]
	fieldName = FetchUTF8stringFromCPEntryNumber(cp, int(nt.NameIndex))
	fieldDesc = FetchUTF8stringFromCPEntryNumber(cp, int(nt.DescIndex))
	return className, fieldName, fieldDesc
}
