/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// ResolvedMethodHandle is a CONSTANT_MethodHandle_info resolved to the
// class/name/descriptor triple it denotes, plus the reference kind that
// says how invokedynamic/invokespecial-via-handle should dispatch it.
// Kept as a separate resolution table (rather than folded into CpType)
// because a method handle's target can itself be a field, a constructor,
// or a method -- three different dispatch paths -- grounded on
// original_source's jvm/internals/method_handles.rs keeping handle
// resolution as its own pass distinct from ordinary CP resolution.
type ResolvedMethodHandle struct {
	RefKind   byte
	ClassName string
	MemberName string
	Descriptor string
}

// resolvedHandles caches ResolveMethodHandle's output per (CP, index) pair
// so invokedynamic call sites that are hit many times in a loop don't
// redo the member-ref walk every time.
var resolvedHandles = map[*CPool]map[uint16]*ResolvedMethodHandle{}

// ResolveMethodHandle resolves the CONSTANT_MethodHandle_info at cpIndex
// within cp to its target class/member/descriptor.
func ResolveMethodHandle(cp *CPool, cpIndex uint16) (*ResolvedMethodHandle, error) {
	if byIdx, ok := resolvedHandles[cp]; ok {
		if rh, ok := byIdx[cpIndex]; ok {
			return rh, nil
		}
	}

	if int(cpIndex) >= len(cp.CpIndex) || cp.CpIndex[cpIndex].Type != MethodHandle {
		return nil, newFormatError("<unknown>", "cp index %d is not a MethodHandle entry", cpIndex)
	}
	mh := cp.MethodHandles[cp.CpIndex[cpIndex].Slot]

	refEntry := cp.CpIndex[mh.RefIndex]
	var className, memberName, descriptor string
	switch refEntry.Type {
	case FieldRef:
		className, memberName, descriptor = GetFieldRefInfo(cp, int(mh.RefIndex))
	case MethodRef, InterfaceRef:
		className, memberName, descriptor = GetMethInfoFromCPmethref(cp, int(mh.RefIndex))
	default:
		return nil, newFormatError("<unknown>", "method handle ref_index %d has unexpected tag %d", mh.RefIndex, refEntry.Type)
	}

	rh := &ResolvedMethodHandle{
		RefKind:    mh.RefKind,
		ClassName:  className,
		MemberName: memberName,
		Descriptor: descriptor,
	}

	if resolvedHandles[cp] == nil {
		resolvedHandles[cp] = make(map[uint16]*ResolvedMethodHandle)
	}
	resolvedHandles[cp][cpIndex] = rh
	return rh, nil
}

// ResolveBootstrapArg resolves one static argument of a BootstrapMethod
// entry, which may itself be a MethodHandle, MethodType, Dynamic, or
// ordinary loadable constant.
func ResolveBootstrapArg(cp *CPool, cpIndex uint16) CpType {
	entry := cp.CpIndex[cpIndex]
	if entry.Type == MethodHandle {
		rh, err := ResolveMethodHandle(cp, cpIndex)
		if err != nil {
			return CpType{RetType: IsError}
		}
		s := rh.ClassName + "." + rh.MemberName + rh.Descriptor
		return CpType{EntryType: MethodHandle, RetType: IsStringAddr, StringVal: &s}
	}
	return FetchCPentry(cp, int(cpIndex))
}
