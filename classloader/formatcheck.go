/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// FormatCheck runs the structural sanity checks the JVM specification
// requires between parsing and linking (§4.10 in the JVM spec; spec.md
// §4.A's "format-checked" state): every constant-pool index a field,
// method, or attribute refers to must be in range and of the expected
// tag. It does not attempt bytecode verification (spec.md's Non-goals
// exclude a bytecode verifier); it only rejects structurally impossible
// class files before the loader wastes time schema-building or
// interpreting them.
func FormatCheck(cd *ClData) error {
	cp := &cd.CP

	if cd.Name == "" {
		return newFormatError("<unknown>", "this_class did not resolve to a name")
	}

	for _, f := range cd.Fields {
		if err := requireUtf8(cp, int(f.Name)); err != nil {
			return newFormatError(cd.Name, "field name: %v", err)
		}
		if err := requireUtf8(cp, int(f.Desc)); err != nil {
			return newFormatError(cd.Name, "field descriptor: %v", err)
		}
	}

	for key, m := range cd.MethodTable {
		if err := requireUtf8(cp, int(m.Name)); err != nil {
			return newFormatError(cd.Name, "method %s name: %v", key, err)
		}
		if err := requireUtf8(cp, int(m.Desc)); err != nil {
			return newFormatError(cd.Name, "method %s descriptor: %v", key, err)
		}
		for _, exc := range m.Exceptions {
			if err := requireClassRef(cp, int(exc)); err != nil {
				return newFormatError(cd.Name, "method %s declared exception: %v", key, err)
			}
		}
		if !m.IsAbstract && !m.IsNative && len(m.CodeAttr.Code) == 0 {
			return newFormatError(cd.Name, "method %s is concrete but has no Code attribute", key)
		}
		for _, exc := range m.CodeAttr.Exceptions {
			if exc.CatchType != 0 {
				if err := requireClassRef(cp, int(exc.CatchType)); err != nil {
					return newFormatError(cd.Name, "method %s exception-table catch type: %v", key, err)
				}
			}
			if exc.StartPc < 0 || exc.EndPc > len(m.CodeAttr.Code) || exc.StartPc >= exc.EndPc {
				return newFormatError(cd.Name, "method %s exception-table entry out of range", key)
			}
		}
	}

	for _, ifaceIdx := range cd.Interfaces {
		if err := requireClassRef(cp, int(ifaceIdx)); err != nil {
			return newFormatError(cd.Name, "interface entry: %v", err)
		}
	}

	for _, bm := range cd.Bootstraps {
		if int(bm.MethodRef) >= len(cp.CpIndex) || cp.CpIndex[bm.MethodRef].Type != MethodHandle {
			return newFormatError(cd.Name, "bootstrap method ref %d is not a MethodHandle entry", bm.MethodRef)
		}
	}

	return nil
}

func requireUtf8(cp *CPool, idx int) error {
	if idx < 1 || idx >= len(cp.CpIndex) || cp.CpIndex[idx].Type != UTF8 {
		return newFormatError("<unknown>", "constant pool index %d is not a Utf8 entry", idx)
	}
	return nil
}

func requireClassRef(cp *CPool, idx int) error {
	if idx < 1 || idx >= len(cp.CpIndex) || cp.CpIndex[idx].Type != ClassRef {
		return newFormatError("<unknown>", "constant pool index %d is not a Class entry", idx)
	}
	return nil
}
