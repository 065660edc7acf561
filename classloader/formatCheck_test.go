/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// utf8CP returns a CPool with CpIndex[1] a Utf8 entry and CpIndex[2] a
// ClassRef entry, the two constant kinds FormatCheck checks most often.
func utf8CP() CPool {
	return CPool{
		CpIndex: []CpEntry{
			{}, // reserved dummy at index 0
			{Type: UTF8, Slot: 0},
			{Type: ClassRef, Slot: 0},
		},
	}
}

func baseClData() *ClData {
	return &ClData{
		Name:        "com/example/Demo",
		CP:          utf8CP(),
		MethodTable: map[string]*Method{},
	}
}

func TestFormatCheckRejectsUnnamedClass(t *testing.T) {
	cd := baseClData()
	cd.Name = ""
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsEmptyClass(t *testing.T) {
	cd := baseClData()
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsFieldNameOutOfRange(t *testing.T) {
	cd := baseClData()
	cd.Fields = []Field{{Name: 99, Desc: 1}}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckRejectsFieldDescriptorNotUtf8(t *testing.T) {
	cd := baseClData()
	cd.Fields = []Field{{Name: 1, Desc: 2}} // index 2 is a ClassRef, not Utf8
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsValidField(t *testing.T) {
	cd := baseClData()
	cd.Fields = []Field{{Name: 1, Desc: 1}}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsMethodWithBadName(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{Name: 99, Desc: 1, IsAbstract: true}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckRejectsConcreteMethodWithNoCode(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{Name: 1, Desc: 1}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsAbstractMethodWithNoCode(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{Name: 1, Desc: 1, IsAbstract: true}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckAcceptsNativeMethodWithNoCode(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{Name: 1, Desc: 1, IsNative: true}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsMethodDeclaredExceptionNotClassRef(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1, IsNative: true,
		Exceptions: []uint16{1}, // index 1 is Utf8, not ClassRef
	}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsMethodDeclaredExceptionValid(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1, IsNative: true,
		Exceptions: []uint16{2},
	}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsExceptionTableCatchTypeNotClassRef(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1,
		CodeAttr: CodeAttrib{
			Code:       []byte{0, 0, 0},
			Exceptions: []CodeException{{StartPc: 0, EndPc: 1, HandlerPc: 2, CatchType: 1}},
		},
	}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsExceptionTableCatchAll(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1,
		CodeAttr: CodeAttrib{
			Code:       []byte{0, 0, 0},
			Exceptions: []CodeException{{StartPc: 0, EndPc: 1, HandlerPc: 2, CatchType: 0}},
		},
	}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsExceptionTableEntryOutOfRange(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1,
		CodeAttr: CodeAttrib{
			Code:       []byte{0, 0, 0},
			Exceptions: []CodeException{{StartPc: 0, EndPc: 10, HandlerPc: 2, CatchType: 0}},
		},
	}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckRejectsExceptionTableStartAfterEnd(t *testing.T) {
	cd := baseClData()
	cd.MethodTable["m()V"] = &Method{
		Name: 1, Desc: 1,
		CodeAttr: CodeAttrib{
			Code:       []byte{0, 0, 0},
			Exceptions: []CodeException{{StartPc: 2, EndPc: 1, HandlerPc: 0, CatchType: 0}},
		},
	}
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckRejectsInvalidInterfaceRef(t *testing.T) {
	cd := baseClData()
	cd.Interfaces = []uint16{1} // Utf8, not ClassRef
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsValidInterfaceRef(t *testing.T) {
	cd := baseClData()
	cd.Interfaces = []uint16{2}
	assert.NoError(t, FormatCheck(cd))
}

func TestFormatCheckRejectsBootstrapMethodNotMethodHandle(t *testing.T) {
	cd := baseClData()
	cd.Bootstraps = []BootstrapMethod{{MethodRef: 1}} // Utf8, not MethodHandle
	err := FormatCheck(cd)
	assert.Error(t, err)
}

func TestFormatCheckAcceptsValidBootstrapMethod(t *testing.T) {
	cd := baseClData()
	cd.CP.CpIndex = append(cd.CP.CpIndex, CpEntry{Type: MethodHandle, Slot: 0})
	cd.Bootstraps = []BootstrapMethod{{MethodRef: 3}}
	assert.NoError(t, FormatCheck(cd))
}

func TestRequireUtf8RejectsOutOfRangeIndex(t *testing.T) {
	cp := utf8CP()
	assert.Error(t, requireUtf8(&cp, 0))
	assert.Error(t, requireUtf8(&cp, 99))
}

func TestRequireUtf8AcceptsValidIndex(t *testing.T) {
	cp := utf8CP()
	assert.NoError(t, requireUtf8(&cp, 1))
}

func TestRequireClassRefRejectsWrongTag(t *testing.T) {
	cp := utf8CP()
	assert.Error(t, requireClassRef(&cp, 1))
}

func TestRequireClassRefAcceptsValidIndex(t *testing.T) {
	cp := utf8CP()
	assert.NoError(t, requireClassRef(&cp, 2))
}
