/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmcore/object"
	"vmcore/types"
)

func TestObjectHashCodeMatchesMarkHash(t *testing.T) {
	obj := object.MakeEmptyObject()
	ret := objectHashCode([]interface{}{obj})
	assert.Equal(t, obj.Mark.Hash, ret)
}

func TestObjectHashCodeOnNilReturnsZero(t *testing.T) {
	ret := objectHashCode([]interface{}{(*object.Object)(nil)})
	assert.Equal(t, int32(0), ret)
}

func TestObjectGetClassNameReturnsStringObject(t *testing.T) {
	obj := object.MakeEmptyObject()
	name := "test/Thing"
	obj.Klass = &name
	ret := objectGetClassName([]interface{}{obj})
	so, ok := ret.(*object.Object)
	assert.True(t, ok)
	assert.Equal(t, "test/Thing", object.GoStringFromStringObject(so))
}

func TestSystemIdentityHashCodeMatchesMarkHash(t *testing.T) {
	obj := object.MakeEmptyObject()
	ret := systemIdentityHashCode([]interface{}{obj})
	assert.Equal(t, obj.Mark.Hash, ret)
}

func TestSystemArraycopyCopiesRange(t *testing.T) {
	src := object.NewArray(types.Int, 5)
	dst := object.NewArray(types.Int, 5)
	for i := 0; i < 5; i++ {
		src.Set(i, int32(i*10))
	}

	ret := systemArraycopy([]interface{}{src, int32(1), dst, int32(0), int32(3)})
	assert.Nil(t, ret)
	assert.Equal(t, int32(10), dst.Get(0))
	assert.Equal(t, int32(20), dst.Get(1))
	assert.Equal(t, int32(30), dst.Get(2))
}

func TestSystemArraycopyRejectsOutOfRange(t *testing.T) {
	src := object.NewArray(types.Int, 2)
	dst := object.NewArray(types.Int, 2)
	ret := systemArraycopy([]interface{}{src, int32(0), dst, int32(0), int32(5)})
	errBlk, ok := ret.(*GErrBlk)
	assert.True(t, ok)
	assert.Equal(t, "java/lang/ArrayIndexOutOfBoundsException", errBlk.ExceptionType)
}

func TestSystemArraycopyRejectsNil(t *testing.T) {
	dst := object.NewArray(types.Int, 2)
	ret := systemArraycopy([]interface{}{(*object.Array)(nil), int32(0), dst, int32(0), int32(1)})
	errBlk, ok := ret.(*GErrBlk)
	assert.True(t, ok)
	assert.Equal(t, "java/lang/NullPointerException", errBlk.ExceptionType)
}
