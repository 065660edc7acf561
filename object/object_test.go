/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmcore/types"
)

func TestObjectToStringIncludesFields(t *testing.T) {
	obj := MakeEmptyObject()
	klassType := "java/lang/madeUpClass"
	obj.Klass = &klassType

	obj.FieldTable["myFloat"] = &Field{Ftype: "F", Fvalue: float32(1.0)}
	obj.FieldTable["myInt"] = &Field{Ftype: "I", Fvalue: int32(42)}
	obj.FieldTable["myString"] = &Field{Ftype: "Ljava/lang/String;", Fvalue: "Hello, Unka Andoo !"}

	str := obj.ToString()
	assert.NotEmpty(t, str)
	assert.Contains(t, str, "java/lang/madeUpClass")
}

func TestCreateCompactStringRoundTrips(t *testing.T) {
	literal := "This is a compact string from a Go string"
	csObj := CreateCompactStringFromGoString(&literal)

	assert.Equal(t, "java/lang/String", csObj.ClassName())
	assert.Equal(t, literal, GoStringFromStringObject(csObj))
}

func TestNewStringObjectStartsEmpty(t *testing.T) {
	s := NewStringObject()
	assert.Equal(t, "", GoStringFromStringObject(s))
}

func TestJavaByteArrayFromStringObject(t *testing.T) {
	literal := "abc"
	csObj := CreateCompactStringFromGoString(&literal)
	jb := JavaByteArrayFromStringObject(csObj)
	assert.Equal(t, []types.JavaByte{'a', 'b', 'c'}, jb)
}

func TestUpdateStringObjectFromBytes(t *testing.T) {
	obj := NewStringObject()
	UpdateStringObjectFromBytes(obj, []byte("xyz"))
	assert.Equal(t, "xyz", GoStringFromStringObject(obj))
}

func TestJavaByteArrayFromStringObjectWrongClassReturnsNil(t *testing.T) {
	obj := MakeEmptyObject()
	klassType := "java/lang/NotAString"
	obj.Klass = &klassType
	assert.Nil(t, JavaByteArrayFromStringObject(obj))
}

func TestMonitorReentrant(t *testing.T) {
	obj := MakeEmptyObject()
	mon := obj.Monitor()
	mon.Enter("thread-a")
	mon.Enter("thread-a") // reentrant: same owner, must not deadlock
	assert.True(t, mon.HeldBy("thread-a"))
	mon.Exit("thread-a")
	assert.True(t, mon.HeldBy("thread-a"))
	mon.Exit("thread-a")
	assert.False(t, mon.HeldBy("thread-a"))
}

func TestArraySetGet(t *testing.T) {
	arr := NewArray(types.Int, 3)
	assert.Equal(t, 3, arr.Len())
	arr.Set(1, int32(99))
	assert.Equal(t, int32(99), arr.Get(1))
	assert.Equal(t, int32(0), arr.Get(0)) // default-initialized
}

func TestArrayClassNames(t *testing.T) {
	assert.Equal(t, "[I", *NewArray(types.Int, 0).Klass)
	assert.Equal(t, "[B", *NewArray(types.Byte, 0).Klass)
	assert.Equal(t, "[L", *NewArray(types.RefPrefix, 0).Klass)
}
