/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package object implements the JVM heap object: instance data, array
// data, and the java/lang/String-special-case compact representation,
// per spec.md §4.E.
//
// Instance fields are stored in a name-keyed FieldTable rather than the
// raw offset-indexed vector spec.md's object-layout invariant describes
// literally. The class schema (classloader.FieldLayout, see
// classloader/schema.go) still computes and exposes the canonical
// inherited-first, offset-indexed slot ordering; object.Object resolves
// a slot's offset to its name via that schema and stores through the
// name. This keeps field access in ordinary, safe Go (map indexing)
// rather than unsafe pointer arithmetic over a flat byte vector, while
// still letting any caller ask "what is the slot layout of this class"
// and get the same answer the specification describes.
package object

import (
	"fmt"
	"strings"
	"sync"

	"vmcore/classloader"
	"vmcore/types"
)

// Field is one instance or static field slot: its descriptor plus its
// current value, boxed in interface{} the way the teacher's gfunction
// natives expect to find it.
type Field struct {
	Ftype  string
	Fvalue interface{}
}

// MarkWord is the object header spec.md §4.E calls for: an identity hash
// plus the lazily-allocated monitor backing synchronized blocks.
type MarkWord struct {
	Hash    int32
	monitor *Monitor
}

// Object is a heap object: a class pointer, a header, and its fields.
type Object struct {
	Klass      *string // fully qualified binary class name, e.g. "java/lang/String"
	Mark       MarkWord
	FieldTable map[string]*Field

	mu sync.Mutex
}

var objectIDCounter int32

// MakeEmptyObject returns an Object with no class set and an empty field
// table -- callers finish it with Klass and FieldTable entries, as
// NewObject and NewStringObject do.
func MakeEmptyObject() *Object {
	objectIDCounter++
	return &Object{
		Mark:       MarkWord{Hash: objectIDCounter},
		FieldTable: make(map[string]*Field),
	}
}

// NewObject allocates an instance of className, laying out default-valued
// fields per the class's schema (classloader.GetSchema): inherited fields
// first, then the class's own declared fields, exactly the ordering
// spec.md's object-layout invariant requires.
func NewObject(className string) (*Object, error) {
	k := classloader.MethAreaFetch(className)
	if k == nil || k.Data == nil {
		return nil, fmt.Errorf("class not loaded: %s", className)
	}
	layout, err := classloader.GetSchema(k.Data)
	if err != nil {
		return nil, err
	}

	obj := MakeEmptyObject()
	name := className
	obj.Klass = &name
	for _, slot := range layout.Slots {
		obj.FieldTable[slot.Name] = &Field{
			Ftype:  slot.Descriptor,
			Fvalue: types.DefaultValueForDescriptor(slot.Descriptor),
		}
	}
	return obj, nil
}

// NewStringObject builds an empty java/lang/String instance with its
// backing byte-array field ("value") initialized to an empty array, the
// same "value" field name real java/lang/String uses (and which
// object/javaByteArray.go's helpers read and write directly).
func NewStringObject() *Object {
	obj := MakeEmptyObject()
	name := "java/lang/String"
	obj.Klass = &name
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: []byte{}}
	return obj
}

// CreateCompactStringFromGoString builds a java/lang/String object whose
// "value" field holds s's bytes -- the "compact string" representation
// real JDKs use for Latin-1-only content.
func CreateCompactStringFromGoString(s *string) *Object {
	obj := NewStringObject()
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: []byte(*s)}
	return obj
}

// UpdateStringObjectFromBytes overwrites obj's backing "value" field with
// b, used by the String constructors that build from a caller-supplied
// byte array.
func UpdateStringObjectFromBytes(obj *Object, b []byte) {
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: b}
}

// StringObjectFromGoString is an alias for CreateCompactStringFromGoString,
// named to match the gfunction natives' own convention of naming string
// constructors after their Go-side source value.
func StringObjectFromGoString(s string) *Object {
	return CreateCompactStringFromGoString(&s)
}

// ByteArrayFromStringObject returns the raw bytes backing a
// java/lang/String object's "value" field.
func ByteArrayFromStringObject(obj *Object) []byte {
	if obj == nil || obj.FieldTable["value"] == nil {
		return nil
	}
	b, _ := obj.FieldTable["value"].Fvalue.([]byte)
	return b
}

// GoStringFromStringObject is the inverse of CreateCompactStringFromGoString.
func GoStringFromStringObject(obj *Object) string {
	if obj == nil || obj.FieldTable["value"] == nil {
		return ""
	}
	if b, ok := obj.FieldTable["value"].Fvalue.([]byte); ok {
		return string(b)
	}
	return ""
}

// ClassName returns obj's class name, or "" for a nil object.
func (obj *Object) ClassName() string {
	if obj == nil || obj.Klass == nil {
		return ""
	}
	return *obj.Klass
}

// Monitor lazily allocates and returns obj's intrinsic lock, creating it
// on first use (most objects are never synchronized on, so eager
// allocation would waste a mutex per object).
func (obj *Object) Monitor() *Monitor {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.Mark.monitor == nil {
		obj.Mark.monitor = newMonitor()
	}
	return obj.Mark.monitor
}

// ToString renders obj the way a debugger or the teacher's REPL would:
// ClassName{field=value, ...}, sorted for determinism isn't attempted
// (Go map order is intentionally randomized; callers that need stable
// output should sort the keys themselves).
func (obj *Object) ToString() string {
	if obj == nil {
		return "null"
	}
	var sb strings.Builder
	sb.WriteString(obj.ClassName())
	sb.WriteString("{")
	first := true
	for name, f := range obj.FieldTable {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(name)
		sb.WriteString("=")
		fmt.Fprintf(&sb, "%v", f.Fvalue)
	}
	sb.WriteString("}")
	return sb.String()
}
