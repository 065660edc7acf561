/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import "vmcore/types"

// Array is a heap array object: a run-time reified element-type tag plus
// its backing Go slice (boxed, since the eight primitive element kinds
// and the reference kind each need a distinct concrete slice type -- a
// []interface{} would lose the kind-specific default-value and
// arraystore-exception-check semantics spec.md §4.E requires for
// arrays).
type Array struct {
	Klass    *string // one of the nine array singleton names, e.g. "[I"
	ElemType byte    // types.Int, types.Long, ... or types.RefPrefix for reference arrays
	Mark     MarkWord
	data     interface{} // []int32, []int64, []float32, []float64, []byte(bool), []uint16(char), []*Object, ...
}

// NewArray allocates a zero-filled array of length size and primitive
// element kind elemType (one of the types.* descriptor bytes).
func NewArray(elemType byte, size int) *Array {
	objectIDCounter++
	a := &Array{ElemType: elemType, Mark: MarkWord{Hash: objectIDCounter}}
	name := arrayClassName(elemType)
	a.Klass = &name

	switch elemType {
	case types.Boolean:
		a.data = make([]bool, size)
	case types.Byte:
		a.data = make([]types.JavaByte, size)
	case types.Char:
		a.data = make([]uint16, size)
	case types.Short:
		a.data = make([]int16, size)
	case types.Int:
		a.data = make([]int32, size)
	case types.Long:
		a.data = make([]int64, size)
	case types.Float:
		a.data = make([]float32, size)
	case types.Double:
		a.data = make([]float64, size)
	default: // reference array
		a.data = make([]*Object, size)
	}
	return a
}

func arrayClassName(elemType byte) string {
	switch elemType {
	case types.Boolean:
		return "[Z"
	case types.Byte:
		return "[B"
	case types.Char:
		return "[C"
	case types.Short:
		return "[S"
	case types.Int:
		return "[I"
	case types.Long:
		return "[J"
	case types.Float:
		return "[F"
	case types.Double:
		return "[D"
	default:
		return "[L"
	}
}

// Len returns the array's element count.
func (a *Array) Len() int {
	switch d := a.data.(type) {
	case []bool:
		return len(d)
	case []types.JavaByte:
		return len(d)
	case []uint16:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	case []*Object:
		return len(d)
	default:
		return 0
	}
}

// Get returns element i boxed as interface{}; callers type-assert to the
// concrete kind they expect based on ElemType.
func (a *Array) Get(i int) interface{} {
	switch d := a.data.(type) {
	case []bool:
		return d[i]
	case []types.JavaByte:
		return d[i]
	case []uint16:
		return d[i]
	case []int16:
		return d[i]
	case []int32:
		return d[i]
	case []int64:
		return d[i]
	case []float32:
		return d[i]
	case []float64:
		return d[i]
	case []*Object:
		return d[i]
	default:
		return nil
	}
}

// Set stores value into element i, panicking on a kind mismatch -- the
// interpreter is expected to have already checked descriptor
// compatibility (or thrown ArrayStoreException) before calling Set.
func (a *Array) Set(i int, value interface{}) {
	switch d := a.data.(type) {
	case []bool:
		d[i] = value.(bool)
	case []types.JavaByte:
		d[i] = value.(types.JavaByte)
	case []uint16:
		d[i] = value.(uint16)
	case []int16:
		d[i] = value.(int16)
	case []int32:
		d[i] = value.(int32)
	case []int64:
		d[i] = value.(int64)
	case []float32:
		d[i] = value.(float32)
	case []float64:
		d[i] = value.(float64)
	case []*Object:
		d[i] = value.(*Object)
	}
}
