/*
 * vmcore - a JVM execution core
 * Adapted from the Jacobin VM project. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "vmcore/types"

// FieldSlot is one entry of a class's flattened, offset-indexed instance
// field layout (spec.md §4.D: "objects store instance fields in a flat
// vector indexed by offset, inherited fields first"). Name is retained
// alongside the offset because object.FieldTable resolves slots by name
// rather than raw pointer arithmetic -- see object.Object's doc comment
// for why.
type FieldSlot struct {
	Name       string
	Descriptor string
	Offset     int
	DeclClass  string
}

// FieldLayout is a class's fully computed instance-field schema: the
// inherited-first slot ordering plus the total slot count a new instance
// must allocate.
type FieldLayout struct {
	Slots     []FieldSlot
	SlotCount int
	ByName    map[string]int // field name -> index into Slots
}

// GetSchema lazily computes and caches cd's field layout, walking the
// superclass chain through the method area so inherited slots always
// precede the class's own declared slots -- the ordering spec.md's object
// layout invariant requires.
func GetSchema(cd *ClData) (*FieldLayout, error) {
	cd.schemaMu.Lock()
	defer cd.schemaMu.Unlock()
	if cd.schema != nil {
		return cd.schema, nil
	}

	var inherited []FieldSlot
	if cd.Superclass != "" && cd.Superclass != "java/lang/Object" {
		superK := MethAreaFetch(cd.Superclass)
		if superK == nil || superK.Data == nil {
			return nil, errNotLoaded(cd.Superclass)
		}
		superSchema, err := GetSchema(superK.Data)
		if err != nil {
			return nil, err
		}
		inherited = append(inherited, superSchema.Slots...)
	}

	layout := &FieldLayout{ByName: make(map[string]int)}
	layout.Slots = append(layout.Slots, inherited...)

	for _, f := range cd.Fields {
		if f.IsStatic {
			continue // static fields live in the statics store, not the instance layout
		}
		name := FetchUTF8stringFromCPEntryNumber(&cd.CP, int(f.Name))
		desc := FetchUTF8stringFromCPEntryNumber(&cd.CP, int(f.Desc))
		layout.Slots = append(layout.Slots, FieldSlot{
			Name:       name,
			Descriptor: desc,
			Offset:     len(layout.Slots),
			DeclClass:  cd.Name,
		})
	}

	for i, s := range layout.Slots {
		layout.ByName[s.Name] = i
	}
	layout.SlotCount = len(layout.Slots)

	cd.schema = layout
	return layout, nil
}

// arraySingleton names the nine interned pseudo-classes the method area
// pre-registers for array element kinds (spec.md §9: "array class objects
// for the eight primitive element types plus one generic reference-array
// kind are singletons, created once at VM startup"), grounded on
// original_source's mem/schema.rs array-class table.
var arraySingletons = []string{
	"[Z", "[B", "[C", "[D", "[F", "[I", "[J", "[S", // the eight primitives
	"[L", // generic reference-array marker; concrete element type is carried on the object, not the class
}

// RegisterArraySingletons installs the nine array pseudo-classes into the
// method area if they are not already present. Called once during
// Classloader.Init.
func RegisterArraySingletons() {
	for _, name := range arraySingletons {
		if MethAreaFetch(name) != nil {
			continue
		}
		MethAreaInsert(name, &Klass{
			Status: StatusFormatChecked,
			Loader: "bootstrap",
			Data: &ClData{
				Name:        name,
				Superclass:  "java/lang/Object",
				MethodTable: map[string]*Method{},
				ClInit:      types.ClInitRun,
			},
		})
	}
}
