// Package introspect discovers the fields of processor structs and provides
// uniform iteration over them.
//
// A processor author declares plain structs of ports and controls. The first
// time a struct type is introspected its exported fields are recorded in a
// descriptor Table, each classified by Capability. Fields[T] iterates over
// all fields; Filtered[T] iterates over the fields matching a Predicate and
// maps between the two index spaces:
//
//	type Inputs struct {
//		In   port.AudioBus
//		Gain port.Slider `range:"-24,24,0"`
//		Mode port.Enum   `values:"Soft,Hard"`
//	}
//
//	controls := introspect.Filter[Inputs](introspect.HasCapability(introspect.Control))
//	controls.IndexMap() // [1 2]
//	controls.ForAllN(&in, func(f introspect.Field, i int) { ... })
//
// Tables and index maps are built once per type and cached; iteration only
// walks the precomputed positions. Operations taking an index never report
// an out of range index as an error: they visit nothing and return false.
package introspect
