package introspect

import (
	"errors"
	"reflect"
	"sync"
)

// ErrMultipleInstances is returned by ForAllUnlessInstances when given more
// than one instance: the early stop is only defined for a single instance.
var ErrMultipleInstances = errors.New("introspect: cannot use ForAllUnless when there are multiple instances")

type filterKey struct {
	t   reflect.Type
	key any
}

var filters sync.Map // filterKey -> Sequence

// Filtered introspects the fields of T matching a predicate.
//
// Two indices are used throughout: the field index is the position among
// all fields of T, the predicate index is the position among matching
// fields only. IndexMap translates the latter into the former.
type Filtered[T any] struct {
	table    *Table
	pred     Predicate
	indexMap Sequence
}

// Filter returns the introspection of the fields of T matching p. It panics
// if T is not a struct.
func Filter[T any](p Predicate) Filtered[T] {
	table := mustInspect(reflect.TypeFor[T]())
	return Filtered[T]{table: table, pred: p, indexMap: indexMapFor(table, p)}
}

func indexMapFor(table *Table, p Predicate) Sequence {
	if table.Len() == 0 {
		return Sequence{}
	}
	ck := p.cacheKey()
	key := filterKey{t: table.Type, key: ck}
	if ck != nil {
		if cached, ok := filters.Load(key); ok {
			return cached.(Sequence)
		}
	}

	seq := Select(Iota(table.Len()), func(i int) bool {
		return p.Match(table.Tokens[i])
	})

	if ck != nil {
		actual, _ := filters.LoadOrStore(key, seq)
		return actual.(Sequence)
	}
	return seq
}

// Size returns the number of matching fields.
func (f Filtered[T]) Size() int {
	return len(f.indexMap)
}

// Predicate returns the predicate this introspection was built with.
func (f Filtered[T]) Predicate() Predicate {
	return f.pred
}

// IndexMap returns a copy of the predicate-index to field-index map.
func (f Filtered[T]) IndexMap() Sequence {
	return Sequence(f.indexMap.Array())
}

// Map translates predicate index i into a field index, or -1.
func (f Filtered[T]) Map(i int) int {
	return f.indexMap.At(i)
}

// Unmap translates field index j into a predicate index, or -1 if field j
// does not match.
func (f Filtered[T]) Unmap(j int) int {
	return IndexOf(j, f.indexMap)
}

// Token returns the token of the i-th matching field.
func (f Filtered[T]) Token(i int) (Token, bool) {
	k := f.Map(i)
	if k < 0 {
		return Token{}, false
	}
	return f.table.Tokens[k], true
}

// ForAllTypes calls visitor with the token of each matching field.
func (f Filtered[T]) ForAllTypes(visitor func(Token)) {
	for _, k := range f.indexMap {
		visitor(f.table.Tokens[k])
	}
}

// ForNthRawType calls visitor with the token at field index n, whether or
// not it matches, even when no field matches. Returns false when n is out of
// range.
func (f Filtered[T]) ForNthRawType(n int, visitor func(Token)) bool {
	if n < 0 || n >= f.table.Len() {
		return false
	}
	visitor(f.table.Tokens[n])
	return true
}

// ForNthMappedType calls visitor with the token of the n-th matching field.
func (f Filtered[T]) ForNthMappedType(n int, visitor func(Token)) bool {
	k := f.Map(n)
	if k < 0 {
		return false
	}
	visitor(f.table.Tokens[k])
	return true
}

// ForAll calls visitor with each matching field of inst, in predicate
// index order.
func (f Filtered[T]) ForAll(inst *T, visitor func(Field)) {
	if inst == nil || f.Size() == 0 {
		return
	}
	v := reflect.ValueOf(inst).Elem()
	for _, k := range f.indexMap {
		visitor(bind(v, f.table.Tokens[k]))
	}
}

// ForAllN is ForAll with the predicate index of each field.
func (f Filtered[T]) ForAllN(inst *T, visitor func(field Field, pred int)) {
	if inst == nil || f.Size() == 0 {
		return
	}
	v := reflect.ValueOf(inst).Elem()
	for i, k := range f.indexMap {
		visitor(bind(v, f.table.Tokens[k]), i)
	}
}

// ForAllN2 is ForAll with both the predicate index and the field index of
// each field.
func (f Filtered[T]) ForAllN2(inst *T, visitor func(field Field, pred, index int)) {
	if inst == nil || f.Size() == 0 {
		return
	}
	v := reflect.ValueOf(inst).Elem()
	for i, k := range f.indexMap {
		visitor(bind(v, f.table.Tokens[k]), i, k)
	}
}

// ForAllUnless visits matching fields until visitor returns false. It
// returns false if the visitation was stopped, true otherwise.
func (f Filtered[T]) ForAllUnless(inst *T, visitor func(Field) bool) bool {
	if inst == nil || f.Size() == 0 {
		return true
	}
	v := reflect.ValueOf(inst).Elem()
	for _, k := range f.indexMap {
		if !visitor(bind(v, f.table.Tokens[k])) {
			return false
		}
	}
	return true
}

// ForNthRaw calls visitor with field n of inst, where n is a field index,
// whether or not the field matches, even when no field matches. Out of range
// n visits nothing and returns false.
func (f Filtered[T]) ForNthRaw(inst *T, n int, visitor func(Field)) bool {
	if inst == nil || n < 0 || n >= f.table.Len() {
		return false
	}
	visitor(bind(reflect.ValueOf(inst).Elem(), f.table.Tokens[n]))
	return true
}

// ForNthMapped calls visitor with the n-th matching field of inst. Out of
// range n visits nothing and returns false.
func (f Filtered[T]) ForNthMapped(inst *T, n int, visitor func(Field)) bool {
	k := f.Map(n)
	if inst == nil || k < 0 {
		return false
	}
	visitor(bind(reflect.ValueOf(inst).Elem(), f.table.Tokens[k]))
	return true
}

// Get returns the n-th matching field of inst.
func (f Filtered[T]) Get(inst *T, n int) (Field, bool) {
	var out Field
	ok := f.ForNthMapped(inst, n, func(fl Field) { out = fl })
	return out, ok
}

// ForAllInstances runs ForAll over each instance in turn.
func (f Filtered[T]) ForAllInstances(insts []T, visitor func(Field)) {
	if f.Size() == 0 {
		return
	}
	for i := range insts {
		f.ForAll(&insts[i], visitor)
	}
}

// ForAllNInstances runs ForAllN over each instance in turn. The predicate
// index restarts at 0 for every instance.
func (f Filtered[T]) ForAllNInstances(insts []T, visitor func(field Field, pred int)) {
	if f.Size() == 0 {
		return
	}
	for i := range insts {
		f.ForAllN(&insts[i], visitor)
	}
}

// ForAllUnlessInstances is ForAllUnless over a slice of instances. It only
// accepts zero or one instance when there is anything to visit.
func (f Filtered[T]) ForAllUnlessInstances(insts []T, visitor func(Field) bool) (bool, error) {
	if f.Size() == 0 {
		return true, nil
	}
	if len(insts) > 1 {
		return false, ErrMultipleInstances
	}
	if len(insts) == 0 {
		return true, nil
	}
	return f.ForAllUnless(&insts[0], visitor), nil
}
