package introspect

// Tie returns pointers to the matching fields of inst, in predicate index
// order. Element i has the dynamic type *F for a field of type F.
func (f Filtered[T]) Tie(inst *T) []any {
	out := make([]any, 0, f.Size())
	f.ForAll(inst, func(fl Field) {
		out = append(out, fl.Addr())
	})
	return out
}

// MakeTuple returns copies of the matching fields of inst, in predicate
// index order.
func (f Filtered[T]) MakeTuple(inst *T) []any {
	out := make([]any, 0, f.Size())
	f.ForAll(inst, func(fl Field) {
		out = append(out, fl.Interface())
	})
	return out
}

// FilterTuple applies fn to each matching field of inst and collects the
// results in predicate index order.
func FilterTuple[T, R any](f Filtered[T], inst *T, fn func(Field) R) []R {
	out := make([]R, 0, f.Size())
	f.ForAll(inst, func(fl Field) {
		out = append(out, fn(fl))
	})
	return out
}

// FilterTypes applies fn to the token of each matching field. It builds
// per-match storage from types alone, before any instance exists.
func FilterTypes[T, R any](f Filtered[T], fn func(Token) R) []R {
	out := make([]R, 0, f.Size())
	f.ForAllTypes(func(t Token) {
		out = append(out, fn(t))
	})
	return out
}
