package introspect

import "reflect"

// None is the empty aggregate. Introspecting it yields zero fields for any
// predicate, so generic code can treat "this processor has no outputs" like
// any other aggregate.
type None struct{}

// Field is a Token bound to one instance's field. It is only valid for the
// duration of the visitor call that receives it.
type Field struct {
	Token
	v reflect.Value
}

// Value returns the addressable reflect.Value of the field.
func (f Field) Value() reflect.Value {
	return f.v
}

// Addr returns a pointer to the field, e.g. *port.AudioChannel.
func (f Field) Addr() any {
	return f.v.Addr().Interface()
}

// Interface returns a copy of the field's value.
func (f Field) Interface() any {
	return f.v.Interface()
}

// As returns a pointer to the field if its type is F, or nil.
func As[F any](f Field) *F {
	p, _ := f.Addr().(*F)
	return p
}

// Fields introspects every field of the aggregate T.
type Fields[T any] struct {
	table *Table
}

// FieldsOf returns the introspection of T. It panics if T is not a struct.
func FieldsOf[T any]() Fields[T] {
	return Fields[T]{table: mustInspect(reflect.TypeFor[T]())}
}

// Size returns the number of fields.
func (f Fields[T]) Size() int {
	return f.table.Len()
}

// Table returns the underlying descriptor table.
func (f Fields[T]) Table() *Table {
	return f.table
}

// Tokens returns a copy of the field tokens in declaration order.
func (f Fields[T]) Tokens() []Token {
	out := make([]Token, f.Size())
	if f.table != nil {
		copy(out, f.table.Tokens)
	}
	return out
}

// ForAllTypes calls visitor with each field token in declaration order.
func (f Fields[T]) ForAllTypes(visitor func(Token)) {
	for i := 0; i < f.Size(); i++ {
		visitor(f.table.Tokens[i])
	}
}

// ForNthType calls visitor with the token of field n. It does nothing and
// returns false when n is out of range.
func (f Fields[T]) ForNthType(n int, visitor func(Token)) bool {
	if n < 0 || n >= f.Size() {
		return false
	}
	visitor(f.table.Tokens[n])
	return true
}

// ForAll calls visitor once per field of inst, in declaration order.
func (f Fields[T]) ForAll(inst *T, visitor func(Field)) {
	if inst == nil {
		return
	}
	v := reflect.ValueOf(inst).Elem()
	for i := 0; i < f.Size(); i++ {
		visitor(bind(v, f.table.Tokens[i]))
	}
}

// ForAllIndexed is ForAll with the field index passed alongside.
func (f Fields[T]) ForAllIndexed(inst *T, visitor func(Field, int)) {
	if inst == nil {
		return
	}
	v := reflect.ValueOf(inst).Elem()
	for i := 0; i < f.Size(); i++ {
		visitor(bind(v, f.table.Tokens[i]), i)
	}
}

// ForNth calls visitor with field n of inst only. An out of range n is not
// an error: nothing is visited and ForNth returns false.
func (f Fields[T]) ForNth(inst *T, n int, visitor func(Field)) bool {
	if inst == nil || n < 0 || n >= f.Size() {
		return false
	}
	visitor(bind(reflect.ValueOf(inst).Elem(), f.table.Tokens[n]))
	return true
}

func bind(v reflect.Value, tok Token) Field {
	return Field{Token: tok, v: v.Field(tok.goIndex)}
}
