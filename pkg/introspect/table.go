package introspect

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotStruct is returned when introspecting a type that is not a struct.
var ErrNotStruct = errors.New("introspect: type is not a struct")

// Token describes one field of an aggregate without referring to any
// instance of it.
type Token struct {
	// Index is the field index: the position among all introspected fields.
	Index int
	// Name is the Go field name.
	Name string
	// Type is the field's declared type.
	Type reflect.Type
	// Capability is resolved once when the table is built.
	Capability Capability
	// Tag is the raw struct tag.
	Tag reflect.StructTag
	// Offset is the byte offset of the field within the struct.
	Offset uintptr

	// goIndex is the position in reflect's field list, which also counts
	// unexported and skipped fields.
	goIndex int
}

// Label returns the `name` tag if present, otherwise the field name.
func (t Token) Label() string {
	if name := t.Tag.Get("name"); name != "" {
		return name
	}
	return t.Name
}

// Table is the descriptor table of one struct type.
type Table struct {
	Type   reflect.Type
	Tokens []Token
}

// Len returns the number of introspected fields.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Tokens)
}

var tables sync.Map // reflect.Type -> *Table

// Inspect returns the descriptor table for a struct type, building and
// caching it on first use. Exported fields are listed in declaration order;
// unexported fields and fields tagged `port:"-"` are left out.
func Inspect(t reflect.Type) (*Table, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	if cached, ok := tables.Load(t); ok {
		return cached.(*Table), nil
	}

	table := &Table{Type: t, Tokens: make([]Token, 0, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("port") == "-" {
			continue
		}
		c, err := resolveCapability(sf)
		if err != nil {
			return nil, fmt.Errorf("introspect: field %s.%s: %w", t.Name(), sf.Name, err)
		}
		table.Tokens = append(table.Tokens, Token{
			Index:      len(table.Tokens),
			Name:       sf.Name,
			Type:       sf.Type,
			Capability: c,
			Tag:        sf.Tag,
			Offset:     sf.Offset,
			goIndex:    i,
		})
	}

	actual, _ := tables.LoadOrStore(t, table)
	return actual.(*Table), nil
}

// mustInspect is Inspect for generic entry points where a non-struct type
// argument is a programming error.
func mustInspect(t reflect.Type) *Table {
	table, err := Inspect(t)
	if err != nil {
		panic(err)
	}
	return table
}
