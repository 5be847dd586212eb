package introspect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	t.Run("SkipsUnexportedAndIgnored", func(t *testing.T) {
		table, err := Inspect(reflect.TypeFor[mixed]())
		require.NoError(t, err)

		names := make([]string, 0, table.Len())
		for _, tok := range table.Tokens {
			names = append(names, tok.Name)
		}
		assert.Equal(t, []string{"In1", "Gain", "In2", "Mix", "Raw", "Other"}, names)
	})

	t.Run("IndicesAreDense", func(t *testing.T) {
		table, err := Inspect(reflect.TypeFor[mixed]())
		require.NoError(t, err)
		for i, tok := range table.Tokens {
			assert.Equal(t, i, tok.Index)
		}
	})

	t.Run("Cached", func(t *testing.T) {
		a, err := Inspect(reflect.TypeFor[six]())
		require.NoError(t, err)
		b, err := Inspect(reflect.TypeFor[six]())
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("NotStruct", func(t *testing.T) {
		_, err := Inspect(reflect.TypeFor[int]())
		assert.ErrorIs(t, err, ErrNotStruct)

		_, err = Inspect(nil)
		assert.ErrorIs(t, err, ErrNotStruct)

		assert.Panics(t, func() { FieldsOf[[]int]() })
	})

	t.Run("BadPortTag", func(t *testing.T) {
		type bad struct {
			X int `port:"trumpet"`
		}
		_, err := Inspect(reflect.TypeFor[bad]())
		assert.Error(t, err)
	})

	t.Run("Label", func(t *testing.T) {
		f := FieldsOf[mixed]()
		toks := f.Tokens()
		assert.Equal(t, "Gain (dB)", toks[1].Label())
		assert.Equal(t, "In1", toks[0].Label())
	})
}

func TestFieldsForAll(t *testing.T) {
	f := FieldsOf[plain]()
	require.Equal(t, 4, f.Size())

	t.Run("Types", func(t *testing.T) {
		var order []int
		f.ForAllTypes(func(tok Token) { order = append(order, tok.Index) })
		assert.Equal(t, []int{0, 1, 2, 3}, order)
	})

	t.Run("InstanceDeclarationOrder", func(t *testing.T) {
		inst := plain{First: 1, Second: "two", Third: 3, Fourth: true}
		var seen []any
		f.ForAll(&inst, func(fl Field) { seen = append(seen, fl.Interface()) })
		assert.Equal(t, []any{1, "two", 3.0, true}, seen)
	})

	t.Run("VisitorWritesThrough", func(t *testing.T) {
		var inst plain
		f.ForAll(&inst, func(fl Field) {
			if p := As[int](fl); p != nil {
				*p = 42
			}
		})
		assert.Equal(t, 42, inst.First)
	})

	t.Run("Indexed", func(t *testing.T) {
		var inst plain
		var idx []int
		f.ForAllIndexed(&inst, func(fl Field, i int) {
			assert.Equal(t, fl.Index, i)
			idx = append(idx, i)
		})
		assert.Equal(t, []int{0, 1, 2, 3}, idx)
	})

	t.Run("NilInstance", func(t *testing.T) {
		calls := 0
		f.ForAll(nil, func(Field) { calls++ })
		assert.Zero(t, calls)
	})
}

func TestFieldsForNth(t *testing.T) {
	f := FieldsOf[plain]()
	inst := plain{Third: 2.5}

	var got any
	ok := f.ForNth(&inst, 2, func(fl Field) { got = fl.Interface() })
	assert.True(t, ok)
	assert.Equal(t, 2.5, got)

	t.Run("LastInRange", func(t *testing.T) {
		var name string
		assert.True(t, f.ForNth(&inst, f.Size()-1, func(fl Field) { name = fl.Name }))
		assert.Equal(t, "Fourth", name)
	})

	t.Run("OutOfRangeIsSilent", func(t *testing.T) {
		calls := 0
		assert.False(t, f.ForNth(&inst, f.Size(), func(Field) { calls++ }))
		assert.False(t, f.ForNth(&inst, -1, func(Field) { calls++ }))
		assert.False(t, f.ForNthType(f.Size(), func(Token) { calls++ }))
		assert.Zero(t, calls)
	})

	t.Run("Type", func(t *testing.T) {
		var typ reflect.Type
		assert.True(t, f.ForNthType(1, func(tok Token) { typ = tok.Type }))
		assert.Equal(t, reflect.TypeFor[string](), typ)
	})
}

func TestFieldsNone(t *testing.T) {
	f := FieldsOf[None]()
	assert.Equal(t, 0, f.Size())
	assert.Empty(t, f.Tokens())

	calls := 0
	var inst None
	f.ForAllTypes(func(Token) { calls++ })
	f.ForAll(&inst, func(Field) { calls++ })
	f.ForAllIndexed(&inst, func(Field, int) { calls++ })
	assert.False(t, f.ForNth(&inst, 0, func(Field) { calls++ }))
	assert.Zero(t, calls)
}
