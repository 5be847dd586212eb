package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gain(name string) *Parameter {
	return New(0, name).Range(-24, 24).Default(0).Unit("dB").Build()
}

func TestAutoRegistry(t *testing.T) {
	t.Run("SequentialIDs", func(t *testing.T) {
		reg := NewAutoRegistry()

		p1 := gain("Volume")
		p2 := New(0, "Bypass").Toggle().Build()
		p3 := New(0, "Cutoff").Range(20, 20000).Default(1000).Unit("Hz").Build()

		require.NoError(t, reg.Register(p1, p2, p3))

		assert.Equal(t, uint32(0), p1.ID)
		assert.Equal(t, uint32(1), p2.ID)
		assert.Equal(t, uint32(2), p3.ID)
		assert.Same(t, p1, reg.Get(0))
		assert.Same(t, p3, reg.GetByIndex(2))
		assert.Nil(t, reg.GetByIndex(3))
		assert.Equal(t, []string{"Volume", "Bypass", "Cutoff"}, reg.Names())
	})

	t.Run("ExplicitID", func(t *testing.T) {
		reg := NewAutoRegistry()

		p1 := New(10, "Volume").Build()
		p2 := New(0, "Bypass").Toggle().Build()
		require.NoError(t, reg.Register(p1, p2))

		assert.Equal(t, uint32(10), p1.ID)
		assert.Equal(t, uint32(11), p2.ID)

		err := reg.Register(New(10, "Other").Build())
		assert.ErrorContains(t, err, "already used by 'Volume'")
	})

	t.Run("GetByName", func(t *testing.T) {
		reg := NewAutoRegistry()
		p1 := gain("Master Volume")
		require.NoError(t, reg.Register(p1))

		assert.Same(t, p1, reg.GetByName("Master Volume"))
		assert.Nil(t, reg.GetByName("NonExistent"))

		id, ok := reg.GetID("Master Volume")
		assert.True(t, ok)
		assert.Equal(t, p1.ID, id)

		_, ok = reg.GetID("NonExistent")
		assert.False(t, ok)
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		reg := NewAutoRegistry()
		p1 := gain("Volume")
		require.NoError(t, reg.Register(p1))

		err := reg.Register(gain("Volume"))
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, int32(1), reg.Count())
		assert.Same(t, p1, reg.GetByName("Volume"))
	})

	t.Run("Values", func(t *testing.T) {
		reg := NewAutoRegistry()
		p := gain("Volume")
		require.NoError(t, reg.Register(p))
		p.SetValue(0.75)
		assert.Equal(t, map[uint32]float64{0: 0.75}, reg.Values())
	})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	a := New(1, "A").Build()
	b := New(2, "B").Build()
	require.NoError(t, reg.Add(a, b))
	assert.Error(t, reg.Add(New(1, "C").Build()))
	assert.Equal(t, []*Parameter{a, b}, reg.All())
}
