package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTie(t *testing.T) {
	inst := mixed{Gain: testKnob{Value: 3}, Mix: testKnob{Value: 4}}
	f := Filter[mixed](controlPred)

	refs := f.Tie(&inst)
	require.Len(t, refs, f.Size())

	for i, ref := range refs {
		p, ok := ref.(*testKnob)
		require.True(t, ok)
		p.Value *= 10
		fl, _ := f.Get(&inst, i)
		assert.Equal(t, f.Map(i), fl.Index)
	}
	assert.Equal(t, 30.0, inst.Gain.Value)
	assert.Equal(t, 40.0, inst.Mix.Value)
}

func TestMakeTuple(t *testing.T) {
	inst := mixed{Gain: testKnob{Value: 3}, Mix: testKnob{Value: 4}}
	f := Filter[mixed](controlPred)

	vals := f.MakeTuple(&inst)
	require.Len(t, vals, f.Size())
	assert.Equal(t, testKnob{Value: 3}, vals[0])
	assert.Equal(t, testKnob{Value: 4}, vals[1])

	inst.Gain.Value = 99
	assert.Equal(t, testKnob{Value: 3}, vals[0], "tuple holds copies")
}

func TestFilterTuple(t *testing.T) {
	var inst mixed
	f := Filter[mixed](audioPred)

	names := FilterTuple(f, &inst, func(fl Field) string { return fl.Name })
	require.Len(t, names, f.Size())
	assert.Equal(t, []string{"In1", "In2", "Raw"}, names)

	// One pointer vector per matching field, as a host builds per-port storage.
	storage := FilterTuple(f, &inst, func(Field) [][]float32 { return make([][]float32, 0, 2) })
	assert.Len(t, storage, 3)
	for _, s := range storage {
		assert.Equal(t, 2, cap(s))
	}

	types := FilterTypes(f, func(tok Token) string { return tok.Type.String() })
	assert.Equal(t, []string{"introspect.testAudio", "introspect.testAudio", "[]float32"}, types)
}
