package state

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/avgo/pkg/framework/param"
)

func newRegistry(t *testing.T) (*param.Registry, *param.Parameter, *param.Parameter) {
	t.Helper()
	reg := param.NewRegistry()
	gain := param.New(0, "Gain").Range(-24, 24).Default(0).Build()
	meter := param.New(1, "Level").ReadOnly().Build()
	require.NoError(t, reg.Add(gain, meter))
	return reg, gain, meter
}

func TestSaveLoad(t *testing.T) {
	reg, gain, meter := newRegistry(t)
	gain.SetValue(0.8)
	meter.SetValue(0.3)

	m := NewManager(reg)
	m.SetCustomState(func() map[string]string {
		return map[string]string{"Path": "kick.wav", "Sample": "/tmp/loop.wav"}
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	reg2, gain2, meter2 := newRegistry(t)
	var loaded map[string]string
	m2 := NewManager(reg2)
	m2.SetCustomState(nil, func(values map[string]string) error {
		loaded = values
		return nil
	})
	require.NoError(t, m2.Load(&buf))

	assert.Equal(t, 0.8, gain2.GetValue())
	assert.Equal(t, 0.0, meter2.GetValue(), "read-only parameters are not restored")
	assert.Equal(t, map[string]string{"Path": "kick.wav", "Sample": "/tmp/loop.wav"}, loaded)
}

func TestLoadErrors(t *testing.T) {
	reg, _, _ := newRegistry(t)
	m := NewManager(reg)

	t.Run("BadHeader", func(t *testing.T) {
		err := m.Load(bytes.NewReader([]byte("VST3GO\x01\x00\x00\x00")))
		assert.True(t, errors.Is(err, ErrInvalidFormat))
	})

	t.Run("Truncated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, m.Save(&buf))
		data := buf.Bytes()
		assert.Error(t, m.Load(bytes.NewReader(data[:len(data)-2])))
	})

	t.Run("NewerVersion", func(t *testing.T) {
		assert.ErrorContains(t, m.Load(bytes.NewReader([]byte("AVGO\x09\x00\x00\x00"))), "newer")
	})

	t.Run("CustomLoadError", func(t *testing.T) {
		src := NewManager(reg)
		src.SetCustomState(func() map[string]string { return map[string]string{"k": "v"} }, nil)
		var buf bytes.Buffer
		require.NoError(t, src.Save(&buf))

		dst := NewManager(reg)
		boom := errors.New("boom")
		dst.SetCustomState(nil, func(map[string]string) error { return boom })
		assert.ErrorIs(t, dst.Load(&buf), boom)
	})
}
