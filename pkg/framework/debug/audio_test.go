package debug

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, BufferStats{}, Analyze(nil))
	})

	t.Run("Sine", func(t *testing.T) {
		buf := make([]float32, 1000)
		for i := range buf {
			buf[i] = 0.5 * float32(math.Sin(2*math.Pi*10*float64(i)/float64(len(buf))))
		}
		s := Analyze(buf)
		assert.InDelta(t, 0.5, s.Peak, 0.01)
		assert.InDelta(t, 0.5/math.Sqrt2, s.RMS, 0.01)
		assert.InDelta(t, 0, s.DC, 0.001)
		assert.Zero(t, s.ClippedSamples)
		assert.InDelta(t, 20, s.ZeroCrossings, 2)
		assert.False(t, s.Silent())
	})

	t.Run("NonFinite", func(t *testing.T) {
		buf := []float32{0.1, float32(math.NaN()), float32(math.Inf(1)), 0.1}
		s := Analyze(buf)
		assert.Equal(t, 1, s.NaNCount)
		assert.Equal(t, 1, s.InfCount)
		assert.InDelta(t, 0.1, s.RMS, 1e-6)
	})

	t.Run("Silent", func(t *testing.T) {
		assert.True(t, Analyze(make([]float32, 64)).Silent())
	})
}

func TestCheck(t *testing.T) {
	clean := []float32{0.1, -0.1, 0.1, -0.1}
	assert.Empty(t, Check(clean, "clean"))

	dirty := []float32{1.0, 1.0, float32(math.NaN())}
	issues := Check(dirty, "out")
	assert.Len(t, issues, 3)
	assert.Contains(t, issues[0], "NaN")

	var buf bytes.Buffer
	l := New(&buf, "", FlagLevel)
	assert.False(t, l.CheckBuffer(dirty, "out"))
	assert.Contains(t, buf.String(), "clipping detected")
	assert.Contains(t, buf.String(), "level=WARN")
}
