package debug

import (
	"fmt"
	"math"
)

// Thresholds used by Check.
const (
	ClipThreshold    = 0.99
	DCThreshold      = 0.01
	SilenceThreshold = 0.0001
)

// BufferStats summarizes one channel of audio.
type BufferStats struct {
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	InfCount       int
	ZeroCrossings  int
}

// Silent reports whether the buffer is below the silence threshold.
func (s BufferStats) Silent() bool {
	return s.RMS < SilenceThreshold
}

// Analyze computes statistics for a buffer. Non-finite samples are counted
// and excluded from the other figures.
func Analyze(buffer []float32) BufferStats {
	var s BufferStats
	if len(buffer) == 0 {
		return s
	}

	var sum, sumSquares float64
	var last float32
	finite := 0
	for _, x := range buffer {
		switch {
		case math.IsNaN(float64(x)):
			s.NaNCount++
			continue
		case math.IsInf(float64(x), 0):
			s.InfCount++
			continue
		}

		abs := float32(math.Abs(float64(x)))
		if abs > s.Peak {
			s.Peak = abs
		}
		if abs >= ClipThreshold {
			s.ClippedSamples++
		}
		if finite > 0 && (last < 0) != (x < 0) {
			s.ZeroCrossings++
		}
		sum += float64(x)
		sumSquares += float64(x) * float64(x)
		last = x
		finite++
	}

	if finite > 0 {
		s.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
		s.DC = float32(sum / float64(finite))
	}
	return s
}

// Check returns a description of every problem found in buffer.
func Check(buffer []float32, name string) []string {
	s := Analyze(buffer)

	var issues []string
	if s.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN values", name, s.NaNCount))
	}
	if s.InfCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d infinite values", name, s.InfCount))
	}
	if s.ClippedSamples > 0 {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, s.ClippedSamples))
	}
	if math.Abs(float64(s.DC)) > DCThreshold {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, s.DC))
	}
	return issues
}

// CheckBuffer logs every problem found in buffer as a warning on l.
func (l *Logger) CheckBuffer(buffer []float32, name string) bool {
	issues := Check(buffer, name)
	for _, issue := range issues {
		l.log(LogLevelWarn, "%s", issue)
	}
	return len(issues) == 0
}
