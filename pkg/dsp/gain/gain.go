// Package gain converts between decibels and linear amplitude and applies
// gain to blocks of samples.
package gain

import "math"

// MinDB is the level reported for silence.
const MinDB = -200.0

// LinearToDb converts a linear amplitude to decibels. Returns MinDB for
// values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return max(20*math.Log10(linear), MinDB)
}

// DbToLinear converts decibels to linear amplitude. Values <= MinDB give 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// DbToLinear32 is the float32 version of DbToLinear.
func DbToLinear32(db float32) float32 {
	return float32(DbToLinear(float64(db)))
}

// ApplyTo writes src scaled by g into dst, up to the shorter length.
func ApplyTo(dst, src []float32, g float32) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = src[i] * g
	}
}

// RampTo writes src into dst with the gain moving linearly from start to
// end over the block. It avoids zipper noise when the gain changes between
// blocks.
func RampTo(dst, src []float32, start, end float32) {
	n := min(len(dst), len(src))
	if n == 0 {
		return
	}
	if start == end {
		ApplyTo(dst, src, end)
		return
	}
	step := (end - start) / float32(n)
	g := start
	for i := 0; i < n; i++ {
		g += step
		dst[i] = src[i] * g
	}
}

// SoftClip saturates x smoothly towards ±1.
func SoftClip(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// HardClip limits x to [-threshold, threshold].
func HardClip(x, threshold float32) float32 {
	return max(-threshold, min(threshold, x))
}

// Peak returns the largest absolute sample value.
func Peak(buf []float32) float32 {
	var p float32
	for _, x := range buf {
		if x < 0 {
			x = -x
		}
		if x > p {
			p = x
		}
	}
	return p
}
