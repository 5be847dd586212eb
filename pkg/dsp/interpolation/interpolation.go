// Package interpolation reads audio at fractional positions.
package interpolation

import (
	"fmt"
	"strings"
)

// Mode selects the interpolation used by Read.
type Mode int

const (
	// Linear interpolates between the two nearest samples.
	Linear Mode = iota
	// Hermite uses the four nearest samples.
	Hermite
)

// Modes lists the names of the modes, indexed by Mode.
var Modes = []string{"Linear", "Hermite"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(Modes) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return Modes[m]
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range Modes {
		if strings.EqualFold(name, s) {
			return Mode(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown interpolation mode %q", s)
}

// Lerp interpolates between y0 and y1; frac is in [0, 1).
func Lerp(y0, y1, frac float32) float32 {
	return y0 + (y1-y0)*frac
}

// Hermite4 is 4-point, 3rd-order Hermite interpolation between y1 and y2.
func Hermite4(y0, y1, y2, y3, frac float32) float32 {
	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)
	return ((c3*frac+c2)*frac+c1)*frac + c0
}

// Read returns data at the fractional position pos. Samples outside data
// read as zero.
func Read(data []float32, pos float64, mode Mode) float32 {
	if pos < 0 || len(data) == 0 {
		return 0
	}
	i := int(pos)
	frac := float32(pos - float64(i))
	at := func(k int) float32 {
		if k < 0 || k >= len(data) {
			return 0
		}
		return data[k]
	}

	if mode == Hermite {
		return Hermite4(at(i-1), at(i), at(i+1), at(i+2), frac)
	}
	return Lerp(at(i), at(i+1), frac)
}
