package analysis

import (
	"fmt"
	"math"
	"strings"
)

// WindowFunc represents a window function type
type WindowFunc int

const (
	RectangularWindow WindowFunc = iota
	HannWindow
	HammingWindow
	BlackmanWindow
	BlackmanHarrisWindow
)

var windowNames = [...]string{
	RectangularWindow:    "rectangular",
	HannWindow:           "hann",
	HammingWindow:        "hamming",
	BlackmanWindow:       "blackman",
	BlackmanHarrisWindow: "blackman-harris",
}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return "unknown"
	}
	return windowNames[w]
}

// ParseWindow returns the window with the given name
func ParseWindow(s string) (WindowFunc, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for w, name := range windowNames {
		if name == s {
			return WindowFunc(w), nil
		}
	}
	return RectangularWindow, fmt.Errorf("unknown window %q", s)
}

// FFT is a radix-2 real-input FFT with a fixed size and window
type FFT struct {
	size       int
	window     WindowFunc
	windowData []float64
	real       []float64
	imag       []float64
}

// NewFFT creates a new FFT of the given size, which must be a power of two
func NewFFT(size int, window WindowFunc) *FFT {
	if size < 2 || size&(size-1) != 0 {
		panic(fmt.Sprintf("analysis: FFT size %d is not a power of two", size))
	}
	fft := &FFT{
		size:       size,
		window:     window,
		windowData: make([]float64, size),
		real:       make([]float64, size),
		imag:       make([]float64, size),
	}
	fft.calculateWindow()
	return fft
}

// Size returns the transform length
func (f *FFT) Size() int { return f.size }

// Bins returns the number of bins from DC to Nyquist
func (f *FFT) Bins() int { return f.size/2 + 1 }

// Window returns the window function applied before the transform
func (f *FFT) Window() WindowFunc { return f.window }

func (f *FFT) calculateWindow() {
	n := float64(f.size)
	for i := 0; i < f.size; i++ {
		x := 2.0 * math.Pi * float64(i) / (n - 1.0)
		switch f.window {
		case HannWindow:
			f.windowData[i] = 0.5 * (1.0 - math.Cos(x))
		case HammingWindow:
			f.windowData[i] = 0.54 - 0.46*math.Cos(x)
		case BlackmanWindow:
			f.windowData[i] = math.Max(0, 0.42-0.5*math.Cos(x)+0.08*math.Cos(2*x))
		case BlackmanHarrisWindow:
			f.windowData[i] = 0.35875 - 0.48829*math.Cos(x) + 0.14128*math.Cos(2*x) - 0.01168*math.Cos(3*x)
		default:
			f.windowData[i] = 1.0
		}
	}
}

// ForwardInto transforms input and writes the magnitude and phase of bins
// 0..Bins()-1 into the given slices, which are filled up to their length.
// Input shorter than the FFT size is zero padded; longer input is truncated.
func (f *FFT) ForwardInto(input, magnitude, phase []float64) {
	n := min(len(input), f.size)
	for i := 0; i < n; i++ {
		f.real[i] = input[i] * f.windowData[i]
		f.imag[i] = 0
	}
	for i := n; i < f.size; i++ {
		f.real[i] = 0
		f.imag[i] = 0
	}

	f.transform()

	bins := f.Bins()
	for i := 0; i < bins && i < len(magnitude); i++ {
		magnitude[i] = math.Hypot(f.real[i], f.imag[i])
	}
	for i := 0; i < bins && i < len(phase); i++ {
		phase[i] = math.Atan2(f.imag[i], f.real[i])
	}
}

// Forward transforms input and returns newly allocated magnitude and phase
// spectra
func (f *FFT) Forward(input []float64) (magnitude, phase []float64) {
	magnitude = make([]float64, f.Bins())
	phase = make([]float64, f.Bins())
	f.ForwardInto(input, magnitude, phase)
	return magnitude, phase
}

// transform is an in-place iterative Cooley-Tukey FFT
func (f *FFT) transform() {
	n := f.size
	re, im := f.real, f.imag

	j := 0
	for i := 0; i < n; i++ {
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
		m := n >> 1
		for m >= 1 && j >= m {
			j -= m
			m >>= 1
		}
		j += m
	}

	for stage := 2; stage <= n; stage <<= 1 {
		theta := -2.0 * math.Pi / float64(stage)
		wr, wi := math.Cos(theta), math.Sin(theta)
		half := stage / 2

		for k := 0; k < n; k += stage {
			cr, ci := 1.0, 0.0
			for j := 0; j < half; j++ {
				i1 := k + j
				i2 := i1 + half

				tr := cr*re[i2] - ci*im[i2]
				ti := cr*im[i2] + ci*re[i2]

				re[i2] = re[i1] - tr
				im[i2] = im[i1] - ti
				re[i1] += tr
				im[i1] += ti

				cr, ci = cr*wr-ci*wi, cr*wi+ci*wr
			}
		}
	}
}

// FrequencyOfBin returns the centre frequency of a bin
func (f *FFT) FrequencyOfBin(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(f.size)
}

// BinOfFrequency returns the bin nearest to freq, clamped to the valid bins
func (f *FFT) BinOfFrequency(freq, sampleRate float64) int {
	bin := int(math.Round(freq * float64(f.size) / sampleRate))
	return max(0, min(bin, f.Bins()-1))
}

// MagnitudeDB converts a linear magnitude to decibels, floored at -120 dB
func MagnitudeDB(mag float64) float64 {
	if mag <= 1e-6 {
		return -120.0
	}
	return 20.0 * math.Log10(mag)
}
