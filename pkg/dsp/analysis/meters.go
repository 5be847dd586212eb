package analysis

import "math"

// PeakMeter measures peak signal levels with hold and decay
type PeakMeter struct {
	peak       float64
	hold       float64
	holdTime   float64
	decayRate  float64
	sampleRate float64
	holdCount  int
}

// NewPeakMeter creates a new peak meter
func NewPeakMeter(sampleRate float64) *PeakMeter {
	return &PeakMeter{
		sampleRate: sampleRate,
		holdTime:   3.0,  // seconds
		decayRate:  20.0, // dB/second
	}
}

// SetSampleRate changes the sample rate used for hold and decay timing
func (pm *PeakMeter) SetSampleRate(sampleRate float64) {
	pm.sampleRate = sampleRate
}

// SetHoldTime sets the peak hold time in seconds
func (pm *PeakMeter) SetHoldTime(seconds float64) {
	pm.holdTime = seconds
}

// SetDecayRate sets the peak decay rate in dB/second
func (pm *PeakMeter) SetDecayRate(dbPerSecond float64) {
	pm.decayRate = dbPerSecond
}

// Process updates the meter with a block of samples
func (pm *PeakMeter) Process(samples []float32) {
	blockPeak := 0.0
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > blockPeak {
			blockPeak = a
		}
	}

	decayPerSample := pm.decayRate / pm.sampleRate / 20.0 * math.Ln10
	pm.peak *= math.Exp(-decayPerSample * float64(len(samples)))
	if blockPeak > pm.peak {
		pm.peak = blockPeak
	}

	if blockPeak > pm.hold {
		pm.hold = blockPeak
		pm.holdCount = int(pm.holdTime * pm.sampleRate)
	} else {
		pm.holdCount -= len(samples)
		if pm.holdCount <= 0 {
			pm.hold = pm.peak
			pm.holdCount = 0
		}
	}
}

// Peak returns the current peak level (linear)
func (pm *PeakMeter) Peak() float64 {
	return pm.peak
}

// PeakDB returns the current peak level in decibels
func (pm *PeakMeter) PeakDB() float64 {
	if pm.peak > 0 {
		return 20.0 * math.Log10(pm.peak)
	}
	return math.Inf(-1)
}

// Hold returns the held peak level (linear)
func (pm *PeakMeter) Hold() float64 {
	return pm.hold
}

// Reset clears the peak and hold values
func (pm *PeakMeter) Reset() {
	pm.peak = 0
	pm.hold = 0
	pm.holdCount = 0
}
