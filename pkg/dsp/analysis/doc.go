// Package analysis provides the spectral and level analysis that hosts run
// on behalf of processors.
//
// FFT computes magnitude and phase spectra into caller-owned slices, so a
// host can fill a processor's spectrum ports every block without
// allocating:
//
//	fft := analysis.NewFFT(1024, analysis.HannWindow)
//	fft.ForwardInto(samples, amplitude, phase)
//
// PeakMeter follows the peak level of a signal with hold and decay, for
// bargraph outputs.
package analysis
