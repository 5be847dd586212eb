// Package port provides the field types processors declare in their Inputs
// and Outputs structs. Each type reports its introspect.Capability, so a
// host can find and bind it without any registration.
package port

import "github.com/justyntemme/avgo/pkg/introspect"

// AudioChannel is one channel of audio. The host points Samples at its
// buffer for the duration of a tick.
type AudioChannel struct {
	Samples []float32
}

// Capability implements introspect.Capable.
func (AudioChannel) Capability() introspect.Capability { return introspect.AudioChannel }

// Frames returns the number of samples in the current tick.
func (c *AudioChannel) Frames() int {
	return len(c.Samples)
}

// AudioBus is a multi-channel audio port. The requested channel count is
// read from the `channels` tag and defaults to 2.
type AudioBus struct {
	Channels [][]float32
}

// Capability implements introspect.Capable.
func (AudioBus) Capability() introspect.Capability { return introspect.AudioBus }

// ChannelCount returns the number of channels bound for the current tick.
func (b *AudioBus) ChannelCount() int {
	return len(b.Channels)
}

// Channel returns channel i, or nil if it is not bound.
func (b *AudioBus) Channel(i int) []float32 {
	if i < 0 || i >= len(b.Channels) {
		return nil
	}
	return b.Channels[i]
}

// Frames returns the number of samples per channel in the current tick.
func (b *AudioBus) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Spectrum is the FFT of a block, one entry per bin from DC to Nyquist.
// The host chooses the transform size and window.
type Spectrum struct {
	Amplitude []float64
	Phase     []float64
}

// SpectrumChannel is an audio input whose spectrum the host computes before
// each tick.
type SpectrumChannel struct {
	Samples  []float64
	Spectrum Spectrum
}

// Capability implements introspect.Capable.
func (SpectrumChannel) Capability() introspect.Capability { return introspect.Spectrum }

// Bins returns the number of spectrum bins available.
func (s *SpectrumChannel) Bins() int {
	return len(s.Spectrum.Amplitude)
}

// Value is a plain value port with no widget and no range.
type Value[T any] struct {
	Value T
}

// Capability implements introspect.Capable.
func (Value[T]) Capability() introspect.Capability { return introspect.Value }

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.Value
}

// Set replaces the current value.
func (v *Value[T]) Set(t T) {
	v.Value = t
}
