package port

import "github.com/justyntemme/avgo/pkg/introspect"

// SoundfileView is what a processor sees of a loaded sound file. Data holds
// one slice per channel; the host owns the memory.
type SoundfileView struct {
	Data     [][]float32
	Frames   int64
	Channels int32
	Filename string
}

// Soundfile is an input port the host fills with a RAM-loaded sound file.
type Soundfile struct {
	View SoundfileView
}

// Capability implements introspect.Capable.
func (Soundfile) Capability() introspect.Capability { return introspect.Soundfile }

// Loaded reports whether a non-empty file is bound.
func (s *Soundfile) Loaded() bool {
	return s.View.Data != nil && s.View.Channels > 0 && s.View.Frames > 0
}

// Channel returns the samples of channel i, or nil.
func (s *Soundfile) Channel(i int) []float32 {
	if i < 0 || i >= len(s.View.Data) {
		return nil
	}
	return s.View.Data[i]
}

// Channels returns the channel count.
func (s *Soundfile) Channels() int {
	return int(s.View.Channels)
}

// Frames returns the number of frames per channel.
func (s *Soundfile) Frames() int64 {
	return s.View.Frames
}

// Reset unbinds the file.
func (s *Soundfile) Reset() {
	s.View = SoundfileView{}
}
