// Package plugin defines what a processor implements and how it describes
// itself to a host.
package plugin

// Processor is implemented by a pointer to a processor struct. The host
// binds the processor's port structs before each call; frames is
// the block length.
type Processor interface {
	Process(frames int)
}

// Initializer is implemented by processors that prepare for a sample rate
// and block size before processing starts.
type Initializer interface {
	Initialize(sampleRate float64, maxBlockSize int) error
}

// Resetter is implemented by processors with internal state to clear when
// the host stops or seeks.
type Resetter interface {
	Reset()
}

// LatencyReporter is implemented by processors that delay their output.
type LatencyReporter interface {
	LatencySamples() int
}
