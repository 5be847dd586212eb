// Package process provides the per-block processing context a host hands to
// a binding.
package process

import (
	"github.com/justyntemme/avgo/pkg/framework/debug"
	"github.com/justyntemme/avgo/pkg/framework/param"
)

// Context carries one block of audio. Input and Output hold the channels of
// every active bus back to back, in bus order.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Block counts the blocks processed with this context.
	Block uint64

	workBuffer []float32
	params     *param.Registry
	logger     *debug.Logger
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int, params *param.Registry) *Context {
	return &Context{
		workBuffer: make([]float32, maxBlockSize),
		params:     params,
		logger:     debug.Default(),
	}
}

// SetLogger replaces the logger used for parameter automation messages
func (c *Context) SetLogger(l *debug.Logger) {
	c.logger = l
}

// Param returns the current value of a parameter (0-1 normalized)
func (c *Context) Param(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// WorkBuffer returns the pre-allocated work buffer sized to the current
// block
func (c *Context) WorkBuffer() []float32 {
	n := c.NumSamples()
	if n > len(c.workBuffer) {
		n = len(c.workBuffer)
	}
	return c.workBuffer[:n]
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	numChannels := min(c.NumInputChannels(), c.NumOutputChannels())
	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// SetParameterAtOffset sets a parameter value for the current block. The
// change applies to the whole block.
// TODO: split the block at sampleOffset for sample-accurate automation.
func (c *Context) SetParameterAtOffset(paramID uint32, value float64, sampleOffset int) {
	if c.params == nil {
		return
	}
	if p := c.params.Get(paramID); p != nil {
		p.SetValue(value)
		if c.logger != nil {
			c.logger.Debug("automation: id=%d value=%.6f offset=%d plain=%.3f",
				paramID, value, sampleOffset, p.GetPlainValue())
		}
	}
}
