package binding

import (
	"github.com/justyntemme/avgo/pkg/dsp/analysis"
	"github.com/justyntemme/avgo/pkg/framework/bus"
	"github.com/justyntemme/avgo/pkg/framework/process"
	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

// buildBuses declares one bus per audio port. The first port of each
// direction becomes the main bus.
func (b *Binding[I, O]) buildBuses() error {
	builder := bus.NewBuilder()
	var err error
	addPorts(b.audioIn, bus.DirectionInput, builder, &err)
	addPorts(b.audioOut, bus.DirectionOutput, builder, &err)
	if err != nil {
		return err
	}

	b.buses, err = builder.Build()
	if err != nil {
		return err
	}
	b.mb = process.NewMultiBusContext(nil, b.buses)
	return nil
}

func addPorts[T any](set introspect.Filtered[T], dir bus.Direction, builder *bus.Builder, err *error) {
	for i := 0; i < set.Size(); i++ {
		tok, _ := set.Token(i)
		m, merr := port.MetaOf(tok)
		if merr != nil {
			*err = merr
			return
		}
		builder.WithPort(dir, m.Name, int32(m.Channels), i)
	}
}

// spectrumSlot holds the transform and buffers of one spectrum port.
type spectrumSlot struct {
	fft     *analysis.FFT
	samples []float64
	amp     []float64
	phase   []float64
}

func (s *spectrumSlot) analyze(p *port.SpectrumChannel, in []float32) {
	n := min(len(in), len(s.samples))
	for i := 0; i < n; i++ {
		s.samples[i] = float64(in[i])
	}
	p.Samples = s.samples[:n]
	s.fft.ForwardInto(p.Samples, s.amp, s.phase)
	p.Spectrum = port.Spectrum{Amplitude: s.amp, Phase: s.phase}
}

func (b *Binding[I, O]) buildSpectra() {
	size, window := b.cfg.FFT.Size, b.cfg.Window()
	b.spectra = introspect.FilterTuple(b.spectrumIn, b.in, func(introspect.Field) spectrumSlot {
		fft := analysis.NewFFT(size, window)
		return spectrumSlot{
			fft:     fft,
			samples: make([]float64, b.cfg.MaxBlockSize),
			amp:     make([]float64, fft.Bins()),
			phase:   make([]float64, fft.Bins()),
		}
	})

	// Spectrum ports are also audio inputs; index their slots by audio
	// port index.
	b.spectrumOf = make([]int, b.audioIn.Size())
	for i := range b.spectrumOf {
		b.spectrumOf[i] = b.spectrumIn.Unmap(b.audioIn.Map(i))
	}
}

// bindInputs points the audio input ports at the channels of their buses
// and computes spectra.
func (b *Binding[I, O]) bindInputs() {
	for i := range b.mb.InputBuses {
		bb := &b.mb.InputBuses[i]
		idx, channels := bb.BusInfo.Port, bb.Channels
		b.audioIn.ForNthMapped(b.in, idx, func(f introspect.Field) {
			switch p := f.Addr().(type) {
			case *port.AudioChannel:
				p.Samples = first(channels)
			case *port.AudioBus:
				p.Channels = channels
			case *port.SpectrumChannel:
				if s := b.spectrumOf[idx]; s >= 0 {
					b.spectra[s].analyze(p, first(channels))
				}
			case *[]float32:
				*p = first(channels)
			case *[][]float32:
				*p = channels
			}
		})
	}
}

func (b *Binding[I, O]) bindOutputs() {
	for i := range b.mb.OutputBuses {
		bb := &b.mb.OutputBuses[i]
		channels := bb.Channels
		b.audioOut.ForNthMapped(b.out, bb.BusInfo.Port, func(f introspect.Field) {
			switch p := f.Addr().(type) {
			case *port.AudioChannel:
				p.Samples = first(channels)
			case *port.AudioBus:
				p.Channels = channels
			case *[]float32:
				*p = first(channels)
			case *[][]float32:
				*p = channels
			}
		})
	}
}

func first(channels [][]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	return channels[0]
}

// release unbinds every audio port and releases impulse controls, so no
// port refers to host memory between blocks.
func (b *Binding[I, O]) release() {
	b.audioIn.ForAll(b.in, unbind)
	b.audioOut.ForAll(b.out, unbind)
	b.mb.Context = nil

	for _, i := range b.impulses {
		b.controlIn.ForNthMapped(b.in, i, func(f introspect.Field) {
			if imp, ok := f.Addr().(port.Impulse); ok {
				imp.Reset()
			}
		})
		for _, p := range b.controlParams[i] {
			p.SetPlainValue(0)
		}
	}
}

func unbind(f introspect.Field) {
	switch p := f.Addr().(type) {
	case *port.AudioChannel:
		p.Samples = nil
	case *port.AudioBus:
		p.Channels = nil
	case *port.SpectrumChannel:
		*p = port.SpectrumChannel{}
	case *[]float32:
		*p = nil
	case *[][]float32:
		*p = nil
	}
}
