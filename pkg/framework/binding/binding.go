// Package binding connects a processor's port structs to a host. It derives
// parameters and buses from the ports and, every block, moves audio, spectra,
// sound files and control values in and out of them.
package binding

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/justyntemme/avgo/pkg/dsp/analysis"
	"github.com/justyntemme/avgo/pkg/framework/bus"
	"github.com/justyntemme/avgo/pkg/framework/config"
	"github.com/justyntemme/avgo/pkg/framework/debug"
	"github.com/justyntemme/avgo/pkg/framework/param"
	"github.com/justyntemme/avgo/pkg/framework/plugin"
	"github.com/justyntemme/avgo/pkg/framework/process"
	"github.com/justyntemme/avgo/pkg/framework/state"
	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

var (
	// ErrNoProcessor is returned by New when given a nil processor.
	ErrNoProcessor = errors.New("binding: no processor")
	// ErrInvalidControl is returned when a control value is rejected.
	ErrInvalidControl = errors.New("binding: invalid control value")
	// ErrBlockTooLarge is returned by Process for blocks above the
	// configured maximum block size.
	ErrBlockTooLarge = errors.New("binding: block exceeds max block size")
)

// Processor is what a binding drives. Ports returns the processor's input
// and output structs; a processor without outputs (or inputs) uses
// introspect.None for that side.
type Processor[I, O any] interface {
	plugin.Processor
	Ports() (inputs *I, outputs *O)
}

// Host is the type-erased view of a Binding, for code that manages
// processors of different types.
type Host interface {
	Info() plugin.Info
	Parameters() *param.AutoRegistry
	Buses() *bus.Configuration
	WorkingSets() []WorkingSet
	NewContext() *process.Context
	Process(ctx *process.Context) error
	Reset()
	SetControl(name string, plain float64) error
	SetText(name, text string) error
	SetSoundfile(name string, h Handle) error
	LoadSoundfile(name, path string) error
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}

// Loader reads a sound file into one slice per channel.
type Loader func(path string) ([][]float32, error)

// Option configures a Binding.
type Option func(*options)

type options struct {
	logger *debug.Logger
	loader Loader
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *debug.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSoundfileLoader sets the loader used for sound file paths, including
// the paths restored by LoadState.
func WithSoundfileLoader(fn Loader) Option {
	return func(o *options) { o.loader = fn }
}

// Working set predicates.
var (
	audioInputs  = introspect.HasCapability(introspect.AudioChannel, introspect.AudioBus, introspect.Spectrum)
	audioOutputs = introspect.HasCapability(introspect.AudioChannel, introspect.AudioBus)
	spectra      = introspect.HasCapability(introspect.Spectrum)
	soundfiles   = introspect.HasCapability(introspect.Soundfile)
	values       = introspect.HasCapability(introspect.Value)
	controls     = introspect.And(introspect.HasCapability(introspect.Control), introspect.Implements[port.Control]())
	texts        = introspect.And(introspect.HasCapability(introspect.Control), introspect.Implements[port.Text]())
)

// Binding drives one processor instance.
type Binding[I, O any] struct {
	proc   Processor[I, O]
	in     *I
	out    *O
	info   plugin.Info
	cfg    config.Config
	logger *debug.Logger
	loader Loader

	audioIn     introspect.Filtered[I]
	spectrumIn  introspect.Filtered[I]
	soundfileIn introspect.Filtered[I]
	controlIn   introspect.Filtered[I]
	textIn      introspect.Filtered[I]
	audioOut    introspect.Filtered[O]
	valueOut    introspect.Filtered[O]
	meterOut    introspect.Filtered[O]

	params        *param.AutoRegistry
	controlMeta   []port.Meta
	controlParams [][]*param.Parameter
	impulses      []int
	meterParams   []*param.Parameter
	valueParams   []*param.Parameter

	buses      *bus.Configuration
	mb         *process.MultiBusContext
	spectra    []spectrumSlot
	spectrumOf []int

	soundfiles *SoundfileStorage[I]
	state      *state.Manager
	metrics    *metrics
}

// New binds proc. The processor's port structs are introspected, its
// parameters and buses derived, and the controls set to their defaults.
func New[I, O any](proc Processor[I, O], cfg config.Config, info plugin.Info, opts ...Option) (*Binding[I, O], error) {
	if proc == nil {
		return nil, ErrNoProcessor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := info.ValidateUID(); err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = cfg.Logger()
	}

	in, out := proc.Ports()
	if in == nil {
		in = new(I)
	}
	if out == nil {
		out = new(O)
	}

	b := &Binding[I, O]{
		proc:   proc,
		in:     in,
		out:    out,
		info:   info,
		cfg:    cfg,
		logger: o.logger.With("processor", info.ID),
		loader: o.loader,

		audioIn:     introspect.Filter[I](audioInputs),
		spectrumIn:  introspect.Filter[I](spectra),
		soundfileIn: introspect.Filter[I](soundfiles),
		controlIn:   introspect.Filter[I](controls),
		textIn:      introspect.Filter[I](texts),
		audioOut:    introspect.Filter[O](audioOutputs),
		valueOut:    introspect.Filter[O](values),
		meterOut:    introspect.Filter[O](controls),
	}

	if err := b.buildParameters(); err != nil {
		return nil, fmt.Errorf("binding %s: %w", info.ID, err)
	}
	if err := b.buildBuses(); err != nil {
		return nil, fmt.Errorf("binding %s: %w", info.ID, err)
	}
	b.buildSpectra()
	if err := b.initText(); err != nil {
		return nil, fmt.Errorf("binding %s: %w", info.ID, err)
	}

	b.soundfiles = NewSoundfileStorage(b.in, b.soundfileIn)
	b.soundfiles.Init()

	b.state = state.NewManager(b.params.Registry)
	b.state.SetCustomState(b.saveCustom, b.loadCustom)

	if cfg.Metrics.Enabled {
		b.metrics = newMetrics(info.ID)
		b.metrics.bound("in", introspect.FieldsOf[I]().Table())
		b.metrics.bound("out", introspect.FieldsOf[O]().Table())
	}

	if initer, ok := proc.(plugin.Initializer); ok {
		if err := initer.Initialize(cfg.SampleRate, cfg.MaxBlockSize); err != nil {
			return nil, fmt.Errorf("binding %s: initialize: %w", info.ID, err)
		}
	}
	if err := b.pushControls(); err != nil {
		return nil, err
	}

	b.logger.Info("bound %s: %d parameters, %d input buses, %d output buses, %d spectra, %d soundfiles",
		info, b.params.Count(),
		b.buses.GetBusCount(bus.DirectionInput), b.buses.GetBusCount(bus.DirectionOutput),
		len(b.spectra), b.soundfiles.Size())
	return b, nil
}

// Info returns the processor metadata the binding was created with.
func (b *Binding[I, O]) Info() plugin.Info { return b.info }

// Inputs returns the processor's input struct.
func (b *Binding[I, O]) Inputs() *I { return b.in }

// Outputs returns the processor's output struct.
func (b *Binding[I, O]) Outputs() *O { return b.out }

// Parameters returns the parameters derived from the controls: input
// controls in declaration order, then output meters and values, which are
// read-only.
func (b *Binding[I, O]) Parameters() *param.AutoRegistry { return b.params }

// Buses returns the bus layout derived from the audio ports.
func (b *Binding[I, O]) Buses() *bus.Configuration { return b.buses }

// Soundfiles returns the sound file storage of the input soundfile ports.
func (b *Binding[I, O]) Soundfiles() *SoundfileStorage[I] { return b.soundfiles }

// Latency returns the processor's latency in samples, or 0.
func (b *Binding[I, O]) Latency() int {
	if lr, ok := b.proc.(plugin.LatencyReporter); ok {
		return lr.LatencySamples()
	}
	return 0
}

// Reset restores writable parameters to their defaults and resets the
// processor if it supports it.
func (b *Binding[I, O]) Reset() {
	for _, p := range b.params.All() {
		if !p.ReadOnly() {
			p.Reset()
		}
	}
	if r, ok := b.proc.(plugin.Resetter); ok {
		r.Reset()
	}
	if err := b.pushControls(); err != nil {
		b.logger.Error("reset: %v", err)
	}
}

// Process runs one block:
//
//  1. parameter values are validated and written into the input controls
//  2. the context's input channels are bound to the audio input ports
//  3. spectra are computed for spectrum ports
//  4. output ports are bound to the cleared output channels
//  5. the processor runs
//  6. output meters and values are published to their parameters
//  7. port slices are unbound and impulse controls released
func (b *Binding[I, O]) Process(ctx *process.Context) error {
	if ctx == nil {
		return errors.New("binding: nil process context")
	}
	frames := ctx.NumSamples()
	if frames > b.cfg.MaxBlockSize {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, frames, b.cfg.MaxBlockSize)
	}

	start := time.Now()
	defer b.release()

	if err := b.pushControls(); err != nil {
		return err
	}
	b.mb.Context = ctx
	if err := b.mb.Split(); err != nil {
		return fmt.Errorf("binding %s: %w", b.info.ID, err)
	}
	b.bindInputs()
	ctx.Clear()
	b.bindOutputs()

	b.proc.Process(frames)

	b.publishOutputs()
	ctx.Block++
	b.metrics.tick(time.Since(start))

	if b.logger.Level() <= debug.LogLevelDebug {
		for i, ch := range ctx.Output {
			b.logger.CheckBuffer(ch, fmt.Sprintf("output %d", i))
		}
	}
	return nil
}

// NewContext returns a process context sized for this binding, reading
// parameters from its registry.
func (b *Binding[I, O]) NewContext() *process.Context {
	ctx := process.NewContext(b.cfg.MaxBlockSize, b.params.Registry)
	ctx.SampleRate = b.cfg.SampleRate
	ctx.SetLogger(b.logger)
	return ctx
}

// FFTSize returns the transform size used for spectrum ports.
func (b *Binding[I, O]) FFTSize() int { return b.cfg.FFT.Size }

// Window returns the window applied before each transform.
func (b *Binding[I, O]) Window() analysis.WindowFunc { return b.cfg.Window() }
