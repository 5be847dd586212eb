package binding

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/avgo/pkg/framework/bus"
	"github.com/justyntemme/avgo/pkg/framework/config"
	"github.com/justyntemme/avgo/pkg/framework/debug"
	"github.com/justyntemme/avgo/pkg/framework/param"
	"github.com/justyntemme/avgo/pkg/framework/plugin"
	"github.com/justyntemme/avgo/pkg/framework/process"
	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

type testInputs struct {
	In     port.AudioBus        `name:"Main" channels:"2"`
	Side   port.AudioChannel    `name:"Side"`
	Scope  port.SpectrumChannel `name:"Scope"`
	Sample port.Soundfile       `name:"Sample"`
	Gain   port.Slider          `name:"Gain" range:"-24,24,0" unit:"dB"`
	Mode   port.Enum            `name:"Mode" values:"Soft,Hard" init:"Hard"`
	Pad    port.XYPad           `name:"Pad"`
	Tint   port.Color           `name:"Tint"`
	Fire   port.Button          `name:"Fire"`
	Label  port.LineEdit        `name:"Label" init:"hello"`
	Steps  port.IntSlider       `name:"Steps" range:"0,8,4"`
}

type testOutputs struct {
	Out    port.AudioBus     `name:"Out"`
	Level  port.Bargraph     `name:"Level"`
	Count  port.Value[int]   `name:"Count" range:"0,1000"`
	Status port.Value[string]
}

type testProc struct {
	in  testInputs
	out testOutputs

	calls  int
	rate   float64
	resets int

	fire     bool
	side     float32
	peakBin  int
	bins     int
	channels int
}

var _ Host = (*Binding[testInputs, testOutputs])(nil)

func (p *testProc) Ports() (*testInputs, *testOutputs) { return &p.in, &p.out }

func (p *testProc) Initialize(sampleRate float64, maxBlockSize int) error {
	p.rate = sampleRate
	return nil
}

func (p *testProc) Reset() { p.resets++ }

func (p *testProc) Process(frames int) {
	p.calls++
	p.fire = p.in.Fire.Value
	p.side = p.in.Side.Samples[0]
	p.channels = p.in.In.ChannelCount()

	amp := p.in.Scope.Spectrum.Amplitude
	p.bins = len(amp)
	p.peakBin = 0
	for i := range amp {
		if amp[i] > amp[p.peakBin] {
			p.peakBin = i
		}
	}

	g := float32(math.Pow(10, p.in.Gain.Value/20))
	for ch, out := range p.out.Out.Channels {
		in := p.in.In.Channel(ch)
		for i := 0; i < frames; i++ {
			out[i] = in[i] * g
		}
	}
	p.out.Level.Value = 0.5
	p.out.Count.Value = p.calls
	p.out.Status.Value = "ok"
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxBlockSize = 512
	cfg.FFT.Size = 256
	return cfg
}

func quiet() *debug.Logger {
	return debug.New(io.Discard, "", 0)
}

func newTestBinding(t *testing.T, id string, opts ...Option) (*Binding[testInputs, testOutputs], *testProc) {
	t.Helper()
	proc := &testProc{}
	info := plugin.Info{ID: id, Name: "Test", Version: "1.0.0"}
	b, err := New[testInputs, testOutputs](proc, testConfig(), info, append([]Option{WithLogger(quiet())}, opts...)...)
	require.NoError(t, err)
	return b, proc
}

// block returns a context with four input channels (main bus, side, scope)
// and two output channels pre-filled with garbage.
func block(b *Binding[testInputs, testOutputs], frames int) *process.Context {
	ctx := b.NewContext()
	ctx.Input = make([][]float32, 4)
	for ch := range ctx.Input {
		ctx.Input[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		ctx.Input[0][i] = 0.5
		ctx.Input[1][i] = -0.5
		ctx.Input[2][i] = 0.25
		ctx.Input[3][i] = float32(math.Sin(2 * math.Pi * 8 * float64(i) / 256))
	}
	ctx.Output = [][]float32{make([]float32, frames), make([]float32, frames)}
	for ch := range ctx.Output {
		for i := range ctx.Output[ch] {
			ctx.Output[ch][i] = 9
		}
	}
	return ctx
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	info := plugin.Info{ID: "com.avgo.test.new", Name: "Test"}

	t.Run("NilProcessor", func(t *testing.T) {
		_, err := New[testInputs, testOutputs](nil, cfg, info)
		assert.ErrorIs(t, err, ErrNoProcessor)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		bad := cfg
		bad.FFT.Size = 1000
		_, err := New[testInputs, testOutputs](&testProc{}, bad, info, WithLogger(quiet()))
		assert.Error(t, err)
	})

	t.Run("InvalidID", func(t *testing.T) {
		_, err := New[testInputs, testOutputs](&testProc{}, cfg, plugin.Info{ID: " "}, WithLogger(quiet()))
		assert.Error(t, err)
	})

	t.Run("Defaults", func(t *testing.T) {
		b, proc := newTestBinding(t, "com.avgo.test.defaults")
		in := b.Inputs()
		assert.Equal(t, 48000.0, proc.rate)
		assert.Equal(t, 0.0, in.Gain.Value)
		assert.Equal(t, 1, in.Mode.Value)
		assert.Equal(t, port.XY{X: 0.5, Y: 0.5}, in.Pad.Value)
		assert.Equal(t, port.RGBA{R: 1, G: 1, B: 1, A: 1}, in.Tint.Value)
		assert.Equal(t, 4, in.Steps.Value)
		assert.Equal(t, "hello", in.Label.Value)
		assert.Same(t, &proc.in, in)
		assert.Same(t, &proc.out, b.Outputs())
		assert.Equal(t, 0, b.Latency())
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		type dupInputs struct {
			A port.Slider `name:"Level"`
			B port.Knob   `name:"Level"`
		}
		_, err := New[dupInputs, introspect.None](&nullProc[dupInputs]{}, cfg, info, WithLogger(quiet()))
		assert.ErrorContains(t, err, "duplicate parameter name")
	})
}

// nullProc has inputs only.
type nullProc[I any] struct {
	in    I
	calls int
}

func (p *nullProc[I]) Ports() (*I, *introspect.None) { return &p.in, nil }
func (p *nullProc[I]) Process(int)                   { p.calls++ }

func TestParameters(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.params")
	params := b.Parameters()

	var names []string
	for _, p := range params.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"Gain", "Mode", "Pad X", "Pad Y",
		"Tint R", "Tint G", "Tint B", "Tint A",
		"Fire", "Steps", "Level", "Count",
	}, names)

	for i, p := range params.All() {
		assert.Equal(t, uint32(i), p.ID, p.Name)
	}

	gain := params.GetByName("Gain")
	assert.Equal(t, -24.0, gain.Min)
	assert.Equal(t, 24.0, gain.Max)
	assert.Equal(t, "dB", gain.Unit)
	assert.InDelta(t, 0, gain.GetPlainValue(), 1e-9)

	mode := params.GetByName("Mode")
	assert.Equal(t, []string{"Soft", "Hard"}, mode.Choices)
	assert.Equal(t, "Hard", mode.FormatValue(mode.GetValue()))

	tint := params.GetByName("Tint G")
	assert.NotZero(t, tint.Flags&param.IsHidden)
	assert.Zero(t, tint.Flags&param.CanAutomate)

	assert.Equal(t, int32(8), params.GetByName("Steps").StepCount)
	assert.Equal(t, int32(1), params.GetByName("Fire").StepCount)

	assert.True(t, params.GetByName("Level").ReadOnly())
	assert.True(t, params.GetByName("Count").ReadOnly())
	assert.Nil(t, params.GetByName("Status"), "string values have no parameter")
	assert.Nil(t, params.GetByName("Label"), "text controls have no parameter")
}

func TestBuses(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.buses")
	buses := b.Buses()

	require.Equal(t, int32(3), buses.GetBusCount(bus.DirectionInput))
	require.Equal(t, int32(1), buses.GetBusCount(bus.DirectionOutput))

	main := buses.GetBusInfo(bus.DirectionInput, 0)
	assert.Equal(t, "Main", main.Name)
	assert.Equal(t, int32(2), main.ChannelCount)
	assert.Equal(t, bus.TypeMain, main.BusType)
	assert.Equal(t, 0, main.Port)

	scope := buses.GetBusInfo(bus.DirectionInput, 2)
	assert.Equal(t, "Scope", scope.Name)
	assert.Equal(t, bus.TypeAux, scope.BusType)
	assert.True(t, scope.IsActive)
	assert.Equal(t, 2, scope.Port)

	assert.Equal(t, 4, buses.ChannelCount(bus.DirectionInput))
	assert.Equal(t, 2, buses.ChannelCount(bus.DirectionOutput))
}

func TestProcess(t *testing.T) {
	b, proc := newTestBinding(t, "com.avgo.test.process")
	require.NoError(t, b.SetControl("Gain", 6))
	require.NoError(t, b.SetControl("Pad Y", 0.25))
	require.NoError(t, b.SetControl("Fire", 1))
	require.NoError(t, b.SetControl("Steps", 3.4))

	ctx := block(b, 256)
	require.NoError(t, b.Process(ctx))

	assert.Equal(t, 1, proc.calls)
	assert.Equal(t, uint64(1), ctx.Block)
	assert.Equal(t, 2, proc.channels)
	assert.Equal(t, float32(0.25), proc.side)
	assert.Equal(t, 129, proc.bins)
	assert.Equal(t, 8, proc.peakBin)

	g := float32(math.Pow(10, 6.0/20))
	assert.InDelta(t, 0.5*g, ctx.Output[0][0], 1e-5)
	assert.InDelta(t, -0.5*g, ctx.Output[1][255], 1e-5)

	in := b.Inputs()
	assert.Equal(t, 6.0, in.Gain.Value)
	assert.Equal(t, port.XY{X: 0.5, Y: 0.25}, in.Pad.Value)
	assert.Equal(t, 3, in.Steps.Value)

	t.Run("ImpulseReleased", func(t *testing.T) {
		assert.True(t, proc.fire)
		assert.False(t, in.Fire.Value)
		assert.Zero(t, b.Parameters().GetByName("Fire").GetPlainValue())
	})

	t.Run("PortsUnbound", func(t *testing.T) {
		assert.Nil(t, in.In.Channels)
		assert.Nil(t, in.Side.Samples)
		assert.Nil(t, in.Scope.Samples)
		assert.Nil(t, in.Scope.Spectrum.Amplitude)
		assert.Nil(t, b.Outputs().Out.Channels)
	})

	t.Run("OutputsPublished", func(t *testing.T) {
		params := b.Parameters()
		assert.InDelta(t, 0.5, params.GetByName("Level").GetPlainValue(), 1e-9)
		assert.InDelta(t, 1, params.GetByName("Count").GetPlainValue(), 1e-9)

		require.NoError(t, b.Process(block(b, 256)))
		assert.InDelta(t, 2, params.GetByName("Count").GetPlainValue(), 1e-9)
		assert.False(t, proc.fire)
	})

	t.Run("Metrics", func(t *testing.T) {
		assert.Equal(t, 2.0, testutil.ToFloat64(ticksTotal.WithLabelValues("com.avgo.test.process")))
		assert.Equal(t, 7.0, testutil.ToFloat64(boundFields.WithLabelValues("com.avgo.test.process", "in", "control")))
		assert.Equal(t, 1.0, testutil.ToFloat64(boundFields.WithLabelValues("com.avgo.test.process", "out", "audio_bus")))
	})
}

func TestProcessErrors(t *testing.T) {
	b, proc := newTestBinding(t, "com.avgo.test.errors")

	t.Run("NilContext", func(t *testing.T) {
		assert.Error(t, b.Process(nil))
	})

	t.Run("BlockTooLarge", func(t *testing.T) {
		assert.ErrorIs(t, b.Process(block(b, 1024)), ErrBlockTooLarge)
	})

	t.Run("MissingChannels", func(t *testing.T) {
		ctx := block(b, 64)
		ctx.Input = ctx.Input[:1]
		assert.ErrorContains(t, b.Process(ctx), "needs 2 channels")
	})

	t.Run("RejectedControl", func(t *testing.T) {
		var buf bytes.Buffer
		logger := debug.New(&buf, "", debug.FlagLevel)
		b, _ := newTestBinding(t, "com.avgo.test.reject", WithLogger(logger))

		gain := b.Parameters().GetByName("Gain")
		gain.Max = 100
		gain.SetPlainValue(50)

		err := b.Process(block(b, 64))
		assert.ErrorIs(t, err, ErrInvalidControl)
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Equal(t, 1.0, testutil.ToFloat64(controlRejections.WithLabelValues("com.avgo.test.reject", "Gain")))
	})

	assert.Zero(t, proc.calls)
}

func TestSetControl(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.setcontrol")

	assert.ErrorIs(t, b.SetControl("Gain", 30), ErrInvalidControl)
	assert.ErrorIs(t, b.SetControl("Gain", math.NaN()), ErrInvalidControl)
	assert.ErrorIs(t, b.SetControl("Missing", 0), ErrInvalidControl)
	assert.ErrorIs(t, b.SetControl("Level", 0.5), ErrInvalidControl)

	require.NoError(t, b.SetControl("Mode", 0))
	require.NoError(t, b.Process(block(b, 32)))
	assert.Equal(t, 0, b.Inputs().Mode.Value)

	require.NoError(t, b.SetText("Label", "world"))
	assert.Equal(t, "world", b.Inputs().Label.Value)
	assert.ErrorIs(t, b.SetText("Gain", "x"), ErrInvalidControl)
}

func TestReset(t *testing.T) {
	b, proc := newTestBinding(t, "com.avgo.test.reset")
	require.NoError(t, b.SetControl("Gain", 12))
	require.NoError(t, b.Process(block(b, 32)))
	assert.Equal(t, 12.0, b.Inputs().Gain.Value)

	b.Reset()
	assert.Equal(t, 1, proc.resets)
	assert.InDelta(t, 0, b.Parameters().GetByName("Gain").GetPlainValue(), 1e-9)
	assert.Equal(t, 0.0, b.Inputs().Gain.Value)
	assert.InDelta(t, 1, b.Parameters().GetByName("Count").GetPlainValue(), 1e-9, "read-only values keep their last output")
}

func TestNoOutputs(t *testing.T) {
	type meterInputs struct {
		In    port.AudioChannel
		Depth port.Knob `range:"0,10,5"`
	}
	proc := &nullProc[meterInputs]{}
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	b, err := New[meterInputs, introspect.None](proc, cfg, plugin.Info{ID: "com.avgo.test.none"}, WithLogger(quiet()))
	require.NoError(t, err)

	assert.Equal(t, int32(0), b.Buses().GetBusCount(bus.DirectionOutput))
	assert.Equal(t, int32(1), b.Buses().GetBusCount(bus.DirectionInput))
	assert.Equal(t, 5.0, proc.in.Depth.Value)

	ctx := b.NewContext()
	ctx.Input = [][]float32{make([]float32, 16)}
	require.NoError(t, b.Process(ctx))
	assert.Equal(t, 1, proc.calls)
}

func TestWorkingSets(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.sets")

	sizes := make(map[string]int)
	for _, ws := range b.WorkingSets() {
		sizes[ws.Direction+" "+ws.Name] = len(ws.Tokens)
		assert.NotEmpty(t, ws.Predicate)
	}
	assert.Equal(t, map[string]int{
		"in audio channels":    1,
		"in audio buses":       1,
		"in spectrum channels": 1,
		"in soundfiles":        1,
		"in controls":          6,
		"in text controls":     1,
		"out audio":            1,
		"out values":           2,
		"out meters":           1,
	}, sizes)
}

func TestSoundfiles(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.soundfiles")
	store := b.Soundfiles()
	require.Equal(t, 1, store.Size())
	assert.Equal(t, 0, store.Index("Sample"))
	assert.Equal(t, -1, store.Index("Other"))

	data := [][]float32{{1, 2, 3}, {4, 5}}
	require.NoError(t, b.SetSoundfile("Sample", Handle{Path: "kick.wav", Data: data}))

	sf := &b.Inputs().Sample
	assert.True(t, sf.Loaded())
	assert.Equal(t, int64(2), sf.Frames())
	assert.Equal(t, 2, sf.Channels())
	assert.Equal(t, "kick.wav", sf.View.Filename)

	data[0] = nil
	assert.Equal(t, []float32{1, 2, 3}, sf.Channel(0), "storage keeps its own channel slice")

	h, ok := store.Handle(0)
	assert.True(t, ok)
	assert.Equal(t, "kick.wav", h.Path)

	assert.ErrorIs(t, store.Load(1, Handle{}), ErrSoundfileIndex)
	assert.ErrorIs(t, store.Load(-1, Handle{}), ErrSoundfileIndex)
	assert.ErrorIs(t, b.SetSoundfile("Other", Handle{}), ErrSoundfileIndex)
	assert.Error(t, b.LoadSoundfile("Sample", "snare.wav"), "no loader configured")

	require.NoError(t, store.Unload(0))
	assert.False(t, sf.Loaded())

	store.Init()
	_, ok = store.Handle(0)
	assert.True(t, ok)
}

func TestState(t *testing.T) {
	b, _ := newTestBinding(t, "com.avgo.test.state")
	require.NoError(t, b.SetControl("Gain", 6))
	require.NoError(t, b.SetControl("Mode", 0))
	require.NoError(t, b.SetText("Label", "saved"))
	require.NoError(t, b.SetSoundfile("Sample", Handle{Path: "kick.wav", Data: [][]float32{{1}}}))

	var buf bytes.Buffer
	require.NoError(t, b.SaveState(&buf))

	t.Run("WithLoader", func(t *testing.T) {
		var loaded []string
		loader := func(path string) ([][]float32, error) {
			loaded = append(loaded, path)
			return [][]float32{{0.1, 0.2}}, nil
		}
		b2, _ := newTestBinding(t, "com.avgo.test.state2", WithSoundfileLoader(loader))
		require.NoError(t, b2.LoadState(bytes.NewReader(buf.Bytes())))

		in := b2.Inputs()
		assert.InDelta(t, 6, in.Gain.Value, 1e-9)
		assert.Equal(t, 0, in.Mode.Value)
		assert.Equal(t, "saved", in.Label.Value)
		assert.Equal(t, []string{"kick.wav"}, loaded)
		assert.Equal(t, int64(2), in.Sample.Frames())
	})

	t.Run("WithoutLoader", func(t *testing.T) {
		b3, _ := newTestBinding(t, "com.avgo.test.state3")
		require.NoError(t, b3.LoadState(bytes.NewReader(buf.Bytes())))
		assert.Equal(t, "kick.wav", b3.Inputs().Sample.View.Filename)
		assert.False(t, b3.Inputs().Sample.Loaded())
	})

	t.Run("LoaderError", func(t *testing.T) {
		boom := errors.New("boom")
		b4, _ := newTestBinding(t, "com.avgo.test.state4", WithSoundfileLoader(func(string) ([][]float32, error) {
			return nil, boom
		}))
		assert.ErrorIs(t, b4.LoadState(bytes.NewReader(buf.Bytes())), boom)
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.Error(t, b.LoadState(bytes.NewReader([]byte("nope"))))
	})
}

func BenchmarkProcess(b *testing.B) {
	proc := &testProc{}
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	bd, err := New[testInputs, testOutputs](proc, cfg, plugin.Info{ID: "com.avgo.bench"}, WithLogger(quiet()))
	if err != nil {
		b.Fatal(err)
	}
	ctx := block(bd, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bd.Process(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
