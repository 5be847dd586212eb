package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/avgo/examples/processors"
	"github.com/justyntemme/avgo/pkg/dsp/gain"
	"github.com/justyntemme/avgo/pkg/framework/binding"
	"github.com/justyntemme/avgo/pkg/framework/bus"
	"github.com/justyntemme/avgo/pkg/framework/config"
	"github.com/justyntemme/avgo/pkg/framework/debug"
)

type renderOptions struct {
	*rootOptions
	all    bool
	blocks int
	frames int
	freq   float64
	sample string
	sets   []string
}

// setting is one --set name=value pair.
type setting struct {
	name  string
	value float64
}

func parseSetting(s string) (setting, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return setting{}, fmt.Errorf("invalid --set %q, want name=value", s)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return setting{}, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	return setting{name: name, value: v}, nil
}

type rendered struct {
	entry   processors.Entry
	host    binding.Host
	peaks   []float32
	applied []bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "render [name...]",
		Short: "Drive processors with a sine test signal and print their outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.all, "all", false, "render every registered processor")
	f.IntVarP(&opts.blocks, "blocks", "n", 8, "number of blocks to process")
	f.IntVar(&opts.frames, "frames", 0, "frames per block (default: max block size)")
	f.Float64Var(&opts.freq, "freq", 440, "test signal frequency in Hz")
	f.StringVar(&opts.sample, "sample", "sine:220", "sound file bound to every soundfile port")
	f.StringArrayVar(&opts.sets, "set", nil, "set a control before the first block, as name=value")
	return cmd
}

func (o *renderOptions) run(cmd *cobra.Command, args []string) error {
	entries, err := o.entries(args)
	if err != nil {
		return err
	}
	settings := make([]setting, len(o.sets))
	for i, s := range o.sets {
		if settings[i], err = parseSetting(s); err != nil {
			return err
		}
	}
	if o.blocks < 1 {
		return fmt.Errorf("--blocks must be positive, got %d", o.blocks)
	}

	cfg, logger, err := o.load(cmd)
	if err != nil {
		return err
	}
	frames := o.frames
	if frames == 0 {
		frames = cfg.MaxBlockSize
	}
	if frames < 1 || frames > cfg.MaxBlockSize {
		return fmt.Errorf("--frames must be in [1, %d], got %d", cfg.MaxBlockSize, frames)
	}

	results := make([]rendered, len(entries))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, e := range entries {
		g.Go(func() error {
			r, err := o.render(ctx, e, cfg, logger, settings, frames)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range settings {
		used := false
		for _, r := range results {
			used = used || r.applied[i]
		}
		if !used {
			return fmt.Errorf("%w: no processor has control %q", binding.ErrInvalidControl, s.name)
		}
	}

	w := cmd.OutOrStdout()
	for _, r := range results {
		printRendered(w, r)
	}
	return nil
}

func (o *renderOptions) entries(args []string) ([]processors.Entry, error) {
	if o.all {
		return processors.All(), nil
	}
	if len(args) == 0 {
		return nil, errors.New("name a processor or pass --all")
	}
	entries := make([]processors.Entry, len(args))
	for i, name := range args {
		e, err := lookup(name)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

func (o *renderOptions) render(ctx context.Context, e processors.Entry, cfg config.Config, logger *debug.Logger, settings []setting, frames int) (rendered, error) {
	h, err := e.Bind(cfg, binding.WithLogger(logger), binding.WithSoundfileLoader(synthLoader(cfg.SampleRate)))
	if err != nil {
		return rendered{}, err
	}
	r := rendered{entry: e, host: h, applied: make([]bool, len(settings))}

	for _, ws := range h.WorkingSets() {
		if ws.Name != "soundfiles" {
			continue
		}
		for _, tok := range ws.Tokens {
			if err := h.LoadSoundfile(tok.Label(), o.sample); err != nil {
				return rendered{}, err
			}
		}
	}
	for i, s := range settings {
		if h.Parameters().GetByName(s.name) == nil {
			continue
		}
		if err := h.SetControl(s.name, s.value); err != nil {
			return rendered{}, err
		}
		r.applied[i] = true
	}

	buses := h.Buses()
	pc := h.NewContext()
	pc.Input = makeChannels(buses.ChannelCount(bus.DirectionInput), frames)
	pc.Output = makeChannels(buses.ChannelCount(bus.DirectionOutput), frames)
	osc := sineSource{step: 2 * math.Pi * o.freq / cfg.SampleRate}

	for n := 0; n < o.blocks; n++ {
		if err := ctx.Err(); err != nil {
			return rendered{}, err
		}
		for _, ch := range pc.Input {
			osc.fill(ch)
		}
		osc.advance(frames)
		if err := h.Process(pc); err != nil {
			return rendered{}, err
		}
	}

	r.peaks = make([]float32, len(pc.Output))
	for ch, buf := range pc.Output {
		r.peaks[ch] = gain.Peak(buf)
	}
	return r, nil
}

func makeChannels(n, frames int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	return out
}

// sineSource writes a continuous unit sine across blocks.
type sineSource struct {
	phase, step float64
}

func (s *sineSource) fill(buf []float32) {
	for i := range buf {
		buf[i] = float32(math.Sin(s.phase + float64(i)*s.step))
	}
}

func (s *sineSource) advance(frames int) {
	s.phase = math.Mod(s.phase+float64(frames)*s.step, 2*math.Pi)
}

// synthLoader returns a loader for generated sound files. It accepts paths
// of the form "sine:<hz>" and produces one second of mono sine.
func synthLoader(sampleRate float64) binding.Loader {
	return func(path string) ([][]float32, error) {
		kind, arg, _ := strings.Cut(path, ":")
		if kind != "sine" {
			return nil, fmt.Errorf("unsupported sound file %q", path)
		}
		hz, err := strconv.ParseFloat(arg, 64)
		if err != nil || hz <= 0 {
			return nil, fmt.Errorf("invalid frequency in %q", path)
		}
		osc := sineSource{step: 2 * math.Pi * hz / sampleRate}
		data := make([]float32, int(sampleRate))
		osc.fill(data)
		return [][]float32{data}, nil
	}
}

func printRendered(w io.Writer, r rendered) {
	fmt.Fprintf(w, "%s (%s)\n", r.entry.Name, r.entry.Info.ID)
	for ch, p := range r.peaks {
		fmt.Fprintf(w, "  out %d peak  %.2f dB\n", ch, gain.LinearToDb(float64(p)))
	}
	for _, p := range r.host.Parameters().All() {
		if !p.ReadOnly() {
			continue
		}
		fmt.Fprintf(w, "  %-18s %s", p.Name, p.FormatValue(p.GetValue()))
		if p.Unit != "" {
			fmt.Fprintf(w, " %s", p.Unit)
		}
		fmt.Fprintln(w)
	}
}
