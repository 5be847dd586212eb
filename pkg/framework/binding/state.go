package binding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

// Custom state keys.
const (
	textKey      = "text/"
	soundfileKey = "soundfile/"
)

// SaveState writes the parameter values, text controls and sound file
// paths.
func (b *Binding[I, O]) SaveState(w io.Writer) error {
	if err := b.state.Save(w); err != nil {
		return fmt.Errorf("binding %s: save state: %w", b.info.ID, err)
	}
	return nil
}

// LoadState restores what SaveState wrote and pushes the restored values
// into the controls. Sound files are reloaded through the loader when one is
// configured; otherwise only their paths are bound.
func (b *Binding[I, O]) LoadState(r io.Reader) error {
	if err := b.state.Load(r); err != nil {
		return fmt.Errorf("binding %s: load state: %w", b.info.ID, err)
	}
	return b.pushControls()
}

func (b *Binding[I, O]) saveCustom() map[string]string {
	values := make(map[string]string)
	b.textIn.ForAll(b.in, func(f introspect.Field) {
		values[textKey+f.Label()] = f.Addr().(port.Text).Text()
	})
	for i := 0; i < b.soundfiles.Size(); i++ {
		if h, _ := b.soundfiles.Handle(i); h.Path != "" {
			values[soundfileKey+b.soundfiles.Label(i)] = h.Path
		}
	}
	return values
}

func (b *Binding[I, O]) loadCustom(values map[string]string) error {
	b.textIn.ForAll(b.in, func(f introspect.Field) {
		if v, ok := values[textKey+f.Label()]; ok {
			f.Addr().(port.Text).SetText(v)
		}
	})

	var errs []error
	for key, path := range values {
		name, ok := strings.CutPrefix(key, soundfileKey)
		if !ok {
			continue
		}
		if b.soundfiles.Index(name) < 0 {
			b.logger.Warn("state names unknown soundfile port %q", name)
			continue
		}
		if b.loader != nil {
			if err := b.LoadSoundfile(name, path); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := b.SetSoundfile(name, Handle{Path: path}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
