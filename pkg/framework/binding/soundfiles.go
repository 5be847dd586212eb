package binding

import (
	"errors"
	"fmt"

	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

// ErrSoundfileIndex is returned when addressing a soundfile port that does
// not exist.
var ErrSoundfileIndex = errors.New("binding: soundfile index out of range")

// Handle is a loaded sound file: its path and one slice per channel.
type Handle struct {
	Path string
	Data [][]float32
}

// Frames returns the length of the shortest channel.
func (h Handle) Frames() int {
	if len(h.Data) == 0 {
		return 0
	}
	n := len(h.Data[0])
	for _, ch := range h.Data[1:] {
		n = min(n, len(ch))
	}
	return n
}

// SoundfileStorage keeps the files bound to the soundfile ports of one
// input struct. Each port has its own channel slice and handle, indexed by
// predicate index.
type SoundfileStorage[I any] struct {
	inst    *I
	set     introspect.Filtered[I]
	ptrs    [][][]float32
	handles []Handle
}

// NewSoundfileStorage allocates storage for the soundfile ports in set.
func NewSoundfileStorage[I any](inst *I, set introspect.Filtered[I]) *SoundfileStorage[I] {
	return &SoundfileStorage[I]{
		inst:    inst,
		set:     set,
		ptrs:    make([][][]float32, set.Size()),
		handles: make([]Handle, set.Size()),
	}
}

// Size returns the number of soundfile ports.
func (s *SoundfileStorage[I]) Size() int {
	return len(s.handles)
}

// Init unbinds every port and forgets all handles.
func (s *SoundfileStorage[I]) Init() {
	s.set.ForAll(s.inst, func(f introspect.Field) {
		if sf := introspect.As[port.Soundfile](f); sf != nil {
			sf.Reset()
		}
	})
	clear(s.ptrs)
	clear(s.handles)
}

// Load binds h to soundfile port i. The storage keeps the handle and its own
// copy of the channel slice; sample memory stays with the caller.
func (s *SoundfileStorage[I]) Load(i int, h Handle) error {
	if i < 0 || i >= len(s.handles) {
		return fmt.Errorf("%w: %d (have %d)", ErrSoundfileIndex, i, len(s.handles))
	}
	s.handles[i] = h
	s.ptrs[i] = append(s.ptrs[i][:0], h.Data...)

	frames := h.Frames()
	s.set.ForNthMapped(s.inst, i, func(f introspect.Field) {
		if sf := introspect.As[port.Soundfile](f); sf != nil {
			sf.View = port.SoundfileView{
				Data:     s.ptrs[i],
				Frames:   int64(frames),
				Channels: int32(len(h.Data)),
				Filename: h.Path,
			}
		}
	})
	return nil
}

// Unload unbinds port i.
func (s *SoundfileStorage[I]) Unload(i int) error {
	if i < 0 || i >= len(s.handles) {
		return fmt.Errorf("%w: %d (have %d)", ErrSoundfileIndex, i, len(s.handles))
	}
	s.handles[i] = Handle{}
	s.ptrs[i] = nil
	s.set.ForNthMapped(s.inst, i, func(f introspect.Field) {
		if sf := introspect.As[port.Soundfile](f); sf != nil {
			sf.Reset()
		}
	})
	return nil
}

// Handle returns the handle bound to port i.
func (s *SoundfileStorage[I]) Handle(i int) (Handle, bool) {
	if i < 0 || i >= len(s.handles) {
		return Handle{}, false
	}
	return s.handles[i], true
}

// Index returns the predicate index of the port labeled name, or -1.
func (s *SoundfileStorage[I]) Index(name string) int {
	for i := 0; i < s.set.Size(); i++ {
		if tok, _ := s.set.Token(i); tok.Label() == name {
			return i
		}
	}
	return -1
}

// Label returns the label of port i.
func (s *SoundfileStorage[I]) Label(i int) string {
	tok, _ := s.set.Token(i)
	return tok.Label()
}

// SetSoundfile binds h to the soundfile port labeled name.
func (b *Binding[I, O]) SetSoundfile(name string, h Handle) error {
	i := b.soundfiles.Index(name)
	if i < 0 {
		return fmt.Errorf("%w: no soundfile port %q", ErrSoundfileIndex, name)
	}
	if err := b.soundfiles.Load(i, h); err != nil {
		return err
	}
	b.logger.Debug("soundfile %q: %s, %d channels, %d frames", name, h.Path, len(h.Data), h.Frames())
	return nil
}

// LoadSoundfile reads path with the configured loader and binds it to the
// soundfile port labeled name.
func (b *Binding[I, O]) LoadSoundfile(name, path string) error {
	if b.loader == nil {
		return fmt.Errorf("binding %s: no soundfile loader for %q", b.info.ID, path)
	}
	data, err := b.loader(path)
	if err != nil {
		return fmt.Errorf("binding %s: load %q: %w", b.info.ID, path, err)
	}
	return b.SetSoundfile(name, Handle{Path: path, Data: data})
}
