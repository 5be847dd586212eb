package introspect

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Capability classifies the processing role of a field.
type Capability int

const (
	// Unknown fields are plain data the host does not bind.
	Unknown Capability = iota
	// AudioChannel is a single channel of audio samples.
	AudioChannel
	// AudioBus is a multi-channel audio port.
	AudioBus
	// Spectrum is an audio channel whose FFT the host precomputes.
	Spectrum
	// Soundfile is a port holding a host-loaded sound file.
	Soundfile
	// Value is a plain value port (no widget, no range).
	Value
	// Control is a ranged, automatable control.
	Control
)

var capabilityNames = [...]string{
	Unknown:      "unknown",
	AudioChannel: "audio_channel",
	AudioBus:     "audio_bus",
	Spectrum:     "spectrum",
	Soundfile:    "soundfile",
	Value:        "value",
	Control:      "control",
}

// String returns the name of the capability.
func (c Capability) String() string {
	if c < 0 || int(c) >= len(capabilityNames) {
		return fmt.Sprintf("capability(%d)", int(c))
	}
	return capabilityNames[c]
}

// ParseCapability parses a capability name as used in `port` struct tags.
func ParseCapability(s string) (Capability, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range capabilityNames {
		if name == s {
			return Capability(c), nil
		}
	}
	return Unknown, fmt.Errorf("unknown capability %q", s)
}

// Capable is implemented by field types that declare their own capability.
// Either the type or a pointer to it may implement it; the method is called on
// a zero value.
type Capable interface {
	Capability() Capability
}

var (
	capableType = reflect.TypeFor[Capable]()

	capMu       sync.RWMutex
	capRegistry = make(map[reflect.Type]Capability)
)

// RegisterCapability associates a field type with a capability. It is meant
// for types from other packages that cannot implement Capable. Registration
// must happen before the first introspection of a struct using the type:
// descriptor tables are built once and cached.
func RegisterCapability(t reflect.Type, c Capability) {
	capMu.Lock()
	defer capMu.Unlock()
	capRegistry[t] = c
}

// RegisteredCapabilities returns a snapshot of explicit registrations, sorted
// by type name.
func RegisteredCapabilities() []CapabilityEntry {
	capMu.RLock()
	defer capMu.RUnlock()

	out := make([]CapabilityEntry, 0, len(capRegistry))
	for t, c := range capRegistry {
		out = append(out, CapabilityEntry{Type: t, Capability: c})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Type.String() < out[j].Type.String()
	})
	return out
}

// CapabilityEntry is one explicit type registration.
type CapabilityEntry struct {
	Type       reflect.Type
	Capability Capability
}

// CapabilityOf resolves the capability of a field type, ignoring tags.
func CapabilityOf(t reflect.Type) Capability {
	capMu.RLock()
	c, ok := capRegistry[t]
	capMu.RUnlock()
	if ok {
		return c
	}

	switch {
	case t.Kind() == reflect.Interface:
		return Unknown
	case t.Implements(capableType):
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()).Interface().(Capable).Capability()
		}
		return reflect.Zero(t).Interface().(Capable).Capability()
	case reflect.PointerTo(t).Implements(capableType):
		return reflect.New(t).Interface().(Capable).Capability()
	}
	return Unknown
}

// resolveCapability applies the `port` tag override before type resolution.
func resolveCapability(sf reflect.StructField) (Capability, error) {
	if tag, ok := sf.Tag.Lookup("port"); ok && tag != "" {
		return ParseCapability(tag)
	}
	return CapabilityOf(sf.Type), nil
}
