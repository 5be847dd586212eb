// Package state saves and restores processor state: parameter values plus
// named string values that are not parameters.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/justyntemme/avgo/pkg/framework/param"
)

const (
	magic   = "AVGO"
	version = uint32(1)

	// maxString bounds string lengths read back from a stream.
	maxString = 1 << 20
)

// ErrInvalidFormat is returned when a stream does not start with the state header
var ErrInvalidFormat = errors.New("invalid state format")

// Manager handles state saving and loading
type Manager struct {
	version    uint32
	registry   *param.Registry
	saveCustom SaveFunc
	loadCustom LoadFunc
}

// SaveFunc returns custom values to store after the parameters
type SaveFunc func() map[string]string

// LoadFunc receives the custom values read back from a stream
type LoadFunc func(values map[string]string) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  version,
		registry: registry,
	}
}

// SetCustomState sets the functions for saving and loading custom state
func (m *Manager) SetCustomState(save SaveFunc, load LoadFunc) {
	m.saveCustom = save
	m.loadCustom = load
}

// Save writes the state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	var custom map[string]string
	if m.saveCustom != nil {
		custom = m.saveCustom()
	}
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := binary.Write(w, binary.LittleEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := writeString(w, custom[k]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the state from a reader. Unknown and read-only parameters are
// skipped.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return err
	}
	if v > m.version {
		return fmt.Errorf("state version %d is newer than supported version %d", v, m.version)
	}

	var paramCount int32
	if err := binary.Read(r, binary.LittleEndian, &paramCount); err != nil {
		return err
	}
	if paramCount < 0 {
		return ErrInvalidFormat
	}
	for i := int32(0); i < paramCount; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return err
		}
		var value float64
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return err
		}
		if p := m.registry.Get(id); p != nil && !p.ReadOnly() {
			p.SetValue(value)
		}
	}

	var customCount uint32
	if err := binary.Read(r, binary.LittleEndian, &customCount); err != nil {
		return err
	}
	custom := make(map[string]string, min(customCount, 64))
	for i := uint32(0); i < customCount; i++ {
		k, err := readString(r)
		if err != nil {
			return fmt.Errorf("custom key %d: %w", i, err)
		}
		val, err := readString(r)
		if err != nil {
			return fmt.Errorf("custom value %q: %w", k, err)
		}
		custom[k] = val
	}

	if m.loadCustom != nil && len(custom) > 0 {
		return m.loadCustom(custom)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxString {
		return "", fmt.Errorf("string of %d bytes: %w", n, ErrInvalidFormat)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
