package bus

import (
	"errors"
	"fmt"
)

// MaxChannels is the largest channel count a single bus may carry
const MaxChannels = 32

// Builder provides a fluent API for building bus configurations
type Builder struct {
	config *Configuration
	errors []error
}

// NewBuilder creates a new bus configuration builder
func NewBuilder() *Builder {
	return &Builder{config: &Configuration{}}
}

func (b *Builder) add(direction Direction, busType Type, name string, channels int32, port int) *Builder {
	b.config.buses = append(b.config.buses, Info{
		Direction:    direction,
		ChannelCount: channels,
		Name:         name,
		BusType:      busType,
		IsActive:     busType == TypeMain,
		Port:         port,
	})
	return b
}

// WithAudioInput adds a main audio input bus
func (b *Builder) WithAudioInput(name string, channels int32) *Builder {
	return b.add(DirectionInput, TypeMain, name, channels, -1)
}

// WithAudioOutput adds a main audio output bus
func (b *Builder) WithAudioOutput(name string, channels int32) *Builder {
	return b.add(DirectionOutput, TypeMain, name, channels, -1)
}

// WithAuxInput adds an auxiliary audio input bus. Aux buses start inactive.
func (b *Builder) WithAuxInput(name string, channels int32) *Builder {
	return b.add(DirectionInput, TypeAux, name, channels, -1)
}

// WithAuxOutput adds an auxiliary audio output bus. Aux buses start inactive.
func (b *Builder) WithAuxOutput(name string, channels int32) *Builder {
	return b.add(DirectionOutput, TypeAux, name, channels, -1)
}

// WithPort adds a bus backed by the port-th audio port of a direction. The
// first bus of each direction is the main bus, later ones are active aux
// buses.
func (b *Builder) WithPort(direction Direction, name string, channels int32, port int) *Builder {
	busType := TypeMain
	if b.config.GetBusCount(direction) > 0 {
		busType = TypeAux
	}
	b.add(direction, busType, name, channels, port)
	b.config.buses[len(b.config.buses)-1].IsActive = true
	return b
}

// WithStereoInput is a convenience method for adding stereo input
func (b *Builder) WithStereoInput(name string) *Builder {
	return b.WithAudioInput(name, 2)
}

// WithStereoOutput is a convenience method for adding stereo output
func (b *Builder) WithStereoOutput(name string) *Builder {
	return b.WithAudioOutput(name, 2)
}

// WithMonoInput is a convenience method for adding mono input
func (b *Builder) WithMonoInput(name string) *Builder {
	return b.WithAudioInput(name, 1)
}

// WithMonoOutput is a convenience method for adding mono output
func (b *Builder) WithMonoOutput(name string) *Builder {
	return b.WithAudioOutput(name, 1)
}

// WithSidechain adds a sidechain input bus (auxiliary stereo input)
func (b *Builder) WithSidechain(name string) *Builder {
	return b.WithAuxInput(name, 2)
}

// SetBusActive sets a specific bus as active/inactive
func (b *Builder) SetBusActive(direction Direction, index int32, active bool) *Builder {
	if bus := b.config.GetBusInfo(direction, index); bus != nil {
		bus.IsActive = active
		return b
	}
	b.errors = append(b.errors, fmt.Errorf("bus not found: direction=%s, index=%d", direction, index))
	return b
}

// Validate checks if the configuration is valid. A processor may have no
// buses at all, such as an analyzer that only writes meters.
func (b *Builder) Validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("builder errors: %w", errors.Join(b.errors...))
	}

	for _, bus := range b.config.buses {
		if bus.ChannelCount <= 0 {
			return fmt.Errorf("invalid channel count %d for bus %s", bus.ChannelCount, bus.Name)
		}
		if bus.ChannelCount > MaxChannels {
			return fmt.Errorf("channel count %d exceeds maximum of %d for bus %s", bus.ChannelCount, MaxChannels, bus.Name)
		}
	}

	return nil
}

// Build returns the built configuration or an error
func (b *Builder) Build() (*Configuration, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// MustBuild returns the built configuration or panics on error
func (b *Builder) MustBuild() *Configuration {
	config, err := b.Build()
	if err != nil {
		panic(err)
	}
	return config
}
