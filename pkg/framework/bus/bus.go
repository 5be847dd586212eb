// Package bus describes the audio buses a processor exposes to its host.
package bus

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "out"
	}
	return "in"
}

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus, such as a sidechain
	TypeAux Type = 1
)

func (t Type) String() string {
	if t == TypeAux {
		return "aux"
	}
	return "main"
}

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool

	// Port is the index of the audio port that backs this bus among the
	// processor's audio ports of the same direction, or -1.
	Port int
}

// Configuration lists the audio buses of a processor
type Configuration struct {
	buses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// GetBusCount returns the number of buses in a direction
func (c *Configuration) GetBusCount(direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns the index-th bus of a direction, or nil
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	busIndex := int32(0)
	for i := range c.buses {
		if c.buses[i].Direction == direction {
			if busIndex == index {
				return &c.buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// ChannelCount returns the total channel count of the active buses of a
// direction
func (c *Configuration) ChannelCount(direction Direction) int {
	total := 0
	for _, bus := range c.buses {
		if bus.Direction == direction && bus.IsActive {
			total += int(bus.ChannelCount)
		}
	}
	return total
}

// Buses returns a copy of every bus, inputs and outputs in declaration order
func (c *Configuration) Buses() []Info {
	return append([]Info(nil), c.buses...)
}
