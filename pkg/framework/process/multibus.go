package process

import (
	"fmt"

	"github.com/justyntemme/avgo/pkg/framework/bus"
)

// BusBuffers represents audio buffers for a single bus
type BusBuffers struct {
	Channels [][]float32
	BusInfo  *bus.Info
}

// MultiBusContext splits the flat channel lists of a Context into buses
type MultiBusContext struct {
	*Context

	InputBuses  []BusBuffers
	OutputBuses []BusBuffers

	BusConfig *bus.Configuration
}

// NewMultiBusContext creates a new multi-bus process context. Call Split
// after the context's Input and Output are set for a block.
func NewMultiBusContext(ctx *Context, busConfig *bus.Configuration) *MultiBusContext {
	m := &MultiBusContext{
		Context:     ctx,
		InputBuses:  make([]BusBuffers, busConfig.GetBusCount(bus.DirectionInput)),
		OutputBuses: make([]BusBuffers, busConfig.GetBusCount(bus.DirectionOutput)),
		BusConfig:   busConfig,
	}
	for i := range m.InputBuses {
		m.InputBuses[i].BusInfo = busConfig.GetBusInfo(bus.DirectionInput, int32(i))
	}
	for i := range m.OutputBuses {
		m.OutputBuses[i].BusInfo = busConfig.GetBusInfo(bus.DirectionOutput, int32(i))
	}
	return m
}

// Split assigns consecutive channels of Input and Output to the active
// buses. Inactive buses get no channels.
func (m *MultiBusContext) Split() error {
	if err := split(m.Input, m.InputBuses); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := split(m.Output, m.OutputBuses); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func split(channels [][]float32, buses []BusBuffers) error {
	offset := 0
	for i := range buses {
		info := buses[i].BusInfo
		if !info.IsActive {
			buses[i].Channels = nil
			continue
		}
		n := int(info.ChannelCount)
		if offset+n > len(channels) {
			return fmt.Errorf("bus %q needs %d channels, %d left", info.Name, n, len(channels)-offset)
		}
		buses[i].Channels = channels[offset : offset+n : offset+n]
		offset += n
	}
	return nil
}

// GetMainInput returns the main input bus buffers
func (m *MultiBusContext) GetMainInput() [][]float32 {
	for i := range m.InputBuses {
		if m.InputBuses[i].BusInfo.BusType == bus.TypeMain {
			return m.InputBuses[i].Channels
		}
	}
	return nil
}

// GetMainOutput returns the main output bus buffers
func (m *MultiBusContext) GetMainOutput() [][]float32 {
	for i := range m.OutputBuses {
		if m.OutputBuses[i].BusInfo.BusType == bus.TypeMain {
			return m.OutputBuses[i].Channels
		}
	}
	return nil
}

// GetSidechainInput returns the first aux input if available
func (m *MultiBusContext) GetSidechainInput() [][]float32 {
	for i := range m.InputBuses {
		if m.InputBuses[i].BusInfo.BusType == bus.TypeAux {
			return m.InputBuses[i].Channels
		}
	}
	return nil
}

// ProcessInputBuses iterates through all active input buses
func (m *MultiBusContext) ProcessInputBuses(fn func(busIndex int, channels [][]float32, info *bus.Info)) {
	for i, b := range m.InputBuses {
		if b.BusInfo.IsActive {
			fn(i, b.Channels, b.BusInfo)
		}
	}
}

// ProcessOutputBuses iterates through all active output buses
func (m *MultiBusContext) ProcessOutputBuses(fn func(busIndex int, channels [][]float32, info *bus.Info)) {
	for i, b := range m.OutputBuses {
		if b.BusInfo.IsActive {
			fn(i, b.Channels, b.BusInfo)
		}
	}
}
