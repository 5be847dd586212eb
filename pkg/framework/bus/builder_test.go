package bus

import (
	"strings"
	"testing"
)

func TestBuilderPorts(t *testing.T) {
	config, err := NewBuilder().
		WithPort(DirectionInput, "In", 2, 0).
		WithPort(DirectionInput, "Key", 1, 1).
		WithPort(DirectionOutput, "Out", 2, 0).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tests := []struct {
		dir     Direction
		index   int32
		name    string
		busType Type
		port    int
	}{
		{DirectionInput, 0, "In", TypeMain, 0},
		{DirectionInput, 1, "Key", TypeAux, 1},
		{DirectionOutput, 0, "Out", TypeMain, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := config.GetBusInfo(tt.dir, tt.index)
			if bus == nil {
				t.Fatal("bus missing")
			}
			if bus.Name != tt.name || bus.BusType != tt.busType || bus.Port != tt.port {
				t.Errorf("got %+v", *bus)
			}
			if !bus.IsActive {
				t.Error("port buses must be active")
			}
		})
	}

	if got := config.ChannelCount(DirectionInput); got != 3 {
		t.Errorf("Expected 3 input channels, got %d", got)
	}
}

func TestBuilderValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Builder
		wantErr string
	}{
		{
			name:  "Empty",
			build: NewBuilder,
		},
		{
			name:    "ZeroChannels",
			build:   func() *Builder { return NewBuilder().WithAudioInput("In", 0) },
			wantErr: "invalid channel count",
		},
		{
			name:    "TooManyChannels",
			build:   func() *Builder { return NewBuilder().WithAudioOutput("Out", MaxChannels+1) },
			wantErr: "exceeds maximum",
		},
		{
			name:    "MissingBus",
			build:   func() *Builder { return NewBuilder().SetBusActive(DirectionInput, 3, true) },
			wantErr: "bus not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Build()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSetBusActive(t *testing.T) {
	config := NewBuilder().
		WithStereoInput("In").
		WithSidechain("SC").
		SetBusActive(DirectionInput, 1, true).
		MustBuild()

	if !config.GetBusInfo(DirectionInput, 1).IsActive {
		t.Error("Expected sidechain to be active")
	}
}

func TestMustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	NewBuilder().WithMonoInput("In").WithAudioOutput("Out", -1).MustBuild()
}
