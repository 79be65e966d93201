package feature

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		v        int32
		expected bool
	}{
		{"below min", Range{Min: 0, Max: 20}, -1, false},
		{"at min", Range{Min: 0, Max: 20}, 0, true},
		{"at max", Range{Min: 0, Max: 20}, 20, true},
		{"above max", Range{Min: 0, Max: 20}, 21, false},
		{"mid range", Range{Min: 10, Max: 20}, 15, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.r.Contains(tt.v))
		})
	}
}

func TestRangeRescale(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		scalar   float64
		expected int32
	}{
		{"zero", Range{Min: 0, Max: 20}, 0.0, 0},
		{"full", Range{Min: 0, Max: 20}, 1.0, 20},
		{"half", Range{Min: 0, Max: 20}, 0.5, 10},
		{"clamps below zero", Range{Min: 0, Max: 20}, -0.5, 0},
		{"clamps above one", Range{Min: 0, Max: 20}, 1.5, 20},
		{"offset range", Range{Min: 10, Max: 30}, 0.5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.r.Rescale(tt.scalar))
		})
	}
}

func TestInputSpecAllowsCommand(t *testing.T) {
	spec := InputSpec{Commands: []InputCommandType{InputCommandRead, InputCommandSubscribe}}

	assert.True(t, spec.AllowsCommand(InputCommandRead))
	assert.True(t, spec.AllowsCommand(InputCommandSubscribe))
	assert.False(t, spec.AllowsCommand(InputCommandUnsubscribe))
}

func TestRawSpecHasEndpoint(t *testing.T) {
	raw := RawSpec{Endpoints: []string{"rx", "tx"}}

	assert.True(t, raw.HasEndpoint("rx"))
	assert.False(t, raw.HasEndpoint("rxBLEBattery"))
}

func TestDeviceFeatureSupportsOutput(t *testing.T) {
	f := NewDeviceFeature(uuid.New(), "motor")
	f.Output.Set(OutputVibrate, Range{Min: 0, Max: 20})

	r, ok := f.SupportsOutput(OutputVibrate)
	assert.True(t, ok)
	assert.Equal(t, Range{Min: 0, Max: 20}, r)

	_, ok = f.SupportsOutput(OutputRotate)
	assert.False(t, ok)
}

func TestDeviceFeatureSupportsInput(t *testing.T) {
	f := NewDeviceFeature(uuid.New(), "battery sensor")
	f.Input.Set(InputBattery, InputSpec{Commands: []InputCommandType{InputCommandRead}})

	assert.True(t, f.SupportsInput(InputBattery, InputCommandRead))
	assert.False(t, f.SupportsInput(InputBattery, InputCommandSubscribe))
	assert.False(t, f.SupportsInput(InputRSSI, InputCommandRead))
}

func TestDeviceFeatureSupportsOutputNilMap(t *testing.T) {
	f := &DeviceFeature{ID: uuid.New()}

	_, ok := f.SupportsOutput(OutputVibrate)
	assert.False(t, ok)
	assert.False(t, f.SupportsInput(InputBattery, InputCommandRead))
}
