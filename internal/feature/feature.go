// Package feature implements the Device Feature Model (spec section 3, 4.2):
// the ordered, typed capability table every device definition carries, and
// the user-config overlay merged onto it.
//
// Feature maps preserve declaration order using an ordered map rather than a
// plain Go map, the same way the BLE layer this module descends from keeps
// GATT services and characteristics in discovery order.
package feature

import (
	"github.com/google/uuid"
	om "github.com/wk8/go-ordered-map/v2"
)

// OutputType enumerates the actuator kinds a feature may expose.
type OutputType string

const (
	OutputVibrate               OutputType = "Vibrate"
	OutputOscillate             OutputType = "Oscillate"
	OutputRotate                OutputType = "Rotate"
	OutputConstrict             OutputType = "Constrict"
	OutputPosition              OutputType = "Position"
	OutputRotationWithDirection OutputType = "RotationWithDirection"
	OutputPositionWithDuration  OutputType = "PositionWithDuration"
)

// InputType enumerates the sensor kinds a feature may expose.
type InputType string

const (
	InputBattery  InputType = "Battery"
	InputRSSI     InputType = "RSSI"
	InputButton   InputType = "Button"
	InputPressure InputType = "Pressure"
)

// InputCommandType enumerates permitted operations against an input.
type InputCommandType string

const (
	InputCommandRead        InputCommandType = "Read"
	InputCommandSubscribe   InputCommandType = "Subscribe"
	InputCommandUnsubscribe InputCommandType = "Unsubscribe"
)

// Range is an integer interval bounded by Min and Max; both ends are
// accepted values (see Contains), and Rescale(1.0) yields Max.
type Range struct {
	Min int32 `json:"min" yaml:"min"`
	Max int32 `json:"max" yaml:"max"`
}

// Contains reports whether v is within [Min, Max] inclusive. The spec's
// "integer half-open intervals" describes the rescale domain; accepted
// client values are validated inclusively against Min/Max.
func (r Range) Contains(v int32) bool {
	return v >= r.Min && v <= r.Max
}

// Rescale maps a float in [0.0, 1.0] onto the range and rounds to the
// nearest integer, used when upcasting legacy float-scalar commands.
func (r Range) Rescale(scalar float64) int32 {
	if scalar < 0 {
		scalar = 0
	}
	if scalar > 1 {
		scalar = 1
	}
	span := float64(r.Max - r.Min)
	return r.Min + int32(scalar*span+0.5)
}

// InputSpec lists the operations permitted against an input type.
type InputSpec struct {
	Commands []InputCommandType `json:"commands" yaml:"commands"`
}

// AllowsCommand reports whether cmd is permitted by this spec.
func (s InputSpec) AllowsCommand(cmd InputCommandType) bool {
	for _, c := range s.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// RawSpec declares the raw byte endpoints a feature exposes.
type RawSpec struct {
	Endpoints []string `json:"endpoints" yaml:"endpoints"`
}

// HasEndpoint reports whether endpoint is listed.
func (r RawSpec) HasEndpoint(endpoint string) bool {
	for _, e := range r.Endpoints {
		if e == endpoint {
			return true
		}
	}
	return false
}

// DeviceFeature is an ordered, addressable slot on a device (spec section 3).
type DeviceFeature struct {
	// ID is a stable UUID, assigned once per base configuration entry.
	ID uuid.UUID `json:"id" yaml:"id"`

	// Description is a human-readable label for this feature slot.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Output maps output types this feature supports to their accepted range.
	// Nil/empty if this feature has no actuator capability.
	Output *om.OrderedMap[OutputType, Range] `json:"output,omitempty" yaml:"output,omitempty"`

	// Input maps input types this feature supports to their permitted commands.
	// Nil/empty if this feature has no sensor capability.
	Input *om.OrderedMap[InputType, InputSpec] `json:"input,omitempty" yaml:"input,omitempty"`

	// Raw declares byte-endpoint passthrough capability, if any.
	Raw *RawSpec `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// NewDeviceFeature returns a feature with empty output/input maps ready to populate.
func NewDeviceFeature(id uuid.UUID, description string) *DeviceFeature {
	return &DeviceFeature{
		ID:          id,
		Description: description,
		Output:      om.New[OutputType, Range](),
		Input:       om.New[InputType, InputSpec](),
	}
}

// SupportsOutput reports whether this feature exposes outputType, and its range.
func (f *DeviceFeature) SupportsOutput(outputType OutputType) (Range, bool) {
	if f.Output == nil {
		return Range{}, false
	}
	return f.Output.Get(outputType)
}

// SupportsInput reports whether this feature exposes inputType for the given command.
func (f *DeviceFeature) SupportsInput(inputType InputType, cmd InputCommandType) bool {
	if f.Input == nil {
		return false
	}
	spec, ok := f.Input.Get(inputType)
	if !ok {
		return false
	}
	return spec.AllowsCommand(cmd)
}
