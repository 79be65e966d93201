// Package handlers implements the per-device-family protocol handlers (spec
// section 4.3, 4.8). Each file is grounded on the matching Rust source file
// under original_source/crates/buttplug_server/src/device/protocol_impl/ or
// original_source/buttplug/src/server/device/protocol/.
package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/protocol"
)

// batteryReading wraps a raw percentage byte as a canonical InputTypeData.
func batteryReading(pct uint8) message.InputTypeData {
	v := pct
	return message.InputTypeData{Battery: &v}
}

// GenericIdentifier is the no-round-trip Identifier the bulk of device
// families use: the communication specifier already disambiguated the
// protocol, so Identify just reports "no variant" (grounded on the
// `generic_protocol_initializer_setup!` macro pattern that most of the
// ~150 Rust handlers invoke instead of hand-writing an Identifier).
type GenericIdentifier struct{ ProtocolName string }

func (g GenericIdentifier) Identify(_ context.Context, hw hardware.Hardware, _ protocol.Specifier) (feature.BaseDeviceIdentifier, error) {
	return feature.BaseDeviceIdentifier{Protocol: g.ProtocolName}, nil
}

// NoopInitializer performs no handshake writes and hands back a
// pre-constructed Handler; used by stateless handlers or by protocols whose
// NewHandler already does everything Initialize would.
type NoopInitializer struct {
	Build func(def *feature.DeviceDefinition) protocol.Handler
}

func (n NoopInitializer) Initialize(_ context.Context, _ hardware.Hardware, def *feature.DeviceDefinition) (protocol.Handler, error) {
	return n.Build(def), nil
}

// handleBatteryLevelCmd is the canned battery-read implementation most
// handlers share: read EndpointRxBLEBattery and report the first byte as a
// percentage (grounded on the shared `handle_battery_level_cmd` helper the
// Rust protocol modules call into, e.g. lovense_multi_actuator.rs).
func handleBatteryLevelCmd(ctx context.Context, hw hardware.Hardware, featureID uuid.UUID) (uint8, error) {
	data, err := hw.ReadValue(ctx, hardware.ReadCmd{
		FeatureID: featureID,
		Endpoint:  hardware.EndpointRxBLEBattery,
		Length:    1,
	})
	if err != nil {
		return 0, bperror.Wrap(bperror.CodeDeviceCommunication, "battery read failed", err)
	}
	if len(data) == 0 {
		return 0, bperror.New(bperror.CodeDeviceCommunication, "battery read returned no data")
	}
	return data[0], nil
}

// singleWrite is a one-command convenience constructor.
func singleWrite(featureID uuid.UUID, endpoint hardware.Endpoint, data []byte, withResponse bool) []hardware.Command {
	return []hardware.Command{{
		FeatureIDs:        []uuid.UUID{featureID},
		Endpoint:          endpoint,
		Data:              data,
		WriteWithResponse: withResponse,
	}}
}
