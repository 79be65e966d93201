package handlers

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// XInput drives a gamepad's rumble motors through the vendor endpoint
// (spec section 1, "XInput gamepads" is a named transport family). The
// vendor API call itself belongs to the out-of-scope transport driver; this
// handler only forms the two-motor rumble payload. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/xinput.rs.
type XInput struct {
	protocol.UnimplementedHandler
}

func NewXInputHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &XInput{}
}

func (h *XInput) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	scaled := uint16(value * 65535 / 100)
	payload := make([]byte, 4)
	if featureIndex == 0 {
		binary.LittleEndian.PutUint16(payload[0:2], scaled) // left/large motor
	} else {
		binary.LittleEndian.PutUint16(payload[2:4], scaled) // right/small motor
	}
	return singleWrite(featureID, hardware.EndpointCommand, payload, false), nil
}
