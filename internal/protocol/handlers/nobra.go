package handlers

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// nobraStopByte is the explicit stop opcode this family requires: writing
// zero speed with the ordinary command byte leaves the motor coasting, so
// stop needs its own distinguished packet. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/nobra.rs.
const nobraStopByte = 0x0f

// Nobra drives the Nobra Silicone family's single vibrate channel, framed as
// [0x01, speed] with an all-stop packet [0x0f, 0x00] rather than [0x01, 0x00]
// when value is zero.
type Nobra struct {
	protocol.UnimplementedHandler
}

func NewNobraHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &Nobra{}
}

func (h *Nobra) HandleOutputVibrate(_ uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	if value == 0 {
		return singleWrite(featureID, hardware.EndpointTx, []byte{nobraStopByte, 0x00}, false), nil
	}
	return singleWrite(featureID, hardware.EndpointTx, []byte{0x01, byte(value)}, false), nil
}

func (h *Nobra) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveNone}
}
