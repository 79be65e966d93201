package handlers

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// Motorbunny drives the two-motor Motorbunny family. Each motor is addressed
// independently, but an explicit stop opcode ([0xf1, 0x00, 0x00]) is required:
// the ordinary speed packet with a zero value is silently ignored by the
// firmware instead of stopping the motor. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/motorbunny.rs.
type Motorbunny struct {
	protocol.UnimplementedHandler
}

func NewMotorbunnyHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &Motorbunny{}
}

func (h *Motorbunny) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	if value == 0 {
		return singleWrite(featureID, hardware.EndpointTx, []byte{0xf1, 0x00, 0x00}, false), nil
	}
	return singleWrite(featureID, hardware.EndpointTx, []byte{0xf3, byte(featureIndex), byte(value)}, false), nil
}

func (h *Motorbunny) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveRepeatLastPacket}
}
