package handlers

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// Leten drives the Leten family's single vibrate channel. Like Nobra and
// Motorbunny, a zero-value command needs its own distinguished stop opcode
// rather than an ordinary speed packet carrying zero. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/leten.rs.
type Leten struct {
	protocol.UnimplementedHandler
}

func NewLetenHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &Leten{}
}

func (h *Leten) HandleOutputVibrate(_ uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	if value == 0 {
		return singleWrite(featureID, hardware.EndpointTx, []byte{0x03, 0x00, 0x00}, false), nil
	}
	return singleWrite(featureID, hardware.EndpointTx, []byte{0x01, 0x01, byte(value)}, false), nil
}

func (h *Leten) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveNone}
}
