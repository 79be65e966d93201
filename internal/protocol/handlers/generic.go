package handlers

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// GenericSingleByte covers the large tail of device families whose protocol
// is "one byte per feature, written to a single endpoint, no handshake, no
// keepalive requirement" -- most of the roughly 150 Rust protocol modules
// that exist only to name a BLE service UUID and otherwise fall through to
// shared helper code. Rather than hand-port each one-line module, device
// definitions that don't need firmware quirks, combined packets, or a
// non-zero stop opcode are pointed at this handler instead. Grounded on the
// pattern shared by e.g.
// original_source/crates/buttplug_server/src/device/protocol_impl/maxpro.rs,
// quepanssr.rs, and the other single-byte-write modules in that directory.
type GenericSingleByte struct {
	protocol.UnimplementedHandler
	endpoint hardware.Endpoint
}

func NewGenericSingleByteHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &GenericSingleByte{endpoint: hardware.EndpointTx}
}

func (h *GenericSingleByte) HandleOutputVibrate(_ uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	return singleWrite(featureID, h.endpoint, []byte{byte(value)}, false), nil
}

func (h *GenericSingleByte) HandleOutputOscillate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	return h.HandleOutputVibrate(featureIndex, featureID, value)
}

func (h *GenericSingleByte) HandleOutputConstrict(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	return h.HandleOutputVibrate(featureIndex, featureID, value)
}

func (h *GenericSingleByte) HandleOutputPosition(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	return h.HandleOutputVibrate(featureIndex, featureID, value)
}

func (h *GenericSingleByte) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveNone}
}
