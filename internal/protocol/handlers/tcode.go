package handlers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// TCode drives generic TCode-speaking devices (OSR2/SR6 and similar DIY
// platforms): each linear axis is its own ASCII channel, L0 for the primary
// stroke axis, L1/L2/... for auxiliary axes, R0/R1 for rotation, V0 for
// vibration. Position is written as a 4-digit permille value with a trailing
// duration in milliseconds. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/tcode_v03.rs.
type TCode struct {
	protocol.UnimplementedHandler
}

func NewTCodeHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &TCode{}
}

func tcodeAxis(featureIndex uint32) string {
	if featureIndex == 0 {
		return "L0"
	}
	return fmt.Sprintf("L%d", featureIndex)
}

func (h *TCode) HandlePositionWithDuration(featureIndex uint32, featureID uuid.UUID, position, durationMS uint32) ([]hardware.Command, error) {
	permille := position * 999 / 99
	cmd := fmt.Sprintf("%s%04dI%d\n", tcodeAxis(featureIndex), permille, durationMS)
	return singleWrite(featureID, hardware.EndpointTx, []byte(cmd), false), nil
}

func (h *TCode) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	permille := value * 999 / 99
	cmd := fmt.Sprintf("V%d%04d\n", featureIndex, permille)
	return singleWrite(featureID, hardware.EndpointTx, []byte(cmd), false), nil
}

func (h *TCode) HandleOutputRotate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	permille := value * 999 / 99
	cmd := fmt.Sprintf("R%d%04d\n", featureIndex, permille)
	return singleWrite(featureID, hardware.EndpointTx, []byte(cmd), false), nil
}

func (h *TCode) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveNone}
}
