package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/protocol"
)

// Lovense is a multi-actuator vibrate handler: each feature addresses one
// motor via a "Vibrate{n}:{speed};" ASCII command, feature_index+1-indexed.
// Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/lovense/lovense_multi_actuator.rs.
type Lovense struct {
	protocol.UnimplementedHandler
}

func NewLovenseHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &Lovense{}
}

func (h *Lovense) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	cmd := fmt.Sprintf("Vibrate%d:%d;", featureIndex+1, value)
	return singleWrite(featureID, hardware.EndpointTx, []byte(cmd), false), nil
}

func (h *Lovense) HandleOutputOscillate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	return h.HandleOutputVibrate(featureIndex, featureID, value)
}

func (h *Lovense) HandleOutputConstrict(_ uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	cmd := fmt.Sprintf("Air:Level:%d;", value)
	return singleWrite(featureID, hardware.EndpointTx, []byte(cmd), false), nil
}

func (h *Lovense) HandleBatteryLevel(ctx context.Context, _ uint32, hw hardware.Hardware, _ uint32, featureID uuid.UUID) (message.InputTypeData, error) {
	pct, err := handleBatteryLevelCmd(ctx, hw, featureID)
	if err != nil {
		return message.InputTypeData{}, err
	}
	return batteryReading(pct), nil
}

func (h *Lovense) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveRepeatLastPacket}
}
