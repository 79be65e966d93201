package handlers

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// VorzeSA drives the Vorze A10 Cyclone / UFO family: a single
// rotation-with-direction feature encoded as [0x01, speed | (clockwise << 7)].
// Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/vorze_sa/mod.rs
// and vorze_sa/ufo.rs.
type VorzeSA struct {
	protocol.UnimplementedHandler
}

func NewVorzeSAHandler(_ *feature.DeviceDefinition) protocol.Handler { return &VorzeSA{} }

func (h *VorzeSA) HandleRotationWithDirection(_ uint32, featureID uuid.UUID, speed uint32, clockwise bool) ([]hardware.Command, error) {
	b := byte(speed)
	if clockwise {
		b |= 0x80
	}
	return singleWrite(featureID, hardware.EndpointTx, []byte{0x01, b}, false), nil
}
