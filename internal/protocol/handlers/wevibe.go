package handlers

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// WeVibe drives the dual-motor WeVibe family, whose wire packet encodes both
// motors at once. Each feature's handler reads the *other* motor's last
// commanded value out of an atomic and re-sends the combined packet, so no
// lock is needed on the hot path (spec section 4.3, "stateful handlers... keep
// their state in atomics"). Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/wevibe.rs.
type WeVibe struct {
	protocol.UnimplementedHandler
	motor [2]atomic.Uint32
}

func NewWeVibeHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &WeVibe{}
}

func (h *WeVibe) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	idx := featureIndex
	if idx > 1 {
		idx = 1
	}
	h.motor[idx].Store(value)
	r := h.motor[0].Load()
	l := h.motor[1].Load()
	data := []byte{0x0f, 0x03, byte(r) | byte(l)<<4, 0x00, 0x03, 0x00, 0x00}
	return singleWrite(featureID, hardware.EndpointTx, data, false), nil
}

// WeVibe8Bit is the 8-bit-per-motor variant of the combined packet, grounded
// on wevibe8bit.rs.
type WeVibe8Bit struct {
	protocol.UnimplementedHandler
	motor [2]atomic.Uint32
}

func NewWeVibe8BitHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &WeVibe8Bit{}
}

func (h *WeVibe8Bit) HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	idx := featureIndex
	if idx > 1 {
		idx = 1
	}
	h.motor[idx].Store(value)
	data := []byte{
		0x0f, 0x04, 0x00,
		byte(h.motor[0].Load()),
		byte(h.motor[1].Load()),
		0x00, 0x03, 0x00, 0x00,
	}
	return singleWrite(featureID, hardware.EndpointTx, data, false), nil
}
