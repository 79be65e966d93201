package handlers

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// KiirooV2Identifier is the no-round-trip identifier for the kiiroo-v2 family.
type KiirooV2Identifier struct{ GenericIdentifier }

func NewKiirooV2Identifier() protocol.Identifier {
	return KiirooV2Identifier{GenericIdentifier{ProtocolName: "kiiroo-v2"}}
}

// KiirooV2Initializer writes a single wake-up byte to the firmware endpoint
// before handing off to the steady-state handler, grounded on KiirooV2Initializer.
type KiirooV2Initializer struct{}

func NewKiirooV2Initializer() protocol.Initializer { return KiirooV2Initializer{} }

func (KiirooV2Initializer) Initialize(ctx context.Context, hw hardware.Hardware, _ *feature.DeviceDefinition) (protocol.Handler, error) {
	if err := hw.WriteValue(ctx, hardware.WriteCmd{
		Endpoint:          hardware.EndpointFirmware,
		Data:              []byte{0x0},
		WriteWithResponse: true,
	}); err != nil {
		return nil, err
	}
	return &KiirooV2{}, nil
}

// KiirooV2 drives the device's single PositionWithDuration feature, using the
// Fleshlight speed curve to translate (previous, target, duration) into a
// device speed byte. previousPosition is held in an atomic because the
// per-device single-writer invariant (spec section 5) means no mutex is
// needed on the hot path, grounded on KiirooV2's AtomicU8 field.
type KiirooV2 struct {
	protocol.UnimplementedHandler
	previousPosition atomic.Uint32
}

func (h *KiirooV2) HandlePositionWithDuration(_ uint32, featureID uuid.UUID, position, durationMS uint32) ([]hardware.Command, error) {
	prev := h.previousPosition.Load()
	distance := math.Abs(float64(prev)-float64(position)) / 99.0
	speed := uint8(fleshlightSpeed(distance, durationMS) * 99)
	h.previousPosition.Store(position)
	return singleWrite(featureID, hardware.EndpointTx, []byte{byte(position), speed}, false), nil
}
