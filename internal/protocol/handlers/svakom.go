package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// svakomSecondaryWriteDelay is the gap before Tara X / Xuanhuan-style
// devices need a confirming second write (spec section 9, design note: "some
// handlers depend on a timed secondary write following a first... kept
// inside handle_output_* using delayed-task primitives").
const svakomSecondaryWriteDelay = 200 * time.Millisecond

// Svakom drives the Svakom family. It requires
// HardwareRequiredRepeatLastPacketStrategy (the device times out without
// periodic traffic even when the command hasn't changed) and, for certain
// models (Tara X, Xuanhuan), a timed confirming second write after the
// first. Grounded on
// original_source/crates/buttplug_server/src/device/protocol_impl/svakom/mod.rs
// and svakom_tarax.rs / xuanhuan.rs.
type Svakom struct {
	protocol.UnimplementedHandler
	// RequiresSecondaryWrite selects the Tara X / Xuanhuan timed-second-write
	// behavior; most Svakom models don't need it. When set, hw must be
	// non-nil (set by SvakomTaraXInitializer) so the delayed write has
	// something to issue against -- the one handler in this catalog that
	// deliberately breaks the "handler owns no hardware handle" rule, per
	// the spec's open question on this exact device family.
	RequiresSecondaryWrite bool
	hw                     hardware.Hardware
}

func NewSvakomHandler(_ *feature.DeviceDefinition) protocol.Handler {
	return &Svakom{}
}

// SvakomTaraXInitializer hands the live Hardware handle to the resulting
// Svakom handler so its vibrate command can schedule the confirming second
// write the device's firmware requires.
type SvakomTaraXInitializer struct{}

func NewSvakomTaraXInitializer() protocol.Initializer { return SvakomTaraXInitializer{} }

func (SvakomTaraXInitializer) Initialize(_ context.Context, hw hardware.Hardware, _ *feature.DeviceDefinition) (protocol.Handler, error) {
	return &Svakom{RequiresSecondaryWrite: true, hw: hw}, nil
}

func (h *Svakom) HandleOutputVibrate(_ uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error) {
	data := []byte{0x55, 0x03, 0x00, byte(value), 0x00, 0x00}
	cmds := singleWrite(featureID, hardware.EndpointTx, data, false)
	if h.RequiresSecondaryWrite && h.hw != nil {
		confirm := append([]byte(nil), data...)
		confirm[1] = 0x04
		hw := h.hw
		time.AfterFunc(svakomSecondaryWriteDelay, func() {
			// Fire-and-forget: failures here don't affect the ordering
			// guarantee over the controller's command queue (spec section
			// 5), since this write never passes through it.
			_ = hw.WriteValue(context.Background(), hardware.WriteCmd{
				FeatureIDs: []uuid.UUID{featureID},
				Endpoint:   hardware.EndpointTx,
				Data:       confirm,
			})
		})
	}
	return cmds, nil
}

func (h *Svakom) KeepaliveStrategy() protocol.KeepaliveStrategy {
	return protocol.KeepaliveStrategy{Kind: protocol.KeepaliveHardwareRequiredRepeat}
}
