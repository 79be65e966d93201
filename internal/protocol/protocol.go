// Package protocol defines the three-phase protocol handler trait set (spec
// section 4.3) and the registry mapping protocol name to its factories.
package protocol

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
)

// Specifier names the communication-level match that led the device manager
// to consider this protocol for a discovered device, so Identify can use the
// same information without re-deriving it.
type Specifier = hardware.Specifier

// Identifier is phase 1: given a connected Hardware and the specifier that
// matched it, resolve which configuration row (UserDeviceIdentifier) applies.
// Some protocols need a round trip (e.g. reading a firmware string) to
// disambiguate models sharing one advertised name.
type Identifier interface {
	Identify(ctx context.Context, hw hardware.Hardware, spec Specifier) (feature.BaseDeviceIdentifier, error)
}

// Initializer is phase 2: given the Hardware and the resolved
// DeviceDefinition, perform any handshake writes, then produce the steady-state Handler.
type Initializer interface {
	Initialize(ctx context.Context, hw hardware.Hardware, def *feature.DeviceDefinition) (Handler, error)
}

// KeepaliveStrategy declares whether and how the controller must repeat the
// last packet it sent to a device (spec section 4.3).
type KeepaliveStrategy struct {
	Kind   KeepaliveKind
	Period time.Duration // repeat period for any Kind other than KeepaliveNone; zero means DefaultKeepalivePeriod
}

type KeepaliveKind int

const (
	// KeepaliveNone: the controller never re-sends anything for this device.
	KeepaliveNone KeepaliveKind = iota
	// KeepaliveRepeatLastPacket: re-send the last packet on the controller's implementation-default period.
	KeepaliveRepeatLastPacket
	// KeepaliveRepeatLastPacketWithTiming: re-send the last packet on Period.
	KeepaliveRepeatLastPacketWithTiming
	// KeepaliveHardwareRequiredRepeat: the transport needs traffic to avoid
	// timing out even if nothing changed; the controller must resend
	// last_command_bytes on every tick regardless.
	KeepaliveHardwareRequiredRepeat
)

// DefaultKeepalivePeriod is the controller's implementation-default repeat period.
const DefaultKeepalivePeriod = 500 * time.Millisecond

// Handler is phase 3: the steady-state translator of canonical feature
// commands into wire bytes (spec section 4.3). Every method defaults to
// "unsupported" via the embeddable UnimplementedHandler; a concrete handler
// only implements the methods its device family needs.
type Handler interface {
	HandleOutputVibrate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error)
	HandleOutputOscillate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error)
	HandleOutputRotate(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error)
	HandleOutputConstrict(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error)
	HandleOutputPosition(featureIndex uint32, featureID uuid.UUID, value uint32) ([]hardware.Command, error)
	HandlePositionWithDuration(featureIndex uint32, featureID uuid.UUID, position, durationMS uint32) ([]hardware.Command, error)
	HandleRotationWithDirection(featureIndex uint32, featureID uuid.UUID, speed uint32, clockwise bool) ([]hardware.Command, error)

	HandleInputRead(ctx context.Context, deviceIndex uint32, hw hardware.Hardware, featureIndex uint32, featureID uuid.UUID, inputType feature.InputType) (message.InputTypeData, error)
	HandleBatteryLevel(ctx context.Context, deviceIndex uint32, hw hardware.Hardware, featureIndex uint32, featureID uuid.UUID) (message.InputTypeData, error)

	KeepaliveStrategy() KeepaliveStrategy
}

// UnimplementedHandler gives every optional Handler method a default
// "unsupported" behavior; concrete handlers embed this and override only
// what their device family needs (spec section 4.3, "default: return
// unsupported").
type UnimplementedHandler struct{}

func unsupported(kind string) error {
	return bperror.Newf(bperror.CodeMessageNotSupported, "%s not supported by this protocol", kind)
}

func (UnimplementedHandler) HandleOutputVibrate(uint32, uuid.UUID, uint32) ([]hardware.Command, error) {
	return nil, unsupported("vibrate")
}
func (UnimplementedHandler) HandleOutputOscillate(uint32, uuid.UUID, uint32) ([]hardware.Command, error) {
	return nil, unsupported("oscillate")
}
func (UnimplementedHandler) HandleOutputRotate(uint32, uuid.UUID, uint32) ([]hardware.Command, error) {
	return nil, unsupported("rotate")
}
func (UnimplementedHandler) HandleOutputConstrict(uint32, uuid.UUID, uint32) ([]hardware.Command, error) {
	return nil, unsupported("constrict")
}
func (UnimplementedHandler) HandleOutputPosition(uint32, uuid.UUID, uint32) ([]hardware.Command, error) {
	return nil, unsupported("position")
}
func (UnimplementedHandler) HandlePositionWithDuration(uint32, uuid.UUID, uint32, uint32) ([]hardware.Command, error) {
	return nil, unsupported("position-with-duration")
}
func (UnimplementedHandler) HandleRotationWithDirection(uint32, uuid.UUID, uint32, bool) ([]hardware.Command, error) {
	return nil, unsupported("rotation-with-direction")
}
func (UnimplementedHandler) HandleInputRead(context.Context, uint32, hardware.Hardware, uint32, uuid.UUID, feature.InputType) (message.InputTypeData, error) {
	return message.InputTypeData{}, unsupported("input read")
}
func (UnimplementedHandler) HandleBatteryLevel(context.Context, uint32, hardware.Hardware, uint32, uuid.UUID) (message.InputTypeData, error) {
	return message.InputTypeData{}, unsupported("battery level")
}
func (UnimplementedHandler) KeepaliveStrategy() KeepaliveStrategy {
	return KeepaliveStrategy{Kind: KeepaliveNone}
}
