package message

// Legacy V1 client messages (spec section 4.2): the feature table exists in
// the wire protocol now, but commands still carry float scalars in
// [0.0, 1.0] and address features by a positional Index rather than a
// feature id.

// VibrateSubcommandV1 is one element of VibrateCmdV1.Speeds.
type VibrateSubcommandV1 struct {
	Index uint32  `json:"Index"`
	Speed float64 `json:"Speed"`
}

// VibrateCmdV1 vibrates one or more Vibrate-capable features by positional index.
type VibrateCmdV1 struct {
	baseMessage
	DeviceIdx uint32                `json:"DeviceIndex"`
	Speeds    []VibrateSubcommandV1 `json:"Speeds"`
}

func (m *VibrateCmdV1) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	for _, s := range m.Speeds {
		if err := validateUnitInterval(s.Speed, "Speed"); err != nil {
			return err
		}
	}
	return nil
}
func (m *VibrateCmdV1) DeviceIndex() uint32 { return m.DeviceIdx }

// LinearSubcommandV1 is one element of LinearCmdV1.Vectors.
type LinearSubcommandV1 struct {
	Index    uint32  `json:"Index"`
	Duration uint32  `json:"Duration"`
	Position float64 `json:"Position"`
}

// LinearCmdV1 moves one or more PositionWithDuration-capable features.
type LinearCmdV1 struct {
	baseMessage
	DeviceIdx uint32                `json:"DeviceIndex"`
	Vectors   []LinearSubcommandV1 `json:"Vectors"`
}

func (m *LinearCmdV1) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	for _, v := range m.Vectors {
		if err := validateUnitInterval(v.Position, "Position"); err != nil {
			return err
		}
	}
	return nil
}
func (m *LinearCmdV1) DeviceIndex() uint32 { return m.DeviceIdx }

// RotateSubcommandV1 is one element of RotateCmdV1.Rotations.
type RotateSubcommandV1 struct {
	Index     uint32  `json:"Index"`
	Speed     float64 `json:"Speed"`
	Clockwise bool    `json:"Clockwise"`
}

// RotateCmdV1 rotates one or more RotationWithDirection-capable features.
type RotateCmdV1 struct {
	baseMessage
	DeviceIdx uint32               `json:"DeviceIndex"`
	Rotations []RotateSubcommandV1 `json:"Rotations"`
}

func (m *RotateCmdV1) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	for _, r := range m.Rotations {
		if err := validateUnitInterval(r.Speed, "Speed"); err != nil {
			return err
		}
	}
	return nil
}
func (m *RotateCmdV1) DeviceIndex() uint32 { return m.DeviceIdx }

// ClientDeviceMessageAttributesV1 is the per-message-type capability
// descriptor V1 devices advertise (projected from the V4 feature table).
type ClientDeviceMessageAttributesV1 struct {
	FeatureCount *uint32 `json:"FeatureCount,omitempty"`
}

// DeviceAddedV1 is the V1 projection of DeviceAddedV4.
type DeviceAddedV1 struct {
	baseMessage
	DeviceIdx          uint32                                      `json:"DeviceIndex"`
	DeviceName         string                                      `json:"DeviceName"`
	DeviceMessages     map[string]ClientDeviceMessageAttributesV1 `json:"DeviceMessages"`
}

func (m *DeviceAddedV1) Validate() error     { return validateIsSystemID(m.Id) }
func (m *DeviceAddedV1) DeviceIndex() uint32 { return m.DeviceIdx }
