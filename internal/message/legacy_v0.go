package message

// Legacy V0 client messages (spec section 4.2). These predate the
// feature-table abstraction entirely: commands address a device by index
// only, with a single implicit capability.

// SingleMotorVibrateCmdV0 vibrates every Vibrate-capable feature at the same scalar.
type SingleMotorVibrateCmdV0 struct {
	baseMessage
	DeviceIdx uint32  `json:"DeviceIndex"`
	Speed     float64 `json:"Speed"`
}

func (m *SingleMotorVibrateCmdV0) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	return validateUnitInterval(m.Speed, "Speed")
}
func (m *SingleMotorVibrateCmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// FleshlightLaunchFW12CmdV0 drives the Fleshlight Launch's single linear
// actuator: Position in [0,99], Speed in [0,99] (a percentage, not unit interval).
type FleshlightLaunchFW12CmdV0 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Position  uint32 `json:"Position"`
	Speed     uint32 `json:"Speed"`
}

func (m *FleshlightLaunchFW12CmdV0) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	if m.Position > 99 || m.Speed > 99 {
		return invalidContentsErr("Position and Speed must be in [0, 99]")
	}
	return nil
}
func (m *FleshlightLaunchFW12CmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// KiirooCmdV0 drives the single documented feature on original Kiiroo toys
// with an ASCII-digit position command.
type KiirooCmdV0 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Command   string `json:"Command"`
}

func (m *KiirooCmdV0) Validate() error     { return validateNotSystemID(m.Id) }
func (m *KiirooCmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// LovenseCmdV0 passes a raw Lovense protocol string through to the device's
// single documented feature.
type LovenseCmdV0 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Command   string `json:"Command"`
}

func (m *LovenseCmdV0) Validate() error     { return validateNotSystemID(m.Id) }
func (m *LovenseCmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// VorzeA10CycloneCmdV0 drives the Vorze A10 Cyclone's single rotation feature.
type VorzeA10CycloneCmdV0 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Speed     uint32 `json:"Speed"`
	Clockwise bool   `json:"Clockwise"`
}

func (m *VorzeA10CycloneCmdV0) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	if m.Speed > 99 {
		return invalidContentsErr("Speed must be in [0, 99]")
	}
	return nil
}
func (m *VorzeA10CycloneCmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// DeviceAddedV0 is the V0 projection of DeviceAddedV4: a sorted list of
// supported message names rather than a feature table (spec section 4.2).
type DeviceAddedV0 struct {
	baseMessage
	DeviceIdx        uint32   `json:"DeviceIndex"`
	DeviceName       string   `json:"DeviceName"`
	DeviceMessages   []string `json:"DeviceMessages"`
}

func (m *DeviceAddedV0) Validate() error     { return validateIsSystemID(m.Id) }
func (m *DeviceAddedV0) DeviceIndex() uint32 { return m.DeviceIdx }
