package message

import (
	"github.com/google/uuid"
	"github.com/srg/buttplugd/internal/feature"
)

// --- Client -> Server ---

// RequestServerInfoV4 is always the first client message (spec section 4.1).
type RequestServerInfoV4 struct {
	baseMessage
	ClientName     string `json:"ClientName"`
	MessageVersion uint32 `json:"MessageVersion"`
}

func (m *RequestServerInfoV4) Validate() error { return validateNotSystemID(m.Id) }

// PingV0 resets the server's ping watchdog (spec section 4.7). Unchanged since V0.
type PingV0 struct{ baseMessage }

func (m *PingV0) Validate() error { return validateNotSystemID(m.Id) }

// StartScanningV0 requests the server begin device enumeration.
type StartScanningV0 struct{ baseMessage }

func (m *StartScanningV0) Validate() error { return validateNotSystemID(m.Id) }

// StopScanningV0 requests the server stop device enumeration.
type StopScanningV0 struct{ baseMessage }

func (m *StopScanningV0) Validate() error { return validateNotSystemID(m.Id) }

// RequestDeviceListV0 requests the current device table.
type RequestDeviceListV0 struct{ baseMessage }

func (m *RequestDeviceListV0) Validate() error { return validateNotSystemID(m.Id) }

// StopDeviceCmdV0 synthesises a zero-output command for every feature of one device.
type StopDeviceCmdV0 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
}

func (m *StopDeviceCmdV0) Validate() error   { return validateNotSystemID(m.Id) }
func (m *StopDeviceCmdV0) DeviceIndex() uint32 { return m.DeviceIdx }

// StopAllDevicesV0 synthesises StopDeviceCmd semantics for every live device.
type StopAllDevicesV0 struct{ baseMessage }

func (m *StopAllDevicesV0) Validate() error { return validateNotSystemID(m.Id) }

// OutputCmdV4 is the canonical actuator command (spec section 4.1).
// Param carries the second scalar PositionWithDuration/RotationWithDirection need
// (duration-ms, or 1 for clockwise/0 for counter-clockwise); it is unused otherwise.
type OutputCmdV4 struct {
	baseMessage
	DeviceIdx    uint32            `json:"DeviceIndex"`
	FeatureIndex uint32            `json:"FeatureIndex"`
	OutputType   feature.OutputType `json:"OutputType"`
	Value        uint32            `json:"Value"`
	Param        *uint32           `json:"Param,omitempty"`
}

func (m *OutputCmdV4) Validate() error     { return validateNotSystemID(m.Id) }
func (m *OutputCmdV4) DeviceIndex() uint32 { return m.DeviceIdx }

// InputCmdV4 is the canonical sensor command (spec section 4.1).
type InputCmdV4 struct {
	baseMessage
	DeviceIdx    uint32                   `json:"DeviceIndex"`
	FeatureIndex uint32                   `json:"FeatureIndex"`
	InputType    feature.InputType        `json:"InputType"`
	Command      feature.InputCommandType `json:"Command"`
}

func (m *InputCmdV4) Validate() error     { return validateNotSystemID(m.Id) }
func (m *InputCmdV4) DeviceIndex() uint32 { return m.DeviceIdx }

// --- Server -> Client ---

// OkV0 acknowledges a successfully processed request.
type OkV0 struct{ baseMessage }

func (m *OkV0) Validate() error { return validateIsReplyID(m.Id) }

// ErrorV0 surfaces a failure for a specific request id (spec section 7).
type ErrorV0 struct {
	baseMessage
	ErrorCode    string `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

func (m *ErrorV0) Validate() error { return nil } // Errors may legitimately carry id=0 (spec section 7: serializer errors).

// ServerInfoV4 answers RequestServerInfo (spec section 4.1).
type ServerInfoV4 struct {
	baseMessage
	ServerName     string `json:"ServerName"`
	MessageVersion uint32 `json:"MessageVersion"`
	MaxPingTime    uint32 `json:"MaxPingTime"`
}

func (m *ServerInfoV4) Validate() error { return validateIsReplyID(m.Id) }

// DeviceFeatureInfo is the wire projection of a feature.DeviceFeature.
type DeviceFeatureInfo struct {
	ID          uuid.UUID                                    `json:"Id"`
	Description string                                       `json:"Description,omitempty"`
	Output      map[feature.OutputType]feature.Range          `json:"Output,omitempty"`
	Input       map[feature.InputType][]feature.InputCommandType `json:"Input,omitempty"`
}

// DeviceAddedV4 announces a newly enumerated device (spec section 4.1, 4.2).
type DeviceAddedV4 struct {
	baseMessage
	DeviceIdx uint32              `json:"DeviceIndex"`
	Name      string              `json:"DeviceName"`
	Features  []DeviceFeatureInfo `json:"DeviceFeatures"`
}

func (m *DeviceAddedV4) Validate() error   { return validateIsSystemID(m.Id) }
func (m *DeviceAddedV4) DeviceIndex() uint32 { return m.DeviceIdx }

// DeviceRemovedV4 announces device teardown.
type DeviceRemovedV4 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
}

func (m *DeviceRemovedV4) Validate() error   { return validateIsSystemID(m.Id) }
func (m *DeviceRemovedV4) DeviceIndex() uint32 { return m.DeviceIdx }

// DeviceListV4 answers RequestDeviceList.
type DeviceListV4 struct {
	baseMessage
	Devices []DeviceAddedV4 `json:"Devices"`
}

func (m *DeviceListV4) Validate() error { return validateIsReplyID(m.Id) }

// ScanningFinishedV0 announces that enumeration has settled.
type ScanningFinishedV0 struct{ baseMessage }

func (m *ScanningFinishedV0) Validate() error { return validateIsSystemID(m.Id) }

// InputTypeData is a tagged union of sensor reading payloads (spec section 4.1).
type InputTypeData struct {
	Battery  *uint8 `json:"Battery,omitempty"`
	RSSI     *int8  `json:"RSSI,omitempty"`
	Button   *uint8 `json:"Button,omitempty"`
	Pressure *uint32 `json:"Pressure,omitempty"`
}

// InputReadingV4 carries a sensor sample, either in reply to InputCmd(Read)
// or unsolicited from a subscription (id=0 in that case).
type InputReadingV4 struct {
	baseMessage
	DeviceIdx    uint32        `json:"DeviceIndex"`
	FeatureIndex uint32        `json:"FeatureIndex"`
	Data         InputTypeData `json:"Reading"`
}

func (m *InputReadingV4) Validate() error     { return nil } // may be id=0 (unsolicited) or id>0 (reply); both valid.
func (m *InputReadingV4) DeviceIndex() uint32 { return m.DeviceIdx }
