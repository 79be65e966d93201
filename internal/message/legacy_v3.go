package message

import "github.com/srg/buttplugd/internal/feature"

// Legacy V3 client messages (spec section 4.2): the first version to
// generalize sensors beyond Battery/RSSI via SensorReadCmd, though only
// Battery was ever actually supported in practice.

// ScalarSubcommandV3 is one element of ScalarCmdV3.Scalars.
type ScalarSubcommandV3 struct {
	Index       uint32             `json:"Index"`
	Scalar      float64            `json:"Scalar"`
	ActuatorType feature.OutputType `json:"ActuatorType"`
}

// ScalarCmdV3 generalizes VibrateCmd/RotateCmd/etc into a single actuator-typed command.
type ScalarCmdV3 struct {
	baseMessage
	DeviceIdx uint32               `json:"DeviceIndex"`
	Scalars   []ScalarSubcommandV3 `json:"Scalars"`
}

func (m *ScalarCmdV3) Validate() error {
	if err := validateNotSystemID(m.Id); err != nil {
		return err
	}
	for _, s := range m.Scalars {
		if err := validateUnitInterval(s.Scalar, "Scalar"); err != nil {
			return err
		}
	}
	return nil
}
func (m *ScalarCmdV3) DeviceIndex() uint32 { return m.DeviceIdx }

// SensorReadCmdV3 reads a sensor input by positional SensorIndex. Only
// SensorType "Battery" was ever supported by the original implementation.
type SensorReadCmdV3 struct {
	baseMessage
	DeviceIdx   uint32            `json:"DeviceIndex"`
	SensorIndex uint32            `json:"SensorIndex"`
	SensorType  feature.InputType `json:"SensorType"`
}

func (m *SensorReadCmdV3) Validate() error     { return validateNotSystemID(m.Id) }
func (m *SensorReadCmdV3) DeviceIndex() uint32 { return m.DeviceIdx }

// SensorSubscribeCmdV3 subscribes to a sensor input.
type SensorSubscribeCmdV3 struct {
	baseMessage
	DeviceIdx   uint32            `json:"DeviceIndex"`
	SensorIndex uint32            `json:"SensorIndex"`
	SensorType  feature.InputType `json:"SensorType"`
}

func (m *SensorSubscribeCmdV3) Validate() error     { return validateNotSystemID(m.Id) }
func (m *SensorSubscribeCmdV3) DeviceIndex() uint32 { return m.DeviceIdx }

// SensorUnsubscribeCmdV3 cancels a prior SensorSubscribeCmd.
type SensorUnsubscribeCmdV3 struct {
	baseMessage
	DeviceIdx   uint32            `json:"DeviceIndex"`
	SensorIndex uint32            `json:"SensorIndex"`
	SensorType  feature.InputType `json:"SensorType"`
}

func (m *SensorUnsubscribeCmdV3) Validate() error     { return validateNotSystemID(m.Id) }
func (m *SensorUnsubscribeCmdV3) DeviceIndex() uint32 { return m.DeviceIdx }

// SensorReadingV3 answers SensorReadCmd or an active SensorSubscribeCmd.
type SensorReadingV3 struct {
	baseMessage
	DeviceIdx   uint32            `json:"DeviceIndex"`
	SensorIndex uint32            `json:"SensorIndex"`
	SensorType  feature.InputType `json:"SensorType"`
	Data        []int32           `json:"Data"`
}

func (m *SensorReadingV3) Validate() error     { return nil }
func (m *SensorReadingV3) DeviceIndex() uint32 { return m.DeviceIdx }

// ClientDeviceMessageAttributesV3 is the V3 per-feature capability descriptor.
type ClientDeviceMessageAttributesV3 struct {
	FeatureDescriptor string              `json:"FeatureDescriptor,omitempty"`
	ActuatorType      *feature.OutputType `json:"ActuatorType,omitempty"`
	SensorType        *feature.InputType  `json:"SensorType,omitempty"`
	StepRange         []int32             `json:"StepRange,omitempty"`
}

// DeviceAddedV3 is the V3 projection of DeviceAddedV4.
type DeviceAddedV3 struct {
	baseMessage
	DeviceIdx      uint32                                        `json:"DeviceIndex"`
	DeviceName     string                                        `json:"DeviceName"`
	DeviceMessages map[string][]ClientDeviceMessageAttributesV3 `json:"DeviceMessages"`
}

func (m *DeviceAddedV3) Validate() error     { return validateIsSystemID(m.Id) }
func (m *DeviceAddedV3) DeviceIndex() uint32 { return m.DeviceIdx }
