package message

// Legacy V2 client messages (spec section 4.2): raw byte passthrough and
// single-sensor (Battery/RSSI) commands, still addressed by feature Index
// rather than by feature id.

// RawWriteCmdV2 writes raw bytes to a named endpoint; only routable if the
// device has a raw feature listing that endpoint (spec section 4.2, 4.3).
type RawWriteCmdV2 struct {
	baseMessage
	DeviceIdx         uint32 `json:"DeviceIndex"`
	Endpoint          string `json:"Endpoint"`
	Data              []byte `json:"Data"`
	WriteWithResponse bool   `json:"WriteWithResponse"`
}

func (m *RawWriteCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *RawWriteCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RawReadCmdV2 reads raw bytes from a named endpoint.
type RawReadCmdV2 struct {
	baseMessage
	DeviceIdx  uint32 `json:"DeviceIndex"`
	Endpoint   string `json:"Endpoint"`
	ExpectedLength uint32 `json:"ExpectedLength"`
	Timeout    uint32 `json:"Timeout"`
}

func (m *RawReadCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *RawReadCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RawSubscribeCmdV2 subscribes to notifications from a named endpoint.
type RawSubscribeCmdV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Endpoint  string `json:"Endpoint"`
}

func (m *RawSubscribeCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *RawSubscribeCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RawUnsubscribeCmdV2 cancels a prior RawSubscribeCmd.
type RawUnsubscribeCmdV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Endpoint  string `json:"Endpoint"`
}

func (m *RawUnsubscribeCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *RawUnsubscribeCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RawReadingV2 answers RawReadCmd or an active RawSubscribeCmd.
type RawReadingV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	Endpoint  string `json:"Endpoint"`
	Data      []byte `json:"Data"`
}

func (m *RawReadingV2) Validate() error     { return nil }
func (m *RawReadingV2) DeviceIndex() uint32 { return m.DeviceIdx }

// BatteryLevelCmdV2 reads the device's battery input.
type BatteryLevelCmdV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
}

func (m *BatteryLevelCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *BatteryLevelCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// BatteryLevelReadingV2 answers BatteryLevelCmd.
type BatteryLevelReadingV2 struct {
	baseMessage
	DeviceIdx    uint32 `json:"DeviceIndex"`
	BatteryLevel float64 `json:"BatteryLevel"`
}

func (m *BatteryLevelReadingV2) Validate() error     { return nil }
func (m *BatteryLevelReadingV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RSSILevelCmdV2 reads the device's RSSI input. It upcasts to a V4 InputCmd
// Read and the reading comes back as RSSILevelReadingV2; a device with no
// readable RSSI input gets a DeviceNoSensor error, and a reading that
// carries no RSSI value is dropped silently.
type RSSILevelCmdV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
}

func (m *RSSILevelCmdV2) Validate() error     { return validateNotSystemID(m.Id) }
func (m *RSSILevelCmdV2) DeviceIndex() uint32 { return m.DeviceIdx }

// RSSILevelReadingV2 answers RSSILevelCmd.
type RSSILevelReadingV2 struct {
	baseMessage
	DeviceIdx uint32 `json:"DeviceIndex"`
	RSSILevel int32  `json:"RSSILevel"`
}

func (m *RSSILevelReadingV2) Validate() error     { return nil }
func (m *RSSILevelReadingV2) DeviceIndex() uint32 { return m.DeviceIdx }

// ClientDeviceMessageAttributesV2 mirrors the V1 capability descriptor with
// an added StepCount list used by V2 clients.
type ClientDeviceMessageAttributesV2 struct {
	FeatureCount *uint32 `json:"FeatureCount,omitempty"`
	StepCount    []uint32 `json:"StepCount,omitempty"`
}

// DeviceAddedV2 is the V2 projection of DeviceAddedV4.
type DeviceAddedV2 struct {
	baseMessage
	DeviceIdx      uint32                                     `json:"DeviceIndex"`
	DeviceName     string                                     `json:"DeviceName"`
	DeviceMessages map[string]ClientDeviceMessageAttributesV2 `json:"DeviceMessages"`
}

func (m *DeviceAddedV2) Validate() error     { return validateIsSystemID(m.Id) }
func (m *DeviceAddedV2) DeviceIndex() uint32 { return m.DeviceIdx }
