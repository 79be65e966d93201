package message

import (
	"encoding/json"
	"fmt"

	"github.com/srg/buttplugd/internal/bperror"
)

// envelope is the wire shape every message takes: a single-key object named
// after the message type (spec section 6, "Wire protocol").
type envelope map[string]json.RawMessage

// constructor builds a zero-value Message of a given wire name.
type constructor func() Message

// clientRegistry maps SpecVersion -> message name -> constructor, for
// messages a client may send. serverRegistry is the symmetric table for
// messages the server may send. Both are populated in init() below.
var clientRegistry = map[SpecVersion]map[string]constructor{}
var serverRegistry = map[SpecVersion]map[string]constructor{}

func registerClient(v SpecVersion, name string, ctor constructor) {
	if clientRegistry[v] == nil {
		clientRegistry[v] = map[string]constructor{}
	}
	clientRegistry[v][name] = ctor
}

func registerServer(v SpecVersion, name string, ctor constructor) {
	if serverRegistry[v] == nil {
		serverRegistry[v] = map[string]constructor{}
	}
	serverRegistry[v][name] = ctor
}

func init() {
	// V4 client messages
	for _, v := range []SpecVersion{V4} {
		registerClient(v, "RequestServerInfo", func() Message { return &RequestServerInfoV4{} })
		registerClient(v, "Ping", func() Message { return &PingV0{} })
		registerClient(v, "StartScanning", func() Message { return &StartScanningV0{} })
		registerClient(v, "StopScanning", func() Message { return &StopScanningV0{} })
		registerClient(v, "RequestDeviceList", func() Message { return &RequestDeviceListV0{} })
		registerClient(v, "StopDeviceCmd", func() Message { return &StopDeviceCmdV0{} })
		registerClient(v, "StopAllDevices", func() Message { return &StopAllDevicesV0{} })
		registerClient(v, "OutputCmd", func() Message { return &OutputCmdV4{} })
		registerClient(v, "InputCmd", func() Message { return &InputCmdV4{} })
	}
	// V4 server messages
	for _, v := range []SpecVersion{V4} {
		registerServer(v, "Ok", func() Message { return &OkV0{} })
		registerServer(v, "Error", func() Message { return &ErrorV0{} })
		registerServer(v, "ServerInfo", func() Message { return &ServerInfoV4{} })
		registerServer(v, "DeviceList", func() Message { return &DeviceListV4{} })
		registerServer(v, "DeviceAdded", func() Message { return &DeviceAddedV4{} })
		registerServer(v, "DeviceRemoved", func() Message { return &DeviceRemovedV4{} })
		registerServer(v, "ScanningFinished", func() Message { return &ScanningFinishedV0{} })
		registerServer(v, "InputReading", func() Message { return &InputReadingV4{} })
	}

	// Handshake/Ping/Scanning/device-list/stop messages are unchanged since V0
	// on the wire; register them for every earlier version too.
	for _, v := range []SpecVersion{V0, V1, V2, V3} {
		registerClient(v, "RequestServerInfo", func() Message { return &RequestServerInfoV4{} })
		registerClient(v, "Ping", func() Message { return &PingV0{} })
		registerClient(v, "StartScanning", func() Message { return &StartScanningV0{} })
		registerClient(v, "StopScanning", func() Message { return &StopScanningV0{} })
		registerClient(v, "RequestDeviceList", func() Message { return &RequestDeviceListV0{} })
		registerClient(v, "StopDeviceCmd", func() Message { return &StopDeviceCmdV0{} })
		registerClient(v, "StopAllDevices", func() Message { return &StopAllDevicesV0{} })

		registerServer(v, "Ok", func() Message { return &OkV0{} })
		registerServer(v, "Error", func() Message { return &ErrorV0{} })
		registerServer(v, "ScanningFinished", func() Message { return &ScanningFinishedV0{} })
	}

	// V0-specific
	registerClient(V0, "SingleMotorVibrateCmd", func() Message { return &SingleMotorVibrateCmdV0{} })
	registerClient(V0, "FleshlightLaunchFW12Cmd", func() Message { return &FleshlightLaunchFW12CmdV0{} })
	registerClient(V0, "KiirooCmd", func() Message { return &KiirooCmdV0{} })
	registerClient(V0, "LovenseCmd", func() Message { return &LovenseCmdV0{} })
	registerClient(V0, "VorzeA10CycloneCmd", func() Message { return &VorzeA10CycloneCmdV0{} })
	registerServer(V0, "DeviceAdded", func() Message { return &DeviceAddedV0{} })

	// V1-specific
	registerClient(V1, "VibrateCmd", func() Message { return &VibrateCmdV1{} })
	registerClient(V1, "LinearCmd", func() Message { return &LinearCmdV1{} })
	registerClient(V1, "RotateCmd", func() Message { return &RotateCmdV1{} })
	registerClient(V1, "SingleMotorVibrateCmd", func() Message { return &SingleMotorVibrateCmdV0{} })
	registerClient(V1, "FleshlightLaunchFW12Cmd", func() Message { return &FleshlightLaunchFW12CmdV0{} })
	registerClient(V1, "KiirooCmd", func() Message { return &KiirooCmdV0{} })
	registerClient(V1, "LovenseCmd", func() Message { return &LovenseCmdV0{} })
	registerClient(V1, "VorzeA10CycloneCmd", func() Message { return &VorzeA10CycloneCmdV0{} })
	registerServer(V1, "DeviceAdded", func() Message { return &DeviceAddedV1{} })

	// V2-specific
	registerClient(V2, "VibrateCmd", func() Message { return &VibrateCmdV1{} })
	registerClient(V2, "LinearCmd", func() Message { return &LinearCmdV1{} })
	registerClient(V2, "RotateCmd", func() Message { return &RotateCmdV1{} })
	registerClient(V2, "RawWriteCmd", func() Message { return &RawWriteCmdV2{} })
	registerClient(V2, "RawReadCmd", func() Message { return &RawReadCmdV2{} })
	registerClient(V2, "RawSubscribeCmd", func() Message { return &RawSubscribeCmdV2{} })
	registerClient(V2, "RawUnsubscribeCmd", func() Message { return &RawUnsubscribeCmdV2{} })
	registerClient(V2, "BatteryLevelCmd", func() Message { return &BatteryLevelCmdV2{} })
	registerClient(V2, "RSSILevelCmd", func() Message { return &RSSILevelCmdV2{} })
	registerServer(V2, "DeviceAdded", func() Message { return &DeviceAddedV2{} })
	registerServer(V2, "RawReading", func() Message { return &RawReadingV2{} })
	registerServer(V2, "BatteryLevelReading", func() Message { return &BatteryLevelReadingV2{} })
	registerServer(V2, "RSSILevelReading", func() Message { return &RSSILevelReadingV2{} })

	// V3-specific
	registerClient(V3, "ScalarCmd", func() Message { return &ScalarCmdV3{} })
	registerClient(V3, "LinearCmd", func() Message { return &LinearCmdV1{} })
	registerClient(V3, "RotateCmd", func() Message { return &RotateCmdV1{} })
	registerClient(V3, "RawWriteCmd", func() Message { return &RawWriteCmdV2{} })
	registerClient(V3, "RawReadCmd", func() Message { return &RawReadCmdV2{} })
	registerClient(V3, "RawSubscribeCmd", func() Message { return &RawSubscribeCmdV2{} })
	registerClient(V3, "RawUnsubscribeCmd", func() Message { return &RawUnsubscribeCmdV2{} })
	registerClient(V3, "SensorReadCmd", func() Message { return &SensorReadCmdV3{} })
	registerClient(V3, "SensorSubscribeCmd", func() Message { return &SensorSubscribeCmdV3{} })
	registerClient(V3, "SensorUnsubscribeCmd", func() Message { return &SensorUnsubscribeCmdV3{} })
	registerServer(V3, "DeviceAdded", func() Message { return &DeviceAddedV3{} })
	registerServer(V3, "RawReading", func() Message { return &RawReadingV2{} })
	registerServer(V3, "SensorReading", func() Message { return &SensorReadingV3{} })
}

// Serializer frames/deframes JSON text messages for one negotiated spec
// version (spec section 4.1 "Serialization").
type Serializer struct {
	version SpecVersion
}

// NewSerializer returns a Serializer bound to version. The handshake
// (RequestServerInfo) is always interpretable at every version, so callers
// typically start with NewSerializer(Max) until negotiation completes, then
// rebind via WithVersion. Each version decodes only the names registered for
// that exact version.
func NewSerializer(version SpecVersion) *Serializer {
	return &Serializer{version: version}
}

// WithVersion returns a copy of s bound to a different version.
func (s *Serializer) WithVersion(v SpecVersion) *Serializer {
	return &Serializer{version: v}
}

// Version reports the version this serializer is bound to.
func (s *Serializer) Version() SpecVersion { return s.version }

// DeserializeClientMessages parses one inbound text frame: a JSON array of
// single-key envelope objects, returning one Message per element
// (multi-message frames support client pipelining, spec section 4.1).
func (s *Serializer) DeserializeClientMessages(frame []byte) ([]Message, error) {
	var envelopes []envelope
	if err := json.Unmarshal(frame, &envelopes); err != nil {
		return nil, bperror.Wrap(bperror.CodeTextDeserial, "malformed message frame", err)
	}
	out := make([]Message, 0, len(envelopes))
	for _, env := range envelopes {
		msg, err := s.decodeOne(clientRegistry, env)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// DeserializeServerMessages is the symmetric entry point on the client side
// (used by tests exercising the connector round-trip).
func (s *Serializer) DeserializeServerMessages(frame []byte) ([]Message, error) {
	var envelopes []envelope
	if err := json.Unmarshal(frame, &envelopes); err != nil {
		return nil, bperror.Wrap(bperror.CodeTextDeserial, "malformed message frame", err)
	}
	out := make([]Message, 0, len(envelopes))
	for _, env := range envelopes {
		msg, err := s.decodeOne(serverRegistry, env)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *Serializer) decodeOne(registry map[SpecVersion]map[string]constructor, env envelope) (Message, error) {
	if len(env) != 1 {
		return nil, bperror.Newf(bperror.CodeJSONValidator, "expected exactly one message name per envelope, got %d", len(env))
	}
	versioned, ok := registry[s.version]
	if !ok {
		return nil, bperror.Newf(bperror.CodeMessageSpecVersionNotReceived, "no message registry for spec version %s", s.version)
	}
	for name, raw := range env {
		ctor, ok := versioned[name]
		if !ok {
			return nil, bperror.Newf(bperror.CodeUnexpectedMessage, "unsupported message %q for spec version %s", name, s.version)
		}
		msg := ctor()
		if err := json.Unmarshal(raw, msg); err != nil {
			return nil, bperror.Wrap(bperror.CodeJSONValidator, fmt.Sprintf("decoding %s", name), err)
		}
		return msg, nil
	}
	panic("unreachable")
}

// SerializeMessages frames one or more messages into a single outgoing JSON
// array text frame, tagging each with its wire name (spec section 6).
func (s *Serializer) SerializeMessages(msgs ...Message) ([]byte, error) {
	envs := make([]envelope, 0, len(msgs))
	for _, m := range msgs {
		name, err := wireName(m)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, bperror.Wrap(bperror.CodeJSONSerializer, "encoding message", err)
		}
		envs = append(envs, envelope{name: raw})
	}
	out, err := json.Marshal(envs)
	if err != nil {
		return nil, bperror.Wrap(bperror.CodeJSONSerializer, "encoding frame", err)
	}
	return out, nil
}
