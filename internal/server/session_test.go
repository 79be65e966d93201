package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	om "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/devicemanager"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/hardware/mock"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/protocol"
	"github.com/srg/buttplugd/internal/protocol/handlers"
)

func newBatteryTestManagerForSession(t *testing.T) (*devicemanager.Manager, *mock.CommunicationManager) {
	t.Helper()
	input := om.New[feature.InputType, feature.InputSpec]()
	input.Set(feature.InputBattery, feature.InputSpec{Commands: []feature.InputCommandType{feature.InputCommandRead}})

	file := &config.File{
		Version: config.FileVersion{Major: 1, Minor: 0},
		Protocols: map[string]config.ProtocolConfig{
			"lovense": {
				Communication: []hardware.Specifier{{Name: "Test Lovense"}},
				Defaults: &config.DeviceConfigEntry{
					Name: "Test Lovense",
					Features: []*feature.DeviceFeature{{
						ID:    uuid.New(),
						Input: input,
					}},
				},
			},
		},
	}

	registry := protocol.NewRegistry()
	handlers.Register(registry)
	manager := devicemanager.New(config.BuildTable(file), registry, nil)
	cm := mock.NewCommunicationManager("sim")
	manager.RegisterCommunicationManager(context.Background(), cm)
	return manager, cm
}

func newTestManagerForSession(t *testing.T) *devicemanager.Manager {
	t.Helper()
	output := om.New[feature.OutputType, feature.Range]()
	output.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 20})

	file := &config.File{
		Version: config.FileVersion{Major: 1, Minor: 0},
		Protocols: map[string]config.ProtocolConfig{
			"generic-single-byte": {
				Communication: []hardware.Specifier{{Name: "Test Vibrator"}},
				Defaults: &config.DeviceConfigEntry{
					Name: "Test Vibrator",
					Features: []*feature.DeviceFeature{{
						ID:     uuid.New(),
						Output: output,
					}},
				},
			},
		},
	}

	registry := protocol.NewRegistry()
	handlers.Register(registry)
	return devicemanager.New(config.BuildTable(file), registry, nil)
}

// runningSession starts a Session over one half of an in-process transport
// pair and hands back the other half for a test to drive as a client.
func runningSession(t *testing.T, manager *devicemanager.Manager, cfg *config.ServerConfig) (client Transport, done <-chan error) {
	t.Helper()
	clientTransport, serverTransport := NewChannelTransportPair()

	session := NewSession(serverTransport, manager, cfg, nil)
	errc := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { errc <- session.Run(ctx) }()

	return clientTransport, errc
}

func handshakeClient(t *testing.T, transport Transport) *message.Serializer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := &message.RequestServerInfoV4{ClientName: "test client", MessageVersion: uint32(message.V4)}
	req.SetID(1)
	frame, err := message.NewSerializer(message.V4).SerializeMessages(req)
	require.NoError(t, err)
	require.NoError(t, transport.WriteMessage(ctx, frame))

	reply, err := transport.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := message.NewSerializer(message.V4).DeserializeServerMessages(reply)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	info, ok := msgs[0].(*message.ServerInfoV4)
	require.True(t, ok)
	assert.Equal(t, uint32(1), info.ID())
	assert.Equal(t, uint32(message.V4), info.MessageVersion)

	return message.NewSerializer(message.V4)
}

func TestSessionHandshakeNegotiatesVersion(t *testing.T) {
	manager := newTestManagerForSession(t)
	cfg := config.DefaultServerConfig()
	cfg.ServerName = "test server"
	client, _ := runningSession(t, manager, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := &message.RequestServerInfoV4{ClientName: "c", MessageVersion: uint32(message.V4)}
	req.SetID(1)
	frame, err := message.NewSerializer(message.V4).SerializeMessages(req)
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(ctx, frame))

	reply, err := client.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := message.NewSerializer(message.V4).DeserializeServerMessages(reply)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	info, ok := msgs[0].(*message.ServerInfoV4)
	require.True(t, ok)
	assert.Equal(t, "test server", info.ServerName)
	assert.Equal(t, uint32(message.V4), info.MessageVersion)
}

func TestSessionForwardsDeviceAdded(t *testing.T) {
	manager := newTestManagerForSession(t)
	client, _ := runningSession(t, manager, config.DefaultServerConfig())
	ser := handshakeClient(t, client)

	cm := mock.NewCommunicationManager("sim")
	manager.RegisterCommunicationManager(context.Background(), cm)
	dev := mock.NewDevice("Test Vibrator", "AA:BB:CC:DD:EE:FF").WithEndpoints(hardware.EndpointTx).Build()
	cm.Emit("Test Vibrator", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Test Vibrator"}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := client.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := ser.DeserializeServerMessages(frame)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	added, ok := msgs[0].(*message.DeviceAddedV4)
	require.True(t, ok)
	assert.Equal(t, uint32(0), added.DeviceIdx)
	assert.Equal(t, "Test Vibrator", added.Name)
}

// handshakeClientAtVersion performs the RequestServerInfo/ServerInfo
// round-trip declaring clientVersion, returning a serializer bound to
// whatever version the server actually negotiated.
func handshakeClientAtVersion(t *testing.T, transport Transport, clientVersion message.SpecVersion) *message.Serializer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := &message.RequestServerInfoV4{ClientName: "test client", MessageVersion: uint32(clientVersion)}
	req.SetID(1)
	frame, err := message.NewSerializer(message.V4).SerializeMessages(req)
	require.NoError(t, err)
	require.NoError(t, transport.WriteMessage(ctx, frame))

	reply, err := transport.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := message.NewSerializer(message.V4).DeserializeServerMessages(reply)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	info, ok := msgs[0].(*message.ServerInfoV4)
	require.True(t, ok)

	negotiated, ok := message.ParseSpecVersion(info.MessageVersion)
	require.True(t, ok)
	return message.NewSerializer(negotiated)
}

// TestSessionV2BatteryReadDowncastsReading guards against the InputCmd(Read)
// synchronous reply bypassing version downcast: a V2 client's
// BatteryLevelCmd must get back a BatteryLevelReading it can parse, not a
// raw V4 InputReading its vocabulary has no name for.
func TestSessionV2BatteryReadDowncastsReading(t *testing.T) {
	manager, cm := newBatteryTestManagerForSession(t)
	client, _ := runningSession(t, manager, config.DefaultServerConfig())
	ser := handshakeClientAtVersion(t, client, message.V2)
	assert.Equal(t, uint32(message.V2), uint32(ser.Version()))

	dev := mock.NewDevice("Test Lovense", "AA:BB:CC:DD:EE:FF").
		WithEndpoints(hardware.EndpointRxBLEBattery).
		WithReadReply(hardware.EndpointRxBLEBattery, []byte{42}).
		Build()
	cm.Emit("Test Lovense", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Test Lovense"}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	addedFrame, err := client.ReadMessage(ctx)
	require.NoError(t, err)
	_, err = ser.DeserializeServerMessages(addedFrame)
	require.NoError(t, err)

	cmd := &message.BatteryLevelCmdV2{DeviceIdx: 0}
	cmd.SetID(5)
	frame, err := ser.SerializeMessages(cmd)
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(ctx, frame))

	reply, err := client.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := ser.DeserializeServerMessages(reply)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	reading, isReading := msgs[0].(*message.BatteryLevelReadingV2)
	require.True(t, isReading, "expected BatteryLevelReading, got %T", msgs[0])
	assert.Equal(t, uint32(5), reading.ID())
	assert.InDelta(t, 0.42, reading.BatteryLevel, 0.001)
}

func TestSessionStopAllDevicesReturnsOk(t *testing.T) {
	manager := newTestManagerForSession(t)
	client, _ := runningSession(t, manager, config.DefaultServerConfig())
	ser := handshakeClient(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stop := &message.StopAllDevicesV0{}
	stop.SetID(2)
	frame, err := ser.SerializeMessages(stop)
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(ctx, frame))

	reply, err := client.ReadMessage(ctx)
	require.NoError(t, err)
	msgs, err := ser.DeserializeServerMessages(reply)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	okMsg, isOk := msgs[0].(*message.OkV0)
	require.True(t, isOk)
	assert.Equal(t, uint32(2), okMsg.ID())
}
