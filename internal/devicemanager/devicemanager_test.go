package devicemanager

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	om "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/hardware/mock"
	"github.com/srg/buttplugd/internal/protocol"
	"github.com/srg/buttplugd/internal/protocol/handlers"
)

func testTable(t *testing.T, userConfigs *config.UserConfigs) *config.Table {
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
	if userConfigs != nil {
		file.UserConfigs = *userConfigs
	}
	return config.BuildTable(file)
}

func newTestManager(t *testing.T, userConfigs *config.UserConfigs) *Manager {
	t.Helper()
	registry := protocol.NewRegistry()
	handlers.Register(registry)
	return New(testTable(t, userConfigs), registry, nil)
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for device manager event")
		return Event{}
	}
}

func TestManagerDiscoversAndAddsDevice(t *testing.T) {
	m := newTestManager(t, nil)
	cm := mock.NewCommunicationManager("sim")
	ctx := context.Background()
	m.RegisterCommunicationManager(ctx, cm)

	dev := mock.NewDevice("Test Vibrator", "AA:BB:CC:DD:EE:FF").WithEndpoints(hardware.EndpointTx).Build()
	cm.Emit("Test Vibrator", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Test Vibrator"}})

	ev := waitEvent(t, m.Events())
	require.Equal(t, EventDeviceAdded, ev.Kind)
	assert.Equal(t, uint32(0), ev.Index)
	assert.Equal(t, "Test Vibrator", ev.Record.Definition.Name)

	rec, ok := m.Get(0)
	require.True(t, ok)
	assert.Same(t, ev.Record, rec)
}

func TestManagerIgnoresUnmatchedDevice(t *testing.T) {
	m := newTestManager(t, nil)
	cm := mock.NewCommunicationManager("sim")
	ctx := context.Background()
	m.RegisterCommunicationManager(ctx, cm)

	dev := mock.NewDevice("Unrelated Gadget", "11:22:33:44:55:66").Build()
	cm.Emit("Unrelated Gadget", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Unrelated Gadget"}})

	select {
	case ev := <-m.Events():
		t.Fatalf("expected no event for unmatched device, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManagerDenyBeforeIdentifyStopsPipeline(t *testing.T) {
	deny := true
	userConfigs := &config.UserConfigs{
		Devices: []config.UserDeviceEntry{{
			Identifier: "generic-single-byte@AA:BB:CC:DD:EE:FF",
			Config:     config.UserDeviceEntryConfig{UserConfig: feature.UserDeviceCustomization{Deny: deny}},
		}},
	}
	m := newTestManager(t, userConfigs)
	cm := mock.NewCommunicationManager("sim")
	ctx := context.Background()
	m.RegisterCommunicationManager(ctx, cm)

	dev := mock.NewDevice("Test Vibrator", "AA:BB:CC:DD:EE:FF").Build()
	cm.Emit("Test Vibrator", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Test Vibrator"}})

	select {
	case ev := <-m.Events():
		t.Fatalf("expected denied device to produce no event, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManagerRemovesDeviceOnDisconnect(t *testing.T) {
	m := newTestManager(t, nil)
	cm := mock.NewCommunicationManager("sim")
	ctx := context.Background()
	m.RegisterCommunicationManager(ctx, cm)

	dev := mock.NewDevice("Test Vibrator", "AA:BB:CC:DD:EE:FF").WithEndpoints(hardware.EndpointTx).Build()
	cm.Emit("Test Vibrator", dev.Address(), &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Test Vibrator"}})
	added := waitEvent(t, m.Events())
	require.Equal(t, EventDeviceAdded, added.Kind)

	dev.SimulateDisconnect()

	removed := waitEvent(t, m.Events())
	assert.Equal(t, EventDeviceRemoved, removed.Kind)
	assert.Equal(t, added.Index, removed.Index)

	_, ok := m.Get(added.Index)
	assert.False(t, ok)
}
