package controller

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/hardware/mock"
	"github.com/srg/buttplugd/internal/protocol/handlers"
)

func vibrateDef() (*feature.DeviceDefinition, uuid.UUID) {
	id := uuid.New()
	f := feature.NewDeviceFeature(id, "motor")
	f.Output.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 20})
	return &feature.DeviceDefinition{Name: "test", Features: []*feature.DeviceFeature{f}}, id
}

func newTestController(t *testing.T) (*Controller, *mock.Device, uuid.UUID) {
	t.Helper()
	def, featureID := vibrateDef()
	dev := mock.NewDevice("test device", "00:11:22:33:44:55").
		WithEndpoints(hardware.EndpointTx).
		Build()
	handler := handlers.NewGenericSingleByteHandler(def)
	c := New(1, dev, handler, def, nil)
	require.NoError(t, c.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Stop(ctx)
	})
	return c, dev, featureID
}

func TestControllerEnqueueWritesToHardware(t *testing.T) {
	c, dev, featureID := newTestController(t)

	result := make(chan error, 1)
	c.Enqueue(FeatureCommand{FeatureIndex: 0, FeatureID: featureID, Output: feature.OutputVibrate, Value: 10}, result)

	require.NoError(t, waitResult(t, result))
	write, ok := dev.LastWrite()
	require.True(t, ok)
	assert.Equal(t, hardware.EndpointTx, write.Endpoint)
	assert.Equal(t, []byte{10}, write.Data)
}

func TestControllerEnqueueRejectsUnknownFeature(t *testing.T) {
	c, _, _ := newTestController(t)

	result := make(chan error, 1)
	c.Enqueue(FeatureCommand{FeatureIndex: 5, FeatureID: uuid.New(), Output: feature.OutputVibrate, Value: 10}, result)

	assert.Error(t, waitResult(t, result))
}

func TestControllerEnqueueRejectsFeatureMismatch(t *testing.T) {
	c, _, _ := newTestController(t)

	result := make(chan error, 1)
	c.Enqueue(FeatureCommand{FeatureIndex: 0, FeatureID: uuid.New(), Output: feature.OutputVibrate, Value: 10}, result)

	assert.Error(t, waitResult(t, result))
}

func TestControllerEnqueueRejectsUnsupportedOutput(t *testing.T) {
	c, _, featureID := newTestController(t)

	result := make(chan error, 1)
	c.Enqueue(FeatureCommand{FeatureIndex: 0, FeatureID: featureID, Output: feature.OutputRotate, Value: 1}, result)

	assert.Error(t, waitResult(t, result))
}

func TestControllerStopDeviceZeroesEveryOutput(t *testing.T) {
	c, dev, _ := newTestController(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.StopDevice(ctx))

	write, ok := dev.LastWrite()
	require.True(t, ok)
	assert.Equal(t, []byte{0}, write.Data)
}

func TestControllerDisconnectEmitsDeviceRemoved(t *testing.T) {
	c, dev, _ := newTestController(t)

	dev.SimulateDisconnect()

	select {
	case ev := <-c.Events():
		assert.Equal(t, EventDeviceRemoved, ev.Kind)
		assert.Equal(t, uint32(1), ev.DeviceIndex)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for device-removed event")
	}
}

func waitResult(t *testing.T, result chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command result")
		return nil
	}
}
