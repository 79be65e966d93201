package upcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/message"
)

func TestDeviceAddedV4(t *testing.T) {
	def := twoVibrateDef()

	added := DeviceAddedV4(3, def)

	assert.Equal(t, uint32(3), added.DeviceIdx)
	assert.Equal(t, "dual motor", added.Name)
	require.Len(t, added.Features, 2)
	r, ok := added.Features[0].Output[feature.OutputVibrate]
	require.True(t, ok)
	assert.Equal(t, feature.Range{Min: 0, Max: 20}, r)
}

func TestDeviceAddedForVersionV0ListsMessageNames(t *testing.T) {
	def := singleVibrateDef()
	added := DeviceAddedV4(1, def)

	out := DeviceAddedForVersion(message.V0, added)

	v0, ok := out.(*message.DeviceAddedV0)
	require.True(t, ok)
	assert.Contains(t, v0.DeviceMessages, "SingleMotorVibrateCmd")
	assert.Contains(t, v0.DeviceMessages, "StopDeviceCmd")
}

func TestDeviceAddedForVersionV4PassesThrough(t *testing.T) {
	def := singleVibrateDef()
	added := DeviceAddedV4(1, def)

	out := DeviceAddedForVersion(message.V4, added)

	assert.Same(t, added, out)
}

func TestInputReadingForVersionV0DropsSilently(t *testing.T) {
	battery := uint8(80)
	reading := &message.InputReadingV4{DeviceIdx: 1, Data: message.InputTypeData{Battery: &battery}}

	out := InputReadingForVersion(message.V0, feature.InputBattery, 0, reading)

	assert.Nil(t, out)
}

func TestInputReadingForVersionV2Battery(t *testing.T) {
	battery := uint8(80)
	reading := &message.InputReadingV4{DeviceIdx: 1, Data: message.InputTypeData{Battery: &battery}}
	reading.SetID(4)

	out := InputReadingForVersion(message.V2, feature.InputBattery, 0, reading)

	v2, ok := out.(*message.BatteryLevelReadingV2)
	require.True(t, ok)
	assert.Equal(t, uint32(1), v2.DeviceIdx)
	assert.Equal(t, 0.8, v2.BatteryLevel)
	assert.Equal(t, uint32(4), v2.ID())
}

func TestInputReadingForVersionV2MissingDataDrops(t *testing.T) {
	reading := &message.InputReadingV4{DeviceIdx: 1, Data: message.InputTypeData{}}

	out := InputReadingForVersion(message.V2, feature.InputBattery, 0, reading)

	assert.Nil(t, out)
}

func TestInputReadingForVersionV4PassesThrough(t *testing.T) {
	rssi := int8(-50)
	reading := &message.InputReadingV4{DeviceIdx: 1, Data: message.InputTypeData{RSSI: &rssi}}

	out := InputReadingForVersion(message.V4, feature.InputRSSI, 0, reading)

	assert.Same(t, reading, out)
}
