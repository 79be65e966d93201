package upcast

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/message"
)

func singleVibrateDef() *feature.DeviceDefinition {
	f := feature.NewDeviceFeature(uuid.New(), "motor")
	f.Output.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 20})
	return &feature.DeviceDefinition{Name: "test device", Features: []*feature.DeviceFeature{f}}
}

func twoVibrateDef() *feature.DeviceDefinition {
	f0 := feature.NewDeviceFeature(uuid.New(), "motor 0")
	f0.Output.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 20})
	f1 := feature.NewDeviceFeature(uuid.New(), "motor 1")
	f1.Output.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 100})
	return &feature.DeviceDefinition{Name: "dual motor", Features: []*feature.DeviceFeature{f0, f1}}
}

func TestToV4SingleMotorVibrate(t *testing.T) {
	def := singleVibrateDef()
	msg := &message.SingleMotorVibrateCmdV0{DeviceIdx: 1, Speed: 0.5}
	msg.SetID(7)

	out, err := ToV4(msg, def)

	require.NoError(t, err)
	require.Len(t, out, 1)
	cmd := out[0].(*message.OutputCmdV4)
	assert.Equal(t, uint32(7), cmd.ID())
	assert.Equal(t, uint32(1), cmd.DeviceIdx)
	assert.Equal(t, feature.OutputVibrate, cmd.OutputType)
	assert.Equal(t, uint32(10), cmd.Value)
}

func TestToV4SingleMotorVibrateNoFeature(t *testing.T) {
	def := &feature.DeviceDefinition{Name: "no motor"}
	msg := &message.SingleMotorVibrateCmdV0{DeviceIdx: 1, Speed: 1.0}

	_, err := ToV4(msg, def)

	assert.Error(t, err)
}

func TestToV4VibrateCmdPositional(t *testing.T) {
	def := twoVibrateDef()
	msg := &message.VibrateCmdV1{
		DeviceIdx: 2,
		Speeds: []message.VibrateSubcommandV1{
			{Index: 0, Speed: 1.0},
			{Index: 1, Speed: 0.5},
		},
	}

	out, err := ToV4(msg, def)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint32(20), out[0].(*message.OutputCmdV4).Value)
	assert.Equal(t, uint32(50), out[1].(*message.OutputCmdV4).Value)
}

func TestToV4ScalarCmd(t *testing.T) {
	def := singleVibrateDef()
	msg := &message.ScalarCmdV3{
		DeviceIdx: 3,
		Scalars: []message.ScalarSubcommandV3{
			{Index: 0, Scalar: 0.25, ActuatorType: feature.OutputVibrate},
		},
	}

	out, err := ToV4(msg, def)

	require.NoError(t, err)
	require.Len(t, out, 1)
	cmd := out[0].(*message.OutputCmdV4)
	assert.Equal(t, feature.OutputVibrate, cmd.OutputType)
	assert.Equal(t, uint32(5), cmd.Value)
}

func TestToV4RawPassthroughUnsupported(t *testing.T) {
	def := singleVibrateDef()
	msg := &message.RawWriteCmdV2{DeviceIdx: 1}

	_, err := ToV4(msg, def)

	assert.Error(t, err)
}

func TestToV4PassesThroughAlreadyCanonical(t *testing.T) {
	def := singleVibrateDef()
	msg := &message.OutputCmdV4{DeviceIdx: 1, FeatureIndex: 0, OutputType: feature.OutputVibrate, Value: 10}

	out, err := ToV4(msg, def)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Same(t, msg, out[0])
}

func TestFleshlightDurationMS(t *testing.T) {
	assert.Equal(t, uint32(100), fleshlightDurationMS(0, 99))
	assert.Equal(t, uint32(1600), fleshlightDurationMS(0, 0))
	assert.Equal(t, uint32(100), fleshlightDurationMS(0, 150))
}
