// Package upcast implements the legacy-version-to-canonical-V4 message
// transform and its symmetric downcast (spec section 4.2), keyed against a
// device's ordered feature table. A single internal representation removes
// the N² per-version handler pairs a naive implementation would need (spec
// section 9).
package upcast

import (
	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/message"
)

// ToV4 rewrites one legacy client message into its canonical V4 form(s)
// against def, the target device's feature table. Most legacy messages
// upcast to exactly one V4 message; the subcommand-bearing legacy commands
// (VibrateCmd, ScalarCmd, ...) can expand to several.
func ToV4(msg message.Message, def *feature.DeviceDefinition) ([]message.Message, error) {
	switch m := msg.(type) {
	case *message.SingleMotorVibrateCmdV0:
		return upcastSingleMotorVibrate(m, def)
	case *message.FleshlightLaunchFW12CmdV0:
		return upcastFleshlightLaunch(m, def)
	case *message.KiirooCmdV0:
		return upcastSinglePositionFeature(m.Id, m.DeviceIdx, def)
	case *message.LovenseCmdV0:
		return upcastSingleVibrateFeature(m.Id, m.DeviceIdx, def)
	case *message.VorzeA10CycloneCmdV0:
		return upcastVorzeA10Cyclone(m, def)

	case *message.VibrateCmdV1:
		return upcastVibrate(m, def)
	case *message.LinearCmdV1:
		return upcastLinear(m, def)
	case *message.RotateCmdV1:
		return upcastRotate(m, def)

	case *message.RawWriteCmdV2, *message.RawReadCmdV2, *message.RawSubscribeCmdV2, *message.RawUnsubscribeCmdV2:
		return nil, bperror.New(bperror.CodeMessageNotSupported, "raw endpoint passthrough is not implemented by this server")
	case *message.BatteryLevelCmdV2:
		return upcastSensorRead(m.Id, m.DeviceIdx, 0, feature.InputBattery, def)
	case *message.RSSILevelCmdV2:
		return upcastSensorRead(m.Id, m.DeviceIdx, 0, feature.InputRSSI, def)

	case *message.ScalarCmdV3:
		return upcastScalar(m, def)
	case *message.SensorReadCmdV3:
		return upcastSensorRead(m.Id, m.DeviceIdx, m.SensorIndex, m.SensorType, def)
	case *message.SensorSubscribeCmdV3:
		return upcastSensorCommand(m.Id, m.DeviceIdx, m.SensorIndex, m.SensorType, def, feature.InputCommandSubscribe)
	case *message.SensorUnsubscribeCmdV3:
		return upcastSensorCommand(m.Id, m.DeviceIdx, m.SensorIndex, m.SensorType, def, feature.InputCommandUnsubscribe)

	default:
		// Already a V4 (or version-agnostic) message: nothing to rewrite.
		return []message.Message{msg}, nil
	}
}

func newOutputCmd(id, deviceIdx uint32, featureIndex int, outputType feature.OutputType, value uint32, param *uint32) *message.OutputCmdV4 {
	cmd := &message.OutputCmdV4{
		DeviceIdx:    deviceIdx,
		FeatureIndex: uint32(featureIndex),
		OutputType:   outputType,
		Value:        value,
		Param:        param,
	}
	cmd.SetID(id)
	return cmd
}

func newInputCmd(id, deviceIdx uint32, featureIndex int, inputType feature.InputType, cmdType feature.InputCommandType) *message.InputCmdV4 {
	cmd := &message.InputCmdV4{
		DeviceIdx:    deviceIdx,
		FeatureIndex: uint32(featureIndex),
		InputType:    inputType,
		Command:      cmdType,
	}
	cmd.SetID(id)
	return cmd
}

func featureIndexErr(kind string, index uint32) error {
	return bperror.Newf(bperror.CodeDeviceFeatureIndex, "no %s feature at position %d", kind, index)
}

func upcastSingleMotorVibrate(m *message.SingleMotorVibrateCmdV0, def *feature.DeviceDefinition) ([]message.Message, error) {
	var out []message.Message
	for n := 0; ; n++ {
		idx, _, r, ok := def.NthFeatureSupportingOutput(feature.OutputVibrate, n)
		if !ok {
			break
		}
		value := uint32(r.Rescale(m.Speed))
		out = append(out, newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputVibrate, value, nil))
	}
	if len(out) == 0 {
		return nil, featureIndexErr("Vibrate", 0)
	}
	return out, nil
}

func upcastFleshlightLaunch(m *message.FleshlightLaunchFW12CmdV0, def *feature.DeviceDefinition) ([]message.Message, error) {
	idx, _, r, ok := def.FirstFeatureSupportingOutput(feature.OutputPositionWithDuration)
	if !ok {
		return nil, featureIndexErr("PositionWithDuration", 0)
	}
	position := uint32(r.Rescale(float64(m.Position) / 99.0))
	duration := fleshlightDurationMS(m.Position, m.Speed)
	return []message.Message{newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputPositionWithDuration, position, &duration)}, nil
}

func upcastSinglePositionFeature(id, deviceIdx uint32, def *feature.DeviceDefinition) ([]message.Message, error) {
	idx, _, r, ok := def.FirstFeatureSupportingOutput(feature.OutputPosition)
	if !ok {
		return nil, featureIndexErr("Position", 0)
	}
	return []message.Message{newOutputCmd(id, deviceIdx, idx, feature.OutputPosition, uint32(r.Max), nil)}, nil
}

func upcastSingleVibrateFeature(id, deviceIdx uint32, def *feature.DeviceDefinition) ([]message.Message, error) {
	idx, _, r, ok := def.FirstFeatureSupportingOutput(feature.OutputVibrate)
	if !ok {
		return nil, featureIndexErr("Vibrate", 0)
	}
	return []message.Message{newOutputCmd(id, deviceIdx, idx, feature.OutputVibrate, uint32(r.Max), nil)}, nil
}

func upcastVorzeA10Cyclone(m *message.VorzeA10CycloneCmdV0, def *feature.DeviceDefinition) ([]message.Message, error) {
	idx, _, r, ok := def.FirstFeatureSupportingOutput(feature.OutputRotationWithDirection)
	if !ok {
		return nil, featureIndexErr("RotationWithDirection", 0)
	}
	value := uint32(r.Rescale(float64(m.Speed) / 99.0))
	direction := uint32(0)
	if m.Clockwise {
		direction = 1
	}
	return []message.Message{newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputRotationWithDirection, value, &direction)}, nil
}

func upcastVibrate(m *message.VibrateCmdV1, def *feature.DeviceDefinition) ([]message.Message, error) {
	out := make([]message.Message, 0, len(m.Speeds))
	for _, s := range m.Speeds {
		idx, _, r, ok := def.NthFeatureSupportingOutput(feature.OutputVibrate, int(s.Index))
		if !ok {
			return nil, featureIndexErr("Vibrate", s.Index)
		}
		value := uint32(r.Rescale(s.Speed))
		out = append(out, newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputVibrate, value, nil))
	}
	return out, nil
}

func upcastLinear(m *message.LinearCmdV1, def *feature.DeviceDefinition) ([]message.Message, error) {
	out := make([]message.Message, 0, len(m.Vectors))
	for _, v := range m.Vectors {
		idx, _, r, ok := def.NthFeatureSupportingOutput(feature.OutputPositionWithDuration, int(v.Index))
		if !ok {
			return nil, featureIndexErr("PositionWithDuration", v.Index)
		}
		position := uint32(r.Rescale(v.Position))
		duration := v.Duration
		out = append(out, newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputPositionWithDuration, position, &duration))
	}
	return out, nil
}

func upcastRotate(m *message.RotateCmdV1, def *feature.DeviceDefinition) ([]message.Message, error) {
	out := make([]message.Message, 0, len(m.Rotations))
	for _, rot := range m.Rotations {
		idx, _, r, ok := def.NthFeatureSupportingOutput(feature.OutputRotationWithDirection, int(rot.Index))
		if !ok {
			return nil, featureIndexErr("RotationWithDirection", rot.Index)
		}
		value := uint32(r.Rescale(rot.Speed))
		direction := uint32(0)
		if rot.Clockwise {
			direction = 1
		}
		out = append(out, newOutputCmd(m.Id, m.DeviceIdx, idx, feature.OutputRotationWithDirection, value, &direction))
	}
	return out, nil
}

func upcastScalar(m *message.ScalarCmdV3, def *feature.DeviceDefinition) ([]message.Message, error) {
	out := make([]message.Message, 0, len(m.Scalars))
	for _, s := range m.Scalars {
		idx, _, r, ok := def.NthFeatureSupportingOutput(s.ActuatorType, int(s.Index))
		if !ok {
			return nil, featureIndexErr(string(s.ActuatorType), s.Index)
		}
		value := uint32(r.Rescale(s.Scalar))
		out = append(out, newOutputCmd(m.Id, m.DeviceIdx, idx, s.ActuatorType, value, nil))
	}
	return out, nil
}

func upcastSensorRead(id, deviceIdx, sensorIndex uint32, inputType feature.InputType, def *feature.DeviceDefinition) ([]message.Message, error) {
	return upcastSensorCommand(id, deviceIdx, sensorIndex, inputType, def, feature.InputCommandRead)
}

func upcastSensorCommand(id, deviceIdx, sensorIndex uint32, inputType feature.InputType, def *feature.DeviceDefinition, cmdType feature.InputCommandType) ([]message.Message, error) {
	idx, _, ok := def.NthFeatureSupportingInput(inputType, cmdType, int(sensorIndex))
	if !ok {
		return nil, bperror.Newf(bperror.CodeDeviceNoSensor, "no %s input at position %d", inputType, sensorIndex)
	}
	return []message.Message{newInputCmd(id, deviceIdx, idx, inputType, cmdType)}, nil
}

// fleshlightDurationMS derives a move duration from the Fleshlight Launch's
// speed parameter (0-99) with a straight-line mapping: duration falls
// linearly as speed rises. It does not use the non-linear speed curve of
// the handlers package's fleshlight helpers, and position does not affect
// the result.
func fleshlightDurationMS(position, speed uint32) uint32 {
	if speed > 99 {
		speed = 99
	}
	// speed=99 (or above) gives 100ms; speed=0 gives 1600ms.
	return 100 + (99-speed)*1500/99
}
