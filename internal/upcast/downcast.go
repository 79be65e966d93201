package upcast

import (
	"sort"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/message"
)

// DeviceAddedV4 projects a feature.DeviceDefinition into the canonical
// DeviceAdded server event.
func DeviceAddedV4(deviceIndex uint32, def *feature.DeviceDefinition) *message.DeviceAddedV4 {
	out := &message.DeviceAddedV4{
		DeviceIdx: deviceIndex,
		Name:      def.Name,
		Features:  make([]message.DeviceFeatureInfo, 0, len(def.Features)),
	}
	for _, f := range def.Features {
		info := message.DeviceFeatureInfo{ID: f.ID, Description: f.Description}
		if f.Output != nil && f.Output.Len() > 0 {
			info.Output = make(map[feature.OutputType]feature.Range, f.Output.Len())
			for p := f.Output.Oldest(); p != nil; p = p.Next() {
				info.Output[p.Key] = p.Value
			}
		}
		if f.Input != nil && f.Input.Len() > 0 {
			info.Input = make(map[feature.InputType][]feature.InputCommandType, f.Input.Len())
			for p := f.Input.Oldest(); p != nil; p = p.Next() {
				info.Input[p.Key] = p.Value.Commands
			}
		}
		out.Features = append(out.Features, info)
	}
	return out
}

// DeviceAddedForVersion downcasts a canonical DeviceAddedV4 into the wire
// shape a client negotiated at version v expects (spec section 4.2:
// "device-added events attach the V4 feature list; V3 and below project out
// a per-message-type capability table; V0 projects out a sorted list of
// supported message names").
func DeviceAddedForVersion(v message.SpecVersion, added *message.DeviceAddedV4) message.Message {
	switch v {
	case message.V0:
		return deviceAddedV0(added)
	case message.V1:
		return deviceAddedV1(added)
	case message.V2:
		return deviceAddedV2(added)
	case message.V3:
		return deviceAddedV3(added)
	default:
		return added
	}
}

func deviceAddedV0(added *message.DeviceAddedV4) *message.DeviceAddedV0 {
	names := map[string]bool{}
	for _, f := range added.Features {
		for out := range f.Output {
			switch out {
			case feature.OutputVibrate:
				names["SingleMotorVibrateCmd"] = true
			case feature.OutputRotationWithDirection:
				names["VorzeA10CycloneCmd"] = true
			case feature.OutputPositionWithDuration:
				names["FleshlightLaunchFW12Cmd"] = true
			}
		}
	}
	names["StopDeviceCmd"] = true
	list := make([]string, 0, len(names))
	for n := range names {
		list = append(list, n)
	}
	sort.Strings(list)
	out := &message.DeviceAddedV0{DeviceIdx: added.DeviceIdx, DeviceName: added.Name, DeviceMessages: list}
	return out
}

func deviceAddedV1(added *message.DeviceAddedV4) *message.DeviceAddedV1 {
	msgs := map[string]message.ClientDeviceMessageAttributesV1{}
	counts := map[string]uint32{}
	for _, f := range added.Features {
		for out := range f.Output {
			switch out {
			case feature.OutputVibrate:
				counts["VibrateCmd"]++
			case feature.OutputRotationWithDirection:
				counts["RotateCmd"]++
			case feature.OutputPositionWithDuration:
				counts["LinearCmd"]++
			}
		}
	}
	for name, n := range counts {
		count := n
		msgs[name] = message.ClientDeviceMessageAttributesV1{FeatureCount: &count}
	}
	msgs["StopDeviceCmd"] = message.ClientDeviceMessageAttributesV1{}
	return &message.DeviceAddedV1{DeviceIdx: added.DeviceIdx, DeviceName: added.Name, DeviceMessages: msgs}
}

func deviceAddedV2(added *message.DeviceAddedV4) *message.DeviceAddedV2 {
	msgs := map[string]message.ClientDeviceMessageAttributesV2{}
	counts := map[string]uint32{}
	for _, f := range added.Features {
		for out := range f.Output {
			switch out {
			case feature.OutputVibrate:
				counts["VibrateCmd"]++
			case feature.OutputRotationWithDirection:
				counts["RotateCmd"]++
			case feature.OutputPositionWithDuration:
				counts["LinearCmd"]++
			}
		}
		if f.Input != nil {
			if cmds, ok := f.Input[feature.InputBattery]; ok && containsCmd(cmds, feature.InputCommandRead) {
				msgs["BatteryLevelCmd"] = message.ClientDeviceMessageAttributesV2{}
			}
			if cmds, ok := f.Input[feature.InputRSSI]; ok && containsCmd(cmds, feature.InputCommandRead) {
				msgs["RSSILevelCmd"] = message.ClientDeviceMessageAttributesV2{}
			}
		}
	}
	for name, n := range counts {
		count := n
		msgs[name] = message.ClientDeviceMessageAttributesV2{FeatureCount: &count}
	}
	msgs["StopDeviceCmd"] = message.ClientDeviceMessageAttributesV2{}
	return &message.DeviceAddedV2{DeviceIdx: added.DeviceIdx, DeviceName: added.Name, DeviceMessages: msgs}
}

func deviceAddedV3(added *message.DeviceAddedV4) *message.DeviceAddedV3 {
	msgs := map[string][]message.ClientDeviceMessageAttributesV3{}
	for _, f := range added.Features {
		for out, r := range f.Output {
			actuator := out
			attr := message.ClientDeviceMessageAttributesV3{
				FeatureDescriptor: f.Description,
				ActuatorType:      &actuator,
				StepRange:         []int32{r.Min, r.Max},
			}
			msgs["ScalarCmd"] = append(msgs["ScalarCmd"], attr)
		}
		for in, cmds := range f.Input {
			if !containsCmd(cmds, feature.InputCommandRead) {
				continue
			}
			inType := in
			attr := message.ClientDeviceMessageAttributesV3{
				FeatureDescriptor: f.Description,
				SensorType:        &inType,
			}
			msgs["SensorReadCmd"] = append(msgs["SensorReadCmd"], attr)
		}
	}
	msgs["StopDeviceCmd"] = nil
	return &message.DeviceAddedV3{DeviceIdx: added.DeviceIdx, DeviceName: added.Name, DeviceMessages: msgs}
}

func containsCmd(cmds []feature.InputCommandType, want feature.InputCommandType) bool {
	for _, c := range cmds {
		if c == want {
			return true
		}
	}
	return false
}

// InputReadingForVersion downcasts an InputReadingV4 into the reading
// message a client at version v expects, or nil if that version's
// vocabulary has no corresponding reading for this InputType (spec section
// 4.2, "whether to drop silently... matches the original's silently drop
// behaviour").
func InputReadingForVersion(v message.SpecVersion, inputType feature.InputType, sensorIndex uint32, reading *message.InputReadingV4) message.Message {
	switch v {
	case message.V0, message.V1:
		return nil
	case message.V2:
		switch inputType {
		case feature.InputBattery:
			if reading.Data.Battery == nil {
				return nil
			}
			level := float64(*reading.Data.Battery) / 100.0
			out := &message.BatteryLevelReadingV2{DeviceIdx: reading.DeviceIdx, BatteryLevel: level}
			out.SetID(reading.Id)
			return out
		case feature.InputRSSI:
			if reading.Data.RSSI == nil {
				return nil
			}
			out := &message.RSSILevelReadingV2{DeviceIdx: reading.DeviceIdx, RSSILevel: int32(*reading.Data.RSSI)}
			out.SetID(reading.Id)
			return out
		default:
			return nil
		}
	case message.V3:
		if inputType != feature.InputBattery || reading.Data.Battery == nil {
			return nil
		}
		out := &message.SensorReadingV3{
			DeviceIdx:   reading.DeviceIdx,
			SensorIndex: sensorIndex,
			SensorType:  inputType,
			Data:        []int32{int32(*reading.Data.Battery)},
		}
		out.SetID(reading.Id)
		return out
	default:
		return reading
	}
}
