package message

import "github.com/srg/buttplugd/internal/bperror"

// wireName returns the single JSON key a message is framed under (spec
// section 6). This is the inverse of the constructors registered in
// serializer.go's init().
func wireName(m Message) (string, error) {
	switch m.(type) {
	case *RequestServerInfoV4:
		return "RequestServerInfo", nil
	case *PingV0:
		return "Ping", nil
	case *StartScanningV0:
		return "StartScanning", nil
	case *StopScanningV0:
		return "StopScanning", nil
	case *RequestDeviceListV0:
		return "RequestDeviceList", nil
	case *StopDeviceCmdV0:
		return "StopDeviceCmd", nil
	case *StopAllDevicesV0:
		return "StopAllDevices", nil
	case *OutputCmdV4:
		return "OutputCmd", nil
	case *InputCmdV4:
		return "InputCmd", nil
	case *OkV0:
		return "Ok", nil
	case *ErrorV0:
		return "Error", nil
	case *ServerInfoV4:
		return "ServerInfo", nil
	case *DeviceListV4:
		return "DeviceList", nil
	case *DeviceAddedV4:
		return "DeviceAdded", nil
	case *DeviceRemovedV4:
		return "DeviceRemoved", nil
	case *ScanningFinishedV0:
		return "ScanningFinished", nil
	case *InputReadingV4:
		return "InputReading", nil
	case *SingleMotorVibrateCmdV0:
		return "SingleMotorVibrateCmd", nil
	case *FleshlightLaunchFW12CmdV0:
		return "FleshlightLaunchFW12Cmd", nil
	case *KiirooCmdV0:
		return "KiirooCmd", nil
	case *LovenseCmdV0:
		return "LovenseCmd", nil
	case *VorzeA10CycloneCmdV0:
		return "VorzeA10CycloneCmd", nil
	case *DeviceAddedV0:
		return "DeviceAdded", nil
	case *VibrateCmdV1:
		return "VibrateCmd", nil
	case *LinearCmdV1:
		return "LinearCmd", nil
	case *RotateCmdV1:
		return "RotateCmd", nil
	case *DeviceAddedV1:
		return "DeviceAdded", nil
	case *RawWriteCmdV2:
		return "RawWriteCmd", nil
	case *RawReadCmdV2:
		return "RawReadCmd", nil
	case *RawSubscribeCmdV2:
		return "RawSubscribeCmd", nil
	case *RawUnsubscribeCmdV2:
		return "RawUnsubscribeCmd", nil
	case *RawReadingV2:
		return "RawReading", nil
	case *BatteryLevelCmdV2:
		return "BatteryLevelCmd", nil
	case *BatteryLevelReadingV2:
		return "BatteryLevelReading", nil
	case *RSSILevelCmdV2:
		return "RSSILevelCmd", nil
	case *RSSILevelReadingV2:
		return "RSSILevelReading", nil
	case *DeviceAddedV2:
		return "DeviceAdded", nil
	case *ScalarCmdV3:
		return "ScalarCmd", nil
	case *SensorReadCmdV3:
		return "SensorReadCmd", nil
	case *SensorSubscribeCmdV3:
		return "SensorSubscribeCmd", nil
	case *SensorUnsubscribeCmdV3:
		return "SensorUnsubscribeCmd", nil
	case *SensorReadingV3:
		return "SensorReading", nil
	case *DeviceAddedV3:
		return "DeviceAdded", nil
	default:
		return "", bperror.Newf(bperror.CodeJSONSerializer, "no wire name registered for %T", m)
	}
}
