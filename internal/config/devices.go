package config

import (
	"encoding/json"
	"fmt"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
)

// FileVersion is the device configuration file's {major, minor} schema tag
// (spec section 6).
type FileVersion struct {
	Major uint32 `json:"major"`
	Minor uint32 `json:"minor"`
}

// DeviceConfigEntry is one row of a protocol's "configurations" list, or its
// "defaults" row. Identifier, if present, selects the row by the
// Identify-phase-resolved attributes_identifier; absent means "applies to
// every device of this protocol not matched by a more specific row".
type DeviceConfigEntry struct {
	Identifier []string               `json:"identifier,omitempty"`
	Name       string                 `json:"name,omitempty"`
	Features   []*feature.DeviceFeature `json:"features,omitempty"`
}

// ProtocolConfig is one entry of the top-level "protocols" map.
type ProtocolConfig struct {
	Communication  []hardware.Specifier `json:"communication"`
	Defaults       *DeviceConfigEntry   `json:"defaults,omitempty"`
	Configurations []DeviceConfigEntry  `json:"configurations,omitempty"`
}

// UserDeviceEntryConfig is the "config" object of one user_configs.devices row.
type UserDeviceEntryConfig struct {
	ID          *uint32                           `json:"id,omitempty"`
	BaseID      string                            `json:"base_id,omitempty"`
	Features    []*feature.DeviceFeature          `json:"features,omitempty"`
	UserConfig  feature.UserDeviceCustomization    `json:"user_config"`
}

// UserDeviceEntry is one row of "user_configs.devices".
type UserDeviceEntry struct {
	Identifier string                `json:"identifier"`
	Config     UserDeviceEntryConfig `json:"config"`
}

// UserConfigs is the "user_configs" top-level overlay object.
type UserConfigs struct {
	Protocols map[string]ProtocolConfig `json:"protocols,omitempty"`
	Devices   []UserDeviceEntry         `json:"devices,omitempty"`
}

// File is the full device configuration document (spec section 6).
type File struct {
	Version     FileVersion               `json:"version"`
	Protocols   map[string]ProtocolConfig `json:"protocols"`
	UserConfigs UserConfigs               `json:"user_configs,omitempty"`
}

// ParseFile decodes a device configuration document.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("device configuration: %w", err)
	}
	return &f, nil
}

// Merge layers a user overlay File's protocols/devices on top of this one,
// producing the resolved document the device manager loads (spec section 3,
// "merged onto it").
func (f *File) Merge(overlay *File) *File {
	if overlay == nil {
		return f
	}
	merged := &File{Version: f.Version, Protocols: make(map[string]ProtocolConfig, len(f.Protocols))}
	for name, pc := range f.Protocols {
		merged.Protocols[name] = pc
	}
	for name, pc := range overlay.UserConfigs.Protocols {
		base := merged.Protocols[name]
		base.Communication = append(base.Communication, pc.Communication...)
		if pc.Defaults != nil {
			base.Defaults = pc.Defaults
		}
		base.Configurations = append(base.Configurations, pc.Configurations...)
		merged.Protocols[name] = base
	}
	merged.UserConfigs = UserConfigs{Devices: overlay.UserConfigs.Devices}
	return merged
}
