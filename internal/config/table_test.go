package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
)

func TestParseFileDecodesDocument(t *testing.T) {
	data := []byte(`{
		"version": {"major": 1, "minor": 0},
		"protocols": {
			"generic-single-byte": {
				"communication": [{"name": "Test Vibrator"}],
				"defaults": {"name": "Test Vibrator"}
			}
		}
	}`)

	f, err := ParseFile(data)

	require.NoError(t, err)
	assert.Equal(t, uint32(1), f.Version.Major)
	require.Contains(t, f.Protocols, "generic-single-byte")
	assert.Equal(t, "Test Vibrator", f.Protocols["generic-single-byte"].Defaults.Name)
}

func TestParseFileRejectsMalformedJSON(t *testing.T) {
	_, err := ParseFile([]byte(`{not json`))

	assert.Error(t, err)
}

func baseFile() *File {
	return &File{
		Version: FileVersion{Major: 1},
		Protocols: map[string]ProtocolConfig{
			"generic-single-byte": {
				Communication: []hardware.Specifier{{Name: "Test Vibrator"}},
				Defaults:      &DeviceConfigEntry{Name: "Test Vibrator"},
			},
		},
	}
}

func TestBuildTableResolvesDefaultsRow(t *testing.T) {
	table := BuildTable(baseFile())

	assert.Equal(t, []string{"generic-single-byte"}, table.ProtocolNames())
	assert.Equal(t, []hardware.Specifier{{Name: "Test Vibrator"}}, table.Specifiers("generic-single-byte"))

	def, ok := table.Resolve(feature.BaseDeviceIdentifier{Protocol: "generic-single-byte"})
	require.True(t, ok)
	assert.Equal(t, "Test Vibrator", def.Name)
}

func TestBuildTableResolvesByAttributesIdentifier(t *testing.T) {
	model := "v2"
	f := baseFile()
	entry := f.Protocols["generic-single-byte"]
	entry.Configurations = []DeviceConfigEntry{{Identifier: []string{model}, Name: "Test Vibrator v2"}}
	f.Protocols["generic-single-byte"] = entry
	table := BuildTable(f)

	def, ok := table.Resolve(feature.BaseDeviceIdentifier{Protocol: "generic-single-byte", AttributesIdentifier: &model})
	require.True(t, ok)
	assert.Equal(t, "Test Vibrator v2", def.Name)

	fallback, ok := table.Resolve(feature.BaseDeviceIdentifier{Protocol: "generic-single-byte"})
	require.True(t, ok)
	assert.Equal(t, "Test Vibrator", fallback.Name)
}

func TestBuildTableResolveUnknownProtocol(t *testing.T) {
	table := BuildTable(baseFile())

	_, ok := table.Resolve(feature.BaseDeviceIdentifier{Protocol: "nonexistent"})
	assert.False(t, ok)
}

func TestBuildTableCustomization(t *testing.T) {
	f := baseFile()
	f.UserConfigs.Devices = []UserDeviceEntry{{
		Identifier: "generic-single-byte@AA:BB:CC:DD:EE:FF",
		Config:     UserDeviceEntryConfig{UserConfig: feature.UserDeviceCustomization{Deny: true}},
	}}
	table := BuildTable(f)

	cust, ok := table.Customization("generic-single-byte@AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.True(t, cust.UserConfig.Deny)

	_, ok = table.Customization("generic-single-byte@11:22:33:44:55:66")
	assert.False(t, ok)
}

func TestFileMergeLayersOverlayProtocolsAndDevices(t *testing.T) {
	f := baseFile()
	overlay := &File{
		UserConfigs: UserConfigs{
			Protocols: map[string]ProtocolConfig{
				"generic-single-byte": {
					Communication: []hardware.Specifier{{Name: "Extra Vibrator"}},
				},
			},
			Devices: []UserDeviceEntry{{Identifier: "generic-single-byte@AA:BB:CC:DD:EE:FF"}},
		},
	}

	merged := f.Merge(overlay)

	assert.Len(t, merged.Protocols["generic-single-byte"].Communication, 2)
	require.Len(t, merged.UserConfigs.Devices, 1)
	assert.Equal(t, "generic-single-byte@AA:BB:CC:DD:EE:FF", merged.UserConfigs.Devices[0].Identifier)
}

func TestFileMergeNilOverlayReturnsSelf(t *testing.T) {
	f := baseFile()

	merged := f.Merge(nil)

	assert.Same(t, f, merged)
}
