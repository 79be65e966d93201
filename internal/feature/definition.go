package feature

import "github.com/google/uuid"

// DeviceDefinition identifies a device model and its capabilities (spec
// section 3 "Device Definition"). ProtocolVariant lets a single protocol
// handler serve multiple firmware/model rows keyed by the base device
// identifier's attributes_identifier.
type DeviceDefinition struct {
	Name            string           `json:"name" yaml:"name"`
	ProtocolVariant string           `json:"protocol_variant,omitempty" yaml:"protocol_variant,omitempty"`
	MessageGapMS    uint32           `json:"message_gap_ms,omitempty" yaml:"message_gap_ms,omitempty" default:"0"`
	Features        []*DeviceFeature `json:"features" yaml:"features"`
}

// FeatureAt returns the i-th feature in declaration order, or (nil, false).
func (d *DeviceDefinition) FeatureAt(i int) (*DeviceFeature, bool) {
	if i < 0 || i >= len(d.Features) {
		return nil, false
	}
	return d.Features[i], true
}

// FeatureIndexByID returns the declaration-order index of the feature with the given ID.
func (d *DeviceDefinition) FeatureIndexByID(id uuid.UUID) (int, bool) {
	for i, f := range d.Features {
		if f.ID == id {
			return i, true
		}
	}
	return 0, false
}

// NthFeatureSupportingOutput returns the n-th (0-indexed, in declaration
// order) feature that supports outputType, used by the legacy upcast
// transforms which address features positionally rather than by feature id
// (spec section 4.2).
func (d *DeviceDefinition) NthFeatureSupportingOutput(outputType OutputType, n int) (int, *DeviceFeature, Range, bool) {
	count := 0
	for i, f := range d.Features {
		if r, ok := f.SupportsOutput(outputType); ok {
			if count == n {
				return i, f, r, true
			}
			count++
		}
	}
	return 0, nil, Range{}, false
}

// NthFeatureSupportingInput returns the n-th feature that supports inputType
// for the given command, same indexing convention as NthFeatureSupportingOutput.
func (d *DeviceDefinition) NthFeatureSupportingInput(inputType InputType, cmd InputCommandType, n int) (int, *DeviceFeature, bool) {
	count := 0
	for i, f := range d.Features {
		if f.SupportsInput(inputType, cmd) {
			if count == n {
				return i, f, true
			}
			count++
		}
	}
	return 0, nil, false
}

// FirstFeatureSupportingOutput is shorthand for NthFeatureSupportingOutput(outputType, 0).
func (d *DeviceDefinition) FirstFeatureSupportingOutput(outputType OutputType) (int, *DeviceFeature, Range, bool) {
	return d.NthFeatureSupportingOutput(outputType, 0)
}

// UserDeviceCustomization is the per-device-instance overlay (spec section 3).
type UserDeviceCustomization struct {
	DisplayName  *string `json:"display_name,omitempty" yaml:"display-name,omitempty"`
	Allow        bool    `json:"allow" yaml:"allow" default:"false"`
	Deny         bool    `json:"deny" yaml:"deny" default:"false"`
	Index        *uint32 `json:"index,omitempty" yaml:"index,omitempty"`
	MessageGapMS *uint32 `json:"message_gap_ms,omitempty" yaml:"message_gap_ms,omitempty"`
}

// Merge overlays a UserDeviceCustomization onto a base DeviceDefinition,
// producing the definition the device manager actually uses. Only
// DisplayName and MessageGapMS are applied here; Allow/Deny are not read by
// Merge (the device manager checks them, deny first, before merging).
func Merge(base DeviceDefinition, overlay UserDeviceCustomization) DeviceDefinition {
	merged := base
	if overlay.DisplayName != nil {
		merged.Name = *overlay.DisplayName
	}
	if overlay.MessageGapMS != nil {
		merged.MessageGapMS = *overlay.MessageGapMS
	}
	return merged
}
