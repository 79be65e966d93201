package config

import (
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
)

// ProtocolEntry pairs one protocol's communication specifiers with its
// resolved base definitions, keyed by attributes_identifier ("" for the
// defaults row).
type ProtocolEntry struct {
	Specifiers  []hardware.Specifier
	definitions map[string]*feature.DeviceDefinition
}

// Table is the compiled form of a File, built once at startup and consulted
// by the device manager on every DeviceFound event (spec section 4.6).
type Table struct {
	protocols        map[string]*ProtocolEntry
	userByIdentifier map[string]UserDeviceEntryConfig
}

// BuildTable compiles a File into a Table.
func BuildTable(f *File) *Table {
	t := &Table{
		protocols:        make(map[string]*ProtocolEntry, len(f.Protocols)),
		userByIdentifier: make(map[string]UserDeviceEntryConfig, len(f.UserConfigs.Devices)),
	}
	for name, pc := range f.Protocols {
		entry := &ProtocolEntry{
			Specifiers:  pc.Communication,
			definitions: make(map[string]*feature.DeviceDefinition),
		}
		if pc.Defaults != nil {
			entry.definitions[""] = entryToDefinition(*pc.Defaults)
		}
		for _, row := range pc.Configurations {
			def := entryToDefinition(row)
			if len(row.Identifier) == 0 {
				entry.definitions[""] = def
				continue
			}
			for _, id := range row.Identifier {
				entry.definitions[id] = def
			}
		}
		t.protocols[name] = entry
	}
	for _, dev := range f.UserConfigs.Devices {
		t.userByIdentifier[dev.Identifier] = dev.Config
	}
	return t
}

func entryToDefinition(e DeviceConfigEntry) *feature.DeviceDefinition {
	return &feature.DeviceDefinition{Name: e.Name, Features: e.Features}
}

// ProtocolNames returns every protocol name the table knows a communication
// specifier for.
func (t *Table) ProtocolNames() []string {
	names := make([]string, 0, len(t.protocols))
	for name := range t.protocols {
		names = append(names, name)
	}
	return names
}

// Specifiers returns protocolName's communication specifiers.
func (t *Table) Specifiers(protocolName string) []hardware.Specifier {
	entry, ok := t.protocols[protocolName]
	if !ok {
		return nil
	}
	return entry.Specifiers
}

// Resolve looks up the DeviceDefinition for a BaseDeviceIdentifier: the
// configuration row matching its attributes_identifier if present, else the
// protocol's defaults row.
func (t *Table) Resolve(base feature.BaseDeviceIdentifier) (*feature.DeviceDefinition, bool) {
	entry, ok := t.protocols[base.Protocol]
	if !ok {
		return nil, false
	}
	if base.AttributesIdentifier != nil {
		if def, ok := entry.definitions[*base.AttributesIdentifier]; ok {
			return def, true
		}
	}
	def, ok := entry.definitions[""]
	return def, ok
}

// Customization returns the user overlay for one device instance, matched
// by its UserDeviceIdentifier string form (spec section 3).
func (t *Table) Customization(identifier string) (UserDeviceEntryConfig, bool) {
	c, ok := t.userByIdentifier[identifier]
	return c, ok
}
