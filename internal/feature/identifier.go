package feature

import "fmt"

// BaseDeviceIdentifier is the lookup key into the base configuration table
// (spec section 3 "Base Device Identifier"): protocol name plus an optional
// disambiguating attributes identifier (e.g. a firmware/model string a
// protocol's Identify phase resolved).
type BaseDeviceIdentifier struct {
	Protocol             string
	AttributesIdentifier *string
}

func (b BaseDeviceIdentifier) String() string {
	if b.AttributesIdentifier == nil {
		return b.Protocol
	}
	return fmt.Sprintf("%s/%s", b.Protocol, *b.AttributesIdentifier)
}

// Equal compares two BaseDeviceIdentifiers by value.
func (b BaseDeviceIdentifier) Equal(other BaseDeviceIdentifier) bool {
	if b.Protocol != other.Protocol {
		return false
	}
	if (b.AttributesIdentifier == nil) != (other.AttributesIdentifier == nil) {
		return false
	}
	if b.AttributesIdentifier == nil {
		return true
	}
	return *b.AttributesIdentifier == *other.AttributesIdentifier
}

// UserDeviceIdentifier uniquely names a device instance (spec section 3).
// It is NOT portable between hosts: Address is whatever the transport's
// enumerator assigned (a BLE MAC, a serial path, an HID serial, an XInput
// slot).
type UserDeviceIdentifier struct {
	Protocol             string
	AttributesIdentifier *string
	Address              string
}

// Base projects out the BaseDeviceIdentifier portion of this identifier.
func (u UserDeviceIdentifier) Base() BaseDeviceIdentifier {
	return BaseDeviceIdentifier{Protocol: u.Protocol, AttributesIdentifier: u.AttributesIdentifier}
}

func (u UserDeviceIdentifier) String() string {
	return fmt.Sprintf("%s@%s", u.Base().String(), u.Address)
}

// Key returns a value usable as a concurrent-map key (cornelk/hashmap keys
// must be comparable); String() satisfies that without extra allocation
// bookkeeping at the call site.
func (u UserDeviceIdentifier) Key() string {
	return u.String()
}
