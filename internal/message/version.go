// Package message implements the versioned Buttplug wire protocol (spec
// section 4.1): the canonical V4 message set, the legacy V0-V3 message
// sets, message validation, and JSON framing.
package message

// SpecVersion is a message-protocol generation, negotiated once at
// handshake and immutable for the session (spec section 3).
type SpecVersion uint8

const (
	V0 SpecVersion = iota
	V1
	V2
	V3
	V4
)

// String renders the version the way it appears on the wire (a bare major number).
func (v SpecVersion) String() string {
	switch v {
	case V0:
		return "0"
	case V1:
		return "1"
	case V2:
		return "2"
	case V3:
		return "3"
	case V4:
		return "4"
	default:
		return "unknown"
	}
}

// Max is the highest spec version this server implements.
const Max = V4

// ParseSpecVersion converts a client-supplied major version number into a
// SpecVersion, reporting false if it is out of the supported range.
func ParseSpecVersion(major uint32) (SpecVersion, bool) {
	if major > uint32(Max) {
		return 0, false
	}
	return SpecVersion(major), true
}

// Negotiate picks min(client, server-max), per spec section 4.1 version negotiation.
func Negotiate(client SpecVersion) SpecVersion {
	if client > Max {
		return Max
	}
	return client
}
