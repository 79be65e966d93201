// Package bperror defines the server's error taxonomy (spec section 7).
//
// Every error the core surfaces to a client is representable as a single
// *Error carrying a stable Code and an optional wrapped cause, following the
// typed-sentinel-error pattern used throughout the BLE device layer this
// module was built from.
package bperror

import "fmt"

// Code identifies a category of error from the wire-protocol error taxonomy.
type Code string

const (
	// Message errors
	CodeUnexpectedMessage            Code = "unexpected_message"
	CodeVersionMismatch               Code = "version_mismatch"
	CodeInvalidMessageContents        Code = "invalid_message_contents"
	CodeMessageSpecVersionNotReceived Code = "message_spec_version_not_received"

	// Handshake errors
	CodeDuplicateHandshake   Code = "duplicate_handshake"
	CodeVersionNotSupported  Code = "version_not_supported"

	// Device errors
	CodeDeviceNotConnected     Code = "device_not_connected"
	CodeDeviceFeatureIndex     Code = "device_feature_index_error"
	CodeDeviceFeatureMismatch  Code = "device_feature_mismatch"
	CodeDeviceNoSensor         Code = "device_no_sensor_error"
	CodeDeviceNoRaw            Code = "device_no_raw_error"
	CodeInvalidEndpoint        Code = "invalid_endpoint"
	CodeMessageNotSupported    Code = "message_not_supported"
	CodeProtocolSpecific       Code = "protocol_specific_error"
	CodeProtocolNotImplemented Code = "protocol_not_implemented"
	CodeDeviceCommunication    Code = "device_communication_error"

	// Serializer errors
	CodeJSONSerializer   Code = "json_serializer_error"
	CodeJSONValidator    Code = "json_validator_error"
	CodeBinaryDeserial   Code = "binary_deserialization_error"
	CodeTextDeserial     Code = "text_deserialization_error"

	// Unknown
	CodeNoDeviceCommManagers Code = "no_device_comm_managers"
	CodeUnknown              Code = "unknown_error"
)

// Error is the single error type carried across the core.
type Error struct {
	Code     Code
	Message  string
	Protocol string // set only for CodeProtocolSpecific
	cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Protocol != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Protocol, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is compares two *Error values by Code, so errors.Is(err, bperror.New(CodeDeviceNotConnected, ""))
// matches regardless of message text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New builds an *Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// ProtocolSpecific builds a CodeProtocolSpecific error naming the offending protocol.
func ProtocolSpecific(protocol, message string) *Error {
	return &Error{Code: CodeProtocolSpecific, Protocol: protocol, Message: message}
}
