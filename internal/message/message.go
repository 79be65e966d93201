package message

import "github.com/srg/buttplugd/internal/bperror"

// SystemID is the reserved id for unsolicited server-to-client events
// (device added/removed, input subscription samples). Spec section 3.
const SystemID uint32 = 0

// DefaultClientID is the default id for client-originated messages before
// the client assigns its own request id. Spec section 3.
const DefaultClientID uint32 = 1

// Message is the interface every protocol message implements: it carries an
// id and can validate its own contents (spec section 3, 4.1).
type Message interface {
	ID() uint32
	SetID(id uint32)
	Validate() error
}

// DeviceMessage is a Message addressed to a specific device.
type DeviceMessage interface {
	Message
	DeviceIndex() uint32
}

// baseMessage factors out the id bookkeeping every message embeds.
type baseMessage struct {
	Id uint32 `json:"Id"`
}

func (m *baseMessage) ID() uint32     { return m.Id }
func (m *baseMessage) SetID(id uint32) { m.Id = id }

// validateNotSystemID rejects the reserved id=0 on client-originated messages.
func validateNotSystemID(id uint32) error {
	if id == SystemID {
		return bperror.New(bperror.CodeInvalidMessageContents, "message id must not be 0 (reserved for server events)")
	}
	return nil
}

// validateIsSystemID requires id=0 on unsolicited server events.
func validateIsSystemID(id uint32) error {
	if id != SystemID {
		return bperror.New(bperror.CodeInvalidMessageContents, "unsolicited server event must carry id=0")
	}
	return nil
}

// validateIsReplyID requires id>0 on request replies.
func validateIsReplyID(id uint32) error {
	if id == SystemID {
		return bperror.New(bperror.CodeInvalidMessageContents, "reply message must carry a non-zero request id")
	}
	return nil
}

// invalidContentsErr is a shorthand for a CodeInvalidMessageContents error.
func invalidContentsErr(msg string) error {
	return bperror.New(bperror.CodeInvalidMessageContents, msg)
}

// validateUnitInterval rejects legacy float subcommands outside [0.0, 1.0]
// (spec section 4.1 Validation).
func validateUnitInterval(v float64, field string) error {
	if v < 0.0 || v > 1.0 {
		return bperror.Newf(bperror.CodeInvalidMessageContents, "%s must be in [0.0, 1.0], got %v", field, v)
	}
	return nil
}
