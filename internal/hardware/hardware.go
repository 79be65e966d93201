// Package hardware defines the abstract transport boundary the core device
// manager and controller consume (spec section 4.4). Concrete transport
// drivers (BLE, serial, HID, XInput) are out of scope per spec section 1;
// this package only defines the interfaces and the event/command value
// types that cross them, grounded on the shape of the BLE `Device`/
// `Connection` abstraction this module descends from.
package hardware

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Endpoint is a stable string naming a byte channel on the hardware (spec
// section 6 "Endpoints"); it is a transport concept, not a feature.
type Endpoint string

const (
	EndpointTx            Endpoint = "tx"
	EndpointRx            Endpoint = "rx"
	EndpointTxMode        Endpoint = "txMode"
	EndpointTxVibrate     Endpoint = "txVibrate"
	EndpointRxBLEBattery  Endpoint = "rxBLEBattery"
	EndpointRxBLEModel    Endpoint = "rxBLEModel"
	EndpointFirmware      Endpoint = "firmware"
	EndpointWhitelist     Endpoint = "whitelist"
	EndpointCommand       Endpoint = "command"
	EndpointRxAccel       Endpoint = "rxAccelerometer"
	EndpointRxPressure    Endpoint = "rxPressure"
	EndpointRxTouch       Endpoint = "rxTouch"
)

// GenericEndpoint returns the n-th generic endpoint ("generic0".."generic31").
func GenericEndpoint(n int) Endpoint {
	return Endpoint("generic" + strconv.Itoa(n))
}

// WriteCmd is a single write request to an endpoint.
type WriteCmd struct {
	FeatureIDs        []uuid.UUID
	Endpoint          Endpoint
	Data              []byte
	WriteWithResponse bool
}

// ReadCmd is a single read request from an endpoint.
type ReadCmd struct {
	FeatureID uuid.UUID
	Endpoint  Endpoint
	Length    uint32
	Timeout   time.Duration
}

// SubscribeCmd requests notification delivery from an endpoint.
type SubscribeCmd struct {
	FeatureID uuid.UUID
	Endpoint  Endpoint
}

// Command is zero or more writes a protocol handler wants performed
// atomically, in order (spec section 4.3). Handlers return []Command;
// the controller issues each in turn, aborting the batch on the first error.
type Command struct {
	FeatureIDs        []uuid.UUID
	Endpoint          Endpoint
	Data              []byte
	WriteWithResponse bool
}

// FromWriteCmd adapts a WriteCmd into a Command (both shapes carry the same
// fields; WriteCmd is the hardware-facing request, Command is what handlers build).
func FromWriteCmd(w WriteCmd) Command {
	return Command{FeatureIDs: w.FeatureIDs, Endpoint: w.Endpoint, Data: w.Data, WriteWithResponse: w.WriteWithResponse}
}

// EventKind discriminates Event payloads.
type EventKind int

const (
	EventNotification EventKind = iota
	EventDisconnected
)

// Event is something the hardware reports asynchronously: a notification on
// a subscribed endpoint, or transport disconnect.
type Event struct {
	Kind     EventKind
	Endpoint Endpoint
	Data     []byte
}

// Hardware is a handle to one connected device's byte-level transport (spec
// section 4.4). Commands are async; write ordering per device is enforced
// by the controller (spec section 5), not by Hardware itself.
type Hardware interface {
	Name() string
	Address() string
	Endpoints() []Endpoint

	WriteValue(ctx context.Context, cmd WriteCmd) error
	ReadValue(ctx context.Context, cmd ReadCmd) ([]byte, error)
	Subscribe(ctx context.Context, cmd SubscribeCmd) error
	Unsubscribe(ctx context.Context, cmd SubscribeCmd) error

	// Events returns a channel of asynchronous Hardware events. The channel
	// is closed once, on final disconnect.
	Events() <-chan Event

	// Disconnect tears down the underlying transport connection.
	Disconnect() error
}

// DeviceFoundEvent is emitted by a CommunicationManager when it discovers a candidate device.
type DeviceFoundEvent struct {
	Name      string
	Address   string
	Connector Connector
}

// ManagerEventKind discriminates CommunicationManager events.
type ManagerEventKind int

const (
	ManagerEventDeviceFound ManagerEventKind = iota
	ManagerEventScanningFinished
)

// ManagerEvent is something a CommunicationManager reports during scanning.
type ManagerEvent struct {
	Kind       ManagerEventKind
	DeviceFound *DeviceFoundEvent
}

// CommunicationManager enumerates one transport family (spec section 4.4,
// "out of scope: concrete transport drivers"; this interface is the narrow
// boundary the core talks to).
type CommunicationManager interface {
	Name() string
	CanScan() bool
	StartScanning(ctx context.Context) error
	StopScanning(ctx context.Context) error
	Events() <-chan ManagerEvent
}

// Specifier reports which configuration keys a Connector's device will
// match against (spec section 4.4, 4.6 matching rules).
type Specifier struct {
	Name                  string   `json:"name,omitempty"`
	NamePrefix            string   `json:"namePrefix,omitempty"`
	ServiceUUIDs          []string `json:"services,omitempty"`
	ManufacturerCompanyID uint16   `json:"manufacturerCompanyId,omitempty"`
	ManufacturerPrefix    []byte   `json:"manufacturerPrefix,omitempty"`
	VendorID              uint16   `json:"vendorId,omitempty"`
	ProductID             uint16   `json:"productId,omitempty"`
}

// Matches reports whether a discovered device's advertised specifier is
// covered by this configuration-declared specifier (spec section 4.6
// matching rules, checked in order: exact name, name-prefix, service-UUID
// intersection, manufacturer-data, vid:pid).
func (s Specifier) Matches(advertised Specifier) bool {
	if s.Name != "" {
		return s.Name == advertised.Name
	}
	if s.NamePrefix != "" {
		return len(advertised.Name) >= len(s.NamePrefix) && advertised.Name[:len(s.NamePrefix)] == s.NamePrefix
	}
	if len(s.ServiceUUIDs) > 0 {
		for _, want := range s.ServiceUUIDs {
			for _, have := range advertised.ServiceUUIDs {
				if want == have {
					return true
				}
			}
		}
		return false
	}
	if s.ManufacturerCompanyID != 0 {
		if s.ManufacturerCompanyID != advertised.ManufacturerCompanyID {
			return false
		}
		if len(s.ManufacturerPrefix) > len(advertised.ManufacturerPrefix) {
			return false
		}
		for i, b := range s.ManufacturerPrefix {
			if advertised.ManufacturerPrefix[i] != b {
				return false
			}
		}
		return true
	}
	if s.VendorID != 0 || s.ProductID != 0 {
		return s.VendorID == advertised.VendorID && s.ProductID == advertised.ProductID
	}
	return false
}

// Connector is a two-step factory from a discovered device to a live
// Hardware handle (spec section 4.4).
type Connector interface {
	Specifier() Specifier
	Connect(ctx context.Context) (Hardware, error)
}
