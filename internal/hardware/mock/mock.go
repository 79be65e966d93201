// Package mock provides a simulated Hardware/CommunicationManager pair for
// device-manager and controller tests, grounded on the builder-pattern test
// fixtures (device_builder.go, advertisement_builder.go) this module
// descends from.
package mock

import (
	"context"
	"sync"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/hardware"
)

// Device is an in-memory Hardware implementation that records every write
// and lets a test script inject read replies and notifications.
type Device struct {
	mu sync.Mutex

	name      string
	address   string
	endpoints []hardware.Endpoint

	writes  []hardware.WriteCmd
	reads   map[hardware.Endpoint][]byte
	events  chan hardware.Event
	closed  bool
}

// NewDevice builds a Builder for constructing a mock Hardware.
func NewDevice(name, address string) *Builder {
	return &Builder{dev: &Device{
		name:    name,
		address: address,
		reads:   map[hardware.Endpoint][]byte{},
		events:  make(chan hardware.Event, 32),
	}}
}

// Builder assembles a mock Device fluently, mirroring the device_builder.go pattern.
type Builder struct {
	dev *Device
}

func (b *Builder) WithEndpoints(eps ...hardware.Endpoint) *Builder {
	b.dev.endpoints = append(b.dev.endpoints, eps...)
	return b
}

func (b *Builder) WithReadReply(endpoint hardware.Endpoint, data []byte) *Builder {
	b.dev.reads[endpoint] = data
	return b
}

func (b *Builder) Build() *Device {
	return b.dev
}

func (d *Device) Name() string               { return d.name }
func (d *Device) Address() string            { return d.address }
func (d *Device) Endpoints() []hardware.Endpoint { return d.endpoints }

func (d *Device) WriteValue(_ context.Context, cmd hardware.WriteCmd) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return bperror.New(bperror.CodeDeviceNotConnected, "device disconnected")
	}
	d.writes = append(d.writes, cmd)
	return nil
}

func (d *Device) ReadValue(_ context.Context, cmd hardware.ReadCmd) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, bperror.New(bperror.CodeDeviceNotConnected, "device disconnected")
	}
	data, ok := d.reads[cmd.Endpoint]
	if !ok {
		return nil, bperror.Newf(bperror.CodeDeviceCommunication, "no read reply configured for endpoint %s", cmd.Endpoint)
	}
	return data, nil
}

func (d *Device) Subscribe(_ context.Context, _ hardware.SubscribeCmd) error   { return nil }
func (d *Device) Unsubscribe(_ context.Context, _ hardware.SubscribeCmd) error { return nil }

func (d *Device) Events() <-chan hardware.Event { return d.events }

func (d *Device) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.events)
	return nil
}

// Notify pushes an asynchronous notification event to any subscriber.
func (d *Device) Notify(endpoint hardware.Endpoint, data []byte) {
	d.events <- hardware.Event{Kind: hardware.EventNotification, Endpoint: endpoint, Data: data}
}

// SimulateDisconnect pushes a disconnect event without closing the handle's
// write path (a real transport would do both; tests sometimes want to
// observe the event before write calls start failing).
func (d *Device) SimulateDisconnect() {
	d.events <- hardware.Event{Kind: hardware.EventDisconnected}
}

// Writes returns a snapshot of every WriteValue call observed so far, in order.
func (d *Device) Writes() []hardware.WriteCmd {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]hardware.WriteCmd, len(d.writes))
	copy(out, d.writes)
	return out
}

// LastWrite returns the most recent write, or ok=false if none yet.
func (d *Device) LastWrite() (hardware.WriteCmd, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.writes) == 0 {
		return hardware.WriteCmd{}, false
	}
	return d.writes[len(d.writes)-1], true
}

// Connector adapts a pre-built Device into a hardware.Connector for manager tests.
type Connector struct {
	Dev        *Device
	Spec       hardware.Specifier
	ConnectErr error
}

func (c *Connector) Specifier() hardware.Specifier { return c.Spec }

func (c *Connector) Connect(_ context.Context) (hardware.Hardware, error) {
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	return c.Dev, nil
}

// CommunicationManager is a scriptable mock of hardware.CommunicationManager:
// tests push DeviceFoundEvent/ScanningFinished through Emit.
type CommunicationManager struct {
	name   string
	events chan hardware.ManagerEvent
	scanning bool
	mu     sync.Mutex
}

func NewCommunicationManager(name string) *CommunicationManager {
	return &CommunicationManager{name: name, events: make(chan hardware.ManagerEvent, 32)}
}

func (m *CommunicationManager) Name() string  { return m.name }
func (m *CommunicationManager) CanScan() bool { return true }

func (m *CommunicationManager) StartScanning(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanning = true
	return nil
}

func (m *CommunicationManager) StopScanning(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.scanning {
		return nil
	}
	m.scanning = false
	m.events <- hardware.ManagerEvent{Kind: hardware.ManagerEventScanningFinished}
	return nil
}

func (m *CommunicationManager) Events() <-chan hardware.ManagerEvent { return m.events }

// Emit pushes a DeviceFound event as if a real scan had discovered conn.
func (m *CommunicationManager) Emit(name, address string, conn hardware.Connector) {
	m.events <- hardware.ManagerEvent{
		Kind: hardware.ManagerEventDeviceFound,
		DeviceFound: &hardware.DeviceFoundEvent{Name: name, Address: address, Connector: conn},
	}
}
