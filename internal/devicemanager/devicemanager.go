// Package devicemanager implements the device manager (spec section 4.6):
// the live device table, the communication-manager and protocol registries,
// and the DeviceFound → Identify → Initialize → Controller pipeline.
// Grounded on the teacher's scanner.Scanner (cornelk/hashmap live device
// table, allow/deny filtering, ring-channel event fan-out), generalized
// from "one BLE scan, one map of discovered devices" to "many communication
// managers, one persistent table of connected devices with keepalive
// controllers attached".
package devicemanager

import (
	"context"
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/controller"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/groutine"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/protocol"
)

// DeviceRecord is one live device's table entry.
type DeviceRecord struct {
	Index      uint32
	Identifier feature.UserDeviceIdentifier
	Definition *feature.DeviceDefinition
	Controller *controller.Controller
}

// EventKind discriminates Manager-level events (spec section 4.1 server
// events: DeviceAdded, DeviceRemoved, ScanningFinished).
type EventKind int

const (
	EventDeviceAdded EventKind = iota
	EventDeviceRemoved
	EventScanningFinished
)

// Event is emitted on Manager.Events.
type Event struct {
	Kind   EventKind
	Index  uint32
	Record *DeviceRecord
}

// Manager owns every live device and the communication managers that find
// them.
type Manager struct {
	table     *config.Table
	protocols *protocol.Registry
	logger    *logrus.Logger

	commManagers map[string]hardware.CommunicationManager

	devices      *hashmap.Map[uint32, *DeviceRecord]
	byIdentifier *hashmap.Map[string, uint32] // UserDeviceIdentifier.Key() -> index, for pin/re-add checks
	nextIndex    atomic.Uint32

	events chan Event

	// allowMode, when true, restricts enumeration to identifiers whose
	// UserDeviceCustomization.Allow is set (spec section 4.6, "an
	// allow-list mode ignores non-allowed identifiers").
	allowMode atomic.Bool
}

// New builds a Manager. table may be nil (an empty catalog — no protocols
// will ever match, useful for tests that register devices directly).
func New(table *config.Table, protocols *protocol.Registry, logger *logrus.Logger) *Manager {
	if table == nil {
		table = config.BuildTable(&config.File{Protocols: map[string]config.ProtocolConfig{}})
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		table:        table,
		protocols:    protocols,
		logger:       logger,
		commManagers: make(map[string]hardware.CommunicationManager),
		devices:      hashmap.New[uint32, *DeviceRecord](),
		byIdentifier: hashmap.New[string, uint32](),
		events:       make(chan Event, 16),
	}
}

// Events returns the channel of device lifecycle events for the server
// front to forward to the active client.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// RegisterCommunicationManager adds a transport's discovery manager and
// starts draining its event stream.
func (m *Manager) RegisterCommunicationManager(ctx context.Context, cm hardware.CommunicationManager) {
	m.commManagers[cm.Name()] = cm
	groutine.Go(ctx, "devicemanager.drain."+cm.Name(), func(ctx context.Context) {
		m.drainManagerEvents(ctx, cm)
	})
}

// SetAllowMode toggles allow-list enumeration (spec section 4.6): when on,
// only devices whose UserDeviceCustomization.Allow is set are enumerated.
// Deny always takes precedence over allow, regardless of this mode.
func (m *Manager) SetAllowMode(on bool) {
	m.allowMode.Store(on)
}

// StartScanning starts every registered communication manager that can scan.
func (m *Manager) StartScanning(ctx context.Context) error {
	started := false
	for _, cm := range m.commManagers {
		if !cm.CanScan() {
			continue
		}
		if err := cm.StartScanning(ctx); err != nil {
			return bperror.Wrap(bperror.CodeDeviceCommunication, "start scanning failed", err)
		}
		started = true
	}
	if !started && len(m.commManagers) == 0 {
		return bperror.New(bperror.CodeNoDeviceCommManagers, "no communication managers registered")
	}
	return nil
}

// StopScanning stops every registered communication manager.
func (m *Manager) StopScanning(ctx context.Context) error {
	var firstErr error
	for _, cm := range m.commManagers {
		if err := cm.StopScanning(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) drainManagerEvents(ctx context.Context, cm hardware.CommunicationManager) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cm.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case hardware.ManagerEventDeviceFound:
				if ev.DeviceFound != nil {
					m.handleDeviceFound(ctx, *ev.DeviceFound)
				}
			case hardware.ManagerEventScanningFinished:
				m.events <- Event{Kind: EventScanningFinished}
			}
		}
	}
}

// Devices returns a snapshot of every live device record.
func (m *Manager) Devices() []*DeviceRecord {
	out := make([]*DeviceRecord, 0, m.devices.Len())
	m.devices.Range(func(_ uint32, rec *DeviceRecord) bool {
		out = append(out, rec)
		return true
	})
	return out
}

// Get returns the live record at index, if any.
func (m *Manager) Get(index uint32) (*DeviceRecord, bool) {
	return m.devices.Get(index)
}

// StopDevice routes StopDeviceCmd to the relevant controller (spec section 4.6).
func (m *Manager) StopDevice(ctx context.Context, index uint32) error {
	rec, ok := m.devices.Get(index)
	if !ok {
		return bperror.Newf(bperror.CodeDeviceNotConnected, "device %d not connected", index)
	}
	return rec.Controller.StopDevice(ctx)
}

// StopAllDevices routes StopAllDevices to every live controller.
func (m *Manager) StopAllDevices(ctx context.Context) error {
	var firstErr error
	m.devices.Range(func(_ uint32, rec *DeviceRecord) bool {
		if err := rec.Controller.StopAll(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// removeDevice tears down and forgets one device, forwarding its removal to
// Events (called when a Controller reports EventDeviceRemoved).
func (m *Manager) removeDevice(index uint32) {
	rec, ok := m.devices.Get(index)
	if !ok {
		return
	}
	m.devices.Del(index)
	m.byIdentifier.Del(rec.Identifier.Key())
	m.events <- Event{Kind: EventDeviceRemoved, Index: index}
}
