package devicemanager

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/controller"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/groutine"
	"github.com/srg/buttplugd/internal/hardware"
)

// handleDeviceFound runs the DeviceFound -> Identify -> Initialize -> spawn
// pipeline for one discovered device (spec section 4.6).
func (m *Manager) handleDeviceFound(ctx context.Context, found hardware.DeviceFoundEvent) {
	advertised := found.Connector.Specifier()

	protocolName, ok := m.matchProtocol(advertised)
	if !ok {
		return
	}

	log := m.logger.WithFields(logrus.Fields{"protocol": protocolName, "address": found.Address})

	// Pre-identify deny check: the config may deny this protocol/address
	// pair before any handshake byte is exchanged with it (spec section
	// 4.6, "a denied identifier is enumerated but the pipeline stops
	// before identify"). attributes_identifier isn't known yet, so this
	// check can only see protocol+address; a deny keyed on a specific
	// attributes_identifier is re-checked below, after Identify resolves it.
	provisional := feature.UserDeviceIdentifier{Protocol: protocolName, Address: found.Address}
	if cust, ok := m.table.Customization(provisional.Key()); ok && cust.UserConfig.Deny {
		log.Debug("device denied before identify")
		return
	}

	hw, err := found.Connector.Connect(ctx)
	if err != nil {
		log.WithError(err).Warn("connect failed")
		return
	}

	identifier, err := m.protocols.NewIdentifier(protocolName)
	if err != nil {
		log.WithError(err).Warn("no identifier registered for protocol")
		_ = hw.Disconnect()
		return
	}

	base, err := identifier.Identify(ctx, hw, advertised)
	if err != nil {
		log.WithError(err).Warn("identify failed")
		_ = hw.Disconnect()
		return
	}

	userIdentifier := feature.UserDeviceIdentifier{
		Protocol:             base.Protocol,
		AttributesIdentifier: base.AttributesIdentifier,
		Address:              found.Address,
	}

	cust, hasCust := m.table.Customization(userIdentifier.Key())
	if hasCust && cust.UserConfig.Deny {
		log.Debug("device denied after identify")
		_ = hw.Disconnect()
		return
	}
	if m.allowMode.Load() && !(hasCust && cust.UserConfig.Allow) {
		log.Debug("device not in allow-list")
		_ = hw.Disconnect()
		return
	}

	def, ok := m.table.Resolve(base)
	if !ok {
		log.Warn("no device definition for identified protocol")
		_ = hw.Disconnect()
		return
	}
	if hasCust {
		merged := feature.Merge(*def, cust.UserConfig)
		def = &merged
	}

	initializer, err := m.protocols.NewInitializer(protocolName)
	if err != nil {
		log.WithError(err).Warn("no initializer registered for protocol")
		_ = hw.Disconnect()
		return
	}

	handler, err := initializer.Initialize(ctx, hw, def)
	if err != nil {
		log.WithError(err).Warn("initialize failed")
		_ = hw.Disconnect()
		return
	}

	index := m.allocateIndex(userIdentifier, cust, hasCust)
	if index == nil {
		log.Warn("pinned index already live, refusing device")
		_ = hw.Disconnect()
		return
	}

	ctrl := controller.New(*index, hw, handler, def, m.logger)
	if err := ctrl.Start(); err != nil {
		log.WithError(err).Warn("controller failed to start")
		_ = hw.Disconnect()
		return
	}
	groutine.Go(ctx, fmt.Sprintf("devicemanager.watch.%d", *index), func(ctx context.Context) {
		m.watchController(ctrl)
	})

	rec := &DeviceRecord{Index: *index, Identifier: userIdentifier, Definition: def, Controller: ctrl}
	m.devices.Set(*index, rec)
	m.byIdentifier.Set(userIdentifier.Key(), *index)

	m.events <- Event{Kind: EventDeviceAdded, Index: *index, Record: rec}
}

// matchProtocol finds the first registered protocol whose configured
// communication specifier matches the advertised one (spec section 4.6
// matching rules, first match wins).
func (m *Manager) matchProtocol(advertised hardware.Specifier) (string, bool) {
	for _, name := range m.table.ProtocolNames() {
		for _, spec := range m.table.Specifiers(name) {
			if spec.Matches(advertised) {
				return name, true
			}
		}
	}
	return "", false
}

// allocateIndex honors a user-pinned index, refusing if that slot is
// already live, else assigns the next free monotonic index (spec section
// 4.6).
func (m *Manager) allocateIndex(id feature.UserDeviceIdentifier, cust config.UserDeviceEntryConfig, hasCust bool) *uint32 {
	if hasCust && cust.ID != nil {
		if _, live := m.devices.Get(*cust.ID); live {
			return nil
		}
		pinned := *cust.ID
		return &pinned
	}
	for {
		candidate := m.nextIndex.Add(1) - 1
		if _, live := m.devices.Get(candidate); !live {
			return &candidate
		}
	}
}

func (m *Manager) watchController(ctrl *controller.Controller) {
	for ev := range ctrl.Events() {
		if ev.Kind == controller.EventDeviceRemoved {
			m.removeDevice(ev.DeviceIndex)
			return
		}
	}
}
