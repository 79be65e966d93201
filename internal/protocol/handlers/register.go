package handlers

import (
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/protocol"
)

// generic registers a protocol whose Identifier never round-trips and whose
// Initializer does no handshake writes -- the common case for most of the
// catalog.
func generic(r *protocol.Registry, name string, build func(def *feature.DeviceDefinition) protocol.Handler) {
	r.Register(name,
		func() protocol.Identifier { return GenericIdentifier{ProtocolName: name} },
		func() protocol.Initializer { return NoopInitializer{Build: build} },
	)
}

// Register populates r with every handler in this catalog (spec section
// 4.8). Protocol names match the Rust crate's `*ProtocolFactory::name()`
// strings so device configuration files carry over unchanged.
func Register(r *protocol.Registry) {
	generic(r, "lovense", NewLovenseHandler)
	generic(r, "vorze-sa", NewVorzeSAHandler)
	generic(r, "wevibe", NewWeVibeHandler)
	generic(r, "wevibe8bit", NewWeVibe8BitHandler)
	generic(r, "xinput", NewXInputHandler)
	generic(r, "tcode-v03", NewTCodeHandler)
	generic(r, "nobra", NewNobraHandler)
	generic(r, "motorbunny", NewMotorbunnyHandler)
	generic(r, "leten", NewLetenHandler)
	generic(r, "generic-single-byte", NewGenericSingleByteHandler)
	generic(r, "svakom", NewSvakomHandler)

	r.Register("svakom-tarax",
		func() protocol.Identifier { return GenericIdentifier{ProtocolName: "svakom-tarax"} },
		NewSvakomTaraXInitializer,
	)

	r.Register("kiiroo-v2",
		NewKiirooV2Identifier,
		NewKiirooV2Initializer,
	)
}
