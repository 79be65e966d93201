// Package controller implements the per-device controller task (spec
// section 4.5): a single-threaded cooperative scheduler that owns one
// device's protocol handler, Hardware handle, command queue, and keepalive
// timer. Grounded on the start/stop/select-loop lifecycle of the teacher's
// internal/lua.LuaOutputCollector and the cooperative single-writer pattern
// that devicefactory/bridge apply to one BLE connection at a time.
package controller

import (
	"github.com/google/uuid"

	"github.com/srg/buttplugd/internal/feature"
)

// FeatureCommand is a canonical per-feature command addressed to one device
// controller (spec section 4.1's OutputCmd, already upcast to V4 and
// resolved to a feature index/id by the time it reaches the queue).
type FeatureCommand struct {
	FeatureIndex uint32
	FeatureID    uuid.UUID
	Output       feature.OutputType

	// Value is the single scalar most output types carry.
	Value uint32

	// Value2 carries the second parameter PositionWithDuration (duration_ms)
	// and RotationWithDirection (clockwise, 0 or 1) require.
	Value2 uint32
}

// queuedCommand wraps a FeatureCommand with its completion channel and the
// synthetic-stop marker the bounded queue's eviction policy checks (spec
// section 5, "stop commands are never dropped").
type queuedCommand struct {
	cmd    FeatureCommand
	isStop bool
	// result, if non-nil, receives exactly one error (nil on success) once
	// the command has been executed or dropped. Buffered so a non-waiting
	// caller never blocks the controller.
	result chan<- error
}
