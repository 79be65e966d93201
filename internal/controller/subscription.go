package controller

import (
	"github.com/google/uuid"
	"github.com/hedzr/go-ringbuf/v2/mpmc"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
)

// DefaultSinkCapacity bounds each input subscription's backlog. Grounded on
// internal/lua.LuaOutputCollector's ring-buffer-plus-notify-channel shape:
// a slow consumer loses its oldest unread readings rather than stalling the
// controller.
const DefaultSinkCapacity uint32 = 64

// Sink is the subscriber-facing view of a pending input subscription: poll
// Notify, then Drain whatever accumulated since the last drain.
type Sink interface {
	Notify() <-chan struct{}
	Drain() []InputEvent
}

// InputEvent is one InputReading destined for a subscribed client (spec
// section 4.1 InputReading, id=0, unsolicited).
type InputEvent struct {
	FeatureIndex uint32
	FeatureID    uuid.UUID
	InputType    feature.InputType
	Data         message.InputTypeData
}

// inputSink buffers InputEvents for one feature/input-type subscription.
// push is always called from the controller's own goroutine, so the ring
// buffer's overwrite-oldest behavior on overflow needs no extra locking.
type inputSink struct {
	featureIndex uint32
	featureID    uuid.UUID
	inputType    feature.InputType
	endpoint     hardware.Endpoint
	buffer       mpmc.RichOverlappedRingBuffer[InputEvent]
	notify       chan struct{}
}

func newInputSink(featureIndex uint32, featureID uuid.UUID, inputType feature.InputType) *inputSink {
	return &inputSink{
		featureIndex: featureIndex,
		featureID:    featureID,
		inputType:    inputType,
		buffer:       mpmc.NewOverlappedRingBuffer[InputEvent](DefaultSinkCapacity),
		notify:       make(chan struct{}, 1),
	}
}

func (s *inputSink) push(ev InputEvent) {
	_, _ = s.buffer.EnqueueM(ev)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Notify signals (non-blocking, coalesced) that Drain has new data.
func (s *inputSink) Notify() <-chan struct{} {
	return s.notify
}

// Drain removes and returns every currently buffered event, in order.
func (s *inputSink) Drain() []InputEvent {
	var out []InputEvent
	for !s.buffer.IsEmpty() {
		ev, err := s.buffer.Dequeue()
		if err != nil {
			break
		}
		out = append(out, ev)
	}
	return out
}

// subscriptionKey identifies one feature/input-type subscription.
type subscriptionKey struct {
	featureID uuid.UUID
	inputType feature.InputType
}
