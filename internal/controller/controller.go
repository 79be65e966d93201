package controller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/groutine"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/protocol"
)

// errQueueOverflow is returned to a dropped command's result channel.
var errQueueOverflow = bperror.New(bperror.CodeDeviceCommunication, "command dropped: queue full for this feature")

// state mirrors the not-running/running/stopping lifecycle used by
// internal/lua.LuaOutputCollector, via atomic CompareAndSwap rather than a
// mutex, since Start/Stop race only at the two ends of the controller's
// life, never on its hot path.
const (
	stateNotRunning uint32 = iota
	stateRunning
	stateStopping
)

// EventKind discriminates events a Controller reports to its owner (the
// device manager).
type EventKind int

const (
	// EventDeviceRemoved fires once, when the controller shuts down because
	// its Hardware reported disconnect (spec section 4.5).
	EventDeviceRemoved EventKind = iota
)

// Event is emitted on the Controller's Events channel.
type Event struct {
	Kind        EventKind
	DeviceIndex uint32
}

// Controller is one live device's task (spec section 4.5): it serializes
// every command addressed to this device through a single select loop,
// guaranteeing per-device write ordering while independent devices run
// concurrently.
type Controller struct {
	DeviceIndex uint32

	hw      hardware.Hardware
	handler protocol.Handler
	def     *feature.DeviceDefinition
	logger  *logrus.Logger

	queue    *commandQueue
	notify   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	state    atomic.Uint32

	events chan Event

	lastMu           sync.Mutex
	lastCommandBytes map[hardware.Endpoint][]byte

	sinksMu sync.Mutex
	sinks   map[subscriptionKey]*inputSink
}

// New builds a Controller for one connected device. The returned Controller
// is not yet running; call Start.
func New(deviceIndex uint32, hw hardware.Hardware, handler protocol.Handler, def *feature.DeviceDefinition, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{
		DeviceIndex:      deviceIndex,
		hw:               hw,
		handler:          handler,
		def:              def,
		logger:           logger,
		queue:            newCommandQueue(DefaultQueueCapacity),
		notify:           make(chan struct{}, 1),
		lastCommandBytes: make(map[hardware.Endpoint][]byte),
		sinks:            make(map[subscriptionKey]*inputSink),
		events:           make(chan Event, 4),
	}
}

// Events returns the channel on which DeviceRemoved (and future lifecycle
// events) are reported. Must be drained by the owner or the controller's
// select loop will block once a disconnect occurs.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Start spawns the controller's select loop. Blocks until the goroutine is
// confirmed running, mirroring LuaOutputCollector.Start's startup handshake.
func (c *Controller) Start() error {
	if !c.state.CompareAndSwap(stateNotRunning, stateRunning) {
		return bperror.New(bperror.CodeDeviceCommunication, "controller already running")
	}

	c.stop = make(chan struct{})
	c.stopOnce = sync.Once{}
	c.done = make(chan struct{})
	started := make(chan struct{}, 1)

	groutine.Go(context.Background(), fmt.Sprintf("controller.run.%d", c.DeviceIndex), func(ctx context.Context) {
		started <- struct{}{}
		defer func() {
			close(c.done)
			c.state.Store(stateNotRunning)
		}()
		c.run(ctx)
	})

	select {
	case <-started:
		return nil
	case <-time.After(time.Second):
		c.stopOnce.Do(func() { close(c.stop) })
		<-c.done
		return bperror.New(bperror.CodeDeviceCommunication, "controller failed to start")
	}
}

// Stop synthesizes a stop-all command, waits for it to drain, then shuts the
// controller down. Safe to call more than once.
func (c *Controller) Stop(ctx context.Context) error {
	if c.state.CompareAndSwap(stateRunning, stateStopping) {
		_ = c.StopAll(ctx)
		c.stopOnce.Do(func() { close(c.stop) })
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue submits a command for execution. result, if non-nil, receives the
// outcome (nil on success, an error on failure or drop); it must be
// buffered by at least 1 so the controller never blocks delivering it.
func (c *Controller) Enqueue(cmd FeatureCommand, result chan<- error) {
	c.queue.enqueue(queuedCommand{cmd: cmd, result: result})
	c.signal()
}

// StopDevice synthesizes OutputCmd(value=0) for every output-capable
// feature on this device (spec section 4.3 "Stop" edge case) and waits for
// each to be issued or dropped.
func (c *Controller) StopDevice(ctx context.Context) error {
	return c.StopAll(ctx)
}

// StopAll is the synthetic-stop implementation shared by StopDeviceCmd and
// StopAllDevices (the latter simply calls it on every controller).
func (c *Controller) StopAll(ctx context.Context) error {
	if c.def == nil {
		return nil
	}
	var firstErr error
	for _, f := range c.def.Features {
		if f.Output == nil {
			continue
		}
		for pair := f.Output.Oldest(); pair != nil; pair = pair.Next() {
			result := make(chan error, 1)
			c.queue.enqueue(queuedCommand{
				cmd: FeatureCommand{
					FeatureIndex: indexOf(c.def, f),
					FeatureID:    f.ID,
					Output:       pair.Key,
					Value:        0,
				},
				isStop: true,
				result: result,
			})
			c.signal()
			select {
			case err := <-result:
				if err != nil && firstErr == nil {
					firstErr = err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return firstErr
}

func indexOf(def *feature.DeviceDefinition, target *feature.DeviceFeature) uint32 {
	for i, f := range def.Features {
		if f == target {
			return uint32(i)
		}
	}
	return 0
}

// Subscribe registers interest in feature/input-type readings delivered via
// the hardware event stream, issuing the hardware-level subscribe. Returns
// the sink to poll via Notify/Drain.
func (c *Controller) Subscribe(ctx context.Context, featureIndex uint32, featureID uuid.UUID, inputType feature.InputType, endpoint hardware.Endpoint) (Sink, error) {
	if err := c.hw.Subscribe(ctx, hardware.SubscribeCmd{FeatureID: featureID, Endpoint: endpoint}); err != nil {
		return nil, bperror.Wrap(bperror.CodeDeviceCommunication, "subscribe failed", err)
	}
	sink := newInputSink(featureIndex, featureID, inputType)
	sink.endpoint = endpoint
	c.sinksMu.Lock()
	c.sinks[subscriptionKey{featureID: featureID, inputType: inputType}] = sink
	c.sinksMu.Unlock()
	return sink, nil
}

// Unsubscribe reverses a prior Subscribe.
func (c *Controller) Unsubscribe(ctx context.Context, featureID uuid.UUID, inputType feature.InputType, endpoint hardware.Endpoint) error {
	c.sinksMu.Lock()
	delete(c.sinks, subscriptionKey{featureID: featureID, inputType: inputType})
	c.sinksMu.Unlock()
	if err := c.hw.Unsubscribe(ctx, hardware.SubscribeCmd{FeatureID: featureID, Endpoint: endpoint}); err != nil {
		return bperror.Wrap(bperror.CodeDeviceCommunication, "unsubscribe failed", err)
	}
	return nil
}

// ReadInput services InputCmd(Read) directly against the handler, bypassing
// the write queue: reads carry no per-device ordering guarantee (spec
// section 5, "input readings have id=0 and no ordering relative to
// replies"), so there is no reason to serialize them behind pending writes.
func (c *Controller) ReadInput(ctx context.Context, featureIndex uint32, featureID uuid.UUID, inputType feature.InputType) (message.InputTypeData, error) {
	if inputType == feature.InputBattery {
		return c.handler.HandleBatteryLevel(ctx, c.DeviceIndex, c.hw, featureIndex, featureID)
	}
	return c.handler.HandleInputRead(ctx, c.DeviceIndex, c.hw, featureIndex, featureID, inputType)
}

func (c *Controller) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// run is the controller's single select loop (spec section 4.5): it
// multiplexes the command queue, the keepalive tick, and the hardware event
// stream, guaranteeing per-device write ordering.
func (c *Controller) run(ctx context.Context) {
	strategy := c.handler.KeepaliveStrategy()
	var tick <-chan time.Time
	if strategy.Kind != protocol.KeepaliveNone {
		period := strategy.Period
		if period <= 0 {
			period = protocol.DefaultKeepalivePeriod
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	hwEvents := c.hw.Events()

	for {
		select {
		case <-c.stop:
			return
		case <-c.notify:
			c.drainQueue(ctx)
		case <-tick:
			c.repeatLastCommand(ctx)
		case ev, ok := <-hwEvents:
			if !ok {
				return
			}
			c.handleHardwareEvent(ev)
		}
	}
}

func (c *Controller) drainQueue(ctx context.Context) {
	for _, item := range c.queue.dequeueAll() {
		err := c.process(ctx, item.cmd)
		if item.result != nil {
			item.result <- err
		}
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"device":    c.DeviceIndex,
				"feature":   item.cmd.FeatureIndex,
				"goroutine": groutine.GetName(ctx),
				"gid":       groutine.GetGID(),
			}).WithError(err).Warn("device command failed")
		}
	}
}

// process validates and dispatches one command, then executes the
// resulting hardware writes in order (spec section 4.5 steps 1-4).
func (c *Controller) process(ctx context.Context, fc FeatureCommand) error {
	if err := c.validate(fc); err != nil {
		return err
	}
	cmds, err := c.dispatch(fc)
	if err != nil {
		return err
	}
	return c.execute(ctx, cmds)
}

func (c *Controller) validate(fc FeatureCommand) error {
	if c.def == nil {
		return bperror.New(bperror.CodeDeviceFeatureIndex, "device has no definition")
	}
	f, ok := c.def.FeatureAt(int(fc.FeatureIndex))
	if !ok {
		return bperror.Newf(bperror.CodeDeviceFeatureIndex, "feature index %d out of range", fc.FeatureIndex)
	}
	if f.ID != fc.FeatureID {
		return bperror.Newf(bperror.CodeDeviceFeatureMismatch, "feature id mismatch at index %d", fc.FeatureIndex)
	}
	if _, ok := f.SupportsOutput(fc.Output); !ok {
		return bperror.Newf(bperror.CodeDeviceFeatureMismatch, "feature %d does not support %s", fc.FeatureIndex, fc.Output)
	}
	return nil
}

func (c *Controller) dispatch(fc FeatureCommand) ([]hardware.Command, error) {
	switch fc.Output {
	case feature.OutputVibrate:
		return c.handler.HandleOutputVibrate(fc.FeatureIndex, fc.FeatureID, fc.Value)
	case feature.OutputOscillate:
		return c.handler.HandleOutputOscillate(fc.FeatureIndex, fc.FeatureID, fc.Value)
	case feature.OutputRotate:
		return c.handler.HandleOutputRotate(fc.FeatureIndex, fc.FeatureID, fc.Value)
	case feature.OutputConstrict:
		return c.handler.HandleOutputConstrict(fc.FeatureIndex, fc.FeatureID, fc.Value)
	case feature.OutputPosition:
		return c.handler.HandleOutputPosition(fc.FeatureIndex, fc.FeatureID, fc.Value)
	case feature.OutputPositionWithDuration:
		return c.handler.HandlePositionWithDuration(fc.FeatureIndex, fc.FeatureID, fc.Value, fc.Value2)
	case feature.OutputRotationWithDirection:
		return c.handler.HandleRotationWithDirection(fc.FeatureIndex, fc.FeatureID, fc.Value, fc.Value2 != 0)
	default:
		return nil, bperror.Newf(bperror.CodeDeviceFeatureMismatch, "unrecognized output type %q", fc.Output)
	}
}

// execute issues each hardware command in order, aborting the batch on the
// first failure (spec section 4.5 step 3).
func (c *Controller) execute(ctx context.Context, cmds []hardware.Command) error {
	for _, hc := range cmds {
		err := c.hw.WriteValue(ctx, hardware.WriteCmd{
			FeatureIDs:        hc.FeatureIDs,
			Endpoint:          hc.Endpoint,
			Data:              hc.Data,
			WriteWithResponse: hc.WriteWithResponse,
		})
		if err != nil {
			return bperror.Wrap(bperror.CodeDeviceCommunication, "hardware write failed", err)
		}
		c.recordLastCommand(hc.Endpoint, hc.Data)
	}
	return nil
}

func (c *Controller) recordLastCommand(endpoint hardware.Endpoint, data []byte) {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	c.lastCommandBytes[endpoint] = append([]byte(nil), data...)
}

// repeatLastCommand re-issues last_command_bytes for every endpoint that has
// one, ignoring write errors (spec section 4.5, "On keepalive tick").
func (c *Controller) repeatLastCommand(ctx context.Context) {
	c.lastMu.Lock()
	snapshot := make(map[hardware.Endpoint][]byte, len(c.lastCommandBytes))
	for ep, data := range c.lastCommandBytes {
		snapshot[ep] = data
	}
	c.lastMu.Unlock()

	for ep, data := range snapshot {
		_ = c.hw.WriteValue(ctx, hardware.WriteCmd{Endpoint: ep, Data: data})
	}
}

func (c *Controller) handleHardwareEvent(ev hardware.Event) {
	switch ev.Kind {
	case hardware.EventDisconnected:
		c.events <- Event{Kind: EventDeviceRemoved, DeviceIndex: c.DeviceIndex}
		c.stopOnce.Do(func() { close(c.stop) })
	case hardware.EventNotification:
		c.routeNotification(ev)
	}
}

func (c *Controller) routeNotification(ev hardware.Event) {
	c.sinksMu.Lock()
	defer c.sinksMu.Unlock()
	for _, sink := range c.sinks {
		if sink.endpoint != ev.Endpoint {
			continue
		}
		sink.push(InputEvent{
			FeatureIndex: sink.featureIndex,
			FeatureID:    sink.featureID,
			InputType:    sink.inputType,
			Data:         decodeInputTypeData(sink.inputType, ev.Data),
		})
	}
}

// decodeInputTypeData maps a notification's raw bytes onto the tagged-union
// InputTypeData shape appropriate to inputType (spec section 4.1).
func decodeInputTypeData(inputType feature.InputType, data []byte) message.InputTypeData {
	if len(data) == 0 {
		return message.InputTypeData{}
	}
	switch inputType {
	case feature.InputBattery:
		v := data[0]
		return message.InputTypeData{Battery: &v}
	case feature.InputRSSI:
		v := int8(data[0])
		return message.InputTypeData{RSSI: &v}
	case feature.InputButton:
		v := data[0]
		return message.InputTypeData{Button: &v}
	case feature.InputPressure:
		var v uint32
		for _, b := range data {
			v = v<<8 | uint32(b)
		}
		return message.InputTypeData{Pressure: &v}
	default:
		return message.InputTypeData{}
	}
}
