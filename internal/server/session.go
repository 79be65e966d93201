package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/controller"
	"github.com/srg/buttplugd/internal/devicemanager"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/groutine"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/upcast"
)

// sessionState mirrors the Disconnected/Handshake/Active state machine (spec
// section 4.7), via atomic-free plain fields since every state transition
// happens on the goroutine running Run (the readLoop goroutine never
// touches it).
type sessionState int

const (
	stateDisconnected sessionState = iota
	stateHandshake
	stateActive
)

// subKey identifies one active client-visible input subscription.
type subKey struct {
	deviceIndex uint32
	featureID   uuid.UUID
	inputType   feature.InputType
}

// Session runs one client connection's handshake, dispatch, and ping
// watchdog (spec section 4.7). Grounded on internal/controller.Controller's
// select loop, generalized from "one device's
// hardware events" to "one client's transport frames, device manager
// events, and subscribed input streams".
type Session struct {
	transport Transport
	manager   *devicemanager.Manager
	cfg       *config.ServerConfig
	logger    *logrus.Logger

	state   sessionState
	version message.SpecVersion
	ser     *message.Serializer

	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[subKey]context.CancelFunc
}

// NewSession builds a Session bound to one accepted Transport.
func NewSession(transport Transport, manager *devicemanager.Manager, cfg *config.ServerConfig, logger *logrus.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		transport: transport,
		manager:   manager,
		cfg:       cfg,
		logger:    logger,
		state:     stateDisconnected,
		ser:       message.NewSerializer(message.Max),
		subs:      make(map[subKey]context.CancelFunc),
	}
}

// Run drives the session to completion: handshake, then dispatch loop with
// the ping watchdog and device-manager event forwarding, until the
// transport closes or ctx is canceled. Always returns after cleaning up
// every subscription this session opened.
func (s *Session) Run(ctx context.Context) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeAllSubscriptions()
	defer s.transport.Close()

	if err := s.handshake(sessionCtx); err != nil {
		s.logger.WithError(err).Debug("handshake failed")
		return err
	}

	var pingTimer *time.Timer
	var pingC <-chan time.Time
	if s.cfg.MaxPingTime > 0 {
		pingTimer = time.NewTimer(s.cfg.MaxPingTime)
		defer pingTimer.Stop()
		pingC = pingTimer.C
	}

	frames := make(chan []byte, 1)
	readErrs := make(chan error, 1)
	groutine.Go(sessionCtx, "session.readLoop", func(ctx context.Context) {
		s.readLoop(ctx, frames, readErrs)
	})

	events := s.manager.Events()

	for {
		select {
		case <-sessionCtx.Done():
			return sessionCtx.Err()

		case <-pingC:
			s.logger.Warn("ping watchdog expired, stopping all devices")
			_ = s.manager.StopAllDevices(sessionCtx)
			return bperror.New(bperror.CodeDeviceCommunication, "ping timeout")

		case err := <-readErrs:
			return err

		case frame := <-frames:
			if err := s.handleFrame(sessionCtx, frame); err != nil {
				s.logger.WithError(err).Warn("frame handling failed")
			}
			if pingTimer != nil {
				if !pingTimer.Stop() {
					select {
					case <-pingTimer.C:
					default:
					}
				}
				pingTimer.Reset(s.cfg.MaxPingTime)
			}

		case ev := <-events:
			s.forwardManagerEvent(sessionCtx, ev)
		}
	}
}

func (s *Session) readLoop(ctx context.Context, frames chan<- []byte, errs chan<- error) {
	for {
		data, err := s.transport.ReadMessage(ctx)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"goroutine": groutine.GetName(ctx),
				"gid":       groutine.GetGID(),
			}).WithError(err).Debug("read loop stopping")
			errs <- err
			return
		}
		select {
		case frames <- data:
		case <-ctx.Done():
			return
		}
	}
}

// handshake blocks until RequestServerInfo is received and answered, per
// spec section 4.7's Disconnected->Handshake->Active transition.
func (s *Session) handshake(ctx context.Context) error {
	s.state = stateHandshake
	data, err := s.transport.ReadMessage(ctx)
	if err != nil {
		return err
	}
	msgs, err := message.NewSerializer(message.Max).DeserializeClientMessages(data)
	if err != nil {
		return s.sendError(ctx, 0, err)
	}
	if len(msgs) != 1 {
		return s.sendError(ctx, 0, bperror.New(bperror.CodeUnexpectedMessage, "handshake frame must carry exactly one message"))
	}
	req, ok := msgs[0].(*message.RequestServerInfoV4)
	if !ok {
		return s.sendError(ctx, msgs[0].ID(), bperror.New(bperror.CodeUnexpectedMessage, "first message must be RequestServerInfo"))
	}
	clientVersion, ok := message.ParseSpecVersion(req.MessageVersion)
	if !ok {
		_ = s.sendError(ctx, req.ID(), bperror.Newf(bperror.CodeVersionNotSupported, "unsupported spec version %d", req.MessageVersion))
		return bperror.New(bperror.CodeVersionNotSupported, "unsupported spec version")
	}
	s.version = message.Negotiate(clientVersion)
	s.ser = s.ser.WithVersion(s.version)

	info := &message.ServerInfoV4{
		ServerName:     s.cfg.ServerName,
		MessageVersion: uint32(s.version),
		MaxPingTime:    uint32(s.cfg.MaxPingTime / time.Millisecond),
	}
	info.SetID(req.ID())
	if err := s.send(ctx, info); err != nil {
		return err
	}
	s.state = stateActive
	return nil
}

func (s *Session) handleFrame(ctx context.Context, data []byte) error {
	msgs, err := s.ser.DeserializeClientMessages(data)
	if err != nil {
		return s.sendError(ctx, 0, err)
	}
	for _, msg := range msgs {
		if err := s.handleOne(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) handleOne(ctx context.Context, msg message.Message) error {
	if _, isPing := msg.(*message.PingV0); isPing {
		reply := &message.OkV0{}
		reply.SetID(msg.ID())
		return s.send(ctx, reply)
	}

	if err := msg.Validate(); err != nil {
		return s.sendError(ctx, msg.ID(), err)
	}

	def := s.definitionFor(msg)
	v4msgs, err := upcast.ToV4(msg, def)
	if err != nil {
		return s.sendError(ctx, msg.ID(), err)
	}

	for _, v4 := range v4msgs {
		replies, err := s.dispatch(ctx, v4)
		if err != nil {
			if sendErr := s.sendError(ctx, v4.ID(), err); sendErr != nil {
				return sendErr
			}
			continue
		}
		for _, reply := range replies {
			if err := s.send(ctx, reply); err != nil {
				return err
			}
		}
	}
	return nil
}

// definitionFor looks up the target device's feature table so upcast.ToV4
// can resolve positional feature indices. Messages with no device target
// (handshake/scanning/device-list) pass a nil definition, which upcast
// never consults for those message types.
func (s *Session) definitionFor(msg message.Message) *feature.DeviceDefinition {
	dm, ok := msg.(message.DeviceMessage)
	if !ok {
		return nil
	}
	rec, ok := s.manager.Get(dm.DeviceIndex())
	if !ok {
		return nil
	}
	return rec.Definition
}

func (s *Session) forwardManagerEvent(ctx context.Context, ev devicemanager.Event) {
	switch ev.Kind {
	case devicemanager.EventDeviceAdded:
		added := upcast.DeviceAddedV4(ev.Index, ev.Record.Definition)
		_ = s.send(ctx, upcast.DeviceAddedForVersion(s.version, added))
	case devicemanager.EventDeviceRemoved:
		s.closeSubscriptionsForDevice(ev.Index)
		removed := &message.DeviceRemovedV4{DeviceIdx: ev.Index}
		_ = s.send(ctx, removed)
	case devicemanager.EventScanningFinished:
		_ = s.send(ctx, &message.ScanningFinishedV0{})
	}
}

func (s *Session) trackSubscription(deviceIndex, featureIndex uint32, featureID uuid.UUID, inputType feature.InputType, sink controller.Sink) {
	key := subKey{deviceIndex: deviceIndex, featureID: featureID, inputType: inputType}
	ctx, cancel := context.WithCancel(context.Background())

	s.subsMu.Lock()
	if old, exists := s.subs[key]; exists {
		old()
	}
	s.subs[key] = cancel
	s.subsMu.Unlock()

	groutine.Go(ctx, fmt.Sprintf("session.pumpSubscription.%d.%d", deviceIndex, featureIndex), func(ctx context.Context) {
		s.pumpSubscription(ctx, deviceIndex, featureIndex, sink)
	})
}

func (s *Session) pumpSubscription(ctx context.Context, deviceIndex, featureIndex uint32, sink controller.Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sink.Notify():
			for _, ev := range sink.Drain() {
				reading := &message.InputReadingV4{DeviceIdx: deviceIndex, FeatureIndex: featureIndex, Data: ev.Data}
				projected := upcast.InputReadingForVersion(s.version, ev.InputType, featureIndex, reading)
				if projected == nil {
					continue
				}
				if err := s.send(ctx, projected); err != nil {
					s.logger.WithFields(logrus.Fields{
						"goroutine": groutine.GetName(ctx),
						"gid":       groutine.GetGID(),
					}).WithError(err).Debug("subscription push failed")
				}
			}
		}
	}
}

func (s *Session) stopSubscription(deviceIndex uint32, featureID uuid.UUID, inputType feature.InputType) {
	key := subKey{deviceIndex: deviceIndex, featureID: featureID, inputType: inputType}
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if cancel, ok := s.subs[key]; ok {
		cancel()
		delete(s.subs, key)
	}
}

func (s *Session) closeSubscriptionsForDevice(deviceIndex uint32) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for key, cancel := range s.subs {
		if key.deviceIndex == deviceIndex {
			cancel()
			delete(s.subs, key)
		}
	}
}

func (s *Session) closeAllSubscriptions() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for key, cancel := range s.subs {
		cancel()
		delete(s.subs, key)
	}
}

func (s *Session) send(ctx context.Context, msg message.Message) error {
	wire := s.downcastForSend(msg)
	frame, err := s.ser.SerializeMessages(wire)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.WriteMessage(writeCtx, frame)
}

// downcastForSend projects DeviceAdded into the negotiated version's shape;
// every other server message's legacy/canonical form is chosen by the
// caller already (e.g. forwardManagerEvent, pumpSubscription).
func (s *Session) downcastForSend(msg message.Message) message.Message {
	if added, ok := msg.(*message.DeviceAddedV4); ok {
		return upcast.DeviceAddedForVersion(s.version, added)
	}
	return msg
}

func (s *Session) sendError(ctx context.Context, id uint32, err error) error {
	code := bperror.CodeUnknown
	msg := err.Error()
	if bpErr, ok := err.(*bperror.Error); ok {
		code = bpErr.Code
		msg = bpErr.Message
	}
	reply := &message.ErrorV0{ErrorCode: string(code), ErrorMessage: msg}
	reply.SetID(id)
	return s.send(ctx, reply)
}
