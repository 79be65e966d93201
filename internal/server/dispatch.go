package server

import (
	"context"

	"github.com/srg/buttplugd/internal/bperror"
	"github.com/srg/buttplugd/internal/controller"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/message"
	"github.com/srg/buttplugd/internal/upcast"
)

// defaultEndpointForInput maps an input type to the standard endpoint a
// device's notifications for it arrive on (spec section 6 Endpoints).
// There is no per-device override: every subscribe and unsubscribe uses
// this endpoint.
func defaultEndpointForInput(inputType feature.InputType) hardware.Endpoint {
	switch inputType {
	case feature.InputBattery:
		return hardware.EndpointRxBLEBattery
	case feature.InputPressure:
		return hardware.EndpointRxPressure
	case feature.InputButton:
		return hardware.EndpointRxTouch
	default:
		return hardware.EndpointRx
	}
}

// dispatch executes one already-upcast V4 client message against the device
// manager, returning the reply message(s) (spec section 4.1/4.5/4.6). Input
// readings are projected to the client's negotiated version here; the
// DeviceList reply is returned in its V4 shape at every version. Every reply
// already carries the request's id via upcast.ToV4's construction.
func (s *Session) dispatch(ctx context.Context, msg message.Message) ([]message.Message, error) {
	switch m := msg.(type) {
	case *message.StartScanningV0:
		if err := s.manager.StartScanning(ctx); err != nil {
			return nil, err
		}
		return ok(m.ID()), nil

	case *message.StopScanningV0:
		if err := s.manager.StopScanning(ctx); err != nil {
			return nil, err
		}
		return ok(m.ID()), nil

	case *message.RequestDeviceListV0:
		list := &message.DeviceListV4{}
		for _, rec := range s.manager.Devices() {
			list.Devices = append(list.Devices, *upcast.DeviceAddedV4(rec.Index, rec.Definition))
		}
		list.SetID(m.ID())
		return []message.Message{list}, nil

	case *message.StopDeviceCmdV0:
		if err := s.manager.StopDevice(ctx, m.DeviceIdx); err != nil {
			return nil, err
		}
		return ok(m.ID()), nil

	case *message.StopAllDevicesV0:
		if err := s.manager.StopAllDevices(ctx); err != nil {
			return nil, err
		}
		return ok(m.ID()), nil

	case *message.OutputCmdV4:
		return s.dispatchOutput(ctx, m)

	case *message.InputCmdV4:
		return s.dispatchInput(ctx, m)

	default:
		return nil, bperror.Newf(bperror.CodeUnexpectedMessage, "message %T not handled by dispatch", msg)
	}
}

func ok(id uint32) []message.Message {
	reply := &message.OkV0{}
	reply.SetID(id)
	return []message.Message{reply}
}

func (s *Session) dispatchOutput(ctx context.Context, m *message.OutputCmdV4) ([]message.Message, error) {
	rec, ok2 := s.manager.Get(m.DeviceIdx)
	if !ok2 {
		return nil, bperror.Newf(bperror.CodeDeviceNotConnected, "device %d not connected", m.DeviceIdx)
	}
	f, ok2 := rec.Definition.FeatureAt(int(m.FeatureIndex))
	if !ok2 {
		return nil, bperror.Newf(bperror.CodeDeviceFeatureIndex, "feature index %d out of range", m.FeatureIndex)
	}
	value2 := uint32(0)
	if m.Param != nil {
		value2 = *m.Param
	}
	result := make(chan error, 1)
	rec.Controller.Enqueue(controller.FeatureCommand{
		FeatureIndex: m.FeatureIndex,
		FeatureID:    f.ID,
		Output:       m.OutputType,
		Value:        m.Value,
		Value2:       value2,
	}, result)
	select {
	case err := <-result:
		if err != nil {
			return nil, err
		}
		return ok(m.ID()), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) dispatchInput(ctx context.Context, m *message.InputCmdV4) ([]message.Message, error) {
	rec, ok2 := s.manager.Get(m.DeviceIdx)
	if !ok2 {
		return nil, bperror.Newf(bperror.CodeDeviceNotConnected, "device %d not connected", m.DeviceIdx)
	}
	f, ok2 := rec.Definition.FeatureAt(int(m.FeatureIndex))
	if !ok2 {
		return nil, bperror.Newf(bperror.CodeDeviceFeatureIndex, "feature index %d out of range", m.FeatureIndex)
	}
	if !f.SupportsInput(m.InputType, m.Command) {
		return nil, bperror.Newf(bperror.CodeDeviceFeatureMismatch, "feature %d does not support %s %s", m.FeatureIndex, m.InputType, m.Command)
	}

	switch m.Command {
	case feature.InputCommandRead:
		data, err := rec.Controller.ReadInput(ctx, m.FeatureIndex, f.ID, m.InputType)
		if err != nil {
			return nil, err
		}
		reading := &message.InputReadingV4{DeviceIdx: m.DeviceIdx, FeatureIndex: m.FeatureIndex, Data: data}
		reading.SetID(m.ID())
		projected := upcast.InputReadingForVersion(s.version, m.InputType, m.FeatureIndex, reading)
		if projected == nil {
			return nil, nil
		}
		return []message.Message{projected}, nil

	case feature.InputCommandSubscribe:
		endpoint := defaultEndpointForInput(m.InputType)
		sink, err := rec.Controller.Subscribe(ctx, m.FeatureIndex, f.ID, m.InputType, endpoint)
		if err != nil {
			return nil, err
		}
		s.trackSubscription(m.DeviceIdx, m.FeatureIndex, f.ID, m.InputType, sink)
		return ok(m.ID()), nil

	case feature.InputCommandUnsubscribe:
		s.stopSubscription(m.DeviceIdx, f.ID, m.InputType)
		endpoint := defaultEndpointForInput(m.InputType)
		if err := rec.Controller.Unsubscribe(ctx, f.ID, m.InputType, endpoint); err != nil {
			return nil, err
		}
		return ok(m.ID()), nil

	default:
		return nil, bperror.Newf(bperror.CodeInvalidMessageContents, "unrecognized input command %q", m.Command)
	}
}
