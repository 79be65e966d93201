package message

import (
	"testing"

	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/wiretest"
)

func TestSerializeMessagesProducesExpectedEnvelope(t *testing.T) {
	ok := &OkV0{}
	ok.SetID(7)

	ser := NewSerializer(V4)
	frame, err := ser.SerializeMessages(ok)
	if err != nil {
		t.Fatalf("SerializeMessages: %v", err)
	}

	wiretest.NewJSONAsserter(t).Assert(string(frame), `[{"Ok": {"Id": 7}}]`)
}

func TestSerializeMessagesIgnoresExtraOutputCmdFields(t *testing.T) {
	cmd := &OutputCmdV4{DeviceIdx: 2, FeatureIndex: 0, OutputType: feature.OutputVibrate, Value: 10}
	cmd.SetID(1)

	ser := NewSerializer(V4)
	frame, err := ser.SerializeMessages(cmd)
	if err != nil {
		t.Fatalf("SerializeMessages: %v", err)
	}

	wiretest.NewJSONAsserter(t).Assert(string(frame), `[{"OutputCmd": {"DeviceIndex": 2, "Value": 10}}]`)
}
