package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpecVersion(t *testing.T) {
	tests := []struct {
		name    string
		major   uint32
		want    SpecVersion
		wantOK  bool
	}{
		{"v0", 0, V0, true},
		{"v4 max", 4, V4, true},
		{"out of range", 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSpecVersion(tt.major)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, V2, Negotiate(V2))
	assert.Equal(t, V4, Negotiate(V4))
	assert.Equal(t, Max, Negotiate(SpecVersion(99)))
}

func TestSpecVersionString(t *testing.T) {
	assert.Equal(t, "0", V0.String())
	assert.Equal(t, "4", V4.String())
	assert.Equal(t, "unknown", SpecVersion(99).String())
}
