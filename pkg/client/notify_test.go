package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akashwav/ConnectGo/pkg/wire"
)

func TestShouldNotifyTruthTable(t *testing.T) {
	msg := wire.Message{ID: "m1", ChatID: "c1"}

	tests := []struct {
		name    string
		openID  string
		visible bool
		want    bool
	}{
		{name: "chat open and app visible", openID: "c1", visible: true, want: false},
		{name: "chat open but app hidden", openID: "c1", visible: false, want: true},
		{name: "other chat open, app visible", openID: "c2", visible: true, want: true},
		{name: "other chat open, app hidden", openID: "c2", visible: false, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldNotify(msg, tc.openID, tc.visible))
		})
	}
}

func TestShouldNotifyNoChatOpen(t *testing.T) {
	msg := wire.Message{ID: "m1", ChatID: "c1"}
	assert.True(t, ShouldNotify(msg, "", true))
	assert.True(t, ShouldNotify(msg, "", false))
}
