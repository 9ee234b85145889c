package commander_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/MichalMitros/restock-monitor/pkg/v1/commander"
	"github.com/MichalMitros/restock-monitor/pkg/v1/commander/mocks"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitSendCheckCommand(t *testing.T) {
	brand := faker.Word()

	tests := map[string]struct {
		brands      []string
		body        []byte
		senderError error
		wantErr     error
	}{
		"ok": {
			brands: []string{brand},
			body:   []byte(fmt.Sprintf(`{"brands":["%s"]}`, brand)),
		},
		"all brands": {
			body: []byte(`{"brands":[]}`),
		},
		"sender error": {
			brands:      []string{brand},
			body:        []byte(fmt.Sprintf(`{"brands":["%s"]}`, brand)),
			senderError: assert.AnError,
			wantErr:     assert.AnError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sender := mocks.NewSender(t)
			sender.On("Send", mock.Anything, tt.body).Return(tt.senderError)

			cmndr := commander.NewCheckCommander(sender)
			err := cmndr.SendCheckCommand(context.TODO(), tt.brands...)

			require.ErrorIs(t, err, tt.wantErr, "should return correct error")
		})
	}
}
