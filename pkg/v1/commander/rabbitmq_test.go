package commander_test

import (
	"context"
	"testing"

	"github.com/MichalMitros/restock-monitor/pkg/v1/commander"
	"github.com/MichalMitros/restock-monitor/pkg/v1/commander/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const checkRoutingKey = "restock-monitor.check"

func TestUnitRabbitMQSenderSend(t *testing.T) {
	command := []byte(`{"brands":["Ippodo","Sazen"]}`)

	publisher := mocks.NewRabbitMQPublisher(t)
	publisher.On("Publish", mock.Anything, checkRoutingKey, command).Return(nil).Once()

	err := commander.NewRabbitMQSender(publisher, checkRoutingKey).Send(context.TODO(), command)

	require.NoError(t, err, "shouldn't return any error")
}

func TestUnitRabbitMQSenderSendError(t *testing.T) {
	publisher := mocks.NewRabbitMQPublisher(t)
	publisher.On("Publish", mock.Anything, checkRoutingKey, mock.Anything).Return(assert.AnError).Once()

	err := commander.NewRabbitMQSender(publisher, checkRoutingKey).Send(context.TODO(), []byte(`{"brands":[]}`))

	require.ErrorIs(t, err, assert.AnError, "should wrap publisher error")
	assert.ErrorContains(t, err, checkRoutingKey, "should name routing key")
}

func TestUnitCheckCommandOverRabbitMQSender(t *testing.T) {
	var published []byte

	publisher := mocks.NewRabbitMQPublisher(t)
	publisher.On("Publish", mock.Anything, checkRoutingKey, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).([]byte) }).
		Return(nil).
		Once()

	cmndr := commander.NewCheckCommander(commander.NewRabbitMQSender(publisher, checkRoutingKey))
	err := cmndr.SendCheckCommand(context.TODO(), "Marukyu Koyamaen")

	require.NoError(t, err, "shouldn't return any error")
	assert.JSONEq(t, `{"brands":["Marukyu Koyamaen"]}`, string(published), "should publish check command json")
}
