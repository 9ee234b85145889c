package commander

import (
	"context"
	"fmt"
)

//go:generate mockery --name RabbitMQPublisher --filename rabbitmqpublisher.go

// RabbitMQPublisher is RabbitMQ messages publisher.
type RabbitMQPublisher interface {
	Publish(ctx context.Context, routingKey string, message []byte) error
}

// RabbitMQSender sends check commands to monitor's RMQ routing key.
type RabbitMQSender struct {
	publisher  RabbitMQPublisher
	routingKey string
}

var _ Sender = RabbitMQSender{}

// NewRabbitMQSender returns new RabbitMQSender publishing to provided routing key.
func NewRabbitMQSender(publisher RabbitMQPublisher, routingKey string) RabbitMQSender {
	return RabbitMQSender{
		publisher:  publisher,
		routingKey: routingKey,
	}
}

// Send publishes message to RabbitMQSender's routing key.
func (s RabbitMQSender) Send(ctx context.Context, msg []byte) error {
	if err := s.publisher.Publish(ctx, s.routingKey, msg); err != nil {
		return fmt.Errorf("can't send command to %s: %w", s.routingKey, err)
	}

	return nil
}
