package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher sends visit events to a durable RabbitMQ queue drained
// by cmd/visit-worker.
type RabbitPublisher struct {
	ch    *amqp091.Channel
	queue string
}

// NewRabbitPublisher declares the queue on the given channel so the
// publisher never races the worker on startup.
func NewRabbitPublisher(ch *amqp091.Channel, queue string) (*RabbitPublisher, error) {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return &RabbitPublisher{ch: ch, queue: queue}, nil
}

func (p *RabbitPublisher) PublishVisit(ctx context.Context, event VisitEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal visit event: %w", err)
	}
	return p.ch.PublishWithContext(
		ctx,
		"", p.queue, false, false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
