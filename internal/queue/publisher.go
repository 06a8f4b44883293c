package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// reservationQueueName is the durable queue confirmed reservations are
// published to.
const reservationQueueName = "reservation.confirmed"

// Publisher holds an open channel to the broker.  Publishing is
// best-effort from the caller's point of view: a reservation is already
// committed by the time an event is emitted, so callers log and move on
// when Publish fails.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials the broker and declares the durable queue.  The
// connection stays open for the process lifetime; call Close on
// shutdown.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(reservationQueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &Publisher{conn: conn, channel: ch}, nil
}

// PublishReservationConfirmed emits one persistent JSON message for a
// committed reservation.
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, event ReservationConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.channel.PublishWithContext(ctx,
		"",                   // default exchange
		reservationQueueName, // routing key = queue name
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
