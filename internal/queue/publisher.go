package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers auth events to RabbitMQ. A nil *Publisher is valid and
// drops all events, so callers never need to branch on whether eventing is
// configured.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
}

// NewPublisher dials the broker and declares the durable auth events queue.
func NewPublisher(url string, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(AuthEventsQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// UserRegistered publishes an auth.user.registered event.
func (p *Publisher) UserRegistered(ctx context.Context, userID, email string) {
	p.publish(ctx, AuthEvent{Type: EventUserRegistered, UserID: userID, Email: email})
}

// UserLoggedIn publishes an auth.user.logged_in event.
func (p *Publisher) UserLoggedIn(ctx context.Context, userID, email string) {
	p.publish(ctx, AuthEvent{Type: EventUserLoggedIn, UserID: userID, Email: email})
}

func (p *Publisher) publish(ctx context.Context, ev AuthEvent) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal auth event failed", "type", ev.Type, "err", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err = p.ch.PublishWithContext(pubCtx, "", AuthEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.log.Warn("publish auth event failed", "type", ev.Type, "err", err)
	}
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	_ = p.ch.Close()
	_ = p.conn.Close()
}
