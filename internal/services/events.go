package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventsExchange = "events"

	EventTaskUpdateRecorded = "task.update.recorded"
	EventTaskDelayed        = "task.delayed"
)

// TaskUpdateRecordedPayload is published after a status update is stored.
type TaskUpdateRecordedPayload struct {
	ProjectID  uint64    `json:"project_id"`
	TaskID     uint64    `json:"task_id"`
	UpdateID   uint64    `json:"update_id"`
	Status     string    `json:"status"`
	UpdateDate string    `json:"update_date"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TaskDelayedPayload is published when a recorded update leaves the task delayed.
type TaskDelayedPayload struct {
	ProjectID uint64 `json:"project_id"`
	TaskID    uint64 `json:"task_id"`
	DelayDays int    `json:"delay_days"`
	Status    string `json:"status"`
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(
		ctx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Type:         routingKey,
			Timestamp:    time.Now(),
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}

// NewEventPublisher connects to url, or returns a NopPublisher when url is empty.
func NewEventPublisher(url string, log *zap.Logger) (EventPublisher, error) {
	if url == "" {
		log.Info("AMQP_URL not set, domain events disabled")
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url)
}
