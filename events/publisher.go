package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/util"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits appointment events.
type Publisher interface {
	Publish(ctx context.Context, key string, ev AppointmentEvent) error
	Close() error
}

// NoopPublisher drops events. It is used when RabbitMQ is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, AppointmentEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
}

// NewAMQPPublisher dials RabbitMQ and declares the durable topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, key string, ev AppointmentEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.OccurredAt,
		Type:         key,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewPublisherFromConfig returns the AMQP publisher when RABBIT_URL is set and the
// no-op publisher otherwise, or when the broker cannot be reached at startup.
func NewPublisherFromConfig(cfg *config.Config) Publisher {
	if cfg.RabbitURL == "" {
		return NoopPublisher{}
	}
	p, err := NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		util.Logger().Warn().Err(err).Msg("rabbitmq unavailable, domain events disabled")
		return NoopPublisher{}
	}
	return p
}

// PublishAsync publishes without holding up the request. Failures are logged.
func PublishAsync(p Publisher, key string, ev AppointmentEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, key, ev); err != nil {
			util.Logger().Error().Err(err).Str("routing_key", key).Uint("appointment_id", ev.AppointmentID).Msg("failed to publish event")
		}
	}()
}
