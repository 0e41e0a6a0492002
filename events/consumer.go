package events

import (
	"context"
	"fmt"

	"github.com/ariebrainware/physiofriend-api/util"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler reacts to one event. A returned error requeues the delivery.
type Handler interface {
	Handle(ctx context.Context, key string, ev AppointmentEvent) error
}

// ConsumerConfig names the queue and bindings of the worker.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Keys     []string
	Prefetch int
}

type Consumer struct {
	cfg     ConsumerConfig
	handler Handler

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg ConsumerConfig, h Handler) *Consumer {
	if len(cfg.Keys) == 0 {
		cfg.Keys = RoutingKeys
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	return &Consumer{cfg: cfg, handler: h}
}

// Connect declares the exchange and the durable queue and binds every key.
func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}
	fail := func(format string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf(format, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange failed: %w", err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue failed: %w", err)
	}
	for _, key := range c.cfg.Keys {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			return fail("bind queue failed: %w", err)
		}
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, "physiofriend-worker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery decodes and dispatches one delivery and settles it. Undecodable
// bodies are dropped since requeueing them would loop forever.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	log := util.Logger()

	ev, err := decode(d.Body)
	if err != nil {
		log.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("dropping malformed event")
		_ = d.Nack(false, false)
		return
	}
	if err := c.handler.Handle(ctx, d.RoutingKey, ev); err != nil {
		log.Warn().Err(err).Str("routing_key", d.RoutingKey).Uint("appointment_id", ev.AppointmentID).Msg("handle error, requeueing")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
