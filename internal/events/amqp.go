package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// AMQPPublisher publishes JSON events to a topic exchange keyed by event type.
// A publisher created by DialAMQP redials when the broker drops the connection.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	reopen   func() (Channel, error)
	url      string
	exchange string
	logger   *slog.Logger
}

// DialAMQP connects to url and declares a durable topic exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		return nil, errors.New("events: exchange name is required")
	}
	p := NewAMQPPublisher(nil, exchange, logger)
	p.url = url
	p.reopen = p.dial
	ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.channel = ch
	return p, nil
}

// NewAMQPPublisher publishes over an already opened channel.
func NewAMQPPublisher(ch Channel, exchange string, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{channel: ch, exchange: exchange, logger: logger.With("component", "events")}
}

// dial reuses a live connection, or replaces a closed one, and opens a
// channel with the exchange declared. Callers hold p.mu except during DialAMQP.
func (p *AMQPPublisher) dial() (Channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("events: connect: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		_ = p.conn.Close()
		p.conn = nil
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", p.exchange, err)
	}
	return ch, nil
}

// channelLocked returns an open channel, reopening it when possible.
func (p *AMQPPublisher) channelLocked() (Channel, error) {
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}
	if p.reopen == nil {
		if p.channel == nil {
			return nil, errors.New("events: no channel")
		}
		return p.channel, nil
	}
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	ch, err := p.reopen()
	if err != nil {
		return nil, err
	}
	p.logger.Info("amqp channel reopened", "exchange", p.exchange)
	p.channel = ch
	return ch, nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ReservationID + ":" + event.Type,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}

	p.mu.Lock()
	err = p.publishLocked(ctx, event.Type, msg)
	if err != nil && p.reopen != nil && errors.Is(err, amqp.ErrClosed) {
		// The channel died between the liveness check and the publish.
		if p.channel != nil {
			_ = p.channel.Close()
			p.channel = nil
		}
		err = p.publishLocked(ctx, event.Type, msg)
	}
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	p.logger.DebugContext(ctx, "event published", "type", event.Type, "reservation_id", event.ReservationID)
	return nil
}

func (p *AMQPPublisher) publishLocked(ctx context.Context, key string, msg amqp.Publishing) error {
	ch, err := p.channelLocked()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

// Close releases the channel and, when dialed, the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.channel != nil && !p.channel.IsClosed() {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	p.channel, p.conn = nil, nil
	p.reopen = nil
	return errors.Join(errs...)
}
