// Package amqp publica eventos de movimientos en RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/pkg/config"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

const publishTimeout = 5 * time.Second

// Channel parte de *amqp091.Channel que usa el publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

var _ inventory.EventPublisher = (*Publisher)(nil)

// Publisher publica MovementEvent como JSON en un exchange topic.
type Publisher struct {
	conn       *amqp091.Connection
	mu         sync.Mutex
	ch         Channel
	exchange   string
	routingKey string
	log        *logger.Logger
}

// Dial conecta al broker, declara el exchange y devuelve el publisher.
func Dial(cfg config.AMQPConfig, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p := NewPublisher(ch, cfg.Exchange, cfg.RoutingKey, log)
	p.conn = conn
	return p, nil
}

// NewPublisher construye el publisher sobre un canal ya abierto.
func NewPublisher(ch Channel, exchange, routingKey string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log.WithComponent("amqp"),
	}
}

// Publish implementa inventory.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, ev inventory.MovementEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Action,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.log.Debug().
		Str("item_id", ev.ItemID).
		Str("action", ev.Action).
		Str("exchange", p.exchange).
		Msg("evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
