package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

type PublishMetadata struct {
	CorrelationID string
	CausationID   string
}

// CheckoutSnapshot is the cart state captured at checkout.
type CheckoutSnapshot struct {
	CartID string
	Items  []cart.Item
	Total  money.Amount
}

type CartEventsPublisher interface {
	PublishCartCheckedOut(ctx context.Context, snap CheckoutSnapshot, meta PublishMetadata) error
	Close() error
}

type channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type sequenceSource interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type RabbitPublisher struct {
	ch     channel
	seq    sequenceSource
	logger *zap.SugaredLogger
}

func NewRabbitPublisher(conn *amqp.Connection, seq *Sequencer, logger *zap.SugaredLogger) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch, seq, logger)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newRabbitPublisher(ch channel, seq sequenceSource, logger *zap.SugaredLogger) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, seq: seq, logger: logger}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, snap CheckoutSnapshot, meta PublishMetadata) error {
	seq, err := p.seq.NextSequence(ctx, snap.CartID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildCartCheckedOutEvent(snap.CartID, snap.Items, snap.Total, EnvelopeOptions{
		PartitionKey:  snap.CartID,
		Sequence:      seq,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
	})
	if err := env.Validate(); err != nil {
		return fmt.Errorf("invalid CartCheckedOut envelope: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, env.EventID, body); err != nil {
		return fmt.Errorf("publish CartCheckedOut: %w", err)
	}
	p.logger.Infof("published %s cart=%s seq=%d items=%d", CartCheckedOutEventName, snap.CartID, seq, len(snap.Items))
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct {
	Logger *zap.SugaredLogger
}

func (n NopPublisher) PublishCartCheckedOut(ctx context.Context, snap CheckoutSnapshot, meta PublishMetadata) error {
	if n.Logger != nil {
		n.Logger.Infof("no broker configured, dropping %s for cart=%s", CartCheckedOutEventName, snap.CartID)
	}
	return nil
}

func (n NopPublisher) Close() error { return nil }
