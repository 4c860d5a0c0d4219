package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

const (
	CartCheckedOutEventName           = "CartCheckedOut"
	CartCheckedOutEventVersion        = 1
	CartCheckedOutEnvelopedSchemaPath = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	StorefrontProducer                = "storefront"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	CausationID   string                `json:"causationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	CartID      string               `json:"cartId"`
	Items       []CartCheckedOutItem `json:"items"`
	TotalAmount money.Amount         `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ItemID   string       `json:"itemId"`
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    money.Amount `json:"price"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent wraps a snapshot of the cart identified by cartID.
func BuildCartCheckedOutEvent(cartID string, items []cart.Item, total money.Amount, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = CartCheckedOutEnvelopedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = cartID
	}

	payload := CartCheckedOutPayload{
		CartID:      cartID,
		Items:       make([]CartCheckedOutItem, 0, len(items)),
		TotalAmount: total,
		Timestamp:   occurredAt,
	}
	for _, it := range items {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ItemID:   it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}

func (e EventEnvelope) Validate() error {
	if e.EventName != CartCheckedOutEventName {
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	}
	if e.EventVersion != CartCheckedOutEventVersion {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.Sequence <= 0 {
		return fmt.Errorf("sequence must be positive")
	}
	if e.Payload.CartID == "" {
		return fmt.Errorf("missing payload.cartId")
	}
	if len(e.Payload.Items) == 0 {
		return fmt.Errorf("payload.items must not be empty")
	}
	return nil
}
