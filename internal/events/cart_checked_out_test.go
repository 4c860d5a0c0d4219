package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

func TestBuildCartCheckedOutEvent(t *testing.T) {
	now := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	items := []cart.Item{
		{ID: "15b50d93-e94b-4e2b-aba8-9ed785a7cdf6", Name: "Farmhouse", Price: 200, Quantity: 1},
		{ID: "25b50d93-e94b-4e2b-aba8-9ed785a7cdf6", Name: "Peppy Paneer", Price: 349, Quantity: 1},
	}

	env := BuildCartCheckedOutEvent("browser-1", items, 549, EnvelopeOptions{
		Sequence:      42,
		CorrelationID: "53b0fd3e-8d6b-49af-8c1f-12cf4182c2f7",
		CausationID:   "63b0fd3e-8d6b-49af-8c1f-12cf4182c2f7",
		EventID:       "73b0fd3e-8d6b-49af-8c1f-12cf4182c2f7",
		OccurredAt:    now,
	})

	if env.EventName != CartCheckedOutEventName {
		t.Fatalf("unexpected event name %s", env.EventName)
	}
	if env.EventVersion != CartCheckedOutEventVersion {
		t.Fatalf("unexpected event version %d", env.EventVersion)
	}
	if env.EventID != "73b0fd3e-8d6b-49af-8c1f-12cf4182c2f7" {
		t.Fatalf("expected provided event id to be used, got %s", env.EventID)
	}
	if env.PartitionKey != "browser-1" {
		t.Fatalf("expected partition key to default to cart id, got %s", env.PartitionKey)
	}
	if env.Producer != StorefrontProducer {
		t.Fatalf("expected producer %s, got %s", StorefrontProducer, env.Producer)
	}
	if env.Schema != CartCheckedOutEnvelopedSchemaPath {
		t.Fatalf("unexpected schema %s", env.Schema)
	}
	if !env.OccurredAt.Equal(now) || !env.Payload.Timestamp.Equal(now) {
		t.Fatalf("expected occurredAt and timestamp %v", now)
	}
	if env.Payload.TotalAmount != 549 {
		t.Fatalf("expected total 549, got %d", env.Payload.TotalAmount)
	}
	if len(env.Payload.Items) != 2 || env.Payload.Items[1].Name != "Peppy Paneer" {
		t.Fatalf("unexpected items %+v", env.Payload.Items)
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("expected valid envelope, got %v", err)
	}
}

func TestBuildCartCheckedOutEventDefaults(t *testing.T) {
	env := BuildCartCheckedOutEvent("browser-1", []cart.Item{{ID: "a", Name: "Margherita", Price: 199, Quantity: 1}}, 199, EnvelopeOptions{Sequence: 1})

	if _, err := uuid.Parse(env.EventID); err != nil {
		t.Fatalf("expected generated uuid event id, got %q", env.EventID)
	}
	if env.OccurredAt.IsZero() {
		t.Fatalf("expected occurredAt to be set")
	}
	if env.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp")
	}
}

func TestCartCheckedOutEnvelopeJSON(t *testing.T) {
	env := BuildCartCheckedOutEvent("browser-1", []cart.Item{{ID: "a", Name: "Margherita", Price: 199, Quantity: 1}}, 199, EnvelopeOptions{Sequence: 3})

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"eventName", "eventVersion", "eventId", "producer", "partitionKey", "sequence", "occurredAt", "schema", "payload"} {
		if _, ok := decoded[field]; !ok {
			t.Fatalf("expected field %s in %s", field, raw)
		}
	}
	if _, ok := decoded["correlationId"]; ok {
		t.Fatalf("expected empty correlationId to be omitted")
	}
	payload := decoded["payload"].(map[string]any)
	if payload["totalAmount"] != float64(199) {
		t.Fatalf("expected numeric totalAmount, got %v", payload["totalAmount"])
	}
}

func TestValidate(t *testing.T) {
	valid := func() EventEnvelope {
		return BuildCartCheckedOutEvent("browser-1", []cart.Item{{ID: "a", Name: "Margherita", Price: 199, Quantity: 1}}, 199, EnvelopeOptions{Sequence: 1})
	}

	tests := map[string]func(e *EventEnvelope){
		"wrong name":    func(e *EventEnvelope) { e.EventName = "Other" },
		"wrong version": func(e *EventEnvelope) { e.EventVersion = 2 },
		"no event id":   func(e *EventEnvelope) { e.EventID = "" },
		"no partition":  func(e *EventEnvelope) { e.PartitionKey = "" },
		"zero sequence": func(e *EventEnvelope) { e.Sequence = 0 },
		"no cart id":    func(e *EventEnvelope) { e.Payload.CartID = "" },
		"no items":      func(e *EventEnvelope) { e.Payload.Items = nil },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			env := valid()
			mutate(&env)
			if err := env.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
