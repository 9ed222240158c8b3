package notifications

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestOrderEventRoundTrip(t *testing.T) {
	event := NewOrderEvent(OrderEventPaid, uuid.New(), uuid.New(), uuid.New())
	event.UserEmail = "buyer@example.com"
	event.TotalCents = 10400
	event.Currency = "USD"
	event.Provider = "stripe"

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded OrderEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Type != OrderEventPaid {
		t.Errorf("Type = %q, want %q", decoded.Type, OrderEventPaid)
	}
	if decoded.OrderID != event.OrderID {
		t.Errorf("OrderID = %s, want %s", decoded.OrderID, event.OrderID)
	}
	if decoded.TotalCents != 10400 {
		t.Errorf("TotalCents = %d, want 10400", decoded.TotalCents)
	}
}

func TestPartitionKeyGroupsByOrder(t *testing.T) {
	orderID := uuid.New()
	created := NewOrderEvent(OrderEventCreated, orderID, uuid.New(), uuid.New())
	paid := NewOrderEvent(OrderEventPaid, orderID, uuid.New(), uuid.New())

	if created.PartitionKey() != paid.PartitionKey() {
		t.Error("events for one order must share a partition key")
	}
	if created.PartitionKey() != orderID.String() {
		t.Errorf("PartitionKey() = %q, want the order id", created.PartitionKey())
	}
}
