package testutil

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ceezaa/tasteflow/internal/model"
)

// EventBuilder constructs transaction events with sensible defaults so
// tests only state what they care about.
type EventBuilder struct {
	event model.TransactionEvent
	seq   int
}

// NewEvent starts a builder for the given user. Defaults: a $12.50 coffee
// purchase on a Tuesday morning.
func NewEvent(userID string) *EventBuilder {
	return &EventBuilder{
		event: model.TransactionEvent{
			ID:           "txn-1",
			UserID:       userID,
			MerchantName: "Blue Bottle Coffee",
			RawCategory:  "FOOD_AND_DRINK_COFFEE",
			Kind:         model.EventAdded,
			Amount:       decimal.NewFromFloat(12.50),
			OccurredAt:   time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC),
		},
	}
}

// WithID sets the transaction ID.
func (b *EventBuilder) WithID(id string) *EventBuilder {
	b.event.ID = id
	return b
}

// WithMerchant sets the merchant display name.
func (b *EventBuilder) WithMerchant(name string) *EventBuilder {
	b.event.MerchantName = name
	return b
}

// WithMerchantID sets the stable upstream merchant entity ID.
func (b *EventBuilder) WithMerchantID(id string) *EventBuilder {
	b.event.MerchantID = id
	return b
}

// WithCategory sets the raw bank category.
func (b *EventBuilder) WithCategory(raw string) *EventBuilder {
	b.event.RawCategory = raw
	return b
}

// WithAmount sets the transaction amount.
func (b *EventBuilder) WithAmount(amount float64) *EventBuilder {
	b.event.Amount = decimal.NewFromFloat(amount)
	return b
}

// WithKind sets the event kind.
func (b *EventBuilder) WithKind(kind model.EventKind) *EventBuilder {
	b.event.Kind = kind
	return b
}

// At sets the event timestamp.
func (b *EventBuilder) At(t time.Time) *EventBuilder {
	b.event.OccurredAt = t
	return b
}

// Build returns the event.
func (b *EventBuilder) Build() model.TransactionEvent {
	return b.event
}

// NextID assigns a fresh sequential transaction ID and returns the event.
// Useful when generating many events from one builder.
func (b *EventBuilder) NextID() model.TransactionEvent {
	b.seq++
	b.event.ID = fmt.Sprintf("txn-%d", b.seq)
	return b.event
}
