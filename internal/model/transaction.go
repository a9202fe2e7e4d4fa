// Package model defines the core data types shared across the taste
// intelligence layer.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind distinguishes the three kinds of transaction events delivered
// by a sync delta.
type EventKind string

const (
	// EventAdded introduces a new transaction.
	EventAdded EventKind = "added"
	// EventModified supersedes a prior event with the same transaction ID.
	EventModified EventKind = "modified"
	// EventRemoved retracts a previously added transaction.
	EventRemoved EventKind = "removed"
)

// TransactionEvent is a single categorized spending event from the bank
// sync pipeline. Events are immutable once emitted; the current view of a
// transaction is the latest non-removed event with its ID.
type TransactionEvent struct {
	OccurredAt   time.Time       `json:"occurred_at"`
	ID           string          `json:"transaction_id"`
	UserID       string          `json:"user_id"`
	MerchantName string          `json:"merchant_name"`
	MerchantID   string          `json:"merchant_id,omitempty"`
	RawCategory  string          `json:"raw_category"`
	Kind         EventKind       `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Pending      bool            `json:"pending"`
}

// MerchantKey returns the stable merchant identifier for frequency
// tracking, preferring the upstream entity ID over the display name.
func (e TransactionEvent) MerchantKey() string {
	if e.MerchantID != "" {
		return e.MerchantID
	}
	return e.MerchantName
}

// SyncDelta is one page of a transactions/sync response. Deltas are applied
// in added, modified, removed order.
type SyncDelta struct {
	NextCursor string             `json:"next_cursor"`
	Added      []TransactionEvent `json:"added"`
	Modified   []TransactionEvent `json:"modified"`
	Removed    []string           `json:"removed"`
	HasMore    bool               `json:"has_more"`
}

// AppliedState is the side-index record of the last-applied contribution
// for a transaction ID. Modified and Removed events reverse the stored
// prior state before applying anything new, so the aggregate always
// reflects the sum over currently-live transactions.
type AppliedState struct {
	OccurredAt    time.Time       `json:"occurred_at"`
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Category      string          `json:"category"`
	Cuisine       string          `json:"cuisine,omitempty"`
	Merchant      string          `json:"merchant"`
	MerchantName  string          `json:"merchant_name"`
	Amount        decimal.Decimal `json:"amount"`
}
