package models

import "time"

type EventType string

const (
	EventPurchaseCompleted EventType = "purchase.completed"
	EventTopupSucceeded    EventType = "topup.succeeded"
	EventTopupFailed       EventType = "topup.failed"
	EventTopupCreditFailed EventType = "topup.credit_failed"

	// EventTopupPaidAfterClose needs an operator: money arrived for a record
	// that is already failed and was not credited.
	EventTopupPaidAfterClose EventType = "topup.paid_after_close"
)

// LedgerEvent is published to Kafka after a balance-affecting change commits.
type LedgerEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id,omitempty"`
	TopupID    string    `json:"topup_id,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Amount     int64     `json:"amount"`
	Balance    int64     `json:"balance,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
