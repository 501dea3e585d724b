package models

import (
	"encoding/json"
	"time"
)

type Topup struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Provider     TopupProvider   `db:"provider" json:"provider"`
	Method       string          `db:"method" json:"method"`
	Status       TopupStatus     `db:"status" json:"status"`
	Amount       *int64          `db:"amount" json:"amount,omitempty"`
	FaceValue    int64           `db:"face_value" json:"face_value"`
	SerialMasked string          `db:"serial_masked" json:"serial_masked,omitempty"`
	PinLast4     string          `db:"pin_last4" json:"pin_last4,omitempty"`
	ProviderRef  string          `db:"provider_ref" json:"provider_ref,omitempty"`
	Note         string          `db:"note" json:"note,omitempty"`
	Raw          json.RawMessage `db:"raw" json:"-"`
	Credited     bool            `db:"credited" json:"credited"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type TopupProvider string

const (
	ProviderCard TopupProvider = "card"
	ProviderMomo TopupProvider = "momo"
	ProviderBank TopupProvider = "bank"
)

func (p TopupProvider) Valid() bool {
	switch p {
	case ProviderCard, ProviderMomo, ProviderBank:
		return true
	}
	return false
}

type TopupStatus string

const (
	TopupPending    TopupStatus = "pending"
	TopupProcessing TopupStatus = "processing"
	TopupSuccess    TopupStatus = "success"
	TopupFailed     TopupStatus = "failed"
)

func (s TopupStatus) Valid() bool {
	switch s {
	case TopupPending, TopupProcessing, TopupSuccess, TopupFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status is absorbing: a success or failed
// record is never reopened.
func (s TopupStatus) IsTerminal() bool {
	return s == TopupSuccess || s == TopupFailed
}

// CreditResult describes what CompleteAndCredit or RetryCredit actually did.
// Applied is false when the record was already terminal and nothing changed.
type CreditResult struct {
	Applied    bool
	Credited   bool
	UserID     string
	Amount     int64
	NewBalance int64
}
