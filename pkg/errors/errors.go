package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidPayload          = errors.New("invalid payload")
	ErrItemNotFound            = errors.New("item not found")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrAccountLocked           = errors.New("account is locked")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrProviderRejected        = errors.New("provider rejected request")
	ErrProviderUnavailable     = errors.New("provider unavailable")
	ErrInvalidProviderAmount   = errors.New("invalid provider amount")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrTopupNotFound           = errors.New("topup not found")
	ErrRequestAlreadyProcessed = errors.New("request already processed")
	ErrUsernameExists          = errors.New("username already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrNilAccount              = errors.New("account is nil")
	ErrNilOrder                = errors.New("order is nil")
	ErrNilTopup                = errors.New("topup is nil")
	ErrInvalidTopupProvider    = errors.New("invalid topup provider")
	ErrInvalidTopupStatus      = errors.New("invalid topup status")
	ErrInternal                = errors.New("internal error")

	// ErrCommitOutcomeUnknown means COMMIT returned an error; the server may
	// still have applied the transaction.
	ErrCommitOutcomeUnknown = errors.New("commit outcome unknown")
)

// ProviderError carries the message an external payment provider returned
// with a rejection. It matches ErrProviderRejected under errors.Is.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s rejected the request (code %s)", ErrProviderRejected, e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return ErrProviderRejected
}
