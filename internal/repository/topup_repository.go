package repository

import (
	"context"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/models"
)

//go:generate mockgen -source=topup_repository.go -destination=mocks/mock_topup_repository.go -package=mocks

type TopupRepository interface {
	Create(ctx context.Context, topup *models.Topup) error
	GetByID(ctx context.Context, id string) (*models.Topup, error)
	ListByUser(ctx context.Context, userID string, status models.TopupStatus, limit int) ([]models.Topup, error)
	// RecordProgress annotates a non-terminal record. Empty arguments leave the
	// stored column untouched.
	RecordProgress(ctx context.Context, id, providerRef, note string, raw []byte) error
	// RecordLatePayment annotates a failed record with a payment the provider
	// confirmed after it closed. The status is left as failed.
	RecordLatePayment(ctx context.Context, id, providerRef, note string, raw []byte) error
	// MarkFailed moves a non-terminal record to failed. It reports false when
	// the record was already terminal.
	MarkFailed(ctx context.Context, id, note string, raw []byte) (bool, error)
	// CompleteAndCredit moves a non-terminal record to success and increments
	// the owner's balance by amount in one transaction.
	CompleteAndCredit(ctx context.Context, id string, amount int64, providerRef string, raw []byte) (models.CreditResult, error)
	// RetryCredit credits a success record whose earlier credit did not apply.
	RetryCredit(ctx context.Context, id string) (models.CreditResult, error)
	ExpireStale(ctx context.Context, provider models.TopupProvider, olderThan time.Time) (int64, error)
}
