package repository

import (
	"context"

	"github.com/honeynil/ShopLedgerService/internal/models"
)

//go:generate mockgen -source=order_repository.go -destination=mocks/mock_order_repository.go -package=mocks

type OrderRepository interface {
	// DebitAndCreate debits order.AmountCharged from the buyer with a single
	// conditional update and inserts the order in the same transaction.
	DebitAndCreate(ctx context.Context, order *models.Order) (newBalance int64, err error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)
}
