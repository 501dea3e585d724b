package repository

import (
	"context"

	"github.com/honeynil/ShopLedgerService/internal/models"
)

//go:generate mockgen -source=account_repository.go -destination=mocks/mock_account_repository.go -package=mocks

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetBalance(ctx context.Context, id string) (int64, error)
}
