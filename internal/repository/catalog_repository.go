package repository

import "context"

//go:generate mockgen -source=catalog_repository.go -destination=mocks/mock_catalog_repository.go -package=mocks

// CatalogRepository is the authoritative price source. Prices never come from
// the client.
type CatalogRepository interface {
	GetPrice(ctx context.Context, itemID string) (int64, error)
}
