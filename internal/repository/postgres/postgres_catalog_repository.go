package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresCatalogRepository struct {
	db *sqlx.DB
}

func NewPostgresCatalogRepository(db *sqlx.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) GetPrice(ctx context.Context, itemID string) (_ int64, err error) {
	ctx, span, done := startCall(ctx, "catalog-repository", "GetPrice")
	span.SetAttributes(attribute.String("item_id", itemID))
	defer done(&err)

	var price int64
	err = r.db.GetContext(ctx, &price, `SELECT price FROM catalog_items WHERE id = $1 AND active`, itemID)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrItemNotFound
		return 0, err
	}
	if err != nil {
		err = fmt.Errorf("failed to get price: %w", err)
		return 0, err
	}
	if price <= 0 {
		err = pkgerrors.ErrItemNotFound
		return 0, err
	}
	return price, nil
}
