package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/ShopLedgerService/internal/models"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresOrderRepository struct {
	db *sqlx.DB
}

func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) DebitAndCreate(ctx context.Context, order *models.Order) (_ int64, err error) {
	ctx, span, done := startCall(ctx, "order-repository", "DebitAndCreate")
	defer done(&err)

	if order == nil {
		err = pkgerrors.ErrNilOrder
		return 0, err
	}
	if order.Quantity <= 0 || order.UnitPrice <= 0 {
		err = fmt.Errorf("%w: quantity and unit price must be positive", pkgerrors.ErrInvalidPayload)
		return 0, err
	}
	if order.AmountCharged < 0 || order.AmountCharged > order.UnitPrice*int64(order.Quantity) {
		err = fmt.Errorf("%w: amount charged out of range", pkgerrors.ErrInvalidPayload)
		return 0, err
	}
	if order.Status == "" {
		order.Status = models.OrderCompleted
	}

	span.SetAttributes(
		attribute.String("user_id", order.UserID),
		attribute.String("item_id", order.ItemID),
		attribute.Int64("amount_charged", order.AmountCharged),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return 0, err
	}

	var newBalance int64
	debit := `UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND status = 'active' AND balance >= $1 RETURNING balance`
	err = tx.QueryRowxContext(ctx, debit, order.AmountCharged, order.UserID).Scan(&newBalance)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = r.classifyRejectedDebit(ctx, tx, order.UserID)
		return 0, rollback(tx, err)
	}
	if err != nil {
		err = rollback(tx, fmt.Errorf("failed to debit balance: %w", err))
		return 0, err
	}

	insert := `INSERT INTO orders (user_id, item_id, quantity, unit_price, discount, amount_charged, coupon, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, insert,
		order.UserID,
		order.ItemID,
		order.Quantity,
		order.UnitPrice,
		order.Discount,
		order.AmountCharged,
		order.Coupon,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		err = rollback(tx, fmt.Errorf("failed to create order: %w", err))
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("%w: failed to commit transaction: %w", pkgerrors.ErrCommitOutcomeUnknown, err)
		return 0, err
	}

	slog.Info("order created", "method", "DebitAndCreate", "order_id", order.ID, "user_id", order.UserID, "amount_charged", order.AmountCharged, "new_balance", newBalance)
	return newBalance, nil
}

// classifyRejectedDebit explains why the conditional debit matched no row.
func (r *PostgresOrderRepository) classifyRejectedDebit(ctx context.Context, tx *sqlx.Tx, userID string) error {
	var state struct {
		Status  models.AccountStatus `db:"status"`
		Balance int64                `db:"balance"`
	}
	err := tx.GetContext(ctx, &state, `SELECT status, balance FROM accounts WHERE id = $1`, userID)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return pkgerrors.ErrProfileNotFound
	case err != nil:
		return fmt.Errorf("failed to inspect account: %w", err)
	case state.Status == models.AccountLocked:
		return pkgerrors.ErrAccountLocked
	default:
		return pkgerrors.ErrInsufficientBalance
	}
}

func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string, limit int) (_ []models.Order, err error) {
	ctx, _, done := startCall(ctx, "order-repository", "ListOrdersByUser")
	defer done(&err)

	if limit <= 0 {
		limit = 20
	}

	orders := []models.Order{}
	query := `SELECT id, user_id, item_id, quantity, unit_price, discount, amount_charged, coupon, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err = r.db.SelectContext(ctx, &orders, query, userID, limit); err != nil {
		err = fmt.Errorf("failed to list orders: %w", err)
		return nil, err
	}
	return orders, nil
}

// rollback aborts tx and folds a rollback failure into the original error.
func rollback(tx *sqlx.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		slog.Error("rollback failed", "error", rbErr)
		return fmt.Errorf("rollback failed: %v; original error: %w", rbErr, err)
	}
	return err
}
