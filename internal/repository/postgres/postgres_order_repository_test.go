package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/ShopLedgerService/internal/models"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	debitQuery       = regexp.QuoteMeta(`UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND status = 'active' AND balance >= $1 RETURNING balance`)
	insertOrderQuery = regexp.QuoteMeta(`INSERT INTO orders (user_id, item_id, quantity, unit_price, discount, amount_charged, coupon, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`)
	inspectQuery     = regexp.QuoteMeta(`SELECT status, balance FROM accounts WHERE id = $1`)
)

func newTestOrder() *models.Order {
	coupon := "HVH10"
	return &models.Order{
		UserID:        "u-1",
		ItemID:        "bio-pro",
		Quantity:      1,
		UnitPrice:     49000,
		Discount:      4900,
		AmountCharged: 44100,
		Coupon:        &coupon,
	}
}

func TestPostgresOrderRepository_DebitAndCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db)
	ctx := context.Background()

	t.Run("NilOrder", func(t *testing.T) {
		_, err := repo.DebitAndCreate(ctx, nil)
		assert.ErrorIs(t, err, pkgerrors.ErrNilOrder)
	})

	t.Run("ChargeAboveSubtotal", func(t *testing.T) {
		order := newTestOrder()
		order.AmountCharged = 50000
		_, err := repo.DebitAndCreate(ctx, order)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidPayload)
	})

	t.Run("Success", func(t *testing.T) {
		order := newTestOrder()
		createdAt := time.Now().UTC()
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).
			WithArgs(int64(44100), "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(5900)))
		mock.ExpectQuery(insertOrderQuery).
			WithArgs("u-1", "bio-pro", 1, int64(49000), int64(4900), int64(44100), "HVH10", "completed").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("o-1", createdAt))
		mock.ExpectCommit()

		balance, err := repo.DebitAndCreate(ctx, order)
		assert.NoError(t, err)
		assert.Equal(t, int64(5900), balance)
		assert.Equal(t, "o-1", order.ID)
		assert.Equal(t, models.OrderCompleted, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(inspectQuery).WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "balance"}).AddRow("active", int64(100)))
		mock.ExpectRollback()

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LockedAccount", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(inspectQuery).WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "balance"}).AddRow("locked", int64(90000)))
		mock.ExpectRollback()

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.ErrorIs(t, err, pkgerrors.ErrAccountLocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingAccount", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(inspectQuery).WithArgs("u-1").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailsRollsBackDebit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(5900)))
		mock.ExpectQuery(insertOrderQuery).WillReturnError(fmt.Errorf("database error"))
		mock.ExpectRollback()

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create order")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(5900)))
		mock.ExpectQuery(insertOrderQuery).WillReturnError(fmt.Errorf("database error"))
		mock.ExpectRollback().WillReturnError(fmt.Errorf("rollback error"))

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.Contains(t, err.Error(), "rollback failed")
		assert.Contains(t, err.Error(), "database error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CommitError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(debitQuery).WithArgs(int64(44100), "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(5900)))
		mock.ExpectQuery(insertOrderQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("o-2", time.Now()))
		mock.ExpectCommit().WillReturnError(fmt.Errorf("commit error"))

		_, err := repo.DebitAndCreate(ctx, newTestOrder())
		assert.ErrorIs(t, err, pkgerrors.ErrCommitOutcomeUnknown)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresOrderRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db)
	ctx := context.Background()
	columns := []string{"id", "user_id", "item_id", "quantity", "unit_price", "discount", "amount_charged", "coupon", "status", "created_at"}

	t.Run("DefaultLimit", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`)).
			WithArgs("u-1", 20).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("o-1", "u-1", "bio-pro", 1, int64(49000), int64(5000), int64(44000), "GIAM5K", "completed", time.Now()).
				AddRow("o-0", "u-1", "bio-lite", 2, int64(10000), int64(0), int64(20000), nil, "completed", time.Now()))

		orders, err := repo.ListByUser(ctx, "u-1", 0)
		assert.NoError(t, err)
		assert.Len(t, orders, 2)
		assert.Equal(t, "GIAM5K", *orders[0].Coupon)
		assert.Nil(t, orders[1].Coupon)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
