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
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPostgresAccountRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccountRepository(db)
	ctx := context.Background()

	t.Run("NilAccount", func(t *testing.T) {
		err := repo.Create(ctx, nil)
		assert.ErrorIs(t, err, pkgerrors.ErrNilAccount)
	})

	t.Run("MissingUsername", func(t *testing.T) {
		err := repo.Create(ctx, &models.Account{PasswordHash: "hash"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidPayload)
	})

	t.Run("Success", func(t *testing.T) {
		account := &models.Account{Username: "alice", PasswordHash: "hash"}
		createdAt := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (username, password_hash, balance, status, role) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`)).
			WithArgs("alice", "hash", int64(0), "active", "user").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", createdAt))

		err := repo.Create(ctx, account)
		assert.NoError(t, err)
		assert.Equal(t, "a-1", account.ID)
		assert.Equal(t, models.AccountActive, account.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UsernameExists", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts`)).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &models.Account{Username: "alice", PasswordHash: "hash"})
		assert.ErrorIs(t, err, pkgerrors.ErrUsernameExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts`)).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(ctx, &models.Account{Username: "bob", PasswordHash: "hash"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAccountRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccountRepository(db)
	ctx := context.Background()
	columns := []string{"id", "username", "password_hash", "balance", "status", "role", "created_at"}

	t.Run("Success", func(t *testing.T) {
		createdAt := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password_hash, balance, status, role, created_at FROM accounts WHERE id = $1`)).
			WithArgs("a-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("a-1", "alice", "hash", int64(50000), "active", "user", createdAt))

		account, err := repo.GetByID(ctx, "a-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), account.Balance)
		assert.False(t, account.IsLocked())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username`)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		account, err := repo.GetByID(ctx, "missing")
		assert.Nil(t, account)
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAccountRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccountRepository(db)
	ctx := context.Background()

	t.Run("EmptyUsername", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidPayload)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE username = $1`)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAccountRepository_GetBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccountRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM accounts WHERE id = $1`)).
			WithArgs("a-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(5900)))

		balance, err := repo.GetBalance(ctx, "a-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(5900), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM accounts`)).
			WithArgs("a-1").
			WillReturnError(fmt.Errorf("database error"))

		balance, err := repo.GetBalance(ctx, "a-1")
		assert.Equal(t, int64(0), balance)
		assert.Contains(t, err.Error(), "failed to get balance")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
