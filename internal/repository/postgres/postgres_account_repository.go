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
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

const accountColumns = `id, username, password_hash, balance, status, role, created_at`

type PostgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) (err error) {
	ctx, _, done := startCall(ctx, "account-repository", "CreateAccount")
	defer done(&err)

	if account == nil {
		err = pkgerrors.ErrNilAccount
		return err
	}
	if account.Username == "" || account.PasswordHash == "" {
		err = fmt.Errorf("%w: username and password hash are required", pkgerrors.ErrInvalidPayload)
		return err
	}
	if account.Status == "" {
		account.Status = models.AccountActive
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}

	query := `INSERT INTO accounts (username, password_hash, balance, status, role) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = r.db.QueryRowxContext(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Balance,
		account.Status,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = pkgerrors.ErrUsernameExists
			return err
		}
		slog.Error("failed to create account", "method", "Create", "username", account.Username, "error", err)
		err = fmt.Errorf("failed to create account: %w", err)
		return err
	}

	slog.Info("account created", "method", "Create", "account_id", account.ID, "username", account.Username)
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (_ *models.Account, err error) {
	ctx, span, done := startCall(ctx, "account-repository", "GetAccountByID")
	span.SetAttributes(attribute.String("account_id", id))
	defer done(&err)

	var account models.Account
	err = r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrProfileNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get account by id", "method", "GetByID", "account_id", id, "error", err)
		err = fmt.Errorf("failed to get account by id: %w", err)
		return nil, err
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (_ *models.Account, err error) {
	ctx, _, done := startCall(ctx, "account-repository", "GetAccountByUsername")
	defer done(&err)

	if username == "" {
		err = fmt.Errorf("%w: username cannot be empty", pkgerrors.ErrInvalidPayload)
		return nil, err
	}

	var account models.Account
	err = r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		err = pkgerrors.ErrProfileNotFound
		return nil, err
	case err != nil:
		err = fmt.Errorf("failed to get account by username: %w", err)
		return nil, err
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetBalance(ctx context.Context, id string) (_ int64, err error) {
	ctx, _, done := startCall(ctx, "account-repository", "GetBalance")
	defer done(&err)

	var balance int64
	err = r.db.GetContext(ctx, &balance, `SELECT balance FROM accounts WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrProfileNotFound
		return 0, err
	}
	if err != nil {
		err = fmt.Errorf("failed to get balance: %w", err)
		return 0, err
	}
	return balance, nil
}
