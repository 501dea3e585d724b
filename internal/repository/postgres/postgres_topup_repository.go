package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/ShopLedgerService/internal/models"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

const topupColumns = `id, user_id, provider, method, status, amount, face_value, serial_masked, pin_last4, provider_ref, note, credited, created_at, updated_at`

type PostgresTopupRepository struct {
	db *sqlx.DB
}

func NewPostgresTopupRepository(db *sqlx.DB) *PostgresTopupRepository {
	return &PostgresTopupRepository{db: db}
}

func (r *PostgresTopupRepository) Create(ctx context.Context, topup *models.Topup) (err error) {
	ctx, span, done := startCall(ctx, "topup-repository", "CreateTopup")
	defer done(&err)

	if topup == nil {
		err = pkgerrors.ErrNilTopup
		return err
	}
	if !topup.Provider.Valid() {
		err = pkgerrors.ErrInvalidTopupProvider
		slog.Error("invalid topup provider", "method", "Create", "provider", topup.Provider)
		return err
	}
	if topup.Status != models.TopupPending && topup.Status != models.TopupProcessing {
		err = pkgerrors.ErrInvalidTopupStatus
		slog.Error("topup must start non-terminal", "method", "Create", "status", topup.Status)
		return err
	}
	if topup.ID == "" {
		topup.ID = uuid.NewString()
	}

	span.SetAttributes(
		attribute.String("topup_id", topup.ID),
		attribute.String("user_id", topup.UserID),
		attribute.String("provider", string(topup.Provider)),
		attribute.Int64("face_value", topup.FaceValue),
	)

	query := `INSERT INTO topups (id, user_id, provider, method, status, face_value, serial_masked, pin_last4, provider_ref, note) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at`
	err = r.db.QueryRowxContext(ctx, query,
		topup.ID,
		topup.UserID,
		topup.Provider,
		topup.Method,
		topup.Status,
		topup.FaceValue,
		topup.SerialMasked,
		topup.PinLast4,
		topup.ProviderRef,
		topup.Note,
	).Scan(&topup.CreatedAt, &topup.UpdatedAt)
	if err != nil {
		slog.Error("failed to create topup", "method", "Create", "topup_id", topup.ID, "user_id", topup.UserID, "error", err)
		err = fmt.Errorf("failed to create topup: %w", err)
		return err
	}

	slog.Info("topup created", "method", "Create", "topup_id", topup.ID, "user_id", topup.UserID, "provider", topup.Provider, "status", topup.Status)
	return nil
}

func (r *PostgresTopupRepository) GetByID(ctx context.Context, id string) (_ *models.Topup, err error) {
	ctx, span, done := startCall(ctx, "topup-repository", "GetTopupByID")
	span.SetAttributes(attribute.String("topup_id", id))
	defer done(&err)

	var topup models.Topup
	err = r.db.GetContext(ctx, &topup, `SELECT `+topupColumns+` FROM topups WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrTopupNotFound
		return nil, err
	}
	if err != nil {
		err = fmt.Errorf("failed to get topup by id: %w", err)
		return nil, err
	}
	return &topup, nil
}

func (r *PostgresTopupRepository) ListByUser(ctx context.Context, userID string, status models.TopupStatus, limit int) (_ []models.Topup, err error) {
	ctx, _, done := startCall(ctx, "topup-repository", "ListTopupsByUser")
	defer done(&err)

	topups := []models.Topup{}
	query := `SELECT ` + topupColumns + ` FROM topups WHERE user_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at DESC LIMIT $3`
	if err = r.db.SelectContext(ctx, &topups, query, userID, string(status), limit); err != nil {
		err = fmt.Errorf("failed to list topups: %w", err)
		return nil, err
	}
	return topups, nil
}

func (r *PostgresTopupRepository) RecordProgress(ctx context.Context, id, providerRef, note string, raw []byte) (err error) {
	ctx, _, done := startCall(ctx, "topup-repository", "RecordProgress")
	defer done(&err)

	query := `UPDATE topups SET provider_ref = COALESCE(NULLIF($2, ''), provider_ref), note = COALESCE(NULLIF($3, ''), note), raw = COALESCE(NULLIF($4, '')::jsonb, raw), updated_at = NOW() WHERE id = $1 AND status IN ('pending', 'processing')`
	if _, err = r.db.ExecContext(ctx, query, id, providerRef, note, jsonArg(raw)); err != nil {
		err = fmt.Errorf("failed to record topup progress: %w", err)
		return err
	}
	return nil
}

func (r *PostgresTopupRepository) RecordLatePayment(ctx context.Context, id, providerRef, note string, raw []byte) (err error) {
	ctx, _, done := startCall(ctx, "topup-repository", "RecordLatePayment")
	defer done(&err)

	query := `UPDATE topups SET provider_ref = COALESCE(NULLIF($2, ''), provider_ref), note = $3, raw = COALESCE(NULLIF($4, '')::jsonb, raw), updated_at = NOW() WHERE id = $1 AND status = 'failed'`
	if _, err = r.db.ExecContext(ctx, query, id, providerRef, note, jsonArg(raw)); err != nil {
		err = fmt.Errorf("failed to record late payment: %w", err)
		return err
	}
	return nil
}

func (r *PostgresTopupRepository) MarkFailed(ctx context.Context, id, note string, raw []byte) (_ bool, err error) {
	ctx, _, done := startCall(ctx, "topup-repository", "MarkFailed")
	defer done(&err)

	query := `UPDATE topups SET status = 'failed', note = $2, raw = COALESCE(NULLIF($3, '')::jsonb, raw), updated_at = NOW() WHERE id = $1 AND status IN ('pending', 'processing')`
	res, err := r.db.ExecContext(ctx, query, id, note, jsonArg(raw))
	if err != nil {
		err = fmt.Errorf("failed to mark topup failed: %w", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("failed to mark topup failed: %w", err)
		return false, err
	}
	if n > 0 {
		slog.Info("topup failed", "method", "MarkFailed", "topup_id", id, "note", note)
	}
	return n > 0, nil
}

func (r *PostgresTopupRepository) CompleteAndCredit(ctx context.Context, id string, amount int64, providerRef string, raw []byte) (_ models.CreditResult, err error) {
	ctx, span, done := startCall(ctx, "topup-repository", "CompleteAndCredit")
	span.SetAttributes(attribute.String("topup_id", id), attribute.Int64("amount", amount))
	defer done(&err)

	var result models.CreditResult
	if amount <= 0 {
		err = pkgerrors.ErrInvalidProviderAmount
		return result, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return result, err
	}

	// The status guard makes the success transition, and so the credit, happen once.
	complete := `UPDATE topups SET status = 'success', amount = $2, credited = TRUE, provider_ref = COALESCE(NULLIF($3, ''), provider_ref), raw = COALESCE(NULLIF($4, '')::jsonb, raw), updated_at = NOW() WHERE id = $1 AND status IN ('pending', 'processing') RETURNING user_id`
	err = tx.QueryRowxContext(ctx, complete, id, amount, providerRef, jsonArg(raw)).Scan(&result.UserID)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = rollback(tx, nil)
		return result, err
	}
	if err != nil {
		err = rollback(tx, fmt.Errorf("failed to complete topup: %w", err))
		return result, err
	}
	result.Applied = true
	result.Amount = amount

	credit := `UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance`
	err = tx.QueryRowxContext(ctx, credit, amount, result.UserID).Scan(&result.NewBalance)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		note := "credit failed: account not found"
		if _, err = tx.ExecContext(ctx, `UPDATE topups SET credited = FALSE, note = $2 WHERE id = $1`, id, note); err != nil {
			err = rollback(tx, fmt.Errorf("failed to record credit failure: %w", err))
			return models.CreditResult{}, err
		}
		slog.Error("topup completed without credit", "method", "CompleteAndCredit", "topup_id", id, "user_id", result.UserID, "amount", amount)
	case err != nil:
		err = rollback(tx, fmt.Errorf("failed to credit balance: %w", err))
		return models.CreditResult{}, err
	default:
		result.Credited = true
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit transaction: %w", err)
		return models.CreditResult{}, err
	}

	slog.Info("topup completed", "method", "CompleteAndCredit", "topup_id", id, "user_id", result.UserID, "amount", amount, "credited", result.Credited, "new_balance", result.NewBalance)
	return result, nil
}

func (r *PostgresTopupRepository) RetryCredit(ctx context.Context, id string) (_ models.CreditResult, err error) {
	ctx, span, done := startCall(ctx, "topup-repository", "RetryCredit")
	span.SetAttributes(attribute.String("topup_id", id))
	defer done(&err)

	var result models.CreditResult
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return result, err
	}

	claim := `UPDATE topups SET credited = TRUE, note = 'credited on retry', updated_at = NOW() WHERE id = $1 AND status = 'success' AND NOT credited AND amount > 0 RETURNING user_id, amount`
	err = tx.QueryRowxContext(ctx, claim, id).Scan(&result.UserID, &result.Amount)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = rollback(tx, nil)
		return result, err
	}
	if err != nil {
		err = rollback(tx, fmt.Errorf("failed to claim topup credit: %w", err))
		return result, err
	}

	credit := `UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance`
	err = tx.QueryRowxContext(ctx, credit, result.Amount, result.UserID).Scan(&result.NewBalance)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = rollback(tx, pkgerrors.ErrProfileNotFound)
		return models.CreditResult{}, err
	}
	if err != nil {
		err = rollback(tx, fmt.Errorf("failed to credit balance: %w", err))
		return models.CreditResult{}, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit transaction: %w", err)
		return models.CreditResult{}, err
	}

	result.Applied = true
	result.Credited = true
	slog.Info("topup credit retried", "method", "RetryCredit", "topup_id", id, "user_id", result.UserID, "amount", result.Amount)
	return result, nil
}

func (r *PostgresTopupRepository) ExpireStale(ctx context.Context, provider models.TopupProvider, olderThan time.Time) (_ int64, err error) {
	ctx, _, done := startCall(ctx, "topup-repository", "ExpireStale")
	defer done(&err)

	query := `UPDATE topups SET status = 'failed', note = 'expired', updated_at = NOW() WHERE provider = $1 AND status = 'pending' AND created_at < $2`
	res, err := r.db.ExecContext(ctx, query, provider, olderThan)
	if err != nil {
		err = fmt.Errorf("failed to expire topups: %w", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("failed to expire topups: %w", err)
		return 0, err
	}
	return n, nil
}
