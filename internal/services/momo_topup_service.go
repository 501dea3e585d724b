package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type MomoPayment struct {
	OrderID   string
	RequestID string
	PayURL    string
	Deeplink  string
	QRData    string
}

func (s *topupService) CreateMomoPayment(ctx context.Context, userID string, amount int64) (*MomoPayment, error) {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "CreateMomoPayment")
	defer span.End()

	if amount < s.cfg.MomoMinAmount || amount > s.cfg.MomoMaxAmount {
		return nil, fmt.Errorf("%w: amount must be between %d and %d", pkgerrors.ErrInvalidPayload, s.cfg.MomoMinAmount, s.cfg.MomoMaxAmount)
	}
	if err := s.checkAccount(ctx, userID); err != nil {
		spanError(span, err, "account check failed")
		return nil, err
	}

	topup := &models.Topup{
		ID:        uuid.NewString(),
		UserID:    userID,
		Provider:  models.ProviderMomo,
		Method:    "captureWallet",
		Status:    models.TopupPending,
		FaceValue: amount,
	}
	if err := s.topupRepo.Create(ctx, topup); err != nil {
		spanError(span, err, "create topup failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("topup_id", topup.ID), attribute.Int64("amount", amount))

	requestID := uuid.NewString()
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	resp, err := s.wallet.Create(callCtx, momo.CreateRequest{
		OrderID:   topup.ID,
		RequestID: requestID,
		Amount:    amount,
		OrderInfo: "Nap " + strconv.FormatInt(amount, 10) + " vao tai khoan",
	})
	if err != nil {
		spanError(span, err, "momo create failed")
		var perr *pkgerrors.ProviderError
		if resp != nil && stderrors.As(err, &perr) {
			note := perr.Message
			if note == "" {
				note = "momo rejected: code " + perr.Code
			}
			if failErr := s.fail(ctx, topup, note, resp.Raw); failErr != nil {
				return nil, failErr
			}
			return nil, perr
		}
		return nil, s.providerCallFailed(ctx, topup, err)
	}

	if err := s.topupRepo.RecordProgress(ctx, topup.ID, requestID, "awaiting payment", resp.Raw); err != nil {
		slog.Error("failed to record momo response", "topup_id", topup.ID, "error", err)
	}
	slog.Info("momo payment created", "topup_id", topup.ID, "user_id", userID, "amount", amount)
	return &MomoPayment{
		OrderID:   topup.ID,
		RequestID: requestID,
		PayURL:    resp.PayURL,
		Deeplink:  resp.Deeplink,
		QRData:    resp.QRCodeURL,
	}, nil
}

// HandleMomoIPN settles a wallet payment from a signed notification. Nothing
// is read or written before the signature checks out.
func (s *topupService) HandleMomoIPN(ctx context.Context, ipn momo.IPN) error {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "HandleMomoIPN")
	defer span.End()

	if !s.wallet.VerifyIPN(ipn) {
		observability.RecordRejectedNotification("momo", "signature")
		slog.Warn("momo ipn signature mismatch", "order_id", ipn.OrderID, "partner_code", ipn.PartnerCode)
		return pkgerrors.ErrInvalidSignature
	}
	span.SetAttributes(attribute.String("topup_id", ipn.OrderID))

	topup, err := s.lookup(ctx, ipn.OrderID, models.ProviderMomo)
	if err != nil {
		if stderrors.Is(err, pkgerrors.ErrTopupNotFound) {
			observability.RecordRejectedNotification("momo", "unknown_id")
		}
		spanError(span, err, "topup lookup failed")
		return err
	}
	raw := rawJSON(ipn)
	if topup.Status == models.TopupFailed && ipn.ResultCode.String() == momo.ResultSuccess {
		return s.recordPaidAfterClose(ctx, topup, ipn, raw)
	}
	if topup.Status.IsTerminal() {
		slog.Info("momo ipn for settled topup", "topup_id", topup.ID, "status", topup.Status)
		return nil
	}

	switch ipn.ResultCode.String() {
	case momo.ResultSuccess:
		amount, ok := parseProviderAmount(ipn.Amount.String())
		if !ok {
			slog.Warn("momo ipn with invalid amount", "topup_id", topup.ID, "amount", ipn.Amount.String())
			return s.fail(ctx, topup, noteInvalidAmount, raw)
		}
		if amount != topup.FaceValue {
			slog.Warn("momo paid amount differs from order", "topup_id", topup.ID, "ordered", topup.FaceValue, "paid", amount)
		}
		if err := s.settle(ctx, topup, amount, ipn.TransID.String(), raw); err != nil {
			spanError(span, err, "settle failed")
			return err
		}
		return nil
	case momo.ResultAuthorized:
		return s.topupRepo.RecordProgress(ctx, topup.ID, ipn.TransID.String(), "authorized, awaiting capture", raw)
	default:
		note := ipn.Message
		if note == "" {
			note = "momo payment failed: code " + ipn.ResultCode.String()
		}
		return s.fail(ctx, topup, note, raw)
	}
}

// recordPaidAfterClose keeps a confirmed payment for an order that already
// failed, usually by expiry. The record stays failed and the payment is left
// on it for an operator to reconcile.
func (s *topupService) recordPaidAfterClose(ctx context.Context, topup *models.Topup, ipn momo.IPN, raw []byte) error {
	amount, _ := parseProviderAmount(ipn.Amount.String())
	observability.RecordRejectedNotification("momo", "paid_after_close")
	observability.WithContext(ctx, "topup_id", topup.ID, "user_id", topup.UserID).
		Error("momo payment confirmed for a closed order, not credited",
			"trans_id", ipn.TransID.String(), "amount", amount, "note", topup.Note)

	note := notePaidAfterClose
	if topup.Note != "" {
		note = topup.Note + "; " + notePaidAfterClose
	}
	if err := s.topupRepo.RecordLatePayment(ctx, topup.ID, ipn.TransID.String(), note, raw); err != nil {
		slog.Error("failed to record late payment", "topup_id", topup.ID, "error", err)
		return err
	}
	publish(ctx, s.publisher, models.LedgerEvent{
		Type:     models.EventTopupPaidAfterClose,
		UserID:   topup.UserID,
		TopupID:  topup.ID,
		Provider: string(topup.Provider),
		Amount:   amount,
		Note:     "momo trans " + ipn.TransID.String(),
	})
	return nil
}
