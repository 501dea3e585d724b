package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/providers/card"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var supportedTelcos = map[string]bool{
	"VIETTEL":      true,
	"VINAPHONE":    true,
	"MOBIFONE":     true,
	"VIETNAMOBILE": true,
	"ZING":         true,
	"GATE":         true,
	"VCOIN":        true,
	"GARENA":       true,
}

// The aggregator's callback shape is not fixed; these are tried in order.
var (
	callbackIDFields     = []string{"request_id", "requestId", "request", "order_id", "orderId", "trans_id_partner", "id"}
	callbackAmountFields = []string{"value", "amount", "real_value", "card_value", "declared_value"}
)

var (
	cardSuccessStatuses = map[string]bool{"1": true, "success": true, "succeeded": true, "ok": true, "completed": true, "done": true, "true": true}
	// 2 is "wrong face value"; no credit policy exists for a mismatched card.
	cardFailureStatuses = map[string]bool{"2": true, "3": true, "failed": true, "fail": true, "error": true, "wrong": true, "invalid": true, "rejected": true, "cancelled": true, "canceled": true}
)

type CardRequest struct {
	Telco  string
	Amount int64
	Serial string
	Pin    string
}

type CardSubmission struct {
	TopupID     string
	CallbackURL string
	Message     string
}

func (s *topupService) SubmitCard(ctx context.Context, userID string, req CardRequest) (*CardSubmission, error) {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "SubmitCard")
	defer span.End()

	telco := strings.ToUpper(strings.TrimSpace(req.Telco))
	serial := strings.TrimSpace(req.Serial)
	pin := strings.TrimSpace(req.Pin)
	switch {
	case !supportedTelcos[telco]:
		return nil, fmt.Errorf("%w: unsupported telco %q", pkgerrors.ErrInvalidPayload, req.Telco)
	case req.Amount < s.cfg.CardMinAmount:
		return nil, fmt.Errorf("%w: amount must be at least %d", pkgerrors.ErrInvalidPayload, s.cfg.CardMinAmount)
	case serial == "" || pin == "":
		return nil, fmt.Errorf("%w: serial and pin are required", pkgerrors.ErrInvalidPayload)
	}

	if err := s.checkAccount(ctx, userID); err != nil {
		spanError(span, err, "account check failed")
		return nil, err
	}

	topup := &models.Topup{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     models.ProviderCard,
		Method:       telco,
		Status:       models.TopupProcessing,
		FaceValue:    req.Amount,
		SerialMasked: maskSerial(serial),
		PinLast4:     lastFour(pin),
	}
	if err := s.topupRepo.Create(ctx, topup); err != nil {
		spanError(span, err, "create topup failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("topup_id", topup.ID), attribute.String("telco", telco))

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	resp, err := s.cards.Charge(callCtx, card.ChargeRequest{
		Telco:       telco,
		Code:        pin,
		Serial:      serial,
		Amount:      req.Amount,
		RequestID:   topup.ID,
		CallbackURL: s.cfg.CardCallbackURL,
	})
	if err != nil {
		spanError(span, err, "card provider call failed")
		return nil, s.providerCallFailed(ctx, topup, err)
	}

	if !resp.Accepted() {
		note := resp.Message
		if note == "" {
			note = "card rejected: status " + resp.Status.String()
		}
		if err := s.fail(ctx, topup, note, resp.Raw); err != nil {
			return nil, err
		}
		slog.Info("card rejected", "topup_id", topup.ID, "user_id", userID, "status", resp.Status.String())
		return nil, &pkgerrors.ProviderError{Provider: "card", Code: resp.Status.String(), Message: resp.Message}
	}

	if err := s.topupRepo.RecordProgress(ctx, topup.ID, resp.Reference(), resp.Message, resp.Raw); err != nil {
		slog.Error("failed to record card provider response", "topup_id", topup.ID, "error", err)
	}
	slog.Info("card submitted", "topup_id", topup.ID, "user_id", userID, "telco", telco, "face_value", req.Amount)
	return &CardSubmission{
		TopupID:     topup.ID,
		CallbackURL: s.cfg.CardCallbackURL,
		Message:     "card submitted, awaiting provider confirmation",
	}, nil
}

// providerCallFailed records why a create call did not go through. An
// unreachable provider may still have taken the request, so the record stays
// open for a late notification; an explicit rejection closes it.
func (s *topupService) providerCallFailed(ctx context.Context, topup *models.Topup, callErr error) error {
	if stderrors.Is(callErr, pkgerrors.ErrProviderUnavailable) {
		if err := s.topupRepo.RecordProgress(ctx, topup.ID, "", "provider unreachable: awaiting notification", nil); err != nil {
			slog.Error("failed to annotate topup", "topup_id", topup.ID, "error", err)
		}
		return &pkgerrors.ProviderError{
			Provider: string(topup.Provider),
			Code:     "unavailable",
			Message:  "payment provider did not respond, check top-up history later",
		}
	}

	note := callErr.Error()
	var perr *pkgerrors.ProviderError
	if stderrors.As(callErr, &perr) && perr.Message != "" {
		note = perr.Message
	}
	if err := s.fail(ctx, topup, note, nil); err != nil {
		return err
	}
	if perr != nil {
		return perr
	}
	return &pkgerrors.ProviderError{Provider: string(topup.Provider), Code: "error"}
}

func (s *topupService) HandleCardCallback(ctx context.Context, params map[string]string) error {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "HandleCardCallback")
	defer span.End()

	sign := params["callback_sign"]
	if sign != "" || s.cfg.RequireCallbackSign {
		if !s.cards.VerifyCallback(params["code"], params["serial"], sign) {
			observability.RecordRejectedNotification("card", "signature")
			slog.Warn("card callback signature mismatch", "request_id", firstNonEmpty(params, callbackIDFields))
			return pkgerrors.ErrInvalidSignature
		}
	}

	requestID := firstNonEmpty(params, callbackIDFields)
	if requestID == "" {
		observability.RecordRejectedNotification("card", "missing_id")
		slog.Warn("card callback without request id")
		return nil
	}
	span.SetAttributes(attribute.String("topup_id", requestID))

	topup, err := s.lookup(ctx, requestID, models.ProviderCard)
	if stderrors.Is(err, pkgerrors.ErrTopupNotFound) {
		observability.RecordRejectedNotification("card", "unknown_id")
		slog.Warn("card callback for unknown topup", "request_id", requestID)
		return nil
	}
	if err != nil {
		spanError(span, err, "topup lookup failed")
		return err
	}
	if topup.Status.IsTerminal() {
		slog.Info("card callback for settled topup", "topup_id", topup.ID, "status", topup.Status)
		return nil
	}

	raw := rawJSON(redactCardParams(params))
	status := strings.ToLower(strings.TrimSpace(params["status"]))
	switch {
	case cardSuccessStatuses[status]:
		amount, ok := parseProviderAmount(firstNonEmpty(params, callbackAmountFields))
		if !ok {
			slog.Warn("card callback with invalid amount", "topup_id", topup.ID)
			return s.fail(ctx, topup, noteInvalidAmount, raw)
		}
		if amount != topup.FaceValue {
			slog.Warn("card value differs from declared face value", "topup_id", topup.ID, "declared", topup.FaceValue, "value", amount)
		}
		if err := s.settle(ctx, topup, amount, params["trans_id"], raw); err != nil {
			spanError(span, err, "settle failed")
			return err
		}
		return nil
	case cardFailureStatuses[status]:
		note := params["message"]
		if note == "" {
			note = "card rejected: status " + status
		}
		return s.fail(ctx, topup, note, raw)
	default:
		return s.topupRepo.RecordProgress(ctx, topup.ID, params["trans_id"], "provider status: "+status, raw)
	}
}

func firstNonEmpty(params map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(params[k]); v != "" {
			return v
		}
	}
	return ""
}

// redactCardParams keeps the callback for audit without the card secrets.
func redactCardParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch k {
		case "code", "pin":
			out[k] = lastFour(v)
		case "serial":
			out[k] = maskSerial(v)
		default:
			out[k] = v
		}
	}
	return out
}

// maskSerial replaces all but the last four characters with '*'. Values of
// four characters or fewer are masked entirely.
func maskSerial(serial string) string {
	r := []rune(serial)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// lastFour returns the last four characters, or nothing when that would be
// the whole value.
func lastFour(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return ""
	}
	return string(r[len(r)-4:])
}
