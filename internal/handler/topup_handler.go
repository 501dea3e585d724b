package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
	service "github.com/honeynil/ShopLedgerService/internal/services"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

type cardTopupResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	TopupID     string `json:"topupId"`
	CallbackURL string `json:"callbackUrl"`
}

type momoCreateResponse struct {
	OK        bool   `json:"ok"`
	OrderID   string `json:"orderId"`
	RequestID string `json:"requestId"`
	PayURL    string `json:"payUrl"`
	Deeplink  string `json:"deeplink"`
	QRData    string `json:"qrData"`
}

func (h *Handler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
		return
	}

	var req cardTopupRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.topup.SubmitCard(r.Context(), userID, service.CardRequest{
		Telco:  req.Telco,
		Amount: req.Amount,
		Serial: req.Serial,
		Pin:    req.Pin,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cardTopupResponse{
		OK:          true,
		Message:     sub.Message,
		TopupID:     sub.TopupID,
		CallbackURL: sub.CallbackURL,
	})
}

func (h *Handler) CreateMomoPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
		return
	}

	var req momoCreateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := h.topup.CreateMomoPayment(r.Context(), userID, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, momoCreateResponse{
		OK:        true,
		OrderID:   payment.OrderID,
		RequestID: payment.RequestID,
		PayURL:    payment.PayURL,
		Deeplink:  payment.Deeplink,
		QRData:    payment.QRData,
	})
}

func (h *Handler) ListTopups(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	topups, err := h.topup.ListTopups(r.Context(), userID, r.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "topups": topups})
}

// CardCallback acknowledges with a plain "ok" so the aggregator stops
// retrying. Storage failures answer 500 to make it try again later.
func (h *Handler) CardCallback(w http.ResponseWriter, r *http.Request) {
	params, err := callbackParams(w, r)
	if err != nil {
		slog.Warn("unreadable card callback", "error", err)
		writeText(w, http.StatusBadRequest, "bad request")
		return
	}

	err = h.topup.HandleCardCallback(r.Context(), params)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "ok")
	case errors.Is(err, pkgerrors.ErrInvalidSignature):
		writeText(w, http.StatusBadRequest, "invalid signature")
	default:
		slog.Error("card callback failed", "error", err)
		writeText(w, http.StatusInternalServerError, "error")
	}
}

func (h *Handler) MomoIPN(w http.ResponseWriter, r *http.Request) {
	var ipn momo.IPN
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&ipn); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed IPN body", pkgerrors.ErrInvalidPayload))
		return
	}

	if err := h.topup.HandleMomoIPN(r.Context(), ipn); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// callbackParams flattens the query string, a form body and a flat JSON
// object body into one map; body values win over the query.
func callbackParams(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return params, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("decode json callback: %w", err)
		}
		for k, v := range body {
			if v == nil {
				continue
			}
			params[k] = fmt.Sprint(v)
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("parse form callback: %w", err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params, nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
