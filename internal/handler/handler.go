package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/models"
	service "github.com/honeynil/ShopLedgerService/internal/services"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	auth     service.AuthService
	purchase service.PurchaseService
	topup    service.TopupService
	validate *validator.Validate
}

func NewHandler(authSvc service.AuthService, purchaseSvc service.PurchaseService, topupSvc service.TopupService) *Handler {
	return &Handler{
		auth:     authSvc,
		purchase: purchaseSvc,
		topup:    topupSvc,
		validate: newValidator(),
	}
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		slog.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	h.writeJSON(w, status, errorResponse{OK: false, Message: message})
}

// errorStatus maps a service error to its HTTP status and the message the
// client may see. Anything unrecognised is reported as a bare 500.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidPayload),
		errors.Is(err, pkgerrors.ErrInsufficientBalance),
		errors.Is(err, pkgerrors.ErrInvalidSignature),
		errors.Is(err, pkgerrors.ErrInvalidProviderAmount):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, pkgerrors.ErrUnauthorized),
		errors.Is(err, pkgerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, pkgerrors.ErrAccountLocked):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, pkgerrors.ErrItemNotFound),
		errors.Is(err, pkgerrors.ErrProfileNotFound),
		errors.Is(err, pkgerrors.ErrTopupNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, pkgerrors.ErrRequestAlreadyProcessed),
		errors.Is(err, pkgerrors.ErrUsernameExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, pkgerrors.ErrProviderRejected):
		var perr *pkgerrors.ProviderError
		if errors.As(err, &perr) && perr.Message != "" {
			return http.StatusBadGateway, perr.Message
		}
		return http.StatusBadGateway, "payment provider rejected the request"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", pkgerrors.ErrInvalidPayload)
	}
	return h.validateRequest(dst)
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/purchase", h.Purchase).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	r.HandleFunc("/balance", h.GetBalance).Methods(http.MethodGet)
	r.HandleFunc("/topup/card", h.SubmitCard).Methods(http.MethodPost)
	r.HandleFunc("/topup/momo/create", h.CreateMomoPayment).Methods(http.MethodPost)
	r.HandleFunc("/topup/history", h.ListTopups).Methods(http.MethodGet)
}

// RegisterProviderRoutes mounts the unauthenticated notification endpoints
// the payment providers call back into.
func (h *Handler) RegisterProviderRoutes(r *mux.Router) {
	r.HandleFunc("/topup/card/callback", h.CardCallback).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/topup/momo/ipn", h.MomoIPN).Methods(http.MethodPost)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type purchaseResponse struct {
	OK bool `json:"ok"`
	*models.Receipt
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
		return
	}

	var req purchaseRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	receipt, err := h.purchase.Purchase(r.Context(), userID, service.PurchaseRequest{
		ItemID:         req.ItemID,
		Quantity:       req.Quantity,
		Coupon:         req.Coupon,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, purchaseResponse{OK: true, Receipt: receipt})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
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

	orders, err := h.purchase.ListOrders(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
		return
	}

	balance, err := h.purchase.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", pkgerrors.ErrInvalidPayload)
	}
	return limit, nil
}
