package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/coupon"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/kafka"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/redis"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/repository"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MinQuantity = 1
	MaxQuantity = 99

	idempotencyTTL  = 24 * time.Hour
	defaultPriceTTL = 5 * time.Minute
	defaultOrderLim = 20
	maxListLimit    = 100
)

//go:generate mockgen -source=purchase_service.go -destination=mocks/mock_purchase_service.go -package=mocks

type PurchaseService interface {
	Purchase(ctx context.Context, userID string, req PurchaseRequest) (*models.Receipt, error)
	ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
}

type PurchaseRequest struct {
	ItemID   string
	Quantity int
	Coupon   *string
	// IdempotencyKey, when set, makes a retried request fail with
	// ErrRequestAlreadyProcessed instead of debiting twice.
	IdempotencyKey string
}

type purchaseService struct {
	accountRepo repository.AccountRepository
	catalogRepo repository.CatalogRepository
	orderRepo   repository.OrderRepository
	redisClient redis.RedisClient
	publisher   kafka.EventPublisher
	priceTTL    time.Duration
}

func NewPurchaseService(
	accountRepo repository.AccountRepository,
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	redisClient redis.RedisClient,
	publisher kafka.EventPublisher,
	priceTTL time.Duration,
) *purchaseService {
	if priceTTL <= 0 {
		priceTTL = defaultPriceTTL
	}
	return &purchaseService{
		accountRepo: accountRepo,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		redisClient: redisClient,
		publisher:   publisher,
		priceTTL:    priceTTL,
	}
}

func (s *purchaseService) Purchase(ctx context.Context, userID string, req PurchaseRequest) (_ *models.Receipt, err error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "Purchase")
	defer span.End()
	defer func() {
		observability.RecordPurchase(purchaseResult(err))
	}()

	if userID == "" {
		return nil, pkgerrors.ErrUnauthorized
	}
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		return nil, fmt.Errorf("%w: itemId is required", pkgerrors.ErrInvalidPayload)
	}
	if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be between %d and %d", pkgerrors.ErrInvalidPayload, MinQuantity, MaxQuantity)
	}
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("item_id", itemID),
		attribute.Int("quantity", req.Quantity),
	)

	if req.IdempotencyKey != "" {
		requestKey := fmt.Sprintf("purchase:%s:%s", userID, req.IdempotencyKey)
		claimed, claimErr := s.redisClient.SetNX(ctx, requestKey, "pending", idempotencyTTL)
		if claimErr != nil {
			spanError(span, claimErr, "idempotency claim failed")
			slog.Error("failed to claim request key", "request_key", requestKey, "error", claimErr)
			return nil, fmt.Errorf("%w: failed to claim request key", pkgerrors.ErrInternal)
		}
		if !claimed {
			slog.Warn("request already processed", "request_key", requestKey, "user_id", userID)
			return nil, pkgerrors.ErrRequestAlreadyProcessed
		}
		// Nothing was debited on the failure paths, so the key can be reused.
		// A failed commit may still have debited; the key is kept.
		defer func() {
			if err == nil {
				return
			}
			if stderrors.Is(err, pkgerrors.ErrCommitOutcomeUnknown) {
				slog.Warn("keeping request key after unknown commit outcome", "request_key", requestKey, "user_id", userID)
				return
			}
			if delErr := s.redisClient.Del(context.WithoutCancel(ctx), requestKey); delErr != nil {
				slog.Error("failed to release request key", "request_key", requestKey, "error", delErr)
			}
		}()
	}

	price, err := s.unitPrice(ctx, itemID)
	if err != nil {
		spanError(span, err, "price lookup failed")
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		spanError(span, err, "account lookup failed")
		return nil, err
	}
	if account.IsLocked() {
		slog.Warn("purchase on locked account", "user_id", userID)
		return nil, pkgerrors.ErrAccountLocked
	}

	subtotal := price * int64(req.Quantity)
	var code string
	if req.Coupon != nil {
		code = *req.Coupon
	}
	discount := coupon.Evaluate(subtotal, code)
	payable := subtotal - discount.Discount

	if account.Balance < payable {
		slog.Info("insufficient balance", "user_id", userID, "balance", account.Balance, "payable", payable)
		return nil, pkgerrors.ErrInsufficientBalance
	}

	var applied *string
	if discount.AppliedCode != "" {
		applied = &discount.AppliedCode
	}
	order := &models.Order{
		UserID:        userID,
		ItemID:        itemID,
		Quantity:      req.Quantity,
		UnitPrice:     price,
		Discount:      discount.Discount,
		AmountCharged: payable,
		Coupon:        applied,
		Status:        models.OrderCompleted,
	}
	newBalance, err := s.orderRepo.DebitAndCreate(ctx, order)
	if err != nil {
		spanError(span, err, "debit failed")
		slog.Error("purchase debit failed", "user_id", userID, "item_id", itemID, "payable", payable, "error", err)
		return nil, err
	}

	publish(ctx, s.publisher, models.LedgerEvent{
		Type:    models.EventPurchaseCompleted,
		UserID:  userID,
		OrderID: order.ID,
		Amount:  -payable,
		Balance: newBalance,
	})

	slog.Info("purchase completed", "user_id", userID, "order_id", order.ID, "item_id", itemID, "payable", payable, "new_balance", newBalance)
	return &models.Receipt{
		OrderID:       order.ID,
		ItemID:        itemID,
		Quantity:      req.Quantity,
		Subtotal:      subtotal,
		Discount:      discount.Discount,
		Payable:       payable,
		AppliedCoupon: applied,
		NewBalance:    newBalance,
	}, nil
}

// unitPrice reads through the Redis price cache. Cache errors fall back to
// the catalog.
func (s *purchaseService) unitPrice(ctx context.Context, itemID string) (int64, error) {
	cacheKey := fmt.Sprintf("catalog:%s:price", itemID)
	cached, err := s.redisClient.Get(ctx, cacheKey)
	if err == nil {
		if price, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil && price > 0 {
			return price, nil
		}
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Warn("price cache read failed", "item_id", itemID, "error", err)
	}

	price, err := s.catalogRepo.GetPrice(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if err := s.redisClient.Set(ctx, cacheKey, strconv.FormatInt(price, 10), s.priceTTL); err != nil {
		slog.Warn("price cache write failed", "item_id", itemID, "error", err)
	}
	return price, nil
}

func (s *purchaseService) ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "ListOrders")
	defer span.End()

	if userID == "" {
		return nil, pkgerrors.ErrUnauthorized
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID, clampLimit(limit, defaultOrderLim))
	if err != nil {
		spanError(span, err, "list orders failed")
		return nil, err
	}
	return orders, nil
}

func (s *purchaseService) GetBalance(ctx context.Context, userID string) (int64, error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "GetBalance")
	defer span.End()

	if userID == "" {
		return 0, pkgerrors.ErrUnauthorized
	}
	balance, err := s.accountRepo.GetBalance(ctx, userID)
	if err != nil {
		spanError(span, err, "get balance failed")
		return 0, err
	}
	return balance, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case stderrors.Is(err, pkgerrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case stderrors.Is(err, pkgerrors.ErrAccountLocked):
		return "account_locked"
	case stderrors.Is(err, pkgerrors.ErrItemNotFound):
		return "item_not_found"
	case stderrors.Is(err, pkgerrors.ErrInvalidPayload):
		return "invalid_payload"
	case stderrors.Is(err, pkgerrors.ErrRequestAlreadyProcessed):
		return "duplicate"
	default:
		return "error"
	}
}
