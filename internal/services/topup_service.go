package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/kafka"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
	"github.com/honeynil/ShopLedgerService/internal/repository"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

//go:generate mockgen -source=topup_service.go -destination=mocks/mock_topup_service.go -package=mocks

type TopupService interface {
	SubmitCard(ctx context.Context, userID string, req CardRequest) (*CardSubmission, error)
	HandleCardCallback(ctx context.Context, params map[string]string) error
	CreateMomoPayment(ctx context.Context, userID string, amount int64) (*MomoPayment, error)
	HandleMomoIPN(ctx context.Context, ipn momo.IPN) error
	ListTopups(ctx context.Context, userID, status string, limit int) ([]models.Topup, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type TopupConfig struct {
	CardMinAmount       int64
	MomoMinAmount       int64
	MomoMaxAmount       int64
	CardCallbackURL     string
	RequireCallbackSign bool
	ProviderTimeout     time.Duration
	MomoOrderTTL        time.Duration
}

func (c TopupConfig) withDefaults() TopupConfig {
	if c.CardMinAmount <= 0 {
		c.CardMinAmount = 10000
	}
	if c.MomoMinAmount <= 0 {
		c.MomoMinAmount = 10000
	}
	if c.MomoMaxAmount <= 0 {
		c.MomoMaxAmount = 50_000_000
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 15 * time.Second
	}
	if c.MomoOrderTTL <= 0 {
		c.MomoOrderTTL = 2 * time.Hour
	}
	return c
}

type topupService struct {
	accountRepo repository.AccountRepository
	topupRepo   repository.TopupRepository
	cards       CardProvider
	wallet      WalletProvider
	publisher   kafka.EventPublisher
	cfg         TopupConfig
	now         func() time.Time
}

func NewTopupService(
	accountRepo repository.AccountRepository,
	topupRepo repository.TopupRepository,
	cards CardProvider,
	wallet WalletProvider,
	publisher kafka.EventPublisher,
	cfg TopupConfig,
) *topupService {
	return &topupService{
		accountRepo: accountRepo,
		topupRepo:   topupRepo,
		cards:       cards,
		wallet:      wallet,
		publisher:   publisher,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
}

const (
	defaultTopupLimit = 20

	noteInvalidAmount  = "invalid provider amount"
	notePaidAfterClose = "paid after close"
)

func (s *topupService) ListTopups(ctx context.Context, userID, status string, limit int) ([]models.Topup, error) {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "ListTopups")
	defer span.End()

	if userID == "" {
		return nil, pkgerrors.ErrUnauthorized
	}
	st := models.TopupStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", pkgerrors.ErrInvalidPayload, status)
	}

	topups, err := s.topupRepo.ListByUser(ctx, userID, st, clampLimit(limit, defaultTopupLimit))
	if err != nil {
		spanError(span, err, "list topups failed")
		return nil, err
	}
	return topups, nil
}

// checkAccount loads the account a top-up would credit and rejects locked
// accounts before anything is recorded.
func (s *topupService) checkAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.ErrUnauthorized
	}
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if account.IsLocked() {
		return pkgerrors.ErrAccountLocked
	}
	return nil
}

// settle applies a provider-confirmed amount. An error means nothing changed
// and the record is still open for the provider's retry.
func (s *topupService) settle(ctx context.Context, topup *models.Topup, amount int64, providerRef string, raw []byte) error {
	result, err := s.topupRepo.CompleteAndCredit(ctx, topup.ID, amount, providerRef, raw)
	if err != nil {
		slog.Error("failed to complete topup", "topup_id", topup.ID, "provider", topup.Provider, "error", err)
		return err
	}
	if !result.Applied {
		slog.Info("topup already settled", "topup_id", topup.ID)
		return nil
	}

	provider := string(topup.Provider)
	observability.RecordTopupOutcome(provider, string(models.TopupSuccess))
	if !result.Credited {
		observability.RecordCreditFailure(provider)
		observability.WithContext(ctx, "topup_id", topup.ID, "user_id", result.UserID).
			Error("topup succeeded but balance was not credited", "amount", amount)
		publish(ctx, s.publisher, models.LedgerEvent{
			Type:     models.EventTopupCreditFailed,
			UserID:   result.UserID,
			TopupID:  topup.ID,
			Provider: provider,
			Amount:   amount,
			Note:     "credit failed: account not found",
		})
		return nil
	}

	publish(ctx, s.publisher, models.LedgerEvent{
		Type:     models.EventTopupSucceeded,
		UserID:   result.UserID,
		TopupID:  topup.ID,
		Provider: provider,
		Amount:   amount,
		Balance:  result.NewBalance,
	})
	return nil
}

// fail moves topup to failed. It is a no-op when the record is already
// terminal.
func (s *topupService) fail(ctx context.Context, topup *models.Topup, note string, raw []byte) error {
	changed, err := s.topupRepo.MarkFailed(ctx, topup.ID, note, raw)
	if err != nil {
		slog.Error("failed to mark topup failed", "topup_id", topup.ID, "error", err)
		return err
	}
	if !changed {
		return nil
	}
	observability.RecordTopupOutcome(string(topup.Provider), string(models.TopupFailed))
	publish(ctx, s.publisher, models.LedgerEvent{
		Type:     models.EventTopupFailed,
		UserID:   topup.UserID,
		TopupID:  topup.ID,
		Provider: string(topup.Provider),
		Note:     note,
	})
	return nil
}

// lookup resolves a provider-supplied record id. Ids that are not uuids
// cannot exist and are reported as not found without a query.
func (s *topupService) lookup(ctx context.Context, id string, provider models.TopupProvider) (*models.Topup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.ErrTopupNotFound
	}
	topup, err := s.topupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if topup.Provider != provider {
		return nil, pkgerrors.ErrTopupNotFound
	}
	return topup, nil
}

func (s *topupService) SweepExpired(ctx context.Context) (int64, error) {
	tracer := otel.Tracer("topup-service")
	ctx, span := tracer.Start(ctx, "SweepExpired")
	defer span.End()

	cutoff := s.now().Add(-s.cfg.MomoOrderTTL)
	n, err := s.topupRepo.ExpireStale(ctx, models.ProviderMomo, cutoff)
	if err != nil {
		spanError(span, err, "expire failed")
		return 0, err
	}
	if n > 0 {
		observability.TopupOutcomes.WithLabelValues(string(models.ProviderMomo), string(models.TopupFailed)).Add(float64(n))
		slog.Info("expired stale momo orders", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func RunSweeper(ctx context.Context, svc TopupService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepExpired(ctx); err != nil {
				slog.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

// parseProviderAmount accepts a positive whole amount written as a decimal
// ("50000", "50000.00"). Anything else is rejected.
func parseProviderAmount(s string) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() || !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, false
	}
	return d.IntPart(), true
}

func rawJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
