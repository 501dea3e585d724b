package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/redis"
	"github.com/honeynil/ShopLedgerService/internal/models"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

// memLedger is an in-process stand-in for Postgres. Every balance change
// happens under one mutex, the way the conditional UPDATE serializes on the
// account row.
type memLedger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	prices   map[string]int64
	orders   []models.Order
	topups   map[string]*models.Topup
	credits  int
}

func newMemLedger() *memLedger {
	return &memLedger{
		accounts: map[string]*models.Account{},
		prices:   map[string]int64{},
		topups:   map[string]*models.Topup{},
	}
}

func (l *memLedger) balance(id string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id].Balance
}

func (l *memLedger) topup(id string) models.Topup {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.topups[id]
}

type memAccounts struct{ *memLedger }

func (r memAccounts) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, pkgerrors.ErrProfileNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pkgerrors.ErrProfileNotFound
}

func (r memAccounts) GetBalance(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, pkgerrors.ErrProfileNotFound
	}
	return a.Balance, nil
}

type memCatalog struct{ *memLedger }

func (r memCatalog) GetPrice(_ context.Context, itemID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	price, ok := r.prices[itemID]
	if !ok {
		return 0, pkgerrors.ErrItemNotFound
	}
	return price, nil
}

type memOrders struct{ *memLedger }

func (r memOrders) DebitAndCreate(_ context.Context, o *models.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[o.UserID]
	switch {
	case !ok:
		return 0, pkgerrors.ErrProfileNotFound
	case a.IsLocked():
		return 0, pkgerrors.ErrAccountLocked
	case a.Balance < o.AmountCharged:
		return 0, pkgerrors.ErrInsufficientBalance
	}
	a.Balance -= o.AmountCharged
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	r.orders = append(r.orders, *o)
	return a.Balance, nil
}

func (r memOrders) ListByUser(_ context.Context, userID string, limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for i := len(r.orders) - 1; i >= 0 && len(out) < limit; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

type memTopups struct{ *memLedger }

func (r memTopups) Create(_ context.Context, t *models.Topup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	r.topups[t.ID] = &cp
	return nil
}

func (r memTopups) GetByID(_ context.Context, id string) (*models.Topup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok {
		return nil, pkgerrors.ErrTopupNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTopups) ListByUser(_ context.Context, userID string, status models.TopupStatus, limit int) ([]models.Topup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Topup
	for _, t := range r.topups {
		if t.UserID == userID && (status == "" || t.Status == status) && len(out) < limit {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r memTopups) RecordProgress(_ context.Context, id, providerRef, note string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok || t.Status.IsTerminal() {
		return nil
	}
	if providerRef != "" {
		t.ProviderRef = providerRef
	}
	if note != "" {
		t.Note = note
	}
	return nil
}

func (r memTopups) RecordLatePayment(_ context.Context, id, providerRef, note string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok || t.Status != models.TopupFailed {
		return nil
	}
	if providerRef != "" {
		t.ProviderRef = providerRef
	}
	t.Note = note
	return nil
}

func (r memTopups) MarkFailed(_ context.Context, id, note string, _ []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok || t.Status.IsTerminal() {
		return false, nil
	}
	t.Status = models.TopupFailed
	t.Note = note
	return true, nil
}

func (r memTopups) CompleteAndCredit(_ context.Context, id string, amount int64, providerRef string, _ []byte) (models.CreditResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok || t.Status.IsTerminal() {
		return models.CreditResult{}, nil
	}
	t.Status = models.TopupSuccess
	t.Amount = &amount
	t.ProviderRef = providerRef
	result := models.CreditResult{Applied: true, UserID: t.UserID, Amount: amount}
	if a, ok := r.accounts[t.UserID]; ok {
		a.Balance += amount
		r.credits++
		t.Credited = true
		result.Credited = true
		result.NewBalance = a.Balance
	}
	return result, nil
}

func (r memTopups) RetryCredit(_ context.Context, id string) (models.CreditResult, error) {
	return models.CreditResult{}, nil
}

func (r memTopups) ExpireStale(_ context.Context, provider models.TopupProvider, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.topups {
		if t.Provider == provider && t.Status == models.TopupPending && t.CreatedAt.Before(olderThan) {
			t.Status = models.TopupFailed
			t.Note = "expired"
			n++
		}
	}
	return n, nil
}

type memRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}}
}

func (r *memRedis) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return v, nil
}

func (r *memRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value.(string)
	return nil
}

func (r *memRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[key]; ok {
		return false, nil
	}
	r.data[key] = value.(string)
	return true, nil
}

func (r *memRedis) Del(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *memRedis) Close() error { return nil }
