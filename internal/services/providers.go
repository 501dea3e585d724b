package service

import (
	"context"

	"github.com/honeynil/ShopLedgerService/internal/providers/card"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
)

//go:generate mockgen -source=providers.go -destination=mocks/mock_providers.go -package=mocks

// CardProvider is the scratch-card aggregator as seen by the reconciler.
type CardProvider interface {
	Charge(ctx context.Context, req card.ChargeRequest) (*card.ChargeResponse, error)
	VerifyCallback(code, serial, sign string) bool
}

// WalletProvider is the MoMo gateway as seen by the reconciler.
type WalletProvider interface {
	Create(ctx context.Context, req momo.CreateRequest) (*momo.CreateResponse, error)
	VerifyIPN(ipn momo.IPN) bool
}
