package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/api"
	"github.com/honeynil/ShopLedgerService/internal/config"
	"github.com/honeynil/ShopLedgerService/internal/db"
	"github.com/honeynil/ShopLedgerService/internal/handler"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/kafka"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/redis"
	"github.com/honeynil/ShopLedgerService/internal/observability"
	"github.com/honeynil/ShopLedgerService/internal/providers/card"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
	core "github.com/honeynil/ShopLedgerService/internal/repository/postgres"
	service "github.com/honeynil/ShopLedgerService/internal/services"
)

func main() {
	cfg := config.Load()

	shutdownTracing, metricsHandler := observability.Setup("shop-ledger-service", cfg.LogLevel, cfg.OTLPEndpoint)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	accountRepo := core.NewPostgresAccountRepository(database)
	catalogRepo := core.NewPostgresCatalogRepository(database)
	orderRepo := core.NewPostgresOrderRepository(database)
	topupRepo := core.NewPostgresTopupRepository(database)

	var publisher kafka.EventPublisher = kafka.NopPublisher{}
	if cfg.KafkaEnabled {
		publisher = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		slog.Warn("kafka disabled, ledger events are dropped and failed credits are not retried")
	}
	defer publisher.Close()

	cardClient := card.NewClient(card.Config{
		BaseURL:    cfg.Card.BaseURL,
		PartnerID:  cfg.Card.PartnerID,
		PartnerKey: cfg.Card.PartnerKey,
		Timeout:    cfg.ProviderTimeout,
	})
	momoClient := momo.NewClient(momo.Config{
		Endpoint:    cfg.Momo.Endpoint,
		PartnerCode: cfg.Momo.PartnerCode,
		AccessKey:   cfg.Momo.AccessKey,
		SecretKey:   cfg.Momo.SecretKey,
		RedirectURL: cfg.Momo.RedirectURL,
		IPNURL:      cfg.MomoIPNURL(),
		Lang:        "vi",
		Timeout:     cfg.ProviderTimeout,
	})

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := service.NewAuthService(accountRepo, redisClient, jwtManager)
	purchaseSvc := service.NewPurchaseService(accountRepo, catalogRepo, orderRepo, redisClient, publisher, cfg.PriceCacheTTL)
	topupSvc := service.NewTopupService(accountRepo, topupRepo, cardClient, momoClient, publisher, service.TopupConfig{
		CardMinAmount:       cfg.Card.MinAmount,
		MomoMinAmount:       cfg.Momo.MinAmount,
		MomoMaxAmount:       cfg.Momo.MaxAmount,
		CardCallbackURL:     cfg.CardCallbackURL(),
		RequireCallbackSign: cfg.Card.RequireCallbackSign,
		ProviderTimeout:     cfg.ProviderTimeout,
		MomoOrderTTL:        cfg.Momo.OrderTTL,
	})

	var workers sync.WaitGroup
	if cfg.KafkaEnabled {
		consumer := kafka.NewCreditRetryConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, topupRepo)
		defer consumer.Close()
		workers.Add(1)
		go func() {
			defer workers.Done()
			consumer.Consume(ctx)
		}()
	}
	workers.Add(1)
	go func() {
		defer workers.Done()
		service.RunSweeper(ctx, topupSvc, cfg.SweepInterval)
	}()

	router := api.SetupRouter(api.RouterDeps{
		Handler:        handler.NewHandler(authSvc, purchaseSvc, topupSvc),
		Redis:          redisClient,
		JWT:            jwtManager,
		ProviderLimits: api.NewRateLimiter(cfg.CallbackRPS, cfg.CallbackBurst, 3*time.Minute),
		Metrics:        metricsHandler,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	workers.Wait()
	slog.Info("server stopped")
}
