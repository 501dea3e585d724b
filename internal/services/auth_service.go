package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/redis"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/repository"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mocks/mock_auth_service.go -package=mocks

type AuthService interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	accountRepo repository.AccountRepository
	redisClient redis.RedisClient
	tokens      *auth.JWTManager
}

func NewAuthService(accountRepo repository.AccountRepository, redisClient redis.RedisClient, tokens *auth.JWTManager) *authService {
	return &authService{
		accountRepo: accountRepo,
		redisClient: redisClient,
		tokens:      tokens,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (string, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		span.SetStatus(codes.Error, "empty username or password")
		return "", fmt.Errorf("%w: username and password are required", pkgerrors.ErrInvalidPayload)
	}

	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if existing != nil {
		span.SetStatus(codes.Error, "username already exists")
		slog.Warn("username already exists", "username", username, "existing_id", existing.ID)
		return "", pkgerrors.ErrUsernameExists
	}
	if err != nil && !stderrors.Is(err, pkgerrors.ErrProfileNotFound) {
		spanError(span, err, "user check failed")
		slog.Error("failed to check user existence", "username", username, "error", err)
		return "", fmt.Errorf("%w: failed to check user existence", pkgerrors.ErrInternal)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		spanError(span, err, "password hashing failed")
		slog.Error("failed to hash password", "username", username, "error", err)
		return "", fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Status:       models.AccountActive,
		Role:         models.RoleUser,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if stderrors.Is(err, pkgerrors.ErrUsernameExists) {
			return "", err
		}
		spanError(span, err, "account creation failed")
		slog.Error("failed to create account", "username", username, "error", err)
		return "", fmt.Errorf("%w: failed to create account", pkgerrors.ErrInternal)
	}

	slog.Info("user registered", "user_id", account.ID, "username", username)
	return account.ID, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	account, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		slog.Warn("failed to login", "username", username, "error", err)
		return "", pkgerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Warn("invalid password", "username", username)
		return "", pkgerrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		spanError(span, err, "token generation failed")
		slog.Error("failed to generate JWT", "error", err)
		return "", fmt.Errorf("%w: failed to generate token", pkgerrors.ErrInternal)
	}

	// The middleware only accepts the cached token, so a login that cannot be
	// cached would hand out a token that never works.
	if err := s.redisClient.Set(ctx, auth.TokenKey(account.ID), token, s.tokens.TTL()); err != nil {
		spanError(span, err, "token cache failed")
		slog.Error("failed to cache JWT", "user_id", account.ID, "error", err)
		return "", fmt.Errorf("%w: failed to store session", pkgerrors.ErrInternal)
	}

	slog.Info("user logged in", "username", username, "user_id", account.ID)
	return token, nil
}
