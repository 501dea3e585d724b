package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	PublicBaseURL  string
	LogLevel       string
	OTLPEndpoint   string
	PostgresDSN    string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	JWTSecret string
	JWTTTL    time.Duration

	PriceCacheTTL   time.Duration
	ProviderTimeout time.Duration
	SweepInterval   time.Duration

	CallbackRPS   float64
	CallbackBurst int

	Card CardConfig
	Momo MomoConfig
}

type CardConfig struct {
	BaseURL             string
	PartnerID           string
	PartnerKey          string
	MinAmount           int64
	RequireCallbackSign bool
}

type MomoConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	MinAmount   int64
	MaxAmount   int64
	OrderTTL    time.Duration
}

// MomoPaymentWindow is how long the gateway keeps a payment link open. An
// order swept before then can still be paid.
const MomoPaymentWindow = 100 * time.Minute

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment and defaults", "error", err)
	}

	cfg := &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=shop sslmode=disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaEnabled: getBool("KAFKA_ENABLED", true),
		KafkaBrokers: getList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "ledger-events"),
		KafkaGroupID: getEnv("KAFKA_GROUP", "shop-ledger-credit-retry"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),
		JWTTTL:    getDuration("JWT_TTL", time.Hour),

		PriceCacheTTL:   getDuration("PRICE_CACHE_TTL", 5*time.Minute),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 15*time.Second),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 5*time.Minute),

		CallbackRPS:   getFloat("CALLBACK_RPS", 20),
		CallbackBurst: getInt("CALLBACK_BURST", 40),

		Card: CardConfig{
			BaseURL:             getEnv("CARD_BASE_URL", "https://thesieure.com"),
			PartnerID:           getEnv("CARD_PARTNER_ID", ""),
			PartnerKey:          getEnv("CARD_PARTNER_KEY", ""),
			MinAmount:           getInt64("CARD_MIN_AMOUNT", 10000),
			RequireCallbackSign: getBool("CARD_REQUIRE_CALLBACK_SIGN", true),
		},
		Momo: MomoConfig{
			Endpoint:    strings.TrimRight(getEnv("MOMO_ENDPOINT", "https://test-payment.momo.vn"), "/"),
			PartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
			AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
			SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
			RedirectURL: getEnv("MOMO_REDIRECT_URL", ""),
			MinAmount:   getInt64("MOMO_MIN_AMOUNT", 10000),
			MaxAmount:   getInt64("MOMO_MAX_AMOUNT", 50_000_000),
			OrderTTL:    getDuration("MOMO_ORDER_TTL", 2*time.Hour),
		},
	}

	if cfg.JWTSecret == "supersecret" {
		slog.Warn("JWT_SECRET not set, using the development default")
	}
	if cfg.Card.PartnerKey == "" {
		slog.Warn("CARD_PARTNER_KEY not set, card callbacks cannot be verified")
	}
	if cfg.Momo.OrderTTL < MomoPaymentWindow {
		slog.Warn("MOMO_ORDER_TTL is shorter than the MoMo payment window, late payments will land on expired orders",
			"order_ttl", cfg.Momo.OrderTTL, "payment_window", MomoPaymentWindow)
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"public_base_url", cfg.PublicBaseURL,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"momo_endpoint", cfg.Momo.Endpoint,
	)
	return cfg
}

func (c *Config) CardCallbackURL() string {
	return c.PublicBaseURL + "/api/topup/card/callback"
}

func (c *Config) MomoIPNURL() string {
	return c.PublicBaseURL + "/api/topup/momo/ipn"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func getList(key string, def []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
