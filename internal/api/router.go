package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/ShopLedgerService/internal/handler"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/redis"
)

type RouterDeps struct {
	Handler        *handler.Handler
	Redis          redis.RedisClient
	JWT            *auth.JWTManager
	ProviderLimits *RateLimiter
	Metrics        http.Handler
}

func SetupRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	deps.Handler.RegisterPublicRoutes(api)

	// Provider notifications carry no bearer token; they are signature checked
	// in the service and throttled here.
	providers := api.NewRoute().Subrouter()
	if deps.ProviderLimits != nil {
		providers.Use(deps.ProviderLimits.Middleware)
	}
	deps.Handler.RegisterProviderRoutes(providers)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.AuthMiddleware(deps.Redis, deps.JWT))
	deps.Handler.RegisterProtectedRoutes(protected)

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// metricsMiddleware labels requests by route template so ids in the path do
// not explode label cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		observability.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(recorder.status), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
