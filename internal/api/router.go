package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kprao/rummyscore/internal/api/handler"
	apimiddleware "github.com/kprao/rummyscore/internal/api/middleware"
	"github.com/kprao/rummyscore/internal/api/sse"
	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/middleware"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Gateway    syncgw.Gateway
	HubManager *sse.HubManager
	Clock      clock.Clock
	Random     random.Random
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Gateway, cfg.HubManager, cfg.Clock, cfg.Random, cfg.Logger)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Game routes
	games := api.PathPrefix("/games").Subrouter()
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Update).Methods(http.MethodPut)
	games.HandleFunc("/{id}/pin", gameHandler.VerifyPin).Methods(http.MethodPost)
	games.HandleFunc("/{id}/standings", gameHandler.Standings).Methods(http.MethodGet)
	games.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
