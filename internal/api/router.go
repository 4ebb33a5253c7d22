package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpsarena-go/internal/api/handler"
	"github.com/mcoot/rpsarena-go/internal/api/middleware"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/account"
	"github.com/mcoot/rpsarena-go/internal/services/auth"
	"github.com/mcoot/rpsarena-go/internal/services/game"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	GameController    *game.Controller
	LedgerService     *ledger.Service
	AccountController *account.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GameController)
	userHandler := handler.NewUserHandler(cfg.LedgerService, cfg.AccountController, cfg.AuthService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	adminMiddleware := middleware.RequireRole(cfg.AuthService, model.RoleAdmin)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no session required to register/login)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Authenticated routes
	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", authHandler.GetMe).Methods(http.MethodGet)
	authed.HandleFunc("/game/play", gameHandler.Play).Methods(http.MethodPost)
	authed.HandleFunc("/leaderboard", userHandler.Leaderboard).Methods(http.MethodGet)
	authed.HandleFunc("/stats", userHandler.Stats).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/users").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("", userHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", userHandler.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/{id}", userHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
