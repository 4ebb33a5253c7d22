package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpsarena-go/internal/api/middleware"
	"github.com/mcoot/rpsarena-go/internal/api/request"
	"github.com/mcoot/rpsarena-go/internal/api/response"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/account"
	"github.com/mcoot/rpsarena-go/internal/services/auth"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
)

// UserHandler handles leaderboard, stats, and admin account management
type UserHandler struct {
	ledger      *ledger.Service
	account     *account.Controller
	authService *auth.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(ledger *ledger.Service, account *account.Controller, authService *auth.Service) *UserHandler {
	return &UserHandler{
		ledger:      ledger,
		account:     account,
		authService: authService,
	}
}

// Leaderboard handles GET /api/v1/leaderboard.
// Admin sessions see identity details; everyone else sees public fields.
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	entries, err := h.ledger.Leaderboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	admin := session.Role == model.RoleAdmin
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries, admin))
}

// Stats handles GET /api/v1/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	stats, err := h.ledger.Stats(r.Context(), session.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromModel(stats))
}

// List handles GET /api/v1/users (admin)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.account.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries, true))
}

// Update handles PATCH /api/v1/users/{id} (admin)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])

	var req request.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	update := account.UpdateRequest{
		Username: req.Username,
		Email:    req.Email,
		Points:   req.Points,
	}

	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			WriteError(w, err)
			return
		}
		update.Role = &role
	}

	if req.Username != nil && len(*req.Username) < 3 {
		WriteError(w, NewInvalidRequestError("username must be at least 3 characters"))
		return
	}
	if req.Points != nil && *req.Points < 0 {
		WriteError(w, NewInvalidRequestError("points must not be negative"))
		return
	}

	user, err := h.account.Update(r.Context(), id, update)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /api/v1/users/{id} (admin)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])

	if err := h.account.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	// Deleted accounts must not keep a live session
	h.authService.InvalidateUserSessions(id)

	response.NoContent(w)
}
