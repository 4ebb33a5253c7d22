package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/rpsarena-go/internal/api/middleware"
	"github.com/mcoot/rpsarena-go/internal/api/request"
	"github.com/mcoot/rpsarena-go/internal/api/response"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/game"
)

// GameHandler handles game play endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Play handles POST /api/v1/game/play
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req request.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	move, err := model.ParseMove(req.Move)
	if err != nil {
		WriteError(w, err)
		return
	}

	var opponent *model.Move
	if req.OpponentMove != nil {
		m, err := model.ParseMove(*req.OpponentMove)
		if err != nil {
			WriteError(w, err)
			return
		}
		opponent = &m
	}

	session := middleware.MustGetSession(r.Context())

	result, err := h.gameController.Play(r.Context(), session.UserID, move, opponent)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayResponseFromResult(result))
}
