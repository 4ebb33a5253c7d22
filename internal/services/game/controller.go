package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/rpsarena-go/internal/dependencies/random"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/engine"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
)

// Result is the full outcome of one played round
type Result struct {
	PlayerMove   model.Move
	OpponentMove model.Move
	Outcome      model.Outcome
	Points       int
	Record       *model.ScoreRecord
}

// Controller plays rounds and records them against the score ledger
type Controller struct {
	ledger *ledger.Service
	random random.Random
	logger *slog.Logger
}

// NewController creates a new game Controller
func NewController(ledger *ledger.Service, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		ledger: ledger,
		random: random,
		logger: logger,
	}
}

// Play resolves one round for the user. If opponent is nil, the computer
// picks a random move. The round is durably recorded before returning;
// a failed write is surfaced rather than retried so a game is never
// double-counted.
func (c *Controller) Play(ctx context.Context, userID model.UserID, move model.Move, opponent *model.Move) (*Result, error) {
	var opponentMove model.Move
	if opponent != nil {
		opponentMove = *opponent
	} else {
		opponentMove = engine.RandomMove(c.random)
	}

	outcome := engine.Decide(move, opponentMove)

	record, err := c.ledger.ApplyResult(ctx, userID, outcome)
	if err != nil {
		c.logger.Error("failed to record game result",
			slog.String("user_id", string(userID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("round played",
		slog.String("user_id", string(userID)),
		slog.String("player_move", string(move)),
		slog.String("opponent_move", string(opponentMove)),
		slog.String("outcome", string(outcome)),
		slog.Int("points", engine.Award(outcome)),
	)

	return &Result{
		PlayerMove:   move,
		OpponentMove: opponentMove,
		Outcome:      outcome,
		Points:       engine.Award(outcome),
		Record:       record,
	}, nil
}
