// Package engine is the outcome engine: pure move comparison and point
// award rules, with no dependencies beyond the injected randomness.
package engine

import (
	"github.com/mcoot/rpsarena-go/internal/dependencies/random"
	"github.com/mcoot/rpsarena-go/internal/model"
)

// beats maps each move to the move it defeats
var beats = map[model.Move]model.Move{
	model.MoveRock:     model.MoveScissors,
	model.MovePaper:    model.MoveRock,
	model.MoveScissors: model.MovePaper,
}

// Decide determines the outcome of a round from the subject's perspective.
// Pure and total over all nine move pairs.
func Decide(subject, opponent model.Move) model.Outcome {
	if subject == opponent {
		return model.OutcomeDraw
	}
	if beats[subject] == opponent {
		return model.OutcomeWin
	}
	return model.OutcomeLose
}

// Point awards per outcome. The 3/1/0 scheme rewards draws with a
// consolation point.
const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLose = 0
)

// Award returns the points earned for an outcome
func Award(outcome model.Outcome) int {
	switch outcome {
	case model.OutcomeWin:
		return pointsWin
	case model.OutcomeDraw:
		return pointsDraw
	default:
		return pointsLose
	}
}

// RandomMove picks a move uniformly at random, used for the computer
// opponent when the caller does not supply a second move
func RandomMove(r random.Random) model.Move {
	return model.Moves[r.Intn(len(model.Moves))]
}
