package model

import "fmt"

// Move is a player's selection in a round
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves lists all valid moves in canonical order
var Moves = []Move{MoveRock, MovePaper, MoveScissors}

// ParseMove validates and converts a string to a Move
func ParseMove(s string) (Move, error) {
	switch Move(s) {
	case MoveRock, MovePaper, MoveScissors:
		return Move(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
}

// Outcome is the result of a round from the subject player's perspective.
// It is an ephemeral computation result and is never persisted.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// Valid reports whether the outcome is one of the three defined values
func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLose || o == OutcomeDraw
}
