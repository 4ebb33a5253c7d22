package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpsarena-go/internal/dependencies/mocks"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
	"github.com/mcoot/rpsarena-go/internal/storage/memory"
	"github.com/mcoot/rpsarena-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
	alice      model.UserID
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	ledgerService := ledger.New(s.storage, testutil.NopLogger())
	s.controller = NewController(ledgerService, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	s.alice = "user-1"
	err := s.storage.SaveUser(s.ctx, &model.User{
		ID:        s.alice,
		Username:  "alice",
		Role:      model.RoleUser,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
}

func (s *ControllerSuite) TestPlayWithExplicitOpponentMove() {
	opponent := model.MoveScissors

	result, err := s.controller.Play(s.ctx, s.alice, model.MoveRock, &opponent)
	s.Require().NoError(err)

	s.Equal(model.MoveRock, result.PlayerMove)
	s.Equal(model.MoveScissors, result.OpponentMove)
	s.Equal(model.OutcomeWin, result.Outcome)
	s.Equal(3, result.Points)
	s.Equal(1, result.Record.GamesPlayed)
}

func (s *ControllerSuite) TestPlayAgainstRandomOpponent() {
	// Queue paper so rock loses
	s.random.QueueIntn(1)

	result, err := s.controller.Play(s.ctx, s.alice, model.MoveRock, nil)
	s.Require().NoError(err)

	s.Equal(model.MovePaper, result.OpponentMove)
	s.Equal(model.OutcomeLose, result.Outcome)
	s.Equal(0, result.Points)
}

func (s *ControllerSuite) TestPlayDoesNotDrawRandomWhenOpponentSupplied() {
	opponent := model.MoveRock
	s.random.QueueIntn(2)

	_, err := s.controller.Play(s.ctx, s.alice, model.MoveRock, &opponent)
	s.Require().NoError(err)

	// The queued draw must be untouched
	s.Equal(model.MoveScissors, model.Moves[s.random.Intn(3)])
}

func (s *ControllerSuite) TestPlayAccumulatesRecord() {
	opponent := model.MoveScissors

	_, err := s.controller.Play(s.ctx, s.alice, model.MoveRock, &opponent)
	s.Require().NoError(err)
	result, err := s.controller.Play(s.ctx, s.alice, model.MoveRock, &opponent)
	s.Require().NoError(err)

	s.Equal(6, result.Record.Points)
	s.Equal(2, result.Record.GamesPlayed)
	s.Equal(2, result.Record.Wins)
	s.Equal(2, result.Record.Streak)
}

func (s *ControllerSuite) TestPlayRejectsUnknownUser() {
	opponent := model.MoveRock

	_, err := s.controller.Play(s.ctx, "nonexistent", model.MoveRock, &opponent)
	s.ErrorIs(err, model.ErrUserNotFound)
}
