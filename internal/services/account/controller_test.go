package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpsarena-go/internal/dependencies/mocks"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
	"github.com/mcoot/rpsarena-go/internal/storage"
	"github.com/mcoot/rpsarena-go/internal/storage/memory"
	"github.com/mcoot/rpsarena-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	ledger     *ledger.Service
	clock      *mocks.MockClock
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.ledger = ledger.New(s.storage, testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.controller = NewController(s.storage, s.ledger, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createUser(id, username string, role model.Role) model.UserID {
	err := s.storage.SaveUser(s.ctx, &model.User{
		ID:        model.UserID(id),
		Username:  username,
		Role:      role,
		CreatedAt: s.clock.Now(),
		UpdatedAt: s.clock.Now(),
	})
	s.Require().NoError(err)
	return model.UserID(id)
}

func ptr[T any](v T) *T {
	return &v
}

// List tests

func (s *ControllerSuite) TestListReturnsAllAccounts() {
	alice := s.createUser("user-1", "alice", model.RoleUser)
	s.createUser("user-2", "bob", model.RoleAdmin)

	_, err := s.ledger.ApplyResult(s.ctx, alice, model.OutcomeWin)
	s.Require().NoError(err)

	entries, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	// Ordered like the leaderboard
	s.Equal("alice", entries[0].Username)
	s.Equal(3, entries[0].Score.Points)
}

// Update tests

func (s *ControllerSuite) TestUpdateUsername() {
	alice := s.createUser("user-1", "alice", model.RoleUser)

	user, err := s.controller.Update(s.ctx, alice, UpdateRequest{Username: ptr("alicia")})
	s.Require().NoError(err)
	s.Equal("alicia", user.Username)

	stored, err := s.storage.GetUserByUsername(s.ctx, "alicia")
	s.Require().NoError(err)
	s.Equal(alice, stored.ID)
}

func (s *ControllerSuite) TestUpdateRejectsTakenUsername() {
	alice := s.createUser("user-1", "alice", model.RoleUser)
	s.createUser("user-2", "bob", model.RoleUser)

	_, err := s.controller.Update(s.ctx, alice, UpdateRequest{Username: ptr("bob")})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *ControllerSuite) TestUpdateUsernameToItselfIsFine() {
	alice := s.createUser("user-1", "alice", model.RoleUser)

	_, err := s.controller.Update(s.ctx, alice, UpdateRequest{Username: ptr("alice")})
	s.NoError(err)
}

func (s *ControllerSuite) TestUpdateRole() {
	alice := s.createUser("user-1", "alice", model.RoleUser)

	user, err := s.controller.Update(s.ctx, alice, UpdateRequest{Role: ptr(model.RoleAdmin)})
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, user.Role)
}

func (s *ControllerSuite) TestUpdatePointsOverridesScore() {
	alice := s.createUser("user-1", "alice", model.RoleUser)
	_, err := s.ledger.ApplyResult(s.ctx, alice, model.OutcomeWin)
	s.Require().NoError(err)

	_, err = s.controller.Update(s.ctx, alice, UpdateRequest{Points: ptr(100)})
	s.Require().NoError(err)

	record, err := s.storage.GetScore(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(100, record.Points)
	// Other counters untouched
	s.Equal(1, record.GamesPlayed)
}

// brokenScoreStorage fails every score overwrite
type brokenScoreStorage struct {
	storage.Storage
}

func (b *brokenScoreStorage) SetScorePoints(ctx context.Context, userID model.UserID, points int) (*model.ScoreRecord, error) {
	return nil, errors.New("storage unavailable")
}

func (s *ControllerSuite) TestUpdateLeavesAccountUntouchedWhenScoreWriteFails() {
	alice := s.createUser("user-1", "alice", model.RoleUser)

	broken := &brokenScoreStorage{Storage: s.storage}
	controller := NewController(broken, s.ledger, s.clock, testutil.NopLogger())

	_, err := controller.Update(s.ctx, alice, UpdateRequest{
		Username: ptr("alicia"),
		Points:   ptr(100),
	})
	s.Require().Error(err)

	// The failed points write must not leave a partial username edit behind
	stored, err := s.storage.GetUser(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal("alice", stored.Username)
}

// racedSaveStorage simulates losing a username claim between the
// controller's pre-check and the save
type racedSaveStorage struct {
	storage.Storage
}

func (r *racedSaveStorage) SaveUser(ctx context.Context, user *model.User) error {
	return model.ErrUsernameTaken
}

func (s *ControllerSuite) TestUpdateMapsLostUsernameRaceToConflict() {
	alice := s.createUser("user-1", "alice", model.RoleUser)

	controller := NewController(&racedSaveStorage{Storage: s.storage}, s.ledger, s.clock, testutil.NopLogger())

	_, err := controller.Update(s.ctx, alice, UpdateRequest{Username: ptr("bob")})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *ControllerSuite) TestUpdateRejectsUnknownUser() {
	_, err := s.controller.Update(s.ctx, "nonexistent", UpdateRequest{Username: ptr("x")})
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Last-admin protection tests

func (s *ControllerSuite) TestUpdateRejectsDowngradingLastAdmin() {
	root := s.createUser("user-1", "root", model.RoleAdmin)

	_, err := s.controller.Update(s.ctx, root, UpdateRequest{Role: ptr(model.RoleUser)})
	s.ErrorIs(err, model.ErrLastAdmin)
}

func (s *ControllerSuite) TestUpdateAllowsDowngradeWithAnotherAdmin() {
	root := s.createUser("user-1", "root", model.RoleAdmin)
	s.createUser("user-2", "root2", model.RoleAdmin)

	user, err := s.controller.Update(s.ctx, root, UpdateRequest{Role: ptr(model.RoleUser)})
	s.Require().NoError(err)
	s.Equal(model.RoleUser, user.Role)
}

func (s *ControllerSuite) TestDeleteRejectsLastAdmin() {
	root := s.createUser("user-1", "root", model.RoleAdmin)

	err := s.controller.Delete(s.ctx, root)
	s.ErrorIs(err, model.ErrLastAdmin)
}

func (s *ControllerSuite) TestDeleteAllowsAdminWithAnotherAdmin() {
	root := s.createUser("user-1", "root", model.RoleAdmin)
	s.createUser("user-2", "root2", model.RoleAdmin)

	err := s.controller.Delete(s.ctx, root)
	s.NoError(err)
}

// Delete tests

func (s *ControllerSuite) TestDeleteCascadesToScore() {
	alice := s.createUser("user-1", "alice", model.RoleUser)
	_, err := s.ledger.ApplyResult(s.ctx, alice, model.OutcomeWin)
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Delete(s.ctx, alice))

	_, err = s.storage.GetUser(s.ctx, alice)
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetScore(s.ctx, alice)
	s.ErrorIs(err, model.ErrScoreNotFound)
}

func (s *ControllerSuite) TestDeleteRejectsUnknownUser() {
	err := s.controller.Delete(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}
