// Package account implements admin-facing user management: listing
// accounts with their scores, editing accounts, and deleting them.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/rpsarena-go/internal/dependencies/clock"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/ledger"
	"github.com/mcoot/rpsarena-go/internal/storage"
)

// UpdateRequest carries the editable account fields. Nil pointers leave
// the field untouched.
type UpdateRequest struct {
	Username *string
	Email    *string
	Role     *model.Role
	Points   *int
}

// Controller manages user accounts
type Controller struct {
	storage storage.Storage
	ledger  *ledger.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new account Controller
func NewController(storage storage.Storage, ledger *ledger.Service, clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		ledger:  ledger,
		clock:   clock,
		logger:  logger,
	}
}

// List returns every account joined with its score, ordered like the
// leaderboard
func (c *Controller) List(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return c.ledger.Leaderboard(ctx)
}

// Get returns one account by id
func (c *Controller) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return c.storage.GetUser(ctx, id)
}

// Update edits an account. Downgrading the last admin is rejected so the
// system can never be left without one.
func (c *Controller) Update(ctx context.Context, id model.UserID, req UpdateRequest) (*model.User, error) {
	user, err := c.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && user.Role == model.RoleAdmin && *req.Role != model.RoleAdmin {
		if err := c.requireAnotherAdmin(ctx, id); err != nil {
			return nil, err
		}
	}

	if req.Username != nil && *req.Username != user.Username {
		existing, err := c.storage.GetUserByUsername(ctx, *req.Username)
		if err == nil && existing.ID != id {
			return nil, model.ErrConflict
		}
		if err != nil && !errors.Is(err, model.ErrUserNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.UpdatedAt = c.clock.Now()

	// Score first: a failed score write must leave the account fields untouched
	if req.Points != nil {
		if _, err := c.storage.SetScorePoints(ctx, id, *req.Points); err != nil {
			return nil, err
		}
	}

	if err := c.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) || errors.Is(err, model.ErrEmailTaken) {
			return nil, model.ErrConflict
		}
		return nil, err
	}

	c.logger.Info("account updated",
		slog.String("user_id", string(id)),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Delete removes an account and its score record. Deleting the last
// admin is rejected.
func (c *Controller) Delete(ctx context.Context, id model.UserID) error {
	user, err := c.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == model.RoleAdmin {
		if err := c.requireAnotherAdmin(ctx, id); err != nil {
			return err
		}
	}

	// DeleteUser cascades to the score record
	if err := c.storage.DeleteUser(ctx, id); err != nil {
		return err
	}

	c.logger.Info("account deleted", slog.String("user_id", string(id)))
	return nil
}

// requireAnotherAdmin fails with ErrLastAdmin unless an admin other than
// the excluded account exists
func (c *Controller) requireAnotherAdmin(ctx context.Context, exclude model.UserID) error {
	users, err := c.storage.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin && u.ID != exclude {
			return nil
		}
	}
	return model.ErrLastAdmin
}
