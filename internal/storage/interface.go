package storage

import (
	"context"

	"github.com/mcoot/rpsarena-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations

	// SaveUser creates or updates a user. Username and email are unique
	// across users; saving a value already indexed to a different user ID
	// fails with model.ErrUsernameTaken / model.ErrEmailTaken. The check
	// and the write are a single atomic step.
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	// DeleteUser removes the user and cascades to their score record
	DeleteUser(ctx context.Context, id model.UserID) error

	// Score operations
	GetScore(ctx context.Context, userID model.UserID) (*model.ScoreRecord, error)
	// ApplyScoreDelta atomically applies the delta to the user's score record,
	// creating a zero record first if none exists. Implementations using
	// optimistic concurrency return model.ErrConflict on contention.
	ApplyScoreDelta(ctx context.Context, userID model.UserID, delta model.ScoreDelta) (*model.ScoreRecord, error)
	// SetScorePoints overwrites the points accumulator (admin edits),
	// creating a zero record first if none exists
	SetScorePoints(ctx context.Context, userID model.UserID, points int) (*model.ScoreRecord, error)
	ListScores(ctx context.Context) ([]*model.ScoreRecord, error)
	DeleteScore(ctx context.Context, userID model.UserID) error
}
