package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	emailIndex    map[string]model.UserID
	scores        map[model.UserID]*model.ScoreRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		emailIndex:    make(map[string]model.UserID),
		scores:        make(map[model.UserID]*model.ScoreRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness is enforced here, under the same lock as the write
	if owner, ok := s.usernameIndex[user.Username]; ok && owner != user.ID {
		return model.ErrUsernameTaken
	}
	if user.Email != "" {
		if owner, ok := s.emailIndex[user.Email]; ok && owner != user.ID {
			return model.ErrEmailTaken
		}
	}

	// Drop stale index entries when username/email change
	if existing, ok := s.users[user.ID]; ok {
		if existing.Username != user.Username {
			delete(s.usernameIndex, existing.Username)
		}
		if existing.Email != "" && existing.Email != user.Email {
			delete(s.emailIndex, existing.Email)
		}
	}

	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[user.Username] = user.ID
	if user.Email != "" {
		s.emailIndex[user.Email] = user.ID
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	delete(s.usernameIndex, user.Username)
	if user.Email != "" {
		delete(s.emailIndex, user.Email)
	}
	delete(s.users, id)
	delete(s.scores, id)
	return nil
}

// Score operations

func (s *Storage) GetScore(ctx context.Context, userID model.UserID) (*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.scores[userID]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	r := *rec
	return &r, nil
}

func (s *Storage) ApplyScoreDelta(ctx context.Context, userID model.UserID, delta model.ScoreDelta) (*model.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec, ok := s.scores[userID]
	if !ok {
		rec = &model.ScoreRecord{UserID: userID, CreatedAt: now}
		s.scores[userID] = rec
	}
	rec.Apply(delta, now)

	r := *rec
	return &r, nil
}

func (s *Storage) SetScorePoints(ctx context.Context, userID model.UserID, points int) (*model.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec, ok := s.scores[userID]
	if !ok {
		rec = &model.ScoreRecord{UserID: userID, CreatedAt: now}
		s.scores[userID] = rec
	}
	rec.Points = points
	rec.UpdatedAt = now

	r := *rec
	return &r, nil
}

func (s *Storage) ListScores(ctx context.Context) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*model.ScoreRecord, 0, len(s.scores))
	for _, rec := range s.scores {
		r := *rec
		records = append(records, &r)
	}
	return records, nil
}

func (s *Storage) DeleteScore(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scores, userID)
	return nil
}
