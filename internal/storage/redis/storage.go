package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

// SaveUser writes the user and its index entries under WATCH on the
// username/email index keys, so a concurrent save claiming the same
// username either loses the uniqueness check or aborts the transaction.
func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	watchKeys := []string{userKey(user.ID), usernameIndexKey(user.Username)}
	if user.Email != "" {
		watchKeys = append(watchKeys, emailIndexKey(user.Email))
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		// Uniqueness: the index keys must be free or already ours
		owner, err := tx.Get(ctx, usernameIndexKey(user.Username)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && owner != string(user.ID) {
			return model.ErrUsernameTaken
		}
		if user.Email != "" {
			owner, err := tx.Get(ctx, emailIndexKey(user.Email)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != string(user.ID) {
				return model.ErrEmailTaken
			}
		}

		// Load the previous version to drop stale index entries
		var existing *model.User
		prev, err := tx.Get(ctx, userKey(user.ID)).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			existing = &model.User{}
			if err := json.Unmarshal(prev, existing); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if existing != nil {
				if existing.Username != user.Username {
					pipe.Del(ctx, usernameIndexKey(existing.Username))
				}
				if existing.Email != "" && existing.Email != user.Email {
					pipe.Del(ctx, emailIndexKey(existing.Email))
				}
			}
			pipe.Set(ctx, userKey(user.ID), data, 0)
			pipe.Set(ctx, usernameIndexKey(user.Username), string(user.ID), 0)
			if user.Email != "" {
				pipe.Set(ctx, emailIndexKey(user.Email), string(user.ID), 0)
			}
			pipe.SAdd(ctx, usersIndexKey(), string(user.ID))
			return nil
		})
		return err
	}, watchKeys...)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	userID, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userID))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	userID, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userID))
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Index entry for a deleted user
		}
		var user model.User
		if err := json.Unmarshal([]byte(val.(string)), &user); err != nil {
			continue // Skip invalid data
		}
		users = append(users, &user)
	}

	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	// Delete the user, its indexes, and its score record in one pipeline
	pipe := s.client.Pipeline()
	pipe.Del(ctx, userKey(id))
	pipe.Del(ctx, usernameIndexKey(user.Username))
	if user.Email != "" {
		pipe.Del(ctx, emailIndexKey(user.Email))
	}
	pipe.Del(ctx, scoreKey(id))
	pipe.SRem(ctx, usersIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Score operations

func (s *Storage) GetScore(ctx context.Context, userID model.UserID) (*model.ScoreRecord, error) {
	data, err := s.client.Get(ctx, scoreKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrScoreNotFound
		}
		return nil, err
	}

	var rec model.ScoreRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ApplyScoreDelta applies the delta under WATCH/MULTI so the multi-field
// update lands as one atomic unit. Contention surfaces as model.ErrConflict
// for the caller to retry.
func (s *Storage) ApplyScoreDelta(ctx context.Context, userID model.UserID, delta model.ScoreDelta) (*model.ScoreRecord, error) {
	key := scoreKey(userID)
	var result model.ScoreRecord

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		now := time.Now()
		rec := model.ScoreRecord{UserID: userID, CreatedAt: now}

		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
		}

		rec.Apply(delta, now)

		updated, err := json.Marshal(&rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = rec
		return nil
	}, key)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, model.ErrConflict
		}
		return nil, err
	}

	return &result, nil
}

func (s *Storage) SetScorePoints(ctx context.Context, userID model.UserID, points int) (*model.ScoreRecord, error) {
	key := scoreKey(userID)
	var result model.ScoreRecord

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		now := time.Now()
		rec := model.ScoreRecord{UserID: userID, CreatedAt: now}

		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
		}

		rec.Points = points
		rec.UpdatedAt = now

		updated, err := json.Marshal(&rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = rec
		return nil
	}, key)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, model.ErrConflict
		}
		return nil, err
	}

	return &result, nil
}

func (s *Storage) ListScores(ctx context.Context) ([]*model.ScoreRecord, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.ScoreRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scoreKey(model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.ScoreRecord, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // User has not played yet
		}
		var rec model.ScoreRecord
		if err := json.Unmarshal([]byte(val.(string)), &rec); err != nil {
			continue // Skip invalid data
		}
		records = append(records, &rec)
	}

	return records, nil
}

func (s *Storage) DeleteScore(ctx context.Context, userID model.UserID) error {
	return s.client.Del(ctx, scoreKey(userID)).Err()
}
