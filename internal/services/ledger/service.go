package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/engine"
	"github.com/mcoot/rpsarena-go/internal/storage"
)

// maxConflictRetries bounds internal retries when the storage backend
// detects optimistic-concurrency contention
const maxConflictRetries = 3

// Service is the score ledger: it applies game results to users'
// cumulative records and answers ranking queries.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	// Serializes ApplyResult per user; different users never contend
	locks *keyedMutex
}

// New creates a new ledger Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		locks:   newKeyedMutex(),
	}
}

// ApplyResult records one played game against the user's score record,
// creating the record on the user's first game. Each call counts a new
// game: applying the same outcome twice increments GamesPlayed by two.
//
// The user must exist; unknown users are rejected rather than silently
// given a record.
func (s *Service) ApplyResult(ctx context.Context, userID model.UserID, outcome model.Outcome) (*model.ScoreRecord, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidOutcome, outcome)
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	if _, err := s.storage.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	delta := model.ScoreDelta{
		Points: engine.Award(outcome),
		Win:    outcome == model.OutcomeWin,
	}

	var record *model.ScoreRecord
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		record, err = s.storage.ApplyScoreDelta(ctx, userID, delta)
		if !errors.Is(err, model.ErrConflict) {
			break
		}
		s.logger.Warn("score update conflict, retrying",
			slog.String("user_id", string(userID)),
			slog.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Leaderboard returns every user joined with their score record (a zero
// record if they have not played), ordered by points descending.
//
// Tiebreak: earlier account creation wins, then username ascending, so
// repeated reads with no intervening writes are identical.
func (s *Service) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.ListScores(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[model.UserID]*model.ScoreRecord, len(records))
	for _, rec := range records {
		byUser[rec.UserID] = rec
	}

	type ranked struct {
		entry     model.LeaderboardEntry
		createdAt time.Time
	}

	all := make([]ranked, 0, len(users))
	for _, user := range users {
		entry := model.LeaderboardEntry{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Score:    model.ScoreRecord{UserID: user.ID},
		}
		if rec, ok := byUser[user.ID]; ok {
			entry.Score = *rec
		}
		all = append(all, ranked{entry: entry, createdAt: user.CreatedAt})
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.entry.Score.Points != b.entry.Score.Points {
			return a.entry.Score.Points > b.entry.Score.Points
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		return a.entry.Username < b.entry.Username
	})

	entries := make([]model.LeaderboardEntry, len(all))
	for i, r := range all {
		entries[i] = r.entry
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// Stats returns one user's standing, including their leaderboard rank
func (s *Service) Stats(ctx context.Context, userID model.UserID) (*model.PlayerStats, error) {
	if _, err := s.storage.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		stats := &model.PlayerStats{
			TotalGames: entry.Score.GamesPlayed,
			Wins:       entry.Score.Wins,
			Points:     entry.Score.Points,
			Streak:     entry.Score.Streak,
			Rank:       entry.Rank,
		}
		if entry.Score.GamesPlayed > 0 {
			stats.WinRate = float64(entry.Score.Wins) / float64(entry.Score.GamesPlayed) * 100
		}
		return stats, nil
	}

	return nil, model.ErrUserNotFound
}
