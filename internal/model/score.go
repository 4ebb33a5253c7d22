package model

import "time"

// ScoreRecord is the cumulative game statistics for one user.
// Created lazily on the user's first recorded game; exactly one per user.
//
// Invariants: Wins <= GamesPlayed, Points >= 0.
type ScoreRecord struct {
	UserID      UserID
	Points      int
	GamesPlayed int
	Wins        int
	Streak      int // current consecutive wins, reset on lose or draw
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoreDelta is the per-game change applied to a ScoreRecord.
// The counter updates are applied as a single atomic unit by storage.
type ScoreDelta struct {
	Points int
	Win    bool
}

// Apply folds the delta into the record
func (r *ScoreRecord) Apply(d ScoreDelta, now time.Time) {
	r.Points += d.Points
	r.GamesPlayed++
	if d.Win {
		r.Wins++
		r.Streak++
	} else {
		r.Streak = 0
	}
	r.UpdatedAt = now
}

// LeaderboardEntry joins a user's public fields with their score for ranking.
// Email and Role are only exposed to admin callers.
type LeaderboardEntry struct {
	Rank     int
	UserID   UserID
	Username string
	Email    string
	Role     Role
	Score    ScoreRecord
}

// PlayerStats summarizes one user's standing
type PlayerStats struct {
	TotalGames int
	Wins       int
	WinRate    float64 // percentage, 0 when no games played
	Points     int
	Streak     int
	Rank       int
}
