package response

import (
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/services/auth"
	"github.com/mcoot/rpsarena-go/internal/services/game"
)

// User represents an account in API responses. Email and Role are only
// set on admin-facing responses.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User: User{
			ID:       string(s.UserID),
			Username: s.Username,
			Role:     string(s.Role),
		},
		SessionToken: s.Token,
	}
}

// Score represents a score record in API responses
type Score struct {
	Points      int `json:"points"`
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

// ScoreFromModel converts a model.ScoreRecord
func ScoreFromModel(r *model.ScoreRecord) Score {
	return Score{
		Points:      r.Points,
		GamesPlayed: r.GamesPlayed,
		Wins:        r.Wins,
		Streak:      r.Streak,
	}
}

// PlayResponse is the response after playing a round
type PlayResponse struct {
	PlayerMove   string `json:"player_move"`
	OpponentMove string `json:"opponent_move"`
	Outcome      string `json:"outcome"`
	Points       int    `json:"points"`
	Score        Score  `json:"score"`
}

// PlayResponseFromResult converts a game.Result
func PlayResponseFromResult(r *game.Result) PlayResponse {
	return PlayResponse{
		PlayerMove:   string(r.PlayerMove),
		OpponentMove: string(r.OpponentMove),
		Outcome:      string(r.Outcome),
		Points:       r.Points,
		Score:        ScoreFromModel(r.Record),
	}
}

// LeaderboardEntry represents one ranked row
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    Score  `json:"score"`
	// Admin-only fields
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// LeaderboardEntryFromModel converts a model.LeaderboardEntry.
// Identity details beyond the username are included only for admins.
func LeaderboardEntryFromModel(e model.LeaderboardEntry, admin bool) LeaderboardEntry {
	entry := LeaderboardEntry{
		Rank:     e.Rank,
		Username: e.Username,
		Score:    ScoreFromModel(&e.Score),
	}
	if admin {
		entry.ID = string(e.UserID)
		entry.Email = e.Email
		entry.Role = string(e.Role)
	}
	return entry
}

// Leaderboard wraps the ranked entries
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModel converts the ledger's entries
func LeaderboardFromModel(entries []model.LeaderboardEntry, admin bool) Leaderboard {
	out := Leaderboard{Entries: make([]LeaderboardEntry, len(entries))}
	for i, e := range entries {
		out.Entries[i] = LeaderboardEntryFromModel(e, admin)
	}
	return out
}

// Stats is the response for the caller's own standing
type Stats struct {
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Points     int     `json:"points"`
	Streak     int     `json:"streak"`
	Rank       int     `json:"rank"`
}

// StatsFromModel converts model.PlayerStats
func StatsFromModel(s *model.PlayerStats) Stats {
	return Stats{
		TotalGames: s.TotalGames,
		Wins:       s.Wins,
		WinRate:    s.WinRate,
		Points:     s.Points,
		Streak:     s.Streak,
		Rank:       s.Rank,
	}
}
