package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case PlayResult:
		o.printPlayResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Stats:
		o.printStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// Score response type
type Score struct {
	Points      int `json:"points"`
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

// PlayResult response type
type PlayResult struct {
	PlayerMove   string `json:"player_move"`
	OpponentMove string `json:"opponent_move"`
	Outcome      string `json:"outcome"`
	Points       int    `json:"points"`
	Score        Score  `json:"score"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    Score  `json:"score"`
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// Stats response type
type Stats struct {
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Points     int     `json:"points"`
	Streak     int     `json:"streak"`
	Rank       int     `json:"rank"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	if u.Email != "" {
		fmt.Printf("Email: %s\n", u.Email)
	}
	if u.Role != "" {
		fmt.Printf("Role: %s\n", u.Role)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printPlayResult(p PlayResult) {
	fmt.Printf("You played %s, opponent played %s: %s\n", p.PlayerMove, p.OpponentMove, p.Outcome)
	fmt.Printf("Points earned: %d\n", p.Points)
	fmt.Printf("Total: %d points over %d games (%d wins, streak %d)\n",
		p.Score.Points, p.Score.GamesPlayed, p.Score.Wins, p.Score.Streak)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("No players yet")
		return
	}

	fmt.Printf("Leaderboard (%d players):\n", len(l.Entries))
	for _, e := range l.Entries {
		roleStr := ""
		if e.Role != "" {
			roleStr = fmt.Sprintf(" [%s]", e.Role)
		}
		fmt.Printf("  %d. %s%s - %d points (%d games, %d wins)\n",
			e.Rank, e.Username, roleStr, e.Score.Points, e.Score.GamesPlayed, e.Score.Wins)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Rank: %d\n", s.Rank)
	fmt.Printf("Points: %d\n", s.Points)
	fmt.Printf("Games: %d\n", s.TotalGames)
	fmt.Printf("Wins: %d (%.1f%%)\n", s.Wins, s.WinRate)
	fmt.Printf("Streak: %d\n", s.Streak)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
