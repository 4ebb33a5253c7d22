package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpsarena-go/internal/api"
	"github.com/mcoot/rpsarena-go/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "rps-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rps")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	// Bootstrap an admin for the admin command tests
	require.NoError(t, app.AuthService.EnsureAdmin(context.Background(), "root", "rootpassword"))

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       app.AuthService,
		GameController:    app.GameController,
		LedgerService:     app.LedgerService,
		AccountController: app.AccountController,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"session_token"`
}

type scoreResponse struct {
	Points      int `json:"points"`
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

type playResponse struct {
	PlayerMove   string        `json:"player_move"`
	OpponentMove string        `json:"opponent_move"`
	Outcome      string        `json:"outcome"`
	Points       int           `json:"points"`
	Score        scoreResponse `json:"score"`
}

type leaderboardResponse struct {
	Entries []struct {
		Rank     int           `json:"rank"`
		Username string        `json:"username"`
		Score    scoreResponse `json:"score"`
		ID       string        `json:"id"`
		Role     string        `json:"role"`
	} `json:"entries"`
}

type statsResponse struct {
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Points     int     `json:"points"`
	Streak     int     `json:"streak"`
	Rank       int     `json:"rank"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "alice", authResp.User.Username)
	assert.NotEmpty(t, authResp.SessionToken)

	// Me (token should be saved in token file)
	output, err = cli.run("auth", "me")
	require.NoError(t, err, "output: %s", output)

	var me userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, authResp.User.ID, me.ID)

	// Logout
	output, err = cli.run("auth", "logout")
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Contains(t, msgResp.Message, "Logged out")

	// Login again
	output, err = cli.run("auth", "login", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	var loginResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))
	assert.Equal(t, authResp.User.ID, loginResp.User.ID)
}

func TestCLI_PlayAndStats(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	// Play a fixed win
	output, err = cli.run("play", "rock", "--opponent", "scissors")
	require.NoError(t, err, "output: %s", output)

	var playResp playResponse
	require.NoError(t, json.Unmarshal([]byte(output), &playResp))
	assert.Equal(t, "win", playResp.Outcome)
	assert.Equal(t, 3, playResp.Points)
	assert.Equal(t, 1, playResp.Score.GamesPlayed)

	// Play against the house
	output, err = cli.run("play", "paper")
	require.NoError(t, err, "output: %s", output)

	require.NoError(t, json.Unmarshal([]byte(output), &playResp))
	assert.Contains(t, []string{"win", "lose", "draw"}, playResp.Outcome)
	assert.Equal(t, 2, playResp.Score.GamesPlayed)

	// Stats reflect both games
	output, err = cli.run("stats")
	require.NoError(t, err, "output: %s", output)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 2, stats.TotalGames)
	assert.GreaterOrEqual(t, stats.Points, 3)
}

func TestCLI_Leaderboard(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("play", "rock", "--opponent", "scissors")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var lb leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lb))
	require.NotEmpty(t, lb.Entries)
	assert.Equal(t, "alice", lb.Entries[0].Username)
	assert.Equal(t, 3, lb.Entries[0].Score.Points)
	// Non-admin view hides identity details
	assert.Empty(t, lb.Entries[0].ID)
}

func TestCLI_AdminUserCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register a regular user
	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)
	var aliceResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &aliceResp))

	// Login as the bootstrapped admin with a separate token file
	admin := &cliRunner{
		binaryPath: cli.binaryPath,
		serverURL:  cli.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "admin-token"),
	}
	output, err = admin.run("auth", "login", "--user", "root", "--pass", "rootpassword")
	require.NoError(t, err, "output: %s", output)
	var rootResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rootResp))
	rootToken := rootResp.SessionToken

	// List users (admin view includes ids and roles)
	output, err = cli.runWithToken(rootToken, "users", "list")
	require.NoError(t, err, "output: %s", output)

	var lb leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lb))
	require.Len(t, lb.Entries, 2)
	for _, entry := range lb.Entries {
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.Role)
	}

	// Override alice's points
	output, err = cli.runWithToken(rootToken, "users", "update", aliceResp.User.ID, "--points", "42")
	require.NoError(t, err, "output: %s", output)

	// Delete alice
	output, err = cli.runWithToken(rootToken, "users", "delete", aliceResp.User.ID)
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Contains(t, msgResp.Message, "deleted")

	// Alice is gone
	output, err = cli.runWithToken(rootToken, "users", "list")
	require.NoError(t, err, "output: %s", output)

	require.NoError(t, json.Unmarshal([]byte(output), &lb))
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, "root", lb.Entries[0].Username)
}

func TestCLI_AdminCommandsForbiddenForUsers(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("users", "list")
	assert.Error(t, err, "output: %s", output)
}
