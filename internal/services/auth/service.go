// Package auth is the session authority: account registration, login,
// and the authorization predicate applied by every protected route.
//
// Sessions are opaque 128-bit random tokens validated against a
// server-side registry. Each session carries a snapshot of the account's
// identity (id, username, role) taken at issuance; role changes made
// after login are only reflected once the user logs in again. This
// staleness is a deliberate trade-off inherited from the original
// system and a known hardening gap for privileged operations.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/rpsarena-go/internal/dependencies/clock"
	"github.com/mcoot/rpsarena-go/internal/model"
	"github.com/mcoot/rpsarena-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("insufficient role")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already registered")
)

// Session represents an authenticated session. Username and Role are the
// identity snapshot from issuance time.
type Session struct {
	Token     string
	UserID    model.UserID
	Username  string
	Role      model.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles authentication and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Register creates a new account with the user role and logs it in
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if err := s.checkUnique(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:           model.UserID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store enforces uniqueness atomically; checkUnique above only
	// short-circuits before the bcrypt work
	if err := s.storage.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameTaken):
			return nil, ErrUsernameExists
		case errors.Is(err, model.ErrEmailTaken):
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return s.createSession(user), nil
}

// Login authenticates an account and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(user), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// Authorize reports whether the session satisfies the required role.
// model.RoleAuthenticated accepts any valid session; otherwise the
// session's role snapshot must match exactly.
func (s *Service) Authorize(session *Session, required model.Role) bool {
	if session == nil {
		return false
	}
	if required == model.RoleAuthenticated {
		return true
	}
	return session.Role == required
}

// InvalidateSession removes a session (logout)
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// InvalidateUserSessions removes all sessions for a user, used when the
// account is deleted
func (s *Service) InvalidateUserSessions(userID model.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
}

// GetUser returns the full account backing a session token
func (s *Service) GetUser(ctx context.Context, token string) (*model.User, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return s.storage.GetUser(ctx, session.UserID)
}

// EnsureAdmin creates an admin account at startup if the username is not
// taken; an existing account with that username is promoted to admin
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		if user.Role == model.RoleAdmin {
			return nil
		}
		user.Role = model.RoleAdmin
		user.UpdatedAt = s.clock.Now()
		return s.storage.SaveUser(ctx, user)
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	return s.storage.SaveUser(ctx, &model.User{
		ID:           model.UserID(uuid.NewString()),
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func (s *Service) checkUnique(ctx context.Context, username, email string) error {
	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	if email != "" {
		_, err = s.storage.GetUserByEmail(ctx, email)
		if err == nil {
			return ErrEmailExists
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return err
		}
	}

	return nil
}

// createSession creates a new session snapshotting the user's identity
func (s *Service) createSession(user *model.User) *Session {
	now := s.clock.Now()

	session := &Session{
		Token:     generateToken(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// generateToken generates an opaque random session token
func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}
