package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrLastAdmin     = errors.New("cannot remove the last admin user")
	ErrUsernameTaken = errors.New("username taken by another user")
	ErrEmailTaken    = errors.New("email taken by another user")

	// Game errors
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidOutcome = errors.New("invalid outcome")

	// Score errors
	ErrScoreNotFound = errors.New("score record not found")
	ErrConflict      = errors.New("concurrent update conflict")
)
