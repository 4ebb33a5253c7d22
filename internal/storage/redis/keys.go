package redis

import (
	"fmt"

	"github.com/mcoot/rpsarena-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "rpsarena"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// usersIndexKey returns the Redis key for the SET of all user IDs
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// scoreKey returns the Redis key for a ScoreRecord
func scoreKey(userID model.UserID) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, userID)
}
