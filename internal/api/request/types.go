package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PlayRequest is the request body for playing a round.
// OpponentMove is optional; when absent the server picks at random.
type PlayRequest struct {
	Move         string  `json:"move"`
	OpponentMove *string `json:"opponent_move,omitempty"`
}

// UpdateUserRequest is the request body for admin account edits.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Points   *int    `json:"points,omitempty"`
}
