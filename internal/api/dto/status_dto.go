package dto

import "time"

// UpdateStatusRequest payload for PATCH /{kind}s/:position/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	// Team is required when Status is Done for tickets.
	Team string `json:"team"`
	// ExpectedID guards against the list shifting since it was fetched.
	ExpectedID string `json:"expected_id"`
}

// UpdateStatusResponse reports where the record ended up.
type UpdateStatusResponse struct {
	Position int  `json:"position"`
	Archived bool `json:"archived"`
	Record   any  `json:"record"`
}

// RemoveResponse reports how many rows a removal deleted.
type RemoveResponse struct {
	Removed int `json:"removed"`
}

// LoginRequest payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
