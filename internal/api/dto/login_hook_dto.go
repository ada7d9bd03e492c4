package dto

import "time"

// LoginHookRequest is posted by the host identity system after a login.
// Either reader_id or a full profile (keyed by login) must be present.
type LoginHookRequest struct {
	ReaderID    string   `json:"reader_id"`
	Login       string   `json:"login"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Slug        string   `json:"slug"`
	Roles       []string `json:"roles"`
}

// SessionResponse standard response for the login hook.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
