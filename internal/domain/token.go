package domain

import "time"

// AccessToken is the opaque credential handed to the external reader
// service. Value and expiry form one record so a refresh can never leave
// the two halves disagreeing.
type AccessToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is logically retired at the given
// instant. A zero-value token counts as expired.
func (t AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
