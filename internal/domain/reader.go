package domain

import "time"

// Reader is the gateway's mirror of a host-identity account. The host
// platform owns registration and authentication; this service only reads
// the fields it needs to answer entitlement and validation queries.
type Reader struct {
	ID          string
	Login       string
	Email       string
	DisplayName string
	Slug        string
	Roles       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasRole reports whether the reader carries the given role label.
func (r *Reader) HasRole(role string) bool {
	for _, have := range r.Roles {
		if have == role {
			return true
		}
	}
	return false
}
