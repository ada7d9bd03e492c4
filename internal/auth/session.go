package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionManager signs and parses the short-lived browser session the host
// identity system hands off after a login. The session only identifies the
// reader; entitlement is re-evaluated on every request.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager builds a new manager.
func NewSessionManager(secret string, ttlHours int) *SessionManager {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &SessionManager{secret: []byte(secret), ttl: time.Duration(ttlHours) * time.Hour}
}

// SessionClaims describes the session JWT payload.
type SessionClaims struct {
	ReaderID string `json:"sub"`
	jwt.RegisteredClaims
}

// Issue builds and signs a session JWT for the reader.
func (sm *SessionManager) Issue(readerID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(sm.ttl)
	claims := &SessionClaims{
		ReaderID: readerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   readerID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates and returns claims.
func (sm *SessionManager) Parse(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return sm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
