package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

// tokenBytes yields 32 url-safe characters once base64url encoded.
const tokenBytes = 24

// ErrTokenNotFound indicates a lookup miss against the token store.
var ErrTokenNotFound = errors.New("token not found")

// IssueRecorder counts freshly minted tokens. Satisfied by
// observability.Metrics; nil disables recording.
type IssueRecorder interface {
	RecordTokenIssued()
}

// Manager owns the access-token lifecycle: lazy issue, lazy refresh,
// equality lookup. Expiry is checked on access and never swept.
type Manager struct {
	store    Store
	ttl      time.Duration
	recorder IssueRecorder
	now      func() time.Time
}

// NewManager builds a manager. A non-positive ttl falls back to one year.
func NewManager(store Store, ttl time.Duration, recorder IssueRecorder) *Manager {
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl, recorder: recorder, now: time.Now}
}

// GetOrRefresh returns the reader's current token, minting a new one when
// none is stored or the stored one has logically expired. Repeated calls
// inside the expiration window return the identical token.
func (m *Manager) GetOrRefresh(ctx context.Context, readerID string) (domain.AccessToken, error) {
	stored, found, err := m.store.Get(ctx, readerID)
	if err != nil {
		return domain.AccessToken{}, err
	}
	if found && !stored.Expired(m.now()) {
		return stored, nil
	}

	value, err := generateValue()
	if err != nil {
		return domain.AccessToken{}, err
	}

	tok := domain.AccessToken{
		Value:     value,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, readerID, tok); err != nil {
		return domain.AccessToken{}, err
	}
	if m.recorder != nil {
		m.recorder.RecordTokenIssued()
	}
	return tok, nil
}

// IsExpired reports whether the reader's stored token is logically retired.
// A reader with no stored token counts as expired.
func (m *Manager) IsExpired(ctx context.Context, readerID string) (bool, error) {
	stored, found, err := m.store.Get(ctx, readerID)
	if err != nil {
		return true, err
	}
	if !found {
		return true, nil
	}
	return stored.Expired(m.now()), nil
}

// Lookup resolves a presented token value to its reader by exact equality
// against the current stored record. A stale reverse-index hit whose record
// has since been superseded does not match.
func (m *Manager) Lookup(ctx context.Context, value string) (string, domain.AccessToken, error) {
	if value == "" {
		return "", domain.AccessToken{}, ErrTokenNotFound
	}

	readerID, found, err := m.store.LookupReader(ctx, value)
	if err != nil {
		return "", domain.AccessToken{}, err
	}
	if !found {
		return "", domain.AccessToken{}, ErrTokenNotFound
	}

	stored, found, err := m.store.Get(ctx, readerID)
	if err != nil {
		return "", domain.AccessToken{}, err
	}
	if !found || stored.Value != value {
		return "", domain.AccessToken{}, ErrTokenNotFound
	}
	return readerID, stored, nil
}

// BuildServiceURL appends the token as the `token` query parameter to the
// configured reader base URL. Empty inputs yield an empty string, which
// callers must treat as "no valid destination".
func BuildServiceURL(baseURL, tokenValue string) string {
	if baseURL == "" || tokenValue == "" {
		return ""
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	query := parsed.Query()
	query.Set("token", tokenValue)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func generateValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
