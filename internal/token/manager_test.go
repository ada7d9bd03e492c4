package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

type memStore struct {
	records map[string]domain.AccessToken
	index   map[string]string
	saves   int
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]domain.AccessToken),
		index:   make(map[string]string),
	}
}

func (s *memStore) Get(_ context.Context, readerID string) (domain.AccessToken, bool, error) {
	tok, ok := s.records[readerID]
	return tok, ok, nil
}

func (s *memStore) Save(_ context.Context, readerID string, tok domain.AccessToken) error {
	s.records[readerID] = tok
	s.index[tok.Value] = readerID
	s.saves++
	return nil
}

func (s *memStore) LookupReader(_ context.Context, value string) (string, bool, error) {
	readerID, ok := s.index[value]
	return readerID, ok, nil
}

func newTestManager(store Store, ttl time.Duration, now time.Time) *Manager {
	m := NewManager(store, ttl, nil)
	m.now = func() time.Time { return now }
	return m
}

func TestGetOrRefreshIsIdempotentWithinWindow(t *testing.T) {
	store := newMemStore()
	mgr := newTestManager(store, time.Hour, time.Now())

	first, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)
	second, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, 1, store.saves)
}

func TestGetOrRefreshRotatesExpiredToken(t *testing.T) {
	store := newMemStore()
	start := time.Now()
	mgr := newTestManager(store, time.Hour, start)

	first, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)

	mgr.now = func() time.Time { return start.Add(2 * time.Hour) }

	expired, err := mgr.IsExpired(context.Background(), "reader-1")
	require.NoError(t, err)
	assert.True(t, expired)

	second, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, second.Value)

	expired, err = mgr.IsExpired(context.Background(), "reader-1")
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestGetOrRefreshTokenShape(t *testing.T) {
	mgr := newTestManager(newMemStore(), time.Hour, time.Now())

	tok, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(tok.Value), 32)
	for _, r := range tok.Value {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_", string(r))
	}
}

func TestIsExpiredWithoutStoredToken(t *testing.T) {
	mgr := newTestManager(newMemStore(), time.Hour, time.Now())

	expired, err := mgr.IsExpired(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestLookupMatchesCurrentRecordOnly(t *testing.T) {
	store := newMemStore()
	start := time.Now()
	mgr := newTestManager(store, time.Hour, start)

	first, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)

	// Supersede the token; the old value still sits in the reverse index.
	mgr.now = func() time.Time { return start.Add(2 * time.Hour) }
	second, err := mgr.GetOrRefresh(context.Background(), "reader-1")
	require.NoError(t, err)

	_, _, err = mgr.Lookup(context.Background(), first.Value)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	readerID, tok, err := mgr.Lookup(context.Background(), second.Value)
	require.NoError(t, err)
	assert.Equal(t, "reader-1", readerID)
	assert.Equal(t, second.Value, tok.Value)
}

func TestLookupEmptyValue(t *testing.T) {
	mgr := newTestManager(newMemStore(), time.Hour, time.Now())

	_, _, err := mgr.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestBuildServiceURL(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		token string
		want  string
	}{
		{"empty base", "", "tok", ""},
		{"empty token", "http://x", "", ""},
		{"both empty", "", "", ""},
		{"plain base", "http://x", "tok", "http://x?token=tok"},
		{"base with query", "http://x?a=1", "tok", "http://x?a=1&token=tok"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildServiceURL(tc.base, tc.token))
		})
	}
}
