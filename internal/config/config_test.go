package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/e-edition", cfg.Reader.EndpointPath)
	assert.Equal(t, "eedition_session", cfg.Session.CookieName)
	assert.Equal(t, 365*24*time.Hour, cfg.Reader.TokenTTL())
	assert.False(t, cfg.Policy.AllowAllRegistered)
}

func TestPolicyListsFromEnv(t *testing.T) {
	t.Setenv("POLICY_ALLOWED_ROLES", "subscriber, editor ,")
	t.Setenv("POLICY_ALLOW_ALL_REGISTERED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"subscriber", "editor"}, cfg.Policy.AllowedRoles)
	assert.True(t, cfg.Policy.AllowAllRegistered)
}

func TestSnapshotCopiesSlices(t *testing.T) {
	policy := PolicyConfig{AllowedRoles: []string{"subscriber"}}

	snapshot := policy.Snapshot()
	snapshot.AllowedRoles[0] = "mutated"

	assert.Equal(t, "subscriber", policy.AllowedRoles[0])
}

func TestTokenTTLFallsBackToOneYear(t *testing.T) {
	reader := ReaderConfig{TokenTTLDays: 0}
	assert.Equal(t, 365*24*time.Hour, reader.TokenTTL())

	reader.TokenTTLDays = 30
	assert.Equal(t, 30*24*time.Hour, reader.TokenTTL())
}
