package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eedition-gateway/internal/config"
	"github.com/spec-kit/eedition-gateway/internal/domain"
)

const validateRoute = "/newspack-tecnavia/v1/validate-token"

const failureXML = "<LOGIN><TOKEN></TOKEN><UNIQUE_USER_ID></UNIQUE_USER_ID><IS_LOGGED>No</IS_LOGGED></LOGIN>"

func validateConfig() config.Config {
	return config.Config{
		Reader: config.ReaderConfig{SiteRootURL: "/"},
		Policy: config.PolicyConfig{AllowAllRegistered: true},
	}
}

func postToken(t *testing.T, env *testEnv, tokenValue string) (int, string, string) {
	t.Helper()

	body := ""
	if tokenValue != "" {
		body = "token=" + tokenValue
	}
	req := httptest.NewRequest("POST", validateRoute, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(raw)
}

func TestValidateTokenEmptyReturnsFailureXML(t *testing.T) {
	env := newTestEnv(t, validateConfig())
	env.app.Post(validateRoute, NewValidateHandler(env.service).Handle)

	status, contentType, body := postToken(t, env, "")

	assert.Equal(t, 200, status)
	assert.Contains(t, contentType, "text/xml")
	assert.Equal(t, failureXML, body)
}

func TestValidateTokenUnknownReturnsFailureXML(t *testing.T) {
	env := newTestEnv(t, validateConfig())
	env.app.Post(validateRoute, NewValidateHandler(env.service).Handle)

	status, _, body := postToken(t, env, "not-a-real-token")

	assert.Equal(t, 200, status)
	assert.Equal(t, failureXML, body)
}

func TestValidateTokenSuccessXML(t *testing.T) {
	reader := &domain.Reader{ID: "r1", Slug: "jane-doe", Email: "jane@example.com", DisplayName: "Jane Doe"}
	env := newTestEnv(t, validateConfig(), reader)
	env.app.Post(validateRoute, NewValidateHandler(env.service).Handle)

	tok, err := env.tokens.GetOrRefresh(context.Background(), "r1")
	require.NoError(t, err)

	status, contentType, body := postToken(t, env, tok.Value)

	assert.Equal(t, 200, status)
	assert.Contains(t, contentType, "text/xml")

	expected := fmt.Sprintf(
		"<LOGIN><TOKEN>%s</TOKEN><UNIQUE_USER_ID>jane-doe</UNIQUE_USER_ID><EMAIL>jane@example.com</EMAIL><USER_NAME>Jane Doe</USER_NAME><IS_LOGGED>Yes</IS_LOGGED><FOD>1111111</FOD></LOGIN>",
		tok.Value,
	)
	assert.Equal(t, expected, body)
}

func TestValidateTokenEntitlementLostReturnsFailureXML(t *testing.T) {
	cfg := validateConfig()
	cfg.Policy = config.PolicyConfig{AllowedRoles: []string{"editor"}}
	reader := &domain.Reader{ID: "r1", Roles: []string{"subscriber"}, Slug: "jane-doe"}
	env := newTestEnv(t, cfg, reader)
	env.app.Post(validateRoute, NewValidateHandler(env.service).Handle)

	tok, err := env.tokens.GetOrRefresh(context.Background(), "r1")
	require.NoError(t, err)

	status, _, body := postToken(t, env, tok.Value)

	assert.Equal(t, 200, status)
	assert.Equal(t, failureXML, body)
}

func TestValidateTokenAcceptsQueryParameter(t *testing.T) {
	reader := &domain.Reader{ID: "r1", Slug: "jane-doe"}
	env := newTestEnv(t, validateConfig(), reader)
	env.app.Post(validateRoute, NewValidateHandler(env.service).Handle)

	tok, err := env.tokens.GetOrRefresh(context.Background(), "r1")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", validateRoute+"?token="+tok.Value, nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<IS_LOGGED>Yes</IS_LOGGED>")
}
