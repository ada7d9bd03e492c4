package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eedition-gateway/internal/auth"
	"github.com/spec-kit/eedition-gateway/internal/config"
	"github.com/spec-kit/eedition-gateway/internal/domain"
	"github.com/spec-kit/eedition-gateway/internal/entitlement"
	"github.com/spec-kit/eedition-gateway/internal/events"
	"github.com/spec-kit/eedition-gateway/internal/observability"
	"github.com/spec-kit/eedition-gateway/internal/repository"
	"github.com/spec-kit/eedition-gateway/internal/token"
	apperrors "github.com/spec-kit/eedition-gateway/pkg/util"
)

// Redirect terminal states, one per branch of the decision machine.
const (
	RedirectStateAnonymous = "anonymous"
	RedirectStateDenied    = "denied"
	RedirectStateGranted   = "granted"
	RedirectStateNoTarget  = "no_target"
)

// Redirect is the terminal outcome of one page-view decision. Every branch
// redirects; content never renders inline when access is denied.
type Redirect struct {
	Location string
	Status   int
	State    string
}

// ValidationResult carries the matched reader for a successful token
// validation. A nil result means the documented failure response.
type ValidationResult struct {
	Reader *domain.Reader
	Token  domain.AccessToken
}

// LoginHookInput is what the host identity system reports after a login.
// Profile fields are optional; when present the local mirror is updated.
type LoginHookInput struct {
	ReaderID    string
	Login       string
	Email       string
	DisplayName string
	Slug        string
	Roles       []string
}

// AccessService coordinates the redirect decision, token validation and
// the login handoff.
type AccessService struct {
	readers    repository.ReaderRepository
	engine     *entitlement.Engine
	tokens     *token.Manager
	sessions   *auth.SessionManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	policy     config.PolicyConfig
	reader     config.ReaderConfig
}

// AccessDependencies encapsulates collaborator requirements for the service.
type AccessDependencies struct {
	ReaderRepo repository.ReaderRepository
	Engine     *entitlement.Engine
	Tokens     *token.Manager
	Sessions   *auth.SessionManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// NewAccessService builds the service.
func NewAccessService(cfg config.Config, deps AccessDependencies) *AccessService {
	return &AccessService{
		readers:    deps.ReaderRepo,
		engine:     deps.Engine,
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		policy:     cfg.Policy,
		reader:     cfg.Reader,
	}
}

// ResolveRedirect runs the page-view state machine. The reader is nil for
// anonymous visitors. Only persistence faults surface as errors; every
// business outcome is a redirect.
func (s *AccessService) ResolveRedirect(ctx context.Context, reader *domain.Reader, requestedURL string) (Redirect, error) {
	if reader == nil {
		s.metrics.RecordRedirect(RedirectStateAnonymous)
		return Redirect{
			Location: loginRedirectURL(s.reader.LoginURL, requestedURL),
			// Not cached, so retrying after login succeeds.
			Status: http.StatusFound,
			State:  RedirectStateAnonymous,
		}, nil
	}

	allowed, err := s.engine.HasAccess(ctx, reader.ID, s.policy.Snapshot())
	if err != nil {
		return Redirect{}, apperrors.MapError(err)
	}
	if !allowed {
		s.metrics.RecordRedirect(RedirectStateDenied)
		return Redirect{
			Location: s.fallbackURL(),
			Status:   http.StatusMovedPermanently,
			State:    RedirectStateDenied,
		}, nil
	}

	tok, err := s.tokens.GetOrRefresh(ctx, reader.ID)
	if err != nil {
		return Redirect{}, apperrors.NewTokenUnavailable(err)
	}

	destination := token.BuildServiceURL(s.reader.BaseURL, tok.Value)
	if destination == "" {
		s.metrics.RecordRedirect(RedirectStateNoTarget)
		return Redirect{
			Location: s.reader.SiteRootURL,
			Status:   http.StatusMovedPermanently,
			State:    RedirectStateNoTarget,
		}, nil
	}

	s.metrics.RecordRedirect(RedirectStateGranted)
	return Redirect{
		Location: destination,
		Status:   http.StatusMovedPermanently,
		State:    RedirectStateGranted,
	}, nil
}

// ValidateToken answers the reader service's synchronous check: exact
// equality against the stored token, then entitlement, then expiry. Any
// miss yields a nil result, never an error, so the endpoint can keep its
// XML-over-200 contract.
func (s *AccessService) ValidateToken(ctx context.Context, value string) (*ValidationResult, error) {
	if value == "" {
		return s.validationFailure(), nil
	}

	readerID, tok, err := s.tokens.Lookup(ctx, value)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			return s.validationFailure(), nil
		}
		return nil, apperrors.MapError(err)
	}

	reader, err := s.readers.GetByID(ctx, readerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.validationFailure(), nil
		}
		return nil, apperrors.MapError(err)
	}

	allowed, err := s.engine.HasAccess(ctx, reader.ID, s.policy.Snapshot())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !allowed || tok.Expired(time.Now()) {
		return s.validationFailure(), nil
	}

	s.metrics.RecordValidation("success")
	return &ValidationResult{Reader: reader, Token: tok}, nil
}

// HandleLogin mirrors the host's post-login hook: update the local account
// mirror when profile data is supplied, issue the browser session, and
// publish the event that refreshes the access token.
func (s *AccessService) HandleLogin(ctx context.Context, input LoginHookInput) (*domain.Reader, string, time.Time, error) {
	var reader *domain.Reader

	if input.Login != "" {
		reader = &domain.Reader{
			Login:       input.Login,
			Email:       input.Email,
			DisplayName: input.DisplayName,
			Slug:        input.Slug,
			Roles:       input.Roles,
		}
		if err := s.readers.Upsert(ctx, reader); err != nil {
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	} else {
		var err error
		reader, err = s.readers.GetByID(ctx, input.ReaderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", time.Time{}, apperrors.NewNotFound("reader", nil)
			}
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	}

	session, expiresAt, err := s.sessions.Issue(reader.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReaderLoggedIn,
		ReaderID:  reader.ID,
		Timestamp: time.Now(),
		Payload:   events.ReaderLoggedInPayload{Login: reader.Login},
	})

	return reader, session, expiresAt, nil
}

func (s *AccessService) validationFailure() *ValidationResult {
	s.metrics.RecordValidation("failure")
	return nil
}

func (s *AccessService) fallbackURL() string {
	if s.reader.FallbackURL != "" {
		return s.reader.FallbackURL
	}
	return s.reader.SiteRootURL
}

func loginRedirectURL(loginURL, requestedURL string) string {
	parsed, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	if requestedURL != "" {
		query := parsed.Query()
		query.Set("redirect_to", requestedURL)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}
