package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eedition-gateway/internal/auth"
	"github.com/spec-kit/eedition-gateway/internal/config"
	"github.com/spec-kit/eedition-gateway/internal/domain"
	"github.com/spec-kit/eedition-gateway/internal/entitlement"
	"github.com/spec-kit/eedition-gateway/internal/events"
	"github.com/spec-kit/eedition-gateway/internal/observability"
	"github.com/spec-kit/eedition-gateway/internal/service"
	"github.com/spec-kit/eedition-gateway/internal/token"
	"github.com/spec-kit/eedition-gateway/internal/worker"
	apperrors "github.com/spec-kit/eedition-gateway/pkg/util"
)

type fakeReaderRepo struct {
	readers map[string]*domain.Reader
}

func (f *fakeReaderRepo) GetByID(_ context.Context, id string) (*domain.Reader, error) {
	if reader, ok := f.readers[id]; ok {
		return reader, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReaderRepo) GetByLogin(_ context.Context, login string) (*domain.Reader, error) {
	for _, reader := range f.readers {
		if reader.Login == login {
			return reader, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReaderRepo) Upsert(_ context.Context, reader *domain.Reader) error {
	if reader.ID == "" {
		reader.ID = "id-" + reader.Login
	}
	f.readers[reader.ID] = reader
	return nil
}

type fakeTokenStore struct {
	records map[string]domain.AccessToken
	index   map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		records: make(map[string]domain.AccessToken),
		index:   make(map[string]string),
	}
}

func (s *fakeTokenStore) Get(_ context.Context, readerID string) (domain.AccessToken, bool, error) {
	tok, ok := s.records[readerID]
	return tok, ok, nil
}

func (s *fakeTokenStore) Save(_ context.Context, readerID string, tok domain.AccessToken) error {
	s.records[readerID] = tok
	s.index[tok.Value] = readerID
	return nil
}

func (s *fakeTokenStore) LookupReader(_ context.Context, value string) (string, bool, error) {
	readerID, ok := s.index[value]
	return readerID, ok, nil
}

type testEnv struct {
	app      *fiber.App
	service  *service.AccessService
	tokens   *token.Manager
	sessions *auth.SessionManager
	identity *auth.IdentityMiddleware
	repo     *fakeReaderRepo
}

func newTestEnv(t *testing.T, cfg config.Config, readers ...*domain.Reader) *testEnv {
	t.Helper()

	repo := &fakeReaderRepo{readers: make(map[string]*domain.Reader)}
	for _, reader := range readers {
		repo.readers[reader.ID] = reader
	}

	store := newFakeTokenStore()
	tokens := token.NewManager(store, time.Hour, nil)
	engine := entitlement.NewEngine(repo, nil, nil)
	sessions := auth.NewSessionManager("test-secret", 1)
	identity := auth.NewIdentityMiddleware(sessions, repo, "eedition_session")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartTokenRefreshWorker(dispatcher, tokens, zap.NewNop())

	svc := service.NewAccessService(cfg, service.AccessDependencies{
		ReaderRepo: repo,
		Engine:     engine,
		Tokens:     tokens,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"error": fiber.Map{"code": domainErr.Code, "message": domainErr.Message},
			})
		},
	})

	return &testEnv{
		app:      app,
		service:  svc,
		tokens:   tokens,
		sessions: sessions,
		identity: identity,
		repo:     repo,
	}
}

func (e *testEnv) issueSession(t *testing.T, readerID string) string {
	t.Helper()
	session, _, err := e.sessions.Issue(readerID)
	require.NoError(t, err)
	return session
}
