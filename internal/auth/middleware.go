package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eedition-gateway/internal/domain"
	"github.com/spec-kit/eedition-gateway/internal/repository"
	apperrors "github.com/spec-kit/eedition-gateway/pkg/util"
)

const readerKey = "auth_reader"

// IdentityMiddleware resolves the current reader from the session cookie.
// It never rejects a request: an absent or invalid session simply leaves
// the request anonymous, and the redirect decision handles that state.
type IdentityMiddleware struct {
	sessions   *SessionManager
	readers    repository.ReaderRepository
	cookieName string
}

// NewIdentityMiddleware constructs middleware.
func NewIdentityMiddleware(sessions *SessionManager, readers repository.ReaderRepository, cookieName string) *IdentityMiddleware {
	return &IdentityMiddleware{sessions: sessions, readers: readers, cookieName: cookieName}
}

// Identify loads the reader for a valid session cookie, if any.
func (m *IdentityMiddleware) Identify(c *fiber.Ctx) error {
	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return c.Next()
	}

	claims, err := m.sessions.Parse(raw)
	if err != nil {
		return c.Next()
	}

	reader, err := m.readers.GetByID(c.Context(), claims.ReaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Next()
		}
		return apperrors.MapError(err)
	}

	c.Locals(readerKey, reader)
	return c.Next()
}

// ReaderFromContext retrieves the authenticated reader, if present.
func ReaderFromContext(c *fiber.Ctx) (*domain.Reader, bool) {
	val := c.Locals(readerKey)
	if val == nil {
		return nil, false
	}
	reader, ok := val.(*domain.Reader)
	return reader, ok
}
