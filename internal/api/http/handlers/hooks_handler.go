package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eedition-gateway/internal/api/dto"
	"github.com/spec-kit/eedition-gateway/internal/service"
	apperrors "github.com/spec-kit/eedition-gateway/pkg/util"
)

// HooksHandler receives server-to-server callbacks from the host identity
// system.
type HooksHandler struct {
	access     *service.AccessService
	hookSecret string
}

// NewHooksHandler constructs handler.
func NewHooksHandler(access *service.AccessService, hookSecret string) *HooksHandler {
	return &HooksHandler{access: access, hookSecret: hookSecret}
}

// Login handles POST /hooks/login.
func (h *HooksHandler) Login(c *fiber.Ctx) error {
	if h.hookSecret != "" {
		presented := c.Get("X-Hook-Secret")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(h.hookSecret)) != 1 {
			return apperrors.NewNotAuthenticated("invalid hook secret")
		}
	}

	var req dto.LoginHookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ReaderID == "" && req.Login == "" {
		return apperrors.NewValidationError("reader_id or login required", nil)
	}

	reader, session, expiresAt, err := h.access.HandleLogin(c.Context(), service.LoginHookInput{
		ReaderID:    req.ReaderID,
		Login:       req.Login,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Slug:        req.Slug,
		Roles:       req.Roles,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"reader": fiber.Map{
				"id":    reader.ID,
				"login": reader.Login,
				"slug":  reader.Slug,
			},
			"session": dto.SessionResponse{Token: session, ExpiresAt: expiresAt},
		},
	})
}
